// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/cite-engine/internal/httputil"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// openAlexAPIBase is the OpenAlex works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org/works"

// OpenAlexProvider queries the OpenAlex API (R2.2).
type OpenAlexProvider struct {
	Client    *httputil.Limited
	UserAgent string
	// Email is sent as mailto parameter for polite pool access.
	Email string
}

// ID returns the provider identifier.
func (p *OpenAlexProvider) ID() ID { return OpenAlex }

// Search queries OpenAlex and returns the top-ranked work.
func (p *OpenAlexProvider) Search(ctx context.Context, query string) (*types.CandidateRecord, error) {
	params := url.Values{
		"search":   {query},
		"per_page": {"5"},
		"page":     {"1"},
	}
	if p.Email != "" {
		params.Set("mailto", p.Email)
	}

	var oar openAlexResponse
	if err := p.get(ctx, openAlexAPIBase+"?"+params.Encode(), &oar); err != nil {
		return nil, err
	}

	for _, work := range oar.Results {
		if rec := work.toRecord(); rec != nil {
			return rec, nil
		}
	}
	return nil, nil
}

// GetByID fetches a work by bare DOI using OpenAlex's doi: prefix form.
func (p *OpenAlexProvider) GetByID(ctx context.Context, doi string) (*types.CandidateRecord, error) {
	reqURL := openAlexAPIBase + "/doi:" + url.PathEscape(doi)
	if p.Email != "" {
		reqURL += "?mailto=" + url.QueryEscape(p.Email)
	}

	var work openAlexWork
	if err := p.get(ctx, reqURL, &work); err != nil {
		return nil, err
	}
	return work.toRecord(), nil
}

func (p *OpenAlexProvider) get(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.UserAgent)

	resp, err := p.Client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	return nil
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	DOI             string               `json:"doi"`
	PublicationYear int                  `json:"publication_year"`
	Authorships     []openAlexAuthorship `json:"authorships"`
	PrimaryLocation openAlexLocation     `json:"primary_location"`
	Biblio          openAlexBiblio       `json:"biblio"`
	IDs             openAlexIDs          `json:"ids"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	DisplayName string `json:"display_name"`
}

type openAlexLocation struct {
	Source openAlexSource `json:"source"`
}

type openAlexSource struct {
	DisplayName string `json:"display_name"`
}

type openAlexBiblio struct {
	Volume    string `json:"volume"`
	Issue     string `json:"issue"`
	FirstPage string `json:"first_page"`
	LastPage  string `json:"last_page"`
}

type openAlexIDs struct {
	PMID string `json:"pmid"`
}

// toRecord converts an OpenAlex work into a CandidateRecord. Returns nil
// for untitled works.
func (w openAlexWork) toRecord() *types.CandidateRecord {
	if w.Title == "" {
		return nil
	}

	rec := &types.CandidateRecord{
		Title:          w.Title,
		Container:      w.PrimaryLocation.Source.DisplayName,
		Volume:         w.Biblio.Volume,
		Issue:          w.Biblio.Issue,
		SourceProvider: string(OpenAlex),
	}
	if w.PublicationYear > 0 {
		rec.Year = strconv.Itoa(w.PublicationYear)
	}
	// OpenAlex returns identifiers as full URLs; keep the bare values.
	rec.DOI = strings.TrimPrefix(w.DOI, "https://doi.org/")
	rec.PMID = strings.TrimPrefix(w.IDs.PMID, "https://pubmed.ncbi.nlm.nih.gov/")

	if w.Biblio.FirstPage != "" {
		rec.Pages = w.Biblio.FirstPage
		if w.Biblio.LastPage != "" && w.Biblio.LastPage != w.Biblio.FirstPage {
			rec.Pages += "-" + w.Biblio.LastPage
		}
	}
	for _, a := range w.Authorships {
		if a.Author.DisplayName != "" {
			rec.Authors = append(rec.Authors, a.Author.DisplayName)
		}
	}
	return rec
}
