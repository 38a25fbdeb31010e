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

// crossrefAPIBase is the Crossref works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// CrossrefProvider queries the Crossref REST API (R2.1).
type CrossrefProvider struct {
	Client    *httputil.Limited
	UserAgent string
	// Mailto joins Crossref's polite pool for better rate limits.
	Mailto string
}

// ID returns the provider identifier.
func (p *CrossrefProvider) ID() ID { return Crossref }

// Search issues a bibliographic query and returns the top-ranked work.
func (p *CrossrefProvider) Search(ctx context.Context, query string) (*types.CandidateRecord, error) {
	params := url.Values{
		"query.bibliographic": {query},
		"rows":                {"5"},
	}
	if p.Mailto != "" {
		params.Set("mailto", p.Mailto)
	}

	var cr crossrefSearchResponse
	if err := p.get(ctx, crossrefAPIBase+"?"+params.Encode(), &cr); err != nil {
		return nil, err
	}

	for _, item := range cr.Message.Items {
		if rec := item.toRecord(); rec != nil {
			return rec, nil
		}
	}
	return nil, nil
}

// GetByID fetches a work by DOI.
func (p *CrossrefProvider) GetByID(ctx context.Context, doi string) (*types.CandidateRecord, error) {
	var cr crossrefWorkResponse
	err := p.get(ctx, crossrefAPIBase+"/"+url.PathEscape(doi), &cr)
	if err != nil {
		return nil, err
	}
	return cr.Message.toRecord(), nil
}

func (p *CrossrefProvider) get(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.UserAgent)

	resp, err := p.Client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("Crossref API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Crossref API returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing Crossref response: %w", err)
	}
	return nil
}

// Crossref API JSON structures.
type crossrefSearchResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefWorkResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefWork struct {
	Title          []string         `json:"title"`
	Author         []crossrefAuthor `json:"author"`
	Issued         crossrefDate     `json:"issued"`
	ContainerTitle []string         `json:"container-title"`
	Publisher      string           `json:"publisher"`
	Volume         string           `json:"volume"`
	Issue          string           `json:"issue"`
	Page           string           `json:"page"`
	DOI            string           `json:"DOI"`
}

type crossrefAuthor struct {
	Family string `json:"family"`
	Given  string `json:"given"`
	Name   string `json:"name"` // corporate authors
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

// year returns the first date part as a string, or "".
func (d crossrefDate) year() string {
	if len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 {
		return strconv.Itoa(d.DateParts[0][0])
	}
	return ""
}

// toRecord converts a Crossref work into a CandidateRecord. Returns nil
// for works without a title, which cannot be scored or verified.
func (w crossrefWork) toRecord() *types.CandidateRecord {
	if len(w.Title) == 0 || w.Title[0] == "" {
		return nil
	}

	rec := &types.CandidateRecord{
		Title:          w.Title[0],
		Year:           w.Issued.year(),
		Volume:         w.Volume,
		Issue:          w.Issue,
		Pages:          w.Page,
		DOI:            w.DOI,
		SourceProvider: string(Crossref),
	}
	// Journal title for articles, publisher for books.
	if len(w.ContainerTitle) > 0 {
		rec.Container = w.ContainerTitle[0]
	} else {
		rec.Container = w.Publisher
	}
	for _, a := range w.Author {
		switch {
		case a.Family != "":
			rec.Authors = append(rec.Authors, strings.TrimSpace(a.Family+", "+a.Given))
		case a.Name != "":
			rec.Authors = append(rec.Authors, a.Name)
		}
	}
	return rec
}
