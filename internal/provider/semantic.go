// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/cite-engine/internal/httputil"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// semanticAPIBase is the Semantic Scholar graph API root. Declared as a
// var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper"

const semanticFields = "title,authors,year,venue,externalIds"

// SemanticScholarProvider queries the Semantic Scholar API (R2.4).
type SemanticScholarProvider struct {
	Client    *httputil.Limited
	UserAgent string
	APIKey    string
}

// ID returns the provider identifier.
func (p *SemanticScholarProvider) ID() ID { return SemanticScholar }

// Search queries Semantic Scholar and returns the top-ranked paper.
func (p *SemanticScholarProvider) Search(ctx context.Context, query string) (*types.CandidateRecord, error) {
	params := url.Values{
		"query":  {query},
		"limit":  {"5"},
		"fields": {semanticFields},
	}

	var sr semanticResponse
	if err := p.get(ctx, semanticAPIBase+"/search?"+params.Encode(), &sr); err != nil {
		return nil, err
	}

	for _, paper := range sr.Data {
		if rec := paper.toRecord(); rec != nil {
			return rec, nil
		}
	}
	return nil, nil
}

// GetByID fetches a paper by Semantic Scholar ID or by a prefixed external
// identifier such as "DOI:10.1037/0033-295X.84.2.191".
func (p *SemanticScholarProvider) GetByID(ctx context.Context, id string) (*types.CandidateRecord, error) {
	reqURL := semanticAPIBase + "/" + url.PathEscape(id) + "?fields=" + url.QueryEscape(semanticFields)

	var paper semanticPaper
	if err := p.get(ctx, reqURL, &paper); err != nil {
		return nil, err
	}
	return paper.toRecord(), nil
}

func (p *SemanticScholarProvider) get(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.UserAgent)
	if p.APIKey != "" {
		req.Header.Set("x-api-key", p.APIKey)
	}

	resp, err := p.Client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return nil
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Data []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID     string              `json:"paperId"`
	Title       string              `json:"title"`
	Year        int                 `json:"year"`
	Venue       string              `json:"venue"`
	Authors     []semanticAuthor    `json:"authors"`
	ExternalIDs semanticExternalIDs `json:"externalIds"`
}

type semanticAuthor struct {
	Name string `json:"name"`
}

type semanticExternalIDs struct {
	DOI    string `json:"DOI"`
	PubMed string `json:"PubMed"`
}

// toRecord converts a Semantic Scholar paper into a CandidateRecord.
// Returns nil for untitled papers.
func (s semanticPaper) toRecord() *types.CandidateRecord {
	if s.Title == "" {
		return nil
	}

	rec := &types.CandidateRecord{
		Title:          s.Title,
		Container:      s.Venue,
		DOI:            s.ExternalIDs.DOI,
		PMID:           s.ExternalIDs.PubMed,
		SourceProvider: string(SemanticScholar),
	}
	if s.Year > 0 {
		rec.Year = strconv.Itoa(s.Year)
	}
	for _, a := range s.Authors {
		if a.Name != "" {
			rec.Authors = append(rec.Authors, a.Name)
		}
	}
	return rec
}
