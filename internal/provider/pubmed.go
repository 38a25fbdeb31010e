// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/cite-engine/internal/httputil"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// NCBI E-utilities endpoints. Declared as vars so tests can substitute
// httptest servers.
var (
	pubmedSearchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedSummaryBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esummary.fcgi"
)

// PubMedProvider queries the NCBI E-utilities API (R2.3). A search is two
// calls: esearch to find PMIDs, then esummary to fetch the metadata.
type PubMedProvider struct {
	Client    *httputil.Limited
	UserAgent string
	// APIKey raises NCBI's per-second rate limit when set.
	APIKey string
}

// ID returns the provider identifier.
func (p *PubMedProvider) ID() ID { return PubMed }

// Search finds the best PubMed match for an author-year query.
func (p *PubMedProvider) Search(ctx context.Context, query string) (*types.CandidateRecord, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {query},
		"retmode": {"json"},
		"retmax":  {"5"},
	}
	if p.APIKey != "" {
		params.Set("api_key", p.APIKey)
	}

	var sr pubmedSearchResponse
	if err := p.get(ctx, pubmedSearchBase+"?"+params.Encode(), &sr); err != nil {
		return nil, err
	}
	if len(sr.ESearchResult.IDList) == 0 {
		return nil, nil
	}
	return p.GetByID(ctx, sr.ESearchResult.IDList[0])
}

// GetByID fetches a record by PMID via esummary.
func (p *PubMedProvider) GetByID(ctx context.Context, pmid string) (*types.CandidateRecord, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {pmid},
		"retmode": {"json"},
	}
	if p.APIKey != "" {
		params.Set("api_key", p.APIKey)
	}

	// esummary keys each summary by its PMID, so the result object has
	// dynamic keys and needs two-stage decoding.
	var raw struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := p.get(ctx, pubmedSummaryBase+"?"+params.Encode(), &raw); err != nil {
		return nil, err
	}

	var uids []string
	if err := json.Unmarshal(raw.Result["uids"], &uids); err != nil || len(uids) == 0 {
		return nil, nil
	}

	var summary pubmedSummary
	if err := json.Unmarshal(raw.Result[uids[0]], &summary); err != nil {
		return nil, fmt.Errorf("parsing PubMed summary: %w", err)
	}
	return summary.toRecord(uids[0]), nil
}

func (p *PubMedProvider) get(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.UserAgent)

	resp, err := p.Client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("PubMed API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("PubMed API returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing PubMed response: %w", err)
	}
	return nil
}

// PubMed E-utilities JSON structures.
type pubmedSearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type pubmedSummary struct {
	Title           string            `json:"title"`
	Authors         []pubmedAuthor    `json:"authors"`
	PubDate         string            `json:"pubdate"`
	FullJournalName string            `json:"fulljournalname"`
	Volume          string            `json:"volume"`
	Issue           string            `json:"issue"`
	Pages           string            `json:"pages"`
	ArticleIDs      []pubmedArticleID `json:"articleids"`
}

type pubmedAuthor struct {
	Name string `json:"name"`
}

type pubmedArticleID struct {
	IDType string `json:"idtype"`
	Value  string `json:"value"`
}

// pubdateYearRe pulls the year out of dates like "1977 Mar" or "2001 Jan-Feb".
var pubdateYearRe = regexp.MustCompile(`\d{4}`)

// toRecord converts an esummary record into a CandidateRecord. Returns
// nil for untitled records.
func (s pubmedSummary) toRecord(pmid string) *types.CandidateRecord {
	if s.Title == "" {
		return nil
	}

	rec := &types.CandidateRecord{
		Title:          strings.TrimSuffix(s.Title, "."),
		Year:           pubdateYearRe.FindString(s.PubDate),
		Container:      s.FullJournalName,
		Volume:         s.Volume,
		Issue:          s.Issue,
		Pages:          s.Pages,
		PMID:           pmid,
		SourceProvider: string(PubMed),
	}
	for _, a := range s.Authors {
		if a.Name != "" {
			rec.Authors = append(rec.Authors, a.Name)
		}
	}
	for _, id := range s.ArticleIDs {
		if id.IDType == "doi" {
			rec.DOI = id.Value
			break
		}
	}
	return rec
}
