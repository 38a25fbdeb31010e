// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"context"
	"errors"
	"testing"

	"github.com/pdiddy/cite-engine/internal/guess"
	"github.com/pdiddy/cite-engine/internal/provider"
	"github.com/pdiddy/cite-engine/pkg/types"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name      string
		fragment  string
		candidate *types.CandidateRecord
		want      bool
	}{
		{
			name:     "author and year agree",
			fragment: "(Bandura, 1977)",
			candidate: &types.CandidateRecord{
				Title:   "Self-efficacy: Toward a unifying theory of behavioral change",
				Authors: []string{"Bandura, Albert"},
				Year:    "1977",
			},
			want: true,
		},
		{
			name:     "different work sharing only the author",
			fragment: "Caplan trains brains",
			candidate: &types.CandidateRecord{
				Title:   "Brain Injury Rehabilitation Outcomes",
				Authors: []string{"Caplan, David"},
				Year:    "2010",
			},
			want: false,
		},
		{
			name:     "year mismatch blocks an author match",
			fragment: "(Obscure, 1850)",
			candidate: &types.CandidateRecord{
				Title:   "A Treatise on Obscure Matters",
				Authors: []string{"Obscure, John"},
				Year:    "1851",
			},
			want: false,
		},
		{
			name:     "no year in fragment skips the year gate",
			fragment: "Kahneman and Tversky, in press",
			candidate: &types.CandidateRecord{
				Title:   "Prospect Theory: An Analysis of Decision under Risk",
				Authors: []string{"Daniel Kahneman", "Amos Tversky"},
				Year:    "1979",
			},
			want: true,
		},
		{
			name:     "et al fragment needs only the surname",
			fragment: "(Smith et al., 2019)",
			candidate: &types.CandidateRecord{
				Title:   "Large-Scale Replication in Social Science",
				Authors: []string{"Smith, Jane", "Doe, John", "Roe, Richard"},
				Year:    "2019",
			},
			want: true,
		},
		{
			name:     "two-author fragment requires both surnames",
			fragment: "(Smith & Jones, 2019)",
			candidate: &types.CandidateRecord{
				Title:   "Collaborative Findings",
				Authors: []string{"Smith, Jane"},
				Year:    "2019",
			},
			want: false,
		},
		{
			name:      "stop words and numerals leave only the year gate",
			fragment:  "the 1977",
			candidate: &types.CandidateRecord{Title: "The 1977 Yearbook"},
			want:      false,
		},
		{
			name:      "fragment with no tokens and no year",
			fragment:  "??",
			candidate: &types.CandidateRecord{Title: "Anything At All"},
			want:      false,
		},
		{
			name:      "nil candidate",
			fragment:  "(Bandura, 1977)",
			candidate: nil,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.fragment, tt.candidate); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

// fakeProvider records lookups and serves canned records.
type fakeProvider struct {
	id        provider.ID
	byID      map[string]*types.CandidateRecord
	byQuery   map[string]*types.CandidateRecord
	err       error
	idCalls   []string
	queries   []string
	searchHit *types.CandidateRecord
}

func (f *fakeProvider) ID() provider.ID { return f.id }

func (f *fakeProvider) Search(_ context.Context, query string) (*types.CandidateRecord, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if rec, ok := f.byQuery[query]; ok {
		return rec, nil
	}
	return f.searchHit, nil
}

func (f *fakeProvider) GetByID(_ context.Context, id string) (*types.CandidateRecord, error) {
	f.idCalls = append(f.idCalls, id)
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[id], nil
}

func banduraCitation() types.Citation {
	return types.Citation{
		PrimaryAuthor: "Bandura",
		Year:          "1977",
		RawText:       "(Bandura, 1977)",
	}
}

func banduraGuess() *guess.Guess {
	return &guess.Guess{
		Confidence:  0.85,
		Type:        "journal",
		Title:       "Self-efficacy: Toward a unifying theory of behavioral change",
		Authors:     []string{"Albert Bandura"},
		Year:        "1977",
		DOI:         "10.1037/0033-295x.84.2.191",
		SearchQuery: "Bandura self-efficacy 1977",
	}
}

func banduraRecord(source string) *types.CandidateRecord {
	return &types.CandidateRecord{
		Title:          "Self-efficacy: Toward a unifying theory of behavioral change",
		Authors:        []string{"Bandura, Albert"},
		Year:           "1977",
		DOI:            "10.1037/0033-295x.84.2.191",
		SourceProvider: source,
	}
}

func TestVerifyByDOI(t *testing.T) {
	g := banduraGuess()
	crossref := &fakeProvider{
		id:   provider.Crossref,
		byID: map[string]*types.CandidateRecord{g.DOI: banduraRecord("crossref")},
	}
	v := New([]provider.Provider{crossref})

	rec := v.Verify(context.Background(), banduraCitation(), g)
	if rec == nil {
		t.Fatal("Verify returned nil for a real DOI")
	}
	if rec.SourceProvider != "crossref" {
		t.Errorf("source = %q", rec.SourceProvider)
	}
	if len(crossref.queries) != 0 {
		t.Errorf("identifier hit should skip searches, got queries %v", crossref.queries)
	}
}

func TestVerifyFallsBackToTargetedQueries(t *testing.T) {
	g := banduraGuess()
	g.DOI = ""

	crossref := &fakeProvider{id: provider.Crossref}
	openalex := &fakeProvider{
		id:      provider.OpenAlex,
		byQuery: map[string]*types.CandidateRecord{g.Title: banduraRecord("openalex")},
	}
	v := New([]provider.Provider{crossref, openalex})

	rec := v.Verify(context.Background(), banduraCitation(), g)
	if rec == nil {
		t.Fatal("Verify returned nil")
	}
	if rec.SourceProvider != "openalex" {
		t.Errorf("source = %q", rec.SourceProvider)
	}
	// First targeted query is title keywords plus the surname.
	if len(crossref.queries) == 0 {
		t.Fatal("crossref was never searched")
	}
	if got := crossref.queries[0]; got != "self efficacy toward unifying theory behavioral Bandura" {
		t.Errorf("first query = %q", got)
	}
}

func TestVerifyRejectsHallucination(t *testing.T) {
	citation := types.Citation{
		PrimaryAuthor: "Caplan",
		Year:          "2015",
		RawText:       "(Caplan, 2015)",
	}
	g := &guess.Guess{
		Type:        "journal",
		Title:       "The app that trains brains",
		Year:        "2015",
		SearchQuery: "app trains brains",
	}
	// Providers return a real but unrelated work for every query.
	unrelated := &types.CandidateRecord{
		Title: "Brain Injury Rehabilitation Outcomes",
		Year:  "2015",
	}
	crossref := &fakeProvider{id: provider.Crossref, searchHit: unrelated}
	v := New([]provider.Provider{crossref})

	if rec := v.Verify(context.Background(), citation, g); rec != nil {
		t.Errorf("Verify = %+v, want nil for an unmatched guess", rec)
	}
	if len(crossref.queries) > maxQueries {
		t.Errorf("ran %d queries, want at most %d", len(crossref.queries), maxQueries)
	}
}

func TestVerifyRejectsMisattributedRealWork(t *testing.T) {
	// The guess names a work that genuinely exists, and the provider
	// confirms it, but it is not the work the citation refers to. The
	// candidate corroborates the guess perfectly and the citation not at
	// all, so verification must fail.
	citation := types.Citation{
		PrimaryAuthor: "Caplan",
		Year:          "1995",
		RawText:       "(Caplan, 1995)",
	}
	g := &guess.Guess{
		Confidence:  0.6,
		Type:        "journal",
		Title:       "Brain Injury Rehabilitation Outcomes",
		Authors:     []string{"Jane Smith"},
		Year:        "2010",
		SearchQuery: "brain injury rehabilitation outcomes",
	}
	published := &types.CandidateRecord{
		Title:          "Brain Injury Rehabilitation Outcomes",
		Authors:        []string{"Smith, Jane"},
		Year:           "2010",
		DOI:            "10.9/brain",
		SourceProvider: "crossref",
	}
	crossref := &fakeProvider{id: provider.Crossref, searchHit: published}
	v := New([]provider.Provider{crossref})

	if rec := v.Verify(context.Background(), citation, g); rec != nil {
		t.Errorf("Verify = %+v, want nil when the found work does not match the citation", rec)
	}
}

func TestVerifyToleratesProviderErrors(t *testing.T) {
	g := banduraGuess()
	g.DOI = ""
	broken := &fakeProvider{id: provider.Crossref, err: errors.New("boom")}
	working := &fakeProvider{
		id:      provider.OpenAlex,
		byQuery: map[string]*types.CandidateRecord{g.Title: banduraRecord("openalex")},
	}
	v := New([]provider.Provider{broken, working})

	if rec := v.Verify(context.Background(), banduraCitation(), g); rec == nil {
		t.Error("a broken provider should not block verification by a working one")
	}
}

func TestVerifyNilGuess(t *testing.T) {
	v := New(nil)
	if rec := v.Verify(context.Background(), banduraCitation(), nil); rec != nil {
		t.Errorf("Verify(nil) = %+v", rec)
	}
}

func TestVerifySemanticScholarDOIPrefix(t *testing.T) {
	g := banduraGuess()
	semantic := &fakeProvider{
		id:   provider.SemanticScholar,
		byID: map[string]*types.CandidateRecord{"DOI:" + g.DOI: banduraRecord("semantic_scholar")},
	}
	v := New([]provider.Provider{semantic})

	if rec := v.Verify(context.Background(), banduraCitation(), g); rec == nil {
		t.Fatal("semantic scholar DOI lookup failed")
	}
	if len(semantic.idCalls) != 1 || semantic.idCalls[0] != "DOI:"+g.DOI {
		t.Errorf("idCalls = %v", semantic.idCalls)
	}
}
