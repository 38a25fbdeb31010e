// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"math"
	"testing"

	"github.com/pdiddy/cite-engine/pkg/types"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore(t *testing.T) {
	tests := []struct {
		name       string
		citation   types.Citation
		candidate  types.CandidateRecord
		wantConf   float64
		wantReason string
	}{
		{
			name:     "full crossref match",
			citation: types.Citation{PrimaryAuthor: "Bandura", Year: "1977"},
			candidate: types.CandidateRecord{
				Title:          "Self-efficacy: Toward a unifying theory of behavioral change",
				Authors:        []string{"Bandura, Albert"},
				Year:           "1977",
				Container:      "Psychological Review",
				Pages:          "191-215",
				DOI:            "10.1037/0033-295x.84.2.191",
				SourceProvider: "crossref",
			},
			// year + primary + identifier + title/container/pages
			wantConf:   0.90,
			wantReason: "year+primary_author+identifier",
		},
		{
			name:     "adjacent publication year",
			citation: types.Citation{PrimaryAuthor: "Kahneman", Year: "2012"},
			candidate: types.CandidateRecord{
				Title:   "Thinking, Fast and Slow",
				Authors: []string{"Daniel Kahneman"},
				Year:    "2011",
				DOI:     "10.1000/x",
			},
			wantConf:   0.70,
			wantReason: "year±1+primary_author+identifier",
		},
		{
			name:     "no identifier is penalized",
			citation: types.Citation{PrimaryAuthor: "Smith", Year: "2019"},
			candidate: types.CandidateRecord{
				Title:   "A Study",
				Authors: []string{"Smith, J."},
				Year:    "2019",
			},
			wantConf:   0.60,
			wantReason: "year+primary_author",
		},
		{
			name: "three-author agreement clamps at one",
			citation: types.Citation{
				PrimaryAuthor: "Tversky",
				SecondAuthor:  "Kahneman",
				ThirdAuthor:   "Slovic",
				Year:          "1982",
			},
			candidate: types.CandidateRecord{
				Title:     "Judgment under Uncertainty",
				Authors:   []string{"Amos Tversky", "Daniel Kahneman", "Paul Slovic"},
				Year:      "1982",
				Container: "Cambridge University Press",
				Pages:     "1-555",
				DOI:       "10.1017/cbo9780511809477",
			},
			wantConf:   1.0,
			wantReason: "year+primary_author+second_author+third_author+identifier",
		},
		{
			name:     "wrong author scores on year alone",
			citation: types.Citation{PrimaryAuthor: "Bandura", Year: "1977"},
			candidate: types.CandidateRecord{
				Title:   "Unrelated Work",
				Authors: []string{"Jones, P."},
				Year:    "1977",
				DOI:     "10.1000/y",
			},
			wantConf:   0.50,
			wantReason: "year+identifier",
		},
		{
			name:     "year suffix is ignored for comparison",
			citation: types.Citation{PrimaryAuthor: "Bandura", Year: "1997b"},
			candidate: types.CandidateRecord{
				Authors: []string{"Bandura, A."},
				Year:    "1997",
			},
			wantConf:   0.55,
			wantReason: "year+primary_author",
		},
		{
			name:     "non-numeric year never matches",
			citation: types.Citation{PrimaryAuthor: "Chomsky", Year: "n.d."},
			candidate: types.CandidateRecord{
				Authors: []string{"Chomsky, Noam"},
				Year:    "1965",
			},
			wantConf:   0.25,
			wantReason: "primary_author",
		},
		{
			name:      "nothing in common floors at zero",
			citation:  types.Citation{PrimaryAuthor: "Bandura", Year: "1977"},
			candidate: types.CandidateRecord{Authors: []string{"Jones, P."}, Year: "2003"},
			wantConf:  0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf, reason := Score(tt.citation, tt.candidate)
			if !almostEqual(conf, tt.wantConf) {
				t.Errorf("confidence = %v, want %v", conf, tt.wantConf)
			}
			if reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", reason, tt.wantReason)
			}
		})
	}
}

func TestScoreBounded(t *testing.T) {
	citations := []types.Citation{
		{PrimaryAuthor: "A", SecondAuthor: "B", ThirdAuthor: "C", Year: "2000"},
		{PrimaryAuthor: "Zzz", Year: "in press"},
		{},
	}
	candidates := []types.CandidateRecord{
		{Title: "T", Authors: []string{"A", "B", "C"}, Year: "2000", Container: "J", Pages: "1-2", DOI: "d", PMID: "p"},
		{},
		{Authors: []string{"Zzz"}, Year: "1999"},
	}
	for _, cit := range citations {
		for _, cand := range candidates {
			conf, _ := Score(cit, cand)
			if conf < 0 || conf > 1 {
				t.Errorf("Score(%+v, %+v) = %v, out of [0,1]", cit, cand, conf)
			}
		}
	}
}

func TestBestTieBreaking(t *testing.T) {
	order := []string{"crossref", "openalex", "pubmed"}

	t.Run("higher confidence wins", func(t *testing.T) {
		scored := []types.ScoredCandidate{
			{CandidateRecord: types.CandidateRecord{Title: "low", SourceProvider: "crossref"}, Confidence: 0.4},
			{CandidateRecord: types.CandidateRecord{Title: "high", SourceProvider: "pubmed"}, Confidence: 0.8},
		}
		best := Best(scored, order)
		if best == nil || best.Title != "high" {
			t.Fatalf("best = %+v", best)
		}
	})

	t.Run("identifier breaks confidence tie", func(t *testing.T) {
		scored := []types.ScoredCandidate{
			{CandidateRecord: types.CandidateRecord{Title: "bare", SourceProvider: "crossref"}, Confidence: 0.6},
			{CandidateRecord: types.CandidateRecord{Title: "with doi", DOI: "10.1/x", SourceProvider: "openalex"}, Confidence: 0.6},
		}
		best := Best(scored, order)
		if best == nil || best.Title != "with doi" {
			t.Fatalf("best = %+v", best)
		}
	})

	t.Run("provider order breaks remaining tie", func(t *testing.T) {
		scored := []types.ScoredCandidate{
			{CandidateRecord: types.CandidateRecord{Title: "from pubmed", DOI: "d", SourceProvider: "pubmed"}, Confidence: 0.6},
			{CandidateRecord: types.CandidateRecord{Title: "from crossref", DOI: "d", SourceProvider: "crossref"}, Confidence: 0.6},
		}
		best := Best(scored, order)
		if best == nil || best.Title != "from crossref" {
			t.Fatalf("best = %+v", best)
		}
	})

	t.Run("empty slate", func(t *testing.T) {
		if best := Best(nil, order); best != nil {
			t.Errorf("best = %+v, want nil", best)
		}
	})
}

func TestRank(t *testing.T) {
	citation := types.Citation{PrimaryAuthor: "Bandura", Year: "1977"}
	candidates := []types.CandidateRecord{
		{Title: "a", Authors: []string{"Bandura, A."}, Year: "1977", DOI: "10.1/a", SourceProvider: "crossref"},
		{Title: "b", Authors: []string{"Other, X."}, Year: "1990", SourceProvider: "openalex"},
	}
	scored := Rank(citation, candidates)
	if len(scored) != 2 {
		t.Fatalf("len = %d, want 2", len(scored))
	}
	if scored[0].Confidence <= scored[1].Confidence {
		t.Errorf("matching candidate did not outscore the mismatch: %v vs %v",
			scored[0].Confidence, scored[1].Confidence)
	}
	if scored[0].SourceProvider != "crossref" {
		t.Errorf("order changed: %q", scored[0].SourceProvider)
	}
}
