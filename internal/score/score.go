// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score assigns confidence to candidate bibliographic records.
// Scoring is pure and deterministic: the same citation and candidate
// always produce the same confidence, so resolution decisions are
// reproducible across runs.
// Implements: prd003-scoring (R1, R2).
package score

import (
	"strconv"
	"strings"

	"github.com/pdiddy/cite-engine/pkg/types"
)

// Signal weights. Author and year agreement dominate; identifiers and
// metadata completeness act as smaller corroborating signals.
const (
	weightYearExact    = 0.30
	weightYearAdjacent = 0.20
	weightPrimary      = 0.30
	weightSecond       = 0.15
	weightThird        = 0.10
	weightIdentifier   = 0.15
	weightCompleteness = 0.05
	penaltyNoID        = 0.05
)

// Score rates how well candidate matches the citation, returning a
// confidence in [0, 1] and a short reason string listing the signals
// that fired.
func Score(citation types.Citation, candidate types.CandidateRecord) (float64, string) {
	var conf float64
	var reasons []string

	switch yearAgreement(citation.Year, candidate.Year) {
	case yearExact:
		conf += weightYearExact
		reasons = append(reasons, "year")
	case yearAdjacent:
		conf += weightYearAdjacent
		reasons = append(reasons, "year±1")
	}

	if authorListed(citation.PrimaryAuthor, candidate.Authors) {
		conf += weightPrimary
		reasons = append(reasons, "primary_author")
	}
	if authorListed(citation.SecondAuthor, candidate.Authors) {
		conf += weightSecond
		reasons = append(reasons, "second_author")
	}
	if authorListed(citation.ThirdAuthor, candidate.Authors) {
		conf += weightThird
		reasons = append(reasons, "third_author")
	}

	if candidate.HasIdentifier() {
		conf += weightIdentifier
		reasons = append(reasons, "identifier")
	} else {
		conf -= penaltyNoID
	}

	for _, field := range []string{candidate.Title, candidate.Container, candidate.Pages} {
		if field != "" {
			conf += weightCompleteness
		}
	}

	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return conf, strings.Join(reasons, "+")
}

// Rank scores every candidate and returns them as scored candidates in
// their original order. providerPriority maps a provider name to its
// position in the configured chain; lower is more trusted.
func Rank(citation types.Citation, candidates []types.CandidateRecord) []types.ScoredCandidate {
	scored := make([]types.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		conf, reason := Score(citation, c)
		scored = append(scored, types.ScoredCandidate{
			CandidateRecord: c,
			Confidence:      conf,
			MatchReason:     reason,
		})
	}
	return scored
}

// Best picks the highest-confidence candidate. Ties go first to the
// candidate with a persistent identifier, then to the provider that
// appears earlier in providerOrder. Returns nil for an empty slate.
func Best(scored []types.ScoredCandidate, providerOrder []string) *types.ScoredCandidate {
	var best *types.ScoredCandidate
	for i := range scored {
		c := &scored[i]
		if best == nil || beats(c, best, providerOrder) {
			best = c
		}
	}
	return best
}

func beats(a, b *types.ScoredCandidate, providerOrder []string) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.HasIdentifier() != b.HasIdentifier() {
		return a.HasIdentifier()
	}
	return providerRank(a.SourceProvider, providerOrder) < providerRank(b.SourceProvider, providerOrder)
}

// providerRank returns the position of provider in order, or len(order)
// for providers outside the configured chain.
func providerRank(provider string, order []string) int {
	for i, name := range order {
		if name == provider {
			return i
		}
	}
	return len(order)
}

type yearMatch int

const (
	yearNone yearMatch = iota
	yearAdjacent
	yearExact
)

// yearAgreement compares citation and candidate years. Citation years
// can carry a disambiguation suffix ("2019b") which is ignored for
// comparison. Non-numeric years ("n.d.", "in press") never match.
func yearAgreement(citationYear, candidateYear string) yearMatch {
	cy, ok := numericYear(citationYear)
	if !ok {
		return yearNone
	}
	ry, ok := numericYear(candidateYear)
	if !ok {
		return yearNone
	}
	switch {
	case cy == ry:
		return yearExact
	case cy-ry == 1 || ry-cy == 1:
		return yearAdjacent
	}
	return yearNone
}

func numericYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) >= 4 {
		if n, err := strconv.Atoi(s[:4]); err == nil {
			return n, true
		}
	}
	return 0, false
}

// authorListed reports whether surname appears in any of the candidate's
// author strings, case-insensitively. Provider author formats vary
// ("Family, Given", "Given Family", bare surnames), so a substring check
// is the common denominator.
func authorListed(surname string, authors []string) bool {
	if surname == "" {
		return false
	}
	needle := strings.ToLower(surname)
	for _, a := range authors {
		if strings.Contains(strings.ToLower(a), needle) {
			return true
		}
	}
	return false
}
