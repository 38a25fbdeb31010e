// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify corroborates AI citation guesses against bibliographic
// databases. A guess is only trusted once a real provider returns a
// record that matches the original citation text, which blocks both
// hallucinated works and misattributed real works from entering
// resolution results.
// Implements: prd004-verification (R1, R2).
package verify

import (
	"context"
	"regexp"
	"strings"

	"github.com/pdiddy/cite-engine/internal/guess"
	"github.com/pdiddy/cite-engine/internal/provider"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// maxQueries bounds the targeted searches per guess so verification
// cost stays predictable.
const maxQueries = 3

// titleKeywordLimit caps how many title tokens go into the first
// targeted query.
const titleKeywordLimit = 6

// Verifier checks guesses against a chain of bibliographic providers.
type Verifier struct {
	Chain []provider.Provider
}

// New returns a verifier over the given provider chain.
func New(chain []provider.Provider) *Verifier {
	return &Verifier{Chain: chain}
}

// Verify looks for independent evidence that the guess identifies the
// cited work. Every retrieved record is matched against the original
// citation text, never against the guess itself: a guess naming a real
// but unrelated work must fail here just like a fabricated one.
// Identifier lookups run first because they are exact; failing that, up
// to three targeted queries run against each provider in order. Returns
// the corroborating provider record, or nil when no database confirms
// the guess. Provider errors are swallowed: an unreachable database is
// absence of evidence, not evidence of absence, and the caller decides
// what to do with an unverified guess.
func (v *Verifier) Verify(ctx context.Context, citation types.Citation, g *guess.Guess) *types.CandidateRecord {
	if g == nil || g.Title == "" {
		return nil
	}
	fragment := citation.RawText
	if fragment == "" {
		fragment = citation.Query()
	}

	for _, p := range v.Chain {
		id := lookupID(p.ID(), g)
		if id == "" {
			continue
		}
		rec, err := p.GetByID(ctx, id)
		if err != nil || rec == nil {
			continue
		}
		if Matches(fragment, rec) {
			return rec
		}
	}

	for _, q := range targetedQueries(g) {
		for _, p := range v.Chain {
			rec, err := p.Search(ctx, q)
			if err != nil || rec == nil {
				continue
			}
			if Matches(fragment, rec) {
				return rec
			}
		}
	}
	return nil
}

// lookupID maps a guess's identifiers onto the form each provider's
// GetByID expects. Providers without a usable identifier return "".
func lookupID(pid provider.ID, g *guess.Guess) string {
	switch pid {
	case provider.Crossref, provider.OpenAlex:
		return g.DOI
	case provider.SemanticScholar:
		if g.DOI != "" {
			return "DOI:" + g.DOI
		}
	case provider.PubMed:
		return g.PMID
	}
	return ""
}

// targetedQueries builds up to maxQueries distinct searches for a
// guess: title keywords plus the first author's surname, the full
// title, and the model's own suggested query.
func targetedQueries(g *guess.Guess) []string {
	var queries []string
	seen := make(map[string]bool)
	add := func(q string) {
		q = strings.TrimSpace(q)
		if q == "" || seen[q] || len(queries) >= maxQueries {
			return
		}
		seen[q] = true
		queries = append(queries, q)
	}

	keywords := titleKeywords(g.Title)
	if len(g.Authors) > 0 {
		if s := surname(g.Authors[0]); s != "" {
			keywords = append(keywords, s)
		}
	}
	add(strings.Join(keywords, " "))
	add(g.Title)
	add(g.SearchQuery)
	return queries
}

// titleKeywords returns the informative tokens of a title, capped at
// titleKeywordLimit.
func titleKeywords(title string) []string {
	tokens := tokenize(title)
	if len(tokens) > titleKeywordLimit {
		tokens = tokens[:titleKeywordLimit]
	}
	return tokens
}

// surname extracts the family name from an author string in either
// "Family, Given" or "Given Family" form.
func surname(author string) string {
	author = strings.TrimSpace(author)
	if i := strings.Index(author, ","); i > 0 {
		return strings.TrimSpace(author[:i])
	}
	parts := strings.Fields(author)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

var yearRe = regexp.MustCompile(`\b(\d{4})\b`)

// Matches reports whether a candidate record corroborates the original
// citation fragment. The fragment's informative tokens must appear in
// the candidate's title and author text, and when the fragment carries
// a 4-digit year the candidate's year must agree exactly. Short
// fragments require every token; longer ones require at least two. A
// fragment offering neither tokens nor a year cannot corroborate
// anything.
func Matches(fragment string, candidate *types.CandidateRecord) bool {
	if candidate == nil {
		return false
	}

	tokens := tokenize(fragment)
	year := yearRe.FindString(fragment)
	if len(tokens) == 0 && year == "" {
		return false
	}

	if len(tokens) > 0 {
		required := len(tokens)
		if required > 2 {
			required = 2
		}
		haystack := candidateTokens(candidate)
		var hits int
		for _, tok := range tokens {
			if haystack[tok] {
				hits++
			}
		}
		if hits < required {
			return false
		}
	}

	if year != "" && yearRe.FindString(candidate.Year) != year {
		return false
	}
	return true
}

// candidateTokens builds the token set of a candidate's title and
// authors.
func candidateTokens(c *types.CandidateRecord) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range tokenize(c.Title) {
		set[tok] = true
	}
	for _, a := range c.Authors {
		for _, tok := range tokenize(a) {
			set[tok] = true
		}
	}
	return set
}

// stopWords are tokens too common to count as evidence of a match.
// "et" and "al" are included so citation fragments like "Smith et al."
// only demand the surname.
var stopWords = map[string]bool{
	"a": true, "al": true, "an": true, "and": true, "are": true,
	"as": true, "at": true, "be": true, "by": true, "et": true,
	"for": true, "from": true, "in": true, "is": true, "it": true,
	"of": true, "on": true, "or": true, "the": true, "to": true,
	"with": true,
}

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// tokenize lowercases text and splits it into informative tokens,
// dropping stop words and bare numerals.
func tokenize(text string) []string {
	var tokens []string
	for _, tok := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		if stopWords[tok] {
			continue
		}
		if isNumeral(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func isNumeral(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
