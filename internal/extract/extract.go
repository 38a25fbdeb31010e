// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract detects author-year citations in document text.
// extract.go runs the ordered pattern cascade with span-claim bookkeeping.
// Implements: prd001-extraction (R1, R2);
//
//	docs/ARCHITECTURE § Extraction.
package extract

import (
	"regexp"
	"strings"

	"github.com/pdiddy/cite-engine/pkg/types"
)

// span is a half-open character interval [start, end) in the source text.
type span struct{ start, end int }

// spanSet tracks which character ranges have been claimed by a pattern.
// A claimed span is exclusive: no lower-priority pattern may re-match any
// part of it (R1.2).
type spanSet struct {
	claimed []span
}

// claim marks [start, end) as matched. It returns false without claiming
// when the interval overlaps an already-claimed span.
func (s *spanSet) claim(start, end int) bool {
	for _, c := range s.claimed {
		if start < c.end && end > c.start {
			return false
		}
	}
	s.claimed = append(s.claimed, span{start, end})
	return true
}

// rule is one variant in the pattern cascade. parse may return nil to
// reject a match without claiming its span, leaving it open for a
// lower-priority rule.
type rule struct {
	name  string
	re    *regexp.Regexp
	parse func(text string, m []int) []types.Citation
}

// Extract scans text and returns every citation occurrence, walking the
// pattern cascade in priority order. Re-running on the same text yields
// the same sequence. The result may contain repeated mentions of the same
// work; Unique collapses them.
func Extract(text string) []types.Citation {
	if text == "" {
		return nil
	}

	var out []types.Citation
	spans := &spanSet{}

	// Semicolon-joined multi-citation parentheticals run before every
	// single-citation rule so their sub-spans are never double-matched.
	for _, m := range multiCiteRe.FindAllStringSubmatchIndex(text, -1) {
		if !spans.claim(m[0], m[1]) {
			continue
		}
		raw := text[m[0]:m[1]]
		inner := text[m[2]:m[3]]
		for _, seg := range strings.Split(inner, ";") {
			out = append(out, parseSegment(strings.TrimSpace(seg), raw)...)
		}
	}

	for _, r := range rules {
		for _, m := range r.re.FindAllStringSubmatchIndex(text, -1) {
			cits := r.parse(text, m)
			if len(cits) == 0 {
				continue
			}
			if !spans.claim(m[0], m[1]) {
				continue
			}
			out = append(out, cits...)
		}
	}

	return out
}

// Unique collapses repeated mentions of the same work, keeping the first
// occurrence of each identity key (R1.3). The returned sequence is the
// one handed to the resolver.
func Unique(citations []types.Citation) []types.Citation {
	seen := make(map[string]bool, len(citations))
	var unique []types.Citation
	for _, c := range citations {
		key := c.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, c)
	}
	return unique
}

// ExtractUnique is the extract-then-dedupe convenience used by the CLI.
func ExtractUnique(text string) []types.Citation {
	return Unique(Extract(text))
}
