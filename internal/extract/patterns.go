// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/cite-engine/pkg/types"
)

// Pattern components shared by the cascade rules (R1.1).
const (
	// namePat matches one author surname, including hyphenated and
	// accented forms ("Smith", "O'Brien", "Lévi-Strauss").
	namePat = `[A-Z\x{00C0}-\x{024F}][a-zA-Z\x{00C0}-\x{024F}'’-]+`

	// yearPat matches a 4-digit year with optional letter suffix, or the
	// literals "n.d." and "in press".
	yearPat = `(?:\d{4}[a-z]?|n\.d\.|in\s+press)`

	// pagePat matches a page locator and captures the number or range.
	pagePat = `pp?\.\s*(\d+(?:\s*[-–—]\s*\d+)?)`

	// corpPat matches a multi-word corporate author. Every repetition ends
	// on a capitalized word so a trailing connective never closes the name.
	corpPat = `[A-Z][A-Za-z]+(?:\s+(?:(?:of|for|and|the)\s+)?[A-Z][A-Za-z]+)+`
)

// multiCiteRe matches a parenthetical holding several semicolon-joined
// citations, e.g. "(Smith, 2000; Jones, 2001)".
var multiCiteRe = regexp.MustCompile(`\(([^()]*;[^()]+)\)`)

// rules is the closed, ordered cascade. Earlier rules claim their spans
// first; a parse function returning nil rejects the match without a claim.
var rules = []rule{
	{
		name: "two-author narrative",
		re:   regexp.MustCompile(`(` + namePat + `)\s+(?:&|and)\s+(` + namePat + `)\s*\((` + yearPat + `)\)`),
		parse: func(text string, m []int) []types.Citation {
			if isChainTail(text, m[0]) {
				return nil
			}
			return one(types.Citation{
				PrimaryAuthor: group(text, m, 1),
				SecondAuthor:  group(text, m, 2),
				Year:          group(text, m, 3),
				RawText:       text[m[0]:m[1]],
			})
		},
	},
	{
		name: "two-author parenthetical",
		re:   regexp.MustCompile(`\((` + namePat + `)\s*(?:&|and)\s*(` + namePat + `),?\s*(` + yearPat + `)(?:,?\s*` + pagePat + `)?\)`),
		parse: func(text string, m []int) []types.Citation {
			return one(types.Citation{
				PrimaryAuthor: group(text, m, 1),
				SecondAuthor:  group(text, m, 2),
				Year:          group(text, m, 3),
				Page:          group(text, m, 4),
				RawText:       text[m[0]:m[1]],
			})
		},
	},
	{
		name: "et al narrative",
		re:   regexp.MustCompile(`(` + namePat + `)\s+et\s+al\.?\s*\((` + yearPat + `)\)`),
		parse: func(text string, m []int) []types.Citation {
			return one(types.Citation{
				PrimaryAuthor: group(text, m, 1),
				Year:          group(text, m, 2),
				IsEtAl:        true,
				RawText:       text[m[0]:m[1]],
			})
		},
	},
	{
		name: "et al parenthetical",
		re:   regexp.MustCompile(`\((` + namePat + `)\s+et\s+al\.?,?\s*(` + yearPat + `)(?:,?\s*` + pagePat + `)?\)`),
		parse: func(text string, m []int) []types.Citation {
			return one(types.Citation{
				PrimaryAuthor: group(text, m, 1),
				Year:          group(text, m, 2),
				IsEtAl:        true,
				Page:          group(text, m, 3),
				RawText:       text[m[0]:m[1]],
			})
		},
	},
	{
		name: "single parenthetical",
		re:   regexp.MustCompile(`\((` + namePat + `)\s*,\s*(` + yearPat + `)(?:,?\s*` + pagePat + `)?\)`),
		parse: func(text string, m []int) []types.Citation {
			raw := text[m[0]:m[1]]
			lower := strings.ToLower(raw)
			// Multi-author shapes belong to other rules.
			if strings.Contains(lower, "et al") || strings.Contains(raw, "&") || strings.Contains(lower, " and ") {
				return nil
			}
			return one(types.Citation{
				PrimaryAuthor: group(text, m, 1),
				Year:          group(text, m, 2),
				Page:          group(text, m, 3),
				RawText:       raw,
			})
		},
	},
	{
		name: "single narrative",
		re:   regexp.MustCompile(`(` + namePat + `)\s+\((` + yearPat + `)\)`),
		parse: func(text string, m []int) []types.Citation {
			name := group(text, m, 1)
			// Possessive and chain-tail shapes belong to later rules.
			if trimPossessive(name) != name {
				return nil
			}
			if isChainTail(text, m[0]) {
				return nil
			}
			return one(types.Citation{
				PrimaryAuthor: name,
				Year:          group(text, m, 2),
				RawText:       text[m[0]:m[1]],
			})
		},
	},
	{
		name: "narrative with page",
		re:   regexp.MustCompile(`(` + namePat + `)\s+\((` + yearPat + `),\s*` + pagePat + `\)`),
		parse: func(text string, m []int) []types.Citation {
			if isChainTail(text, m[0]) {
				return nil
			}
			return one(types.Citation{
				PrimaryAuthor: trimPossessive(group(text, m, 1)),
				Year:          group(text, m, 2),
				Page:          group(text, m, 3),
				RawText:       text[m[0]:m[1]],
			})
		},
	},
	{
		name: "multi-author parenthetical",
		re: regexp.MustCompile(`\((` + namePat + `(?:\s*,\s*` + namePat + `)+\s*,?\s*(?:&|and)\s*` + namePat +
			`)\s*,\s*(` + yearPat + `)(?:,?\s*` + pagePat + `)?\)`),
		parse: func(text string, m []int) []types.Citation {
			names := splitNames(group(text, m, 1))
			if len(names) < 3 {
				return nil
			}
			return one(types.Citation{
				PrimaryAuthor: names[0],
				SecondAuthor:  names[1],
				ThirdAuthor:   names[2],
				Year:          group(text, m, 2),
				IsEtAl:        true,
				Page:          group(text, m, 3),
				RawText:       text[m[0]:m[1]],
			})
		},
	},
	{
		name: "multi-author narrative",
		re: regexp.MustCompile(`(` + namePat + `(?:\s*,\s*` + namePat + `)+\s*,?\s*and\s+` + namePat +
			`)\s*\((` + yearPat + `)\)`),
		parse: func(text string, m []int) []types.Citation {
			names := splitNames(group(text, m, 1))
			if len(names) < 3 {
				return nil
			}
			return one(types.Citation{
				PrimaryAuthor: names[0],
				SecondAuthor:  names[1],
				ThirdAuthor:   names[2],
				Year:          group(text, m, 2),
				IsEtAl:        true,
				RawText:       text[m[0]:m[1]],
			})
		},
	},
	{
		name: "possessive narrative",
		re:   regexp.MustCompile(`(` + namePat + `)['’]s\s*\((` + yearPat + `)\)`),
		parse: func(text string, m []int) []types.Citation {
			return one(types.Citation{
				PrimaryAuthor: group(text, m, 1),
				Year:          group(text, m, 2),
				RawText:       text[m[0]:m[1]],
			})
		},
	},
	{
		name: "multi-year parenthetical",
		re:   regexp.MustCompile(`\((` + namePat + `)\s*,\s*(` + yearPat + `(?:\s*,\s*` + yearPat + `)+)\)`),
		parse: func(text string, m []int) []types.Citation {
			// One citation per year, all sharing the author (R1.4).
			author := group(text, m, 1)
			raw := text[m[0]:m[1]]
			years := yearListRe.FindAllString(group(text, m, 2), -1)
			out := make([]types.Citation, 0, len(years))
			for _, year := range years {
				out = append(out, types.Citation{
					PrimaryAuthor: author,
					Year:          year,
					RawText:       raw,
				})
			}
			return out
		},
	},
	{
		name: "prefixed parenthetical",
		re:   regexp.MustCompile(`\((?i:see|cf\.?|e\.g\.,?|also)\s+([^();]+)\)`),
		parse: func(text string, m []int) []types.Citation {
			return parseSegment(strings.TrimSpace(group(text, m, 1)), text[m[0]:m[1]])
		},
	},
	{
		name: "corporate parenthetical",
		re:   regexp.MustCompile(`\((` + corpPat + `)\s*,\s*(` + yearPat + `)\)`),
		parse: func(text string, m []int) []types.Citation {
			return one(types.Citation{
				PrimaryAuthor: trimArticle(group(text, m, 1)),
				Year:          group(text, m, 2),
				RawText:       text[m[0]:m[1]],
			})
		},
	},
	{
		name: "corporate narrative",
		re:   regexp.MustCompile(`(` + corpPat + `)\s+\((` + yearPat + `)\)`),
		parse: func(text string, m []int) []types.Citation {
			return one(types.Citation{
				PrimaryAuthor: trimArticle(group(text, m, 1)),
				Year:          group(text, m, 2),
				RawText:       text[m[0]:m[1]],
			})
		},
	},
	{
		name: "trigger-word narrative",
		re: regexp.MustCompile(`(?i:\b(?:textbook|book|article|study|chapter|report|paper|monograph))\s+(?:by\s+)?(` +
			namePat + `(?:\s*,\s*` + namePat + `)*(?:\s*,?\s*(?:&|and)\s+` + namePat + `)?)(?:\s*\((` + yearPat + `)\)|,\s*(` + yearPat + `))`),
		parse: func(text string, m []int) []types.Citation {
			names := splitNames(group(text, m, 1))
			if len(names) == 0 {
				return nil
			}
			year := group(text, m, 2)
			if year == "" {
				year = group(text, m, 3)
			}
			c := types.Citation{
				PrimaryAuthor: names[0],
				Year:          year,
				RawText:       text[m[0]:m[1]],
			}
			if len(names) >= 2 {
				c.SecondAuthor = names[1]
			}
			if len(names) >= 3 {
				c.ThirdAuthor = names[2]
				c.IsEtAl = true
			}
			return one(c)
		},
	},
}

// nameSplitRe separates an author chain on commas and conjunctions.
var nameSplitRe = regexp.MustCompile(`\s*(?:,|&|\band\b)\s*`)

// one wraps a single citation for a parse return value.
func one(c types.Citation) []types.Citation {
	return []types.Citation{c}
}

// group returns capture group i of a submatch-index result, or "" when the
// group did not participate in the match.
func group(text string, m []int, i int) string {
	if 2*i+1 >= len(m) || m[2*i] < 0 {
		return ""
	}
	return text[m[2*i]:m[2*i+1]]
}

// splitNames breaks an author chain like "Annin, Boring, & Watson" into
// individual surnames, dropping connectives and empty parts.
func splitNames(chain string) []string {
	var names []string
	for _, part := range nameSplitRe.Split(chain, -1) {
		part = strings.TrimSpace(part)
		if part != "" && startsUpper(part) {
			names = append(names, part)
		}
	}
	return names
}

// trimPossessive removes a trailing possessive marker from a surname.
func trimPossessive(name string) string {
	if s := strings.TrimSuffix(name, "'s"); s != name {
		return s
	}
	return strings.TrimSuffix(name, "’s")
}

// trimArticle removes a leading "The" from a corporate author name.
func trimArticle(name string) string {
	return strings.TrimPrefix(name, "The ")
}

// isChainTail reports whether the text immediately before a match looks
// like the tail of a longer author chain or multi-word entity. Such
// matches are rejected so a lower-priority rule can claim the full span.
func isChainTail(text string, start int) bool {
	prev, prevStart := prevToken(text, start)
	if prev == "" {
		return false
	}
	if strings.EqualFold(prev, "and") || prev == "&" {
		before, _ := prevToken(text, prevStart)
		before = strings.TrimRight(before, ",")
		return startsUpper(before)
	}
	// Sentence or clause boundary: the previous word is complete.
	if strings.ContainsAny(prev[len(prev)-1:], `.,;:!?)"`) {
		return false
	}
	return startsUpper(prev)
}

// prevToken returns the whitespace-delimited token ending just before pos
// and the offset where that token starts.
func prevToken(text string, pos int) (string, int) {
	end := pos
	for end > 0 && isSpaceByte(text[end-1]) {
		end--
	}
	start := end
	for start > 0 && !isSpaceByte(text[start-1]) {
		start--
	}
	return text[start:end], start
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
