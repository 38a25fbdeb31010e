// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"

	"github.com/pdiddy/cite-engine/pkg/types"
)

// Segment-level patterns for citations inside multi-citation and prefixed
// parentheticals.
var (
	// segPrefixRe strips leading discourse markers ("see Smith, 2020").
	segPrefixRe = regexp.MustCompile(`^(?i:see|e\.g\.,?|cf\.?|also)\s+`)

	// segTrailerRe strips trailing prose ("Smith, 2020 for a review").
	segTrailerRe = regexp.MustCompile(`(?i)\s+for\s+.*$`)

	// segMultiYearRe matches an author followed only by comma-separated years.
	segMultiYearRe = regexp.MustCompile(`^(` + namePat + `)\s*,\s*((?:\d{4}[a-z]?(?:\s*,\s*)?)+)$`)

	// segYearRe anchors the year at the end of a segment.
	segYearRe = regexp.MustCompile(`,?\s*(\d{4}[a-z]?|n\.d\.|in\s+press)\s*$`)

	// yearListRe finds every year in a multi-year list.
	yearListRe = regexp.MustCompile(`\d{4}[a-z]?|n\.d\.|in\s+press`)

	etAlSegRe   = regexp.MustCompile(`(?i)\s*et\s+al\.?`)
	andWordRe   = regexp.MustCompile(`(?i)\band\b`)
	firstNameRe = regexp.MustCompile(`^` + namePat)
)

// parseSegment parses one citation segment from a multi-citation or
// prefixed parenthetical, e.g. "Annin, Boring, & Watson, 1968". A
// multi-year segment expands into one citation per year. Segments that
// satisfy no shape are silently skipped (R1.5).
func parseSegment(segment, raw string) []types.Citation {
	segment = segPrefixRe.ReplaceAllString(strings.TrimSpace(segment), "")
	segment = segTrailerRe.ReplaceAllString(segment, "")
	if segment == "" {
		return nil
	}

	// Multi-year same-author: "Simonton, 1992, 2000, 2002".
	if m := segMultiYearRe.FindStringSubmatch(segment); m != nil {
		years := yearListRe.FindAllString(m[2], -1)
		if len(years) > 1 {
			out := make([]types.Citation, 0, len(years))
			for _, year := range years {
				out = append(out, types.Citation{
					PrimaryAuthor: m[1],
					Year:          year,
					RawText:       raw,
				})
			}
			return out
		}
	}

	ym := segYearRe.FindStringSubmatchIndex(segment)
	if ym == nil {
		return nil
	}
	year := segment[ym[2]:ym[3]]
	authorPart := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(segment[:ym[0]]), ","))
	if authorPart == "" {
		return nil
	}

	// Explicit "et al." keeps the first author only.
	if etAlSegRe.MatchString(authorPart) {
		stripped := strings.TrimSpace(etAlSegRe.ReplaceAllString(authorPart, ""))
		if name := firstNameRe.FindString(stripped); name != "" {
			return one(types.Citation{
				PrimaryAuthor: name,
				Year:          year,
				IsEtAl:        true,
				RawText:       raw,
			})
		}
		return nil
	}

	// Conjoined author lists: two authors keep both, three or more keep
	// the first three and imply et al.
	if strings.Contains(authorPart, "&") || andWordRe.MatchString(authorPart) {
		names := splitNames(authorPart)
		switch {
		case len(names) >= 3:
			return one(types.Citation{
				PrimaryAuthor: names[0],
				SecondAuthor:  names[1],
				ThirdAuthor:   names[2],
				Year:          year,
				IsEtAl:        true,
				RawText:       raw,
			})
		case len(names) == 2:
			return one(types.Citation{
				PrimaryAuthor: names[0],
				SecondAuthor:  names[1],
				Year:          year,
				RawText:       raw,
			})
		case len(names) == 1:
			return one(types.Citation{
				PrimaryAuthor: names[0],
				Year:          year,
				RawText:       raw,
			})
		}
		return nil
	}

	// Simple single author.
	if name := firstNameRe.FindString(authorPart); name != "" {
		return one(types.Citation{
			PrimaryAuthor: name,
			Year:          year,
			RawText:       raw,
		})
	}
	return nil
}
