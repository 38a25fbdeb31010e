// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the cite-engine pipeline.
// Implements: prd001-extraction (Citation, R1.1-R1.3);
//
//	prd002-resolution (ResolutionResult, R4.1-R4.4);
//	prd003-scoring (ScoredCandidate);
//	prd005-providers (CandidateRecord).
//
// See docs/ARCHITECTURE.md § Data Structures.
package types

import "strings"

// Citation is one author-year citation occurrence detected in document text.
// Two occurrences with the same Key are the same citation and collapse to a
// single record before resolution (R1.3).
type Citation struct {
	// PrimaryAuthor is the first author surname, or a corporate author
	// string such as "American Psychological Association".
	PrimaryAuthor string `json:"primary_author" yaml:"primary_author"`

	// SecondAuthor and ThirdAuthor are retained for disambiguation when the
	// source text names them. Empty otherwise.
	SecondAuthor string `json:"second_author,omitempty" yaml:"second_author,omitempty"`
	ThirdAuthor  string `json:"third_author,omitempty" yaml:"third_author,omitempty"`

	// Year is a 4-digit year with optional letter suffix ("1997", "2001a"),
	// or one of the literals "n.d." and "in press".
	Year string `json:"year" yaml:"year"`

	// IsEtAl reports whether the citation abbreviates three or more authors,
	// either with an explicit "et al." or by listing them.
	IsEtAl bool `json:"is_et_al" yaml:"is_et_al"`

	// Page is the page locator if the citation carried one ("45", "12-14").
	Page string `json:"page,omitempty" yaml:"page,omitempty"`

	// RawText is the exact matched span from the document.
	RawText string `json:"raw_text" yaml:"raw_text"`
}

// Key returns the identity key "author|year" with the author lowercased.
// Citations sharing a key refer to the same work.
func (c Citation) Key() string {
	return strings.ToLower(strings.TrimSpace(c.PrimaryAuthor)) + "|" + strings.TrimSpace(c.Year)
}

// Query returns the free-provider search string: all known author surnames
// followed by the year (R2.2).
func (c Citation) Query() string {
	parts := []string{c.PrimaryAuthor}
	if c.SecondAuthor != "" {
		parts = append(parts, c.SecondAuthor)
	}
	if c.ThirdAuthor != "" {
		parts = append(parts, c.ThirdAuthor)
	}
	parts = append(parts, c.Year)
	return strings.Join(parts, " ")
}

// Label returns the human-readable form "Author (Year)" used in progress
// output and unresolved placeholders.
func (c Citation) Label() string {
	return c.PrimaryAuthor + " (" + c.Year + ")"
}
