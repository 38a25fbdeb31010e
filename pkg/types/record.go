// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CandidateRecord is a bibliographic answer from one provider for one query.
// Per prd005-providers R1.2: title, authors, year, container, locator fields,
// persistent identifiers, and the provider that produced it.
type CandidateRecord struct {
	// Title is the full title of the work.
	Title string `json:"title" yaml:"title"`

	// Authors lists author names in source order ("Bandura, Albert" or
	// "Albert Bandura", whichever the provider returns).
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year as a string ("1977").
	Year string `json:"year" yaml:"year"`

	// Container is the journal name for articles or the publisher for books.
	Container string `json:"container,omitempty" yaml:"container,omitempty"`

	// Volume, Issue, and Pages locate the work within its container.
	Volume string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue  string `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages  string `json:"pages,omitempty" yaml:"pages,omitempty"`

	// DOI and PMID are persistent identifiers when the provider knows them.
	DOI  string `json:"doi,omitempty" yaml:"doi,omitempty"`
	PMID string `json:"pmid,omitempty" yaml:"pmid,omitempty"`

	// SourceProvider identifies which provider produced this record
	// (e.g. "crossref", "claude+openalex", "openai (unverified)").
	SourceProvider string `json:"source_provider" yaml:"source_provider"`
}

// HasIdentifier reports whether the record carries a persistent identifier.
func (r CandidateRecord) HasIdentifier() bool {
	return r.DOI != "" || r.PMID != ""
}

// ScoredCandidate is a CandidateRecord ranked against the original citation
// signals. Confidence is always within [0,1].
type ScoredCandidate struct {
	CandidateRecord `yaml:",inline"`

	// Confidence is the match confidence in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// MatchReason explains why this candidate was chosen
	// (e.g. "crossref author+year match").
	MatchReason string `json:"match_reason" yaml:"match_reason"`

	// Verified reports whether the record was corroborated against an
	// independently retrieved record (always true for free-provider results,
	// true for AI guesses only after verification).
	Verified bool `json:"verified" yaml:"verified"`
}

// UnresolvedReason explains why a citation could not be resolved.
type UnresolvedReason string

const (
	// ReasonNone is the zero value, present on resolved results.
	ReasonNone UnresolvedReason = ""

	// ReasonNoMatch means every tier was exhausted without a match.
	ReasonNoMatch UnresolvedReason = "no_match_found"

	// ReasonNoYear means the citation has no searchable year ("n.d.",
	// "in press"), so author-year resolution never started.
	ReasonNoYear UnresolvedReason = "no_searchable_year"
)

// ResolutionResult is the terminal outcome of resolving one citation: either
// a scored candidate or an unresolved reason. Unresolved is a legitimate
// outcome, not an error (R4.4).
type ResolutionResult struct {
	// Citation is the citation this result answers.
	Citation Citation `json:"citation" yaml:"citation"`

	// Resolved reports whether a candidate was found.
	Resolved bool `json:"resolved" yaml:"resolved"`

	// Best is the winning candidate when Resolved is true, nil otherwise.
	Best *ScoredCandidate `json:"best,omitempty" yaml:"best,omitempty"`

	// Reason is set when Resolved is false.
	Reason UnresolvedReason `json:"reason,omitempty" yaml:"reason,omitempty"`
}
