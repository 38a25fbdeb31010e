// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/cite-engine/pkg/types"
)

// CSLItem represents a resolved work in CSL (Citation Style Language)
// JSON format, consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Author         []CSLName `json:"author,omitempty"`
	ContainerTitle string    `json:"container-title,omitempty"`
	Volume         string    `json:"volume,omitempty"`
	Issue          string    `json:"issue,omitempty"`
	Page           string    `json:"page,omitempty"`
	Issued         *CSLDate  `json:"issued,omitempty"`
	DOI            string    `json:"DOI,omitempty"`
	PMID           string    `json:"PMID,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `json:"family,omitempty"`
	Given   string `json:"given,omitempty"`
	Literal string `json:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `json:"date-parts"`
}

// FormatCSL writes the resolved entries of results as a CSL-JSON array
// to w, in the order given. Unresolved entries are skipped; they have
// no record to export.
func FormatCSL(results []types.ResolutionResult, w io.Writer) error {
	items := make([]CSLItem, 0, len(results))
	for _, r := range results {
		if !r.Resolved || r.Best == nil {
			continue
		}
		items = append(items, toCSLItem(r))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// toCSLItem converts one resolved citation to a CSLItem. The item ID is
// the DOI when present, otherwise the citation identity key.
func toCSLItem(r types.ResolutionResult) CSLItem {
	rec := r.Best.CandidateRecord
	item := CSLItem{
		ID:             rec.DOI,
		Type:           "article-journal",
		Title:          rec.Title,
		ContainerTitle: rec.Container,
		Volume:         rec.Volume,
		Issue:          rec.Issue,
		Page:           rec.Pages,
		DOI:            rec.DOI,
		PMID:           rec.PMID,
	}
	if item.ID == "" {
		item.ID = r.Citation.Key()
	}

	for _, a := range rec.Authors {
		item.Author = append(item.Author, parseAuthorName(a))
	}

	if y, err := strconv.Atoi(yearDigits(rec.Year)); err == nil {
		item.Issued = &CSLDate{DateParts: [][]int{{y}}}
	}
	return item
}

// parseAuthorName splits an author string into CSL family/given parts.
// "Family, Given" splits on the comma; "Given Family" splits on the
// last space; single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	if i := strings.Index(name, ","); i > 0 {
		return CSLName{
			Family: strings.TrimSpace(name[:i]),
			Given:  strings.TrimSpace(name[i+1:]),
		}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}

func yearDigits(year string) string {
	if len(year) >= 4 {
		return year[:4]
	}
	return year
}
