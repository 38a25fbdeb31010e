// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cite-engine/pkg/types"
)

// Report summarizes a resolution run over one document.
type Report struct {
	Source  string                   `json:"source" yaml:"source"`
	Found   int                      `json:"found" yaml:"found"`
	Failed  int                      `json:"failed" yaml:"failed"`
	Results []types.ResolutionResult `json:"results" yaml:"results"`
}

// BuildReport assembles a report from a batch result map. Entries are
// ordered alphabetically by identity key so output is stable across
// runs.
func BuildReport(source string, results map[string]types.ResolutionResult) Report {
	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	report := Report{Source: source}
	for _, k := range keys {
		r := results[k]
		if r.Resolved {
			report.Found++
		} else {
			report.Failed++
		}
		report.Results = append(report.Results, r)
	}
	return report
}

// ReferenceLine renders one result as a plain reference string, or a
// bracketed placeholder the author can search for in the output.
func ReferenceLine(r types.ResolutionResult) string {
	if !r.Resolved || r.Best == nil {
		return fmt.Sprintf("[NOT FOUND: %s, %s]", r.Citation.PrimaryAuthor, r.Citation.Year)
	}

	rec := r.Best.CandidateRecord
	var b strings.Builder
	if len(rec.Authors) > 0 {
		b.WriteString(strings.Join(rec.Authors, "; "))
	} else {
		b.WriteString(r.Citation.PrimaryAuthor)
	}
	fmt.Fprintf(&b, " (%s). %s.", yearDigits(rec.Year), rec.Title)
	if rec.Container != "" {
		fmt.Fprintf(&b, " %s.", rec.Container)
	}
	if rec.DOI != "" {
		fmt.Fprintf(&b, " https://doi.org/%s", rec.DOI)
	}
	return b.String()
}

// FormatTable writes the report as aligned text lines.
func (rep Report) FormatTable(w io.Writer) error {
	for _, r := range rep.Results {
		status := "FOUND "
		conf := ""
		if r.Resolved && r.Best != nil {
			conf = fmt.Sprintf(" (%.2f via %s)", r.Best.Confidence, r.Best.SourceProvider)
		} else {
			status = "FAILED"
		}
		if _, err := fmt.Fprintf(w, "%s  %-30s %s%s\n", status, r.Citation.Label(), ReferenceLine(r), conf); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\nfound: %d, failed: %d\n", rep.Found, rep.Failed)
	return err
}

// FormatJSON writes the report as indented JSON.
func (rep Report) FormatJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// FormatYAML writes the report as YAML.
func (rep Report) FormatYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(rep)
}
