// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pdiddy/cite-engine/pkg/types"
)

func sampleResults() map[string]types.ResolutionResult {
	return map[string]types.ResolutionResult{
		"bandura|1977": {
			Citation: types.Citation{PrimaryAuthor: "Bandura", Year: "1977"},
			Resolved: true,
			Best: &types.ScoredCandidate{
				CandidateRecord: types.CandidateRecord{
					Title:          "Self-efficacy: Toward a unifying theory of behavioral change",
					Authors:        []string{"Bandura, Albert"},
					Year:           "1977",
					Container:      "Psychological Review",
					Volume:         "84",
					Issue:          "2",
					Pages:          "191-215",
					DOI:            "10.1037/0033-295x.84.2.191",
					SourceProvider: "crossref",
				},
				Confidence:  0.9,
				MatchReason: "year+primary_author+identifier",
			},
		},
		"nobody|1999": {
			Citation: types.Citation{PrimaryAuthor: "Nobody", Year: "1999"},
			Reason:   types.ReasonNoMatch,
		},
	}
}

func TestBuildReport(t *testing.T) {
	rep := BuildReport("draft.txt", sampleResults())
	if rep.Found != 1 || rep.Failed != 1 {
		t.Errorf("found=%d failed=%d", rep.Found, rep.Failed)
	}
	if len(rep.Results) != 2 {
		t.Fatalf("results = %d", len(rep.Results))
	}
	// Ordered by identity key.
	if rep.Results[0].Citation.PrimaryAuthor != "Bandura" {
		t.Errorf("first result = %+v", rep.Results[0].Citation)
	}
}

func TestReferenceLine(t *testing.T) {
	results := sampleResults()

	line := ReferenceLine(results["bandura|1977"])
	for _, want := range []string{
		"Bandura, Albert (1977).",
		"Self-efficacy",
		"Psychological Review.",
		"https://doi.org/10.1037/0033-295x.84.2.191",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}

	placeholder := ReferenceLine(results["nobody|1999"])
	if placeholder != "[NOT FOUND: Nobody, 1999]" {
		t.Errorf("placeholder = %q", placeholder)
	}
}

func TestFormatTable(t *testing.T) {
	rep := BuildReport("draft.txt", sampleResults())
	var buf bytes.Buffer
	if err := rep.FormatTable(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "FOUND") || !strings.Contains(out, "FAILED") {
		t.Errorf("table output:\n%s", out)
	}
	if !strings.Contains(out, "found: 1, failed: 1") {
		t.Errorf("summary line missing:\n%s", out)
	}
}

func TestFormatJSONRoundTrip(t *testing.T) {
	rep := BuildReport("draft.txt", sampleResults())
	var buf bytes.Buffer
	if err := rep.FormatJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Source != "draft.txt" || decoded.Found != 1 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestFormatCSL(t *testing.T) {
	rep := BuildReport("draft.txt", sampleResults())
	var buf bytes.Buffer
	if err := FormatCSL(rep.Results, &buf); err != nil {
		t.Fatal(err)
	}

	var items []CSLItem
	if err := json.Unmarshal(buf.Bytes(), &items); err != nil {
		t.Fatal(err)
	}
	// Unresolved entries are skipped.
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}

	item := items[0]
	if item.ID != "10.1037/0033-295x.84.2.191" {
		t.Errorf("id = %q", item.ID)
	}
	if item.ContainerTitle != "Psychological Review" {
		t.Errorf("container-title = %q", item.ContainerTitle)
	}
	if item.Issued == nil || item.Issued.DateParts[0][0] != 1977 {
		t.Errorf("issued = %+v", item.Issued)
	}
	if len(item.Author) != 1 || item.Author[0].Family != "Bandura" || item.Author[0].Given != "Albert" {
		t.Errorf("author = %+v", item.Author)
	}
}

func TestParseAuthorName(t *testing.T) {
	tests := []struct {
		in   string
		want CSLName
	}{
		{"Bandura, Albert", CSLName{Family: "Bandura", Given: "Albert"}},
		{"Albert Bandura", CSLName{Family: "Bandura", Given: "Albert"}},
		{"Cher", CSLName{Literal: "Cher"}},
		{"", CSLName{}},
	}
	for _, tt := range tests {
		if got := parseAuthorName(tt.in); got != tt.want {
			t.Errorf("parseAuthorName(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestDetectField(t *testing.T) {
	psychology := strings.Repeat(
		"The cognitive experiment measured memory and emotion in participants undergoing therapy. ", 3)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"psychology document", psychology, "psychology"},
		{"too few hits", "One brief mention of memory.", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectField(tt.text); got != tt.want {
				t.Errorf("DetectField = %q, want %q", got, tt.want)
			}
		})
	}
}
