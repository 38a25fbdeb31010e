// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package guess asks generative AI services to identify a citation from
// its fragment. Guesses are typed, defensively parsed, and never trusted
// until the verifier corroborates them.
// Implements: prd002-resolution (R3); prd004-verification (R1.1);
//
//	docs/ARCHITECTURE § AI Guess Tier.
package guess

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"text/template"
	"time"

	"github.com/pdiddy/cite-engine/pkg/types"
)

// Guesser is one generative AI service that can propose a bibliographic
// record for a citation fragment. A (nil, nil) return is an explicit
// not-found: the model answered but did not recognize the work, or its
// answer could not be parsed.
type Guesser interface {
	ID() string
	Guess(ctx context.Context, citation types.Citation, docContext string) (*Guess, error)
}

// Guess is the structured answer from an AI provider. Confidence is the
// model's self-reported certainty, not a verified score.
type Guess struct {
	Confidence  float64  `json:"confidence"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Year        string   `json:"year"`
	Journal     string   `json:"journal"`
	Volume      string   `json:"volume"`
	Issue       string   `json:"issue"`
	Pages       string   `json:"pages"`
	Publisher   string   `json:"publisher"`
	PMID        string   `json:"pmid"`
	DOI         string   `json:"doi"`
	SearchQuery string   `json:"search_query"`
}

// Found reports whether the model recognized the work at all.
func (g Guess) Found() bool {
	return g.Title != "" && g.Type != "unknown"
}

// Record converts the guess into a candidate record attributed to source.
func (g Guess) Record(source string) *types.CandidateRecord {
	container := g.Journal
	if container == "" {
		container = g.Publisher
	}
	return &types.CandidateRecord{
		Title:          g.Title,
		Authors:        g.Authors,
		Year:           g.Year,
		Container:      container,
		Volume:         g.Volume,
		Issue:          g.Issue,
		Pages:          g.Pages,
		DOI:            g.DOI,
		PMID:           g.PMID,
		SourceProvider: source,
	}
}

// guessPromptTmpl instructs the model to answer with citation JSON only.
// Adapted field-for-field to the Guess struct above.
var guessPromptTmpl = template.Must(template.New("guess").Parse(`You are a scholarly citation expert with comprehensive knowledge of academic literature, books, and published works.

Given a fragmentary or incomplete citation hint, USE YOUR KNOWLEDGE to identify the most likely published work being referenced.

Respond in JSON only:
{
    "confidence": 0.0-1.0,
    "type": "journal|book|chapter|conference|report|unknown",
    "title": "full title of the work",
    "authors": ["First Last", "First Last"],
    "year": "YYYY",
    "journal": "journal name if applicable",
    "volume": "volume if known",
    "issue": "issue if known",
    "pages": "page range if known",
    "publisher": "publisher if book",
    "pmid": "PubMed ID if you know it",
    "doi": "DOI if you know it",
    "search_query": "optimized query to verify in databases"
}

IMPORTANT:
- Set confidence HIGH (0.8+) only if you are fairly sure this is a real, published work
- Set confidence LOW (<0.5) if you are guessing or unsure
- If you do not recognize the work at all, set type to "unknown" and confidence to 0.0
- Never invent fictional works

Citation hint: {{.Fragment}}{{if .Context}}
Context: this citation appears in a {{.Context}} document{{end}}

Respond with JSON only, no other text.`))

// renderPrompt executes the guess prompt template for one citation.
func renderPrompt(citation types.Citation, docContext string) (string, error) {
	var buf bytes.Buffer
	err := guessPromptTmpl.Execute(&buf, struct{ Fragment, Context string }{
		Fragment: citation.RawText,
		Context:  docContext,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ParseGuess extracts a Guess from raw model output. Models wrap JSON in
// code fences or prose despite instructions, so the parser strips fences
// and falls back to the outermost brace pair. Returns nil when no valid
// JSON object can be recovered (treated as not-found, never an error).
func ParseGuess(text string) *Guess {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.Index(text, "```"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
	}

	var g Guess
	if err := json.Unmarshal([]byte(text), &g); err == nil {
		return &g
	}

	// Prose around the object: take the outermost brace pair.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &g); err != nil {
		return nil
	}
	return &g
}

// backoffBase is the delay unit between retried AI calls. Tests override
// this to avoid real sleeps.
var backoffBase = time.Second

// withRetries runs fn up to maxRetries+1 times, backing off linearly
// between attempts. Returns the first success or the last error.
func withRetries(ctx context.Context, maxRetries int, fn func() (string, error)) (string, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * backoffBase):
			}
		}
		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// BuildChain constructs the guessers named in order. Unknown names are
// skipped; guessers without an API key are skipped so an unconfigured
// tier silently contributes nothing.
func BuildChain(order []string, cfg types.GuessConfig) []Guesser {
	var chain []Guesser
	for _, name := range order {
		switch name {
		case "openai":
			if cfg.OpenAI.APIKey != "" {
				chain = append(chain, &OpenAIGuesser{Config: cfg.OpenAI})
			}
		case "claude":
			if cfg.Anthropic.APIKey != "" {
				chain = append(chain, &ClaudeGuesser{Config: cfg.Anthropic})
			}
		}
	}
	return chain
}
