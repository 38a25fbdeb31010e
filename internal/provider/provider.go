// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider wraps free bibliographic indexes behind a uniform
// search/get-by-id interface. Each adapter (Crossref, OpenAlex, PubMed,
// Semantic Scholar) implements Provider per the Strategy pattern.
// Implements: prd005-providers (R1-R5);
//
//	docs/ARCHITECTURE § Providers.
package provider

import (
	"context"
	"net/http"

	"github.com/pdiddy/cite-engine/internal/httputil"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// ID identifies one bibliographic provider.
type ID string

const (
	Crossref        ID = "crossref"
	OpenAlex        ID = "openalex"
	PubMed          ID = "pubmed"
	SemanticScholar ID = "semantic_scholar"
)

// Provider is one free bibliographic index (R1.1).
//
// Search returns the best candidate for an author-year query, or nil when
// the index has no plausible answer. GetByID fetches a record by the
// provider's persistent identifier (DOI or PMID, depending on the index).
// Both treat "nothing found" as (nil, nil); an error means the call itself
// failed. Adapters hold no mutable per-call state.
type Provider interface {
	ID() ID
	Search(ctx context.Context, query string) (*types.CandidateRecord, error)
	GetByID(ctx context.Context, id string) (*types.CandidateRecord, error)
}

// BuildChain constructs the providers named in order, sharing one
// rate-limited HTTP client. Unknown names are skipped so a stale config
// entry cannot break resolution (R1.3).
func BuildChain(order []string, cfg types.ProviderConfig) []Provider {
	client := httputil.NewLimited(&http.Client{Timeout: cfg.Timeout}, cfg.RequestsPerSecond)

	var chain []Provider
	for _, name := range order {
		switch ID(name) {
		case Crossref:
			chain = append(chain, &CrossrefProvider{Client: client, UserAgent: cfg.UserAgent, Mailto: cfg.CrossrefMailto})
		case OpenAlex:
			chain = append(chain, &OpenAlexProvider{Client: client, UserAgent: cfg.UserAgent, Email: cfg.OpenAlexEmail})
		case PubMed:
			chain = append(chain, &PubMedProvider{Client: client, UserAgent: cfg.UserAgent, APIKey: cfg.PubMedAPIKey})
		case SemanticScholar:
			chain = append(chain, &SemanticScholarProvider{Client: client, UserAgent: cfg.UserAgent, APIKey: cfg.SemanticScholarAPIKey})
		}
	}
	return chain
}

// DefaultOrder is the provider priority used when the config names none.
func DefaultOrder() []string {
	return []string{string(Crossref), string(OpenAlex), string(PubMed), string(SemanticScholar)}
}

// ByID returns the provider with the given ID from chain, or nil.
func ByID(chain []Provider, id ID) Provider {
	for _, p := range chain {
		if p.ID() == id {
			return p
		}
	}
	return nil
}
