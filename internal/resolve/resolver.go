// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve turns extracted citations into bibliographic records
// through an escalating cost ladder: direct identifier lookup, parallel
// free-provider search, cheap AI guessing with verification, then
// premium AI guessing. Unresolved is a value, never an error, so batch
// resolution always completes.
// Implements: prd002-resolution (R1-R5);
//
//	docs/ARCHITECTURE § Resolution Ladder.
package resolve

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pdiddy/cite-engine/internal/guess"
	"github.com/pdiddy/cite-engine/internal/provider"
	"github.com/pdiddy/cite-engine/internal/score"
	"github.com/pdiddy/cite-engine/internal/verify"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// Resolver escalates one citation at a time through the tier ladder.
// Results are memoized per run by identity key, so a citation repeated
// across a document costs one resolution.
type Resolver struct {
	cfg       types.ResolverConfig
	providers []provider.Provider
	cheap     []guess.Guesser
	premium   []guess.Guesser
	verifier  *verify.Verifier
	known     map[string]types.KnownWork
	log       io.Writer

	mu   sync.Mutex
	memo map[string]*memoEntry
}

// memoEntry dedupes concurrent resolutions of the same identity key:
// the first caller dispatches, later callers wait on done.
type memoEntry struct {
	done   chan struct{}
	result types.ResolutionResult
}

// New builds a resolver over the given provider and guesser chains.
// The config is normalized, so zero-valued thresholds and deadlines
// pick up their defaults. w receives progress and warning lines; nil
// discards them.
func New(cfg types.ResolverConfig, providers []provider.Provider, cheap, premium []guess.Guesser, w io.Writer) *Resolver {
	if w == nil {
		w = io.Discard
	}
	return &Resolver{
		cfg:       cfg.Normalized(),
		providers: providers,
		cheap:     cheap,
		premium:   premium,
		verifier:  verify.New(providers),
		known:     knownWorksTable(cfg.KnownWorks),
		log:       w,
	}
}

// Resolve runs the tier ladder for one citation. docContext is an
// optional discipline hint ("psychology") passed to the AI tiers only;
// it never participates in free-provider queries.
func (r *Resolver) Resolve(ctx context.Context, citation types.Citation, docContext string) types.ResolutionResult {
	key := citation.Key()

	r.mu.Lock()
	if e, ok := r.memo[key]; ok {
		r.mu.Unlock()
		select {
		case <-e.done:
			return e.result
		case <-ctx.Done():
			return unresolved(citation, types.ReasonNoMatch)
		}
	}
	if r.memo == nil {
		r.memo = make(map[string]*memoEntry)
	}
	e := &memoEntry{done: make(chan struct{})}
	r.memo[key] = e
	r.mu.Unlock()

	e.result = r.resolve(ctx, citation, docContext)
	close(e.done)
	return e.result
}

func (r *Resolver) resolve(ctx context.Context, citation types.Citation, docContext string) types.ResolutionResult {
	// Tier 0: direct identifier lookup bypasses scoring entirely.
	if best := r.directLookup(ctx, citation); best != nil {
		return resolved(citation, best)
	}

	// Author-year search needs a real year.
	if !searchableYear(citation.Year) {
		return unresolved(citation, types.ReasonNoYear)
	}

	// Tier 1: parallel free-provider fan-out.
	records := r.fanOut(ctx, citation)
	scored := score.Rank(citation, records)
	if best := score.Best(scored, r.cfg.ProviderOrder); best != nil && best.Confidence >= r.cfg.PromotionThreshold {
		return resolved(citation, best)
	}

	// Tiers 2 and 3: AI guessing, cheap before premium.
	for _, chain := range [][]guess.Guesser{r.cheap, r.premium} {
		if best := r.guessTier(ctx, chain, citation, docContext); best != nil {
			return resolved(citation, best)
		}
	}

	return unresolved(citation, types.ReasonNoMatch)
}

// fanOut queries every free provider concurrently with the same
// author-year query, bounded by the tier deadline. Responses arriving
// after the deadline land in the buffered channel and are discarded, so
// a late provider can never amend a result already returned.
func (r *Resolver) fanOut(ctx context.Context, citation types.Citation) []types.CandidateRecord {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Tier1Deadline)
	defer cancel()

	query := citation.Query()
	sem := make(chan struct{}, r.cfg.FanoutWorkers)
	results := make(chan *types.CandidateRecord, len(r.providers))

	for _, p := range r.providers {
		go func(p provider.Provider) {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results <- nil
				return
			}
			callCtx, cancelCall := context.WithTimeout(ctx, r.cfg.CallTimeout)
			defer cancelCall()
			rec, err := p.Search(callCtx, query)
			if err != nil {
				fmt.Fprintf(r.log, "warning: %s search failed for %s: %v\n", p.ID(), citation.Label(), err)
				results <- nil
				return
			}
			results <- rec
		}(p)
	}

	var records []types.CandidateRecord
	for range r.providers {
		select {
		case rec := <-results:
			if rec != nil {
				records = append(records, *rec)
			}
		case <-ctx.Done():
			return records
		}
	}
	return records
}

// guessTier walks one guesser chain in cost-ascending order. A guess
// below the floor is discarded without verification. A verified guess
// wins outright. An unverified guess survives only through the escape
// valve: self-confidence at or above the valve threshold, discounted
// and tagged unverified.
func (r *Resolver) guessTier(ctx context.Context, chain []guess.Guesser, citation types.Citation, docContext string) *types.ScoredCandidate {
	for _, g := range chain {
		callCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
		guessed, err := g.Guess(callCtx, citation, docContext)
		cancel()
		if err != nil {
			fmt.Fprintf(r.log, "warning: %s guess failed for %s: %v\n", g.ID(), citation.Label(), err)
			continue
		}
		if guessed == nil || !guessed.Found() {
			continue
		}
		if guessed.Confidence < r.cfg.GuessFloor {
			continue
		}

		if rec := r.verifier.Verify(ctx, citation, guessed); rec != nil {
			conf, reason := score.Score(citation, *rec)
			// Label records both the guessing and the verifying provider.
			rec.SourceProvider = g.ID() + "+" + rec.SourceProvider
			return &types.ScoredCandidate{
				CandidateRecord: *rec,
				Confidence:      conf,
				MatchReason:     reason,
				Verified:        true,
			}
		}

		if guessed.Confidence >= r.cfg.EscapeValveThreshold {
			rec := guessed.Record(g.ID() + " (unverified)")
			return &types.ScoredCandidate{
				CandidateRecord: *rec,
				Confidence:      guessed.Confidence * r.cfg.EscapeValveDiscount,
				MatchReason:     "escape_valve",
			}
		}
	}
	return nil
}

// directLookup serves Tier 0: the known-works table and identifiers
// embedded in the raw citation text. A fetched record counts as
// confidence 1.0 without scoring.
func (r *Resolver) directLookup(ctx context.Context, citation types.Citation) *types.ScoredCandidate {
	doi, pmid := "", ""
	if kw, ok := r.known[citation.Key()]; ok {
		doi, pmid = kw.DOI, kw.PMID
	} else {
		switch kind, id := DetectIdentifier(citation.RawText); kind {
		case IdentDOI:
			doi = id
		case IdentPMID:
			pmid = id
		default:
			return nil
		}
	}

	for _, p := range r.providers {
		id := idArgument(p.ID(), doi, pmid)
		if id == "" {
			continue
		}
		callCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
		rec, err := p.GetByID(callCtx, id)
		cancel()
		if err != nil {
			fmt.Fprintf(r.log, "warning: %s lookup of %s failed: %v\n", p.ID(), id, err)
			continue
		}
		if rec != nil {
			return &types.ScoredCandidate{
				CandidateRecord: *rec,
				Confidence:      1.0,
				MatchReason:     "direct_lookup",
				Verified:        true,
			}
		}
	}
	return nil
}

// idArgument maps a DOI or PMID onto the form a provider's GetByID
// expects, or "" when the provider cannot serve the identifier.
func idArgument(pid provider.ID, doi, pmid string) string {
	switch pid {
	case provider.Crossref, provider.OpenAlex:
		return doi
	case provider.SemanticScholar:
		if doi != "" {
			return "DOI:" + doi
		}
	case provider.PubMed:
		return pmid
	}
	return ""
}

// ResolveBatch resolves every citation through a bounded worker pool
// under the batch deadline. The returned map always carries one entry
// per distinct identity key; entries the deadline cut off come back
// Unresolved.
func (r *Resolver) ResolveBatch(ctx context.Context, citations []types.Citation, docContext string) map[string]types.ResolutionResult {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.BatchDeadline)
	defer cancel()

	out := make(map[string]types.ResolutionResult, len(citations))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, r.cfg.BatchWorkers)

	dispatched := make(map[string]bool, len(citations))
	for _, c := range citations {
		key := c.Key()
		if dispatched[key] {
			continue
		}
		dispatched[key] = true

		wg.Add(1)
		go func(c types.Citation) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			res := r.Resolve(ctx, c, docContext)
			mu.Lock()
			out[c.Key()] = res
			mu.Unlock()
		}(c)
	}
	wg.Wait()
	return out
}

func resolved(citation types.Citation, best *types.ScoredCandidate) types.ResolutionResult {
	return types.ResolutionResult{Citation: citation, Resolved: true, Best: best}
}

func unresolved(citation types.Citation, reason types.UnresolvedReason) types.ResolutionResult {
	return types.ResolutionResult{Citation: citation, Reason: reason}
}

// searchableYear reports whether the year can anchor an author-year
// provider query. "n.d." and "in press" cannot.
func searchableYear(year string) bool {
	if len(year) < 4 {
		return false
	}
	for _, r := range year[:4] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
