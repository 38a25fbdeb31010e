// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cite-engine/internal/cache"
	"github.com/pdiddy/cite-engine/internal/guess"
	"github.com/pdiddy/cite-engine/internal/provider"
	"github.com/pdiddy/cite-engine/internal/resolve"
	"github.com/pdiddy/cite-engine/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [file]",
	Short: "Resolve citations to full bibliographic records",
	Long: `Resolve turns each citation into a bibliographic record through an
escalating ladder: direct identifier lookup, parallel free-provider
search (Crossref, OpenAlex, PubMed, Semantic Scholar), then AI-assisted
guessing with hallucination verification.

Input is a text document (citations are extracted first) or a saved
citations YAML via --citations-file. Already-resolved works are served
from the persistent cache unless --no-cache is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	citations, text, source, err := citationsFromArgs(cmd, args)
	if err != nil {
		return err
	}
	if len(citations) == 0 {
		fmt.Fprintln(os.Stderr, "No citations found.")
		return nil
	}

	cfg := pipelineConfig()

	docContext, _ := cmd.Flags().GetString("context")
	if docContext == "" && text != "" {
		if docContext = resolve.DetectField(text); docContext != "" {
			fmt.Fprintf(os.Stderr, "Detected document field: %s\n", docContext)
		}
	}

	noCache, _ := cmd.Flags().GetBool("no-cache")
	var store *cache.Store
	if !noCache {
		store, err = cache.NewStore(cfg.Cache)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	ctx := context.Background()
	results := make(map[string]types.ResolutionResult, len(citations))

	// Serve cache hits first; only misses go through the resolver.
	var pending []types.Citation
	for _, c := range citations {
		if store != nil {
			cached, err := store.Get(ctx, c.Key())
			if err != nil {
				return err
			}
			if cached != nil {
				results[c.Key()] = *cached
				continue
			}
		}
		pending = append(pending, c)
	}
	if len(results) > 0 {
		fmt.Fprintf(os.Stderr, "Cache: %d of %d citations already resolved\n", len(results), len(citations))
	}

	if len(pending) > 0 {
		order := cfg.Resolver.ProviderOrder
		if len(order) == 0 {
			order = provider.DefaultOrder()
			cfg.Resolver.ProviderOrder = order
		}
		providers := provider.BuildChain(order, cfg.Providers)
		cheap := guess.BuildChain(cfg.Resolver.GuessOrder, cfg.Guess)
		premium := guess.BuildChain(cfg.Resolver.PremiumGuessOrder, cfg.Guess)

		r := resolve.New(cfg.Resolver, providers, cheap, premium, os.Stderr)
		for key, res := range r.ResolveBatch(ctx, pending, docContext) {
			results[key] = res
			if store != nil {
				if err := store.Put(ctx, res); err != nil {
					fmt.Fprintf(os.Stderr, "warning: cache write failed: %v\n", err)
				}
			}
		}
	}

	report := resolve.BuildReport(source, results)
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "table", "":
		return report.FormatTable(os.Stdout)
	case "json":
		return report.FormatJSON(os.Stdout)
	case "yaml":
		return report.FormatYAML(os.Stdout)
	case "csl":
		return resolve.FormatCSL(report.Results, os.Stdout)
	default:
		return fmt.Errorf("unsupported format %q: use table, json, yaml, or csl", format)
	}
}

func init() {
	resolveCmd.Flags().String("citations-file", "", "resolve citations from a saved YAML file instead of extracting")
	resolveCmd.Flags().String("context", "", "document discipline hint for AI tiers (e.g. \"psychology\"); auto-detected when omitted")
	resolveCmd.Flags().String("format", "table", "output format: table, json, yaml, or csl")
	resolveCmd.Flags().Bool("no-cache", false, "bypass the persistent resolution cache")

	rootCmd.AddCommand(resolveCmd)
}
