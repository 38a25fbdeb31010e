// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the cite-engine CLI.
// Implements: prd001-extraction, prd002-resolution, prd006-cache
//
//	(CLI surface). See docs/ARCHITECTURE § Pipeline Interface.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/cite-engine/internal/secrets"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the cite-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "cite-engine",
	Short: "Extract and resolve author-year citations",
	Long: `cite-engine finds author-year citations ("(Bandura, 1977)", "Smith and
Jones (2019)") in plain text and resolves each one to a full bibliographic
record through free scholarly databases, with AI-assisted guessing and
hallucination verification as a fallback.

Each pipeline stage is a subcommand: extract finds citations, resolve turns
them into records, cache inspects the persistent resolution cache.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./cite-engine.yaml or ~/.config/cite-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("cite-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "cite-engine"))
		}
	}

	viper.SetEnvPrefix("CITE_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles the full pipeline configuration from the
// config file, environment, and loaded secrets. Config and environment
// values win over secret files.
func pipelineConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		Providers: types.ProviderConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("providers.timeout"),
				UserAgent: viper.GetString("providers.user_agent"),
			},
			CrossrefMailto:        viper.GetString("providers.crossref_mailto"),
			OpenAlexEmail:         viper.GetString("providers.openalex_email"),
			PubMedAPIKey:          viper.GetString("providers.pubmed_api_key"),
			SemanticScholarAPIKey: viper.GetString("providers.semantic_scholar_api_key"),
			RequestsPerSecond:     viper.GetFloat64("providers.requests_per_second"),
		},
		Guess: types.GuessConfig{
			OpenAI: types.AIConfig{
				Model:  viper.GetString("guess.openai.model"),
				APIKey: viper.GetString("guess.openai.api_key"),
			},
			Anthropic: types.AIConfig{
				Model:  viper.GetString("guess.anthropic.model"),
				APIKey: viper.GetString("guess.anthropic.api_key"),
			},
		},
		Resolver: types.ResolverConfig{
			ProviderOrder:        viper.GetStringSlice("resolver.provider_order"),
			GuessOrder:           viper.GetStringSlice("resolver.guess_order"),
			PremiumGuessOrder:    viper.GetStringSlice("resolver.premium_guess_order"),
			PromotionThreshold:   viper.GetFloat64("resolver.promotion_threshold"),
			GuessFloor:           viper.GetFloat64("resolver.guess_floor"),
			EscapeValveThreshold: viper.GetFloat64("resolver.escape_valve_threshold"),
			EscapeValveDiscount:  viper.GetFloat64("resolver.escape_valve_discount"),
			Tier1Deadline:        viper.GetDuration("resolver.tier1_deadline"),
			CallTimeout:          viper.GetDuration("resolver.call_timeout"),
			BatchDeadline:        viper.GetDuration("resolver.batch_deadline"),
			FanoutWorkers:        viper.GetInt("resolver.fanout_workers"),
			BatchWorkers:         viper.GetInt("resolver.batch_workers"),
		},
		Cache: types.CacheConfig{
			Dir: viper.GetString("cache.dir"),
		},
	}

	if cfg.Providers.Timeout <= 0 {
		cfg.Providers.Timeout = 30 * time.Second
	}
	if cfg.Providers.UserAgent == "" {
		cfg.Providers.UserAgent = "cite-engine/" + version
	}
	if cfg.Providers.RequestsPerSecond <= 0 {
		cfg.Providers.RequestsPerSecond = 5
	}
	if cfg.Guess.OpenAI.Model == "" {
		cfg.Guess.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.Guess.Anthropic.Model == "" {
		cfg.Guess.Anthropic.Model = "claude-sonnet-4-20250514"
	}
	if len(cfg.Resolver.GuessOrder) == 0 {
		cfg.Resolver.GuessOrder = []string{"openai"}
	}
	if len(cfg.Resolver.PremiumGuessOrder) == 0 {
		cfg.Resolver.PremiumGuessOrder = []string{"claude"}
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = ".cite-engine"
	}

	secrets.Apply(loadedSecrets, &cfg)
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
