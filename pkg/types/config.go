package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "cite-engine/0.1"). Per prd005-providers R5.2.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ProviderConfig holds settings for the free bibliographic providers.
// Per prd005-providers R5.1-R5.5.
type ProviderConfig struct {
	HTTPConfig `yaml:",inline"`

	// CrossrefMailto is sent as the mailto parameter for Crossref's polite pool.
	CrossrefMailto string `json:"crossref_mailto,omitempty" yaml:"crossref_mailto,omitempty"`

	// OpenAlexEmail is sent as the mailto parameter for OpenAlex's polite pool.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty"`

	// PubMedAPIKey is an optional NCBI E-utilities key for higher rate limits.
	PubMedAPIKey string `json:"pubmed_api_key,omitempty" yaml:"pubmed_api_key,omitempty"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// RequestsPerSecond caps the request rate per provider (default 5).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// GuessConfig holds settings for the AI guess providers.
// Per prd002-resolution R3.1.
type GuessConfig struct {
	// OpenAI configures the cheap guess tier.
	OpenAI AIConfig `json:"openai" yaml:"openai"`

	// Anthropic configures the premium guess tier.
	Anthropic AIConfig `json:"anthropic" yaml:"anthropic"`
}

// KnownWork is one entry in the resolver's direct-lookup table of well-known
// works: a citation key mapped to the persistent identifier that fetches it.
type KnownWork struct {
	Author   string `json:"author" yaml:"author"`
	Year     string `json:"year" yaml:"year"`
	DOI      string `json:"doi,omitempty" yaml:"doi,omitempty"`
	PMID     string `json:"pmid,omitempty" yaml:"pmid,omitempty"`
	Provider string `json:"provider" yaml:"provider"`
}

// ResolverConfig holds the tier thresholds, deadlines, and provider chains
// for citation resolution. The thresholds encode tuned-by-observation
// heuristics, so they are configuration rather than constants.
// Per prd002-resolution R2.1-R2.6, R5.1-R5.4.
type ResolverConfig struct {
	// ProviderOrder lists free provider IDs in priority order. Priority
	// breaks score ties; it does not gate dispatch (Tier 1 fans out to all).
	ProviderOrder []string `json:"provider_order" yaml:"provider_order"`

	// GuessOrder lists cheap AI guesser IDs in cost-ascending order (Tier 2).
	GuessOrder []string `json:"guess_order" yaml:"guess_order"`

	// PremiumGuessOrder lists premium guesser IDs (Tier 3).
	PremiumGuessOrder []string `json:"premium_guess_order" yaml:"premium_guess_order"`

	// PromotionThreshold is the minimum best score that stops escalation
	// to the next tier (default 0.5).
	PromotionThreshold float64 `json:"promotion_threshold" yaml:"promotion_threshold"`

	// GuessFloor discards AI guesses whose self-reported confidence is
	// below it without attempting verification (default 0.3).
	GuessFloor float64 `json:"guess_floor" yaml:"guess_floor"`

	// EscapeValveThreshold lets an unverified guess through when its
	// self-reported confidence is at least this high (default 0.9).
	EscapeValveThreshold float64 `json:"escape_valve_threshold" yaml:"escape_valve_threshold"`

	// EscapeValveDiscount multiplies the confidence of a guess admitted
	// through the escape valve (default 0.8).
	EscapeValveDiscount float64 `json:"escape_valve_discount" yaml:"escape_valve_discount"`

	// Tier1Deadline bounds the collective free-provider fan-out (default 8s).
	Tier1Deadline time.Duration `json:"tier1_deadline" yaml:"tier1_deadline"`

	// CallTimeout bounds each individual provider call (default 10s).
	CallTimeout time.Duration `json:"call_timeout" yaml:"call_timeout"`

	// BatchDeadline bounds resolution of a whole document (default 90s).
	BatchDeadline time.Duration `json:"batch_deadline" yaml:"batch_deadline"`

	// FanoutWorkers bounds concurrent provider calls per citation (default 3).
	FanoutWorkers int `json:"fanout_workers" yaml:"fanout_workers"`

	// BatchWorkers bounds concurrently resolving citations (default 4).
	BatchWorkers int `json:"batch_workers" yaml:"batch_workers"`

	// KnownWorks seeds the Tier-0 direct-lookup table.
	KnownWorks []KnownWork `json:"known_works,omitempty" yaml:"known_works,omitempty"`
}

// Normalized returns a copy with zero-valued thresholds, deadlines, and pool
// sizes replaced by their defaults.
func (c ResolverConfig) Normalized() ResolverConfig {
	if c.PromotionThreshold <= 0 {
		c.PromotionThreshold = 0.5
	}
	if c.GuessFloor <= 0 {
		c.GuessFloor = 0.3
	}
	if c.EscapeValveThreshold <= 0 {
		c.EscapeValveThreshold = 0.9
	}
	if c.EscapeValveDiscount <= 0 {
		c.EscapeValveDiscount = 0.8
	}
	if c.Tier1Deadline <= 0 {
		c.Tier1Deadline = 8 * time.Second
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 10 * time.Second
	}
	if c.BatchDeadline <= 0 {
		c.BatchDeadline = 90 * time.Second
	}
	if c.FanoutWorkers <= 0 {
		c.FanoutWorkers = 3
	}
	if c.BatchWorkers <= 0 {
		c.BatchWorkers = 4
	}
	return c
}

// CacheConfig holds settings for the persistent resolution cache.
// Per prd006-cache R1.1.
type CacheConfig struct {
	// Dir is the directory holding the cache database (default ".cite-engine").
	Dir string `json:"dir" yaml:"dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Providers ProviderConfig `json:"providers" yaml:"providers"`
	Guess     GuessConfig    `json:"guess" yaml:"guess"`
	Resolver  ResolverConfig `json:"resolver" yaml:"resolver"`
	Cache     CacheConfig    `json:"cache" yaml:"cache"`
}
