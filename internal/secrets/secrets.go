// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: anthropic-api-key, openai-api-key, pubmed-api-key,
// semantic-scholar-api-key, crossref-mailto, openalex-email.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/cite-engine/pkg/types"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply copies loaded secrets into their config fields. Values already set
// in the config (for example from environment variables) take precedence.
func Apply(secrets map[string]string, cfg *types.PipelineConfig) {
	setIfEmpty(&cfg.Guess.Anthropic.APIKey, secrets["anthropic-api-key"])
	setIfEmpty(&cfg.Guess.OpenAI.APIKey, secrets["openai-api-key"])
	setIfEmpty(&cfg.Providers.PubMedAPIKey, secrets["pubmed-api-key"])
	setIfEmpty(&cfg.Providers.SemanticScholarAPIKey, secrets["semantic-scholar-api-key"])
	setIfEmpty(&cfg.Providers.CrossrefMailto, secrets["crossref-mailto"])
	setIfEmpty(&cfg.Providers.OpenAlexEmail, secrets["openalex-email"])
}

func setIfEmpty(dst *string, value string) {
	if *dst == "" && value != "" {
		*dst = value
	}
}
