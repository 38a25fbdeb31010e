// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cite-engine/pkg/types"
)

// CitationsFile is the on-disk representation of an extraction run. The
// researcher can save extracted citations to a file and resolve them later
// without re-scanning the document.
// Implements: prd001-extraction R2.4.
type CitationsFile struct {
	Source    string           `yaml:"source,omitempty"`
	Citations []types.Citation `yaml:"citations"`
	Summary   ExtractSummary   `yaml:"summary"`
}

// ExtractSummary stores extraction statistics and a timestamp.
type ExtractSummary struct {
	Total     int       `yaml:"total"`
	Unique    int       `yaml:"unique"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteCitationsFile saves the deduplicated citations of one extraction
// run to a YAML file. total is the pre-deduplication occurrence count.
func WriteCitationsFile(path, source string, total int, unique []types.Citation) error {
	cf := CitationsFile{
		Source:    source,
		Citations: unique,
		Summary: ExtractSummary{
			Total:     total,
			Unique:    len(unique),
			Timestamp: time.Now(),
		},
	}

	data, err := yaml.Marshal(&cf)
	if err != nil {
		return fmt.Errorf("marshaling citations file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadCitationsFile loads a previously saved citations file from disk.
func ReadCitationsFile(path string) (*CitationsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading citations file: %w", err)
	}
	var cf CitationsFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing citations file: %w", err)
	}
	return &cf, nil
}
