// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cite-engine/internal/extract"
	"github.com/pdiddy/cite-engine/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Find author-year citations in a text document",
	Long: `Extract scans plain text for author-year citations in all supported
forms: parenthetical, narrative, multi-author, corporate, possessive,
multi-year, and semicolon-separated multi-citation groups. Occurrences
referring to the same work are collapsed to one record.

Reads from the file argument, or stdin when no argument is given.
Use --output to save the citations to a YAML file for later resolution.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	text, source, err := readInput(args)
	if err != nil {
		return err
	}

	all := extract.Extract(text)
	unique := extract.Unique(all)

	if out, _ := cmd.Flags().GetString("output"); out != "" {
		if err := extract.WriteCitationsFile(out, source, len(all), unique); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %d citations to %s\n", len(unique), out)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(unique)
	}

	for _, c := range unique {
		extra := ""
		if c.IsEtAl {
			extra = " et al."
		}
		fmt.Fprintf(os.Stdout, "%-30s %s%s\n", c.Label(), c.RawText, extra)
	}
	fmt.Fprintf(os.Stdout, "\n%d occurrences, %d unique\n", len(all), len(unique))
	return nil
}

// readInput returns the document text and a source label, from the file
// argument or stdin.
func readInput(args []string) (string, string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "stdin", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), args[0], nil
}

// citationsFromArgs loads citations either from a saved citations file
// or by extracting from the document text. It returns the citations,
// the document text (empty for a citations file), and the source label.
func citationsFromArgs(cmd *cobra.Command, args []string) ([]types.Citation, string, string, error) {
	if path, _ := cmd.Flags().GetString("citations-file"); path != "" {
		cf, err := extract.ReadCitationsFile(path)
		if err != nil {
			return nil, "", "", err
		}
		return cf.Citations, "", path, nil
	}

	text, source, err := readInput(args)
	if err != nil {
		return nil, "", "", err
	}
	return extract.ExtractUnique(text), text, source, nil
}

func init() {
	extractCmd.Flags().String("output", "", "write citations to a YAML file")
	extractCmd.Flags().Bool("json", false, "output citations as JSON")

	rootCmd.AddCommand(extractCmd)
}
