// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cite-engine/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the persistent resolution cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := cache.NewStore(pipelineConfig().Cache)
		if err != nil {
			return err
		}
		defer store.Close()

		st, err := store.Count(context.Background())
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "resolved: %d, unresolved: %d, total: %d\n",
			st.Resolved, st.Unresolved, st.Total())
		return nil
	},
}

var cacheForgetCmd = &cobra.Command{
	Use:   "forget <author|year>",
	Short: "Remove one cached entry by identity key",
	Long: `Forget removes a cached resolution so the next run resolves the work
again. The key is "author|year" with the author lowercased, e.g.
"bandura|1977".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := cache.NewStore(pipelineConfig().Cache)
		if err != nil {
			return err
		}
		defer store.Close()

		return store.Delete(context.Background(), args[0])
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheForgetCmd)

	rootCmd.AddCommand(cacheCmd)
}
