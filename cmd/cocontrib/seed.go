// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cocontrib/internal/metrics"
)

var seedCmd = &cobra.Command{
	Use:     "build-cache",
	Aliases: []string{"seed"},
	Short:   "Build and persist the similar-users cache",
	Long: `Build-cache indexes the interaction log and computes, for every user,
the users sharing the most projects with them. The result is saved to the
configured backend (a user:csv text file, or the similar_users table of the
sqlite database) and reused by later recommend runs.

An existing cache is kept unless --clean is given.`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	start := time.Now()
	rec := metrics.New()
	p, err := openPipeline(cmd.Context(), cfg, logger, rec, false)
	if err != nil {
		return err
	}
	defer p.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "similarity cache: %d users at %s\n", p.cache.Len(), cfg.Similarity.CachePath)
	fmt.Fprintf(out, "done in %s\n", time.Since(start).Round(time.Millisecond))

	writeMetrics(cfg, rec, logger)
	return nil
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
