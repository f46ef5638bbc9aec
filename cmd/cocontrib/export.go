// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cocontrib/internal/dataset"
	"github.com/pdiddy/cocontrib/internal/metadata"
	"github.com/pdiddy/cocontrib/internal/results"
	"github.com/pdiddy/cocontrib/internal/store"
	"github.com/pdiddy/cocontrib/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recommendations to YAML or JSON",
	Long: `Export reads the recommendations of the last run, from the results file
or, with --from-db, from the sqlite database, and writes them as YAML or
JSON. Project URLs are filled in from the metadata feed when available.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	format = strings.ToLower(format)
	if format != "yaml" && format != "json" {
		return fmt.Errorf("unknown export format %q: want yaml or json", format)
	}

	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		base := strings.TrimSuffix(cfg.Data.Results, filepath.Ext(cfg.Data.Results))
		outPath = base + "." + format
	}

	fromDB, _ := cmd.Flags().GetBool("from-db")
	recs, err := readRecommendations(cmd, cfg, fromDB)
	if err != nil {
		return err
	}

	var lookup *metadata.Catalog
	if _, err := os.Stat(cfg.Data.Metadata); err == nil {
		lookup, err = metadata.Load(dataset.Projects(cfg.Data.Metadata))
		if err != nil {
			return fmt.Errorf("loading project metadata: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	switch format {
	case "json":
		err = results.ExportJSON(outPath, recs, lookup)
	default:
		err = results.ExportYAML(outPath, recs, lookup)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "exported %d users to %s\n", len(recs), outPath)
	return nil
}

func readRecommendations(cmd *cobra.Command, cfg types.PipelineConfig, fromDB bool) ([]types.Recommendation, error) {
	if !fromDB {
		return results.Read(cfg.Data.Results)
	}
	if cfg.Similarity.Backend != types.BackendSQLite {
		return nil, fmt.Errorf("--from-db needs the sqlite backend")
	}
	db, err := store.Open(cfg.Similarity.CachePath)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.Recommendations(cmd.Context())
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().String("out", "", "output file (default: results file with a .yaml or .json extension)")
	exportCmd.Flags().Bool("from-db", false, "read recommendations from the sqlite database")
	rootCmd.AddCommand(exportCmd)
}
