// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cocontrib/pkg/types"
)

// defaultSQLitePath is used for the sqlite backend when no cache location is set.
const defaultSQLitePath = "output/cocontrib.db"

// flagKeys maps persistent flags to the viper keys they override.
var flagKeys = map[string][]string{
	"interactions": {"data.interactions"},
	"metadata":     {"data.metadata"},
	"queries":      {"data.queries"},
	"results":      {"data.results"},
	"dedupe":       {"index.dedupe"},
	"cache":        {"similarity.cache_path"},
	"backend":      {"similarity.backend"},
	"clean":        {"similarity.clean"},
	"top-n":        {"similarity.top_n"},
	"include-self": {"similarity.include_self"},
	"top-k":        {"rank.top_k"},
	"workers":      {"similarity.workers", "rank.workers"},
	"log-level":    {"log.level"},
	"log-format":   {"log.format"},
	"metrics-file": {"metrics_file"},
}

func bindFlags(fs *pflag.FlagSet) {
	for name, keys := range flagKeys {
		for _, key := range keys {
			_ = viper.BindPFlag(key, fs.Lookup(name))
		}
	}
	setDefaults(types.DefaultPipelineConfig())
}

func setDefaults(cfg types.PipelineConfig) {
	viper.SetDefault("data.interactions", cfg.Data.Interactions)
	viper.SetDefault("data.metadata", cfg.Data.Metadata)
	viper.SetDefault("data.queries", cfg.Data.Queries)
	viper.SetDefault("data.results", cfg.Data.Results)
	viper.SetDefault("index.dedupe", cfg.Index.Dedupe)

	viper.SetDefault("similarity.top_n", cfg.Similarity.TopN)
	viper.SetDefault("similarity.include_self", cfg.Similarity.IncludeSelf)
	viper.SetDefault("similarity.workers", cfg.Similarity.Workers)
	viper.SetDefault("similarity.progress_every", cfg.Similarity.ProgressEvery)
	viper.SetDefault("similarity.backend", string(cfg.Similarity.Backend))
	viper.SetDefault("similarity.clean", cfg.Similarity.Clean)

	viper.SetDefault("rank.top_k", cfg.Rank.TopK)
	viper.SetDefault("rank.founder_weight", cfg.Rank.FounderWeight)
	viper.SetDefault("rank.parent_weight", cfg.Rank.ParentWeight)
	viper.SetDefault("rank.base_weight", cfg.Rank.BaseWeight)
	viper.SetDefault("rank.workers", cfg.Rank.Workers)
	viper.SetDefault("rank.progress_every", cfg.Rank.ProgressEvery)

	viper.SetDefault("log.level", cfg.Log.Level)
	viper.SetDefault("log.format", cfg.Log.Format)
}

// loadConfig materializes the effective settings from defaults, the config
// file, COCONTRIB_* environment variables and flags.
func loadConfig() (types.PipelineConfig, error) {
	cfg := types.PipelineConfig{
		Data: types.DataConfig{
			Interactions: viper.GetString("data.interactions"),
			Metadata:     viper.GetString("data.metadata"),
			Queries:      viper.GetString("data.queries"),
			Results:      viper.GetString("data.results"),
		},
		Index: types.IndexConfig{Dedupe: viper.GetBool("index.dedupe")},
		Similarity: types.SimilarityConfig{
			TopN:          viper.GetInt("similarity.top_n"),
			IncludeSelf:   viper.GetBool("similarity.include_self"),
			Workers:       viper.GetInt("similarity.workers"),
			ProgressEvery: viper.GetInt("similarity.progress_every"),
			CachePath:     viper.GetString("similarity.cache_path"),
			Backend:       types.CacheBackend(strings.ToLower(viper.GetString("similarity.backend"))),
			Clean:         viper.GetBool("similarity.clean"),
		},
		Rank: types.RankConfig{
			TopK:          viper.GetInt("rank.top_k"),
			FounderWeight: viper.GetInt("rank.founder_weight"),
			ParentWeight:  viper.GetInt("rank.parent_weight"),
			BaseWeight:    viper.GetInt("rank.base_weight"),
			Workers:       viper.GetInt("rank.workers"),
			ProgressEvery: viper.GetInt("rank.progress_every"),
		},
		Log: types.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		},
		MetricsFile: viper.GetString("metrics_file"),
	}

	switch cfg.Similarity.Backend {
	case types.BackendFile:
		if cfg.Similarity.CachePath == "" {
			cfg.Similarity.CachePath = types.DefaultSimilarityConfig().CachePath
		}
	case types.BackendSQLite:
		if cfg.Similarity.CachePath == "" {
			cfg.Similarity.CachePath = defaultSQLitePath
		}
	default:
		return cfg, fmt.Errorf("unknown cache backend %q: want %s or %s",
			cfg.Similarity.Backend, types.BackendFile, types.BackendSQLite)
	}

	if cfg.Similarity.TopN <= 0 {
		return cfg, fmt.Errorf("similarity.top_n must be positive, got %d", cfg.Similarity.TopN)
	}
	if cfg.Rank.TopK <= 0 {
		return cfg, fmt.Errorf("rank.top_k must be positive, got %d", cfg.Rank.TopK)
	}
	return cfg, nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
