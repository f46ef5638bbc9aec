// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the cocontrib CLI.
//
// cocontrib recommends projects to users from co-contribution patterns in an
// interaction log. The seed stage builds the similar-users cache; the
// recommend stage ranks candidate projects for a list of query users.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/cocontrib/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is configured from the loaded settings before any subcommand runs.
var logger = zerolog.Nop()

// rootCmd is the base command for the cocontrib CLI.
var rootCmd = &cobra.Command{
	Use:   "cocontrib",
	Short: "Recommend projects from co-contribution patterns",
	Long: `cocontrib recommends projects to users based on who else contributed to
the projects they work on.

The seed stage indexes the interaction log and caches, for every user, the
users sharing the most projects with them. The recommend stage ranks the
projects of those similar users for each query user, boosting projects from
the same owner and forks of the user's own projects.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger = logging.New(logging.Config{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			Output: os.Stderr,
		})
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug().Str("config", used).Msg("using config file")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./cocontrib.yaml or ~/.config/cocontrib/cocontrib.yaml)")

	pf.String("interactions", "", "interaction log of user:project lines (default data/data.txt)")
	pf.String("metadata", "", "project metadata feed of id:owner/name,created[,parent] lines (default data/repos.txt)")
	pf.String("queries", "", "query users, one per line (default data/test.txt)")
	pf.String("results", "", "results file of user:p1,p2 lines (default results.txt)")
	pf.Bool("dedupe", true, "drop repeated user/project pairs")

	pf.String("cache", "", "similarity cache location (default output/usercache.txt, or output/cocontrib.db for sqlite)")
	pf.String("backend", "", "similarity cache backend: file or sqlite (default file)")
	pf.Bool("clean", false, "rebuild the similarity cache even if one exists")
	pf.Int("top-n", 0, "similar users kept per user (default 30)")
	pf.Bool("include-self", false, "count a user as similar to themselves")
	pf.Int("top-k", 0, "projects recommended per user (default 10)")
	pf.Int("workers", 0, "concurrent workers for seeding and ranking (default GOMAXPROCS)")

	pf.String("log-level", "", "log level: debug, info, warn, error (default info)")
	pf.String("log-format", "", "log format: console or json (default console)")
	pf.String("metrics-file", "", "write Prometheus text-format metrics to this file")

	bindFlags(pf)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("cocontrib")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "cocontrib"))
		}
	}

	viper.SetEnvPrefix("COCONTRIB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			fmt.Fprintf(os.Stderr, "warning: reading config: %v\n", err)
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
