// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pdiddy/cocontrib/internal/batch"
	"github.com/pdiddy/cocontrib/internal/dataset"
	"github.com/pdiddy/cocontrib/internal/logging"
	"github.com/pdiddy/cocontrib/internal/metrics"
	"github.com/pdiddy/cocontrib/internal/rank"
	"github.com/pdiddy/cocontrib/internal/results"
	"github.com/pdiddy/cocontrib/pkg/types"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank projects for every query user",
	Long: `Recommend loads the interaction index, the optional project metadata
feed, and the similarity cache (building it first if needed), then ranks
candidate projects for each user listed in the query file.

One "user:p1,p2,..." line is written per known query user, in query order.
Unknown query users are logged and skipped. With the sqlite backend the
rows are also stored in the recommendations table.

Use --user to rank a single user, and --explain to see how each candidate
scored.`,
	RunE: runRecommend,
}

func runRecommend(cmd *cobra.Command, args []string) error {
	if err := checkRecommendFlags(cmd.Flags()); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	start := time.Now()
	rec := metrics.New()
	p, err := openPipeline(cmd.Context(), cfg, logger, rec, true)
	if err != nil {
		return err
	}
	defer p.Close()

	ranker := rank.New(p.idx, p.meta, p.cache, cfg.Rank, logging.Component(logger, "rank"))

	if cmd.Flags().Changed("user") {
		user, _ := cmd.Flags().GetInt64("user")
		explain, _ := cmd.Flags().GetBool("explain")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return recommendOne(cmd.OutOrStdout(), ranker, types.UserID(user), explain, jsonOutput)
	}

	sink, err := openSink(cmd, p)
	if err != nil {
		return err
	}

	summary, err := batch.Run(cmd.Context(), ranker, dataset.Users(cfg.Data.Queries), sink,
		cfg.Rank, rec, logging.Component(logger, "batch"))
	if cerr := sink.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing results: %w", cerr)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "queries: %d, ranked: %d, empty: %d, skipped: %d, unknown related: %d\n",
		summary.Queries, summary.Ranked, summary.Empty, summary.Skipped, summary.UnknownRelated)
	fmt.Fprintf(out, "results: %s (%d rows)\n", cfg.Data.Results, summary.Written())
	fmt.Fprintf(out, "done in %s\n", time.Since(start).Round(time.Millisecond))

	writeMetrics(cfg, rec, logger)
	return nil
}

// checkRecommendFlags rejects single-user output flags given without --user.
func checkRecommendFlags(fs *pflag.FlagSet) error {
	if fs.Changed("user") {
		return nil
	}
	for _, name := range []string{"explain", "json"} {
		if fs.Changed(name) {
			return fmt.Errorf("--%s needs --user", name)
		}
	}
	return nil
}

// openSink opens the results file and, with the sqlite backend, tees rows
// into the recommendations table.
func openSink(cmd *cobra.Command, p *pipeline) (results.Sink, error) {
	lines, err := results.Create(p.cfg.Data.Results)
	if err != nil {
		return nil, err
	}
	if p.db == nil {
		return lines, nil
	}

	rows, err := p.db.Results(cmd.Context())
	if err != nil {
		lines.Close()
		return nil, err
	}
	return results.Tee(lines, rows), nil
}

func recommendOne(w io.Writer, ranker *rank.Ranker, u types.UserID, explain, jsonOutput bool) error {
	res, err := ranker.Score(u)
	if errors.Is(err, rank.ErrUnknownUser) {
		return fmt.Errorf("user %d is not in the interaction log", u)
	}
	if err != nil {
		return err
	}
	if k := ranker.TopK(); len(res.Candidates) > k {
		res.Candidates = res.Candidates[:k]
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if explain {
			return enc.Encode(res)
		}
		return enc.Encode(types.Recommendation{User: u, Projects: res.Top(0)})
	}

	if !explain {
		fmt.Fprintln(w, types.Recommendation{User: u, Projects: res.Top(0)})
		return nil
	}
	return formatExplain(w, res)
}

func formatExplain(w io.Writer, res rank.Result) error {
	if res.NoCacheEntry {
		fmt.Fprintf(w, "User %d has no similarity cache entry.\n", res.User)
		return nil
	}
	if len(res.Candidates) == 0 {
		fmt.Fprintf(w, "No candidates for user %d.\n", res.User)
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-12s  %-6s  %-7s  %-6s  %s\n",
		"Rank", "Project", "Score", "Founder", "Parent", "Base")
	fmt.Fprintln(w, strings.Repeat("-", 50))
	for i, c := range res.Candidates {
		fmt.Fprintf(w, "%-4d  %-12d  %-6d  %-7d  %-6d  %d\n",
			i+1, c.Project, c.Score, c.FounderVotes, c.ParentVotes, c.BaseVotes)
	}
	if n := len(res.UnknownRelated); n > 0 {
		fmt.Fprintf(w, "\n%d similar users missing from the interaction log\n", n)
	}
	return nil
}

func addRecommendFlags(fs *pflag.FlagSet) {
	fs.Int64("user", 0, "rank a single user and print the result")
	fs.Bool("explain", false, "with --user, show the score breakdown of each candidate")
	fs.Bool("json", false, "with --user, output as JSON")
}

func init() {
	addRecommendFlags(recommendCmd.Flags())
	rootCmd.AddCommand(recommendCmd)
}
