// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/pdiddy/cocontrib/internal/index"
	"github.com/pdiddy/cocontrib/pkg/types"
)

var similarCmd = &cobra.Command{
	Use:   "similar <user>",
	Short: "Show the cached similar users of one user",
	Long: `Similar prints the similarity cache entry of a user, most similar first,
with the number of projects each similar user shares with them. The cache
is built first if it does not exist yet.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

// similarRow is one similar user with the projects shared with the query user.
type similarRow struct {
	User   types.UserID `json:"user"`
	Shared int          `json:"shared"`
	Known  bool         `json:"known"`
}

func runSimilar(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user %q: %w", args[0], err)
	}
	u := types.UserID(id)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := openPipeline(cmd.Context(), cfg, logger, nil, false)
	if err != nil {
		return err
	}
	defer p.Close()

	similar, ok := p.cache.Get(u)
	if !ok {
		return fmt.Errorf("user %d has no similarity cache entry", u)
	}

	rows := similarRows(p.idx, u, similar)
	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSimilarOutput(cmd.OutOrStdout(), u, rows, jsonOutput)
}

func similarRows(idx *index.Index, u types.UserID, similar []types.UserID) []similarRow {
	own := make(map[types.ProjectID]struct{})
	for _, p := range idx.Projects(u) {
		own[p] = struct{}{}
	}

	rows := make([]similarRow, 0, len(similar))
	for _, v := range similar {
		row := similarRow{User: v, Known: idx.HasUser(v)}
		for _, p := range idx.Projects(v) {
			if _, ok := own[p]; ok {
				row.Shared++
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func formatSimilarOutput(w io.Writer, u types.UserID, rows []similarRow, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			User    types.UserID `json:"user"`
			Similar []similarRow `json:"similar"`
		}{u, rows})
	}

	if len(rows) == 0 {
		fmt.Fprintf(w, "User %d has no similar users.\n", u)
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-12s  %s\n", "Rank", "User", "Shared")
	fmt.Fprintln(w, strings.Repeat("-", 28))
	for i, r := range rows {
		shared := strconv.Itoa(r.Shared)
		if !r.Known {
			shared = "unknown"
		}
		fmt.Fprintf(w, "%-4d  %-12d  %s\n", i+1, r.User, shared)
	}
	fmt.Fprintf(w, "\n%d similar users\n", len(rows))
	return nil
}

func init() {
	similarCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(similarCmd)
}
