// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch ranks a list of query users and writes their
// recommendations in query order.
package batch

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/cocontrib/internal/metrics"
	"github.com/pdiddy/cocontrib/internal/rank"
	"github.com/pdiddy/cocontrib/internal/results"
	"github.com/pdiddy/cocontrib/pkg/types"
)

// Scorer produces the scored candidates for one user. *rank.Ranker
// satisfies it.
type Scorer interface {
	Score(u types.UserID) (rank.Result, error)
	TopK() int
}

// Summary holds counts from a batch run.
type Summary struct {
	Queries        int
	Ranked         int
	Skipped        int
	Empty          int
	UnknownRelated int
	Elapsed        time.Duration
}

// Written returns the number of rows sent to the sink.
func (s Summary) Written() int {
	return s.Ranked + s.Empty
}

type outcome struct {
	res rank.Result
	err error
}

// Run ranks every user in queries and writes one row per known user to
// sink, in the order the users were listed. Unknown users are skipped.
// Users are ranked concurrently on up to cfg.Workers goroutines.
func Run(ctx context.Context, scorer Scorer, queries iter.Seq2[types.UserID, error], sink results.Sink, cfg types.RankConfig, rec *metrics.Recorder, log zerolog.Logger) (Summary, error) {
	start := time.Now()

	var users []types.UserID
	for u, err := range queries {
		if err != nil {
			return Summary{}, fmt.Errorf("reading query users: %w", err)
		}
		users = append(users, u)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	outcomes := make([]outcome, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var finished atomic.Int64
	for i, u := range users {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := scorer.Score(u)
			if err != nil && !errors.Is(err, rank.ErrUnknownUser) {
				return fmt.Errorf("ranking user %d: %w", u, err)
			}
			outcomes[i] = outcome{res: res, err: err}
			n := finished.Add(1)
			if cfg.ProgressEvery > 0 && n%int64(cfg.ProgressEvery) == 0 {
				log.Debug().Int64("done", n).Int("total", len(users)).Msg("ranking query users")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	summary := Summary{Queries: len(users)}
	for i, u := range users {
		o := outcomes[i]
		if o.err != nil {
			summary.Skipped++
			rec.CountQuery(metrics.OutcomeUnknownUser)
			continue
		}

		summary.UnknownRelated += len(o.res.UnknownRelated)
		rec.AddUnknownRelated(len(o.res.UnknownRelated))

		row := types.Recommendation{User: u, Projects: o.res.Top(scorer.TopK())}
		if err := sink.Write(row); err != nil {
			return summary, err
		}
		if len(row.Projects) == 0 {
			summary.Empty++
			rec.CountQuery(metrics.OutcomeEmpty)
		} else {
			summary.Ranked++
			rec.CountQuery(metrics.OutcomeRanked)
		}
	}

	summary.Elapsed = time.Since(start)
	rec.ObserveStage("rank", summary.Elapsed)
	log.Info().
		Int("queries", summary.Queries).
		Int("ranked", summary.Ranked).
		Int("empty", summary.Empty).
		Int("skipped", summary.Skipped).
		Int("unknown_related", summary.UnknownRelated).
		Dur("elapsed", summary.Elapsed).
		Msg("ranking finished")
	return summary, nil
}
