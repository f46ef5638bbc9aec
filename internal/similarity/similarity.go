// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package similarity computes and persists, for every user, the users who
// share the most projects with them.
//
// A Cache is built once from the interaction index, saved through a Store,
// and reloaded verbatim on later runs. There is no incremental update: a
// stale or corrupt cache is replaced by a full rebuild.
package similarity

import (
	"cmp"
	"context"
	"runtime"
	"slices"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/cocontrib/internal/index"
	"github.com/pdiddy/cocontrib/pkg/types"
)

// Cache maps each user to their similar users, most similar first.
type Cache struct {
	entries map[types.UserID][]types.UserID
}

// NewCache wraps an existing mapping. The cache takes ownership of entries.
func NewCache(entries map[types.UserID][]types.UserID) *Cache {
	if entries == nil {
		entries = make(map[types.UserID][]types.UserID)
	}
	return &Cache{entries: entries}
}

// Get returns the similar users of u in rank order. The second result is
// false when u has no entry. The returned slice must not be modified.
func (c *Cache) Get(u types.UserID) ([]types.UserID, bool) {
	list, ok := c.entries[u]
	return list, ok
}

// Contains reports whether u has an entry.
func (c *Cache) Contains(u types.UserID) bool {
	_, ok := c.entries[u]
	return ok
}

// Len returns the number of users with an entry.
func (c *Cache) Len() int { return len(c.entries) }

// Users returns every user with an entry in ascending order.
func (c *Cache) Users() []types.UserID {
	out := make([]types.UserID, 0, len(c.entries))
	for u := range c.entries {
		out = append(out, u)
	}
	slices.Sort(out)
	return out
}

type scored struct {
	user  types.UserID
	count int
}

// Similar ranks the co-contributors of u by the number of projects they
// share with u, breaking ties by ascending user ID, and returns the first
// topN. u itself is left out unless includeSelf is set.
func Similar(idx *index.Index, u types.UserID, topN int, includeSelf bool) []types.UserID {
	counts := make(map[types.UserID]int)
	for _, p := range idx.Projects(u) {
		for _, v := range idx.Contributors(p) {
			if v == u && !includeSelf {
				continue
			}
			counts[v]++
		}
	}

	ranked := make([]scored, 0, len(counts))
	for v, n := range counts {
		ranked = append(ranked, scored{user: v, count: n})
	}
	slices.SortFunc(ranked, func(a, b scored) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.user, b.user)
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	out := make([]types.UserID, len(ranked))
	for i, s := range ranked {
		out[i] = s.user
	}
	return out
}

// Build computes the similar-users list of every user in idx. Users are
// scored concurrently, each on its own counter map; the result does not
// depend on scheduling.
func Build(ctx context.Context, idx *index.Index, cfg types.SimilarityConfig, log zerolog.Logger) (*Cache, error) {
	users := idx.Users()
	lists := make([][]types.UserID, len(users))

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	topN := cfg.TopN
	if topN <= 0 {
		topN = types.DefaultSimilarityConfig().TopN
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var done atomic.Int64
	total := len(users)
	for i, u := range users {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lists[i] = Similar(idx, u, topN, cfg.IncludeSelf)
			n := done.Add(1)
			if cfg.ProgressEvery > 0 && n%int64(cfg.ProgressEvery) == 0 {
				log.Debug().Int64("done", n).Int("total", total).Msg("seeding similarity cache")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := make(map[types.UserID][]types.UserID, len(users))
	for i, u := range users {
		entries[u] = lists[i]
	}
	return NewCache(entries), nil
}
