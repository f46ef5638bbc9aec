// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package similarity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/cocontrib/internal/index"
	"github.com/pdiddy/cocontrib/pkg/types"
)

// Origin records how Open produced its cache.
type Origin string

const (
	OriginLoaded Origin = "loaded"
	OriginBuilt  Origin = "built"
)

// Open returns the cache held by store, or builds and saves a fresh one
// when the store is empty or cfg.Clean is set.
func Open(ctx context.Context, idx *index.Index, store Store, cfg types.SimilarityConfig, log zerolog.Logger) (*Cache, Origin, error) {
	exists, err := store.Exists(ctx)
	if err != nil {
		return nil, "", err
	}

	if exists && !cfg.Clean {
		c, err := store.Load(ctx)
		if err != nil {
			if errors.Is(err, ErrCacheCorrupt) {
				return nil, "", fmt.Errorf("similarity cache at %s is corrupt, rerun with --clean to rebuild: %w", store.Location(), err)
			}
			return nil, "", err
		}
		log.Debug().Int("keys", c.Len()).Str("store", store.Location()).Msg("similarity cache loaded")
		return c, OriginLoaded, nil
	}

	start := time.Now()
	log.Info().Int("users", idx.NumUsers()).Bool("clean", cfg.Clean).Msg("building similarity cache")

	c, err := Build(ctx, idx, cfg, log)
	if err != nil {
		return nil, "", fmt.Errorf("building similarity cache: %w", err)
	}
	if err := store.Save(ctx, c); err != nil {
		return nil, "", fmt.Errorf("saving similarity cache to %s: %w", store.Location(), err)
	}

	log.Info().
		Int("keys", c.Len()).
		Str("store", store.Location()).
		Dur("elapsed", time.Since(start)).
		Msg("similarity cache built")
	return c, OriginBuilt, nil
}
