// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/cocontrib/internal/dataset"
	"github.com/pdiddy/cocontrib/internal/index"
	"github.com/pdiddy/cocontrib/internal/logging"
	"github.com/pdiddy/cocontrib/internal/metadata"
	"github.com/pdiddy/cocontrib/internal/metrics"
	"github.com/pdiddy/cocontrib/internal/similarity"
	"github.com/pdiddy/cocontrib/internal/store"
	"github.com/pdiddy/cocontrib/pkg/types"
)

// pipeline holds the loaded state shared by the seed, similar, and
// recommend commands.
type pipeline struct {
	cfg   types.PipelineConfig
	log   zerolog.Logger
	rec   *metrics.Recorder
	idx   *index.Index
	meta  *metadata.Catalog
	cache *similarity.Cache

	// db is non-nil when the sqlite backend is selected.
	db *store.SQLite
}

// Close releases the sqlite database, if one was opened.
func (p *pipeline) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

// openPipeline builds the interaction index, loads project metadata when
// withMeta is set, and opens the similarity cache.
func openPipeline(ctx context.Context, cfg types.PipelineConfig, log zerolog.Logger, rec *metrics.Recorder, withMeta bool) (*pipeline, error) {
	p := &pipeline{cfg: cfg, log: log, rec: rec}

	if err := p.loadIndex(); err != nil {
		return nil, err
	}
	if withMeta {
		if err := p.loadMetadata(); err != nil {
			return nil, err
		}
	}

	cacheStore, err := p.cacheStore()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cache, origin, err := similarity.Open(ctx, p.idx, cacheStore, cfg.Similarity, logging.Component(log, "similarity"))
	if err != nil {
		p.Close()
		return nil, err
	}
	rec.ObserveStage("similarity", time.Since(start))
	rec.SetCache(cache.Len(), string(origin))
	log.Info().
		Int("keys", cache.Len()).
		Str("origin", string(origin)).
		Str("store", cacheStore.Location()).
		Msg("similarity cache ready")

	p.cache = cache
	return p, nil
}

func (p *pipeline) loadIndex() error {
	start := time.Now()
	idx, err := index.Build(dataset.Interactions(p.cfg.Data.Interactions), p.cfg.Index)
	if err != nil {
		return fmt.Errorf("building interaction index: %w", err)
	}
	p.rec.ObserveStage("index", time.Since(start))
	p.rec.SetIndex(idx.NumUsers(), idx.NumProjects(), idx.NumInteractions(), idx.Duplicates())
	p.log.Info().
		Str("path", p.cfg.Data.Interactions).
		Int("users", idx.NumUsers()).
		Int("projects", idx.NumProjects()).
		Int("duplicates", idx.Duplicates()).
		Msg("interaction index built")
	p.idx = idx
	return nil
}

// loadMetadata leaves p.meta nil when the feed is not configured or the
// file does not exist; every project then scores at the base weight.
func (p *pipeline) loadMetadata() error {
	path := p.cfg.Data.Metadata
	if path == "" {
		p.log.Info().Msg("no metadata feed configured")
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		p.log.Info().Str("path", path).Msg("metadata feed not found, scoring without metadata")
		return nil
	}

	start := time.Now()
	meta, err := metadata.Load(dataset.Projects(path))
	if err != nil {
		return fmt.Errorf("loading project metadata: %w", err)
	}
	p.rec.ObserveStage("metadata", time.Since(start))
	p.rec.SetMetadata(meta.Len())
	p.log.Info().Str("path", path).Int("projects", meta.Len()).Msg("project metadata loaded")
	p.meta = meta
	return nil
}

func (p *pipeline) cacheStore() (similarity.Store, error) {
	path := p.cfg.Similarity.CachePath
	if p.cfg.Similarity.Backend != types.BackendSQLite {
		return similarity.NewFileStore(path), nil
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	p.db = db
	return db, nil
}

// writeMetrics writes the textfile when one is configured.
func writeMetrics(cfg types.PipelineConfig, rec *metrics.Recorder, log zerolog.Logger) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
		log.Warn().Err(err).Str("path", cfg.MetricsFile).Msg("cannot write metrics file")
		return
	}
	log.Debug().Str("path", cfg.MetricsFile).Msg("metrics written")
}
