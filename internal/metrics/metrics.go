// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics collects Prometheus metrics for a batch run and writes them
// in text format for a node_exporter textfile collector. A nil *Recorder is a
// valid no-op recorder.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Query outcomes.
const (
	OutcomeRanked      = "ranked"
	OutcomeUnknownUser = "unknown_user"
	OutcomeEmpty       = "empty"
)

// Recorder holds the metrics of one run on a private registry.
type Recorder struct {
	reg *prometheus.Registry

	indexUsers     prometheus.Gauge
	indexProjects  prometheus.Gauge
	indexPairs     prometheus.Gauge
	indexDupes     prometheus.Gauge
	metadataProjs  prometheus.Gauge
	cacheUsers     *prometheus.GaugeVec
	stageSeconds   *prometheus.GaugeVec
	queries        *prometheus.CounterVec
	unknownRelated prometheus.Counter
}

// New returns a Recorder with all metrics registered.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		indexUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cocontrib_index_users",
			Help: "Distinct users in the interaction index",
		}),
		indexProjects: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cocontrib_index_projects",
			Help: "Distinct projects in the interaction index",
		}),
		indexPairs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cocontrib_index_interactions",
			Help: "User/project pairs stored in the interaction index",
		}),
		indexDupes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cocontrib_index_duplicates_dropped",
			Help: "Repeated user/project pairs dropped at ingestion",
		}),
		metadataProjs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cocontrib_metadata_projects",
			Help: "Projects with a metadata record",
		}),
		cacheUsers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cocontrib_similarity_cache_users",
			Help: "Users with a similarity cache entry",
		}, []string{"origin"}),
		stageSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cocontrib_stage_duration_seconds",
			Help: "Wall time spent in each pipeline stage",
		}, []string{"stage"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cocontrib_queries_total",
			Help: "Query users processed, by outcome",
		}, []string{"outcome"}),
		unknownRelated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cocontrib_unknown_related_users_total",
			Help: "Similar users skipped because the index does not know them",
		}),
	}
	r.reg.MustRegister(
		r.indexUsers, r.indexProjects, r.indexPairs, r.indexDupes,
		r.metadataProjs, r.cacheUsers, r.stageSeconds, r.queries, r.unknownRelated,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// SetIndex records interaction index sizes.
func (r *Recorder) SetIndex(users, projects, pairs, duplicates int) {
	if r == nil {
		return
	}
	r.indexUsers.Set(float64(users))
	r.indexProjects.Set(float64(projects))
	r.indexPairs.Set(float64(pairs))
	r.indexDupes.Set(float64(duplicates))
}

// SetMetadata records the number of projects with metadata.
func (r *Recorder) SetMetadata(projects int) {
	if r == nil {
		return
	}
	r.metadataProjs.Set(float64(projects))
}

// SetCache records the similarity cache size and whether it was loaded or built.
func (r *Recorder) SetCache(users int, origin string) {
	if r == nil {
		return
	}
	r.cacheUsers.WithLabelValues(origin).Set(float64(users))
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageSeconds.WithLabelValues(stage).Set(d.Seconds())
}

// CountQuery increments the counter for a query outcome.
func (r *Recorder) CountQuery(outcome string) {
	if r == nil {
		return
	}
	r.queries.WithLabelValues(outcome).Inc()
}

// AddUnknownRelated adds n skipped similar users.
func (r *Recorder) AddUnknownRelated(n int) {
	if r == nil || n == 0 {
		return
	}
	r.unknownRelated.Add(float64(n))
}

// WriteTextfile writes all metrics to path in Prometheus text format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
