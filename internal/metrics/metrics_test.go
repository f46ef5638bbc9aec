// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := New()
	r.SetIndex(3, 4, 5, 1)
	r.SetMetadata(2)
	r.SetCache(3, "built")
	r.ObserveStage("rank", 1500*time.Millisecond)
	r.CountQuery(OutcomeRanked)
	r.CountQuery(OutcomeRanked)
	r.CountQuery(OutcomeUnknownUser)
	r.AddUnknownRelated(2)

	assert.Equal(t, 3.0, testutil.ToFloat64(r.indexUsers))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.indexDupes))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.cacheUsers.WithLabelValues("built")))
	assert.Equal(t, 1.5, testutil.ToFloat64(r.stageSeconds.WithLabelValues("rank")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.queries.WithLabelValues(OutcomeRanked)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.queries.WithLabelValues(OutcomeUnknownUser)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.unknownRelated))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.SetIndex(3, 4, 5, 0)
	path := filepath.Join(t.TempDir(), "cocontrib.prom")

	require.NoError(t, r.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cocontrib_index_users 3")
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.SetIndex(1, 1, 1, 1)
		r.SetMetadata(1)
		r.SetCache(1, "loaded")
		r.ObserveStage("index", time.Second)
		r.CountQuery(OutcomeEmpty)
		r.AddUnknownRelated(1)
		assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
		assert.Nil(t, r.Registry())
	})
}
