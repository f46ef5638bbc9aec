// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package results

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cocontrib/pkg/types"
)

type urls map[types.ProjectID]string

func (u urls) URL(p types.ProjectID) (string, bool) {
	s, ok := u[p]
	return s, ok
}

// recordingSink remembers rows and can fail on demand.
type recordingSink struct {
	rows     []types.Recommendation
	writeErr error
	closed   bool
}

func (r *recordingSink) Write(rec types.Recommendation) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	r.rows = append(r.rows, rec)
	return nil
}

func (r *recordingSink) Close() error {
	r.closed = true
	return nil
}

func sampleRecs() []types.Recommendation {
	return []types.Recommendation{
		{User: 1, Projects: []types.ProjectID{12}},
		{User: 5, Projects: []types.ProjectID{}},
		{User: 2, Projects: []types.ProjectID{30, 4, 17}},
	}
}

func TestLineSink_WriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.txt")
	sink, err := Create(path)
	require.NoError(t, err)

	for _, rec := range sampleRecs() {
		require.NoError(t, sink.Write(rec))
	}
	assert.Equal(t, 3, sink.Rows())
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1:12\n5:\n2:30,4,17\n", string(data))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, sampleRecs(), got)
}

func TestRead_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	require.NoError(t, os.WriteFile(path, []byte("1:2\n3:x\n"), 0o644))

	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":2:")
}

func TestTee(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	sink := Tee(a, b)

	require.NoError(t, sink.Write(sampleRecs()[0]))
	require.NoError(t, sink.Close())
	assert.Len(t, a.rows, 1)
	assert.Len(t, b.rows, 1)
	assert.True(t, a.closed)
	assert.True(t, b.closed)

	boom := errors.New("disk full")
	failing := Tee(&recordingSink{writeErr: boom}, b)
	assert.ErrorIs(t, failing.Write(sampleRecs()[0]), boom)
	assert.Len(t, b.rows, 1)
}

func TestEntries(t *testing.T) {
	entries := Entries(sampleRecs(), urls{12: "alice/widget", 4: "bob/tool"})
	require.Len(t, entries, 3)
	assert.Equal(t, []ExportProject{{ID: 12, URL: "alice/widget"}}, entries[0].Projects)
	assert.Empty(t, entries[1].Projects)
	assert.Equal(t, ExportProject{ID: 4, URL: "bob/tool"}, entries[2].Projects[1])
	assert.Equal(t, ExportProject{ID: 30}, entries[2].Projects[0])

	bare := Entries(sampleRecs(), nil)
	assert.Equal(t, []ExportProject{{ID: 12}}, bare[0].Projects)
}

func TestExportYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.yaml")
	require.NoError(t, ExportYAML(path, sampleRecs(), urls{12: "alice/widget"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []ExportEntry
	require.NoError(t, yaml.Unmarshal(data, &got))
	require.Len(t, got, 3)
	assert.Equal(t, types.UserID(2), got[2].User)
	assert.Equal(t, "alice/widget", got[0].Projects[0].URL)
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, ExportJSON(path, sampleRecs(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []ExportEntry
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, Entries(sampleRecs(), nil), got)
}
