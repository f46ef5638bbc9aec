// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metadata

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/cocontrib/internal/dataset"
	"github.com/pdiddy/cocontrib/pkg/types"
)

func parentOf(p types.ProjectID) *types.ProjectID { return &p }

func TestLookups(t *testing.T) {
	c, err := Load(dataset.FromSlice([]types.ProjectRecord{
		{ID: 1, URL: "alice/widget", Created: "2009-02-10"},
		{ID: 2, URL: "bob/widget", Parent: parentOf(1)},
		{ID: 3},
		{ID: 4, URL: "standalone"},
	}))
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())

	tests := []struct {
		name        string
		id          types.ProjectID
		wantFounder string
		wantURL     string
		wantParent  types.ProjectID
		hasParent   bool
	}{
		{name: "owner prefix", id: 1, wantFounder: "alice", wantURL: "alice/widget"},
		{name: "fork", id: 2, wantFounder: "bob", wantURL: "bob/widget", wantParent: 1, hasParent: true},
		{name: "no url", id: 3},
		{name: "no separator", id: 4, wantFounder: "standalone", wantURL: "standalone"},
		{name: "unknown project", id: 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			founder, ok := c.Founder(tt.id)
			assert.Equal(t, tt.wantFounder != "", ok)
			assert.Equal(t, tt.wantFounder, founder)

			url, ok := c.URL(tt.id)
			assert.Equal(t, tt.wantURL != "", ok)
			assert.Equal(t, tt.wantURL, url)

			parent, ok := c.Parent(tt.id)
			assert.Equal(t, tt.hasParent, ok)
			assert.Equal(t, tt.wantParent, parent)
		})
	}
}

func TestNilCatalog(t *testing.T) {
	var c *Catalog

	_, ok := c.Founder(1)
	assert.False(t, ok)
	_, ok = c.Parent(1)
	assert.False(t, ok)
	_, ok = c.URL(1)
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestLoad_PropagatesSourceError(t *testing.T) {
	boom := errors.New("bad metadata")
	seq := func(yield func(types.ProjectRecord, error) bool) {
		yield(types.ProjectRecord{}, boom)
	}
	_, err := Load(seq)
	assert.ErrorIs(t, err, boom)
}

func TestFounder(t *testing.T) {
	assert.Equal(t, "alice", Founder("alice/widget"))
	assert.Equal(t, "alice", Founder("alice/widget/extra"))
	assert.Equal(t, "", Founder(""))
	assert.Equal(t, "", Founder("/widget"))
}
