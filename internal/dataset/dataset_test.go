// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/cocontrib/pkg/types"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInteractions(t *testing.T) {
	path := writeFile(t, "1:10\n1:11\n\n2:10\n")

	got, err := Collect(Interactions(path))
	require.NoError(t, err)
	assert.Equal(t, []types.Interaction{
		{User: 1, Project: 10},
		{User: 1, Project: 11},
		{User: 2, Project: 10},
	}, got)
}

func TestInteractions_Restartable(t *testing.T) {
	path := writeFile(t, "1:10\n2:20\n")
	seq := Interactions(path)

	first, err := Collect(seq)
	require.NoError(t, err)
	second, err := Collect(seq)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestInteractions_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{name: "missing separator", content: "1:10\n110\n", wantMsg: ":2:"},
		{name: "non-numeric user", content: "abc:10\n", wantMsg: "user"},
		{name: "non-numeric project", content: "1:ten\n", wantMsg: "project"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.content)
			_, err := Collect(Interactions(path))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedRecord))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestInteractions_MissingFile(t *testing.T) {
	_, err := Collect(Interactions(filepath.Join(t.TempDir(), "nope.txt")))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMalformedRecord))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestInteractions_EarlyBreak(t *testing.T) {
	path := writeFile(t, "1:10\n2:20\n3:30\n")
	count := 0
	for _, err := range Interactions(path) {
		require.NoError(t, err)
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestProjects(t *testing.T) {
	path := writeFile(t, "10:alice/widget,2009-02-10\n11:bob/widget,2009-03-01,10\n12:,2009-03-02\n13:carol/tool\n")

	got, err := Collect(Projects(path))
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, types.ProjectID(10), got[0].ID)
	assert.Equal(t, "alice/widget", got[0].URL)
	assert.Equal(t, "2009-02-10", got[0].Created)
	assert.Nil(t, got[0].Parent)

	require.NotNil(t, got[1].Parent)
	assert.Equal(t, types.ProjectID(10), *got[1].Parent)

	assert.Empty(t, got[2].URL)
	assert.Equal(t, "carol/tool", got[3].URL)
	assert.Empty(t, got[3].Created)
}

func TestProjects_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing separator", content: "10 alice/widget\n"},
		{name: "bad id", content: "x:alice/widget,2009-02-10\n"},
		{name: "bad parent", content: "10:alice/widget,2009-02-10,abc\n"},
		{name: "too many fields", content: "10:alice/widget,2009-02-10,3,4\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Collect(Projects(writeFile(t, tt.content)))
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestUsers(t *testing.T) {
	got, err := Collect(Users(writeFile(t, "5\n 7 \n\n9999\n")))
	require.NoError(t, err)
	assert.Equal(t, []types.UserID{5, 7, 9999}, got)

	_, err = Collect(Users(writeFile(t, "5\nfive\n")))
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestFromSlice(t *testing.T) {
	got, err := Collect(FromSlice([]types.UserID{3, 1, 2}))
	require.NoError(t, err)
	assert.Equal(t, []types.UserID{3, 1, 2}, got)
}
