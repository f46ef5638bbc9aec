package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountDocWords_OnlyDocsDir(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(docs, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "NOTES.md"), []byte("outside the docs tree"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "usage.md"), []byte("run build-cache first"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "config.yaml"), []byte("top_k: 10"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "data.txt"), []byte("1:2 3:4"), 0o644))

	n, err := countDocWords(docs)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestCountDocWords_MissingDir(t *testing.T) {
	n, err := countDocWords(filepath.Join(t.TempDir(), "docs"))
	require.NoError(t, err)
	assert.Zero(t, n)
}
