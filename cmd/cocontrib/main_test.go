// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/cocontrib/internal/index"
	"github.com/pdiddy/cocontrib/internal/rank"
	"github.com/pdiddy/cocontrib/internal/similarity"
	"github.com/pdiddy/cocontrib/pkg/types"
)

func setKey(t *testing.T, key string, value any) {
	t.Helper()
	prev := viper.Get(key)
	viper.Set(key, value)
	t.Cleanup(func() { viper.Set(key, prev) })
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, types.DefaultPipelineConfig(), cfg)
}

func TestLoadConfig_SQLiteDefaultPath(t *testing.T) {
	setKey(t, "similarity.backend", "SQLite")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, types.BackendSQLite, cfg.Similarity.Backend)
	assert.Equal(t, defaultSQLitePath, cfg.Similarity.CachePath)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setKey(t, "similarity.cache_path", "/tmp/cache.txt")
	setKey(t, "rank.top_k", 3)
	setKey(t, "rank.founder_weight", 7)
	setKey(t, "index.dedupe", false)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cache.txt", cfg.Similarity.CachePath)
	assert.Equal(t, 3, cfg.Rank.TopK)
	assert.Equal(t, 7, cfg.Rank.FounderWeight)
	assert.False(t, cfg.Index.Dedupe)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"unknown backend", "similarity.backend", "redis"},
		{"zero top_n", "similarity.top_n", 0},
		{"negative top_k", "rank.top_k", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setKey(t, tt.key, tt.value)
			_, err := loadConfig()
			assert.Error(t, err)
		})
	}
}

func testRanker(t *testing.T) (*index.Index, *rank.Ranker) {
	t.Helper()
	idx := index.FromInteractions(types.IndexConfig{Dedupe: true},
		types.Interaction{User: 1, Project: 10},
		types.Interaction{User: 1, Project: 11},
		types.Interaction{User: 2, Project: 10},
		types.Interaction{User: 2, Project: 12},
		types.Interaction{User: 3, Project: 11},
		types.Interaction{User: 3, Project: 12},
	)
	cache := similarity.NewCache(map[types.UserID][]types.UserID{
		1: {2, 3},
		2: {},
	})
	return idx, rank.New(idx, nil, cache, types.DefaultRankConfig(), zerolog.Nop())
}

func TestRecommendOne(t *testing.T) {
	_, ranker := testRanker(t)

	var buf bytes.Buffer
	require.NoError(t, recommendOne(&buf, ranker, 1, false, false))
	assert.Equal(t, "1:12\n", buf.String())
}

func TestRecommendOne_Explain(t *testing.T) {
	_, ranker := testRanker(t)

	var buf bytes.Buffer
	require.NoError(t, recommendOne(&buf, ranker, 1, true, false))
	out := buf.String()
	assert.Contains(t, out, "Founder")
	assert.Regexp(t, `1\s+12\s+2\s+0\s+0\s+2`, out)
}

func TestRecommendOne_ExplainJSON(t *testing.T) {
	_, ranker := testRanker(t)

	var buf bytes.Buffer
	require.NoError(t, recommendOne(&buf, ranker, 1, true, true))
	assert.Contains(t, buf.String(), `"base_votes": 2`)
	assert.Contains(t, buf.String(), `"project": 12`)
}

func TestRecommendOne_NoCandidates(t *testing.T) {
	_, ranker := testRanker(t)

	var buf bytes.Buffer
	require.NoError(t, recommendOne(&buf, ranker, 2, true, false))
	assert.Contains(t, buf.String(), "No candidates for user 2")

	buf.Reset()
	require.NoError(t, recommendOne(&buf, ranker, 3, true, false))
	assert.Contains(t, buf.String(), "no similarity cache entry")
}

func TestRecommendOne_UnknownUser(t *testing.T) {
	_, ranker := testRanker(t)

	var buf bytes.Buffer
	err := recommendOne(&buf, ranker, 99, false, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in the interaction log")
	assert.Empty(t, buf.String())
}

func TestSimilarRows(t *testing.T) {
	idx, _ := testRanker(t)

	rows := similarRows(idx, 1, []types.UserID{2, 3, 99})
	assert.Equal(t, []similarRow{
		{User: 2, Shared: 1, Known: true},
		{User: 3, Shared: 1, Known: true},
		{User: 99, Shared: 0, Known: false},
	}, rows)

	var buf bytes.Buffer
	require.NoError(t, formatSimilarOutput(&buf, 1, rows, false))
	assert.Contains(t, buf.String(), "unknown")
	assert.Contains(t, buf.String(), "3 similar users")
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func fixtureConfig(t *testing.T) (types.PipelineConfig, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := types.DefaultPipelineConfig()
	cfg.Data.Interactions = writeFixture(t, dir, "data.txt", "1:10\n1:11\n2:10\n2:12\n")
	cfg.Similarity.CachePath = filepath.Join(dir, "output", "usercache.txt")
	return cfg, dir
}

func TestOpenPipeline_MissingMetadataFile(t *testing.T) {
	cfg, dir := fixtureConfig(t)
	cfg.Data.Metadata = filepath.Join(dir, "repos.txt")

	p, err := openPipeline(t.Context(), cfg, zerolog.Nop(), nil, true)
	require.NoError(t, err)
	defer p.Close()

	assert.Nil(t, p.meta)
	assert.Equal(t, 2, p.idx.NumUsers())
	assert.Equal(t, 2, p.cache.Len())
	assert.FileExists(t, cfg.Similarity.CachePath)
}

func TestOpenPipeline_LoadsMetadata(t *testing.T) {
	cfg, dir := fixtureConfig(t)
	cfg.Data.Metadata = writeFixture(t, dir, "repos.txt", "12:alice/tool,2014-01-01\n")

	p, err := openPipeline(t.Context(), cfg, zerolog.Nop(), nil, true)
	require.NoError(t, err)
	defer p.Close()

	require.NotNil(t, p.meta)
	assert.Equal(t, 1, p.meta.Len())
}

func TestCheckRecommendFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"batch", nil, ""},
		{"single user", []string{"--user", "1"}, ""},
		{"explain with user", []string{"--user", "1", "--explain", "--json"}, ""},
		{"explain without user", []string{"--explain"}, "--explain needs --user"},
		{"json without user", []string{"--json"}, "--json needs --user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := pflag.NewFlagSet("recommend", pflag.ContinueOnError)
			addRecommendFlags(fs)
			require.NoError(t, fs.Parse(tt.args))

			err := checkRecommendFlags(fs)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	printVersion(&buf, "1.2.0", "abc1234")
	assert.Regexp(t, `^cocontrib 1\.2\.0 \(abc1234\) \S+/\S+ .+\n$`, buf.String())

	buf.Reset()
	printVersion(&buf, "dev", "")
	assert.Regexp(t, `^cocontrib dev \S+/\S+ .+\n$`, buf.String())
}
