package types

// CacheBackend selects where the similarity cache is persisted.
type CacheBackend string

const (
	BackendFile   CacheBackend = "file"
	BackendSQLite CacheBackend = "sqlite"
)

// DataConfig holds the locations of the batch inputs and outputs.
type DataConfig struct {
	// Interactions is the "user:project" interaction log.
	Interactions string `json:"interactions" yaml:"interactions"`

	// Metadata is the optional project metadata feed. A missing file means
	// no metadata is available.
	Metadata string `json:"metadata" yaml:"metadata"`

	// Queries lists the users to produce recommendations for, one per line.
	Queries string `json:"queries" yaml:"queries"`

	// Results is where "user:p1,p2" result lines are written.
	Results string `json:"results" yaml:"results"`
}

// IndexConfig holds settings for building the interaction index.
type IndexConfig struct {
	// Dedupe drops repeated (user, project) pairs at ingestion (default true).
	Dedupe bool `json:"dedupe" yaml:"dedupe"`
}

// SimilarityConfig holds settings for the similar-users cache.
type SimilarityConfig struct {
	// TopN is the number of similar users kept per user (default 30).
	TopN int `json:"top_n" yaml:"top_n"`

	// IncludeSelf counts a user as similar to themselves. Off by default.
	IncludeSelf bool `json:"include_self" yaml:"include_self"`

	// Workers bounds the number of users scored concurrently.
	Workers int `json:"workers" yaml:"workers"`

	// ProgressEvery logs build progress after this many users (default 1000).
	ProgressEvery int `json:"progress_every" yaml:"progress_every"`

	// CachePath is the file (file backend) or database (sqlite backend) location.
	CachePath string `json:"cache_path" yaml:"cache_path"`

	// Backend selects the persistence backend: file or sqlite.
	Backend CacheBackend `json:"backend" yaml:"backend"`

	// Clean forces a rebuild even when a persisted cache exists.
	Clean bool `json:"clean" yaml:"clean"`
}

// RankConfig holds settings for the ranking stage.
type RankConfig struct {
	// TopK is the number of projects recommended per user (default 10).
	TopK int `json:"top_k" yaml:"top_k"`

	// FounderWeight is the vote for a candidate owned by the same account as
	// one of the user's projects (default 5).
	FounderWeight int `json:"founder_weight" yaml:"founder_weight"`

	// ParentWeight is the vote for a candidate forked from one of the user's
	// projects (default 3).
	ParentWeight int `json:"parent_weight" yaml:"parent_weight"`

	// BaseWeight is the vote for any other candidate (default 1).
	BaseWeight int `json:"base_weight" yaml:"base_weight"`

	// Workers bounds the number of query users ranked concurrently.
	Workers int `json:"workers" yaml:"workers"`

	// ProgressEvery logs ranking progress after this many users (default 100).
	ProgressEvery int `json:"progress_every" yaml:"progress_every"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is the minimum level: debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is console or json.
	Format string `json:"format" yaml:"format"`
}

// PipelineConfig groups all stage configurations for a batch run.
type PipelineConfig struct {
	Data       DataConfig       `json:"data" yaml:"data"`
	Index      IndexConfig      `json:"index" yaml:"index"`
	Similarity SimilarityConfig `json:"similarity" yaml:"similarity"`
	Rank       RankConfig       `json:"rank" yaml:"rank"`
	Log        LogConfig        `json:"log" yaml:"log"`

	// MetricsFile receives Prometheus text-format metrics at the end of a
	// run. Empty disables metrics output.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
}

// DefaultSimilarityConfig returns the similarity settings used when none are given.
func DefaultSimilarityConfig() SimilarityConfig {
	return SimilarityConfig{
		TopN:          30,
		ProgressEvery: 1000,
		CachePath:     "output/usercache.txt",
		Backend:       BackendFile,
	}
}

// DefaultRankConfig returns the ranking settings used when none are given.
func DefaultRankConfig() RankConfig {
	return RankConfig{
		TopK:          10,
		FounderWeight: 5,
		ParentWeight:  3,
		BaseWeight:    1,
		ProgressEvery: 100,
	}
}

// DefaultPipelineConfig returns a complete configuration with defaults applied.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Data: DataConfig{
			Interactions: "data/data.txt",
			Metadata:     "data/repos.txt",
			Queries:      "data/test.txt",
			Results:      "results.txt",
		},
		Index:      IndexConfig{Dedupe: true},
		Similarity: DefaultSimilarityConfig(),
		Rank:       DefaultRankConfig(),
		Log:        LogConfig{Level: "info", Format: "console"},
	}
}
