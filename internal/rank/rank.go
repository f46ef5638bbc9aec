// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank scores candidate projects for a user from the projects of
// their similar users.
//
// Each similar user casts one vote per project they have that the query
// user does not. A vote weighs FounderWeight when the project belongs to an
// account that owns one of the query user's projects, ParentWeight when it
// is a fork of one of the query user's projects, and BaseWeight otherwise.
// Votes add up across similar users.
package rank

import (
	"cmp"
	"errors"
	"slices"

	"github.com/rs/zerolog"

	"github.com/pdiddy/cocontrib/internal/index"
	"github.com/pdiddy/cocontrib/internal/metadata"
	"github.com/pdiddy/cocontrib/internal/similarity"
	"github.com/pdiddy/cocontrib/pkg/types"
)

// ErrUnknownUser reports a query user absent from the interaction index.
var ErrUnknownUser = errors.New("unknown user")

// Candidate is a scored project with a breakdown of the votes it received.
type Candidate struct {
	Project types.ProjectID `json:"project" yaml:"project"`
	Score   int             `json:"score" yaml:"score"`

	// FounderVotes, ParentVotes, and BaseVotes count the votes cast at each weight.
	FounderVotes int `json:"founder_votes" yaml:"founder_votes"`
	ParentVotes  int `json:"parent_votes" yaml:"parent_votes"`
	BaseVotes    int `json:"base_votes" yaml:"base_votes"`
}

// Result holds every candidate for one user, best first.
type Result struct {
	User       types.UserID `json:"user" yaml:"user"`
	Candidates []Candidate  `json:"candidates" yaml:"candidates"`

	// UnknownRelated lists similar users skipped because the index does not
	// know them, which happens when the cache is older than the data.
	UnknownRelated []types.UserID `json:"unknown_related,omitempty" yaml:"unknown_related,omitempty"`

	// NoCacheEntry is set when the user has no similarity cache entry.
	NoCacheEntry bool `json:"no_cache_entry,omitempty" yaml:"no_cache_entry,omitempty"`
}

// Top returns the IDs of the first k candidates.
func (r Result) Top(k int) []types.ProjectID {
	n := len(r.Candidates)
	if k > 0 && n > k {
		n = k
	}
	out := make([]types.ProjectID, n)
	for i := range n {
		out[i] = r.Candidates[i].Project
	}
	return out
}

// Ranker reads the index, metadata, and similarity cache, none of which it
// modifies, so one Ranker can serve concurrent callers.
type Ranker struct {
	idx   *index.Index
	meta  *metadata.Catalog
	cache *similarity.Cache
	cfg   types.RankConfig
	log   zerolog.Logger
}

// New returns a Ranker. meta may be nil when no metadata feed is available.
// Zero-valued settings in cfg fall back to the defaults.
func New(idx *index.Index, meta *metadata.Catalog, cache *similarity.Cache, cfg types.RankConfig, log zerolog.Logger) *Ranker {
	def := types.DefaultRankConfig()
	if cfg.TopK <= 0 {
		cfg.TopK = def.TopK
	}
	if cfg.FounderWeight <= 0 {
		cfg.FounderWeight = def.FounderWeight
	}
	if cfg.ParentWeight <= 0 {
		cfg.ParentWeight = def.ParentWeight
	}
	if cfg.BaseWeight <= 0 {
		cfg.BaseWeight = def.BaseWeight
	}
	return &Ranker{idx: idx, meta: meta, cache: cache, cfg: cfg, log: log}
}

// TopK returns the configured list length.
func (r *Ranker) TopK() int { return r.cfg.TopK }

// Rank returns up to TopK recommended projects for u, best first.
func (r *Ranker) Rank(u types.UserID) ([]types.ProjectID, error) {
	res, err := r.Score(u)
	if err != nil {
		return nil, err
	}
	return res.Top(r.cfg.TopK), nil
}

// Score returns every candidate for u with its vote breakdown, sorted by
// descending score and then ascending project ID. An unknown u is logged
// and reported as ErrUnknownUser.
func (r *Ranker) Score(u types.UserID) (Result, error) {
	if !r.idx.HasUser(u) {
		r.log.Warn().Int64("user", int64(u)).Msg("cannot find query user in interaction index")
		return Result{User: u}, ErrUnknownUser
	}

	res := Result{User: u}

	owned := make(map[types.ProjectID]struct{})
	ownFounders := make(map[string]struct{})
	for _, p := range r.idx.Projects(u) {
		owned[p] = struct{}{}
		if f, ok := r.meta.Founder(p); ok {
			ownFounders[f] = struct{}{}
		}
	}

	similar, ok := r.cache.Get(u)
	if !ok {
		r.log.Warn().Int64("user", int64(u)).Msg("query user has no similarity cache entry")
		res.NoCacheEntry = true
		return res, nil
	}

	guesses := make(map[types.ProjectID]*Candidate)
	for _, s := range similar {
		if s == u {
			continue
		}
		if !r.idx.HasUser(s) {
			r.log.Warn().Int64("user", int64(u)).Int64("related", int64(s)).Msg("cannot find related user in interaction index")
			res.UnknownRelated = append(res.UnknownRelated, s)
			continue
		}

		for _, p := range r.idx.Projects(s) {
			if _, mine := owned[p]; mine {
				continue
			}
			c := guesses[p]
			if c == nil {
				c = &Candidate{Project: p}
				guesses[p] = c
			}
			r.vote(c, ownFounders, owned)
		}
	}

	res.Candidates = make([]Candidate, 0, len(guesses))
	for _, c := range guesses {
		res.Candidates = append(res.Candidates, *c)
	}
	slices.SortFunc(res.Candidates, func(a, b Candidate) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Project, b.Project)
	})
	return res, nil
}

// vote adds one weighted vote to c. Exactly one weight applies per vote.
func (r *Ranker) vote(c *Candidate, ownFounders map[string]struct{}, owned map[types.ProjectID]struct{}) {
	if f, ok := r.meta.Founder(c.Project); ok {
		if _, shared := ownFounders[f]; shared {
			c.Score += r.cfg.FounderWeight
			c.FounderVotes++
			return
		}
	}
	if parent, ok := r.meta.Parent(c.Project); ok {
		if _, fork := owned[parent]; fork {
			c.Score += r.cfg.ParentWeight
			c.ParentVotes++
			return
		}
	}
	c.Score += r.cfg.BaseWeight
	c.BaseVotes++
}
