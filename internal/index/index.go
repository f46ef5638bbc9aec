// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index builds the bidirectional user/project mapping from the
// interaction log.
package index

import (
	"iter"
	"slices"

	"github.com/pdiddy/cocontrib/pkg/types"
)

// Index maps each user to the projects they contributed to and each project
// to its contributors. It is read-only once built.
//
// Project and user lists are sorted ascending. When deduplication is
// disabled a repeated pair appears once per occurrence in both lists.
type Index struct {
	users        map[types.UserID][]types.ProjectID
	projects     map[types.ProjectID][]types.UserID
	interactions int
	duplicates   int
}

// Build consumes the interaction sequence and returns the finished index.
// The first error from the sequence aborts the build.
func Build(seq iter.Seq2[types.Interaction, error], cfg types.IndexConfig) (*Index, error) {
	idx := &Index{
		users:    make(map[types.UserID][]types.ProjectID),
		projects: make(map[types.ProjectID][]types.UserID),
	}

	var seen map[types.Interaction]struct{}
	if cfg.Dedupe {
		seen = make(map[types.Interaction]struct{})
	}

	for it, err := range seq {
		if err != nil {
			return nil, err
		}
		if seen != nil {
			if _, dup := seen[it]; dup {
				idx.duplicates++
				continue
			}
			seen[it] = struct{}{}
		}
		idx.users[it.User] = append(idx.users[it.User], it.Project)
		idx.projects[it.Project] = append(idx.projects[it.Project], it.User)
		idx.interactions++
	}

	for _, ps := range idx.users {
		slices.Sort(ps)
	}
	for _, us := range idx.projects {
		slices.Sort(us)
	}
	return idx, nil
}

// FromInteractions builds an index from an in-memory slice.
func FromInteractions(cfg types.IndexConfig, interactions ...types.Interaction) *Index {
	idx, _ := Build(func(yield func(types.Interaction, error) bool) {
		for _, it := range interactions {
			if !yield(it, nil) {
				return
			}
		}
	}, cfg)
	return idx
}

// HasUser reports whether u appears in the interaction log.
func (x *Index) HasUser(u types.UserID) bool {
	_, ok := x.users[u]
	return ok
}

// Projects returns the projects of u, or nil for an unknown user.
// The returned slice must not be modified.
func (x *Index) Projects(u types.UserID) []types.ProjectID {
	return x.users[u]
}

// Contributors returns the users of project p, or nil for an unknown project.
// The returned slice must not be modified.
func (x *Index) Contributors(p types.ProjectID) []types.UserID {
	return x.projects[p]
}

// Users returns every user in ascending order.
func (x *Index) Users() []types.UserID {
	out := make([]types.UserID, 0, len(x.users))
	for u := range x.users {
		out = append(out, u)
	}
	slices.Sort(out)
	return out
}

// NumUsers returns the number of distinct users.
func (x *Index) NumUsers() int { return len(x.users) }

// NumProjects returns the number of distinct projects.
func (x *Index) NumProjects() int { return len(x.projects) }

// NumInteractions returns the number of pairs stored.
func (x *Index) NumInteractions() int { return x.interactions }

// Duplicates returns how many repeated pairs were dropped at ingestion.
func (x *Index) Duplicates() int { return x.duplicates }
