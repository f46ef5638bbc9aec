// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metadata holds per-project attributes used to boost candidates:
// the owning account (founder), the parent project a fork came from, and the
// project url.
package metadata

import (
	"iter"
	"strings"

	"github.com/pdiddy/cocontrib/pkg/types"
)

// entry is the fixed-shape record kept per project. Empty strings and a
// false hasParent mean the attribute is absent.
type entry struct {
	url       string
	founder   string
	parent    types.ProjectID
	hasParent bool
}

// Catalog answers metadata lookups. A nil *Catalog is valid and reports
// every attribute as absent, which is how a run without a metadata feed
// behaves.
type Catalog struct {
	entries map[types.ProjectID]entry
}

// Load consumes project records and returns the catalog. The first error
// from the sequence aborts the load. A later record for the same project
// replaces an earlier one.
func Load(seq iter.Seq2[types.ProjectRecord, error]) (*Catalog, error) {
	c := &Catalog{entries: make(map[types.ProjectID]entry)}
	for rec, err := range seq {
		if err != nil {
			return nil, err
		}
		c.Add(rec)
	}
	return c, nil
}

// Add stores rec, deriving the founder from its url.
func (c *Catalog) Add(rec types.ProjectRecord) {
	e := entry{
		url:     rec.URL,
		founder: Founder(rec.URL),
	}
	if rec.Parent != nil {
		e.parent = *rec.Parent
		e.hasParent = true
	}
	c.entries[rec.ID] = e
}

// Founder returns the owning account of a project url: the text before the
// first "/". A url without a separator is entirely the account name.
func Founder(url string) string {
	owner, _, _ := strings.Cut(url, "/")
	return owner
}

// Founder returns the owning account of p.
func (c *Catalog) Founder(p types.ProjectID) (string, bool) {
	if c == nil {
		return "", false
	}
	e, ok := c.entries[p]
	if !ok || e.founder == "" {
		return "", false
	}
	return e.founder, true
}

// Parent returns the project p was forked from.
func (c *Catalog) Parent(p types.ProjectID) (types.ProjectID, bool) {
	if c == nil {
		return 0, false
	}
	e, ok := c.entries[p]
	if !ok || !e.hasParent {
		return 0, false
	}
	return e.parent, true
}

// URL returns the canonical url of p.
func (c *Catalog) URL(p types.ProjectID) (string, bool) {
	if c == nil {
		return "", false
	}
	e, ok := c.entries[p]
	if !ok || e.url == "" {
		return "", false
	}
	return e.url, true
}

// Len returns the number of projects with metadata.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}
