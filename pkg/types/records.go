// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the cocontrib pipeline:
// identifiers, input records read by the dataset stage, and the
// recommendation rows produced by the ranking stage.
package types

import (
	"strconv"
	"strings"
)

// UserID identifies an account in the interaction log.
type UserID int64

// ProjectID identifies a project in the interaction log and metadata feed.
type ProjectID int64

// Interaction is one recorded (user, project) contribution event.
type Interaction struct {
	User    UserID    `json:"user" yaml:"user"`
	Project ProjectID `json:"project" yaml:"project"`
}

// ProjectRecord is one entry of the project metadata feed.
type ProjectRecord struct {
	// ID is the project the record describes.
	ID ProjectID `json:"id" yaml:"id"`

	// URL is the canonical "owner/name" identifier. Empty when the feed
	// carries no url for the project.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Created is the creation date as it appears in the feed. Not used for scoring.
	Created string `json:"created,omitempty" yaml:"created,omitempty"`

	// Parent is the project this one was forked from, if any.
	Parent *ProjectID `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// Recommendation is the ordered list of projects suggested for one user.
type Recommendation struct {
	User     UserID      `json:"user" yaml:"user"`
	Projects []ProjectID `json:"projects" yaml:"projects"`
}

// String renders the recommendation as a "user:p1,p2,..." line.
func (r Recommendation) String() string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(int64(r.User), 10))
	b.WriteByte(':')
	for i, p := range r.Projects {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(int64(p), 10))
	}
	return b.String()
}
