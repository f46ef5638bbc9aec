// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset reads the line-oriented inputs of a batch run: the
// interaction log, the project metadata feed, and the list of query users.
//
// Every reader returns a lazy sequence that re-opens its file each time it is
// ranged over, so a source can be consumed more than once. A line that cannot
// be parsed ends the sequence with an error wrapping ErrMalformedRecord.
package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"iter"
	"os"
	"strconv"
	"strings"

	"github.com/pdiddy/cocontrib/pkg/types"
)

// ErrMalformedRecord reports an input line that does not match its format.
var ErrMalformedRecord = errors.New("malformed record")

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// Interactions returns the "user:project" pairs stored in path.
func Interactions(path string) iter.Seq2[types.Interaction, error] {
	return records(path, parseInteraction)
}

// Projects returns the metadata records stored in path. Each line has the
// form "project:owner/name,created[,parent]".
func Projects(path string) iter.Seq2[types.ProjectRecord, error] {
	return records(path, parseProject)
}

// Users returns the query user IDs stored in path, one per line.
func Users(path string) iter.Seq2[types.UserID, error] {
	return records(path, parseUser)
}

// records scans path line by line, skipping blank lines, and yields each
// parsed record. Open and scan failures are yielded as the final element.
func records[T any](path string, parse func(string) (T, error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		f, err := os.Open(path)
		if err != nil {
			yield(zero, fmt.Errorf("opening %s: %w", path, err))
			return
		}
		defer f.Close()

		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		lineNo := 0
		for sc.Scan() {
			lineNo++
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			rec, err := parse(line)
			if err != nil {
				yield(zero, fmt.Errorf("%s:%d: %w", path, lineNo, err))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(zero, fmt.Errorf("reading %s: %w", path, err))
		}
	}
}

func parseInteraction(line string) (types.Interaction, error) {
	u, p, ok := strings.Cut(line, ":")
	if !ok {
		return types.Interaction{}, malformed(line, "missing ':' separator")
	}
	user, err := parseID(u)
	if err != nil {
		return types.Interaction{}, malformed(line, "user: "+err.Error())
	}
	project, err := parseID(p)
	if err != nil {
		return types.Interaction{}, malformed(line, "project: "+err.Error())
	}
	return types.Interaction{User: types.UserID(user), Project: types.ProjectID(project)}, nil
}

func parseProject(line string) (types.ProjectRecord, error) {
	id, rest, ok := strings.Cut(line, ":")
	if !ok {
		return types.ProjectRecord{}, malformed(line, "missing ':' separator")
	}
	pid, err := parseID(id)
	if err != nil {
		return types.ProjectRecord{}, malformed(line, "project: "+err.Error())
	}

	fields := strings.Split(rest, ",")
	if len(fields) > 3 {
		return types.ProjectRecord{}, malformed(line, "too many fields")
	}

	rec := types.ProjectRecord{
		ID:  types.ProjectID(pid),
		URL: strings.TrimSpace(fields[0]),
	}
	if len(fields) > 1 {
		rec.Created = strings.TrimSpace(fields[1])
	}
	if len(fields) > 2 && strings.TrimSpace(fields[2]) != "" {
		parent, err := parseID(fields[2])
		if err != nil {
			return types.ProjectRecord{}, malformed(line, "parent: "+err.Error())
		}
		p := types.ProjectID(parent)
		rec.Parent = &p
	}
	return rec, nil
}

func parseUser(line string) (types.UserID, error) {
	id, err := parseID(line)
	if err != nil {
		return 0, malformed(line, err.Error())
	}
	return types.UserID(id), nil
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

func malformed(line, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrMalformedRecord, line, reason)
}

// Collect drains seq into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// FromSlice adapts an in-memory slice to the sequence shape the readers return.
func FromSlice[T any](items []T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, v := range items {
			if !yield(v, nil) {
				return
			}
		}
	}
}
