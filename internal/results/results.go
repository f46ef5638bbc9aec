// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package results writes recommendation rows and exports them for review.
package results

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/cocontrib/pkg/types"
)

// Sink consumes recommendation rows in output order.
type Sink interface {
	Write(rec types.Recommendation) error
	Close() error
}

// LineSink writes "user:p1,p2,..." lines to a file.
type LineSink struct {
	f  *os.File
	bw *bufio.Writer
	n  int
}

// Create opens path for writing, creating parent directories as needed.
func Create(path string) (*LineSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating results directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating results file: %w", err)
	}
	return &LineSink{f: f, bw: bufio.NewWriter(f)}, nil
}

// Write appends one row.
func (s *LineSink) Write(rec types.Recommendation) error {
	if _, err := s.bw.WriteString(rec.String() + "\n"); err != nil {
		return fmt.Errorf("writing result for user %d: %w", rec.User, err)
	}
	s.n++
	return nil
}

// Rows returns the number of rows written.
func (s *LineSink) Rows() int { return s.n }

// Close flushes buffered rows and closes the file.
func (s *LineSink) Close() error {
	flushErr := s.bw.Flush()
	closeErr := s.f.Close()
	if flushErr != nil {
		return fmt.Errorf("flushing results: %w", flushErr)
	}
	return closeErr
}

// teeSink fans each row out to several sinks.
type teeSink []Sink

// Tee returns a Sink that writes every row to each of sinks in turn.
func Tee(sinks ...Sink) Sink {
	return teeSink(sinks)
}

func (t teeSink) Write(rec types.Recommendation) error {
	for _, s := range t {
		if err := s.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func (t teeSink) Close() error {
	var errs []error
	for _, s := range t {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

// Read parses a results file written by LineSink.
func Read(path string) ([]types.Recommendation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening results: %w", err)
	}
	defer f.Close()

	var recs []types.Recommendation
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		rec, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		recs = append(recs, rec)
	}
	return recs, sc.Err()
}

func parseLine(line string) (types.Recommendation, error) {
	head, tail, ok := strings.Cut(line, ":")
	if !ok {
		return types.Recommendation{}, fmt.Errorf("missing ':' in %q", line)
	}
	u, err := strconv.ParseInt(head, 10, 64)
	if err != nil {
		return types.Recommendation{}, fmt.Errorf("user id %q: %w", head, err)
	}
	rec := types.Recommendation{User: types.UserID(u), Projects: []types.ProjectID{}}
	if tail == "" {
		return rec, nil
	}
	for _, field := range strings.Split(tail, ",") {
		p, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return types.Recommendation{}, fmt.Errorf("project id %q: %w", field, err)
		}
		rec.Projects = append(rec.Projects, types.ProjectID(p))
	}
	return rec, nil
}
