// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package similarity

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/cocontrib/pkg/types"
)

// ErrCacheCorrupt reports a persisted cache that cannot be parsed. The only
// remedy is a forced rebuild.
var ErrCacheCorrupt = errors.New("similarity cache corrupt")

// Encode writes c as "user:v1,v2,..." lines in ascending user order.
// A user without similar users is written with an empty right-hand side.
func Encode(w io.Writer, c *Cache) error {
	bw := bufio.NewWriter(w)
	for _, u := range c.Users() {
		list := c.entries[u]
		bw.WriteString(strconv.FormatInt(int64(u), 10))
		bw.WriteByte(':')
		for i, v := range list {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(strconv.FormatInt(int64(v), 10))
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing similarity cache: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing similarity cache: %w", err)
	}
	return nil
}

// Decode parses lines written by Encode, keeping each list in its stored
// order. Any malformed or repeated line fails the whole decode.
func Decode(r io.Reader) (*Cache, error) {
	entries := make(map[types.UserID][]types.UserID)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		u, list, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCacheCorrupt, lineNo, err)
		}
		if _, dup := entries[u]; dup {
			return nil, fmt.Errorf("%w: line %d: user %d listed twice", ErrCacheCorrupt, lineNo, u)
		}
		entries[u] = list
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading similarity cache: %w", err)
	}
	return NewCache(entries), nil
}

func parseLine(line string) (types.UserID, []types.UserID, error) {
	head, tail, ok := strings.Cut(line, ":")
	if !ok {
		return 0, nil, fmt.Errorf("missing ':' in %q", line)
	}
	u, err := strconv.ParseInt(head, 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("user id %q: %w", head, err)
	}

	list := []types.UserID{}
	if tail == "" {
		return types.UserID(u), list, nil
	}
	for _, field := range strings.Split(tail, ",") {
		v, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return 0, nil, fmt.Errorf("similar user %q: %w", field, err)
		}
		list = append(list, types.UserID(v))
	}
	return types.UserID(u), list, nil
}
