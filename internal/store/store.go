// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the similarity cache and batch recommendations in a
// SQLite database. It is the alternative to the line-oriented files for
// deployments that want to query results with SQL.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/cocontrib/internal/similarity"
	"github.com/pdiddy/cocontrib/pkg/types"
)

const builtAtKey = "similarity_built_at"

// SQLite manages the cocontrib database.
type SQLite struct {
	db   *sql.DB
	path string
}

var _ similarity.Store = (*SQLite)(nil)

// Open opens or creates the database at path and creates the schema if it
// does not exist.
func Open(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLite{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS cache_users (
			user_id INTEGER PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS similar_users (
			user_id INTEGER NOT NULL REFERENCES cache_users(user_id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			similar_id INTEGER NOT NULL,
			PRIMARY KEY (user_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS recommended_users (
			user_id INTEGER PRIMARY KEY,
			ranked_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS recommendations (
			user_id INTEGER NOT NULL REFERENCES recommended_users(user_id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			project_id INTEGER NOT NULL,
			PRIMARY KEY (user_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendations_project ON recommendations(project_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Location returns the database path.
func (s *SQLite) Location() string { return s.path }

// Exists reports whether a similarity cache has been saved.
func (s *SQLite) Exists(ctx context.Context) (bool, error) {
	var builtAt string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, builtAtKey).Scan(&builtAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking similarity cache: %w", err)
	}
	return true, nil
}

// Load reads the saved similarity cache. Gaps in a user's positions or rows
// for users without a cache entry are reported as corruption.
func (s *SQLite) Load(ctx context.Context) (*similarity.Cache, error) {
	entries := make(map[types.UserID][]types.UserID)

	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM cache_users`)
	if err != nil {
		return nil, fmt.Errorf("querying cache users: %w", err)
	}
	for rows.Next() {
		var u int64
		if err := rows.Scan(&u); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning cache user: %w", err)
		}
		entries[types.UserID(u)] = []types.UserID{}
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT user_id, position, similar_id FROM similar_users ORDER BY user_id, position`)
	if err != nil {
		return nil, fmt.Errorf("querying similar users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u, pos, v int64
		if err := rows.Scan(&u, &pos, &v); err != nil {
			return nil, fmt.Errorf("scanning similar user: %w", err)
		}
		list, ok := entries[types.UserID(u)]
		if !ok {
			return nil, fmt.Errorf("%w: similar users stored for unknown user %d", similarity.ErrCacheCorrupt, u)
		}
		if int(pos) != len(list) {
			return nil, fmt.Errorf("%w: user %d has position %d, want %d", similarity.ErrCacheCorrupt, u, pos, len(list))
		}
		entries[types.UserID(u)] = append(list, types.UserID(v))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return similarity.NewCache(entries), nil
}

// Save replaces the stored cache with c in a single transaction.
func (s *SQLite) Save(ctx context.Context, c *similarity.Cache) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM similar_users`, `DELETE FROM cache_users`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clearing similarity cache: %w", err)
		}
	}

	userStmt, err := tx.PrepareContext(ctx, `INSERT INTO cache_users (user_id) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer userStmt.Close()

	simStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO similar_users (user_id, position, similar_id) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer simStmt.Close()

	for _, u := range c.Users() {
		if _, err := userStmt.ExecContext(ctx, int64(u)); err != nil {
			return fmt.Errorf("inserting cache user %d: %w", u, err)
		}
		list, _ := c.Get(u)
		for pos, v := range list {
			if _, err := simStmt.ExecContext(ctx, int64(u), pos, int64(v)); err != nil {
				return fmt.Errorf("inserting similar user for %d: %w", u, err)
			}
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		builtAtKey, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording build time: %w", err)
	}

	return tx.Commit()
}
