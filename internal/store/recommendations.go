// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pdiddy/cocontrib/pkg/types"
)

// ResultSink writes recommendation rows inside one transaction that commits
// on Close. A user ranked again replaces their earlier rows.
type ResultSink struct {
	ctx     context.Context
	tx      *sql.Tx
	delStmt *sql.Stmt
	usrStmt *sql.Stmt
	recStmt *sql.Stmt
	ranked  string
	err     error
}

// Results starts a result sink on the database.
func (s *SQLite) Results(ctx context.Context) (*ResultSink, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	rs := &ResultSink{ctx: ctx, tx: tx, ranked: time.Now().UTC().Format(time.RFC3339)}
	prepare := func(dst **sql.Stmt, query string) {
		if err != nil {
			return
		}
		*dst, err = tx.PrepareContext(ctx, query)
	}
	prepare(&rs.delStmt, `DELETE FROM recommendations WHERE user_id = ?`)
	prepare(&rs.usrStmt,
		`INSERT INTO recommended_users (user_id, ranked_at) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET ranked_at=excluded.ranked_at`)
	prepare(&rs.recStmt, `INSERT INTO recommendations (user_id, position, project_id) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("preparing result statements: %w", err)
	}
	return rs, nil
}

// Write stores one row.
func (r *ResultSink) Write(rec types.Recommendation) error {
	if r.err != nil {
		return r.err
	}
	if _, err := r.delStmt.ExecContext(r.ctx, int64(rec.User)); err != nil {
		r.err = fmt.Errorf("clearing recommendations for %d: %w", rec.User, err)
		return r.err
	}
	if _, err := r.usrStmt.ExecContext(r.ctx, int64(rec.User), r.ranked); err != nil {
		r.err = fmt.Errorf("recording user %d: %w", rec.User, err)
		return r.err
	}
	for pos, p := range rec.Projects {
		if _, err := r.recStmt.ExecContext(r.ctx, int64(rec.User), pos, int64(p)); err != nil {
			r.err = fmt.Errorf("inserting recommendation for %d: %w", rec.User, err)
			return r.err
		}
	}
	return nil
}

// Close commits the rows written so far, or rolls back after a failed Write.
func (r *ResultSink) Close() error {
	r.delStmt.Close()
	r.usrStmt.Close()
	r.recStmt.Close()
	if r.err != nil {
		r.tx.Rollback()
		return r.err
	}
	if err := r.tx.Commit(); err != nil {
		return fmt.Errorf("committing recommendations: %w", err)
	}
	return nil
}

// Recommendations returns every stored row ordered by user.
func (s *SQLite) Recommendations(ctx context.Context) ([]types.Recommendation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.user_id, r.project_id
		 FROM recommended_users u
		 LEFT JOIN recommendations r ON r.user_id = u.user_id
		 ORDER BY u.user_id, r.position`)
	if err != nil {
		return nil, fmt.Errorf("querying recommendations: %w", err)
	}
	defer rows.Close()

	var recs []types.Recommendation
	for rows.Next() {
		var (
			u int64
			p sql.NullInt64
		)
		if err := rows.Scan(&u, &p); err != nil {
			return nil, fmt.Errorf("scanning recommendation: %w", err)
		}
		if n := len(recs); n == 0 || recs[n-1].User != types.UserID(u) {
			recs = append(recs, types.Recommendation{User: types.UserID(u), Projects: []types.ProjectID{}})
		}
		if p.Valid {
			last := &recs[len(recs)-1]
			last.Projects = append(last.Projects, types.ProjectID(p.Int64))
		}
	}
	return recs, rows.Err()
}
