package scores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/robalobadob/worduel/internal/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS scores (
    user_id INTEGER PRIMARY KEY,
    points  INTEGER NOT NULL DEFAULT 0
);`

type sqlBoard struct {
	db *sql.DB
}

// OpenSQLite opens a SQL-ranked Board. An empty dsn uses a private
// in-memory database, so nothing outlives the process.
func OpenSQLite(dsn string) (Board, error) {
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create scores table: %w", err)
	}
	return &sqlBoard{db: db}, nil
}

func (s *sqlBoard) Add(ctx context.Context, user game.UserID, delta uint64) error {
	return s.AddAll(ctx, []Entry{{User: user, Points: delta}})
}

// AddAll posts rows in one transaction. Totals are computed in Go so an
// overflow is caught before SQLite would turn the column into a REAL.
func (s *sqlBoard) AddAll(ctx context.Context, rows []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range rows {
		var cur int64
		err := tx.QueryRowContext(ctx,
			`SELECT points FROM scores WHERE user_id = ?`, int64(r.User),
		).Scan(&cur)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		total, err := addPoints(uint64(cur), r.Points)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
        INSERT INTO scores (user_id, points) VALUES (?, ?)
        ON CONFLICT(user_id) DO UPDATE SET points = excluded.points`,
			int64(r.User), int64(total),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *sqlBoard) Get(ctx context.Context, user game.UserID) (uint64, error) {
	var pts int64
	err := s.db.QueryRowContext(ctx,
		`SELECT points FROM scores WHERE user_id = ?`, int64(user),
	).Scan(&pts)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return uint64(pts), nil
}

func (s *sqlBoard) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return []Entry{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT user_id, points
        FROM scores
        ORDER BY points DESC, user_id ASC
        LIMIT ?`, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0, n)
	for rows.Next() {
		var uid, pts int64
		if err := rows.Scan(&uid, &pts); err != nil {
			return nil, err
		}
		out = append(out, Entry{User: game.UserID(uid), Points: uint64(pts)})
	}
	return out, rows.Err()
}

func (s *sqlBoard) Close() error { return s.db.Close() }
