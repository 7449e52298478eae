// Package sqlite provides a commit archive on SQLite (pure Go driver).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KDL-umass/Toybox/pkg/archive"
	"github.com/KDL-umass/Toybox/pkg/domain"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

const schemaSQL = `CREATE TABLE IF NOT EXISTS commits (
	id           TEXT PRIMARY KEY,
	session_id   TEXT NOT NULL,
	game         TEXT NOT NULL,
	committed_at INTEGER NOT NULL,
	payload      BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS commits_game_time ON commits (game, committed_at DESC);`

// Archive implements ports.Archive on a single SQLite table. Payloads are
// stored with the archive codec; the other columns exist for lookups.
type Archive struct {
	db  *sql.DB
	max int
}

// Option configures the Archive.
type Option func(*Archive)

// WithMax keeps only the newest n commits per game. Zero keeps everything.
func WithMax(n int) Option {
	return func(a *Archive) {
		if n > 0 {
			a.max = n
		}
	}
}

// Open opens (creating if needed) the archive database at path.
// Use ":memory:" for a throwaway archive.
func Open(path string, opts ...Option) (*Archive, error) {
	if path == "" {
		path = "toybox.db"
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection, so ":memory:" is a single database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create commits table: %w", err)
	}

	a := &Archive{db: db}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Record upserts the commit.
func (a *Archive) Record(ctx context.Context, c domain.Commit) (retErr error) {
	if c.ID == "" {
		return errors.New("commit ID is required")
	}
	payload, err := archive.Encode(c)
	if err != nil {
		return err
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `INSERT INTO commits (id, session_id, game, committed_at, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			session_id = excluded.session_id,
			game = excluded.game,
			committed_at = excluded.committed_at,
			payload = excluded.payload`,
		c.ID, c.SessionID, c.Game, c.CommittedAt.UnixNano(), payload,
	); err != nil {
		return fmt.Errorf("insert commit: %w", err)
	}

	if a.max > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM commits WHERE game = ? AND id NOT IN (
			SELECT id FROM commits WHERE game = ? ORDER BY committed_at DESC, rowid DESC LIMIT ?)`,
			c.Game, c.Game, a.max,
		); err != nil {
			return fmt.Errorf("trim commits: %w", err)
		}
	}
	return tx.Commit()
}

// List returns commits for game, newest first.
func (a *Archive) List(ctx context.Context, game string, limit int) ([]domain.Commit, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, payload FROM commits WHERE game = ? ORDER BY committed_at DESC, rowid DESC LIMIT ?`,
		game, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select commits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []domain.Commit{}
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		c, err := archive.Decode(payload)
		if err != nil {
			return nil, fmt.Errorf("commit %s: %w", id, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Get returns one commit.
func (a *Archive) Get(ctx context.Context, id string) (domain.Commit, error) {
	var payload []byte
	err := a.db.QueryRowContext(ctx, `SELECT payload FROM commits WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Commit{}, fmt.Errorf("%w: %s", domain.ErrCommitNotFound, id)
	}
	if err != nil {
		return domain.Commit{}, fmt.Errorf("select commit: %w", err)
	}
	return archive.Decode(payload)
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}
