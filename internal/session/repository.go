package session

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// Repository archives the latest snapshot of each session in Postgres.
// Only the current position is kept; earlier positions are overwritten.
type Repository struct {
	db *sql.DB
}

const schemaSQL = `CREATE TABLE IF NOT EXISTS board_sessions (
    session_id  TEXT PRIMARY KEY,
    placement   TEXT NOT NULL,
    grid        TEXT NOT NULL,
    active      TEXT NOT NULL,
    moves       INTEGER NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
)`

const upsertSQL = `INSERT INTO board_sessions (
    session_id, placement, grid, active, moves, created_at, updated_at
  ) VALUES ($1,$2,$3,$4,$5,$6,$7)
  ON CONFLICT (session_id) DO UPDATE SET
    placement=EXCLUDED.placement,
    grid=EXCLUDED.grid,
    active=EXCLUDED.active,
    moves=EXCLUDED.moves,
    updated_at=EXCLUDED.updated_at`

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	r := &Repository{db: db}
	if err := r.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create board_sessions: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveSnapshot upserts the session's current position.
func (r *Repository) SaveSnapshot(ctx context.Context, s *Snapshot) error {
	if r == nil || r.db == nil || s == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx, upsertSQL, snapshotArgs(s)...)
	return err
}

func snapshotArgs(s *Snapshot) []any {
	rows := s.Board.Rows()
	return []any{
		s.ID,
		s.Board.Placement(),
		strings.Join(rows[:], "/"),
		s.Active.String(),
		s.Moves,
		s.CreatedAt,
		s.UpdatedAt,
	}
}
