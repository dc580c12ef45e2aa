// Package sqlite implements the repository interfaces on an embedded SQLite
// database. It serves single-node deployments and local development.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"swipe-match-backend/internal/migrations"
	"swipe-match-backend/internal/repository"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// Store provides SQLite-backed repositories
type Store struct {
	db        *sql.DB
	users     *UserRepository
	photos    *PhotoRepository
	decisions *DecisionRepository
	matches   *MatchRepository
}

// Open creates or opens the database at path and applies the schema.
// SQLite allows one writer, so the pool is limited to a single connection.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := migrations.Up(ctx, db, goose.DialectSQLite3); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:        db,
		users:     &UserRepository{db: db},
		photos:    &PhotoRepository{db: db},
		decisions: &DecisionRepository{db: db},
		matches:   &MatchRepository{db: db},
	}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func (s *Store) Users() repository.UserRepository         { return s.users }
func (s *Store) Photos() repository.PhotoRepository       { return s.photos }
func (s *Store) Decisions() repository.DecisionRepository { return s.decisions }
func (s *Store) Matches() repository.MatchRepository      { return s.matches }

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// timestamps are stored as unix nanoseconds
func toUnix(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

type scanner interface {
	Scan(dest ...any) error
}
