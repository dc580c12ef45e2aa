// Package postgres implements the repository interfaces on PostgreSQL via pgx.
package postgres

import (
	"context"
	"fmt"

	"swipe-match-backend/internal/migrations"
	"swipe-match-backend/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Store bundles the PostgreSQL repositories over one connection pool
type Store struct {
	db        *pgxpool.Pool
	users     *UserRepository
	photos    *PhotoRepository
	decisions *DecisionRepository
	matches   *MatchRepository
}

// Open connects to the database and verifies the connection
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return New(db), nil
}

// New wraps an existing pool
func New(db *pgxpool.Pool) *Store {
	return &Store{
		db:        db,
		users:     NewUserRepository(db),
		photos:    NewPhotoRepository(db),
		decisions: NewDecisionRepository(db),
		matches:   NewMatchRepository(db),
	}
}

// Migrate applies the embedded schema
func (s *Store) Migrate(ctx context.Context) error {
	sqlDB := stdlib.OpenDBFromPool(s.db)
	defer sqlDB.Close()

	return migrations.Up(ctx, sqlDB, goose.DialectPostgres)
}

func (s *Store) Users() repository.UserRepository         { return s.users }
func (s *Store) Photos() repository.PhotoRepository       { return s.photos }
func (s *Store) Decisions() repository.DecisionRepository { return s.decisions }
func (s *Store) Matches() repository.MatchRepository      { return s.matches }

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close releases the pool
func (s *Store) Close() error {
	s.db.Close()
	return nil
}
