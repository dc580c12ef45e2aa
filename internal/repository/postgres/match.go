package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const matchColumns = `id, user_a_id, user_b_id, status, created_at, ended_at`

// MatchRepository handles database operations for matches
type MatchRepository struct {
	db *pgxpool.Pool
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

// CreateIfAbsent inserts the match unless its pair is already taken.
// The matches_pair_key constraint makes concurrent callers agree on one row.
func (r *MatchRepository) CreateIfAbsent(ctx context.Context, m *models.Match) (bool, *models.Match, error) {
	m.UserAID, m.UserBID = models.CanonicalPair(m.UserAID, m.UserBID)

	query := `
		INSERT INTO matches (id, user_a_id, user_b_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_a_id, user_b_id) DO NOTHING
	`
	result, err := r.db.Exec(ctx, query, m.ID, m.UserAID, m.UserBID, string(m.Status), m.CreatedAt)
	if err != nil {
		return false, nil, fmt.Errorf("failed to create match: %w", err)
	}
	if result.RowsAffected() == 1 {
		return true, m, nil
	}

	existing, err := r.GetByPair(ctx, m.UserAID, m.UserBID)
	if err != nil {
		return false, nil, fmt.Errorf("failed to load existing match: %w", err)
	}
	return false, existing, nil
}

// GetByID retrieves a match by ID
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m, err := scanMatch(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("match %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

// GetByPair retrieves the match of two users in either order
func (r *MatchRepository) GetByPair(ctx context.Context, userA, userB string) (*models.Match, error) {
	a, b := models.CanonicalPair(userA, userB)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE user_a_id = $1 AND user_b_id = $2`

	m, err := scanMatch(r.db.QueryRow(ctx, query, a, b))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("match %s/%s: %w", a, b, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get match by pair: %w", err)
	}
	return m, nil
}

// List retrieves matches passing the filter, oldest first
func (r *MatchRepository) List(ctx context.Context, filter repository.MatchFilter) ([]*models.Match, error) {
	var conds []string
	var args []any
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("(user_a_id = $%d OR user_b_id = $%d)", len(args), len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + matchColumns + ` FROM matches`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}
	return matches, nil
}

// End marks a match as ended
func (r *MatchRepository) End(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE matches SET status = $1, ended_at = $2 WHERE id = $3`
	result, err := r.db.Exec(ctx, query, string(models.MatchEnded), at, id)
	if err != nil {
		return fmt.Errorf("failed to end match: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("match %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func scanMatch(row pgx.Row) (*models.Match, error) {
	var m models.Match
	var status string
	if err := row.Scan(&m.ID, &m.UserAID, &m.UserBID, &status, &m.CreatedAt, &m.EndedAt); err != nil {
		return nil, err
	}
	m.Status = models.MatchStatus(status)
	return &m, nil
}
