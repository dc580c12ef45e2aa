package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/repository"
)

const matchColumns = `id, user_a_id, user_b_id, status, created_at, ended_at`

// MatchRepository handles database operations for matches
type MatchRepository struct {
	db *sql.DB
}

// CreateIfAbsent inserts the match unless its pair is already taken
func (r *MatchRepository) CreateIfAbsent(ctx context.Context, m *models.Match) (bool, *models.Match, error) {
	m.UserAID, m.UserBID = models.CanonicalPair(m.UserAID, m.UserBID)

	query := `INSERT INTO matches (id, user_a_id, user_b_id, status, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_a_id, user_b_id) DO NOTHING`
	result, err := r.db.ExecContext(ctx, query,
		m.ID, m.UserAID, m.UserBID, string(m.Status), toUnix(m.CreatedAt),
	)
	if err != nil {
		return false, nil, fmt.Errorf("failed to create match: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 1 {
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
	m, err := scanMatch(r.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("match %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

// GetByPair retrieves the match of two users in either order
func (r *MatchRepository) GetByPair(ctx context.Context, userA, userB string) (*models.Match, error) {
	a, b := models.CanonicalPair(userA, userB)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE user_a_id = ? AND user_b_id = ?`

	m, err := scanMatch(r.db.QueryRowContext(ctx, query, a, b))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
		conds = append(conds, "(user_a_id = ? OR user_b_id = ?)")
		args = append(args, filter.UserID, filter.UserID)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}

	query := `SELECT ` + matchColumns + ` FROM matches`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
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
	result, err := r.db.ExecContext(ctx,
		`UPDATE matches SET status = ?, ended_at = ? WHERE id = ?`,
		string(models.MatchEnded), toUnix(at), id,
	)
	if err != nil {
		return fmt.Errorf("failed to end match: %w", err)
	}
	return expectAffected(result, "match", id)
}

func scanMatch(row scanner) (*models.Match, error) {
	var m models.Match
	var status string
	var createdAt int64
	var endedAt sql.NullInt64
	if err := row.Scan(&m.ID, &m.UserAID, &m.UserBID, &status, &createdAt, &endedAt); err != nil {
		return nil, err
	}
	m.Status = models.MatchStatus(status)
	m.CreatedAt = fromUnix(createdAt)
	if endedAt.Valid {
		t := fromUnix(endedAt.Int64)
		m.EndedAt = &t
	}
	return &m, nil
}
