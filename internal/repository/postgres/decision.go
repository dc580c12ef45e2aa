package postgres

import (
	"context"
	"fmt"
	"strings"

	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DecisionRepository handles database operations for decisions
type DecisionRepository struct {
	db *pgxpool.Pool
}

// NewDecisionRepository creates a new decision repository
func NewDecisionRepository(db *pgxpool.Pool) *DecisionRepository {
	return &DecisionRepository{db: db}
}

// Create appends a decision. Writing the same decision id twice is a no-op.
func (r *DecisionRepository) Create(ctx context.Context, d *models.Decision) error {
	query := `
		INSERT INTO decisions (id, origin_id, destination_id, kind, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, d.ID, d.OriginID, d.DestinationID, string(d.Kind), d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create decision: %w", err)
	}
	return nil
}

// List retrieves decisions passing the filter, oldest first
func (r *DecisionRepository) List(ctx context.Context, filter repository.DecisionFilter) ([]*models.Decision, error) {
	where, args := decisionWhere(filter)
	query := `
		SELECT id, origin_id, destination_id, kind, created_at
		FROM decisions` + where + `
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	defer rows.Close()

	var decisions []*models.Decision
	for rows.Next() {
		var d models.Decision
		var kind string
		if err := rows.Scan(&d.ID, &d.OriginID, &d.DestinationID, &kind, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		d.Kind = models.DecisionKind(kind)
		decisions = append(decisions, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decisions: %w", err)
	}
	return decisions, nil
}

// Exists checks whether any decision passes the filter
func (r *DecisionRepository) Exists(ctx context.Context, filter repository.DecisionFilter) (bool, error) {
	where, args := decisionWhere(filter)
	query := `SELECT EXISTS(SELECT 1 FROM decisions` + where + `)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check decision existence: %w", err)
	}
	return exists, nil
}

func decisionWhere(filter repository.DecisionFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.OriginID != "" {
		args = append(args, filter.OriginID)
		conds = append(conds, fmt.Sprintf("origin_id = $%d", len(args)))
	}
	if filter.DestinationID != "" {
		args = append(args, filter.DestinationID)
		conds = append(conds, fmt.Sprintf("destination_id = $%d", len(args)))
	}
	if len(filter.Kinds) > 0 {
		kinds := make([]string, len(filter.Kinds))
		for i, k := range filter.Kinds {
			kinds[i] = string(k)
		}
		args = append(args, kinds)
		conds = append(conds, fmt.Sprintf("kind = ANY($%d)", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
