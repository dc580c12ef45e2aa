package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/repository"
)

// DecisionRepository handles database operations for decisions
type DecisionRepository struct {
	db *sql.DB
}

// Create appends a decision. Writing the same decision id twice is a no-op.
func (r *DecisionRepository) Create(ctx context.Context, d *models.Decision) error {
	query := `INSERT INTO decisions (id, origin_id, destination_id, kind, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.OriginID, d.DestinationID, string(d.Kind), toUnix(d.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create decision: %w", err)
	}
	return nil
}

// List retrieves decisions passing the filter, oldest first
func (r *DecisionRepository) List(ctx context.Context, filter repository.DecisionFilter) ([]*models.Decision, error) {
	where, args := decisionWhere(filter)
	query := `SELECT id, origin_id, destination_id, kind, created_at FROM decisions` +
		where + ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	defer rows.Close()

	var decisions []*models.Decision
	for rows.Next() {
		var d models.Decision
		var kind string
		var createdAt int64
		if err := rows.Scan(&d.ID, &d.OriginID, &d.DestinationID, &kind, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		d.Kind = models.DecisionKind(kind)
		d.CreatedAt = fromUnix(createdAt)
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

	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM decisions`+where+`)`, args...).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check decision existence: %w", err)
	}
	return exists, nil
}

func decisionWhere(filter repository.DecisionFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.OriginID != "" {
		conds = append(conds, "origin_id = ?")
		args = append(args, filter.OriginID)
	}
	if filter.DestinationID != "" {
		conds = append(conds, "destination_id = ?")
		args = append(args, filter.DestinationID)
	}
	if len(filter.Kinds) > 0 {
		conds = append(conds, "kind IN ("+strings.TrimSuffix(strings.Repeat("?, ", len(filter.Kinds)), ", ")+")")
		for _, k := range filter.Kinds {
			args = append(args, string(k))
		}
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
