package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/repository"
)

const userColumns = `id, name, email, phone, gender, city, bio, push_token, created_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db *sql.DB
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.Phone, user.Gender,
		user.City, user.Bio, nullString(user.PushToken), toUnix(user.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ListExcluding retrieves every user other than id
func (r *UserRepository) ListExcluding(ctx context.Context, id string) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id <> ? ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// Update overwrites the editable profile fields
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET name = ?, phone = ?, gender = ?, city = ?, bio = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		user.Name, user.Phone, user.Gender, user.City, user.Bio, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectAffected(result, "user", user.ID)
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET push_token = ? WHERE id = ?`, nullString(pushToken), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return expectAffected(result, "user", userID)
}

func scanUser(row scanner) (*models.User, error) {
	var user models.User
	var pushToken sql.NullString
	var createdAt int64
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.Phone, &user.Gender,
		&user.City, &user.Bio, &pushToken, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	user.PushToken = stringPtr(pushToken)
	user.CreatedAt = fromUnix(createdAt)
	return &user, nil
}

func expectAffected(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, repository.ErrNotFound)
	}
	return nil
}
