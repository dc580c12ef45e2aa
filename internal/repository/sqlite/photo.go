package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/repository"
)

const photoColumns = `id, user_id, storage_key, url, caption, created_at`

// PhotoRepository handles database operations for photos
type PhotoRepository struct {
	db *sql.DB
}

// Create creates a new photo
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	query := `INSERT INTO photos (` + photoColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		photo.ID, photo.UserID, photo.StorageKey, photo.URL,
		nullString(photo.Caption), toUnix(photo.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

// GetByID retrieves a photo by ID
func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = ?`

	photo, err := scanPhoto(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("photo %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return photo, nil
}

// ListByUser retrieves a user's photos, newest first
func (r *PhotoRepository) ListByUser(ctx context.Context, userID string) ([]*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE user_id = ? ORDER BY created_at DESC, id`
	return r.query(ctx, query, userID)
}

// FirstByUsers retrieves the newest photo of each given user
func (r *PhotoRepository) FirstByUsers(ctx context.Context, userIDs []string) (map[string]*models.Photo, error) {
	first := make(map[string]*models.Photo, len(userIDs))
	if len(userIDs) == 0 {
		return first, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(userIDs)), ", ")
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}

	query := `SELECT ` + photoColumns + ` FROM photos
		WHERE user_id IN (` + placeholders + `)
		ORDER BY user_id, created_at DESC, id`
	photos, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for _, photo := range photos {
		if _, ok := first[photo.UserID]; !ok {
			first[photo.UserID] = photo
		}
	}
	return first, nil
}

// Delete deletes a photo by ID
func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM photos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return expectAffected(result, "photo", id)
}

func (r *PhotoRepository) query(ctx context.Context, query string, args ...any) ([]*models.Photo, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get photos: %w", err)
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}
	return photos, nil
}

func scanPhoto(row scanner) (*models.Photo, error) {
	var photo models.Photo
	var caption sql.NullString
	var createdAt int64
	if err := row.Scan(&photo.ID, &photo.UserID, &photo.StorageKey, &photo.URL, &caption, &createdAt); err != nil {
		return nil, err
	}
	photo.Caption = stringPtr(caption)
	photo.CreatedAt = fromUnix(createdAt)
	return &photo, nil
}
