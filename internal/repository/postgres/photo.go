package postgres

import (
	"context"
	"errors"
	"fmt"

	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const photoColumns = `id, user_id, storage_key, url, caption, created_at`

// PhotoRepository handles database operations for photos
type PhotoRepository struct {
	db *pgxpool.Pool
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Create creates a new photo
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	query := `
		INSERT INTO photos (` + photoColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		photo.ID, photo.UserID, photo.StorageKey, photo.URL, photo.Caption, photo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

// GetByID retrieves a photo by ID
func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`

	photo, err := scanPhoto(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("photo %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return photo, nil
}

// ListByUser retrieves a user's photos, newest first
func (r *PhotoRepository) ListByUser(ctx context.Context, userID string) ([]*models.Photo, error) {
	query := `
		SELECT ` + photoColumns + `
		FROM photos
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`
	return r.query(ctx, query, userID)
}

// FirstByUsers retrieves the newest photo of each given user
func (r *PhotoRepository) FirstByUsers(ctx context.Context, userIDs []string) (map[string]*models.Photo, error) {
	first := make(map[string]*models.Photo, len(userIDs))
	if len(userIDs) == 0 {
		return first, nil
	}

	query := `
		SELECT DISTINCT ON (user_id) ` + photoColumns + `
		FROM photos
		WHERE user_id = ANY($1)
		ORDER BY user_id, created_at DESC, id
	`
	photos, err := r.query(ctx, query, userIDs)
	if err != nil {
		return nil, err
	}
	for _, photo := range photos {
		first[photo.UserID] = photo
	}
	return first, nil
}

// Delete deletes a photo by ID
func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("photo %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *PhotoRepository) query(ctx context.Context, query string, args ...any) ([]*models.Photo, error) {
	rows, err := r.db.Query(ctx, query, args...)
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

func scanPhoto(row pgx.Row) (*models.Photo, error) {
	var photo models.Photo
	err := row.Scan(
		&photo.ID, &photo.UserID, &photo.StorageKey, &photo.URL, &photo.Caption, &photo.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &photo, nil
}
