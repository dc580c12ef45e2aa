package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/repository"
	"swipe-match-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultMaxPhotoBytes = 10 << 20

// PhotoURLs rewrites stored photo URLs into links clients can fetch
type PhotoURLs interface {
	Resolve(ctx context.Context, photos ...*models.Photo)
}

// PhotoService handles photo-related business logic
type PhotoService struct {
	photos     repository.PhotoRepository
	objects    storage.ObjectStore
	maxBytes   int64
	presignTTL time.Duration
}

// NewPhotoService creates a new photo service
func NewPhotoService(photos repository.PhotoRepository, objects storage.ObjectStore, maxBytes int64) *PhotoService {
	if maxBytes <= 0 {
		maxBytes = defaultMaxPhotoBytes
	}
	return &PhotoService{
		photos:   photos,
		objects:  objects,
		maxBytes: maxBytes,
	}
}

// WithPresignedURLs makes every photo handed out carry a download link valid
// for ttl instead of its public URL. Use it for private buckets.
func (s *PhotoService) WithPresignedURLs(ttl time.Duration) *PhotoService {
	s.presignTTL = ttl
	return s
}

// Resolve replaces each photo's URL with a presigned link when presigning is on.
// A photo that cannot be signed keeps its stored URL.
func (s *PhotoService) Resolve(ctx context.Context, photos ...*models.Photo) {
	if s.presignTTL <= 0 {
		return
	}
	for _, p := range photos {
		if p == nil {
			continue
		}
		link, err := s.objects.PresignGet(ctx, p.StorageKey, s.presignTTL)
		if err != nil {
			log.Warn().Err(err).Str("photo_id", p.ID).Msg("Failed to presign photo URL")
			continue
		}
		p.URL = link
	}
}

// MaxBytes is the largest accepted upload
func (s *PhotoService) MaxBytes() int64 {
	return s.maxBytes
}

// UploadRequest describes one photo upload
type UploadRequest struct {
	Filename    string
	ContentType string
	Body        []byte
	Caption     string
}

// Upload stores the image and records it for userID. The object is removed
// again if the record cannot be written.
func (s *PhotoService) Upload(ctx context.Context, userID string, req UploadRequest) (*models.Photo, error) {
	if userID == "" {
		return nil, ErrIdentityMissing
	}
	if len(req.Body) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrInvalidPhoto)
	}
	if int64(len(req.Body)) > s.maxBytes {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidPhoto, s.maxBytes)
	}
	if !strings.HasPrefix(req.ContentType, "image/") {
		return nil, fmt.Errorf("%w: content type %q is not an image", ErrInvalidPhoto, req.ContentType)
	}

	id := uuid.New().String()
	key := storage.PhotoKey(userID, id, req.Filename)

	if err := s.objects.Put(ctx, key, req.ContentType, req.Body); err != nil {
		return nil, unavailable(fmt.Errorf("failed to store photo: %w", err))
	}

	photo := &models.Photo{
		ID:         id,
		UserID:     userID,
		StorageKey: key,
		URL:        s.objects.URL(key),
		CreatedAt:  time.Now().UTC(),
	}
	if c := strings.TrimSpace(req.Caption); c != "" {
		photo.Caption = &c
	}

	if err := s.photos.Create(ctx, photo); err != nil {
		if delErr := s.objects.Delete(ctx, key); delErr != nil {
			log.Error().Err(delErr).Str("key", key).Msg("Failed to remove orphaned photo object")
		}
		return nil, unavailable(fmt.Errorf("failed to create photo record: %w", err))
	}

	log.Info().Str("user_id", userID).Str("photo_id", photo.ID).Msg("Photo uploaded")
	s.Resolve(ctx, photo)
	return photo, nil
}

// List returns userID's photos, newest first
func (s *PhotoService) List(ctx context.Context, userID string) ([]*models.Photo, error) {
	photos, err := s.photos.ListByUser(ctx, userID)
	if err != nil {
		return nil, unavailable(fmt.Errorf("failed to list photos: %w", err))
	}
	if photos == nil {
		photos = []*models.Photo{}
	}
	s.Resolve(ctx, photos...)
	return photos, nil
}

// Delete removes one of userID's photos
func (s *PhotoService) Delete(ctx context.Context, userID, photoID string) error {
	if userID == "" {
		return ErrIdentityMissing
	}

	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return unavailable(err)
	}
	if photo.UserID != userID {
		return ErrNotPhotoOwner
	}

	if err := s.objects.Delete(ctx, photo.StorageKey); err != nil {
		return unavailable(fmt.Errorf("failed to delete photo object: %w", err))
	}
	if err := s.photos.Delete(ctx, photoID); err != nil {
		return unavailable(fmt.Errorf("failed to delete photo record: %w", err))
	}

	log.Info().Str("user_id", userID).Str("photo_id", photoID).Msg("Photo deleted")
	return nil
}
