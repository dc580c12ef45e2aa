package services

import (
	"context"
	"errors"
	"fmt"

	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/repository"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// FeedService builds the candidate deck shown to a viewer
type FeedService struct {
	store repository.Store
	retry RetryPolicy
	urls  PhotoURLs
}

// NewFeedService creates a new feed service
func NewFeedService(store repository.Store, policy RetryPolicy) *FeedService {
	return &FeedService{store: store, retry: policy}
}

// WithPhotoURLs sets how candidate photo URLs are resolved
func (s *FeedService) WithPhotoURLs(urls PhotoURLs) *FeedService {
	s.urls = urls
	return s
}

// NextCandidate returns the first user the viewer has not decided on yet,
// or nil when the feed is exhausted.
func (s *FeedService) NextCandidate(ctx context.Context, viewerID string) (*models.Candidate, error) {
	candidates, err := s.Candidates(ctx, viewerID, 1)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return candidates[0], nil
}

// Candidates returns up to limit undecided users in store order. limit <= 0 returns all.
func (s *FeedService) Candidates(ctx context.Context, viewerID string, limit int) ([]*models.Candidate, error) {
	if viewerID == "" {
		return nil, ErrIdentityMissing
	}

	err := withRetry(ctx, s.retry, "feed.viewer", func(ctx context.Context) error {
		_, err := s.store.Users().GetByID(ctx, viewerID)
		return err
	})
	if err != nil {
		return nil, feedError(err)
	}

	var users []*models.User
	var decided []*models.Decision

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return withRetry(gctx, s.retry, "feed.users", func(ctx context.Context) error {
			var err error
			users, err = s.store.Users().ListExcluding(ctx, viewerID)
			return err
		})
	})
	g.Go(func() error {
		return withRetry(gctx, s.retry, "feed.decisions", func(ctx context.Context) error {
			var err error
			decided, err = s.store.Decisions().List(ctx, repository.DecisionFilter{OriginID: viewerID})
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, feedError(err)
	}

	seen := make(map[string]struct{}, len(decided))
	for _, d := range decided {
		seen[d.DestinationID] = struct{}{}
	}

	var picked []*models.User
	for _, u := range users {
		if _, ok := seen[u.ID]; ok || u.ID == viewerID {
			continue
		}
		picked = append(picked, u)
		if limit > 0 && len(picked) == limit {
			break
		}
	}
	if len(picked) == 0 {
		log.Debug().Str("user_id", viewerID).Msg("Feed exhausted")
		return nil, nil
	}

	ids := make([]string, len(picked))
	for i, u := range picked {
		ids[i] = u.ID
	}

	var photos map[string]*models.Photo
	err = withRetry(ctx, s.retry, "feed.photos", func(ctx context.Context) error {
		var err error
		photos, err = s.store.Photos().FirstByUsers(ctx, ids)
		return err
	})
	if err != nil {
		return nil, feedError(err)
	}
	resolvePhotos(ctx, s.urls, photos)

	candidates := make([]*models.Candidate, len(picked))
	for i, u := range picked {
		candidates[i] = &models.Candidate{User: u.PublicProfile(), Photo: photos[u.ID]}
	}
	return candidates, nil
}

func feedError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrFeedUnavailable, err)
}

func resolvePhotos(ctx context.Context, urls PhotoURLs, photos map[string]*models.Photo) {
	if urls == nil || len(photos) == 0 {
		return
	}
	list := make([]*models.Photo, 0, len(photos))
	for _, p := range photos {
		list = append(list, p)
	}
	urls.Resolve(ctx, list...)
}
