package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MatchService records decisions and turns mutual interest into matches
type MatchService struct {
	store    repository.Store
	notifier Notifier
	retry    RetryPolicy
	urls     PhotoURLs
	now      func() time.Time
}

// NewMatchService creates a new match service
func NewMatchService(store repository.Store, notifier Notifier, policy RetryPolicy) *MatchService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &MatchService{
		store:    store,
		notifier: notifier,
		retry:    policy,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RecordDecision stores originID's verdict on destinationID and creates the
// match if destinationID already liked originID back.
//
// The decision is written before the reverse one is read, so of two users
// liking each other concurrently at least one sees the other's like. The
// store's conditional insert keeps the pair to a single match row.
func (s *MatchService) RecordDecision(ctx context.Context, originID, destinationID string, kind models.DecisionKind) (*models.MatchResult, error) {
	if originID == "" {
		return nil, ErrIdentityMissing
	}
	if originID == destinationID {
		return nil, ErrSelfDecision
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecision, kind)
	}

	origin, err := s.getUser(ctx, originID)
	if err != nil {
		return nil, err
	}
	destination, err := s.getUser(ctx, destinationID)
	if err != nil {
		return nil, err
	}

	decision := &models.Decision{
		ID:            uuid.New().String(),
		OriginID:      originID,
		DestinationID: destinationID,
		Kind:          kind,
		CreatedAt:     s.now(),
	}
	err = withRetry(ctx, s.retry, "decisions.create", func(ctx context.Context) error {
		return s.store.Decisions().Create(ctx, decision)
	})
	if err != nil {
		log.Error().Err(err).
			Str("origin_id", originID).
			Str("destination_id", destinationID).
			Str("kind", string(kind)).
			Msg("Failed to record decision")
		return nil, unavailable(err)
	}

	log.Info().
		Str("origin_id", originID).
		Str("destination_id", destinationID).
		Str("kind", string(kind)).
		Msg("Decision recorded")

	none := &models.MatchResult{Outcome: models.OutcomeNone}
	if !kind.Positive() {
		return none, nil
	}

	var reciprocated bool
	err = withRetry(ctx, s.retry, "decisions.exists", func(ctx context.Context) error {
		var err error
		reciprocated, err = s.store.Decisions().Exists(ctx, repository.DecisionFilter{
			OriginID:      destinationID,
			DestinationID: originID,
			Kinds:         models.PositiveKinds(),
		})
		return err
	})
	if err != nil {
		return nil, unavailable(err)
	}
	if !reciprocated {
		return none, nil
	}

	match := &models.Match{
		ID:        uuid.New().String(),
		UserAID:   originID,
		UserBID:   destinationID,
		Status:    models.MatchActive,
		CreatedAt: decision.CreatedAt,
	}
	var created bool
	var stored *models.Match
	err = withRetry(ctx, s.retry, "matches.create", func(ctx context.Context) error {
		var err error
		created, stored, err = s.store.Matches().CreateIfAbsent(ctx, match)
		return err
	})
	if err != nil {
		return nil, unavailable(err)
	}

	if !created {
		// An ended match stays ended.
		if stored.Status != models.MatchActive {
			return none, nil
		}
		return &models.MatchResult{Outcome: models.OutcomeMatched, Match: stored}, nil
	}

	log.Info().
		Str("match_id", stored.ID).
		Str("user_a_id", stored.UserAID).
		Str("user_b_id", stored.UserBID).
		Msg("Match created")

	s.notify(ctx, stored, origin, destination)
	s.notify(ctx, stored, destination, origin)

	return &models.MatchResult{
		Outcome:      models.OutcomeMatched,
		Match:        stored,
		Created:      true,
		Notification: MatchMessage(destination),
	}, nil
}

// WithPhotoURLs sets how photo URLs of matched and liking users are resolved
func (s *MatchService) WithPhotoURLs(urls PhotoURLs) *MatchService {
	s.urls = urls
	return s
}

func (s *MatchService) notify(ctx context.Context, match *models.Match, forUser, other *models.User) {
	if err := s.notifier.NotifyMatch(ctx, match, forUser, other); err != nil {
		log.Warn().Err(err).
			Str("user_id", forUser.ID).
			Str("match_id", match.ID).
			Msg("Failed to deliver match notification")
	}
}

// ListMatches returns the user's active matches with the other member's profile
func (s *MatchService) ListMatches(ctx context.Context, userID string) ([]*models.MatchView, error) {
	if userID == "" {
		return nil, ErrIdentityMissing
	}

	var matches []*models.Match
	err := withRetry(ctx, s.retry, "matches.list", func(ctx context.Context) error {
		var err error
		matches, err = s.store.Matches().List(ctx, repository.MatchFilter{UserID: userID, Status: models.MatchActive})
		return err
	})
	if err != nil {
		return nil, unavailable(err)
	}

	otherIDs := make([]string, 0, len(matches))
	for _, m := range matches {
		other, _ := m.OtherUser(userID)
		otherIDs = append(otherIDs, other)
	}

	profiles, photos, err := s.profiles(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	views := make([]*models.MatchView, 0, len(matches))
	for i, m := range matches {
		u, ok := profiles[otherIDs[i]]
		if !ok {
			continue
		}
		views = append(views, &models.MatchView{Match: m, User: u, Photo: photos[u.ID]})
	}
	return views, nil
}

// LikesReceived returns users who liked userID and are not matched with them yet
func (s *MatchService) LikesReceived(ctx context.Context, userID string) ([]*models.Candidate, error) {
	if userID == "" {
		return nil, ErrIdentityMissing
	}

	var likes []*models.Decision
	err := withRetry(ctx, s.retry, "decisions.list", func(ctx context.Context) error {
		var err error
		likes, err = s.store.Decisions().List(ctx, repository.DecisionFilter{
			DestinationID: userID,
			Kinds:         models.PositiveKinds(),
		})
		return err
	})
	if err != nil {
		return nil, unavailable(err)
	}

	var active []*models.Match
	err = withRetry(ctx, s.retry, "matches.list", func(ctx context.Context) error {
		var err error
		active, err = s.store.Matches().List(ctx, repository.MatchFilter{UserID: userID, Status: models.MatchActive})
		return err
	})
	if err != nil {
		return nil, unavailable(err)
	}

	matched := make(map[string]bool, len(active))
	for _, m := range active {
		other, _ := m.OtherUser(userID)
		matched[other] = true
	}

	var ids []string
	seen := make(map[string]bool)
	for _, d := range likes {
		if matched[d.OriginID] || seen[d.OriginID] {
			continue
		}
		seen[d.OriginID] = true
		ids = append(ids, d.OriginID)
	}

	profiles, photos, err := s.profiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	candidates := make([]*models.Candidate, 0, len(ids))
	for _, id := range ids {
		if u, ok := profiles[id]; ok {
			candidates = append(candidates, &models.Candidate{User: u, Photo: photos[id]})
		}
	}
	return candidates, nil
}

// EndMatch ends an active match. Only a member may end it.
func (s *MatchService) EndMatch(ctx context.Context, userID, matchID string) error {
	if userID == "" {
		return ErrIdentityMissing
	}

	var match *models.Match
	err := withRetry(ctx, s.retry, "matches.get", func(ctx context.Context) error {
		var err error
		match, err = s.store.Matches().GetByID(ctx, matchID)
		return err
	})
	if err != nil {
		return unavailable(err)
	}
	if !match.HasUser(userID) {
		return ErrNotMatchMember
	}
	if match.Status == models.MatchEnded {
		return nil
	}

	err = withRetry(ctx, s.retry, "matches.end", func(ctx context.Context) error {
		return s.store.Matches().End(ctx, matchID, s.now())
	})
	if err != nil {
		return unavailable(err)
	}

	log.Info().Str("match_id", matchID).Str("user_id", userID).Msg("Match ended")
	return nil
}

func (s *MatchService) getUser(ctx context.Context, id string) (*models.User, error) {
	var user *models.User
	err := withRetry(ctx, s.retry, "users.get", func(ctx context.Context) error {
		var err error
		user, err = s.store.Users().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, unavailable(err)
	}
	return user, nil
}

// profiles loads public profiles and primary photos for ids; missing users are skipped
func (s *MatchService) profiles(ctx context.Context, ids []string) (map[string]*models.User, map[string]*models.Photo, error) {
	users := make(map[string]*models.User, len(ids))
	for _, id := range ids {
		u, err := s.getUser(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn().Str("user_id", id).Msg("Skipping missing user")
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		users[id] = u.PublicProfile()
	}

	var photos map[string]*models.Photo
	err := withRetry(ctx, s.retry, "photos.first", func(ctx context.Context) error {
		var err error
		photos, err = s.store.Photos().FirstByUsers(ctx, ids)
		return err
	})
	if err != nil {
		return nil, nil, unavailable(err)
	}
	resolvePhotos(ctx, s.urls, photos)
	return users, photos, nil
}

// unavailable marks an exhausted store failure, leaving not-found and context errors as they are
func unavailable(err error) error {
	if errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
}
