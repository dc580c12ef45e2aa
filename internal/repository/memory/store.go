// Package memory keeps every repository in process memory. It backs tests
// and throwaway local runs; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/repository"
)

// FaultFunc is consulted before every operation. A non-nil error aborts the
// operation and is returned to the caller.
type FaultFunc func(op string) error

// Store holds all records behind one lock
type Store struct {
	mu        sync.RWMutex
	users     map[string]*models.User
	photos    map[string]*models.Photo
	decisions []*models.Decision
	matches   map[string]*models.Match
	pairs     map[string]string

	fault FaultFunc
}

// New creates an empty store
func New() *Store {
	return &Store{
		users:   make(map[string]*models.User),
		photos:  make(map[string]*models.Photo),
		matches: make(map[string]*models.Match),
		pairs:   make(map[string]string),
	}
}

// SetFault installs a hook used to simulate an unavailable backend
func (s *Store) SetFault(fn FaultFunc) {
	s.mu.Lock()
	s.fault = fn
	s.mu.Unlock()
}

func (s *Store) check(op string) error {
	if s.fault == nil {
		return nil
	}
	return s.fault(op)
}

func (s *Store) Users() repository.UserRepository         { return userRepo{s} }
func (s *Store) Photos() repository.PhotoRepository       { return photoRepo{s} }
func (s *Store) Decisions() repository.DecisionRepository { return decisionRepo{s} }
func (s *Store) Matches() repository.MatchRepository      { return matchRepo{s} }

// Ping always succeeds unless a fault is installed
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.check("ping")
}

func (s *Store) Close() error { return nil }

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("users.create"); err != nil {
		return err
	}
	if _, ok := r.s.users[user.ID]; ok {
		return fmt.Errorf("user %s already exists", user.ID)
	}
	u := *user
	r.s.users[user.ID] = &u
	return nil
}

func (r userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check("users.get"); err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	out := *u
	return &out, nil
}

func (r userRepo) ListExcluding(ctx context.Context, id string) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check("users.list"); err != nil {
		return nil, err
	}
	users := make([]*models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if u.ID == id {
			continue
		}
		out := *u
		users = append(users, &out)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func (r userRepo) Update(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("users.update"); err != nil {
		return err
	}
	u, ok := r.s.users[user.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", user.ID, repository.ErrNotFound)
	}
	u.Name = user.Name
	u.Phone = user.Phone
	u.Gender = user.Gender
	u.City = user.City
	u.Bio = user.Bio
	return nil
}

func (r userRepo) UpdatePushToken(ctx context.Context, id string, pushToken *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("users.push_token"); err != nil {
		return err
	}
	u, ok := r.s.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	if pushToken == nil {
		u.PushToken = nil
		return nil
	}
	token := *pushToken
	u.PushToken = &token
	return nil
}

type photoRepo struct{ s *Store }

func (r photoRepo) Create(ctx context.Context, photo *models.Photo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("photos.create"); err != nil {
		return err
	}
	if _, ok := r.s.users[photo.UserID]; !ok {
		return fmt.Errorf("user %s: %w", photo.UserID, repository.ErrNotFound)
	}
	p := *photo
	r.s.photos[photo.ID] = &p
	return nil
}

func (r photoRepo) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check("photos.get"); err != nil {
		return nil, err
	}
	p, ok := r.s.photos[id]
	if !ok {
		return nil, fmt.Errorf("photo %s: %w", id, repository.ErrNotFound)
	}
	out := *p
	return &out, nil
}

func (r photoRepo) ListByUser(ctx context.Context, userID string) ([]*models.Photo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check("photos.list"); err != nil {
		return nil, err
	}
	return r.byUser(userID), nil
}

// byUser returns copies of a user's photos, newest first. Caller holds the lock.
func (r photoRepo) byUser(userID string) []*models.Photo {
	var photos []*models.Photo
	for _, p := range r.s.photos {
		if p.UserID == userID {
			out := *p
			photos = append(photos, &out)
		}
	}
	sort.Slice(photos, func(i, j int) bool {
		if !photos[i].CreatedAt.Equal(photos[j].CreatedAt) {
			return photos[i].CreatedAt.After(photos[j].CreatedAt)
		}
		return photos[i].ID < photos[j].ID
	})
	return photos
}

func (r photoRepo) FirstByUsers(ctx context.Context, userIDs []string) (map[string]*models.Photo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check("photos.first"); err != nil {
		return nil, err
	}
	first := make(map[string]*models.Photo, len(userIDs))
	for _, id := range userIDs {
		if photos := r.byUser(id); len(photos) > 0 {
			first[id] = photos[0]
		}
	}
	return first, nil
}

func (r photoRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("photos.delete"); err != nil {
		return err
	}
	if _, ok := r.s.photos[id]; !ok {
		return fmt.Errorf("photo %s: %w", id, repository.ErrNotFound)
	}
	delete(r.s.photos, id)
	return nil
}

type decisionRepo struct{ s *Store }

func (r decisionRepo) Create(ctx context.Context, decision *models.Decision) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("decisions.create"); err != nil {
		return err
	}
	if decision.OriginID == decision.DestinationID {
		return fmt.Errorf("decision %s targets its own origin", decision.ID)
	}
	for _, d := range r.s.decisions {
		if d.ID == decision.ID {
			return nil
		}
	}
	d := *decision
	r.s.decisions = append(r.s.decisions, &d)
	return nil
}

func (r decisionRepo) List(ctx context.Context, filter repository.DecisionFilter) ([]*models.Decision, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check("decisions.list"); err != nil {
		return nil, err
	}
	var out []*models.Decision
	for _, d := range r.s.decisions {
		if filter.Matches(d) {
			c := *d
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r decisionRepo) Exists(ctx context.Context, filter repository.DecisionFilter) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check("decisions.exists"); err != nil {
		return false, err
	}
	for _, d := range r.s.decisions {
		if filter.Matches(d) {
			return true, nil
		}
	}
	return false, nil
}

type matchRepo struct{ s *Store }

func pairKey(a, b string) string {
	a, b = models.CanonicalPair(a, b)
	return a + "#" + b
}

func (r matchRepo) CreateIfAbsent(ctx context.Context, match *models.Match) (bool, *models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("matches.create"); err != nil {
		return false, nil, err
	}

	match.UserAID, match.UserBID = models.CanonicalPair(match.UserAID, match.UserBID)
	key := pairKey(match.UserAID, match.UserBID)
	if id, ok := r.s.pairs[key]; ok {
		existing := *r.s.matches[id]
		return false, &existing, nil
	}

	m := *match
	r.s.matches[m.ID] = &m
	r.s.pairs[key] = m.ID
	return true, match, nil
}

func (r matchRepo) GetByID(ctx context.Context, id string) (*models.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check("matches.get"); err != nil {
		return nil, err
	}
	m, ok := r.s.matches[id]
	if !ok {
		return nil, fmt.Errorf("match %s: %w", id, repository.ErrNotFound)
	}
	out := *m
	return &out, nil
}

func (r matchRepo) GetByPair(ctx context.Context, userA, userB string) (*models.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check("matches.get_pair"); err != nil {
		return nil, err
	}
	id, ok := r.s.pairs[pairKey(userA, userB)]
	if !ok {
		return nil, fmt.Errorf("match %s/%s: %w", userA, userB, repository.ErrNotFound)
	}
	out := *r.s.matches[id]
	return &out, nil
}

func (r matchRepo) List(ctx context.Context, filter repository.MatchFilter) ([]*models.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check("matches.list"); err != nil {
		return nil, err
	}
	var out []*models.Match
	for _, m := range r.s.matches {
		if filter.Matches(m) {
			c := *m
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r matchRepo) End(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("matches.end"); err != nil {
		return err
	}
	m, ok := r.s.matches[id]
	if !ok {
		return fmt.Errorf("match %s: %w", id, repository.ErrNotFound)
	}
	m.Status = models.MatchEnded
	m.EndedAt = &at
	return nil
}
