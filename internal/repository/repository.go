// Package repository defines the persistence boundary of the service.
// Backends live in subpackages and must enforce uniqueness of the canonical
// (user_a_id, user_b_id) pair for matches themselves.
package repository

import (
	"context"
	"errors"
	"time"

	"swipe-match-backend/internal/models"
)

// ErrNotFound is returned when a referenced record does not exist
var ErrNotFound = errors.New("not found")

// DecisionFilter selects decisions. Zero-valued fields do not filter.
type DecisionFilter struct {
	OriginID      string
	DestinationID string
	Kinds         []models.DecisionKind
}

// Matches reports whether d passes the filter
func (f DecisionFilter) Matches(d *models.Decision) bool {
	if f.OriginID != "" && d.OriginID != f.OriginID {
		return false
	}
	if f.DestinationID != "" && d.DestinationID != f.DestinationID {
		return false
	}
	if len(f.Kinds) == 0 {
		return true
	}
	for _, k := range f.Kinds {
		if d.Kind == k {
			return true
		}
	}
	return false
}

// MatchFilter selects matches. Zero-valued fields do not filter.
type MatchFilter struct {
	UserID string
	Status models.MatchStatus
}

// Matches reports whether m passes the filter
func (f MatchFilter) Matches(m *models.Match) bool {
	if f.UserID != "" && !m.HasUser(f.UserID) {
		return false
	}
	if f.Status != "" && m.Status != f.Status {
		return false
	}
	return true
}

// UserRepository stores profiles
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// ListExcluding returns every user except id, ordered by creation time then id.
	ListExcluding(ctx context.Context, id string) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePushToken(ctx context.Context, id string, pushToken *string) error
}

// PhotoRepository stores photo records; binary content lives in object storage
type PhotoRepository interface {
	Create(ctx context.Context, photo *models.Photo) error
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	// ListByUser returns the user's photos, newest first.
	ListByUser(ctx context.Context, userID string) ([]*models.Photo, error)
	// FirstByUsers returns the primary (newest) photo of each user that has one.
	FirstByUsers(ctx context.Context, userIDs []string) (map[string]*models.Photo, error)
	Delete(ctx context.Context, id string) error
}

// DecisionRepository is append-only
type DecisionRepository interface {
	Create(ctx context.Context, decision *models.Decision) error
	List(ctx context.Context, filter DecisionFilter) ([]*models.Decision, error)
	Exists(ctx context.Context, filter DecisionFilter) (bool, error)
}

// MatchRepository stores matches keyed by their canonical pair
type MatchRepository interface {
	// CreateIfAbsent inserts match unless its pair already has one. When the pair
	// exists, created is false and existing holds the stored match.
	CreateIfAbsent(ctx context.Context, match *models.Match) (created bool, existing *models.Match, err error)
	GetByID(ctx context.Context, id string) (*models.Match, error)
	GetByPair(ctx context.Context, userA, userB string) (*models.Match, error)
	List(ctx context.Context, filter MatchFilter) ([]*models.Match, error)
	End(ctx context.Context, id string, at time.Time) error
}

// Store bundles the repositories of one backend
type Store interface {
	Users() UserRepository
	Photos() PhotoRepository
	Decisions() DecisionRepository
	Matches() MatchRepository
	Ping(ctx context.Context) error
	Close() error
}
