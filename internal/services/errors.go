package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"swipe-match-backend/internal/repository"
)

var (
	// ErrIdentityMissing means no authenticated user was supplied
	ErrIdentityMissing = errors.New("identity missing")
	// ErrPersistenceUnavailable means the store kept failing after retries
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
	// ErrFeedUnavailable is the feed-specific form of ErrPersistenceUnavailable
	ErrFeedUnavailable = fmt.Errorf("feed unavailable: %w", ErrPersistenceUnavailable)
	// ErrNotFound means a referenced user, photo or match does not exist
	ErrNotFound = repository.ErrNotFound

	ErrSelfDecision    = errors.New("cannot decide on yourself")
	ErrInvalidDecision = errors.New("invalid decision kind")
	ErrNotPhotoOwner   = errors.New("photo belongs to another user")
	ErrNotMatchMember  = errors.New("user is not part of this match")
	ErrInvalidPhoto    = errors.New("invalid photo")
)

// ValidationErrors maps a field name to what is wrong with it
type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
