package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

var (
	testRetry = RetryPolicy{Attempts: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	base      = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	errBoom   = errors.New("connection reset")
)

func seedUsers(t *testing.T, store *memory.Store, ids ...string) {
	t.Helper()
	for i, id := range ids {
		require.NoError(t, store.Users().Create(context.Background(), &models.User{
			ID:        id,
			Name:      "name-" + id,
			Email:     id + "@example.com",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

// failFirst makes op fail n times, then succeed
func failFirst(op string, n int) memory.FaultFunc {
	var mu sync.Mutex
	return func(got string) error {
		if got != op {
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		if n > 0 {
			n--
			return errBoom
		}
		return nil
	}
}

func failAlways(op string) memory.FaultFunc {
	return func(got string) error {
		if got == op {
			return errBoom
		}
		return nil
	}
}

type sentNotification struct {
	MatchID string
	ForUser string
	Other   string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (n *recordingNotifier) NotifyMatch(ctx context.Context, match *models.Match, forUser, other *models.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{MatchID: match.ID, ForUser: forUser.ID, Other: other.ID})
	return n.err
}

func (n *recordingNotifier) all() []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentNotification(nil), n.sent...)
}

// signingURLs stamps every photo URL so tests can see it was resolved
type signingURLs struct{}

func (signingURLs) Resolve(ctx context.Context, photos ...*models.Photo) {
	for _, p := range photos {
		p.URL = "signed:" + p.ID
	}
}
