package postgres

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dsnEnv names a throwaway database; the tests are skipped without it
const dsnEnv = "SWIPEMATCH_TEST_POSTGRES_DSN"

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// openStore migrates the test database. Every test works on ids under its own
// random prefix, so runs never collide with each other or with existing rows.
func openStore(t *testing.T) (*Store, func(string) string) {
	t.Helper()
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s not set", dsnEnv)
	}

	ctx := context.Background()
	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(ctx))

	prefix := uuid.New().String()[:8]
	t.Cleanup(func() {
		_, _ = s.db.Exec(context.Background(), `DELETE FROM users WHERE id LIKE $1`, prefix+"-%")
	})
	return s, func(id string) string { return prefix + "-" + id }
}

func seedUsers(t *testing.T, s *Store, ids ...string) {
	t.Helper()
	for i, id := range ids {
		require.NoError(t, s.Users().Create(context.Background(), &models.User{
			ID:        id,
			Name:      "user " + id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

func TestPhotoRepository_FirstByUsers(t *testing.T) {
	ctx := context.Background()
	s, id := openStore(t)
	a, b, c := id("a"), id("b"), id("c")
	seedUsers(t, s, a, b, c)

	for _, p := range []*models.Photo{
		{ID: id("p1"), UserID: a, StorageKey: "a/1.jpg", URL: "u1", CreatedAt: base},
		{ID: id("p2"), UserID: a, StorageKey: "a/2.jpg", URL: "u2", CreatedAt: base.Add(time.Hour)},
		{ID: id("p3"), UserID: b, StorageKey: "b/1.jpg", URL: "u3", CreatedAt: base},
	} {
		require.NoError(t, s.Photos().Create(ctx, p))
	}

	first, err := s.Photos().FirstByUsers(ctx, []string{a, b, c})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, id("p2"), first[a].ID)
	assert.Equal(t, id("p3"), first[b].ID)
	assert.NotContains(t, first, c)

	empty, err := s.Photos().FirstByUsers(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDecisionRepository(t *testing.T) {
	ctx := context.Background()
	s, id := openStore(t)
	a, b := id("a"), id("b")
	seedUsers(t, s, a, b)

	like := &models.Decision{ID: id("d1"), OriginID: a, DestinationID: b, Kind: models.KindLike, CreatedAt: base}
	require.NoError(t, s.Decisions().Create(ctx, like))
	// a retried write of the same decision is a no-op
	require.NoError(t, s.Decisions().Create(ctx, like))
	require.NoError(t, s.Decisions().Create(ctx, &models.Decision{
		ID: id("d2"), OriginID: b, DestinationID: a, Kind: models.KindDislike, CreatedAt: base.Add(time.Second),
	}))

	fromA, err := s.Decisions().List(ctx, repository.DecisionFilter{OriginID: a})
	require.NoError(t, err)
	require.Len(t, fromA, 1)
	assert.True(t, base.Equal(fromA[0].CreatedAt))

	ok, err := s.Decisions().Exists(ctx, repository.DecisionFilter{
		OriginID: b, DestinationID: a, Kinds: models.PositiveKinds(),
	})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Decisions().Exists(ctx, repository.DecisionFilter{
		OriginID: a, DestinationID: b, Kinds: models.PositiveKinds(),
	})
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Error(t, s.Decisions().Create(ctx, &models.Decision{
		ID: id("d3"), OriginID: a, DestinationID: a, Kind: models.KindLike, CreatedAt: base,
	}))
}

func TestMatchRepository_ConcurrentCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	s, id := openStore(t)
	a, b := id("a"), id("b")
	seedUsers(t, s, a, b)

	const workers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	ids := map[string]bool{}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userA, userB := a, b
			if i%2 == 1 {
				userA, userB = b, a
			}
			ok, stored, err := s.Matches().CreateIfAbsent(ctx, &models.Match{
				ID:        id(fmt.Sprintf("m%d", i)),
				UserAID:   userA,
				UserBID:   userB,
				Status:    models.MatchActive,
				CreatedAt: base,
			})
			assert.NoError(t, err)
			if err != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if ok {
				created++
			}
			ids[stored.ID] = true
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, ids, 1, "every caller sees the same match")

	m, err := s.Matches().GetByPair(ctx, b, a)
	require.NoError(t, err)
	assert.True(t, ids[m.ID])

	require.NoError(t, s.Matches().End(ctx, m.ID, base.Add(time.Hour)))
	active, err := s.Matches().List(ctx, repository.MatchFilter{UserID: a, Status: models.MatchActive})
	require.NoError(t, err)
	assert.Empty(t, active)
}
