package services

import (
	"context"
	"testing"
	"time"

	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeed(t *testing.T, ids ...string) (*FeedService, *MatchService, *memory.Store) {
	t.Helper()
	store := memory.New()
	seedUsers(t, store, ids...)
	return NewFeedService(store, testRetry), NewMatchService(store, nil, testRetry), store
}

func TestNextCandidate_SameUntilDecided(t *testing.T) {
	ctx := context.Background()
	feed, _, _ := newFeed(t, "v", "a", "b")

	first, err := feed.NextCandidate(ctx, "v")
	require.NoError(t, err)
	require.NotNil(t, first)

	for range 3 {
		again, err := feed.NextCandidate(ctx, "v")
		require.NoError(t, err)
		assert.Equal(t, first.User.ID, again.User.ID)
	}
	assert.Equal(t, "a", first.User.ID, "store order")
	assert.Empty(t, first.User.Email, "contact fields are hidden")
}

func TestNextCandidate_NeverReturnsDecided(t *testing.T) {
	ctx := context.Background()
	feed, matches, _ := newFeed(t, "v", "a", "b", "c", "d")

	kinds := []models.DecisionKind{models.KindDislike, models.KindLike, models.KindSuperlike, models.KindDislike}
	decided := map[string]bool{}
	for _, kind := range kinds {
		c, err := feed.NextCandidate(ctx, "v")
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.False(t, decided[c.User.ID], "candidate %s was already decided", c.User.ID)

		_, err = matches.RecordDecision(ctx, "v", c.User.ID, kind)
		require.NoError(t, err)
		decided[c.User.ID] = true

		deck, err := feed.Candidates(ctx, "v", 0)
		require.NoError(t, err)
		for _, d := range deck {
			assert.False(t, decided[d.User.ID])
			assert.NotEqual(t, "v", d.User.ID)
		}
	}

	c, err := feed.NextCandidate(ctx, "v")
	require.NoError(t, err)
	assert.Nil(t, c, "feed is exhausted")
}

func TestNextCandidate_DislikedNeverReturns(t *testing.T) {
	ctx := context.Background()
	feed, matches, _ := newFeed(t, "a", "b")

	res, err := matches.RecordDecision(ctx, "a", "b", models.KindDislike)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeNone, res.Outcome)

	c, err := feed.NextCandidate(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNextCandidate_NoOtherUsers(t *testing.T) {
	feed, _, _ := newFeed(t, "alone")

	c, err := feed.NextCandidate(context.Background(), "alone")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNextCandidate_AttachesPrimaryPhoto(t *testing.T) {
	ctx := context.Background()
	feed, _, store := newFeed(t, "v", "a")

	require.NoError(t, store.Photos().Create(ctx, &models.Photo{ID: "old", UserID: "a", CreatedAt: base}))
	require.NoError(t, store.Photos().Create(ctx, &models.Photo{ID: "new", UserID: "a", CreatedAt: base.Add(time.Hour)}))

	c, err := feed.NextCandidate(ctx, "v")
	require.NoError(t, err)
	require.NotNil(t, c.Photo)
	assert.Equal(t, "new", c.Photo.ID)
}

func TestNextCandidate_ResolvesPhotoURL(t *testing.T) {
	ctx := context.Background()
	feed, _, store := newFeed(t, "v", "a")
	feed.WithPhotoURLs(signingURLs{})

	require.NoError(t, store.Photos().Create(ctx, &models.Photo{ID: "p1", UserID: "a", URL: "https://cdn/p1", CreatedAt: base}))

	c, err := feed.NextCandidate(ctx, "v")
	require.NoError(t, err)
	require.NotNil(t, c.Photo)
	assert.Equal(t, "signed:p1", c.Photo.URL)
}

func TestCandidates_Limit(t *testing.T) {
	feed, _, _ := newFeed(t, "v", "a", "b", "c")

	deck, err := feed.Candidates(context.Background(), "v", 2)
	require.NoError(t, err)
	require.Len(t, deck, 2)
	assert.Equal(t, "a", deck[0].User.ID)
	assert.Equal(t, "b", deck[1].User.ID)
	assert.Nil(t, deck[0].Photo)
}

func TestNextCandidate_Errors(t *testing.T) {
	ctx := context.Background()
	feed, _, store := newFeed(t, "v", "a")

	_, err := feed.NextCandidate(ctx, "")
	assert.ErrorIs(t, err, ErrIdentityMissing)

	_, err = feed.NextCandidate(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	store.SetFault(failAlways("users.list"))
	_, err = feed.NextCandidate(ctx, "v")
	assert.ErrorIs(t, err, ErrFeedUnavailable)
	assert.ErrorIs(t, err, ErrPersistenceUnavailable)
	assert.ErrorIs(t, err, errBoom)
}

func TestNextCandidate_RetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	feed, _, store := newFeed(t, "v", "a")

	store.SetFault(failFirst("decisions.list", 2))
	c, err := feed.NextCandidate(ctx, "v")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "a", c.User.ID)
}
