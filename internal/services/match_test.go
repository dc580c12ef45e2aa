package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/repository"
	"swipe-match-backend/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMatchService(t *testing.T, ids ...string) (*MatchService, *memory.Store, *recordingNotifier) {
	t.Helper()
	store := memory.New()
	seedUsers(t, store, ids...)
	n := &recordingNotifier{}
	return NewMatchService(store, n, testRetry), store, n
}

func TestRecordDecision_MutualLikeScenario(t *testing.T) {
	ctx := context.Background()
	svc, store, notifier := newMatchService(t, "a", "b")

	res, err := svc.RecordDecision(ctx, "a", "b", models.KindLike)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeNone, res.Outcome)
	assert.Nil(t, res.Match)

	res, err = svc.RecordDecision(ctx, "b", "a", models.KindLike)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeMatched, res.Outcome)
	assert.True(t, res.Created)
	require.NotNil(t, res.Match)
	assert.Equal(t, "a", res.Match.UserAID)
	assert.Equal(t, "b", res.Match.UserBID)
	assert.Equal(t, models.MatchActive, res.Match.Status)
	assert.Equal(t, "It's a match! You and name-a liked each other.", res.Notification)

	sent := notifier.all()
	require.Len(t, sent, 2)
	assert.ElementsMatch(t, []string{"a", "b"}, []string{sent[0].ForUser, sent[1].ForUser})

	// duplicate like does not create a second match
	res, err = svc.RecordDecision(ctx, "a", "b", models.KindLike)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeMatched, res.Outcome)
	assert.False(t, res.Created)
	assert.Empty(t, res.Notification)

	all, err := store.Matches().List(ctx, repository.MatchFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Len(t, notifier.all(), 2, "no notification for an existing match")
}

func TestRecordDecision_DislikeNeverMatches(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newMatchService(t, "a", "b")

	_, err := svc.RecordDecision(ctx, "b", "a", models.KindLike)
	require.NoError(t, err)
	_, err = svc.RecordDecision(ctx, "b", "a", models.KindSuperlike)
	require.NoError(t, err)

	res, err := svc.RecordDecision(ctx, "a", "b", models.KindDislike)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeNone, res.Outcome)

	all, err := store.Matches().List(ctx, repository.MatchFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)

	recorded, err := store.Decisions().Exists(ctx, repository.DecisionFilter{OriginID: "a", DestinationID: "b", Kinds: []models.DecisionKind{models.KindDislike}})
	require.NoError(t, err)
	assert.True(t, recorded, "dislike is still persisted")
}

func TestRecordDecision_SuperlikeReciprocates(t *testing.T) {
	tests := []struct {
		name   string
		first  models.DecisionKind
		second models.DecisionKind
	}{
		{"like then superlike", models.KindLike, models.KindSuperlike},
		{"superlike then like", models.KindSuperlike, models.KindLike},
		{"superlike both ways", models.KindSuperlike, models.KindSuperlike},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc, _, _ := newMatchService(t, "a", "b")

			res, err := svc.RecordDecision(ctx, "a", "b", tt.first)
			require.NoError(t, err)
			assert.Equal(t, models.OutcomeNone, res.Outcome)

			res, err = svc.RecordDecision(ctx, "b", "a", tt.second)
			require.NoError(t, err)
			assert.Equal(t, models.OutcomeMatched, res.Outcome)
			assert.True(t, res.Created)
		})
	}
}

func TestRecordDecision_DislikeThenLikeDoesNotMatch(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newMatchService(t, "a", "b")

	_, err := svc.RecordDecision(ctx, "a", "b", models.KindDislike)
	require.NoError(t, err)

	res, err := svc.RecordDecision(ctx, "b", "a", models.KindLike)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeNone, res.Outcome)
}

func TestRecordDecision_ConcurrentMutualLikes(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewMatchService(store, nil, testRetry)

	const pairs = 50
	for i := range pairs {
		seedUsers(t, store, fmt.Sprintf("a%02d", i), fmt.Sprintf("b%02d", i))
	}

	var wg sync.WaitGroup
	results := make([][2]*models.MatchResult, pairs)
	for i := range pairs {
		a, b := fmt.Sprintf("a%02d", i), fmt.Sprintf("b%02d", i)
		wg.Add(2)
		go func() {
			defer wg.Done()
			res, err := svc.RecordDecision(ctx, a, b, models.KindLike)
			assert.NoError(t, err)
			results[i][0] = res
		}()
		go func() {
			defer wg.Done()
			res, err := svc.RecordDecision(ctx, b, a, models.KindLike)
			assert.NoError(t, err)
			results[i][1] = res
		}()
	}
	wg.Wait()

	for i := range pairs {
		a, b := fmt.Sprintf("a%02d", i), fmt.Sprintf("b%02d", i)
		m, err := store.Matches().List(ctx, repository.MatchFilter{UserID: a})
		require.NoError(t, err)
		require.Len(t, m, 1, "pair %d", i)
		assert.True(t, m[0].HasUser(b))

		created := 0
		for _, r := range results[i] {
			require.NotNil(t, r)
			if r.Created {
				created++
			}
		}
		assert.Equal(t, 1, created, "pair %d", i)
	}
}

func TestRecordDecision_Validation(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newMatchService(t, "a", "b")

	_, err := svc.RecordDecision(ctx, "", "b", models.KindLike)
	assert.ErrorIs(t, err, ErrIdentityMissing)

	_, err = svc.RecordDecision(ctx, "a", "a", models.KindLike)
	assert.ErrorIs(t, err, ErrSelfDecision)

	_, err = svc.RecordDecision(ctx, "a", "b", models.DecisionKind("maybe"))
	assert.ErrorIs(t, err, ErrInvalidDecision)

	_, err = svc.RecordDecision(ctx, "a", "ghost", models.KindLike)
	assert.ErrorIs(t, err, ErrNotFound)

	exists, err := store.Decisions().Exists(ctx, repository.DecisionFilter{})
	require.NoError(t, err)
	assert.False(t, exists, "rejected decisions are not persisted")
}

func TestRecordDecision_RetriesDecisionWrite(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newMatchService(t, "a", "b")

	store.SetFault(failFirst("decisions.create", 2))
	res, err := svc.RecordDecision(ctx, "a", "b", models.KindLike)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeNone, res.Outcome)

	ok, err := store.Decisions().Exists(ctx, repository.DecisionFilter{OriginID: "a"})
	require.NoError(t, err)
	assert.True(t, ok)
}

// lostAckStore commits decision writes but reports the first n of them as failed
type lostAckStore struct {
	repository.Store
	mu sync.Mutex
	n  int
}

func (s *lostAckStore) Decisions() repository.DecisionRepository {
	return lostAckDecisions{DecisionRepository: s.Store.Decisions(), s: s}
}

type lostAckDecisions struct {
	repository.DecisionRepository
	s *lostAckStore
}

func (d lostAckDecisions) Create(ctx context.Context, decision *models.Decision) error {
	if err := d.DecisionRepository.Create(ctx, decision); err != nil {
		return err
	}
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if d.s.n > 0 {
		d.s.n--
		return errBoom
	}
	return nil
}

func TestRecordDecision_RetryAfterCommittedWrite(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedUsers(t, store, "a", "b")
	svc := NewMatchService(&lostAckStore{Store: store, n: 1}, nil, testRetry)

	_, err := svc.RecordDecision(ctx, "a", "b", models.KindLike)
	require.NoError(t, err)

	res, err := svc.RecordDecision(ctx, "b", "a", models.KindLike)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeMatched, res.Outcome)
	assert.True(t, res.Created)

	fromA, err := store.Decisions().List(ctx, repository.DecisionFilter{OriginID: "a"})
	require.NoError(t, err)
	assert.Len(t, fromA, 1, "the retried write is stored once")

	all, err := store.Matches().List(ctx, repository.MatchFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRecordDecision_PersistenceUnavailable(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newMatchService(t, "a", "b")

	store.SetFault(failAlways("decisions.create"))
	_, err := svc.RecordDecision(ctx, "a", "b", models.KindLike)
	assert.ErrorIs(t, err, ErrPersistenceUnavailable)
	assert.ErrorIs(t, err, errBoom)
}

func TestRecordDecision_NotificationFailureDoesNotFail(t *testing.T) {
	ctx := context.Background()
	svc, _, notifier := newMatchService(t, "a", "b")
	notifier.err = errBoom

	_, err := svc.RecordDecision(ctx, "a", "b", models.KindLike)
	require.NoError(t, err)
	res, err := svc.RecordDecision(ctx, "b", "a", models.KindLike)
	require.NoError(t, err)
	assert.True(t, res.Created)
}

func TestEndMatch(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newMatchService(t, "a", "b", "c")

	_, err := svc.RecordDecision(ctx, "a", "b", models.KindLike)
	require.NoError(t, err)
	res, err := svc.RecordDecision(ctx, "b", "a", models.KindLike)
	require.NoError(t, err)
	matchID := res.Match.ID

	assert.ErrorIs(t, svc.EndMatch(ctx, "c", matchID), ErrNotMatchMember)
	assert.ErrorIs(t, svc.EndMatch(ctx, "a", "missing"), ErrNotFound)
	assert.ErrorIs(t, svc.EndMatch(ctx, "", matchID), ErrIdentityMissing)

	require.NoError(t, svc.EndMatch(ctx, "a", matchID))
	require.NoError(t, svc.EndMatch(ctx, "b", matchID), "ending twice is harmless")

	views, err := svc.ListMatches(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, views)

	// a later like does not revive the match
	res, err = svc.RecordDecision(ctx, "a", "b", models.KindLike)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeNone, res.Outcome)
	assert.False(t, res.Created)
}

func TestListMatches(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newMatchService(t, "a", "b", "c")
	svc.WithPhotoURLs(signingURLs{})

	require.NoError(t, store.Photos().Create(ctx, &models.Photo{ID: "pb", UserID: "b", CreatedAt: base}))

	for _, other := range []string{"b", "c"} {
		_, err := svc.RecordDecision(ctx, "a", other, models.KindLike)
		require.NoError(t, err)
		_, err = svc.RecordDecision(ctx, other, "a", models.KindLike)
		require.NoError(t, err)
	}

	views, err := svc.ListMatches(ctx, "a")
	require.NoError(t, err)
	require.Len(t, views, 2)

	byUser := map[string]*models.MatchView{}
	for _, v := range views {
		byUser[v.User.ID] = v
		assert.Empty(t, v.User.Email)
	}
	require.Contains(t, byUser, "b")
	require.Contains(t, byUser, "c")
	require.NotNil(t, byUser["b"].Photo)
	assert.Equal(t, "pb", byUser["b"].Photo.ID)
	assert.Equal(t, "signed:pb", byUser["b"].Photo.URL)
	assert.Nil(t, byUser["c"].Photo)

	views, err = svc.ListMatches(ctx, "b")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "a", views[0].User.ID)
}

func TestLikesReceived(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newMatchService(t, "me", "x", "y", "z")

	_, err := svc.RecordDecision(ctx, "x", "me", models.KindLike)
	require.NoError(t, err)
	_, err = svc.RecordDecision(ctx, "x", "me", models.KindSuperlike)
	require.NoError(t, err)
	_, err = svc.RecordDecision(ctx, "y", "me", models.KindSuperlike)
	require.NoError(t, err)
	_, err = svc.RecordDecision(ctx, "z", "me", models.KindDislike)
	require.NoError(t, err)

	likes, err := svc.LikesReceived(ctx, "me")
	require.NoError(t, err)
	require.Len(t, likes, 2)
	assert.Equal(t, "x", likes[0].User.ID)
	assert.Equal(t, "y", likes[1].User.ID)

	// matching with y removes them from the list
	res, err := svc.RecordDecision(ctx, "me", "y", models.KindLike)
	require.NoError(t, err)
	require.True(t, res.Created)

	likes, err = svc.LikesReceived(ctx, "me")
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, "x", likes[0].User.ID)
}
