package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"octofit.app/tracker/internal/entity"
	feedRepo "octofit.app/tracker/internal/modules/feed/repository"
	reactionDto "octofit.app/tracker/internal/modules/reaction/dto"
	reactionRepo "octofit.app/tracker/internal/modules/reaction/repository"
	"octofit.app/tracker/internal/testutil"
	"octofit.app/tracker/pkg/apperror"
)

type countingNotifier struct {
	mu    sync.Mutex
	users []uuid.UUID
}

func (n *countingNotifier) Notify(_ context.Context, userID uuid.UUID, _, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.users = append(n.users, userID)
}

func TestReactIsIdempotentPerUserAndEmoji(t *testing.T) {
	db := testutil.NewDB(t)
	rdb, mr := testutil.NewRedis(t)
	house := testutil.CreateHouse(t, db, "Kraken")
	owner := testutil.CreateUser(t, db, "owner", house)
	fan := testutil.CreateUser(t, db, "fan", house)

	feed := feedRepo.NewFeedRepository(db)
	item := &entity.ActivityFeedItem{UserID: owner.ID, HouseID: &house.ID, Action: entity.FeedActionLoggedActivity}
	require.NoError(t, feed.Create(context.Background(), item))

	notifier := &countingNotifier{}
	svc := NewReactionService(reactionRepo.NewReactionRepository(db), feed, rdb, notifier)
	ctx := context.Background()

	res, err := svc.React(ctx, fan.ID, item.ID, reactionDto.ReactInput{Emoji: "🔥"})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, int64(1), res.Counts["🔥"])

	res, err = svc.React(ctx, fan.ID, item.ID, reactionDto.ReactInput{Emoji: "🔥"})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, int64(1), res.Counts["🔥"])

	res, err = svc.React(ctx, owner.ID, item.ID, reactionDto.ReactInput{Emoji: "🔥"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Counts["🔥"])

	assert.Equal(t, []uuid.UUID{owner.ID}, notifier.users)
	assert.Equal(t, "2", mr.HGet(CountsKey(item.ID), "🔥"))

	got, err := svc.GetReactions(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, got.Reactions, 2)
	assert.Equal(t, "fan", got.Reactions[0].Username)
}

func TestGetReactionsRebuildsCountsFromDatabase(t *testing.T) {
	db := testutil.NewDB(t)
	rdb, mr := testutil.NewRedis(t)
	user := testutil.CreateUser(t, db, "octo", nil)

	feed := feedRepo.NewFeedRepository(db)
	item := &entity.ActivityFeedItem{UserID: user.ID, Action: entity.FeedActionLoggedActivity}
	require.NoError(t, feed.Create(context.Background(), item))

	repo := reactionRepo.NewReactionRepository(db)
	_, err := repo.Add(context.Background(), &entity.Reaction{UserID: user.ID, FeedItemID: item.ID, Emoji: "💪"})
	require.NoError(t, err)

	svc := NewReactionService(repo, feed, rdb, nil)
	got, err := svc.GetReactions(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"💪": 1}, got.Counts)
	assert.Equal(t, "1", mr.HGet(CountsKey(item.ID), "💪"))
}

func TestReactWithoutRedisAndUnknownItem(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "octo", nil)
	feed := feedRepo.NewFeedRepository(db)
	svc := NewReactionService(reactionRepo.NewReactionRepository(db), feed, nil, nil)
	ctx := context.Background()

	_, err := svc.React(ctx, user.ID, testutil.NewID(), reactionDto.ReactInput{Emoji: "👏"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	item := &entity.ActivityFeedItem{UserID: user.ID, Action: entity.FeedActionJoinedHouse}
	require.NoError(t, feed.Create(ctx, item))

	res, err := svc.React(ctx, user.ID, item.ID, reactionDto.ReactInput{Emoji: "👏"})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, int64(1), res.Counts["👏"])
}
