package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
	activityRepo "octofit.app/tracker/internal/modules/activity/repository"
	awardRepo "octofit.app/tracker/internal/modules/award/repository"
	award "octofit.app/tracker/internal/modules/award/service"
	challengeDto "octofit.app/tracker/internal/modules/challenge/dto"
	challengeRepo "octofit.app/tracker/internal/modules/challenge/repository"
	houseRepo "octofit.app/tracker/internal/modules/house/repository"
	profileRepo "octofit.app/tracker/internal/modules/profile/repository"
	search "octofit.app/tracker/internal/modules/search/service"
	"octofit.app/tracker/internal/testutil"
	"octofit.app/tracker/pkg/apperror"
	"octofit.app/tracker/pkg/cache"
)

type notice struct {
	userID uuid.UUID
	kind   string
}

type fakeNotifier struct {
	sent []notice
}

func (n *fakeNotifier) Notify(_ context.Context, userID uuid.UUID, kind, _ string) {
	n.sent = append(n.sent, notice{userID: userID, kind: kind})
}

type fakeFeed struct {
	actions []string
}

func (f *fakeFeed) Record(_ context.Context, _ uuid.UUID, _ *uuid.UUID, action, _ string) {
	f.actions = append(f.actions, action)
}

func newTestService(t *testing.T, db *gorm.DB, rdb *redis.Client) (ChallengeService, *fakeNotifier, *fakeFeed) {
	t.Helper()
	challenges := challengeRepo.NewChallengeRepository(db)
	houses := houseRepo.NewHouseRepository(db)
	profiles := profileRepo.NewProfileRepository(db)
	awards := awardRepo.NewAwardRepository(db)
	evaluator := award.NewEvaluator(awards, houses, challenges, profiles, activityRepo.NewActivityRepository(db))

	notifier := &fakeNotifier{}
	feed := &fakeFeed{}
	svc := NewChallengeService(db, challenges, houses, profiles, awards, evaluator,
		search.NewSearchService(nil), cache.New(rdb), notifier, feed, Config{SuggestionCooldown: time.Minute})
	return svc, notifier, feed
}

func TestAcceptIsGetOrCreate(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Kraken", "Plank for 1 minute", "Swim 20 laps")
	user := testutil.CreateUser(t, db, "octo", house)
	svc, _, _ := newTestService(t, db, nil)
	ctx := context.Background()

	res, err := svc.Accept(ctx, user.ID, challengeDto.AcceptChallengeInput{Description: "Plank for 1 minute"})
	require.NoError(t, err)
	assert.Equal(t, "Challenge accepted!", res.Message)
	assert.Equal(t, 10, res.XP)
	assert.Equal(t, []string{"Plank for 1 minute"}, res.Progress.Accepted)
	assert.Equal(t, 2, res.Progress.Total)

	res, err = svc.Accept(ctx, user.ID, challengeDto.AcceptChallengeInput{Description: "Plank for 1 minute", XP: testutil.Ptr(50)})
	require.NoError(t, err)
	assert.Equal(t, "Already accepted", res.Message)
	assert.Equal(t, 10, res.XP)

	_, err = svc.Accept(ctx, user.ID, challengeDto.AcceptChallengeInput{Description: "Juggle chainsaws"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestCompleteRequiresOpenAcceptance(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Razor", "Jump rope 100 times")
	user := testutil.CreateUser(t, db, "octo", house)
	svc, notifier, feed := newTestService(t, db, nil)
	ctx := context.Background()

	_, err := svc.Complete(ctx, user.ID, challengeDto.CompleteChallengeInput{Description: "Jump rope 100 times"})
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))

	_, err = svc.Accept(ctx, user.ID, challengeDto.AcceptChallengeInput{Description: "Jump rope 100 times"})
	require.NoError(t, err)

	res, err := svc.Complete(ctx, user.ID, challengeDto.CompleteChallengeInput{Description: "Jump rope 100 times", XP: testutil.Ptr(25)})
	require.NoError(t, err)
	assert.Equal(t, 25, res.XP)
	assert.Equal(t, 1, res.Progress.Done)
	assert.Equal(t, 100, res.Progress.Percent)
	assert.Equal(t, []string{entity.FeedActionCompleted}, feed.actions)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, entity.NotificationChallengeComplete, notifier.sent[0].kind)

	_, err = svc.Complete(ctx, user.ID, challengeDto.CompleteChallengeInput{Description: "Jump rope 100 times"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestCompleteGrantsChallengeCountBadge(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Montana", "Hike 2 miles", "Climb stairs for 10 minutes", "Trail run 3k")
	user := testutil.CreateUser(t, db, "octo", house)
	require.NoError(t, db.Create(&entity.HouseBadge{HouseID: house.ID, Name: "Complete 3 challenges", Emoji: "⛰️"}).Error)
	svc, notifier, _ := newTestService(t, db, nil)
	ctx := context.Background()

	descriptions := []string{"Hike 2 miles", "Climb stairs for 10 minutes", "Trail run 3k"}
	var last *challengeDto.ChallengeActionResponse
	for _, d := range descriptions {
		_, err := svc.Accept(ctx, user.ID, challengeDto.AcceptChallengeInput{Description: d})
		require.NoError(t, err)
		last, err = svc.Complete(ctx, user.ID, challengeDto.CompleteChallengeInput{Description: d})
		require.NoError(t, err)
	}

	require.Len(t, last.NewBadges, 1)
	assert.Equal(t, "Complete 3 challenges", last.NewBadges[0].Name)

	badges := 0
	for _, n := range notifier.sent {
		if n.kind == entity.NotificationBadge {
			badges++
		}
	}
	assert.Equal(t, 1, badges)

	latest, err := svc.Latest(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, latest.Challenge)
	require.NotNil(t, latest.Badge)
	assert.Equal(t, "Complete 3 challenges", latest.Badge.Name)
}

func TestLatestWithNothingCompleted(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "octo", nil)
	svc, _, _ := newTestService(t, db, nil)

	latest, err := svc.Latest(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Nil(t, latest.Challenge)
	assert.Nil(t, latest.Badge)
}

func TestSuggestIsRateLimited(t *testing.T) {
	db := testutil.NewDB(t)
	rdb, mr := testutil.NewRedis(t)
	house := testutil.CreateHouse(t, db, "Serene")
	user := testutil.CreateUser(t, db, "octo", house)
	svc, _, _ := newTestService(t, db, rdb)
	ctx := context.Background()

	_, err := svc.Suggest(ctx, user.ID, challengeDto.SuggestChallengeInput{HouseID: testutil.NewID(), Description: "Sunset yoga"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	res, err := svc.Suggest(ctx, user.ID, challengeDto.SuggestChallengeInput{HouseID: house.ID, Description: "<i>Sunset</i> yoga"})
	require.NoError(t, err)
	assert.Equal(t, "Sunset yoga", res.Description)

	_, err = svc.Suggest(ctx, user.ID, challengeDto.SuggestChallengeInput{HouseID: house.ID, Description: "Moonlight yoga"})
	assert.Equal(t, http.StatusTooManyRequests, apperror.MapErrorToStatus(err))

	mr.FastForward(2 * time.Minute)
	_, err = svc.Suggest(ctx, user.ID, challengeDto.SuggestChallengeInput{HouseID: house.ID, Description: "Moonlight yoga"})
	require.NoError(t, err)
}

func TestSearchFallsBackToDatabase(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateHouse(t, db, "Kraken", "Plank for 1 minute", "Swim 20 laps")
	testutil.CreateHouse(t, db, "Razor", "Side plank 30 seconds")
	svc, _, _ := newTestService(t, db, nil)

	results, err := svc.Search(context.Background(), "PLANK")
	require.NoError(t, err)
	require.Len(t, results, 2)

	results, err = svc.Search(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestListWithoutHouse(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "octo", nil)
	svc, _, _ := newTestService(t, db, nil)

	progress, err := svc.List(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Zero(t, progress.Total)
	assert.Empty(t, progress.Challenges)
}
