package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
	activityRepo "octofit.app/tracker/internal/modules/activity/repository"
	awardRepo "octofit.app/tracker/internal/modules/award/repository"
	award "octofit.app/tracker/internal/modules/award/service"
	challengeRepo "octofit.app/tracker/internal/modules/challenge/repository"
	challenge "octofit.app/tracker/internal/modules/challenge/service"
	houseDto "octofit.app/tracker/internal/modules/house/dto"
	houseRepo "octofit.app/tracker/internal/modules/house/repository"
	leaderboardRepo "octofit.app/tracker/internal/modules/leaderboard/repository"
	leaderboard "octofit.app/tracker/internal/modules/leaderboard/service"
	profileRepo "octofit.app/tracker/internal/modules/profile/repository"
	search "octofit.app/tracker/internal/modules/search/service"
	stat "octofit.app/tracker/internal/modules/stat/service"
	userRepo "octofit.app/tracker/internal/modules/user/repository"
	"octofit.app/tracker/internal/testutil"
	"octofit.app/tracker/pkg/apperror"
	"octofit.app/tracker/pkg/cache"
)

type recordedFeed struct {
	descriptions []string
}

func (f *recordedFeed) Record(_ context.Context, _ uuid.UUID, _ *uuid.UUID, _, description string) {
	f.descriptions = append(f.descriptions, description)
}

type recordedCoach struct {
	events []string
}

func (c *recordedCoach) Event(_ context.Context, _ uuid.UUID, event string) {
	c.events = append(c.events, event)
}

func newTestService(db *gorm.DB) (*houseService, *recordedFeed, *recordedCoach) {
	houses := houseRepo.NewHouseRepository(db)
	profiles := profileRepo.NewProfileRepository(db)
	challenges := challengeRepo.NewChallengeRepository(db)
	awards := awardRepo.NewAwardRepository(db)
	activities := activityRepo.NewActivityRepository(db)
	evaluator := award.NewEvaluator(awards, houses, challenges, profiles, activities)
	c := cache.New(nil)

	challengeService := challenge.NewChallengeService(db, challenges, houses, profiles, awards, evaluator,
		search.NewSearchService(nil), c, nil, nil, challenge.Config{})
	leaderboardService := leaderboard.NewLeaderboardService(leaderboardRepo.NewLeaderboardRepository(db), c, 0)
	statService := stat.NewStatService(userRepo.NewUserRepository(db), profiles, activities)

	feed := &recordedFeed{}
	coach := &recordedCoach{}
	svc := NewHouseService(houses, profiles, challengeService, award.NewAwardService(awards),
		leaderboardService, statService, feed, coach).(*houseService)
	svc.pick = func(int) int { return 0 }
	return svc, feed, coach
}

func TestListOrdersByName(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateHouse(t, db, "Serene")
	testutil.CreateHouse(t, db, "Kraken")
	svc, _, _ := newTestService(db)

	houses, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, houses, 2)
	assert.Equal(t, "Kraken", houses[0].Name)
	assert.Equal(t, "Serene", houses[1].Name)
}

func TestDetailIsCaseInsensitive(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Kraken", "Plank for 1 minute", "Swim 20 laps")
	require.NoError(t, db.Create(&entity.HouseBadge{HouseID: house.ID, Name: "Complete 3 challenges", Emoji: "🏅"}).Error)
	require.NoError(t, db.Create(&entity.HouseActivity{HouseID: house.ID, Description: "Ocean swim"}).Error)
	user := testutil.CreateUser(t, db, "octo", house)
	require.NoError(t, db.Omit("User").Create(&entity.AcceptedChallenge{UserID: user.ID, ChallengeDescription: "Swim 20 laps", XPPoints: 10}).Error)
	svc, _, _ := newTestService(db)

	detail, err := svc.Detail(context.Background(), user.ID, "kRaKeN")
	require.NoError(t, err)
	assert.Equal(t, house.ID, detail.House.ID)
	assert.True(t, detail.IsMember)
	assert.Equal(t, 2, detail.Challenges.Total)
	assert.Equal(t, []string{"Swim 20 laps"}, detail.Challenges.Accepted)
	require.Len(t, detail.Badges, 1)
	assert.False(t, detail.Badges[0].Earned)
	require.Len(t, detail.Members, 1)
	assert.Equal(t, "octo", detail.Members[0].Username)
	assert.Equal(t, []string{"Ocean swim"}, detail.Activities)
	assert.Equal(t, quotes[0], detail.Quote)
	assert.False(t, detail.ShowConfetti)

	_, err = svc.Detail(context.Background(), user.ID, "Atlantis")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestDetailConfetti(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Razor")
	user := testutil.CreateUser(t, db, "blade", house)
	svc, _, _ := newTestService(db)
	ctx := context.Background()

	setPoints := func(n int) {
		require.NoError(t, db.Model(&entity.House{}).Where("id = ?", house.ID).UpdateColumn("points", n).Error)
	}

	setPoints(100)
	detail, err := svc.Detail(ctx, user.ID, "Razor")
	require.NoError(t, err)
	assert.True(t, detail.ShowConfetti)

	setPoints(520)
	detail, err = svc.Detail(ctx, user.ID, "Razor")
	require.NoError(t, err)
	assert.True(t, detail.ShowConfetti, "first visit past 500")

	detail, err = svc.Detail(ctx, user.ID, "Razor")
	require.NoError(t, err)
	assert.False(t, detail.ShowConfetti, "500 is celebrated once")

	setPoints(1000)
	detail, err = svc.Detail(ctx, user.ID, "Razor")
	require.NoError(t, err)
	assert.True(t, detail.ShowConfetti)
}

func TestJoinSetsHouseAndAnnounces(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Montana")
	user := testutil.CreateUser(t, db, "newbie", nil)
	svc, feed, coach := newTestService(db)
	joinedAt := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return joinedAt }

	res, err := svc.Join(context.Background(), user.ID, houseDto.JoinHouseInput{HouseID: house.ID})
	require.NoError(t, err)
	assert.Equal(t, "Welcome to House Montana!", res.Message)

	var profile entity.Profile
	require.NoError(t, db.First(&profile, "user_id = ?", user.ID).Error)
	require.NotNil(t, profile.HouseID)
	assert.Equal(t, house.ID, *profile.HouseID)
	require.NotNil(t, profile.HouseJoinedAt)
	assert.True(t, joinedAt.Equal(*profile.HouseJoinedAt))

	assert.Equal(t, []string{"joined House Montana"}, feed.descriptions)
	assert.Equal(t, []string{EventHouseSwitch}, coach.events)

	_, err = svc.Join(context.Background(), user.ID, houseDto.JoinHouseInput{HouseID: testutil.NewID()})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestShowConfettiRule(t *testing.T) {
	calls := 0
	mark := func() (bool, error) {
		calls++
		return calls == 1, nil
	}

	for _, p := range []int{0, 99, 101, 499} {
		got, err := showConfetti(p, mark)
		require.NoError(t, err)
		assert.False(t, got, p)
	}
	assert.Zero(t, calls)

	got, _ := showConfetti(1000, mark)
	assert.True(t, got)
	got, _ = showConfetti(600, mark)
	assert.True(t, got)
	got, _ = showConfetti(700, mark)
	assert.False(t, got)
}
