package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"octofit.app/tracker/internal/entity"
	"octofit.app/tracker/internal/gamification"
	leaderboardDto "octofit.app/tracker/internal/modules/leaderboard/dto"
	leaderboardRepo "octofit.app/tracker/internal/modules/leaderboard/repository"
	"octofit.app/tracker/internal/testutil"
	"octofit.app/tracker/pkg/cache"
)

func TestPredict(t *testing.T) {
	tests := []struct {
		name      string
		standings []leaderboardDto.HouseStanding
		want      string
	}{
		{"single house", []leaderboardDto.HouseStanding{{Name: "Kraken", Points: 10}}, ""},
		{"close race", []leaderboardDto.HouseStanding{{Name: "Kraken", Points: 120}, {Name: "Razor", Points: 100}}, "If Razor logs 2 more workouts, they'll take the lead!"},
		{"runaway leader", []leaderboardDto.HouseStanding{{Name: "Kraken", Points: 121}, {Name: "Razor", Points: 100}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Predict(tt.standings))
		})
	}
}

func TestGetLeaderboardIsCachedUntilInvalidated(t *testing.T) {
	db := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)
	kraken := testutil.CreateHouse(t, db, "Kraken")
	testutil.CreateHouse(t, db, "Razor")
	require.NoError(t, db.Model(&entity.House{}).Where("id = ?", kraken.ID).Update("points", 50).Error)

	svc := NewLeaderboardService(leaderboardRepo.NewLeaderboardRepository(db), cache.New(rdb), time.Minute)
	ctx := context.Background()

	res, err := svc.GetLeaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, res.Houses, 2)
	assert.Equal(t, "Kraken", res.Houses[0].Name)
	assert.Equal(t, 1, res.Houses[0].Position)
	assert.Empty(t, res.Prediction)

	require.NoError(t, db.Model(&entity.House{}).Where("name = ?", "Razor").Update("points", 45).Error)

	res, err = svc.GetLeaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Houses[1].Points)

	svc.Invalidate(ctx)
	res, err = svc.GetLeaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 45, res.Houses[1].Points)
	assert.Equal(t, "If Razor logs 2 more workouts, they'll take the lead!", res.Prediction)
}

func TestGetHouseMembersOrdersByActivityCount(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Montana")
	alice := testutil.CreateUser(t, db, "alice", house)
	bob := testutil.CreateUser(t, db, "bob", house)
	testutil.CreateUser(t, db, "carol", house)
	testutil.CreateUser(t, db, "outsider", nil)

	today := gamification.Day(time.Now())
	for _, uid := range []*entity.User{bob, bob, alice} {
		require.NoError(t, db.Omit("User").Create(&entity.FitnessActivity{
			UserID: uid.ID, ActivityType: "Hike", DurationMinutes: 30, Date: today,
		}).Error)
	}

	svc := NewLeaderboardService(leaderboardRepo.NewLeaderboardRepository(db), cache.New(nil), 0)
	members, err := svc.GetHouseMembers(context.Background(), house.ID, 0)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, "bob", members[0].Username)
	assert.Equal(t, 2, members[0].ActivityCount)
	assert.Equal(t, "alice", members[1].Username)
	assert.Equal(t, "carol", members[2].Username)
	assert.Equal(t, 0, members[2].ActivityCount)
	assert.Equal(t, 3, members[2].Position)
}
