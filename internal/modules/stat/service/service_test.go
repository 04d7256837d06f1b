package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
	activityRepo "octofit.app/tracker/internal/modules/activity/repository"
	profileRepo "octofit.app/tracker/internal/modules/profile/repository"
	userRepo "octofit.app/tracker/internal/modules/user/repository"
	"octofit.app/tracker/internal/testutil"
)

// Wednesday.
var fixedNow = time.Date(2025, 6, 11, 15, 0, 0, 0, time.UTC)

func newTestService(db *gorm.DB) *statService {
	svc := NewStatService(
		userRepo.NewUserRepository(db),
		profileRepo.NewProfileRepository(db),
		activityRepo.NewActivityRepository(db),
	).(*statService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func logOn(t *testing.T, db *gorm.DB, user *entity.User, day string) {
	t.Helper()
	d, err := time.Parse("2006-01-02", day)
	require.NoError(t, err)
	require.NoError(t, db.Omit("User").Create(&entity.FitnessActivity{
		UserID:          user.ID,
		ActivityType:    "run",
		DurationMinutes: 30,
		Date:            d,
	}).Error)
}

func TestProgressPercents(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Montana")
	require.NoError(t, db.Model(house).UpdateColumn("points", 250).Error)
	user := testutil.CreateUser(t, db, "hiker", house)
	require.NoError(t, db.Model(&entity.Profile{}).Where("user_id = ?", user.ID).UpdateColumn("streak_count", 3).Error)

	logOn(t, db, user, "2025-06-08") // previous week
	logOn(t, db, user, "2025-06-09")
	logOn(t, db, user, "2025-06-10")

	res, err := newTestService(db).Progress(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.WorkoutsThisWeek)
	assert.Equal(t, 66, res.WorkoutPercent)
	assert.Equal(t, 3, res.Streak)
	assert.Equal(t, 42, res.StreakPercent)
	assert.Equal(t, 250, res.HousePoints)
	assert.Equal(t, 50, res.PointsPercent)
}

func TestProgressWithoutHouse(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "drifter", nil)

	res, err := newTestService(db).Progress(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Zero(t, res.HousePoints)
	assert.Zero(t, res.PointsPercent)
}

func TestAnalyticsWindow(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Serene")
	user := testutil.CreateUser(t, db, "calm", house)
	mate := testutil.CreateUser(t, db, "mate", house)

	logOn(t, db, user, "2025-05-28") // outside the window
	logOn(t, db, user, "2025-05-29")
	logOn(t, db, user, "2025-06-11")
	logOn(t, db, user, "2025-06-11")
	logOn(t, db, mate, "2025-06-10")

	res, err := newTestService(db).Analytics(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, res.Dates, AnalyticsDays)
	assert.Equal(t, "2025-05-29", res.Dates[0])
	assert.Equal(t, "2025-06-11", res.Dates[AnalyticsDays-1])

	assert.Equal(t, 1, res.ActivityCounts[0])
	assert.Equal(t, 2, res.ActivityCounts[AnalyticsDays-1])
	assert.Equal(t, 1, res.HouseActivityCounts[AnalyticsDays-2])
	assert.Equal(t, 2, res.HouseActivityCounts[AnalyticsDays-1])
}
