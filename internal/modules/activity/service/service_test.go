package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
	activityDto "octofit.app/tracker/internal/modules/activity/dto"
	activityRepo "octofit.app/tracker/internal/modules/activity/repository"
	awardRepo "octofit.app/tracker/internal/modules/award/repository"
	award "octofit.app/tracker/internal/modules/award/service"
	challengeRepo "octofit.app/tracker/internal/modules/challenge/repository"
	houseRepo "octofit.app/tracker/internal/modules/house/repository"
	profileRepo "octofit.app/tracker/internal/modules/profile/repository"
	"octofit.app/tracker/internal/testutil"
	"octofit.app/tracker/pkg/apperror"
	commonDto "octofit.app/tracker/pkg/dto"
)

var fixedNow = time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC)

type sink struct {
	kinds       []string
	feedActions []string
	coachEvents []string
	invalidated int
}

func (s *sink) Notify(_ context.Context, _ uuid.UUID, kind, _ string) {
	s.kinds = append(s.kinds, kind)
}

func (s *sink) Record(_ context.Context, _ uuid.UUID, _ *uuid.UUID, action, _ string) {
	s.feedActions = append(s.feedActions, action)
}

func (s *sink) Event(_ context.Context, _ uuid.UUID, event string) {
	s.coachEvents = append(s.coachEvents, event)
}

func (s *sink) Invalidate(context.Context) {
	s.invalidated++
}

func newTestService(db *gorm.DB) (*activityService, *sink) {
	activities := activityRepo.NewActivityRepository(db)
	profiles := profileRepo.NewProfileRepository(db)
	houses := houseRepo.NewHouseRepository(db)
	challenges := challengeRepo.NewChallengeRepository(db)
	evaluator := award.NewEvaluator(awardRepo.NewAwardRepository(db), houses, challenges, profiles, activities)

	out := &sink{}
	svc := NewActivityService(db, activities, profiles, houses, challenges, evaluator, out, out, out, out).(*activityService)
	svc.now = func() time.Time { return fixedNow }
	return svc, out
}

func logActivity(t *testing.T, svc *activityService, userID uuid.UUID, activityType string, minutes int, date string) *activityDto.LogActivityResponse {
	t.Helper()
	res, err := svc.Log(context.Background(), userID, activityDto.LogActivityInput{
		ActivityType:    activityType,
		DurationMinutes: minutes,
		Date:            date,
	})
	require.NoError(t, err)
	return res
}

func accept(t *testing.T, db *gorm.DB, userID uuid.UUID, desc string) {
	t.Helper()
	require.NoError(t, db.Omit("User").Create(&entity.AcceptedChallenge{UserID: userID, ChallengeDescription: desc, XPPoints: 10}).Error)
}

func housePoints(t *testing.T, db *gorm.DB, house *entity.House) int {
	t.Helper()
	var h entity.House
	require.NoError(t, db.First(&h, "id = ?", house.ID).Error)
	return h.Points
}

func TestFirstActivityToday(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Kraken", "Plank for 1 minute")
	user := testutil.CreateUser(t, db, "octo", house)
	svc, out := newTestService(db)

	res := logActivity(t, svc, user.ID, "running", 45, "")
	assert.Equal(t, "2025-06-11", res.Activity.Date)
	assert.Equal(t, 1, res.Streak)
	assert.Equal(t, 4, res.PointsEarned)
	assert.Equal(t, 4, res.HousePoints)
	assert.Equal(t, int64(1), res.WorkoutsThisWeek)
	assert.Empty(t, res.CompletedChallenges)
	assert.Empty(t, res.NewBadges)
	assert.Equal(t, "Activity logged! You earned 4 house points.", res.Message)

	var profile entity.Profile
	require.NoError(t, db.First(&profile, "user_id = ?", user.ID).Error)
	assert.Equal(t, 1, profile.StreakCount)
	require.NotNil(t, profile.FirstActivityLoggedAt)

	assert.Equal(t, []string{entity.FeedActionLoggedActivity}, out.feedActions)
	assert.Equal(t, []string{EventActivityLog}, out.coachEvents)
	assert.Equal(t, 1, out.invalidated)
}

func TestHousePointsAreMonotonic(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Montana")
	user := testutil.CreateUser(t, db, "hiker", house)
	svc, out := newTestService(db)

	before := 0
	for _, minutes := range []int{9, 10, 25, 1, 61} {
		logActivity(t, svc, user.ID, "hike", minutes, "")
		after := housePoints(t, db, house)
		assert.Equal(t, before+minutes/10, after, minutes)
		before = after
	}
	assert.Equal(t, 3, out.invalidated, "sub-10 minute sessions leave the standings alone")
}

func TestSameDayActivitiesCountOnce(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "twice", testutil.CreateHouse(t, db, "Razor"))
	svc, _ := newTestService(db)

	logActivity(t, svc, user.ID, "run", 20, "2025-06-10")
	res := logActivity(t, svc, user.ID, "yoga", 20, "2025-06-10")
	assert.Equal(t, 1, res.Streak)

	res = logActivity(t, svc, user.ID, "run", 20, "2025-06-11")
	assert.Equal(t, 2, res.Streak)

	// Backfilling an old day past a gap leaves the current run alone.
	res = logActivity(t, svc, user.ID, "run", 20, "2025-06-01")
	assert.Equal(t, 2, res.Streak)
}

func TestMatchingCompletesOpenAcceptanceOnce(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Kraken", "Plank for 1 minute", "Swim 20 laps")
	user := testutil.CreateUser(t, db, "octo", house)
	accept(t, db, user.ID, "Plank for 1 minute")
	svc, out := newTestService(db)

	res := logActivity(t, svc, user.ID, "Plank", 10, "")
	assert.Equal(t, []string{"Plank for 1 minute"}, res.CompletedChallenges)

	var ac entity.AcceptedChallenge
	require.NoError(t, db.First(&ac, "user_id = ? AND challenge_description = ?", user.ID, "Plank for 1 minute").Error)
	require.NotNil(t, ac.CompletedAt)
	assert.Contains(t, out.kinds, entity.NotificationChallengeComplete)
	assert.Contains(t, out.feedActions, entity.FeedActionCompleted)

	res = logActivity(t, svc, user.ID, "plank", 10, "")
	assert.Empty(t, res.CompletedChallenges)

	var rows int64
	require.NoError(t, db.Model(&entity.AcceptedChallenge{}).Where("user_id = ?", user.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestCanonicalTagNeedsOpenAcceptance(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Serene")
	require.NoError(t, db.Create(&entity.HouseChallenge{
		HouseID:           house.ID,
		Description:       "Swim 10 laps",
		XP:                10,
		CanonicalActivity: testutil.Ptr("swim"),
	}).Error)
	user := testutil.CreateUser(t, db, "fish", house)
	svc, _ := newTestService(db)

	res := logActivity(t, svc, user.ID, "swim", 30, "")
	assert.Empty(t, res.CompletedChallenges, "no acceptance, nothing to complete")

	accept(t, db, user.ID, "Swim 10 laps")

	res = logActivity(t, svc, user.ID, "swim laps", 30, "")
	assert.Empty(t, res.CompletedChallenges, "canonical tags need exact equality")

	res = logActivity(t, svc, user.ID, " SWIM ", 30, "")
	assert.Equal(t, []string{"Swim 10 laps"}, res.CompletedChallenges)
}

func TestThirdCompletionGrantsBadgeOnce(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Razor", "Jump rope", "Push-ups", "Burpees")
	require.NoError(t, db.Create(&entity.HouseBadge{HouseID: house.ID, Name: "Complete 3 challenges", Emoji: "🏅"}).Error)
	user := testutil.CreateUser(t, db, "blade", house)
	for _, d := range []string{"Jump rope", "Push-ups", "Burpees"} {
		accept(t, db, user.ID, d)
	}
	svc, out := newTestService(db)

	res := logActivity(t, svc, user.ID, "jump rope", 10, "")
	assert.Empty(t, res.NewBadges)
	res = logActivity(t, svc, user.ID, "push-ups", 10, "")
	assert.Empty(t, res.NewBadges)

	res = logActivity(t, svc, user.ID, "burpees", 10, "")
	require.Len(t, res.NewBadges, 1)
	assert.Equal(t, "Complete 3 challenges", res.NewBadges[0].Name)
	assert.Contains(t, out.kinds, entity.NotificationBadge)

	res = logActivity(t, svc, user.ID, "burpees", 10, "")
	assert.Empty(t, res.NewBadges)

	var grants int64
	require.NoError(t, db.Model(&entity.UserBadge{}).Where("user_id = ?", user.ID).Count(&grants).Error)
	assert.Equal(t, int64(1), grants)
}

func TestPointRewardSeesNewTotal(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Montana")
	require.NoError(t, db.Create(&entity.Reward{Name: "First Steps", UnlockPoints: 5}).Error)
	user := testutil.CreateUser(t, db, "climber", house)
	svc, out := newTestService(db)

	res := logActivity(t, svc, user.ID, "climb", 60, "")
	require.Len(t, res.NewRewards, 1)
	assert.Equal(t, "First Steps", res.NewRewards[0].Name)
	assert.Contains(t, out.kinds, entity.NotificationReward)
}

func TestStreakMilestoneAnnouncedOnce(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "steady", testutil.CreateHouse(t, db, "Kraken"))
	svc, out := newTestService(db)

	logActivity(t, svc, user.ID, "run", 20, "2025-06-09")
	logActivity(t, svc, user.ID, "run", 20, "2025-06-10")
	res := logActivity(t, svc, user.ID, "run", 20, "2025-06-11")
	assert.Equal(t, 3, res.Streak)
	assert.Equal(t, 3, res.Milestone)
	assert.Equal(t, EventMilestone, out.coachEvents[len(out.coachEvents)-1])

	res = logActivity(t, svc, user.ID, "yoga", 20, "2025-06-11")
	assert.Zero(t, res.Milestone)
	assert.Equal(t, EventActivityLog, out.coachEvents[len(out.coachEvents)-1])
}

func TestLogClosesMatchingRecommendations(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "listener", nil)
	rec := &entity.RecommendationLog{UserID: user.ID, RecommendationType: "balance", SuggestedActivity: "yoga", Message: "Try yoga"}
	require.NoError(t, db.Create(rec).Error)
	svc, _ := newTestService(db)

	res := logActivity(t, svc, user.ID, "Yoga", 30, "")
	assert.Zero(t, res.PointsEarned, "no house, no points")
	assert.Equal(t, "Activity logged! Join a house to start earning points.", res.Message)

	require.NoError(t, db.First(rec, "id = ?", rec.ID).Error)
	assert.True(t, rec.IsCompleted)
	assert.NotNil(t, rec.CompletedAt)
}

func TestLogRejectsBadInput(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "early", nil)
	svc, _ := newTestService(db)
	ctx := context.Background()

	_, err := svc.Log(ctx, user.ID, activityDto.LogActivityInput{ActivityType: "run", DurationMinutes: 10, Date: "2025-06-12"})
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))

	_, err = svc.Log(ctx, testutil.NewID(), activityDto.LogActivityInput{ActivityType: "run", DurationMinutes: 10})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	for _, minutes := range []int{0, -5} {
		_, err = svc.Log(ctx, user.ID, activityDto.LogActivityInput{ActivityType: "run", DurationMinutes: minutes})
		assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err), "duration %d", minutes)
	}

	_, err = svc.Log(ctx, user.ID, activityDto.LogActivityInput{ActivityType: "   ", DurationMinutes: 10})
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))

	var count int64
	require.NoError(t, db.Model(&entity.FitnessActivity{}).Count(&count).Error)
	assert.Zero(t, count, "a failed submission leaves no ledger entry")
}

func TestListIsNewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "logger", nil)
	svc, _ := newTestService(db)

	logActivity(t, svc, user.ID, "run", 10, "2025-06-01")
	logActivity(t, svc, user.ID, "swim", 10, "2025-06-03")
	logActivity(t, svc, user.ID, "bike", 10, "2025-06-02")

	page, err := svc.List(context.Background(), user.ID, commonDto.PageQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "swim", page.Data[0].ActivityType)
	assert.Equal(t, "bike", page.Data[1].ActivityType)
	assert.Equal(t, int64(3), page.Meta.TotalItems)
	assert.Equal(t, 2, page.Meta.TotalPages)
}
