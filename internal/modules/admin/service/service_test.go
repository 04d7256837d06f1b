package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/agent"
	"octofit.app/tracker/internal/entity"
	"octofit.app/tracker/internal/gamification"
	adminDto "octofit.app/tracker/internal/modules/admin/dto"
	awardRepo "octofit.app/tracker/internal/modules/award/repository"
	challengeRepo "octofit.app/tracker/internal/modules/challenge/repository"
	houseRepo "octofit.app/tracker/internal/modules/house/repository"
	search "octofit.app/tracker/internal/modules/search/service"
	"octofit.app/tracker/internal/testutil"
	"octofit.app/tracker/pkg/apperror"
)

type recordedNotifier struct {
	messages []string
}

func (n *recordedNotifier) Notify(_ context.Context, _ uuid.UUID, _, message string) {
	n.messages = append(n.messages, message)
}

type stubRunner struct {
	ran []string
}

func (r *stubRunner) RunAgentByName(_ context.Context, name string) error {
	if name != "reminder_agent" {
		return agent.ErrAgentNotFound
	}
	r.ran = append(r.ran, name)
	return nil
}

func newTestService(db *gorm.DB) (AdminService, *recordedNotifier, *stubRunner) {
	notifier := &recordedNotifier{}
	runner := &stubRunner{}
	svc := NewAdminService(db,
		houseRepo.NewHouseRepository(db),
		challengeRepo.NewChallengeRepository(db),
		awardRepo.NewAwardRepository(db),
		search.NewSearchService(nil),
		notifier,
		runner,
	)
	return svc, notifier, runner
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Code
}

func TestCreateAndDeleteChallenge(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Kraken", "Swim 20 laps")
	svc, _, _ := newTestService(db)
	ctx := context.Background()

	res, err := svc.CreateChallenge(ctx, house.ID, adminDto.CreateChallengeInput{
		Description:       " Row 5k ",
		CanonicalActivity: testutil.Ptr("Rowing"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Row 5k", res.Description)
	assert.Equal(t, 10, res.XP)
	require.NotNil(t, res.CanonicalActivity)
	assert.Equal(t, "rowing", *res.CanonicalActivity)

	_, err = svc.CreateChallenge(ctx, house.ID, adminDto.CreateChallengeInput{Description: "swim 20 LAPS"})
	assert.Equal(t, http.StatusConflict, statusOf(t, err))

	_, err = svc.CreateChallenge(ctx, uuid.New(), adminDto.CreateChallengeInput{Description: "x"})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	require.NoError(t, svc.DeleteChallenge(ctx, res.ID))
	assert.Equal(t, http.StatusNotFound, statusOf(t, svc.DeleteChallenge(ctx, res.ID)))
}

func TestCreateBadgeDerivesRuleFromName(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Montana")
	svc, _, _ := newTestService(db)
	ctx := context.Background()

	res, err := svc.CreateBadge(ctx, house.ID, adminDto.CreateBadgeInput{Name: "7-day streak", Emoji: "🔥"})
	require.NoError(t, err)
	assert.Equal(t, string(gamification.RuleStreakDays), res.RuleKind)
	assert.Equal(t, 7, res.RuleThreshold)

	res, err = svc.CreateBadge(ctx, house.ID, adminDto.CreateBadgeInput{
		Name:          "Hiker",
		RuleKind:      string(gamification.RuleActivityKeywordCount),
		RuleThreshold: 5,
		RuleKeywords:  []string{" Hike", "TREK"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"hike", "trek"}, res.RuleKeywords)

	var stored entity.HouseBadge
	require.NoError(t, db.First(&stored, "id = ?", res.ID).Error)
	assert.Equal(t, "hike,trek", stored.RuleKeywords)
	assert.Equal(t, gamification.RuleActivityKeywordCount, stored.Rule().Kind)

	_, err = svc.CreateBadge(ctx, house.ID, adminDto.CreateBadgeInput{
		Name:     "Broken",
		RuleKind: string(gamification.RuleChallengeCount),
	})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestCreateReward(t *testing.T) {
	db := testutil.NewDB(t)
	svc, _, _ := newTestService(db)
	ctx := context.Background()

	_, err := svc.CreateReward(ctx, adminDto.CreateRewardInput{Name: "Nothing"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	res, err := svc.CreateReward(ctx, adminDto.CreateRewardInput{Name: "Gold Star", UnlockPoints: 100})
	require.NoError(t, err)
	assert.Equal(t, 100, res.UnlockPoints)

	_, err = svc.CreateReward(ctx, adminDto.CreateRewardInput{Name: "gold star", UnlockStreak: 3})
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

func TestReviewSuggestion(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Razor")
	user := testutil.CreateUser(t, db, "ideas", house)
	svc, notifier, _ := newTestService(db)
	ctx := context.Background()

	approve := &entity.ChallengeSuggestion{UserID: user.ID, HouseID: house.ID, Description: "Plank for 2 minutes"}
	reject := &entity.ChallengeSuggestion{UserID: user.ID, HouseID: house.ID, Description: "Eat cake"}
	require.NoError(t, db.Omit("User", "House").Create(approve).Error)
	require.NoError(t, db.Omit("User", "House").Create(reject).Error)

	pending, err := svc.ListSuggestions(ctx, true)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "ideas", pending[0].Username)
	assert.Equal(t, "Razor", pending[0].HouseName)

	res, err := svc.ReviewSuggestion(ctx, approve.ID, adminDto.ReviewSuggestionInput{Approved: testutil.Ptr(true)})
	require.NoError(t, err)
	require.NotNil(t, res.Challenge)
	assert.Equal(t, "Plank for 2 minutes", res.Challenge.Description)

	_, err = svc.ReviewSuggestion(ctx, approve.ID, adminDto.ReviewSuggestionInput{Approved: testutil.Ptr(true)})
	assert.Equal(t, http.StatusConflict, statusOf(t, err))

	res, err = svc.ReviewSuggestion(ctx, reject.ID, adminDto.ReviewSuggestionInput{Approved: testutil.Ptr(false)})
	require.NoError(t, err)
	assert.Nil(t, res.Challenge)

	var count int64
	require.NoError(t, db.Model(&entity.HouseChallenge{}).Where("house_id = ?", house.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.Len(t, notifier.messages, 2)

	pending, err = svc.ListSuggestions(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = svc.ReviewSuggestion(ctx, uuid.New(), adminDto.ReviewSuggestionInput{Approved: testutil.Ptr(true)})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestRunAgent(t *testing.T) {
	db := testutil.NewDB(t)
	svc, _, runner := newTestService(db)
	ctx := context.Background()

	require.NoError(t, svc.RunAgent(ctx, "reminder_agent"))
	assert.Equal(t, []string{"reminder_agent"}, runner.ran)
	assert.Equal(t, http.StatusNotFound, statusOf(t, svc.RunAgent(ctx, "nope")))
}
