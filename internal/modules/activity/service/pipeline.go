package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
	"octofit.app/tracker/internal/gamification"
	activityRepo "octofit.app/tracker/internal/modules/activity/repository"
	award "octofit.app/tracker/internal/modules/award/service"
	challengeRepo "octofit.app/tracker/internal/modules/challenge/repository"
	houseRepo "octofit.app/tracker/internal/modules/house/repository"
	profileRepo "octofit.app/tracker/internal/modules/profile/repository"
	"octofit.app/tracker/pkg/apperror"
)

// submission is the state threaded through the steps of one logged activity.
type submission struct {
	userID   uuid.UUID
	now      time.Time
	activity *entity.FitnessActivity

	profile     *entity.Profile
	streak      int
	milestone   int
	completed   []string
	points      int
	housePoints int
	evaluation  *award.Evaluation
}

// stores are the repositories bound to the submission transaction.
type stores struct {
	activities activityRepo.ActivityRepository
	profiles   profileRepo.ProfileRepository
	houses     houseRepo.HouseRepository
	challenges challengeRepo.ChallengeRepository
	evaluator  award.Evaluator
}

type step struct {
	name string
	run  func(ctx context.Context, st stores, sub *submission) error
}

// steps run in order inside one transaction. The profile row lock taken
// first serializes concurrent submissions by the same user.
var steps = []step{
	{"lock_profile", lockProfile},
	{"insert_activity", insertActivity},
	{"recompute_streak", recomputeStreak},
	{"match_challenges", matchChallenges},
	{"close_recommendations", closeRecommendations},
	{"add_house_points", addHousePoints},
	{"evaluate_awards", evaluateAwards},
}

func runSteps(ctx context.Context, st stores, sub *submission) error {
	for _, s := range steps {
		if err := s.run(ctx, st, sub); err != nil {
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				return err
			}
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func lockProfile(ctx context.Context, st stores, sub *submission) error {
	profile, err := st.profiles.LockByUserID(ctx, sub.userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("profile not found")
		}
		return err
	}
	sub.profile = profile
	return nil
}

func insertActivity(ctx context.Context, st stores, sub *submission) error {
	return st.activities.Create(ctx, sub.activity)
}

func recomputeStreak(ctx context.Context, st stores, sub *submission) error {
	dates, err := st.activities.Dates(ctx, sub.userID)
	if err != nil {
		return err
	}
	sub.streak = gamification.CalculateStreak(dates)

	var first *time.Time
	if sub.profile.FirstActivityLoggedAt == nil {
		first = &sub.now
	}
	if err := st.profiles.SetStreak(ctx, sub.userID, sub.streak, first); err != nil {
		return err
	}

	// A broken run makes every milestone celebratable again.
	last := sub.profile.LastStreakMilestone
	if sub.streak < last {
		if err := st.profiles.Update(ctx, sub.userID, map[string]any{"last_streak_milestone": 0}); err != nil {
			return err
		}
		last = 0
	}

	m := gamification.MilestoneReached(sub.streak, last)
	if m == 0 {
		return nil
	}
	advanced, err := st.profiles.AdvanceMilestone(ctx, sub.userID, m)
	if err != nil {
		return err
	}
	if advanced {
		sub.milestone = m
	}
	return nil
}

func matchChallenges(ctx context.Context, st stores, sub *submission) error {
	if sub.profile.HouseID == nil {
		return nil
	}
	catalog, err := st.houses.ListChallenges(ctx, *sub.profile.HouseID)
	if err != nil {
		return err
	}

	matchers := make([]gamification.Challenge, 0, len(catalog))
	for _, ch := range catalog {
		matchers = append(matchers, ch.Matcher())
	}

	for _, desc := range gamification.MatchChallenges(sub.activity.ActivityType, matchers) {
		ok, err := st.challenges.CompleteOpen(ctx, sub.userID, desc, sub.now)
		if err != nil {
			return err
		}
		if ok {
			sub.completed = append(sub.completed, desc)
		}
	}
	return nil
}

func closeRecommendations(ctx context.Context, st stores, sub *submission) error {
	_, err := st.activities.CompleteRecommendations(ctx, sub.userID, sub.activity.ActivityType, sub.now)
	return err
}

func addHousePoints(ctx context.Context, st stores, sub *submission) error {
	if sub.profile.HouseID == nil {
		return nil
	}
	sub.points = gamification.PointsForDuration(sub.activity.DurationMinutes)
	houseID := *sub.profile.HouseID
	if err := st.houses.AddPoints(ctx, houseID, sub.points); err != nil {
		return err
	}
	points, err := st.houses.GetPoints(ctx, houseID)
	if err != nil {
		return err
	}
	sub.housePoints = points
	return nil
}

func evaluateAwards(ctx context.Context, st stores, sub *submission) error {
	ev, err := st.evaluator.Evaluate(ctx, sub.userID)
	if err != nil {
		return err
	}
	sub.evaluation = ev
	return nil
}
