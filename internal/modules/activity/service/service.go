package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
	"octofit.app/tracker/internal/gamification"
	activityDto "octofit.app/tracker/internal/modules/activity/dto"
	activityRepo "octofit.app/tracker/internal/modules/activity/repository"
	award "octofit.app/tracker/internal/modules/award/service"
	challengeRepo "octofit.app/tracker/internal/modules/challenge/repository"
	houseRepo "octofit.app/tracker/internal/modules/house/repository"
	profileRepo "octofit.app/tracker/internal/modules/profile/repository"
	"octofit.app/tracker/pkg/apperror"
	commonDto "octofit.app/tracker/pkg/dto"
	"octofit.app/tracker/pkg/logger"
)

const (
	dateLayout = "2006-01-02"

	DefaultPageSize = 20
	MaxPageSize     = 100

	EventActivityLog = "activity_log"
	EventMilestone   = "milestone"
)

// CoachEvents lets the coach react to things that happened elsewhere.
type CoachEvents interface {
	Event(ctx context.Context, userID uuid.UUID, event string)
}

// Invalidator drops cached standings after house points change.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

type ActivityService interface {
	Log(ctx context.Context, userID uuid.UUID, input activityDto.LogActivityInput) (*activityDto.LogActivityResponse, error)
	List(ctx context.Context, userID uuid.UUID, q commonDto.PageQuery) (*activityDto.PaginatedActivityResponse, error)
}

type activityService struct {
	db          *gorm.DB
	activities  activityRepo.ActivityRepository
	profiles    profileRepo.ProfileRepository
	houses      houseRepo.HouseRepository
	challenges  challengeRepo.ChallengeRepository
	evaluator   award.Evaluator
	notifier    award.Notifier
	feed        award.FeedRecorder
	coach       CoachEvents
	leaderboard Invalidator
	now         func() time.Time
}

func NewActivityService(
	db *gorm.DB,
	activities activityRepo.ActivityRepository,
	profiles profileRepo.ProfileRepository,
	houses houseRepo.HouseRepository,
	challenges challengeRepo.ChallengeRepository,
	evaluator award.Evaluator,
	notifier award.Notifier,
	feed award.FeedRecorder,
	coach CoachEvents,
	leaderboard Invalidator,
) ActivityService {
	return &activityService{
		db:          db,
		activities:  activities,
		profiles:    profiles,
		houses:      houses,
		challenges:  challenges,
		evaluator:   evaluator,
		notifier:    notifier,
		feed:        feed,
		coach:       coach,
		leaderboard: leaderboard,
		now:         time.Now,
	}
}

func (s *activityService) Log(ctx context.Context, userID uuid.UUID, input activityDto.LogActivityInput) (*activityDto.LogActivityResponse, error) {
	activityType := strings.TrimSpace(input.ActivityType)
	if activityType == "" {
		return nil, apperror.BadRequest("activity type is required")
	}
	if input.DurationMinutes <= 0 {
		return nil, apperror.BadRequest("duration must be greater than 0")
	}

	now := s.now()
	day, err := s.activityDate(input.Date, now)
	if err != nil {
		return nil, err
	}

	sub := &submission{
		userID: userID,
		now:    now,
		activity: &entity.FitnessActivity{
			UserID:          userID,
			ActivityType:    activityType,
			DurationMinutes: input.DurationMinutes,
			Date:            day,
		},
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return runSteps(ctx, stores{
			activities: s.activities.WithTx(tx),
			profiles:   s.profiles.WithTx(tx),
			houses:     s.houses.WithTx(tx),
			challenges: s.challenges.WithTx(tx),
			evaluator:  s.evaluator.WithTx(tx),
		}, sub)
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, sub)

	workouts, err := s.activities.CountSince(ctx, userID, gamification.StartOfWeek(now))
	if err != nil {
		logger.L().Warn("count weekly workouts failed", zap.String("user_id", userID.String()), zap.Error(err))
	}

	completed := sub.completed
	if completed == nil {
		completed = []string{}
	}

	return &activityDto.LogActivityResponse{
		Message:             logMessage(sub),
		Activity:            toActivityResponse(sub.activity),
		PointsEarned:        sub.points,
		Streak:              sub.streak,
		Milestone:           sub.milestone,
		HousePoints:         sub.housePoints,
		WorkoutsThisWeek:    workouts,
		CompletedChallenges: completed,
		NewBadges:           sub.evaluation.BadgeResponses(),
		NewRewards:          sub.evaluation.RewardResponses(),
	}, nil
}

func (s *activityService) activityDate(raw string, now time.Time) (time.Time, error) {
	today := gamification.Day(now)
	if strings.TrimSpace(raw) == "" {
		return today, nil
	}
	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, apperror.BadRequest("date must be YYYY-MM-DD")
	}
	if day.After(today) {
		return time.Time{}, apperror.BadRequest("date cannot be in the future")
	}
	return day, nil
}

// announce runs after commit. Nothing here may fail the submission.
func (s *activityService) announce(ctx context.Context, sub *submission) {
	houseID := sub.profile.HouseID
	act := sub.activity

	if s.feed != nil {
		s.feed.Record(ctx, sub.userID, houseID, entity.FeedActionLoggedActivity,
			fmt.Sprintf("logged %d minutes of %s", act.DurationMinutes, act.ActivityType))
	}

	for _, desc := range sub.completed {
		if s.notifier != nil {
			s.notifier.Notify(ctx, sub.userID, entity.NotificationChallengeComplete, "Challenge complete: "+desc)
		}
		if s.feed != nil {
			s.feed.Record(ctx, sub.userID, houseID, entity.FeedActionCompleted, "completed "+desc)
		}
	}

	award.Announce(ctx, s.notifier, s.feed, sub.userID, houseID, sub.evaluation)

	if sub.milestone > 0 && s.notifier != nil {
		s.notifier.Notify(ctx, sub.userID, entity.NotificationInfo, fmt.Sprintf("🔥 %d-day streak! Keep it going!", sub.milestone))
	}

	if s.coach != nil {
		event := EventActivityLog
		if sub.milestone > 0 {
			event = EventMilestone
		}
		s.coach.Event(ctx, sub.userID, event)
	}

	if sub.points > 0 && s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx)
	}
}

func logMessage(sub *submission) string {
	if sub.profile.HouseID == nil {
		return "Activity logged! Join a house to start earning points."
	}
	return fmt.Sprintf("Activity logged! You earned %d house points.", sub.points)
}

func (s *activityService) List(ctx context.Context, userID uuid.UUID, q commonDto.PageQuery) (*activityDto.PaginatedActivityResponse, error) {
	q = q.Normalize(DefaultPageSize, MaxPageSize)

	activities, total, err := s.activities.List(ctx, userID, q)
	if err != nil {
		return nil, err
	}

	data := make([]activityDto.ActivityResponse, 0, len(activities))
	for i := range activities {
		data = append(data, toActivityResponse(&activities[i]))
	}

	return &activityDto.PaginatedActivityResponse{
		Data: data,
		Meta: commonDto.NewPaginationMeta(q, total),
	}, nil
}

func toActivityResponse(a *entity.FitnessActivity) activityDto.ActivityResponse {
	return activityDto.ActivityResponse{
		ID:              a.ID,
		ActivityType:    a.ActivityType,
		DurationMinutes: a.DurationMinutes,
		Date:            a.Date.Format(dateLayout),
		CreatedAt:       a.CreatedAt,
	}
}
