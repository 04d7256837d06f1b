package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/gamification"
	activityRepo "octofit.app/tracker/internal/modules/activity/repository"
	profileRepo "octofit.app/tracker/internal/modules/profile/repository"
	statDto "octofit.app/tracker/internal/modules/stat/dto"
	userRepo "octofit.app/tracker/internal/modules/user/repository"
	"octofit.app/tracker/pkg/apperror"
)

const (
	AnalyticsDays = 14
	dateLayout    = "2006-01-02"
)

type StatService interface {
	GetTotalUsers(ctx context.Context) (int64, error)
	Progress(ctx context.Context, userID uuid.UUID) (*statDto.ProgressResponse, error)
	Analytics(ctx context.Context, userID uuid.UUID) (*statDto.AnalyticsResponse, error)
}

type statService struct {
	users      userRepo.UserRepository
	profiles   profileRepo.ProfileRepository
	activities activityRepo.ActivityRepository
	now        func() time.Time
}

func NewStatService(users userRepo.UserRepository, profiles profileRepo.ProfileRepository, activities activityRepo.ActivityRepository) StatService {
	return &statService{
		users:      users,
		profiles:   profiles,
		activities: activities,
		now:        time.Now,
	}
}

func (s *statService) GetTotalUsers(ctx context.Context) (int64, error) {
	return s.users.Count(ctx)
}

func (s *statService) Progress(ctx context.Context, userID uuid.UUID) (*statDto.ProgressResponse, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("profile not found")
		}
		return nil, err
	}

	workouts, err := s.activities.CountSince(ctx, userID, gamification.StartOfWeek(s.now()))
	if err != nil {
		return nil, err
	}

	points := 0
	if profile.House != nil {
		points = profile.House.Points
	}

	return &statDto.ProgressResponse{
		WorkoutsThisWeek: workouts,
		Streak:           profile.StreakCount,
		HousePoints:      points,
		WorkoutPercent:   gamification.Percent(int(workouts), gamification.WeeklyWorkoutGoal),
		StreakPercent:    gamification.Percent(profile.StreakCount, gamification.StreakGoal),
		PointsPercent:    gamification.Percent(points, gamification.HousePointsGoal),
	}, nil
}

func (s *statService) Analytics(ctx context.Context, userID uuid.UUID) (*statDto.AnalyticsResponse, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("profile not found")
		}
		return nil, err
	}

	today := gamification.Day(s.now())
	from := today.AddDate(0, 0, -(AnalyticsDays - 1))

	own, err := s.activities.DatesBetween(ctx, userID, from, today)
	if err != nil {
		return nil, err
	}
	var house []time.Time
	if profile.HouseID != nil {
		if house, err = s.activities.HouseDatesBetween(ctx, *profile.HouseID, from, today); err != nil {
			return nil, err
		}
	}

	res := &statDto.AnalyticsResponse{
		Dates:               make([]string, AnalyticsDays),
		ActivityCounts:      bucketByDay(own, from),
		HouseActivityCounts: bucketByDay(house, from),
		Streak:              profile.StreakCount,
	}
	for i := range res.Dates {
		res.Dates[i] = from.AddDate(0, 0, i).Format(dateLayout)
	}
	return res, nil
}

// bucketByDay counts dates per day of the window starting at from.
func bucketByDay(dates []time.Time, from time.Time) []int {
	counts := make([]int, AnalyticsDays)
	for _, d := range dates {
		i := int(gamification.Day(d).Sub(from).Hours() / 24)
		if i >= 0 && i < AnalyticsDays {
			counts[i]++
		}
	}
	return counts
}
