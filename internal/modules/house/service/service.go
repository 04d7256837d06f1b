package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
	award "octofit.app/tracker/internal/modules/award/service"
	challenge "octofit.app/tracker/internal/modules/challenge/service"
	houseDto "octofit.app/tracker/internal/modules/house/dto"
	houseRepo "octofit.app/tracker/internal/modules/house/repository"
	leaderboard "octofit.app/tracker/internal/modules/leaderboard/service"
	profileRepo "octofit.app/tracker/internal/modules/profile/repository"
	stat "octofit.app/tracker/internal/modules/stat/service"
	"octofit.app/tracker/pkg/apperror"
	"octofit.app/tracker/pkg/logger"
)

const (
	MemberLimit      = 10
	EventHouseSwitch = "house_switch"
)

// CoachEvents lets the coach react to things that happened elsewhere.
type CoachEvents interface {
	Event(ctx context.Context, userID uuid.UUID, event string)
}

type HouseService interface {
	List(ctx context.Context) ([]houseDto.HouseResponse, error)
	Detail(ctx context.Context, userID uuid.UUID, name string) (*houseDto.HouseDetailResponse, error)
	Join(ctx context.Context, userID uuid.UUID, input houseDto.JoinHouseInput) (*houseDto.JoinHouseResponse, error)
}

type houseService struct {
	houses      houseRepo.HouseRepository
	profiles    profileRepo.ProfileRepository
	challenges  challenge.ChallengeService
	awards      award.AwardService
	leaderboard leaderboard.LeaderboardService
	stats       stat.StatService
	feed        award.FeedRecorder
	coach       CoachEvents
	pick        func(n int) int
	now         func() time.Time
}

func NewHouseService(
	houses houseRepo.HouseRepository,
	profiles profileRepo.ProfileRepository,
	challenges challenge.ChallengeService,
	awards award.AwardService,
	leaderboardService leaderboard.LeaderboardService,
	stats stat.StatService,
	feed award.FeedRecorder,
	coach CoachEvents,
) HouseService {
	return &houseService{
		houses:      houses,
		profiles:    profiles,
		challenges:  challenges,
		awards:      awards,
		leaderboard: leaderboardService,
		stats:       stats,
		feed:        feed,
		coach:       coach,
		pick:        rand.IntN,
		now:         time.Now,
	}
}

func (s *houseService) List(ctx context.Context) ([]houseDto.HouseResponse, error) {
	houses, err := s.houses.List(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]houseDto.HouseResponse, 0, len(houses))
	for _, h := range houses {
		res = append(res, toHouseResponse(&h))
	}
	return res, nil
}

func (s *houseService) Detail(ctx context.Context, userID uuid.UUID, name string) (*houseDto.HouseDetailResponse, error) {
	house, err := s.houses.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("house not found")
		}
		return nil, err
	}

	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("profile not found")
		}
		return nil, err
	}

	progress, err := s.challenges.Progress(ctx, userID, house.ID)
	if err != nil {
		return nil, err
	}

	badgeRows, err := s.houses.ListBadges(ctx, house.ID)
	if err != nil {
		return nil, err
	}
	badges, err := s.awards.HouseBadges(ctx, userID, badgeRows)
	if err != nil {
		return nil, err
	}

	rewards, err := s.awards.Rewards(ctx, userID)
	if err != nil {
		return nil, err
	}

	members, err := s.leaderboard.GetHouseMembers(ctx, house.ID, MemberLimit)
	if err != nil {
		return nil, err
	}

	suggested, err := s.houses.ListActivities(ctx, house.ID)
	if err != nil {
		return nil, err
	}
	activities := make([]string, 0, len(suggested))
	for _, a := range suggested {
		activities = append(activities, a.Description)
	}

	userProgress, err := s.stats.Progress(ctx, userID)
	if err != nil {
		return nil, err
	}

	confetti, err := showConfetti(house.Points, func() (bool, error) {
		return s.houses.MarkConfettiShown(ctx, house.ID)
	})
	if err != nil {
		logger.L().Warn("confetti flag update failed", zap.String("house_id", house.ID.String()), zap.Error(err))
	}

	return &houseDto.HouseDetailResponse{
		House:        toHouseResponse(house),
		IsMember:     profile.HouseID != nil && *profile.HouseID == house.ID,
		Challenges:   *progress,
		Badges:       badges,
		Rewards:      rewards,
		Members:      members,
		Activities:   activities,
		Quote:        quotes[s.pick(len(quotes))],
		ShowConfetti: confetti,
		Progress:     *userProgress,
	}, nil
}

func (s *houseService) Join(ctx context.Context, userID uuid.UUID, input houseDto.JoinHouseInput) (*houseDto.JoinHouseResponse, error) {
	house, err := s.houses.FindByID(ctx, input.HouseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("house not found")
		}
		return nil, err
	}

	if err := s.profiles.Update(ctx, userID, map[string]any{
		"house_id":        house.ID,
		"house_joined_at": s.now(),
	}); err != nil {
		return nil, fmt.Errorf("join house: %w", err)
	}

	if s.feed != nil {
		s.feed.Record(ctx, userID, &house.ID, entity.FeedActionJoinedHouse, "joined House "+house.Name)
	}
	if s.coach != nil {
		s.coach.Event(ctx, userID, EventHouseSwitch)
	}

	return &houseDto.JoinHouseResponse{
		Message: fmt.Sprintf("Welcome to House %s!", house.Name),
		House:   toHouseResponse(house),
	}, nil
}

func toHouseResponse(h *entity.House) houseDto.HouseResponse {
	return houseDto.HouseResponse{
		ID:          h.ID,
		Name:        h.Name,
		Mascot:      h.Mascot,
		Color:       h.Color,
		Theme:       h.Theme,
		Description: h.Description,
		Points:      h.Points,
	}
}
