package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	leaderboardDto "octofit.app/tracker/internal/modules/leaderboard/dto"
	leaderboardRepo "octofit.app/tracker/internal/modules/leaderboard/repository"
	"octofit.app/tracker/pkg/cache"
)

const (
	CacheKey   = "leaderboard:houses"
	DefaultTTL = 30 * time.Second

	DefaultMemberLimit = 10
	MaxMemberLimit     = 50
)

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context) (*leaderboardDto.LeaderboardResponse, error)
	GetHouseMembers(ctx context.Context, houseID uuid.UUID, limit int) ([]leaderboardDto.MemberStanding, error)
	// Invalidate drops the cached standings after house points change.
	Invalidate(ctx context.Context)
}

type leaderboardService struct {
	repo  leaderboardRepo.LeaderboardRepository
	cache *cache.Cache
	ttl   time.Duration
}

func NewLeaderboardService(repo leaderboardRepo.LeaderboardRepository, c *cache.Cache, ttl time.Duration) LeaderboardService {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &leaderboardService{
		repo:  repo,
		cache: c,
		ttl:   ttl,
	}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context) (*leaderboardDto.LeaderboardResponse, error) {
	var cached leaderboardDto.LeaderboardResponse
	if s.cache.GetJSON(ctx, CacheKey, &cached) {
		return &cached, nil
	}

	houses, err := s.repo.HousesByPoints(ctx)
	if err != nil {
		return nil, err
	}

	standings := make([]leaderboardDto.HouseStanding, 0, len(houses))
	for _, h := range houses {
		standings = append(standings, leaderboardDto.HouseStanding{
			ID:     h.ID,
			Name:   h.Name,
			Mascot: h.Mascot,
			Color:  h.Color,
			Points: h.Points,
		})
	}
	rankHouses(standings)

	res := &leaderboardDto.LeaderboardResponse{
		Houses:     standings,
		Prediction: Predict(standings),
	}
	s.cache.SetJSON(ctx, CacheKey, res, s.ttl)
	return res, nil
}

func (s *leaderboardService) GetHouseMembers(ctx context.Context, houseID uuid.UUID, limit int) ([]leaderboardDto.MemberStanding, error) {
	if limit < 1 {
		limit = DefaultMemberLimit
	}
	if limit > MaxMemberLimit {
		limit = MaxMemberLimit
	}

	rows, err := s.repo.MembersByActivity(ctx, houseID, limit)
	if err != nil {
		return nil, err
	}

	members := make([]leaderboardDto.MemberStanding, 0, len(rows))
	for i, row := range rows {
		members = append(members, leaderboardDto.MemberStanding{
			UserID:        row.UserID,
			Username:      row.Username,
			Avatar:        row.Avatar,
			ActivityCount: row.ActivityCount,
			Streak:        row.StreakCount,
			Position:      i + 1,
		})
	}
	return members, nil
}

func (s *leaderboardService) Invalidate(ctx context.Context) {
	s.cache.Delete(ctx, CacheKey)
}
