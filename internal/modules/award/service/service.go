package service

import (
	"context"

	"github.com/google/uuid"
	"octofit.app/tracker/internal/entity"
	awardDto "octofit.app/tracker/internal/modules/award/dto"
	awardRepo "octofit.app/tracker/internal/modules/award/repository"
)

type AwardService interface {
	EarnedBadges(ctx context.Context, userID uuid.UUID) ([]awardDto.BadgeResponse, error)
	// HouseBadges lists the badges of a house with the user's earned flags.
	HouseBadges(ctx context.Context, userID uuid.UUID, badges []entity.HouseBadge) ([]awardDto.BadgeResponse, error)
	Rewards(ctx context.Context, userID uuid.UUID) ([]awardDto.RewardResponse, error)
}

type awardService struct {
	repo awardRepo.AwardRepository
}

func NewAwardService(repo awardRepo.AwardRepository) AwardService {
	return &awardService{repo: repo}
}

func (s *awardService) EarnedBadges(ctx context.Context, userID uuid.UUID) ([]awardDto.BadgeResponse, error) {
	earned, err := s.repo.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := make([]awardDto.BadgeResponse, 0, len(earned))
	for _, ub := range earned {
		earnedAt := ub.EarnedAt
		res = append(res, awardDto.BadgeResponse{
			ID:       ub.BadgeID,
			Name:     ub.Badge.Name,
			Emoji:    ub.Badge.Emoji,
			Desc:     ub.Badge.Desc,
			Earned:   true,
			EarnedAt: &earnedAt,
		})
	}
	return res, nil
}

func (s *awardService) HouseBadges(ctx context.Context, userID uuid.UUID, badges []entity.HouseBadge) ([]awardDto.BadgeResponse, error) {
	earned, err := s.repo.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	earnedAt := make(map[uuid.UUID]entity.UserBadge, len(earned))
	for _, ub := range earned {
		earnedAt[ub.BadgeID] = ub
	}

	res := make([]awardDto.BadgeResponse, 0, len(badges))
	for _, b := range badges {
		item := awardDto.BadgeResponse{ID: b.ID, Name: b.Name, Emoji: b.Emoji, Desc: b.Desc}
		if ub, ok := earnedAt[b.ID]; ok {
			t := ub.EarnedAt
			item.Earned = true
			item.EarnedAt = &t
		}
		res = append(res, item)
	}
	return res, nil
}

func (s *awardService) Rewards(ctx context.Context, userID uuid.UUID) ([]awardDto.RewardResponse, error) {
	rewards, err := s.repo.ListRewards(ctx)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.repo.UnlockedRewardIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := make([]awardDto.RewardResponse, 0, len(rewards))
	for _, rw := range rewards {
		res = append(res, awardDto.RewardResponse{
			ID:               rw.ID,
			Name:             rw.Name,
			Description:      rw.Description,
			Icon:             rw.Icon,
			UnlockPoints:     rw.UnlockPoints,
			UnlockStreak:     rw.UnlockStreak,
			UnlockChallenges: rw.UnlockChallenges,
			Unlocked:         unlocked[rw.ID],
		})
	}
	return res, nil
}
