package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"octofit.app/tracker/internal/entity"
	awardDto "octofit.app/tracker/internal/modules/award/dto"
)

type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind, message string)
}

type FeedRecorder interface {
	Record(ctx context.Context, userID uuid.UUID, houseID *uuid.UUID, action, description string)
}

// Announce notifies the user of every grant in ev and posts badge grants to
// the house feed. It runs after the granting transaction has committed.
func Announce(ctx context.Context, notifier Notifier, feed FeedRecorder, userID uuid.UUID, houseID *uuid.UUID, ev *Evaluation) {
	if ev == nil {
		return
	}
	for _, b := range ev.Badges {
		if notifier != nil {
			notifier.Notify(ctx, userID, entity.NotificationBadge, fmt.Sprintf("You earned the %s %s badge!", b.Emoji, b.Name))
		}
		if feed != nil {
			feed.Record(ctx, userID, houseID, entity.FeedActionEarnedBadge, "earned the "+b.Name+" badge")
		}
	}
	for _, rw := range ev.Rewards {
		if notifier != nil {
			notifier.Notify(ctx, userID, entity.NotificationReward, fmt.Sprintf("Reward unlocked: %s", rw.Name))
		}
		if feed != nil {
			feed.Record(ctx, userID, houseID, entity.FeedActionUnlockedReward, "unlocked the "+rw.Name+" reward")
		}
	}
}

func (ev *Evaluation) BadgeResponses() []awardDto.BadgeResponse {
	res := make([]awardDto.BadgeResponse, 0)
	if ev == nil {
		return res
	}
	for _, b := range ev.Badges {
		res = append(res, awardDto.BadgeResponse{ID: b.ID, Name: b.Name, Emoji: b.Emoji, Desc: b.Desc, Earned: true})
	}
	return res
}

func (ev *Evaluation) RewardResponses() []awardDto.RewardResponse {
	res := make([]awardDto.RewardResponse, 0)
	if ev == nil {
		return res
	}
	for _, rw := range ev.Rewards {
		res = append(res, awardDto.RewardResponse{
			ID:               rw.ID,
			Name:             rw.Name,
			Description:      rw.Description,
			Icon:             rw.Icon,
			UnlockPoints:     rw.UnlockPoints,
			UnlockStreak:     rw.UnlockStreak,
			UnlockChallenges: rw.UnlockChallenges,
			Unlocked:         true,
		})
	}
	return res
}
