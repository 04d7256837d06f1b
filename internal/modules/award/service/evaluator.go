package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
	"octofit.app/tracker/internal/gamification"
	activityRepo "octofit.app/tracker/internal/modules/activity/repository"
	awardRepo "octofit.app/tracker/internal/modules/award/repository"
	challengeRepo "octofit.app/tracker/internal/modules/challenge/repository"
	houseRepo "octofit.app/tracker/internal/modules/house/repository"
	profileRepo "octofit.app/tracker/internal/modules/profile/repository"
)

// Evaluation lists what one evaluator run granted.
type Evaluation struct {
	Snapshot gamification.Snapshot
	Badges   []entity.HouseBadge
	Rewards  []entity.Reward
}

// Evaluator grants every house badge and global reward the user qualifies for.
// Grants are idempotent: a second run over the same state grants nothing.
type Evaluator interface {
	WithTx(tx *gorm.DB) Evaluator
	Evaluate(ctx context.Context, userID uuid.UUID) (*Evaluation, error)
	Snapshot(ctx context.Context, userID uuid.UUID) (gamification.Snapshot, *entity.Profile, error)
}

type evaluator struct {
	awards     awardRepo.AwardRepository
	houses     houseRepo.HouseRepository
	challenges challengeRepo.ChallengeRepository
	profiles   profileRepo.ProfileRepository
	activities activityRepo.ActivityRepository
}

func NewEvaluator(
	awards awardRepo.AwardRepository,
	houses houseRepo.HouseRepository,
	challenges challengeRepo.ChallengeRepository,
	profiles profileRepo.ProfileRepository,
	activities activityRepo.ActivityRepository,
) Evaluator {
	return &evaluator{
		awards:     awards,
		houses:     houses,
		challenges: challenges,
		profiles:   profiles,
		activities: activities,
	}
}

func (e *evaluator) WithTx(tx *gorm.DB) Evaluator {
	return &evaluator{
		awards:     e.awards.WithTx(tx),
		houses:     e.houses.WithTx(tx),
		challenges: e.challenges.WithTx(tx),
		profiles:   e.profiles.WithTx(tx),
		activities: e.activities.WithTx(tx),
	}
}

// Snapshot gathers the counters rules are evaluated against. House-scoped
// fields stay empty for a user without a house.
func (e *evaluator) Snapshot(ctx context.Context, userID uuid.UUID) (gamification.Snapshot, *entity.Profile, error) {
	var snap gamification.Snapshot

	profile, err := e.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return snap, nil, fmt.Errorf("load profile: %w", err)
	}
	snap.Streak = profile.StreakCount

	completed, err := e.challenges.CompletedDescriptions(ctx, userID)
	if err != nil {
		return snap, nil, fmt.Errorf("load completed challenges: %w", err)
	}
	snap.CompletedChallenges = len(completed)
	snap.Completed = make(map[string]bool, len(completed))
	for _, d := range completed {
		snap.Completed[d] = true
	}

	if profile.HouseID != nil {
		points, err := e.houses.GetPoints(ctx, *profile.HouseID)
		if err != nil {
			return snap, nil, fmt.Errorf("load house points: %w", err)
		}
		snap.HousePoints = points

		catalog, err := e.houses.ListChallenges(ctx, *profile.HouseID)
		if err != nil {
			return snap, nil, fmt.Errorf("load house challenges: %w", err)
		}
		for _, ch := range catalog {
			snap.HouseChallenges = append(snap.HouseChallenges, ch.Description)
		}
	}

	return snap, profile, nil
}

func (e *evaluator) Evaluate(ctx context.Context, userID uuid.UUID) (*Evaluation, error) {
	snap, profile, err := e.Snapshot(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Evaluation{}, nil
		}
		return nil, err
	}
	result := &Evaluation{Snapshot: snap}

	if profile.HouseID != nil {
		badges, err := e.evaluateBadges(ctx, userID, *profile.HouseID, &result.Snapshot)
		if err != nil {
			return nil, err
		}
		result.Badges = badges
	}

	rewards, err := e.evaluateRewards(ctx, userID, result.Snapshot)
	if err != nil {
		return nil, err
	}
	result.Rewards = rewards

	return result, nil
}

func (e *evaluator) evaluateBadges(ctx context.Context, userID, houseID uuid.UUID, snap *gamification.Snapshot) ([]entity.HouseBadge, error) {
	badges, err := e.houses.ListBadges(ctx, houseID)
	if err != nil {
		return nil, fmt.Errorf("load badges: %w", err)
	}
	if len(badges) == 0 {
		return nil, nil
	}

	earned, err := e.awards.EarnedBadgeIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load earned badges: %w", err)
	}

	if err := e.fillKeywordCounts(ctx, userID, badges, earned, snap); err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]entity.HouseBadge, len(badges))
	var qualified []uuid.UUID
	for _, b := range badges {
		if earned[b.ID] {
			continue
		}
		if b.Rule().Satisfied(*snap) {
			qualified = append(qualified, b.ID)
			byID[b.ID] = b
		}
	}
	if len(qualified) == 0 {
		return nil, nil
	}

	grantedIDs, err := e.awards.GrantBadges(ctx, userID, qualified)
	if err != nil {
		return nil, fmt.Errorf("grant badges: %w", err)
	}

	granted := make([]entity.HouseBadge, 0, len(grantedIDs))
	for _, id := range grantedIDs {
		granted = append(granted, byID[id])
	}
	return granted, nil
}

// fillKeywordCounts loads activity type counts only when an unearned badge needs them.
func (e *evaluator) fillKeywordCounts(ctx context.Context, userID uuid.UUID, badges []entity.HouseBadge, earned map[uuid.UUID]bool, snap *gamification.Snapshot) error {
	var rules []gamification.BadgeRule
	for _, b := range badges {
		if earned[b.ID] {
			continue
		}
		if r := b.Rule(); r.Kind == gamification.RuleActivityKeywordCount {
			rules = append(rules, r)
		}
	}
	if len(rules) == 0 {
		return nil
	}

	typeCounts, err := e.activities.TypeCounts(ctx, userID)
	if err != nil {
		return fmt.Errorf("load activity types: %w", err)
	}

	snap.ActivityKeywordCounts = make(map[string]int, len(rules))
	for _, r := range rules {
		key := gamification.KeywordKey(r.Keywords)
		if _, done := snap.ActivityKeywordCounts[key]; done {
			continue
		}
		total := 0
		for activityType, n := range typeCounts {
			if gamification.ActivityMatchesKeywords(activityType, r.Keywords) {
				total += n
			}
		}
		snap.ActivityKeywordCounts[key] = total
	}
	return nil
}

func (e *evaluator) evaluateRewards(ctx context.Context, userID uuid.UUID, snap gamification.Snapshot) ([]entity.Reward, error) {
	rewards, err := e.awards.ListRewards(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rewards: %w", err)
	}
	if len(rewards) == 0 {
		return nil, nil
	}

	unlocked, err := e.awards.UnlockedRewardIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load unlocked rewards: %w", err)
	}

	byID := make(map[uuid.UUID]entity.Reward, len(rewards))
	var qualified []uuid.UUID
	for _, rw := range rewards {
		if unlocked[rw.ID] || !rw.Thresholds().Satisfied(snap) {
			continue
		}
		qualified = append(qualified, rw.ID)
		byID[rw.ID] = rw
	}
	if len(qualified) == 0 {
		return nil, nil
	}

	grantedIDs, err := e.awards.GrantRewards(ctx, userID, qualified)
	if err != nil {
		return nil, fmt.Errorf("grant rewards: %w", err)
	}

	granted := make([]entity.Reward, 0, len(grantedIDs))
	for _, id := range grantedIDs {
		granted = append(granted, byID[id])
	}
	return granted, nil
}
