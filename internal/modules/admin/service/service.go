package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/agent"
	"octofit.app/tracker/internal/entity"
	"octofit.app/tracker/internal/gamification"
	adminDto "octofit.app/tracker/internal/modules/admin/dto"
	awardRepo "octofit.app/tracker/internal/modules/award/repository"
	award "octofit.app/tracker/internal/modules/award/service"
	challengeDto "octofit.app/tracker/internal/modules/challenge/dto"
	challengeRepo "octofit.app/tracker/internal/modules/challenge/repository"
	houseRepo "octofit.app/tracker/internal/modules/house/repository"
	search "octofit.app/tracker/internal/modules/search/service"
	"octofit.app/tracker/pkg/apperror"
	"octofit.app/tracker/pkg/logger"
)

const defaultChallengeXP = 10

// AgentRunner triggers a registered background agent.
type AgentRunner interface {
	RunAgentByName(ctx context.Context, name string) error
}

type AdminService interface {
	CreateChallenge(ctx context.Context, houseID uuid.UUID, input adminDto.CreateChallengeInput) (*adminDto.ChallengeResponse, error)
	DeleteChallenge(ctx context.Context, id uuid.UUID) error
	CreateBadge(ctx context.Context, houseID uuid.UUID, input adminDto.CreateBadgeInput) (*adminDto.BadgeResponse, error)
	CreateReward(ctx context.Context, input adminDto.CreateRewardInput) (*adminDto.RewardResponse, error)
	ListSuggestions(ctx context.Context, pendingOnly bool) ([]challengeDto.SuggestionResponse, error)
	// ReviewSuggestion decides a pending suggestion; approval adds it to the house catalog.
	ReviewSuggestion(ctx context.Context, id uuid.UUID, input adminDto.ReviewSuggestionInput) (*adminDto.ReviewResponse, error)
	RunAgent(ctx context.Context, name string) error
}

type adminService struct {
	db         *gorm.DB
	houses     houseRepo.HouseRepository
	challenges challengeRepo.ChallengeRepository
	awards     awardRepo.AwardRepository
	search     search.SearchService
	notifier   award.Notifier
	agents     AgentRunner
}

func NewAdminService(
	db *gorm.DB,
	houses houseRepo.HouseRepository,
	challenges challengeRepo.ChallengeRepository,
	awards awardRepo.AwardRepository,
	searchService search.SearchService,
	notifier award.Notifier,
	agents AgentRunner,
) AdminService {
	return &adminService{
		db:         db,
		houses:     houses,
		challenges: challenges,
		awards:     awards,
		search:     searchService,
		notifier:   notifier,
		agents:     agents,
	}
}

func (s *adminService) findHouse(ctx context.Context, id uuid.UUID) (*entity.House, error) {
	house, err := s.houses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("house not found")
		}
		return nil, err
	}
	return house, nil
}

func (s *adminService) CreateChallenge(ctx context.Context, houseID uuid.UUID, input adminDto.CreateChallengeInput) (*adminDto.ChallengeResponse, error) {
	if _, err := s.findHouse(ctx, houseID); err != nil {
		return nil, err
	}

	challenge := &entity.HouseChallenge{
		HouseID:     houseID,
		Description: strings.TrimSpace(input.Description),
		XP:          input.XP,
	}
	if challenge.Description == "" {
		return nil, apperror.BadRequest("description is required")
	}
	if challenge.XP == 0 {
		challenge.XP = defaultChallengeXP
	}
	if input.CanonicalActivity != nil {
		if tag := gamification.NormalizeActivity(*input.CanonicalActivity); tag != "" {
			challenge.CanonicalActivity = &tag
		}
	}

	if err := s.insertChallenge(ctx, s.houses, challenge); err != nil {
		return nil, err
	}
	s.index(*challenge)

	res := toChallengeResponse(*challenge)
	return &res, nil
}

func (s *adminService) insertChallenge(ctx context.Context, houses houseRepo.HouseRepository, challenge *entity.HouseChallenge) error {
	existing, err := houses.ListChallenges(ctx, challenge.HouseID)
	if err != nil {
		return err
	}
	for _, c := range existing {
		if strings.EqualFold(c.Description, challenge.Description) {
			return apperror.New(http.StatusConflict, "house already has this challenge", apperror.ErrConflict)
		}
	}
	return houses.CreateChallenge(ctx, challenge)
}

func (s *adminService) index(challenge entity.HouseChallenge) {
	if s.search == nil || !s.search.Enabled() {
		return
	}
	if err := s.search.IndexChallenges([]entity.HouseChallenge{challenge}); err != nil {
		logger.L().Warn("index challenge failed", zap.String("challenge_id", challenge.ID.String()), zap.Error(err))
	}
}

func (s *adminService) DeleteChallenge(ctx context.Context, id uuid.UUID) error {
	if err := s.houses.DeleteChallenge(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("challenge not found")
		}
		return err
	}

	if s.search != nil && s.search.Enabled() {
		if err := s.search.DeleteChallenge(id.String()); err != nil {
			logger.L().Warn("unindex challenge failed", zap.String("challenge_id", id.String()), zap.Error(err))
		}
	}
	return nil
}

func (s *adminService) CreateBadge(ctx context.Context, houseID uuid.UUID, input adminDto.CreateBadgeInput) (*adminDto.BadgeResponse, error) {
	if _, err := s.findHouse(ctx, houseID); err != nil {
		return nil, err
	}

	rule := gamification.BadgeRule{
		Kind:      gamification.RuleKind(input.RuleKind),
		Threshold: input.RuleThreshold,
		Keywords:  gamification.NormalizeKeywords(input.RuleKeywords),
	}
	if rule.Kind == gamification.RuleNone {
		rule = gamification.RuleFromName(input.Name)
	}
	if err := validateRule(rule); err != nil {
		return nil, err
	}

	badge := &entity.HouseBadge{
		HouseID:       houseID,
		Name:          strings.TrimSpace(input.Name),
		Emoji:         input.Emoji,
		Desc:          input.Desc,
		RuleKind:      string(rule.Kind),
		RuleThreshold: rule.Threshold,
		RuleKeywords:  gamification.KeywordKey(rule.Keywords),
	}
	if err := s.houses.CreateBadge(ctx, badge); err != nil {
		return nil, fmt.Errorf("create badge: %w", err)
	}

	return &adminDto.BadgeResponse{
		ID:            badge.ID,
		HouseID:       badge.HouseID,
		Name:          badge.Name,
		Emoji:         badge.Emoji,
		Desc:          badge.Desc,
		RuleKind:      badge.RuleKind,
		RuleThreshold: badge.RuleThreshold,
		RuleKeywords:  rule.Keywords,
	}, nil
}

// validateRule rejects rules that could never unlock. RuleNone is allowed:
// such a badge is decorative.
func validateRule(rule gamification.BadgeRule) error {
	switch rule.Kind {
	case gamification.RuleNone:
		return nil
	case gamification.RuleChallengeCount, gamification.RuleStreakDays:
		if rule.Threshold <= 0 {
			return apperror.BadRequest("rule_threshold must be positive")
		}
	case gamification.RuleCompleteKeywordChallenges:
		if len(rule.Keywords) == 0 {
			return apperror.BadRequest("rule_keywords are required")
		}
	case gamification.RuleActivityKeywordCount:
		if rule.Threshold <= 0 || len(rule.Keywords) == 0 {
			return apperror.BadRequest("rule_threshold and rule_keywords are required")
		}
	default:
		return apperror.BadRequest("unknown rule_kind")
	}
	return nil
}

func (s *adminService) CreateReward(ctx context.Context, input adminDto.CreateRewardInput) (*adminDto.RewardResponse, error) {
	if input.UnlockPoints == 0 && input.UnlockStreak == 0 && input.UnlockChallenges == 0 {
		return nil, apperror.BadRequest("at least one unlock threshold is required")
	}

	existing, err := s.awards.ListRewards(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	for _, r := range existing {
		if strings.EqualFold(r.Name, name) {
			return nil, apperror.New(http.StatusConflict, "reward already exists", apperror.ErrConflict)
		}
	}

	reward := &entity.Reward{
		Name:             name,
		Description:      input.Description,
		Icon:             input.Icon,
		UnlockPoints:     input.UnlockPoints,
		UnlockStreak:     input.UnlockStreak,
		UnlockChallenges: input.UnlockChallenges,
	}
	if err := s.awards.CreateReward(ctx, reward); err != nil {
		return nil, fmt.Errorf("create reward: %w", err)
	}

	return &adminDto.RewardResponse{
		ID:               reward.ID,
		Name:             reward.Name,
		Description:      reward.Description,
		Icon:             reward.Icon,
		UnlockPoints:     reward.UnlockPoints,
		UnlockStreak:     reward.UnlockStreak,
		UnlockChallenges: reward.UnlockChallenges,
	}, nil
}

func (s *adminService) ListSuggestions(ctx context.Context, pendingOnly bool) ([]challengeDto.SuggestionResponse, error) {
	suggestions, err := s.challenges.ListSuggestions(ctx, pendingOnly)
	if err != nil {
		return nil, err
	}

	res := make([]challengeDto.SuggestionResponse, 0, len(suggestions))
	for _, sg := range suggestions {
		res = append(res, challengeDto.SuggestionResponse{
			ID:          sg.ID,
			HouseID:     sg.HouseID,
			HouseName:   sg.House.Name,
			Username:    sg.User.Username,
			Description: sg.Description,
			Reviewed:    sg.Reviewed,
			Approved:    sg.Approved,
			CreatedAt:   sg.CreatedAt,
		})
	}
	return res, nil
}

func (s *adminService) ReviewSuggestion(ctx context.Context, id uuid.UUID, input adminDto.ReviewSuggestionInput) (*adminDto.ReviewResponse, error) {
	approved := input.Approved != nil && *input.Approved

	var (
		suggestion *entity.ChallengeSuggestion
		created    *entity.HouseChallenge
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		challenges := s.challenges.WithTx(tx)

		var err error
		suggestion, err = challenges.FindSuggestion(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("suggestion not found")
			}
			return err
		}

		ok, err := challenges.ReviewSuggestion(ctx, id, approved)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.New(http.StatusConflict, "suggestion already reviewed", apperror.ErrConflict)
		}
		if !approved {
			return nil
		}

		created = &entity.HouseChallenge{
			HouseID:     suggestion.HouseID,
			Description: suggestion.Description,
			XP:          defaultChallengeXP,
		}
		return s.insertChallenge(ctx, s.houses.WithTx(tx), created)
	})
	if err != nil {
		return nil, err
	}

	if !approved {
		s.notify(ctx, suggestion.UserID, fmt.Sprintf("Your challenge suggestion %q was not approved this time.", suggestion.Description))
		return &adminDto.ReviewResponse{Message: "Suggestion rejected."}, nil
	}

	s.index(*created)
	s.notify(ctx, suggestion.UserID, fmt.Sprintf("Your challenge suggestion %q is now a house challenge!", suggestion.Description))

	res := toChallengeResponse(*created)
	return &adminDto.ReviewResponse{Message: "Suggestion approved.", Challenge: &res}, nil
}

func (s *adminService) notify(ctx context.Context, userID uuid.UUID, message string) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, userID, entity.NotificationInfo, message)
	}
}

func (s *adminService) RunAgent(ctx context.Context, name string) error {
	if s.agents == nil {
		return apperror.New(http.StatusServiceUnavailable, "agents are not running", apperror.ErrUnavailable)
	}
	if err := s.agents.RunAgentByName(ctx, name); err != nil {
		if errors.Is(err, agent.ErrAgentNotFound) {
			return apperror.NotFound("agent not found")
		}
		return fmt.Errorf("run agent %s: %w", name, err)
	}
	return nil
}

func toChallengeResponse(c entity.HouseChallenge) adminDto.ChallengeResponse {
	return adminDto.ChallengeResponse{
		ID:                c.ID,
		HouseID:           c.HouseID,
		Description:       c.Description,
		XP:                c.XP,
		CanonicalActivity: c.CanonicalActivity,
	}
}
