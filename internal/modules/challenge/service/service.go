package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
	awardRepo "octofit.app/tracker/internal/modules/award/repository"
	award "octofit.app/tracker/internal/modules/award/service"
	challengeDto "octofit.app/tracker/internal/modules/challenge/dto"
	challengeRepo "octofit.app/tracker/internal/modules/challenge/repository"
	houseRepo "octofit.app/tracker/internal/modules/house/repository"
	profileRepo "octofit.app/tracker/internal/modules/profile/repository"
	search "octofit.app/tracker/internal/modules/search/service"
	"octofit.app/tracker/pkg/apperror"
	"octofit.app/tracker/pkg/cache"
	"octofit.app/tracker/pkg/logger"
)

const (
	suggestAction      = "suggest_challenge"
	DefaultCooldown    = time.Minute
	SearchLimit        = 20
	msgAccepted        = "Challenge accepted!"
	msgAlreadyAccepted = "Already accepted"
	msgCompleted       = "Challenge completed! XP awarded."
)

type ChallengeService interface {
	List(ctx context.Context, userID uuid.UUID) (*challengeDto.ChallengeProgress, error)
	// Progress reports the user's state against houseID's catalog.
	Progress(ctx context.Context, userID, houseID uuid.UUID) (*challengeDto.ChallengeProgress, error)
	Accept(ctx context.Context, userID uuid.UUID, input challengeDto.AcceptChallengeInput) (*challengeDto.ChallengeActionResponse, error)
	Complete(ctx context.Context, userID uuid.UUID, input challengeDto.CompleteChallengeInput) (*challengeDto.ChallengeActionResponse, error)
	Suggest(ctx context.Context, userID uuid.UUID, input challengeDto.SuggestChallengeInput) (*challengeDto.SuggestionResponse, error)
	Search(ctx context.Context, query string) ([]challengeDto.SearchResult, error)
	Latest(ctx context.Context, userID uuid.UUID) (*challengeDto.LatestResponse, error)
}

type Config struct {
	SuggestionCooldown time.Duration
}

type challengeService struct {
	db         *gorm.DB
	challenges challengeRepo.ChallengeRepository
	houses     houseRepo.HouseRepository
	profiles   profileRepo.ProfileRepository
	awards     awardRepo.AwardRepository
	evaluator  award.Evaluator
	search     search.SearchService
	cache      *cache.Cache
	notifier   award.Notifier
	feed       award.FeedRecorder
	sanitizer  *bluemonday.Policy
	cooldown   time.Duration
	now        func() time.Time
}

func NewChallengeService(
	db *gorm.DB,
	challenges challengeRepo.ChallengeRepository,
	houses houseRepo.HouseRepository,
	profiles profileRepo.ProfileRepository,
	awards awardRepo.AwardRepository,
	evaluator award.Evaluator,
	searchService search.SearchService,
	c *cache.Cache,
	notifier award.Notifier,
	feed award.FeedRecorder,
	cfg Config,
) ChallengeService {
	if cfg.SuggestionCooldown <= 0 {
		cfg.SuggestionCooldown = DefaultCooldown
	}
	return &challengeService{
		db:         db,
		challenges: challenges,
		houses:     houses,
		profiles:   profiles,
		awards:     awards,
		evaluator:  evaluator,
		search:     searchService,
		cache:      c,
		notifier:   notifier,
		feed:       feed,
		sanitizer:  bluemonday.StrictPolicy(),
		cooldown:   cfg.SuggestionCooldown,
		now:        time.Now,
	}
}

func (s *challengeService) profile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("profile not found")
		}
		return nil, err
	}
	return profile, nil
}

func (s *challengeService) List(ctx context.Context, userID uuid.UUID) (*challengeDto.ChallengeProgress, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.HouseID == nil {
		empty := buildProgress(nil, nil)
		return &empty, nil
	}
	return s.Progress(ctx, userID, *profile.HouseID)
}

func (s *challengeService) Progress(ctx context.Context, userID, houseID uuid.UUID) (*challengeDto.ChallengeProgress, error) {
	catalog, err := s.houses.ListChallenges(ctx, houseID)
	if err != nil {
		return nil, err
	}
	accepted, err := s.challenges.ListAccepted(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := buildProgress(catalog, accepted)
	return &p, nil
}

// currentProgress is the progress for the user's own house, empty without one.
func (s *challengeService) currentProgress(ctx context.Context, userID uuid.UUID) (challengeDto.ChallengeProgress, *uuid.UUID, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return challengeDto.ChallengeProgress{}, nil, err
	}
	if profile.HouseID == nil {
		return buildProgress(nil, nil), nil, nil
	}
	p, err := s.Progress(ctx, userID, *profile.HouseID)
	if err != nil {
		return challengeDto.ChallengeProgress{}, nil, err
	}
	return *p, profile.HouseID, nil
}

func (s *challengeService) Accept(ctx context.Context, userID uuid.UUID, input challengeDto.AcceptChallengeInput) (*challengeDto.ChallengeActionResponse, error) {
	description := strings.TrimSpace(input.Description)

	challenge, err := s.houses.FindChallengeByDescription(ctx, description)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("challenge not found")
		}
		return nil, err
	}

	xp := challenge.XP
	if input.XP != nil {
		xp = *input.XP
	}

	created, err := s.challenges.Accept(ctx, &entity.AcceptedChallenge{
		UserID:               userID,
		ChallengeDescription: challenge.Description,
		XPPoints:             xp,
	})
	if err != nil {
		return nil, fmt.Errorf("accept challenge: %w", err)
	}

	res := &challengeDto.ChallengeActionResponse{Message: msgAlreadyAccepted, XP: xp}
	if !created {
		if existing, err := s.challenges.FindAccepted(ctx, userID, challenge.Description); err == nil {
			res.XP = existing.XPPoints
		}
	} else {
		res.Message = msgAccepted
	}

	progress, _, err := s.currentProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	res.Progress = progress
	return res, nil
}

func (s *challengeService) Complete(ctx context.Context, userID uuid.UUID, input challengeDto.CompleteChallengeInput) (*challengeDto.ChallengeActionResponse, error) {
	description := strings.TrimSpace(input.Description)

	var ev *award.Evaluation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		challenges := s.challenges.WithTx(tx)

		completed, err := challenges.CompleteOpen(ctx, userID, description, s.now())
		if err != nil {
			return fmt.Errorf("complete challenge: %w", err)
		}
		if !completed {
			return apperror.NotFound("Challenge not found or already completed.")
		}
		if input.XP != nil {
			if err := challenges.UpdateXP(ctx, userID, description, *input.XP); err != nil {
				return fmt.Errorf("update challenge xp: %w", err)
			}
		}

		ev, err = s.evaluator.WithTx(tx).Evaluate(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	accepted, err := s.challenges.FindAccepted(ctx, userID, description)
	if err != nil {
		return nil, err
	}
	progress, houseID, err := s.currentProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, userID, entity.NotificationChallengeComplete, fmt.Sprintf("Challenge complete: %s (+%d XP)", description, accepted.XPPoints))
	}
	if s.feed != nil {
		s.feed.Record(ctx, userID, houseID, entity.FeedActionCompleted, "completed "+description)
	}
	award.Announce(ctx, s.notifier, s.feed, userID, houseID, ev)

	return &challengeDto.ChallengeActionResponse{
		Message:    msgCompleted,
		XP:         accepted.XPPoints,
		Progress:   progress,
		NewBadges:  ev.BadgeResponses(),
		NewRewards: ev.RewardResponses(),
	}, nil
}

func (s *challengeService) Suggest(ctx context.Context, userID uuid.UUID, input challengeDto.SuggestChallengeInput) (*challengeDto.SuggestionResponse, error) {
	description := strings.Join(strings.Fields(s.sanitizer.Sanitize(input.Description)), " ")
	if len(description) < 5 {
		return nil, apperror.BadRequest("description must be at least 5 characters")
	}

	house, err := s.houses.FindByID(ctx, input.HouseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("house not found")
		}
		return nil, err
	}

	allowed, err := s.cache.CheckAndSetRateLimit(ctx, userID, suggestAction, s.cooldown)
	if err != nil {
		logger.L().Warn("suggestion rate limit check failed", zap.String("user_id", userID.String()), zap.Error(err))
		allowed = true
	}
	if !allowed {
		return nil, apperror.New(http.StatusTooManyRequests, "You can suggest one challenge per minute.", apperror.ErrRateLimitExceeded)
	}

	suggestion := &entity.ChallengeSuggestion{
		UserID:      userID,
		HouseID:     house.ID,
		Description: description,
	}
	if err := s.challenges.CreateSuggestion(ctx, suggestion); err != nil {
		return nil, fmt.Errorf("create suggestion: %w", err)
	}

	return &challengeDto.SuggestionResponse{
		ID:          suggestion.ID,
		HouseID:     house.ID,
		HouseName:   house.Name,
		Description: suggestion.Description,
		CreatedAt:   suggestion.CreatedAt,
	}, nil
}

func (s *challengeService) Search(ctx context.Context, query string) ([]challengeDto.SearchResult, error) {
	query = strings.TrimSpace(query)
	results := []challengeDto.SearchResult{}
	if query == "" {
		return results, nil
	}

	if s.search != nil && s.search.Enabled() {
		hits, err := s.search.SearchChallenges(query, SearchLimit)
		if err == nil {
			for _, h := range hits {
				results = append(results, challengeDto.SearchResult{ID: h.ID, HouseID: h.HouseID, Description: h.Description, XP: h.XP})
			}
			return results, nil
		}
		logger.L().Warn("challenge search failed, using database", zap.String("query", query), zap.Error(err))
	}

	challenges, err := s.houses.SearchChallenges(ctx, query, SearchLimit)
	if err != nil {
		return nil, err
	}
	for _, ch := range challenges {
		results = append(results, challengeDto.SearchResult{
			ID:          ch.ID.String(),
			HouseID:     ch.HouseID.String(),
			Description: ch.Description,
			XP:          ch.XP,
		})
	}
	return results, nil
}

func (s *challengeService) Latest(ctx context.Context, userID uuid.UUID) (*challengeDto.LatestResponse, error) {
	res := &challengeDto.LatestResponse{}

	accepted, err := s.challenges.LatestCompleted(ctx, userID)
	switch {
	case err == nil:
		res.Challenge = &challengeDto.LatestChallenge{
			Description: accepted.ChallengeDescription,
			XP:          accepted.XPPoints,
			CompletedAt: *accepted.CompletedAt,
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	badge, err := s.awards.LatestBadge(ctx, userID)
	switch {
	case err == nil:
		res.Badge = &challengeDto.LatestBadge{Name: badge.Badge.Name, Emoji: badge.Badge.Emoji, EarnedAt: badge.EarnedAt}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	return res, nil
}
