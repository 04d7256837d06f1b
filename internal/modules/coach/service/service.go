package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/agent/providers"
	"octofit.app/tracker/internal/entity"
	"octofit.app/tracker/internal/gamification"
	activityRepo "octofit.app/tracker/internal/modules/activity/repository"
	coachDto "octofit.app/tracker/internal/modules/coach/dto"
	coachRepo "octofit.app/tracker/internal/modules/coach/repository"
	houseRepo "octofit.app/tracker/internal/modules/house/repository"
	profileRepo "octofit.app/tracker/internal/modules/profile/repository"
	userRepo "octofit.app/tracker/internal/modules/user/repository"
	"octofit.app/tracker/pkg/apperror"
	"octofit.app/tracker/pkg/cache"
	"octofit.app/tracker/pkg/logger"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100

	FallbackAnswer = "Coachbot is currently unavailable. Please try again later."
	FallbackTip    = "Stay active and have fun today! 💪"

	recommendationWindow = 5
	feedbackWindow       = 3
)

type CoachService interface {
	// Message answers with the rule-based coach. Both sides are stored.
	Message(ctx context.Context, userID uuid.UUID, input coachDto.MessageInput) (*coachDto.CoachReply, error)
	// Event posts an unsolicited coach message for a domain event.
	Event(ctx context.Context, userID uuid.UUID, event string)
	Ask(ctx context.Context, userID uuid.UUID, input coachDto.AskInput) (*coachDto.CoachReply, error)
	Tip(ctx context.Context, userID uuid.UUID) (*coachDto.TipResponse, error)
	Recommendations(ctx context.Context, userID uuid.UUID) (*coachDto.Recommendations, error)
	Feedback(ctx context.Context, userID uuid.UUID) (*coachDto.FeedbackResponse, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]coachDto.ChatMessage, error)
}

type coachService struct {
	users      userRepo.UserRepository
	profiles   profileRepo.ProfileRepository
	houses     houseRepo.HouseRepository
	activities activityRepo.ActivityRepository
	coach      coachRepo.CoachRepository
	llm        providers.LLMProvider
	cache      *cache.Cache
	sanitizer  *bluemonday.Policy
	pick       func(int) int
	now        func() time.Time
}

// NewCoachService builds the coach. llm may be nil, in which case every
// generated answer uses its template fallback.
func NewCoachService(
	users userRepo.UserRepository,
	profiles profileRepo.ProfileRepository,
	houses houseRepo.HouseRepository,
	activities activityRepo.ActivityRepository,
	coach coachRepo.CoachRepository,
	llm providers.LLMProvider,
	c *cache.Cache,
) CoachService {
	return &coachService{
		users:      users,
		profiles:   profiles,
		houses:     houses,
		activities: activities,
		coach:      coach,
		llm:        llm,
		cache:      c,
		sanitizer:  bluemonday.StrictPolicy(),
		pick:       rand.IntN,
		now:        time.Now,
	}
}

func (s *coachService) loadUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}
	if user.Profile == nil {
		return nil, apperror.NotFound("profile not found")
	}
	return user, nil
}

func (s *coachService) Message(ctx context.Context, userID uuid.UUID, input coachDto.MessageInput) (*coachDto.CoachReply, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(s.sanitizer.Sanitize(input.Message))
	return s.reply(ctx, user, text, input.Event)
}

func (s *coachService) Event(ctx context.Context, userID uuid.UUID, event string) {
	user, err := s.loadUser(ctx, userID)
	if err == nil {
		_, err = s.reply(ctx, user, "", event)
	}
	if err != nil {
		logger.L().Warn("coach event failed",
			zap.String("user_id", userID.String()),
			zap.String("event", event),
			zap.Error(err),
		)
	}
}

func (s *coachService) reply(ctx context.Context, user *entity.User, text, event string) (*coachDto.CoachReply, error) {
	now := s.now()
	if text != "" {
		if err := s.store(ctx, user.ID, entity.SenderUser, text, ContextChat); err != nil {
			return nil, err
		}
	}

	var lastBotAt *time.Time
	last, err := s.coach.LastBotMessage(ctx, user.ID)
	switch {
	case err == nil:
		lastBotAt = &last.CreatedAt
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	persona := PersonaFor(user.Profile.BotPersona)
	answer, contextType, err := ruleReply(turn{
		username:  user.Username,
		house:     user.Profile.House,
		text:      text,
		event:     event,
		lastBotAt: lastBotAt,
		now:       now,
		quoteIdx:  s.pick(len(persona.Quotes)),
		persona:   persona,
		houses:    func() ([]entity.House, error) { return s.houses.List(ctx) },
	})
	if err != nil {
		return nil, err
	}

	if err := s.store(ctx, user.ID, entity.SenderBot, answer, contextType); err != nil {
		return nil, err
	}
	return &coachDto.CoachReply{Response: answer, Avatar: persona.Avatar, ContextType: contextType}, nil
}

func (s *coachService) store(ctx context.Context, userID uuid.UUID, sender, message, contextType string) error {
	return s.coach.CreateMessage(ctx, &entity.CoachChatHistory{
		UserID:      userID,
		Sender:      sender,
		Message:     message,
		ContextType: contextType,
	})
}

func (s *coachService) Ask(ctx context.Context, userID uuid.UUID, input coachDto.AskInput) (*coachDto.CoachReply, error) {
	text := strings.TrimSpace(s.sanitizer.Sanitize(input.Message))
	if text == "" {
		return nil, apperror.BadRequest("message is required")
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	persona := PersonaFor(user.Profile.BotPersona)

	houses, err := s.houses.List(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.store(ctx, user.ID, entity.SenderUser, text, ContextAsk); err != nil {
		return nil, err
	}

	reply := &coachDto.CoachReply{Avatar: persona.Avatar, ContextType: ContextAsk}
	if mentionsHouses(strings.ToLower(text)) {
		reply.Response = houseListMessage(houses)
		reply.ContextType = ContextHouseList
	} else {
		system := persona.SystemPrompt + "\n\nYou are OctoCoach 🐙 inside the OctoFit app. " +
			"Only mention these real houses when the user asks about houses:\n" + houseListPrompt(houses)
		prompt := s.askContext(ctx, user, houses) + "\n\nUser: " + text

		answer, ok := s.generate(ctx, "chat", system, prompt)
		if !ok {
			answer = FallbackAnswer
			reply.Fallback = true
		}
		reply.Response = answer
	}

	if err := s.store(ctx, user.ID, entity.SenderBot, reply.Response, reply.ContextType); err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *coachService) askContext(ctx context.Context, user *entity.User, houses []entity.House) string {
	houseName := "No house"
	standing := "not ranked"
	if h := user.Profile.House; h != nil {
		houseName = h.Name
		standing = fmt.Sprintf("#%d of %d houses", houseRank(houses, h.ID), len(houses))
	}

	lastActivity := "none yet"
	if a, err := s.activities.Latest(ctx, user.ID); err == nil {
		lastActivity = fmt.Sprintf("%s for %d minutes on %s", a.ActivityType, a.DurationMinutes, a.Date.Format(time.DateOnly))
	}

	return fmt.Sprintf("Username: %s. House: %s. House standing: %s. Current streak: %d days. Last activity: %s.",
		user.Username, houseName, standing, user.Profile.StreakCount, lastActivity)
}

// houseRank is the 1-based position of id when houses are ordered by points.
func houseRank(houses []entity.House, id uuid.UUID) int {
	ranked := make([]entity.House, len(houses))
	copy(ranked, houses)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Points > ranked[j].Points })
	for i, h := range ranked {
		if h.ID == id {
			return i + 1
		}
	}
	return len(ranked)
}

// generate asks the LLM, going through the response cache. ok is false when
// no answer could be produced.
func (s *coachService) generate(ctx context.Context, kind, system, prompt string) (string, bool) {
	key := cache.PromptKey(kind, system+"\n"+prompt)
	var cached string
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, true
	}
	if s.llm == nil {
		return "", false
	}

	answer, err := s.llm.GenerateWithSystem(ctx, system, prompt)
	if err != nil || answer == "" {
		logger.L().Warn("coach generation failed", zap.String("kind", kind), zap.Error(err))
		return "", false
	}
	s.cache.SetJSON(ctx, key, answer, cache.DefaultTTL)
	return answer, true
}

func (s *coachService) Tip(ctx context.Context, userID uuid.UUID) (*coachDto.TipResponse, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := user.Profile
	today := gamification.Day(s.now())
	date := today.Format(time.DateOnly)

	if profile.LastTipDate != nil && profile.LastTipDate.Format(time.DateOnly) == date && profile.LastTipText != "" {
		return &coachDto.TipResponse{Tip: profile.LastTipText, Date: date}, nil
	}

	house := "No house"
	if profile.House != nil {
		house = profile.House.Name
	}
	system := fmt.Sprintf("You are OctoCoach, a motivating fitness coach for students. "+
		"Give a short, friendly, actionable fitness or wellness tip for today. "+
		"Personalize it for a user in the '%s' house with a %d-day streak. "+
		"Add an emoji and keep it under 140 characters.", house, profile.StreakCount)

	tip := FallbackTip
	if s.llm != nil {
		answer, err := s.llm.GenerateWithSystem(ctx, system, "Today's tip, please.")
		if err != nil || answer == "" {
			logger.L().Warn("tip generation failed", zap.Error(err))
		} else {
			tip = answer
		}
	}

	if err := s.profiles.Update(ctx, userID, map[string]any{
		"last_tip_date": today,
		"last_tip_text": tip,
	}); err != nil {
		return nil, fmt.Errorf("store tip: %w", err)
	}
	return &coachDto.TipResponse{Tip: tip, Date: date}, nil
}

func (s *coachService) Recommendations(ctx context.Context, userID uuid.UUID) (*coachDto.Recommendations, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.activities.Recent(ctx, userID, recommendationWindow)
	if err != nil {
		return nil, err
	}

	recs := fallbackRecommendations(recent)
	if generated, ok := s.generateRecommendations(ctx, recent, user.Profile.StreakCount); ok {
		recs.Balance = pickNonEmpty(generated.Balance, recs.Balance)
		recs.Challenge = pickNonEmpty(generated.Challenge, recs.Challenge)
		recs.HouseBoost = pickNonEmpty(generated.HouseBoost, recs.HouseBoost)
		if a := strings.TrimSpace(generated.SuggestedActivity); a != "" {
			recs.SuggestedActivity = strings.ToLower(a)
		}
	}

	logs := []entity.RecommendationLog{
		{UserID: userID, RecommendationType: "balance", SuggestedActivity: recs.SuggestedActivity, Message: recs.Balance},
		{UserID: userID, RecommendationType: "challenge", Message: recs.Challenge},
		{UserID: userID, RecommendationType: "house_boost", Message: recs.HouseBoost},
	}
	if err := s.coach.CreateRecommendations(ctx, logs); err != nil {
		return nil, fmt.Errorf("log recommendations: %w", err)
	}
	return &recs, nil
}

func (s *coachService) generateRecommendations(ctx context.Context, recent []entity.FitnessActivity, streak int) (coachDto.Recommendations, bool) {
	var out coachDto.Recommendations
	system := "You are OctoCoach's recommendation engine. Generate three specific, actionable workout " +
		"recommendations based on the user's recent activity history. Focus on variety, progression, " +
		"and maintaining streaks. Keep each recommendation under 100 characters. " +
		`Answer with JSON: {"balance": "...", "challenge": "...", "house_boost": "...", "suggested_activity": "<one activity type>"}.`
	prompt := fmt.Sprintf("User has done: %s. Current streak: %d days.", activitySummary(recent), streak)

	key := cache.PromptKey("workout_recommendations", prompt)
	if s.cache.GetJSON(ctx, key, &out) {
		return out, true
	}
	if s.llm == nil {
		return out, false
	}
	if err := s.llm.GenerateStructured(ctx, system, prompt, &out); err != nil {
		logger.L().Warn("recommendation generation failed", zap.Error(err))
		return out, false
	}
	s.cache.SetJSON(ctx, key, out, cache.DefaultTTL)
	return out, true
}

func fallbackRecommendations(recent []entity.FitnessActivity) coachDto.Recommendations {
	if len(recent) == 0 {
		return coachDto.Recommendations{
			Balance:           "Start your fitness journey with a simple walk! 🚶‍♂️",
			Challenge:         "Try our beginner-friendly challenge this week! 🎯",
			HouseBoost:        "Any activity helps your house earn points! 🏆",
			SuggestedActivity: "walk",
		}
	}
	if gamification.NormalizeActivity(recent[0].ActivityType) == "cardio" {
		return coachDto.Recommendations{
			Balance:           "Time for some strength training! 💪",
			Challenge:         "Can you do 10 push-ups today? 💪",
			HouseBoost:        "A HIIT session would boost your house points! 🔥",
			SuggestedActivity: "strength training",
		}
	}
	return coachDto.Recommendations{
		Balance:           "How about some cardio today? 🏃‍♂️",
		Challenge:         "Try a new workout type this week! 🌟",
		HouseBoost:        "Your house needs your energy! 🏋️‍♂️",
		SuggestedActivity: "cardio",
	}
}

func (s *coachService) Feedback(ctx context.Context, userID uuid.UUID) (*coachDto.FeedbackResponse, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.activities.Recent(ctx, userID, feedbackWindow)
	if err != nil {
		return nil, err
	}
	streak := user.Profile.StreakCount

	system := "You are OctoCoach, a motivating fitness assistant. Generate a short, encouraging feedback " +
		"message (max 150 characters) based on the user's recent activities and streak. Use emojis " +
		"and be energetic but concise!"
	prompt := fmt.Sprintf("Recent activities: %s. Current streak: %d days.", activitySummary(recent), streak)

	feedback, ok := s.generate(ctx, "feedback", system, prompt)
	if !ok {
		feedback = fallbackFeedback(recent, streak)
	}
	return &coachDto.FeedbackResponse{Feedback: feedback}, nil
}

func fallbackFeedback(recent []entity.FitnessActivity, streak int) string {
	if len(recent) == 0 {
		return "Welcome to OctoFit! Ready to start your fitness journey? 🚀"
	}
	switch {
	case streak > 5:
		return fmt.Sprintf("Amazing %d-day streak! You're on fire! 🔥", streak)
	case streak > 0:
		return fmt.Sprintf("Nice %d-day streak! Keep it going! 💪", streak)
	}
	switch gamification.NormalizeActivity(recent[0].ActivityType) {
	case "cardio":
		return "Great cardio session! How about some strength training next? 💪"
	case "strength training":
		return "Crushing those weights! Maybe try some yoga for recovery? 🧘‍♂️"
	default:
		return "Way to mix up your routine! Keep that variety coming! 🌟"
	}
}

func (s *coachService) History(ctx context.Context, userID uuid.UUID, limit int) ([]coachDto.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	msgs, err := s.coach.History(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	// Stored newest first; the chat window reads oldest first.
	out := make([]coachDto.ChatMessage, len(msgs))
	for i, m := range msgs {
		out[len(msgs)-1-i] = coachDto.ChatMessage{
			ID:          m.ID,
			Sender:      m.Sender,
			Message:     m.Message,
			ContextType: m.ContextType,
			CreatedAt:   m.CreatedAt,
		}
	}
	return out, nil
}

func activitySummary(activities []entity.FitnessActivity) string {
	if len(activities) == 0 {
		return "No recent activities"
	}
	parts := make([]string, 0, len(activities))
	for _, a := range activities {
		parts = append(parts, a.ActivityType+" on "+a.Date.Format(time.DateOnly))
	}
	return strings.Join(parts, ", ")
}

func pickNonEmpty(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}
