package agents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"octofit.app/tracker/internal/gamification"
	userRepo "octofit.app/tracker/internal/modules/user/repository"
	"octofit.app/tracker/pkg/logger"
	"octofit.app/tracker/pkg/mailer"
)

const (
	ReminderAgentName = "reminder_agent"
	DefaultSchedule   = "0 18 * * *"

	reminderSubject = "Your house misses you today 🐙"
	sentKeyPrefix   = "reminder_agent:sent:"
	sentKeyTTL      = 48 * time.Hour
)

type ReminderConfig struct {
	Schedule    string
	FrontendURL string
}

// ReminderAgent emails opted-in users who have not logged an activity today.
type ReminderAgent struct {
	users  userRepo.UserRepository
	mailer mailer.Mailer
	redis  *redis.Client
	config ReminderConfig
	now    func() time.Time
}

func NewReminderAgent(users userRepo.UserRepository, m mailer.Mailer, rdb *redis.Client, config ReminderConfig) *ReminderAgent {
	if config.Schedule == "" {
		config.Schedule = DefaultSchedule
	}
	return &ReminderAgent{
		users:  users,
		mailer: m,
		redis:  rdb,
		config: config,
		now:    time.Now,
	}
}

func (a *ReminderAgent) GetName() string {
	return ReminderAgentName
}

func (a *ReminderAgent) GetSchedule() string {
	return a.config.Schedule
}

// Execute sends at most one reminder per user per day, even across manual runs.
func (a *ReminderAgent) Execute(ctx context.Context) error {
	today := gamification.Day(a.now())

	recipients, err := a.users.FindReminderRecipients(ctx, today)
	if err != nil {
		return fmt.Errorf("load reminder recipients: %w", err)
	}

	sent := 0
	for _, u := range recipients {
		if !a.claim(ctx, today, u.ID.String()) {
			continue
		}

		err := a.mailer.Send(ctx, u.Email, reminderSubject, a.body(u.Username))
		if errors.Is(err, mailer.ErrNotConfigured) {
			logger.L().Info("smtp not configured, skipping reminders", zap.Int("recipients", len(recipients)))
			a.release(ctx, today, u.ID.String())
			return nil
		}
		if err != nil {
			logger.L().Warn("send reminder failed", zap.String("user", u.Username), zap.Error(err))
			a.release(ctx, today, u.ID.String())
			continue
		}
		sent++
	}

	logger.L().Info("reminders sent", zap.Int("sent", sent), zap.Int("recipients", len(recipients)))
	return nil
}

// claim records the user in today's sent set and reports whether it was new.
// Without redis every user is claimable.
func (a *ReminderAgent) claim(ctx context.Context, day time.Time, userID string) bool {
	if a.redis == nil {
		return true
	}
	key := sentKeyPrefix + day.Format("2006-01-02")
	added, err := a.redis.SAdd(ctx, key, userID).Result()
	if err != nil {
		logger.L().Warn("reminder dedupe failed", zap.Error(err))
		return true
	}
	if err := a.redis.Expire(ctx, key, sentKeyTTL).Err(); err != nil {
		logger.L().Warn("reminder dedupe expiry failed", zap.String("key", key), zap.Error(err))
	}
	return added == 1
}

func (a *ReminderAgent) release(ctx context.Context, day time.Time, userID string) {
	if a.redis == nil {
		return
	}
	a.redis.SRem(ctx, sentKeyPrefix+day.Format("2006-01-02"), userID)
}

func (a *ReminderAgent) body(username string) string {
	body := fmt.Sprintf("Hey %s!\n\nYou haven't logged an activity today. Even a short walk keeps your streak alive and earns points for your house.\n", username)
	if a.config.FrontendURL != "" {
		body += "\nLog it here: " + a.config.FrontendURL + "\n"
	}
	return body + "\nOctoCoach 🐙"
}
