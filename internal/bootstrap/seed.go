package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
	"octofit.app/tracker/internal/gamification"
	search "octofit.app/tracker/internal/modules/search/service"
	"octofit.app/tracker/pkg/logger"
)

type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

type seedBadge struct {
	name  string
	emoji string
	desc  string
	rule  gamification.BadgeRule
}

type seedHouse struct {
	house      entity.House
	challenges []string
	activities []string
	badges     []seedBadge
}

func commonBadges(name, mascot string) []seedBadge {
	return []seedBadge{
		{name: "Complete 3 challenges", emoji: "🏅", desc: "Complete any three house challenges.",
			rule: gamification.BadgeRule{Kind: gamification.RuleChallengeCount, Threshold: 3}},
		{name: "7-day streak", emoji: "🔥", desc: "Log an activity seven days in a row.",
			rule: gamification.BadgeRule{Kind: gamification.RuleStreakDays, Threshold: 7}},
		{name: name + " Star", emoji: mascot, desc: "Special badge for " + name + " house.",
			rule: gamification.BadgeRule{Kind: gamification.RuleChallengeCount, Threshold: 5}},
	}
}

var (
	zenGuru = seedBadge{name: "Zen Guru", emoji: "🧘", desc: "Complete every yoga and stretch challenge.",
		rule: gamification.BadgeRule{Kind: gamification.RuleCompleteKeywordChallenges, Keywords: []string{"yoga", "stretch"}}}
	trailblazer = seedBadge{name: "Trailblazer", emoji: "🥾", desc: "Log seven walks.",
		rule: gamification.BadgeRule{Kind: gamification.RuleActivityKeywordCount, Threshold: 7, Keywords: []string{"walk"}}}
)

var houses = []seedHouse{
	{
		house: entity.House{Name: "Kraken", Mascot: "🐙", Color: "#1e90ff", Theme: "Sea Power", Description: "Unleash your inner sea monster!"},
		challenges: []string{
			"Plank for 1 minute",
			"Swim 10 laps",
			"Underwater breath hold for 30 seconds",
			"Crab walk 20 meters",
			"Sea shanty dance challenge",
		},
		activities: []string{"Open water swim", "Core circuit", "Beach run"},
		badges:     commonBadges("Kraken", "🐙"),
	},
	{
		house: entity.House{Name: "Montana", Mascot: "🦅", Color: "#228B22", Theme: "Mountain Endurance", Description: "Rise above with mountain strength!"},
		challenges: []string{
			"Hike 2 miles",
			"Do 20 mountain climbers",
			"Yoga at sunrise",
			"Nature photo walk",
			"Summit sprint (run up stairs/hill)",
		},
		activities: []string{"Trail hike", "Stair climbing", "Sunrise yoga"},
		badges:     append(commonBadges("Montana", "🦅"), trailblazer),
	},
	{
		house: entity.House{Name: "Razor", Mascot: "🦈", Color: "#c0392b", Theme: "Sharp Focus", Description: "Cut through limits with razor focus!"},
		challenges: []string{
			"Shadow boxing for 3 minutes",
			"Jump rope 100 times",
			"Balance on one leg for 1 minute",
			"Speed run 400m",
			"Push-up pyramid (1-2-3-2-1)",
		},
		activities: []string{"Boxing drills", "Interval sprints", "Agility ladder"},
		badges:     commonBadges("Razor", "🦈"),
	},
	{
		house: entity.House{Name: "Serene", Mascot: "🦋", Color: "#8e44ad", Theme: "Calm & Flexibility", Description: "Find your flow and peace!"},
		challenges: []string{
			"5 min guided meditation",
			"Hold tree pose for 1 minute",
			"Stretch for 10 minutes",
			"Mindful walk outdoors",
			"Write a gratitude list",
		},
		activities: []string{"Guided meditation", "Yin yoga", "Mindful walk"},
		badges:     append(commonBadges("Serene", "🦋"), zenGuru),
	},
}

var rewards = []entity.Reward{
	{Name: "Bronze Tentacle", Description: "Your house reached 100 points.", Icon: "🥉", UnlockPoints: 100},
	{Name: "Golden Kraken", Description: "Your house reached 1000 points.", Icon: "🏆", UnlockPoints: 1000},
	{Name: "Streak Keeper", Description: "Hold a 7-day streak.", Icon: "🔥", UnlockStreak: 7},
	{Name: "Challenge Champion", Description: "Complete 10 challenges.", Icon: "🎯", UnlockChallenges: 10},
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(entity.All()...)
}

// Seed inserts reference data. Running it again changes nothing.
func Seed(ctx context.Context, db *gorm.DB, cfg SeedConfig) error {
	db = db.WithContext(ctx)
	steps := []struct {
		name string
		run  func() error
	}{
		{"roles", func() error { return seedRoles(db) }},
		{"admin", func() error { return seedAdminUser(db, cfg) }},
		{"houses", func() error { return seedHouses(db) }},
		{"rewards", func() error { return seedRewards(db) }},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			return fmt.Errorf("seed %s: %w", s.name, err)
		}
	}
	return nil
}

func seedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleAdmin, Description: "Administrator"},
		{Name: entity.RoleMember, Description: "OctoFit member"},
	}
	for _, role := range defaultRoles {
		if err := db.Where(entity.Role{Name: role.Name}).Attrs(role).FirstOrCreate(&entity.Role{}).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedAdminUser(db *gorm.DB, cfg SeedConfig) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		logger.L().Info("ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var count int64
	if err := db.Model(&entity.User{}).Where("email = ?", cfg.AdminEmail).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	username := strings.SplitN(cfg.AdminEmail, "@", 2)[0]
	return db.Transaction(func(tx *gorm.DB) error {
		admin := &entity.User{
			Username:     username,
			Email:        cfg.AdminEmail,
			PasswordHash: string(hashed),
			RoleID:       &adminRole.ID,
			IsActive:     true,
		}
		if err := tx.Omit("Profile", "Role").Create(admin).Error; err != nil {
			return err
		}
		profile := &entity.Profile{UserID: admin.ID, BotPersona: entity.PersonaArnold, OnboardingComplete: true}
		if err := tx.Omit("House").Create(profile).Error; err != nil {
			return err
		}
		logger.L().Info("admin user seeded", zap.String("email", cfg.AdminEmail))
		return nil
	})
}

func seedHouses(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, h := range houses {
			var house entity.House
			if err := tx.Omit("Challenges", "Badges", "Activities").
				Where(entity.House{Name: h.house.Name}).
				Attrs(h.house).
				FirstOrCreate(&house).Error; err != nil {
				return err
			}

			for _, d := range h.challenges {
				ch := entity.HouseChallenge{HouseID: house.ID, Description: d, XP: 10}
				if err := tx.Where(entity.HouseChallenge{HouseID: house.ID, Description: d}).
					Attrs(ch).
					FirstOrCreate(&entity.HouseChallenge{}).Error; err != nil {
					return err
				}
			}

			for _, d := range h.activities {
				if err := tx.Where(entity.HouseActivity{HouseID: house.ID, Description: d}).
					FirstOrCreate(&entity.HouseActivity{}).Error; err != nil {
					return err
				}
			}

			for _, b := range h.badges {
				badge := entity.HouseBadge{
					HouseID:       house.ID,
					Name:          b.name,
					Emoji:         b.emoji,
					Desc:          b.desc,
					RuleKind:      string(b.rule.Kind),
					RuleThreshold: b.rule.Threshold,
					RuleKeywords:  gamification.KeywordKey(b.rule.Keywords),
				}
				if err := tx.Where(entity.HouseBadge{HouseID: house.ID, Name: b.name}).
					Attrs(badge).
					FirstOrCreate(&entity.HouseBadge{}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func seedRewards(db *gorm.DB) error {
	for _, r := range rewards {
		if err := db.Where(entity.Reward{Name: r.Name}).Attrs(r).FirstOrCreate(&entity.Reward{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// ReindexChallenges pushes the whole challenge catalog to the search index.
func ReindexChallenges(ctx context.Context, db *gorm.DB, searchService search.SearchService) error {
	if searchService == nil || !searchService.Enabled() {
		return nil
	}
	var challenges []entity.HouseChallenge
	if err := db.WithContext(ctx).Find(&challenges).Error; err != nil {
		return err
	}
	if err := searchService.IndexChallenges(challenges); err != nil {
		return fmt.Errorf("index challenges: %w", err)
	}
	logger.L().Info("challenges indexed", zap.Int("count", len(challenges)))
	return nil
}
