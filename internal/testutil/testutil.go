// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
	"octofit.app/tracker/pkg/database"
)

// NewDB opens an in-memory sqlite database with every model migrated. A single
// connection keeps the in-memory schema alive for the whole test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Type:         "sqlite",
		Path:         ":memory:",
		LogLevel:     "silent",
		MaxOpenConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entity.All()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewFileDB opens a file-backed sqlite database with a connection pool, for
// tests that exercise concurrent writers.
func NewFileDB(t *testing.T, maxOpenConns int) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "octofit.db") + "?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	db, err := database.Open(database.Config{
		Type:         "sqlite",
		Path:         path,
		LogLevel:     "silent",
		MaxOpenConns: maxOpenConns,
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entity.All()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// IsBusy reports whether err is sqlite lock contention that a caller may retry.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// NewRedis starts a miniredis server bound to the test lifetime.
func NewRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

// CreateHouse inserts a house with the given challenges (XP 10 each).
func CreateHouse(t *testing.T, db *gorm.DB, name string, challenges ...string) *entity.House {
	t.Helper()

	house := &entity.House{Name: name, Mascot: "🐙", Color: "#000000"}
	require.NoError(t, db.Omit("Challenges", "Badges", "Activities").Create(house).Error)
	for _, d := range challenges {
		require.NoError(t, db.Create(&entity.HouseChallenge{HouseID: house.ID, Description: d, XP: 10}).Error)
	}
	return house
}

// CreateUser inserts a user with a profile, optionally in house.
func CreateUser(t *testing.T, db *gorm.DB, username string, house *entity.House) *entity.User {
	t.Helper()

	user := &entity.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, db.Omit("Profile").Create(user).Error)

	profile := &entity.Profile{UserID: user.ID, BotPersona: entity.PersonaArnold, EmailReminders: true}
	if house != nil {
		id := house.ID
		profile.HouseID = &id
	}
	require.NoError(t, db.Omit("House").Create(profile).Error)
	user.Profile = profile
	return user
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// NewID is a fresh random id for lookups that must miss.
func NewID() uuid.UUID {
	return uuid.New()
}
