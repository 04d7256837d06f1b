package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"octofit.app/tracker/internal/agent"
	"octofit.app/tracker/internal/agent/agents"
	"octofit.app/tracker/internal/agent/providers"
	"octofit.app/tracker/internal/bootstrap"
	"octofit.app/tracker/internal/config"
	searchService "octofit.app/tracker/internal/modules/search/service"
	userRepo "octofit.app/tracker/internal/modules/user/repository"
	"octofit.app/tracker/internal/server"
	"octofit.app/tracker/pkg/database"
	"octofit.app/tracker/pkg/logger"
	"octofit.app/tracker/pkg/mailer"
	"octofit.app/tracker/pkg/storage"
	"octofit.app/tracker/pkg/validator"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.Init(cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	logger.Set(zl)
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)
	if err := validator.Register(); err != nil {
		zl.Fatal("failed to register validators", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.Database, zl)
	if err != nil {
		zl.Fatal("failed to connect database", zap.Error(err))
	}
	if err := bootstrap.Migrate(db); err != nil {
		zl.Fatal("migration failed", zap.Error(err))
	}
	if err := bootstrap.Seed(ctx, db, bootstrap.SeedConfig{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	}); err != nil {
		zl.Fatal("seed failed", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			zl.Warn("redis unreachable, running without redis", zap.Error(err))
			_ = redisClient.Close()
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	} else {
		zl.Warn("REDIS_ADDR not set, running without redis")
	}

	deps := server.Deps{DB: db, Redis: redisClient}

	gemini, err := providers.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		zl.Warn("gemini unavailable, coach will use fallbacks", zap.Error(err))
	}
	if gemini != nil {
		deps.LLM = gemini
		defer gemini.Close()
	}

	if imageStorage, err := storage.NewCloudinaryStorage(cfg.CloudinaryURL); err != nil {
		zl.Warn("cloudinary unavailable, uploads disabled", zap.Error(err))
	} else {
		deps.ImageStorage = imageStorage
	}

	var meili meilisearch.ServiceManager
	if cfg.MeiliSearchHost != "" {
		meili = meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	}
	deps.Search = searchService.NewSearchService(meili)
	if err := bootstrap.ReindexChallenges(ctx, db, deps.Search); err != nil {
		zl.Warn("challenge reindex failed", zap.Error(err))
	}

	scheduler := agent.NewScheduler()
	reminder := agents.NewReminderAgent(userRepo.NewUserRepository(db), mailer.NewSMTPMailer(cfg.SMTP), redisClient, agents.ReminderConfig{
		Schedule:    cfg.ReminderSchedule,
		FrontendURL: cfg.FrontendURL,
	})
	if err := scheduler.RegisterAgent(reminder); err != nil {
		zl.Fatal("failed to register reminder agent", zap.Error(err))
	}
	scheduler.Start()
	deps.Agents = scheduler

	srv := server.NewServer(cfg, deps)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			zl.Error("server exited with error", zap.Error(err))
		}
	case <-ctx.Done():
		zl.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
	scheduler.Stop()
}
