package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/agent/providers"
	"octofit.app/tracker/internal/config"
	"octofit.app/tracker/internal/middleware"
	"octofit.app/tracker/pkg/cache"
	"octofit.app/tracker/pkg/logger"
	"octofit.app/tracker/pkg/storage"

	activityHttp "octofit.app/tracker/internal/modules/activity/delivery/http"
	activityRepo "octofit.app/tracker/internal/modules/activity/repository"
	activityService "octofit.app/tracker/internal/modules/activity/service"

	adminHttp "octofit.app/tracker/internal/modules/admin/delivery/http"
	adminService "octofit.app/tracker/internal/modules/admin/service"

	awardHttp "octofit.app/tracker/internal/modules/award/delivery/http"
	awardRepo "octofit.app/tracker/internal/modules/award/repository"
	awardService "octofit.app/tracker/internal/modules/award/service"

	challengeHttp "octofit.app/tracker/internal/modules/challenge/delivery/http"
	challengeRepo "octofit.app/tracker/internal/modules/challenge/repository"
	challengeService "octofit.app/tracker/internal/modules/challenge/service"

	coachHttp "octofit.app/tracker/internal/modules/coach/delivery/http"
	coachRepo "octofit.app/tracker/internal/modules/coach/repository"
	coachService "octofit.app/tracker/internal/modules/coach/service"

	feedHttp "octofit.app/tracker/internal/modules/feed/delivery/http"
	feedRepo "octofit.app/tracker/internal/modules/feed/repository"
	feedService "octofit.app/tracker/internal/modules/feed/service"

	houseHttp "octofit.app/tracker/internal/modules/house/delivery/http"
	houseRepo "octofit.app/tracker/internal/modules/house/repository"
	houseService "octofit.app/tracker/internal/modules/house/service"

	leaderboardHttp "octofit.app/tracker/internal/modules/leaderboard/delivery/http"
	leaderboardRepo "octofit.app/tracker/internal/modules/leaderboard/repository"
	leaderboardService "octofit.app/tracker/internal/modules/leaderboard/service"

	notifHttp "octofit.app/tracker/internal/modules/notification/delivery/http"
	notifRepo "octofit.app/tracker/internal/modules/notification/repository"
	notifService "octofit.app/tracker/internal/modules/notification/service"

	photoHttp "octofit.app/tracker/internal/modules/photo/delivery/http"
	photoRepo "octofit.app/tracker/internal/modules/photo/repository"
	photoService "octofit.app/tracker/internal/modules/photo/service"

	profileHttp "octofit.app/tracker/internal/modules/profile/delivery/http"
	profileRepo "octofit.app/tracker/internal/modules/profile/repository"
	profileService "octofit.app/tracker/internal/modules/profile/service"

	reactionHttp "octofit.app/tracker/internal/modules/reaction/delivery/http"
	reactionRepo "octofit.app/tracker/internal/modules/reaction/repository"
	reactionService "octofit.app/tracker/internal/modules/reaction/service"

	searchService "octofit.app/tracker/internal/modules/search/service"

	socialHttp "octofit.app/tracker/internal/modules/social/delivery/http"
	socialRepo "octofit.app/tracker/internal/modules/social/repository"
	socialService "octofit.app/tracker/internal/modules/social/service"

	statHttp "octofit.app/tracker/internal/modules/stat/delivery/http"
	statService "octofit.app/tracker/internal/modules/stat/service"

	userHttp "octofit.app/tracker/internal/modules/user/delivery/http"
	userRepo "octofit.app/tracker/internal/modules/user/repository"
	userService "octofit.app/tracker/internal/modules/user/service"
)

// Deps are the infrastructure clients built by main. Optional ones may be nil.
type Deps struct {
	DB           *gorm.DB
	Redis        *redis.Client
	LLM          providers.LLMProvider
	ImageStorage storage.ImageStorage
	Search       searchService.SearchService
	Agents       adminService.AgentRunner
}

type Server struct {
	engine      *gin.Engine
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	db := deps.DB
	redisClient := deps.Redis
	responseCache := cache.New(redisClient)

	// Repositories
	userRepository := userRepo.NewUserRepository(db)
	profileRepository := profileRepo.NewProfileRepository(db)
	houseRepository := houseRepo.NewHouseRepository(db)
	activityRepository := activityRepo.NewActivityRepository(db)
	challengeRepository := challengeRepo.NewChallengeRepository(db)
	awardRepository := awardRepo.NewAwardRepository(db)
	leaderboardRepository := leaderboardRepo.NewLeaderboardRepository(db)
	feedRepository := feedRepo.NewFeedRepository(db)
	reactionRepository := reactionRepo.NewReactionRepository(db)
	notificationRepository := notifRepo.NewNotificationRepository(db)
	coachRepository := coachRepo.NewCoachRepository(db)
	photoRepository := photoRepo.NewPhotoRepository(db)
	socialRepository := socialRepo.NewSocialRepository(db)

	// Services
	authSvc := userService.NewAuthService(userRepository, userService.Config{
		Secret:             cfg.JWTSecret,
		TokenTTL:           cfg.JWTTTL,
		GoogleClientID:     cfg.GoogleClientID,
		GoogleClientSecret: cfg.GoogleClientSecret,
		GoogleRedirectURL:  cfg.GoogleRedirectURL,
	})
	profileSvc := profileService.NewProfileService(userRepository, profileRepository, deps.ImageStorage)

	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient)
	feedSvc := feedService.NewFeedService(feedRepository, profileRepository, notificationSvc)
	reactionSvc := reactionService.NewReactionService(reactionRepository, feedRepository, redisClient, notificationSvc)

	evaluator := awardService.NewEvaluator(awardRepository, houseRepository, challengeRepository, profileRepository, activityRepository)
	awardSvc := awardService.NewAwardService(awardRepository)
	leaderboardSvc := leaderboardService.NewLeaderboardService(leaderboardRepository, responseCache, cfg.LeaderboardTTL)
	statSvc := statService.NewStatService(userRepository, profileRepository, activityRepository)

	challengeSvc := challengeService.NewChallengeService(db, challengeRepository, houseRepository, profileRepository,
		awardRepository, evaluator, deps.Search, responseCache, notificationSvc, feedSvc,
		challengeService.Config{SuggestionCooldown: cfg.SuggestionCooldown})

	coachSvc := coachService.NewCoachService(userRepository, profileRepository, houseRepository,
		activityRepository, coachRepository, deps.LLM, responseCache)

	houseSvc := houseService.NewHouseService(houseRepository, profileRepository, challengeSvc, awardSvc,
		leaderboardSvc, statSvc, feedSvc, coachSvc)

	activitySvc := activityService.NewActivityService(db, activityRepository, profileRepository, houseRepository,
		challengeRepository, evaluator, notificationSvc, feedSvc, coachSvc, leaderboardSvc)

	photoSvc := photoService.NewPhotoService(photoRepository, userRepository, deps.ImageStorage)
	socialSvc := socialService.NewSocialService(db, socialRepository, userRepository, notificationSvc)

	adminSvc := adminService.NewAdminService(db, houseRepository, challengeRepository, awardRepository,
		deps.Search, notificationSvc, deps.Agents)

	// Handlers
	authHandler := userHttp.NewAuthHandler(authSvc, cfg.FrontendURL)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)
	houseHandler := houseHttp.NewHouseHandler(houseSvc)
	leaderboardHandler := leaderboardHttp.NewLeaderboardHandler(leaderboardSvc)
	activityHandler := activityHttp.NewActivityHandler(activitySvc)
	challengeHandler := challengeHttp.NewChallengeHandler(challengeSvc)
	awardHandler := awardHttp.NewAwardHandler(awardSvc)
	statHandler := statHttp.NewStatHandler(statSvc)
	feedHandler := feedHttp.NewFeedHandler(feedSvc)
	reactionHandler := reactionHttp.NewReactionHandler(reactionSvc)
	notificationHandler := notifHttp.NewNotificationHandler(notificationSvc, redisClient, originChecker(cfg.AllowedOrigins))
	coachHandler := coachHttp.NewCoachHandler(coachSvc)
	photoHandler := photoHttp.NewPhotoHandler(photoSvc)
	socialHandler := socialHttp.NewSocialHandler(socialSvc)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger("/healthz"))

	s := &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
	router.GET("/healthz", s.health)

	authMiddleware := middleware.NewAuthMiddleware(userRepository, cfg.JWTSecret)
	coachLimiter := middleware.NewRateLimiter(cfg.CoachRatePerMinute)

	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/google", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)
	}
	api.GET("/houses", houseHandler.List)
	api.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
	api.GET("/leaderboard/houses/:id/members", leaderboardHandler.GetHouseMembers)
	api.GET("/users/count", statHandler.GetTotalUsers)

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/houses/:id/challenges", adminHandler.CreateChallenge)
			adminGroup.DELETE("/challenges/:id", adminHandler.DeleteChallenge)
			adminGroup.POST("/houses/:id/badges", adminHandler.CreateBadge)
			adminGroup.POST("/rewards", adminHandler.CreateReward)
			adminGroup.GET("/suggestions", adminHandler.ListSuggestions)
			adminGroup.POST("/suggestions/:id/review", adminHandler.ReviewSuggestion)
			adminGroup.POST("/agents/:name/run", adminHandler.RunAgent)
		}

		protected.GET("/auth/me", authHandler.Me)

		// Profile routes
		protected.GET("/profile", profileHandler.GetProfile)
		protected.PUT("/profile", profileHandler.UpdateProfile)
		protected.POST("/profile/avatar", profileHandler.UploadAvatar)
		protected.POST("/profile/onboarding", profileHandler.SaveOnboarding)
		protected.GET("/profile/checklist", profileHandler.GetChecklist)
		protected.PUT("/profile/checklist", profileHandler.SaveChecklist)

		// House routes
		protected.POST("/houses/join", houseHandler.Join)
		protected.GET("/houses/:name", houseHandler.Detail)

		// Activity routes
		protected.POST("/activities", activityHandler.Log)
		protected.GET("/activities", activityHandler.List)

		// Challenge routes
		protected.GET("/challenges", challengeHandler.List)
		protected.POST("/challenges/accept", challengeHandler.Accept)
		protected.POST("/challenges/complete", challengeHandler.Complete)
		protected.POST("/challenges/suggestions", challengeHandler.Suggest)
		protected.GET("/challenges/search", challengeHandler.Search)
		protected.GET("/challenges/latest", challengeHandler.Latest)

		// Award routes
		protected.GET("/badges", awardHandler.GetBadges)
		protected.GET("/rewards", awardHandler.GetRewards)

		// Stat routes
		protected.GET("/progress", statHandler.GetProgress)
		protected.GET("/analytics", statHandler.GetAnalytics)

		// Feed routes
		protected.GET("/feed", feedHandler.GetFeed)
		protected.POST("/feed/:id/comments", feedHandler.AddComment)
		protected.GET("/feed/:id/comments", feedHandler.ListComments)
		protected.POST("/feed/:id/reactions", reactionHandler.React)
		protected.GET("/feed/:id/reactions", reactionHandler.GetReactions)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.POST("/notifications/read", notificationHandler.MarkAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		// Coach routes
		coach := protected.Group("/coach")
		coach.Use(coachLimiter.Handler())
		{
			coach.POST("/message", coachHandler.Message)
			coach.POST("/ask", coachHandler.Ask)
			coach.GET("/tip", coachHandler.Tip)
			coach.GET("/recommendations", coachHandler.Recommendations)
			coach.GET("/feedback", coachHandler.Feedback)
			coach.GET("/history", coachHandler.History)
		}

		// Photo routes
		protected.POST("/photos", photoHandler.Upload)
		protected.GET("/photos", photoHandler.List)
		protected.DELETE("/photos/:id", photoHandler.Delete)

		// Friend and team routes
		protected.POST("/friends/send", socialHandler.SendFriendRequest)
		protected.POST("/friends/respond", socialHandler.RespondFriendRequest)
		protected.GET("/friends/requests", socialHandler.ListFriendRequests)
		protected.GET("/friends/list", socialHandler.ListFriends)
		protected.POST("/teams/create", socialHandler.CreateTeam)
		protected.POST("/teams/join", socialHandler.JoinTeam)
		protected.GET("/teams/list", socialHandler.ListTeams)
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.L().Info("http server listening", zap.String("addr", addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{"database": "ok", "redis": "disabled"}

	if sqlDB, err := s.db.DB(); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	} else if err := sqlDB.PingContext(ctx); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	if s.redisClient != nil {
		checks["redis"] = "ok"
		if err := s.redisClient.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	checks["status"] = "ok"
	if status != http.StatusOK {
		checks["status"] = "degraded"
	}
	c.JSON(status, checks)
}

func splitOrigins(allowedOrigins string) []string {
	var origins []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return origins
}

// originChecker accepts websocket upgrades from the CORS origins and from
// clients that send no Origin header.
func originChecker(allowedOrigins string) func(r *http.Request) bool {
	allowed := make(map[string]bool)
	for _, o := range splitOrigins(allowedOrigins) {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed["*"] || allowed[origin]
	}
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitOrigins(allowedOrigins),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
