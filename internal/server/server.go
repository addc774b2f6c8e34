package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"mymemorycard.com/backend/internal/config"
	"mymemorycard.com/backend/internal/middleware"
	"mymemorycard.com/backend/internal/providers"
	"mymemorycard.com/backend/pkg/logger"
	"mymemorycard.com/backend/pkg/storage"
	"mymemorycard.com/backend/pkg/validator"

	adminHttp "mymemorycard.com/backend/internal/modules/admin/delivery/http"
	adminRepo "mymemorycard.com/backend/internal/modules/admin/repository"
	adminService "mymemorycard.com/backend/internal/modules/admin/service"

	collectionHttp "mymemorycard.com/backend/internal/modules/collection/delivery/http"
	collectionRepo "mymemorycard.com/backend/internal/modules/collection/repository"
	collectionService "mymemorycard.com/backend/internal/modules/collection/service"

	commentHttp "mymemorycard.com/backend/internal/modules/comment/delivery/http"
	commentRepo "mymemorycard.com/backend/internal/modules/comment/repository"
	commentService "mymemorycard.com/backend/internal/modules/comment/service"

	followHttp "mymemorycard.com/backend/internal/modules/follow/delivery/http"
	followRepo "mymemorycard.com/backend/internal/modules/follow/repository"
	followService "mymemorycard.com/backend/internal/modules/follow/service"

	gameHttp "mymemorycard.com/backend/internal/modules/game/delivery/http"
	gameRepo "mymemorycard.com/backend/internal/modules/game/repository"
	gameService "mymemorycard.com/backend/internal/modules/game/service"

	likeHttp "mymemorycard.com/backend/internal/modules/like/delivery/http"
	likeRepo "mymemorycard.com/backend/internal/modules/like/repository"
	likeService "mymemorycard.com/backend/internal/modules/like/service"

	memoryHttp "mymemorycard.com/backend/internal/modules/memory/delivery/http"
	memoryRepo "mymemorycard.com/backend/internal/modules/memory/repository"
	memoryService "mymemorycard.com/backend/internal/modules/memory/service"

	notiHttp "mymemorycard.com/backend/internal/modules/notification/delivery/http"
	notifRepo "mymemorycard.com/backend/internal/modules/notification/repository"
	notifService "mymemorycard.com/backend/internal/modules/notification/service"

	profileHttp "mymemorycard.com/backend/internal/modules/profile/delivery/http"
	profileRepo "mymemorycard.com/backend/internal/modules/profile/repository"
	profileService "mymemorycard.com/backend/internal/modules/profile/service"

	progressionHttp "mymemorycard.com/backend/internal/modules/progression/delivery/http"
	progressionRepo "mymemorycard.com/backend/internal/modules/progression/repository"
	progressionService "mymemorycard.com/backend/internal/modules/progression/service"

	reviewHttp "mymemorycard.com/backend/internal/modules/review/delivery/http"
	reviewRepo "mymemorycard.com/backend/internal/modules/review/repository"
	reviewService "mymemorycard.com/backend/internal/modules/review/service"

	searchHttp "mymemorycard.com/backend/internal/modules/search/delivery/http"
	searchService "mymemorycard.com/backend/internal/modules/search/service"

	userHttp "mymemorycard.com/backend/internal/modules/user/delivery/http"
	userRepo "mymemorycard.com/backend/internal/modules/user/repository"
	userService "mymemorycard.com/backend/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const msgRouteNotFound = "Route non trouvée"

type Server struct {
	cfg         *config.Config
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	progression progressionService.ProgressionService
}

// NewServer wires every module. redisClient may be nil: caching, rate limiting
// and realtime notifications are then disabled.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if err := validator.Register(); err != nil {
		return nil, err
	}

	var imageStorage storage.ImageStorage
	if cfg.CloudinaryEnabled() {
		s, err := storage.NewCloudinaryStorage(storage.CloudinaryOptions{
			URL:       cfg.CloudinaryURL,
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		})
		if err != nil {
			return nil, err
		}
		imageStorage = s
	} else {
		logger.Log.Info("cloudinary not configured, image uploads disabled")
	}

	var meiliClient meilisearch.ServiceManager
	if cfg.MeiliSearchHost != "" {
		host := cfg.MeiliSearchHost
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host + ":7700"
		}
		meiliClient = meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	} else {
		logger.Log.Info("MEILISEARCH_HOST not set, search disabled")
	}
	searchSvc := searchService.NewMeiliSearchService(meiliClient)

	var covers providers.CoverProvider
	if cfg.IGDBEnabled() {
		covers = providers.NewIGDBClient(providers.IGDBOptions{
			ClientID:     cfg.TwitchClientID,
			ClientSecret: cfg.TwitchClientSecret,
			TokenURL:     cfg.TwitchTokenURL,
			BaseURL:      cfg.IGDBBaseURL,
			TokenTTL:     cfg.IGDBTokenTTL,
			Timeout:      cfg.OutboundTimeout,
		})
	}
	catalog := providers.NewRawgClient(cfg.RawgBaseURL, cfg.RawgAPIKey, cfg.OutboundTimeout)

	userRepository := userRepo.NewUserRepository(db)
	authSvc := userService.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTTTL)
	authHandler := userHttp.NewAuthHandler(authSvc)

	// Notification Module
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient, cfg.AllowedOrigins)

	progressionSvc := progressionService.NewProgressionService(progressionRepo.NewProgressionRepository(db), notificationSvc)
	leaderboardHandler := progressionHttp.NewLeaderboardHandler(progressionSvc)

	statsRepository := profileRepo.NewStatsRepository(db)
	profileSvc := profileService.NewProfileService(userRepository, statsRepository, imageStorage)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	gameRepository := gameRepo.NewGameRepository(db)
	gameSvc := gameService.NewGameService(gameRepository, catalog, covers, redisClient)
	gameHandler := gameHttp.NewGameHandler(gameSvc)

	collectionSvc := collectionService.NewCollectionService(collectionRepo.NewCollectionRepository(db), gameRepository, gameSvc)
	collectionHandler := collectionHttp.NewCollectionHandler(collectionSvc)

	memoryRepository := memoryRepo.NewMemoryRepository(db)
	memorySvc := memoryService.NewMemoryService(memoryRepository, gameRepository, gameSvc, progressionSvc, searchSvc, redisClient, cfg.RateLimitContent)
	memoryHandler := memoryHttp.NewMemoryHandler(memorySvc)

	reviewRepository := reviewRepo.NewReviewRepository(db)
	reviewSvc := reviewService.NewReviewService(reviewRepository, gameRepository, gameSvc, progressionSvc, searchSvc, redisClient, cfg.RateLimitContent)
	reviewHandler := reviewHttp.NewReviewHandler(reviewSvc)

	likeSvc := likeService.NewLikeService(likeRepo.NewLikeRepository(db), userRepository, notificationSvc, redisClient)
	likeHandler := likeHttp.NewLikeHandler(likeSvc)

	commentRepository := commentRepo.NewCommentRepository(db)
	commentSvc := commentService.NewCommentService(commentRepository, notificationSvc, redisClient, cfg.RateLimitContent)
	commentHandler := commentHttp.NewCommentHandler(commentSvc)

	followSvc := followService.NewFollowService(followRepo.NewFollowRepository(db), userRepository, notificationSvc)
	followHandler := followHttp.NewFollowHandler(followSvc)

	searchHandler := searchHttp.NewSearchHandler(searchSvc)

	adminSvc := adminService.NewAdminService(
		adminRepo.NewAdminRepository(db),
		userRepository,
		statsRepository,
		memoryRepository,
		reviewRepository,
		commentRepository,
		likeSvc,
		searchSvc,
	)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": msgRouteNotFound, "requestedUrl": c.Request.URL.Path})
	})
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "MyMemoryCard API", "version": "1.0.0"})
	})

	authMiddleware := middleware.NewAuthMiddleware(userRepository, cfg.JWTSecret)
	requireAuth := authMiddleware.RequireAuth()
	optionalAuth := authMiddleware.OptionalAuth()

	auth := router.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
	}

	users := router.Group("/users")
	{
		users.GET("/me", requireAuth, profileHandler.GetCurrentProfile)
		users.PUT("/me", requireAuth, profileHandler.UpdateProfile)
		users.GET("/search", profileHandler.SearchUsers)
		users.GET("/:id", profileHandler.GetPublicProfile)
		users.GET("/:id/stats", profileHandler.GetUserStats)
	}

	games := router.Group("/games")
	{
		games.GET("", gameHandler.GetAllGames)
		games.GET("/count", gameHandler.GetTotalGamesCount)
		games.GET("/top", gameHandler.GetTopGames)
		games.GET("/trending", gameHandler.GetTrendingGames)
		games.GET("/search", gameHandler.SearchGames)
		games.GET("/:rawgId", gameHandler.GetGameDetails)
	}

	collections := router.Group("/collections")
	{
		collections.POST("", requireAuth, collectionHandler.AddGameToCollection)
		collections.GET("", requireAuth, collectionHandler.GetMyCollection)
		collections.GET("/user/:userId", collectionHandler.GetUserCollection)
		collections.GET("/game/:rawgId/status", requireAuth, collectionHandler.GetGameStatus)
		collections.PATCH("/:rawgId", requireAuth, collectionHandler.UpdateGameInCollection)
		collections.DELETE("/:rawgId", requireAuth, collectionHandler.RemoveGameFromCollection)
	}

	memories := router.Group("/memories")
	{
		memories.POST("", requireAuth, memoryHandler.CreateMemory)
		memories.GET("", optionalAuth, memoryHandler.GetMemories)
		memories.GET("/game/:rawgId", optionalAuth, memoryHandler.GetGameMemories)
		memories.GET("/user/:userId", optionalAuth, memoryHandler.GetUserMemories)
		memories.GET("/:id", optionalAuth, memoryHandler.GetMemory)
		memories.PUT("/:id", requireAuth, memoryHandler.UpdateMemory)
		memories.DELETE("/:id", requireAuth, memoryHandler.DeleteMemory)
	}

	reviews := router.Group("/reviews")
	{
		reviews.POST("", requireAuth, reviewHandler.CreateReview)
		reviews.GET("", optionalAuth, reviewHandler.GetReviews)
		reviews.GET("/game/:rawgId", optionalAuth, reviewHandler.GetGameReviews)
		reviews.GET("/user/:userId", optionalAuth, reviewHandler.GetUserReviews)
		reviews.GET("/:id", optionalAuth, reviewHandler.GetReview)
		reviews.PUT("/:id", requireAuth, reviewHandler.UpdateReview)
		reviews.DELETE("/:id", requireAuth, reviewHandler.DeleteReview)
	}

	likes := router.Group("/likes")
	{
		likes.POST("", requireAuth, likeHandler.Like)
		likes.DELETE("", requireAuth, likeHandler.Unlike)
		likes.POST("/toggle", requireAuth, likeHandler.Toggle)
		likes.GET("/:targetType/:targetId", likeHandler.GetLikes)
		likes.GET("/:targetType/:targetId/check", requireAuth, likeHandler.CheckLike)
	}

	comments := router.Group("/comments")
	{
		comments.POST("", requireAuth, commentHandler.CreateComment)
		comments.GET("/:targetType/:targetId", commentHandler.GetComments)
		comments.PUT("/:commentId", requireAuth, commentHandler.UpdateComment)
		comments.DELETE("/:commentId", requireAuth, commentHandler.DeleteComment)
	}

	follows := router.Group("/follows")
	{
		follows.POST("/:userId", requireAuth, followHandler.Follow)
		follows.DELETE("/:userId", requireAuth, followHandler.Unfollow)
		follows.GET("/:userId/followers", followHandler.GetFollowers)
		follows.GET("/:userId/following", followHandler.GetFollowing)
		follows.GET("/:userId/check", requireAuth, followHandler.CheckFollow)
	}

	notifications := router.Group("/notifications", requireAuth)
	{
		notifications.GET("", notificationHandler.GetNotifications)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
		notifications.PUT("/read-all", notificationHandler.MarkAllAsRead)
		notifications.PUT("/:id/read", notificationHandler.MarkAsRead)
		notifications.GET("/ws", notificationHandler.HandleWebSocket)
	}

	router.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
	router.GET("/search", searchHandler.Search)

	// Admin routes
	adminGroup := router.Group("/admin", requireAuth, authMiddleware.RequireAdmin())
	{
		adminGroup.GET("/stats", adminHandler.GetStats)
		adminGroup.GET("/users", adminHandler.GetUsers)
		adminGroup.GET("/users/:id", adminHandler.GetUserByID)
		adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)
		adminGroup.DELETE("/memories/:id", adminHandler.DeleteMemory)
		adminGroup.DELETE("/reviews/:id", adminHandler.DeleteReview)
		adminGroup.DELETE("/comments/:id", adminHandler.DeleteComment)
	}

	return &Server{
		cfg:         cfg,
		engine:      router,
		db:          db,
		redisClient: redisClient,
		progression: progressionSvc,
	}, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
// The experience worker runs for the same lifetime.
func (s *Server) Run(ctx context.Context, addr string) error {
	go s.progression.StartWorker(ctx, s.cfg.XPWorkerInterval)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.WithField("addr", addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Log.Info("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
