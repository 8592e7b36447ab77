package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Chandrasura25/Social-media-backend-case-study/config"
	"github.com/Chandrasura25/Social-media-backend-case-study/controllers"
	"github.com/Chandrasura25/Social-media-backend-case-study/middleware"
	"github.com/Chandrasura25/Social-media-backend-case-study/notify"
	"github.com/Chandrasura25/Social-media-backend-case-study/services"
	"github.com/Chandrasura25/Social-media-backend-case-study/stores"
	"github.com/Chandrasura25/Social-media-backend-case-study/utils"
)

// Dependencies are the long-lived collaborators main builds once.
type Dependencies struct {
	DB       *gorm.DB
	Cache    utils.Cache
	Notifier services.Notifier
	Hub      *notify.Hub
	Media    utils.MediaStore
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(deps Dependencies) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	if deps.Cache == nil {
		deps.Cache = utils.NewMemoryCache()
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		utils.Sugar.Warnf("gin logger unavailable, using default recovery: %v", err)
		r.Use(gin.Recovery())
	}
	r.Use(middleware.SecureHeaders())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-Cache"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		// browsers reject credentials with a wildcard origin
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	if deps.Media != nil && strings.HasPrefix(cfg.MediaBaseURL, "/") {
		r.Static(cfg.MediaBaseURL, cfg.MediaDir)
	}

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	userStore := stores.NewUserStore(deps.DB)
	postStore := stores.NewPostStore(deps.DB)
	notificationStore := stores.NewNotificationStore(deps.DB)

	accounts := services.NewAccountService(userStore, time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	engagement := services.NewEngagementService(userStore, postStore, deps.Notifier, deps.Cache)

	authController := controllers.NewAuthController(accounts)
	postController := controllers.NewPostController(engagement, deps.Media)
	followController := controllers.NewFollowController(engagement)
	statsController := controllers.NewStatsController(engagement)
	var subscriber controllers.Subscriber
	if deps.Hub != nil {
		subscriber = deps.Hub
	}
	notificationController := controllers.NewNotificationController(notificationStore, subscriber)

	auth := middleware.AuthRequired()
	authLimit := middleware.RateLimitMiddleware()
	writeLimit := middleware.RateLimitMiddleware()

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	var postsCache, feedCache gin.HandlerFunc = passThrough, passThrough
	if cfg.CacheEnabled {
		postsCache = middleware.CacheResponse(deps.Cache, cacheTTL, middleware.PostsCacheKey)
		feedCache = middleware.CacheResponse(deps.Cache, cacheTTL, middleware.FeedCacheKey)
	}

	r.POST("/register", authLimit, authController.Register)
	r.POST("/login", authLimit, authController.Login)
	r.POST("/logout", auth, authController.Logout)
	r.GET("/me", auth, authController.Me)

	r.GET("/posts", postsCache, postController.ListPosts)
	r.POST("/posts", auth, writeLimit, postController.CreatePost)
	r.GET("/posts/:userId", auth, postController.ListUserPosts)
	r.GET("/feed", auth, feedCache, postController.Feed)
	r.POST("/posts/like/:postId", auth, writeLimit, postController.Like)
	r.POST("/posts/unlike/:postId", auth, writeLimit, postController.Unlike)
	r.POST("/posts/comment/:postId", auth, writeLimit, postController.Comment)
	r.GET("/post/:postId", postController.GetPost)
	r.GET("/post/:postId/comments", postController.Comments)

	r.POST("/follow/:userIdToFollow", auth, writeLimit, followController.Follow)
	r.POST("/unfollow/:userIdToUnfollow", auth, writeLimit, followController.Unfollow)
	r.GET("/users/:userId/followers", followController.Followers)
	r.GET("/users/:userId/following", followController.Following)

	r.GET("/notifications", auth, notificationController.List)
	r.GET("/notifications/stream", auth, notificationController.Stream)
	r.POST("/notifications/:id/read", auth, notificationController.MarkRead)

	r.GET("/stats", statsController.GetStats)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, "Route not found")
	})

	return r
}

func passThrough(ctx *gin.Context) { ctx.Next() }
