package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/config"
	"github.com/cppla/yatube/controllers"
	"github.com/cppla/yatube/middleware"
	"github.com/cppla/yatube/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, d controllers.Deps) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(utils.RequestID())
	// Access log goes to its own rolling file; without one, to the app logger.
	gl := utils.Logger
	if cfg.GinPath != "" {
		if fl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress); err == nil {
			gl = fl
		} else {
			utils.Sugar.Warnf("gin log file %s unavailable, using app logger: %v", cfg.GinPath, err)
		}
	}
	r.Use(utils.Ginzap(gl, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(gl, true))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", utils.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Location", utils.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		// Credentials cannot be combined with a wildcard origin.
		corsCfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.CurrentUser())

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(d)
	postController := controllers.NewPostController(d)
	groupController := controllers.NewGroupController(d)
	userController := controllers.NewUserController(d)
	statsController := controllers.NewStatsController(d.Store)

	login := middleware.LoginRequired()
	admin := middleware.AdminRequired()

	authGroup := r.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute))
	authGroup.POST("/signup", authController.Signup)
	authGroup.GET("/login/", authController.LoginPage)
	authGroup.POST("/login/", authController.Login)
	authGroup.POST("/logout", login, authController.Logout)

	api := r.Group("/api/v1")
	api.GET("/stats", statsController.GetStats)

	posts := api.Group("/posts")
	posts.GET("", postController.Index)
	posts.POST("", login, postController.Create)
	posts.GET("/:id", postController.View)
	posts.PUT("/:id/edit", login, postController.Edit)
	posts.POST("/:id/edit", login, postController.Edit)
	posts.POST("/:id/delete", login, postController.Delete)
	posts.DELETE("/:id/delete", login, postController.Delete)
	posts.POST("/:id/comments", login, postController.AddComment)
	posts.POST("/:id/like", login, postController.Like)
	posts.POST("/:id/unlike", login, postController.Unlike)

	groups := api.Group("/groups")
	groups.GET("", groupController.List)
	groups.GET("/:slug/posts", groupController.Posts)
	groups.POST("", login, admin, groupController.Create)
	groups.DELETE("/:slug", login, admin, groupController.Delete)

	api.GET("/feed", login, userController.FollowIndex)

	users := api.Group("/users")
	users.GET("/:username", userController.Profile)
	users.POST("/:username/follow", login, userController.Follow)
	users.POST("/:username/unfollow", login, userController.Unfollow)
	users.DELETE("/:username", login, admin, userController.Delete)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
