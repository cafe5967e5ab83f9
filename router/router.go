package router

import (
	"net/http"
	"time"

	"newsroom-cms/cache"
	"newsroom-cms/config"
	"newsroom-cms/handlers"
	"newsroom-cms/helper"
	"newsroom-cms/middleware"
	"newsroom-cms/models"
	"newsroom-cms/repositories"
	"newsroom-cms/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Dependencies are the long-lived collaborators the router is built from.
type Dependencies struct {
	DB     *gorm.DB
	Feed   cache.FeedCache
	Config *config.Config
	Log    zerolog.Logger
}

func New(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	feed := deps.Feed
	if feed == nil {
		feed = cache.NewNopFeedCache()
	}

	h := helper.NewHTTPHelper(deps.Log)
	tokens := services.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiration)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(deps.DB)
	articleRepo := repositories.NewArticleRepository(deps.DB)
	tagRepo := repositories.NewTagRepository(deps.DB)
	commentRepo := repositories.NewCommentRepository(deps.DB)

	// Initialize services
	authService := services.NewAuthService(userRepo, tokens)
	userService := services.NewUserService(userRepo)
	articleService := services.NewArticleService(articleRepo, tagRepo, feed, deps.Log)
	moderationService := services.NewModerationService(articleRepo, feed, deps.Log)
	tagService := services.NewTagService(tagRepo, feed, deps.Log)
	commentService := services.NewCommentService(commentRepo, articleRepo, deps.Log)
	uploadService := services.NewUploadService(cfg.Upload, cfg.App.PublicBaseURL, deps.Log)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, h)
	userHandler := handlers.NewUserHandler(userService, h)
	articleHandler := handlers.NewArticleHandler(articleService, moderationService, h)
	tagHandler := handlers.NewTagHandler(tagService, h)
	commentHandler := handlers.NewCommentHandler(commentService, h)
	uploadHandler := handlers.NewUploadHandler(uploadService, cfg.Upload.FormField, cfg.Upload.MaxSize, h)

	r := gin.New()
	r.Use(middleware.RequestLogger(deps.Log))
	r.Use(middleware.Recovery(deps.Log))
	r.Use(corsMiddleware(cfg.CORS))

	auth := middleware.AuthMiddleware(tokens, h)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	r.POST("/upload", auth, middleware.RequireRole(models.RoleWriter, h), uploadHandler.UploadImage)
	r.Static(cfg.Upload.PublicPath, cfg.Upload.Dir)

	v1 := r.Group("/api/v1")
	{
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
		}

		// Public routes (approved content only)
		public := v1.Group("/public")
		{
			public.GET("/articles", articleHandler.GetPublicArticles)
			public.GET("/articles/:id", articleHandler.GetPublicArticle)
			public.GET("/articles/:id/comments", commentHandler.GetComments)
			public.GET("/tags", tagHandler.GetTags)
			public.GET("/tags/trending", tagHandler.GetTrendingTags)
			public.GET("/tags/:id", tagHandler.GetTag)
		}

		protected := v1.Group("/")
		protected.Use(auth)
		{
			protected.GET("/profile", authHandler.GetProfile)

			articles := protected.Group("/articles")
			{
				articles.POST("", middleware.RequireRole(models.RoleWriter, h), articleHandler.CreateArticle)
				articles.GET("", articleHandler.GetArticles)
				articles.GET("/:id", articleHandler.GetArticle)
				articles.PUT("/:id", articleHandler.UpdateArticle)
				articles.PUT("/:id/tags", articleHandler.SetArticleTags)
				articles.DELETE("/:id", articleHandler.DeleteArticle)
				articles.GET("/:id/status", articleHandler.GetArticleStatus)
				articles.GET("/:id/validations", articleHandler.GetArticleValidations)
				articles.POST("/:id/approve", middleware.RequireRole(models.RoleEditor, h), articleHandler.ApproveArticle)
				articles.POST("/:id/reject", middleware.RequireRole(models.RoleEditor, h), articleHandler.RejectArticle)
				articles.POST("/:id/comments", commentHandler.CreateComment)
			}

			comments := protected.Group("/comments")
			{
				comments.POST("/:id/vote", commentHandler.VoteComment)
				comments.DELETE("/:id", commentHandler.DeleteComment)
			}

			tags := protected.Group("/tags")
			tags.Use(middleware.RequireRole(models.RoleAdmin, h))
			{
				tags.POST("", tagHandler.CreateTag)
				tags.PUT("/:id", tagHandler.UpdateTag)
				tags.DELETE("/:id", tagHandler.DeleteTag)
			}

			users := protected.Group("/users")
			users.Use(middleware.RequireRole(models.RoleAdmin, h))
			{
				users.GET("", userHandler.GetUsers)
				users.POST("", userHandler.CreateUser)
				users.PUT("/:id", userHandler.UpdateUser)
				users.DELETE("/:id", userHandler.DeleteUser)
			}
		}
	}

	return r
}

func corsMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		// Browsers refuse credentials with a wildcard origin.
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = origins
	}

	return cors.New(corsConfig)
}
