package http

import (
	"net/http"
	"time"

	"socialnet/pkg/jwt"
	"socialnet/pkg/logger"
	"socialnet/pkg/metrics"
	"socialnet/pkg/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterConfig struct {
	AllowOrigins       []string
	RateLimitPerMinute int
	// Metrics is optional; nil disables /metrics.
	Metrics *metrics.Metrics
}

// NewRouter mounts the publication routes under /api. redisClient may be nil,
// which disables rate limiting.
func NewRouter(handler *PublicationHandler, jwtService *jwt.Service, redisClient *redis.Client, log *logger.Logger, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), cfg.Metrics.Middleware())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if allowsAnyOrigin(cfg.AllowOrigins) {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowOrigins
		corsConfig.AllowCredentials = true
	}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	requireAuth := middleware.AuthMiddleware(jwtService)

	api := r.Group("/api/publication")
	api.Use(middleware.OptionalAuthMiddleware(jwtService))
	api.Use(middleware.RateLimitMiddleware(redisClient, cfg.RateLimitPerMinute, time.Minute, log))
	{
		api.GET("/test", handler.TestPublication)
		api.POST("", requireAuth, handler.CreatePublication)
		api.GET("/:id", handler.ShowPublication)
		api.DELETE("/:id", requireAuth, handler.DeletePublication)
		api.GET("/user/:id", handler.UserPublications)
		api.GET("/user/:id/:page", handler.UserPublications)
		api.GET("/feed", requireAuth, handler.Feed)
		api.GET("/feed/:page", requireAuth, handler.Feed)
		api.POST("/media/:id", requireAuth, handler.UploadMedia)
		api.GET("/media/:id", handler.ShowMedia)
	}

	return r
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return len(origins) == 0
}
