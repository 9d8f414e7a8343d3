package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialnet/pkg/cache"
	"socialnet/pkg/config"
	"socialnet/pkg/database"
	"socialnet/pkg/jwt"
	"socialnet/pkg/logger"
	"socialnet/pkg/metrics"
	"socialnet/pkg/queue"
	"socialnet/pkg/s3"
	publicationHTTP "socialnet/services/publication/internal/controller/http"
	"socialnet/services/publication/internal/repo/persistent"
	"socialnet/services/publication/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	_ "socialnet/services/publication/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	mongoClient *mongo.Client
	redisClient *redis.Client
	s3Client    *s3.Client
	jwtService  *jwt.Service
	queueClient *queue.Client
	httpServer  *http.Server

	publicationRepo persistent.PublicationRepository
	followRepo      persistent.FollowRepository
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()
	a := &App{
		cfg:        cfg,
		log:        log,
		jwtService: jwt.NewService(cfg.JWTSecret),
	}

	if err := a.openStore(); err != nil {
		log.Error("Failed to open %s store: %v", cfg.StoreDriver, err)
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Warn("Failed to connect to redis: %v (continuing without follow cache and rate limit)", err)
		redisClient = nil
	}
	a.redisClient = redisClient

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Error("Failed to create S3 client: %v", err)
		a.closeStore()
		return nil, err
	}
	a.s3Client = s3Client

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Warn("Failed to connect to RabbitMQ: %v (continuing without queue)", err)
		queueClient = nil
	}
	a.queueClient = queueClient

	return a, nil
}

func (a *App) openStore() error {
	switch a.cfg.StoreDriver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgresDB(a.cfg)
		if err != nil {
			return err
		}
		a.db = db
		a.publicationRepo = persistent.NewPublicationRepository(db)
		a.followRepo = persistent.NewFollowRepository(db)
	case config.StoreDriverMongo:
		client, db, err := database.NewMongoDB(a.cfg)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := persistent.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return err
		}
		a.mongoClient = client
		a.publicationRepo = persistent.NewMongoPublicationRepository(db)
		a.followRepo = persistent.NewMongoFollowRepository(db)
	case config.StoreDriverMemory:
		store := persistent.NewMemoryStore()
		a.publicationRepo = store
		a.followRepo = store
	default:
		return fmt.Errorf("unknown store driver %q", a.cfg.StoreDriver)
	}
	return nil
}

func (a *App) Run() error {
	followRepo := persistent.NewCachedFollowRepository(
		a.followRepo,
		a.redisClient,
		time.Duration(a.cfg.FollowCacheTTLSeconds)*time.Second,
		a.log,
	)

	// A nil *queue.Client must not reach the usecase as a non-nil interface.
	var publisher usecase.EventPublisher
	if a.queueClient != nil {
		publisher = a.queueClient
	}

	publicationUseCase := usecase.NewPublicationUseCase(
		a.publicationRepo,
		followRepo,
		a.s3Client,
		publisher,
		a.log,
	)

	publicationHandler := publicationHTTP.NewPublicationHandler(publicationUseCase, a.log)

	var serviceMetrics *metrics.Metrics
	if a.cfg.MetricsEnabled {
		serviceMetrics = metrics.New("publication")
	}

	gin.SetMode(gin.ReleaseMode)
	r := publicationHTTP.NewRouter(publicationHandler, a.jwtService, a.redisClient, a.log, publicationHTTP.RouterConfig{
		AllowOrigins:       a.cfg.CORSAllowOrigins,
		RateLimitPerMinute: a.cfg.RateLimitPerMinute,
		Metrics:            serviceMetrics,
	})

	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	go func() {
		a.log.Info("Publication service starting on port %s (store: %s)", a.cfg.ServerPort, a.cfg.StoreDriver)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

func (a *App) Wait() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down publication service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Stop accepting requests before the backends go away.
	var shutdownErr error
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.log.Error("Server forced to shutdown: %v", err)
			shutdownErr = err
		}
	}

	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	a.closeStore()

	a.log.Info("Publication service exited")
	return shutdownErr
}

func (a *App) closeStore() {
	if a.db != nil {
		sqlDB, err := a.db.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				a.log.Error("Error closing database: %v", err)
			}
		}
	}

	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(context.Background()); err != nil {
			a.log.Error("Error closing MongoDB: %v", err)
		}
	}
}
