package di

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"crm-service/cmd/api/infrastructure"
	"crm-service/internal/adapter/cache"
	"crm-service/internal/adapter/db/postgres"
	ginhandler "crm-service/internal/adapter/gin/handler"
	"crm-service/internal/adapter/gin/middleware"
	"crm-service/internal/adapter/gin/router"
	"crm-service/internal/adapter/repository/cached"
	"crm-service/internal/config"
	"crm-service/internal/usecase/auth"
	"crm-service/internal/usecase/client"
	"crm-service/internal/usecase/company"
	redisclient "crm-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	AuthUC      *auth.Usecase
	ClientUC    *client.Usecase
	CompanyUC   *company.Usecase
	Router      router.Dependencies
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	// Repositories
	companyRepo := postgres.NewCompanyRepoPG(db, l)
	userRepo := postgres.NewUserRepoPG(db, l)
	var clientRepo client.Repository = postgres.NewClientRepoPG(db, l)

	checks := map[string]router.Checker{"database": infrastructure.PingDatabase(db)}

	// A nil interface, not a typed nil pointer, disables the rate limiter.
	var universal redis.UniversalClient
	if rdb != nil {
		universal = rdb
		clientCache := cache.NewRedisClientCache(rdb, cfg.Redis.CacheTTL, l)
		clientRepo = cached.NewClientRepository(clientRepo, clientCache, l)
		checks["redis"] = rdb.Check
	}

	// Use cases
	authUC := auth.New(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, l)
	currentUser := auth.ContextUser{}
	clientUC := client.New(clientRepo, client.NewValidator(companyRepo, l), currentUser, l)
	companyUC := company.New(companyRepo, currentUser, l)

	deps := router.Dependencies{
		ClientHandler:  ginhandler.NewClientHandler(clientUC, l),
		CompanyHandler: ginhandler.NewCompanyHandler(companyUC, l),
		AuthHandler:    ginhandler.NewAuthHandler(authUC, l),
		Tokens:         authUC,
		RateLimit: middleware.RateLimitConfig{
			Enabled:           cfg.RateLimit.Enabled,
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		},
		Redis:  universal,
		Checks: checks,
		Logger: l,
	}

	return &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		RedisClient: rdb,
		AuthUC:      authUC,
		ClientUC:    clientUC,
		CompanyUC:   companyUC,
		Router:      deps,
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
