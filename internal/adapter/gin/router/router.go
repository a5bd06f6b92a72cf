package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"crm-service/api/swagger"
	"crm-service/internal/adapter/gin/handler"
	"crm-service/internal/adapter/gin/middleware"
	"crm-service/internal/domain/user"
)

const swaggerDocPath = "/openapi/crm.swagger.json"

// Checker reports whether a dependency is reachable.
type Checker func(ctx context.Context) error

// Dependencies holds everything the router wires into routes.
type Dependencies struct {
	ClientHandler  *handler.ClientHandler
	CompanyHandler *handler.CompanyHandler
	AuthHandler    *handler.AuthHandler
	Tokens         middleware.TokenParser
	RateLimit      middleware.RateLimitConfig
	Redis          redis.UniversalClient // nil disables rate limiting
	Checks         map[string]Checker    // reported by /health
	Logger         *zap.Logger
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(d Dependencies) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(d.Logger))
	router.Use(middleware.Logger(d.Logger))
	router.Use(middleware.Metrics())

	router.GET("/health", health(d.Checks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET(swaggerDocPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", swagger.Document)
	})
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(swaggerDocPath))))

	api := router.Group("", middleware.RateLimiter(d.RateLimit, d.Redis, d.Logger))

	api.POST("/auth/login", d.AuthHandler.Login)

	authed := api.Group("", middleware.Authenticate(d.Tokens))
	{
		clients := authed.Group("/client")
		clients.GET("", middleware.RequireCapability(user.CapClientRead), d.ClientHandler.FindByName)
		clients.GET("/:id", middleware.RequireCapability(user.CapClientRead), d.ClientHandler.FindByID)
		clients.POST("", middleware.RequireCapability(user.CapClientCreate), d.ClientHandler.Create)
		clients.PUT("", middleware.RequireCapability(user.CapClientUpdate), d.ClientHandler.Update)
		clients.DELETE("/:id", middleware.RequireCapability(user.CapClientDelete), d.ClientHandler.Delete)

		companies := authed.Group("/company")
		companies.GET("", middleware.RequireCapability(user.CapCompanyRead), d.CompanyHandler.FindByName)
		companies.GET("/:id", middleware.RequireCapability(user.CapCompanyRead), d.CompanyHandler.FindByID)
		companies.POST("", middleware.RequireCapability(user.CapCompanyWrite), d.CompanyHandler.Create)
		companies.PUT("", middleware.RequireCapability(user.CapCompanyWrite), d.CompanyHandler.Update)
		companies.DELETE("/:id", middleware.RequireCapability(user.CapCompanyWrite), d.CompanyHandler.Delete)
	}

	return router
}

func health(checks map[string]Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		code := http.StatusOK
		status := "healthy"
		deps := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				deps[name] = err.Error()
				code = http.StatusServiceUnavailable
				status = "degraded"
				continue
			}
			deps[name] = "ok"
		}

		c.JSON(code, gin.H{
			"status":       status,
			"service":      "crm-service",
			"dependencies": deps,
		})
	}
}
