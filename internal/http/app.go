// Package http holds the contract between the router and the domain modules
// that mount routes on it.
package http

import (
	"context"
	"net/http"

	"rivo_backend/internal/events"
	"rivo_backend/platform/config"
	"rivo_backend/platform/httpkit"
	"rivo_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker backs /api/health; a Ping error reports the API as unavailable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// MetricsProvider instruments requests and serves the scrape endpoint.
type MetricsProvider interface {
	Middleware() gin.HandlerFunc
	Handler() http.Handler
}

// App is what cmd/api hands to router.New once every dependency is built.
// Metrics may be nil, in which case /metrics is not mounted.
type App struct {
	Config   RouterConfig
	Logger   *logger.Logger
	Health   HealthChecker
	Metrics  MetricsProvider
	EventBus events.Bus
	Modules  []Module
}

// Module is a bounded context with HTTP routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext carries the route groups and shared middleware modules mount on.
type RouterContext struct {
	Engine *gin.Engine
	// V1 is /api/v1 without authentication.
	V1 *gin.RouterGroup
	// Protected is /api/v1 behind AuthRequired.
	Protected *gin.RouterGroup
	// Admin is /api/v1/admin, requiring the admin role.
	Admin           *gin.RouterGroup
	Config          config.JWTConfig
	AuthMiddleware  gin.HandlerFunc
	AuthRateLimiter *httpkit.AuthRateLimiter
}
