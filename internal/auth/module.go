// Package auth signs pipeline users in with the shared system password and
// serves the caller's own profile.
package auth

import (
	"rivo_backend/internal/auth/handler"
	"rivo_backend/internal/auth/repository"
	"rivo_backend/internal/auth/service"
	apphttp "rivo_backend/internal/http"
	"rivo_backend/platform/config"
	"rivo_backend/platform/logger"
	"rivo_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the user repository, the token-issuing service and its
// handlers. pw supplies the bcrypt hash of the system password at login time,
// so a settings reload takes effect without a restart.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, pw service.PasswordSource, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, pw, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

func (m *Module) Name() string { return "auth" }

func (m *Module) Service() *service.Service { return m.service }

// RegisterRoutes mounts /auth/login and /auth/logout behind the strict
// per-IP limiter, and /users/me on the protected group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("/auth", ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(public)

	ctx.Protected.GET("/users/me", m.handler.GetMe)
}

var _ apphttp.Module = (*Module)(nil)
