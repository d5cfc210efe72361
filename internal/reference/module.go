// Package reference provides read access to the lookup tables the pipeline
// depends on: channels, sources, campaigns, bank products and EIBOR rates.
package reference

import (
	apphttp "rivo_backend/internal/http"
	"rivo_backend/internal/reference/handler"
	"rivo_backend/internal/reference/repository"
	"rivo_backend/internal/reference/service"
	"rivo_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the reference data module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the reference module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	svc := service.New(repository.New(pool))
	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "reference"
}

// RegisterRoutes mounts reference routes under /reference on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/reference"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
