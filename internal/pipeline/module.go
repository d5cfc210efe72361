// Package pipeline provides the mortgage pipeline bounded context: leads,
// clients, cases, their attachments and the activity log.
// This file defines the module that wires the context and registers its routes.
package pipeline

import (
	"rivo_backend/internal/events"
	apphttp "rivo_backend/internal/http"
	"rivo_backend/internal/pipeline/handler"
	"rivo_backend/internal/pipeline/ports"
	"rivo_backend/internal/pipeline/repository"
	"rivo_backend/internal/pipeline/service"
	"rivo_backend/internal/pipeline/transport"
	"rivo_backend/platform/config"
	"rivo_backend/platform/logger"
	"rivo_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps are the collaborators the module needs from the composition root.
// Files, Cleanup and Observer may be nil.
type Deps struct {
	Pool     *pgxpool.Pool
	Bus      events.Bus
	Val      *validator.Validator
	Cfg      *config.Config
	Log      *logger.Logger
	Files    ports.FileStorage
	Cleanup  ports.CleanupScheduler
	Observer ports.TransitionObserver
	// PhoneRegion supplies the runtime default phone region.
	PhoneRegion func() string
}

// Module is the pipeline bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the pipeline module.
func NewModule(d Deps) (*Module, error) {
	if err := transport.RegisterValidations(d.Val); err != nil {
		return nil, err
	}

	repo := repository.New(d.Pool, d.Cfg.GetLockTimeout(), d.Log)
	svc := service.New(service.Deps{
		Store:    repo,
		Files:    d.Files,
		Cleanup:  d.Cleanup,
		Observer: d.Observer,
		Bus:      d.Bus,
		Log:      d.Log,
		Buckets: service.Buckets{
			Documents: d.Cfg.GetMinioBucketClientDocuments(),
			BankForms: d.Cfg.GetMinioBucketCaseBankForms(),
		},
		MaxFileSize: d.Cfg.GetMinIOMaxFileSize(),
		PhoneRegion: d.PhoneRegion,
	})

	return &Module{
		handler: handler.New(svc, d.Val),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "pipeline"
}

// Service returns the pipeline service for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts pipeline routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
