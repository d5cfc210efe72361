package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rivo_backend/internal/adapters/storage"
	"rivo_backend/internal/auth"
	"rivo_backend/internal/email"
	"rivo_backend/internal/events"
	apphttp "rivo_backend/internal/http"
	"rivo_backend/internal/http/router"
	"rivo_backend/internal/metrics"
	"rivo_backend/internal/notification"
	"rivo_backend/internal/pipeline"
	"rivo_backend/internal/reference"
	"rivo_backend/internal/scheduler"
	"rivo_backend/internal/settings"
	"rivo_backend/platform/config"
	"rivo_backend/platform/db"
	"rivo_backend/platform/logger"
	"rivo_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 10 * time.Second

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc *storage.MinIOService, name, bucket string) {
	if err := withRetry(ctx, log, "ensure "+name+" bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var schemaVersion uint
	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		v, err := db.RunMigrations(ctx, cfg, cfg.MigrationsDir)
		if errors.Is(err, db.ErrDirtyMigration) {
			return backoffStop{err}
		}
		schemaVersion = v
		return err
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete", "version", schemaVersion)

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	settingsStore, err := settings.Load(cfg.GetSettingsFile())
	if err != nil {
		log.Error("failed to load settings", "error", err, "path", cfg.GetSettingsFile())
		panic("failed to load settings: " + err.Error())
	}
	settingsStore.WatchSIGHUP(ctx, log)

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()
	promMetrics := metrics.New()

	pipelineDeps := pipeline.Deps{
		Pool:        pool,
		Bus:         eventBus,
		Val:         val,
		Cfg:         cfg,
		Log:         log,
		Observer:    promMetrics,
		PhoneRegion: func() string { return settingsStore.Get().PhoneRegion },
	}

	if cfg.IsMinIOEnabled() {
		storageSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		ensureBucket(ctx, log, storageSvc, "client-documents", cfg.GetMinioBucketClientDocuments())
		ensureBucket(ctx, log, storageSvc, "case-bank-forms", cfg.GetMinioBucketCaseBankForms())
		pipelineDeps.Files = storageSvc
		log.Info(
			"storage service initialized",
			"clientDocumentsBucket", cfg.GetMinioBucketClientDocuments(),
			"caseBankFormsBucket", cfg.GetMinioBucketCaseBankForms(),
		)
	} else {
		log.Warn("MinIO not configured; attachment uploads disabled")
	}

	cleanupClient, closeCleanup := initCleanupScheduler(cfg, log)
	if closeCleanup != nil {
		defer closeCleanup()
	}
	if cleanupClient != nil {
		pipelineDeps.Cleanup = cleanupClient
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	pipelineModule, err := pipeline.NewModule(pipelineDeps)
	if err != nil {
		log.Error("failed to initialize pipeline module", "error", err)
		panic("failed to initialize pipeline module: " + err.Error())
	}

	notificationModule := notification.New(
		newSender(cfg, log),
		settingsStore,
		pipelineModule.Service(),
		cfg.GetCaseNotificationRecipients(),
		log,
	)
	notificationModule.RegisterHandlers(eventBus)

	authModule := auth.NewModule(pool, cfg, settingsStore, val, log)
	referenceModule := reference.NewModule(pool, val)
	settingsModule := settings.NewModule(settingsStore, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		Metrics:  promMetrics,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			pipelineModule,
			referenceModule,
			settingsModule,
			notificationModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Event streams never go idle; end them so Shutdown can drain.
	srv.RegisterOnShutdown(notificationModule.SSE().Close)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func newSender(cfg *config.Config, log *logger.Logger) email.Sender {
	if !cfg.GetEmailEnabled() {
		log.Warn("email disabled; case outcome mails will not be sent")
		return email.NoopSender{}
	}
	return email.NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

func initCleanupScheduler(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; orphaned files will not be cleaned up")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize cleanup scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

// backoffStop marks an error withRetry must not retry.
type backoffStop struct{ err error }

func (b backoffStop) Error() string { return b.err.Error() }

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn()
		if err == nil {
			return nil
		}
		var permanent backoffStop
		if errors.As(err, &permanent) {
			return fmt.Errorf("%s: %w", name, permanent.err)
		}
		lastErr = err
		log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
