package scheduler

import (
	"context"
	"fmt"

	"rivo_backend/platform/config"
	"rivo_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// FileDeleter removes stored objects.
type FileDeleter interface {
	Delete(ctx context.Context, bucket, key string) error
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	files  FileDeleter
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, files FileDeleter, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := newWorker(files, log)
	w.server = server
	return w, nil
}

func newWorker(files FileDeleter, log *logger.Logger) *Worker {
	w := &Worker{
		mux:   asynq.NewServeMux(),
		files: files,
		log:   log,
	}
	w.mux.HandleFunc(TaskFileCleanup, w.handleFileCleanup)
	return w
}

// Run processes tasks until ctx is cancelled, then drains in-flight work.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}

	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	<-ctx.Done()
	w.server.Shutdown()
	return nil
}

// handleFileCleanup returns the delete error so asynq retries with backoff.
// Malformed payloads are dropped.
func (w *Worker) handleFileCleanup(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFileCleanupPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.Bucket == "" || payload.Key == "" {
		return fmt.Errorf("%w: empty bucket or key", asynq.SkipRetry)
	}

	if err := w.files.Delete(ctx, payload.Bucket, payload.Key); err != nil {
		w.log.Warn("file cleanup failed", "bucket", payload.Bucket, "key", payload.Key, "error", err)
		return err
	}
	w.log.Info("file cleanup complete", "bucket", payload.Bucket, "key", payload.Key)
	return nil
}
