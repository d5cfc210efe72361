package ports

import (
	"context"
	"io"
	"time"
)

// FileStorage stores attachment bodies.
type FileStorage interface {
	Upload(ctx context.Context, bucket, key, contentType string, reader io.Reader, size int64) error
	Delete(ctx context.Context, bucket, key string) error
	// DownloadURL returns a short-lived presigned URL for the object.
	DownloadURL(ctx context.Context, bucket, key string) (string, time.Time, error)
}

// CleanupScheduler retries deletions of stored files that failed inline.
type CleanupScheduler interface {
	EnqueueFileCleanup(ctx context.Context, bucket, key string) error
}

// TransitionObserver is told about every applied or rejected transition.
type TransitionObserver interface {
	TransitionApplied(entity, operation, to string)
	TransitionRejected(entity, operation string)
}
