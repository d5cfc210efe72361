package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"rivo_backend/internal/pipeline/domain"
	"rivo_backend/internal/pipeline/ports"
	"rivo_backend/internal/pipeline/transport"
	"rivo_backend/platform/apperr"

	"github.com/google/uuid"
)

func (s *Service) ListAttachments(ctx context.Context, kind domain.AttachmentKind, ownerID int64) ([]transport.AttachmentResponse, error) {
	items, err := s.store.ListAttachments(ctx, kind, ownerID)
	if err != nil {
		return nil, err
	}
	return toAttachmentResponses(items), nil
}

// UploadAttachment stores a file and records it. A default type fills its
// placeholder and replaces any earlier file; "other" always adds a row.
// Storage failures fail this request only and never touch pipeline state.
func (s *Service) UploadAttachment(ctx context.Context, kind domain.AttachmentKind, ownerID int64, req transport.UploadRequest, body io.Reader) (transport.AttachmentResponse, error) {
	if s.files == nil {
		return transport.AttachmentResponse{}, apperr.Unavailable("file storage is not configured", nil)
	}
	if !kind.ValidType(req.Type) {
		return transport.AttachmentResponse{}, apperr.Validation(fmt.Sprintf("invalid %s type %q", kind.Name, req.Type))
	}
	if s.maxFileSize > 0 && req.Size > s.maxFileSize {
		return transport.AttachmentResponse{}, apperr.Validation(fmt.Sprintf("file exceeds the maximum size of %d bytes", s.maxFileSize))
	}

	bucket := s.buckets.For(kind)
	key := objectKey(kind, ownerID, req.FileName)
	if err := s.files.Upload(ctx, bucket, key, req.ContentType, body, req.Size); err != nil {
		s.log.WithContext(ctx).Error("attachment upload failed", "kind", kind.Name, "owner_id", ownerID, "error", err)
		return transport.AttachmentResponse{}, apperr.Internal("failed to store file", err)
	}

	var (
		saved    domain.Attachment
		replaced *string
	)
	err := s.store.WithinTx(ctx, func(tx ports.Tx) error {
		ref := domain.EntityRef{Kind: kind.Owner, ID: ownerID}
		if err := tx.LockEntity(ctx, ref); err != nil {
			return err
		}

		if kind.IsDefaultType(req.Type) {
			placeholder, err := tx.LockPlaceholder(ctx, kind, ownerID, req.Type)
			if err != nil {
				return err
			}
			if placeholder != nil {
				saved = *placeholder
				replaced = saved.AttachUpload(key, req.FileName, s.now())
				if err := tx.SaveAttachment(ctx, kind, &saved); err != nil {
					return err
				}
				return tx.Touch(ctx, ref)
			}
		}

		saved = domain.Attachment{OwnerID: ownerID, Type: req.Type}
		saved.AttachUpload(key, req.FileName, s.now())
		if err := tx.CreateAttachment(ctx, kind, &saved); err != nil {
			return err
		}
		return tx.Touch(ctx, ref)
	})
	if err != nil {
		s.removeFile(ctx, bucket, key)
		return transport.AttachmentResponse{}, err
	}

	if replaced != nil && *replaced != key {
		s.removeFile(ctx, bucket, *replaced)
	}
	return toAttachmentResponse(saved), nil
}

// DeleteAttachment removes an "other" attachment and resets a default-type
// one to its missing placeholder.
func (s *Service) DeleteAttachment(ctx context.Context, kind domain.AttachmentKind, ownerID, id int64) (*transport.AttachmentResponse, error) {
	var (
		a       domain.Attachment
		removed *string
		deleted bool
	)
	err := s.store.WithinTx(ctx, func(tx ports.Tx) error {
		var err error
		if a, err = tx.LockAttachment(ctx, kind, ownerID, id); err != nil {
			return err
		}
		removed = a.FileKey
		if !kind.IsDefaultType(a.Type) {
			deleted = true
			return tx.DeleteAttachment(ctx, kind, id)
		}
		a.Reset()
		return tx.SaveAttachment(ctx, kind, &a)
	})
	if err != nil {
		return nil, err
	}

	if removed != nil {
		s.removeFile(ctx, s.buckets.For(kind), *removed)
	}
	if deleted {
		return nil, nil
	}
	resp := toAttachmentResponse(a)
	return &resp, nil
}

func (s *Service) SetAttachmentStatus(ctx context.Context, kind domain.AttachmentKind, ownerID, id int64, status string) (transport.AttachmentResponse, error) {
	var a domain.Attachment
	err := s.store.WithinTx(ctx, func(tx ports.Tx) error {
		var err error
		if a, err = tx.LockAttachment(ctx, kind, ownerID, id); err != nil {
			return err
		}
		if !kind.ValidStatus(status) {
			return apperr.Validation(fmt.Sprintf("invalid %s status %q", kind.Name, status))
		}
		if err := a.SetStatus(kind, status); err != nil {
			return err
		}
		return tx.SaveAttachment(ctx, kind, &a)
	})
	if err != nil {
		return transport.AttachmentResponse{}, toAppError(err)
	}
	return toAttachmentResponse(a), nil
}

// AttachmentDownload returns a presigned URL for an attachment's file.
func (s *Service) AttachmentDownload(ctx context.Context, kind domain.AttachmentKind, ownerID, id int64) (transport.DownloadResponse, error) {
	if s.files == nil {
		return transport.DownloadResponse{}, apperr.Unavailable("file storage is not configured", nil)
	}
	items, err := s.store.ListAttachments(ctx, kind, ownerID)
	if err != nil {
		return transport.DownloadResponse{}, err
	}
	idx := slices.IndexFunc(items, func(a domain.Attachment) bool { return a.ID == id })
	if idx < 0 {
		return transport.DownloadResponse{}, apperr.NotFound(kind.Name + " not found")
	}
	a := items[idx]
	if a.FileKey == nil {
		return transport.DownloadResponse{}, apperr.NotFound("no file uploaded")
	}

	url, expiresAt, err := s.files.DownloadURL(ctx, s.buckets.For(kind), *a.FileKey)
	if err != nil {
		return transport.DownloadResponse{}, apperr.Internal("failed to generate download URL", err)
	}
	resp := transport.DownloadResponse{URL: url, ExpiresAt: expiresAt}
	if a.FileName != nil {
		resp.FileName = *a.FileName
	}
	return resp, nil
}

// removeFile deletes a stored file. Failures are logged and handed to the
// cleanup queue; they never fail the caller.
func (s *Service) removeFile(ctx context.Context, bucket, key string) {
	if s.files == nil || key == "" {
		return
	}
	err := s.files.Delete(ctx, bucket, key)
	if err == nil {
		return
	}
	log := s.log.WithContext(ctx)
	log.Warn("stored file delete failed", "bucket", bucket, "key", key, "error", err)
	if s.cleanup == nil {
		return
	}
	if err := s.cleanup.EnqueueFileCleanup(ctx, bucket, key); err != nil {
		log.Error("failed to enqueue file cleanup", "bucket", bucket, "key", key, "error", err)
	}
}

func objectKey(kind domain.AttachmentKind, ownerID int64, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("%s/%d/%s%s", kind.Owner, ownerID, uuid.New().String(), ext)
}
