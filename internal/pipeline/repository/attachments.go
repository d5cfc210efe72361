package repository

import (
	"context"
	"errors"
	"fmt"

	"rivo_backend/internal/pipeline/domain"
	"rivo_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
)

// attachmentTable maps an attachment kind to its table and owner column.
func attachmentTable(kind domain.AttachmentKind) (table, ownerColumn string) {
	if kind.Owner == domain.EntityCase {
		return "bank_forms", "case_id"
	}
	return "documents", "client_id"
}

func attachmentColumns(ownerColumn string) string {
	return "id, " + ownerColumn + ", type, status, file_key, file_name, uploaded_at"
}

func scanAttachment(row pgx.Row) (domain.Attachment, error) {
	var a domain.Attachment
	err := row.Scan(&a.ID, &a.OwnerID, &a.Type, &a.Status, &a.FileKey, &a.FileName, &a.UploadedAt)
	return a, err
}

func (q *queries) ListAttachments(ctx context.Context, kind domain.AttachmentKind, ownerID int64) ([]domain.Attachment, error) {
	table, owner := attachmentTable(kind)
	rows, err := q.q.Query(ctx, "SELECT "+attachmentColumns(owner)+" FROM "+table+" WHERE "+owner+" = $1 ORDER BY id", ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", kind.Name, err)
	}
	items, err := collect(rows, scanAttachment)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %ss: %w", kind.Name, err)
	}
	return items, nil
}

func (t *txQueries) CreateAttachments(ctx context.Context, kind domain.AttachmentKind, items []domain.Attachment) error {
	for i := range items {
		if err := t.CreateAttachment(ctx, kind, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (t *txQueries) CreateAttachment(ctx context.Context, kind domain.AttachmentKind, a *domain.Attachment) error {
	table, owner := attachmentTable(kind)
	err := t.q.QueryRow(ctx, `
		INSERT INTO `+table+` (`+owner+`, type, status, file_key, file_name, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		a.OwnerID, a.Type, a.Status, a.FileKey, a.FileName, a.UploadedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", kind.Name, err)
	}
	return nil
}

func (t *txQueries) LockPlaceholder(ctx context.Context, kind domain.AttachmentKind, ownerID int64, typ string) (*domain.Attachment, error) {
	table, owner := attachmentTable(kind)
	a, err := scanAttachment(t.q.QueryRow(ctx,
		"SELECT "+attachmentColumns(owner)+" FROM "+table+" WHERE "+owner+" = $1 AND type = $2 ORDER BY id LIMIT 1 FOR UPDATE",
		ownerID, typ))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", kind.Name, err)
	}
	return &a, nil
}

func (t *txQueries) LockAttachment(ctx context.Context, kind domain.AttachmentKind, ownerID, id int64) (domain.Attachment, error) {
	table, owner := attachmentTable(kind)
	a, err := scanAttachment(t.q.QueryRow(ctx,
		"SELECT "+attachmentColumns(owner)+" FROM "+table+" WHERE id = $1 AND "+owner+" = $2 FOR UPDATE",
		id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Attachment{}, apperr.NotFound(kind.Name + " not found")
	}
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("failed to lock %s: %w", kind.Name, err)
	}
	return a, nil
}

func (t *txQueries) SaveAttachment(ctx context.Context, kind domain.AttachmentKind, a *domain.Attachment) error {
	table, _ := attachmentTable(kind)
	tag, err := t.q.Exec(ctx, `
		UPDATE `+table+` SET status = $2, file_key = $3, file_name = $4, uploaded_at = $5
		WHERE id = $1`,
		a.ID, a.Status, a.FileKey, a.FileName, a.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", kind.Name, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(kind.Name + " not found")
	}
	return nil
}

func (t *txQueries) DeleteAttachment(ctx context.Context, kind domain.AttachmentKind, id int64) error {
	table, _ := attachmentTable(kind)
	tag, err := t.q.Exec(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind.Name, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(kind.Name + " not found")
	}
	return nil
}
