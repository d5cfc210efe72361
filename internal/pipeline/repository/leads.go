package repository

import (
	"context"
	"errors"
	"fmt"

	"rivo_backend/internal/pipeline/domain"
	"rivo_backend/internal/pipeline/ports"

	"github.com/jackc/pgx/v5"
)

const leadColumns = `id, first_name, last_name, email, phone, sub_source_id, intent, transcript, status, created_at, updated_at`

func scanLead(row pgx.Row) (domain.Lead, error) {
	var l domain.Lead
	err := row.Scan(&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.SubSourceID,
		&l.Intent, &l.Transcript, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (q *queries) getLead(ctx context.Context, id int64, lock bool) (domain.Lead, error) {
	query := "SELECT " + leadColumns + " FROM leads WHERE id = $1"
	if lock {
		query += " FOR UPDATE"
	}
	l, err := scanLead(q.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, notFound(domain.EntityLead)
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("failed to get lead: %w", err)
	}
	return l, nil
}

func (q *queries) GetLead(ctx context.Context, id int64) (domain.Lead, error) {
	return q.getLead(ctx, id, false)
}

func (t *txQueries) LockLead(ctx context.Context, id int64) (domain.Lead, error) {
	return t.getLead(ctx, id, true)
}

func (q *queries) ListLeads(ctx context.Context, f ports.LeadFilter) ([]domain.Lead, int, error) {
	var status any
	if f.Status != nil {
		status = string(*f.Status)
	}
	var subSource any
	if f.SubSourceID != nil {
		subSource = *f.SubSourceID
	}

	baseQuery := `
		FROM leads
		WHERE ($1::text IS NULL OR status = $1)
			AND ($2::uuid IS NULL OR sub_source_id = $2)
			AND ($3::text IS NULL OR first_name ILIKE $3 OR last_name ILIKE $3 OR email ILIKE $3 OR phone ILIKE $3)
	`
	args := []any{status, subSource, searchPattern(f.Search)}

	var total int
	if err := q.q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	rows, err := q.q.Query(ctx, "SELECT "+leadColumns+" "+baseQuery+" ORDER BY created_at DESC, id DESC LIMIT $4 OFFSET $5",
		append(args, f.PageSize, f.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	items, err := collect(rows, scanLead)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan leads: %w", err)
	}
	return items, total, nil
}

func (q *queries) ConvertedClientID(ctx context.Context, leadID int64) (*int64, error) {
	var id int64
	err := q.q.QueryRow(ctx, `SELECT id FROM clients WHERE converted_from_lead_id = $1`, leadID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get converted client: %w", err)
	}
	return &id, nil
}

func (t *txQueries) CreateLead(ctx context.Context, l *domain.Lead) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO leads (first_name, last_name, email, phone, sub_source_id, intent, transcript, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		l.FirstName, l.LastName, l.Email, l.Phone, l.SubSourceID, l.Intent, l.Transcript, l.Status,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

func (t *txQueries) SaveLead(ctx context.Context, l *domain.Lead) error {
	err := t.q.QueryRow(ctx, `
		UPDATE leads SET
			first_name = $2, last_name = $3, email = $4, phone = $5, sub_source_id = $6,
			intent = $7, transcript = $8, status = $9, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		l.ID, l.FirstName, l.LastName, l.Email, l.Phone, l.SubSourceID, l.Intent, l.Transcript, l.Status,
	).Scan(&l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound(domain.EntityLead)
	}
	if err != nil {
		return fmt.Errorf("failed to save lead: %w", err)
	}
	return nil
}
