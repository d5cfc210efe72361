package repository

import (
	"context"
	"fmt"

	"rivo_backend/internal/pipeline/domain"

	"github.com/jackc/pgx/v5"
)

// Activity and audit rows are insert-only; nothing here updates or deletes.

func (t *txQueries) AddCallLog(ctx context.Context, l *domain.CallLog) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO call_logs (entity_kind, entity_id, outcome, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		l.Entity.Kind, l.Entity.ID, l.Outcome, l.Notes,
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add call log: %w", err)
	}
	return nil
}

func (t *txQueries) AddNote(ctx context.Context, n *domain.Note) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO notes (entity_kind, entity_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		n.Entity.Kind, n.Entity.ID, n.Content,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add note: %w", err)
	}
	return nil
}

func (q *queries) ListCallLogs(ctx context.Context, ref domain.EntityRef) ([]domain.CallLog, error) {
	rows, err := q.q.Query(ctx, `
		SELECT id, entity_kind, entity_id, outcome, notes, created_at
		FROM call_logs
		WHERE entity_kind = $1 AND entity_id = $2
		ORDER BY created_at DESC, id DESC`, ref.Kind, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list call logs: %w", err)
	}
	return collect(rows, func(row pgx.Row) (domain.CallLog, error) {
		var l domain.CallLog
		err := row.Scan(&l.ID, &l.Entity.Kind, &l.Entity.ID, &l.Outcome, &l.Notes, &l.CreatedAt)
		return l, err
	})
}

func (q *queries) ListNotes(ctx context.Context, ref domain.EntityRef) ([]domain.Note, error) {
	rows, err := q.q.Query(ctx, `
		SELECT id, entity_kind, entity_id, content, created_at
		FROM notes
		WHERE entity_kind = $1 AND entity_id = $2
		ORDER BY created_at DESC, id DESC`, ref.Kind, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return collect(rows, func(row pgx.Row) (domain.Note, error) {
		var n domain.Note
		err := row.Scan(&n.ID, &n.Entity.Kind, &n.Entity.ID, &n.Content, &n.CreatedAt)
		return n, err
	})
}

func (t *txQueries) AddLeadChange(ctx context.Context, c *domain.LeadStatusChange) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO lead_status_changes (lead_id, type, notes)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		c.LeadID, c.Type, c.Notes,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add lead status change: %w", err)
	}
	return nil
}

func (t *txQueries) AddClientChange(ctx context.Context, c *domain.ClientStatusChange) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO client_status_changes (client_id, type, notes)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		c.ClientID, c.Type, c.Notes,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add client status change: %w", err)
	}
	return nil
}

func (t *txQueries) AddCaseChange(ctx context.Context, c *domain.CaseStageChange) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO case_stage_changes (case_id, from_stage, to_stage, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		c.CaseID, c.FromStage, c.ToStage, c.Notes,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add case stage change: %w", err)
	}
	return nil
}

func (q *queries) ListLeadChanges(ctx context.Context, leadID int64) ([]domain.LeadStatusChange, error) {
	rows, err := q.q.Query(ctx, `
		SELECT id, lead_id, type, notes, created_at
		FROM lead_status_changes WHERE lead_id = $1
		ORDER BY created_at DESC, id DESC`, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lead status changes: %w", err)
	}
	return collect(rows, func(row pgx.Row) (domain.LeadStatusChange, error) {
		var c domain.LeadStatusChange
		err := row.Scan(&c.ID, &c.LeadID, &c.Type, &c.Notes, &c.CreatedAt)
		return c, err
	})
}

func (q *queries) ListClientChanges(ctx context.Context, clientID int64) ([]domain.ClientStatusChange, error) {
	rows, err := q.q.Query(ctx, `
		SELECT id, client_id, type, notes, created_at
		FROM client_status_changes WHERE client_id = $1
		ORDER BY created_at DESC, id DESC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list client status changes: %w", err)
	}
	return collect(rows, func(row pgx.Row) (domain.ClientStatusChange, error) {
		var c domain.ClientStatusChange
		err := row.Scan(&c.ID, &c.ClientID, &c.Type, &c.Notes, &c.CreatedAt)
		return c, err
	})
}

func (q *queries) ListCaseChanges(ctx context.Context, caseID int64) ([]domain.CaseStageChange, error) {
	rows, err := q.q.Query(ctx, `
		SELECT id, case_id, from_stage, to_stage, notes, created_at
		FROM case_stage_changes WHERE case_id = $1
		ORDER BY created_at DESC, id DESC`, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list case stage changes: %w", err)
	}
	return collect(rows, func(row pgx.Row) (domain.CaseStageChange, error) {
		var c domain.CaseStageChange
		err := row.Scan(&c.ID, &c.CaseID, &c.FromStage, &c.ToStage, &c.Notes, &c.CreatedAt)
		return c, err
	})
}
