package repository

import (
	"context"
	"errors"
	"fmt"

	"rivo_backend/internal/pipeline/domain"
	"rivo_backend/internal/pipeline/ports"

	"github.com/jackc/pgx/v5"
)

const clientColumns = `id, first_name, last_name, email, phone, residency_status, date_of_birth, nationality,
	employment_status, monthly_salary_cents, monthly_liabilities_cents, loan_amount_cents,
	estimated_property_value_cents, eligibility_status, estimated_dbr_bps, estimated_ltv_bps,
	max_loan_amount_cents, sub_source_id, campaign_id, converted_from_lead_id, status, status_reason,
	created_at, updated_at`

func scanClient(row pgx.Row) (domain.Client, error) {
	var c domain.Client
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.ResidencyStatus,
		&c.DateOfBirth, &c.Nationality, &c.EmploymentStatus, &c.MonthlySalaryCents,
		&c.MonthlyLiabilitiesCents, &c.LoanAmountCents, &c.EstimatedPropertyValueCents,
		&c.EligibilityStatus, &c.EstimatedDBRBps, &c.EstimatedLTVBps, &c.MaxLoanAmountCents,
		&c.SubSourceID, &c.CampaignID, &c.ConvertedFromLeadID, &c.Status, &c.StatusReason,
		&c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (q *queries) getClient(ctx context.Context, id int64, lock bool) (domain.Client, error) {
	query := "SELECT " + clientColumns + " FROM clients WHERE id = $1"
	if lock {
		query += " FOR UPDATE"
	}
	c, err := scanClient(q.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Client{}, notFound(domain.EntityClient)
	}
	if err != nil {
		return domain.Client{}, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

func (q *queries) GetClient(ctx context.Context, id int64) (domain.Client, error) {
	return q.getClient(ctx, id, false)
}

func (t *txQueries) LockClient(ctx context.Context, id int64) (domain.Client, error) {
	return t.getClient(ctx, id, true)
}

func (q *queries) ListClients(ctx context.Context, f ports.ClientFilter) ([]domain.Client, int, error) {
	var status, eligibility any
	if f.Status != nil {
		status = string(*f.Status)
	}
	if f.Eligibility != nil {
		eligibility = string(*f.Eligibility)
	}

	baseQuery := `
		FROM clients
		WHERE ($1::text IS NULL OR status = $1)
			AND ($2::text IS NULL OR eligibility_status = $2)
			AND ($3::text IS NULL OR first_name ILIKE $3 OR last_name ILIKE $3 OR email ILIKE $3 OR phone ILIKE $3)
	`
	args := []any{status, eligibility, searchPattern(f.Search)}

	var total int
	if err := q.q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	rows, err := q.q.Query(ctx, "SELECT "+clientColumns+" "+baseQuery+" ORDER BY created_at DESC, id DESC LIMIT $4 OFFSET $5",
		append(args, f.PageSize, f.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	items, err := collect(rows, scanClient)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan clients: %w", err)
	}
	return items, total, nil
}

func (t *txQueries) CreateClient(ctx context.Context, c *domain.Client) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO clients (
			first_name, last_name, email, phone, residency_status, date_of_birth, nationality,
			employment_status, monthly_salary_cents, monthly_liabilities_cents, loan_amount_cents,
			estimated_property_value_cents, eligibility_status, estimated_dbr_bps, estimated_ltv_bps,
			max_loan_amount_cents, sub_source_id, campaign_id, converted_from_lead_id, status, status_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id, created_at, updated_at`,
		c.FirstName, c.LastName, c.Email, c.Phone, c.ResidencyStatus, c.DateOfBirth, c.Nationality,
		c.EmploymentStatus, c.MonthlySalaryCents, c.MonthlyLiabilitiesCents, c.LoanAmountCents,
		c.EstimatedPropertyValueCents, c.EligibilityStatus, c.EstimatedDBRBps, c.EstimatedLTVBps,
		c.MaxLoanAmountCents, c.SubSourceID, c.CampaignID, c.ConvertedFromLeadID, c.Status, c.StatusReason,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (t *txQueries) SaveClient(ctx context.Context, c *domain.Client) error {
	err := t.q.QueryRow(ctx, `
		UPDATE clients SET
			first_name = $2, last_name = $3, email = $4, phone = $5, residency_status = $6,
			date_of_birth = $7, nationality = $8, employment_status = $9, monthly_salary_cents = $10,
			monthly_liabilities_cents = $11, loan_amount_cents = $12, estimated_property_value_cents = $13,
			eligibility_status = $14, estimated_dbr_bps = $15, estimated_ltv_bps = $16,
			max_loan_amount_cents = $17, sub_source_id = $18, campaign_id = $19, status = $20,
			status_reason = $21, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.ResidencyStatus,
		c.DateOfBirth, c.Nationality, c.EmploymentStatus, c.MonthlySalaryCents,
		c.MonthlyLiabilitiesCents, c.LoanAmountCents, c.EstimatedPropertyValueCents,
		c.EligibilityStatus, c.EstimatedDBRBps, c.EstimatedLTVBps,
		c.MaxLoanAmountCents, c.SubSourceID, c.CampaignID, c.Status,
		c.StatusReason,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound(domain.EntityClient)
	}
	if err != nil {
		return fmt.Errorf("failed to save client: %w", err)
	}
	return nil
}

// DeleteClient removes the client with its documents, cases and audit rows.
// Activity rows have no foreign key and are removed explicitly.
func (t *txQueries) DeleteClient(ctx context.Context, id int64) error {
	for _, table := range []string{"call_logs", "notes"} {
		_, err := t.q.Exec(ctx, `
			DELETE FROM `+table+`
			WHERE (entity_kind = 'client' AND entity_id = $1)
				OR (entity_kind = 'case' AND entity_id IN (SELECT id FROM cases WHERE client_id = $1))`, id)
		if err != nil {
			return fmt.Errorf("failed to delete client activity: %w", err)
		}
	}

	tag, err := t.q.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(domain.EntityClient)
	}
	return nil
}
