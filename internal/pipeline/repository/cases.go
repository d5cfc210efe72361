package repository

import (
	"context"
	"errors"
	"fmt"

	"rivo_backend/internal/pipeline/domain"
	"rivo_backend/internal/pipeline/ports"

	"github.com/jackc/pgx/v5"
)

const caseColumns = `c.id, c.case_number, c.client_id, c.case_type, c.service_type, c.application_type,
	c.mortgage_type, c.emirate, c.loan_amount_cents, c.transaction_type, c.mortgage_term_years,
	c.mortgage_term_months, c.estimated_property_value_cents, c.property_status, c.bank_name,
	c.rate_type, c.rate_percent_bps, c.fixed_period_years, c.stage, c.stage_reason,
	c.created_at, c.updated_at,
	COALESCE((SELECT array_agg(bank_product_id ORDER BY position) FROM case_bank_products WHERE case_id = c.id), '{}')`

func scanCase(row pgx.Row) (domain.Case, error) {
	var c domain.Case
	err := row.Scan(&c.ID, &c.CaseNumber, &c.ClientID, &c.CaseType, &c.ServiceType, &c.ApplicationType,
		&c.MortgageType, &c.Emirate, &c.LoanAmountCents, &c.TransactionType, &c.MortgageTermYears,
		&c.MortgageTermMonths, &c.EstimatedPropertyValueCents, &c.PropertyStatus, &c.BankName,
		&c.RateType, &c.RatePercentBps, &c.FixedPeriodYears, &c.Stage, &c.StageReason,
		&c.CreatedAt, &c.UpdatedAt, &c.BankProductIDs)
	return c, err
}

func (q *queries) getCase(ctx context.Context, id int64, lock bool) (domain.Case, error) {
	query := "SELECT " + caseColumns + " FROM cases c WHERE c.id = $1"
	if lock {
		query += " FOR UPDATE OF c"
	}
	c, err := scanCase(q.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Case{}, notFound(domain.EntityCase)
	}
	if err != nil {
		return domain.Case{}, fmt.Errorf("failed to get case: %w", err)
	}
	return c, nil
}

func (q *queries) GetCase(ctx context.Context, id int64) (domain.Case, error) {
	return q.getCase(ctx, id, false)
}

func (t *txQueries) LockCase(ctx context.Context, id int64) (domain.Case, error) {
	return t.getCase(ctx, id, true)
}

func terminalStageNames() []string {
	out := make([]string, len(domain.TerminalStages))
	for i, s := range domain.TerminalStages {
		out[i] = string(s)
	}
	return out
}

func (q *queries) ListCases(ctx context.Context, f ports.CaseFilter) ([]domain.Case, int, error) {
	var stage, terminal, clientID any
	if f.Stage != nil {
		stage = string(*f.Stage)
	}
	if f.Terminal != nil {
		terminal = *f.Terminal
	}
	if f.ClientID != nil {
		clientID = *f.ClientID
	}

	baseQuery := `
		FROM cases c
		JOIN clients cl ON cl.id = c.client_id
		WHERE ($1::text IS NULL OR c.stage = $1)
			AND ($2::boolean IS NULL OR (c.stage = ANY($3::text[])) = $2)
			AND ($4::bigint IS NULL OR c.client_id = $4)
			AND ($5::text IS NULL OR c.case_number ILIKE $5 OR cl.first_name ILIKE $5 OR cl.last_name ILIKE $5 OR c.bank_name ILIKE $5)
	`
	args := []any{stage, terminal, terminalStageNames(), clientID, searchPattern(f.Search)}

	var total int
	if err := q.q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count cases: %w", err)
	}

	rows, err := q.q.Query(ctx, "SELECT "+caseColumns+" "+baseQuery+" ORDER BY c.created_at DESC, c.id DESC LIMIT $6 OFFSET $7",
		append(args, f.PageSize, f.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cases: %w", err)
	}
	items, err := collect(rows, scanCase)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan cases: %w", err)
	}
	return items, total, nil
}

func (q *queries) ListClientCases(ctx context.Context, clientID int64) ([]domain.Case, error) {
	rows, err := q.q.Query(ctx, "SELECT "+caseColumns+" FROM cases c WHERE c.client_id = $1 ORDER BY c.created_at DESC, c.id DESC", clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list client cases: %w", err)
	}
	items, err := collect(rows, scanCase)
	if err != nil {
		return nil, fmt.Errorf("failed to scan client cases: %w", err)
	}
	return items, nil
}

// NextCaseNumber atomically advances the case number counter. The counter row
// stays locked until the enclosing transaction ends, so numbers are issued in
// commit order.
func (t *txQueries) NextCaseNumber(ctx context.Context) (int64, error) {
	var next int64
	err := t.q.QueryRow(ctx, `
		INSERT INTO case_number_counters (name, last_number)
		VALUES ('case', COALESCE((SELECT MAX(substring(case_number FROM 4)::bigint) FROM cases), 0) + 1)
		ON CONFLICT (name) DO UPDATE SET last_number = case_number_counters.last_number + 1
		RETURNING last_number`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to generate case number: %w", err)
	}
	return next, nil
}

func (t *txQueries) CreateCase(ctx context.Context, c *domain.Case) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO cases (
			case_number, client_id, case_type, service_type, application_type, mortgage_type, emirate,
			loan_amount_cents, transaction_type, mortgage_term_years, mortgage_term_months,
			estimated_property_value_cents, property_status, bank_name, rate_type, rate_percent_bps,
			fixed_period_years, stage, stage_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at`,
		c.CaseNumber, c.ClientID, c.CaseType, c.ServiceType, c.ApplicationType, c.MortgageType, c.Emirate,
		c.LoanAmountCents, c.TransactionType, c.MortgageTermYears, c.MortgageTermMonths,
		c.EstimatedPropertyValueCents, c.PropertyStatus, c.BankName, c.RateType, c.RatePercentBps,
		c.FixedPeriodYears, c.Stage, c.StageReason,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}

	if len(c.BankProductIDs) == 0 {
		c.BankProductIDs = []int64{}
		return nil
	}

	rows, err := t.q.Query(ctx, `
		INSERT INTO case_bank_products (case_id, bank_product_id, position)
		SELECT $1, bp.id, ids.position
		FROM unnest($2::bigint[]) WITH ORDINALITY AS ids(product_id, position)
		JOIN bank_products bp ON bp.id = ids.product_id
		ON CONFLICT DO NOTHING
		RETURNING bank_product_id, position`, c.ID, c.BankProductIDs)
	if err != nil {
		return fmt.Errorf("failed to link bank products: %w", err)
	}
	type linked struct{ id, position int64 }
	links, err := collect(rows, func(row pgx.Row) (linked, error) {
		var l linked
		err := row.Scan(&l.id, &l.position)
		return l, err
	})
	if err != nil {
		return fmt.Errorf("failed to link bank products: %w", err)
	}

	linkedIDs := make(map[int64]bool, len(links))
	for _, l := range links {
		linkedIDs[l.id] = true
	}
	ordered := make([]int64, 0, len(links))
	for _, id := range c.BankProductIDs {
		if linkedIDs[id] {
			ordered = append(ordered, id)
			delete(linkedIDs, id)
		}
	}
	c.BankProductIDs = ordered
	return nil
}

func (t *txQueries) SaveCase(ctx context.Context, c *domain.Case) error {
	err := t.q.QueryRow(ctx, `
		UPDATE cases SET
			case_type = $2, service_type = $3, application_type = $4, mortgage_type = $5, emirate = $6,
			loan_amount_cents = $7, transaction_type = $8, mortgage_term_years = $9, mortgage_term_months = $10,
			estimated_property_value_cents = $11, property_status = $12, bank_name = $13, rate_type = $14,
			rate_percent_bps = $15, fixed_period_years = $16, stage = $17, stage_reason = $18,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.CaseType, c.ServiceType, c.ApplicationType, c.MortgageType, c.Emirate,
		c.LoanAmountCents, c.TransactionType, c.MortgageTermYears, c.MortgageTermMonths,
		c.EstimatedPropertyValueCents, c.PropertyStatus, c.BankName, c.RateType,
		c.RatePercentBps, c.FixedPeriodYears, c.Stage, c.StageReason,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound(domain.EntityCase)
	}
	if err != nil {
		return fmt.Errorf("failed to save case: %w", err)
	}
	return nil
}
