// Package repository reads channels, sources, campaigns, bank products and
// EIBOR rates from PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rivo_backend/platform/apperr"
)

const bankProductNotFoundMessage = "bank product not found"

const bankProductColumns = `id, bank_name, bank_logo, type_of_mortgage, interest_rate_type, eibor_type,
	variable_rate_addition::text, fixed_rate::text, fixed_until, loan_to_value_ratio::text,
	maximum_length_years, is_exclusive, is_active, expiry_date`

// Repo implements the reference repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new reference repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func (r *Repo) ListChannels(ctx context.Context) ([]Channel, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, trust_level FROM channels ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[Channel])
	if err != nil {
		return nil, fmt.Errorf("scan channels: %w", err)
	}
	return items, nil
}

func (r *Repo) ListSources(ctx context.Context, channelID string) ([]Source, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, channel_id, name, contact_phone, created_at
		FROM sources
		WHERE ($1 = '' OR channel_id = $1)
		ORDER BY name`, channelID)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[Source])
	if err != nil {
		return nil, fmt.Errorf("scan sources: %w", err)
	}
	return items, nil
}

func (r *Repo) ListSubSources(ctx context.Context, sourceID *uuid.UUID) ([]SubSource, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, source_id, name, contact_phone, status, default_sla_min, created_at
		FROM sub_sources
		WHERE ($1::uuid IS NULL OR source_id = $1)
		ORDER BY name`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("list sub sources: %w", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[SubSource])
	if err != nil {
		return nil, fmt.Errorf("scan sub sources: %w", err)
	}
	return items, nil
}

func (r *Repo) ListCampaigns(ctx context.Context, status string) ([]Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, status, created_at
		FROM campaigns
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[Campaign])
	if err != nil {
		return nil, fmt.Errorf("scan campaigns: %w", err)
	}
	return items, nil
}

func (r *Repo) ListBankProducts(ctx context.Context, params ListBankProductsParams) ([]BankProduct, int, error) {
	where := []string{"1=1"}
	args := []any{}
	add := func(cond string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if params.Active != nil {
		add("is_active = $%d", *params.Active)
	}
	if params.Exclusive != nil {
		add("is_exclusive = $%d", *params.Exclusive)
	}
	if params.BankName != "" {
		add("bank_name ILIKE '%%' || $%d || '%%'", params.BankName)
	}
	if params.MortgageType != "" {
		add("type_of_mortgage = $%d", params.MortgageType)
	}
	if params.InterestRateType != "" {
		add("interest_rate_type = $%d", params.InterestRateType)
	}
	if params.MinLTV != "" {
		add("loan_to_value_ratio >= $%d::numeric", params.MinLTV)
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM bank_products WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bank products: %w", err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, params.Offset)
	query := fmt.Sprintf(`SELECT %s FROM bank_products WHERE %s ORDER BY bank_name, id LIMIT $%d OFFSET $%d`,
		bankProductColumns, whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bank products: %w", err)
	}
	defer rows.Close()

	items := make([]BankProduct, 0)
	for rows.Next() {
		p, err := scanBankProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan bank product: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bank products: %w", err)
	}
	return items, total, nil
}

func (r *Repo) GetBankProduct(ctx context.Context, id int64) (BankProduct, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bankProductColumns+` FROM bank_products WHERE id = $1`, id)
	p, err := scanBankProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BankProduct{}, apperr.NotFound(bankProductNotFoundMessage)
		}
		return BankProduct{}, fmt.Errorf("get bank product: %w", err)
	}
	return p, nil
}

func (r *Repo) LatestEiborRates(ctx context.Context) ([]EiborRate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT term, rate::text AS rate, rate_date
		FROM eibor_rates
		WHERE rate_date = (SELECT MAX(rate_date) FROM eibor_rates)`)
	if err != nil {
		return nil, fmt.Errorf("latest eibor rates: %w", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[EiborRate])
	if err != nil {
		return nil, fmt.Errorf("scan eibor rates: %w", err)
	}
	return items, nil
}

func scanBankProduct(row pgx.Row) (BankProduct, error) {
	var p BankProduct
	err := row.Scan(&p.ID, &p.BankName, &p.BankLogo, &p.MortgageType, &p.InterestRateType, &p.EiborType,
		&p.VariableRateAddition, &p.FixedRate, &p.FixedUntil, &p.LoanToValueRatio,
		&p.MaximumLengthYears, &p.IsExclusive, &p.IsActive, &p.ExpiryDate)
	return p, err
}
