package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Channel is a top-level lead origin.
type Channel struct {
	ID         string `db:"id"`
	Name       string `db:"name"`
	TrustLevel string `db:"trust_level"`
}

// Source belongs to a channel.
type Source struct {
	ID           uuid.UUID `db:"id"`
	ChannelID    string    `db:"channel_id"`
	Name         string    `db:"name"`
	ContactPhone *string   `db:"contact_phone"`
	CreatedAt    time.Time `db:"created_at"`
}

// SubSource belongs to a source.
type SubSource struct {
	ID            uuid.UUID `db:"id"`
	SourceID      uuid.UUID `db:"source_id"`
	Name          string    `db:"name"`
	ContactPhone  *string   `db:"contact_phone"`
	Status        string    `db:"status"`
	DefaultSLAMin *int      `db:"default_sla_min"`
	CreatedAt     time.Time `db:"created_at"`
}

type Campaign struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

// BankProduct is a mortgage offer. Rates and ratios are decimal strings as
// stored, e.g. "1.250".
type BankProduct struct {
	ID                   int64      `db:"id"`
	BankName             string     `db:"bank_name"`
	BankLogo             *string    `db:"bank_logo"`
	MortgageType         string     `db:"type_of_mortgage"`
	InterestRateType     string     `db:"interest_rate_type"`
	EiborType            string     `db:"eibor_type"`
	VariableRateAddition string     `db:"variable_rate_addition"`
	FixedRate            string     `db:"fixed_rate"`
	FixedUntil           int        `db:"fixed_until"`
	LoanToValueRatio     string     `db:"loan_to_value_ratio"`
	MaximumLengthYears   int        `db:"maximum_length_years"`
	IsExclusive          bool       `db:"is_exclusive"`
	IsActive             bool       `db:"is_active"`
	ExpiryDate           *time.Time `db:"expiry_date"`
}

// EiborRate is one published rate for a term on a date.
type EiborRate struct {
	Term     string    `db:"term"`
	Rate     string    `db:"rate"`
	RateDate time.Time `db:"rate_date"`
}

// ListBankProductsParams filters bank products. Nil pointers do not filter.
type ListBankProductsParams struct {
	Active           *bool
	Exclusive        *bool
	BankName         string
	MortgageType     string
	InterestRateType string
	MinLTV           string
	Offset           int
	Limit            int
}

// Repository reads the reference tables.
type Repository interface {
	ListChannels(ctx context.Context) ([]Channel, error)
	ListSources(ctx context.Context, channelID string) ([]Source, error)
	ListSubSources(ctx context.Context, sourceID *uuid.UUID) ([]SubSource, error)
	ListCampaigns(ctx context.Context, status string) ([]Campaign, error)
	ListBankProducts(ctx context.Context, params ListBankProductsParams) ([]BankProduct, int, error)
	GetBankProduct(ctx context.Context, id int64) (BankProduct, error)
	// LatestEiborRates returns every term published on the most recent rate date.
	LatestEiborRates(ctx context.Context) ([]EiborRate, error)
}
