package domain

import (
	"time"

	"github.com/google/uuid"
)

type ClientStatus string

const (
	ClientActive        ClientStatus = "active"
	ClientConverted     ClientStatus = "converted"
	ClientNotProceeding ClientStatus = "notProceeding"
	ClientNotEligible   ClientStatus = "notEligible"
)

type EligibilityStatus string

const (
	EligibilityPending     EligibilityStatus = "pending"
	EligibilityEligible    EligibilityStatus = "eligible"
	EligibilityNotEligible EligibilityStatus = "notEligible"
)

const (
	ResidencyCitizen  = "citizen"
	ResidencyResident = "resident"

	EmploymentEmployed     = "employed"
	EmploymentSelfEmployed = "selfEmployed"
)

// Client is a verified prospect. Money fields are in fils (1/100 AED);
// DBR and LTV are in basis points (1/100 of a percent).
type Client struct {
	ID                          int64
	FirstName                   string
	LastName                    string
	Email                       *string
	Phone                       string
	ResidencyStatus             string
	DateOfBirth                 *time.Time
	Nationality                 *string
	EmploymentStatus            string
	MonthlySalaryCents          int64
	MonthlyLiabilitiesCents     *int64
	LoanAmountCents             *int64
	EstimatedPropertyValueCents *int64
	EligibilityStatus           EligibilityStatus
	EstimatedDBRBps             *int64
	EstimatedLTVBps             *int64
	MaxLoanAmountCents          *int64
	SubSourceID                 *uuid.UUID
	CampaignID                  *int64
	ConvertedFromLeadID         *int64
	Status                      ClientStatus
	StatusReason                *string
	CreatedAt                   time.Time
	UpdatedAt                   time.Time
}

type ClientChangeType string

const (
	ClientChangeConvertedFromLead ClientChangeType = "converted_from_lead"
	ClientChangeConvertedToCase   ClientChangeType = "converted_to_case"
	ClientChangeNotEligible       ClientChangeType = "not_eligible"
	ClientChangeNotProceeding     ClientChangeType = "not_proceeding"
)

// ClientStatusChange is an append-only audit row for a client.
type ClientStatusChange struct {
	ID        int64
	ClientID  int64
	Type      ClientChangeType
	Notes     string
	CreatedAt time.Time
}

// NewClientFromLead copies identity, contact and source from a lead. Financial
// fields start empty and eligibility stays pending until the first update.
func NewClientFromLead(l Lead) Client {
	leadID := l.ID
	c := Client{
		FirstName:           l.FirstName,
		LastName:            l.LastName,
		Email:               l.Email,
		Phone:               l.Phone,
		ResidencyStatus:     ResidencyResident,
		EmploymentStatus:    EmploymentEmployed,
		SubSourceID:         l.SubSourceID,
		ConvertedFromLeadID: &leadID,
		Status:              ClientActive,
		EligibilityStatus:   EligibilityPending,
	}
	return c
}

// RequireActive rejects operations on clients that left the active state.
func (c *Client) RequireActive() error {
	if c.Status != ClientActive {
		return &InvalidStateError{Entity: EntityClient, Current: string(c.Status), Required: []string{string(ClientActive)}}
	}
	return nil
}

func (c *Client) MarkNotProceeding(notes string) (ClientStatusChange, error) {
	if err := c.RequireActive(); err != nil {
		return ClientStatusChange{}, err
	}
	c.Status = ClientNotProceeding
	c.StatusReason = optionalString(notes)
	return ClientStatusChange{ClientID: c.ID, Type: ClientChangeNotProceeding, Notes: notes}, nil
}

// MarkNotEligible overrides whatever the calculator produced.
func (c *Client) MarkNotEligible(notes string) (ClientStatusChange, error) {
	if err := c.RequireActive(); err != nil {
		return ClientStatusChange{}, err
	}
	c.Status = ClientNotEligible
	c.StatusReason = optionalString(notes)
	c.EligibilityStatus = EligibilityNotEligible
	return ClientStatusChange{ClientID: c.ID, Type: ClientChangeNotEligible, Notes: notes}, nil
}

// Recalculate refreshes DBR, LTV, max loan and eligibility from the
// financial fields. A client already marked notEligible by an operator keeps
// that verdict.
func (c *Client) Recalculate() {
	r := CalculateEligibility(EligibilityInput{
		MonthlySalaryCents:          c.MonthlySalaryCents,
		MonthlyLiabilitiesCents:     c.MonthlyLiabilitiesCents,
		LoanAmountCents:             c.LoanAmountCents,
		EstimatedPropertyValueCents: c.EstimatedPropertyValueCents,
	})
	c.EstimatedDBRBps = r.DBRBps
	c.EstimatedLTVBps = r.LTVBps
	c.MaxLoanAmountCents = r.MaxLoanAmountCents
	if c.Status == ClientNotEligible {
		c.EligibilityStatus = EligibilityNotEligible
		return
	}
	c.EligibilityStatus = r.Status
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
