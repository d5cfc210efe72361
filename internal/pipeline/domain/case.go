package domain

import (
	"fmt"
	"time"
)

type CaseStage string

const (
	StageProcessing    CaseStage = "processing"
	StageSubmitted     CaseStage = "submitted"
	StageUnderReview   CaseStage = "underReview"
	StagePreApproved   CaseStage = "preApproved"
	StageValuation     CaseStage = "valuation"
	StageFOLProcessing CaseStage = "folProcessing"
	StageFOLReceived   CaseStage = "folReceived"
	StageFOLSigned     CaseStage = "folSigned"
	StageDisbursed     CaseStage = "disbursed"
	StageDeclined      CaseStage = "declined"
	StageWithdrawn     CaseStage = "withdrawn"
)

// ActiveStages is the ordered happy path. Advancing from the last entry lands
// on disbursed.
var ActiveStages = []CaseStage{
	StageProcessing,
	StageSubmitted,
	StageUnderReview,
	StagePreApproved,
	StageValuation,
	StageFOLProcessing,
	StageFOLReceived,
	StageFOLSigned,
}

var TerminalStages = []CaseStage{StageDisbursed, StageDeclined, StageWithdrawn}

var knownStages = func() map[CaseStage]struct{} {
	m := make(map[CaseStage]struct{}, len(ActiveStages)+len(TerminalStages))
	for _, s := range ActiveStages {
		m[s] = struct{}{}
	}
	for _, s := range TerminalStages {
		m[s] = struct{}{}
	}
	return m
}()

func IsKnownStage(s string) bool {
	_, ok := knownStages[CaseStage(s)]
	return ok
}

func (s CaseStage) IsTerminal() bool {
	switch s {
	case StageDisbursed, StageDeclined, StageWithdrawn:
		return true
	}
	return false
}

// NextStage returns the successor of s on the happy path. It reports false
// for terminal and unknown stages.
func NextStage(s CaseStage) (CaseStage, bool) {
	if s.IsTerminal() {
		return "", false
	}
	for i, stage := range ActiveStages {
		if stage != s {
			continue
		}
		if i == len(ActiveStages)-1 {
			return StageDisbursed, true
		}
		return ActiveStages[i+1], true
	}
	return "", false
}

// Case deal defaults applied when the caller omits a value.
const (
	DefaultCaseType           = "residential"
	DefaultServiceType        = "assisted"
	DefaultApplicationType    = "individual"
	DefaultMortgageType       = "conventional"
	DefaultEmirate            = "dubai"
	DefaultTransactionType    = "primaryPurchase"
	DefaultPropertyStatus     = "ready"
	DefaultMortgageTermYears  = 25
	DefaultMortgageTermMonths = 0

	// MaxBankProducts caps the products linked to a case; extras are dropped.
	MaxBankProducts = 3

	CaseCreatedNote  = "Case created"
	KanbanChangeNote = "Stage changed via kanban"
	caseNumberPrefix = "RV-"
)

var (
	CaseTypes        = []string{"residential", "commercial"}
	ServiceTypes     = []string{"assisted", "fullyPackaged"}
	ApplicationTypes = []string{"individual", "joint"}
	MortgageTypes    = []string{"islamic", "conventional"}
	Emirates         = []string{"abuDhabi", "ajman", "dubai", "fujairah", "rak", "sharjah", "uaq"}
	TransactionTypes = []string{"primaryPurchase", "resale", "buyoutEquity", "buyout", "equity"}
	PropertyStatuses = []string{"ready", "underConstruction"}
)

// Case is a mortgage application submitted to a bank on behalf of a client.
type Case struct {
	ID                          int64
	CaseNumber                  string
	ClientID                    int64
	CaseType                    string
	ServiceType                 string
	ApplicationType             string
	MortgageType                string
	Emirate                     string
	LoanAmountCents             int64
	TransactionType             string
	MortgageTermYears           int
	MortgageTermMonths          int
	EstimatedPropertyValueCents int64
	PropertyStatus              string
	BankName                    *string
	RateType                    *string
	RatePercentBps              *int64
	FixedPeriodYears            *int
	Stage                       CaseStage
	StageReason                 *string
	BankProductIDs              []int64
	CreatedAt                   time.Time
	UpdatedAt                   time.Time
}

// CaseStageChange is an append-only audit row. FromStage is nil only for the
// row written when the case is created.
type CaseStageChange struct {
	ID        int64
	CaseID    int64
	FromStage *CaseStage
	ToStage   CaseStage
	Notes     string
	CreatedAt time.Time
}

// FormatCaseNumber renders the n-th case number, e.g. RV-00042.
func FormatCaseNumber(n int64) string {
	return fmt.Sprintf("%s%05d", caseNumberPrefix, n)
}

// CaseParams are the caller-supplied values for a new case. Zero values fall
// back to the defaults above.
type CaseParams struct {
	CaseType                    string
	ServiceType                 string
	ApplicationType             string
	MortgageType                string
	Emirate                     string
	LoanAmountCents             *int64
	TransactionType             string
	MortgageTermYears           *int
	MortgageTermMonths          *int
	EstimatedPropertyValueCents *int64
	PropertyStatus              string
	BankName                    *string
	RateType                    *string
	RatePercentBps              *int64
	FixedPeriodYears            *int
	BankProductIDs              []int64
	Notes                       string
}

// NewCase builds a case for the client in the processing stage. Loan amount
// and property value fall back to the client's figures, then to zero; an
// explicit zero counts as not given.
func NewCase(client Client, number string, p CaseParams) (Case, CaseStageChange) {
	c := Case{
		CaseNumber:                  number,
		ClientID:                    client.ID,
		CaseType:                    orDefault(p.CaseType, DefaultCaseType),
		ServiceType:                 orDefault(p.ServiceType, DefaultServiceType),
		ApplicationType:             orDefault(p.ApplicationType, DefaultApplicationType),
		MortgageType:                orDefault(p.MortgageType, DefaultMortgageType),
		Emirate:                     orDefault(p.Emirate, DefaultEmirate),
		LoanAmountCents:             firstNonZero(p.LoanAmountCents, client.LoanAmountCents),
		TransactionType:             orDefault(p.TransactionType, DefaultTransactionType),
		MortgageTermYears:           DefaultMortgageTermYears,
		MortgageTermMonths:          DefaultMortgageTermMonths,
		EstimatedPropertyValueCents: firstNonZero(p.EstimatedPropertyValueCents, client.EstimatedPropertyValueCents),
		PropertyStatus:              orDefault(p.PropertyStatus, DefaultPropertyStatus),
		BankName:                    p.BankName,
		RateType:                    p.RateType,
		RatePercentBps:              p.RatePercentBps,
		FixedPeriodYears:            p.FixedPeriodYears,
		Stage:                       StageProcessing,
		BankProductIDs:              LimitBankProducts(p.BankProductIDs),
	}
	if p.MortgageTermYears != nil {
		c.MortgageTermYears = *p.MortgageTermYears
	}
	if p.MortgageTermMonths != nil {
		c.MortgageTermMonths = *p.MortgageTermMonths
	}

	notes := p.Notes
	if notes == "" {
		notes = CaseCreatedNote
	}
	return c, CaseStageChange{ToStage: StageProcessing, Notes: notes}
}

// LimitBankProducts keeps the first MaxBankProducts ids.
func LimitBankProducts(ids []int64) []int64 {
	if len(ids) > MaxBankProducts {
		ids = ids[:MaxBankProducts]
	}
	return append([]int64(nil), ids...)
}

// CaseCreatedClientNote is the client audit note when no handover notes are given.
func CaseCreatedClientNote(caseNumber string) string {
	return fmt.Sprintf("Case %s created", caseNumber)
}

// Advance moves the case one step along the happy path.
func (c *Case) Advance(notes string) (CaseStageChange, error) {
	if c.Stage.IsTerminal() {
		return CaseStageChange{}, &StageTransitionError{Current: string(c.Stage), Target: "next", Reason: reasonAlreadyTerminal}
	}
	next, ok := NextStage(c.Stage)
	if !ok {
		return CaseStageChange{}, &StageTransitionError{Current: string(c.Stage), Target: "next", Reason: reasonNoNextStage}
	}
	return c.moveTo(next, notes), nil
}

func (c *Case) Decline(reason string) (CaseStageChange, error) {
	return c.terminate(StageDeclined, reason)
}

func (c *Case) Withdraw(reason string) (CaseStageChange, error) {
	return c.terminate(StageWithdrawn, reason)
}

func (c *Case) terminate(target CaseStage, reason string) (CaseStageChange, error) {
	if c.Stage.IsTerminal() {
		return CaseStageChange{}, &StageTransitionError{Current: string(c.Stage), Target: string(target), Reason: reasonAlreadyTerminal}
	}
	c.StageReason = optionalString(reason)
	return c.moveTo(target, reason), nil
}

// SetStage writes any known stage, including backward moves and moves out of
// a terminal stage. Setting the current stage is a no-op and reports false.
func (c *Case) SetStage(target CaseStage, notes string) (CaseStageChange, bool, error) {
	if !IsKnownStage(string(target)) {
		return CaseStageChange{}, false, fmt.Errorf("unknown case stage %q", target)
	}
	if target == c.Stage {
		return CaseStageChange{}, false, nil
	}
	if notes == "" {
		notes = KanbanChangeNote
	}
	return c.moveTo(target, notes), true, nil
}

func (c *Case) moveTo(target CaseStage, notes string) CaseStageChange {
	from := c.Stage
	c.Stage = target
	return CaseStageChange{CaseID: c.ID, FromStage: &from, ToStage: target, Notes: notes}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func firstNonZero(values ...*int64) int64 {
	for _, v := range values {
		if v != nil && *v != 0 {
			return *v
		}
	}
	return 0
}
