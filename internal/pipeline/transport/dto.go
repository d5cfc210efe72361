package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateLeadRequest struct {
	FirstName   string     `json:"firstName" validate:"required,min=1,max=100"`
	LastName    string     `json:"lastName" validate:"required,min=1,max=100"`
	Email       *string    `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone       string     `json:"phone" validate:"required,min=5,max=20"`
	SubSourceID *uuid.UUID `json:"subSourceId,omitempty"`
	Intent      string     `json:"intent" validate:"max=2000"`
	Transcript  *string    `json:"transcript,omitempty" validate:"omitempty,max=20000"`
}

// UpdateLeadRequest edits intake details. Status is not writable here.
type UpdateLeadRequest struct {
	FirstName   *string    `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName    *string    `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Email       *string    `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone       *string    `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	SubSourceID *uuid.UUID `json:"subSourceId,omitempty"`
	Intent      *string    `json:"intent,omitempty" validate:"omitempty,max=2000"`
	Transcript  *string    `json:"transcript,omitempty" validate:"omitempty,max=20000"`
}

type ListLeadsRequest struct {
	Status      string `form:"status" validate:"omitempty,oneof=new dropped converted"`
	SubSourceID string `form:"subSourceId" validate:"omitempty,uuid"`
	Search      string `form:"search" validate:"max=100"`
	Page        int    `form:"page" validate:"min=1"`
	PageSize    int    `form:"pageSize" validate:"min=1,max=100"`
}

// TransitionRequest carries the free-text notes recorded with a status change.
type TransitionRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

type ReasonRequest struct {
	Reason string `json:"reason" validate:"max=2000"`
}

type SetStageRequest struct {
	Stage string `json:"stage" validate:"required,case_stage"`
	Notes string `json:"notes" validate:"max=2000"`
}

type CreateClientRequest struct {
	FirstName                   string     `json:"firstName" validate:"required,min=1,max=100"`
	LastName                    string     `json:"lastName" validate:"required,min=1,max=100"`
	Email                       *string    `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone                       string     `json:"phone" validate:"required,min=5,max=20"`
	ResidencyStatus             string     `json:"residencyStatus" validate:"omitempty,oneof=citizen resident"`
	DateOfBirth                 *string    `json:"dateOfBirth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Nationality                 *string    `json:"nationality,omitempty" validate:"omitempty,max=100"`
	EmploymentStatus            string     `json:"employmentStatus" validate:"omitempty,oneof=employed selfEmployed"`
	MonthlySalaryCents          int64      `json:"monthlySalaryCents" validate:"min=0,max=999999999999"`
	MonthlyLiabilitiesCents     *int64     `json:"monthlyLiabilitiesCents,omitempty" validate:"omitempty,min=0,max=999999999999"`
	LoanAmountCents             *int64     `json:"loanAmountCents,omitempty" validate:"omitempty,min=0,max=999999999999"`
	EstimatedPropertyValueCents *int64     `json:"estimatedPropertyValueCents,omitempty" validate:"omitempty,min=0,max=999999999999"`
	SubSourceID                 *uuid.UUID `json:"subSourceId,omitempty"`
	CampaignID                  *int64     `json:"campaignId,omitempty" validate:"omitempty,min=1"`
}

type UpdateClientRequest struct {
	FirstName                   *string       `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName                    *string       `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Email                       *string       `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone                       *string       `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	ResidencyStatus             *string       `json:"residencyStatus,omitempty" validate:"omitempty,oneof=citizen resident"`
	DateOfBirth                 *string       `json:"dateOfBirth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Nationality                 *string       `json:"nationality,omitempty" validate:"omitempty,max=100"`
	EmploymentStatus            *string       `json:"employmentStatus,omitempty" validate:"omitempty,oneof=employed selfEmployed"`
	MonthlySalaryCents          *int64        `json:"monthlySalaryCents,omitempty" validate:"omitempty,min=0,max=999999999999"`
	MonthlyLiabilitiesCents     OptionalInt64 `json:"monthlyLiabilitiesCents,omitempty" validate:"omitempty,min=0,max=999999999999"`
	LoanAmountCents             OptionalInt64 `json:"loanAmountCents,omitempty" validate:"omitempty,min=0,max=999999999999"`
	EstimatedPropertyValueCents OptionalInt64 `json:"estimatedPropertyValueCents,omitempty" validate:"omitempty,min=0,max=999999999999"`
	SubSourceID                 *uuid.UUID    `json:"subSourceId,omitempty"`
	CampaignID                  *int64        `json:"campaignId,omitempty" validate:"omitempty,min=1"`
}

type ListClientsRequest struct {
	Status      string `form:"status" validate:"omitempty,oneof=active converted notProceeding notEligible"`
	Eligibility string `form:"eligibility" validate:"omitempty,oneof=pending eligible notEligible"`
	Search      string `form:"search" validate:"max=100"`
	Page        int    `form:"page" validate:"min=1"`
	PageSize    int    `form:"pageSize" validate:"min=1,max=100"`
}

// CreateCaseRequest opens a case for a client. Omitted fields take defaults;
// only the first three bank products are linked.
type CreateCaseRequest struct {
	CaseType                    string  `json:"caseType" validate:"omitempty,oneof=residential commercial"`
	ServiceType                 string  `json:"serviceType" validate:"omitempty,oneof=assisted fullyPackaged"`
	ApplicationType             string  `json:"applicationType" validate:"omitempty,oneof=individual joint"`
	MortgageType                string  `json:"mortgageType" validate:"omitempty,oneof=islamic conventional"`
	Emirate                     string  `json:"emirate" validate:"omitempty,oneof=abuDhabi ajman dubai fujairah rak sharjah uaq"`
	LoanAmountCents             *int64  `json:"loanAmountCents,omitempty" validate:"omitempty,min=0,max=999999999999"`
	TransactionType             string  `json:"transactionType" validate:"omitempty,oneof=primaryPurchase resale buyoutEquity buyout equity"`
	MortgageTermYears           *int    `json:"mortgageTermYears,omitempty" validate:"omitempty,min=1,max=30"`
	MortgageTermMonths          *int    `json:"mortgageTermMonths,omitempty" validate:"omitempty,min=0,max=11"`
	EstimatedPropertyValueCents *int64  `json:"estimatedPropertyValueCents,omitempty" validate:"omitempty,min=0,max=999999999999"`
	PropertyStatus              string  `json:"propertyStatus" validate:"omitempty,oneof=ready underConstruction"`
	BankName                    *string `json:"bankName,omitempty" validate:"omitempty,max=200"`
	RateType                    *string `json:"rateType,omitempty" validate:"omitempty,oneof=fixed variable"`
	RatePercentBps              *int64  `json:"ratePercentBps,omitempty" validate:"omitempty,min=0,max=10000"`
	FixedPeriodYears            *int    `json:"fixedPeriodYears,omitempty" validate:"omitempty,min=0,max=30"`
	BankProductIDs              []int64 `json:"bankProductIds,omitempty" validate:"omitempty,dive,min=1"`
	Notes                       string  `json:"notes" validate:"max=5000"`
}

// UpdateCaseRequest edits deal fields. The stage changes only through the
// stage endpoints.
type UpdateCaseRequest struct {
	CaseType                    *string `json:"caseType,omitempty" validate:"omitempty,oneof=residential commercial"`
	ServiceType                 *string `json:"serviceType,omitempty" validate:"omitempty,oneof=assisted fullyPackaged"`
	ApplicationType             *string `json:"applicationType,omitempty" validate:"omitempty,oneof=individual joint"`
	MortgageType                *string `json:"mortgageType,omitempty" validate:"omitempty,oneof=islamic conventional"`
	Emirate                     *string `json:"emirate,omitempty" validate:"omitempty,oneof=abuDhabi ajman dubai fujairah rak sharjah uaq"`
	LoanAmountCents             *int64  `json:"loanAmountCents,omitempty" validate:"omitempty,min=0,max=999999999999"`
	TransactionType             *string `json:"transactionType,omitempty" validate:"omitempty,oneof=primaryPurchase resale buyoutEquity buyout equity"`
	MortgageTermYears           *int    `json:"mortgageTermYears,omitempty" validate:"omitempty,min=1,max=30"`
	MortgageTermMonths          *int    `json:"mortgageTermMonths,omitempty" validate:"omitempty,min=0,max=11"`
	EstimatedPropertyValueCents *int64  `json:"estimatedPropertyValueCents,omitempty" validate:"omitempty,min=0,max=999999999999"`
	PropertyStatus              *string `json:"propertyStatus,omitempty" validate:"omitempty,oneof=ready underConstruction"`
	BankName                    *string `json:"bankName,omitempty" validate:"omitempty,max=200"`
	RateType                    *string `json:"rateType,omitempty" validate:"omitempty,oneof=fixed variable"`
	RatePercentBps              *int64  `json:"ratePercentBps,omitempty" validate:"omitempty,min=0,max=10000"`
	FixedPeriodYears            *int    `json:"fixedPeriodYears,omitempty" validate:"omitempty,min=0,max=30"`
}

type ListCasesRequest struct {
	Stage    string `form:"stage" validate:"omitempty,case_stage"`
	Status   string `form:"status" validate:"omitempty,oneof=active terminal"`
	ClientID int64  `form:"clientId" validate:"min=0"`
	Search   string `form:"search" validate:"max=100"`
	Page     int    `form:"page" validate:"min=1"`
	PageSize int    `form:"pageSize" validate:"min=1,max=100"`
}

type LogCallRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=connected noAnswer busy wrongNumber switchedOff"`
	Notes   string `json:"notes" validate:"max=5000"`
}

type AddNoteRequest struct {
	Content string `json:"content" validate:"required,min=1,max=10000"`
}

type SetAttachmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=missing uploaded verified notApplicable"`
}

// UploadRequest is the parsed multipart upload.
type UploadRequest struct {
	Type        string `form:"type" validate:"required,max=30"`
	FileName    string `validate:"required,max=255"`
	ContentType string
	Size        int64
}

// Response DTOs

type LeadResponse struct {
	ID          int64      `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       *string    `json:"email,omitempty"`
	Phone       string     `json:"phone"`
	SubSourceID *uuid.UUID `json:"subSourceId,omitempty"`
	Intent      string     `json:"intent"`
	Transcript  *string    `json:"transcript,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type LeadDetailResponse struct {
	LeadResponse
	ConvertedClientID *int64                 `json:"convertedClientId,omitempty"`
	CallLogs          []CallLogResponse      `json:"callLogs"`
	Notes             []NoteResponse         `json:"notes"`
	StatusHistory     []StatusChangeResponse `json:"statusHistory"`
}

type ConvertLeadResponse struct {
	Lead   LeadResponse   `json:"lead"`
	Client ClientResponse `json:"client"`
}

type ClientResponse struct {
	ID                          int64      `json:"id"`
	FirstName                   string     `json:"firstName"`
	LastName                    string     `json:"lastName"`
	Email                       *string    `json:"email,omitempty"`
	Phone                       string     `json:"phone"`
	ResidencyStatus             string     `json:"residencyStatus"`
	DateOfBirth                 *string    `json:"dateOfBirth,omitempty"`
	Nationality                 *string    `json:"nationality,omitempty"`
	EmploymentStatus            string     `json:"employmentStatus"`
	MonthlySalaryCents          int64      `json:"monthlySalaryCents"`
	MonthlyLiabilitiesCents     *int64     `json:"monthlyLiabilitiesCents,omitempty"`
	LoanAmountCents             *int64     `json:"loanAmountCents,omitempty"`
	EstimatedPropertyValueCents *int64     `json:"estimatedPropertyValueCents,omitempty"`
	EligibilityStatus           string     `json:"eligibilityStatus"`
	EstimatedDBR                *string    `json:"estimatedDbr,omitempty"`
	EstimatedLTV                *string    `json:"estimatedLtv,omitempty"`
	MaxLoanAmountCents          *int64     `json:"maxLoanAmountCents,omitempty"`
	SubSourceID                 *uuid.UUID `json:"subSourceId,omitempty"`
	CampaignID                  *int64     `json:"campaignId,omitempty"`
	ConvertedFromLeadID         *int64     `json:"convertedFromLeadId,omitempty"`
	Status                      string     `json:"status"`
	StatusReason                *string    `json:"statusReason,omitempty"`
	CreatedAt                   time.Time  `json:"createdAt"`
	UpdatedAt                   time.Time  `json:"updatedAt"`
}

type ClientDetailResponse struct {
	ClientResponse
	Documents     []AttachmentResponse   `json:"documents"`
	Cases         []CaseResponse         `json:"cases"`
	CallLogs      []CallLogResponse      `json:"callLogs"`
	Notes         []NoteResponse         `json:"notes"`
	StatusHistory []StatusChangeResponse `json:"statusHistory"`
}

type CreateCaseResponse struct {
	Client ClientResponse `json:"client"`
	Case   CaseResponse   `json:"case"`
}

type CaseResponse struct {
	ID                          int64     `json:"id"`
	CaseNumber                  string    `json:"caseNumber"`
	ClientID                    int64     `json:"clientId"`
	CaseType                    string    `json:"caseType"`
	ServiceType                 string    `json:"serviceType"`
	ApplicationType             string    `json:"applicationType"`
	MortgageType                string    `json:"mortgageType"`
	Emirate                     string    `json:"emirate"`
	LoanAmountCents             int64     `json:"loanAmountCents"`
	TransactionType             string    `json:"transactionType"`
	MortgageTermYears           int       `json:"mortgageTermYears"`
	MortgageTermMonths          int       `json:"mortgageTermMonths"`
	EstimatedPropertyValueCents int64     `json:"estimatedPropertyValueCents"`
	PropertyStatus              string    `json:"propertyStatus"`
	BankName                    *string   `json:"bankName,omitempty"`
	RateType                    *string   `json:"rateType,omitempty"`
	RatePercentBps              *int64    `json:"ratePercentBps,omitempty"`
	FixedPeriodYears            *int      `json:"fixedPeriodYears,omitempty"`
	Stage                       string    `json:"stage"`
	StageReason                 *string   `json:"stageReason,omitempty"`
	IsTerminal                  bool      `json:"isTerminal"`
	NextStage                   *string   `json:"nextStage,omitempty"`
	BankProductIDs              []int64   `json:"bankProductIds"`
	CreatedAt                   time.Time `json:"createdAt"`
	UpdatedAt                   time.Time `json:"updatedAt"`
}

type CaseDetailResponse struct {
	CaseResponse
	BankForms    []AttachmentResponse  `json:"bankForms"`
	CallLogs     []CallLogResponse     `json:"callLogs"`
	Notes        []NoteResponse        `json:"notes"`
	StageHistory []StageChangeResponse `json:"stageHistory"`
}

type AttachmentResponse struct {
	ID         int64      `json:"id"`
	Type       string     `json:"type"`
	Status     string     `json:"status"`
	FileName   *string    `json:"fileName,omitempty"`
	HasFile    bool       `json:"hasFile"`
	UploadedAt *time.Time `json:"uploadedAt,omitempty"`
}

type DownloadResponse struct {
	URL       string    `json:"url"`
	FileName  string    `json:"fileName"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type CallLogResponse struct {
	ID         int64     `json:"id"`
	EntityKind string    `json:"entityKind"`
	EntityID   int64     `json:"entityId"`
	Outcome    string    `json:"outcome"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
}

type NoteResponse struct {
	ID         int64     `json:"id"`
	EntityKind string    `json:"entityKind"`
	EntityID   int64     `json:"entityId"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

type StatusChangeResponse struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

type StageChangeResponse struct {
	ID        int64     `json:"id"`
	FromStage *string   `json:"fromStage"`
	ToStage   string    `json:"toStage"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

type ListResponse[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}
