// Package ports defines what the pipeline services need from persistence,
// file storage and background work. Implementations live in the repository
// and adapters packages and are wired by the composition root.
package ports

import (
	"context"

	"rivo_backend/internal/pipeline/domain"

	"github.com/google/uuid"
)

// Page selects a window of a list. Page is 1-based.
type Page struct {
	Page     int
	PageSize int
}

// Offset returns the row offset of the page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type LeadFilter struct {
	Status      *domain.LeadStatus
	SubSourceID *uuid.UUID
	Search      string
	Page
}

type ClientFilter struct {
	Status      *domain.ClientStatus
	Eligibility *domain.EligibilityStatus
	Search      string
	Page
}

type CaseFilter struct {
	Stage    *domain.CaseStage
	Terminal *bool
	ClientID *int64
	Search   string
	Page
}

// Reader serves non-locking reads.
type Reader interface {
	GetLead(ctx context.Context, id int64) (domain.Lead, error)
	ListLeads(ctx context.Context, f LeadFilter) ([]domain.Lead, int, error)
	ConvertedClientID(ctx context.Context, leadID int64) (*int64, error)

	GetClient(ctx context.Context, id int64) (domain.Client, error)
	ListClients(ctx context.Context, f ClientFilter) ([]domain.Client, int, error)

	GetCase(ctx context.Context, id int64) (domain.Case, error)
	ListCases(ctx context.Context, f CaseFilter) ([]domain.Case, int, error)
	ListClientCases(ctx context.Context, clientID int64) ([]domain.Case, error)

	ListAttachments(ctx context.Context, kind domain.AttachmentKind, ownerID int64) ([]domain.Attachment, error)

	ListLeadChanges(ctx context.Context, leadID int64) ([]domain.LeadStatusChange, error)
	ListClientChanges(ctx context.Context, clientID int64) ([]domain.ClientStatusChange, error)
	ListCaseChanges(ctx context.Context, caseID int64) ([]domain.CaseStageChange, error)

	ListCallLogs(ctx context.Context, ref domain.EntityRef) ([]domain.CallLog, error)
	ListNotes(ctx context.Context, ref domain.EntityRef) ([]domain.Note, error)
}

// Tx is one unit of work. Lock methods take a row lock held until the unit
// commits or rolls back; Save methods also set updated_at.
type Tx interface {
	LockLead(ctx context.Context, id int64) (domain.Lead, error)
	LockClient(ctx context.Context, id int64) (domain.Client, error)
	LockCase(ctx context.Context, id int64) (domain.Case, error)
	// LockEntity locks whichever row ref names.
	LockEntity(ctx context.Context, ref domain.EntityRef) error
	Touch(ctx context.Context, ref domain.EntityRef) error

	CreateLead(ctx context.Context, l *domain.Lead) error
	SaveLead(ctx context.Context, l *domain.Lead) error

	CreateClient(ctx context.Context, c *domain.Client) error
	SaveClient(ctx context.Context, c *domain.Client) error
	DeleteClient(ctx context.Context, id int64) error

	NextCaseNumber(ctx context.Context) (int64, error)
	// CreateCase inserts the case and links its bank products. Unknown
	// product ids are skipped and removed from c.BankProductIDs.
	CreateCase(ctx context.Context, c *domain.Case) error
	SaveCase(ctx context.Context, c *domain.Case) error

	CreateAttachments(ctx context.Context, kind domain.AttachmentKind, items []domain.Attachment) error
	CreateAttachment(ctx context.Context, kind domain.AttachmentKind, a *domain.Attachment) error
	// LockPlaceholder returns the row of a default type for the owner, or nil.
	LockPlaceholder(ctx context.Context, kind domain.AttachmentKind, ownerID int64, typ string) (*domain.Attachment, error)
	LockAttachment(ctx context.Context, kind domain.AttachmentKind, ownerID, id int64) (domain.Attachment, error)
	SaveAttachment(ctx context.Context, kind domain.AttachmentKind, a *domain.Attachment) error
	DeleteAttachment(ctx context.Context, kind domain.AttachmentKind, id int64) error

	AddLeadChange(ctx context.Context, c *domain.LeadStatusChange) error
	AddClientChange(ctx context.Context, c *domain.ClientStatusChange) error
	AddCaseChange(ctx context.Context, c *domain.CaseStageChange) error
	AddCallLog(ctx context.Context, l *domain.CallLog) error
	AddNote(ctx context.Context, n *domain.Note) error
}

// Store runs units of work and serves reads outside of them.
type Store interface {
	Reader
	// WithinTx commits when fn returns nil and rolls back otherwise. Lock
	// waits longer than the configured timeout fail with an Unavailable error.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}
