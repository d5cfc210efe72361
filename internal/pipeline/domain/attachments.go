package domain

import (
	"fmt"
	"slices"
	"time"
)

const (
	AttachmentMissing       = "missing"
	AttachmentUploaded      = "uploaded"
	AttachmentVerified      = "verified"
	AttachmentNotApplicable = "notApplicable"

	// OtherAttachmentType is the free-form type; each upload adds a row.
	OtherAttachmentType = "other"
)

// AttachmentKind describes a family of owned files: client documents or case
// bank forms. Default types are seeded as missing placeholders when the owner
// is created.
type AttachmentKind struct {
	Name         string
	Owner        EntityKind
	DefaultTypes []string
	Statuses     []string
}

var DocumentKind = AttachmentKind{
	Name:  "document",
	Owner: EntityClient,
	DefaultTypes: []string{
		"passport", "emiratesId", "visa", "salaryCertificate",
		"payslips", "bankStatements", "creditCardStatement", "loanStatements",
	},
	Statuses: []string{AttachmentMissing, AttachmentUploaded, AttachmentVerified, AttachmentNotApplicable},
}

var BankFormKind = AttachmentKind{
	Name:         "bank form",
	Owner:        EntityCase,
	DefaultTypes: []string{"accountOpeningForm", "fts", "kfs", "undertakings", "bankChecklist"},
	Statuses:     []string{AttachmentMissing, AttachmentUploaded, AttachmentVerified},
}

func (k AttachmentKind) IsDefaultType(t string) bool {
	return slices.Contains(k.DefaultTypes, t)
}

func (k AttachmentKind) ValidType(t string) bool {
	return t == OtherAttachmentType || k.IsDefaultType(t)
}

func (k AttachmentKind) ValidStatus(s string) bool {
	return slices.Contains(k.Statuses, s)
}

// Placeholders returns one missing attachment per default type.
func (k AttachmentKind) Placeholders(ownerID int64) []Attachment {
	out := make([]Attachment, 0, len(k.DefaultTypes))
	for _, t := range k.DefaultTypes {
		out = append(out, Attachment{OwnerID: ownerID, Type: t, Status: AttachmentMissing})
	}
	return out
}

// Attachment is a client document or a case bank form. FileKey is the object
// key in file storage.
type Attachment struct {
	ID         int64
	OwnerID    int64
	Type       string
	Status     string
	FileKey    *string
	FileName   *string
	UploadedAt *time.Time
}

// AttachUpload records a stored file on the attachment and returns the key of
// the file it replaces, if any.
func (a *Attachment) AttachUpload(key, name string, at time.Time) *string {
	previous := a.FileKey
	a.FileKey = &key
	a.FileName = &name
	a.Status = AttachmentUploaded
	a.UploadedAt = &at
	return previous
}

// Reset returns a default-type attachment to its placeholder state.
func (a *Attachment) Reset() {
	a.FileKey = nil
	a.FileName = nil
	a.Status = AttachmentMissing
	a.UploadedAt = nil
}

// SetStatus applies a review status. Uploaded and verified require a file.
func (a *Attachment) SetStatus(k AttachmentKind, status string) error {
	if !k.ValidStatus(status) {
		return fmt.Errorf("invalid %s status %q", k.Name, status)
	}
	if (status == AttachmentVerified || status == AttachmentUploaded) && a.FileKey == nil {
		return &InvalidStateError{Entity: EntityKind(k.Name), Current: a.Status, Required: []string{AttachmentUploaded}}
	}
	a.Status = status
	return nil
}
