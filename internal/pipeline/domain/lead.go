package domain

import (
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadDropped   LeadStatus = "dropped"
	LeadConverted LeadStatus = "converted"
)

// Lead is an unverified signal captured from a marketing channel.
type Lead struct {
	ID          int64
	FirstName   string
	LastName    string
	Email       *string
	Phone       string
	SubSourceID *uuid.UUID
	Intent      string
	Transcript  *string
	Status      LeadStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type LeadChangeType string

const (
	LeadChangeConvertedToClient LeadChangeType = "converted_to_client"
	LeadChangeDropped           LeadChangeType = "dropped"
)

// LeadStatusChange is an append-only audit row for a lead.
type LeadStatusChange struct {
	ID        int64
	LeadID    int64
	Type      LeadChangeType
	Notes     string
	CreatedAt time.Time
}

func (l *Lead) requireNew() error {
	if l.Status != LeadNew {
		return &InvalidStateError{Entity: EntityLead, Current: string(l.Status), Required: []string{string(LeadNew)}}
	}
	return nil
}

// Drop moves a new lead to dropped.
func (l *Lead) Drop(notes string) (LeadStatusChange, error) {
	if err := l.requireNew(); err != nil {
		return LeadStatusChange{}, err
	}
	l.Status = LeadDropped
	return LeadStatusChange{LeadID: l.ID, Type: LeadChangeDropped, Notes: notes}, nil
}

// Convert moves a new lead to converted. The caller creates the client in
// the same unit of work.
func (l *Lead) Convert(notes string) (LeadStatusChange, error) {
	if err := l.requireNew(); err != nil {
		return LeadStatusChange{}, err
	}
	l.Status = LeadConverted
	return LeadStatusChange{LeadID: l.ID, Type: LeadChangeConvertedToClient, Notes: notes}, nil
}
