// Package events defines the pipeline's domain events. The bus itself lives
// in platform/events; the aliases below keep modules on a single import.
package events

import (
	platformevents "rivo_backend/platform/events"
	"rivo_backend/platform/logger"
)

type (
	Event       = platformevents.Event
	Bus         = platformevents.Bus
	Handler     = platformevents.Handler
	HandlerFunc = platformevents.HandlerFunc
	BaseEvent   = platformevents.BaseEvent
	InMemoryBus = platformevents.InMemoryBus
)

var NewBaseEvent = platformevents.NewBaseEvent

func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}

// =============================================================================
// Lead Events
// =============================================================================

// LeadDropped is published after a lead is dropped.
type LeadDropped struct {
	BaseEvent
	LeadID int64  `json:"leadId"`
	Notes  string `json:"notes"`
}

func (e LeadDropped) EventName() string { return "pipeline.lead.dropped" }

// LeadConverted is published after a lead becomes a client.
type LeadConverted struct {
	BaseEvent
	LeadID   int64 `json:"leadId"`
	ClientID int64 `json:"clientId"`
}

func (e LeadConverted) EventName() string { return "pipeline.lead.converted" }

// =============================================================================
// Client Events
// =============================================================================

// ClientStatusChanged is published after a client leaves the active state.
type ClientStatusChanged struct {
	BaseEvent
	ClientID int64  `json:"clientId"`
	From     string `json:"from"`
	To       string `json:"to"`
	Notes    string `json:"notes"`
}

func (e ClientStatusChanged) EventName() string { return "pipeline.client.status_changed" }

// =============================================================================
// Case Events
// =============================================================================

// CaseCreated is published after a case is opened for a client.
type CaseCreated struct {
	BaseEvent
	CaseID     int64  `json:"caseId"`
	CaseNumber string `json:"caseNumber"`
	ClientID   int64  `json:"clientId"`
}

func (e CaseCreated) EventName() string { return "pipeline.case.created" }

// CaseStageChanged is published after a committed stage change.
type CaseStageChanged struct {
	BaseEvent
	CaseID     int64  `json:"caseId"`
	CaseNumber string `json:"caseNumber"`
	ClientID   int64  `json:"clientId"`
	From       string `json:"from"`
	To         string `json:"to"`
	Notes      string `json:"notes"`
	Terminal   bool   `json:"terminal"`
}

func (e CaseStageChanged) EventName() string { return "pipeline.case.stage_changed" }

// =============================================================================
// Event Names
// =============================================================================

const (
	NameLeadDropped         = "pipeline.lead.dropped"
	NameLeadConverted       = "pipeline.lead.converted"
	NameClientStatusChanged = "pipeline.client.status_changed"
	NameCaseCreated         = "pipeline.case.created"
	NameCaseStageChanged    = "pipeline.case.stage_changed"
)
