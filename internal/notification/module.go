// Package notification reacts to pipeline events: it mails case outcomes to
// the configured recipients and streams every change to connected browsers.
// Domain modules publish events and never talk to mail or SSE directly.
package notification

import (
	"context"
	"time"

	"rivo_backend/internal/email"
	"rivo_backend/internal/events"
	apphttp "rivo_backend/internal/http"
	"rivo_backend/internal/notification/sse"
	"rivo_backend/internal/settings"
	"rivo_backend/platform/httpkit"
	"rivo_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// ClientNamer resolves a client's display name.
type ClientNamer interface {
	ClientName(ctx context.Context, id int64) (string, error)
}

// SettingsReader returns the current runtime settings.
type SettingsReader interface {
	Get() settings.Settings
}

// Module subscribes to pipeline events and implements http.Module for the
// event stream.
type Module struct {
	sender            email.Sender
	settings          SettingsReader
	clients           ClientNamer
	defaultRecipients []string
	sse               *sse.Service
	log               *logger.Logger
}

// New creates the notification module. defaultRecipients are used when the
// settings file lists none.
func New(sender email.Sender, st SettingsReader, clients ClientNamer, defaultRecipients []string, log *logger.Logger) *Module {
	return &Module{
		sender:            sender,
		settings:          st,
		clients:           clients,
		defaultRecipients: defaultRecipients,
		sse:               sse.New(log),
		log:               log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// SSE returns the live event stream service.
func (m *Module) SSE() *sse.Service {
	return m.sse
}

// RegisterHandlers subscribes the module to the pipeline events on bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.NameCaseStageChanged, events.HandlerFunc(m.handleCaseStageChanged))
	bus.Subscribe(events.NameLeadDropped, events.HandlerFunc(m.streamEvent))
	bus.Subscribe(events.NameLeadConverted, events.HandlerFunc(m.streamEvent))
	bus.Subscribe(events.NameClientStatusChanged, events.HandlerFunc(m.streamEvent))
	bus.Subscribe(events.NameCaseCreated, events.HandlerFunc(m.streamEvent))
}

// RegisterRoutes mounts the event stream on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/events/stream", m.sse.Handler(func(c *gin.Context) (int64, bool) {
		id := httpkit.GetIdentity(c)
		if !id.IsAuthenticated() {
			return 0, false
		}
		return id.UserID(), true
	}))
}

func (m *Module) handleCaseStageChanged(ctx context.Context, event events.Event) error {
	e, ok := event.(events.CaseStageChanged)
	if !ok {
		return nil
	}
	m.stream(e)

	if !e.Terminal {
		return nil
	}
	cfg := m.settings.Get().Notifications
	if !cfg.NotifiesStage(e.To) {
		return nil
	}

	recipients := cfg.Recipients
	if len(recipients) == 0 {
		recipients = m.defaultRecipients
	}
	if len(recipients) == 0 {
		m.log.Warn("case outcome not mailed: no recipients", "case_number", e.CaseNumber, "stage", e.To)
		return nil
	}

	clientName, err := m.clients.ClientName(ctx, e.ClientID)
	if err != nil {
		m.log.Warn("client name lookup failed", "client_id", e.ClientID, "error", err)
	}
	outcome := email.CaseOutcome{
		CaseNumber: e.CaseNumber,
		ClientName: clientName,
		Stage:      e.To,
		Notes:      e.Notes,
		ChangedAt:  e.OccurredAt().Format(time.DateTime),
	}

	var failed int
	for _, to := range recipients {
		if err := m.sender.SendCaseOutcomeEmail(ctx, to, outcome); err != nil {
			failed++
			m.log.Error("case outcome email failed", "case_number", e.CaseNumber, "to", to, "error", err)
		}
	}
	m.log.Info("case outcome mailed", "case_number", e.CaseNumber, "stage", e.To, "recipients", len(recipients), "failed", failed)
	return nil
}

func (m *Module) streamEvent(_ context.Context, event events.Event) error {
	m.stream(event)
	return nil
}

func (m *Module) stream(event events.Event) {
	switch e := event.(type) {
	case events.LeadDropped:
		m.sse.Broadcast(sse.Event{Type: sse.EventLeadDropped, Entity: "lead", EntityID: e.LeadID, Data: e})
	case events.LeadConverted:
		m.sse.Broadcast(sse.Event{Type: sse.EventLeadConverted, Entity: "lead", EntityID: e.LeadID, Data: e})
	case events.ClientStatusChanged:
		m.sse.Broadcast(sse.Event{Type: sse.EventClientStatusChanged, Entity: "client", EntityID: e.ClientID, Data: e})
	case events.CaseCreated:
		m.sse.Broadcast(sse.Event{Type: sse.EventCaseCreated, Entity: "case", EntityID: e.CaseID, Data: e})
	case events.CaseStageChanged:
		m.sse.Broadcast(sse.Event{Type: sse.EventCaseStageChanged, Entity: "case", EntityID: e.CaseID, Data: e})
	}
}

var _ apphttp.Module = (*Module)(nil)
