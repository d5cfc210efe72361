package notification

import (
	"context"
	"errors"
	"testing"

	"rivo_backend/internal/email"
	"rivo_backend/internal/events"
	"rivo_backend/internal/settings"
	"rivo_backend/platform/logger"
)

type recordingSender struct {
	sent []string
	fail map[string]bool
	last email.CaseOutcome
}

func (s *recordingSender) SendCaseOutcomeEmail(_ context.Context, to string, outcome email.CaseOutcome) error {
	if s.fail[to] {
		return errors.New("smtp down")
	}
	s.sent = append(s.sent, to)
	s.last = outcome
	return nil
}

type namer map[int64]string

func (n namer) ClientName(_ context.Context, id int64) (string, error) {
	name, ok := n[id]
	if !ok {
		return "", errors.New("not found")
	}
	return name, nil
}

func stageChanged(to string, terminal bool) events.CaseStageChanged {
	return events.CaseStageChanged{
		BaseEvent:  events.NewBaseEvent(),
		CaseID:     3,
		CaseNumber: "RV-00003",
		ClientID:   11,
		From:       "offer_issued",
		To:         to,
		Notes:      "keys handed over",
		Terminal:   terminal,
	}
}

func TestCaseOutcomeMail(t *testing.T) {
	defaults := settings.Defaults()
	withRecipients := settings.Defaults()
	withRecipients.Notifications.Recipients = []string{"ops@rivo.ae", "lead@rivo.ae"}
	disabled := withRecipients
	disabled.Notifications.Enabled = false
	onlyDisbursed := withRecipients
	onlyDisbursed.Notifications.Stages = []string{"disbursed"}

	tests := []struct {
		name     string
		settings settings.Settings
		fallback []string
		event    events.CaseStageChanged
		want     []string
	}{
		{name: "terminal stage mails settings recipients", settings: withRecipients, event: stageChanged("disbursed", true), want: []string{"ops@rivo.ae", "lead@rivo.ae"}},
		{name: "falls back to configured recipients", settings: defaults, fallback: []string{"cfg@rivo.ae"}, event: stageChanged("declined", true), want: []string{"cfg@rivo.ae"}},
		{name: "non terminal stage is not mailed", settings: withRecipients, event: stageChanged("valuation", false), want: nil},
		{name: "disabled notifications", settings: disabled, event: stageChanged("disbursed", true), want: nil},
		{name: "stage not selected", settings: onlyDisbursed, event: stageChanged("withdrawn", true), want: nil},
		{name: "no recipients anywhere", settings: defaults, event: stageChanged("disbursed", true), want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &recordingSender{}
			m := New(sender, settings.NewStatic(tt.settings), namer{11: "Sara Haddad"}, tt.fallback, logger.NewDiscard())

			if err := m.handleCaseStageChanged(context.Background(), tt.event); err != nil {
				t.Fatalf("handle: %v", err)
			}
			if len(sender.sent) != len(tt.want) {
				t.Fatalf("sent to %v, want %v", sender.sent, tt.want)
			}
			for i := range tt.want {
				if sender.sent[i] != tt.want[i] {
					t.Fatalf("sent to %v, want %v", sender.sent, tt.want)
				}
			}
			if len(tt.want) > 0 && (sender.last.ClientName != "Sara Haddad" || sender.last.CaseNumber != "RV-00003") {
				t.Fatalf("unexpected outcome %+v", sender.last)
			}
		})
	}
}

func TestCaseOutcomeMailContinuesPastFailures(t *testing.T) {
	s := settings.Defaults()
	s.Notifications.Recipients = []string{"a@rivo.ae", "b@rivo.ae"}
	sender := &recordingSender{fail: map[string]bool{"a@rivo.ae": true}}
	m := New(sender, settings.NewStatic(s), namer{}, nil, logger.NewDiscard())

	if err := m.handleCaseStageChanged(context.Background(), stageChanged("withdrawn", true)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "b@rivo.ae" {
		t.Fatalf("expected delivery to b only, got %v", sender.sent)
	}
	if sender.last.ClientName != "" {
		t.Fatalf("unknown client should leave name empty, got %q", sender.last.ClientName)
	}
}

func TestRegisterHandlersSubscribesToBus(t *testing.T) {
	s := settings.Defaults()
	s.Notifications.Recipients = []string{"ops@rivo.ae"}
	sender := &recordingSender{}
	m := New(sender, settings.NewStatic(s), namer{}, nil, logger.NewDiscard())

	bus := events.NewInMemoryBus(logger.NewDiscard())
	m.RegisterHandlers(bus)

	if err := bus.PublishSync(context.Background(), stageChanged("disbursed", true)); err != nil {
		t.Fatalf("PublishSync: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one mail via the bus, got %v", sender.sent)
	}
}
