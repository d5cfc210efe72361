package email

import (
	"context"
)

// CaseOutcome describes a case that reached a terminal stage.
type CaseOutcome struct {
	CaseNumber string
	ClientName string
	Stage      string
	Notes      string
	ChangedAt  string
}

type Sender interface {
	SendCaseOutcomeEmail(ctx context.Context, toEmail string, outcome CaseOutcome) error
}

// NoopSender discards mail when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendCaseOutcomeEmail(ctx context.Context, toEmail string, outcome CaseOutcome) error {
	return nil
}
