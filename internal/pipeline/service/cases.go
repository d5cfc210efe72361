package service

import (
	"context"
	"fmt"
	"strings"

	"rivo_backend/internal/events"
	"rivo_backend/internal/pipeline/domain"
	"rivo_backend/internal/pipeline/ports"
	"rivo_backend/internal/pipeline/transport"
	"rivo_backend/platform/apperr"

	"golang.org/x/sync/errgroup"
)

func (s *Service) GetCase(ctx context.Context, id int64) (transport.CaseDetailResponse, error) {
	c, err := s.store.GetCase(ctx, id)
	if err != nil {
		return transport.CaseDetailResponse{}, err
	}

	ref := domain.EntityRef{Kind: domain.EntityCase, ID: id}
	var (
		forms   []domain.Attachment
		calls   []domain.CallLog
		notes   []domain.Note
		history []domain.CaseStageChange
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { forms, err = s.store.ListAttachments(gctx, domain.BankFormKind, id); return })
	g.Go(func() (err error) { calls, err = s.store.ListCallLogs(gctx, ref); return })
	g.Go(func() (err error) { notes, err = s.store.ListNotes(gctx, ref); return })
	g.Go(func() (err error) { history, err = s.store.ListCaseChanges(gctx, id); return })
	if err := g.Wait(); err != nil {
		return transport.CaseDetailResponse{}, err
	}

	return transport.CaseDetailResponse{
		CaseResponse: toCaseResponse(c),
		BankForms:    toAttachmentResponses(forms),
		CallLogs:     toCallLogResponses(calls),
		Notes:        toNoteResponses(notes),
		StageHistory: toStageHistory(history),
	}, nil
}

func (s *Service) ListCases(ctx context.Context, req transport.ListCasesRequest) (transport.ListResponse[transport.CaseResponse], error) {
	filter := ports.CaseFilter{Search: strings.TrimSpace(req.Search), Page: normalizePage(req.Page, req.PageSize)}
	if req.Stage != "" {
		stage := domain.CaseStage(req.Stage)
		filter.Stage = &stage
	}
	switch req.Status {
	case "active":
		terminal := false
		filter.Terminal = &terminal
	case "terminal":
		terminal := true
		filter.Terminal = &terminal
	}
	if req.ClientID > 0 {
		clientID := req.ClientID
		filter.ClientID = &clientID
	}

	cases, total, err := s.store.ListCases(ctx, filter)
	if err != nil {
		return transport.ListResponse[transport.CaseResponse]{}, err
	}
	items := make([]transport.CaseResponse, len(cases))
	for i, c := range cases {
		items[i] = toCaseResponse(c)
	}
	return transport.ListResponse[transport.CaseResponse]{
		Items:      items,
		Total:      total,
		Page:       filter.Page.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages(total, filter.PageSize),
	}, nil
}

// UpdateCase edits deal fields under the row lock. The stage is untouched.
func (s *Service) UpdateCase(ctx context.Context, id int64, req transport.UpdateCaseRequest) (transport.CaseResponse, error) {
	var c domain.Case
	err := s.store.WithinTx(ctx, func(tx ports.Tx) error {
		var err error
		if c, err = tx.LockCase(ctx, id); err != nil {
			return err
		}
		setString(&c.CaseType, req.CaseType)
		setString(&c.ServiceType, req.ServiceType)
		setString(&c.ApplicationType, req.ApplicationType)
		setString(&c.MortgageType, req.MortgageType)
		setString(&c.Emirate, req.Emirate)
		setString(&c.TransactionType, req.TransactionType)
		setString(&c.PropertyStatus, req.PropertyStatus)
		if req.LoanAmountCents != nil {
			c.LoanAmountCents = *req.LoanAmountCents
		}
		if req.EstimatedPropertyValueCents != nil {
			c.EstimatedPropertyValueCents = *req.EstimatedPropertyValueCents
		}
		if req.MortgageTermYears != nil {
			c.MortgageTermYears = *req.MortgageTermYears
		}
		if req.MortgageTermMonths != nil {
			c.MortgageTermMonths = *req.MortgageTermMonths
		}
		if req.BankName != nil {
			c.BankName = trimOptional(req.BankName)
		}
		if req.RateType != nil {
			c.RateType = req.RateType
		}
		if req.RatePercentBps != nil {
			c.RatePercentBps = req.RatePercentBps
		}
		if req.FixedPeriodYears != nil {
			c.FixedPeriodYears = req.FixedPeriodYears
		}
		return tx.SaveCase(ctx, &c)
	})
	if err != nil {
		return transport.CaseResponse{}, err
	}
	return toCaseResponse(c), nil
}

// AdvanceStage moves the case to the next stage of the happy path.
func (s *Service) AdvanceStage(ctx context.Context, id int64, notes string) (transport.CaseResponse, error) {
	return s.moveCase(ctx, id, "advance", func(c *domain.Case) (domain.CaseStageChange, bool, error) {
		change, err := c.Advance(notes)
		return change, err == nil, err
	})
}

func (s *Service) DeclineCase(ctx context.Context, id int64, reason string) (transport.CaseResponse, error) {
	return s.moveCase(ctx, id, "decline", func(c *domain.Case) (domain.CaseStageChange, bool, error) {
		change, err := c.Decline(reason)
		return change, err == nil, err
	})
}

func (s *Service) WithdrawCase(ctx context.Context, id int64, reason string) (transport.CaseResponse, error) {
	return s.moveCase(ctx, id, "withdraw", func(c *domain.Case) (domain.CaseStageChange, bool, error) {
		change, err := c.Withdraw(reason)
		return change, err == nil, err
	})
}

// SetStage writes any known stage, as the kanban board does. Setting the
// current stage changes nothing and writes no audit row.
func (s *Service) SetStage(ctx context.Context, id int64, stage, notes string) (transport.CaseResponse, error) {
	if !domain.IsKnownStage(stage) {
		return transport.CaseResponse{}, apperr.Validation(fmt.Sprintf("unknown case stage %q", stage))
	}
	return s.moveCase(ctx, id, "set_stage", func(c *domain.Case) (domain.CaseStageChange, bool, error) {
		return c.SetStage(domain.CaseStage(stage), notes)
	})
}

func (s *Service) moveCase(
	ctx context.Context,
	id int64,
	operation string,
	apply func(*domain.Case) (domain.CaseStageChange, bool, error),
) (transport.CaseResponse, error) {
	var (
		c       domain.Case
		from    domain.CaseStage
		change  domain.CaseStageChange
		changed bool
	)
	err := s.transition(ctx, domain.EntityCase, id, operation, func(tx ports.Tx) error {
		var err error
		if c, err = tx.LockCase(ctx, id); err != nil {
			return err
		}
		from = c.Stage
		change, changed, err = apply(&c)
		if err != nil || !changed {
			return err
		}
		if err := tx.SaveCase(ctx, &c); err != nil {
			return err
		}
		return tx.AddCaseChange(ctx, &change)
	})
	if err != nil {
		return transport.CaseResponse{}, err
	}

	if changed {
		s.applied(ctx, domain.EntityCase, id, operation, string(from), string(c.Stage))
		s.publish(ctx, events.CaseStageChanged{
			BaseEvent:  events.NewBaseEvent(),
			CaseID:     id,
			CaseNumber: c.CaseNumber,
			ClientID:   c.ClientID,
			From:       string(from),
			To:         string(c.Stage),
			Notes:      change.Notes,
			Terminal:   c.Stage.IsTerminal(),
		})
	}
	return toCaseResponse(c), nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
