package service

import (
	"context"
	"strings"

	"rivo_backend/internal/events"
	"rivo_backend/internal/pipeline/domain"
	"rivo_backend/internal/pipeline/ports"
	"rivo_backend/internal/pipeline/transport"
	"rivo_backend/platform/apperr"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

func (s *Service) CreateLead(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	lead := domain.Lead{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Email:       trimOptional(req.Email),
		Phone:       s.normalizePhone(req.Phone),
		SubSourceID: req.SubSourceID,
		Intent:      strings.TrimSpace(req.Intent),
		Transcript:  req.Transcript,
		Status:      domain.LeadNew,
	}

	err := s.store.WithinTx(ctx, func(tx ports.Tx) error {
		return tx.CreateLead(ctx, &lead)
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return toLeadResponse(lead), nil
}

// UpdateLead edits intake details under the row lock. Status is left alone.
func (s *Service) UpdateLead(ctx context.Context, id int64, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	var lead domain.Lead
	err := s.store.WithinTx(ctx, func(tx ports.Tx) error {
		var err error
		lead, err = tx.LockLead(ctx, id)
		if err != nil {
			return err
		}
		if req.FirstName != nil {
			lead.FirstName = strings.TrimSpace(*req.FirstName)
		}
		if req.LastName != nil {
			lead.LastName = strings.TrimSpace(*req.LastName)
		}
		if req.Email != nil {
			lead.Email = trimOptional(req.Email)
		}
		if req.Phone != nil {
			lead.Phone = s.normalizePhone(*req.Phone)
		}
		if req.SubSourceID != nil {
			lead.SubSourceID = req.SubSourceID
		}
		if req.Intent != nil {
			lead.Intent = strings.TrimSpace(*req.Intent)
		}
		if req.Transcript != nil {
			lead.Transcript = req.Transcript
		}
		return tx.SaveLead(ctx, &lead)
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return toLeadResponse(lead), nil
}

func (s *Service) GetLead(ctx context.Context, id int64) (transport.LeadDetailResponse, error) {
	lead, err := s.store.GetLead(ctx, id)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	ref := domain.EntityRef{Kind: domain.EntityLead, ID: id}
	var (
		calls    []domain.CallLog
		notes    []domain.Note
		history  []domain.LeadStatusChange
		clientID *int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { calls, err = s.store.ListCallLogs(gctx, ref); return })
	g.Go(func() (err error) { notes, err = s.store.ListNotes(gctx, ref); return })
	g.Go(func() (err error) { history, err = s.store.ListLeadChanges(gctx, id); return })
	if lead.Status == domain.LeadConverted {
		g.Go(func() (err error) { clientID, err = s.store.ConvertedClientID(gctx, id); return })
	}
	if err := g.Wait(); err != nil {
		return transport.LeadDetailResponse{}, err
	}

	return transport.LeadDetailResponse{
		LeadResponse:      toLeadResponse(lead),
		ConvertedClientID: clientID,
		CallLogs:          toCallLogResponses(calls),
		Notes:             toNoteResponses(notes),
		StatusHistory:     toLeadHistory(history),
	}, nil
}

func (s *Service) ListLeads(ctx context.Context, req transport.ListLeadsRequest) (transport.ListResponse[transport.LeadResponse], error) {
	filter := ports.LeadFilter{Search: strings.TrimSpace(req.Search), Page: normalizePage(req.Page, req.PageSize)}
	if req.Status != "" {
		status := domain.LeadStatus(req.Status)
		filter.Status = &status
	}
	if req.SubSourceID != "" {
		id, err := uuid.Parse(req.SubSourceID)
		if err != nil {
			return transport.ListResponse[transport.LeadResponse]{}, apperr.Validation("invalid subSourceId")
		}
		filter.SubSourceID = &id
	}

	leads, total, err := s.store.ListLeads(ctx, filter)
	if err != nil {
		return transport.ListResponse[transport.LeadResponse]{}, err
	}
	items := make([]transport.LeadResponse, len(leads))
	for i, l := range leads {
		items[i] = toLeadResponse(l)
	}
	return transport.ListResponse[transport.LeadResponse]{
		Items:      items,
		Total:      total,
		Page:       filter.Page.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages(total, filter.PageSize),
	}, nil
}

// DropLead moves a new lead to dropped.
func (s *Service) DropLead(ctx context.Context, id int64, notes string) (transport.LeadResponse, error) {
	var lead domain.Lead
	err := s.transition(ctx, domain.EntityLead, id, "drop", func(tx ports.Tx) error {
		var err error
		if lead, err = tx.LockLead(ctx, id); err != nil {
			return err
		}
		change, err := lead.Drop(notes)
		if err != nil {
			return err
		}
		if err := tx.SaveLead(ctx, &lead); err != nil {
			return err
		}
		return tx.AddLeadChange(ctx, &change)
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.applied(ctx, domain.EntityLead, id, "drop", string(domain.LeadNew), string(lead.Status))
	s.publish(ctx, events.LeadDropped{BaseEvent: events.NewBaseEvent(), LeadID: id, Notes: notes})
	return toLeadResponse(lead), nil
}

// ConvertLead turns a new lead into an active client with placeholder
// documents. Either every row is written or none is.
func (s *Service) ConvertLead(ctx context.Context, id int64, notes string) (transport.ConvertLeadResponse, error) {
	var (
		lead   domain.Lead
		client domain.Client
	)
	err := s.transition(ctx, domain.EntityLead, id, "convert", func(tx ports.Tx) error {
		var err error
		if lead, err = tx.LockLead(ctx, id); err != nil {
			return err
		}
		leadChange, err := lead.Convert(notes)
		if err != nil {
			return err
		}

		client = domain.NewClientFromLead(lead)
		if err := tx.CreateClient(ctx, &client); err != nil {
			return err
		}
		if err := tx.CreateAttachments(ctx, domain.DocumentKind, domain.DocumentKind.Placeholders(client.ID)); err != nil {
			return err
		}
		if err := tx.SaveLead(ctx, &lead); err != nil {
			return err
		}
		if err := tx.AddLeadChange(ctx, &leadChange); err != nil {
			return err
		}
		return tx.AddClientChange(ctx, &domain.ClientStatusChange{
			ClientID: client.ID,
			Type:     domain.ClientChangeConvertedFromLead,
			Notes:    notes,
		})
	})
	if err != nil {
		return transport.ConvertLeadResponse{}, err
	}

	s.applied(ctx, domain.EntityLead, id, "convert", string(domain.LeadNew), string(lead.Status))
	s.publish(ctx, events.LeadConverted{BaseEvent: events.NewBaseEvent(), LeadID: id, ClientID: client.ID})
	return transport.ConvertLeadResponse{Lead: toLeadResponse(lead), Client: toClientResponse(client)}, nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
