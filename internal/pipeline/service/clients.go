package service

import (
	"context"
	"strings"
	"time"

	"rivo_backend/internal/events"
	"rivo_backend/internal/pipeline/domain"
	"rivo_backend/internal/pipeline/ports"
	"rivo_backend/internal/pipeline/transport"
	"rivo_backend/platform/apperr"
	"rivo_backend/platform/sanitize"

	"golang.org/x/sync/errgroup"
)

// CreateClient registers a client directly from a trusted channel. Documents
// are seeded and eligibility is computed in the same unit of work.
func (s *Service) CreateClient(ctx context.Context, req transport.CreateClientRequest) (transport.ClientResponse, error) {
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return transport.ClientResponse{}, err
	}

	client := domain.Client{
		FirstName:                   strings.TrimSpace(req.FirstName),
		LastName:                    strings.TrimSpace(req.LastName),
		Email:                       trimOptional(req.Email),
		Phone:                       s.normalizePhone(req.Phone),
		ResidencyStatus:             orDefault(req.ResidencyStatus, domain.ResidencyResident),
		DateOfBirth:                 dob,
		Nationality:                 trimOptional(req.Nationality),
		EmploymentStatus:            orDefault(req.EmploymentStatus, domain.EmploymentEmployed),
		MonthlySalaryCents:          req.MonthlySalaryCents,
		MonthlyLiabilitiesCents:     req.MonthlyLiabilitiesCents,
		LoanAmountCents:             req.LoanAmountCents,
		EstimatedPropertyValueCents: req.EstimatedPropertyValueCents,
		SubSourceID:                 req.SubSourceID,
		CampaignID:                  req.CampaignID,
		Status:                      domain.ClientActive,
		EligibilityStatus:           domain.EligibilityPending,
	}
	client.Recalculate()

	err = s.store.WithinTx(ctx, func(tx ports.Tx) error {
		if err := tx.CreateClient(ctx, &client); err != nil {
			return err
		}
		return tx.CreateAttachments(ctx, domain.DocumentKind, domain.DocumentKind.Placeholders(client.ID))
	})
	if err != nil {
		return transport.ClientResponse{}, err
	}
	return toClientResponse(client), nil
}

// UpdateClient edits a client under the row lock and recalculates eligibility.
func (s *Service) UpdateClient(ctx context.Context, id int64, req transport.UpdateClientRequest) (transport.ClientResponse, error) {
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return transport.ClientResponse{}, err
	}

	var client domain.Client
	err = s.store.WithinTx(ctx, func(tx ports.Tx) error {
		var err error
		if client, err = tx.LockClient(ctx, id); err != nil {
			return err
		}
		s.applyClientUpdate(&client, req, dob)
		client.Recalculate()
		return tx.SaveClient(ctx, &client)
	})
	if err != nil {
		return transport.ClientResponse{}, err
	}
	return toClientResponse(client), nil
}

func (s *Service) applyClientUpdate(c *domain.Client, req transport.UpdateClientRequest, dob *time.Time) {
	if req.FirstName != nil {
		c.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		c.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		c.Email = trimOptional(req.Email)
	}
	if req.Phone != nil {
		c.Phone = s.normalizePhone(*req.Phone)
	}
	if req.ResidencyStatus != nil {
		c.ResidencyStatus = *req.ResidencyStatus
	}
	if req.DateOfBirth != nil {
		c.DateOfBirth = dob
	}
	if req.Nationality != nil {
		c.Nationality = trimOptional(req.Nationality)
	}
	if req.EmploymentStatus != nil {
		c.EmploymentStatus = *req.EmploymentStatus
	}
	if req.MonthlySalaryCents != nil {
		c.MonthlySalaryCents = *req.MonthlySalaryCents
	}
	req.MonthlyLiabilitiesCents.Apply(&c.MonthlyLiabilitiesCents)
	req.LoanAmountCents.Apply(&c.LoanAmountCents)
	req.EstimatedPropertyValueCents.Apply(&c.EstimatedPropertyValueCents)
	if req.SubSourceID != nil {
		c.SubSourceID = req.SubSourceID
	}
	if req.CampaignID != nil {
		c.CampaignID = req.CampaignID
	}
}

func (s *Service) GetClient(ctx context.Context, id int64) (transport.ClientDetailResponse, error) {
	client, err := s.store.GetClient(ctx, id)
	if err != nil {
		return transport.ClientDetailResponse{}, err
	}

	ref := domain.EntityRef{Kind: domain.EntityClient, ID: id}
	var (
		docs    []domain.Attachment
		cases   []domain.Case
		calls   []domain.CallLog
		notes   []domain.Note
		history []domain.ClientStatusChange
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { docs, err = s.store.ListAttachments(gctx, domain.DocumentKind, id); return })
	g.Go(func() (err error) { cases, err = s.store.ListClientCases(gctx, id); return })
	g.Go(func() (err error) { calls, err = s.store.ListCallLogs(gctx, ref); return })
	g.Go(func() (err error) { notes, err = s.store.ListNotes(gctx, ref); return })
	g.Go(func() (err error) { history, err = s.store.ListClientChanges(gctx, id); return })
	if err := g.Wait(); err != nil {
		return transport.ClientDetailResponse{}, err
	}

	caseItems := make([]transport.CaseResponse, len(cases))
	for i, c := range cases {
		caseItems[i] = toCaseResponse(c)
	}
	return transport.ClientDetailResponse{
		ClientResponse: toClientResponse(client),
		Documents:      toAttachmentResponses(docs),
		Cases:          caseItems,
		CallLogs:       toCallLogResponses(calls),
		Notes:          toNoteResponses(notes),
		StatusHistory:  toClientHistory(history),
	}, nil
}

// ClientName returns the client's full name for notifications.
func (s *Service) ClientName(ctx context.Context, id int64) (string, error) {
	client, err := s.store.GetClient(ctx, id)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(client.FirstName + " " + client.LastName), nil
}

func (s *Service) ListClients(ctx context.Context, req transport.ListClientsRequest) (transport.ListResponse[transport.ClientResponse], error) {
	filter := ports.ClientFilter{Search: strings.TrimSpace(req.Search), Page: normalizePage(req.Page, req.PageSize)}
	if req.Status != "" {
		status := domain.ClientStatus(req.Status)
		filter.Status = &status
	}
	if req.Eligibility != "" {
		eligibility := domain.EligibilityStatus(req.Eligibility)
		filter.Eligibility = &eligibility
	}

	clients, total, err := s.store.ListClients(ctx, filter)
	if err != nil {
		return transport.ListResponse[transport.ClientResponse]{}, err
	}
	items := make([]transport.ClientResponse, len(clients))
	for i, c := range clients {
		items[i] = toClientResponse(c)
	}
	return transport.ListResponse[transport.ClientResponse]{
		Items:      items,
		Total:      total,
		Page:       filter.Page.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages(total, filter.PageSize),
	}, nil
}

// DeleteClient removes a client with its documents and cases. Stored files
// are removed after commit on a best-effort basis.
func (s *Service) DeleteClient(ctx context.Context, id int64) error {
	var orphaned []storedFile
	err := s.store.WithinTx(ctx, func(tx ports.Tx) error {
		if _, err := tx.LockClient(ctx, id); err != nil {
			return err
		}
		files, err := s.ownedFiles(ctx, id)
		if err != nil {
			return err
		}
		orphaned = files
		return tx.DeleteClient(ctx, id)
	})
	if err != nil {
		return err
	}
	for _, f := range orphaned {
		s.removeFile(ctx, f.bucket, f.key)
	}
	return nil
}

type storedFile struct {
	bucket string
	key    string
}

func (s *Service) ownedFiles(ctx context.Context, clientID int64) ([]storedFile, error) {
	var out []storedFile
	docs, err := s.store.ListAttachments(ctx, domain.DocumentKind, clientID)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if d.FileKey != nil {
			out = append(out, storedFile{bucket: s.buckets.Documents, key: *d.FileKey})
		}
	}
	cases, err := s.store.ListClientCases(ctx, clientID)
	if err != nil {
		return nil, err
	}
	for _, c := range cases {
		forms, err := s.store.ListAttachments(ctx, domain.BankFormKind, c.ID)
		if err != nil {
			return nil, err
		}
		for _, f := range forms {
			if f.FileKey != nil {
				out = append(out, storedFile{bucket: s.buckets.BankForms, key: *f.FileKey})
			}
		}
	}
	return out, nil
}

func (s *Service) MarkNotProceeding(ctx context.Context, id int64, notes string) (transport.ClientResponse, error) {
	return s.closeClient(ctx, id, "mark_not_proceeding", notes, (*domain.Client).MarkNotProceeding)
}

// MarkNotEligible closes the client and overrides the calculated eligibility.
func (s *Service) MarkNotEligible(ctx context.Context, id int64, notes string) (transport.ClientResponse, error) {
	return s.closeClient(ctx, id, "mark_not_eligible", notes, (*domain.Client).MarkNotEligible)
}

func (s *Service) closeClient(
	ctx context.Context,
	id int64,
	operation, notes string,
	apply func(*domain.Client, string) (domain.ClientStatusChange, error),
) (transport.ClientResponse, error) {
	var client domain.Client
	err := s.transition(ctx, domain.EntityClient, id, operation, func(tx ports.Tx) error {
		var err error
		if client, err = tx.LockClient(ctx, id); err != nil {
			return err
		}
		change, err := apply(&client, notes)
		if err != nil {
			return err
		}
		if err := tx.SaveClient(ctx, &client); err != nil {
			return err
		}
		return tx.AddClientChange(ctx, &change)
	})
	if err != nil {
		return transport.ClientResponse{}, err
	}

	s.applied(ctx, domain.EntityClient, id, operation, string(domain.ClientActive), string(client.Status))
	s.publish(ctx, events.ClientStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		ClientID:  id,
		From:      string(domain.ClientActive),
		To:        string(client.Status),
		Notes:     notes,
	})
	return toClientResponse(client), nil
}

// CreateCase opens a case for an active client. The client stays active and
// may hold several cases.
func (s *Service) CreateCase(ctx context.Context, clientID int64, req transport.CreateCaseRequest) (transport.CreateCaseResponse, error) {
	params := domain.CaseParams{
		CaseType:                    req.CaseType,
		ServiceType:                 req.ServiceType,
		ApplicationType:             req.ApplicationType,
		MortgageType:                req.MortgageType,
		Emirate:                     req.Emirate,
		LoanAmountCents:             req.LoanAmountCents,
		TransactionType:             req.TransactionType,
		MortgageTermYears:           req.MortgageTermYears,
		MortgageTermMonths:          req.MortgageTermMonths,
		EstimatedPropertyValueCents: req.EstimatedPropertyValueCents,
		PropertyStatus:              req.PropertyStatus,
		BankName:                    trimOptional(req.BankName),
		RateType:                    req.RateType,
		RatePercentBps:              req.RatePercentBps,
		FixedPeriodYears:            req.FixedPeriodYears,
		BankProductIDs:              req.BankProductIDs,
		Notes:                       sanitize.Text(req.Notes),
	}

	var (
		client domain.Client
		c      domain.Case
	)
	err := s.transition(ctx, domain.EntityClient, clientID, "create_case", func(tx ports.Tx) error {
		var err error
		if client, err = tx.LockClient(ctx, clientID); err != nil {
			return err
		}
		if err := client.RequireActive(); err != nil {
			return err
		}

		n, err := tx.NextCaseNumber(ctx)
		if err != nil {
			return err
		}
		var stageChange domain.CaseStageChange
		c, stageChange = domain.NewCase(client, domain.FormatCaseNumber(n), params)
		if err := tx.CreateCase(ctx, &c); err != nil {
			return err
		}
		if err := tx.CreateAttachments(ctx, domain.BankFormKind, domain.BankFormKind.Placeholders(c.ID)); err != nil {
			return err
		}
		stageChange.CaseID = c.ID
		if err := tx.AddCaseChange(ctx, &stageChange); err != nil {
			return err
		}

		clientNote := params.Notes
		if clientNote != "" {
			note := domain.Note{
				Entity:  domain.EntityRef{Kind: domain.EntityCase, ID: c.ID},
				Content: domain.HandoverNotePrefix + clientNote,
			}
			if err := tx.AddNote(ctx, &note); err != nil {
				return err
			}
		} else {
			clientNote = domain.CaseCreatedClientNote(c.CaseNumber)
		}
		if err := tx.AddClientChange(ctx, &domain.ClientStatusChange{
			ClientID: clientID,
			Type:     domain.ClientChangeConvertedToCase,
			Notes:    clientNote,
		}); err != nil {
			return err
		}
		return tx.Touch(ctx, domain.EntityRef{Kind: domain.EntityClient, ID: clientID})
	})
	if err != nil {
		return transport.CreateCaseResponse{}, err
	}

	s.applied(ctx, domain.EntityCase, c.ID, "create", "", string(c.Stage))
	s.publish(ctx, events.CaseCreated{BaseEvent: events.NewBaseEvent(), CaseID: c.ID, CaseNumber: c.CaseNumber, ClientID: clientID})
	return transport.CreateCaseResponse{Client: toClientResponse(client), Case: toCaseResponse(c)}, nil
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, apperr.Validation("dateOfBirth must be YYYY-MM-DD")
	}
	return &t, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
