// Package service serves reference data used by the pipeline: lead origins,
// campaigns, bank products and EIBOR rates.
package service

import (
	"context"
	"time"

	"rivo_backend/internal/reference/repository"
	"rivo_backend/internal/reference/transport"
	"rivo_backend/platform/apperr"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultPageSize = 20

type Service struct {
	repo repository.Repository
}

func New(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListChannels(ctx context.Context) ([]transport.ChannelResponse, error) {
	items, err := s.repo.ListChannels(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.ChannelResponse, 0, len(items))
	for _, c := range items {
		out = append(out, transport.ChannelResponse{ID: c.ID, Name: c.Name, TrustLevel: c.TrustLevel})
	}
	return out, nil
}

func (s *Service) ListSources(ctx context.Context, req transport.ListSourcesRequest) ([]transport.SourceResponse, error) {
	items, err := s.repo.ListSources(ctx, req.ChannelID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.SourceResponse, 0, len(items))
	for _, src := range items {
		out = append(out, transport.SourceResponse{
			ID:           src.ID.String(),
			ChannelID:    src.ChannelID,
			Name:         src.Name,
			ContactPhone: src.ContactPhone,
		})
	}
	return out, nil
}

func (s *Service) ListSubSources(ctx context.Context, req transport.ListSubSourcesRequest) ([]transport.SubSourceResponse, error) {
	var sourceID *uuid.UUID
	if req.SourceID != "" {
		id, err := uuid.Parse(req.SourceID)
		if err != nil {
			return nil, apperr.Validation("invalid source id")
		}
		sourceID = &id
	}

	items, err := s.repo.ListSubSources(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.SubSourceResponse, 0, len(items))
	for _, sub := range items {
		out = append(out, transport.SubSourceResponse{
			ID:            sub.ID.String(),
			SourceID:      sub.SourceID.String(),
			Name:          sub.Name,
			ContactPhone:  sub.ContactPhone,
			Status:        sub.Status,
			DefaultSLAMin: sub.DefaultSLAMin,
		})
	}
	return out, nil
}

func (s *Service) ListCampaigns(ctx context.Context, req transport.ListCampaignsRequest) ([]transport.CampaignResponse, error) {
	items, err := s.repo.ListCampaigns(ctx, req.Status)
	if err != nil {
		return nil, err
	}
	out := make([]transport.CampaignResponse, 0, len(items))
	for _, c := range items {
		out = append(out, transport.CampaignResponse{ID: c.ID, Name: c.Name, Status: c.Status})
	}
	return out, nil
}

// ListBankProducts loads the page and the latest EIBOR rates concurrently and
// prices each product against them.
func (s *Service) ListBankProducts(ctx context.Context, req transport.ListBankProductsRequest) (transport.BankProductListResponse, error) {
	page := max(req.Page, 1)
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	var (
		items []repository.BankProduct
		total int
		rates []repository.EiborRate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, total, err = s.repo.ListBankProducts(gctx, repository.ListBankProductsParams{
			Active:           req.Active,
			Exclusive:        req.Exclusive,
			BankName:         req.BankName,
			MortgageType:     req.MortgageType,
			InterestRateType: req.InterestRateType,
			MinLTV:           req.MinLTV,
			Offset:           (page - 1) * pageSize,
			Limit:            pageSize,
		})
		return err
	})
	g.Go(func() error {
		var err error
		rates, err = s.repo.LatestEiborRates(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.BankProductListResponse{}, err
	}

	byTerm := ratesByTerm(rates)
	out := make([]transport.BankProductResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toBankProductResponse(p, byTerm))
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return transport.BankProductListResponse{
		Items:      out,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *Service) GetBankProduct(ctx context.Context, id int64) (transport.BankProductResponse, error) {
	p, err := s.repo.GetBankProduct(ctx, id)
	if err != nil {
		return transport.BankProductResponse{}, err
	}
	rates, err := s.repo.LatestEiborRates(ctx)
	if err != nil {
		return transport.BankProductResponse{}, err
	}
	return toBankProductResponse(p, ratesByTerm(rates)), nil
}

func (s *Service) LatestEiborRates(ctx context.Context) (transport.EiborRatesResponse, error) {
	rates, err := s.repo.LatestEiborRates(ctx)
	if err != nil {
		return transport.EiborRatesResponse{}, err
	}

	var resp transport.EiborRatesResponse
	if len(rates) == 0 {
		return resp, nil
	}

	byTerm := ratesByTerm(rates)
	resp.Overnight = byTerm["overnight"]
	resp.OneWeek = byTerm["1_week"]
	resp.OneMonth = byTerm["1_month"]
	resp.ThreeMonths = byTerm["3_months"]
	resp.SixMonths = byTerm["6_months"]
	resp.OneYear = byTerm["1_year"]
	date := rates[0].RateDate.Format(time.DateOnly)
	resp.LastUpdated = &date
	return resp, nil
}

func ratesByTerm(rates []repository.EiborRate) map[string]*string {
	out := make(map[string]*string, len(rates))
	for _, r := range rates {
		rate := r.Rate
		out[r.Term] = &rate
	}
	return out
}

func toBankProductResponse(p repository.BankProduct, rates map[string]*string) transport.BankProductResponse {
	eibor := rates[eiborTerms[p.EiborType]]
	resp := transport.BankProductResponse{
		ID:                   p.ID,
		BankName:             p.BankName,
		BankLogo:             p.BankLogo,
		MortgageType:         p.MortgageType,
		InterestRateType:     p.InterestRateType,
		EiborType:            p.EiborType,
		EiborRate:            eibor,
		VariableRateAddition: p.VariableRateAddition,
		FixedRate:            p.FixedRate,
		FixedUntil:           p.FixedUntil,
		EffectiveRate:        effectiveRate(p.InterestRateType, p.FixedRate, eibor, p.VariableRateAddition),
		LoanToValueRatio:     p.LoanToValueRatio,
		MaximumLengthYears:   p.MaximumLengthYears,
		IsExclusive:          p.IsExclusive,
		IsActive:             p.IsActive,
	}
	if p.ExpiryDate != nil {
		d := p.ExpiryDate.Format(time.DateOnly)
		resp.ExpiryDate = &d
	}
	return resp
}
