package service

import (
	"rivo_backend/internal/pipeline/domain"
	"rivo_backend/internal/pipeline/transport"
)

const dateLayout = "2006-01-02"

func toLeadResponse(l domain.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:          l.ID,
		FirstName:   l.FirstName,
		LastName:    l.LastName,
		Email:       l.Email,
		Phone:       l.Phone,
		SubSourceID: l.SubSourceID,
		Intent:      l.Intent,
		Transcript:  l.Transcript,
		Status:      string(l.Status),
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func toClientResponse(c domain.Client) transport.ClientResponse {
	resp := transport.ClientResponse{
		ID:                          c.ID,
		FirstName:                   c.FirstName,
		LastName:                    c.LastName,
		Email:                       c.Email,
		Phone:                       c.Phone,
		ResidencyStatus:             c.ResidencyStatus,
		Nationality:                 c.Nationality,
		EmploymentStatus:            c.EmploymentStatus,
		MonthlySalaryCents:          c.MonthlySalaryCents,
		MonthlyLiabilitiesCents:     c.MonthlyLiabilitiesCents,
		LoanAmountCents:             c.LoanAmountCents,
		EstimatedPropertyValueCents: c.EstimatedPropertyValueCents,
		EligibilityStatus:           string(c.EligibilityStatus),
		MaxLoanAmountCents:          c.MaxLoanAmountCents,
		SubSourceID:                 c.SubSourceID,
		CampaignID:                  c.CampaignID,
		ConvertedFromLeadID:         c.ConvertedFromLeadID,
		Status:                      string(c.Status),
		StatusReason:                c.StatusReason,
		CreatedAt:                   c.CreatedAt,
		UpdatedAt:                   c.UpdatedAt,
	}
	if c.DateOfBirth != nil {
		dob := c.DateOfBirth.Format(dateLayout)
		resp.DateOfBirth = &dob
	}
	if c.EstimatedDBRBps != nil {
		v := domain.FormatBps(*c.EstimatedDBRBps)
		resp.EstimatedDBR = &v
	}
	if c.EstimatedLTVBps != nil {
		v := domain.FormatBps(*c.EstimatedLTVBps)
		resp.EstimatedLTV = &v
	}
	return resp
}

func toCaseResponse(c domain.Case) transport.CaseResponse {
	resp := transport.CaseResponse{
		ID:                          c.ID,
		CaseNumber:                  c.CaseNumber,
		ClientID:                    c.ClientID,
		CaseType:                    c.CaseType,
		ServiceType:                 c.ServiceType,
		ApplicationType:             c.ApplicationType,
		MortgageType:                c.MortgageType,
		Emirate:                     c.Emirate,
		LoanAmountCents:             c.LoanAmountCents,
		TransactionType:             c.TransactionType,
		MortgageTermYears:           c.MortgageTermYears,
		MortgageTermMonths:          c.MortgageTermMonths,
		EstimatedPropertyValueCents: c.EstimatedPropertyValueCents,
		PropertyStatus:              c.PropertyStatus,
		BankName:                    c.BankName,
		RateType:                    c.RateType,
		RatePercentBps:              c.RatePercentBps,
		FixedPeriodYears:            c.FixedPeriodYears,
		Stage:                       string(c.Stage),
		StageReason:                 c.StageReason,
		IsTerminal:                  c.Stage.IsTerminal(),
		BankProductIDs:              c.BankProductIDs,
		CreatedAt:                   c.CreatedAt,
		UpdatedAt:                   c.UpdatedAt,
	}
	if resp.BankProductIDs == nil {
		resp.BankProductIDs = []int64{}
	}
	if next, ok := domain.NextStage(c.Stage); ok {
		n := string(next)
		resp.NextStage = &n
	}
	return resp
}

func toAttachmentResponses(items []domain.Attachment) []transport.AttachmentResponse {
	out := make([]transport.AttachmentResponse, len(items))
	for i, a := range items {
		out[i] = toAttachmentResponse(a)
	}
	return out
}

func toAttachmentResponse(a domain.Attachment) transport.AttachmentResponse {
	return transport.AttachmentResponse{
		ID:         a.ID,
		Type:       a.Type,
		Status:     a.Status,
		FileName:   a.FileName,
		HasFile:    a.FileKey != nil,
		UploadedAt: a.UploadedAt,
	}
}

func toCallLogResponses(items []domain.CallLog) []transport.CallLogResponse {
	out := make([]transport.CallLogResponse, len(items))
	for i, l := range items {
		out[i] = toCallLogResponse(l)
	}
	return out
}

func toCallLogResponse(l domain.CallLog) transport.CallLogResponse {
	return transport.CallLogResponse{
		ID:         l.ID,
		EntityKind: string(l.Entity.Kind),
		EntityID:   l.Entity.ID,
		Outcome:    string(l.Outcome),
		Notes:      l.Notes,
		CreatedAt:  l.CreatedAt,
	}
}

func toNoteResponses(items []domain.Note) []transport.NoteResponse {
	out := make([]transport.NoteResponse, len(items))
	for i, n := range items {
		out[i] = toNoteResponse(n)
	}
	return out
}

func toNoteResponse(n domain.Note) transport.NoteResponse {
	return transport.NoteResponse{
		ID:         n.ID,
		EntityKind: string(n.Entity.Kind),
		EntityID:   n.Entity.ID,
		Content:    n.Content,
		CreatedAt:  n.CreatedAt,
	}
}

func toLeadHistory(items []domain.LeadStatusChange) []transport.StatusChangeResponse {
	out := make([]transport.StatusChangeResponse, len(items))
	for i, c := range items {
		out[i] = transport.StatusChangeResponse{ID: c.ID, Type: string(c.Type), Notes: c.Notes, CreatedAt: c.CreatedAt}
	}
	return out
}

func toClientHistory(items []domain.ClientStatusChange) []transport.StatusChangeResponse {
	out := make([]transport.StatusChangeResponse, len(items))
	for i, c := range items {
		out[i] = transport.StatusChangeResponse{ID: c.ID, Type: string(c.Type), Notes: c.Notes, CreatedAt: c.CreatedAt}
	}
	return out
}

func toStageHistory(items []domain.CaseStageChange) []transport.StageChangeResponse {
	out := make([]transport.StageChangeResponse, len(items))
	for i, c := range items {
		var from *string
		if c.FromStage != nil {
			f := string(*c.FromStage)
			from = &f
		}
		out[i] = transport.StageChangeResponse{ID: c.ID, FromStage: from, ToStage: string(c.ToStage), Notes: c.Notes, CreatedAt: c.CreatedAt}
	}
	return out
}
