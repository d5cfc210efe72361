package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"rivo_backend/internal/pipeline/domain"
	"rivo_backend/internal/pipeline/transport"
	"rivo_backend/platform/apperr"
	"rivo_backend/platform/events"
	"rivo_backend/platform/logger"
)

type fixture struct {
	svc      *Service
	store    *memStore
	files    *memFiles
	cleanup  *recordingCleanup
	observer *recordingObserver
	bus      *events.InMemoryBus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    newMemStore(),
		files:    newMemFiles(),
		cleanup:  &recordingCleanup{},
		observer: &recordingObserver{},
		bus:      events.NewInMemoryBus(logger.NewDiscard()),
	}
	f.svc = New(Deps{
		Store:       f.store,
		Files:       f.files,
		Cleanup:     f.cleanup,
		Observer:    f.observer,
		Bus:         f.bus,
		Buckets:     Buckets{Documents: "documents", BankForms: "bank-forms"},
		MaxFileSize: 1 << 20,
	})
	return f
}

func (f *fixture) lead(t *testing.T) transport.LeadResponse {
	t.Helper()
	lead, err := f.svc.CreateLead(context.Background(), transport.CreateLeadRequest{
		FirstName: " Sara ",
		LastName:  "Khan",
		Phone:     "050 123 4567",
		Intent:    "buy a villa",
	})
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}
	return lead
}

func (f *fixture) client(t *testing.T) transport.ClientResponse {
	t.Helper()
	out, err := f.svc.ConvertLead(context.Background(), f.lead(t).ID, "qualified on first call")
	if err != nil {
		t.Fatalf("ConvertLead: %v", err)
	}
	return out.Client
}

func (f *fixture) openCase(t *testing.T, clientID int64, req transport.CreateCaseRequest) transport.CaseResponse {
	t.Helper()
	out, err := f.svc.CreateCase(context.Background(), clientID, req)
	if err != nil {
		t.Fatalf("CreateCase: %v", err)
	}
	return out.Case
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", kind)
	}
	if got := apperr.GetKind(err); got != kind {
		t.Fatalf("expected error kind %v, got %v (%v)", kind, got, err)
	}
}

func ptr[T any](v T) *T { return &v }

func TestConvertLeadCreatesClientWithDocuments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.lead(t)

	out, err := f.svc.ConvertLead(ctx, lead.ID, "ready to proceed")
	if err != nil {
		t.Fatalf("ConvertLead: %v", err)
	}
	if out.Lead.Status != string(domain.LeadConverted) {
		t.Fatalf("expected lead converted, got %q", out.Lead.Status)
	}
	if out.Client.Status != string(domain.ClientActive) || out.Client.EligibilityStatus != string(domain.EligibilityPending) {
		t.Fatalf("unexpected client state %q/%q", out.Client.Status, out.Client.EligibilityStatus)
	}
	if out.Client.FirstName != "Sara" || out.Client.ConvertedFromLeadID == nil || *out.Client.ConvertedFromLeadID != lead.ID {
		t.Fatalf("client not copied from lead: %+v", out.Client)
	}

	docs, err := f.svc.ListAttachments(ctx, domain.DocumentKind, out.Client.ID)
	if err != nil {
		t.Fatalf("ListAttachments: %v", err)
	}
	if len(docs) != len(domain.DocumentKind.DefaultTypes) {
		t.Fatalf("expected %d documents, got %d", len(domain.DocumentKind.DefaultTypes), len(docs))
	}
	for _, d := range docs {
		if d.Status != domain.AttachmentMissing || d.HasFile {
			t.Fatalf("document %q should be a missing placeholder", d.Type)
		}
	}

	detail, err := f.svc.GetLead(ctx, lead.ID)
	if err != nil {
		t.Fatalf("GetLead: %v", err)
	}
	if detail.ConvertedClientID == nil || *detail.ConvertedClientID != out.Client.ID {
		t.Fatalf("expected converted client id %d", out.Client.ID)
	}
	if len(detail.StatusHistory) != 1 || detail.StatusHistory[0].Type != string(domain.LeadChangeConvertedToClient) {
		t.Fatalf("unexpected lead history %+v", detail.StatusHistory)
	}

	client, err := f.svc.GetClient(ctx, out.Client.ID)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if len(client.StatusHistory) != 1 || client.StatusHistory[0].Type != string(domain.ClientChangeConvertedFromLead) {
		t.Fatalf("unexpected client history %+v", client.StatusHistory)
	}
}

func TestConvertLeadIsAtomic(t *testing.T) {
	for _, op := range []string{"CreateClient", "CreateAttachments", "SaveLead", "AddLeadChange", "AddClientChange"} {
		t.Run(op, func(t *testing.T) {
			f := newFixture(t)
			lead := f.lead(t)
			f.store.fail[op] = errors.New("connection reset")

			if _, err := f.svc.ConvertLead(context.Background(), lead.ID, ""); err == nil {
				t.Fatal("expected conversion to fail")
			}

			st := f.store.snapshot()
			if got := st.leads[lead.ID].Status; got != domain.LeadNew {
				t.Fatalf("lead status should stay new, got %q", got)
			}
			if len(st.clients) != 0 || len(st.attachments[domain.DocumentKind.Name]) != 0 {
				t.Fatal("no client or documents should survive a failed conversion")
			}
			if len(st.leadChanges) != 0 || len(st.clientChanges) != 0 {
				t.Fatal("no audit rows should survive a failed conversion")
			}
		})
	}
}

func TestLeadTransitionsRequireNew(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.lead(t)

	if _, err := f.svc.DropLead(ctx, lead.ID, "not interested"); err != nil {
		t.Fatalf("DropLead: %v", err)
	}

	_, err := f.svc.ConvertLead(ctx, lead.ID, "")
	assertKind(t, err, apperr.KindConflict)
	if err.Error() != `Lead is in "dropped" state. Required: new.` {
		t.Fatalf("unexpected message %q", err.Error())
	}
	_, err = f.svc.DropLead(ctx, lead.ID, "")
	assertKind(t, err, apperr.KindConflict)

	if len(f.observer.rejected) != 2 || f.observer.rejected[0] != "lead.convert" {
		t.Fatalf("expected rejections to be observed, got %v", f.observer.rejected)
	}
	if len(f.store.snapshot().leadChanges) != 1 {
		t.Fatal("rejected transitions must not write audit rows")
	}
}

func TestDropLeadPublishesEvent(t *testing.T) {
	f := newFixture(t)
	lead := f.lead(t)

	got := make(chan events.Event, 1)
	f.bus.Subscribe("pipeline.lead.dropped", events.HandlerFunc(func(_ context.Context, e events.Event) error {
		got <- e
		return nil
	}))

	if _, err := f.svc.DropLead(context.Background(), lead.ID, "duplicate"); err != nil {
		t.Fatalf("DropLead: %v", err)
	}
	f.bus.Wait()
	select {
	case e := <-got:
		if e.EventName() != "pipeline.lead.dropped" {
			t.Fatalf("unexpected event %q", e.EventName())
		}
	default:
		t.Fatal("expected a dropped event")
	}
}

func TestMissingEntitiesAreNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ConvertLead(ctx, 404, "")
	assertKind(t, err, apperr.KindNotFound)
	_, err = f.svc.MarkNotEligible(ctx, 404, "")
	assertKind(t, err, apperr.KindNotFound)
	_, err = f.svc.AdvanceStage(ctx, 404, "")
	assertKind(t, err, apperr.KindNotFound)
	_, err = f.svc.LogCall(ctx, domain.EntityRef{Kind: domain.EntityCase, ID: 404}, transport.LogCallRequest{Outcome: "busy"})
	assertKind(t, err, apperr.KindNotFound)
}

func TestCreateClientComputesEligibility(t *testing.T) {
	f := newFixture(t)

	client, err := f.svc.CreateClient(context.Background(), transport.CreateClientRequest{
		FirstName:                   "Omar",
		LastName:                    "Haddad",
		Phone:                       "+971501234567",
		MonthlySalaryCents:          1_000_000,
		MonthlyLiabilitiesCents:     ptr[int64](300_000),
		LoanAmountCents:             ptr[int64](50_000_000),
		EstimatedPropertyValueCents: ptr[int64](70_000_000),
	})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if client.EligibilityStatus != string(domain.EligibilityEligible) {
		t.Fatalf("expected eligible, got %q", client.EligibilityStatus)
	}
	if client.EstimatedDBR == nil || *client.EstimatedDBR != "30.00" {
		t.Fatalf("unexpected DBR %v", client.EstimatedDBR)
	}
	if client.EstimatedLTV == nil || *client.EstimatedLTV != "71.43" {
		t.Fatalf("unexpected LTV %v", client.EstimatedLTV)
	}
	if client.MaxLoanAmountCents == nil || *client.MaxLoanAmountCents != 48_000_000 {
		t.Fatalf("unexpected max loan %v", client.MaxLoanAmountCents)
	}
	if client.ResidencyStatus != domain.ResidencyResident || client.EmploymentStatus != domain.EmploymentEmployed {
		t.Fatal("expected residency and employment defaults")
	}

	docs, _ := f.svc.ListAttachments(context.Background(), domain.DocumentKind, client.ID)
	if len(docs) != len(domain.DocumentKind.DefaultTypes) {
		t.Fatalf("expected placeholder documents, got %d", len(docs))
	}
}

func TestUpdateClientRecalculates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)

	salary := int64(1_000_000)
	req := transport.UpdateClientRequest{MonthlySalaryCents: &salary}
	req.MonthlyLiabilitiesCents = transport.OptionalInt64{Value: ptr[int64](600_000), Set: true}
	updated, err := f.svc.UpdateClient(ctx, client.ID, req)
	if err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}
	if updated.EligibilityStatus != string(domain.EligibilityNotEligible) {
		t.Fatalf("DBR of 60%% should be not eligible, got %q", updated.EligibilityStatus)
	}

	req = transport.UpdateClientRequest{MonthlyLiabilitiesCents: transport.OptionalInt64{Set: true}}
	updated, err = f.svc.UpdateClient(ctx, client.ID, req)
	if err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}
	if updated.MonthlyLiabilitiesCents != nil || updated.EstimatedDBR != nil {
		t.Fatal("clearing liabilities should clear the DBR")
	}
}

func TestMarkNotEligibleOverridesCalculation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)

	out, err := f.svc.MarkNotEligible(ctx, client.ID, "salary below bank minimum")
	if err != nil {
		t.Fatalf("MarkNotEligible: %v", err)
	}
	if out.Status != string(domain.ClientNotEligible) || out.EligibilityStatus != string(domain.EligibilityNotEligible) {
		t.Fatalf("unexpected state %q/%q", out.Status, out.EligibilityStatus)
	}
	if out.StatusReason == nil || *out.StatusReason != "salary below bank minimum" {
		t.Fatal("expected status reason to be recorded")
	}

	salary := int64(5_000_000)
	updated, err := f.svc.UpdateClient(ctx, client.ID, transport.UpdateClientRequest{MonthlySalaryCents: &salary})
	if err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}
	if updated.EligibilityStatus != string(domain.EligibilityNotEligible) {
		t.Fatal("operator verdict must survive recalculation")
	}
	if updated.MaxLoanAmountCents == nil || *updated.MaxLoanAmountCents != 600_000_000 {
		t.Fatalf("derived figures should still refresh, max loan = %v", updated.MaxLoanAmountCents)
	}

	_, err = f.svc.MarkNotProceeding(ctx, client.ID, "")
	assertKind(t, err, apperr.KindConflict)
	_, err = f.svc.CreateCase(ctx, client.ID, transport.CreateCaseRequest{})
	assertKind(t, err, apperr.KindConflict)
}

func TestCreateCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)

	out, err := f.svc.CreateCase(ctx, client.ID, transport.CreateCaseRequest{
		LoanAmountCents: ptr[int64](0),
		BankProductIDs:  []int64{4, 99, 2, 1, 3},
		Notes:           "Prefers Islamic products",
	})
	if err != nil {
		t.Fatalf("CreateCase: %v", err)
	}
	c := out.Case
	if c.CaseNumber != "RV-00001" || c.Stage != string(domain.StageProcessing) {
		t.Fatalf("unexpected case %s in %s", c.CaseNumber, c.Stage)
	}
	if out.Client.Status != string(domain.ClientActive) {
		t.Fatal("client must stay active after opening a case")
	}
	if c.Emirate != domain.DefaultEmirate || c.MortgageTermYears != domain.DefaultMortgageTermYears || c.LoanAmountCents != 0 {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if got := c.BankProductIDs; len(got) != 2 || got[0] != 4 || got[1] != 2 {
		t.Fatalf("expected first three ids with unknown skipped, got %v", got)
	}
	if c.NextStage == nil || *c.NextStage != string(domain.StageSubmitted) {
		t.Fatal("expected next stage submitted")
	}

	detail, err := f.svc.GetCase(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCase: %v", err)
	}
	if len(detail.BankForms) != len(domain.BankFormKind.DefaultTypes) {
		t.Fatalf("expected %d bank forms, got %d", len(domain.BankFormKind.DefaultTypes), len(detail.BankForms))
	}
	if len(detail.StageHistory) != 1 || detail.StageHistory[0].FromStage != nil || detail.StageHistory[0].Notes != "Prefers Islamic products" {
		t.Fatalf("unexpected stage history %+v", detail.StageHistory)
	}
	if len(detail.Notes) != 1 || detail.Notes[0].Content != domain.HandoverNotePrefix+"Prefers Islamic products" {
		t.Fatalf("expected handover note, got %+v", detail.Notes)
	}

	second := f.openCase(t, client.ID, transport.CreateCaseRequest{})
	if second.CaseNumber != "RV-00002" {
		t.Fatalf("case numbers must increase, got %s", second.CaseNumber)
	}

	history, _ := f.store.ListClientChanges(ctx, client.ID)
	if len(history) != 3 {
		t.Fatalf("expected 3 client audit rows, got %d", len(history))
	}
	if history[1].Notes != "Prefers Islamic products" || history[2].Notes != "Case RV-00002 created" {
		t.Fatalf("unexpected client audit notes %q / %q", history[1].Notes, history[2].Notes)
	}
	secondHistory, _ := f.store.ListCaseChanges(ctx, second.ID)
	if secondHistory[0].Notes != domain.CaseCreatedNote {
		t.Fatalf("expected default case note, got %q", secondHistory[0].Notes)
	}
	if f.store.snapshot().touched[domain.EntityRef{Kind: domain.EntityClient, ID: client.ID}] != 2 {
		t.Fatal("client should be touched once per case")
	}
}

func TestCaseWalkToDisbursed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.openCase(t, f.client(t).ID, transport.CreateCaseRequest{})

	want := []domain.CaseStage{
		domain.StageSubmitted, domain.StageUnderReview, domain.StagePreApproved, domain.StageValuation,
		domain.StageFOLProcessing, domain.StageFOLReceived, domain.StageFOLSigned, domain.StageDisbursed,
	}
	for _, stage := range want {
		out, err := f.svc.AdvanceStage(ctx, c.ID, "")
		if err != nil {
			t.Fatalf("advance to %s: %v", stage, err)
		}
		if out.Stage != string(stage) {
			t.Fatalf("expected %s, got %s", stage, out.Stage)
		}
	}

	_, err := f.svc.AdvanceStage(ctx, c.ID, "")
	assertKind(t, err, apperr.KindConflict)
	if !strings.HasPrefix(err.Error(), `Cannot transition from "disbursed"`) {
		t.Fatalf("unexpected message %q", err.Error())
	}

	history, _ := f.store.ListCaseChanges(ctx, c.ID)
	if len(history) != len(want)+1 {
		t.Fatalf("expected %d stage rows, got %d", len(want)+1, len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].FromStage == nil || *history[i].FromStage != history[i-1].ToStage {
			t.Fatalf("stage history is not chained at row %d", i)
		}
	}
}

func TestTerminalCasesRejectMoves(t *testing.T) {
	tests := []struct {
		name      string
		terminate func(s *Service, id int64) (transport.CaseResponse, error)
		want      domain.CaseStage
	}{
		{
			name: "decline",
			terminate: func(s *Service, id int64) (transport.CaseResponse, error) {
				return s.DeclineCase(context.Background(), id, "DBR too high")
			},
			want: domain.StageDeclined,
		},
		{
			name: "withdraw",
			terminate: func(s *Service, id int64) (transport.CaseResponse, error) {
				return s.WithdrawCase(context.Background(), id, "client bought cash")
			},
			want: domain.StageWithdrawn,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			c := f.openCase(t, f.client(t).ID, transport.CreateCaseRequest{})

			out, err := tt.terminate(f.svc, c.ID)
			if err != nil {
				t.Fatalf("%s: %v", tt.name, err)
			}
			if out.Stage != string(tt.want) || !out.IsTerminal || out.StageReason == nil {
				t.Fatalf("unexpected terminal case %+v", out)
			}

			_, err = f.svc.AdvanceStage(context.Background(), c.ID, "")
			assertKind(t, err, apperr.KindConflict)
			_, err = tt.terminate(f.svc, c.ID)
			assertKind(t, err, apperr.KindConflict)
		})
	}
}

func TestSetStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.openCase(t, f.client(t).ID, transport.CreateCaseRequest{})

	out, err := f.svc.SetStage(ctx, c.ID, string(domain.StageValuation), "")
	if err != nil {
		t.Fatalf("SetStage forward: %v", err)
	}
	if out.Stage != string(domain.StageValuation) {
		t.Fatalf("expected valuation, got %s", out.Stage)
	}

	out, err = f.svc.SetStage(ctx, c.ID, string(domain.StageSubmitted), "")
	if err != nil {
		t.Fatalf("SetStage backward: %v", err)
	}
	if out.Stage != string(domain.StageSubmitted) {
		t.Fatalf("expected submitted, got %s", out.Stage)
	}

	before := len(f.store.snapshot().caseChanges)
	if _, err := f.svc.SetStage(ctx, c.ID, string(domain.StageSubmitted), ""); err != nil {
		t.Fatalf("SetStage same: %v", err)
	}
	if len(f.store.snapshot().caseChanges) != before {
		t.Fatal("setting the current stage must not write an audit row")
	}

	history, _ := f.store.ListCaseChanges(ctx, c.ID)
	if got := history[len(history)-1].Notes; got != domain.KanbanChangeNote {
		t.Fatalf("expected kanban note, got %q", got)
	}

	_, err = f.svc.SetStage(ctx, c.ID, "approved", "")
	assertKind(t, err, apperr.KindValidation)
}

func TestSetStageRollsBackOnAuditFailure(t *testing.T) {
	f := newFixture(t)
	c := f.openCase(t, f.client(t).ID, transport.CreateCaseRequest{})
	f.store.fail["AddCaseChange"] = errors.New("disk full")

	if _, err := f.svc.AdvanceStage(context.Background(), c.ID, ""); err == nil {
		t.Fatal("expected advance to fail")
	}
	got, _ := f.store.GetCase(context.Background(), c.ID)
	if got.Stage != domain.StageProcessing {
		t.Fatalf("stage must not change without its audit row, got %s", got.Stage)
	}
	for _, a := range f.observer.applied {
		if strings.HasPrefix(a, "case.advance") {
			t.Fatalf("a rolled back advance must not be observed, got %v", f.observer.applied)
		}
	}
}

func TestLockTimeoutSurfacesAsUnavailable(t *testing.T) {
	f := newFixture(t)
	c := f.openCase(t, f.client(t).ID, transport.CreateCaseRequest{})
	f.store.fail["LockCase"] = apperr.Unavailable("resource is busy, retry", nil)

	_, err := f.svc.AdvanceStage(context.Background(), c.ID, "")
	assertKind(t, err, apperr.KindUnavailable)
	if len(f.observer.rejected) != 0 {
		t.Fatal("infrastructure failures are not rule rejections")
	}
}

func TestActivityTouchesEntity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.lead(t)
	ref := domain.EntityRef{Kind: domain.EntityLead, ID: lead.ID}

	if _, err := f.svc.LogCall(ctx, ref, transport.LogCallRequest{Outcome: string(domain.CallNoAnswer), Notes: "try later"}); err != nil {
		t.Fatalf("LogCall: %v", err)
	}
	if _, err := f.svc.AddNote(ctx, ref, transport.AddNoteRequest{Content: "speaks Arabic"}); err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if got := f.store.snapshot().touched[ref]; got != 2 {
		t.Fatalf("expected 2 touches, got %d", got)
	}

	calls, _ := f.svc.ListCallLogs(ctx, ref)
	notes, _ := f.svc.ListNotes(ctx, ref)
	if len(calls) != 1 || calls[0].Outcome != "noAnswer" || len(notes) != 1 {
		t.Fatalf("unexpected activity %+v %+v", calls, notes)
	}

	_, err := f.svc.LogCall(ctx, ref, transport.LogCallRequest{Outcome: "voicemail"})
	assertKind(t, err, apperr.KindValidation)
	_, err = f.svc.AddNote(ctx, ref, transport.AddNoteRequest{Content: "   "})
	assertKind(t, err, apperr.KindValidation)
}

func TestActivityRollsBackWhenTouchFails(t *testing.T) {
	f := newFixture(t)
	ref := domain.EntityRef{Kind: domain.EntityLead, ID: f.lead(t).ID}
	f.store.fail["Touch"] = errors.New("timeout")

	if _, err := f.svc.AddNote(context.Background(), ref, transport.AddNoteRequest{Content: "hello"}); err == nil {
		t.Fatal("expected AddNote to fail")
	}
	if len(f.store.snapshot().notes) != 0 {
		t.Fatal("note must not persist without its touch")
	}
}

func TestListCasesFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)
	open := f.openCase(t, client.ID, transport.CreateCaseRequest{})
	closed := f.openCase(t, client.ID, transport.CreateCaseRequest{})
	if _, err := f.svc.WithdrawCase(ctx, closed.ID, ""); err != nil {
		t.Fatalf("WithdrawCase: %v", err)
	}

	active, err := f.svc.ListCases(ctx, transport.ListCasesRequest{Status: "active"})
	if err != nil {
		t.Fatalf("ListCases: %v", err)
	}
	if active.Total != 1 || active.Items[0].ID != open.ID {
		t.Fatalf("unexpected active cases %+v", active.Items)
	}
	terminal, _ := f.svc.ListCases(ctx, transport.ListCasesRequest{Status: "terminal"})
	if terminal.Total != 1 || terminal.Items[0].ID != closed.ID {
		t.Fatalf("unexpected terminal cases %+v", terminal.Items)
	}
	if active.PageSize != 20 || active.Page != 1 || active.TotalPages != 1 {
		t.Fatalf("unexpected paging %+v", active)
	}
}

func TestActivityStripsMarkup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ref := domain.EntityRef{Kind: domain.EntityLead, ID: f.lead(t).ID}

	note, err := f.svc.AddNote(ctx, ref, transport.AddNoteRequest{Content: "<p>prefers <b>evening</b> calls</p>"})
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if note.Content != "prefers evening calls" {
		t.Fatalf("content = %q", note.Content)
	}

	_, err = f.svc.AddNote(ctx, ref, transport.AddNoteRequest{Content: "<br/>"})
	assertKind(t, err, apperr.KindValidation)
}

func TestPhoneRegionFromSettings(t *testing.T) {
	f := newFixture(t)
	f.svc.phoneRegion = func() string { return "GB" }

	lead, err := f.svc.CreateLead(context.Background(), transport.CreateLeadRequest{
		FirstName: "Tom",
		LastName:  "Hale",
		Phone:     "07400 123456",
		Intent:    "remortgage",
	})
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}
	if lead.Phone != "+447400123456" {
		t.Fatalf("phone = %q", lead.Phone)
	}
}

func TestUpdateClientNormalizesPhone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.client(t)

	out, err := f.svc.UpdateClient(ctx, c.ID, transport.UpdateClientRequest{Phone: ptr(" 055 987 6543 ")})
	if err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}
	if out.Phone != "+971559876543" {
		t.Fatalf("phone = %q, want E.164", out.Phone)
	}

	f.svc.phoneRegion = func() string { return "GB" }
	out, err = f.svc.UpdateClient(ctx, c.ID, transport.UpdateClientRequest{Phone: ptr("07400 123456")})
	if err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}
	if out.Phone != "+447400123456" {
		t.Fatalf("phone = %q, want GB E.164", out.Phone)
	}
}

func TestConcurrentConvertCreatesOneClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.lead(t)
	before := len(f.store.snapshot().clients)

	const callers = 8
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ConvertLead(ctx, lead.ID, "double click")
			switch {
			case err == nil:
				successes.Add(1)
			case apperr.Is(err, apperr.KindConflict):
				conflicts.Add(1)
			default:
				t.Errorf("ConvertLead: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes.Load() != 1 || conflicts.Load() != callers-1 {
		t.Fatalf("successes = %d conflicts = %d", successes.Load(), conflicts.Load())
	}
	if got := len(f.store.snapshot().clients) - before; got != 1 {
		t.Fatalf("expected 1 new client, got %d", got)
	}
	changes, _ := f.store.ListLeadChanges(ctx, lead.ID)
	if len(changes) != 1 {
		t.Fatalf("expected 1 lead status change, got %d", len(changes))
	}
}

func TestConcurrentAdvanceNeverSkipsStages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.openCase(t, f.client(t).ID, transport.CreateCaseRequest{})

	const callers = 12
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.AdvanceStage(ctx, c.ID, "")
			if err == nil {
				successes.Add(1)
				return
			}
			if !apperr.Is(err, apperr.KindConflict) {
				t.Errorf("AdvanceStage: %v", err)
			}
		}()
	}
	wg.Wait()

	// processing has eight successors up to and including disbursed.
	if successes.Load() != 8 {
		t.Fatalf("successes = %d, want 8", successes.Load())
	}
	history, _ := f.store.ListCaseChanges(ctx, c.ID)
	if len(history) != 9 {
		t.Fatalf("expected 9 stage rows, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].FromStage == nil || *history[i].FromStage != history[i-1].ToStage {
			t.Fatalf("stage history has a gap at row %d", i)
		}
	}
	if last := history[len(history)-1].ToStage; last != domain.StageDisbursed {
		t.Fatalf("final stage = %s, want disbursed", last)
	}
}
