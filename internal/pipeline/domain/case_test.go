package domain

import (
	"errors"
	"testing"
)

func TestAdvanceWalksHappyPathToDisbursed(t *testing.T) {
	c := &Case{ID: 9, Stage: StageProcessing}
	want := append(append([]CaseStage{}, ActiveStages[1:]...), StageDisbursed)

	for _, next := range want {
		from := c.Stage
		change, err := c.Advance("")
		if err != nil {
			t.Fatalf("Advance from %s: %v", from, err)
		}
		if c.Stage != next {
			t.Fatalf("Advance from %s = %s, want %s", from, c.Stage, next)
		}
		if change.FromStage == nil || *change.FromStage != from || change.ToStage != next {
			t.Errorf("audit row %+v does not record %s -> %s", change, from, next)
		}
	}

	_, err := c.Advance("")
	var stageErr *StageTransitionError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageTransitionError, got %v", err)
	}
	if stageErr.Current != "disbursed" || stageErr.Target != "next" {
		t.Errorf("unexpected error fields %+v", stageErr)
	}
	wantMsg := `Cannot transition from "disbursed" to "next". Case is already in a terminal stage`
	if err.Error() != wantMsg {
		t.Errorf("message = %q, want %q", err.Error(), wantMsg)
	}
}

func TestNextStage(t *testing.T) {
	tests := []struct {
		in   CaseStage
		want CaseStage
		ok   bool
	}{
		{StageProcessing, StageSubmitted, true},
		{StageValuation, StageFOLProcessing, true},
		{StageFOLSigned, StageDisbursed, true},
		{StageDisbursed, "", false},
		{StageDeclined, "", false},
		{StageWithdrawn, "", false},
		{"bogus", "", false},
	}
	for _, tt := range tests {
		got, ok := NextStage(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NextStage(%s) = (%s, %v), want (%s, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAdvanceUnknownStage(t *testing.T) {
	c := &Case{Stage: "legacy"}
	_, err := c.Advance("")
	var stageErr *StageTransitionError
	if !errors.As(err, &stageErr) || stageErr.Reason != reasonNoNextStage {
		t.Fatalf("expected no-next-stage error, got %v", err)
	}
}

func TestTerminalJumps(t *testing.T) {
	for _, from := range ActiveStages {
		for _, op := range []struct {
			name string
			do   func(*Case) (CaseStageChange, error)
			want CaseStage
		}{
			{"decline", func(c *Case) (CaseStageChange, error) { return c.Decline("DBR too high") }, StageDeclined},
			{"withdraw", func(c *Case) (CaseStageChange, error) { return c.Withdraw("client changed mind") }, StageWithdrawn},
		} {
			c := &Case{Stage: from}
			change, err := op.do(c)
			if err != nil {
				t.Fatalf("%s from %s: %v", op.name, from, err)
			}
			if c.Stage != op.want || c.StageReason == nil {
				t.Errorf("%s from %s: stage=%s reason=%v", op.name, from, c.Stage, c.StageReason)
			}
			if change.Notes != *c.StageReason {
				t.Errorf("audit notes %q should carry the reason", change.Notes)
			}
		}
	}

	for _, from := range TerminalStages {
		c := &Case{Stage: from}
		if _, err := c.Decline("x"); err == nil {
			t.Errorf("Decline from %s: expected error", from)
		}
		if _, err := c.Withdraw("x"); err == nil {
			t.Errorf("Withdraw from %s: expected error", from)
		}
		if c.Stage != from {
			t.Errorf("stage changed on rejected jump from %s", from)
		}
	}
}

func TestSetStage(t *testing.T) {
	c := &Case{Stage: StageValuation}

	if _, changed, err := c.SetStage(StageValuation, ""); err != nil || changed {
		t.Fatalf("same stage: changed=%v err=%v", changed, err)
	}

	change, changed, err := c.SetStage(StageSubmitted, "")
	if err != nil || !changed {
		t.Fatalf("backward move: changed=%v err=%v", changed, err)
	}
	if c.Stage != StageSubmitted || change.Notes != KanbanChangeNote {
		t.Errorf("stage=%s notes=%q", c.Stage, change.Notes)
	}

	c.Stage = StageDeclined
	if _, changed, err := c.SetStage(StageProcessing, "reopened"); err != nil || !changed {
		t.Fatalf("move out of terminal: changed=%v err=%v", changed, err)
	}

	if _, _, err := c.SetStage("approved", ""); err == nil {
		t.Error("expected error for unknown stage")
	}
}

func TestNewCaseDefaults(t *testing.T) {
	clientLoan := int64(40_000_000)
	client := Client{ID: 5, LoanAmountCents: &clientLoan}

	c, change := NewCase(client, FormatCaseNumber(1), CaseParams{
		EstimatedPropertyValueCents: ptr(int64(0)),
		BankProductIDs:              []int64{4, 5, 6, 7, 8},
	})

	if c.CaseNumber != "RV-00001" {
		t.Errorf("case number = %s", c.CaseNumber)
	}
	if c.Stage != StageProcessing || change.FromStage != nil || change.ToStage != StageProcessing {
		t.Errorf("stage=%s change=%+v", c.Stage, change)
	}
	if change.Notes != CaseCreatedNote {
		t.Errorf("notes = %q", change.Notes)
	}
	if c.LoanAmountCents != clientLoan {
		t.Errorf("loan amount = %d, want client fallback %d", c.LoanAmountCents, clientLoan)
	}
	if c.EstimatedPropertyValueCents != 0 {
		t.Errorf("property value = %d, want 0", c.EstimatedPropertyValueCents)
	}
	if len(c.BankProductIDs) != MaxBankProducts || c.BankProductIDs[2] != 6 {
		t.Errorf("bank products = %v", c.BankProductIDs)
	}
	if c.CaseType != "residential" || c.ServiceType != "assisted" || c.Emirate != "dubai" ||
		c.MortgageTermYears != 25 || c.MortgageTermMonths != 0 || c.PropertyStatus != "ready" {
		t.Errorf("defaults not applied: %+v", c)
	}
}

func TestNewCaseExplicitValuesWin(t *testing.T) {
	clientLoan := int64(40_000_000)
	c, change := NewCase(Client{LoanAmountCents: &clientLoan}, "RV-00002", CaseParams{
		LoanAmountCents:   ptr(int64(10_000_000)),
		MortgageType:      "islamic",
		MortgageTermYears: ptr(15),
		Notes:             "priority client",
	})
	if c.LoanAmountCents != 10_000_000 || c.MortgageType != "islamic" || c.MortgageTermYears != 15 {
		t.Errorf("explicit params ignored: %+v", c)
	}
	if change.Notes != "priority client" {
		t.Errorf("notes = %q", change.Notes)
	}
}

func TestFormatCaseNumber(t *testing.T) {
	if got := FormatCaseNumber(42); got != "RV-00042" {
		t.Errorf("got %s", got)
	}
	if got := FormatCaseNumber(123456); got != "RV-123456" {
		t.Errorf("got %s", got)
	}
	if got := CaseCreatedClientNote("RV-00042"); got != "Case RV-00042 created" {
		t.Errorf("got %s", got)
	}
}
