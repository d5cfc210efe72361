package email

import (
	"strings"
	"testing"
)

func TestRenderCaseOutcome(t *testing.T) {
	tests := []struct {
		stage   string
		subject string
	}{
		{"disbursed", "Case RV-00042 disbursed"},
		{"declined", "Case RV-00042 declined"},
		{"withdrawn", "Case RV-00042 withdrawn"},
		{"archived", "Case RV-00042 closed"},
	}
	for _, tt := range tests {
		subject, body, err := renderCaseOutcome(CaseOutcome{
			CaseNumber: "RV-00042",
			ClientName: "Sara <Haddad>",
			Stage:      tt.stage,
			Notes:      "Bank returned valuation",
		})
		if err != nil {
			t.Fatalf("render %s: %v", tt.stage, err)
		}
		if subject != tt.subject {
			t.Fatalf("subject = %q, want %q", subject, tt.subject)
		}
		if !strings.Contains(body, "Sara &lt;Haddad&gt;") {
			t.Fatal("client name must be HTML escaped")
		}
		if !strings.Contains(body, "Bank returned valuation") {
			t.Fatal("notes missing from body")
		}
	}
}
