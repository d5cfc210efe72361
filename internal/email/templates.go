package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
}

type caseOutcomeEmailData struct {
	baseEmailData
	CaseNumber string
	ClientName string
	Stage      string
	Notes      string
	ChangedAt  string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func caseOutcomeSubject(caseNumber, stage string) string {
	switch stage {
	case "disbursed":
		return fmt.Sprintf(subjectCaseDisbursedFmt, caseNumber)
	case "declined":
		return fmt.Sprintf(subjectCaseDeclinedFmt, caseNumber)
	case "withdrawn":
		return fmt.Sprintf(subjectCaseWithdrawnFmt, caseNumber)
	default:
		return fmt.Sprintf(subjectCaseClosedFmt, caseNumber)
	}
}

func renderCaseOutcome(outcome CaseOutcome) (string, string, error) {
	subject := caseOutcomeSubject(outcome.CaseNumber, outcome.Stage)
	content, err := renderEmailTemplate("case_outcome.html", caseOutcomeEmailData{
		baseEmailData: baseEmailData{
			Title:   subject,
			Heading: subject,
		},
		CaseNumber: outcome.CaseNumber,
		ClientName: outcome.ClientName,
		Stage:      outcome.Stage,
		Notes:      outcome.Notes,
		ChangedAt:  outcome.ChangedAt,
	})
	if err != nil {
		return "", "", err
	}
	return subject, content, nil
}
