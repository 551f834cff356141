package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"precheck/internal/assessment"
	"precheck/internal/eligibility/models"
)

// Template is a pre-filled document the applicant can adapt.
type Template struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

const (
	TemplateCoverLetter            = "cover_letter"
	TemplateSponsorDeclaration     = "sponsor_declaration"
	TemplateSubjectAccessRequest   = "subject_access_request"
	TemplateMaintenanceCertRequest = "maintenance_certification_request"
)

type templateData struct {
	Date        string
	RouteName   string
	Nationality string
	Income      string
	JobTitle    string
	Documents   []string
	Issues      []string
}

var documentTemplates = template.Must(template.New("documents").Parse(`
{{define "cover_letter"}}{{.Date}}

Dear Entry Clearance Officer,

Re: {{.RouteName}} application{{if .Nationality}} ({{.Nationality}} national){{end}}

I enclose my application together with the documents listed below.
{{range .Documents}}
- {{.}}{{end}}
{{if .Issues}}
I would like to address the following points directly:
{{range .Issues}}
- {{.}}{{end}}
{{end}}
Yours faithfully,
[Full name]
{{end}}

{{define "sponsor_declaration"}}{{.Date}}

I, [sponsor full name], confirm that I am the partner of [applicant full name] and
that I will support them in the United Kingdom. My gross annual income is £{{.Income}}.
We intend to live together permanently in the UK at [address].

Signed: ____________________
{{end}}

{{define "subject_access_request"}}{{.Date}}

Subject Access Request Unit
UK Visas and Immigration

I request a copy of all personal data the Home Office holds about me, including
caseworker notes relating to previous applications and refusals.

Full name: [full name]
Date of birth: [date of birth]
Nationality: {{if .Nationality}}{{.Nationality}}{{else}}[nationality]{{end}}
Previous application references: [references]

Yours faithfully,
[Full name]
{{end}}

{{define "maintenance_certification_request"}}{{.Date}}

Dear [HR contact],

Re: Certificate of Sponsorship{{if .JobTitle}} for the role of {{.JobTitle}}{{end}}

Please could you confirm whether you are able to certify maintenance on my
Certificate of Sponsorship, so that I do not need to provide personal bank
statements with my Skilled Worker application.

Kind regards,
[Full name]
{{end}}
`))

// BuildTemplates renders the documents relevant to the route and answers.
// A document that fails to render is left out and reported in the error.
func BuildTemplates(route models.Route, answers models.Answers, result assessment.Result, now time.Time) ([]Template, error) {
	data := templateData{
		Date:        now.Format("2 January 2006"),
		RouteName:   routeName(route),
		Nationality: answers.String("nationality"),
		Income:      formatPounds(answers.Income()),
		JobTitle:    answers.String("sw_job_title"),
		Documents:   documentNames(assessment.BuildChecklist(answers, route, models.TierProPlus)),
	}
	if result.Remediation != nil {
		for _, step := range result.Remediation.Steps {
			data.Issues = append(data.Issues, step.Issue)
		}
	}

	wanted := []Template{{ID: TemplateCoverLetter, Title: "Cover letter"}}
	if route.IsSpouse() {
		wanted = append(wanted, Template{ID: TemplateSponsorDeclaration, Title: "Sponsor declaration"})
	}
	if answers.Bool("refusal_history") || answers.Bool("overstay_history") {
		wanted = append(wanted, Template{ID: TemplateSubjectAccessRequest, Title: "Subject Access Request"})
	}
	if route.IsSkilled() {
		wanted = append(wanted, Template{ID: TemplateMaintenanceCertRequest, Title: "Maintenance certification request"})
	}

	var (
		templates = make([]Template, 0, len(wanted))
		errs      []error
	)
	for _, t := range wanted {
		body, err := render(t.ID, data)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		t.Body = body
		templates = append(templates, t)
	}
	return templates, errors.Join(errs...)
}

func render(id string, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := documentTemplates.ExecuteTemplate(&buf, id, data); err != nil {
		return "", fmt.Errorf("render %s: %w", id, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func documentNames(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, assessment.ItemText(item))
	}
	return out
}

func routeName(route models.Route) string {
	switch route {
	case models.RouteSpouse:
		return "Spouse/Partner visa"
	case models.RouteSkilled:
		return "Skilled Worker visa"
	default:
		return "UK visa"
	}
}

// formatPounds renders whole pounds with UK digit grouping.
func formatPounds(v float64) string {
	return message.NewPrinter(language.BritishEnglish).Sprintf("%d", int64(v))
}
