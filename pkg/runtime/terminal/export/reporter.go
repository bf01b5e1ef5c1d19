package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/getmilo/milo/pkg/models/domain"
	"github.com/getmilo/milo/pkg/services/wizard"
	"github.com/mattn/go-isatty"
)

// Reporter renders command results for a human reader.
type Reporter interface {
	Audit(report domain.AuditReport) error
	TextAudit(report domain.TextAuditReport) error
	Plan(plan wizard.Plan) error
	LeadStats(stats domain.LeadStats) error
	Leads(leads []domain.Lead) error
}

// NewReporter picks the styled reporter when writer is a terminal and the
// plain one otherwise.
func NewReporter(writer io.Writer) Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	if IsTerminal(writer) {
		return NewStyledReporter(writer)
	}
	return NewPlainReporter(writer)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w any) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type TableConfig struct {
	SeverityWidth int
	TitleWidth    int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		SeverityWidth: 8,
		TitleWidth:    56,
	}
}

// PlainReporter writes uncoloured text suitable for pipes and logs.
type PlainReporter struct {
	writer io.Writer
	config TableConfig
}

func NewPlainReporter(writer io.Writer) *PlainReporter {
	return &PlainReporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *PlainReporter) funcs() template.FuncMap {
	return template.FuncMap{
		"formatRow": func(severity, title string) string {
			return fmt.Sprintf("| %-*s | %-*s |",
				c.config.SeverityWidth, severity,
				c.config.TitleWidth, title)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+",
				strings.Repeat("-", c.config.SeverityWidth+2),
				strings.Repeat("-", c.config.TitleWidth+2))
		},
		"indent": func(s string) string {
			return "    " + strings.ReplaceAll(s, "\n", "\n    ")
		},
	}
}

func (c *PlainReporter) execute(name, tmpl string, data any) error {
	t, err := template.New(name).Funcs(c.funcs()).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, data)
}

const auditTemplate = `
OpenClaw config audit: {{.Grade}} ({{.ScoreNumber}}/100)
{{.Summary}}
{{if .Issues}}
{{separator}}
{{formatRow "Severity" "Issue"}}
{{separator}}
{{range .Issues}}{{formatRow .Severity.String .Title}}
{{end}}{{separator}}
{{range .Issues}}
[{{.Severity}}] {{.Title}}
  {{.Description}}
  Fix: {{.Fix}}
{{end}}{{end}}{{if .Passed}}
Passed:
{{range .Passed}}  - {{.Title}}: {{.Description}}
{{end}}{{end}}`

func (c *PlainReporter) Audit(report domain.AuditReport) error {
	return c.execute("audit", auditTemplate, report)
}

const textAuditTemplate = `
OpenClaw config scan: {{.Score}}/100 ({{.Grade}})
{{.Summary}}

{{separator}}
{{formatRow "Severity" "Finding"}}
{{separator}}
{{range .Findings}}{{formatRow .Severity.String .Title}}
{{end}}{{separator}}
{{range .Findings}}{{if .Fix}}
[{{.Severity}}] {{.Title}}
  {{.Description}}
  Fix: {{.Fix}}
{{end}}{{end}}`

func (c *PlainReporter) TextAudit(report domain.TextAuditReport) error {
	return c.execute("text-audit", textAuditTemplate, report)
}

const planTemplate = `{{define "step"}}{{.Title}}
{{range .Commands}}{{indent .}}
{{end}}{{if .Note}}  Note: {{.Note}}
{{end}}{{end}}
OpenClaw setup plan ({{.Answers.Platform}}, {{.Answers.Channel}}, {{.Answers.Model}})
{{if .Recommendation}}
Recommendation: {{.Recommendation}}
{{end}}
== Install ==
{{range .Install}}{{template "step" .}}{{end}}
== Model ==
{{template "step" .Model}}
== Channel ==
{{template "step" .Channel}}
== Security ==
{{template "step" .Security}}
Checklist:
{{range .Checklist}}  [ ] {{.}}
{{end}}{{range .Tips}}
Tip: {{.}}
{{end}}
Generated openclaw.json (audit: {{.Audit.Grade}}, {{.Audit.ScoreNumber}}/100):
{{printf "%s" .ConfigJSON}}
`

func (c *PlainReporter) Plan(plan wizard.Plan) error {
	return c.execute("plan", planTemplate, plan)
}

const statsTemplate = `Leads: {{.Total}} total, {{.Converted}} converted, {{.FollowUpSent}} follow-ups sent
`

func (c *PlainReporter) LeadStats(stats domain.LeadStats) error {
	return c.execute("stats", statsTemplate, stats)
}

const leadsTemplate = `{{range .}}{{.Timestamp.Format "2006-01-02 15:04"}}  {{.Email}}  source={{.Source}} product={{.Product}}{{if .Converted}} converted{{end}}
{{else}}No leads yet.
{{end}}`

func (c *PlainReporter) Leads(leads []domain.Lead) error {
	return c.execute("leads", leadsTemplate, leads)
}
