package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/getmilo/milo/pkg/models/domain"
	"github.com/getmilo/milo/pkg/services/wizard"
)

var (
	colorAccent   = lipgloss.Color("#2CD7C7")
	colorCritical = lipgloss.Color("#E74C3C")
	colorHigh     = lipgloss.Color("#E67E22")
	colorWarning  = lipgloss.Color("#F4D03F")
	colorMuted    = lipgloss.Color("#6C7A89")
)

var styles = struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Box     lipgloss.Style
	Code    lipgloss.Style
	Section lipgloss.Style
}{
	Title: lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	Muted: lipgloss.NewStyle().Foreground(colorMuted),
	Bold:  lipgloss.NewStyle().Bold(true),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1),
	Code: lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(colorMuted).
		PaddingLeft(1),
	Section: lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1),
}

func severityStyle(s domain.Severity) lipgloss.Style {
	switch s {
	case domain.SeverityCritical:
		return lipgloss.NewStyle().Bold(true).Foreground(colorCritical)
	case domain.SeverityHigh:
		return lipgloss.NewStyle().Bold(true).Foreground(colorHigh)
	case domain.SeverityMedium, domain.SeverityWarning:
		return lipgloss.NewStyle().Foreground(colorWarning)
	case domain.SeverityPass:
		return lipgloss.NewStyle().Foreground(colorAccent)
	default:
		return styles.Muted
	}
}

func gradeStyle(g domain.Grade) lipgloss.Style {
	switch g {
	case domain.GradeA, domain.GradeB:
		return lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	case domain.GradeC:
		return lipgloss.NewStyle().Bold(true).Foreground(colorWarning)
	default:
		return lipgloss.NewStyle().Bold(true).Foreground(colorCritical)
	}
}

// StyledReporter renders coloured, boxed output for interactive terminals.
type StyledReporter struct {
	writer io.Writer
}

func NewStyledReporter(writer io.Writer) *StyledReporter {
	return &StyledReporter{writer: writer}
}

func (s *StyledReporter) println(parts ...string) error {
	_, err := fmt.Fprintln(s.writer, strings.Join(parts, " "))
	return err
}

func (s *StyledReporter) finding(f domain.Finding) string {
	label := severityStyle(f.Severity).Render(fmt.Sprintf("%-8s", strings.ToUpper(f.Severity.String())))
	lines := []string{label + " " + styles.Bold.Render(f.Title), "         " + f.Description}
	if f.Fix != "" {
		lines = append(lines, "         "+styles.Muted.Render("Fix: ")+f.Fix)
	}
	return strings.Join(lines, "\n")
}

func (s *StyledReporter) Audit(report domain.AuditReport) error {
	header := styles.Box.Render(fmt.Sprintf("%s  %s  %s",
		styles.Title.Render("OpenClaw config audit"),
		gradeStyle(report.Grade).Render(string(report.Grade)),
		styles.Muted.Render(fmt.Sprintf("%d/100", report.ScoreNumber))))

	blocks := []string{header, report.Summary}
	for _, f := range report.Issues {
		blocks = append(blocks, s.finding(f))
	}
	if len(report.Passed) > 0 {
		passed := []string{styles.Section.Render("Passed")}
		for _, p := range report.Passed {
			passed = append(passed, severityStyle(domain.SeverityPass).Render("✓ ")+p.Title+styles.Muted.Render(" "+p.Description))
		}
		blocks = append(blocks, strings.Join(passed, "\n"))
	}
	return s.println(strings.Join(blocks, "\n\n"))
}

func (s *StyledReporter) TextAudit(report domain.TextAuditReport) error {
	header := styles.Box.Render(fmt.Sprintf("%s  %s  %s",
		styles.Title.Render("OpenClaw config scan"),
		gradeStyle(report.Grade).Render(string(report.Grade)),
		styles.Muted.Render(fmt.Sprintf("%d/100", report.Score))))

	blocks := []string{header, report.Summary}
	for _, f := range report.Findings {
		blocks = append(blocks, s.finding(f))
	}
	return s.println(strings.Join(blocks, "\n\n"))
}

func (s *StyledReporter) step(st wizard.Step) string {
	lines := []string{styles.Bold.Render(st.Title)}
	if len(st.Commands) > 0 {
		lines = append(lines, styles.Code.Render(strings.Join(st.Commands, "\n")))
	}
	if st.Note != "" {
		lines = append(lines, styles.Muted.Render(st.Note))
	}
	return strings.Join(lines, "\n")
}

func (s *StyledReporter) Plan(plan wizard.Plan) error {
	blocks := []string{styles.Box.Render(styles.Title.Render("OpenClaw setup plan") + "  " +
		styles.Muted.Render(plan.Answers.Platform+" · "+plan.Answers.Channel+" · "+plan.Answers.Model))}
	if plan.Recommendation != "" {
		blocks = append(blocks, styles.Muted.Render("Recommendation: ")+plan.Recommendation)
	}

	install := []string{styles.Section.Render("Install")}
	for _, st := range plan.Install {
		install = append(install, s.step(st))
	}
	blocks = append(blocks,
		strings.Join(install, "\n"),
		styles.Section.Render("Model")+"\n"+s.step(plan.Model),
		styles.Section.Render("Channel")+"\n"+s.step(plan.Channel),
		styles.Section.Render("Security")+"\n"+s.step(plan.Security),
	)

	checklist := []string{styles.Section.Render("Checklist")}
	for _, item := range plan.Checklist {
		checklist = append(checklist, "☐ "+item)
	}
	blocks = append(blocks, strings.Join(checklist, "\n"))
	for _, tip := range plan.Tips {
		blocks = append(blocks, styles.Muted.Render("Tip: ")+tip)
	}

	blocks = append(blocks,
		styles.Section.Render("openclaw.json")+" "+
			gradeStyle(plan.Audit.Grade).Render(fmt.Sprintf("%s %d/100", plan.Audit.Grade, plan.Audit.ScoreNumber))+"\n"+
			styles.Code.Render(string(plan.ConfigJSON)))
	return s.println(strings.Join(blocks, "\n\n"))
}

func (s *StyledReporter) LeadStats(stats domain.LeadStats) error {
	return s.println(styles.Box.Render(fmt.Sprintf("%s\n%s %d\n%s %d\n%s %d",
		styles.Title.Render("Leads"),
		styles.Muted.Render("total:      "), stats.Total,
		styles.Muted.Render("converted:  "), stats.Converted,
		styles.Muted.Render("follow-ups: "), stats.FollowUpSent)))
}

func (s *StyledReporter) Leads(leads []domain.Lead) error {
	if len(leads) == 0 {
		return s.println(styles.Muted.Render("No leads yet."))
	}
	rows := make([]string, 0, len(leads))
	for _, l := range leads {
		row := styles.Muted.Render(l.Timestamp.Format("2006-01-02 15:04")) + "  " +
			styles.Bold.Render(l.Email) + "  " +
			styles.Muted.Render("source="+l.Source+" product="+l.Product)
		if l.Converted {
			row += " " + severityStyle(domain.SeverityPass).Render("converted")
		}
		rows = append(rows, row)
	}
	return s.println(strings.Join(rows, "\n"))
}
