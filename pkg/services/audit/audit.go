package audit

import (
	"fmt"

	"github.com/getmilo/milo/pkg/models/domain"
)

// Deduction is how many points each finding of a severity costs.
var Deduction = map[domain.Severity]int{
	domain.SeverityCritical: 30,
	domain.SeverityHigh:     15,
	domain.SeverityMedium:   5,
}

// Auditor runs the structured rule set against openclaw.json documents.
type Auditor struct {
	settings Settings
	rules    []Rule
}

func NewAuditor(settings Settings) *Auditor {
	return &Auditor{settings: settings, rules: Rules()}
}

// AuditJSON parses raw JSON and audits it.
func (a *Auditor) AuditJSON(raw []byte) (domain.AuditReport, error) {
	doc, err := Parse(raw)
	if err != nil {
		return domain.AuditReport{}, err
	}
	return a.Audit(doc), nil
}

// Audit evaluates every rule and derives the score, grade and summary.
// The result depends only on doc, so repeated calls yield equal reports.
func (a *Auditor) Audit(doc Document) domain.AuditReport {
	report := domain.AuditReport{
		Issues: []domain.Finding{},
		Passed: []domain.PassRecord{},
	}
	for _, rule := range a.rules {
		out := rule.Check(doc, a.settings)
		if out.Finding != nil {
			report.Issues = append(report.Issues, *out.Finding)
		}
		if out.Pass != nil {
			report.Passed = append(report.Passed, *out.Pass)
		}
	}

	report.ScoreNumber = Score(report.Issues)
	report.Grade = GradeFor(report.ScoreNumber)
	report.Summary = Summarize(report)
	return report
}

// Score starts from 100, subtracts the deduction of every finding and clamps to [0,100].
// Low findings are reported but cost nothing.
func Score(issues []domain.Finding) int {
	score := 100
	for _, f := range issues {
		score -= Deduction[f.Severity]
	}
	return max(0, min(100, score))
}

func GradeFor(score int) domain.Grade {
	switch {
	case score >= 90:
		return domain.GradeA
	case score >= 75:
		return domain.GradeB
	case score >= 60:
		return domain.GradeC
	case score >= 40:
		return domain.GradeD
	default:
		return domain.GradeF
	}
}

// Summarize renders the one-line report summary.
func Summarize(report domain.AuditReport) string {
	if len(report.Issues) == 0 {
		return "Your OpenClaw configuration looks solid. No issues found."
	}
	counts := map[domain.Severity]int{}
	for _, f := range report.Issues {
		counts[f.Severity]++
	}
	noun := "issue"
	if len(report.Issues) > 1 {
		noun = "issues"
	}
	return fmt.Sprintf("Found %d %s: %d critical, %d high, %d medium, %d low. Score: %s (%d/100).",
		len(report.Issues),
		noun,
		counts[domain.SeverityCritical],
		counts[domain.SeverityHigh],
		counts[domain.SeverityMedium],
		counts[domain.SeverityLow],
		report.Grade,
		report.ScoreNumber,
	)
}
