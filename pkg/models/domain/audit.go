package domain

type Severity int

const (
	SeverityPass Severity = iota
	SeverityLow
	SeverityMedium
	// SeverityWarning is the middle tier of the free-text scan (critical > warning > pass).
	SeverityWarning
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityPass:
		return "pass"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityWarning:
		return "warning"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Finding is a problem reported by a single audit rule. Fix is empty for pass results.
type Finding struct {
	RuleID      string
	Severity    Severity
	Title       string
	Description string
	Fix         string
}

// PassRecord marks a rule that ran and found nothing wrong.
type PassRecord struct {
	RuleID      string
	Title       string
	Description string
}

// AuditReport is the result of auditing a structured configuration document.
type AuditReport struct {
	Grade       Grade
	ScoreNumber int
	Issues      []Finding
	Passed      []PassRecord
	Summary     string
}

// TextAuditReport is the result of the keyword scan over raw configuration text.
// Findings mixes problems and pass results in rule order.
type TextAuditReport struct {
	Score    int
	Grade    Grade
	Findings []Finding
	Summary  string
}
