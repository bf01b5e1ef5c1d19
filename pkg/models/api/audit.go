package api

import "encoding/json"

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityWarning  Severity = "warning"
	SeverityPass     Severity = "pass"
)

type AuditRequest struct {
	Config json.RawMessage `json:"config"`
}

type AuditIssue struct {
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Fix         string   `json:"fix"`
}

type AuditCheck struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type AuditResult struct {
	Score       string       `json:"score"`
	ScoreNumber int          `json:"scoreNumber"`
	Issues      []AuditIssue `json:"issues"`
	Passed      []AuditCheck `json:"passed"`
	Summary     string       `json:"summary"`
}

type TextAuditRequest struct {
	Config string `json:"config" validate:"required"`
}

type TextFinding struct {
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Detail   string   `json:"detail"`
	Fix      string   `json:"fix,omitempty"`
}

type TextAuditResult struct {
	Score    int           `json:"score"`
	Grade    string        `json:"grade"`
	Findings []TextFinding `json:"findings"`
	Summary  string        `json:"summary"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type Health struct {
	Status string `json:"status"`
}
