package adapters

import (
	"github.com/getmilo/milo/pkg/models/api"
	"github.com/getmilo/milo/pkg/models/domain"
)

func MapSeverityDomainToApi(s domain.Severity) api.Severity {
	switch s {
	case domain.SeverityCritical:
		return api.SeverityCritical
	case domain.SeverityHigh:
		return api.SeverityHigh
	case domain.SeverityMedium:
		return api.SeverityMedium
	case domain.SeverityWarning:
		return api.SeverityWarning
	case domain.SeverityPass:
		return api.SeverityPass
	default:
		return api.SeverityLow
	}
}

func MapFindingDomainToApi(f domain.Finding) api.AuditIssue {
	return api.AuditIssue{
		Severity:    MapSeverityDomainToApi(f.Severity),
		Title:       f.Title,
		Description: f.Description,
		Fix:         f.Fix,
	}
}

func MapPassRecordDomainToApi(p domain.PassRecord) api.AuditCheck {
	return api.AuditCheck{
		Title:       p.Title,
		Description: p.Description,
	}
}

func MapAuditReportDomainToApi(r domain.AuditReport) api.AuditResult {
	res := api.AuditResult{
		Score:       string(r.Grade),
		ScoreNumber: r.ScoreNumber,
		Issues:      make([]api.AuditIssue, 0, len(r.Issues)),
		Passed:      make([]api.AuditCheck, 0, len(r.Passed)),
		Summary:     r.Summary,
	}
	for _, f := range r.Issues {
		res.Issues = append(res.Issues, MapFindingDomainToApi(f))
	}
	for _, p := range r.Passed {
		res.Passed = append(res.Passed, MapPassRecordDomainToApi(p))
	}
	return res
}

func MapTextAuditReportDomainToApi(r domain.TextAuditReport) api.TextAuditResult {
	res := api.TextAuditResult{
		Score:    r.Score,
		Grade:    string(r.Grade),
		Findings: make([]api.TextFinding, 0, len(r.Findings)),
		Summary:  r.Summary,
	}
	for _, f := range r.Findings {
		res.Findings = append(res.Findings, api.TextFinding{
			Severity: MapSeverityDomainToApi(f.Severity),
			Title:    f.Title,
			Detail:   f.Description,
			Fix:      f.Fix,
		})
	}
	return res
}
