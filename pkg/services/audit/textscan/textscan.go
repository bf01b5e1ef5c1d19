// Package textscan grades a pasted configuration snippet by keyword presence.
// It is a heuristic: any occurrence of a keyword counts, so "admin" in a
// comment is reported the same as an admin password.
package textscan

import (
	"fmt"
	"strings"

	"github.com/getmilo/milo/pkg/models/domain"
)

type Check struct {
	ID       string
	Severity domain.Severity
	Points   int
	Title    string
	Detail   string
	Fix      string

	// Trigger reports whether the lower-cased text exhibits the problem.
	Trigger func(text string) bool
	// Pass, when set, reports whether a pass record is emitted for an untriggered check.
	Pass       func(text string) bool
	PassTitle  string
	PassDetail string
}

func containsAny(text string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func always(string) bool { return true }

// Checks returns the keyword rules in report order.
func Checks() []Check {
	return []Check{
		{
			ID:       "gateway-binding",
			Severity: domain.SeverityCritical,
			Points:   25,
			Title:    "Gateway exposed on all interfaces",
			Detail:   "Your gateway is bound to 0.0.0.0, making it accessible from the public internet. 135,000+ OpenClaw instances were found exposed this way.",
			Fix:      "Change gateway bind address to 127.0.0.1 or use a reverse proxy with TLS.",
			Trigger: func(text string) bool {
				return strings.Contains(text, "0.0.0.0")
			},
			Pass: func(text string) bool {
				return containsAny(text, "127.0.0.1", "localhost")
			},
			PassTitle:  "Gateway bound to localhost",
			PassDetail: "Your gateway is only accessible locally. Good.",
		},
		{
			ID:       "authentication",
			Severity: domain.SeverityCritical,
			Points:   30,
			Title:    "No authentication detected",
			Detail:   "No auth tokens, passwords, or API keys found in your config. Anyone who can reach your gateway can control your agent.",
			Fix:      "Add gateway authentication. Set a strong, unique token in your OpenClaw config.",
			Trigger: func(text string) bool {
				return !containsAny(text, "auth", "token", "password", "allowedkeys")
			},
			Pass:       always,
			PassTitle:  "Authentication configured",
			PassDetail: "Auth tokens or keys detected in config.",
		},
		{
			ID:       "exec-permissions",
			Severity: domain.SeverityCritical,
			Points:   20,
			Title:    "Unrestricted exec permissions",
			Detail:   `Exec is set to "full". Your agent can run any shell command without restrictions. A prompt injection attack could execute arbitrary code on your machine.`,
			Fix:      `Set exec security to "allowlist" and define specific allowed commands.`,
			Trigger: func(text string) bool {
				return containsAny(text, `"exec": "full"`, "exec: full", "security: full")
			},
			Pass: func(text string) bool {
				return strings.Contains(text, "allowlist")
			},
			PassTitle:  "Exec uses allowlist",
			PassDetail: "Shell commands are restricted to an allowlist. Good.",
		},
		{
			ID:       "browser-sandbox",
			Severity: domain.SeverityWarning,
			Points:   10,
			Title:    "Browser control enabled without sandbox mention",
			Detail:   "Browser automation is enabled. Ensure it runs in a sandboxed environment to prevent credential theft.",
			Fix:      "Enable browser sandboxing and ensure browser sessions are isolated.",
			Trigger: func(text string) bool {
				return strings.Contains(text, "browser") &&
					!containsAny(text, "browser: false", `"browser":false`, "sandbox")
			},
		},
		{
			ID:       "community-skills",
			Severity: domain.SeverityWarning,
			Points:   15,
			Title:    "Community skills referenced",
			Detail:   "Your config references community skills. 36% of ClawHub skills contain prompt injection. 1,100+ distribute malware.",
			Fix:      "Audit all installed skills manually. Only use skills from verified creators.",
			Trigger: func(text string) bool {
				return containsAny(text, "clawhub", "community-skills")
			},
		},
		{
			ID:       "weak-credentials",
			Severity: domain.SeverityCritical,
			Points:   20,
			Title:    "Default or weak credentials detected",
			Detail:   "Your config contains default or commonly-used credentials. These are the first thing attackers try.",
			Fix:      "Replace all default credentials with strong, unique values.",
			Trigger: func(text string) bool {
				return containsAny(text, "password123", "admin", "changeme", "default")
			},
		},
		{
			ID:       "tls",
			Severity: domain.SeverityWarning,
			Points:   10,
			Title:    "No TLS/HTTPS configured",
			Detail:   "Traffic between your client and gateway may be unencrypted. Credentials could be intercepted.",
			Fix:      "Use a reverse proxy (Caddy/nginx) with TLS, or access only via localhost/VPN.",
			Trigger: func(text string) bool {
				return !containsAny(text, "https", "tls", "ssl", "127.0.0.1")
			},
		},
		{
			ID:       "outdated-version",
			Severity: domain.SeverityWarning,
			Points:   10,
			Title:    "Potentially outdated version",
			Detail:   "Config references a 0.x version. CVE-2026-25253 affects older versions. Ensure you are on the latest patch.",
			Fix:      "Run: openclaw update status, then update if a newer version is available.",
			Trigger: func(text string) bool {
				return strings.Contains(text, "version") && strings.Contains(text, "0.")
			},
		},
	}
}

// Scan grades raw configuration text. Findings mix problems and pass records
// in check order; when no check produced anything a generic pass is returned.
func Scan(config string) domain.TextAuditReport {
	text := strings.ToLower(config)
	score := 100
	findings := []domain.Finding{}

	for _, c := range Checks() {
		switch {
		case c.Trigger(text):
			score -= c.Points
			findings = append(findings, domain.Finding{
				RuleID:      c.ID,
				Severity:    c.Severity,
				Title:       c.Title,
				Description: c.Detail,
				Fix:         c.Fix,
			})
		case c.Pass != nil && c.Pass(text):
			findings = append(findings, domain.Finding{
				RuleID:      c.ID,
				Severity:    domain.SeverityPass,
				Title:       c.PassTitle,
				Description: c.PassDetail,
			})
		}
	}

	if len(findings) == 0 {
		findings = append(findings, domain.Finding{
			RuleID:      "generic",
			Severity:    domain.SeverityPass,
			Title:       "Config looks reasonable",
			Description: "No obvious issues detected from the snippet provided. For a deeper audit, install the Milo Shield skill.",
		})
	}

	score = max(0, score)
	report := domain.TextAuditReport{
		Score:    score,
		Grade:    GradeFor(score),
		Findings: findings,
	}
	report.Summary = summarize(report)
	return report
}

func GradeFor(score int) domain.Grade {
	switch {
	case score < 40:
		return domain.GradeF
	case score < 60:
		return domain.GradeD
	case score < 75:
		return domain.GradeC
	case score < 90:
		return domain.GradeB
	default:
		return domain.GradeA
	}
}

// Label is the risk wording shown next to a grade.
func Label(g domain.Grade) string {
	switch g {
	case domain.GradeA:
		return "Hardened"
	case domain.GradeB:
		return "Good"
	case domain.GradeC:
		return "Moderate Risk"
	case domain.GradeD:
		return "High Risk"
	default:
		return "Dangerous"
	}
}

func summarize(r domain.TextAuditReport) string {
	var critical, warning int
	for _, f := range r.Findings {
		switch f.Severity {
		case domain.SeverityCritical:
			critical++
		case domain.SeverityWarning:
			warning++
		}
	}
	if critical+warning == 0 {
		return fmt.Sprintf("No obvious issues detected. Score: %d/100 (%s, %s).", r.Score, r.Grade, Label(r.Grade))
	}
	noun := "issue"
	if critical+warning > 1 {
		noun = "issues"
	}
	return fmt.Sprintf("Found %d %s: %d critical, %d warning. Score: %d/100 (%s, %s).",
		critical+warning, noun, critical, warning, r.Score, r.Grade, Label(r.Grade))
}
