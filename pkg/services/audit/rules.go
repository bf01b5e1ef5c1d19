package audit

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/getmilo/milo/pkg/models/domain"
)

// Settings contains the thresholds the structured rules compare against.
type Settings struct {
	// ExposedHosts are bind addresses that listen on every interface.
	ExposedHosts []string
	// MinTokenLength is the shortest auth token accepted (default: 16).
	MinTokenLength int
	// MaxWorkspaceFiles is the number of boot-time workspace files tolerated (default: 5).
	MaxWorkspaceFiles int
	// WellKnownPorts are ports routinely probed by scanners.
	WellKnownPorts []int
	// ExpensiveModelMarker flags a model id as the costly tier.
	ExpensiveModelMarker string
}

func DefaultSettings() Settings {
	return Settings{
		ExposedHosts:         []string{"0.0.0.0", "::"},
		MinTokenLength:       16,
		MaxWorkspaceFiles:    5,
		WellKnownPorts:       []int{80, 443, 8080},
		ExpensiveModelMarker: "opus",
	}
}

// Outcome is what one rule contributes to a report: a finding, a pass record,
// or neither when the rule does not apply to the document.
type Outcome struct {
	Finding *domain.Finding
	Pass    *domain.PassRecord
}

type Rule struct {
	ID    string
	Check func(doc Document, s Settings) Outcome
}

// Rules returns the structured rule set in report order.
func Rules() []Rule {
	return []Rule{
		{ID: "network-exposure", Check: checkNetworkExposure},
		{ID: "auth-token", Check: checkAuthToken},
		{ID: "model", Check: checkModel},
		{ID: "whatsapp-dm-policy", Check: checkWhatsAppDMPolicy},
		{ID: "elevated", Check: checkElevated},
		{ID: "exec-full", Check: checkExecSecurity},
		{ID: "workspace-files", Check: checkWorkspaceFiles},
		{ID: "well-known-port", Check: checkPort},
		{ID: "cors-wildcard", Check: checkCORS},
	}
}

func issue(id string, sev domain.Severity, title, desc, fix string) Outcome {
	return Outcome{Finding: &domain.Finding{RuleID: id, Severity: sev, Title: title, Description: desc, Fix: fix}}
}

func pass(id, title, desc string) Outcome {
	return Outcome{Pass: &domain.PassRecord{RuleID: id, Title: title, Description: desc}}
}

func checkNetworkExposure(doc Document, s Settings) Outcome {
	if slices.Contains(s.ExposedHosts, doc.Host) {
		return issue("network-exposure", domain.SeverityCritical,
			"Gateway bound to all interfaces",
			fmt.Sprintf("Your gateway is listening on %s, making it accessible from any network. If this machine has a public IP, anyone can control your agent.", doc.Host),
			`Set "host": "127.0.0.1" in openclaw.json to bind to localhost only.`)
	}
	host := doc.Host
	if host == "" {
		host = "127.0.0.1 (default)"
	}
	return pass("network-exposure", "Gateway host binding",
		fmt.Sprintf("Gateway bound to %s -- not publicly exposed.", host))
}

func checkAuthToken(doc Document, s Settings) Outcome {
	if utf8.RuneCountInString(doc.AuthToken) < s.MinTokenLength {
		return issue("auth-token", domain.SeverityCritical,
			"Weak or missing auth token",
			fmt.Sprintf("No auth token set, or token is less than %d characters. Anyone who can reach the gateway can control it.", s.MinTokenLength),
			`Set "authToken" to a random string of at least 32 characters. Generate one: openssl rand -hex 32`)
	}
	return pass("auth-token", "Auth token configured",
		"Auth token is set and appears to be of sufficient length.")
}

func checkModel(doc Document, s Settings) Outcome {
	model := doc.ActiveModel()
	if model == "" {
		return issue("model", domain.SeverityMedium,
			"No model specified",
			"No model configured. OpenClaw will use the default, which may be expensive (Opus).",
			`Set "model" or "defaultModel" to control which model is used. Consider "anthropic/claude-sonnet-4-6" for a good balance of capability and cost.`)
	}
	if s.ExpensiveModelMarker != "" && strings.Contains(model, s.ExpensiveModelMarker) {
		return pass("model", "Model configured (Opus)",
			fmt.Sprintf("Using %s. This is the most capable but most expensive model (~$15/M input tokens). Consider Sonnet for routine tasks.", model))
	}
	return pass("model", "Model configured", fmt.Sprintf("Using %s.", model))
}

func checkWhatsAppDMPolicy(doc Document, _ Settings) Outcome {
	if doc.WhatsApp == nil {
		return Outcome{}
	}
	policy := doc.WhatsApp.DMPolicy
	if policy == "" || policy == "open" {
		return issue("whatsapp-dm-policy", domain.SeverityHigh,
			"WhatsApp DM policy is open",
			"Anyone who has your WhatsApp number can message your agent and it will respond. This can lead to unexpected costs and privacy issues.",
			`Set "dmPolicy": "allowlist" or "dmPolicy": "pairing" in your WhatsApp channel config.`)
	}
	return pass("whatsapp-dm-policy", "WhatsApp DM policy restricted",
		fmt.Sprintf("DM policy set to %q.", policy))
}

func checkElevated(doc Document, _ Settings) Outcome {
	if !doc.Elevated {
		return Outcome{}
	}
	return issue("elevated", domain.SeverityHigh,
		"Elevated permissions enabled",
		"The agent can run commands with elevated (sudo/admin) privileges. This significantly increases the attack surface.",
		`Remove "elevated: true" unless you specifically need it. Use allowlists for specific commands instead.`)
}

func checkExecSecurity(doc Document, _ Settings) Outcome {
	if doc.ExecSecurity != "full" {
		return Outcome{}
	}
	return issue("exec-full", domain.SeverityMedium,
		"Unrestricted exec permissions",
		`Security mode is "full" which allows the agent to run any shell command.`,
		`Consider "security": { "exec": "allowlist" } with specific commands listed.`)
}

func checkWorkspaceFiles(doc Document, s Settings) Outcome {
	if !doc.HasFileList || doc.WorkspaceFiles <= s.MaxWorkspaceFiles {
		return Outcome{}
	}
	n := doc.WorkspaceFiles
	return issue("workspace-files", domain.SeverityLow,
		fmt.Sprintf("%d workspace files loaded at boot", n),
		fmt.Sprintf("Loading %d files every session. Each file consumes tokens. Most agents only reference 2-3 files per session.", n),
		"Move infrequently-used files out of auto-injection. Load them on demand instead.")
}

func checkPort(doc Document, s Settings) Outcome {
	if doc.Port == 0 || !slices.Contains(s.WellKnownPorts, doc.Port) {
		return Outcome{}
	}
	return issue("well-known-port", domain.SeverityMedium,
		fmt.Sprintf("Gateway on well-known port %d", doc.Port),
		fmt.Sprintf("Port %d is commonly scanned by bots. Using a non-standard port provides a small layer of obscurity.", doc.Port),
		"Use a non-standard port (e.g., 3007) and restrict access with a firewall.")
}

func checkCORS(doc Document, _ Settings) Outcome {
	if doc.CORSOrigin != "*" {
		return Outcome{}
	}
	return issue("cors-wildcard", domain.SeverityMedium,
		"CORS allows all origins",
		"Any website can make requests to your gateway. This could be exploited for cross-site attacks.",
		`Set specific allowed origins instead of "*".`)
}
