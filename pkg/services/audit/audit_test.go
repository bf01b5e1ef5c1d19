package audit

import (
	"strings"
	"testing"

	"github.com/getmilo/milo/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ruleIDs(findings []domain.Finding) []string {
	ids := make([]string, 0, len(findings))
	for _, f := range findings {
		ids = append(ids, f.RuleID)
	}
	return ids
}

func TestAuditJSON_ExposedGatewayWithShortToken(t *testing.T) {
	a := NewAuditor(DefaultSettings())

	report, err := a.AuditJSON([]byte(`{"host":"0.0.0.0","authToken":"abc"}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"network-exposure", "auth-token", "model"}, ruleIDs(report.Issues))
	assert.Equal(t, 35, report.ScoreNumber)
	assert.Equal(t, domain.GradeF, report.Grade)
	assert.Empty(t, report.Passed)
	assert.Equal(t, "Found 3 issues: 2 critical, 0 high, 1 medium, 0 low. Score: F (35/100).", report.Summary)
}

func TestAuditJSON_HardenedConfig(t *testing.T) {
	a := NewAuditor(DefaultSettings())
	raw := `{"host":"127.0.0.1","authToken":"` + strings.Repeat("a", 32) + `","model":"anthropic/claude-sonnet-4-6"}`

	report, err := a.AuditJSON([]byte(raw))
	require.NoError(t, err)

	assert.Empty(t, report.Issues)
	require.Len(t, report.Passed, 3)
	assert.Equal(t, "Gateway host binding", report.Passed[0].Title)
	assert.Equal(t, "Auth token configured", report.Passed[1].Title)
	assert.Equal(t, "Model configured", report.Passed[2].Title)
	assert.Equal(t, 100, report.ScoreNumber)
	assert.Equal(t, domain.GradeA, report.Grade)
	assert.Equal(t, "Your OpenClaw configuration looks solid. No issues found.", report.Summary)
}

func TestAuditJSON_RejectsNonObjects(t *testing.T) {
	a := NewAuditor(DefaultSettings())

	for _, raw := range []string{`[]`, `"text"`, `42`, `null`, `{broken`} {
		t.Run(raw, func(t *testing.T) {
			_, err := a.AuditJSON([]byte(raw))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestAudit_IndividualRules(t *testing.T) {
	base := map[string]any{
		"host":      "127.0.0.1",
		"authToken": strings.Repeat("x", 20),
		"model":     "anthropic/claude-sonnet-4-6",
	}
	with := func(k string, v any) map[string]any {
		cfg := map[string]any{}
		for key, val := range base {
			cfg[key] = val
		}
		cfg[k] = v
		return cfg
	}

	tests := []struct {
		name     string
		cfg      map[string]any
		ruleID   string
		severity domain.Severity
		score    int
	}{
		{"ipv6 wildcard host", with("host", "::"), "network-exposure", domain.SeverityCritical, 70},
		{"short multi-byte token", with("authToken", strings.Repeat("é", 8)), "auth-token", domain.SeverityCritical, 70},
		{"open whatsapp dm", with("channels", map[string]any{"whatsapp": map[string]any{"dmPolicy": "open"}}), "whatsapp-dm-policy", domain.SeverityHigh, 85},
		{"top-level whatsapp without policy", with("whatsapp", map[string]any{}), "whatsapp-dm-policy", domain.SeverityHigh, 85},
		{"elevated", with("elevated", true), "elevated", domain.SeverityHigh, 85},
		{"full exec", with("security", map[string]any{"exec": "full"}), "exec-full", domain.SeverityMedium, 95},
		{"many workspace files", with("workspace", map[string]any{"files": []any{"a", "b", "c", "d", "e", "f"}}), "workspace-files", domain.SeverityLow, 100},
		{"well known port", with("port", float64(443)), "well-known-port", domain.SeverityMedium, 95},
		{"cors wildcard", with("cors", map[string]any{"origin": "*"}), "cors-wildcard", domain.SeverityMedium, 95},
	}

	a := NewAuditor(DefaultSettings())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := a.Audit(Normalize(tt.cfg))

			require.Len(t, report.Issues, 1)
			assert.Equal(t, tt.ruleID, report.Issues[0].RuleID)
			assert.Equal(t, tt.severity, report.Issues[0].Severity)
			assert.NotEmpty(t, report.Issues[0].Fix)
			assert.Equal(t, tt.score, report.ScoreNumber)
		})
	}
}

func TestAudit_TokenLengthCountsCharacters(t *testing.T) {
	a := NewAuditor(DefaultSettings())

	// 16 characters, 32 bytes
	report := a.Audit(Document{Host: "127.0.0.1", AuthToken: strings.Repeat("é", 16), Model: "m"})
	assert.Empty(t, report.Issues)

	report = a.Audit(Document{Host: "127.0.0.1", AuthToken: strings.Repeat("é", 15), Model: "m"})
	assert.Equal(t, []string{"auth-token"}, ruleIDs(report.Issues))
}

func TestAudit_ResultsBoundedByRules(t *testing.T) {
	worst := map[string]any{
		"host":      "0.0.0.0",
		"elevated":  true,
		"security":  map[string]any{"exec": "full"},
		"workspace": map[string]any{"files": []any{1, 2, 3, 4, 5, 6, 7}},
		"port":      float64(80),
		"cors":      map[string]any{"origin": "*"},
		"whatsapp":  map[string]any{"dmPolicy": "open"},
	}
	hardened := map[string]any{
		"host":      "127.0.0.1",
		"authToken": strings.Repeat("a", 32),
		"model":     "anthropic/claude-sonnet-4-6",
	}
	withChannel := map[string]any{
		"host":      "127.0.0.1",
		"authToken": strings.Repeat("a", 32),
		"model":     "anthropic/claude-opus-4-6",
		"channels":  map[string]any{"whatsapp": map[string]any{"dmPolicy": "pairing"}},
	}

	tests := []struct {
		name string
		cfg  map[string]any
	}{
		{"worst case", worst},
		{"empty", map[string]any{}},
		{"hardened without channel", hardened},
		{"hardened with channel", withChannel},
	}

	a := NewAuditor(DefaultSettings())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := a.Audit(Normalize(tt.cfg))

			assert.LessOrEqual(t, len(report.Issues)+len(report.Passed), len(Rules()))

			seen := map[string]bool{}
			for _, id := range ruleIDs(report.Issues) {
				assert.False(t, seen[id], "rule %s reported twice", id)
				seen[id] = true
			}
			for _, p := range report.Passed {
				assert.False(t, seen[p.RuleID], "rule %s reported twice", p.RuleID)
				seen[p.RuleID] = true
			}
		})
	}

	// the channel rule only contributes when the channel is present
	without := a.Audit(Normalize(hardened))
	with := a.Audit(Normalize(withChannel))
	assert.Equal(t, len(without.Passed)+1, len(with.Passed))
}

func TestAudit_IgnoresMistypedFields(t *testing.T) {
	a := NewAuditor(DefaultSettings())

	// Given fields of the wrong JSON type
	report, err := a.AuditJSON([]byte(`{
		"host": 1,
		"authToken": ["` + strings.Repeat("a", 32) + `"],
		"elevated": "true",
		"port": 80.5,
		"workspace": {"files": "many"},
		"cors": "*"
	}`))
	require.NoError(t, err)

	// Then they read as unset
	assert.Equal(t, []string{"auth-token", "model"}, ruleIDs(report.Issues))
	assert.Equal(t, 65, report.ScoreNumber)
}

func TestAudit_OpusModelPasses(t *testing.T) {
	a := NewAuditor(DefaultSettings())

	report := a.Audit(Document{AuthToken: strings.Repeat("k", 16), DefaultModel: "anthropic/claude-opus-4"})

	require.Len(t, report.Passed, 3)
	assert.Equal(t, "Gateway bound to 127.0.0.1 (default) -- not publicly exposed.", report.Passed[0].Description)
	assert.Equal(t, "Model configured (Opus)", report.Passed[2].Title)
	assert.Empty(t, report.Issues)
}

func TestAudit_SingleIssueSummary(t *testing.T) {
	a := NewAuditor(DefaultSettings())

	report := a.Audit(Document{AuthToken: strings.Repeat("k", 16), Model: "m", Elevated: true})

	assert.Equal(t, "Found 1 issue: 0 critical, 1 high, 0 medium, 0 low. Score: B (85/100).", report.Summary)
}

func TestAudit_Idempotent(t *testing.T) {
	a := NewAuditor(DefaultSettings())
	doc := Document{Host: "0.0.0.0", Elevated: true, Port: 8080, CORSOrigin: "*"}

	assert.Equal(t, a.Audit(doc), a.Audit(doc))
}

func TestScore_Clamps(t *testing.T) {
	var issues []domain.Finding
	for i := 0; i < 5; i++ {
		issues = append(issues, domain.Finding{Severity: domain.SeverityCritical})
	}
	assert.Equal(t, 0, Score(issues))
	assert.Equal(t, 100, Score(nil))
	assert.Equal(t, 100, Score([]domain.Finding{{Severity: domain.SeverityLow}}))
}

func TestGradeFor_Boundaries(t *testing.T) {
	tests := map[int]domain.Grade{
		100: domain.GradeA,
		90:  domain.GradeA,
		89:  domain.GradeB,
		75:  domain.GradeB,
		74:  domain.GradeC,
		60:  domain.GradeC,
		59:  domain.GradeD,
		40:  domain.GradeD,
		39:  domain.GradeF,
		0:   domain.GradeF,
	}
	for score, grade := range tests {
		assert.Equal(t, grade, GradeFor(score), "score %d", score)
	}
}
