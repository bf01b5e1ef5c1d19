package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getmilo/milo/pkg/models/api"
	"github.com/getmilo/milo/pkg/models/domain"
	"github.com/getmilo/milo/pkg/runtime/bootstrap"
	"github.com/getmilo/milo/pkg/runtime/terminal/export"
	"github.com/getmilo/milo/pkg/services/config"
	"github.com/getmilo/milo/pkg/services/leads"
	"github.com/getmilo/milo/pkg/services/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exposedConfig = `{"host":"0.0.0.0","port":3000,"model":"anthropic/claude-sonnet-4-5"}`

func plain(w io.Writer) export.Reporter { return export.NewPlainReporter(w) }

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cli := NewCLI(Options{Output: &out, Input: strings.NewReader(stdin), Reporter: plain})
	cli.SetArgs(args)
	err := cli.Execute()
	return out.String(), err
}

func TestAuditCmd(t *testing.T) {
	file := filepath.Join(t.TempDir(), "openclaw.json")
	require.NoError(t, os.WriteFile(file, []byte(exposedConfig), 0o600))

	tests := []struct {
		name     string
		stdin    string
		args     []string
		expected []string
		err      string
	}{
		{
			name:     "structured from stdin",
			stdin:    exposedConfig,
			args:     []string{"audit"},
			expected: []string{"OpenClaw config audit: ", "Gateway bound to all interfaces", "Weak or missing auth token"},
		},
		{
			name:     "structured from file",
			args:     []string{"audit", file},
			expected: []string{"OpenClaw config audit: "},
		},
		{
			name:     "auto falls back to the text scan",
			stdin:    "host: 0.0.0.0\n",
			args:     []string{"audit", "-"},
			expected: []string{"OpenClaw config scan: "},
		},
		{
			name:     "forced text mode on json",
			stdin:    exposedConfig,
			args:     []string{"audit", "--mode", "text"},
			expected: []string{"OpenClaw config scan: "},
		},
		{
			name:  "forced structured mode on text",
			stdin: "host: 0.0.0.0",
			args:  []string{"audit", "--mode", "structured"},
			err:   "failed to audit config",
		},
		{
			name:  "unknown mode",
			stdin: exposedConfig,
			args:  []string{"audit", "--mode", "fuzzy"},
			err:   `unknown audit mode "fuzzy"`,
		},
		{
			name: "empty stdin",
			args: []string{"audit"},
			err:  "no config given",
		},
		{
			name: "missing file",
			args: []string{"audit", filepath.Join(t.TempDir(), "nope.json")},
			err:  "failed to read config",
		},
		{
			name:  "score below minimum",
			stdin: exposedConfig,
			args:  []string{"audit", "--min-score", "90"},
			err:   "below the required 90",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.stdin, tt.args...)
			if tt.err != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.err)
				return
			}
			require.NoError(t, err)
			for _, s := range tt.expected {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestAuditCmd_JSON(t *testing.T) {
	t.Run("structured", func(t *testing.T) {
		out, err := run(t, exposedConfig, "audit", "--json")
		require.NoError(t, err)

		var result api.AuditResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.NotEmpty(t, result.Issues)
		assert.Equal(t, api.SeverityCritical, result.Issues[0].Severity)
		// two critical findings
		assert.Equal(t, "D", result.Score)
		assert.Equal(t, 40, result.ScoreNumber)
	})

	t.Run("text", func(t *testing.T) {
		out, err := run(t, "auth token behind https on localhost", "audit", "--json")
		require.NoError(t, err)

		var result api.TextAuditResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, 100, result.Score)
		assert.Equal(t, "A", result.Grade)
		require.Len(t, result.Findings, 2)
		for _, f := range result.Findings {
			assert.Equal(t, api.SeverityPass, f.Severity)
		}
	})
}

func setupArgs(extra ...string) []string {
	return append([]string{
		"setup",
		"--experience", wizard.ExperienceAdvanced,
		"--use-case", wizard.UseCaseDev,
		"--platform", wizard.PlatformLinuxVPS,
		"--channel", wizard.ChannelDiscord,
		"--model", wizard.RecommendedModel,
	}, extra...)
}

func TestSetupCmd_WritesHardenedConfig(t *testing.T) {
	// Given every answer as a flag, so no form is shown
	path := filepath.Join(t.TempDir(), "openclaw.json")

	// When running setup with --write
	out, err := run(t, "", setupArgs("--write", path)...)
	require.NoError(t, err)

	// Then the plan is printed
	assert.Contains(t, out, "OpenClaw setup plan (linux-vps, discord, "+wizard.RecommendedModel+")")
	assert.Contains(t, out, "(audit: A, 100/100)")

	// And the config is written for the owner only
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var cfg wizard.Config
	require.NoError(t, json.Unmarshal(raw, &cfg))
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, wizard.DefaultGatewayPort, cfg.Port)
	assert.Len(t, cfg.AuthToken, 64)
	assert.Equal(t, "pairing", cfg.Channels[wizard.ChannelDiscord].DMPolicy)

	// And the written config passes its own audit
	out, err = run(t, "", "audit", "--min-score", "100", path)
	require.NoError(t, err)
	assert.Contains(t, out, "No issues found.")
}

func TestSetupCmd_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openclaw.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	_, err := run(t, "", setupArgs("--write", path)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run(t, "", setupArgs("--write", path, "--force")...)
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"authToken"`)
}

func TestSetupCmd_InvalidAnswer(t *testing.T) {
	args := setupArgs()
	args[4] = "gamer"

	_, err := run(t, "", args...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid answers")
}

func writeLeadConfig(t *testing.T) (string, config.Settings) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "milo.yaml")
	content := "leads:\n  backend: file\n  dir: " + filepath.Join(dir, "data") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	settings, err := config.Load(path)
	require.NoError(t, err)
	return path, settings
}

func TestLeadsCmd(t *testing.T) {
	path, settings := writeLeadConfig(t)

	t.Run("empty store", func(t *testing.T) {
		out, err := run(t, "", "leads", "stats", "--config", path)
		require.NoError(t, err)
		assert.Equal(t, "Leads: 0 total, 0 converted, 0 follow-ups sent\n", out)

		out, err = run(t, "", "leads", "list", "--config", path)
		require.NoError(t, err)
		assert.Equal(t, "No leads yet.\n", out)
	})

	// seed one lead through the service
	ctx := context.Background()
	store, cleanup, err := bootstrap.OpenLeadStore(ctx, settings.Leads)
	require.NoError(t, err)
	_, err = leads.NewService(store).Subscribe(ctx, domain.Submission{Email: " Someone@Example.com ", Source: "blog"})
	require.NoError(t, err)
	require.NoError(t, cleanup())

	t.Run("list", func(t *testing.T) {
		out, err := run(t, "", "leads", "list", "--config", path)
		require.NoError(t, err)
		assert.Contains(t, out, "someone@example.com  source=blog product=unknown")
	})

	t.Run("stats json", func(t *testing.T) {
		out, err := run(t, "", "leads", "stats", "--json", "--config", path)
		require.NoError(t, err)

		var resp api.LeadStatsResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, 1, resp.Leads.Total)
	})

	t.Run("list json", func(t *testing.T) {
		out, err := run(t, "", "leads", "list", "--json", "--config", path)
		require.NoError(t, err)

		var list []api.Lead
		require.NoError(t, json.Unmarshal([]byte(out), &list))
		require.Len(t, list, 1)
		assert.Equal(t, "someone@example.com", list[0].Email)
	})
}

func TestLeadsCmd_BadConfig(t *testing.T) {
	_, err := run(t, "", "leads", "stats", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
