// Package wizard turns onboarding answers into install steps and a hardened
// openclaw.json.
package wizard

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/getmilo/milo/pkg/models/domain"
	"github.com/go-playground/validator/v10"
)

// DefaultGatewayPort is the port the generated config listens on.
const DefaultGatewayPort = 3456

// ErrNotHardened means the generated config did not pass its own audit.
var ErrNotHardened = errors.New("generated config failed the audit")

var validate = validator.New()

type Answers struct {
	Experience string `validate:"required,oneof=beginner intermediate advanced"`
	UseCase    string `validate:"required,oneof=personal business dev"`
	Platform   string `validate:"required,oneof=mac windows linux-vps docker managed"`
	Channel    string `validate:"required,oneof=telegram discord whatsapp"`
	Model      string `validate:"required"`
}

// Step is a titled group of shell commands.
type Step struct {
	Title    string
	Commands []string
	Note     string
}

type ChannelConfig struct {
	DMPolicy string `json:"dmPolicy"`
}

type SecurityConfig struct {
	Exec string `json:"exec"`
}

// Config is the subset of openclaw.json the wizard writes.
type Config struct {
	Host      string                   `json:"host"`
	Port      int                      `json:"port"`
	AuthToken string                   `json:"authToken"`
	Model     string                   `json:"model"`
	Elevated  bool                     `json:"elevated"`
	Security  SecurityConfig           `json:"security"`
	Channels  map[string]ChannelConfig `json:"channels"`
}

type Plan struct {
	Answers        Answers
	Recommendation string
	Install        []Step
	Model          Step
	Channel        Step
	Security       Step
	Checklist      []string
	Tips           []string
	Config         Config
	ConfigJSON     []byte
	Audit          domain.AuditReport
}

// Auditor grades the generated config.
type Auditor interface {
	AuditJSON(raw []byte) (domain.AuditReport, error)
}

type Builder struct {
	auditor Auditor
	random  io.Reader
}

// NewBuilder returns a builder drawing tokens from crypto/rand.
func NewBuilder(auditor Auditor) *Builder {
	return &Builder{auditor: auditor, random: rand.Reader}
}

// Build validates the answers, assembles the plan and audits the generated
// config. A config with any finding is rejected with ErrNotHardened.
func (b *Builder) Build(answers Answers) (Plan, error) {
	if err := validate.Struct(answers); err != nil {
		return Plan{}, fmt.Errorf("invalid answers: %w", err)
	}

	token, err := b.token()
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{
		Answers:   answers,
		Install:   installSteps(answers.Platform),
		Model:     modelStep(),
		Channel:   channelStep(answers.Channel),
		Security:  securityStep(),
		Checklist: checklist(),
		Config: Config{
			Host:      "127.0.0.1",
			Port:      DefaultGatewayPort,
			AuthToken: token,
			Model:     answers.Model,
			Security:  SecurityConfig{Exec: "allowlist"},
			Channels:  map[string]ChannelConfig{answers.Channel: {DMPolicy: "pairing"}},
		},
	}
	if answers.Experience == ExperienceBeginner {
		plan.Recommendation = "Start with Mac (local) if you have one, or Managed Hosting if you want the easiest path."
	}
	if answers.UseCase == UseCaseBusiness {
		plan.Tips = append(plan.Tips, "For business use, add sections to SOUL.md for brand voice, customer interaction rules, escalation procedures and data handling policies.")
	}

	plan.ConfigJSON, err = json.MarshalIndent(plan.Config, "", "  ")
	if err != nil {
		return Plan{}, fmt.Errorf("failed to encode config: %w", err)
	}

	plan.Audit, err = b.auditor.AuditJSON(plan.ConfigJSON)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to audit generated config: %w", err)
	}
	if len(plan.Audit.Issues) > 0 {
		titles := make([]string, 0, len(plan.Audit.Issues))
		for _, f := range plan.Audit.Issues {
			titles = append(titles, f.Title)
		}
		return Plan{}, fmt.Errorf("%w: %s", ErrNotHardened, strings.Join(titles, "; "))
	}
	return plan, nil
}

// token returns 32 random bytes hex encoded.
func (b *Builder) token() (string, error) {
	buf := make([]byte, 32)
	if _, err := io.ReadFull(b.random, buf); err != nil {
		return "", fmt.Errorf("failed to generate auth token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func installSteps(platform string) []Step {
	nodeOnUbuntu := "sudo apt update && sudo apt install -y build-essential curl\n" +
		"curl -fsSL https://deb.nodesource.com/setup_22.x | sudo -E bash -\n" +
		"sudo apt-get install -y nodejs"

	switch platform {
	case PlatformMac:
		return []Step{
			{Title: "Install Homebrew (skip if you have it)", Commands: []string{`/bin/bash -c "$(curl -fsSL https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh)"`}},
			{Title: "Install Node.js and OpenClaw", Commands: []string{"brew install node@22", "npm install -g openclaw"}},
			{Title: "Run setup", Commands: []string{"openclaw setup", "openclaw doctor --fix"},
				Note: "If it fails, run xcode-select --install first, then retry."},
		}
	case PlatformWindows:
		return []Step{
			{Title: "Install WSL2 (PowerShell as Administrator)", Commands: []string{"wsl --install"},
				Note: "Restart your computer after this completes."},
			{Title: "Open Ubuntu terminal, install Node.js and OpenClaw", Commands: []string{nodeOnUbuntu, "npm install -g openclaw"}},
			{Title: "Run setup", Commands: []string{"openclaw setup", "openclaw doctor --fix"}},
		}
	case PlatformLinuxVPS:
		return []Step{
			{Title: "Prepare the server", Commands: []string{nodeOnUbuntu}},
			{Title: "Install OpenClaw", Commands: []string{"npm install -g openclaw", "openclaw setup"}},
			{Title: "Lock the gateway and start it", Commands: []string{
				"openclaw config set gateway.host 127.0.0.1",
				"openclaw doctor --fix",
				"openclaw gateway start",
			}, Note: "The first command locks your gateway to localhost. Without it your agent is exposed to the internet."},
		}
	case PlatformDocker:
		return []Step{
			{Title: "Run the container", Commands: []string{"docker run -d \\\n" +
				"  --name openclaw \\\n" +
				"  --restart unless-stopped \\\n" +
				"  -v ~/.openclaw:/root/.openclaw \\\n" +
				"  -p 127.0.0.1:3456:3456 \\\n" +
				"  openclaw/openclaw:latest"}},
			{Title: "Run setup inside it", Commands: []string{
				"docker exec -it openclaw openclaw setup",
				"docker exec -it openclaw openclaw doctor --fix",
			}},
		}
	default:
		return []Step{{
			Title: "Pick a managed provider",
			Note:  "SimpleClaw (from $15/mo), Clawctl (from $10/mo) or hostmenow (from $20/mo) handle installation. Continue with the model step after signing up.",
		}}
	}
}

func modelStep() Step {
	return Step{
		Title: "Connect the model",
		Commands: []string{
			"openclaw models auth setup-token",
			"openclaw models test",
		},
		Note: "Create an API key at console.anthropic.com and paste it when prompted.",
	}
}

func channelStep(channel string) Step {
	switch channel {
	case ChannelDiscord:
		return Step{
			Title:    "Add Discord",
			Commands: []string{"openclaw channels add discord"},
			Note:     "Developer Portal: New Application, Bot, Reset Token. Enable Message Content Intent.",
		}
	case ChannelWhatsApp:
		return Step{
			Title:    "Add WhatsApp",
			Commands: []string{"openclaw channels add whatsapp"},
			Note:     "Scan the QR code with your phone. The session expires every ~14 days.",
		}
	default:
		return Step{
			Title:    "Add Telegram",
			Commands: []string{"openclaw channels add telegram", "openclaw channels test telegram"},
			Note:     "Message @BotFather, send /newbot and paste the token when prompted.",
		}
	}
}

func securityStep() Step {
	return Step{
		Title: "Lock it down",
		Commands: []string{
			"openclaw config set gateway.host 127.0.0.1",
			"openclaw config set gateway.auth true",
			"openclaw update status",
			"openclaw doctor --fix",
			"openclaw status --all",
		},
	}
}

func checklist() []string {
	return []string{
		"Gateway bound to 127.0.0.1 (not 0.0.0.0)",
		"Authentication token is set and strong",
		"Running latest OpenClaw version",
		"Exec permissions set to 'allowlist' not 'full'",
		"No suspicious skills installed",
	}
}
