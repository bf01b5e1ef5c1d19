package wizard

// Option is one selectable answer shown by the setup form.
type Option struct {
	Value       string
	Title       string
	Description string
}

const (
	ExperienceBeginner     = "beginner"
	ExperienceIntermediate = "intermediate"
	ExperienceAdvanced     = "advanced"

	UseCasePersonal = "personal"
	UseCaseBusiness = "business"
	UseCaseDev      = "dev"

	PlatformMac      = "mac"
	PlatformWindows  = "windows"
	PlatformLinuxVPS = "linux-vps"
	PlatformDocker   = "docker"
	PlatformManaged  = "managed"

	ChannelTelegram = "telegram"
	ChannelDiscord  = "discord"
	ChannelWhatsApp = "whatsapp"
)

// RecommendedModel is preselected by the form.
const RecommendedModel = "anthropic/claude-sonnet-4-5"

var Experiences = []Option{
	{ExperienceBeginner, "Beginner", "I've used ChatGPT/Claude but never set up my own AI. I'm not really a coder."},
	{ExperienceIntermediate, "Somewhat Technical", "I can use the terminal, install packages, maybe write basic scripts."},
	{ExperienceAdvanced, "Developer", "I'm comfortable with CLI, Docker, SSH, VPS management, Node.js."},
}

var UseCases = []Option{
	{UseCasePersonal, "Personal Assistant", "Email management, calendar, reminders, research, smart home."},
	{UseCaseBusiness, "Business Automation", "Customer support, content creation, marketing, sales outreach."},
	{UseCaseDev, "Development & Coding", "Coding agent, CI/CD helper, code review, documentation, DevOps."},
}

var Platforms = []Option{
	{PlatformMac, "Mac (Local)", "Easiest self-hosted. Runs on your machine."},
	{PlatformWindows, "Windows (WSL2)", "Requires WSL2 setup first, then same as Linux."},
	{PlatformLinuxVPS, "Linux / VPS", "Always-on. Great for production. DigitalOcean, Hetzner, etc."},
	{PlatformDocker, "Docker", "Containerized. Maximum isolation."},
	{PlatformManaged, "Managed Hosting", "Someone else handles setup. SimpleClaw, Clawctl, etc."},
}

var Channels = []Option{
	{ChannelTelegram, "Telegram", "Easiest. Create a bot with @BotFather."},
	{ChannelDiscord, "Discord", "Bot token from the Discord Developer Portal."},
	{ChannelWhatsApp, "WhatsApp", "Requires a QR scan. Session expires every ~14 days."},
}

var Models = []Option{
	{RecommendedModel, "Claude Sonnet 4.5", "Fast, ~$3/M tokens. Best starting point."},
	{"anthropic/claude-opus-4-6", "Claude Opus 4.6", "Slow, ~$15/M tokens. Smartest, most expensive."},
	{"anthropic/claude-haiku-4-5", "Claude Haiku 4.5", "Very fast, ~$0.25/M tokens. Cheap, good for simple tasks."},
	{"openai/gpt-4o", "GPT-4o", "Fast, ~$2.5/M tokens. Good alternative."},
}
