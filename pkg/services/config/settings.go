package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "MILO"

type Settings struct {
	Server    ServerSettings    `mapstructure:"server"`
	Log       LogSettings       `mapstructure:"log"`
	LLM       LLMSettings       `mapstructure:"llm"`
	RateLimit RateLimitSettings `mapstructure:"ratelimit"`
	Leads     LeadSettings      `mapstructure:"leads"`
}

type ServerSettings struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	BaseURL         string        `mapstructure:"base_url" validate:"required,url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogSettings struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Pretty bool   `mapstructure:"pretty"`
}

// LLMSettings configure the chat model. An empty APIKey leaves chat disabled.
type LLMSettings struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url" validate:"required,url"`
	Model             string        `mapstructure:"model" validate:"required"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gte=0"`
}

type Policy struct {
	Limit  int           `mapstructure:"limit" validate:"gt=0"`
	Window time.Duration `mapstructure:"window" validate:"gt=0"`
}

type RateLimitSettings struct {
	Backend       string        `mapstructure:"backend" validate:"oneof=memory badger"`
	BadgerPath    string        `mapstructure:"badger_path" validate:"required_if=Backend badger"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"gt=0"`
	Chat          Policy        `mapstructure:"chat"`
	Subscribe     Policy        `mapstructure:"subscribe"`
}

// LeadSettings select where captured emails are kept and forwarded.
type LeadSettings struct {
	Backend    string `mapstructure:"backend" validate:"oneof=none file s3 gcs sqlite postgres"`
	Dir        string `mapstructure:"dir" validate:"required_if=Backend file"`
	Key        string `mapstructure:"key"`
	Bucket     string `mapstructure:"bucket" validate:"required_if=Backend s3,required_if=Backend gcs"`
	Prefix     string `mapstructure:"prefix"`
	Region     string `mapstructure:"region"`
	DSN        string `mapstructure:"dsn" validate:"required_if=Backend sqlite,required_if=Backend postgres"`
	WebhookURL string `mapstructure:"webhook_url" validate:"omitempty,url"`
	StripeKey  string `mapstructure:"stripe_key"`
	StripeURL  string `mapstructure:"stripe_url" validate:"omitempty,url"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.base_url", "https://getmilo.dev")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://generativelanguage.googleapis.com/v1beta/openai")
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.requests_per_second", 5)

	v.SetDefault("ratelimit.backend", "memory")
	v.SetDefault("ratelimit.badger_path", "")
	v.SetDefault("ratelimit.sweep_interval", 10*time.Minute)
	v.SetDefault("ratelimit.chat.limit", 30)
	v.SetDefault("ratelimit.chat.window", time.Hour)
	v.SetDefault("ratelimit.subscribe.limit", 5)
	v.SetDefault("ratelimit.subscribe.window", time.Hour)

	v.SetDefault("leads.backend", "file")
	v.SetDefault("leads.dir", "data")
	v.SetDefault("leads.key", "leads.json")
	v.SetDefault("leads.bucket", "")
	v.SetDefault("leads.prefix", "")
	v.SetDefault("leads.region", "")
	v.SetDefault("leads.dsn", "")
	v.SetDefault("leads.webhook_url", "")
	v.SetDefault("leads.stripe_key", "")
	v.SetDefault("leads.stripe_url", "https://api.stripe.com/v1/customers")
}

// Load resolves settings from defaults, the optional config file at path and
// the environment. Environment variables use the MILO_ prefix with dots
// replaced by underscores (MILO_LEADS_BACKEND); the deployment's historic
// names GEMINI_API_KEY, LEADS_WEBHOOK_URL and STRIPE_KEY_MILO are honoured too.
func Load(path string) (Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range map[string]string{
		"llm.api_key":       "GEMINI_API_KEY",
		"leads.webhook_url": "LEADS_WEBHOOK_URL",
		"leads.stripe_key":  "STRIPE_KEY_MILO",
	} {
		envKey := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, legacy); err != nil {
			return Settings{}, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validator.New().Struct(settings); err != nil {
		return Settings{}, fmt.Errorf("invalid config: %w", err)
	}
	return settings, nil
}
