// Package bootstrap turns loaded settings into the concrete stores and
// clients shared by the web server and the CLI.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/getmilo/milo/pkg/services/chat"
	"github.com/getmilo/milo/pkg/services/config"
	"github.com/getmilo/milo/pkg/services/leads"
	"github.com/getmilo/milo/pkg/services/ratelimit"
	"github.com/getmilo/milo/pkg/store/blob"
	"github.com/getmilo/milo/pkg/store/client"
	leadstore "github.com/getmilo/milo/pkg/store/leads"
	"github.com/getmilo/milo/pkg/store/sqldb"
	"github.com/rs/zerolog"
)

// Cleanup releases whatever an opener acquired.
type Cleanup func() error

func noop() error { return nil }

// NewLogger builds the process logger. Pretty output uses zerolog's console writer.
func NewLogger(s config.LogSettings, out io.Writer) (zerolog.Logger, error) {
	if out == nil {
		out = os.Stdout
	}
	level, err := zerolog.ParseLevel(s.Level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level: %w", err)
	}
	if s.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// OpenLeadStore opens the configured lead backend. Backend "none" yields a nil
// store, which the lead service treats as forward-only.
func OpenLeadStore(ctx context.Context, s config.LeadSettings) (leadstore.Store, Cleanup, error) {
	switch s.Backend {
	case "none":
		return nil, noop, nil
	case "file":
		files, err := blob.NewFileStore(s.Dir)
		if err != nil {
			return nil, nil, err
		}
		store, err := leadstore.NewJSONStore(files, s.Key)
		return store, noop, err
	case "s3":
		objects, err := blob.OpenS3Store(ctx, s.Region, s.Bucket, s.Prefix)
		if err != nil {
			return nil, nil, err
		}
		store, err := leadstore.NewJSONStore(objects, s.Key)
		return store, noop, err
	case "gcs":
		objects, err := blob.OpenGCSStore(ctx, s.Bucket, s.Prefix)
		if err != nil {
			return nil, nil, err
		}
		store, err := leadstore.NewJSONStore(objects, s.Key)
		if err != nil {
			objects.Close()
			return nil, nil, err
		}
		return store, objects.Close, nil
	case "sqlite", "postgres":
		dialect := sqldb.Dialect(s.Backend)
		db, err := sqldb.Open(ctx, sqldb.Settings{Dialect: dialect, DSN: s.DSN})
		if err != nil {
			return nil, nil, err
		}
		store, err := leadstore.NewSQLStore(db, dialect)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported lead backend %q", s.Backend)
	}
}

// Forwarders returns the webhook forwarder followed by the Stripe fallback,
// each only when configured.
func Forwarders(s config.LeadSettings) []leads.Forwarder {
	var out []leads.Forwarder
	if s.WebhookURL != "" {
		out = append(out, client.NewWebhookForwarder(s.WebhookURL, nil))
	}
	if s.StripeKey != "" {
		out = append(out, client.NewStripeForwarder(s.StripeKey, s.StripeURL, nil))
	}
	return out
}

// OpenRateLimitStore opens the shared counter store for every limiter.
func OpenRateLimitStore(s config.RateLimitSettings, logger zerolog.Logger) (ratelimit.Store, Cleanup, error) {
	if s.Backend != "badger" {
		return ratelimit.NewMemoryStore(), noop, nil
	}
	store, err := ratelimit.OpenBadgerStore(ratelimit.BadgerConfig{Path: s.BadgerPath}, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

// NewLimiters builds the chat and subscribe limiters over one store.
func NewLimiters(store ratelimit.Store, s config.RateLimitSettings) (chatLimiter, subscribeLimiter *ratelimit.Limiter, err error) {
	chatLimiter, err = ratelimit.New("chat", store, ratelimit.Policy(s.Chat))
	if err != nil {
		return nil, nil, err
	}
	subscribeLimiter, err = ratelimit.New("subscribe", store, ratelimit.Policy(s.Subscribe))
	if err != nil {
		return nil, nil, err
	}
	return chatLimiter, subscribeLimiter, nil
}

// NewCompleter returns the model client, or a nil Completer when no API key
// is configured so the chat service reports itself as unconfigured.
func NewCompleter(s config.LLMSettings) (chat.Completer, error) {
	if s.APIKey == "" {
		return nil, nil
	}
	c, err := client.NewLLMClient(client.LLMConfig{
		APIKey:            s.APIKey,
		BaseURL:           s.BaseURL,
		Model:             s.Model,
		Timeout:           s.Timeout,
		RequestsPerSecond: s.RequestsPerSecond,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
