package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/getmilo/milo/pkg/runtime/bootstrap"
	"github.com/getmilo/milo/pkg/server"
	"github.com/getmilo/milo/pkg/services/audit"
	"github.com/getmilo/milo/pkg/services/blog"
	"github.com/getmilo/milo/pkg/services/chat"
	"github.com/getmilo/milo/pkg/services/config"
	"github.com/getmilo/milo/pkg/services/leads"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:          "web",
		Short:        "Start the Milo web API",
		SilenceUsage: true,
		RunE:         runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to a YAML/TOML/JSON config file (environment variables override it)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	settings, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logger, err := bootstrap.NewLogger(settings.Log, os.Stdout)
	if err != nil {
		return err
	}
	ctx := logger.WithContext(cmd.Context())

	leadStore, closeLeads, err := bootstrap.OpenLeadStore(ctx, settings.Leads)
	if err != nil {
		return fmt.Errorf("failed to open lead store: %w", err)
	}
	defer closeLeads()

	limitStore, closeLimits, err := bootstrap.OpenRateLimitStore(settings.RateLimit, logger)
	if err != nil {
		return fmt.Errorf("failed to open rate limit store: %w", err)
	}
	defer closeLimits()

	chatLimiter, subscribeLimiter, err := bootstrap.NewLimiters(limitStore, settings.RateLimit)
	if err != nil {
		return err
	}

	completer, err := bootstrap.NewCompleter(settings.LLM)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	classifier, err := chat.NewDefaultClassifier()
	if err != nil {
		return fmt.Errorf("failed to load chat patterns: %w", err)
	}

	library, err := blog.NewLibrary()
	if err != nil {
		return fmt.Errorf("failed to load blog posts: %w", err)
	}

	forwarders := bootstrap.Forwarders(settings.Leads)

	logger.Info().
		Str("leads_backend", settings.Leads.Backend).
		Int("lead_forwarders", len(forwarders)).
		Str("ratelimit_backend", settings.RateLimit.Backend).
		Bool("chat_enabled", completer != nil).
		Int("posts", len(library.All())).
		Msg("configuration loaded")

	api := server.NewWebAPI(logger, server.Config{
		Addr:            settings.Server.Addr,
		ShutdownTimeout: settings.Server.ShutdownTimeout,
		SweepInterval:   settings.RateLimit.SweepInterval,
		Dependencies: server.Dependencies{
			Auditor:          audit.NewAuditor(audit.DefaultSettings()),
			Chat:             chat.NewService(completer, classifier, chat.DefaultSettings()),
			Leads:            leads.NewService(leadStore, forwarders...),
			ChatLimiter:      chatLimiter,
			SubscribeLimiter: subscribeLimiter,
			Blog:             library,
			BaseURL:          settings.Server.BaseURL,
		},
	})

	return api.Start()
}
