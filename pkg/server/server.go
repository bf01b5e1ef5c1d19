package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	audithandler "github.com/getmilo/milo/pkg/handlers/audit"
	bloghandler "github.com/getmilo/milo/pkg/handlers/blog"
	chathandler "github.com/getmilo/milo/pkg/handlers/chat"
	"github.com/getmilo/milo/pkg/handlers/respond"
	subscribehandler "github.com/getmilo/milo/pkg/handlers/subscribe"
	"github.com/getmilo/milo/pkg/models/api"
	milomiddleware "github.com/getmilo/milo/pkg/server/middleware"
	"github.com/getmilo/milo/pkg/services/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	defaultSweepInterval   = 10 * time.Minute
)

type WebAPI struct {
	router   *chi.Mux
	logger   *zerolog.Logger
	server   *http.Server
	config   Config
	sweepers []*ratelimit.Limiter
}

type Dependencies struct {
	Auditor          audithandler.Auditor
	Chat             chathandler.Replier
	Leads            subscribehandler.LeadService
	ChatLimiter      *ratelimit.Limiter
	SubscribeLimiter *ratelimit.Limiter
	// Blog is optional; the blog pages and sitemap are not mounted without it.
	Blog    bloghandler.Library
	BaseURL string
}

type Config struct {
	Addr string
	// ShutdownTimeout bounds graceful shutdown (default: 10s)
	ShutdownTimeout time.Duration
	// SweepInterval is how often expired rate-limit entries are dropped (default: 10m)
	SweepInterval time.Duration
	Dependencies  Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = defaultShutdownTimeout
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = defaultSweepInterval
	}

	router := ConfigureRouter(logger, config)

	var sweepers []*ratelimit.Limiter
	for _, l := range []*ratelimit.Limiter{config.Dependencies.ChatLimiter, config.Dependencies.SubscribeLimiter} {
		if l != nil {
			sweepers = append(sweepers, l)
		}
	}

	return &WebAPI{
		router:   router,
		logger:   &logger,
		config:   config,
		sweepers: sweepers,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// ConfigureRouter builds the routing tree. It is separate from NewWebAPI so
// tests can serve it with httptest.
func ConfigureRouter(logger zerolog.Logger, config Config) *chi.Mux {
	deps := config.Dependencies

	auditHandler := audithandler.NewHandler(deps.Auditor)
	chatHandler := chathandler.NewHandler(deps.Chat, limiterOrNil(deps.ChatLimiter))
	subscribeHandler := subscribehandler.NewHandler(deps.Leads, limiterOrNil(deps.SubscribeLimiter))

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(milomiddleware.Logger(&logger))
	router.Use(milomiddleware.Metrics)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, api.Health{Status: "ok"})
	})
	router.Handle("/metrics", promhttp.Handler())

	routes := func(r chi.Router) {
		r.Post("/audit", auditHandler.Audit)
		r.Post("/audit/text", auditHandler.AuditText)
		r.Post("/chat", chatHandler.Chat)
		r.Post("/subscribe", subscribeHandler.Subscribe)
		r.Get("/subscribe", subscribeHandler.Stats)
	}
	router.Route("/api", routes)
	router.Group(routes)

	if deps.Blog != nil {
		blogHandler := bloghandler.NewHandler(deps.Blog, deps.BaseURL)
		router.Get("/blog", blogHandler.Index)
		router.Get("/blog/{slug}", blogHandler.Post)
		router.Get("/sitemap.xml", blogHandler.Sitemap)
	}

	return router
}

// limiterOrNil keeps a nil *Limiter from turning into a non-nil interface.
func limiterOrNil(l *ratelimit.Limiter) chathandler.Limiter {
	if l == nil {
		return nil
	}
	return l
}

// Start serves until SIGINT or SIGTERM.
func (w *WebAPI) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return w.Run(ctx)
}

// Run serves HTTP and the rate-limit sweepers until ctx is done, then shuts
// the server down gracefully.
func (w *WebAPI) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(w.logger.WithContext(ctx))

	g.Go(func() error {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		if err := w.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	for _, l := range w.sweepers {
		g.Go(func() error {
			return l.RunSweeper(ctx, w.config.SweepInterval)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), w.config.ShutdownTimeout)
		defer cancel()

		if err := w.server.Shutdown(shutdownCtx); err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			return w.server.Close()
		}
		return nil
	})

	return g.Wait()
}
