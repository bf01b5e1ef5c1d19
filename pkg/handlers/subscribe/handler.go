package subscribe

import (
	"context"
	"errors"
	"net/http"

	"github.com/getmilo/milo/pkg/adapters"
	"github.com/getmilo/milo/pkg/handlers/respond"
	"github.com/getmilo/milo/pkg/metrics"
	"github.com/getmilo/milo/pkg/models/api"
	"github.com/getmilo/milo/pkg/models/domain"
	"github.com/getmilo/milo/pkg/server/middleware"
	"github.com/getmilo/milo/pkg/services/leads"
	"github.com/rs/zerolog"
)

const (
	msgRateLimited  = "Too many requests."
	msgInvalid      = "Invalid request."
	msgInvalidEmail = "Valid email required."
	msgSaved        = "Saved."
)

type LeadService interface {
	Subscribe(ctx context.Context, sub domain.Submission) (domain.Lead, error)
	Stats(ctx context.Context) (domain.LeadStats, error)
}

type Limiter interface {
	Name() string
	Allow(ctx context.Context, key string) (bool, error)
}

type Handler struct {
	leads   LeadService
	limiter Limiter
}

// NewHandler returns the email capture handler. A nil limiter disables rate limiting.
func NewHandler(leads LeadService, limiter Limiter) *Handler {
	return &Handler{leads: leads, limiter: limiter}
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	ip := middleware.ClientIP(r)

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(ctx, ip)
		if err != nil {
			logger.Error().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			metrics.RateLimited.WithLabelValues(h.limiter.Name()).Inc()
			respond.Error(w, r, http.StatusTooManyRequests, msgRateLimited)
			return
		}
	}

	var req api.SubscribeRequest
	if err := respond.Decode(w, r, &req); err != nil {
		logger.Debug().Err(err).Msg("rejected subscribe request")
		respond.Error(w, r, http.StatusBadRequest, msgInvalid)
		return
	}

	lead, err := h.leads.Subscribe(ctx, domain.Submission{
		Email:   req.Email,
		Source:  req.Source,
		Product: req.Product,
		IP:      ip,
	})
	if err != nil {
		if errors.Is(err, leads.ErrInvalidEmail) {
			respond.Error(w, r, http.StatusBadRequest, msgInvalidEmail)
			return
		}
		// storage and forwarding failures never reach the visitor
		logger.Error().Err(err).Msg("subscribe failed")
	} else {
		metrics.LeadsCaptured.Inc()
		logger.Info().
			Str("lead_id", lead.ID).
			Str("source", lead.Source).
			Str("product", lead.Product).
			Msg("lead captured")
	}

	respond.JSON(w, r, http.StatusOK, api.SubscribeResponse{OK: true, Message: msgSaved})
}

// Stats reports aggregate lead counters; no individual lead is ever exposed.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.leads.Stats(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to load lead stats")
	}
	respond.JSON(w, r, http.StatusOK, api.LeadStatsResponse{
		Status: "ok",
		Leads:  adapters.MapLeadStatsDomainToApi(stats),
	})
}
