package chat

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
	chatsvc "github.com/getmilo/milo/pkg/services/chat"
	"github.com/rs/zerolog"
)

const (
	msgNotConfigured = "Chat is not configured yet. Check back soon!"
	msgRateLimited   = "Rate limit reached. Try again in an hour."
	msgInvalid       = "Invalid request."
	msgRequired      = "Message is required."
	msgTooLong       = "Message too long. Keep it under 500 characters."
	msgUpstream      = "AI service temporarily unavailable. Try again in a moment."
	msgInternal      = "Something went wrong. Try again."
)

type Replier interface {
	Configured() bool
	Reply(ctx context.Context, req domain.ChatRequest) (domain.ChatReply, error)
}

type Limiter interface {
	Name() string
	Allow(ctx context.Context, key string) (bool, error)
}

type Handler struct {
	service Replier
	limiter Limiter
}

// NewHandler returns the chat handler. A nil limiter disables rate limiting.
func NewHandler(service Replier, limiter Limiter) *Handler {
	return &Handler{service: service, limiter: limiter}
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	if !h.service.Configured() {
		respond.Error(w, r, http.StatusServiceUnavailable, msgNotConfigured)
		return
	}

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(ctx, middleware.ClientIP(r))
		if err != nil {
			// fail open when the limiter store is unavailable
			logger.Error().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			metrics.RateLimited.WithLabelValues(h.limiter.Name()).Inc()
			respond.Error(w, r, http.StatusTooManyRequests, msgRateLimited)
			return
		}
	}

	var req api.ChatRequest
	if err := respond.Decode(w, r, &req); err != nil {
		logger.Debug().Err(err).Msg("rejected chat request")
		respond.Error(w, r, http.StatusBadRequest, msgInvalid)
		return
	}

	reply, err := h.service.Reply(ctx, adapters.MapChatRequestApiToDomain(req))
	switch {
	case err == nil:
	case errors.Is(err, chatsvc.ErrMessageRequired):
		respond.Error(w, r, http.StatusBadRequest, msgRequired)
		return
	case errors.Is(err, chatsvc.ErrMessageTooLong):
		respond.Error(w, r, http.StatusBadRequest, msgTooLong)
		return
	case errors.Is(err, chatsvc.ErrNotConfigured):
		respond.Error(w, r, http.StatusServiceUnavailable, msgNotConfigured)
		return
	case errors.Is(err, domain.ErrUpstreamStatus):
		metrics.ChatReplies.WithLabelValues("error").Inc()
		logger.Error().Err(err).Msg("model API returned an error")
		respond.Error(w, r, http.StatusBadGateway, msgUpstream)
		return
	default:
		metrics.ChatReplies.WithLabelValues("error").Inc()
		logger.Error().Err(err).Msg("chat failed")
		respond.Error(w, r, http.StatusInternalServerError, msgInternal)
		return
	}

	outcome := "answered"
	switch {
	case reply.Blocked:
		outcome = "blocked"
	case reply.Text == chatsvc.FallbackReply:
		outcome = "empty"
	}
	metrics.ChatReplies.WithLabelValues(outcome).Inc()
	respond.JSON(w, r, http.StatusOK, api.ChatResponse{Reply: reply.Text})
}
