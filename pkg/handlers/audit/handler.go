package audit

import (
	"errors"
	"net/http"
	"strings"

	"github.com/getmilo/milo/pkg/adapters"
	"github.com/getmilo/milo/pkg/handlers/respond"
	"github.com/getmilo/milo/pkg/metrics"
	"github.com/getmilo/milo/pkg/models/api"
	"github.com/getmilo/milo/pkg/models/domain"
	auditsvc "github.com/getmilo/milo/pkg/services/audit"
	"github.com/getmilo/milo/pkg/services/audit/textscan"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const (
	invalidJSON   = "Invalid JSON. Send your openclaw.json content as { config: {...} }"
	invalidConfig = "Invalid config. Send your openclaw.json content as { config: {...} }"
	invalidText   = "Invalid JSON. Send your config text as { config: \"...\" }"
	textRequired  = "Config text is required."
	tooLarge      = "Request body too large."
)

type Auditor interface {
	AuditJSON(raw []byte) (domain.AuditReport, error)
}

type Handler struct {
	auditor  Auditor
	scan     func(string) domain.TextAuditReport
	validate *validator.Validate
}

func NewHandler(auditor Auditor) *Handler {
	return &Handler{
		auditor:  auditor,
		scan:     textscan.Scan,
		validate: validator.New(),
	}
}

// Audit grades a structured openclaw.json sent as {"config": {...}}.
func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req api.AuditRequest
	if err := respond.Decode(w, r, &req); err != nil {
		if errors.Is(err, respond.ErrBodyTooLarge) {
			respond.Error(w, r, http.StatusRequestEntityTooLarge, tooLarge)
			return
		}
		logger.Debug().Err(err).Msg("rejected audit request")
		respond.Error(w, r, http.StatusBadRequest, invalidJSON)
		return
	}
	if len(req.Config) == 0 {
		respond.Error(w, r, http.StatusBadRequest, invalidConfig)
		return
	}

	report, err := h.auditor.AuditJSON(req.Config)
	if err != nil {
		if !errors.Is(err, auditsvc.ErrInvalidConfig) {
			logger.Error().Err(err).Msg("failed to audit config")
		}
		respond.Error(w, r, http.StatusBadRequest, invalidConfig)
		return
	}

	metrics.AuditGrades.WithLabelValues("structured", string(report.Grade)).Inc()
	logger.Info().
		Str("grade", string(report.Grade)).
		Int("score", report.ScoreNumber).
		Int("issues", len(report.Issues)).
		Msg("config audited")
	respond.JSON(w, r, http.StatusOK, adapters.MapAuditReportDomainToApi(report))
}

// AuditText runs the keyword scan over pasted configuration text sent as {"config": "..."}.
func (h *Handler) AuditText(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req api.TextAuditRequest
	if err := respond.Decode(w, r, &req); err != nil {
		if errors.Is(err, respond.ErrBodyTooLarge) {
			respond.Error(w, r, http.StatusRequestEntityTooLarge, tooLarge)
			return
		}
		logger.Debug().Err(err).Msg("rejected text audit request")
		respond.Error(w, r, http.StatusBadRequest, invalidText)
		return
	}
	req.Config = strings.TrimSpace(req.Config)
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, textRequired)
		return
	}

	report := h.scan(req.Config)
	metrics.AuditGrades.WithLabelValues("text", string(report.Grade)).Inc()
	logger.Info().
		Str("grade", string(report.Grade)).
		Int("score", report.Score).
		Msg("config text scanned")
	respond.JSON(w, r, http.StatusOK, adapters.MapTextAuditReportDomainToApi(report))
}
