package leads

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/getmilo/milo/pkg/adapters"
	"github.com/getmilo/milo/pkg/models/domain"
	leadstore "github.com/getmilo/milo/pkg/store/leads"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const unknown = "unknown"

// ErrInvalidEmail is returned when the submitted address fails validation.
var ErrInvalidEmail = errors.New("valid email required")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("leademail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register leademail validation: %v", err))
	}
}

// ValidEmail reports whether an already normalized address is acceptable.
func ValidEmail(email string) bool {
	return validate.Var(email, "required,max=254,leademail") == nil
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Forwarder delivers a lead to an external system. Forwarders are tried in
// order until one succeeds.
type Forwarder interface {
	Name() string
	Forward(ctx context.Context, lead domain.Lead, ip string) error
}

type Service struct {
	store      leadstore.Store
	forwarders []Forwarder
	now        func() time.Time
}

// NewService returns a lead service. A nil store keeps leads only in the forwarders.
func NewService(store leadstore.Store, forwarders ...Forwarder) *Service {
	return &Service{store: store, forwarders: forwarders, now: time.Now}
}

// Subscribe validates and records one submission. Only validation errors are
// returned; storage and forwarding failures are logged so the visitor's flow
// is never blocked.
func (s *Service) Subscribe(ctx context.Context, sub domain.Submission) (domain.Lead, error) {
	logger := zerolog.Ctx(ctx)

	email := NormalizeEmail(sub.Email)
	if !ValidEmail(email) {
		return domain.Lead{}, ErrInvalidEmail
	}

	lead := domain.Lead{
		ID:        uuid.NewString(),
		Email:     email,
		Source:    orUnknown(sub.Source),
		Product:   orUnknown(sub.Product),
		Timestamp: s.now().UTC(),
	}

	if s.store != nil {
		if err := s.store.Upsert(ctx, adapters.MapLeadDomainToStore(lead)); err != nil {
			logger.Error().Err(err).Str("source", lead.Source).Msg("failed to store lead")
		}
	}

	s.forward(ctx, lead, sub.IP)
	return lead, nil
}

func (s *Service) forward(ctx context.Context, lead domain.Lead, ip string) {
	logger := zerolog.Ctx(ctx)
	for _, f := range s.forwarders {
		err := f.Forward(ctx, lead, ip)
		if err == nil {
			logger.Debug().Str("forwarder", f.Name()).Msg("lead forwarded")
			return
		}
		logger.Warn().Err(err).Str("forwarder", f.Name()).Msg("lead forwarding failed")
	}
}

func (s *Service) Stats(ctx context.Context) (domain.LeadStats, error) {
	if s.store == nil {
		return domain.LeadStats{}, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return domain.LeadStats{}, fmt.Errorf("failed to load lead stats: %w", err)
	}
	return adapters.MapLeadStatsStoreToDomain(stats), nil
}

// List returns stored leads newest first.
func (s *Service) List(ctx context.Context) ([]domain.Lead, error) {
	if s.store == nil {
		return nil, nil
	}
	stored, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	out := make([]domain.Lead, 0, len(stored))
	for _, l := range stored {
		out = append(out, adapters.MapLeadStoreToDomain(l))
	}
	return out, nil
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return unknown
	}
	return v
}
