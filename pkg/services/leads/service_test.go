package leads

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/getmilo/milo/pkg/models/domain"
	"github.com/getmilo/milo/pkg/models/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Upsert(ctx context.Context, lead store.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *MockStore) Stats(ctx context.Context) (store.LeadStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(store.LeadStats), args.Error(1)
}

func (m *MockStore) List(ctx context.Context) ([]store.Lead, error) {
	args := m.Called(ctx)
	return args.Get(0).([]store.Lead), args.Error(1)
}

type recordingForwarder struct {
	name  string
	err   error
	calls []domain.Lead
	ips   []string
}

func (f *recordingForwarder) Name() string { return f.name }

func (f *recordingForwarder) Forward(_ context.Context, lead domain.Lead, ip string) error {
	f.calls = append(f.calls, lead)
	f.ips = append(f.ips, ip)
	return f.err
}

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "first.last+tag@sub.example.org"}
	invalid := []string{"", "plain", "a@b", "a b@c.de", "@b.co", "a@.", strings.Repeat("a", 250) + "@b.co"}

	for _, e := range valid {
		assert.True(t, ValidEmail(e), e)
	}
	for _, e := range invalid {
		assert.False(t, ValidEmail(e), e)
	}
}

func TestSubscribe_NormalizesAndDefaults(t *testing.T) {
	ctx := context.Background()
	st := new(MockStore)
	webhook := &recordingForwarder{name: "webhook"}
	stripe := &recordingForwarder{name: "stripe"}
	s := NewService(st, webhook, stripe)
	s.now = func() time.Time { return time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC) }

	st.On("Upsert", ctx, mock.MatchedBy(func(l store.Lead) bool {
		return l.Email == "ada@example.com" && l.Source == "unknown" && l.Product == "unknown" && l.ID != ""
	})).Return(nil)

	lead, err := s.Subscribe(ctx, domain.Submission{Email: "  Ada@Example.COM ", IP: "9.9.9.9"})
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", lead.Email)
	assert.Equal(t, time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), lead.Timestamp)
	require.Len(t, webhook.calls, 1)
	assert.Equal(t, []string{"9.9.9.9"}, webhook.ips)
	assert.Empty(t, stripe.calls)
	st.AssertExpectations(t)
}

func TestSubscribe_InvalidEmail(t *testing.T) {
	st := new(MockStore)
	webhook := &recordingForwarder{name: "webhook"}
	s := NewService(st, webhook)

	_, err := s.Subscribe(context.Background(), domain.Submission{Email: "not-an-email"})

	assert.ErrorIs(t, err, ErrInvalidEmail)
	st.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	assert.Empty(t, webhook.calls)
}

func TestSubscribe_FailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	st := new(MockStore)
	st.On("Upsert", ctx, mock.Anything).Return(errors.New("disk full"))
	webhook := &recordingForwarder{name: "webhook", err: errors.New("timeout")}
	stripe := &recordingForwarder{name: "stripe", err: errors.New("401")}
	s := NewService(st, webhook, stripe)

	lead, err := s.Subscribe(ctx, domain.Submission{Email: "a@b.co", Source: "checkout", Product: "shield"})

	require.NoError(t, err)
	assert.Equal(t, "checkout", lead.Source)
	assert.Equal(t, "shield", lead.Product)
	assert.Len(t, webhook.calls, 1)
	assert.Len(t, stripe.calls, 1)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	st := new(MockStore)
	st.On("Stats", ctx).Return(store.LeadStats{Total: 3, Converted: 1, FollowUpSent: 2}, nil).Once()
	st.On("Stats", ctx).Return(store.LeadStats{}, errors.New("boom")).Once()
	s := NewService(st)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStats{Total: 3, Converted: 1, FollowUpSent: 2}, stats)

	_, err = s.Stats(ctx)
	assert.Error(t, err)
}

func TestService_WithoutStore(t *testing.T) {
	s := NewService(nil)

	_, err := s.Subscribe(context.Background(), domain.Submission{Email: "a@b.co"})
	require.NoError(t, err)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStats{}, stats)
}
