package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getmilo/milo/pkg/models/domain"
)

const DefaultStripeURL = "https://api.stripe.com/v1/customers"

// ErrForwarderDisabled is returned by a forwarder that has no destination configured.
var ErrForwarderDisabled = errors.New("forwarder not configured")

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// WebhookForwarder posts the lead as JSON to an arbitrary URL.
type WebhookForwarder struct {
	url    string
	client *http.Client
}

func NewWebhookForwarder(webhookURL string, client *http.Client) *WebhookForwarder {
	if client == nil {
		client = defaultHTTPClient()
	}
	return &WebhookForwarder{url: webhookURL, client: client}
}

func (f *WebhookForwarder) Name() string { return "webhook" }

type webhookPayload struct {
	Email     string `json:"email"`
	Product   string `json:"product"`
	Source    string `json:"source"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

func (f *WebhookForwarder) Forward(ctx context.Context, lead domain.Lead, ip string) error {
	if f.url == "" {
		return ErrForwarderDisabled
	}
	body, err := json.Marshal(webhookPayload{
		Email:     lead.Email,
		Product:   lead.Product,
		Source:    lead.Source,
		IP:        ip,
		Timestamp: lead.Timestamp.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer drain(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// StripeForwarder records the lead as a Stripe customer.
type StripeForwarder struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewStripeForwarder targets the Stripe customers API. endpoint may be empty.
func NewStripeForwarder(apiKey, endpoint string, client *http.Client) *StripeForwarder {
	if client == nil {
		client = defaultHTTPClient()
	}
	if endpoint == "" {
		endpoint = DefaultStripeURL
	}
	return &StripeForwarder{apiKey: apiKey, endpoint: endpoint, client: client}
}

func (f *StripeForwarder) Name() string { return "stripe" }

func (f *StripeForwarder) Forward(ctx context.Context, lead domain.Lead, _ string) error {
	if f.apiKey == "" {
		return ErrForwarderDisabled
	}
	form := url.Values{}
	form.Set("email", lead.Email)
	form.Set("metadata[source]", lead.Source)
	form.Set("metadata[product]", lead.Product)
	form.Set("metadata[type]", "lead")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+f.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("create stripe customer: %w", err)
	}
	defer drain(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("stripe returned status %d", resp.StatusCode)
	}
	return nil
}
