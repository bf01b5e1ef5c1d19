package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/getmilo/milo/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	DefaultLLMBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultLLMModel   = "gemini-2.0-flash"
)

type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// RequestsPerSecond caps outbound calls across all visitors. Zero disables the cap.
	RequestsPerSecond float64
}

// LLMClient talks to any OpenAI-compatible chat completions endpoint.
type LLMClient struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
}

func NewLLMClient(cfg LLMConfig) (*LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm api key is required")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = DefaultLLMBaseURL
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	oc.HTTPClient = &http.Client{Timeout: timeout}

	model := cfg.Model
	if model == "" {
		model = DefaultLLMModel
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(1, int(cfg.RequestsPerSecond)))
	}

	return &LLMClient{
		client:  openai.NewClientWithConfig(oc),
		model:   model,
		limiter: limiter,
	}, nil
}

// Complete sends one chat completion. Error statuses from the provider wrap
// domain.ErrUpstreamStatus; an answer without choices yields an empty string.
func (c *LLMClient) Complete(ctx context.Context, in domain.Completion) (string, error) {
	logger := zerolog.Ctx(ctx)

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for llm rate limit: %w", err)
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(in.History)+2)
	if in.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: in.System})
	}
	for _, m := range in.History {
		role := openai.ChatMessageRoleAssistant
		if m.Role == domain.ChatRoleUser {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: in.Message})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   in.MaxTokens,
		Temperature: in.Temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		var reqErr *openai.RequestError
		switch {
		case errors.As(err, &apiErr):
			logger.Error().Int("status", apiErr.HTTPStatusCode).Str("model", c.model).Msg("llm api error")
			return "", fmt.Errorf("%w: %w", domain.ErrUpstreamStatus, err)
		case errors.As(err, &reqErr):
			logger.Error().Int("status", reqErr.HTTPStatusCode).Str("model", c.model).Msg("llm request error")
			return "", fmt.Errorf("%w: %w", domain.ErrUpstreamStatus, err)
		}
		logger.Error().Err(err).Msg("llm call failed")
		return "", fmt.Errorf("llm call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		logger.Warn().Str("model", c.model).Msg("llm returned no choices")
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
