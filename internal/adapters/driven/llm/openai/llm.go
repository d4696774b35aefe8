// Package openai provides a completion adapter for OpenAI-compatible chat
// completion APIs. The default endpoint is Mistral's.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/custodia-labs/campus-rag/internal/adapters/driven/llm"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.mistral.ai/v1"
	DefaultModel   = "open-mistral-7b"
	DefaultTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the completion service.
type LLMConfig struct {
	// APIKey is the bearer token (required).
	APIKey string

	// BaseURL is the API base URL (default: Mistral v1).
	BaseURL string

	// Model is the chat model to use (default: open-mistral-7b).
	Model string

	// Timeout bounds each request (default: 120s).
	Timeout time.Duration
}

// LLMService sends single-message chat completions.
type LLMService struct {
	client openai.Client
	model  string
}

// NewLLMService creates a new completion service. The client makes exactly
// one attempt per call.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		client: openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(cfg.BaseURL),
			option.WithRequestTimeout(cfg.Timeout),
			option.WithMaxRetries(0),
		),
		model: cfg.Model,
	}, nil
}

// Generate sends prompt as a single user message and returns the first choice.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no response choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.List(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}

// classify turns a 429 into an llm.RateLimitError so the rate limiter can
// back off. Other errors are wrapped unchanged.
func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		var retryAfter time.Duration
		if apiErr.Response != nil {
			if secs, perr := strconv.Atoi(apiErr.Response.Header.Get("Retry-After")); perr == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return &llm.RateLimitError{RetryAfter: retryAfter, Err: err}
	}
	return fmt.Errorf("openai: chat completion: %w", err)
}
