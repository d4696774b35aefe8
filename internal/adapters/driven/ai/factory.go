// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/campus-rag/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/campus-rag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/campus-rag/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/campus-rag/internal/adapters/driven/llm"
	ollamallm "github.com/custodia-labs/campus-rag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/campus-rag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the AI services built from settings.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService // nil when no completion provider is configured.
	Warnings         []string          // Non-fatal issues, such as a missing API key.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		_ = r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		_ = r.LLMService.Close()
	}
}

// Init builds the embedding and completion services. An embedding service is
// required because every query is embedded. A missing completion service is
// only a warning: answers degrade to the apology message.
func Init(settings *domain.AppSettings) (*InitResult, error) {
	if settings == nil {
		return nil, domain.ErrInvalidInput
	}
	embed, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if embed == nil {
		return nil, fmt.Errorf("%w: provider %q is not configured. Run 'campus settings set embedding.provider hashing' for offline use",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}

	result := &InitResult{EmbeddingService: embed}
	svc, err := CreateLLMService(&settings.LLM)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("completion service disabled: %v", err))
	case svc == nil:
		result.Warnings = append(result.Warnings, llmHint(&settings.LLM))
	default:
		result.LLMService = svc
	}
	return result, nil
}

func llmHint(settings *domain.LLMSettings) string {
	if settings.Provider.RequiresAPIKey() && settings.APIKey == "" {
		env := settings.APIKeyEnv
		if env == "" {
			env = domain.DefaultLLMKeyEnv
		}
		return fmt.Sprintf("completion service disabled: set %s or run 'campus settings set llm.api_key <key>'", env)
	}
	return fmt.Sprintf("completion service disabled: provider %q is not configured", settings.Provider)
}

// ValidateEmbeddingConfig creates an embedding service and pings it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig creates an LLM service and pings it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the embedding service named by settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}

	switch settings.Provider {
	case domain.AIProviderHashing:
		return hashing.NewEmbeddingService(hashing.Config{
			Model:      settings.Model,
			Dimensions: dimensions,
		}), nil

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		if dimensions == 0 {
			return nil, fmt.Errorf("unknown dimensions for model %q: set embedding.dimensions", settings.Model)
		}
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the completion service named by settings,
// wrapped in a rate limiter when one is configured.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var svc driven.LLMService
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOpenAI:
		s, err := openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		svc = s

	default:
		return nil, errors.New("unsupported LLM provider: " + settings.Provider.String())
	}
	return llm.NewRateLimited(svc, settings.RequestsPerSecond, settings.Burst), nil
}
