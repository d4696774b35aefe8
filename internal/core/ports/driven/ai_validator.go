package driven

import "github.com/custodia-labs/campus-rag/internal/core/domain"

// AIConfigValidator checks AI provider configurations by contacting the
// underlying service.
type AIConfigValidator interface {
	// ValidateEmbedding pings the configured embedding provider.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM pings the configured completion provider.
	// Returns nil if no completion provider is configured.
	ValidateLLM(config *domain.LLMSettings) error
}
