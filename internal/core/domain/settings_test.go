package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, 1000, s.Chunking.ChunkSize)
	assert.Equal(t, 200, s.Chunking.Overlap)
	assert.Equal(t, 3, s.Retrieval.TopK)
	assert.Equal(t, 700, s.Retrieval.MaxTokens)
	assert.Equal(t, 1.0, s.Retrieval.Temperature)
	assert.Equal(t, SessionBackendSQLite, s.Sessions.Backend)
	assert.Equal(t, 0, s.Sessions.MaxTurns)
	assert.Equal(t, AIProviderHashing, s.Embedding.Provider)
	assert.Equal(t, AIProviderOpenAI, s.LLM.Provider)
	assert.Equal(t, "open-mistral-7b", s.LLM.Model)
	assert.Equal(t, "MISTRAL_API_KEY", s.LLM.APIKeyEnv)
	assert.True(t, s.Scheduler.Enabled)
}

func TestAIProvider(t *testing.T) {
	tests := []struct {
		provider AIProvider
		valid    bool
		needsKey bool
		local    bool
	}{
		{AIProviderOpenAI, true, true, false},
		{AIProviderOllama, true, false, true},
		{AIProviderHashing, true, false, true},
		{AIProvider("anthropic"), false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.provider.IsValid())
			assert.Equal(t, tt.needsKey, tt.provider.RequiresAPIKey())
			assert.Equal(t, tt.local, tt.provider.IsLocal())
		})
	}
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.False(t, LLMSettings{Provider: AIProviderOpenAI}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderOpenAI, APIKey: "k"}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderHashing}.IsConfigured())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	assert.True(t, EmbeddingSettings{Provider: AIProviderHashing}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderOpenAI}.IsConfigured())
	assert.False(t, EmbeddingSettings{}.IsConfigured())
}

func TestPipelineConfigFor(t *testing.T) {
	cfg := PipelineConfigFor(ChunkingSettings{ChunkSize: 500, Overlap: 50})

	assert.Equal(t, []string{"normaliser", "chunker"}, cfg.Processors)
	assert.Equal(t, 500, cfg.GetProcessorConfig("chunker")["chunk_size"])
	assert.Nil(t, cfg.GetProcessorConfig("normaliser"))
}
