package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies a service provider for embeddings or completions.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOpenAI is any OpenAI-compatible HTTP API (OpenAI, Mistral, vLLM).
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderHashing is the offline feature-hashing embedder.
	AIProviderHashing AIProvider = "hashing"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderOllama, AIProviderHashing:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs without a network service.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHashing
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOpenAI:
		return "OpenAI-compatible API (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderHashing:
		return "Feature hashing (offline)"
	default:
		return unknownDescription
	}
}

// SessionBackend selects where conversation history is kept.
type SessionBackend string

// Session backends.
const (
	SessionBackendMemory SessionBackend = "memory"
	SessionBackendSQLite SessionBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b SessionBackend) IsValid() bool {
	return b == SessionBackendMemory || b == SessionBackendSQLite
}

// DatasetSettings locates the document corpus.
type DatasetSettings struct {
	// Path is the root of the dataset directory tree.
	Path string
}

// IndexSettings locates the persisted vector index.
type IndexSettings struct {
	// Path is the directory holding the index artifact and sidecar.
	Path string
}

// ChunkingSettings configures the chunker.
type ChunkingSettings struct {
	ChunkSize int
	Overlap   int
}

// RetrievalSettings configures query-time behaviour.
type RetrievalSettings struct {
	// TopK is the number of hits retrieved per question.
	TopK int

	// MaxTokens bounds the completion length.
	MaxTokens int

	// Temperature is the completion sampling temperature.
	Temperature float64
}

// SessionSettings configures the session store.
type SessionSettings struct {
	Backend SessionBackend

	// MaxTurns trims the oldest turns beyond this count. Zero keeps all turns.
	MaxTurns int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string

	// APIKey is used directly when set; otherwise APIKeyEnv is consulted.
	APIKey    string
	APIKeyEnv string

	// Dimensions overrides the known dimension for the model.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds completion provider configuration.
type LLMSettings struct {
	Provider  AIProvider
	Model     string
	BaseURL   string
	APIKey    string
	APIKeyEnv string

	// RequestsPerSecond limits completion calls. Zero disables the limiter.
	RequestsPerSecond float64
	Burst             int
}

// IsConfigured returns true if the completion provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if l.Provider != AIProviderOpenAI && l.Provider != AIProviderOllama {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// WatcherSettings configures the dataset watcher.
type WatcherSettings struct {
	Enabled  bool
	Debounce time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	Dataset   DatasetSettings
	Index     IndexSettings
	Chunking  ChunkingSettings
	Retrieval RetrievalSettings
	Sessions  SessionSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Scheduler SchedulerConfig
	Watcher   WatcherSettings
}

// Default values shared by settings and services.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultTopK         = 3
	DefaultMaxTokens    = 700
	DefaultTemperature  = 1.0
	DefaultDatasetPath  = "dataset"
	DefaultMistralURL   = "https://api.mistral.ai/v1"
	DefaultLLMModel     = "open-mistral-7b"
	DefaultLLMKeyEnv    = "MISTRAL_API_KEY"
	DefaultDebounce     = 5 * time.Second
)

// DefaultAppSettings returns settings that work offline for ingestion and
// use the Mistral API for completions.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Dataset: DatasetSettings{Path: DefaultDatasetPath},
		Chunking: ChunkingSettings{
			ChunkSize: DefaultChunkSize,
			Overlap:   DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{
			TopK:        DefaultTopK,
			MaxTokens:   DefaultMaxTokens,
			Temperature: DefaultTemperature,
		},
		Sessions: SessionSettings{Backend: SessionBackendSQLite},
		Embedding: EmbeddingSettings{
			Provider: AIProviderHashing,
			Model:    DefaultEmbeddingModels()[AIProviderHashing],
		},
		LLM: LLMSettings{
			Provider:          AIProviderOpenAI,
			Model:             DefaultLLMModel,
			BaseURL:           DefaultMistralURL,
			APIKeyEnv:         DefaultLLMKeyEnv,
			RequestsPerSecond: 1,
			Burst:             2,
		},
		Scheduler: DefaultSchedulerConfig(),
		Watcher:   WatcherSettings{Debounce: DefaultDebounce},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderHashing,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support completions.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenAI,
		AIProviderOllama,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderHashing: "hashing-384",
		AIProviderOllama:  "all-minilm",
		AIProviderOpenAI:  "mistral-embed",
	}
}

// DefaultLLMModels returns default models for each completion provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOpenAI: DefaultLLMModel,
		AIProviderOllama: "mistral",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"hashing-384":            384,
		"all-minilm":             384,
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"mistral-embed":          1024,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Processor configs are generic maps so new processors need no struct changes.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration keyed by name.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfigFor returns the normalise-then-chunk pipeline for the given chunking settings.
func PipelineConfigFor(c ChunkingSettings) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"normaliser", "chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": c.ChunkSize,
				"overlap":    c.Overlap,
			},
		},
	}
}
