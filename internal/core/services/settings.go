package services

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDatasetPath       = "dataset.path"
	keyIndexPath         = "index.path"
	keyChunkSize         = "chunking.chunk_size"
	keyChunkOverlap      = "chunking.overlap"
	keyTopK              = "retrieval.top_k"
	keyMaxTokens         = "retrieval.max_tokens"
	keyTemperature       = "retrieval.temperature"
	keySessionBackend    = "sessions.backend"
	keySessionMaxTurns   = "sessions.max_turns"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedAPIKeyEnv    = "embedding.api_key_env"
	keyEmbedDimensions   = "embedding.dimensions"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyLLMAPIKeyEnv      = "llm.api_key_env"
	keyLLMRate           = "llm.requests_per_second"
	keyLLMBurst          = "llm.burst"
	keySchedulerEnabled  = "scheduler.enabled"
	keyRebuildInterval   = "scheduler.rebuild_interval"
	keyWatcherEnabled    = "watcher.enabled"
	keyWatcherDebounce   = "watcher.debounce"
	defaultOllamaBaseURL = "http://localhost:11434"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
	kindProvider
	kindBackend
)

var settingKinds = map[string]settingKind{
	keyDatasetPath:      kindString,
	keyIndexPath:        kindString,
	keyChunkSize:        kindInt,
	keyChunkOverlap:     kindInt,
	keyTopK:             kindInt,
	keyMaxTokens:        kindInt,
	keyTemperature:      kindFloat,
	keySessionBackend:   kindBackend,
	keySessionMaxTurns:  kindInt,
	keyEmbedProvider:    kindProvider,
	keyEmbedModel:       kindString,
	keyEmbedBaseURL:     kindString,
	keyEmbedAPIKey:      kindString,
	keyEmbedAPIKeyEnv:   kindString,
	keyEmbedDimensions:  kindInt,
	keyLLMProvider:      kindProvider,
	keyLLMModel:         kindString,
	keyLLMBaseURL:       kindString,
	keyLLMAPIKey:        kindString,
	keyLLMAPIKeyEnv:     kindString,
	keyLLMRate:          kindFloat,
	keyLLMBurst:         kindInt,
	keySchedulerEnabled: kindBool,
	keyRebuildInterval:  kindDuration,
	keyWatcherEnabled:   kindBool,
	keyWatcherDebounce:  kindDuration,
}

// SettingKeys returns every configuration key the application reads, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings. API keys not stored in the
// config file are read from the environment variable the config names.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Dataset: domain.DatasetSettings{
			Path: s.getString(keyDatasetPath, defaults.Dataset.Path),
		},
		Index: domain.IndexSettings{
			Path: s.getString(keyIndexPath, defaults.Index.Path),
		},
		Chunking: domain.ChunkingSettings{
			ChunkSize: s.getInt(keyChunkSize, defaults.Chunking.ChunkSize),
			Overlap:   s.getIntOrZero(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:        s.getInt(keyTopK, defaults.Retrieval.TopK),
			MaxTokens:   s.getInt(keyMaxTokens, defaults.Retrieval.MaxTokens),
			Temperature: s.getFloat(keyTemperature, defaults.Retrieval.Temperature),
		},
		Sessions: domain.SessionSettings{
			Backend:  s.getBackend(defaults.Sessions.Backend),
			MaxTurns: s.getInt(keySessionMaxTurns, defaults.Sessions.MaxTurns),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:      s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:    s.getString(keyEmbedBaseURL, defaults.Embedding.BaseURL),
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			APIKeyEnv:  s.getString(keyEmbedAPIKeyEnv, defaults.Embedding.APIKeyEnv),
			Dimensions: s.getInt(keyEmbedDimensions, defaults.Embedding.Dimensions),
		},
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:             s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:           s.getString(keyLLMBaseURL, defaults.LLM.BaseURL),
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			APIKeyEnv:         s.getString(keyLLMAPIKeyEnv, defaults.LLM.APIKeyEnv),
			RequestsPerSecond: s.getFloat(keyLLMRate, defaults.LLM.RequestsPerSecond),
			Burst:             s.getInt(keyLLMBurst, defaults.LLM.Burst),
		},
		Scheduler: s.GetSchedulerConfig(),
		Watcher: domain.WatcherSettings{
			Enabled:  s.getBool(keyWatcherEnabled, defaults.Watcher.Enabled),
			Debounce: s.getDuration(keyWatcherDebounce, defaults.Watcher.Debounce),
		},
	}

	if settings.Embedding.APIKey == "" && settings.Embedding.APIKeyEnv != "" {
		settings.Embedding.APIKey = s.getenv(settings.Embedding.APIKeyEnv)
	}
	if settings.LLM.APIKey == "" && settings.LLM.APIKeyEnv != "" {
		settings.LLM.APIKey = s.getenv(settings.LLM.APIKeyEnv)
	}

	return settings, nil
}

// Save persists application settings. API keys that came from the
// environment are not written back to the config file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyDatasetPath, settings.Dataset.Path},
		{keyIndexPath, settings.Index.Path},
		{keyChunkSize, settings.Chunking.ChunkSize},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyTopK, settings.Retrieval.TopK},
		{keyMaxTokens, settings.Retrieval.MaxTokens},
		{keyTemperature, settings.Retrieval.Temperature},
		{keySessionBackend, string(settings.Sessions.Backend)},
		{keySessionMaxTurns, settings.Sessions.MaxTurns},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedAPIKeyEnv, settings.Embedding.APIKeyEnv},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMAPIKeyEnv, settings.LLM.APIKeyEnv},
		{keyLLMRate, settings.LLM.RequestsPerSecond},
		{keyLLMBurst, settings.LLM.Burst},
		{keySchedulerEnabled, settings.Scheduler.Enabled},
		{keyRebuildInterval, settings.Scheduler.GetTaskConfig(domain.TaskIDIndexRebuild).Interval.String()},
		{keyWatcherEnabled, settings.Watcher.Enabled},
		{keyWatcherDebounce, settings.Watcher.Debounce.String()},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if s.storesKey(settings.Embedding.APIKey, settings.Embedding.APIKeyEnv) {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyEmbedAPIKey, err)
		}
	}
	if s.storesKey(settings.LLM.APIKey, settings.LLM.APIKeyEnv) {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyLLMAPIKey, err)
		}
	}

	return nil
}

func (s *SettingsService) storesKey(key, env string) bool {
	if key == "" {
		return false
	}
	return env == "" || s.getenv(env) != key
}

// Set parses value according to the type of key and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownSetting, key)
	}
	value = strings.TrimSpace(value)

	var parsed any
	switch kind {
	case kindString:
		parsed = value
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		if n < 0 {
			return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		if f < 0 {
			return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %s must be a positive duration such as 5s or 24h", domain.ErrInvalidInput, key)
		}
		parsed = d.String()
	case kindProvider:
		p := domain.AIProvider(value)
		if !p.IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, value)
		}
		if key == keyLLMProvider && !slices.Contains(domain.AllLLMProviders(), p) {
			return fmt.Errorf("%w: provider %s does not support completions", domain.ErrInvalidInput, p)
		}
		parsed = value
	case kindBackend:
		if !domain.SessionBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown session backend %q", domain.ErrInvalidInput, value)
		}
		parsed = value
	}

	if err := s.checkChunking(key, parsed); err != nil {
		return err
	}
	return s.configStore.Set(key, parsed)
}

// checkChunking rejects a chunk size or overlap that would break the other.
func (s *SettingsService) checkChunking(key string, value any) error {
	if key != keyChunkSize && key != keyChunkOverlap {
		return nil
	}
	current, err := s.Get()
	if err != nil {
		return err
	}
	c := current.Chunking
	if key == keyChunkSize {
		c.ChunkSize = value.(int)
	} else {
		c.Overlap = value.(int)
	}
	return validateChunking(c)
}

func validateChunking(c domain.ChunkingSettings) error {
	switch {
	case c.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk size %d must be positive", domain.ErrInvalidChunkConfig, c.ChunkSize)
	case c.Overlap < 0:
		return fmt.Errorf("%w: overlap %d must not be negative", domain.ErrInvalidChunkConfig, c.Overlap)
	case c.Overlap >= c.ChunkSize:
		return fmt.Errorf("%w: overlap %d must be smaller than chunk size %d",
			domain.ErrInvalidChunkConfig, c.Overlap, c.ChunkSize)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	// An empty key is acceptable when the environment supplies one.
	if provider.RequiresAPIKey() && apiKey == "" && s.envKey(settings.Embedding.APIKeyEnv) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	switch provider {
	case domain.AIProviderOllama:
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaBaseURL
		}
	case domain.AIProviderHashing:
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	// Known models carry their own dimensions.
	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Embedding.Dimensions = d
	}

	return s.Save(settings)
}

// SetLLMProvider configures the completion provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	if provider.RequiresAPIKey() && apiKey == "" && s.envKey(settings.LLM.APIKeyEnv) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	switch {
	case provider == domain.AIProviderOllama &&
		(settings.LLM.BaseURL == "" || settings.LLM.BaseURL == domain.DefaultMistralURL):
		settings.LLM.BaseURL = defaultOllamaBaseURL
	case provider == domain.AIProviderOpenAI && settings.LLM.BaseURL == defaultOllamaBaseURL:
		settings.LLM.BaseURL = domain.DefaultMistralURL
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

func (s *SettingsService) envKey(name string) string {
	if name == "" {
		return ""
	}
	return s.getenv(name)
}

// Validate checks that the current settings can build and query an index.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if strings.TrimSpace(settings.Dataset.Path) == "" {
		errs = append(errs, fmt.Errorf("%s must be set", keyDatasetPath))
	}
	if err := validateChunking(settings.Chunking); err != nil {
		errs = append(errs, err)
	}
	if settings.Retrieval.TopK <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", keyTopK))
	}
	if settings.Retrieval.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", keyMaxTokens))
	}
	if t := settings.Retrieval.Temperature; t < 0 || t > 2 {
		errs = append(errs, fmt.Errorf("%s %.2f must be between 0 and 2", keyTemperature, t))
	}
	if !settings.Embedding.IsConfigured() {
		errs = append(errs, fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider))
	}
	if !settings.LLM.IsConfigured() {
		hint := ""
		if settings.LLM.APIKeyEnv != "" {
			hint = fmt.Sprintf(" (set %s)", settings.LLM.APIKeyEnv)
		}
		errs = append(errs, fmt.Errorf("LLM provider %q is not configured%s", settings.LLM.Provider, hint))
	}
	if settings.LLM.Burst <= 0 && settings.LLM.RequestsPerSecond > 0 {
		errs = append(errs, fmt.Errorf("%s must be positive when rate limiting", keyLLMBurst))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetSchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()
	defaults.Enabled = s.getBool(keySchedulerEnabled, defaults.Enabled)

	task := defaults.TaskConfigs[domain.TaskIDIndexRebuild]
	task.Interval = s.getDuration(keyRebuildInterval, task.Interval)
	defaults.TaskConfigs[domain.TaskIDIndexRebuild] = task

	return defaults
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getIntOrZero keeps an explicit zero, which is meaningful for overlap.
func (s *SettingsService) getIntOrZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.SessionBackend) domain.SessionBackend {
	backend := domain.SessionBackend(s.configStore.GetString(keySessionBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
