package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/campus-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/campus-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/campus-rag/internal/adapters/driven/storage/indexfs"
	"github.com/custodia-labs/campus-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/campus-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/campus-rag/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/campus-rag/internal/adapters/driving/cli"
	"github.com/custodia-labs/campus-rag/internal/connectors/filesystem"
	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
	"github.com/custodia-labs/campus-rag/internal/core/services"
	"github.com/custodia-labs/campus-rag/internal/loaders"
	"github.com/custodia-labs/campus-rag/internal/logger"
	"github.com/custodia-labs/campus-rag/internal/postprocessors"
)

// bootstrap wires adapters and services for one command run.
func bootstrap(_ context.Context, configDir string) (*cli.Services, func(), error) {
	if configDir == "" {
		dir, err := file.DefaultConfigDir()
		if err != nil {
			return nil, nil, fmt.Errorf("config directory: %w", err)
		}
		configDir = dir
	}
	logger.Section("Startup")
	logger.Debug("config directory %s", configDir)

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("reading settings: %w", err)
	}

	aiServices, err := ai.Init(settings)
	if err != nil {
		// settings commands must still work to fix the provider
		logger.Warn("%v", err)
		return &cli.Services{Settings: settingsService}, func() {}, nil
	}
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}

	pipeline, err := postprocessors.DefaultPipeline(settings.Chunking)
	if err != nil {
		aiServices.Close()
		return nil, nil, fmt.Errorf("chunking settings: %w", err)
	}

	store, err := sqlite.NewStore(filepath.Join(configDir, "data"))
	if err != nil {
		aiServices.Close()
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing database: %v", err)
		}
		aiServices.Close()
	}

	source := filesystem.New(settings.Dataset.Path)
	ingestor := services.NewIngestor(source, loaders.NewDefaultRegistry(), pipeline)

	indexDir := settings.Index.Path
	if indexDir == "" {
		indexDir = filepath.Join(configDir, "index")
	}
	indexManager := services.NewIndexManager(
		aiServices.EmbeddingService,
		indexfs.New(indexDir),
		flat.Factory,
		ingestor,
		services.WithChunking(settings.Chunking),
	)

	retriever := services.NewRetriever(indexManager, aiServices.LLMService, settings.Retrieval)
	if prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts")); err == nil {
		retriever.SetPromptStore(prompts)
	} else {
		logger.Warn("prompt store: %v", err)
	}

	var sessions driven.SessionStore
	switch settings.Sessions.Backend {
	case domain.SessionBackendMemory:
		sessions = memory.NewSessionStore(memory.WithMaxTurns(settings.Sessions.MaxTurns))
	default:
		sessions = store.SessionStore(settings.Sessions.MaxTurns)
	}
	logger.Debug("sessions backend %s, dataset %s, index %s", settings.Sessions.Backend, settings.Dataset.Path, indexDir)

	svc := &cli.Services{
		Chat:     services.NewChatService(retriever, sessions),
		Index:    indexManager,
		Combiner: services.NewCombiner(ingestor),
		Settings: settingsService,
	}
	if settings.Scheduler.Enabled {
		svc.Scheduler = services.NewScheduler(settings.Scheduler, store.SchedulerStore(), indexManager)
	}
	if settings.Watcher.Enabled {
		svc.Watcher = services.NewWatcher(source, indexManager, settings.Watcher.Debounce)
	}

	return svc, cleanup, nil
}
