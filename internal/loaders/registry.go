package loaders

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
)

var _ driven.LoaderRegistry = (*Registry)(nil)

// Registry maps source types to their loaders.
type Registry struct {
	mu      sync.RWMutex
	loaders map[domain.SourceType]driven.Loader
}

// NewRegistry creates an empty loader registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[domain.SourceType]driven.Loader)}
}

// Register adds a loader, replacing any loader for the same type.
func (r *Registry) Register(loader driven.Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[loader.Type()] = loader
}

// Get returns the loader for a source type.
func (r *Registry) Get(t domain.SourceType) (driven.Loader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loaders[t]
	return l, ok
}

// Load dispatches raw to the loader registered for its type.
func (r *Registry) Load(ctx context.Context, raw *domain.RawDocument) ([]domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	loader, ok := r.Get(raw.Type)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", raw.Path, domain.ErrUnsupportedType, raw.Type)
	}
	docs, err := loader.Load(ctx, raw)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		stamp(&docs[i])
	}
	return docs, nil
}

// SupportedTypes returns registered types in canonical order.
func (r *Registry) SupportedTypes() []domain.SourceType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var types []domain.SourceType
	for _, t := range domain.AllSourceTypes() {
		if _, ok := r.loaders[t]; ok {
			types = append(types, t)
		}
	}
	return types
}

// stamp records the provenance keys every chunk inherits.
func stamp(doc *domain.Document) {
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata[domain.MetaSource] = doc.Source
	doc.Metadata[domain.MetaSourceType] = string(doc.Type)
	doc.Metadata[domain.MetaFilePath] = doc.Path
	if _, ok := doc.Metadata[domain.MetaCategory]; !ok {
		doc.Metadata[domain.MetaCategory] = domain.DefaultCategory
	}
}
