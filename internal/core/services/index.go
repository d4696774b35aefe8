package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driving"
	"github.com/custodia-labs/campus-rag/internal/logger"
)

// Ensure IndexManager implements the interface.
var _ driving.IndexService = (*IndexManager)(nil)

// DefaultEmbedBatchSize is the number of chunks sent per embedding call.
const DefaultEmbedBatchSize = 64

// ChunkIngester produces the chunks an index is built from.
type ChunkIngester interface {
	Ingest(ctx context.Context) ([]domain.Chunk, *domain.IngestReport, error)
}

// Index is a built, immutable index: the manifest, the raw vectors for
// persistence, and a searchable vector index.
type Index struct {
	manifest domain.IndexManifest
	vectors  [][]float32
	search   driven.VectorIndex
}

// Len returns the number of indexed chunks.
func (x *Index) Len() int {
	return len(x.manifest.Entries)
}

// Manifest returns the index metadata.
func (x *Index) Manifest() domain.IndexManifest {
	return x.manifest
}

// Snapshot returns the persistable form of the index.
func (x *Index) Snapshot() *domain.IndexSnapshot {
	return &domain.IndexSnapshot{Manifest: x.manifest, Vectors: x.vectors}
}

// Search returns the k entries nearest to an already embedded query.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievalHit, error) {
	found, err := x.search.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	hits := make([]domain.RetrievalHit, 0, len(found))
	for _, h := range found {
		if h.Ordinal < 0 || h.Ordinal >= len(x.manifest.Entries) {
			return nil, fmt.Errorf("vector index returned ordinal %d outside %d entries", h.Ordinal, len(x.manifest.Entries))
		}
		hits = append(hits, domain.RetrievalHit{Entry: x.manifest.Entries[h.Ordinal], Score: h.Similarity})
	}
	return hits, nil
}

// IndexManager owns the index lifecycle. Queries read the published index
// through an atomic pointer; rebuilds are serialised and publish only after
// the new index has been persisted.
type IndexManager struct {
	embedder  driven.EmbeddingService
	store     driven.IndexStore
	ingester  ChunkIngester
	factory   driven.VectorIndexFactory
	chunking  domain.ChunkingSettings
	batchSize int
	now       func() time.Time
	log       logger.Logger

	current atomic.Pointer[Index]
	buildMu sync.Mutex

	mu        sync.Mutex
	state     domain.IndexState
	lastError string
}

// IndexOption configures an IndexManager.
type IndexOption func(*IndexManager)

// WithChunking records the chunking settings in built manifests.
func WithChunking(c domain.ChunkingSettings) IndexOption {
	return func(m *IndexManager) { m.chunking = c }
}

// WithEmbedBatchSize sets how many chunks are embedded per call.
func WithEmbedBatchSize(n int) IndexOption {
	return func(m *IndexManager) {
		if n > 0 {
			m.batchSize = n
		}
	}
}

// WithClock overrides the time source for manifest timestamps.
func WithClock(now func() time.Time) IndexOption {
	return func(m *IndexManager) { m.now = now }
}

// NewIndexManager creates a manager in the Unready state.
func NewIndexManager(
	embedder driven.EmbeddingService,
	store driven.IndexStore,
	factory driven.VectorIndexFactory,
	ingester ChunkIngester,
	opts ...IndexOption,
) *IndexManager {
	m := &IndexManager{
		embedder:  embedder,
		store:     store,
		factory:   factory,
		ingester:  ingester,
		batchSize: DefaultEmbedBatchSize,
		chunking: domain.ChunkingSettings{
			ChunkSize: domain.DefaultChunkSize,
			Overlap:   domain.DefaultChunkOverlap,
		},
		now:   time.Now,
		log:   logger.For("index"),
		state: domain.IndexUnready,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Build embeds every chunk and returns a new index. Nothing is published.
// Any embedding failure discards the partial index.
func (m *IndexManager) Build(ctx context.Context, chunks []domain.Chunk) (*Index, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks to index", domain.ErrIndexBuild)
	}
	dims := m.embedder.Dimensions()
	search, err := m.factory(dims)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexBuild, err)
	}

	entries := make([]domain.IndexEntry, len(chunks))
	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += m.batchSize {
		end := min(start+m.batchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			texts = append(texts, chunks[i].Content)
			entries[i] = domain.EntryFromChunk(&chunks[i])
		}

		batch, err := m.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			_ = search.Close()
			return nil, fmt.Errorf("%w: chunks %d-%d: %w", domain.ErrEmbedding, start, end-1, err)
		}
		if len(batch) != len(texts) {
			_ = search.Close()
			return nil, fmt.Errorf("%w: got %d vectors for %d chunks", domain.ErrEmbedding, len(batch), len(texts))
		}
		for j, v := range batch {
			if err := search.Add(ctx, entries[start+j].ChunkID, v); err != nil {
				_ = search.Close()
				return nil, fmt.Errorf("%w: chunk %s: %w", domain.ErrEmbedding, entries[start+j].ChunkID, err)
			}
			vectors = append(vectors, v)
		}
		m.log.Debug("embedded %d/%d chunks", end, len(chunks))
	}

	return &Index{
		manifest: domain.IndexManifest{
			Version:        domain.IndexFormatVersion,
			EmbeddingModel: m.embedder.ModelName(),
			Dimensions:     dims,
			ChunkSize:      m.chunking.ChunkSize,
			ChunkOverlap:   m.chunking.Overlap,
			BuiltAt:        m.now().UTC(),
			Entries:        entries,
		},
		vectors: vectors,
		search:  search,
	}, nil
}

// Persist writes the index through the store.
func (m *IndexManager) Persist(ctx context.Context, idx *Index) error {
	if idx == nil {
		return domain.ErrInvalidInput
	}
	snap := idx.Snapshot()
	if err := m.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}
	idx.manifest.Checksum = snap.Manifest.Checksum
	return nil
}

// Load reads the persisted index and checks it was built by the current
// embedding model.
func (m *IndexManager) Load(ctx context.Context) (*Index, error) {
	snap, err := m.store.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrIndexLoad) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexLoad, err)
	}
	return m.fromSnapshot(ctx, snap)
}

func (m *IndexManager) fromSnapshot(ctx context.Context, snap *domain.IndexSnapshot) (*Index, error) {
	manifest := snap.Manifest
	if dims := m.embedder.Dimensions(); manifest.Dimensions != dims {
		return nil, fmt.Errorf("%w: index has %d dimensions, embedder produces %d", domain.ErrIndexLoad, manifest.Dimensions, dims)
	}
	if model := m.embedder.ModelName(); manifest.EmbeddingModel != model {
		return nil, fmt.Errorf("%w: index was built with %q, embedder is %q", domain.ErrIndexLoad, manifest.EmbeddingModel, model)
	}
	if len(snap.Vectors) != len(manifest.Entries) {
		return nil, fmt.Errorf("%w: %d vectors for %d entries", domain.ErrIndexLoad, len(snap.Vectors), len(manifest.Entries))
	}

	search, err := m.factory(manifest.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexLoad, err)
	}
	for i, v := range snap.Vectors {
		if err := search.Add(ctx, manifest.Entries[i].ChunkID, v); err != nil {
			_ = search.Close()
			return nil, fmt.Errorf("%w: entry %d: %w", domain.ErrIndexLoad, i, err)
		}
	}
	return &Index{manifest: manifest, vectors: snap.Vectors, search: search}, nil
}

// Query embeds text once and returns the k most similar chunks from the
// published index.
func (m *IndexManager) Query(ctx context.Context, text string, k int) ([]domain.RetrievalHit, error) {
	idx := m.current.Load()
	if idx == nil {
		return nil, domain.ErrIndexNotReady
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	vec, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", domain.ErrEmbedding, err)
	}
	return idx.Search(ctx, vec, k)
}

// Current returns the published index, or nil before the first publish.
func (m *IndexManager) Current() *Index {
	return m.current.Load()
}

// Start loads the persisted index and falls back to a rebuild from the
// dataset when loading fails. A failed rebuild is returned.
func (m *IndexManager) Start(ctx context.Context) error {
	idx, err := m.Load(ctx)
	if err == nil {
		m.publish(idx)
		m.log.Info("loaded %d vectors from %s", idx.Len(), m.store.Path())
		return nil
	}
	m.log.Warn("%v; rebuilding from dataset", err)

	if _, err := m.Rebuild(ctx); err != nil {
		return err
	}
	return nil
}

// Rebuild ingests the dataset and publishes a fresh index. It waits for any
// running rebuild to finish first.
func (m *IndexManager) Rebuild(ctx context.Context) (*domain.IngestReport, error) {
	m.buildMu.Lock()
	defer m.buildMu.Unlock()
	return m.rebuild(ctx)
}

// TryRebuild is Rebuild without waiting.
func (m *IndexManager) TryRebuild(ctx context.Context) (*domain.IngestReport, error) {
	if !m.buildMu.TryLock() {
		return nil, domain.ErrRebuildInProgress
	}
	defer m.buildMu.Unlock()
	return m.rebuild(ctx)
}

func (m *IndexManager) rebuild(ctx context.Context) (*domain.IngestReport, error) {
	m.setState(domain.IndexBuilding, "")
	started := m.now()

	report, err := m.buildAndPersist(ctx)
	if err != nil {
		m.fail(err)
		return report, err
	}
	m.log.Info("rebuilt index: %d chunks from %d documents in %s",
		report.Chunks, report.Documents, m.now().Sub(started).Round(time.Millisecond))
	return report, nil
}

func (m *IndexManager) buildAndPersist(ctx context.Context) (*domain.IngestReport, error) {
	chunks, report, err := m.ingester.Ingest(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: ingest: %w", domain.ErrIndexBuild, err)
	}
	idx, err := m.Build(ctx, chunks)
	if err != nil {
		return report, err
	}
	if err := m.Persist(ctx, idx); err != nil {
		return report, fmt.Errorf("%w: %w", domain.ErrIndexBuild, err)
	}
	m.publish(idx)
	return report, nil
}

// publish swaps in idx. Queries holding the previous index finish on it.
func (m *IndexManager) publish(idx *Index) {
	m.current.Store(idx)
	m.setState(domain.IndexReady, "")
}

// fail records err and returns to Ready if an older index is still serving.
func (m *IndexManager) fail(err error) {
	state := domain.IndexUnready
	if m.current.Load() != nil {
		state = domain.IndexReady
	}
	m.setState(state, err.Error())
	m.log.Error("rebuild failed: %v", err)
}

func (m *IndexManager) setState(state domain.IndexState, lastError string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	if state != domain.IndexBuilding {
		m.lastError = lastError
	}
}

// Status reports the lifecycle state and the published index.
func (m *IndexManager) Status() domain.IndexStatus {
	m.mu.Lock()
	status := domain.IndexStatus{
		State:     m.state,
		Path:      m.store.Path(),
		LastError: m.lastError,
		Model:     m.embedder.ModelName(),
	}
	m.mu.Unlock()

	if idx := m.current.Load(); idx != nil {
		status.Vectors = idx.Len()
		status.Dimensions = idx.manifest.Dimensions
		status.Model = idx.manifest.EmbeddingModel
		status.BuiltAt = idx.manifest.BuiltAt
	}
	return status
}
