package services

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService maps each word to one of dims buckets so texts that
// share words are similar.
type mockEmbeddingService struct {
	mu       sync.Mutex
	dims     int
	model    string
	err      error
	failAt   int
	calls    int
	embedded int
}

func newMockEmbedder() *mockEmbeddingService {
	return &mockEmbeddingService{dims: 16, model: "mock-embed"}
}

func (m *mockEmbeddingService) vector(text string) []float32 {
	v := make([]float32, m.dims)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(w, ".,?!")))
		v[h.Sum32()%uint32(m.dims)]++
	}
	return v
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil || (m.failAt > 0 && m.calls >= m.failAt) {
		return nil, errors.Join(m.err, errors.New("embedding backend down"))
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	m.embedded += len(texts)
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return m.dims }
func (m *mockEmbeddingService) ModelName() string { return m.model }
func (m *mockEmbeddingService) Ping(context.Context) error { return m.err }
func (m *mockEmbeddingService) Close() error { return nil }

// mockLLMService records prompts and returns a canned reply.
type mockLLMService struct {
	mu      sync.Mutex
	reply   string
	err     error
	panics  bool
	block   bool
	prompts []string
	opts    []driven.GenerateOptions
}

func (m *mockLLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()
	if m.panics {
		panic("boom")
	}
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.reply, m.err
}

func (m *mockLLMService) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }
func (m *mockLLMService) Ping(context.Context) error { return m.err }
func (m *mockLLMService) Close() error { return nil }

// mockIngester returns fixed chunks, optionally blocking until released.
type mockIngester struct {
	mu      sync.Mutex
	chunks  []domain.Chunk
	err     error
	calls   int
	started chan struct{}
	release chan struct{}
}

func (m *mockIngester) Ingest(ctx context.Context) ([]domain.Chunk, *domain.IngestReport, error) {
	m.mu.Lock()
	m.calls++
	started, release := m.started, m.release
	chunks, err := m.chunks, m.err
	m.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
	report := domain.NewIngestReport()
	if err != nil {
		return nil, report, err
	}
	report.Documents = len(chunks)
	report.Chunks = len(chunks)
	return chunks, report, nil
}

func (m *mockIngester) setChunks(chunks []domain.Chunk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = chunks
}

// mockIndexStore keeps one snapshot in memory.
type mockIndexStore struct {
	mu      sync.Mutex
	snap    *domain.IndexSnapshot
	saveErr error
	loadErr error
	saves   int
}

func (m *mockIndexStore) Save(_ context.Context, snap *domain.IndexSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	snap.Manifest.Checksum = "mock"
	cp := *snap
	m.snap = &cp
	m.saves++
	return nil
}

func (m *mockIndexStore) Load(_ context.Context) (*domain.IndexSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.snap == nil {
		return nil, errors.New("no index persisted")
	}
	cp := *m.snap
	return &cp, nil
}

func (m *mockIndexStore) Exists() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap != nil
}

func (m *mockIndexStore) Remove() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = nil
	return nil
}

func (m *mockIndexStore) Path() string { return "/mock/index" }

// mockSessionStore is a map-backed session store.
type mockSessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*domain.Session
	appendErr error
	appends   int
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]*domain.Session)}
}

func (m *mockSessionStore) GetOrCreate(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "" {
		id = "generated-" + string(rune('a'+len(m.sessions)))
	}
	s, ok := m.sessions[id]
	if !ok {
		now := time.Now()
		s = &domain.Session{ID: id, CreatedAt: now, UpdatedAt: now}
		m.sessions[id] = s
	}
	cp := *s
	cp.Turns = append([]domain.Turn(nil), s.Turns...)
	return &cp, nil
}

func (m *mockSessionStore) Append(_ context.Context, id string, turns ...domain.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	s, ok := m.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.Turns = append(s.Turns, turns...)
	m.appends++
	return nil
}

func (m *mockSessionStore) History(_ context.Context, id string) ([]domain.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return append([]domain.Turn(nil), s.Turns...), nil
}

func (m *mockSessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionStore) List(_ context.Context) ([]domain.SessionSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.SessionSummary, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, domain.SessionSummary{ID: s.ID, TurnCount: len(s.Turns), Exchanges: s.Exchanges()})
	}
	return out, nil
}

// mockPromptStore serves prompts from a map.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}

// Ensure mocks implement interfaces
var (
	_ driven.EmbeddingService = (*mockEmbeddingService)(nil)
	_ driven.LLMService       = (*mockLLMService)(nil)
	_ driven.IndexStore       = (*mockIndexStore)(nil)
	_ driven.SessionStore     = (*mockSessionStore)(nil)
	_ driven.PromptStore      = (*mockPromptStore)(nil)
	_ ChunkIngester           = (*mockIngester)(nil)
)

// testChunk builds a chunk as the pipeline would emit it.
func testChunk(id string, typ domain.SourceType, source, content string) domain.Chunk {
	return domain.Chunk{
		ID:         id,
		DocumentID: "doc-" + id,
		Content:    content,
		Metadata: map[string]any{
			domain.MetaSource:     source,
			domain.MetaSourceType: string(typ),
			domain.MetaFilePath:   "/data/" + source,
		},
	}
}

func campusChunks() []domain.Chunk {
	return []domain.Chunk{
		testChunk("c1", domain.SourceTypePDF, "handbook.pdf", "library opens at nine"),
		testChunk("c2", domain.SourceTypeTXT, "fees.txt", "tuition fees are due in august"),
		testChunk("c3", domain.SourceTypeJSON, "faq.json[0]", "hostel curfew is eleven pm"),
		testChunk("c4", domain.SourceTypeDOCX, "rules.docx", "library late fines apply"),
		testChunk("c5", domain.SourceTypeTXT, "bus.txt", "shuttle runs every fifteen minutes"),
	}
}
