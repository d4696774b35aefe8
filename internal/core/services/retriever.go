package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
	"github.com/custodia-labs/campus-rag/internal/logger"
)

// ApologyMessage is the answer text when retrieval or completion fails.
const ApologyMessage = "Sorry, I couldn't answer that right now. Please try again in a moment."

// groupSeparator divides the per-type sections of a context block.
var groupSeparator = "\n\n" + strings.Repeat("=", 50) + "\n\n"

// Querier returns the chunks most similar to a question.
type Querier interface {
	Query(ctx context.Context, text string, k int) ([]domain.RetrievalHit, error)
}

// Retriever answers a question from the index and the completion service.
type Retriever struct {
	index    Querier
	llm      driven.LLMService
	prompts  driven.PromptStore
	settings domain.RetrievalSettings
	log      logger.Logger
}

// NewRetriever creates a retriever. Zero settings fall back to the defaults;
// a nil prompt store uses the built-in template.
func NewRetriever(index Querier, llm driven.LLMService, settings domain.RetrievalSettings) *Retriever {
	if settings.TopK <= 0 {
		settings.TopK = domain.DefaultTopK
	}
	if settings.MaxTokens <= 0 {
		settings.MaxTokens = domain.DefaultMaxTokens
	}
	return &Retriever{
		index:    index,
		llm:      llm,
		settings: settings,
		log:      logger.For("retriever"),
	}
}

// SetPromptStore implements driven.PromptStoreAware.
func (r *Retriever) SetPromptStore(store driven.PromptStore) {
	r.prompts = store
}

// Answer never fails: any error, including a panic in a collaborator,
// yields a degraded answer carrying ApologyMessage and no hits.
func (r *Retriever) Answer(ctx context.Context, question string) (answer domain.Answer) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("answer panicked: %v", p)
			answer = degraded()
		}
	}()

	a, err := r.answer(ctx, question)
	if err != nil {
		r.log.Error("answer %q: %v", truncate(question, 60), err)
		return degraded()
	}
	return a
}

func (r *Retriever) answer(ctx context.Context, question string) (domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return domain.Answer{}, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if r.llm == nil {
		return domain.Answer{}, domain.ErrLLMUnavailable
	}

	hits, err := r.index.Query(ctx, question, r.settings.TopK)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("retrieve: %w", err)
	}

	block, types := RenderContext(hits)
	prompt := fmt.Sprintf(r.template(), block, question)

	text, err := r.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   r.settings.MaxTokens,
		Temperature: r.settings.Temperature,
	})
	if err != nil {
		return domain.Answer{}, fmt.Errorf("%w: %w", domain.ErrCompletion, err)
	}
	if strings.TrimSpace(text) == "" {
		return domain.Answer{}, fmt.Errorf("%w: empty completion", domain.ErrCompletion)
	}

	sources := make([]domain.SourceRef, len(hits))
	for i, h := range hits {
		sources[i] = domain.SourceRefFromHit(h)
	}
	return domain.Answer{
		Text:        text,
		Hits:        hits,
		SourceTypes: types,
		Sources:     sources,
		Context:     block,
	}, nil
}

func (r *Retriever) template() string {
	if r.prompts == nil {
		return driven.DefaultAnswerPrompt
	}
	tmpl, err := r.prompts.Load(driven.PromptAnswer)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.log.Warn("load prompt: %v", err)
		}
		return driven.DefaultAnswerPrompt
	}
	return tmpl
}

// RenderContext groups hits by source type in AllSourceTypes order, keeping
// rank order within a group, and returns the block with the types used.
func RenderContext(hits []domain.RetrievalHit) (string, []domain.SourceType) {
	groups := make(map[domain.SourceType][]string)
	for _, h := range hits {
		groups[h.Entry.SourceType] = append(groups[h.Entry.SourceType],
			fmt.Sprintf("[%s] %s", h.Entry.Source, strings.TrimSpace(h.Entry.Content)))
	}

	var sections []string
	var types []domain.SourceType
	for _, t := range domain.AllSourceTypes() {
		lines, ok := groups[t]
		if !ok {
			continue
		}
		sections = append(sections, t.Label()+":\n"+strings.Join(lines, "\n\n"))
		types = append(types, t)
	}
	return strings.Join(sections, groupSeparator), types
}

func degraded() domain.Answer {
	return domain.Answer{Text: ApologyMessage, Degraded: true}
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
