// Package hashing provides an offline embedding service that maps tokens
// into a fixed number of buckets with a signed hash.
//
// It needs no model download or network access, produces identical vectors
// on every machine, and is good enough for keyword-heavy university notices.
package hashing

import (
	"context"
	"hash/fnv"
	"maps"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "hashing-384"
	DefaultDimensions = 384
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*`)

// Config holds configuration for the hashing embedding service.
type Config struct {
	// Model is reported by ModelName and recorded in the index manifest.
	Model string

	// Dimensions is the number of hash buckets (default: 384).
	Dimensions int
}

// EmbeddingService embeds text by signed feature hashing of word tokens.
type EmbeddingService struct {
	model      string
	dimensions int
	stopwords  map[string]struct{}
}

// NewEmbeddingService creates a hashing embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	return &EmbeddingService{
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		stopwords:  defaultStopwords(),
	}
}

// Embed returns the L2-normalised hashed term vector for text.
// Text with no tokens embeds to the zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, tok := range s.tokenize(text) {
		counts[tok]++
	}

	vec := make([]float64, s.dimensions)
	// Sorted so equal texts sum in the same order and give identical bits.
	for _, tok := range slices.Sorted(maps.Keys(counts)) {
		bucket, sign := s.bucket(tok)
		// Sublinear term frequency keeps one repeated word from dominating.
		vec[bucket] += sign * (1 + math.Log(float64(counts[tok])))
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	out := make([]float32, s.dimensions)
	if norm == 0 {
		return out, nil
	}
	norm = math.Sqrt(norm)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the configured model name.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// bucket returns the bucket index and sign for a token.
func (s *EmbeddingService) bucket(tok string) (int, float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(tok))
	sum := h.Sum64()
	sign := 1.0
	if sum>>63 == 1 {
		sign = -1.0
	}
	return int(sum % uint64(s.dimensions)), sign
}

func (s *EmbeddingService) tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, stop := s.stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of",
		"in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been",
		"being", "it", "this", "that", "these", "those", "from", "so", "such", "into",
		"about", "can", "will", "just", "should", "do", "does", "what", "which", "who",
		"how", "i", "my", "me", "you", "your", "we", "our",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
