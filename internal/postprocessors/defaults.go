package postprocessors

import (
	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
	"github.com/custodia-labs/campus-rag/internal/postprocessors/chunker"
	"github.com/custodia-labs/campus-rag/internal/postprocessors/normaliser"
)

// RegisterDefaults registers the built-in processors.
func RegisterDefaults(r *Registry) {
	r.Register("normaliser", buildNormaliser)
	r.Register("chunker", buildChunker)
}

// DefaultPipeline builds the normalise-then-chunk pipeline for the given
// chunking settings. Invalid settings fail with domain.ErrInvalidChunkConfig.
func DefaultPipeline(c domain.ChunkingSettings) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return BuildPipeline(r, domain.PipelineConfigFor(c))
}

func buildNormaliser(_ map[string]any) (driven.PostProcessor, error) {
	return normaliser.New(), nil
}

// buildChunker creates a chunker from config keys chunk_size and overlap.
// Missing keys keep the defaults; present keys are validated.
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option
	if size, ok := getIntFromConfig(cfg, "chunk_size"); ok {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok {
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	return chunker.NewValidated(opts...)
}

// getIntFromConfig extracts an int from a config map. TOML yields int64 and
// JSON yields float64.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
