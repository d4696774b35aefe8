// Package chunker splits document text into overlapping chunks with a
// recursive separator cascade: paragraph breaks, then line breaks, then
// sentence ends, then spaces, then single characters.
package chunker

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
)

var _ driven.PostProcessor = (*Processor)(nil)

// DefaultChunkSize is the default maximum chunk length in characters.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of characters carried between chunks.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// DefaultSeparators is the split cascade, most preferred first.
// The empty separator splits into single characters.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("campus-rag/chunk"))

// Processor splits document content into chunks.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the maximum chunk length in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets how many characters at the end of a chunk are repeated at
// the start of the next one.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// WithSeparators replaces the separator cascade.
func WithSeparators(seps ...string) Option {
	return func(p *Processor) {
		if len(seps) > 0 {
			p.separators = append([]string(nil), seps...)
		}
	}
}

// New creates a chunker. Non-positive sizes fall back to the defaults and
// an overlap that does not fit inside a chunk is reduced to a quarter of it.
func New(opts ...Option) *Processor {
	p := build(opts)
	if p.chunkSize <= 0 {
		p.chunkSize = DefaultChunkSize
	}
	if p.overlap < 0 {
		p.overlap = DefaultChunkOverlap
	}
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}
	return p
}

// NewValidated creates a chunker and rejects configurations New would repair.
func NewValidated(opts ...Option) (*Processor, error) {
	p := build(opts)
	switch {
	case p.chunkSize <= 0:
		return nil, fmt.Errorf("%w: chunk size %d must be positive", domain.ErrInvalidChunkConfig, p.chunkSize)
	case p.overlap < 0:
		return nil, fmt.Errorf("%w: overlap %d must not be negative", domain.ErrInvalidChunkConfig, p.overlap)
	case p.overlap >= p.chunkSize:
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", domain.ErrInvalidChunkConfig, p.overlap, p.chunkSize)
	}
	return p, nil
}

func build(opts []Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured maximum chunk length.
func (p *Processor) ChunkSize() int { return p.chunkSize }

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int { return p.overlap }

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	segs := p.segments(doc.Content)
	chunks := make([]domain.Chunk, 0, len(segs))
	prev := ""
	for i, seg := range segs {
		meta := make(map[string]any, len(doc.Metadata))
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		chunks = append(chunks, domain.Chunk{
			ID:         ChunkID(doc.ID, i),
			DocumentID: doc.ID,
			Content:    seg.text,
			Position:   i,
			Overlap:    sharedPrefix(prev, seg.text, seg.carry),
			Metadata:   meta,
		})
		prev = seg.text
	}
	return chunks, nil
}

// ChunkID returns the stable ID of the chunk at position within a document.
func ChunkID(documentID string, position int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(documentID+"#"+strconv.Itoa(position))).String()
}

// Split cuts text into chunks no longer than the chunk size where the
// separators allow it. Output is deterministic and contains no blank chunks.
func (p *Processor) Split(text string) []string {
	var out []string
	for _, seg := range p.segments(text) {
		out = append(out, seg.text)
	}
	return out
}

// segment is one chunk of text and the number of characters it repeats
// from the end of the previous chunk.
type segment struct {
	text  string
	carry int
}

// segments greedily packs pieces into chunks. Every chunk after the first
// starts with the last overlap characters of the one before it, so a window
// of up to overlap characters that crosses a boundary lies inside one chunk.
func (p *Processor) segments(text string) []segment {
	var out []segment
	var current []rune
	carried := 0
	for _, piece := range p.pieces(text, p.separators) {
		r := []rune(piece)
		if len(current)+len(r) > p.chunkSize && len(current) > 0 {
			if doc := strings.TrimSpace(string(current)); doc != "" {
				out = append(out, segment{text: doc, carry: carried})
			}
			current = p.carry(current, p.chunkSize-len(r))
			carried = len(current)
		}
		current = append(current, r...)
	}
	if doc := strings.TrimSpace(string(current)); doc != "" {
		out = append(out, segment{text: doc, carry: carried})
	}
	return out
}

// carry returns the tail of an emitted chunk that opens the next one. It is
// the last overlap characters, moved back to the start of a cut word when
// that adds at most half the overlap and still fits in room.
func (p *Processor) carry(chunk []rune, room int) []rune {
	n := min(p.overlap, room, len(chunk))
	if n <= 0 {
		return nil
	}
	start := len(chunk) - n
	if start > 0 && !unicode.IsSpace(chunk[start-1]) && !unicode.IsSpace(chunk[start]) {
		j := start - 1
		for j > 0 && !unicode.IsSpace(chunk[j-1]) {
			j--
		}
		if j > 0 && start-j <= p.overlap/2 && len(chunk)-j <= room {
			start = j
		}
	}
	return append([]rune(nil), chunk[start:]...)
}

// pieces walks down the separator cascade until every piece fits in a chunk
// next to a carried overlap. Concatenating the pieces gives back text.
func (p *Processor) pieces(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var rest []string
	for i, s := range separators {
		if s == "" {
			separator = s
			break
		}
		if strings.Contains(text, s) {
			separator = s
			rest = separators[i+1:]
			break
		}
	}

	limit := p.chunkSize - p.overlap
	var out []string
	for _, s := range splitKeep(text, separator) {
		if length(s) <= limit || len(rest) == 0 {
			out = append(out, s)
			continue
		}
		out = append(out, p.pieces(s, rest)...)
	}
	return out
}

// splitKeep splits text on sep and keeps each separator at the start of the
// piece that follows it. Empty pieces are dropped.
func splitKeep(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, len(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	if parts[0] != "" {
		out = append(out, parts[0])
	}
	for _, part := range parts[1:] {
		out = append(out, sep+part)
	}
	return out
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

// sharedPrefix returns the longest k <= limit such that prev ends with the
// first k characters of cur.
func sharedPrefix(prev, cur string, limit int) int {
	if prev == "" || limit <= 0 {
		return 0
	}
	pr := []rune(prev)
	cr := []rune(cur)
	k := min(limit, len(pr), len(cr))
	for ; k > 0; k-- {
		if string(pr[len(pr)-k:]) == string(cr[:k]) {
			return k
		}
	}
	return 0
}
