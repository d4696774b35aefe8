// Package base holds helpers shared by the format loaders.
package base

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

// documentNamespace scopes document IDs so they never collide with chunk IDs.
var documentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("campus-rag/document"))

// DocumentID returns a stable ID for the item-th document extracted from path.
func DocumentID(path string, item int) string {
	return uuid.NewSHA1(documentNamespace, []byte(path+"#"+strconv.Itoa(item))).String()
}

// NewDocument builds a document for a raw file with the default category.
// Sections default to a single section holding the whole content.
func NewDocument(raw *domain.RawDocument, item int, source, content string) domain.Document {
	if source == "" {
		source = filepath.Base(raw.Path)
	}
	meta := CopyMetadata(raw.Metadata)
	if meta == nil {
		meta = make(map[string]any)
	}
	if _, ok := meta[domain.MetaCategory]; !ok {
		meta[domain.MetaCategory] = domain.DefaultCategory
	}
	return domain.Document{
		ID:       DocumentID(raw.Path, item),
		Source:   source,
		Type:     raw.Type,
		Path:     raw.Path,
		Content:  content,
		Sections: []domain.Section{{Label: raw.Type.SectionLabel(), Text: content}},
		Metadata: meta,
	}
}

// Fail wraps err as an ingestion error for raw.
func Fail(raw *domain.RawDocument, kind, err error) error {
	return domain.NewIngestionError(raw.Path, raw.Type, kind, err)
}

// CopyMetadata creates a shallow copy of metadata.
func CopyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// CommandRunner executes external commands. Tests replace it with a fake.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes the command and returns stdout. Stderr is folded into the error.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// LookPath reports whether a command is on PATH. Tests replace it.
var LookPath = exec.LookPath
