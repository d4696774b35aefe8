package loaders

import (
	"github.com/custodia-labs/campus-rag/internal/loaders/doc"
	"github.com/custodia-labs/campus-rag/internal/loaders/docx"
	jsonloader "github.com/custodia-labs/campus-rag/internal/loaders/json"
	"github.com/custodia-labs/campus-rag/internal/loaders/pdf"
	"github.com/custodia-labs/campus-rag/internal/loaders/txt"
)

// RegisterDefaults registers a loader for every supported source type.
func RegisterDefaults(r *Registry) {
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(doc.New())
	r.Register(txt.New())
	r.Register(jsonloader.New())
}

// NewDefaultRegistry returns a registry with every built-in loader.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}
