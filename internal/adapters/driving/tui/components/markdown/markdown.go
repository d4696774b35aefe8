// Package markdown renders answers as terminal markdown.
package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Glamour style names accepted by New.
const (
	StyleAuto  = "auto"
	StylePlain = "notty"
)

// Renderer renders markdown, falling back to the raw text when glamour
// cannot be set up or fails on an input.
type Renderer struct {
	tr *glamour.TermRenderer
}

// New creates a renderer wrapping at width. An empty style means StyleAuto.
func New(width int, style string) *Renderer {
	styleOpt := glamour.WithAutoStyle()
	if style != "" && style != StyleAuto {
		styleOpt = glamour.WithStandardStyle(style)
	}
	tr, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(max(width, 20)))
	if err != nil {
		return &Renderer{}
	}
	return &Renderer{tr: tr}
}

// Render returns text rendered as markdown without trailing blank lines.
func (r *Renderer) Render(text string) string {
	if r == nil || r.tr == nil {
		return text
	}
	out, err := r.tr.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
