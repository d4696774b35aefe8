package domain

import "time"

// previewLength is the number of runes kept in a SourceRef preview.
const previewLength = 100

// SourceRef describes one retrieved passage for display to the user.
type SourceRef struct {
	Type    SourceType `json:"type"`
	Source  string     `json:"source"`
	Path    string     `json:"file_path"`
	Preview string     `json:"preview"`
}

// SourceRefFromHit builds a SourceRef. Content longer than 100 runes is
// truncated and marked with "...".
func SourceRefFromHit(hit RetrievalHit) SourceRef {
	preview := hit.Entry.Content
	if r := []rune(preview); len(r) > previewLength {
		preview = string(r[:previewLength]) + "..."
	}
	return SourceRef{
		Type:    hit.Entry.SourceType,
		Source:  hit.Entry.Source,
		Path:    hit.Entry.Path,
		Preview: preview,
	}
}

// Answer is the result of answering one question.
type Answer struct {
	// Text is the completion, or an apology when Degraded.
	Text string

	// Hits are the retrieved passages in rank order.
	Hits []RetrievalHit

	// SourceTypes lists the types present in Hits, in context order.
	SourceTypes []SourceType

	// Sources are display references for Hits.
	Sources []SourceRef

	// Context is the rendered context block sent to the completion service.
	Context string

	// Degraded is true when any retrieval or completion step failed.
	Degraded bool
}

// ChatReply is returned to the request layer after a chat exchange.
type ChatReply struct {
	Answer      string       `json:"response"`
	SessionID   string       `json:"session_id"`
	TurnID      string       `json:"message_id"`
	Timestamp   time.Time    `json:"timestamp"`
	Sources     []SourceRef  `json:"sources,omitempty"`
	SourceTypes []SourceType `json:"source_types,omitempty"`
	Degraded    bool         `json:"degraded,omitempty"`
}
