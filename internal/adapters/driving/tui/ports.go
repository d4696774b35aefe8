// Package tui provides an interactive terminal chat for the campus assistant.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/campus-rag/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Chat answers questions and manages sessions.
	Chat driving.ChatService

	// Index reports the index state in the status bar. Optional.
	Index driving.IndexService

	// Settings backs the settings view. Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(chat driving.ChatService, index driving.IndexService, settings driving.SettingsService) *Ports {
	return &Ports{
		Chat:     chat,
		Index:    index,
		Settings: settings,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
