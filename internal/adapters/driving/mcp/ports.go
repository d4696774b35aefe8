package mcp

import (
	"github.com/custodia-labs/campus-rag/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Chat answers questions and manages sessions.
	Chat driving.ChatService

	// Index reports the index lifecycle. Optional.
	Index driving.IndexService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
