// Package mcp provides an MCP (Model Context Protocol) server adapter for the
// campus assistant. It lets AI clients ask questions and manage chat sessions.
package mcp

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("mcp: chat service is required")
