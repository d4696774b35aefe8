// Package file provides file-backed implementations of driven ports.
//
// Adapters:
//   - ConfigStore: TOML settings at ~/.campus-rag/config.toml
//   - PromptStore: editable prompt templates under ~/.campus-rag/prompts
package file
