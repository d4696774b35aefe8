// Package driving defines the interfaces that driving adapters call INTO core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// The CLI, the MCP server and the TUI depend on these interfaces; core
// services implement them.
//
// # Interfaces
//
//   - ChatService: Question answering with conversation sessions
//   - IndexService: Index lifecycle (start, rebuild, status)
//   - Scheduler: Background rebuild scheduling
//   - Watcher: Rebuild on dataset changes
//   - SettingsService: Application settings
//   - Combiner: Combined dataset export
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or driven port implementation
package driving
