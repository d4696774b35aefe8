// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentSource: Walks and watches the dataset directory
//   - Loader: Extracts text from one file format
//   - PostProcessor: Normalises text and cuts chunks
//   - EmbeddingService: Turns text into vectors
//   - VectorIndex: In-memory similarity search over vectors
//   - IndexStore: Persists the index artifact and its sidecar
//   - SessionStore: Conversation history
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil and the application degrades:
//
//   - LLMService: Without it, every answer is the apology message.
//   - PromptStore: Without it, built-in prompt templates are used.
//   - SchedulerStore: Without it, the periodic rebuild is disabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or loader package
package driven
