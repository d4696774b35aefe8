package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAnswer is the retrieval-augmented answer template.
	// It expects two %s placeholders: the rendered context, then the question.
	PromptAnswer = "answer"
)

// DefaultAnswerPrompt is the built-in PromptAnswer template.
const DefaultAnswerPrompt = `You are a helpful University assistant. Answer the student's question based ONLY on the provided university information below.

Guidelines for your response:
- Be helpful, accurate, and student-friendly
- Provide complete and detailed answers when information is available
- If specific information is not available, politely say you don't have that information
- Always be encouraging and supportive in your tone
- Focus on the most relevant information for the student's question
- Answer in bullets if the response calls for a list
- Provide the full information

University Database Information:
%s

Student Question: %s

University Assistant Response:`

// PromptStoreAware is an optional interface for services that can use custom prompts.
// Services implementing this interface can have their prompt templates customised
// by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
