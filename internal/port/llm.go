package port

// LLM represents a language model for text generation.
type LLM interface {
	// Generate generates text based on the prompt.
	Generate(prompt string) (string, error)

	// GenerateWithSystem generates text with a system prompt.
	GenerateWithSystem(systemPrompt, userPrompt string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}

// ModelLoader is implemented by LLM adapters that need a one-time
// initialization before the first generation (e.g. loading local weights).
// onProgress receives percentages in [0,100]; it is advisory only and must
// tolerate being called from the adapter's goroutine.
type ModelLoader interface {
	Load(onProgress func(percent int)) error
}
