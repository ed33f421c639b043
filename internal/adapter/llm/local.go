package llm

import (
	"net/http"
	"time"
)

// LocalLLM wraps an OpenAI-compatible local server such as Ollama. Local
// servers load model weights lazily on the first request, so LocalLLM
// implements port.ModelLoader and forces that load up front, reporting
// progress to the caller.
type LocalLLM struct {
	*OpenAILLM
	loaded bool
}

func NewLocalLLM(model, baseURL string) *LocalLLM {
	if baseURL == "" {
		baseURL = "http://localhost:11434/v1"
	}
	return &LocalLLM{
		OpenAILLM: &OpenAILLM{
			apiKey:  "local",
			model:   model,
			baseURL: baseURL,
			client:  &http.Client{Timeout: 300 * time.Second},
		},
	}
}

// Load issues a minimal generation to pull the model into server memory.
// The server gives no mid-load progress signal, so only the start and end
// of the load are reported.
func (l *LocalLLM) Load(onProgress func(percent int)) error {
	if l.loaded {
		if onProgress != nil {
			onProgress(100)
		}
		return nil
	}

	if onProgress != nil {
		onProgress(0)
	}

	if _, err := l.chat([]chatMessage{{Role: "user", Content: "ok"}}); err != nil {
		return err
	}

	l.loaded = true
	if onProgress != nil {
		onProgress(100)
	}
	return nil
}
