package usecase

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"docchat/internal/domain"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

// renderSystemPrompt picks the system prompt template for the generation
// stage. Context present selects the grounded template with the retrieved
// chunks inlined in rank order; no context selects the general conversational
// template, which carries no context block at all.
func renderSystemPrompt(context []domain.Chunk) (string, error) {
	name := "templates/chat_prompt.txt"
	if len(context) > 0 {
		name = "templates/grounded_prompt.txt"
	}

	tmplContent, err := promptTemplates.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("template not found: %w", err)
	}

	tmpl, err := template.New("prompt").Parse(string(tmplContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Context []domain.Chunk }{Context: context}); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}

	return buf.String(), nil
}
