package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"docchat/internal/domain"
)

// OpenAILLM is a chat-completions client for OpenAI-compatible endpoints.
type OpenAILLM struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewOpenAILLM(apiKeyEnv, model string) (*OpenAILLM, error) {
	return NewOpenAICompatibleLLM(apiKeyEnv, model, "https://api.openai.com/v1")
}

func NewDeepSeekLLM(apiKeyEnv, model string) (*OpenAILLM, error) {
	return NewOpenAICompatibleLLM(apiKeyEnv, model, "https://api.deepseek.com/v1")
}

func NewOpenAICompatibleLLM(apiKeyEnv, model, baseURL string) (*OpenAILLM, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}

	return &OpenAILLM{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (l *OpenAILLM) Generate(prompt string) (string, error) {
	return l.chat([]chatMessage{{Role: string(domain.RoleUser), Content: prompt}})
}

func (l *OpenAILLM) GenerateWithSystem(systemPrompt, userPrompt string) (string, error) {
	return l.chat([]chatMessage{
		{Role: string(domain.RoleSystem), Content: systemPrompt},
		{Role: string(domain.RoleUser), Content: userPrompt},
	})
}

func (l *OpenAILLM) ModelName() string {
	return l.model
}

func (l *OpenAILLM) chat(messages []chatMessage) (string, error) {
	reqBody := chatRequest{
		Model:       l.model,
		Messages:    messages,
		Temperature: 0.3,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", l.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("API error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return chatResp.Choices[0].Message.Content, nil
}
