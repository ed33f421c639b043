package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the docchat tool.
type Config struct {
	Chunk     ChunkConfig     `yaml:"chunk"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ChunkConfig holds document splitting configuration.
type ChunkConfig struct {
	Size    int `yaml:"size"`    // Maximum chunk length in characters
	Overlap int `yaml:"overlap"` // Characters repeated between adjacent chunks
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK            int     `yaml:"top_k"`
	DiversityWeight float64 `yaml:"diversity_weight"` // MMR lambda: 1 = pure relevance, 0 = pure diversity
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai", "deepseek", "local", "mock"
	Model     string `yaml:"model"`       // e.g., "text-embedding-3-small"
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
	BaseURL   string `yaml:"base_url"`    // Override for OpenAI-compatible endpoints
	Dimension int    `yaml:"dimension"`
}

// LLMConfig holds generation provider configuration.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // "openai", "deepseek", "local"
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
}

// IngestConfig holds file ingestion configuration.
type IngestConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Chunk: ChunkConfig{
			Size:    500,
			Overlap: 50,
		},
		Retrieve: RetrieveConfig{
			TopK:            10,
			DiversityWeight: 0.75,
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Ingest: IngestConfig{
			Includes: []string{"**/*.txt", "**/*.md", "**/*.pdf"},
			Excludes: []string{"**/node_modules/**", "**/.git/**", "**/vendor/**"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for docchat.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docchat.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".docchat", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// HistoryDBPath returns the path to the chat history database.
func HistoryDBPath(dir string) string {
	return filepath.Join(dir, ".docchat", "history.db")
}

// EnsureDataDir ensures the .docchat directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".docchat"), 0755)
}
