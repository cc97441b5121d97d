package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ai-processor/internal/models"
)

// Connection identifies the remote model endpoint and its credential.
type Connection struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
}

// Model holds the token accounting settings for the chat model. A nil
// ResponseRatio selects embedding-budget semantics: the whole context window
// is usable for input.
type Model struct {
	Name          string   `yaml:"name"`
	MaxTokens     int      `yaml:"max_tokens"`
	ResponseRatio *float64 `yaml:"response_ratio"`
}

// LLMConfig points at a secondary model endpoint, used for the embedder.
type LLMConfig struct {
	Provider  string `yaml:"provider"`
	BaseURL   string `yaml:"base_url"`
	Key       string `yaml:"key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// Store configures the chromem-go vector store.
type Store struct {
	Path          string `yaml:"path"`
	Collection    string `yaml:"collection"`
	InMemory      bool   `yaml:"in_memory"`
	EncryptionKey string `yaml:"encryption_key"`
}

// Database configures the Postgres/pgvector persistence layer.
type Database struct {
	URL   string `yaml:"url"`
	Key   string `yaml:"key"`
	Debug bool   `yaml:"debug"`
}

type Config struct {
	LogLevel   string             `yaml:"log_level"`
	Connection Connection         `yaml:"connection"`
	Model      Model              `yaml:"model"`
	Embedder   LLMConfig          `yaml:"embedder"`
	Prompts    models.Prompts     `yaml:"prompts"`
	Options    models.ChatOptions `yaml:"options"`
	Store      Store              `yaml:"store"`
	Database   Database           `yaml:"database"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Model.MaxTokens <= 0 {
		return nil, fmt.Errorf("model.max_tokens must be a positive integer, got %d", cfg.Model.MaxTokens)
	}
	if cfg.Prompts.Initial == "" {
		cfg.Prompts.Initial = models.DefaultInitialPrompt
	}
	if cfg.Prompts.FollowUpTemplate == "" {
		cfg.Prompts.FollowUpTemplate = models.DefaultFollowUpTemplate
	}
	return &cfg, nil
}
