// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every knob of the assistant service.
type Config struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8000"`

	// APIKey is the pre-shared secret required on protected routes.
	APIKey string `env:"AI_SERVICE_API_KEY" envDefault:"dev-key"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:4000"`

	// DataDir is the directory holding the portfolio JSON files.
	DataDir string `env:"DATA_DIR" envDefault:"./data"`

	OllamaURL      string  `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	ModelName      string  `env:"MODEL_NAME" envDefault:"llama3.2"`
	EmbeddingModel string  `env:"EMBEDDING_MODEL" envDefault:"nomic-embed-text"`
	Temperature    float64 `env:"TEMPERATURE" envDefault:"0.7"`
	MaxNewTokens   int     `env:"MAX_NEW_TOKENS" envDefault:"150"`

	// OfflineEmbeddings switches the retriever to deterministic hash
	// embeddings, for environments without a model server.
	OfflineEmbeddings bool `env:"OFFLINE_EMBEDDINGS" envDefault:"false"`

	SessionTimeout    time.Duration `env:"SESSION_TIMEOUT" envDefault:"1h"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"60s"`
}

// Load reads an optional .env file, then parses the environment.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments configure via the environment.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
