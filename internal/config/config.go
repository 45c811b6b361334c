// Package config loads application configuration from the environment. A
// .env file in the working directory is read first when present, then the
// typed fields are parsed from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port int `env:"PORT" envDefault:"8080"`

	// DatabaseURL switches the store from the in-memory default to
	// Postgres when set.
	DatabaseURL string `env:"DATABASE_URL"`

	// OpenAIKey gates AI mode: when empty the study endpoint reports
	// unavailable and voice processing falls back to raw transcriptions.
	OpenAIKey   string        `env:"OPENAI_API_KEY"`
	OpenAIModel string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	AITimeout   time.Duration `env:"AI_TIMEOUT" envDefault:"45s"`

	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173"`
}

func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error parsing environment config: %w", err)
	}
	return cfg, nil
}
