// Package config resolves Callo's runtime configuration from the
// environment. Credentials are never compiled into source; they must be
// supplied via CALLO_-prefixed variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the client needs to reach its two remote services:
// the hosted data backend and the chat-completion endpoint.
type Config struct {
	// Backend (hosted relational store, PostgREST-style API).
	BackendURL     string `envconfig:"BACKEND_URL"`
	BackendAnonKey string `envconfig:"BACKEND_ANON_KEY"`

	// Completion endpoint.
	CompletionURL    string `envconfig:"COMPLETION_URL" default:"https://api.cerebras.ai"`
	CompletionAPIKey string `envconfig:"COMPLETION_API_KEY"`

	// Completion request defaults.
	Model       string  `envconfig:"MODEL" default:"llama3.1-8b"`
	Temperature float64 `envconfig:"TEMPERATURE" default:"0"`

	// HTTPTimeout bounds a single round trip to either service.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`

	// DemoMode keeps productivity data in memory only; no gateway writes.
	DemoMode bool `envconfig:"DEMO_MODE" default:"true"`
}

// Load populates Config from environment variables (prefix CALLO_) and
// validates it.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("CALLO", &c); err != nil {
		return c, err
	}
	return c, c.Validate()
}

// Validate checks the parts of the configuration that have no usable default.
func (c Config) Validate() error {
	if c.CompletionURL == "" {
		return fmt.Errorf("completion URL must be set")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0, got %s", c.HTTPTimeout)
	}
	if !c.DemoMode && c.BackendURL == "" {
		return fmt.Errorf("backend URL must be set outside demo mode")
	}
	return nil
}
