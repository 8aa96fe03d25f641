// Package embedding provides text embedding generation via a local Ollama
// server, with bounded retries around transient failures.
package embedding

import (
	"context"
	"time"
)

const (
	// DefaultModel is the embedding model that produces 768-dimensional vectors.
	DefaultModel = "nomic-embed-text"

	// DefaultDimension is the dimension for nomic-embed-text.
	// CRITICAL: This MUST match the HNSW index dimension in SurrealDB schema.
	DefaultDimension = 768

	// DefaultTimeout is the base per-request timeout. Each retry attempt
	// doubles it, so a slow model gets progressively more room.
	DefaultTimeout = 120 * time.Second

	// DefaultAttempts is the total number of tries per text (1 initial + retries).
	DefaultAttempts = 3
)

// Embedder defines the interface for text embedding providers. One text per
// request: the generation pipeline gets its throughput from concurrent
// requests, not batching.
type Embedder interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Model returns the name of the embedding model being used.
	Model() string

	// Dimension returns the embedding vector dimension.
	Dimension() int
}

// Config holds configuration for creating an Embedder.
type Config struct {
	// Host is the Ollama server URL. Empty falls back to the OLLAMA_HOST
	// environment variable, then http://localhost:11434.
	Host string

	// Model is the embedding model name.
	Model string

	// Dimension is the required output dimension. Vectors of any other
	// size are rejected before they reach the store.
	Dimension int

	// Timeout is the base per-attempt timeout.
	Timeout time.Duration

	// Attempts is the total number of tries per request.
	Attempts int
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Dimension == 0 {
		c.Dimension = DefaultDimension
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Attempts <= 0 {
		c.Attempts = DefaultAttempts
	}
}
