package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ollama/ollama/api"
)

// OllamaClient implements Embedder using a local Ollama server.
type OllamaClient struct {
	client    *api.Client
	model     string
	dimension int
	timeout   time.Duration
	attempts  int
	logger    *slog.Logger

	// sleep is overridable so tests can observe retry delays without
	// waiting them out.
	sleep func(ctx context.Context, d time.Duration) error

	newBackOff func() backoff.BackOff
}

// Compile-time check that OllamaClient implements Embedder.
var _ Embedder = (*OllamaClient)(nil)

// NewOllamaClient creates a new Ollama embedding client.
func NewOllamaClient(cfg Config, log *slog.Logger) (*OllamaClient, error) {
	cfg.applyDefaults()
	if log == nil {
		log = slog.Default()
	}

	var client *api.Client
	if cfg.Host != "" {
		base, err := url.Parse(cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("parse ollama host %q: %w", cfg.Host, err)
		}
		client = api.NewClient(base, http.DefaultClient)
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("create ollama client: %w", err)
		}
	}

	return &OllamaClient{
		client:    client,
		model:     cfg.Model,
		dimension: cfg.Dimension,
		timeout:   cfg.Timeout,
		attempts:  cfg.Attempts,
		logger:    log,
		sleep:     sleepCtx,
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 500 * time.Millisecond
			bo.Multiplier = 2.0
			bo.MaxInterval = 10 * time.Second
			return bo
		},
	}, nil
}

// Model returns the configured embedding model name.
func (c *OllamaClient) Model() string {
	return c.model
}

// Dimension returns the expected embedding dimension.
func (c *OllamaClient) Dimension() int {
	return c.dimension
}

// Embed generates an embedding vector for the given text with bounded
// retries. Attempt n gets 2^n times the base timeout; transient failures
// wait an exponential backoff delay before the next try. Protocol errors
// abort immediately. Returns an exactly dimension-sized float32 vector or
// ErrProtocol on mismatch.
func (c *OllamaClient) Embed(ctx context.Context, text string) ([]float32, error) {
	bo := c.newBackOff()

	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, bo.NextBackOff()); err != nil {
				return nil, err
			}
			c.logger.Debug("retrying embedding request",
				"attempt", attempt+1, "attempts", c.attempts, "model", c.model)
		}

		vector, err := c.embedOnce(ctx, text, c.timeout<<attempt)
		if err == nil {
			return vector, nil
		}
		if errors.Is(err, ErrProtocol) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
		c.logger.Warn("embedding request failed",
			"attempt", attempt+1, "attempts", c.attempts, "error", err)
	}

	return nil, fmt.Errorf("%w: %d attempts: %v", ErrUnavailable, c.attempts, lastErr)
}

func (c *OllamaClient) embedOnce(ctx context.Context, text string, timeout time.Duration) ([]float32, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.client.Embed(attemptCtx, &api.EmbedRequest{
		Model: c.model,
		Input: text,
	})
	if err != nil {
		return nil, classify(err)
	}

	if len(resp.Embeddings) != 1 {
		return nil, fmt.Errorf("%w: embedding count mismatch: got %d, want 1",
			ErrProtocol, len(resp.Embeddings))
	}
	if len(resp.Embeddings[0]) != c.dimension {
		return nil, fmt.Errorf("%w: embedding dimension mismatch: got %d, want %d (model: %s)",
			ErrProtocol, len(resp.Embeddings[0]), c.dimension, c.model)
	}

	return resp.Embeddings[0], nil
}

// classify marks 4xx responses as protocol errors so the retry loop does
// not burn attempts on a request the server will never accept.
func classify(err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 {
			return fmt.Errorf("%w: %v", ErrProtocol, err)
		}
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
