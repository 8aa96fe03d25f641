package embedding

import (
	"context"
	"sync"
)

// Mock is a deterministic in-memory Embedder for tests. Without an
// EmbedFunc it returns a constant unit vector for every text.
type Mock struct {
	ModelName string
	Dim       int

	// EmbedFunc overrides the vector produced for a text. Return an error
	// to simulate a failing embedding service.
	EmbedFunc func(ctx context.Context, text string) ([]float32, error)

	mu    sync.Mutex
	calls []string
}

// Compile-time check that Mock implements Embedder.
var _ Embedder = (*Mock)(nil)

// NewMock creates a mock embedder producing vectors of the given dimension.
func NewMock(dimension int) *Mock {
	return &Mock{ModelName: "mock-embed", Dim: dimension}
}

func (m *Mock) Model() string  { return m.ModelName }
func (m *Mock) Dimension() int { return m.Dim }

// Calls returns the texts embedded so far, in call order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *Mock) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}

	v := make([]float32, m.Dim)
	if m.Dim > 0 {
		v[0] = 1
	}
	return v, nil
}
