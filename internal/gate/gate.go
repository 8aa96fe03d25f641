// Package gate bounds the number of concurrent embedding requests so a
// large generation run cannot overwhelm the model server.
package gate

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Gate is a weighted semaphore with in-flight instrumentation. Acquire
// blocks until a slot is free or the context is done.
type Gate struct {
	sem      *semaphore.Weighted
	capacity int64
	inFlight atomic.Int64
}

// New creates a gate admitting at most capacity concurrent holders.
func New(capacity int) (*Gate, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("gate capacity must be positive, got %d", capacity)
	}
	return &Gate{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: int64(capacity),
	}, nil
}

// Acquire claims a slot, blocking until one is free. Returns the context's
// error if it is done first.
func (g *Gate) Acquire(ctx context.Context) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	g.inFlight.Add(1)
	return nil
}

// Release returns a slot. Must be called exactly once per successful Acquire.
func (g *Gate) Release() {
	g.inFlight.Add(-1)
	g.sem.Release(1)
}

// InFlight returns the number of currently held slots.
func (g *Gate) InFlight() int64 {
	return g.inFlight.Load()
}

// Capacity returns the maximum number of concurrent holders.
func (g *Gate) Capacity() int64 {
	return g.capacity
}
