package gate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsNonPositiveCapacity(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)
	_, err = New(-1)
	require.Error(t, err)
}

func TestBoundNeverExceeded(t *testing.T) {
	const capacity = 4
	const workers = 32

	g, err := New(capacity)
	require.NoError(t, err)

	var peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, g.Acquire(context.Background()))
			defer g.Release()

			// Track the highest concurrency observed
			for {
				cur := g.InFlight()
				if cur > int64(capacity) {
					t.Errorf("in-flight %d exceeds capacity %d", cur, capacity)
				}
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(time.Millisecond)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int64(capacity))
	assert.Equal(t, int64(0), g.InFlight(), "all slots returned after the run")
}

func TestAcquireHonorsContext(t *testing.T) {
	g, err := New(1)
	require.NoError(t, err)

	require.NoError(t, g.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err = g.Acquire(ctx)
	require.Error(t, err)
	assert.Equal(t, int64(1), g.InFlight(), "failed acquire must not change in-flight count")

	g.Release()
	assert.Equal(t, int64(0), g.InFlight())
}
