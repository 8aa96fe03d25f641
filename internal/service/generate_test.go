package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinematch/cinematch/internal/embedding"
	"github.com/cinematch/cinematch/internal/metrics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newGenerator(store *fakeStore, embedder embedding.Embedder) *Generator {
	return NewGenerator(store, store, embedder, nil, discardLogger())
}

func TestGenerateResumesPartialRun(t *testing.T) {
	store := newFakeStore()
	store.addMovie(1, "Movie A")
	store.addMovie(2, "Movie B")
	store.addMovie(3, "Movie C")
	// A and B were embedded by an earlier (or concurrent) run
	store.addEmbedding(1, []float32{1, 0})
	store.addEmbedding(2, []float32{0, 1})

	mock := embedding.NewMock(2)
	gen := newGenerator(store, mock)

	result, err := gen.Run(context.Background(), GenerateOptions{Concurrency: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Generated, "only the pending movie gets a new embedding")
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Errors)
	assert.NotEmpty(t, result.RunID)

	count, _ := store.CountEmbeddings(context.Background())
	assert.Equal(t, 3, count)
	assert.Len(t, mock.Calls(), 1, "skipped movies never reach the embedder")
}

func TestGenerateIdempotent(t *testing.T) {
	store := newFakeStore()
	for i := int64(1); i <= 5; i++ {
		store.addMovie(i, "Movie")
	}
	mock := embedding.NewMock(2)
	gen := newGenerator(store, mock)

	first, err := gen.Run(context.Background(), GenerateOptions{Concurrency: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, first.Generated)

	second, err := gen.Run(context.Background(), GenerateOptions{Concurrency: 2})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Generated, "second run finds nothing to do")
	assert.Equal(t, 5, second.Skipped)

	count, _ := store.CountEmbeddings(context.Background())
	assert.Equal(t, 5, count, "re-running never duplicates rows")
}

func TestGenerateForce(t *testing.T) {
	store := newFakeStore()
	store.addMovie(1, "Movie A")
	store.addMovie(2, "Movie B")
	store.addEmbedding(1, []float32{9, 9})
	store.addEmbedding(2, []float32{9, 9})

	mock := embedding.NewMock(2)
	gen := newGenerator(store, mock)

	result, err := gen.Run(context.Background(), GenerateOptions{Concurrency: 2, Force: true})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Generated)
	assert.Equal(t, 0, result.Skipped)

	emb, _ := store.GetEmbedding(context.Background(), 1)
	require.NotNil(t, emb)
	assert.Equal(t, []float32{1, 0}, emb.Vector, "force replaces the stored vector")
}

func TestGenerateFailureContinuesRun(t *testing.T) {
	store := newFakeStore()
	store.addMovie(1, "Good Movie")
	store.addMovie(2, "Cursed Movie")
	store.addMovie(3, "Another Good Movie")

	mock := embedding.NewMock(2)
	mock.EmbedFunc = func(ctx context.Context, text string) ([]float32, error) {
		if strings.Contains(text, "Cursed") {
			return nil, embedding.ErrUnavailable
		}
		return []float32{1, 0}, nil
	}
	gen := newGenerator(store, mock)

	result, err := gen.Run(context.Background(), GenerateOptions{Concurrency: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Generated)
	assert.Equal(t, 1, result.Failed, "one failure does not abort the run")
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "movie 2")

	has, _ := store.HasEmbedding(context.Background(), 2)
	assert.False(t, has, "failed movie stays pending for the next run")
}

func TestGenerateStoreFailureCounts(t *testing.T) {
	store := newFakeStore()
	store.addMovie(1, "Movie")
	store.upsertErr = errors.New("disk full")

	gen := newGenerator(store, embedding.NewMock(2))

	result, err := gen.Run(context.Background(), GenerateOptions{Concurrency: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Generated, "generated counts only durably stored vectors")
	assert.Equal(t, 1, result.Failed)
}

func TestGenerateConcurrencyBound(t *testing.T) {
	const bound = 3

	store := newFakeStore()
	for i := int64(1); i <= 24; i++ {
		store.addMovie(i, "Movie")
	}

	var inFlight, peak atomic.Int32
	mock := embedding.NewMock(2)
	mock.EmbedFunc = func(ctx context.Context, text string) ([]float32, error) {
		cur := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		return []float32{1, 0}, nil
	}

	gen := newGenerator(store, mock)
	result, err := gen.Run(context.Background(), GenerateOptions{Concurrency: bound})
	require.NoError(t, err)
	assert.Equal(t, 24, result.Generated)
	assert.LessOrEqual(t, peak.Load(), int32(bound), "embedding requests never exceed the bound")
}

func TestGenerateLimit(t *testing.T) {
	store := newFakeStore()
	for i := int64(1); i <= 10; i++ {
		store.addMovie(i, "Movie")
	}

	gen := newGenerator(store, embedding.NewMock(2))
	result, err := gen.Run(context.Background(), GenerateOptions{Concurrency: 2, Limit: 4})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 4, result.Generated)
	count, _ := store.CountEmbeddings(context.Background())
	assert.Equal(t, 4, count)
}

func TestGenerateCancelled(t *testing.T) {
	store := newFakeStore()
	for i := int64(1); i <= 10; i++ {
		store.addMovie(i, "Movie")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := newGenerator(store, embedding.NewMock(2))
	result, err := gen.Run(ctx, GenerateOptions{Concurrency: 2})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result, "a cancelled run still reports partial counters")
	assert.Equal(t, 0, result.Generated)
}

func TestGenerateReportsExternalIDOnBadRecordID(t *testing.T) {
	store := newFakeStore()
	store.addMovie(1, "Good Movie")
	store.addMovieWithRecordID(2, "not-a-number", "Broken Movie")

	gen := newGenerator(store, embedding.NewMock(2))
	result, err := gen.Run(context.Background(), GenerateOptions{Concurrency: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Generated)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "movie 2", "failures report the external catalog id")
}

func TestGenerateRecordsCatalogQueryTimings(t *testing.T) {
	store := newFakeStore()
	store.addMovie(1, "Movie")

	collector := metrics.NewCollector()
	gen := NewGenerator(store, store, embedding.NewMock(2), collector, discardLogger())

	_, err := gen.Run(context.Background(), GenerateOptions{Concurrency: 1})
	require.NoError(t, err)

	snap := collector.Snapshot()
	require.NotNil(t, snap.DBQuery, "catalog count and page listing are timed")
	assert.GreaterOrEqual(t, snap.DBQuery.Count, int64(2))
	require.NotNil(t, snap.Embedding)
	require.NotNil(t, snap.StoreWrite)
}

func TestGenerateProgressSnapshots(t *testing.T) {
	store := newFakeStore()
	for i := int64(1); i <= 6; i++ {
		store.addMovie(i, "Movie")
	}

	progress := &Progress{}
	gen := newGenerator(store, embedding.NewMock(2))
	_, err := gen.Run(context.Background(), GenerateOptions{Concurrency: 2, Progress: progress})
	require.NoError(t, err)

	snap := progress.Snapshot()
	assert.Equal(t, 6, snap.Total)
	assert.Equal(t, 6, snap.Processed)
	assert.Equal(t, 6, snap.Generated)
}
