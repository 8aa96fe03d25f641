package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinematch/cinematch/internal/db"
	"github.com/cinematch/cinematch/internal/models"
)

// axisStore holds three embeddings that are identical, orthogonal and
// opposite to the x axis.
func axisStore() *fakeStore {
	store := newFakeStore()
	store.addMovie(1, "Identical")
	store.addMovie(2, "Orthogonal")
	store.addMovie(3, "Opposite")
	store.addEmbedding(1, []float32{1, 0})
	store.addEmbedding(2, []float32{0, 1})
	store.addEmbedding(3, []float32{-1, 0})
	return store
}

func newEngine(store *fakeStore) *SimilarityEngine {
	return NewSimilarityEngine(store, 0, nil, discardLogger())
}

func TestByVectorCosineScores(t *testing.T) {
	engine := newEngine(axisStore())

	neighbors, err := engine.ByVector(context.Background(), []float32{1, 0}, 3, models.MetricCosine, nil)
	require.NoError(t, err)
	require.Len(t, neighbors, 3)

	// Identical, orthogonal, opposite: distances 0, 1, 2 and scores 1, 0, -1
	wantIDs := []int64{1, 2, 3}
	wantScores := []float64{1, 0, -1}
	for i, n := range neighbors {
		assert.Equal(t, wantIDs[i], n.MovieID)
		assert.InDelta(t, wantScores[i], models.MetricCosine.Score(n.Distance), 1e-6)
	}
}

func TestByMovieIDExcludesSelf(t *testing.T) {
	engine := newEngine(axisStore())

	neighbors, err := engine.ByMovieID(context.Background(), 1, 10, models.MetricCosine)
	require.NoError(t, err)
	require.Len(t, neighbors, 2)
	for _, n := range neighbors {
		assert.NotEqual(t, int64(1), n.MovieID, "the query movie never appears in its own results")
	}
	assert.Equal(t, int64(2), neighbors[0].MovieID, "orthogonal before opposite")
}

func TestByMovieIDMissingEmbedding(t *testing.T) {
	store := axisStore()
	store.addMovie(4, "Pending")
	engine := newEngine(store)

	_, err := engine.ByMovieID(context.Background(), 4, 5, models.MetricCosine)
	require.Error(t, err)
	assert.ErrorIs(t, err, db.ErrEmbeddingNotFound)
}

func TestOversizedLimitClamped(t *testing.T) {
	store := axisStore()
	engine := newEngine(store)

	_, err := engine.ByVector(context.Background(), []float32{1, 0}, 500, models.MetricCosine, nil)
	require.NoError(t, err, "an oversized limit is clamped, not rejected")
	assert.Equal(t, DefaultMaxResults, store.lastK)
}

func TestInvalidLimitRejected(t *testing.T) {
	engine := newEngine(axisStore())

	for _, k := range []int{0, -5} {
		_, err := engine.ByVector(context.Background(), []float32{1, 0}, k, models.MetricCosine, nil)
		require.Error(t, err, "k=%d", k)
		assert.ErrorIs(t, err, ErrInvalidLimit)
	}
}

func TestInvalidMetricRejected(t *testing.T) {
	store := axisStore()
	engine := newEngine(store)

	_, err := engine.ByVector(context.Background(), []float32{1, 0}, 5, models.Metric("manhattan"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidMetric)
	assert.Zero(t, store.lastK, "validation happens before the store is touched")
}

func TestEqualDistanceTieBreaksByID(t *testing.T) {
	store := newFakeStore()
	// Both orthogonal to the query: identical distance under cosine
	store.addMovie(7, "Tie A")
	store.addMovie(5, "Tie B")
	store.addEmbedding(7, []float32{0, 1})
	store.addEmbedding(5, []float32{0, -1})
	engine := newEngine(store)

	neighbors, err := engine.ByVector(context.Background(), []float32{1, 0}, 2, models.MetricCosine, nil)
	require.NoError(t, err)
	require.Len(t, neighbors, 2)
	assert.Equal(t, int64(5), neighbors[0].MovieID)
	assert.Equal(t, int64(7), neighbors[1].MovieID)
}

func TestMetricOrderingDiffers(t *testing.T) {
	store := newFakeStore()
	store.addMovie(1, "Short Aligned")
	store.addMovie(2, "Long Aligned")
	store.addEmbedding(1, []float32{1, 0})
	store.addEmbedding(2, []float32{3, 0})
	engine := newEngine(store)

	query := []float32{1.2, 0}

	l2, err := engine.ByVector(context.Background(), query, 2, models.MetricL2, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), l2[0].MovieID, "l2 prefers the closer point")

	ip, err := engine.ByVector(context.Background(), query, 2, models.MetricInnerProduct, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ip[0].MovieID, "inner product prefers the larger projection")
}
