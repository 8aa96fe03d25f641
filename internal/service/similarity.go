package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cinematch/cinematch/internal/db"
	"github.com/cinematch/cinematch/internal/metrics"
	"github.com/cinematch/cinematch/internal/models"
)

// DefaultMaxResults caps how many neighbors a single query may request.
const DefaultMaxResults = 100

// SimilarityEngine answers nearest-neighbor queries over the embedding store.
type SimilarityEngine struct {
	vectors    EmbeddingStore
	maxResults int
	collector  *metrics.Collector
	logger     *slog.Logger
}

// NewSimilarityEngine creates a similarity engine. maxResults of 0 uses
// DefaultMaxResults.
func NewSimilarityEngine(vectors EmbeddingStore, maxResults int, collector *metrics.Collector, log *slog.Logger) *SimilarityEngine {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if collector == nil {
		collector = metrics.NewCollector()
	}
	if log == nil {
		log = slog.Default()
	}
	return &SimilarityEngine{
		vectors:    vectors,
		maxResults: maxResults,
		collector:  collector,
		logger:     log,
	}
}

// MaxResults returns the engine's result cap.
func (e *SimilarityEngine) MaxResults() int {
	return e.maxResults
}

// validate rejects bad inputs before touching the store, then clamps an
// oversized k to the engine's cap.
func (e *SimilarityEngine) validate(k int, metric models.Metric) (int, error) {
	if !metric.Valid() {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidMetric, metric)
	}
	if k <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLimit, k)
	}
	if k > e.maxResults {
		e.logger.Debug("clamping result limit", "requested", k, "max", e.maxResults)
		k = e.maxResults
	}
	return k, nil
}

// ByVector returns the k nearest neighbors of an arbitrary query vector.
// Results come back in ascending distance order with movie id as tie break.
func (e *SimilarityEngine) ByVector(ctx context.Context, vector []float32, k int, metric models.Metric, exclude *int64) ([]models.Neighbor, error) {
	k, err := e.validate(k, metric)
	if err != nil {
		return nil, err
	}

	var neighbors []models.Neighbor
	err = e.collector.Time(metrics.OpVectorSearch, func() error {
		var err error
		neighbors, err = e.vectors.NearestNeighbors(ctx, vector, k, metric, exclude)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("nearest neighbors: %w", err)
	}
	return neighbors, nil
}

// ByMovieID returns the k movies most similar to the given movie. The movie
// itself is excluded from the results. Returns db.ErrEmbeddingNotFound if
// the movie has no stored embedding yet.
func (e *SimilarityEngine) ByMovieID(ctx context.Context, movieID int64, k int, metric models.Metric) ([]models.Neighbor, error) {
	k, err := e.validate(k, metric)
	if err != nil {
		return nil, err
	}

	emb, err := e.vectors.GetEmbedding(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("get embedding: %w", err)
	}
	if emb == nil {
		return nil, fmt.Errorf("movie %d: %w", movieID, db.ErrEmbeddingNotFound)
	}

	return e.ByVector(ctx, emb.Vector, k, metric, &movieID)
}
