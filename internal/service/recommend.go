package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cinematch/cinematch/internal/db"
	"github.com/cinematch/cinematch/internal/embedding"
	"github.com/cinematch/cinematch/internal/models"
)

// Browse defaults, tuned for a catalog where 6.0 separates watchable from
// filler and a few likes are not a signal.
const (
	DefaultGenreMinRating    = 6.0
	DefaultTrendingMinYear   = 2020
	DefaultTrendingMinRating = 6.0
	DefaultTopRatedMinRating = 7.0
	DefaultTopRatedMinVotes  = 100
)

// Recommender orchestrates similarity queries and catalog lookups into
// user-facing recommendations.
type Recommender struct {
	catalog  CatalogStore
	engine   *SimilarityEngine
	embedder embedding.Embedder
	logger   *slog.Logger
}

// NewRecommender creates a recommender.
func NewRecommender(catalog CatalogStore, engine *SimilarityEngine, embedder embedding.Embedder, log *slog.Logger) *Recommender {
	if log == nil {
		log = slog.Default()
	}
	return &Recommender{
		catalog:  catalog,
		engine:   engine,
		embedder: embedder,
		logger:   log,
	}
}

// ByMovie recommends the k movies most similar to the given movie, hydrated
// with catalog data and scored under the chosen metric.
func (r *Recommender) ByMovie(ctx context.Context, movieID int64, k int, metric models.Metric) ([]models.Recommendation, error) {
	neighbors, err := r.engine.ByMovieID(ctx, movieID, k, metric)
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, neighbors, metric)
}

// ByExternalID recommends similar movies, looking the source movie up by
// its external catalog id. Returns db.ErrMovieNotFound if it does not exist.
func (r *Recommender) ByExternalID(ctx context.Context, externalID int64, k int, metric models.Metric) ([]models.Recommendation, error) {
	movie, err := r.catalog.GetMovieByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("get movie by external id: %w", err)
	}
	if movie == nil {
		return nil, fmt.Errorf("external id %d: %w", externalID, db.ErrMovieNotFound)
	}

	movieID, err := models.RecordIDInt64(movie.ID)
	if err != nil {
		return nil, err
	}
	return r.ByMovie(ctx, movieID, k, metric)
}

// ByText recommends movies semantically close to a free-text description.
// Text queries always rank by cosine distance: the query vector and the
// stored vectors come from different inputs, so magnitude carries no signal.
func (r *Recommender) ByText(ctx context.Context, text string, k int) ([]models.Recommendation, error) {
	if text == "" {
		return nil, fmt.Errorf("query text must not be empty")
	}

	vector, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	neighbors, err := r.engine.ByVector(ctx, vector, k, models.MetricCosine, nil)
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, neighbors, models.MetricCosine)
}

// hydrate resolves neighbor ids into catalog rows and attaches scores.
// Orphaned embeddings (movie deleted after embedding) are dropped with a
// warning; store errors abort.
func (r *Recommender) hydrate(ctx context.Context, neighbors []models.Neighbor, metric models.Metric) ([]models.Recommendation, error) {
	recs := make([]models.Recommendation, 0, len(neighbors))
	for _, n := range neighbors {
		movie, err := r.catalog.GetMovie(ctx, n.MovieID)
		if err != nil {
			return nil, fmt.Errorf("hydrate movie %d: %w", n.MovieID, err)
		}
		if movie == nil {
			r.logger.Warn("embedding references missing movie, dropping", "movie", n.MovieID)
			continue
		}
		recs = append(recs, models.Recommendation{
			Movie:    movie,
			Score:    metric.Score(n.Distance),
			Distance: n.Distance,
		})
	}
	return recs, nil
}

// ByGenres returns well-rated movies matching any of the given genres.
func (r *Recommender) ByGenres(ctx context.Context, genres []string, minRating float64, limit int) ([]models.Movie, error) {
	if len(genres) == 0 {
		return nil, fmt.Errorf("at least one genre is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	if minRating <= 0 {
		minRating = DefaultGenreMinRating
	}
	return r.catalog.MoviesByGenres(ctx, genres, minRating, limit)
}

// Trending returns popular, well-rated recent movies.
func (r *Recommender) Trending(ctx context.Context, minYear, limit int) ([]models.Movie, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	if minYear <= 0 {
		minYear = DefaultTrendingMinYear
	}
	return r.catalog.TrendingMovies(ctx, minYear, DefaultTrendingMinRating, limit)
}

// TopRated returns the highest rated movies with enough votes to trust
// the rating.
func (r *Recommender) TopRated(ctx context.Context, minVotes, limit int) ([]models.Movie, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	if minVotes <= 0 {
		minVotes = DefaultTopRatedMinVotes
	}
	return r.catalog.TopRatedMovies(ctx, DefaultTopRatedMinRating, minVotes, limit)
}

// Search runs a full-text search over movie titles and descriptions.
func (r *Recommender) Search(ctx context.Context, query string, limit int) ([]models.Movie, error) {
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	return r.catalog.SearchMovies(ctx, query, limit)
}

// MovieDetails fetches one movie by external id.
// Returns db.ErrMovieNotFound if it does not exist.
func (r *Recommender) MovieDetails(ctx context.Context, externalID int64) (*models.Movie, error) {
	movie, err := r.catalog.GetMovieByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, fmt.Errorf("external id %d: %w", externalID, db.ErrMovieNotFound)
	}
	return movie, nil
}
