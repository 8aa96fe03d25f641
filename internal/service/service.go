// Package service provides business logic for cinematch operations:
// embedding generation, similarity queries and recommendations.
package service

import (
	"context"
	"errors"

	"github.com/cinematch/cinematch/internal/db"
	"github.com/cinematch/cinematch/internal/models"
)

// ErrInvalidLimit is returned for a non-positive result limit.
var ErrInvalidLimit = errors.New("invalid result limit")

// CatalogStore is the movie catalog surface the services depend on.
// *db.Client is the production implementation.
type CatalogStore interface {
	GetMovie(ctx context.Context, id int64) (*models.Movie, error)
	GetMovieByExternalID(ctx context.Context, externalID int64) (*models.Movie, error)
	ListMovies(ctx context.Context, start, limit int) ([]models.Movie, error)
	SearchMovies(ctx context.Context, query string, limit int) ([]models.Movie, error)
	MoviesByGenres(ctx context.Context, genres []string, minRating float64, limit int) ([]models.Movie, error)
	TrendingMovies(ctx context.Context, minYear int, minRating float64, limit int) ([]models.Movie, error)
	TopRatedMovies(ctx context.Context, minRating float64, minVotes int, limit int) ([]models.Movie, error)
	CountMovies(ctx context.Context) (int, error)
	GenreCounts(ctx context.Context) ([]db.GenreCount, error)
}

// EmbeddingStore is the vector storage surface the services depend on.
// *db.Client is the production implementation.
type EmbeddingStore interface {
	UpsertEmbedding(ctx context.Context, movieID int64, vector []float32, model string) error
	HasEmbedding(ctx context.Context, movieID int64) (bool, error)
	GetEmbedding(ctx context.Context, movieID int64) (*models.MovieEmbedding, error)
	CountEmbeddings(ctx context.Context) (int, error)
	NearestNeighbors(ctx context.Context, vector []float32, k int, metric models.Metric, exclude *int64) ([]models.Neighbor, error)
}

var (
	_ CatalogStore   = (*db.Client)(nil)
	_ EmbeddingStore = (*db.Client)(nil)
)
