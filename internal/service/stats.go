package service

import (
	"context"
	"fmt"

	"github.com/cinematch/cinematch/internal/db"
)

// CatalogStats summarizes catalog and embedding coverage.
type CatalogStats struct {
	Movies   int
	Embedded int
	Pending  int
	Genres   []db.GenreCount
}

// GatherStats collects catalog size, embedding coverage and the genre
// distribution.
func GatherStats(ctx context.Context, catalog CatalogStore, vectors EmbeddingStore) (*CatalogStats, error) {
	movies, err := catalog.CountMovies(ctx)
	if err != nil {
		return nil, fmt.Errorf("count movies: %w", err)
	}
	embedded, err := vectors.CountEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("count embeddings: %w", err)
	}
	genres, err := catalog.GenreCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("genre counts: %w", err)
	}

	pending := movies - embedded
	if pending < 0 {
		pending = 0
	}

	return &CatalogStats{
		Movies:   movies,
		Embedded: embedded,
		Pending:  pending,
		Genres:   genres,
	}, nil
}
