package db

import (
	"context"
	"fmt"

	"github.com/cinematch/cinematch/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// knnEF is the HNSW search effort for cosine queries, matching the recall
// the index was tuned for.
const knnEF = 40

// distanceExpr maps a metric the HNSW index cannot serve to its brute-force
// SurrealQL distance expression over the stored vector and the $query
// parameter. Every expression is ascending: smaller means more similar, so
// inner product is negated. Cosine queries go through the index instead.
func distanceExpr(metric models.Metric) (string, error) {
	switch metric {
	case models.MetricL2:
		return "vector::distance::euclidean(vector, $query)", nil
	case models.MetricInnerProduct:
		return "-(vector::dot(vector, $query))", nil
	default:
		return "", fmt.Errorf("%w: %q", models.ErrInvalidMetric, metric)
	}
}

// UpsertEmbedding stores a movie's embedding, replacing any previous vector.
// The record is keyed by the movie id, so concurrent writers converge on a
// single row regardless of interleaving.
func (c *Client) UpsertEmbedding(ctx context.Context, movieID int64, vector []float32, model string) error {
	sql := `
		UPSERT type::record("movie_embedding", $id) SET
			vector = $vector,
			model = $model,
			updated = time::now()
	`

	_, err := surrealdb.Query[any](ctx, c.db, sql, map[string]any{
		"id":     movieID,
		"vector": vector,
		"model":  model,
	})
	if err != nil {
		return fmt.Errorf("upsert embedding: %w", wrapQueryError(err))
	}
	return nil
}

// HasEmbedding reports whether a movie already has a stored embedding.
func (c *Client) HasEmbedding(ctx context.Context, movieID int64) (bool, error) {
	results, err := surrealdb.Query[[]struct {
		C int `json:"c"`
	}](ctx, c.db, `
		SELECT count() AS c FROM type::record("movie_embedding", $id)
	`, map[string]any{"id": movieID})
	if err != nil {
		return false, fmt.Errorf("check embedding exists: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return false, nil
	}
	return (*results)[0].Result[0].C > 0, nil
}

// GetEmbedding retrieves a movie's stored embedding.
// Returns nil if the movie has no embedding.
func (c *Client) GetEmbedding(ctx context.Context, movieID int64) (*models.MovieEmbedding, error) {
	results, err := surrealdb.Query[[]models.MovieEmbedding](ctx, c.db, `
		SELECT * FROM type::record("movie_embedding", $id)
	`, map[string]any{"id": movieID})
	if err != nil {
		return nil, fmt.Errorf("get embedding: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// DeleteEmbedding removes a movie's stored embedding.
// Returns true if a row was deleted (idempotent).
func (c *Client) DeleteEmbedding(ctx context.Context, movieID int64) (bool, error) {
	sql := `DELETE type::record("movie_embedding", $id) RETURN BEFORE`

	results, err := surrealdb.Query[[]models.MovieEmbedding](ctx, c.db, sql, map[string]any{
		"id": movieID,
	})
	if err != nil {
		return false, fmt.Errorf("delete embedding: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return false, nil
	}
	return len((*results)[0].Result) > 0, nil
}

// CountEmbeddings returns the number of stored embeddings.
func (c *Client) CountEmbeddings(ctx context.Context) (int, error) {
	results, err := surrealdb.Query[[]struct {
		C int `json:"c"`
	}](ctx, c.db, `SELECT count() AS c FROM movie_embedding GROUP ALL`, nil)
	if err != nil {
		return 0, fmt.Errorf("count embeddings: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].C, nil
}

// PendingMovieIDs returns ids of movies that have no stored embedding yet,
// in ascending order, capped at limit.
func (c *Client) PendingMovieIDs(ctx context.Context, limit int) ([]int64, error) {
	results, err := surrealdb.Query[[]struct {
		MovieID int64 `json:"movie_id"`
	}](ctx, c.db, `
		SELECT record::id(id) AS movie_id FROM movie
		WHERE !record::exists(type::record("movie_embedding", record::id(id)))
		ORDER BY movie_id ASC
		LIMIT $limit
	`, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("pending movie ids: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len((*results)[0].Result))
	for _, row := range (*results)[0].Result {
		ids = append(ids, row.MovieID)
	}
	return ids, nil
}

// NearestNeighbors returns the k movies closest to the query vector under
// the given metric, ordered by ascending distance with movie id as the tie
// break. If exclude is non-nil, that movie is filtered out of the results.
//
// Cosine queries run through the HNSW index with the KNN operator; the id
// tie-break is applied over the returned candidates. The index is
// single-metric, so l2 and inner product fall back to a scan with an
// explicit distance expression.
func (c *Client) NearestNeighbors(
	ctx context.Context,
	vector []float32,
	k int,
	metric models.Metric,
	exclude *int64,
) ([]models.Neighbor, error) {
	vars := map[string]any{
		"query": vector,
		"limit": k,
	}
	if exclude != nil {
		vars["exclude"] = *exclude
	}

	var sql string
	if metric == models.MetricCosine {
		// One extra candidate when excluding: the excluded movie is
		// usually the nearest neighbor of its own vector.
		candidates := k
		excludeClause := ""
		if exclude != nil {
			candidates++
			excludeClause = `AND id != type::record("movie_embedding", $exclude)`
		}
		sql = fmt.Sprintf(`
			SELECT record::id(id) AS movie_id, vector::distance::knn() AS distance
			FROM movie_embedding
			WHERE vector <|%d,%d|> $query %s
			ORDER BY distance ASC, movie_id ASC
			LIMIT $limit
		`, candidates, knnEF, excludeClause)
	} else {
		expr, err := distanceExpr(metric)
		if err != nil {
			return nil, err
		}
		excludeClause := ""
		if exclude != nil {
			excludeClause = `WHERE id != type::record("movie_embedding", $exclude)`
		}
		// Distance expressions vary per metric and cannot be parameterized.
		sql = fmt.Sprintf(`
			SELECT record::id(id) AS movie_id, %s AS distance
			FROM movie_embedding %s
			ORDER BY distance ASC, movie_id ASC
			LIMIT $limit
		`, expr, excludeClause)
	}

	results, err := surrealdb.Query[[]models.Neighbor](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("nearest neighbors: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.Neighbor{}, nil
	}
	return (*results)[0].Result, nil
}
