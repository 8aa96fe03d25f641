package db

import (
	"context"
	"fmt"

	"github.com/cinematch/cinematch/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// GenreCount represents a genre with its movie count.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// UpsertMovie creates or updates a movie row keyed by its external catalog id.
// Returns (movie, wasCreated, error) where wasCreated indicates a new row.
func (c *Client) UpsertMovie(ctx context.Context, m *models.Movie) (*models.Movie, bool, error) {
	if m.Genres == nil {
		m.Genres = []string{}
	}
	if m.Cast == nil {
		m.Cast = []string{}
	}

	existsSQL := `SELECT count() AS c FROM type::record("movie", $id)`
	existsResult, err := surrealdb.Query[[]struct {
		C int `json:"c"`
	}](ctx, c.db, existsSQL, map[string]any{"id": m.ExternalID})
	if err != nil {
		return nil, false, fmt.Errorf("check movie exists: %w", wrapQueryError(err))
	}

	wasCreated := true
	if existsResult != nil && len(*existsResult) > 0 && len((*existsResult)[0].Result) > 0 {
		wasCreated = (*existsResult)[0].Result[0].C == 0
	}

	// created is preserved on update, everything else is replaced
	sql := `
		UPSERT type::record("movie", $id) SET
			external_id = $external_id,
			imdb_code = $imdb_code,
			title = $title,
			title_english = $title_english,
			year = $year,
			rating = $rating,
			runtime = $runtime,
			genres = $genres,
			description = $description,
			language = $language,
			mpa_rating = $mpa_rating,
			like_count = $like_count,
			cast = $cast,
			small_cover_image = $small_cover_image,
			medium_cover_image = $medium_cover_image,
			large_cover_image = $large_cover_image,
			yt_trailer_code = $yt_trailer_code,
			updated = time::now(),
			created = IF created THEN created ELSE time::now() END
		RETURN AFTER
	`

	results, err := surrealdb.Query[[]models.Movie](ctx, c.db, sql, map[string]any{
		"id":                 m.ExternalID,
		"external_id":        m.ExternalID,
		"imdb_code":          m.ImdbCode,
		"title":              m.Title,
		"title_english":      m.TitleEnglish,
		"year":               m.Year,
		"rating":             m.Rating,
		"runtime":            m.Runtime,
		"genres":             m.Genres,
		"description":        m.Description,
		"language":           m.Language,
		"mpa_rating":         m.MpaRating,
		"like_count":         m.LikeCount,
		"cast":               m.Cast,
		"small_cover_image":  m.SmallCoverImage,
		"medium_cover_image": m.MediumCoverImage,
		"large_cover_image":  m.LargeCoverImage,
		"yt_trailer_code":    m.YtTrailerCode,
	})
	if err != nil {
		return nil, false, fmt.Errorf("upsert movie: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, false, fmt.Errorf("upsert movie: no result returned")
	}
	return &(*results)[0].Result[0], wasCreated, nil
}

// GetMovie retrieves a movie by its internal id.
// Returns nil if not found.
func (c *Client) GetMovie(ctx context.Context, id int64) (*models.Movie, error) {
	results, err := surrealdb.Query[[]models.Movie](ctx, c.db, `
		SELECT * FROM type::record("movie", $id)
	`, map[string]any{"id": id})

	if err != nil {
		return nil, fmt.Errorf("get movie: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// GetMovieByExternalID retrieves a movie by its external catalog id.
// Returns nil if not found.
func (c *Client) GetMovieByExternalID(ctx context.Context, externalID int64) (*models.Movie, error) {
	results, err := surrealdb.Query[[]models.Movie](ctx, c.db, `
		SELECT * FROM movie WHERE external_id = $external_id LIMIT 1
	`, map[string]any{"external_id": externalID})

	if err != nil {
		return nil, fmt.Errorf("get movie by external id: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// DeleteMovie deletes a movie and its embedding.
// Returns true if the movie existed (idempotent).
func (c *Client) DeleteMovie(ctx context.Context, id int64) (bool, error) {
	sql := `
		DELETE type::record("movie_embedding", $id);
		DELETE type::record("movie", $id) RETURN BEFORE;
	`

	results, err := surrealdb.Query[[]models.Movie](ctx, c.db, sql, map[string]any{
		"id": id,
	})
	if err != nil {
		return false, fmt.Errorf("delete movie: %w", wrapQueryError(err))
	}

	// The second statement's RETURN BEFORE carries the deleted rows.
	if results == nil || len(*results) < 2 {
		return false, nil
	}
	return len((*results)[1].Result) > 0, nil
}

// ListMovies returns a page of the catalog ordered by id. Used by the
// generation pipeline to walk the catalog in batches.
func (c *Client) ListMovies(ctx context.Context, start, limit int) ([]models.Movie, error) {
	sql := `SELECT * FROM movie ORDER BY id ASC LIMIT $limit START $start`

	results, err := surrealdb.Query[[]models.Movie](ctx, c.db, sql, map[string]any{
		"start": start,
		"limit": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.Movie{}, nil
	}
	return (*results)[0].Result, nil
}

// SearchMovies performs full-text search over title and description.
func (c *Client) SearchMovies(ctx context.Context, query string, limit int) ([]models.Movie, error) {
	// title is FT index 0, description is FT index 1
	sql := `
		SELECT * FROM movie
		WHERE title @0@ $q OR description @1@ $q
		ORDER BY rating DESC
		LIMIT $limit
	`

	results, err := surrealdb.Query[[]models.Movie](ctx, c.db, sql, map[string]any{
		"q":     query,
		"limit": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search movies: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.Movie{}, nil
	}
	return (*results)[0].Result, nil
}

// MoviesByGenres returns movies matching any of the given genres, filtered
// by a minimum rating and ordered by rating.
func (c *Client) MoviesByGenres(ctx context.Context, genres []string, minRating float64, limit int) ([]models.Movie, error) {
	sql := `
		SELECT * FROM movie
		WHERE genres CONTAINSANY $genres AND rating >= $min_rating
		ORDER BY rating DESC
		LIMIT $limit
	`

	results, err := surrealdb.Query[[]models.Movie](ctx, c.db, sql, map[string]any{
		"genres":     genres,
		"min_rating": minRating,
		"limit":      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("movies by genres: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.Movie{}, nil
	}
	return (*results)[0].Result, nil
}

// TrendingMovies returns well-rated recent movies ordered by popularity.
func (c *Client) TrendingMovies(ctx context.Context, minYear int, minRating float64, limit int) ([]models.Movie, error) {
	sql := `
		SELECT * FROM movie
		WHERE year >= $min_year AND rating >= $min_rating
		ORDER BY like_count DESC
		LIMIT $limit
	`

	results, err := surrealdb.Query[[]models.Movie](ctx, c.db, sql, map[string]any{
		"min_year":   minYear,
		"min_rating": minRating,
		"limit":      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("trending movies: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.Movie{}, nil
	}
	return (*results)[0].Result, nil
}

// TopRatedMovies returns the highest rated movies above a rating floor with
// at least minVotes likes, so a single enthusiastic vote cannot top the chart.
func (c *Client) TopRatedMovies(ctx context.Context, minRating float64, minVotes int, limit int) ([]models.Movie, error) {
	sql := `
		SELECT * FROM movie
		WHERE rating >= $min_rating AND like_count >= $min_votes
		ORDER BY rating DESC
		LIMIT $limit
	`

	results, err := surrealdb.Query[[]models.Movie](ctx, c.db, sql, map[string]any{
		"min_rating": minRating,
		"min_votes":  minVotes,
		"limit":      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("top rated movies: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.Movie{}, nil
	}
	return (*results)[0].Result, nil
}

// CountMovies returns the total number of movies in the catalog.
func (c *Client) CountMovies(ctx context.Context) (int, error) {
	results, err := surrealdb.Query[[]struct {
		C int `json:"c"`
	}](ctx, c.db, `SELECT count() AS c FROM movie GROUP ALL`, nil)
	if err != nil {
		return 0, fmt.Errorf("count movies: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].C, nil
}

// GenreCounts returns each genre with the number of movies carrying it,
// most common first.
func (c *Client) GenreCounts(ctx context.Context) ([]GenreCount, error) {
	sql := `
		SELECT genre, count() AS count FROM (
			SELECT array::flatten(genres) AS genre FROM movie
		) SPLIT genre GROUP BY genre ORDER BY count DESC
	`

	results, err := surrealdb.Query[[]GenreCount](ctx, c.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("genre counts: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []GenreCount{}, nil
	}
	return (*results)[0].Result, nil
}
