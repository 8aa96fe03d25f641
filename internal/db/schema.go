package db

import "fmt"

// schemaSQL builds the schema initialization SQL. The embedding dimension
// is a literal in the HNSW index definition, so it is interpolated rather
// than parameterized.
func schemaSQL(dimension int) string {
	return fmt.Sprintf(`
    -- ==========================================================================
    -- MOVIE TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS movie SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS external_id ON movie TYPE int;
    DEFINE FIELD IF NOT EXISTS imdb_code ON movie TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS title ON movie TYPE string;
    DEFINE FIELD IF NOT EXISTS title_english ON movie TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS year ON movie TYPE int;
    DEFINE FIELD IF NOT EXISTS rating ON movie TYPE float DEFAULT 0.0;
    DEFINE FIELD IF NOT EXISTS runtime ON movie TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS genres ON movie TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS description ON movie TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS language ON movie TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS mpa_rating ON movie TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS like_count ON movie TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS cast ON movie TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS small_cover_image ON movie TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS medium_cover_image ON movie TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS large_cover_image ON movie TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS yt_trailer_code ON movie TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created ON movie TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated ON movie TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS movie_external_id ON movie FIELDS external_id UNIQUE;
    DEFINE INDEX IF NOT EXISTS movie_year ON movie FIELDS year;
    DEFINE INDEX IF NOT EXISTS movie_rating ON movie FIELDS rating;
    DEFINE INDEX IF NOT EXISTS movie_genres ON movie FIELDS genres;
    DEFINE ANALYZER IF NOT EXISTS movie_analyzer TOKENIZERS class FILTERS lowercase, ascii, snowball(english);
    DEFINE INDEX IF NOT EXISTS movie_title_ft ON movie FIELDS title FULLTEXT ANALYZER movie_analyzer BM25;
    DEFINE INDEX IF NOT EXISTS movie_desc_ft ON movie FIELDS description FULLTEXT ANALYZER movie_analyzer BM25;

    -- ==========================================================================
    -- MOVIE_EMBEDDING TABLE
    -- ==========================================================================
    -- Keyed by the movie's id: one embedding per movie by construction.
    DEFINE TABLE IF NOT EXISTS movie_embedding SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS vector ON movie_embedding TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS model ON movie_embedding TYPE string;
    DEFINE FIELD IF NOT EXISTS updated ON movie_embedding TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS movie_embedding_hnsw ON movie_embedding FIELDS vector HNSW DIMENSION %d DIST COSINE TYPE F32;
`, dimension)
}
