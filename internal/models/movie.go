// Package models defines data structures for the cinematch catalog and
// similarity layer.
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// MaxEmbeddingTextLen bounds the text handed to the embedding service.
// Embedding models have context limits; anything past a few thousand
// characters adds latency without improving the vector.
const MaxEmbeddingTextLen = 4000

// Movie represents one catalog entry. Rows are created by catalog ingestion
// and are read-only from the embedding and recommendation layers.
type Movie struct {
	ID               surrealmodels.RecordID `json:"id"`
	ExternalID       int64                  `json:"external_id"`
	ImdbCode         *string                `json:"imdb_code,omitempty"`
	Title            string                 `json:"title"`
	TitleEnglish     *string                `json:"title_english,omitempty"`
	Year             int                    `json:"year,omitempty"`
	Rating           float64                `json:"rating,omitempty"`
	Runtime          int                    `json:"runtime,omitempty"`
	Genres           []string               `json:"genres,omitempty"`
	Description      *string                `json:"description,omitempty"`
	Language         *string                `json:"language,omitempty"`
	MpaRating        *string                `json:"mpa_rating,omitempty"`
	LikeCount        int                    `json:"like_count,omitempty"`
	Cast             []string               `json:"cast,omitempty"`
	SmallCoverImage  *string                `json:"small_cover_image,omitempty"`
	MediumCoverImage *string                `json:"medium_cover_image,omitempty"`
	LargeCoverImage  *string                `json:"large_cover_image,omitempty"`
	YtTrailerCode    *string                `json:"yt_trailer_code,omitempty"`
	Created          time.Time              `json:"created,omitempty"`
	Updated          time.Time              `json:"updated,omitempty"`
}

// MovieEmbedding is the stored vector for one movie, keyed by the movie's
// internal id. At most one embedding exists per movie; writes go through
// insert-or-replace so a racing writer can only overwrite, never duplicate.
type MovieEmbedding struct {
	ID      surrealmodels.RecordID `json:"id"`
	Vector  []float32              `json:"vector"`
	Model   string                 `json:"model,omitempty"`
	Updated time.Time              `json:"updated,omitempty"`
}

// Neighbor is one row of a nearest-neighbor query: a movie id and its raw
// distance under the metric the query ran with.
type Neighbor struct {
	MovieID  int64   `json:"movie_id"`
	Distance float64 `json:"distance"`
}

// Recommendation pairs a hydrated movie with its similarity score and the
// raw distance it was ranked by.
type Recommendation struct {
	Movie    *Movie  `json:"movie"`
	Score    float64 `json:"score"`
	Distance float64 `json:"distance"`
}

// EmbeddingText builds the deterministic text representation a movie is
// embedded under. Two workers racing on the same movie therefore compute
// interchangeable vectors, which is what makes last-writer-wins safe.
func EmbeddingText(m *Movie) string {
	var b strings.Builder

	if m.Title != "" {
		if m.Year > 0 {
			fmt.Fprintf(&b, "Title: %s (%d)", m.Title, m.Year)
		} else {
			fmt.Fprintf(&b, "Title: %s", m.Title)
		}
	}
	if len(m.Genres) > 0 {
		fmt.Fprintf(&b, " Genres: %s", strings.Join(m.Genres, ", "))
	}
	if m.Description != nil && *m.Description != "" {
		fmt.Fprintf(&b, " Description: %s", *m.Description)
	}
	if len(m.Cast) > 0 {
		fmt.Fprintf(&b, " Cast: %s", strings.Join(m.Cast, ", "))
	}

	text := strings.TrimSpace(b.String())
	if len(text) > MaxEmbeddingTextLen {
		// Never cut a multi-byte rune in half
		cut := MaxEmbeddingTextLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}
