package cli

import (
	"fmt"
	"strings"

	"github.com/cinematch/cinematch/internal/models"
)

// printMovies renders a numbered movie list.
func printMovies(movies []models.Movie) {
	for i, m := range movies {
		fmt.Printf("%d. %s\n", i+1, movieLine(&m))
		printMovieDetail(&m)
		fmt.Println()
	}
}

// printRecommendations renders a numbered list with similarity scores.
func printRecommendations(recs []models.Recommendation) {
	for i, r := range recs {
		fmt.Printf("%d. %s  score %.3f\n", i+1, movieLine(r.Movie), r.Score)
		printMovieDetail(r.Movie)
		fmt.Println()
	}
}

// movieLine is the one-line header: title, year and rating.
func movieLine(m *models.Movie) string {
	line := m.Title
	if m.Year > 0 {
		line += fmt.Sprintf(" (%d)", m.Year)
	}
	if m.Rating > 0 {
		line += fmt.Sprintf("  %.1f/10", m.Rating)
	}
	return line
}

func printMovieDetail(m *models.Movie) {
	if len(m.Genres) > 0 {
		fmt.Printf("   %s\n", strings.Join(m.Genres, ", "))
	}
	if m.Description != nil && *m.Description != "" {
		fmt.Printf("   %s\n", truncate(*m.Description, 160))
	}
	if verbose {
		fmt.Printf("   id: %d", m.ExternalID)
		if m.ImdbCode != nil && *m.ImdbCode != "" {
			fmt.Printf("  imdb: %s", *m.ImdbCode)
		}
		fmt.Println()
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
