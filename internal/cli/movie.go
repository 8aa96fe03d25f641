package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cinematch/cinematch/internal/models"
)

var movieCmd = &cobra.Command{
	Use:   "movie <movie-id>",
	Short: "Show details for one movie",
	Long: `Show full catalog details for a movie, looked up by its external id,
including whether an embedding exists for it.

Example:
  cinematch movie 10128`,
	Args: cobra.ExactArgs(1),
	RunE: runMovie,
}

func runMovie(cmd *cobra.Command, args []string) error {
	externalID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid movie id %q", args[0])
	}

	ctx := context.Background()
	rec, err := getRecommender(false)
	if err != nil {
		return err
	}

	movie, err := rec.MovieDetails(ctx, externalID)
	if err != nil {
		return err
	}

	fmt.Println(movieLine(movie))
	printField("Genres", strings.Join(movie.Genres, ", "))
	if movie.Runtime > 0 {
		printField("Runtime", fmt.Sprintf("%d min", movie.Runtime))
	}
	printStrPtr("Language", movie.Language)
	printStrPtr("MPA rating", movie.MpaRating)
	if movie.LikeCount > 0 {
		printField("Likes", strconv.Itoa(movie.LikeCount))
	}
	printField("Cast", strings.Join(movie.Cast, ", "))
	printStrPtr("IMDb", movie.ImdbCode)
	if movie.Description != nil && *movie.Description != "" {
		fmt.Printf("\n%s\n", *movie.Description)
	}

	movieID, err := models.RecordIDInt64(movie.ID)
	if err != nil {
		return err
	}
	emb, err := dbClient.GetEmbedding(ctx, movieID)
	if err != nil {
		return err
	}
	if emb != nil {
		fmt.Printf("\nEmbedded with %s (%d dimensions)\n", emb.Model, len(emb.Vector))
	} else {
		fmt.Println("\nNot embedded yet. Run 'cinematch generate'.")
	}
	return nil
}

func printField(name, value string) {
	if value == "" {
		return
	}
	fmt.Printf("  %-11s %s\n", name+":", value)
}

func printStrPtr(name string, value *string) {
	if value == nil {
		return
	}
	printField(name, *value)
}
