package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over titles and descriptions",
	Long: `Search movie titles and descriptions with full-text matching.

This is plain keyword search over the catalog. Use 'similar' for semantic
matching against the embedding store.

Examples:
  cinematch search "inception"
  cinematch search "heist" --limit 5`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "max results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	rec, err := getRecommender(false)
	if err != nil {
		return err
	}

	movies, err := rec.Search(context.Background(), args[0], searchLimit)
	if err != nil {
		return err
	}

	if len(movies) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(movies))
	printMovies(movies)
	return nil
}
