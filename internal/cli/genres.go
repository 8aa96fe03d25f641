package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	genresMinRating float64
	genresLimit     int
)

var genresCmd = &cobra.Command{
	Use:   "genres <genre>...",
	Short: "List well-rated movies in the given genres",
	Long: `List movies matching any of the given genres, best rated first.

Movies below the rating floor are filtered out.

Examples:
  cinematch genres Horror
  cinematch genres Action Sci-Fi --min-rating 7.5 --limit 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenres,
}

func init() {
	genresCmd.Flags().Float64Var(&genresMinRating, "min-rating", 0, "minimum rating (default 6.0)")
	genresCmd.Flags().IntVarP(&genresLimit, "limit", "n", 10, "max results")
}

func runGenres(cmd *cobra.Command, args []string) error {
	rec, err := getRecommender(false)
	if err != nil {
		return err
	}

	movies, err := rec.ByGenres(context.Background(), args, genresMinRating, genresLimit)
	if err != nil {
		return err
	}

	if len(movies) == 0 {
		fmt.Println("No movies found.")
		return nil
	}

	fmt.Printf("Top %s movies:\n\n", strings.Join(args, "/"))
	printMovies(movies)
	return nil
}
