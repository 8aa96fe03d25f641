package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	trendingMinYear int
	trendingLimit   int
)

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "List popular recent movies",
	Long: `List well-rated recent movies ordered by popularity.

Examples:
  cinematch trending
  cinematch trending --min-year 2023 --limit 5`,
	Args: cobra.NoArgs,
	RunE: runTrending,
}

func init() {
	trendingCmd.Flags().IntVar(&trendingMinYear, "min-year", 0, "earliest release year (default 2020)")
	trendingCmd.Flags().IntVarP(&trendingLimit, "limit", "n", 10, "max results")
}

func runTrending(cmd *cobra.Command, args []string) error {
	rec, err := getRecommender(false)
	if err != nil {
		return err
	}

	movies, err := rec.Trending(context.Background(), trendingMinYear, trendingLimit)
	if err != nil {
		return err
	}

	if len(movies) == 0 {
		fmt.Println("No movies found.")
		return nil
	}

	fmt.Println("Trending movies:")
	fmt.Println()
	printMovies(movies)
	return nil
}
