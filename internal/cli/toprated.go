package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	topRatedMinVotes int
	topRatedLimit    int
)

var topRatedCmd = &cobra.Command{
	Use:   "top-rated",
	Short: "List the highest rated movies",
	Long: `List the highest rated movies with enough votes to trust the rating.

Examples:
  cinematch top-rated
  cinematch top-rated --min-votes 500 --limit 5`,
	Args: cobra.NoArgs,
	RunE: runTopRated,
}

func init() {
	topRatedCmd.Flags().IntVar(&topRatedMinVotes, "min-votes", 0, "minimum vote count (default 100)")
	topRatedCmd.Flags().IntVarP(&topRatedLimit, "limit", "n", 10, "max results")
}

func runTopRated(cmd *cobra.Command, args []string) error {
	rec, err := getRecommender(false)
	if err != nil {
		return err
	}

	movies, err := rec.TopRated(context.Background(), topRatedMinVotes, topRatedLimit)
	if err != nil {
		return err
	}

	if len(movies) == 0 {
		fmt.Println("No movies found.")
		return nil
	}

	fmt.Println("Top rated movies:")
	fmt.Println()
	printMovies(movies)
	return nil
}
