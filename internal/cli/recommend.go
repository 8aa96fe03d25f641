package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cinematch/cinematch/internal/db"
	"github.com/cinematch/cinematch/internal/models"
)

var (
	recommendLimit  int
	recommendMetric string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <movie-id>",
	Short: "Recommend movies similar to a movie",
	Long: `Recommend the movies most similar to the given movie.

The movie is looked up by its external catalog id and ranked against every
embedded movie under the chosen distance metric. The source movie never
appears in its own results.

Examples:
  cinematch recommend 10128
  cinematch recommend 10128 --limit 5 --metric l2`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "n", 10, "max results")
	recommendCmd.Flags().StringVarP(&recommendMetric, "metric", "m", "cosine", "distance metric: cosine, l2, inner_product")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	externalID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid movie id %q", args[0])
	}

	metric, err := models.ParseMetric(recommendMetric)
	if err != nil {
		return err
	}

	rec, err := getRecommender(false)
	if err != nil {
		return err
	}

	recs, err := rec.ByExternalID(context.Background(), externalID, recommendLimit, metric)
	if errors.Is(err, db.ErrEmbeddingNotFound) {
		return fmt.Errorf("movie %d has no embedding yet, run 'cinematch generate' first", externalID)
	}
	if err != nil {
		return err
	}

	if len(recs) == 0 {
		fmt.Println("No recommendations found.")
		return nil
	}

	fmt.Printf("Movies similar to %d:\n\n", externalID)
	printRecommendations(recs)
	return nil
}
