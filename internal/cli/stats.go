package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cinematch/cinematch/internal/service"
)

var statsPending int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog and embedding coverage",
	Long: `Show catalog size, embedding coverage and the genre distribution.

Examples:
  cinematch stats
  cinematch stats --pending 20`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsPending, "pending", 0, "also list up to N movie ids that lack an embedding")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	stats, err := service.GatherStats(ctx, dbClient, dbClient)
	if err != nil {
		return err
	}

	var pct float64
	if stats.Movies > 0 {
		pct = 100 * float64(stats.Embedded) / float64(stats.Movies)
	}

	fmt.Printf("Movies:    %d\n", stats.Movies)
	fmt.Printf("Embedded:  %d (%.1f%%)\n", stats.Embedded, pct)
	fmt.Printf("Pending:   %d\n", stats.Pending)

	if len(stats.Genres) > 0 {
		fmt.Println("\nGenres:")
		for i, g := range stats.Genres {
			if i >= 10 && !verbose {
				fmt.Printf("  ... and %d more\n", len(stats.Genres)-i)
				break
			}
			fmt.Printf("  %-14s %d\n", g.Genre, g.Count)
		}
	}

	if statsPending > 0 {
		ids, err := dbClient.PendingMovieIDs(ctx, statsPending)
		if err != nil {
			return err
		}
		if len(ids) > 0 {
			fmt.Println("\nPending movie ids:")
			for _, id := range ids {
				fmt.Printf("  %d\n", id)
			}
		}
	}
	return nil
}
