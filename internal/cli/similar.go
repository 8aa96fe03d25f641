package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var similarLimit int

var similarCmd = &cobra.Command{
	Use:   "similar <description>",
	Short: "Find movies matching a free-text description",
	Long: `Find movies semantically close to a free-text description.

The description is embedded with the same model as the catalog and matched
against every stored movie vector by cosine distance.

Examples:
  cinematch similar "space heist with a twist ending"
  cinematch similar "feel-good sports underdog story" --limit 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().IntVarP(&similarLimit, "limit", "n", 10, "max results")
}

func runSimilar(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	rec, err := getRecommender(true)
	if err != nil {
		return err
	}

	recs, err := rec.ByText(context.Background(), text, similarLimit)
	if err != nil {
		return err
	}

	if len(recs) == 0 {
		fmt.Println("No matches found. Run 'cinematch generate' first?")
		return nil
	}

	fmt.Printf("Movies matching %q:\n\n", text)
	printRecommendations(recs)
	return nil
}
