package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cinematch/cinematch/internal/metrics"
	"github.com/cinematch/cinematch/internal/service"
)

var (
	generateConcurrent int
	generateLimit      int
	generateBatchSize  int
	generateForce      bool
	generateNoProgress bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate embeddings for movies that do not have one",
	Long: `Generate embeddings for every movie in the catalog.

Movies that already have an embedding are skipped, so runs are resumable
and any number of processes can share the work. Use --force to regenerate
everything, for example after switching embedding models.

Examples:
  cinematch generate
  cinematch generate --concurrent 20 --limit 500
  cinematch generate --force --no-progress`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVarP(&generateConcurrent, "concurrent", "c", 0, "max concurrent embedding requests")
	generateCmd.Flags().IntVar(&generateLimit, "limit", 0, "stop after this many movies (0 = whole catalog)")
	generateCmd.Flags().IntVar(&generateBatchSize, "batch-size", 0, "catalog page size")
	generateCmd.Flags().BoolVar(&generateForce, "force", false, "regenerate embeddings that already exist")
	generateCmd.Flags().BoolVar(&generateNoProgress, "no-progress", false, "disable the interactive progress display")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	emb, err := getEmbedder()
	if err != nil {
		return err
	}

	concurrent := generateConcurrent
	if concurrent <= 0 {
		concurrent = cfg.MaxConcurrent
	}
	batchSize := generateBatchSize
	if batchSize <= 0 {
		batchSize = cfg.BatchSize
	}

	gen := service.NewGenerator(dbClient, dbClient, emb, collector, logger)
	counters := &service.Progress{}
	opts := service.GenerateOptions{
		Concurrency: concurrent,
		Limit:       generateLimit,
		BatchSize:   batchSize,
		Force:       generateForce,
		Progress:    counters,
	}

	if generateNoProgress {
		result, err := gen.Run(context.Background(), opts)
		if err != nil {
			return err
		}
		printGenerateSummary(result)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan runDoneMsg, 1)
	go func() {
		result, err := gen.Run(ctx, opts)
		done <- runDoneMsg{result: result, err: err}
	}()

	_, err = RunGenerateProgress(counters, done, cancel)
	if errors.Is(err, context.Canceled) {
		// User cancellation, the partial summary is already on screen
		return nil
	}
	if err != nil {
		return err
	}
	if verbose {
		printTimings(collector.Snapshot())
	}
	return nil
}

func printGenerateSummary(result *service.GenerateResult) {
	fmt.Printf("Run %s finished in %s\n", result.RunID, result.Duration.Round(time.Millisecond))
	fmt.Printf("  Generated: %d\n", result.Generated)
	fmt.Printf("  Skipped:   %d\n", result.Skipped)
	fmt.Printf("  Failed:    %d\n", result.Failed)
	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("  • %s\n", e)
		}
	}
	if verbose {
		printTimings(collector.Snapshot())
	}
}

func printTimings(snap metrics.Snapshot) {
	fmt.Println("\nTimings:")
	printTiming("embedding", snap.Embedding)
	printTiming("store write", snap.StoreWrite)
	printTiming("vector search", snap.VectorSearch)
	printTiming("db query", snap.DBQuery)
}

func printTiming(name string, op *metrics.OperationSnapshot) {
	if op == nil {
		return
	}
	fmt.Printf("  %-13s %d calls, avg %.0fms (min %dms, max %dms)\n",
		name, op.Count, op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}
