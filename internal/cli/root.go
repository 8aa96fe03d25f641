// Package cli provides the command-line interface for cinematch.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cinematch/cinematch/internal/config"
	"github.com/cinematch/cinematch/internal/db"
	"github.com/cinematch/cinematch/internal/embedding"
	"github.com/cinematch/cinematch/internal/metrics"
	"github.com/cinematch/cinematch/internal/service"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config, logger and db client
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
	dbClient   *db.Client
	collector  *metrics.Collector

	// Lazy-initialized embedder
	embedder *embedding.OllamaClient
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cinematch",
	Short: "Semantic movie recommendations",
	Long: `Cinematch recommends movies by meaning, not just metadata.

It embeds every movie's title, genres, description and cast with a local
Ollama model, stores the vectors in SurrealDB, and answers "more like this"
queries with nearest-neighbor search under cosine, euclidean or inner
product distance.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		logger, logCleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		collector = metrics.NewCollector()

		// Connect to database
		ctx := context.Background()
		dbCfg := db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}

		dbClient, err = db.NewClient(ctx, dbCfg, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		// Initialize schema
		if err := dbClient.InitSchema(ctx, cfg.EmbeddingDimension); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		// Close database connection
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if logCleanup != nil {
			_ = logCleanup()
		}
	},
}

// getEmbedder lazily creates the Ollama embedding client. Commands that
// never embed (browse, search, stats) skip the Ollama dependency entirely.
func getEmbedder() (embedding.Embedder, error) {
	if embedder == nil {
		var err error
		embedder, err = embedding.NewOllamaClient(embedding.Config{
			Host:      cfg.OllamaHost,
			Model:     cfg.EmbeddingModel,
			Dimension: cfg.EmbeddingDimension,
			Timeout:   cfg.EmbeddingTimeout,
			Attempts:  cfg.EmbeddingAttempts,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("init embedder: %w", err)
		}
	}
	return embedder, nil
}

// getRecommender creates the recommendation service.
// Commands that embed ad hoc text pass requireEmbedder=true.
func getRecommender(requireEmbedder bool) (*service.Recommender, error) {
	var emb embedding.Embedder
	if requireEmbedder {
		var err error
		emb, err = getEmbedder()
		if err != nil {
			return nil, err
		}
	}
	engine := service.NewSimilarityEngine(dbClient, cfg.MaxResults, collector, logger)
	return service.NewRecommender(dbClient, engine, emb, logger), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(similarCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(movieCmd)
	rootCmd.AddCommand(genresCmd)
	rootCmd.AddCommand(trendingCmd)
	rootCmd.AddCommand(topRatedCmd)
	rootCmd.AddCommand(statsCmd)
}
