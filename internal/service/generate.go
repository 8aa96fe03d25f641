package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/cinematch/cinematch/internal/embedding"
	"github.com/cinematch/cinematch/internal/gate"
	"github.com/cinematch/cinematch/internal/metrics"
	"github.com/cinematch/cinematch/internal/models"
)

// Generator walks the catalog and stores an embedding per movie. Runs are
// resumable: movies that already have an embedding are skipped, so any
// number of processes can share the work without coordination beyond the
// store's insert-or-replace semantics.
type Generator struct {
	catalog   CatalogStore
	vectors   EmbeddingStore
	embedder  embedding.Embedder
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewGenerator creates an embedding generator.
func NewGenerator(catalog CatalogStore, vectors EmbeddingStore, embedder embedding.Embedder, collector *metrics.Collector, log *slog.Logger) *Generator {
	if collector == nil {
		collector = metrics.NewCollector()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		catalog:   catalog,
		vectors:   vectors,
		embedder:  embedder,
		collector: collector,
		logger:    log,
	}
}

// GenerateOptions configures an embedding generation run.
type GenerateOptions struct {
	// Concurrency bounds simultaneous embedding requests (default 10).
	Concurrency int
	// Limit caps the number of movies visited. 0 means the whole catalog.
	Limit int
	// BatchSize is the catalog page size (default 1000).
	BatchSize int
	// Force regenerates embeddings even for movies that already have one.
	Force bool
	// Progress, if set, receives live counter updates for display.
	Progress *Progress
}

// GenerateResult summarizes a generation run.
type GenerateResult struct {
	RunID     string
	Total     int
	Generated int
	Skipped   int
	Failed    int
	Errors    []string
	Duration  time.Duration
}

// Progress carries live counters of a running generation.
// All methods are safe for concurrent use.
type Progress struct {
	total     atomic.Int32
	processed atomic.Int32
	generated atomic.Int32
	skipped   atomic.Int32
	failed    atomic.Int32
}

// ProgressSnapshot is a point-in-time copy of the counters.
type ProgressSnapshot struct {
	Total     int
	Processed int
	Generated int
	Skipped   int
	Failed    int
}

// Snapshot returns the current counter values.
func (p *Progress) Snapshot() ProgressSnapshot {
	return ProgressSnapshot{
		Total:     int(p.total.Load()),
		Processed: int(p.processed.Load()),
		Generated: int(p.generated.Load()),
		Skipped:   int(p.skipped.Load()),
		Failed:    int(p.failed.Load()),
	}
}

// Run generates embeddings for every movie in the catalog that needs one.
// A movie counts as generated only after its vector is durably stored.
// Returns the partial result together with the context error when cancelled.
func (g *Generator) Run(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}
	progress := opts.Progress
	if progress == nil {
		progress = &Progress{}
	}

	requestGate, err := gate.New(concurrency)
	if err != nil {
		return nil, err
	}

	var total int
	err = g.collector.Time(metrics.OpDBQuery, func() error {
		var err error
		total, err = g.catalog.CountMovies(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("count movies: %w", err)
	}
	if opts.Limit > 0 && opts.Limit < total {
		total = opts.Limit
	}
	progress.total.Store(int32(total))

	runID := uuid.New().String()[:8] // Short ID for convenience
	start := time.Now()
	g.logger.Info("starting embedding generation",
		"run_id", runID, "total", total, "concurrency", concurrency,
		"force", opts.Force, "model", g.embedder.Model())

	var (
		errorsMu sync.Mutex
		errs     []string
	)
	// Run summaries always report the external catalog id, the one users
	// see and pass to other commands.
	addError := func(externalID int64, err error) {
		errorsMu.Lock()
		errs = append(errs, fmt.Sprintf("movie %d: %v", externalID, err))
		errorsMu.Unlock()
	}

	movieChan := make(chan models.Movie, batchSize)
	var wg sync.WaitGroup

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for movie := range movieChan {
				if ctx.Err() != nil {
					return
				}
				g.processMovie(ctx, workerID, &movie, opts.Force, requestGate, progress, addError)
			}
		}(i)
	}

	// Producer: page through the catalog
	var produceErr error
	sent := 0
produce:
	for offset := 0; ; offset += batchSize {
		var page []models.Movie
		err := g.collector.Time(metrics.OpDBQuery, func() error {
			var err error
			page, err = g.catalog.ListMovies(ctx, offset, batchSize)
			return err
		})
		if err != nil {
			produceErr = fmt.Errorf("list movies: %w", err)
			break
		}
		if len(page) == 0 {
			break
		}
		for _, movie := range page {
			if opts.Limit > 0 && sent >= opts.Limit {
				break produce
			}
			select {
			case movieChan <- movie:
				sent++
			case <-ctx.Done():
				break produce
			}
		}
	}
	close(movieChan)
	wg.Wait()

	snap := progress.Snapshot()
	result := &GenerateResult{
		RunID:     runID,
		Total:     total,
		Generated: snap.Generated,
		Skipped:   snap.Skipped,
		Failed:    snap.Failed,
		Errors:    errs,
		Duration:  time.Since(start),
	}

	g.logger.Info("embedding generation finished",
		"run_id", runID,
		"generated", result.Generated,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"duration", result.Duration)

	if produceErr != nil {
		return result, produceErr
	}
	return result, ctx.Err()
}

// processMovie handles one catalog entry. Failures are counted and recorded,
// never fatal: the rest of the run continues.
func (g *Generator) processMovie(
	ctx context.Context,
	workerID int,
	movie *models.Movie,
	force bool,
	requestGate *gate.Gate,
	progress *Progress,
	addError func(int64, error),
) {
	defer progress.processed.Add(1)

	movieID, err := models.RecordIDInt64(movie.ID)
	if err != nil {
		progress.failed.Add(1)
		addError(movie.ExternalID, err)
		return
	}

	if !force {
		exists, err := g.vectors.HasEmbedding(ctx, movieID)
		if err != nil {
			progress.failed.Add(1)
			addError(movie.ExternalID, err)
			return
		}
		if exists {
			progress.skipped.Add(1)
			g.logger.Debug("embedding exists, skipping", "worker", workerID, "movie", movieID)
			return
		}
	}

	text := models.EmbeddingText(movie)
	if text == "" {
		progress.skipped.Add(1)
		g.logger.Warn("movie has no embeddable text, skipping", "movie", movieID)
		return
	}

	if err := requestGate.Acquire(ctx); err != nil {
		progress.failed.Add(1)
		addError(movie.ExternalID, err)
		return
	}
	var vector []float32
	embedErr := g.collector.Time(metrics.OpEmbedding, func() error {
		var err error
		vector, err = g.embedder.Embed(ctx, text)
		return err
	})
	requestGate.Release()

	if embedErr != nil {
		progress.failed.Add(1)
		addError(movie.ExternalID, embedErr)
		g.logger.Warn("embedding failed", "worker", workerID, "movie", movieID, "error", embedErr)
		return
	}

	storeErr := g.collector.Time(metrics.OpStoreWrite, func() error {
		return g.vectors.UpsertEmbedding(ctx, movieID, vector, g.embedder.Model())
	})
	if storeErr != nil {
		progress.failed.Add(1)
		addError(movie.ExternalID, storeErr)
		g.logger.Warn("embedding store failed", "worker", workerID, "movie", movieID, "error", storeErr)
		return
	}

	progress.generated.Add(1)
	g.logger.Debug("embedding stored", "worker", workerID, "movie", movieID)
}
