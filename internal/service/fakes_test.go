package service

import (
	"context"
	"math"
	"sort"
	"sync"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/cinematch/cinematch/internal/db"
	"github.com/cinematch/cinematch/internal/models"
)

// fakeStore is an in-memory CatalogStore and EmbeddingStore with real
// distance math, so similarity results can be checked analytically.
type fakeStore struct {
	mu         sync.Mutex
	movies     map[int64]models.Movie
	embeddings map[int64]models.MovieEmbedding

	// Error injection
	upsertErr error

	// Recorded calls
	lastK         int
	lastMetric    models.Metric
	lastGenreArgs []any
	lastTopArgs   []any
	lastTrendArgs []any
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		movies:     make(map[int64]models.Movie),
		embeddings: make(map[int64]models.MovieEmbedding),
	}
}

func (f *fakeStore) addMovie(id int64, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.movies[id] = models.Movie{
		ID:         models.MovieRecordID(id),
		ExternalID: id,
		Title:      title,
		Year:       2020,
		Rating:     7.0,
	}
}

// addMovieWithRecordID plants a movie whose record id is not the usual
// integer, as a decoder handing back an unexpected id type would.
func (f *fakeStore) addMovieWithRecordID(externalID int64, recordID any, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.movies[externalID] = models.Movie{
		ID:         surrealmodels.RecordID{Table: "movie", ID: recordID},
		ExternalID: externalID,
		Title:      title,
		Year:       2020,
		Rating:     7.0,
	}
}

func (f *fakeStore) addEmbedding(id int64, vector []float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeddings[id] = models.MovieEmbedding{
		ID:     models.EmbeddingRecordID(id),
		Vector: vector,
		Model:  "mock-embed",
	}
}

func (f *fakeStore) sortedIDs() []int64 {
	ids := make([]int64, 0, len(f.movies))
	for id := range f.movies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CatalogStore

func (f *fakeStore) GetMovie(ctx context.Context, id int64) (*models.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.movies[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (f *fakeStore) GetMovieByExternalID(ctx context.Context, externalID int64) (*models.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.movies {
		if m.ExternalID == externalID {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListMovies(ctx context.Context, start, limit int) ([]models.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := f.sortedIDs()
	if start >= len(ids) {
		return nil, nil
	}
	end := start + limit
	if end > len(ids) {
		end = len(ids)
	}
	out := make([]models.Movie, 0, end-start)
	for _, id := range ids[start:end] {
		out = append(out, f.movies[id])
	}
	return out, nil
}

func (f *fakeStore) SearchMovies(ctx context.Context, query string, limit int) ([]models.Movie, error) {
	return nil, nil
}

func (f *fakeStore) MoviesByGenres(ctx context.Context, genres []string, minRating float64, limit int) ([]models.Movie, error) {
	f.mu.Lock()
	f.lastGenreArgs = []any{genres, minRating, limit}
	f.mu.Unlock()
	return nil, nil
}

func (f *fakeStore) TrendingMovies(ctx context.Context, minYear int, minRating float64, limit int) ([]models.Movie, error) {
	f.mu.Lock()
	f.lastTrendArgs = []any{minYear, minRating, limit}
	f.mu.Unlock()
	return nil, nil
}

func (f *fakeStore) TopRatedMovies(ctx context.Context, minRating float64, minVotes int, limit int) ([]models.Movie, error) {
	f.mu.Lock()
	f.lastTopArgs = []any{minRating, minVotes, limit}
	f.mu.Unlock()
	return nil, nil
}

func (f *fakeStore) CountMovies(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.movies), nil
}

func (f *fakeStore) GenreCounts(ctx context.Context) ([]db.GenreCount, error) {
	return nil, nil
}

// EmbeddingStore

func (f *fakeStore) UpsertEmbedding(ctx context.Context, movieID int64, vector []float32, model string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.embeddings[movieID] = models.MovieEmbedding{
		ID:     models.EmbeddingRecordID(movieID),
		Vector: vector,
		Model:  model,
	}
	return nil
}

func (f *fakeStore) HasEmbedding(ctx context.Context, movieID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.embeddings[movieID]
	return ok, nil
}

func (f *fakeStore) GetEmbedding(ctx context.Context, movieID int64) (*models.MovieEmbedding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.embeddings[movieID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (f *fakeStore) CountEmbeddings(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.embeddings), nil
}

func (f *fakeStore) NearestNeighbors(ctx context.Context, vector []float32, k int, metric models.Metric, exclude *int64) ([]models.Neighbor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastK = k
	f.lastMetric = metric

	neighbors := make([]models.Neighbor, 0, len(f.embeddings))
	for id, e := range f.embeddings {
		if exclude != nil && id == *exclude {
			continue
		}
		neighbors = append(neighbors, models.Neighbor{
			MovieID:  id,
			Distance: distance(metric, vector, e.Vector),
		})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Distance != neighbors[j].Distance {
			return neighbors[i].Distance < neighbors[j].Distance
		}
		return neighbors[i].MovieID < neighbors[j].MovieID
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

func distance(metric models.Metric, a, b []float32) float64 {
	var dot, na, nb, sq float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
		d := x - y
		sq += d * d
	}
	switch metric {
	case models.MetricL2:
		return math.Sqrt(sq)
	case models.MetricInnerProduct:
		return -dot
	default:
		return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
	}
}
