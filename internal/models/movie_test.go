package models

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestEmbeddingText(t *testing.T) {
	m := &Movie{
		Title:       "Inception",
		Year:        2010,
		Genres:      []string{"Action", "Sci-Fi"},
		Description: strPtr("A thief who steals corporate secrets through dream-sharing technology."),
		Cast:        []string{"Leonardo DiCaprio", "Elliot Page"},
	}

	text := EmbeddingText(m)
	assert.Equal(t,
		"Title: Inception (2010) Genres: Action, Sci-Fi "+
			"Description: A thief who steals corporate secrets through dream-sharing technology. "+
			"Cast: Leonardo DiCaprio, Elliot Page",
		text)
}

func TestEmbeddingTextSparseMovie(t *testing.T) {
	m := &Movie{Title: "Unknown Short"}
	assert.Equal(t, "Title: Unknown Short", EmbeddingText(m))
}

func TestEmbeddingTextDeterministic(t *testing.T) {
	m := &Movie{Title: "Heat", Year: 1995, Genres: []string{"Crime"}}
	assert.Equal(t, EmbeddingText(m), EmbeddingText(m))
}

func TestEmbeddingTextTruncated(t *testing.T) {
	m := &Movie{
		Title:       "Long",
		Description: strPtr(strings.Repeat("very long plot ", 1000)),
	}

	text := EmbeddingText(m)
	assert.LessOrEqual(t, len(text), MaxEmbeddingTextLen)
	assert.True(t, strings.HasPrefix(text, "Title: Long"))
}

func TestEmbeddingTextTruncatesOnRuneBoundary(t *testing.T) {
	// Three-byte runes that cannot divide the truncation point evenly,
	// so a naive byte slice would split one in half
	m := &Movie{
		Title:       "映画",
		Description: strPtr(strings.Repeat("素晴らしい冒険の物語", 150)),
	}

	text := EmbeddingText(m)
	assert.LessOrEqual(t, len(text), MaxEmbeddingTextLen)
	assert.True(t, utf8.ValidString(text), "truncation must not split a rune")
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in   string
		want Metric
	}{
		{"", MetricCosine},
		{"cosine", MetricCosine},
		{"l2", MetricL2},
		{"inner_product", MetricInnerProduct},
	}
	for _, tc := range tests {
		got, err := ParseMetric(tc.in)
		require.NoError(t, err, "metric %q", tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestParseMetricInvalid(t *testing.T) {
	_, err := ParseMetric("manhattan")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMetric)
}

func TestMetricScore(t *testing.T) {
	// Cosine: identical -> 1, orthogonal -> 0, opposite -> -1.
	assert.InDelta(t, 1.0, MetricCosine.Score(0), 1e-9)
	assert.InDelta(t, 0.0, MetricCosine.Score(1), 1e-9)
	assert.InDelta(t, -1.0, MetricCosine.Score(2), 1e-9)

	// L2 stays in (0, 1] and decreases with distance.
	assert.InDelta(t, 1.0, MetricL2.Score(0), 1e-9)
	assert.InDelta(t, 0.5, MetricL2.Score(1), 1e-9)
	assert.Greater(t, MetricL2.Score(1), MetricL2.Score(2))

	// Inner product reports the raw (un-negated) product.
	assert.InDelta(t, 42.0, MetricInnerProduct.Score(-42), 1e-9)
}

func TestRecordIDInt64(t *testing.T) {
	id, err := RecordIDInt64(MovieRecordID(7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	_, err = RecordIDInt64(EmbeddingRecordID(7))
	require.NoError(t, err)

	bad := MovieRecordID(0)
	bad.ID = "seven"
	_, err = RecordIDInt64(bad)
	assert.Error(t, err)
}
