package models

import (
	"errors"
	"fmt"
)

// Metric selects the distance function a nearest-neighbor query runs with.
type Metric string

const (
	// MetricCosine ranks by cosine distance (1 - cosine similarity).
	MetricCosine Metric = "cosine"

	// MetricL2 ranks by Euclidean distance.
	MetricL2 Metric = "l2"

	// MetricInnerProduct ranks by negative inner product, following the
	// pgvector convention: the most similar candidate has the most
	// negative "distance".
	MetricInnerProduct Metric = "inner_product"
)

// ErrInvalidMetric is returned for a metric name outside the supported set.
var ErrInvalidMetric = errors.New("invalid distance metric")

// ParseMetric validates a metric name. The empty string defaults to cosine.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case "":
		return MetricCosine, nil
	case MetricCosine, MetricL2, MetricInnerProduct:
		return Metric(s), nil
	default:
		return "", fmt.Errorf("%w: %q (want cosine, l2 or inner_product)", ErrInvalidMetric, s)
	}
}

// Valid reports whether m is one of the supported metrics.
func (m Metric) Valid() bool {
	switch m {
	case MetricCosine, MetricL2, MetricInnerProduct:
		return true
	}
	return false
}

// Score converts a raw ranking distance into the similarity score reported
// to callers. Every transform is monotonically decreasing in distance, so
// ascending-distance order equals descending-score order.
//
//	cosine:        1 - distance            (identical 1, orthogonal 0, opposite -1)
//	l2:            1 / (1 + distance)      (bounded (0, 1])
//	inner_product: -distance               (the raw inner product)
func (m Metric) Score(distance float64) float64 {
	switch m {
	case MetricL2:
		return 1 / (1 + distance)
	case MetricInnerProduct:
		return -distance
	default:
		return 1 - distance
	}
}
