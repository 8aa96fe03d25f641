package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// Sentinel errors for database operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrMovieNotFound indicates the requested movie does not exist.
	ErrMovieNotFound = errors.New("movie not found")

	// ErrEmbeddingNotFound indicates the movie has no stored embedding.
	ErrEmbeddingNotFound = errors.New("embedding not found")

	// ErrTransactionConflict indicates a SurrealDB transaction conflict.
	// Concurrent upserts of the same record can hit this; callers should
	// retry or skip the operation.
	ErrTransactionConflict = errors.New("transaction conflict")
)

// wrapQueryError inspects a SurrealDB error and wraps it with the appropriate
// sentinel error if it's a known query error type. Returns the original error
// otherwise.
func wrapQueryError(err error) error {
	if err == nil {
		return nil
	}

	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) {
		if strings.Contains(queryErr.Message, "Transaction conflict") {
			return fmt.Errorf("%w: %s", ErrTransactionConflict, queryErr.Message)
		}
	}

	return err
}
