package embedding

import "errors"

// Sentinel errors for embedding operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnavailable indicates the embedding service could not produce a
	// result within the configured number of attempts. The operation may
	// succeed later; callers should count the item as failed and move on.
	ErrUnavailable = errors.New("embedding service unavailable")

	// ErrProtocol indicates the service answered but the response is
	// unusable (wrong dimension, rejected request). Retrying the same
	// input cannot help.
	ErrProtocol = errors.New("embedding protocol error")
)
