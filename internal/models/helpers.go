package models

import (
	"fmt"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// RecordIDInt64 safely extracts the integer ID from a SurrealDB RecordID.
// Movie and embedding records are keyed by the catalog's integer ids, but
// the CBOR decoder may hand them back as any integer width.
func RecordIDInt64(id surrealmodels.RecordID) (int64, error) {
	switch v := id.ID.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case int32:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("unexpected ID type: %T (expected integer)", id.ID)
	}
}

// MovieRecordID builds the record ID for a movie row.
func MovieRecordID(id int64) surrealmodels.RecordID {
	return surrealmodels.RecordID{Table: "movie", ID: id}
}

// EmbeddingRecordID builds the record ID for a movie's embedding row. The
// embedding table reuses the movie's id, which is what gives the store its
// one-embedding-per-movie uniqueness constraint.
func EmbeddingRecordID(id int64) surrealmodels.RecordID {
	return surrealmodels.RecordID{Table: "movie_embedding", ID: id}
}
