// Package vectorstore defines the vector record store contract (C3): store
// (id, vector, metadata) tuples and serve top-k cosine-similarity search
// filtered by metadata equality. Adapted from the teacher's pkg/storage
// VectorStore interface (pkg/storage/base.go), narrowed to float32
// embeddings and to the metadata shape the engine actually needs.
package vectorstore

import "context"

// Metadata is the filterable, storable attribute set attached to a vector
// record. Kept as a concrete struct rather than a bare map so the store can
// apply the equality filter without reflection.
type Metadata struct {
	UserID     string
	Category   string
	Importance float64
	CreatedAt  int64 // unix nanos; used for search tie-breaking
	Superseded bool
}

// Record is one stored vector plus its metadata.
type Record struct {
	ID       string
	Vector   []float32
	Metadata Metadata
}

// Filter is an equality conjunction over metadata fields. A zero-value
// field (empty string / false) is only applied when its companion "match"
// flag is set, so callers can filter on Superseded=false explicitly.
type Filter struct {
	UserID          string
	MatchUserID     bool
	Category        string
	MatchCategory   bool
	Superseded      bool
	MatchSuperseded bool
}

// ForUser builds the filter the engine uses on every per-user operation:
// same user, active (non-superseded) memories only.
func ForUser(userID string) Filter {
	return Filter{UserID: userID, MatchUserID: true, Superseded: false, MatchSuperseded: true}
}

// Hit is one search result: the stored id, its cosine similarity score
// against the query vector, and its metadata.
type Hit struct {
	ID       string
	Score    float64
	Metadata Metadata
}

// Store is the vector record store contract (C3).
type Store interface {
	// Insert adds a new record. Returns errs.KindInvalidInput if id already exists.
	Insert(ctx context.Context, rec Record) error

	// BatchInsert adds several records atomically from the caller's view;
	// partial failure leaves no record behind.
	BatchInsert(ctx context.Context, recs []Record) error

	// Update replaces the vector and/or metadata of an existing record.
	Update(ctx context.Context, id string, vector []float32, meta Metadata) error

	// Delete removes a record by id. Idempotent: deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteByFilter removes every record matching filter, returning the count removed.
	DeleteByFilter(ctx context.Context, filter Filter) (int, error)

	// Get fetches one record by id. Returns errs.KindNotFound if absent.
	Get(ctx context.Context, id string) (Record, error)

	// Search ranks records by cosine similarity to query, descending, tie broken
	// by higher CreatedAt then lexicographically smaller id; at most topK returned.
	Search(ctx context.Context, query []float32, topK int, filter Filter) ([]Hit, error)

	// Close releases store resources.
	Close() error
}
