package vectorstore

import "context"

// Record is one embedded chunk.
type Record struct {
	ID        string
	Content   string
	Metadata  map[string]string
	Embedding []float32
}

type ScoredRecord struct {
	Record
	Similarity float32
}

// Store is a vector index scoped to a single owner.
type Store interface {
	Add(ctx context.Context, records []Record) error
	// Search returns at most k records ordered by descending similarity.
	Search(ctx context.Context, query []float32, k int) ([]ScoredRecord, error)
	Count(ctx context.Context) (int, error)
}

// Factory opens the per-owner index. Location is what gets persisted as the
// owner's index reference.
type Factory interface {
	Open(ctx context.Context, ownerID string) (Store, error)
	Location(ownerID string) string
}
