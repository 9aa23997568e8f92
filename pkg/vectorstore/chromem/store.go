package chromem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"ai-knowledge-bot/pkg/vectorstore"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
)

const collectionName = "knowledge"

var errNoEmbeddingFunc = errors.New("embeddings must be computed before they reach the index")

// Store keeps one owner's chunks in a chromem-go database persisted under its
// own directory.
type Store struct {
	dir        string
	db         *chromem.DB
	collection *chromem.Collection
}

var _ vectorstore.Store = &Store{}

func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir %s: %w", dir, err)
	}

	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", dir, err)
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, rejectEmbedding)
	if err != nil {
		return nil, fmt.Errorf("open collection in %s: %w", dir, err)
	}

	return &Store{dir: dir, db: db, collection: collection}, nil
}

func rejectEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, errNoEmbeddingFunc
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Add(ctx context.Context, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(records))
	for i, r := range records {
		if len(r.Embedding) == 0 {
			return fmt.Errorf("record %d has no embedding", i)
		}
		id := r.ID
		if id == "" {
			id = uuid.NewString()
		}
		docs[i] = chromem.Document{
			ID:        id,
			Metadata:  r.Metadata,
			Embedding: r.Embedding,
			Content:   r.Content,
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add %d documents to %s: %w", len(docs), s.dir, err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, query []float32, k int) ([]vectorstore.ScoredRecord, error) {
	count := s.collection.Count()
	if count == 0 || k <= 0 {
		return []vectorstore.ScoredRecord{}, nil
	}
	if k > count {
		k = count
	}

	results, err := s.collection.QueryEmbedding(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.dir, err)
	}

	out := make([]vectorstore.ScoredRecord, len(results))
	for i, r := range results {
		out[i] = vectorstore.ScoredRecord{
			Record: vectorstore.Record{
				ID:        r.ID,
				Content:   r.Content,
				Metadata:  r.Metadata,
				Embedding: r.Embedding,
			},
			Similarity: r.Similarity,
		}
	}
	return out, nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	return s.collection.Count(), nil
}

// Factory lays indexes out as <baseDir>/users/<owner>/index.
type Factory struct {
	baseDir string
}

var _ vectorstore.Factory = &Factory{}

func NewFactory(baseDir string) *Factory {
	return &Factory{baseDir: baseDir}
}

func (f *Factory) Location(ownerID string) string {
	return filepath.Join(f.baseDir, "users", ownerID, "index")
}

func (f *Factory) Open(_ context.Context, ownerID string) (vectorstore.Store, error) {
	return Open(f.Location(ownerID))
}
