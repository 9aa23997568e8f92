package pgvector

import (
	"context"
	"fmt"

	"ai-knowledge-bot/internal/entity"
	"ai-knowledge-bot/internal/repository/contract"
	"ai-knowledge-bot/internal/repository/specification"
	"ai-knowledge-bot/pkg/vectorstore"

	"github.com/google/uuid"
)

// Store is one owner's slice of the shared knowledge_chunks table.
type Store struct {
	ownerID string
	repo    contract.KnowledgeChunkRepository
}

var _ vectorstore.Store = &Store{}

func NewStore(ownerID string, repo contract.KnowledgeChunkRepository) *Store {
	return &Store{ownerID: ownerID, repo: repo}
}

func (s *Store) Add(ctx context.Context, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}

	chunks := make([]*entity.KnowledgeChunk, len(records))
	for i, r := range records {
		if len(r.Embedding) == 0 {
			return fmt.Errorf("record %d has no embedding", i)
		}
		id := uuid.New()
		if r.ID != "" {
			parsed, err := uuid.Parse(r.ID)
			if err != nil {
				return fmt.Errorf("record %d: invalid id %q: %w", i, r.ID, err)
			}
			id = parsed
		}
		chunks[i] = &entity.KnowledgeChunk{
			Id:        id,
			OwnerId:   s.ownerID,
			Content:   r.Content,
			Metadata:  r.Metadata,
			Embedding: r.Embedding,
		}
	}

	if err := s.repo.CreateBulk(ctx, chunks); err != nil {
		return fmt.Errorf("insert %d chunks for %s: %w", len(chunks), s.ownerID, err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, query []float32, k int) ([]vectorstore.ScoredRecord, error) {
	if k <= 0 {
		return []vectorstore.ScoredRecord{}, nil
	}

	scored, err := s.repo.SearchSimilarWithScore(ctx, query, k, s.ownerID)
	if err != nil {
		return nil, fmt.Errorf("search chunks for %s: %w", s.ownerID, err)
	}

	out := make([]vectorstore.ScoredRecord, len(scored))
	for i, sc := range scored {
		out[i] = vectorstore.ScoredRecord{
			Record: vectorstore.Record{
				ID:        sc.Chunk.Id.String(),
				Content:   sc.Chunk.Content,
				Metadata:  sc.Chunk.Metadata,
				Embedding: sc.Chunk.Embedding,
			},
			Similarity: float32(sc.Similarity),
		}
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx, specification.ByOwnerID{OwnerID: s.ownerID})
	if err != nil {
		return 0, fmt.Errorf("count chunks for %s: %w", s.ownerID, err)
	}
	return int(n), nil
}

// Factory hands out owner-scoped views of the shared table.
type Factory struct {
	repo contract.KnowledgeChunkRepository
}

var _ vectorstore.Factory = &Factory{}

func NewFactory(repo contract.KnowledgeChunkRepository) *Factory {
	return &Factory{repo: repo}
}

func (f *Factory) Location(ownerID string) string {
	return "pgvector://knowledge_chunks?owner_id=" + ownerID
}

func (f *Factory) Open(_ context.Context, ownerID string) (vectorstore.Store, error) {
	return NewStore(ownerID, f.repo), nil
}
