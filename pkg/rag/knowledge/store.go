package knowledge

import (
	"context"
	"fmt"

	"ai-knowledge-bot/pkg/apperror"
	"ai-knowledge-bot/pkg/embedding"
	"ai-knowledge-bot/pkg/utils"
	"ai-knowledge-bot/pkg/vectorstore"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const DefaultTopK = 3

var tracer = otel.Tracer("ai-knowledge-bot/knowledge")

// ScoredChunk is a retrieved chunk with its cosine similarity to the query.
type ScoredChunk struct {
	Content  string
	Metadata map[string]string
	Score    float32
}

// Source returns the page the chunk came from, if known.
func (c ScoredChunk) Source() string {
	return c.Metadata["source"]
}

// Store pairs an embedding function with a vector index.
type Store struct {
	index    vectorstore.Store
	embedder embedding.EmbeddingProvider
	topK     int
}

func NewStore(index vectorstore.Store, embedder embedding.EmbeddingProvider, topK int) *Store {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Store{index: index, embedder: embedder, topK: topK}
}

// AddDocuments embeds every chunk and appends them to the index. Nothing is
// written unless all chunks embed successfully.
func (s *Store) AddDocuments(ctx context.Context, chunks []utils.Document) (int, error) {
	ctx, span := tracer.Start(ctx, "knowledge.AddDocuments")
	defer span.End()
	span.SetAttributes(attribute.Int("chunks", len(chunks)))

	if len(chunks) == 0 {
		return 0, nil
	}

	records := make([]vectorstore.Record, 0, len(chunks))
	for i, chunk := range chunks {
		vec, err := s.embedder.Generate(ctx, chunk.Content)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "embedding failed")
			return 0, classify("knowledge.AddDocuments", fmt.Errorf("embed chunk %d: %w", i, err))
		}
		records = append(records, vectorstore.Record{
			Content:   chunk.Content,
			Metadata:  chunk.Metadata,
			Embedding: vec,
		})
	}

	if err := s.index.Add(ctx, records); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "index write failed")
		return 0, apperror.Service("knowledge.AddDocuments", err)
	}

	return len(records), nil
}

// Retrieve returns the k chunks closest to query. k <= 0 falls back to the
// store default.
func (s *Store) Retrieve(ctx context.Context, query string, k int) ([]ScoredChunk, error) {
	ctx, span := tracer.Start(ctx, "knowledge.Retrieve")
	defer span.End()

	if k <= 0 {
		k = s.topK
	}
	span.SetAttributes(attribute.Int("k", k))

	vec, err := s.embedder.Generate(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "embedding failed")
		return nil, classify("knowledge.Retrieve", err)
	}

	hits, err := s.index.Search(ctx, vec, k)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, apperror.Service("knowledge.Retrieve", err)
	}

	out := make([]ScoredChunk, len(hits))
	for i, h := range hits {
		out[i] = ScoredChunk{Content: h.Content, Metadata: h.Metadata, Score: h.Similarity}
	}
	span.SetAttributes(attribute.Int("hits", len(out)))
	return out, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.index.Count(ctx)
	if err != nil {
		return 0, apperror.Service("knowledge.Count", err)
	}
	return n, nil
}

// classify keeps an existing kind and marks everything else as a service error.
func classify(op string, err error) error {
	if apperror.KindOf(err) != apperror.KindUnknown {
		return err
	}
	return apperror.Service(op, err)
}
