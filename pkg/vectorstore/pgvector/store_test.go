package pgvector

import (
	"context"
	"testing"

	"ai-knowledge-bot/internal/entity"
	"ai-knowledge-bot/internal/repository/specification"
	"ai-knowledge-bot/pkg/vectorstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryChunkRepo struct {
	chunks    []*entity.KnowledgeChunk
	lastOwner string
	lastLimit int
}

func (m *memoryChunkRepo) CreateBulk(_ context.Context, chunks []*entity.KnowledgeChunk) error {
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *memoryChunkRepo) SearchSimilarWithScore(_ context.Context, _ []float32, limit int, ownerId string) ([]*entity.ScoredKnowledgeChunk, error) {
	m.lastOwner, m.lastLimit = ownerId, limit
	var out []*entity.ScoredKnowledgeChunk
	for _, c := range m.chunks {
		if c.OwnerId == ownerId && len(out) < limit {
			out = append(out, &entity.ScoredKnowledgeChunk{Chunk: c, Similarity: 0.5})
		}
	}
	return out, nil
}

func (m *memoryChunkRepo) DeleteByOwnerId(_ context.Context, ownerId string) error {
	return nil
}

func (m *memoryChunkRepo) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	owner := specs[0].(specification.ByOwnerID).OwnerID
	var n int64
	for _, c := range m.chunks {
		if c.OwnerId == owner {
			n++
		}
	}
	return n, nil
}

func TestStoreScopesByOwner(t *testing.T) {
	ctx := context.Background()
	repo := &memoryChunkRepo{}
	factory := NewFactory(repo)

	alice, err := factory.Open(ctx, "alice")
	require.NoError(t, err)
	bob, err := factory.Open(ctx, "bob")
	require.NoError(t, err)

	require.NoError(t, alice.Add(ctx, []vectorstore.Record{
		{Content: "a1", Embedding: []float32{1, 0}},
		{Content: "a2", Embedding: []float32{0, 1}, Metadata: map[string]string{"source": "http://a"}},
	}))
	require.NoError(t, bob.Add(ctx, []vectorstore.Record{{Content: "b1", Embedding: []float32{1, 1}}}))

	n, err := alice.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	results, err := bob.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b1", results[0].Content)
	assert.Equal(t, "bob", repo.lastOwner)
	assert.Equal(t, 3, repo.lastLimit)
	_, err = uuid.Parse(results[0].ID)
	assert.NoError(t, err)
}

func TestStoreRejectsMissingEmbedding(t *testing.T) {
	s := NewStore("x", &memoryChunkRepo{})
	err := s.Add(context.Background(), []vectorstore.Record{{Content: "no vector"}})
	assert.Error(t, err)
}
