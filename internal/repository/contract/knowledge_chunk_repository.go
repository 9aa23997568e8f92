package contract

import (
	"context"

	"ai-knowledge-bot/internal/entity"
	"ai-knowledge-bot/internal/repository/specification"
)

type KnowledgeChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk) error
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, ownerId string) ([]*entity.ScoredKnowledgeChunk, error)
	DeleteByOwnerId(ctx context.Context, ownerId string) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
