package contract

import (
	"context"

	"ai-knowledge-bot/internal/entity"
	"ai-knowledge-bot/internal/repository/specification"
)

type TrainedSourceRepository interface {
	Create(ctx context.Context, source *entity.TrainedSource) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TrainedSource, error)
	DeleteByUserId(ctx context.Context, userId string) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
