package contract

import (
	"context"

	"ai-knowledge-bot/internal/entity"
	"ai-knowledge-bot/internal/repository/specification"
)

type UserBotRepository interface {
	Upsert(ctx context.Context, bot *entity.UserBot) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserBot, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UserBot, error)
	DeleteByUserId(ctx context.Context, userId string) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
