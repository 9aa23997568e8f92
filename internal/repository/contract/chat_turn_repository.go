package contract

import (
	"context"

	"ai-knowledge-bot/internal/entity"
	"ai-knowledge-bot/internal/repository/specification"
)

type ChatTurnRepository interface {
	Create(ctx context.Context, turn *entity.ChatTurn) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatTurn, error)
	// FindRecent returns the newest limit turns, oldest first.
	FindRecent(ctx context.Context, userId string, limit int) ([]*entity.ChatTurn, error)
	// TrimToLatest keeps only the newest keep turns of a user.
	TrimToLatest(ctx context.Context, userId string, keep int) error
	DeleteByUserId(ctx context.Context, userId string) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
