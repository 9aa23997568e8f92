package contract

import (
	"context"

	"ai-knowledge-bot/internal/entity"
)

// UserStateRepository persists the pending conversation intent per user.
// Get returns nil when the user has never left Idle.
type UserStateRepository interface {
	Get(ctx context.Context, userId string) (*entity.UserState, error)
	Upsert(ctx context.Context, state *entity.UserState) error
	Delete(ctx context.Context, userId string) error
}
