package implementation

import (
	"context"
	"fmt"
	"time"

	"ai-knowledge-bot/internal/entity"
	"ai-knowledge-bot/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

// RedisUserStateRepository keeps pending intents in redis for deployments
// that run several bot replicas against one update stream.
type RedisUserStateRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisUserStateRepository(client *redis.Client, ttl time.Duration) contract.UserStateRepository {
	return &RedisUserStateRepository{
		client: client,
		ttl:    ttl,
	}
}

func stateKey(userId string) string {
	return fmt.Sprintf("bot:state:%s", userId)
}

func (r *RedisUserStateRepository) Get(ctx context.Context, userId string) (*entity.UserState, error) {
	val, err := r.client.Get(ctx, stateKey(userId)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity.UserState{UserId: userId, State: val}, nil
}

func (r *RedisUserStateRepository) Upsert(ctx context.Context, state *entity.UserState) error {
	if state.State == "" {
		return r.Delete(ctx, state.UserId)
	}
	state.UpdatedAt = time.Now()
	return r.client.Set(ctx, stateKey(state.UserId), state.State, r.ttl).Err()
}

func (r *RedisUserStateRepository) Delete(ctx context.Context, userId string) error {
	return r.client.Del(ctx, stateKey(userId)).Err()
}
