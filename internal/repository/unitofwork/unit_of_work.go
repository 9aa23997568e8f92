package unitofwork

import (
	"context"

	"ai-knowledge-bot/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserStateRepository() contract.UserStateRepository
	UserBotRepository() contract.UserBotRepository
	ChatTurnRepository() contract.ChatTurnRepository
	TrainedSourceRepository() contract.TrainedSourceRepository
	KnowledgeChunkRepository() contract.KnowledgeChunkRepository
}
