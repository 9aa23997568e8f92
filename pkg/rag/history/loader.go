package history

import (
	"context"
	"time"

	"ai-knowledge-bot/internal/entity"
	"ai-knowledge-bot/internal/repository/unitofwork"
	"ai-knowledge-bot/pkg/rag/memory"
)

// Loader mirrors conversation memory to the chat_turns table.
type Loader struct {
	uowFactory unitofwork.RepositoryFactory
	maxTurns   int
}

func NewLoader(uowFactory unitofwork.RepositoryFactory, maxTurns int) *Loader {
	if maxTurns <= 0 {
		maxTurns = memory.DefaultMaxTurns
	}
	return &Loader{
		uowFactory: uowFactory,
		maxTurns:   maxTurns,
	}
}

func (l *Loader) MaxTurns() int {
	return l.maxTurns
}

// Load returns the newest retained turns of a user, oldest first.
func (l *Loader) Load(ctx context.Context, userID string) ([]memory.Turn, error) {
	uow := l.uowFactory.NewUnitOfWork(ctx)

	rows, err := uow.ChatTurnRepository().FindRecent(ctx, userID, l.maxTurns)
	if err != nil {
		return nil, err
	}

	turns := make([]memory.Turn, 0, len(rows))
	for _, row := range rows {
		turns = append(turns, memory.Turn{
			Question: row.Question,
			Answer:   row.Answer,
			At:       row.CreatedAt,
		})
	}
	return turns, nil
}

// Append stores a turn and drops rows beyond the retention window.
func (l *Loader) Append(ctx context.Context, userID string, turn memory.Turn) error {
	uow := l.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	at := turn.At
	if at.IsZero() {
		at = time.Now()
	}
	row := &entity.ChatTurn{
		UserId:    userID,
		Question:  turn.Question,
		Answer:    turn.Answer,
		CreatedAt: at,
	}
	if err := uow.ChatTurnRepository().Create(ctx, row); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.ChatTurnRepository().TrimToLatest(ctx, userID, l.maxTurns); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}

func (l *Loader) Clear(ctx context.Context, userID string) error {
	return l.uowFactory.NewUnitOfWork(ctx).ChatTurnRepository().DeleteByUserId(ctx, userID)
}
