package session

import (
	"context"
	"fmt"
	"time"

	"ai-knowledge-bot/internal/entity"
	"ai-knowledge-bot/internal/pkg/logger"
	"ai-knowledge-bot/internal/repository/contract"
	sessioncache "ai-knowledge-bot/internal/repository/memory"
	"ai-knowledge-bot/internal/repository/specification"
	"ai-knowledge-bot/internal/repository/unitofwork"
	"ai-knowledge-bot/pkg/apperror"
	"ai-knowledge-bot/pkg/embedding"
	"ai-knowledge-bot/pkg/rag/answerer"
	"ai-knowledge-bot/pkg/rag/bot"
	"ai-knowledge-bot/pkg/rag/history"
	"ai-knowledge-bot/pkg/rag/knowledge"
	"ai-knowledge-bot/pkg/rag/memory"
	"ai-knowledge-bot/pkg/rag/state"
	"ai-knowledge-bot/pkg/store"
	"ai-knowledge-bot/pkg/vectorstore"
)

const logModule = "SESSION"

// Status is a read-only snapshot of one user's bot.
type Status struct {
	UserID    string                  `json:"user_id"`
	State     string                  `json:"state"`
	IndexDir  string                  `json:"index_dir"`
	Chunks    int                     `json:"chunks"`
	Turns     int                     `json:"turns"`
	TrainedAt *time.Time              `json:"trained_at,omitempty"`
	Sources   []*entity.TrainedSource `json:"sources"`
}

// Manager owns every user's bot, conversation state and memory.
type Manager struct {
	uowFactory unitofwork.RepositoryFactory
	states     contract.UserStateRepository
	sessions   *sessioncache.SessionRepository
	indexes    vectorstore.Factory
	embedder   embedding.EmbeddingProvider
	history    *history.Loader
	botDeps    bot.Deps
	topK       int
	logger     logger.ILogger

	users    *keyedMutex
	creating *keyedMutex
}

func NewManager(
	uowFactory unitofwork.RepositoryFactory,
	states contract.UserStateRepository,
	sessions *sessioncache.SessionRepository,
	indexes vectorstore.Factory,
	embedder embedding.EmbeddingProvider,
	hist *history.Loader,
	botDeps bot.Deps,
	topK int,
	log logger.ILogger,
) *Manager {
	return &Manager{
		uowFactory: uowFactory,
		states:     states,
		sessions:   sessions,
		indexes:    indexes,
		embedder:   embedder,
		history:    hist,
		botDeps:    botDeps,
		topK:       topK,
		logger:     log,
		users:      newKeyedMutex(),
		creating:   newKeyedMutex(),
	}
}

// WithUser runs fn while holding the user's lock. Operations for the same
// user never overlap; other users are not affected.
func (m *Manager) WithUser(ctx context.Context, userID string, fn func(ctx context.Context) error) error {
	unlock, err := m.users.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()
	return fn(ctx)
}

// Get returns the user's live session, loading it from disk or creating a
// fresh untrained bot on first contact.
func (m *Manager) Get(ctx context.Context, userID string) (*store.Session, error) {
	if s, ok := m.sessions.Get(userID); ok {
		return s, nil
	}

	unlock, err := m.creating.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if s, ok := m.sessions.Get(userID); ok {
		return s, nil
	}

	s, err := m.load(ctx, userID)
	if err != nil {
		return nil, apperror.Service("session.Get", err)
	}
	m.sessions.Save(s)
	return s, nil
}

func (m *Manager) load(ctx context.Context, userID string) (*store.Session, error) {
	index, err := m.indexes.Open(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	turns, err := m.history.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load memory: %w", err)
	}

	kb := bot.New(
		userID,
		knowledge.NewStore(index, m.embedder, m.topK),
		memory.NewBuffer(m.history.MaxTurns(), turns...),
		m.botDeps,
	)

	chunks, err := kb.ChunkCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}

	repo := m.uowFactory.NewUnitOfWork(ctx).UserBotRepository()
	existing, err := repo.FindOne(ctx, specification.ByUserID{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("find bot row: %w", err)
	}

	row := &entity.UserBot{
		UserId:     userID,
		IndexDir:   m.indexes.Location(userID),
		ChunkCount: chunks,
	}
	if existing != nil {
		row.Id = existing.Id
		row.TrainedAt = existing.TrainedAt
	}
	if err := repo.Upsert(ctx, row); err != nil {
		return nil, fmt.Errorf("save bot row: %w", err)
	}

	m.logger.Info(logModule, "Session loaded", map[string]interface{}{
		"user_id":   userID,
		"index_dir": row.IndexDir,
		"chunks":    chunks,
		"turns":     len(turns),
		"new":       existing == nil,
	})

	return &store.Session{
		UserID:   userID,
		IndexDir: row.IndexDir,
		Bot:      kb,
		LoadedAt: time.Now(),
	}, nil
}

func (m *Manager) GetState(ctx context.Context, userID string) (state.State, error) {
	row, err := m.states.Get(ctx, userID)
	if err != nil {
		return state.Idle, apperror.Service("session.GetState", err)
	}
	if row == nil {
		return state.Idle, nil
	}
	s, err := state.Parse(row.State)
	if err != nil {
		m.logger.Warn(logModule, "Discarding unknown stored state", map[string]interface{}{
			"user_id": userID,
			"state":   row.State,
		})
		return state.Idle, nil
	}
	return s, nil
}

func (m *Manager) SetState(ctx context.Context, userID string, s state.State) error {
	if err := m.states.Upsert(ctx, &entity.UserState{UserId: userID, State: string(s)}); err != nil {
		return apperror.Service("session.SetState", err)
	}
	return nil
}

func (m *Manager) ClearState(ctx context.Context, userID string) error {
	if err := m.states.Delete(ctx, userID); err != nil {
		return apperror.Service("session.ClearState", err)
	}
	return nil
}

// RecordTraining stores the trained page and refreshes the bot row in one
// transaction.
func (m *Manager) RecordTraining(ctx context.Context, userID string, result bot.TrainResult) (*entity.TrainedSource, error) {
	s, err := m.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	total, err := s.Bot.ChunkCount(ctx)
	if err != nil {
		return nil, apperror.Service("session.RecordTraining", err)
	}

	uow := m.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Service("session.RecordTraining", err)
	}

	source := &entity.TrainedSource{
		UserId:     userID,
		Url:        result.URL,
		Title:      result.Title,
		ChunkCount: result.Chunks,
		Metadata:   map[string]interface{}{"documents": result.Documents},
	}
	if err := uow.TrainedSourceRepository().Create(ctx, source); err != nil {
		_ = uow.Rollback()
		return nil, apperror.Service("session.RecordTraining", err)
	}

	existing, err := uow.UserBotRepository().FindOne(ctx, specification.ByUserID{UserID: userID})
	if err != nil {
		_ = uow.Rollback()
		return nil, apperror.Service("session.RecordTraining", err)
	}
	now := time.Now()
	row := &entity.UserBot{UserId: userID, IndexDir: s.IndexDir, ChunkCount: total, TrainedAt: &now}
	if existing != nil {
		row.Id = existing.Id
	}
	if err := uow.UserBotRepository().Upsert(ctx, row); err != nil {
		_ = uow.Rollback()
		return nil, apperror.Service("session.RecordTraining", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Service("session.RecordTraining", err)
	}
	return source, nil
}

// RecordAnswer mirrors an answered turn to storage. Not-trained answers are
// not part of the conversation memory.
func (m *Manager) RecordAnswer(ctx context.Context, userID string, answer answerer.Answer) error {
	if !answer.Trained {
		return nil
	}
	turn := memory.Turn{Question: answer.Query, Answer: answer.Result, At: time.Now()}
	if err := m.history.Append(ctx, userID, turn); err != nil {
		return apperror.Service("session.RecordAnswer", err)
	}
	return nil
}

func (m *Manager) Sources(ctx context.Context, userID string) ([]*entity.TrainedSource, error) {
	sources, err := m.uowFactory.NewUnitOfWork(ctx).TrainedSourceRepository().FindAll(ctx,
		specification.ByUserID{UserID: userID},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, apperror.Service("session.Sources", err)
	}
	return sources, nil
}

// Forget clears the conversation memory. The knowledge index is kept.
func (m *Manager) Forget(ctx context.Context, userID string) error {
	if s, ok := m.sessions.Get(userID); ok {
		s.Bot.Memory().Clear()
	}
	if err := m.history.Clear(ctx, userID); err != nil {
		return apperror.Service("session.Forget", err)
	}
	m.logger.Info(logModule, "Memory cleared", map[string]interface{}{"user_id": userID})
	return nil
}

func (m *Manager) Status(ctx context.Context, userID string) (*Status, error) {
	s, err := m.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	st, err := m.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	chunks, err := s.Bot.ChunkCount(ctx)
	if err != nil {
		return nil, apperror.Service("session.Status", err)
	}
	sources, err := m.Sources(ctx, userID)
	if err != nil {
		return nil, err
	}
	row, err := m.uowFactory.NewUnitOfWork(ctx).UserBotRepository().FindOne(ctx, specification.ByUserID{UserID: userID})
	if err != nil {
		return nil, apperror.Service("session.Status", err)
	}

	status := &Status{
		UserID:   userID,
		State:    st.String(),
		IndexDir: s.IndexDir,
		Chunks:   chunks,
		Turns:    s.Bot.Memory().Len(),
		Sources:  sources,
	}
	if row != nil {
		status.TrainedAt = row.TrainedAt
	}
	return status, nil
}

// Loaded reports how many sessions are currently cached.
func (m *Manager) Loaded() int {
	return m.sessions.Count()
}
