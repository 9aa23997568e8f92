package mapper

import (
	"time"

	"ai-knowledge-bot/internal/entity"
	"ai-knowledge-bot/internal/model"

	"gorm.io/datatypes"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

// State Mappers

func (m *SessionMapper) UserStateToEntity(s *model.UserState) *entity.UserState {
	if s == nil {
		return nil
	}

	var state string
	if s.State != nil {
		state = *s.State
	}

	return &entity.UserState{
		UserId:    s.UserId,
		State:     state,
		UpdatedAt: s.UpdatedAt,
	}
}

func (m *SessionMapper) UserStateToModel(s *entity.UserState) *model.UserState {
	if s == nil {
		return nil
	}

	var state *string
	if s.State != "" {
		v := s.State
		state = &v
	}

	return &model.UserState{
		UserId:    s.UserId,
		State:     state,
		UpdatedAt: s.UpdatedAt,
	}
}

// Bot Mappers

func (m *SessionMapper) UserBotToEntity(b *model.UserBot) *entity.UserBot {
	if b == nil {
		return nil
	}

	var updatedAt *time.Time
	if !b.UpdatedAt.IsZero() {
		t := b.UpdatedAt
		updatedAt = &t
	}

	return &entity.UserBot{
		Id:         b.Id,
		UserId:     b.UserId,
		IndexDir:   b.IndexDir,
		ChunkCount: b.ChunkCount,
		TrainedAt:  b.TrainedAt,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *SessionMapper) UserBotToModel(b *entity.UserBot) *model.UserBot {
	if b == nil {
		return nil
	}

	var updatedAt time.Time
	if b.UpdatedAt != nil {
		updatedAt = *b.UpdatedAt
	}

	return &model.UserBot{
		Id:         b.Id,
		UserId:     b.UserId,
		IndexDir:   b.IndexDir,
		ChunkCount: b.ChunkCount,
		TrainedAt:  b.TrainedAt,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

// Turn Mappers

func (m *SessionMapper) ChatTurnToEntity(t *model.ChatTurn) *entity.ChatTurn {
	if t == nil {
		return nil
	}
	return &entity.ChatTurn{
		Id:        t.Id,
		UserId:    t.UserId,
		Seq:       t.Seq,
		Question:  t.Question,
		Answer:    t.Answer,
		CreatedAt: t.CreatedAt,
	}
}

func (m *SessionMapper) ChatTurnToModel(t *entity.ChatTurn) *model.ChatTurn {
	if t == nil {
		return nil
	}
	return &model.ChatTurn{
		Id:        t.Id,
		UserId:    t.UserId,
		Seq:       t.Seq,
		Question:  t.Question,
		Answer:    t.Answer,
		CreatedAt: t.CreatedAt,
	}
}

func (m *SessionMapper) ChatTurnsToEntities(turns []*model.ChatTurn) []*entity.ChatTurn {
	entities := make([]*entity.ChatTurn, len(turns))
	for i, t := range turns {
		entities[i] = m.ChatTurnToEntity(t)
	}
	return entities
}

// Source Mappers

func (m *SessionMapper) TrainedSourceToEntity(s *model.TrainedSource) *entity.TrainedSource {
	if s == nil {
		return nil
	}
	return &entity.TrainedSource{
		Id:         s.Id,
		UserId:     s.UserId,
		Url:        s.Url,
		Title:      s.Title,
		ChunkCount: s.ChunkCount,
		Metadata:   map[string]interface{}(s.Metadata),
		CreatedAt:  s.CreatedAt,
	}
}

func (m *SessionMapper) TrainedSourceToModel(s *entity.TrainedSource) *model.TrainedSource {
	if s == nil {
		return nil
	}
	return &model.TrainedSource{
		Id:         s.Id,
		UserId:     s.UserId,
		Url:        s.Url,
		Title:      s.Title,
		ChunkCount: s.ChunkCount,
		Metadata:   datatypes.JSONMap(s.Metadata),
		CreatedAt:  s.CreatedAt,
	}
}

func (m *SessionMapper) TrainedSourcesToEntities(sources []*model.TrainedSource) []*entity.TrainedSource {
	entities := make([]*entity.TrainedSource, len(sources))
	for i, s := range sources {
		entities[i] = m.TrainedSourceToEntity(s)
	}
	return entities
}
