package mapper

import (
	"fmt"

	"ai-knowledge-bot/internal/entity"
	"ai-knowledge-bot/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type KnowledgeChunkMapper struct{}

func NewKnowledgeChunkMapper() *KnowledgeChunkMapper {
	return &KnowledgeChunkMapper{}
}

func (m *KnowledgeChunkMapper) ToEntity(c *model.KnowledgeChunk) *entity.KnowledgeChunk {
	if c == nil {
		return nil
	}

	metadata := make(map[string]string, len(c.Metadata))
	for k, v := range c.Metadata {
		if s, ok := v.(string); ok {
			metadata[k] = s
		} else {
			metadata[k] = fmt.Sprint(v)
		}
	}

	return &entity.KnowledgeChunk{
		Id:        c.Id,
		OwnerId:   c.OwnerId,
		Content:   c.Content,
		Metadata:  metadata,
		Embedding: c.Embedding.Slice(),
		CreatedAt: c.CreatedAt,
	}
}

func (m *KnowledgeChunkMapper) ToModel(c *entity.KnowledgeChunk) *model.KnowledgeChunk {
	if c == nil {
		return nil
	}

	metadata := make(datatypes.JSONMap, len(c.Metadata))
	for k, v := range c.Metadata {
		metadata[k] = v
	}

	return &model.KnowledgeChunk{
		Id:        c.Id,
		OwnerId:   c.OwnerId,
		Content:   c.Content,
		Metadata:  metadata,
		Embedding: pgvector.NewVector(c.Embedding),
		CreatedAt: c.CreatedAt,
	}
}

func (m *KnowledgeChunkMapper) ToEntities(chunks []*model.KnowledgeChunk) []*entity.KnowledgeChunk {
	entities := make([]*entity.KnowledgeChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *KnowledgeChunkMapper) ToModels(chunks []*entity.KnowledgeChunk) []*model.KnowledgeChunk {
	models := make([]*model.KnowledgeChunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}
