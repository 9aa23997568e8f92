package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// KnowledgeChunk is only migrated when the pgvector backend is enabled.
type KnowledgeChunk struct {
	Id        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	OwnerId   string            `gorm:"type:varchar(64);not null;index"`
	Content   string            `gorm:"type:text;not null"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb"`
	Embedding pgvector.Vector   `gorm:"type:vector"`
	CreatedAt time.Time         `gorm:"autoCreateTime"`
}

func (KnowledgeChunk) TableName() string {
	return "knowledge_chunks"
}
