package entity

import (
	"time"

	"github.com/google/uuid"
)

type KnowledgeChunk struct {
	Id        uuid.UUID
	OwnerId   string
	Content   string
	Metadata  map[string]string
	Embedding []float32
	CreatedAt time.Time
}

// ScoredKnowledgeChunk wraps KnowledgeChunk with its similarity score
type ScoredKnowledgeChunk struct {
	Chunk      *KnowledgeChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}
