package entity

import (
	"time"

	"github.com/google/uuid"
)

type TrainedSource struct {
	Id         uuid.UUID
	UserId     string
	Url        string
	Title      string
	ChunkCount int
	Metadata   map[string]interface{}
	CreatedAt  time.Time
}
