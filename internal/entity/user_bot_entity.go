package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserBot records where a user's knowledge index lives and how much it holds.
type UserBot struct {
	Id         uuid.UUID
	UserId     string
	IndexDir   string
	ChunkCount int
	TrainedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
