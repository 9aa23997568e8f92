package model

import (
	"time"

	"github.com/google/uuid"
)

type UserBot struct {
	Id         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	UserId     string     `gorm:"type:varchar(64);primaryKey"`
	IndexDir   string     `gorm:"type:text;not null"`
	ChunkCount int        `gorm:"default:0"`
	TrainedAt  *time.Time
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (UserBot) TableName() string {
	return "user_bots"
}
