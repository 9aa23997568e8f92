package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TrainedSource struct {
	Id         uuid.UUID         `gorm:"type:uuid;primaryKey"`
	UserId     string            `gorm:"type:varchar(64);not null;index"`
	Url        string            `gorm:"type:text;not null"`
	Title      string            `gorm:"type:text"`
	ChunkCount int               `gorm:"default:0"`
	Metadata   datatypes.JSONMap `gorm:"type:json"`
	CreatedAt  time.Time         `gorm:"autoCreateTime"`
}

func (TrainedSource) TableName() string {
	return "trained_sources"
}
