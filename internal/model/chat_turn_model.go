package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatTurn struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    string    `gorm:"type:varchar(64);not null;index:idx_chat_turns_user_seq,priority:1"`
	Seq       int64     `gorm:"not null;default:0;index:idx_chat_turns_user_seq,priority:2"`
	Question  string    `gorm:"type:text;not null"`
	Answer    string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

func (ChatTurn) TableName() string {
	return "chat_turns"
}
