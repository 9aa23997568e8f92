package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatTurn struct {
	Id        uuid.UUID
	UserId    string
	Seq       int64
	Question  string
	Answer    string
	CreatedAt time.Time
}
