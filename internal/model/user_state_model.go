package model

import "time"

// UserState holds the pending conversation intent; a NULL state means idle.
type UserState struct {
	UserId    string    `gorm:"type:varchar(64);primaryKey"`
	State     *string   `gorm:"type:varchar(32)"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserState) TableName() string {
	return "user_states"
}
