package entity

import "time"

type UserState struct {
	UserId    string
	State     string
	UpdatedAt time.Time
}
