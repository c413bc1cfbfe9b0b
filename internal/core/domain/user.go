package domain

import "time"

type User struct {
	ID             int
	Email          string `validate:"required,email,max=255"`
	HashedPassword string `json:"-" validate:"required"`
	NickName       *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
