package model

import "time"

type User struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"unique"`
	Username  string    `json:"username" gorm:"unique;not null"`
	Password  string    `json:"-"`
	Role      string    `json:"role" gorm:"not null;default:citizen"`
	Ward      string    `json:"ward"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
