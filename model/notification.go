package model

import "time"

type Notification struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"not null;index"`
	Title     string    `json:"title" gorm:"not null;size:200"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	Severity  string    `json:"severity" gorm:"size:20"`
	Read      bool      `json:"read" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

// TokenTransaction is one row in the civic token ledger. Balances are the
// sum of a user's transactions.
type TokenTransaction struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"not null;index"`
	Amount      int       `json:"amount" gorm:"not null"`
	Reason      string    `json:"reason" gorm:"not null;size:50"`
	ReferenceID string    `json:"reference_id,omitempty" gorm:"size:64"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`
}
