package model

import "time"

type Complaint struct {
	ID            string     `json:"id" gorm:"primaryKey"`
	UserID        string     `json:"user_id" gorm:"not null;index"`
	Title         string     `json:"title" gorm:"not null;size:200"`
	Description   string     `json:"description" gorm:"type:text;not null"`
	Category      string     `json:"category" gorm:"not null;size:50;index"`
	Ward          string     `json:"ward" gorm:"size:100"`
	Location      string     `json:"location" gorm:"size:255"`
	Latitude      float64    `json:"latitude"`
	Longitude     float64    `json:"longitude"`
	Status        string     `json:"status" gorm:"not null;default:open;index"`
	Upvotes       int        `json:"upvotes" gorm:"not null;default:0"`
	AttachmentURL string     `json:"attachment_url,omitempty"`
	ResolvedBy    string     `json:"resolved_by,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"not null"`
}

type Comment struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	ComplaintID string    `json:"complaint_id" gorm:"not null;index"`
	UserID      string    `json:"user_id" gorm:"not null;index"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null"`
}

type Vote struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	ComplaintID string    `json:"complaint_id" gorm:"not null;index:idx_vote_complaint_user,unique"`
	UserID      string    `json:"user_id" gorm:"not null;index:idx_vote_complaint_user,unique"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`
}
