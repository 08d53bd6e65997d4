package dto

import "time"

// ==================== COMPLAINT REQUEST DTOs ====================

type CreateComplaintRequest struct {
	Title       string  `json:"title" validate:"required,min=5,max=200" example:"Pothole on GE Road"`
	Description string  `json:"description" validate:"required,min=10,max=5000" example:"Large pothole near the Telibandha flyover, two-wheelers are swerving into traffic."`
	Category    string  `json:"category" validate:"required,oneof=roads water sanitation electricity streetlight encroachment other" example:"roads"`
	Ward        string  `json:"ward,omitempty" validate:"max=100" example:"Ward 12 - Shankar Nagar"`
	Latitude    float64 `json:"latitude,omitempty" example:"21.2514"`
	Longitude   float64 `json:"longitude,omitempty" example:"81.6296"`
}

func (r CreateComplaintRequest) Validate() error {
	return GetValidator().Struct(r)
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000" example:"Same issue on the parallel lane."`
}

func (r CreateCommentRequest) Validate() error {
	return GetValidator().Struct(r)
}

type ChatMessageRequest struct {
	Message string `json:"message" validate:"required,min=1,max=2000" example:"How do I track my complaint?"`
}

func (r ChatMessageRequest) Validate() error {
	return GetValidator().Struct(r)
}

type ResolveComplaintRequest struct {
	Status     string `json:"status" validate:"required,oneof=in_progress resolved rejected" example:"resolved"`
	Resolution string `json:"resolution,omitempty" validate:"max=2000" example:"Road patched on 2025-06-03."`
}

func (r ResolveComplaintRequest) Validate() error {
	return GetValidator().Struct(r)
}

// ==================== COMPLAINT RESPONSE DTOs ====================

type ComplaintResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Ward          string     `json:"ward,omitempty"`
	Location      string     `json:"location,omitempty"`
	Latitude      float64    `json:"latitude,omitempty"`
	Longitude     float64    `json:"longitude,omitempty"`
	Status        string     `json:"status"`
	Upvotes       int        `json:"upvotes"`
	AttachmentURL string     `json:"attachment_url,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type ComplaintListResponse struct {
	Complaints []ComplaintResponse `json:"complaints"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
}

type CommentResponse struct {
	ID          string    `json:"id"`
	ComplaintID string    `json:"complaint_id"`
	UserID      string    `json:"user_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

type VoteResponse struct {
	ComplaintID string `json:"complaint_id"`
	Upvotes     int    `json:"upvotes"`
}

type TokenBalanceResponse struct {
	UserID  string `json:"user_id"`
	Balance int    `json:"balance"`
}

type AttachmentResponse struct {
	ComplaintID   string `json:"complaint_id"`
	AttachmentURL string `json:"attachment_url"`
}

type NotificationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Severity  string    `json:"severity,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
