package dto

import "time"

// ==================== AUTHENTICATION REQUEST DTOs ====================

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email" example:"citizen@example.com"`
	Username string `json:"username" validate:"required,min=3,max=30,alphanum" example:"ravishankar"`
	Password string `json:"password" validate:"required,strong_password" example:"SecurePass123!"`
	Ward     string `json:"ward,omitempty" example:"Ward 12 - Shankar Nagar"`
}

func (r RegisterRequest) Validate() error {
	return GetValidator().Struct(r)
}

type LoginRequest struct {
	EmailOrUsername string `json:"email_or_username" validate:"required" example:"citizen@example.com"`
	Password        string `json:"password" validate:"required" example:"SecurePass123!"`
}

func (l LoginRequest) Validate() error {
	return GetValidator().Struct(l)
}

// ==================== AUTHENTICATION RESPONSE DTOs ====================

type RegisterResponse struct {
	UserID  string `json:"user_id" example:"usr_123456789"`
	Message string `json:"message" example:"Registration successful."`
}

type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in" example:"86400"`
	User        UserInfo `json:"user"`
}

type TokenPair struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in" example:"86400"`
}

type UserInfo struct {
	ID        string    `json:"id" example:"usr_123456789"`
	Username  string    `json:"username" example:"ravishankar"`
	Email     string    `json:"email" example:"citizen@example.com"`
	Role      string    `json:"role" example:"citizen"`
	Ward      string    `json:"ward,omitempty" example:"Ward 12 - Shankar Nagar"`
	CreatedAt time.Time `json:"created_at"`
}
