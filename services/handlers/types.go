package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/raipur-smart-connect/raipur_api/dto"
	"github.com/raipur-smart-connect/raipur_api/model"
	"github.com/raipur-smart-connect/raipur_api/security"
)

type AuthServiceInterface interface {
	Register(req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(req dto.LoginRequest) (*dto.LoginResponse, error)
	RequiredAuth() fiber.Handler
	OptionalAuth() fiber.Handler
	RequireOfficial() fiber.Handler
}

type ComplaintServiceInterface interface {
	CreateComplaint(userID, clientIP string, req dto.CreateComplaintRequest) (*dto.ComplaintResponse, error)
	GetComplaint(id string) (*dto.ComplaintResponse, error)
	ListComplaints(status, category, ward string, page, limit int) (*dto.ComplaintListResponse, error)
	UpdateStatus(complaintID, officialID string, req dto.ResolveComplaintRequest) (*dto.ComplaintResponse, error)
	AddComment(complaintID, userID string, req dto.CreateCommentRequest) (*dto.CommentResponse, error)
	ListComments(complaintID string) ([]dto.CommentResponse, error)
	Vote(complaintID, userID string) (*dto.VoteResponse, error)
	AttachFile(complaintID, userID string, reader io.Reader, size int64, contentType string) (*dto.AttachmentResponse, error)
	TokenBalance(userID string) (*dto.TokenBalanceResponse, error)
}

type SecurityServiceInterface interface {
	ScreenSubmission(id security.Identity, submissionType, content string) error
	RespondScreeningError(c *fiber.Ctx, err error) error
	IdentityFromCtx(c *fiber.Ctx) security.Identity
	Stats() dto.SecurityStatsResponse
	RecentActivity(limit int) dto.SecurityActivityResponse
	UnblockIdentity(identifier string) bool
	UnblockIP(ip string) bool
}

type NotificationServiceInterface interface {
	UserNotifications(userID string, limit int) ([]model.Notification, error)
	MarkRead(id, userID string) error
}
