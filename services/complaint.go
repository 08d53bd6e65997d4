package services

import (
	"io"
	"time"

	"github.com/raipur-smart-connect/raipur_api/dto"
	"github.com/raipur-smart-connect/raipur_api/model"
	"github.com/raipur-smart-connect/raipur_api/shared"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Token awards for civic participation.
const (
	tokensComplaintFiled    = 10
	tokensComplaintResolved = 50
	tokensCommentPosted     = 2
)

type ComplaintService struct {
	context.DefaultService

	postgresSvc     *PostgresService
	geoSvc          *GeolocationService
	minioSvc        *MinIOService
	notificationSvc *NotificationService
}

const COMPLAINT_SVC = "complaint_svc"

func (svc ComplaintService) Id() string {
	return COMPLAINT_SVC
}

func (svc *ComplaintService) Configure(ctx *context.Context) error {
	svc.postgresSvc = ctx.Service(POSTGRES_SVC).(*PostgresService)
	svc.geoSvc = ctx.Service(GEOLOCATION_SVC).(*GeolocationService)
	svc.minioSvc = ctx.Service(MINIO_SVC).(*MinIOService)
	svc.notificationSvc = ctx.Service(NOTIFICATION_SVC).(*NotificationService)
	return svc.DefaultService.Configure(ctx)
}

func (svc *ComplaintService) Start() error {
	return nil
}

// ==================== COMPLAINTS ====================

func (svc *ComplaintService) CreateComplaint(userID, clientIP string, req dto.CreateComplaintRequest) (*dto.ComplaintResponse, error) {
	now := time.Now()
	complaint := &model.Complaint{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Ward:        req.Ward,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Status:      shared.ComplaintStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Annotate with an approximate location label from the requester IP when
	// the client sent no coordinates.
	if complaint.Latitude == 0 && complaint.Longitude == 0 {
		if location, err := svc.geoSvc.GetLocationByIP(clientIP); err == nil {
			complaint.Location = location
		}
	}

	if err := svc.postgresSvc.CreateComplaint(complaint); err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	svc.awardTokens(userID, tokensComplaintFiled, shared.TokenReasonComplaintFiled, complaint.ID)

	log.WithFields(log.Fields{"complaint_id": complaint.ID, "user_id": userID, "category": complaint.Category}).Info("Complaint filed")

	resp := complaintToResponse(complaint)
	return &resp, nil
}

func (svc *ComplaintService) GetComplaint(id string) (*dto.ComplaintResponse, error) {
	complaint, err := svc.postgresSvc.GetComplaint(id)
	if err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	resp := complaintToResponse(complaint)
	if complaint.AttachmentURL != "" {
		if url, err := svc.minioSvc.GetFileURL(complaint.AttachmentURL, time.Hour); err == nil {
			resp.AttachmentURL = url
		}
	}
	return &resp, nil
}

func (svc *ComplaintService) ListComplaints(status, category, ward string, page, limit int) (*dto.ComplaintListResponse, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	complaints, total, err := svc.postgresSvc.ListComplaints(status, category, ward, page, limit)
	if err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	out := make([]dto.ComplaintResponse, 0, len(complaints))
	for i := range complaints {
		out = append(out, complaintToResponse(&complaints[i]))
	}

	return &dto.ComplaintListResponse{
		Complaints: out,
		Total:      total,
		Page:       page,
		Limit:      limit,
	}, nil
}

// UpdateStatus moves a complaint through the triage flow. Officials only;
// the filer is notified and earns tokens when their complaint resolves.
func (svc *ComplaintService) UpdateStatus(complaintID, officialID string, req dto.ResolveComplaintRequest) (*dto.ComplaintResponse, error) {
	complaint, err := svc.postgresSvc.GetComplaint(complaintID)
	if err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	if complaint.Status == shared.ComplaintStatusResolved {
		return nil, shared.NewConflictError("Complaint is already resolved")
	}

	complaint.Status = req.Status
	complaint.UpdatedAt = time.Now()
	if req.Status == shared.ComplaintStatusResolved {
		now := time.Now()
		complaint.ResolvedBy = officialID
		complaint.ResolvedAt = &now
	}

	if err := svc.postgresSvc.UpdateComplaint(complaint); err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	if err := svc.notificationSvc.NotifyComplaintStatus(complaint.UserID, complaint.ID, complaint.Title, complaint.Status); err != nil {
		log.WithError(err).WithField("complaint_id", complaint.ID).Warn("Failed to notify complaint status change")
	}

	if req.Status == shared.ComplaintStatusResolved {
		svc.awardTokens(complaint.UserID, tokensComplaintResolved, shared.TokenReasonComplaintResolved, complaint.ID)
	}

	log.WithFields(log.Fields{"complaint_id": complaint.ID, "status": complaint.Status, "official_id": officialID}).Info("Complaint status updated")

	resp := complaintToResponse(complaint)
	return &resp, nil
}

// ==================== COMMENTS ====================

func (svc *ComplaintService) AddComment(complaintID, userID string, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	if _, err := svc.postgresSvc.GetComplaint(complaintID); err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	now := time.Now()
	comment := &model.Comment{
		ID:          uuid.New().String(),
		ComplaintID: complaintID,
		UserID:      userID,
		Content:     req.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := svc.postgresSvc.CreateComment(comment); err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	svc.awardTokens(userID, tokensCommentPosted, shared.TokenReasonCommentPosted, comment.ID)

	return &dto.CommentResponse{
		ID:          comment.ID,
		ComplaintID: comment.ComplaintID,
		UserID:      comment.UserID,
		Content:     comment.Content,
		CreatedAt:   comment.CreatedAt,
	}, nil
}

func (svc *ComplaintService) ListComments(complaintID string) ([]dto.CommentResponse, error) {
	comments, err := svc.postgresSvc.GetComplaintComments(complaintID)
	if err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	out := make([]dto.CommentResponse, 0, len(comments))
	for _, cm := range comments {
		out = append(out, dto.CommentResponse{
			ID:          cm.ID,
			ComplaintID: cm.ComplaintID,
			UserID:      cm.UserID,
			Content:     cm.Content,
			CreatedAt:   cm.CreatedAt,
		})
	}
	return out, nil
}

// ==================== VOTES ====================

func (svc *ComplaintService) Vote(complaintID, userID string) (*dto.VoteResponse, error) {
	if _, err := svc.postgresSvc.GetComplaint(complaintID); err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	voted, err := svc.postgresSvc.HasVoted(complaintID, userID)
	if err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}
	if voted {
		return nil, shared.NewConflictError("You have already upvoted this complaint")
	}

	vote := &model.Vote{
		ID:          uuid.New().String(),
		ComplaintID: complaintID,
		UserID:      userID,
		CreatedAt:   time.Now(),
	}

	upvotes, err := svc.postgresSvc.CastVote(vote)
	if err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	return &dto.VoteResponse{ComplaintID: complaintID, Upvotes: upvotes}, nil
}

// ==================== ATTACHMENTS ====================

func (svc *ComplaintService) AttachFile(complaintID, userID string, reader io.Reader, size int64, contentType string) (*dto.AttachmentResponse, error) {
	complaint, err := svc.postgresSvc.GetComplaint(complaintID)
	if err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}
	if complaint.UserID != userID {
		return nil, shared.NewForbiddenError("Only the complaint owner can attach files")
	}

	objectName, err := svc.minioSvc.UploadComplaintAttachment(complaintID, reader, size, contentType)
	if err != nil {
		return nil, shared.NewBadRequestError("Attachment rejected", err.Error())
	}

	complaint.AttachmentURL = objectName
	complaint.UpdatedAt = time.Now()
	if err := svc.postgresSvc.UpdateComplaint(complaint); err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	url, err := svc.minioSvc.GetFileURL(objectName, time.Hour)
	if err != nil {
		url = objectName
	}

	return &dto.AttachmentResponse{ComplaintID: complaintID, AttachmentURL: url}, nil
}

// ==================== TOKENS ====================

func (svc *ComplaintService) TokenBalance(userID string) (*dto.TokenBalanceResponse, error) {
	balance, err := svc.postgresSvc.GetTokenBalance(userID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, svc.postgresSvc.HandleError(err)
	}
	return &dto.TokenBalanceResponse{UserID: userID, Balance: balance}, nil
}

func (svc *ComplaintService) awardTokens(userID string, amount int, reason, referenceID string) {
	tx := &model.TokenTransaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Amount:      amount,
		Reason:      reason,
		ReferenceID: referenceID,
		CreatedAt:   time.Now(),
	}
	if err := svc.postgresSvc.CreateTokenTransaction(tx); err != nil {
		log.WithError(err).WithFields(log.Fields{"user_id": userID, "reason": reason}).Warn("Failed to award tokens")
	}
}

func complaintToResponse(c *model.Complaint) dto.ComplaintResponse {
	return dto.ComplaintResponse{
		ID:            c.ID,
		UserID:        c.UserID,
		Title:         c.Title,
		Description:   c.Description,
		Category:      c.Category,
		Ward:          c.Ward,
		Location:      c.Location,
		Latitude:      c.Latitude,
		Longitude:     c.Longitude,
		Status:        c.Status,
		Upvotes:       c.Upvotes,
		AttachmentURL: c.AttachmentURL,
		ResolvedAt:    c.ResolvedAt,
		CreatedAt:     c.CreatedAt,
	}
}
