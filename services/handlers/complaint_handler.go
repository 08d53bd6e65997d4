package handlers

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/raipur-smart-connect/raipur_api/dto"
	"github.com/raipur-smart-connect/raipur_api/shared"
)

type ComplaintHandler struct {
	complaintSvc    ComplaintServiceInterface
	securitySvc     SecurityServiceInterface
	notificationSvc NotificationServiceInterface
}

func NewComplaintHandler(complaintSvc ComplaintServiceInterface, securitySvc SecurityServiceInterface, notificationSvc NotificationServiceInterface) *ComplaintHandler {
	return &ComplaintHandler{
		complaintSvc:    complaintSvc,
		securitySvc:     securitySvc,
		notificationSvc: notificationSvc,
	}
}

// @Summary File a complaint
// @Description Submit a new civic complaint
// @Tags complaints
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param complaintRequest body dto.CreateComplaintRequest true "Complaint details"
// @Success 201 {object} shared.Response{data=dto.ComplaintResponse}
// @Router /api/v1/complaints [post]
func (h *ComplaintHandler) CreateComplaint(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	id := h.securitySvc.IdentityFromCtx(c)
	if err := h.securitySvc.ScreenSubmission(id, shared.SubmissionTypeComplaint, req.Title+"\n"+req.Description); err != nil {
		return h.securitySvc.RespondScreeningError(c, err)
	}

	resp, err := h.complaintSvc.CreateComplaint(userID, id.IP(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Complaint filed successfully", resp)
}

// @Summary List complaints
// @Description List complaints with optional status, category and ward filters
// @Tags complaints
// @Accept json
// @Produce json
// @Param status query string false "Filter by status"
// @Param category query string false "Filter by category"
// @Param ward query string false "Filter by ward"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} shared.Response{data=dto.ComplaintListResponse}
// @Router /api/v1/complaints [get]
func (h *ComplaintHandler) ListComplaints(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	resp, err := h.complaintSvc.ListComplaints(c.Query("status"), c.Query("category"), c.Query("ward"), page, limit)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Get a complaint
// @Description Get one complaint by id
// @Tags complaints
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} shared.Response{data=dto.ComplaintResponse}
// @Router /api/v1/complaints/{id} [get]
func (h *ComplaintHandler) GetComplaint(c *fiber.Ctx) error {
	resp, err := h.complaintSvc.GetComplaint(c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Update complaint status
// @Description Move a complaint to in_progress, resolved or rejected. Officials only.
// @Tags complaints
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Official Bearer Token" default(Bearer <official_token>)
// @Param id path string true "Complaint ID"
// @Param resolveRequest body dto.ResolveComplaintRequest true "New status"
// @Success 200 {object} shared.Response{data=dto.ComplaintResponse}
// @Router /api/v1/complaints/{id}/status [put]
func (h *ComplaintHandler) UpdateStatus(c *fiber.Ctx) error {
	officialID := c.Locals(shared.UserID).(string)

	var req dto.ResolveComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.complaintSvc.UpdateStatus(c.Params("id"), officialID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Complaint status updated", resp)
}

// @Summary Comment on a complaint
// @Description Post a comment under a complaint
// @Tags complaints
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param id path string true "Complaint ID"
// @Param commentRequest body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} shared.Response{data=dto.CommentResponse}
// @Router /api/v1/complaints/{id}/comments [post]
func (h *ComplaintHandler) AddComment(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	id := h.securitySvc.IdentityFromCtx(c)
	if err := h.securitySvc.ScreenSubmission(id, shared.SubmissionTypeComment, req.Content); err != nil {
		return h.securitySvc.RespondScreeningError(c, err)
	}

	resp, err := h.complaintSvc.AddComment(c.Params("id"), userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Comment posted", resp)
}

// @Summary List comments
// @Description List the comments under a complaint
// @Tags complaints
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} shared.Response{data=[]dto.CommentResponse}
// @Router /api/v1/complaints/{id}/comments [get]
func (h *ComplaintHandler) ListComments(c *fiber.Ctx) error {
	resp, err := h.complaintSvc.ListComments(c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Upvote a complaint
// @Description Upvote a complaint once per user
// @Tags complaints
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param id path string true "Complaint ID"
// @Success 200 {object} shared.Response{data=dto.VoteResponse}
// @Router /api/v1/complaints/{id}/vote [post]
func (h *ComplaintHandler) Vote(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.complaintSvc.Vote(c.Params("id"), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Vote recorded", resp)
}

// @Summary Attach a file
// @Description Attach a photo or document to an own complaint
// @Tags complaints
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param id path string true "Complaint ID"
// @Param file formData file true "Attachment"
// @Success 200 {object} shared.Response{data=dto.AttachmentResponse}
// @Router /api/v1/complaints/{id}/attachment [post]
func (h *ComplaintHandler) AttachFile(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return shared.NewBadRequestError("Missing file upload", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return shared.NewBadRequestError("Could not read file upload", nil)
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(file); err != nil {
		return shared.NewBadRequestError("Could not read file upload", nil)
	}

	resp, err := h.complaintSvc.AttachFile(c.Params("id"), userID, &buf, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Attachment uploaded", resp)
}

// @Summary Get token balance
// @Description Get the caller's civic token balance
// @Tags tokens
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.TokenBalanceResponse}
// @Router /api/v1/tokens/balance [get]
func (h *ComplaintHandler) TokenBalance(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.complaintSvc.TokenBalance(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary List notifications
// @Description List the caller's notifications, most recent first
// @Tags notifications
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param limit query int false "Max notifications to return"
// @Success 200 {object} shared.Response{data=[]dto.NotificationResponse}
// @Router /api/v1/notifications [get]
func (h *ComplaintHandler) ListNotifications(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	notifications, err := h.notificationSvc.UserNotifications(userID, limit)
	if err != nil {
		return err
	}

	out := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, dto.NotificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Body:      n.Body,
			Severity:  n.Severity,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", out)
}

// @Summary Mark notification read
// @Description Mark one of the caller's notifications as read
// @Tags notifications
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param id path string true "Notification ID"
// @Success 200 {object} shared.Response
// @Router /api/v1/notifications/{id}/read [post]
func (h *ComplaintHandler) MarkNotificationRead(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	if err := h.notificationSvc.MarkRead(c.Params("id"), userID); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Notification marked read", nil)
}
