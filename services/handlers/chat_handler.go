package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/raipur-smart-connect/raipur_api/dto"
	"github.com/raipur-smart-connect/raipur_api/shared"
)

// ChatHandler screens helpdesk chat messages before they reach the support
// relay.
type ChatHandler struct {
	securitySvc SecurityServiceInterface
}

func NewChatHandler(securitySvc SecurityServiceInterface) *ChatHandler {
	return &ChatHandler{
		securitySvc: securitySvc,
	}
}

// @Summary Send a helpdesk chat message
// @Description Screen and accept a chat message for the municipal helpdesk
// @Tags chat
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param chatRequest body dto.ChatMessageRequest true "Chat message"
// @Success 200 {object} shared.Response
// @Router /api/v1/chat/messages [post]
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	var req dto.ChatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	id := h.securitySvc.IdentityFromCtx(c)
	if err := h.securitySvc.ScreenSubmission(id, shared.SubmissionTypeChat, req.Message); err != nil {
		return h.securitySvc.RespondScreeningError(c, err)
	}

	// Accepted messages are handed to the helpdesk relay out of band; the
	// API only acknowledges receipt.
	return shared.ResponseJSON(c, http.StatusOK, "Message accepted", fiber.Map{
		"accepted_at": time.Now().UTC(),
	})
}
