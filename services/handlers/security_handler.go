package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/raipur-smart-connect/raipur_api/dto"
	"github.com/raipur-smart-connect/raipur_api/shared"
)

// SecurityHandler exposes the abuse mitigation admin surface. All routes are
// mounted behind the official-role middleware.
type SecurityHandler struct {
	securitySvc SecurityServiceInterface
}

func NewSecurityHandler(securitySvc SecurityServiceInterface) *SecurityHandler {
	return &SecurityHandler{
		securitySvc: securitySvc,
	}
}

// @Summary Security stats
// @Description Snapshot of tracked rate limit entries, active blocks and the blocklist
// @Tags security
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Official Bearer Token" default(Bearer <official_token>)
// @Success 200 {object} shared.Response{data=dto.SecurityStatsResponse}
// @Router /api/v1/admin/security/stats [get]
func (h *SecurityHandler) Stats(c *fiber.Ctx) error {
	return shared.ResponseJSON(c, http.StatusOK, "Success", h.securitySvc.Stats())
}

// @Summary Suspicious activity
// @Description Recent suspicious activity records, most recent first
// @Tags security
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Official Bearer Token" default(Bearer <official_token>)
// @Param limit query int false "Max records to return"
// @Success 200 {object} shared.Response{data=dto.SecurityActivityResponse}
// @Router /api/v1/admin/security/activity [get]
func (h *SecurityHandler) Activity(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", h.securitySvc.RecentActivity(limit))
}

// @Summary Unblock a user
// @Description Clear an active temporary block for an identity key
// @Tags security
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Official Bearer Token" default(Bearer <official_token>)
// @Param unblockRequest body dto.UnblockUserRequest true "Identity key, e.g. user:<id> or ip:<addr>"
// @Success 200 {object} shared.Response{data=dto.UnblockResponse}
// @Router /api/v1/admin/security/unblock-user [post]
func (h *SecurityHandler) UnblockUser(c *fiber.Ctx) error {
	var req dto.UnblockUserRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	cleared := h.securitySvc.UnblockIdentity(req.Identifier)
	message := "No active block for identifier"
	if cleared {
		message = "Identity unblocked"
	}

	return shared.ResponseJSON(c, http.StatusOK, message, dto.UnblockResponse{Cleared: cleared})
}

// @Summary Unblock an IP
// @Description Remove an IP address from the permanent blocklist
// @Tags security
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Official Bearer Token" default(Bearer <official_token>)
// @Param unblockRequest body dto.UnblockIPRequest true "IP address"
// @Success 200 {object} shared.Response{data=dto.UnblockResponse}
// @Router /api/v1/admin/security/unblock-ip [post]
func (h *SecurityHandler) UnblockIP(c *fiber.Ctx) error {
	var req dto.UnblockIPRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	cleared := h.securitySvc.UnblockIP(req.IP)
	message := "IP not on blocklist"
	if cleared {
		message = "IP unblocked"
	}

	return shared.ResponseJSON(c, http.StatusOK, message, dto.UnblockResponse{Cleared: cleared})
}
