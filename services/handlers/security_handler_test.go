package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/raipur-smart-connect/raipur_api/dto"
	"github.com/raipur-smart-connect/raipur_api/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecurityService struct {
	stats      dto.SecurityStatsResponse
	activity   dto.SecurityActivityResponse
	screenErr  error
	unblocked  []string
	unblockOK  bool
	lastLimit  int
	identities []security.Identity
}

func (f *fakeSecurityService) ScreenSubmission(id security.Identity, submissionType, content string) error {
	f.identities = append(f.identities, id)
	return f.screenErr
}

func (f *fakeSecurityService) RespondScreeningError(c *fiber.Ctx, err error) error {
	var contentErr *security.ContentError
	if ok := errorsAs(err, &contentErr); ok {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Content validation failed",
			"reason":  contentErr.Reason,
		})
	}
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{
		"message": "Duplicate submission detected. Please wait before resubmitting.",
		"reason":  "duplicate",
	})
}

func errorsAs(err error, target **security.ContentError) bool {
	e, ok := err.(*security.ContentError)
	if ok {
		*target = e
	}
	return ok
}

func (f *fakeSecurityService) IdentityFromCtx(c *fiber.Ctx) security.Identity {
	return security.AnonymousIdentity("203.0.113.50")
}

func (f *fakeSecurityService) Stats() dto.SecurityStatsResponse {
	return f.stats
}

func (f *fakeSecurityService) RecentActivity(limit int) dto.SecurityActivityResponse {
	f.lastLimit = limit
	return f.activity
}

func (f *fakeSecurityService) UnblockIdentity(identifier string) bool {
	f.unblocked = append(f.unblocked, identifier)
	return f.unblockOK
}

func (f *fakeSecurityService) UnblockIP(ip string) bool {
	f.unblocked = append(f.unblocked, ip)
	return f.unblockOK
}

func newSecurityTestApp(fake *fakeSecurityService) *fiber.App {
	app := fiber.New()
	h := NewSecurityHandler(fake)
	app.Get("/stats", h.Stats)
	app.Get("/activity", h.Activity)
	app.Post("/unblock-user", h.UnblockUser)
	app.Post("/unblock-ip", h.UnblockIP)
	return app
}

func TestStatsHandler(t *testing.T) {
	fake := &fakeSecurityService{
		stats: dto.SecurityStatsResponse{
			TrackedEntries:    12,
			BlockedIdentities: 2,
			BlockedIPs:        1,
		},
	}
	app := newSecurityTestApp(fake)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data dto.SecurityStatsResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 12, body.Data.TrackedEntries)
	assert.Equal(t, 2, body.Data.BlockedIdentities)
}

func TestActivityHandlerClampsLimit(t *testing.T) {
	fake := &fakeSecurityService{}
	app := newSecurityTestApp(fake)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/activity?limit=50000", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 100, fake.lastLimit)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/activity?limit=25", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 25, fake.lastLimit)
}

func TestUnblockUserHandler(t *testing.T) {
	fake := &fakeSecurityService{unblockOK: true}
	app := newSecurityTestApp(fake)

	req := httptest.NewRequest(http.MethodPost, "/unblock-user", strings.NewReader(`{"identifier":"user:usr-9"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"user:usr-9"}, fake.unblocked)

	var body struct {
		Message string              `json:"message"`
		Data    dto.UnblockResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Data.Cleared)
	assert.Equal(t, "Identity unblocked", body.Message)
}

func TestUnblockUserHandlerRequiresIdentifier(t *testing.T) {
	fake := &fakeSecurityService{}
	app := newSecurityTestApp(fake)

	req := httptest.NewRequest(http.MethodPost, "/unblock-user", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, fake.unblocked)
}

func TestUnblockIPHandlerValidatesAddress(t *testing.T) {
	fake := &fakeSecurityService{unblockOK: false}
	app := newSecurityTestApp(fake)

	req := httptest.NewRequest(http.MethodPost, "/unblock-ip", strings.NewReader(`{"ip":"not-an-ip"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/unblock-ip", strings.NewReader(`{"ip":"203.0.113.7"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err = app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Message string              `json:"message"`
		Data    dto.UnblockResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Data.Cleared)
	assert.Equal(t, "IP not on blocklist", body.Message)
}
