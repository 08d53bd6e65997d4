package services

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raipur-smart-connect/raipur_api/security"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSecurityService() *SecurityService {
	svc := &SecurityService{}
	svc.initCore(security.NopNotifier{})
	return svc
}

func newRateLimitedApp(svc *SecurityService, category string) *fiber.App {
	app := fiber.New()
	app.Post("/submit", svc.RateLimit(category), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, ip string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set("X-Forwarded-For", ip)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp.StatusCode, body
}

func TestRateLimitMiddlewareAllowsWithinThreshold(t *testing.T) {
	svc := newTestSecurityService()
	app := newRateLimitedApp(svc, security.CategoryComplaintSubmit)

	for i := 0; i < 5; i++ {
		status, _ := doRequest(t, app, "198.51.100.10")
		assert.Equal(t, http.StatusOK, status)
	}
}

func TestRateLimitMiddlewareWarningResponse(t *testing.T) {
	svc := newTestSecurityService()
	app := newRateLimitedApp(svc, security.CategoryComplaintSubmit)

	for i := 0; i < 5; i++ {
		doRequest(t, app, "198.51.100.11")
	}

	status, body := doRequest(t, app, "198.51.100.11")
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, float64(1), body["warnings"])
	assert.Equal(t, float64(3), body["maxWarnings"])
	assert.Equal(t, float64(60), body["retryAfter"])
	assert.Equal(t, false, body["blocked"])
}

func TestRateLimitMiddlewareEscalatesToBlock(t *testing.T) {
	svc := newTestSecurityService()
	app := newRateLimitedApp(svc, security.CategoryComplaintSubmit)

	// 5 allowed, then 3 violations escalating to a block
	for i := 0; i < 7; i++ {
		doRequest(t, app, "198.51.100.12")
	}

	status, body := doRequest(t, app, "198.51.100.12")
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, float64(3), body["warnings"])
	assert.Equal(t, true, body["blocked"])

	// Third warning also put the IP on the blocklist
	status, body = doRequest(t, app, "198.51.100.12")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, true, body["blocked"])
	assert.Contains(t, body["message"], "IP address has been blocked")
}

func TestRateLimitMiddlewareUnknownCategoryPassesThrough(t *testing.T) {
	svc := newTestSecurityService()
	app := newRateLimitedApp(svc, "nonexistent")

	for i := 0; i < 100; i++ {
		status, _ := doRequest(t, app, "198.51.100.13")
		assert.Equal(t, http.StatusOK, status)
	}
}

func TestScreenSubmissionRejectsSpamContent(t *testing.T) {
	svc := newTestSecurityService()
	id := security.UserIdentity("usr-1", "198.51.100.14")

	err := svc.ScreenSubmission(id, "complaint", "FREE MONEY for everyone, click now")
	require.Error(t, err)

	var contentErr *security.ContentError
	require.ErrorAs(t, err, &contentErr)
	assert.Contains(t, contentErr.Reason, "free money")
}

func TestScreenSubmissionDetectsDuplicates(t *testing.T) {
	svc := newTestSecurityService()
	id := security.UserIdentity("usr-2", "198.51.100.15")

	require.NoError(t, svc.ScreenSubmission(id, "complaint", "Streetlight out near Moudhapara crossing"))

	err := svc.ScreenSubmission(id, "complaint", "Streetlight out near Moudhapara crossing")
	assert.ErrorIs(t, err, ErrDuplicateSubmission)

	// Duplicate of a different submission type is unaffected
	require.NoError(t, svc.ScreenSubmission(id, "comment", "Streetlight out near Moudhapara crossing"))
}

func TestScreenSubmissionDuplicateRecordsHighSeverity(t *testing.T) {
	svc := newTestSecurityService()
	id := security.UserIdentity("usr-3", "198.51.100.16")

	require.NoError(t, svc.ScreenSubmission(id, "complaint", "Overflowing garbage bin at Pandri market"))
	require.Error(t, svc.ScreenSubmission(id, "complaint", "Overflowing garbage bin at Pandri market"))

	activity := svc.RecentActivity(10)
	require.Equal(t, 1, activity.Count)
	assert.Equal(t, security.SeverityHigh, activity.Activity[0].Severity)
	assert.Equal(t, "user:usr-3", activity.Activity[0].Identifier)
}

func TestRespondScreeningErrorShapes(t *testing.T) {
	svc := newTestSecurityService()

	app := fiber.New()
	app.Post("/content", func(c *fiber.Ctx) error {
		return svc.RespondScreeningError(c, &security.ContentError{Reason: "Excessive capitalization"})
	})
	app.Post("/duplicate", func(c *fiber.Ctx) error {
		return svc.RespondScreeningError(c, ErrDuplicateSubmission)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/content", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, "Content validation failed", body["message"])
	assert.Equal(t, "Excessive capitalization", body["reason"])

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/duplicate", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, "duplicate", body["reason"])
}

func TestUnblockIdentityAndIP(t *testing.T) {
	svc := newTestSecurityService()
	app := newRateLimitedApp(svc, security.CategoryComplaintSubmit)

	for i := 0; i < 8; i++ {
		doRequest(t, app, "198.51.100.17")
	}

	stats := svc.Stats()
	assert.Equal(t, 1, stats.BlockedIdentities)
	assert.Equal(t, 1, stats.BlockedIPs)

	assert.True(t, svc.UnblockIP("198.51.100.17"))
	assert.False(t, svc.UnblockIP("198.51.100.17"))

	assert.True(t, svc.UnblockIdentity("ip:198.51.100.17"))
	assert.False(t, svc.UnblockIdentity("ip:198.51.100.17"))

	status, _ := doRequest(t, app, "198.51.100.17")
	assert.Equal(t, http.StatusOK, status)
}
