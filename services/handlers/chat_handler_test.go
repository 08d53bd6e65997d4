package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/raipur-smart-connect/raipur_api/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatTestApp(fake *fakeSecurityService) *fiber.App {
	app := fiber.New()
	h := NewChatHandler(fake)
	app.Post("/chat/messages", h.SendMessage)
	return app
}

func postChat(t *testing.T, app *fiber.App, payload string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/chat/messages", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func TestSendMessageAccepted(t *testing.T) {
	fake := &fakeSecurityService{}
	app := newChatTestApp(fake)

	status, _ := postChat(t, app, `{"message":"How do I track my complaint?"}`)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, fake.identities, 1)
	assert.Equal(t, "ip:203.0.113.50", fake.identities[0].Key())
}

func TestSendMessageRejectsEmptyBody(t *testing.T) {
	fake := &fakeSecurityService{}
	app := newChatTestApp(fake)

	status, _ := postChat(t, app, `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Empty(t, fake.identities)
}

func TestSendMessageScreeningFailure(t *testing.T) {
	fake := &fakeSecurityService{
		screenErr: &security.ContentError{Reason: "Content contains prohibited keyword: casino"},
	}
	app := newChatTestApp(fake)

	status, body := postChat(t, app, `{"message":"best casino in town"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Content validation failed", body["message"])
	assert.Contains(t, body["reason"], "casino")
}
