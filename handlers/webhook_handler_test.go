package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"fireDragonAPI/services"
)

func webhookProbe(t *testing.T, h *WebhookHandler, secretHeader, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/telegram", strings.NewReader(body))
	if secretHeader != "" {
		req.Header.Set("X-Telegram-Bot-Api-Secret-Token", secretHeader)
	}

	rec := httptest.NewRecorder()
	h.HandleTelegramWebhook(rec, req)
	return rec
}

func TestWebhookRejectedInPollingMode(t *testing.T) {
	// empty secret means polling mode: the route must accept nothing,
	// even a caller guessing headers
	h := NewWebhookHandler(services.NewBotService(nil, nil, nil, "", ""), "")

	rec := webhookProbe(t, h, "", `{"update_id": 1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = webhookProbe(t, h, "s3cret", `{"update_id": 1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebhookRejectsWrongSecret(t *testing.T) {
	h := NewWebhookHandler(services.NewBotService(nil, nil, nil, "", ""), "s3cret")

	rec := webhookProbe(t, h, "", `{"update_id": 1}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = webhookProbe(t, h, "wrong", `{"update_id": 1}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookAcceptsValidDelivery(t *testing.T) {
	h := NewWebhookHandler(services.NewBotService(nil, nil, nil, "", ""), "s3cret")

	// an update without a message is valid and dropped by the dispatcher
	rec := webhookProbe(t, h, "s3cret", `{"update_id": 1}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success": true}`, rec.Body.String())
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	h := NewWebhookHandler(services.NewBotService(nil, nil, nil, "", ""), "s3cret")

	rec := webhookProbe(t, h, "s3cret", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
