package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"fireDragonAPI/internal/telegram"
	"fireDragonAPI/services"
)

// WebhookHandler receives Telegram updates pushed via setWebhook, as an
// alternative to the long-polling loop. Both paths feed the same BotService.
type WebhookHandler struct {
	bot         *services.BotService
	secretToken string
}

// NewWebhookHandler builds the handler. An empty secretToken means the
// service runs in polling mode and the webhook route must not accept
// anything: updates already arrive via getUpdates, and an open route would
// let anyone inject synthetic ones.
func NewWebhookHandler(bot *services.BotService, secretToken string) *WebhookHandler {
	return &WebhookHandler{
		bot:         bot,
		secretToken: secretToken,
	}
}

func (h *WebhookHandler) HandleTelegramWebhook(w http.ResponseWriter, r *http.Request) {
	if h.secretToken == "" {
		http.NotFound(w, r)
		return
	}

	supplied := r.Header.Get("X-Telegram-Bot-Api-Secret-Token")
	if subtle.ConstantTimeCompare([]byte(h.secretToken), []byte(supplied)) != 1 {
		log.Println("Webhook request with invalid secret token")
		http.Error(w, "Invalid secret token", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading webhook body: %v", err)
		http.Error(w, "Error reading body", http.StatusBadRequest)
		return
	}

	var update telegram.Update
	if err := json.Unmarshal(body, &update); err != nil {
		log.Printf("Error parsing webhook update: %v", err)
		http.Error(w, "Error parsing update", http.StatusBadRequest)
		return
	}

	// HandleUpdate never returns an error; failures are logged with the
	// update id so Telegram does not redeliver endlessly.
	h.bot.HandleUpdate(r.Context(), &update)

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}
