package middleware

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"fireDragonAPI/internal/telegram"
)

// TelegramAuthMiddleware validates the signed init-data the mini-app sends in
// the X-Tg-Data header. A missing or placeholder value passes with a warning:
// the web app is also opened in plain browsers during development, where no
// init-data exists. TODO: gate the bypass behind an env flag before a public
// deployment.
func TelegramAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		initData := r.Header.Get("X-Tg-Data")

		if initData == "" || initData == "undefined" {
			log.Println("⚠️ Init-data check skipped (browser test)")
			next.ServeHTTP(w, r)
			return
		}

		if !telegram.VerifyInitData(initData, os.Getenv("BOT_TOKEN")) {
			respondWithError(w, http.StatusForbidden, "Access denied. Invalid Telegram data.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(fmt.Sprintf(`{"error": "%s"}`, message)))
}
