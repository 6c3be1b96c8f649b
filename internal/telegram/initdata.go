package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// VerifyInitData checks the signed init-data string a mini-app sends in the
// X-Tg-Data header. The digest is HMAC-SHA256 over the sorted, newline-joined
// key=value pairs (hash excluded), keyed with HMAC-SHA256("WebAppData",
// botToken) per the Bot API docs.
func VerifyInitData(initData, botToken string) bool {
	params, err := url.ParseQuery(initData)
	if err != nil {
		return false
	}

	suppliedHash := params.Get("hash")
	if suppliedHash == "" {
		return false
	}
	params.Del("hash")

	pairs := make([]string, 0, len(params))
	for key, values := range params {
		for _, value := range values {
			pairs = append(pairs, key+"="+value)
		}
	}
	sort.Strings(pairs)
	dataCheckString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(dataCheckString))
	calculated := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(calculated), []byte(suppliedHash))
}
