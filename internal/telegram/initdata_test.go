package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testToken = "12345:test-bot-token"

// signInitData produces an init-data string the way Telegram clients do.
func signInitData(t *testing.T, params map[string]string) string {
	t.Helper()

	pairs := make([]string, 0, len(params))
	for k, v := range params {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(testToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	values.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return values.Encode()
}

func TestVerifyInitDataValid(t *testing.T) {
	initData := signInitData(t, map[string]string{
		"auth_date": "1717243800",
		"query_id":  "AAH9mQEAAAAAAP2ZAQ",
		"user":      `{"id":123,"first_name":"Ana"}`,
	})

	assert.True(t, VerifyInitData(initData, testToken))
}

func TestVerifyInitDataTampered(t *testing.T) {
	initData := signInitData(t, map[string]string{
		"auth_date": "1717243800",
		"user":      `{"id":123,"first_name":"Ana"}`,
	})

	tampered := strings.Replace(initData, "123", "456", 1)
	assert.False(t, VerifyInitData(tampered, testToken))
}

func TestVerifyInitDataWrongToken(t *testing.T) {
	initData := signInitData(t, map[string]string{
		"auth_date": "1717243800",
	})

	assert.False(t, VerifyInitData(initData, "12345:another-token"))
}

func TestVerifyInitDataMissingHash(t *testing.T) {
	assert.False(t, VerifyInitData("auth_date=1717243800&user=x", testToken))
	assert.False(t, VerifyInitData("", testToken))
}
