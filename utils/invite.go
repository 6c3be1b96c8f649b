package utils

import (
	"fmt"
	"net/url"
)

// InviteLink is the deep link a user shares to pair up. Opening it starts the
// bot with the inviter's id as the /start payload.
func InviteLink(botUsername string, userID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%d", botUsername, userID)
}

// ShareLink wraps an invite link in Telegram's share dialog URL.
func ShareLink(inviteLink string) string {
	return fmt.Sprintf(
		"https://t.me/share/url?url=%s&text=%s",
		url.QueryEscape(inviteLink),
		url.QueryEscape("Let's raise a shared fire dragon!"),
	)
}

// DisplayName picks the best label we have for a user. The leaderboard and
// bot replies must never show an empty name.
func DisplayName(username, firstName string) string {
	if username != "" {
		return username
	}
	if firstName != "" {
		return firstName
	}
	return "Player"
}
