package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInviteLink(t *testing.T) {
	assert.Equal(t, "https://t.me/fireDragonBot?start=42", InviteLink("fireDragonBot", 42))
}

func TestShareLinkEscapesInvite(t *testing.T) {
	link := ShareLink(InviteLink("fireDragonBot", 42))
	assert.Contains(t, link, "https://t.me/share/url?url=")
	assert.Contains(t, link, "https%3A%2F%2Ft.me%2FfireDragonBot%3Fstart%3D42")
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "ana", DisplayName("ana", "Ana"))
	assert.Equal(t, "Ana", DisplayName("", "Ana"))
	assert.Equal(t, "Player", DisplayName("", ""))
}
