package user

import "time"

// User is a Telegram account we have seen at least once. Created on first
// contact, refreshed on every contact, never deleted.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
