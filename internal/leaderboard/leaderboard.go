package leaderboard

import "github.com/google/uuid"

// Entry is one leaderboard row, formatted for the mini-app.
type Entry struct {
	ID      uuid.UUID `json:"id"`
	PetName string    `json:"petName"`
	Count   int       `json:"count"`
	Players string    `json:"players"`
}
