package streak

import (
	"time"

	"github.com/google/uuid"
)

// DefaultPetName is assigned when a pair is first linked.
const DefaultPetName = "Drago"

// DailyMessageGoal is the per-member daily message count that earns a freeze.
const DailyMessageGoal = 100

// NudgeAfter is how stale a partner's activity must be before the other
// member's messages trigger a nudge.
const NudgeAfter = 3 * time.Hour

type Streak struct {
	ID               uuid.UUID `json:"id"`
	User1ID          int64     `json:"user1Id"`
	User2ID          int64     `json:"user2Id"`
	GroupID          *int64    `json:"groupId"`
	Count            int       `json:"count"`
	PetName          string    `json:"petName"`
	LastActivity1    time.Time `json:"lastActivity1"`
	LastActivity2    time.Time `json:"lastActivity2"`
	LastCheckIn      time.Time `json:"lastCheckIn"`
	DailyMsgs1       int       `json:"dailyMsgs1"`
	DailyMsgs2       int       `json:"dailyMsgs2"`
	FreezesAvailable int       `json:"freezesAvailable"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// SlotOf returns 1 or 2 for a member of the pair, 0 for anyone else.
// A group-bound streak can be fed by non-members, which must not touch
// either member's activity slot.
func (s *Streak) SlotOf(userID int64) int {
	switch userID {
	case s.User1ID:
		return 1
	case s.User2ID:
		return 2
	}
	return 0
}

// PartnerOf returns the other member's id. Callers must pass a member id.
func (s *Streak) PartnerOf(userID int64) int64 {
	if userID == s.User1ID {
		return s.User2ID
	}
	return s.User1ID
}

// AchievementCrossed reports whether a message that just raised a member's
// daily counter to newCount earns the freeze. Equality, not >=: the grant
// happens exactly once per crossing, never again on later messages.
func AchievementCrossed(newCount int) bool {
	return newCount == DailyMessageGoal
}

// ShouldNudge reports whether the partner has been quiet long enough that a
// fresh message from the other member should ping them.
func ShouldNudge(partnerLast, now time.Time) bool {
	return now.Sub(partnerLast) > NudgeAfter
}

// ApplyFreeze consumes one freeze and resets both activity timestamps,
// forcing health back to 100. Returns false and leaves the streak untouched
// when the inventory is empty.
func (s *Streak) ApplyFreeze(now time.Time) bool {
	if s.FreezesAvailable <= 0 {
		return false
	}

	s.FreezesAvailable--
	s.LastActivity1 = now
	s.LastActivity2 = now
	return true
}

// Health derives the pet's health from both members' last activity.
// It is recomputed on every read and never persisted as authoritative state.
func Health(last1, last2, now time.Time) int {
	diff1 := now.Sub(last1).Hours()
	diff2 := now.Sub(last2).Hours()

	switch {
	case diff1 <= 24 && diff2 <= 24:
		return 100
	case diff1 <= 24 || diff2 <= 24:
		return 50
	}
	return 0
}

// SweepResult is what one decay-sweep pass decides for a single streak.
type SweepResult struct {
	WarnUser1 bool
	WarnUser2 bool
	Death     bool
}

// Sweep computes the hourly decay decisions for a streak. The warning window
// (20, 21) is sized to the hourly cadence so each member is warned exactly
// once per silence. Death fires once: both members past 24h while the
// more-recently-active one is still inside the first hour beyond it.
func Sweep(s *Streak, now time.Time) SweepResult {
	diff1 := now.Sub(s.LastActivity1).Hours()
	diff2 := now.Sub(s.LastActivity2).Hours()

	res := SweepResult{
		WarnUser1: diff1 > 20 && diff1 < 21,
		WarnUser2: diff2 > 20 && diff2 < 21,
	}

	if diff1 >= 24 && diff2 >= 24 && min(diff1, diff2) < 25 {
		res.Death = true
	}

	return res
}

// OrderPair canonicalizes an unordered pair so user1 always holds the lower
// id. Keeps the (user1_id, user2_id) unique constraint duplicate-free no
// matter which side sent the invite.
func OrderPair(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}
