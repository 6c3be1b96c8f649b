package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func hoursAgo(h float64) time.Time {
	return now.Add(-time.Duration(h * float64(time.Hour)))
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		diff1  float64
		diff2  float64
		health int
	}{
		{"both fresh", 1, 1, 100},
		{"both exactly at 24h", 24, 24, 100},
		{"one fresh one stale", 10, 30, 50},
		{"other slot stale", 30, 10, 50},
		{"one just past 24h", 24.1, 1, 50},
		{"both stale", 25, 25, 0},
		{"both long dead", 100, 200, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Health(hoursAgo(tt.diff1), hoursAgo(tt.diff2), now)
			assert.Equal(t, tt.health, got)
		})
	}
}

func TestSlotOfAndPartnerOf(t *testing.T) {
	s := &Streak{User1ID: 10, User2ID: 20}

	assert.Equal(t, 1, s.SlotOf(10))
	assert.Equal(t, 2, s.SlotOf(20))
	assert.Equal(t, 0, s.SlotOf(30))

	assert.Equal(t, int64(20), s.PartnerOf(10))
	assert.Equal(t, int64(10), s.PartnerOf(20))
}

func TestOrderPair(t *testing.T) {
	a, b := OrderPair(20, 10)
	assert.Equal(t, int64(10), a)
	assert.Equal(t, int64(20), b)

	a, b = OrderPair(10, 20)
	assert.Equal(t, int64(10), a)
	assert.Equal(t, int64(20), b)
}

func TestAchievementFiresExactlyOnce(t *testing.T) {
	// one member sends 150 messages in a day: exactly one freeze grant
	grants := 0
	for msgs := 1; msgs <= 150; msgs++ {
		if AchievementCrossed(msgs) {
			grants++
		}
	}
	assert.Equal(t, 1, grants)

	// the counter resets daily, so the next day crosses again
	assert.True(t, AchievementCrossed(DailyMessageGoal))
	assert.False(t, AchievementCrossed(DailyMessageGoal+1))
	assert.False(t, AchievementCrossed(0))
}

func TestShouldNudge(t *testing.T) {
	assert.False(t, ShouldNudge(hoursAgo(2), now))
	assert.False(t, ShouldNudge(hoursAgo(3), now))
	assert.True(t, ShouldNudge(hoursAgo(3.5), now))
}

func TestApplyFreezeEmptyInventory(t *testing.T) {
	s := &Streak{
		FreezesAvailable: 0,
		LastActivity1:    hoursAgo(30),
		LastActivity2:    hoursAgo(30),
	}

	assert.False(t, s.ApplyFreeze(now))

	// nothing mutates on failure
	assert.Equal(t, 0, s.FreezesAvailable)
	assert.Equal(t, hoursAgo(30), s.LastActivity1)
	assert.Equal(t, hoursAgo(30), s.LastActivity2)
	assert.Equal(t, 0, Health(s.LastActivity1, s.LastActivity2, now))
}

func TestApplyFreezeRevivesDeadStreak(t *testing.T) {
	s := &Streak{
		FreezesAvailable: 1,
		LastActivity1:    hoursAgo(30),
		LastActivity2:    hoursAgo(48),
	}

	assert.True(t, s.ApplyFreeze(now))

	assert.Equal(t, 0, s.FreezesAvailable)
	assert.Equal(t, now, s.LastActivity1)
	assert.Equal(t, now, s.LastActivity2)
	assert.Equal(t, 100, Health(s.LastActivity1, s.LastActivity2, now))

	// inventory is spent, a second use fails
	assert.False(t, s.ApplyFreeze(now))
}

func TestSweepWarningWindow(t *testing.T) {
	s := &Streak{LastActivity1: hoursAgo(20.5), LastActivity2: hoursAgo(1)}
	res := Sweep(s, now)
	assert.True(t, res.WarnUser1)
	assert.False(t, res.WarnUser2)
	assert.False(t, res.Death)

	// just under the window
	s = &Streak{LastActivity1: hoursAgo(19.9), LastActivity2: hoursAgo(1)}
	res = Sweep(s, now)
	assert.False(t, res.WarnUser1)

	// a later sweep no longer warns
	s = &Streak{LastActivity1: hoursAgo(21.5), LastActivity2: hoursAgo(1)}
	res = Sweep(s, now)
	assert.False(t, res.WarnUser1)

	// both silent in the window → both warned in the same cycle
	s = &Streak{LastActivity1: hoursAgo(20.5), LastActivity2: hoursAgo(20.7)}
	res = Sweep(s, now)
	assert.True(t, res.WarnUser1)
	assert.True(t, res.WarnUser2)
}

func TestSweepDeathWindow(t *testing.T) {
	// both freshly past 24h → one death notice
	s := &Streak{LastActivity1: hoursAgo(24.5), LastActivity2: hoursAgo(24.5)}
	assert.True(t, Sweep(s, now).Death)

	// swept again an hour later → silence
	s = &Streak{LastActivity1: hoursAgo(25.5), LastActivity2: hoursAgo(25.5)}
	assert.False(t, Sweep(s, now).Death)

	// one member still alive → no death
	s = &Streak{LastActivity1: hoursAgo(30), LastActivity2: hoursAgo(10)}
	assert.False(t, Sweep(s, now).Death)

	// symmetric bound: the slot order must not matter once the second
	// member crosses 24h
	s = &Streak{LastActivity1: hoursAgo(30), LastActivity2: hoursAgo(24.5)}
	assert.True(t, Sweep(s, now).Death)
	s = &Streak{LastActivity1: hoursAgo(24.5), LastActivity2: hoursAgo(30)}
	assert.True(t, Sweep(s, now).Death)

	// both past the announcement hour → stays quiet forever
	s = &Streak{LastActivity1: hoursAgo(30), LastActivity2: hoursAgo(26)}
	assert.False(t, Sweep(s, now).Death)
}
