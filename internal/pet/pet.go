package pet

// Stage is the dragon's cosmetic growth stage, derived from the streak count.
type Stage string

const (
	StageEgg       Stage = "egg"
	StageHatchling Stage = "hatchling"
	StageYoung     Stage = "young"
	StageElder     Stage = "elder"
)

// stage thresholds on the streak count, exclusive upper bounds
var thresholds = []int{3, 7, 15, 30}

func StageFor(count int) Stage {
	switch {
	case count < 3:
		return StageEgg
	case count < 7:
		return StageHatchling
	case count < 15:
		return StageYoung
	}
	return StageElder
}

// NextThreshold returns the smallest threshold greater than count. 30 acts as
// the ceiling beyond the elder stage.
func NextThreshold(count int) int {
	for _, t := range thresholds {
		if count < t {
			return t
		}
	}
	return thresholds[len(thresholds)-1]
}

// Progress is the fill fraction toward the next stage, in [0, 1].
func Progress(count int) float64 {
	p := float64(count) / float64(NextThreshold(count))
	if p > 1 {
		return 1
	}
	return p
}

// Badges are derived achievement flags. They are never stored.
type Badges struct {
	Chatterbox bool `json:"chatterbox"` // 100 messages in a day
	King       bool `json:"king"`       // reached level 15
}

func BadgesFor(count, dailyMsgs int) Badges {
	return Badges{
		Chatterbox: dailyMsgs >= 100,
		King:       count >= 15,
	}
}
