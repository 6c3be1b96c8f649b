package pet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageFor(t *testing.T) {
	assert.Equal(t, StageEgg, StageFor(0))
	assert.Equal(t, StageEgg, StageFor(2))
	assert.Equal(t, StageHatchling, StageFor(3))
	assert.Equal(t, StageHatchling, StageFor(6))
	assert.Equal(t, StageYoung, StageFor(7))
	assert.Equal(t, StageYoung, StageFor(14))
	assert.Equal(t, StageElder, StageFor(15))
	assert.Equal(t, StageElder, StageFor(100))
}

func TestNextThreshold(t *testing.T) {
	assert.Equal(t, 3, NextThreshold(0))
	assert.Equal(t, 3, NextThreshold(2))
	assert.Equal(t, 7, NextThreshold(3))
	assert.Equal(t, 15, NextThreshold(7))
	assert.Equal(t, 30, NextThreshold(15))
	assert.Equal(t, 30, NextThreshold(29))
	// 30 stays the ceiling past the elder stage
	assert.Equal(t, 30, NextThreshold(30))
	assert.Equal(t, 30, NextThreshold(99))
}

func TestProgress(t *testing.T) {
	assert.InDelta(t, 5.0/7.0, Progress(5), 1e-9)
	assert.InDelta(t, 20.0/30.0, Progress(20), 1e-9)
	assert.Equal(t, 1.0, Progress(30))
	assert.Equal(t, 1.0, Progress(500))
	assert.Equal(t, 0.0, Progress(0))
}

func TestBadgesFor(t *testing.T) {
	b := BadgesFor(2, 5)
	assert.False(t, b.Chatterbox)
	assert.False(t, b.King)

	b = BadgesFor(15, 100)
	assert.True(t, b.Chatterbox)
	assert.True(t, b.King)

	b = BadgesFor(14, 150)
	assert.True(t, b.Chatterbox)
	assert.False(t, b.King)
}
