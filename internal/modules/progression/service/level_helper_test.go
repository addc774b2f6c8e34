package service

import (
	"testing"

	"mymemorycard.com/backend/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestCalculateLevelThresholds(t *testing.T) {
	cases := map[int]int{
		-20: 1,
		0:   1,
		49:  1,
		50:  2,
		199: 2,
		200: 3,
		449: 3,
		450: 4,
		800: 5,
		// 1_000_000 / 50 = 20000, sqrt = 141.42
		1_000_000: 142,
	}
	for exp, want := range cases {
		assert.Equal(t, want, CalculateLevel(exp), "exp=%d", exp)
	}
}

func TestCalculateLevelIsMonotonic(t *testing.T) {
	prev := CalculateLevel(0)
	for exp := 1; exp <= 20_000; exp++ {
		level := CalculateLevel(exp)
		assert.GreaterOrEqual(t, level, prev)
		assert.LessOrEqual(t, level-prev, 1)
		prev = level
	}
}

func TestXPForLevelInvertsCalculateLevel(t *testing.T) {
	for level := 1; level <= 60; level++ {
		threshold := XPForLevel(level)
		assert.Equal(t, level, CalculateLevel(threshold-1))
		assert.Equal(t, level+1, CalculateLevel(threshold))
	}
}

func TestProgressToNextLevel(t *testing.T) {
	assert.Equal(t, 0, ProgressToNextLevel(0, 1))
	assert.Equal(t, 50, ProgressToNextLevel(25, 1))
	assert.Equal(t, 98, ProgressToNextLevel(49, 1))
	assert.Equal(t, 0, ProgressToNextLevel(50, 2))
	// level 2 spans [50, 200)
	assert.Equal(t, 33, ProgressToNextLevel(100, 2))

	// inconsistent inputs are clamped
	assert.Equal(t, 0, ProgressToNextLevel(10, 3))
	assert.Equal(t, 100, ProgressToNextLevel(5000, 2))
	assert.Equal(t, 0, ProgressToNextLevel(-10, 0))
}

func TestProgressAlwaysInRange(t *testing.T) {
	for exp := -100; exp <= 5000; exp += 7 {
		p := ProgressToNextLevel(exp, CalculateLevel(exp))
		assert.True(t, p >= 0 && p <= 100, "exp=%d progress=%d", exp, p)
	}
}

func TestGetLevelStatus(t *testing.T) {
	status := GetLevelStatus(120)

	assert.Equal(t, 2, status.Level)
	assert.Equal(t, 46, status.Progress)
	assert.Equal(t, 50, status.CurrentLevelExp)
	assert.Equal(t, 200, status.NextLevelExp)
}

func TestRewardFor(t *testing.T) {
	amount, ok := RewardFor(entity.ActionCreateMemory)
	assert.True(t, ok)
	assert.Equal(t, 10, amount)

	amount, ok = RewardFor(entity.ActionCreateReview)
	assert.True(t, ok)
	assert.Equal(t, 20, amount)

	_, ok = RewardFor("LOGIN")
	assert.False(t, ok)
}
