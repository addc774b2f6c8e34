package service

import (
	"math"

	"mymemorycard.com/backend/internal/entity"
	"mymemorycard.com/backend/pkg/dto"
)

// ExpPerLevelUnit scales the quadratic curve: level L starts at (L-1)^2 * ExpPerLevelUnit.
const ExpPerLevelUnit = 50

// Experience rewards per action
const (
	RewardCreateMemory = 10
	RewardCreateReview = 20
)

// RewardFor returns the fixed experience reward of an action.
func RewardFor(action string) (int, bool) {
	switch action {
	case entity.ActionCreateMemory:
		return RewardCreateMemory, true
	case entity.ActionCreateReview:
		return RewardCreateReview, true
	}
	return 0, false
}

// CalculateLevel returns floor(sqrt(exp/50)) + 1, and 1 for negative exp.
func CalculateLevel(exp int) int {
	if exp < 0 {
		return 1
	}

	n := int(math.Sqrt(float64(exp) / ExpPerLevelUnit))
	// correct float rounding at the thresholds
	for n > 0 && n*n*ExpPerLevelUnit > exp {
		n--
	}
	for (n+1)*(n+1)*ExpPerLevelUnit <= exp {
		n++
	}
	return n + 1
}

// XPForLevel is the experience at which level+1 begins.
func XPForLevel(level int) int {
	return level * level * ExpPerLevelUnit
}

// ProgressToNextLevel returns the percentage (0..100) of the way from level's floor to its ceiling.
func ProgressToNextLevel(exp, level int) int {
	if level < 1 {
		level = 1
	}
	floor := XPForLevel(level - 1)
	ceiling := XPForLevel(level)

	progress := int(math.Floor(float64(exp-floor) * 100 / float64(ceiling-floor)))
	switch {
	case progress < 0:
		return 0
	case progress > 100:
		return 100
	}
	return progress
}

// GetLevelStatus derives the complete progression block from an exp counter.
func GetLevelStatus(exp int) dto.LevelStatus {
	level := CalculateLevel(exp)
	return dto.LevelStatus{
		Exp:             exp,
		Level:           level,
		Progress:        ProgressToNextLevel(exp, level),
		CurrentLevelExp: XPForLevel(level - 1),
		NextLevelExp:    XPForLevel(level),
	}
}
