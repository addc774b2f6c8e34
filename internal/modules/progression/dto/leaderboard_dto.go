package dto

import commonDto "mymemorycard.com/backend/pkg/dto"

// LeaderboardEntry represents a single user entry in the leaderboard.
// Position is the ranking in the leaderboard (1-based).
type LeaderboardEntry struct {
	Position    int                      `json:"position"`
	User        commonDto.AuthorResponse `json:"user"`
	LevelStatus commonDto.LevelStatus    `json:"level_status"`
}
