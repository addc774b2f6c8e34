package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Game is a local mirror of one RAWG catalog record.
type Game struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	RawgID          int            `gorm:"uniqueIndex;not null" json:"rawg_id"`
	Name            string         `gorm:"size:255;not null" json:"name"`
	BackgroundImage *string        `gorm:"type:text" json:"background_image"`
	CoverURL        *string        `gorm:"type:text" json:"cover_url"`
	Released        *string        `gorm:"size:20" json:"released"`
	Rating          float64        `gorm:"default:0" json:"rating"`
	Platforms       datatypes.JSON `json:"platforms"`
	Genres          datatypes.JSON `json:"genres"`
	CreatedAt       time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}
