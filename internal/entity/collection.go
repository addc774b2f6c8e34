package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPlaying    = "playing"
	StatusCompleted  = "completed"
	StatusWishlist   = "wishlist"
	StatusAbandoned  = "abandoned"
	StatusNotStarted = "not_started"
)

var CollectionStatuses = []string{StatusPlaying, StatusCompleted, StatusWishlist, StatusAbandoned, StatusNotStarted}

type Collection struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_collections_user_game,priority:1" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"-"`
	GameID     uint      `gorm:"not null;uniqueIndex:idx_collections_user_game,priority:2;index" json:"game_id"`
	Game       *Game     `gorm:"foreignKey:GameID" json:"game,omitempty"`
	Status     string    `gorm:"size:20;not null" json:"status"`
	UserRating *int      `json:"user_rating"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
