package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TargetMemory = "memory"
	TargetReview = "review"
)

// TargetTable returns the table holding targets of the given type.
func TargetTable(targetType string) (string, bool) {
	switch targetType {
	case TargetMemory:
		return "memories", true
	case TargetReview:
		return "reviews", true
	}
	return "", false
}

type Memory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	GameID    uint      `gorm:"not null;index" json:"game_id"`
	Game      *Game     `gorm:"foreignKey:GameID" json:"-"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Spoiler   bool      `gorm:"not null;default:false" json:"spoiler"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *Memory) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}

type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_game,priority:1" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	GameID    uint      `gorm:"not null;uniqueIndex:idx_reviews_user_game,priority:2;index" json:"game_id"`
	Game      *Game     `gorm:"foreignKey:GameID" json:"-"`
	Rating    int       `gorm:"not null" json:"rating"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Spoiler   bool      `gorm:"not null;default:false" json:"spoiler"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

type Comment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"-"`
	TargetType string    `gorm:"size:10;not null;index:idx_comments_target,priority:1" json:"target_type"`
	TargetID   uuid.UUID `gorm:"type:uuid;not null;index:idx_comments_target,priority:2" json:"target_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

type Like struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_unique,priority:1" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"-"`
	TargetType string    `gorm:"size:10;not null;uniqueIndex:idx_likes_unique,priority:2;index:idx_likes_target,priority:1" json:"target_type"`
	TargetID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_unique,priority:3;index:idx_likes_target,priority:2" json:"target_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair,priority:1" json:"follower_id"`
	Follower    *User     `gorm:"foreignKey:FollowerID" json:"-"`
	FollowingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair,priority:2;index" json:"following_id"`
	Following   *User     `gorm:"foreignKey:FollowingID" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
