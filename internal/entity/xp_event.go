package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateMemory = "CREATE_MEMORY"
	ActionCreateReview = "CREATE_REVIEW"
)

// XPEvent is an experience grant committed with the content that earned it.
// AppliedAt stays nil until the grant has been added to the user's exp.
type XPEvent struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID" json:"-"`
	Action      string     `gorm:"size:30;not null;uniqueIndex:idx_xp_events_source,priority:1" json:"action"`
	ReferenceID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_xp_events_source,priority:2" json:"reference_id"`
	Amount      int        `gorm:"not null" json:"amount"`
	Attempts    int        `gorm:"not null;default:0" json:"attempts"`
	LastError   *string    `gorm:"type:text" json:"last_error,omitempty"`
	AppliedAt   *time.Time `gorm:"index" json:"applied_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (e *XPEvent) TableName() string {
	return "xp_events"
}

func (e *XPEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID, err = uuid.NewV7()
	}
	return
}
