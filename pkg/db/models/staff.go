package models

import (
	"time"

	"github.com/google/uuid"
)

// IssueIncharge is the staff profile of a user with role ISSUE_INCHARGE.
// A larger Rank means a more junior incharge; routing starts from the largest.
type IssueIncharge struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	LocationID  uuid.UUID `gorm:"type:uuid;not null;index:ix_issue_incharges_location_rank,priority:1"`
	Rank        int       `gorm:"not null;index:ix_issue_incharges_location_rank,priority:2"`
	Designation string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`

	User     User     `gorm:"foreignKey:UserID;references:ID"`
	Location Location `gorm:"foreignKey:LocationID;references:ID"`
}

// Resolver is the staff profile of a user with role RESOLVER.
type Resolver struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	LocationID uuid.UUID `gorm:"type:uuid;not null;index"`
	Occupation string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`

	User     User     `gorm:"foreignKey:UserID;references:ID"`
	Location Location `gorm:"foreignKey:LocationID;references:ID"`
}
