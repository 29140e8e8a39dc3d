package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:text;not null;uniqueIndex:ux_tags_name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (t *Tag) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// Designation is the admin-managed list of incharge titles.
type Designation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:text;not null;uniqueIndex:ux_designations_name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (d *Designation) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

// Occupation is the admin-managed list of resolver trades.
type Occupation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:text;not null;uniqueIndex:ux_occupations_name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (o *Occupation) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
