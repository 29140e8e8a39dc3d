package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Location is a physical place identified by the (category, name, block) triple.
type Location struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Category  string    `gorm:"type:text;not null;uniqueIndex:ux_locations_triple,priority:1"`
	Name      string    `gorm:"type:text;not null;default:'';uniqueIndex:ux_locations_triple,priority:2"`
	Block     string    `gorm:"type:text;not null;default:'';uniqueIndex:ux_locations_triple,priority:3"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (l *Location) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
