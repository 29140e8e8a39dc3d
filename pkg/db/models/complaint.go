package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hostelgrievance/grievance-backend/pkg/enums"
)

type Complaint struct {
	ID              uuid.UUID             `gorm:"type:uuid;primaryKey"`
	Title           string                `gorm:"type:text;not null"`
	Description     string                `gorm:"type:text;not null"`
	Access          enums.ComplaintAccess `gorm:"type:text;not null;default:'PUBLIC';index"`
	PostAsAnonymous bool                  `gorm:"column:post_as_anonymous;not null;default:false"`
	Status          enums.ComplaintStatus `gorm:"type:text;not null;default:'PENDING'"`
	UserID          uuid.UUID             `gorm:"type:uuid;not null;index"`
	LocationID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`

	User        User             `gorm:"foreignKey:UserID;references:ID"`
	Location    Location         `gorm:"foreignKey:LocationID;references:ID"`
	Detail      *ComplaintDetail `gorm:"foreignKey:ComplaintID;references:ID"`
	Tags        []Tag            `gorm:"many2many:complaint_tags;joinForeignKey:ComplaintID;joinReferences:TagID"`
	Attachments []Attachment     `gorm:"foreignKey:ComplaintID;references:ID"`
}

func (c *Complaint) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// ComplaintDetail carries the mutable handling state of a complaint.
type ComplaintDetail struct {
	ComplaintID uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AssignedTo  uuid.UUID  `gorm:"column:assigned_to;type:uuid;not null;index"`
	ResolverID  *uuid.UUID `gorm:"column:resolver_id;type:uuid;index"`
	Upvotes     int        `gorm:"not null;default:0"`
	ActionTaken bool       `gorm:"column:action_taken;not null;default:false"`
	Escalations int        `gorm:"not null;default:0"`
	ResolvedAt  *time.Time `gorm:"column:resolved_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

type ComplaintTag struct {
	ComplaintID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TagID       uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (ComplaintTag) TableName() string {
	return "complaint_tags"
}

type Attachment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ComplaintID uuid.UUID `gorm:"type:uuid;not null;index"`
	ImageURL    string    `gorm:"column:image_url;type:text;not null"`
	Position    int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (a *Attachment) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// Upvote is one user's vote on one complaint. (user_id, complaint_id) is unique.
type Upvote struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_upvotes_user_complaint,priority:1"`
	ComplaintID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_upvotes_user_complaint,priority:2;index"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (u *Upvote) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
