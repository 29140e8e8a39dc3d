package staff

import (
	"time"

	"github.com/google/uuid"

	"github.com/hostelgrievance/grievance-backend/internal/locations"
	"github.com/hostelgrievance/grievance-backend/pkg/db/models"
)

// CreateInchargeRequest is the admin payload that creates an incharge account.
type CreateInchargeRequest struct {
	Name        string `json:"name" validate:"required,min=3"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,phone"`
	Password    string `json:"password" validate:"required,min=6"`
	Location    string `json:"location" validate:"required,triple"`
	Rank        int    `json:"rank" validate:"required,min=1"`
	Designation string `json:"designation" validate:"required,min=3"`
}

// UpdateInchargeRequest changes only the supplied fields.
type UpdateInchargeRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=3"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber *string `json:"phoneNumber,omitempty" validate:"omitempty,phone"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=6"`
	Location    *string `json:"location,omitempty" validate:"omitempty,triple"`
	Rank        *int    `json:"rank,omitempty" validate:"omitempty,min=1"`
	Designation *string `json:"designation,omitempty" validate:"omitempty,min=3"`
}

// CreateResolverRequest is the admin payload that creates a resolver account.
type CreateResolverRequest struct {
	Name        string `json:"name" validate:"required,min=3"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,phone"`
	Password    string `json:"password" validate:"required,min=6"`
	Location    string `json:"location" validate:"required,triple"`
	Occupation  string `json:"occupation" validate:"required,min=3"`
}

// UpdateResolverRequest changes only the supplied fields.
type UpdateResolverRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=3"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber *string `json:"phoneNumber,omitempty" validate:"omitempty,phone"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=6"`
	Location    *string `json:"location,omitempty" validate:"omitempty,triple"`
	Occupation  *string `json:"occupation,omitempty" validate:"omitempty,min=3"`
}

// InchargeDTO flattens an incharge profile with its user and location.
type InchargeDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber *string   `json:"phoneNumber,omitempty"`
	Location    string    `json:"location"`
	Rank        int       `json:"rank"`
	Designation string    `json:"designation"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ResolverDTO flattens a resolver profile with its user and location.
type ResolverDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber *string   `json:"phoneNumber,omitempty"`
	Location    string    `json:"location"`
	Occupation  string    `json:"occupation"`
	CreatedAt   time.Time `json:"createdAt"`
}

func inchargeFromModel(m models.IssueIncharge) InchargeDTO {
	return InchargeDTO{
		ID:          m.UserID,
		Name:        m.User.Name,
		Email:       m.User.Email,
		PhoneNumber: m.User.PhoneNumber,
		Location:    locations.TripleOf(m.Location).String(),
		Rank:        m.Rank,
		Designation: m.Designation,
		CreatedAt:   m.CreatedAt,
	}
}

func resolverFromModel(m models.Resolver) ResolverDTO {
	return ResolverDTO{
		ID:          m.UserID,
		Name:        m.User.Name,
		Email:       m.User.Email,
		PhoneNumber: m.User.PhoneNumber,
		Location:    locations.TripleOf(m.Location).String(),
		Occupation:  m.Occupation,
		CreatedAt:   m.CreatedAt,
	}
}
