package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hostelgrievance/grievance-backend/pkg/db/models"
	"github.com/hostelgrievance/grievance-backend/pkg/enums"
)

// UserDTO is the safe public representation of a user. The password hash
// never leaves the package.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	PhoneNumber *string    `json:"phoneNumber,omitempty"`
	Role        enums.Role `json:"role"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// CreateUserDTO contains the values needed to insert a new user.
type CreateUserDTO struct {
	Name         string
	Email        string
	PhoneNumber  *string
	PasswordHash string
	Role         enums.Role
}

// UpdateUserDTO carries the optional fields an admin may change on a staff
// account. Nil fields are left untouched.
type UpdateUserDTO struct {
	Name         *string
	Email        *string
	PhoneNumber  *string
	PasswordHash *string
}

// FromModel maps a GORM user model to its public representation.
func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
	}
}

// ToModel converts the DTO into a GORM model ready for persistence.
func (dto CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Name:         strings.TrimSpace(dto.Name),
		Email:        NormalizeEmail(dto.Email),
		PhoneNumber:  normalizePhone(dto.PhoneNumber),
		PasswordHash: dto.PasswordHash,
		Role:         dto.Role,
	}
}

// NormalizeEmail lower-cases and trims an address so lookups are stable.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizePhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*phone)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (dto UpdateUserDTO) columns() map[string]any {
	updates := map[string]any{}
	if dto.Name != nil {
		updates["name"] = strings.TrimSpace(*dto.Name)
	}
	if dto.Email != nil {
		updates["email"] = NormalizeEmail(*dto.Email)
	}
	if dto.PhoneNumber != nil {
		updates["phone_number"] = normalizePhone(dto.PhoneNumber)
	}
	if dto.PasswordHash != nil {
		updates["password_hash"] = *dto.PasswordHash
	}
	return updates
}
