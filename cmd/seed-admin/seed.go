package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/hostelgrievance/grievance-backend/internal/users"
	"github.com/hostelgrievance/grievance-backend/pkg/config"
	"github.com/hostelgrievance/grievance-backend/pkg/db/models"
	"github.com/hostelgrievance/grievance-backend/pkg/enums"
	"github.com/hostelgrievance/grievance-backend/pkg/security"
)

type adminInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

type adminStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// seedAdmin creates the first ADMIN account. Administrators cannot sign up
// through the API, so this is the only way in. An existing email is left as is.
func seedAdmin(ctx context.Context, store adminStore, pwCfg config.PasswordConfig, in adminInput) (bool, error) {
	email := users.NormalizeEmail(in.Email)
	if email == "" {
		return false, errors.New("email is required")
	}
	if len(in.Password) < 6 {
		return false, errors.New("password must be at least 6 characters")
	}

	existing, err := store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != enums.RoleAdmin {
			return false, fmt.Errorf("%s is registered with role %s", email, existing.Role)
		}
		return false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, fmt.Errorf("lookup %s: %w", email, err)
	}

	hash, err := security.HashPassword(in.Password, pwCfg)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	dto := users.CreateUserDTO{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         enums.RoleAdmin,
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		dto.PhoneNumber = &phone
	}
	if _, err := store.Create(ctx, dto); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
