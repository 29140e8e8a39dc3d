package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/hostelgrievance/grievance-backend/internal/users"
	"github.com/hostelgrievance/grievance-backend/pkg/enums"
)

// SignupRequest is the self-registration body for students and faculty.
type SignupRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,phone"`
	Password    string `json:"password" validate:"required,min=6,max=128"`
	Role        string `json:"role" validate:"required"`
}

// SigninRequest accepts either an email or a phone number.
type SigninRequest struct {
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,phone"`
	Password    string `json:"password" validate:"required"`
	Role        string `json:"role" validate:"required"`
}

// Session is what a successful signup, signin or refresh hands back to the
// transport layer. Tokens are written to the cookie and headers there.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *users.UserDTO
}

// SignupResponse is the signup payload.
type SignupResponse struct {
	Token string         `json:"token"`
	User  *users.UserDTO `json:"user"`
}

// SigninResponse flattens the signed-in user next to the token.
type SigninResponse struct {
	Token     string     `json:"token"`
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      enums.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

// RefreshResponse carries the rotated pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SigninResponseFrom builds the flattened signin payload.
func SigninResponseFrom(s *Session) SigninResponse {
	return SigninResponse{
		Token:     s.AccessToken,
		ID:        s.User.ID,
		Name:      s.User.Name,
		Email:     s.User.Email,
		Role:      s.User.Role,
		CreatedAt: s.User.CreatedAt,
	}
}
