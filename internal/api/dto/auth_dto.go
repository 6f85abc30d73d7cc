package dto

import (
	"github.com/spec-kit/marketplace/internal/domain"
	"github.com/spec-kit/marketplace/internal/policy"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name" validate:"omitempty,max=120"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdateRequest payload for PATCH /api/profile.
type ProfileUpdateRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

// MessageResponse is the body of write endpoints that return no record.
type MessageResponse struct {
	Message string `json:"message"`
}

// SessionUser is the identity view returned by /api/me.
type SessionUser struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// NewSessionUser builds the /api/me view.
func NewSessionUser(identity policy.Identity) *SessionUser {
	return &SessionUser{ID: identity.SubjectID, Email: identity.Email, Role: identity.Role}
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt string      `json:"created_at"`
}

// NewUserResponse omits the password hash.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.UTC().Format(timeLayout),
	}
}
