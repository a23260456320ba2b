package dto

import (
	"strings"
	"time"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Ok() (map[string]string, bool) {
	r.Login = strings.TrimSpace(r.Login)
	errorMessages := validationMessages(r)
	return errorMessages, len(errorMessages) == 0
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID       int64  `json:"id"`
	Login    string `json:"login"`
	RealName string `json:"realname,omitempty"`
	Email    string `json:"email,omitempty"`
	EntityID int64  `json:"entity_id"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
