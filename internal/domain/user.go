package domain

import "time"

// User is an account that can request, be assigned or import tickets.
type User struct {
	ID           int64
	Login        string
	RealName     string
	FirstName    string
	Email        string
	PasswordHash string
	EntityID     int64
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
