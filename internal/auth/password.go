package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when hashing a blank password.
var ErrEmptyPassword = errors.New("password must not be empty")

// HashPassword hashes a plaintext password. Costs outside bcrypt's range
// fall back to the nearest bound.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	switch {
	case cost < bcrypt.MinCost:
		cost = bcrypt.DefaultCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword reports whether plain matches the stored hash. Accounts
// without a hash never match.
func ComparePassword(hashed, plain string) error {
	if hashed == "" {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
