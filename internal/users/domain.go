package users

import (
	"errors"
	"time"
)

// User is an account able to authenticate against the API.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// ErrNotFound indicates the user does not exist.
var ErrNotFound = errors.New("users: not found")
