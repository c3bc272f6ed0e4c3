package auth

import (
	"context"
	"errors"
)

// Claims is the actor identity bound to a bearer token. Role and ProjectID
// are fixed at issue time; a role change takes effect when the token is
// reissued.
type Claims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	ProjectID string `json:"project_id,omitempty"`
}

// ErrInvalidCredentials indicates a failed login.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// CredentialSource verifies a login attempt and returns the claims to bind
// to the issued token. Password storage and hashing live behind this
// interface and are not implemented here.
type CredentialSource interface {
	Verify(ctx context.Context, email, password string) (Claims, error)
}
