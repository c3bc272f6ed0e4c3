package members

import (
	"errors"
	"time"
)

// Membership statuses.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// Membership project roles.
const (
	RoleOwner    = "OWNER"
	RoleEmployee = "EMPLOYEE"
)

// Membership ties a user to a project with a project-level role. A user
// holds at most one membership per project.
type Membership struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProjectID string    `json:"project_id"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	JoinedAt  time.Time `json:"joined_at"`
}

var (
	// ErrNotFound indicates the membership does not exist.
	ErrNotFound = errors.New("members: not found")
	// ErrAlreadyMember indicates the user already belongs to the project.
	ErrAlreadyMember = errors.New("members: user already a member")
)
