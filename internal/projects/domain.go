package projects

import (
	"errors"
	"time"
)

// Status values for a project.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// Project is a tenant workspace. Each owner holds exactly one project.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	OwnerID     string    `json:"owner_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var (
	// ErrNotFound indicates the project does not exist.
	ErrNotFound = errors.New("projects: not found")
	// ErrOwnerHasProject enforces the one-project-per-owner rule.
	ErrOwnerHasProject = errors.New("projects: owner already has a project")
)
