package notifications

import (
	"errors"
	"time"
)

// Notification types emitted by the application.
const (
	TypeTaskAssigned      = "task_assigned"
	TypeTaskStatusChanged = "task_status_changed"
	TypeTaskComment       = "task_comment"
	TypeInviteAccepted    = "invite_accepted"
)

// Notification is a strictly personal message addressed to one user.
type Notification struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	ProjectID  string     `json:"project_id,omitempty"`
	Type       string     `json:"type"`
	Message    string     `json:"message"`
	Read       bool       `json:"read"`
	EntityType string     `json:"entity_type,omitempty"`
	EntityID   string     `json:"entity_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
}

// ErrNotFound indicates the notification does not exist.
var ErrNotFound = errors.New("notifications: not found")
