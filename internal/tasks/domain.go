package tasks

import (
	"errors"
	"time"
)

// Task statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusBlocked    = "blocked"
	StatusDone       = "done"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Task is a unit of work inside a project.
type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	CreatedBy   string     `json:"created_by"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

var (
	// ErrNotFound indicates the task does not exist.
	ErrNotFound = errors.New("tasks: not found")
	// ErrInvalidStatus indicates a status outside the closed set.
	ErrInvalidStatus = errors.New("tasks: invalid status")
	// ErrProjectMismatch indicates the target project is not the actor's.
	ErrProjectMismatch = errors.New("tasks: project not owned by actor")
)

// ValidStatus reports membership in the closed status set.
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusInProgress, StatusBlocked, StatusDone:
		return true
	}
	return false
}

// ValidPriority reports membership in the closed priority set.
func ValidPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
