package comments

import (
	"errors"
	"time"
)

// Comment is a message attached to a task.
type Comment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrNotFound indicates the comment does not exist.
var ErrNotFound = errors.New("comments: not found")
