package invites

import (
	"errors"
	"time"
)

// Invite statuses.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
)

// DefaultTTL is how long an invitation stays redeemable.
const DefaultTTL = 7 * 24 * time.Hour

// Invite is a pending offer to join a project, redeemed by token.
type Invite struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	InvitedBy   string     `json:"invited_by"`
	Email       string     `json:"email"`
	Token       string     `json:"-"`
	Status      string     `json:"status"`
	ResendCount int        `json:"resend_count"`
	ExpiresAt   time.Time  `json:"expires_at"`
	CreatedAt   time.Time  `json:"created_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
}

var (
	// ErrNotFound indicates the invite does not exist.
	ErrNotFound = errors.New("invites: not found")
	// ErrNotPending indicates the invite is no longer redeemable or cancellable.
	ErrNotPending = errors.New("invites: not pending")
	// ErrExpired indicates the invite passed its expiry.
	ErrExpired = errors.New("invites: expired")
)
