package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Service wraps notification business rules.
type Service struct {
	repo Repository
}

// NewService constructs a notification service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput carries the fields for a new notification.
type CreateInput struct {
	UserID     string
	ProjectID  string
	Type       string
	Message    string
	EntityType string
	EntityID   string
}

// Create inserts a notification addressed to one user.
func (s *Service) Create(ctx context.Context, input CreateInput) (Notification, error) {
	if input.UserID == "" {
		return Notification{}, errors.New("notifications: user id required")
	}
	if input.Message == "" {
		return Notification{}, errors.New("notifications: message required")
	}
	n := Notification{
		ID:         uuid.NewString(),
		UserID:     input.UserID,
		ProjectID:  input.ProjectID,
		Type:       input.Type,
		Message:    input.Message,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// ListForUser returns the actor's notifications, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly)
}

// MarkRead flags one notification as read.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id, time.Now().UTC())
}

// Delete removes one notification.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
