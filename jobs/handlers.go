package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/taskdeck/taskdeck/internal/notifications"
)

// Notifier is the slice of the notifications service the worker needs.
type Notifier interface {
	Create(ctx context.Context, input notifications.CreateInput) (notifications.Notification, error)
}

// AuditPurger trims audit rows older than a cutoff.
type AuditPurger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Mailer delivers outbound mail. The SMTP transport lives behind this
// interface.
type Mailer interface {
	SendInvite(ctx context.Context, email, token, projectName string) error
}

// Handlers holds the task handlers the worker serves.
type Handlers struct {
	Notifier Notifier
	Purger   AuditPurger
	Mailer   Mailer
	Logger   *slog.Logger
}

// HandleTaskAssigned creates the in-app notification for an assignment.
func (h *Handlers) HandleTaskAssigned(ctx context.Context, t *asynq.Task) error {
	var payload TaskAssignedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.AssignedTo == "" {
		return asynq.SkipRetry
	}
	_, err := h.Notifier.Create(ctx, notifications.CreateInput{
		UserID:     payload.AssignedTo,
		ProjectID:  payload.ProjectID,
		Type:       notifications.TypeTaskAssigned,
		Message:    fmt.Sprintf("You were assigned the task %q", payload.Title),
		EntityType: "task",
		EntityID:   payload.TaskID,
	})
	if err != nil {
		h.logger().Error("task assigned notification", slog.String("task_id", payload.TaskID), slog.Any("error", err))
		return err
	}
	h.logger().Info("task assigned notification delivered",
		slog.String("task_id", payload.TaskID),
		slog.String("user_id", payload.AssignedTo))
	return nil
}

// HandleTaskStatusChanged notifies the project owner of a status change.
// Self-inflicted changes are dropped, the owner already knows.
func (h *Handlers) HandleTaskStatusChanged(ctx context.Context, t *asynq.Task) error {
	var payload TaskStatusChangedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.OwnerID == "" || payload.OwnerID == payload.ChangedBy {
		return nil
	}
	_, err := h.Notifier.Create(ctx, notifications.CreateInput{
		UserID:     payload.OwnerID,
		ProjectID:  payload.ProjectID,
		Type:       notifications.TypeTaskStatusChanged,
		Message:    fmt.Sprintf("Task %q moved to %s", payload.Title, payload.Status),
		EntityType: "task",
		EntityID:   payload.TaskID,
	})
	if err != nil {
		h.logger().Error("task status notification", slog.String("task_id", payload.TaskID), slog.Any("error", err))
		return err
	}
	return nil
}

// HandleInviteEmail sends the invitation email.
func (h *Handlers) HandleInviteEmail(ctx context.Context, t *asynq.Task) error {
	var payload InviteEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if h.Mailer == nil {
		h.logger().Warn("invite email skipped, mailer not configured", slog.String("email", payload.Email))
		return nil
	}
	if err := h.Mailer.SendInvite(ctx, payload.Email, payload.Token, payload.ProjectName); err != nil {
		h.logger().Error("invite email", slog.String("email", payload.Email), slog.Any("error", err))
		return err
	}
	h.logger().Info("invite email sent", slog.String("email", payload.Email))
	return nil
}

// HandleAuditPurge trims audit rows past the retention window.
func (h *Handlers) HandleAuditPurge(ctx context.Context, t *asynq.Task) error {
	var payload AuditPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.RetentionDays <= 0 {
		payload.RetentionDays = 90
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -payload.RetentionDays)
	purged, err := h.Purger.PurgeBefore(ctx, cutoff)
	if err != nil {
		h.logger().Error("audit purge", slog.Any("error", err))
		return err
	}
	h.logger().Info("audit purge completed",
		slog.Int64("purged", purged),
		slog.Time("cutoff", cutoff))
	return nil
}

func (h *Handlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
