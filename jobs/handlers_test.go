package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/notifications"
)

type mockNotifier struct {
	created []notifications.CreateInput
	err     error
}

func (m *mockNotifier) Create(ctx context.Context, input notifications.CreateInput) (notifications.Notification, error) {
	if m.err != nil {
		return notifications.Notification{}, m.err
	}
	m.created = append(m.created, input)
	return notifications.Notification{ID: "n-1", UserID: input.UserID}, nil
}

type mockPurger struct {
	cutoff time.Time
	purged int64
	err    error
}

func (m *mockPurger) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.cutoff = cutoff
	return m.purged, m.err
}

type mockMailer struct {
	sent []string
	err  error
}

func (m *mockMailer) SendInvite(ctx context.Context, email, token, projectName string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

func testHandlers(notifier *mockNotifier, purger *mockPurger, mailer *mockMailer) *Handlers {
	h := &Handlers{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if notifier != nil {
		h.Notifier = notifier
	}
	if purger != nil {
		h.Purger = purger
	}
	if mailer != nil {
		h.Mailer = mailer
	}
	return h
}

func TestHandleTaskAssigned(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the notification", func(t *testing.T) {
		notifier := &mockNotifier{}
		handlers := testHandlers(notifier, nil, nil)

		task, err := NewTaskAssignedTask(TaskAssignedPayload{
			TaskID: "task-1", ProjectID: "proj-1", AssignedTo: "emp-1", Title: "Review",
		})
		require.NoError(t, err)
		require.NoError(t, handlers.HandleTaskAssigned(ctx, task))

		require.Len(t, notifier.created, 1)
		assert.Equal(t, "emp-1", notifier.created[0].UserID)
		assert.Equal(t, notifications.TypeTaskAssigned, notifier.created[0].Type)
		assert.Equal(t, "task-1", notifier.created[0].EntityID)
	})

	t.Run("malformed payload skips retry", func(t *testing.T) {
		handlers := testHandlers(&mockNotifier{}, nil, nil)
		err := handlers.HandleTaskAssigned(ctx, asynq.NewTask(TaskTypeTaskAssigned, []byte("{")))
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("notifier failure retries", func(t *testing.T) {
		notifier := &mockNotifier{err: errors.New("db down")}
		handlers := testHandlers(notifier, nil, nil)
		task, err := NewTaskAssignedTask(TaskAssignedPayload{TaskID: "task-1", AssignedTo: "emp-1"})
		require.NoError(t, err)
		assert.Error(t, handlers.HandleTaskAssigned(ctx, task))
	})
}

func TestHandleTaskStatusChanged(t *testing.T) {
	ctx := context.Background()

	t.Run("notifies the owner", func(t *testing.T) {
		notifier := &mockNotifier{}
		handlers := testHandlers(notifier, nil, nil)
		task, err := NewTaskStatusChangedTask(TaskStatusChangedPayload{
			TaskID: "task-1", ProjectID: "proj-1", OwnerID: "owner-1", Title: "x", Status: "done", ChangedBy: "emp-1",
		})
		require.NoError(t, err)
		require.NoError(t, handlers.HandleTaskStatusChanged(ctx, task))
		require.Len(t, notifier.created, 1)
		assert.Equal(t, "owner-1", notifier.created[0].UserID)
	})

	t.Run("self-inflicted change is dropped", func(t *testing.T) {
		notifier := &mockNotifier{}
		handlers := testHandlers(notifier, nil, nil)
		task, err := NewTaskStatusChangedTask(TaskStatusChangedPayload{
			TaskID: "task-1", OwnerID: "owner-1", ChangedBy: "owner-1",
		})
		require.NoError(t, err)
		require.NoError(t, handlers.HandleTaskStatusChanged(ctx, task))
		assert.Empty(t, notifier.created)
	})
}

func TestHandleInviteEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers through the mailer", func(t *testing.T) {
		mailer := &mockMailer{}
		handlers := testHandlers(nil, nil, mailer)
		task, err := NewInviteEmailTask(InviteEmailPayload{Email: "new@example.com", Token: "tok", ProjectName: "Apollo"})
		require.NoError(t, err)
		require.NoError(t, handlers.HandleInviteEmail(ctx, task))
		assert.Equal(t, []string{"new@example.com"}, mailer.sent)
	})

	t.Run("missing mailer is a no-op", func(t *testing.T) {
		handlers := testHandlers(nil, nil, nil)
		task, err := NewInviteEmailTask(InviteEmailPayload{Email: "new@example.com"})
		require.NoError(t, err)
		require.NoError(t, handlers.HandleInviteEmail(ctx, task))
	})
}

func TestHandleAuditPurge(t *testing.T) {
	ctx := context.Background()

	t.Run("uses the payload retention window", func(t *testing.T) {
		purger := &mockPurger{purged: 12}
		handlers := testHandlers(nil, purger, nil)
		task, err := NewAuditPurgeTask(AuditPurgePayload{RetentionDays: 30})
		require.NoError(t, err)
		require.NoError(t, handlers.HandleAuditPurge(ctx, task))

		expected := time.Now().UTC().AddDate(0, 0, -30)
		assert.WithinDuration(t, expected, purger.cutoff, time.Minute)
	})

	t.Run("defaults a missing window", func(t *testing.T) {
		purger := &mockPurger{}
		handlers := testHandlers(nil, purger, nil)
		task, err := NewAuditPurgeTask(AuditPurgePayload{})
		require.NoError(t, err)
		require.NoError(t, handlers.HandleAuditPurge(ctx, task))

		expected := time.Now().UTC().AddDate(0, 0, -90)
		assert.WithinDuration(t, expected, purger.cutoff, time.Minute)
	})
}
