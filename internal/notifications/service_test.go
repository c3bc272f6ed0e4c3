package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	notifications map[string]Notification
}

func newMockRepo() *mockRepo {
	return &mockRepo{notifications: make(map[string]Notification)}
}

func (m *mockRepo) Create(ctx context.Context, notification Notification) error {
	m.notifications[notification.ID] = notification
	return nil
}

func (m *mockRepo) Get(ctx context.Context, id string) (Notification, error) {
	notification, ok := m.notifications[id]
	if !ok {
		return Notification{}, ErrNotFound
	}
	return notification, nil
}

func (m *mockRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	var out []Notification
	for _, notification := range m.notifications {
		if notification.UserID != userID {
			continue
		}
		if unreadOnly && notification.Read {
			continue
		}
		out = append(out, notification)
	}
	return out, nil
}

func (m *mockRepo) MarkRead(ctx context.Context, id string, at time.Time) error {
	notification, ok := m.notifications[id]
	if !ok {
		return ErrNotFound
	}
	notification.Read = true
	notification.ReadAt = &at
	m.notifications[id] = notification
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.notifications[id]; !ok {
		return ErrNotFound
	}
	delete(m.notifications, id)
	return nil
}

func TestCreateNotification(t *testing.T) {
	ctx := context.Background()
	service := NewService(newMockRepo())

	t.Run("stores the notification", func(t *testing.T) {
		n, err := service.Create(ctx, CreateInput{
			UserID:     "emp-1",
			ProjectID:  "proj-1",
			Type:       TypeTaskAssigned,
			Message:    "You were assigned a task",
			EntityType: "task",
			EntityID:   "task-1",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, n.ID)
		assert.False(t, n.Read)
	})

	t.Run("missing addressee rejected", func(t *testing.T) {
		_, err := service.Create(ctx, CreateInput{Message: "orphan"})
		assert.Error(t, err)
	})

	t.Run("missing message rejected", func(t *testing.T) {
		_, err := service.Create(ctx, CreateInput{UserID: "emp-1"})
		assert.Error(t, err)
	})
}

func TestListMarkReadDelete(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo()
	service := NewService(repo)

	first, err := service.Create(ctx, CreateInput{UserID: "emp-1", Type: TypeTaskAssigned, Message: "one"})
	require.NoError(t, err)
	_, err = service.Create(ctx, CreateInput{UserID: "emp-1", Type: TypeTaskStatusChanged, Message: "two"})
	require.NoError(t, err)
	_, err = service.Create(ctx, CreateInput{UserID: "emp-2", Type: TypeTaskAssigned, Message: "someone else"})
	require.NoError(t, err)

	all, err := service.ListForUser(ctx, "emp-1", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, service.MarkRead(ctx, first.ID))
	stored, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, stored.Read)
	require.NotNil(t, stored.ReadAt)

	unread, err := service.ListForUser(ctx, "emp-1", true)
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	require.NoError(t, service.Delete(ctx, first.ID))
	assert.ErrorIs(t, service.Delete(ctx, first.ID), ErrNotFound)
}
