package invites

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/audit"
	"github.com/taskdeck/taskdeck/internal/members"
	"github.com/taskdeck/taskdeck/internal/notifications"
	"github.com/taskdeck/taskdeck/internal/projects"
	"github.com/taskdeck/taskdeck/internal/shared"
	"github.com/taskdeck/taskdeck/jobs"
)

type mockInviteRepo struct {
	invites map[string]Invite
}

func newMockInviteRepo() *mockInviteRepo {
	return &mockInviteRepo{invites: make(map[string]Invite)}
}

func (m *mockInviteRepo) Create(ctx context.Context, invite Invite) error {
	m.invites[invite.ID] = invite
	return nil
}

func (m *mockInviteRepo) Get(ctx context.Context, id string) (Invite, error) {
	invite, ok := m.invites[id]
	if !ok {
		return Invite{}, ErrNotFound
	}
	return invite, nil
}

func (m *mockInviteRepo) GetByToken(ctx context.Context, token string) (Invite, error) {
	for _, invite := range m.invites {
		if invite.Token == token {
			return invite, nil
		}
	}
	return Invite{}, ErrNotFound
}

func (m *mockInviteRepo) ListByProject(ctx context.Context, projectID string) ([]Invite, error) {
	var out []Invite
	for _, invite := range m.invites {
		if invite.ProjectID == projectID {
			out = append(out, invite)
		}
	}
	return out, nil
}

func (m *mockInviteRepo) UpdateStatus(ctx context.Context, id, status string, acceptedAt *time.Time) error {
	invite, ok := m.invites[id]
	if !ok {
		return ErrNotFound
	}
	invite.Status = status
	invite.AcceptedAt = acceptedAt
	m.invites[id] = invite
	return nil
}

func (m *mockInviteRepo) IncrementResend(ctx context.Context, id string) error {
	invite, ok := m.invites[id]
	if !ok {
		return ErrNotFound
	}
	invite.ResendCount++
	m.invites[id] = invite
	return nil
}

type mockMemberRepo struct {
	memberships map[string]members.Membership
}

func (m *mockMemberRepo) Create(ctx context.Context, membership members.Membership) error {
	m.memberships[membership.ID] = membership
	return nil
}

func (m *mockMemberRepo) Get(ctx context.Context, id string) (members.Membership, error) {
	membership, ok := m.memberships[id]
	if !ok {
		return members.Membership{}, members.ErrNotFound
	}
	return membership, nil
}

func (m *mockMemberRepo) Find(ctx context.Context, userID, projectID string) (members.Membership, error) {
	for _, membership := range m.memberships {
		if membership.UserID == userID && membership.ProjectID == projectID {
			return membership, nil
		}
	}
	return members.Membership{}, members.ErrNotFound
}

func (m *mockMemberRepo) FindActiveByUser(ctx context.Context, userID string) (members.Membership, error) {
	for _, membership := range m.memberships {
		if membership.UserID == userID && membership.Status == members.StatusActive {
			return membership, nil
		}
	}
	return members.Membership{}, members.ErrNotFound
}

func (m *mockMemberRepo) ListByProject(ctx context.Context, projectID string) ([]members.Membership, error) {
	var out []members.Membership
	for _, membership := range m.memberships {
		if membership.ProjectID == projectID {
			out = append(out, membership)
		}
	}
	return out, nil
}

func (m *mockMemberRepo) UpdateRole(ctx context.Context, id, role string) error {
	membership, ok := m.memberships[id]
	if !ok {
		return members.ErrNotFound
	}
	membership.Role = role
	m.memberships[id] = membership
	return nil
}

func (m *mockMemberRepo) Delete(ctx context.Context, id string) error {
	delete(m.memberships, id)
	return nil
}

type mockNotificationRepo struct {
	created []notifications.Notification
}

func (m *mockNotificationRepo) Create(ctx context.Context, n notifications.Notification) error {
	m.created = append(m.created, n)
	return nil
}

func (m *mockNotificationRepo) Get(ctx context.Context, id string) (notifications.Notification, error) {
	return notifications.Notification{}, notifications.ErrNotFound
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]notifications.Notification, error) {
	return nil, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id string, at time.Time) error {
	return nil
}

func (m *mockNotificationRepo) Delete(ctx context.Context, id string) error {
	return nil
}

type mockProjectSource struct{}

func (mockProjectSource) Get(ctx context.Context, id string) (projects.Project, error) {
	return projects.Project{ID: id, Name: "Apollo", OwnerID: "owner-1"}, nil
}

type mockEnqueuer struct {
	tasks []*asynq.Task
}

func (m *mockEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	m.tasks = append(m.tasks, task)
	return &asynq.TaskInfo{}, nil
}

type inviteFixture struct {
	service       *Service
	repo          *mockInviteRepo
	memberRepo    *mockMemberRepo
	notifications *mockNotificationRepo
	enqueuer      *mockEnqueuer
}

func newInviteFixture() *inviteFixture {
	repo := newMockInviteRepo()
	memberRepo := &mockMemberRepo{memberships: make(map[string]members.Membership)}
	notificationRepo := &mockNotificationRepo{}
	enqueuer := &mockEnqueuer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := audit.NewRecorder(nil, logger, nil)

	service := NewService(
		repo,
		members.NewService(memberRepo, recorder),
		notifications.NewService(notificationRepo),
		mockProjectSource{},
		enqueuer,
		recorder,
		logger,
	)
	return &inviteFixture{
		service:       service,
		repo:          repo,
		memberRepo:    memberRepo,
		notifications: notificationRepo,
		enqueuer:      enqueuer,
	}
}

func TestCreateInvite(t *testing.T) {
	ctx := context.Background()
	fx := newInviteFixture()
	owner := shared.Actor{ID: "owner-1", Role: "OWNER", ProjectID: "proj-1"}

	invite, err := fx.service.Create(ctx, owner, "proj-1", "  New.Hire@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "new.hire@example.com", invite.Email)
	assert.Equal(t, StatusPending, invite.Status)
	assert.NotEmpty(t, invite.Token)
	assert.True(t, invite.ExpiresAt.After(time.Now()))

	require.Len(t, fx.enqueuer.tasks, 1)
	assert.Equal(t, jobs.TaskTypeInviteEmail, fx.enqueuer.tasks[0].Type())
	var payload jobs.InviteEmailPayload
	require.NoError(t, json.Unmarshal(fx.enqueuer.tasks[0].Payload(), &payload))
	assert.Equal(t, invite.Token, payload.Token)
	assert.Equal(t, "Apollo", payload.ProjectName)
}

func TestAcceptInvite(t *testing.T) {
	ctx := context.Background()
	owner := shared.Actor{ID: "owner-1", Role: "OWNER", ProjectID: "proj-1"}
	newcomer := shared.Actor{ID: "emp-9", Role: "EMPLOYEE"}

	t.Run("accept enrols the actor and notifies the inviter", func(t *testing.T) {
		fx := newInviteFixture()
		invite, err := fx.service.Create(ctx, owner, "proj-1", "new@example.com")
		require.NoError(t, err)

		membership, err := fx.service.Accept(ctx, newcomer, invite.Token)
		require.NoError(t, err)
		assert.Equal(t, "emp-9", membership.UserID)
		assert.Equal(t, "proj-1", membership.ProjectID)
		assert.Equal(t, members.RoleEmployee, membership.Role)

		stored, err := fx.repo.Get(ctx, invite.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusAccepted, stored.Status)
		require.NotNil(t, stored.AcceptedAt)

		require.Len(t, fx.notifications.created, 1)
		assert.Equal(t, "owner-1", fx.notifications.created[0].UserID)
		assert.Equal(t, notifications.TypeInviteAccepted, fx.notifications.created[0].Type)
	})

	t.Run("unknown token", func(t *testing.T) {
		fx := newInviteFixture()
		_, err := fx.service.Accept(ctx, newcomer, "bogus")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("double accept is rejected", func(t *testing.T) {
		fx := newInviteFixture()
		invite, err := fx.service.Create(ctx, owner, "proj-1", "new@example.com")
		require.NoError(t, err)

		_, err = fx.service.Accept(ctx, newcomer, invite.Token)
		require.NoError(t, err)
		_, err = fx.service.Accept(ctx, newcomer, invite.Token)
		assert.ErrorIs(t, err, ErrNotPending)
	})

	t.Run("expired invite is marked and rejected", func(t *testing.T) {
		fx := newInviteFixture()
		invite, err := fx.service.Create(ctx, owner, "proj-1", "late@example.com")
		require.NoError(t, err)

		fx.service.now = func() time.Time { return time.Now().UTC().Add(DefaultTTL + time.Hour) }
		_, err = fx.service.Accept(ctx, newcomer, invite.Token)
		assert.ErrorIs(t, err, ErrExpired)

		stored, err := fx.repo.Get(ctx, invite.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusExpired, stored.Status)
	})

	t.Run("existing member cannot accept again", func(t *testing.T) {
		fx := newInviteFixture()
		first, err := fx.service.Create(ctx, owner, "proj-1", "dup@example.com")
		require.NoError(t, err)
		_, err = fx.service.Accept(ctx, newcomer, first.Token)
		require.NoError(t, err)

		second, err := fx.service.Create(ctx, owner, "proj-1", "dup2@example.com")
		require.NoError(t, err)
		_, err = fx.service.Accept(ctx, newcomer, second.Token)
		assert.ErrorIs(t, err, members.ErrAlreadyMember)
	})
}

func TestCancelAndResendInvite(t *testing.T) {
	ctx := context.Background()
	owner := shared.Actor{ID: "owner-1", Role: "OWNER", ProjectID: "proj-1"}
	fx := newInviteFixture()

	invite, err := fx.service.Create(ctx, owner, "proj-1", "new@example.com")
	require.NoError(t, err)

	resent, err := fx.service.Resend(ctx, owner, invite.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, resent.ResendCount)
	assert.Len(t, fx.enqueuer.tasks, 2)

	require.NoError(t, fx.service.Cancel(ctx, owner, invite.ID))
	stored, err := fx.repo.Get(ctx, invite.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stored.Status)

	// Cancelled invites can be neither resent nor cancelled again.
	_, err = fx.service.Resend(ctx, owner, invite.ID)
	assert.ErrorIs(t, err, ErrNotPending)
	assert.ErrorIs(t, fx.service.Cancel(ctx, owner, invite.ID), ErrNotPending)
}
