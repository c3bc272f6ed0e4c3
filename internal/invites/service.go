package invites

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/internal/audit"
	"github.com/taskdeck/taskdeck/internal/members"
	"github.com/taskdeck/taskdeck/internal/notifications"
	"github.com/taskdeck/taskdeck/internal/projects"
	"github.com/taskdeck/taskdeck/internal/shared"
	"github.com/taskdeck/taskdeck/jobs"
)

// ProjectSource provides the project reads the invite service needs.
type ProjectSource interface {
	Get(ctx context.Context, id string) (projects.Project, error)
}

// Service wraps invitation business rules. Email delivery goes through the
// background queue; enqueue failures are logged and do not fail the
// mutation.
type Service struct {
	repo        Repository
	memberships *members.Service
	notify      *notifications.Service
	projects    ProjectSource
	enqueue     jobs.Enqueuer
	audit       *audit.Recorder
	logger      *slog.Logger
	now         func() time.Time
}

// NewService constructs an invite service.
func NewService(repo Repository, memberships *members.Service, notify *notifications.Service, projectSource ProjectSource, enqueuer jobs.Enqueuer, recorder *audit.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		memberships: memberships,
		notify:      notify,
		projects:    projectSource,
		enqueue:     enqueuer,
		audit:       recorder,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create issues a pending invite and queues the invitation email.
func (s *Service) Create(ctx context.Context, actor shared.Actor, projectID, email string) (Invite, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	token, err := newToken()
	if err != nil {
		return Invite{}, err
	}
	now := s.now()
	invite := Invite{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		InvitedBy: actor.ID,
		Email:     email,
		Token:     token,
		Status:    StatusPending,
		ExpiresAt: now.Add(DefaultTTL),
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, invite); err != nil {
		return Invite{}, err
	}
	s.enqueueEmail(ctx, invite)
	s.audit.Record(audit.Event{
		ActorID:    actor.ID,
		ProjectID:  projectID,
		Action:     "create_invite",
		EntityType: "invite",
		EntityID:   invite.ID,
		Details:    map[string]any{"email": email},
	})
	return invite, nil
}

// Resend re-queues the invitation email for a still-pending invite.
func (s *Service) Resend(ctx context.Context, actor shared.Actor, id string) (Invite, error) {
	invite, err := s.repo.Get(ctx, id)
	if err != nil {
		return Invite{}, err
	}
	if invite.Status != StatusPending {
		return Invite{}, ErrNotPending
	}
	if err := s.repo.IncrementResend(ctx, id); err != nil {
		return Invite{}, err
	}
	invite.ResendCount++
	s.enqueueEmail(ctx, invite)
	s.audit.Record(audit.Event{
		ActorID:    actor.ID,
		ProjectID:  invite.ProjectID,
		Action:     "resend_invite",
		EntityType: "invite",
		EntityID:   invite.ID,
	})
	return invite, nil
}

// Cancel voids a pending invite.
func (s *Service) Cancel(ctx context.Context, actor shared.Actor, id string) error {
	invite, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if invite.Status != StatusPending {
		return ErrNotPending
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled, nil); err != nil {
		return err
	}
	s.audit.Record(audit.Event{
		ActorID:    actor.ID,
		ProjectID:  invite.ProjectID,
		Action:     "cancel_invite",
		EntityType: "invite",
		EntityID:   invite.ID,
	})
	return nil
}

// ListByProject returns a project's invites, newest first.
func (s *Service) ListByProject(ctx context.Context, projectID string) ([]Invite, error) {
	return s.repo.ListByProject(ctx, projectID)
}

// Accept redeems an invite token for the acting user, enrolling them as an
// employee of the invite's project and notifying the inviter. Expired
// invites are marked as such on the way out.
func (s *Service) Accept(ctx context.Context, actor shared.Actor, token string) (members.Membership, error) {
	invite, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return members.Membership{}, err
	}
	if invite.Status != StatusPending {
		return members.Membership{}, ErrNotPending
	}
	now := s.now()
	if now.After(invite.ExpiresAt) {
		if err := s.repo.UpdateStatus(ctx, invite.ID, StatusExpired, nil); err != nil {
			s.logger.Warn("mark invite expired", slog.String("invite_id", invite.ID), slog.Any("error", err))
		}
		return members.Membership{}, ErrExpired
	}
	membership, err := s.memberships.Add(ctx, actor, invite.ProjectID, actor.ID, members.RoleEmployee)
	if err != nil {
		return members.Membership{}, err
	}
	if err := s.repo.UpdateStatus(ctx, invite.ID, StatusAccepted, &now); err != nil {
		return members.Membership{}, err
	}
	if _, err := s.notify.Create(ctx, notifications.CreateInput{
		UserID:     invite.InvitedBy,
		ProjectID:  invite.ProjectID,
		Type:       notifications.TypeInviteAccepted,
		Message:    fmt.Sprintf("%s accepted your project invitation", invite.Email),
		EntityType: "invite",
		EntityID:   invite.ID,
	}); err != nil {
		s.logger.Warn("notify inviter", slog.String("invite_id", invite.ID), slog.Any("error", err))
	}
	s.audit.Record(audit.Event{
		ActorID:    actor.ID,
		ProjectID:  invite.ProjectID,
		Action:     "accept_invite",
		EntityType: "invite",
		EntityID:   invite.ID,
	})
	return membership, nil
}

func (s *Service) enqueueEmail(ctx context.Context, invite Invite) {
	if s.enqueue == nil {
		return
	}
	projectName := invite.ProjectID
	if project, err := s.projects.Get(ctx, invite.ProjectID); err == nil {
		projectName = project.Name
	}
	task, err := jobs.NewInviteEmailTask(jobs.InviteEmailPayload{
		Email:       invite.Email,
		Token:       invite.Token,
		ProjectName: projectName,
	})
	if err == nil {
		_, err = s.enqueue.Enqueue(task)
	}
	if err != nil && s.logger != nil {
		s.logger.Warn("enqueue invite email", slog.String("invite_id", invite.ID), slog.Any("error", err))
	}
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
