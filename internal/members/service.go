package members

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/internal/audit"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// Service wraps membership business rules.
type Service struct {
	repo  Repository
	audit *audit.Recorder
}

// NewService constructs a membership service.
func NewService(repo Repository, recorder *audit.Recorder) *Service {
	return &Service{repo: repo, audit: recorder}
}

// Add enrols a user into a project.
func (s *Service) Add(ctx context.Context, actor shared.Actor, projectID, userID, role string) (Membership, error) {
	if role != RoleOwner && role != RoleEmployee {
		return Membership{}, errors.New("members: invalid role")
	}
	if _, err := s.repo.Find(ctx, userID, projectID); err == nil {
		return Membership{}, ErrAlreadyMember
	} else if !errors.Is(err, ErrNotFound) {
		return Membership{}, err
	}
	membership := Membership{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProjectID: projectID,
		Role:      role,
		Status:    StatusActive,
		JoinedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, membership); err != nil {
		return Membership{}, err
	}
	s.audit.Record(audit.Event{
		ActorID:    actor.ID,
		ProjectID:  projectID,
		Action:     "add_member",
		EntityType: "member",
		EntityID:   membership.ID,
		Details:    map[string]any{"user_id": userID, "role": role},
	})
	return membership, nil
}

// Remove drops a membership.
func (s *Service) Remove(ctx context.Context, actor shared.Actor, projectID, membershipID string) error {
	membership, err := s.repo.Get(ctx, membershipID)
	if err != nil {
		return err
	}
	if membership.ProjectID != projectID {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, membershipID); err != nil {
		return err
	}
	s.audit.Record(audit.Event{
		ActorID:    actor.ID,
		ProjectID:  projectID,
		Action:     "remove_member",
		EntityType: "member",
		EntityID:   membershipID,
		Details:    map[string]any{"user_id": membership.UserID},
	})
	return nil
}

// UpdateRole changes a member's project role.
func (s *Service) UpdateRole(ctx context.Context, actor shared.Actor, projectID, membershipID, role string) error {
	if role != RoleOwner && role != RoleEmployee {
		return errors.New("members: invalid role")
	}
	membership, err := s.repo.Get(ctx, membershipID)
	if err != nil {
		return err
	}
	if membership.ProjectID != projectID {
		return ErrNotFound
	}
	if err := s.repo.UpdateRole(ctx, membershipID, role); err != nil {
		return err
	}
	s.audit.Record(audit.Event{
		ActorID:    actor.ID,
		ProjectID:  projectID,
		Action:     "update_member_role",
		EntityType: "member",
		EntityID:   membershipID,
		Details:    map[string]any{"role": role},
	})
	return nil
}

// List returns a project's memberships.
func (s *Service) List(ctx context.Context, projectID string) ([]Membership, error) {
	return s.repo.ListByProject(ctx, projectID)
}
