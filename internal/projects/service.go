package projects

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/internal/audit"
	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// Service wraps project business rules.
type Service struct {
	repo  Repository
	audit *audit.Recorder
}

// NewService constructs a project service.
func NewService(repo Repository, recorder *audit.Recorder) *Service {
	return &Service{repo: repo, audit: recorder}
}

// CreateInput carries the fields accepted on project creation.
type CreateInput struct {
	Name        string
	Description string
	Category    string
}

// Create registers a project owned by the acting user. Owners hold at most
// one project.
func (s *Service) Create(ctx context.Context, actor shared.Actor, input CreateInput) (Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Project{}, errors.New("projects: name required")
	}
	if _, err := s.repo.GetByOwner(ctx, actor.ID); err == nil {
		return Project{}, ErrOwnerHasProject
	} else if !errors.Is(err, ErrNotFound) {
		return Project{}, err
	}
	project := Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		OwnerID:     actor.ID,
		Status:      StatusActive,
		CreatedAt:   time.Now().UTC(),
	}
	project.UpdatedAt = project.CreatedAt
	if err := s.repo.Create(ctx, project); err != nil {
		return Project{}, err
	}
	s.audit.Record(audit.Event{
		ActorID:    actor.ID,
		ProjectID:  project.ID,
		Action:     "create_project",
		EntityType: "project",
		EntityID:   project.ID,
		Details:    map[string]any{"name": project.Name},
	})
	return project, nil
}

// Get fetches one project.
func (s *Service) Get(ctx context.Context, id string) (Project, error) {
	return s.repo.Get(ctx, id)
}

// UpdateInput carries the mutable project fields.
type UpdateInput struct {
	Name        string
	Description string
	Category    string
	Status      string
}

// Update applies changes to an existing project.
func (s *Service) Update(ctx context.Context, actor shared.Actor, id string, input UpdateInput) (Project, error) {
	project, err := s.repo.Get(ctx, id)
	if err != nil {
		return Project{}, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		project.Name = name
	}
	if input.Description != "" {
		project.Description = strings.TrimSpace(input.Description)
	}
	if input.Category != "" {
		project.Category = strings.TrimSpace(input.Category)
	}
	if input.Status != "" {
		if input.Status != StatusActive && input.Status != StatusDisabled {
			return Project{}, errors.New("projects: invalid status")
		}
		project.Status = input.Status
	}
	if err := s.repo.Update(ctx, project); err != nil {
		return Project{}, err
	}
	s.audit.Record(audit.Event{
		ActorID:    actor.ID,
		ProjectID:  project.ID,
		Action:     "update_project",
		EntityType: "project",
		EntityID:   project.ID,
	})
	return project, nil
}

// Delete removes a project. The route gate restricts this to superadmins.
func (s *Service) Delete(ctx context.Context, actor shared.Actor, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(audit.Event{
		ActorID:    actor.ID,
		ProjectID:  id,
		Action:     "delete_project",
		EntityType: "project",
		EntityID:   id,
	})
	return nil
}

// List returns the projects visible to the actor: all of them for a
// superadmin, the owned project for an owner.
func (s *Service) List(ctx context.Context, actor shared.Actor) ([]Project, error) {
	if policy.ParseRole(actor.Role) == policy.RoleSuperAdmin {
		return s.repo.List(ctx)
	}
	project, err := s.repo.GetByOwner(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return []Project{project}, nil
}
