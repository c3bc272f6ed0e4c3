package tasks

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/internal/audit"
	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/projects"
	"github.com/taskdeck/taskdeck/internal/shared"
	"github.com/taskdeck/taskdeck/jobs"
)

// ProjectSource provides the project reads the task service needs.
type ProjectSource interface {
	Get(ctx context.Context, id string) (projects.Project, error)
}

// Service wraps task business rules. Notification fan-out goes through the
// background queue; enqueue failures are logged and do not fail the
// mutation.
type Service struct {
	repo     Repository
	projects ProjectSource
	enqueue  jobs.Enqueuer
	audit    *audit.Recorder
	logger   *slog.Logger
}

// NewService constructs a task service.
func NewService(repo Repository, projectSource ProjectSource, enqueuer jobs.Enqueuer, recorder *audit.Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, projects: projectSource, enqueue: enqueuer, audit: recorder, logger: logger}
}

// CreateInput carries the fields accepted on task creation.
type CreateInput struct {
	ProjectID   string
	Title       string
	Description string
	Priority    string
	AssignedTo  string
	DueDate     *time.Time
}

// Create registers a task. Owners may only create tasks in their own
// project; superadmins may create anywhere.
func (s *Service) Create(ctx context.Context, actor shared.Actor, input CreateInput) (Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Task{}, errors.New("tasks: title required")
	}
	priority := input.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !ValidPriority(priority) {
		return Task{}, errors.New("tasks: invalid priority")
	}
	project, err := s.projects.Get(ctx, input.ProjectID)
	if err != nil {
		return Task{}, err
	}
	if policy.ParseRole(actor.Role) != policy.RoleSuperAdmin && project.OwnerID != actor.ID {
		return Task{}, ErrProjectMismatch
	}
	task := Task{
		ID:          uuid.NewString(),
		ProjectID:   project.ID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      StatusPending,
		Priority:    priority,
		AssignedTo:  input.AssignedTo,
		CreatedBy:   actor.ID,
		DueDate:     input.DueDate,
		CreatedAt:   time.Now().UTC(),
	}
	task.UpdatedAt = task.CreatedAt
	if err := s.repo.Create(ctx, task); err != nil {
		return Task{}, err
	}
	s.audit.Record(audit.Event{
		ActorID:    actor.ID,
		ProjectID:  task.ProjectID,
		Action:     "create_task",
		EntityType: "task",
		EntityID:   task.ID,
		Details:    map[string]any{"title": task.Title},
	})
	if task.AssignedTo != "" {
		s.notifyAssignment(task)
	}
	return task, nil
}

// Get fetches one task.
func (s *Service) Get(ctx context.Context, id string) (Task, error) {
	return s.repo.Get(ctx, id)
}

// List returns the tasks visible to the actor: everything for superadmins,
// the owned project's tasks for owners, assigned tasks for employees.
func (s *Service) List(ctx context.Context, actor shared.Actor) ([]Task, error) {
	switch policy.ParseRole(actor.Role) {
	case policy.RoleSuperAdmin:
		return s.repo.ListAll(ctx)
	case policy.RoleOwner:
		if actor.ProjectID == "" {
			return nil, nil
		}
		return s.repo.ListByProject(ctx, actor.ProjectID)
	case policy.RoleEmployee:
		return s.repo.ListByAssignee(ctx, actor.ID)
	}
	return nil, nil
}

// UpdateInput carries the mutable task fields for a full update.
type UpdateInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
}

// Update applies a full update to a task.
func (s *Service) Update(ctx context.Context, actor shared.Actor, id string, input UpdateInput) (Task, error) {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if title := strings.TrimSpace(input.Title); title != "" {
		task.Title = title
	}
	if input.Description != "" {
		task.Description = strings.TrimSpace(input.Description)
	}
	if input.Priority != "" {
		if !ValidPriority(input.Priority) {
			return Task{}, errors.New("tasks: invalid priority")
		}
		task.Priority = input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Status != "" && input.Status != task.Status {
		if err := applyStatus(&task, input.Status); err != nil {
			return Task{}, err
		}
	}
	if err := s.repo.Update(ctx, task); err != nil {
		return Task{}, err
	}
	s.audit.Record(audit.Event{
		ActorID:    actor.ID,
		ProjectID:  task.ProjectID,
		Action:     "update_task",
		EntityType: "task",
		EntityID:   task.ID,
	})
	return task, nil
}

// UpdateStatus changes only the status of a task and notifies the project
// owner.
func (s *Service) UpdateStatus(ctx context.Context, actor shared.Actor, id, status string) (Task, error) {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if err := applyStatus(&task, status); err != nil {
		return Task{}, err
	}
	if err := s.repo.Update(ctx, task); err != nil {
		return Task{}, err
	}
	s.audit.Record(audit.Event{
		ActorID:    actor.ID,
		ProjectID:  task.ProjectID,
		Action:     "update_task_status",
		EntityType: "task",
		EntityID:   task.ID,
		Details:    map[string]any{"status": task.Status},
	})
	s.notifyStatusChange(ctx, task, actor.ID)
	return task, nil
}

// Assign sets the assignee and fans out a notification.
func (s *Service) Assign(ctx context.Context, actor shared.Actor, id, userID string) (Task, error) {
	if userID == "" {
		return Task{}, errors.New("tasks: assignee required")
	}
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	task.AssignedTo = userID
	if err := s.repo.Update(ctx, task); err != nil {
		return Task{}, err
	}
	s.audit.Record(audit.Event{
		ActorID:    actor.ID,
		ProjectID:  task.ProjectID,
		Action:     "assign_task",
		EntityType: "task",
		EntityID:   task.ID,
		Details:    map[string]any{"assigned_to": userID},
	})
	s.notifyAssignment(task)
	return task, nil
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, actor shared.Actor, id string) error {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(audit.Event{
		ActorID:    actor.ID,
		ProjectID:  task.ProjectID,
		Action:     "delete_task",
		EntityType: "task",
		EntityID:   task.ID,
	})
	return nil
}

func applyStatus(task *Task, status string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}
	task.Status = status
	if status == StatusDone {
		now := time.Now().UTC()
		task.CompletedAt = &now
	} else {
		task.CompletedAt = nil
	}
	return nil
}

func (s *Service) notifyAssignment(task Task) {
	if s.enqueue == nil {
		return
	}
	job, err := jobs.NewTaskAssignedTask(jobs.TaskAssignedPayload{
		TaskID:     task.ID,
		ProjectID:  task.ProjectID,
		AssignedTo: task.AssignedTo,
		Title:      task.Title,
	})
	if err == nil {
		_, err = s.enqueue.Enqueue(job)
	}
	if err != nil && s.logger != nil {
		s.logger.Warn("enqueue assignment notification", slog.String("task_id", task.ID), slog.Any("error", err))
	}
}

func (s *Service) notifyStatusChange(ctx context.Context, task Task, changedBy string) {
	if s.enqueue == nil {
		return
	}
	project, err := s.projects.Get(ctx, task.ProjectID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("load project for status notification", slog.String("task_id", task.ID), slog.Any("error", err))
		}
		return
	}
	if project.OwnerID == changedBy {
		return
	}
	job, err := jobs.NewTaskStatusChangedTask(jobs.TaskStatusChangedPayload{
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		OwnerID:   project.OwnerID,
		Title:     task.Title,
		Status:    task.Status,
		ChangedBy: changedBy,
	})
	if err == nil {
		_, err = s.enqueue.Enqueue(job)
	}
	if err != nil && s.logger != nil {
		s.logger.Warn("enqueue status notification", slog.String("task_id", task.ID), slog.Any("error", err))
	}
}
