package comments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/internal/audit"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// Service wraps comment business rules.
type Service struct {
	repo  Repository
	audit *audit.Recorder
}

// NewService constructs a comment service.
func NewService(repo Repository, recorder *audit.Recorder) *Service {
	return &Service{repo: repo, audit: recorder}
}

// Create posts a comment on a task. The route gates have already resolved
// task access for the actor.
func (s *Service) Create(ctx context.Context, actor shared.Actor, taskID, content string) (Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Comment{}, errors.New("comments: content required")
	}
	comment := Comment{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		UserID:    actor.ID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	comment.UpdatedAt = comment.CreatedAt
	if err := s.repo.Create(ctx, comment); err != nil {
		return Comment{}, err
	}
	s.audit.Record(audit.Event{
		ActorID:    actor.ID,
		Action:     "create_comment",
		EntityType: "comment",
		EntityID:   comment.ID,
		Details:    map[string]any{"task_id": taskID},
	})
	return comment, nil
}

// Update rewrites a comment's content.
func (s *Service) Update(ctx context.Context, actor shared.Actor, id, content string) (Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Comment{}, errors.New("comments: content required")
	}
	comment, err := s.repo.Update(ctx, id, content)
	if err != nil {
		return Comment{}, err
	}
	s.audit.Record(audit.Event{
		ActorID:    actor.ID,
		Action:     "update_comment",
		EntityType: "comment",
		EntityID:   comment.ID,
	})
	return comment, nil
}

// Delete removes a comment.
func (s *Service) Delete(ctx context.Context, actor shared.Actor, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(audit.Event{
		ActorID:    actor.ID,
		Action:     "delete_comment",
		EntityType: "comment",
		EntityID:   id,
	})
	return nil
}

// ListByTask returns a task's comments, oldest first.
func (s *Service) ListByTask(ctx context.Context, taskID string) ([]Comment, error) {
	return s.repo.ListByTask(ctx, taskID)
}
