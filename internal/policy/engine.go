package policy

import (
	"context"
	"errors"
	"strings"

	"github.com/taskdeck/taskdeck/internal/shared"
)

// SummarySource provides the minimal read-only lookups the resolvers need.
// Implementations return shared.ErrNotFound for missing records; the engine
// folds that into a deny.
type SummarySource interface {
	TaskSummary(ctx context.Context, id string) (TaskSummary, error)
	CommentSummary(ctx context.Context, id string) (CommentSummary, error)
	ProjectSummary(ctx context.Context, id string) (ProjectSummary, error)
	NotificationSummary(ctx context.Context, id string) (NotificationSummary, error)
	HasActiveMembership(ctx context.Context, userID, projectID string) (bool, error)
}

// Engine evaluates policy decisions against an immutable Table and per-call
// resource summaries. It holds no state across calls and is safe for
// concurrent use.
type Engine struct {
	table  *Table
	source SummarySource
}

// NewEngine constructs an Engine over the given table and summary source.
func NewEngine(table *Table, source SummarySource) *Engine {
	if table == nil {
		table = DefaultTable()
	}
	return &Engine{table: table, source: source}
}

// HasPermission reports whether a role holds a permission string, either
// literally or through a wildcard. Composition is additive only: there is no
// deny marker, so a wildcard grant cannot be selectively revoked.
func (e *Engine) HasPermission(role Role, permission string) bool {
	if role == RoleSuperAdmin {
		return true
	}
	granted := e.table.rolePerms[role]
	for _, p := range granted {
		if p == permission {
			return true
		}
	}
	if resource, _, ok := strings.Cut(permission, ":"); ok {
		wildcard := resource + ":*"
		for _, p := range granted {
			if p == wildcard {
				return true
			}
		}
	}
	for _, p := range granted {
		if p == PermissionWildcard {
			return true
		}
	}
	return false
}

// CanPerformAction reports whether a role is eligible to attempt an action
// on a resource type at all, before any instance-level resolution.
func (e *Engine) CanPerformAction(role Role, resource ResourceType, action string) bool {
	if role == RoleSuperAdmin {
		return true
	}
	for _, allowed := range e.table.ResourceRoleMatrix(resource, action) {
		if role == allowed {
			return true
		}
	}
	return false
}

// HasResourceAccess decides instance-level access for a specific resource.
// Superadmin bypasses before any lookup. A resource type outside the closed
// set, or an id that resolves to no record, is denied. The error return
// carries lookup infrastructure failures only.
func (e *Engine) HasResourceAccess(ctx context.Context, actorID string, role Role, resource ResourceType, id string) (bool, error) {
	if role == RoleSuperAdmin {
		return true, nil
	}
	switch resource {
	case ResourceTask:
		return e.taskAccess(ctx, actorID, role, id)
	case ResourceComment:
		return e.commentAccess(ctx, actorID, role, id)
	case ResourceProject:
		return e.projectAccess(ctx, actorID, role, id)
	case ResourceNotification:
		return e.notificationAccess(ctx, actorID, id)
	}
	return false, nil
}

// IsResourceOwner reports strict creation/authorship of a resource: comment
// author, task creator (not assignee), project owner, notification
// addressee. Missing records resolve to false.
func (e *Engine) IsResourceOwner(ctx context.Context, actorID string, resource ResourceType, id string) (bool, error) {
	switch resource {
	case ResourceComment:
		comment, err := e.source.CommentSummary(ctx, id)
		if err != nil {
			return false, ignoreNotFound(err)
		}
		return comment.AuthorID == actorID, nil
	case ResourceTask:
		task, err := e.source.TaskSummary(ctx, id)
		if err != nil {
			return false, ignoreNotFound(err)
		}
		return task.CreatedBy == actorID, nil
	case ResourceProject:
		project, err := e.source.ProjectSummary(ctx, id)
		if err != nil {
			return false, ignoreNotFound(err)
		}
		return project.OwnerID == actorID, nil
	case ResourceNotification:
		notif, err := e.source.NotificationSummary(ctx, id)
		if err != nil {
			return false, ignoreNotFound(err)
		}
		return notif.UserID == actorID, nil
	}
	return false, nil
}

func (e *Engine) taskAccess(ctx context.Context, actorID string, role Role, taskID string) (bool, error) {
	task, err := e.source.TaskSummary(ctx, taskID)
	if err != nil {
		return false, ignoreNotFound(err)
	}
	switch role {
	case RoleOwner:
		project, err := e.source.ProjectSummary(ctx, task.ProjectID)
		if err != nil {
			return false, ignoreNotFound(err)
		}
		return project.OwnerID == actorID, nil
	case RoleEmployee:
		return task.AssignedTo == actorID, nil
	}
	return false, nil
}

func (e *Engine) commentAccess(ctx context.Context, actorID string, role Role, commentID string) (bool, error) {
	comment, err := e.source.CommentSummary(ctx, commentID)
	if err != nil {
		return false, ignoreNotFound(err)
	}
	task, err := e.source.TaskSummary(ctx, comment.TaskID)
	if err != nil {
		return false, ignoreNotFound(err)
	}
	switch role {
	case RoleOwner:
		project, err := e.source.ProjectSummary(ctx, task.ProjectID)
		if err != nil {
			return false, ignoreNotFound(err)
		}
		return project.OwnerID == actorID, nil
	case RoleEmployee:
		return task.AssignedTo == actorID || comment.AuthorID == actorID, nil
	}
	return false, nil
}

func (e *Engine) projectAccess(ctx context.Context, actorID string, role Role, projectID string) (bool, error) {
	project, err := e.source.ProjectSummary(ctx, projectID)
	if err != nil {
		return false, ignoreNotFound(err)
	}
	switch role {
	case RoleOwner:
		return project.OwnerID == actorID, nil
	case RoleEmployee:
		return e.source.HasActiveMembership(ctx, actorID, projectID)
	}
	return false, nil
}

// Notifications are strictly personal: only the addressed user may access
// one, regardless of role.
func (e *Engine) notificationAccess(ctx context.Context, actorID, notificationID string) (bool, error) {
	notif, err := e.source.NotificationSummary(ctx, notificationID)
	if err != nil {
		return false, ignoreNotFound(err)
	}
	return notif.UserID == actorID, nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	return err
}
