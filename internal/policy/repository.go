package policy

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskdeck/taskdeck/internal/shared"
)

// pgSummarySource reads the minimal resource fields the resolvers need.
// It never touches full entity rows; each lookup is a single indexed read.
type pgSummarySource struct {
	pool *pgxpool.Pool
}

// NewSummarySource returns a SummarySource backed by the given pool.
func NewSummarySource(pool *pgxpool.Pool) SummarySource {
	return &pgSummarySource{pool: pool}
}

var _ SummarySource = (*pgSummarySource)(nil)

func (s *pgSummarySource) TaskSummary(ctx context.Context, id string) (TaskSummary, error) {
	var (
		summary  TaskSummary
		assigned pgtype.Text
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, project_id, assigned_to, created_by FROM tasks WHERE id = $1`, id).
		Scan(&summary.ID, &summary.ProjectID, &assigned, &summary.CreatedBy)
	if err != nil {
		return TaskSummary{}, mapNoRows(err)
	}
	summary.AssignedTo = assigned.String
	return summary, nil
}

func (s *pgSummarySource) CommentSummary(ctx context.Context, id string) (CommentSummary, error) {
	var summary CommentSummary
	err := s.pool.QueryRow(ctx,
		`SELECT id, task_id, user_id FROM comments WHERE id = $1`, id).
		Scan(&summary.ID, &summary.TaskID, &summary.AuthorID)
	if err != nil {
		return CommentSummary{}, mapNoRows(err)
	}
	return summary, nil
}

func (s *pgSummarySource) ProjectSummary(ctx context.Context, id string) (ProjectSummary, error) {
	var summary ProjectSummary
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id FROM projects WHERE id = $1`, id).
		Scan(&summary.ID, &summary.OwnerID)
	if err != nil {
		return ProjectSummary{}, mapNoRows(err)
	}
	return summary, nil
}

func (s *pgSummarySource) NotificationSummary(ctx context.Context, id string) (NotificationSummary, error) {
	var summary NotificationSummary
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id FROM notifications WHERE id = $1`, id).
		Scan(&summary.ID, &summary.UserID)
	if err != nil {
		return NotificationSummary{}, mapNoRows(err)
	}
	return summary, nil
}

func (s *pgSummarySource) HasActiveMembership(ctx context.Context, userID, projectID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM memberships WHERE user_id = $1 AND project_id = $2 AND status = 'active')`,
		userID, projectID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.ErrNotFound
	}
	return err
}
