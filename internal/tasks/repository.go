package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines task data access.
type Repository interface {
	Create(ctx context.Context, task Task) error
	Get(ctx context.Context, id string) (Task, error)
	Update(ctx context.Context, task Task) error
	Delete(ctx context.Context, id string) error
	ListByProject(ctx context.Context, projectID string) ([]Task, error)
	ListByAssignee(ctx context.Context, userID string) ([]Task, error)
	ListAll(ctx context.Context) ([]Task, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Repository backed by postgres.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const taskColumns = `id, project_id, title, description, status, priority, assigned_to, created_by, due_date, completed_at, created_at, updated_at`

func (r *pgRepository) Create(ctx context.Context, task Task) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tasks (id, project_id, title, description, status, priority, assigned_to, created_by, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		task.ID, task.ProjectID, task.Title, nullText(task.Description), task.Status, task.Priority,
		nullText(task.AssignedTo), task.CreatedBy, nullTime(task.DueDate), task.CreatedAt)
	return err
}

func (r *pgRepository) Get(ctx context.Context, id string) (Task, error) {
	return scanTask(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
}

func (r *pgRepository) Update(ctx context.Context, task Task) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks SET title = $2, description = $3, status = $4, priority = $5,
			assigned_to = $6, due_date = $7, completed_at = $8, updated_at = $9
		WHERE id = $1`,
		task.ID, task.Title, nullText(task.Description), task.Status, task.Priority,
		nullText(task.AssignedTo), nullTime(task.DueDate), nullTime(task.CompletedAt), time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) ListByProject(ctx context.Context, projectID string) ([]Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 ORDER BY created_at DESC`, projectID)
}

func (r *pgRepository) ListByAssignee(ctx context.Context, userID string) ([]Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE assigned_to = $1 ORDER BY created_at DESC`, userID)
}

func (r *pgRepository) ListAll(ctx context.Context) ([]Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC`)
}

func (r *pgRepository) list(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tasks []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var (
		task                  Task
		description, assigned pgtype.Text
		due, completed        pgtype.Timestamptz
	)
	err := row.Scan(&task.ID, &task.ProjectID, &task.Title, &description, &task.Status, &task.Priority,
		&assigned, &task.CreatedBy, &due, &completed, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, err
	}
	task.Description = description.String
	task.AssignedTo = assigned.String
	if due.Valid {
		task.DueDate = &due.Time
	}
	if completed.Valid {
		task.CompletedAt = &completed.Time
	}
	return task, nil
}

func nullText(value string) pgtype.Text {
	if value == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: value, Valid: true}
}

func nullTime(t *time.Time) pgtype.Timestamptz {
	if t == nil || t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}
