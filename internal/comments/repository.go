package comments

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines comment data access.
type Repository interface {
	Create(ctx context.Context, comment Comment) error
	Get(ctx context.Context, id string) (Comment, error)
	Update(ctx context.Context, id, content string) (Comment, error)
	Delete(ctx context.Context, id string) error
	ListByTask(ctx context.Context, taskID string) ([]Comment, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Repository backed by postgres.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) Create(ctx context.Context, comment Comment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO comments (id, task_id, user_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)`,
		comment.ID, comment.TaskID, comment.UserID, comment.Content, comment.CreatedAt)
	return err
}

func (r *pgRepository) Get(ctx context.Context, id string) (Comment, error) {
	var comment Comment
	err := r.pool.QueryRow(ctx,
		`SELECT id, task_id, user_id, content, created_at, updated_at FROM comments WHERE id = $1`, id).
		Scan(&comment.ID, &comment.TaskID, &comment.UserID, &comment.Content, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Comment{}, ErrNotFound
		}
		return Comment{}, err
	}
	return comment, nil
}

func (r *pgRepository) Update(ctx context.Context, id, content string) (Comment, error) {
	var comment Comment
	err := r.pool.QueryRow(ctx, `
		UPDATE comments SET content = $2, updated_at = $3 WHERE id = $1
		RETURNING id, task_id, user_id, content, created_at, updated_at`,
		id, content, time.Now().UTC()).
		Scan(&comment.ID, &comment.TaskID, &comment.UserID, &comment.Content, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Comment{}, ErrNotFound
		}
		return Comment{}, err
	}
	return comment, nil
}

func (r *pgRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) ListByTask(ctx context.Context, taskID string) ([]Comment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, task_id, user_id, content, created_at, updated_at FROM comments WHERE task_id = $1 ORDER BY created_at ASC`,
		taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var comments []Comment
	for rows.Next() {
		var comment Comment
		if err := rows.Scan(&comment.ID, &comment.TaskID, &comment.UserID, &comment.Content, &comment.CreatedAt, &comment.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}
