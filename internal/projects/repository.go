package projects

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines project data access.
type Repository interface {
	Create(ctx context.Context, project Project) error
	Get(ctx context.Context, id string) (Project, error)
	GetByOwner(ctx context.Context, ownerID string) (Project, error)
	Update(ctx context.Context, project Project) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Project, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Repository backed by postgres.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const projectColumns = `id, name, description, category, owner_id, status, created_at, updated_at`

func (r *pgRepository) Create(ctx context.Context, project Project) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO projects (id, name, description, category, owner_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		project.ID, project.Name, nullable(project.Description), nullable(project.Category),
		project.OwnerID, project.Status, project.CreatedAt)
	return err
}

func (r *pgRepository) Get(ctx context.Context, id string) (Project, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
}

func (r *pgRepository) GetByOwner(ctx context.Context, ownerID string) (Project, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE owner_id = $1`, ownerID))
}

func (r *pgRepository) Update(ctx context.Context, project Project) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE projects SET name = $2, description = $3, category = $4, status = $5, updated_at = $6
		WHERE id = $1`,
		project.ID, project.Name, nullable(project.Description), nullable(project.Category),
		project.Status, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) List(ctx context.Context) ([]Project, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var projects []Project
	for rows.Next() {
		project, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *pgRepository) scanOne(row rowScanner) (Project, error) {
	var (
		project               Project
		description, category pgtype.Text
	)
	err := row.Scan(&project.ID, &project.Name, &description, &category,
		&project.OwnerID, &project.Status, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, ErrNotFound
		}
		return Project{}, err
	}
	project.Description = description.String
	project.Category = category.String
	return project, nil
}

func nullable(value string) pgtype.Text {
	if value == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: value, Valid: true}
}
