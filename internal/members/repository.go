package members

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines membership data access.
type Repository interface {
	Create(ctx context.Context, membership Membership) error
	Get(ctx context.Context, id string) (Membership, error)
	Find(ctx context.Context, userID, projectID string) (Membership, error)
	FindActiveByUser(ctx context.Context, userID string) (Membership, error)
	ListByProject(ctx context.Context, projectID string) ([]Membership, error)
	UpdateRole(ctx context.Context, id, role string) error
	Delete(ctx context.Context, id string) error
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Repository backed by postgres.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const membershipColumns = `id, user_id, project_id, role, status, joined_at`

func (r *pgRepository) Create(ctx context.Context, m Membership) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO memberships (id, user_id, project_id, role, status, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.UserID, m.ProjectID, m.Role, m.Status, m.JoinedAt)
	return err
}

func (r *pgRepository) Get(ctx context.Context, id string) (Membership, error) {
	return scanMembership(r.pool.QueryRow(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE id = $1`, id))
}

func (r *pgRepository) Find(ctx context.Context, userID, projectID string) (Membership, error) {
	return scanMembership(r.pool.QueryRow(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE user_id = $1 AND project_id = $2`, userID, projectID))
}

func (r *pgRepository) FindActiveByUser(ctx context.Context, userID string) (Membership, error) {
	return scanMembership(r.pool.QueryRow(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE user_id = $1 AND status = 'active' ORDER BY joined_at ASC LIMIT 1`, userID))
}

func (r *pgRepository) ListByProject(ctx context.Context, projectID string) ([]Membership, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE project_id = $1 ORDER BY joined_at ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var memberships []Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (r *pgRepository) UpdateRole(ctx context.Context, id, role string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE memberships SET role = $2 WHERE id = $1`, id, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM memberships WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMembership(row rowScanner) (Membership, error) {
	var m Membership
	err := row.Scan(&m.ID, &m.UserID, &m.ProjectID, &m.Role, &m.Status, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Membership{}, ErrNotFound
		}
		return Membership{}, err
	}
	return m, nil
}
