package invites

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines invite data access.
type Repository interface {
	Create(ctx context.Context, invite Invite) error
	Get(ctx context.Context, id string) (Invite, error)
	GetByToken(ctx context.Context, token string) (Invite, error)
	ListByProject(ctx context.Context, projectID string) ([]Invite, error)
	UpdateStatus(ctx context.Context, id, status string, acceptedAt *time.Time) error
	IncrementResend(ctx context.Context, id string) error
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Repository backed by postgres.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const inviteColumns = `id, project_id, invited_by, email, token, status, resend_count, expires_at, created_at, accepted_at`

func (r *pgRepository) Create(ctx context.Context, inv Invite) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO invites (id, project_id, invited_by, email, token, status, resend_count, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		inv.ID, inv.ProjectID, inv.InvitedBy, inv.Email, inv.Token, inv.Status,
		inv.ResendCount, inv.ExpiresAt, inv.CreatedAt)
	return err
}

func (r *pgRepository) Get(ctx context.Context, id string) (Invite, error) {
	return scanInvite(r.pool.QueryRow(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE id = $1`, id))
}

func (r *pgRepository) GetByToken(ctx context.Context, token string) (Invite, error) {
	return scanInvite(r.pool.QueryRow(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE token = $1`, token))
}

func (r *pgRepository) ListByProject(ctx context.Context, projectID string) ([]Invite, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE project_id = $1 ORDER BY created_at DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var invites []Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

func (r *pgRepository) UpdateStatus(ctx context.Context, id, status string, acceptedAt *time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invites SET status = $2, accepted_at = $3 WHERE id = $1`, id, status, acceptedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) IncrementResend(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invites SET resend_count = resend_count + 1 WHERE id = $1`, id)
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

func scanInvite(row rowScanner) (Invite, error) {
	var inv Invite
	err := row.Scan(&inv.ID, &inv.ProjectID, &inv.InvitedBy, &inv.Email, &inv.Token,
		&inv.Status, &inv.ResendCount, &inv.ExpiresAt, &inv.CreatedAt, &inv.AcceptedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invite{}, ErrNotFound
		}
		return Invite{}, err
	}
	return inv, nil
}
