package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines notification data access.
type Repository interface {
	Create(ctx context.Context, notification Notification) error
	Get(ctx context.Context, id string) (Notification, error)
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
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

const notificationColumns = `id, user_id, project_id, type, message, read, entity_type, entity_id, created_at, read_at`

func (r *pgRepository) Create(ctx context.Context, n Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, project_id, type, message, read, entity_type, entity_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.ID, n.UserID, nullText(n.ProjectID), n.Type, n.Message, n.Read,
		nullText(n.EntityType), nullText(n.EntityID), n.CreatedAt)
	return err
}

func (r *pgRepository) Get(ctx context.Context, id string) (Notification, error) {
	return scanNotification(r.pool.QueryRow(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
}

func (r *pgRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notifications []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *pgRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE, read_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
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

func scanNotification(row rowScanner) (Notification, error) {
	var (
		n                             Notification
		project, entityType, entityID pgtype.Text
		readAt                        pgtype.Timestamptz
	)
	err := row.Scan(&n.ID, &n.UserID, &project, &n.Type, &n.Message, &n.Read,
		&entityType, &entityID, &n.CreatedAt, &readAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Notification{}, ErrNotFound
		}
		return Notification{}, err
	}
	n.ProjectID = project.String
	n.EntityType = entityType.String
	n.EntityID = entityID.String
	if readAt.Valid {
		n.ReadAt = &readAt.Time
	}
	return n, nil
}

func nullText(value string) pgtype.Text {
	if value == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: value, Valid: true}
}
