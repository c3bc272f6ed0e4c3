package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sink accepts append-only audit events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store persists and reads audit events from the audit_logs table.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Append inserts one audit event. Rows are never updated afterwards.
func (s *Store) Append(ctx context.Context, event Event) error {
	if s == nil || s.pool == nil {
		return errors.New("audit: store not initialised")
	}
	if event.Action == "" {
		return errors.New("audit: event requires an action")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	details, err := json.Marshal(event.Details)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO audit_logs (id, user_id, project_id, action, entity_type, entity_id, details, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		event.ID, nullText(event.ActorID), nullText(event.ProjectID), event.Action,
		nullText(event.EntityType), nullText(event.EntityID), details,
		nullText(event.IPAddress), nullText(event.UserAgent), event.At)
	return err
}

// Timeline returns events matching the filters, newest first. It fetches one
// row beyond the page size so the caller can detect a next page.
func (s *Store) Timeline(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, project_id, action, entity_type, entity_id, details, ip_address, user_agent, created_at
		FROM audit_logs
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at < $2)
		  AND ($3::text IS NULL OR user_id = $3)
		  AND ($4::text IS NULL OR entity_type = $4)
		  AND ($5::text IS NULL OR action = $5)
		ORDER BY created_at DESC
		LIMIT $6 OFFSET $7`,
		nullTime(filters.From), nullTime(filters.To), nullText(filters.ActorID),
		nullText(filters.Entity), nullText(filters.Action), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev                                             Event
			actor, project, entityType, entityID, ip, agent pgtype.Text
			details                                        []byte
		)
		if err := rows.Scan(&ev.ID, &actor, &project, &ev.Action, &entityType, &entityID, &details, &ip, &agent, &ev.At); err != nil {
			return nil, err
		}
		ev.ActorID = actor.String
		ev.ProjectID = project.String
		ev.EntityType = entityType.String
		ev.EntityID = entityID.String
		ev.IPAddress = ip.String
		ev.UserAgent = agent.String
		if len(details) > 0 {
			_ = json.Unmarshal(details, &ev.Details)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// PurgeBefore deletes events older than the cutoff and reports how many rows
// went away.
func (s *Store) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func nullText(value string) pgtype.Text {
	if value == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: value, Valid: true}
}

func nullTime(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}
