package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"jobboard/pkg/domain"
	audit "jobboard/pkg/platform/audit"
)

// Store implements audit.Store on the audit_events table.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts an audit event. Zero user and actor IDs are stored as NULL.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			category, occurred_at, user_id, subject, action,
			reason, request_id, user_agent, actor_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		string(event.Category),
		event.Timestamp,
		nullableID(event.UserID),
		event.Subject,
		event.Action,
		event.Reason,
		event.RequestID,
		event.UserAgent,
		nullableID(event.ActorID),
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByUser returns events for a specific user, newest first.
func (s *Store) ListByUser(ctx context.Context, userID domain.UserID) ([]audit.Event, error) {
	query := `
		SELECT category, occurred_at, user_id, subject, action,
			   reason, request_id, user_agent, actor_id
		FROM audit_events
		WHERE user_id = $1
		ORDER BY occurred_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query, int64(userID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			e               audit.Event
			category        string
			userID, actorID sql.NullInt64
		)
		if err := rows.Scan(&category, &e.Timestamp, &userID, &e.Subject, &e.Action,
			&e.Reason, &e.RequestID, &e.UserAgent, &actorID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		e.UserID = domain.UserID(userID.Int64)
		e.ActorID = domain.UserID(actorID.Int64)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

func nullableID(id domain.UserID) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(id), Valid: id.IsValid()}
}
