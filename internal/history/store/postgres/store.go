// Package postgres implements the history store on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"comphub/internal/history"
	pgplatform "comphub/internal/platform/postgres"
	id "comphub/pkg/domain"
	"comphub/pkg/platform/sentinel"
	"comphub/pkg/platform/tx"
)

// Store persists history events, diffs and outbox rows.
type Store struct {
	db *sql.DB
}

// New creates a history store backed by db.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// outboxPayload is the JSON document staged for the history topic.
type outboxPayload struct {
	EventID   string    `json:"event_id"`
	CompID    string    `json:"comp_id"`
	TeamID    string    `json:"team_id"`
	EventType string    `json:"event_type"`
	Summary   string    `json:"summary"`
	ActorID   string    `json:"actor_user_id"`
	DiffCount int       `json:"diff_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Append writes the event, its diffs, and an outbox row in one transaction.
// If any statement fails the whole append rolls back, so a partially written
// event is never observable.
func (s *Store) Append(ctx context.Context, event history.Event) error {
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		if err := s.insertEvent(ctx, event); err != nil {
			return err
		}
		if err := s.insertDiffs(ctx, event); err != nil {
			return err
		}
		return s.insertOutboxRow(ctx, event)
	})
}

func (s *Store) insertEvent(ctx context.Context, event history.Event) error {
	query := `
		INSERT INTO lease_comp_events (id, comp_id, team_id, event_type, summary, actor_user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.exec(ctx, query,
		uuid.UUID(event.ID), uuid.UUID(event.CompID), uuid.UUID(event.TeamID),
		string(event.Type), event.Summary, uuid.UUID(event.ActorUserID), event.CreatedAt,
	)
	if err != nil {
		if pgplatform.IsPermissionDenied(err) {
			return fmt.Errorf("insert event: %w", sentinel.ErrPermissionDenied)
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *Store) insertDiffs(ctx context.Context, event history.Event) error {
	if len(event.Diffs) == 0 {
		return nil
	}
	query := `
		INSERT INTO lease_comp_event_diffs (event_id, field_label, old_value, new_value)
		VALUES ($1, $2, $3, $4)`

	for _, d := range event.Diffs {
		if _, err := s.exec(ctx, query, uuid.UUID(event.ID), d.FieldLabel, d.OldValue, d.NewValue); err != nil {
			if pgplatform.IsPermissionDenied(err) {
				return fmt.Errorf("insert diff: %w", sentinel.ErrPermissionDenied)
			}
			return fmt.Errorf("insert diff: %w", err)
		}
	}
	return nil
}

func (s *Store) insertOutboxRow(ctx context.Context, event history.Event) error {
	payload, err := json.Marshal(outboxPayload{
		EventID:   event.ID.String(),
		CompID:    event.CompID.String(),
		TeamID:    event.TeamID.String(),
		EventType: string(event.Type),
		Summary:   event.Summary,
		ActorID:   event.ActorUserID.String(),
		DiffCount: len(event.Diffs),
		CreatedAt: event.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	query := `
		INSERT INTO history_outbox (event_id, payload, created_at)
		VALUES ($1, $2, $3)`
	if _, err := s.exec(ctx, query, uuid.UUID(event.ID), payload, event.CreatedAt); err != nil {
		return fmt.Errorf("insert outbox row: %w", err)
	}
	return nil
}

// ListByComp returns all events for a comp, most recent first, with diffs
// attached. Ties on created_at break on id so the order is stable.
func (s *Store) ListByComp(ctx context.Context, teamID id.TeamID, compID id.CompID) ([]history.Event, error) {
	query := `
		SELECT id, comp_id, team_id, event_type, summary, actor_user_id, created_at
		FROM lease_comp_events
		WHERE comp_id = $1 AND team_id = $2
		ORDER BY created_at DESC, id DESC`

	rows, err := s.query(ctx, query, uuid.UUID(compID), uuid.UUID(teamID))
	if err != nil {
		if pgplatform.IsPermissionDenied(err) {
			return nil, fmt.Errorf("list events: %w", sentinel.ErrPermissionDenied)
		}
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []history.Event
	var eventIDs []uuid.UUID
	for rows.Next() {
		var e history.Event
		var eventID, cID, tID, actorID uuid.UUID
		var eventType string
		if err := rows.Scan(&eventID, &cID, &tID, &eventType, &e.Summary, &actorID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.ID = id.EventID(eventID)
		e.CompID = id.CompID(cID)
		e.TeamID = id.TeamID(tID)
		e.Type = history.EventType(eventType)
		e.ActorUserID = id.UserID(actorID)
		events = append(events, e)
		eventIDs = append(eventIDs, eventID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	if len(events) == 0 {
		return nil, nil
	}

	diffsByEvent, err := s.listDiffs(ctx, eventIDs)
	if err != nil {
		return nil, err
	}
	for i := range events {
		events[i].Diffs = diffsByEvent[uuid.UUID(events[i].ID)]
	}
	return events, nil
}

func (s *Store) listDiffs(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID][]history.Diff, error) {
	query := `
		SELECT id, event_id, field_label, old_value, new_value
		FROM lease_comp_event_diffs
		WHERE event_id = ANY($1)
		ORDER BY id ASC`

	ids := make([]string, len(eventIDs))
	for i, eid := range eventIDs {
		ids[i] = eid.String()
	}

	rows, err := s.query(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("list diffs: %w", err)
	}
	defer rows.Close()

	diffs := make(map[uuid.UUID][]history.Diff)
	for rows.Next() {
		var d history.Diff
		var eventID uuid.UUID
		if err := rows.Scan(&d.ID, &eventID, &d.FieldLabel, &d.OldValue, &d.NewValue); err != nil {
			return nil, fmt.Errorf("scan diff: %w", err)
		}
		d.EventID = id.EventID(eventID)
		diffs[eventID] = append(diffs[eventID], d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diffs: %w", err)
	}
	return diffs, nil
}

// FetchUnpublished returns up to limit outbox rows not yet handed to the
// broker, oldest first.
func (s *Store) FetchUnpublished(ctx context.Context, limit int) ([]history.OutboxRow, error) {
	query := `
		SELECT id, event_id, payload, created_at
		FROM history_outbox
		WHERE published_at IS NULL
		ORDER BY id ASC
		LIMIT $1`

	rows, err := s.query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch outbox: %w", err)
	}
	defer rows.Close()

	var out []history.OutboxRow
	for rows.Next() {
		var r history.OutboxRow
		var eventID uuid.UUID
		if err := rows.Scan(&r.ID, &eventID, &r.Payload, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		r.EventID = id.EventID(eventID)
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarkPublished stamps the given outbox rows as handed to the broker.
func (s *Store) MarkPublished(ctx context.Context, rowIDs []int64, at time.Time) error {
	if len(rowIDs) == 0 {
		return nil
	}
	query := `UPDATE history_outbox SET published_at = $1 WHERE id = ANY($2)`
	if _, err := s.exec(ctx, query, at, pq.Array(rowIDs)); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx.ExecContext(ctx, query, args...)
	}
	return s.db.ExecContext(ctx, query, args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx.QueryContext(ctx, query, args...)
	}
	return s.db.QueryContext(ctx, query, args...)
}
