// Package postgres implements the reminder store on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	pgplatform "comphub/internal/platform/postgres"
	"comphub/internal/reminder/models"
	id "comphub/pkg/domain"
	"comphub/pkg/platform/sentinel"
	"comphub/pkg/platform/tx"
)

// Store persists comp reminders.
type Store struct {
	db *sql.DB
}

// New creates a reminder store backed by db.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const reminderColumns = `
	id, lease_comp_id, team_id, title, assigned_to, remind_at, notes,
	completed_at, notification_sent, created_at, updated_at, created_by, updated_by`

// Insert writes a new reminder row.
func (s *Store) Insert(ctx context.Context, r models.Reminder) error {
	query := `
		INSERT INTO lease_comp_reminders (` + reminderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.exec(ctx, query,
		uuid.UUID(r.ID), uuid.UUID(r.CompID), uuid.UUID(r.TeamID),
		r.Title, uuid.UUID(r.AssignedTo), r.RemindAt, r.Notes,
		r.CompletedAt, r.NotificationSent, r.CreatedAt, r.UpdatedAt,
		uuid.UUID(r.CreatedBy), uuid.UUID(r.UpdatedBy))
	if err != nil {
		return translateErr(err, "insert reminder")
	}
	return nil
}

// Update rewrites the mutable columns of an existing reminder.
func (s *Store) Update(ctx context.Context, r models.Reminder) error {
	query := `
		UPDATE lease_comp_reminders SET
			title = $3, assigned_to = $4, remind_at = $5, notes = $6,
			completed_at = $7, notification_sent = $8, updated_at = $9, updated_by = $10
		WHERE id = $1 AND team_id = $2`

	result, err := s.exec(ctx, query,
		uuid.UUID(r.ID), uuid.UUID(r.TeamID),
		r.Title, uuid.UUID(r.AssignedTo), r.RemindAt, r.Notes,
		r.CompletedAt, r.NotificationSent, r.UpdatedAt, uuid.UUID(r.UpdatedBy))
	if err != nil {
		return translateErr(err, "update reminder")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update reminder: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// GetByID loads one reminder, team-scoped.
func (s *Store) GetByID(ctx context.Context, teamID id.TeamID, reminderID id.ReminderID) (models.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM lease_comp_reminders WHERE id = $1 AND team_id = $2`

	reminder, err := scanReminder(s.queryRow(ctx, query, uuid.UUID(reminderID), uuid.UUID(teamID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Reminder{}, sentinel.ErrNotFound
		}
		return models.Reminder{}, translateErr(err, "get reminder")
	}
	return reminder, nil
}

// ListByComp returns the comp's reminders: pending first by remind time, then
// completed, newest completion first.
func (s *Store) ListByComp(ctx context.Context, teamID id.TeamID, compID id.CompID) ([]models.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM lease_comp_reminders
		WHERE lease_comp_id = $1 AND team_id = $2
		ORDER BY (completed_at IS NOT NULL) ASC, remind_at ASC, id ASC`

	rows, err := s.query(ctx, query, uuid.UUID(compID), uuid.UUID(teamID))
	if err != nil {
		return nil, translateErr(err, "list reminders")
	}
	defer rows.Close()
	return collectReminders(rows, "list reminders")
}

// ListDue returns pending reminders whose remind time has passed and which
// have not been notified yet, across all teams. The notifier runs with
// service credentials, not a tenant session.
func (s *Store) ListDue(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM lease_comp_reminders
		WHERE completed_at IS NULL AND notification_sent = FALSE AND remind_at <= $1
		ORDER BY remind_at ASC, id ASC
		LIMIT $2`

	rows, err := s.query(ctx, query, now, limit)
	if err != nil {
		return nil, translateErr(err, "list due reminders")
	}
	defer rows.Close()
	return collectReminders(rows, "list due reminders")
}

// MarkNotified records that the notifier fired for the reminder.
func (s *Store) MarkNotified(ctx context.Context, reminderID id.ReminderID, at time.Time) error {
	result, err := s.exec(ctx, `
		UPDATE lease_comp_reminders
		SET notification_sent = TRUE, updated_at = $2
		WHERE id = $1 AND notification_sent = FALSE`,
		uuid.UUID(reminderID), at)
	if err != nil {
		return translateErr(err, "mark reminder notified")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark reminder notified: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func collectReminders(rows *sql.Rows, op string) ([]models.Reminder, error) {
	var out []models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, reminder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (models.Reminder, error) {
	var (
		r           models.Reminder
		reminderID  uuid.UUID
		compID      uuid.UUID
		teamID      uuid.UUID
		assignedTo  uuid.UUID
		notes       sql.NullString
		completedAt sql.NullTime
		createdBy   uuid.UUID
		updatedBy   uuid.UUID
	)
	err := row.Scan(&reminderID, &compID, &teamID, &r.Title, &assignedTo, &r.RemindAt,
		&notes, &completedAt, &r.NotificationSent, &r.CreatedAt, &r.UpdatedAt,
		&createdBy, &updatedBy)
	if err != nil {
		return models.Reminder{}, err
	}
	r.ID = id.ReminderID(reminderID)
	r.CompID = id.CompID(compID)
	r.TeamID = id.TeamID(teamID)
	r.AssignedTo = id.UserID(assignedTo)
	if notes.Valid {
		r.Notes = &notes.String
	}
	if completedAt.Valid {
		at := completedAt.Time
		r.CompletedAt = &at
	}
	r.CreatedBy = id.UserID(createdBy)
	r.UpdatedBy = id.UserID(updatedBy)
	return r, nil
}

func translateErr(err error, op string) error {
	if pgplatform.IsPermissionDenied(err) {
		return fmt.Errorf("%s: %w", op, sentinel.ErrPermissionDenied)
	}
	return fmt.Errorf("%s: %w", op, err)
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

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx.QueryRowContext(ctx, query, args...)
	}
	return s.db.QueryRowContext(ctx, query, args...)
}
