// Package postgres implements the task store on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	pgplatform "comphub/internal/platform/postgres"
	"comphub/internal/task/models"
	id "comphub/pkg/domain"
	"comphub/pkg/platform/sentinel"
	"comphub/pkg/platform/tx"
)

// Store persists comp tasks.
type Store struct {
	db *sql.DB
}

// New creates a task store backed by db.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const taskColumns = `
	id, lease_comp_id, team_id, title, assigned_to, priority, status, notes,
	completed_at, created_at, updated_at, created_by, updated_by`

// Insert writes a new task row.
func (s *Store) Insert(ctx context.Context, t models.Task) error {
	query := `
		INSERT INTO lease_comp_tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.exec(ctx, query,
		uuid.UUID(t.ID), uuid.UUID(t.CompID), uuid.UUID(t.TeamID),
		t.Title, uuid.UUID(t.AssignedTo), string(t.Priority), string(t.Status), t.Notes,
		t.CompletedAt, t.CreatedAt, t.UpdatedAt, uuid.UUID(t.CreatedBy), uuid.UUID(t.UpdatedBy))
	if err != nil {
		return translateErr(err, "insert task")
	}
	return nil
}

// Update rewrites the mutable columns of an existing task.
func (s *Store) Update(ctx context.Context, t models.Task) error {
	query := `
		UPDATE lease_comp_tasks SET
			title = $3, assigned_to = $4, priority = $5, status = $6, notes = $7,
			completed_at = $8, updated_at = $9, updated_by = $10
		WHERE id = $1 AND team_id = $2`

	result, err := s.exec(ctx, query,
		uuid.UUID(t.ID), uuid.UUID(t.TeamID),
		t.Title, uuid.UUID(t.AssignedTo), string(t.Priority), string(t.Status), t.Notes,
		t.CompletedAt, t.UpdatedAt, uuid.UUID(t.UpdatedBy))
	if err != nil {
		return translateErr(err, "update task")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// GetByID loads one task, team-scoped.
func (s *Store) GetByID(ctx context.Context, teamID id.TeamID, taskID id.TaskID) (models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM lease_comp_tasks WHERE id = $1 AND team_id = $2`

	task, err := scanTask(s.queryRow(ctx, query, uuid.UUID(taskID), uuid.UUID(teamID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, sentinel.ErrNotFound
		}
		return models.Task{}, translateErr(err, "get task")
	}
	return task, nil
}

// ListByComp returns the comp's tasks: open first, then by creation time,
// newest first within each group.
func (s *Store) ListByComp(ctx context.Context, teamID id.TeamID, compID id.CompID) ([]models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM lease_comp_tasks
		WHERE lease_comp_id = $1 AND team_id = $2
		ORDER BY (status = 'completed') ASC, created_at DESC, id DESC`

	rows, err := s.query(ctx, query, uuid.UUID(compID), uuid.UUID(teamID))
	if err != nil {
		return nil, translateErr(err, "list tasks")
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		out = append(out, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		t           models.Task
		taskID      uuid.UUID
		compID      uuid.UUID
		teamID      uuid.UUID
		assignedTo  uuid.UUID
		priority    string
		status      string
		notes       sql.NullString
		completedAt sql.NullTime
		createdBy   uuid.UUID
		updatedBy   uuid.UUID
	)
	err := row.Scan(&taskID, &compID, &teamID, &t.Title, &assignedTo, &priority, &status,
		&notes, &completedAt, &t.CreatedAt, &t.UpdatedAt, &createdBy, &updatedBy)
	if err != nil {
		return models.Task{}, err
	}
	t.ID = id.TaskID(taskID)
	t.CompID = id.CompID(compID)
	t.TeamID = id.TeamID(teamID)
	t.AssignedTo = id.UserID(assignedTo)
	t.Priority = models.Priority(priority)
	t.Status = models.Status(status)
	if notes.Valid {
		t.Notes = &notes.String
	}
	if completedAt.Valid {
		at := completedAt.Time
		t.CompletedAt = &at
	}
	t.CreatedBy = id.UserID(createdBy)
	t.UpdatedBy = id.UserID(updatedBy)
	return t, nil
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
