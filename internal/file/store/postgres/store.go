// Package postgres implements the file metadata store on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"comphub/internal/file/models"
	pgplatform "comphub/internal/platform/postgres"
	id "comphub/pkg/domain"
	"comphub/pkg/platform/sentinel"
	"comphub/pkg/platform/tx"
)

// Store persists comp file metadata.
type Store struct {
	db *sql.DB
}

// New creates a file store backed by db.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const fileColumns = `
	id, lease_comp_id, team_id, storage_path, original_filename, mime_type,
	size_bytes, created_at, created_by`

// Insert writes a new file row.
func (s *Store) Insert(ctx context.Context, f models.File) error {
	query := `
		INSERT INTO lease_comp_files (` + fileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.exec(ctx, query,
		uuid.UUID(f.ID), uuid.UUID(f.CompID), uuid.UUID(f.TeamID),
		f.StoragePath, f.OriginalFilename, f.MimeType, f.SizeBytes,
		f.CreatedAt, uuid.UUID(f.CreatedBy))
	if err != nil {
		return translateErr(err, "insert file")
	}
	return nil
}

// GetByID loads one file row, team-scoped.
func (s *Store) GetByID(ctx context.Context, teamID id.TeamID, fileID id.FileID) (models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM lease_comp_files WHERE id = $1 AND team_id = $2`

	file, err := scanFile(s.queryRow(ctx, query, uuid.UUID(fileID), uuid.UUID(teamID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.File{}, sentinel.ErrNotFound
		}
		return models.File{}, translateErr(err, "get file")
	}
	return file, nil
}

// ListByComp returns the comp's files, newest first.
func (s *Store) ListByComp(ctx context.Context, teamID id.TeamID, compID id.CompID) ([]models.File, error) {
	query := `
		SELECT ` + fileColumns + `
		FROM lease_comp_files
		WHERE lease_comp_id = $1 AND team_id = $2
		ORDER BY created_at DESC, id DESC`

	rows, err := s.query(ctx, query, uuid.UUID(compID), uuid.UUID(teamID))
	if err != nil {
		return nil, translateErr(err, "list files")
	}
	defer rows.Close()

	var out []models.File
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("list files: %w", err)
		}
		out = append(out, file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return out, nil
}

// Delete removes one file row, team-scoped.
func (s *Store) Delete(ctx context.Context, teamID id.TeamID, fileID id.FileID) error {
	query := `DELETE FROM lease_comp_files WHERE id = $1 AND team_id = $2`

	result, err := s.exec(ctx, query, uuid.UUID(fileID), uuid.UUID(teamID))
	if err != nil {
		return translateErr(err, "delete file")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (models.File, error) {
	var (
		f         models.File
		fileID    uuid.UUID
		compID    uuid.UUID
		teamID    uuid.UUID
		mimeType  sql.NullString
		sizeBytes sql.NullInt64
		createdBy uuid.UUID
	)
	err := row.Scan(&fileID, &compID, &teamID, &f.StoragePath, &f.OriginalFilename,
		&mimeType, &sizeBytes, &f.CreatedAt, &createdBy)
	if err != nil {
		return models.File{}, err
	}
	f.ID = id.FileID(fileID)
	f.CompID = id.CompID(compID)
	f.TeamID = id.TeamID(teamID)
	if mimeType.Valid {
		f.MimeType = &mimeType.String
	}
	if sizeBytes.Valid {
		size := sizeBytes.Int64
		f.SizeBytes = &size
	}
	f.CreatedBy = id.UserID(createdBy)
	return f, nil
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
