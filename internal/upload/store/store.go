package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/retailboard/internal/database"
	"github.com/MrJamesThe3rd/retailboard/internal/dataset"
	"github.com/MrJamesThe3rd/retailboard/internal/upload"
)

type Store struct {
	db     *sql.DB
	driver string
}

func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, session_id, filename, format, raw_rows, clean_rows, column_count, degraded, created_at
func scanUpload(s scanner) (*upload.Upload, error) {
	var (
		u         upload.Upload
		format    string
		degraded  int
		createdAt int64
	)

	if err := s.Scan(
		&u.ID, &u.SessionID, &u.Filename, &format,
		&u.RawRows, &u.Rows, &u.Columns, &degraded, &createdAt,
	); err != nil {
		return nil, err
	}

	u.Format = dataset.Format(format)
	u.Degraded = degraded != 0
	u.CreatedAt = time.UnixMilli(createdAt).UTC()

	return &u, nil
}

func (s *Store) CreateUpload(ctx context.Context, u *upload.Upload) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	degraded := 0
	if u.Degraded {
		degraded = 1
	}

	query := database.Rebind(s.driver, `
		INSERT INTO uploads (id, session_id, filename, format, raw_rows, clean_rows, column_count, degraded, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := s.db.ExecContext(ctx, query,
		u.ID.String(),
		u.SessionID.String(),
		u.Filename,
		string(u.Format),
		u.RawRows,
		u.Rows,
		u.Columns,
		degraded,
		u.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("inserting upload: %w", err)
	}

	return nil
}

func (s *Store) ListUploads(ctx context.Context, sessionID uuid.UUID, limit int) ([]*upload.Upload, error) {
	query := database.Rebind(s.driver, `
		SELECT id, session_id, filename, format, raw_rows, clean_rows, column_count, degraded, created_at
		FROM uploads
		WHERE session_id = ?
		ORDER BY created_at DESC, id
		LIMIT ?
	`)

	rows, err := s.db.QueryContext(ctx, query, sessionID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("querying uploads: %w", err)
	}
	defer rows.Close()

	var uploads []*upload.Upload

	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning upload: %w", err)
		}

		uploads = append(uploads, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating uploads: %w", err)
	}

	return uploads, nil
}
