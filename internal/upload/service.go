package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/retailboard/internal/dataset"
	"github.com/MrJamesThe3rd/retailboard/internal/sales"
)

var ErrTooLarge = errors.New("file exceeds the upload size limit")

// DefaultHistoryLimit caps History results.
const DefaultHistoryLimit = 50

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=upload
type Repository interface {
	CreateUpload(ctx context.Context, u *Upload) error
	ListUploads(ctx context.Context, sessionID uuid.UUID, limit int) ([]*Upload, error)
}

type Service struct {
	repo     Repository
	maxBytes int64
}

func NewService(repo Repository, maxBytes int64) *Service {
	return &Service{repo: repo, maxBytes: maxBytes}
}

// Ingest reads and cleans one file and records it in the session's history.
// A failure to record history is logged and does not fail the upload.
func (s *Service) Ingest(ctx context.Context, sessionID uuid.UUID, filename string, r io.Reader) (*Dataset, error) {
	if s.maxBytes > 0 {
		r = io.LimitReader(r, s.maxBytes+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, ErrTooLarge
	}

	raw, format, err := dataset.Read(filename, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	table, err := sales.Clean(raw)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		Upload: Upload{
			SessionID: sessionID,
			Filename:  filename,
			Format:    format,
			RawRows:   raw.Len(),
			Rows:      table.Len(),
			Columns:   len(raw.Columns),
			Degraded:  len(table.Notes) > 0,
			CreatedAt: time.Now().UTC(),
		},
		Raw:   raw,
		Sales: table,
	}

	if err := s.repo.CreateUpload(ctx, &ds.Upload); err != nil {
		slog.Warn("failed to record upload", "filename", filename, "error", err)
	}

	slog.Info("dataset loaded",
		"filename", filename,
		"format", format,
		"charset", raw.Charset,
		"raw_rows", ds.Upload.RawRows,
		"rows", ds.Upload.Rows,
		"dropped", table.Dropped,
	)

	return ds, nil
}

// History lists the session's uploads, newest first.
func (s *Service) History(ctx context.Context, sessionID uuid.UUID) ([]*Upload, error) {
	uploads, err := s.repo.ListUploads(ctx, sessionID, DefaultHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("listing uploads: %w", err)
	}

	return uploads, nil
}
