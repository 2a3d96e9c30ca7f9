package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/saeidmoini/TeleDo/internal/model"
)

type AttachmentStorage struct {
	db *sql.DB
}

func NewAttachmentStorage(db *sql.DB) *AttachmentStorage {
	return &AttachmentStorage{db: db}
}

func (s *AttachmentStorage) AddAttachment(ctx context.Context, taskID int, ref string) error {
	const check = `SELECT COUNT(*) FROM task_attachments WHERE task_id = ? AND ref = ?`
	var count int
	if err := s.db.QueryRowContext(ctx, check, taskID, ref).Scan(&count); err != nil {
		return fmt.Errorf("could not check attachment: %w", err)
	}
	if count > 0 {
		return model.ErrDuplicateAttachment
	}

	const q = `INSERT INTO task_attachments (task_id, position, ref)
		VALUES (?, (SELECT COALESCE(MAX(position) + 1, 0) FROM task_attachments WHERE task_id = ?), ?)`
	if _, err := s.db.ExecContext(ctx, q, taskID, taskID, ref); err != nil {
		return fmt.Errorf("could not add attachment: %w", err)
	}
	return nil
}

func (s *AttachmentStorage) ListAttachments(ctx context.Context, taskID int) ([]string, error) {
	const q = `SELECT ref FROM task_attachments WHERE task_id = ? ORDER BY position ASC`
	rows, err := s.db.QueryContext(ctx, q, taskID)
	if err != nil {
		return nil, fmt.Errorf("could not list attachments: %w", err)
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("could not scan attachment: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate attachments: %w", err)
	}
	return refs, nil
}

var _ model.AttachmentRepository = (*AttachmentStorage)(nil)
