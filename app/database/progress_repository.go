package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lysyi3m/shelfcard/app/progress"
)

// ProgressRepository keeps the single progress record in SQLite. It
// satisfies progress.Store.
type ProgressRepository struct {
	db *DB
}

func NewProgressRepository(db *DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func (r *ProgressRepository) Load(ctx context.Context) (*progress.Record, error) {
	var (
		percent, current, total int
		source                  string
		updatedAt               int64
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT percent, source, current_page, total_pages, updated_at
		FROM progress_record
		WHERE id = 1
	`).Scan(&percent, &source, &current, &total, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load progress record: %w", err)
	}

	return &progress.Record{
		Percent:   percent,
		Source:    progress.ParseSource(source),
		Current:   current,
		Total:     total,
		UpdatedAt: time.UnixMilli(updatedAt),
	}, nil
}

func (r *ProgressRepository) Save(ctx context.Context, record progress.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO progress_record (id, percent, source, current_page, total_pages, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			percent = excluded.percent,
			source = excluded.source,
			current_page = excluded.current_page,
			total_pages = excluded.total_pages,
			updated_at = excluded.updated_at
	`, record.Percent, string(record.Source), record.Current, record.Total, record.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save progress record: %w", err)
	}

	return nil
}
