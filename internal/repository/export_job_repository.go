package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edutec/disponibilidad-api/internal/models"
)

// ExportJobRepository persists asynchronous export job metadata.
type ExportJobRepository struct {
	db *sqlx.DB
}

// NewExportJobRepository constructs the repository.
func NewExportJobRepository(db *sqlx.DB) *ExportJobRepository {
	return &ExportJobRepository{db: db}
}

// Create inserts a queued job.
func (r *ExportJobRepository) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if job.Status == "" {
		job.Status = models.ExportStatusQueued
	}

	const query = `INSERT INTO export_jobs (id, format, params, status, result_url, created_by, created_at, finished_at, error_message)
		VALUES (:id, :format, :params, :status, :result_url, :created_by, :created_at, :finished_at, :error_message)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create export job: %w", err)
	}
	return nil
}

// FindByID fetches a job by ID.
func (r *ExportJobRepository) FindByID(ctx context.Context, id string) (*models.ExportJob, error) {
	const query = `SELECT id, format, params, status, result_url, created_by, created_at, finished_at, error_message FROM export_jobs WHERE id = $1`
	var job models.ExportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, err
	}
	return &job, nil
}

// MarkProcessing transitions a job out of the queue.
func (r *ExportJobRepository) MarkProcessing(ctx context.Context, id string) error {
	const query = `UPDATE export_jobs SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ExportStatusProcessing); err != nil {
		return fmt.Errorf("mark export job processing: %w", err)
	}
	return nil
}

// MarkFinished records a successful run and its download URL.
func (r *ExportJobRepository) MarkFinished(ctx context.Context, id, resultURL string) error {
	const query = `UPDATE export_jobs SET status = $2, result_url = $3, finished_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ExportStatusFinished, resultURL, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark export job finished: %w", err)
	}
	return nil
}

// MarkFailed records the terminal error message.
func (r *ExportJobRepository) MarkFailed(ctx context.Context, id, message string) error {
	const query = `UPDATE export_jobs SET status = $2, error_message = $3, finished_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ExportStatusFailed, message, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark export job failed: %w", err)
	}
	return nil
}
