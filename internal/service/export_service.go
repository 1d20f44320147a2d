package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edutec/disponibilidad-api/internal/models"
	appErrors "github.com/edutec/disponibilidad-api/pkg/errors"
	"github.com/edutec/disponibilidad-api/pkg/export"
	"github.com/edutec/disponibilidad-api/pkg/jobs"
)

const exportJobType = "roster_export"

// rosterColumns is the fixed column order of every exported sheet.
var rosterColumns = []string{"Docente", "DNI", "Cursos", "Horario", "Email", "Teléfono", "Creado", "Actualizado"}

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	FindByID(ctx context.Context, id string) (*models.ExportJob, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkFinished(ctx context.Context, id, resultURL string) error
	MarkFailed(ctx context.Context, id, message string) error
}

type rosterSource interface {
	ListAll(ctx context.Context) ([]models.Availability, error)
}

type exportQueue interface {
	Enqueue(job jobs.Job) error
}

type exportStorage interface {
	Save(filename string, data []byte) (string, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type urlSigner interface {
	Generate(jobID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error)
}

type exportMetrics interface {
	RecordExportJob(status string)
}

// ExportService runs the asynchronous roster export pipeline: enqueue,
// render, store, hand out signed download tokens, clean up old files.
type ExportService struct {
	store   exportJobStore
	roster  rosterSource
	queue   exportQueue
	storage exportStorage
	signer  urlSigner
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	metrics exportMetrics
	fileTTL time.Duration
	logger  *zap.Logger
}

// NewExportService builds the service. metrics may be nil in tests.
func NewExportService(store exportJobStore, roster rosterSource, queue exportQueue, storage exportStorage, signer urlSigner, metrics exportMetrics, fileTTL time.Duration, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fileTTL <= 0 {
		fileTTL = 24 * time.Hour
	}
	return &ExportService{
		store:   store,
		roster:  roster,
		queue:   queue,
		storage: storage,
		signer:  signer,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		metrics: metrics,
		fileTTL: fileTTL,
		logger:  logger,
	}
}

// Enqueue records a new export job and pushes it onto the worker queue.
func (s *ExportService) Enqueue(ctx context.Context, format models.ExportFormat, params models.ExportJobParams, createdBy string) (*models.ExportJob, error) {
	switch format {
	case models.ExportFormatCSV, models.ExportFormatPDF:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if _, err := params.Filter(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export filters")
	}

	job := &models.ExportJob{
		ID:        uuid.NewString(),
		Format:    format,
		Params:    params,
		Status:    models.ExportStatusQueued,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: exportJobType, Payload: job.ID}); err != nil {
		if markErr := s.store.MarkFailed(ctx, job.ID, "queue unavailable"); markErr != nil {
			s.logger.Error("failed to mark unqueued export job", zap.String("job_id", job.ID), zap.Error(markErr))
		}
		s.recordJob(models.ExportStatusFailed)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}

	return job, nil
}

// Status returns the stored job metadata.
func (s *ExportService) Status(ctx context.Context, id string) (*models.ExportJob, error) {
	job, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	return job, nil
}

// HandleJob is the queue handler. A returned error triggers the queue's
// retry policy; terminal failures are recorded on the job row.
func (s *ExportService) HandleJob(ctx context.Context, job jobs.Job) error {
	jobID, ok := job.Payload.(string)
	if !ok || jobID == "" {
		s.logger.Error("export job with malformed payload dropped", zap.String("job_id", job.ID))
		return nil
	}
	if err := s.generate(ctx, jobID); err != nil {
		if markErr := s.store.MarkFailed(ctx, jobID, err.Error()); markErr != nil {
			s.logger.Error("failed to mark export job failed", zap.String("job_id", jobID), zap.Error(markErr))
		}
		s.recordJob(models.ExportStatusFailed)
		return err
	}
	return nil
}

func (s *ExportService) recordJob(status models.ExportStatus) {
	if s.metrics != nil {
		s.metrics.RecordExportJob(string(status))
	}
}

func (s *ExportService) generate(ctx context.Context, jobID string) error {
	job, err := s.store.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load export job %s: %w", jobID, err)
	}
	if err := s.store.MarkProcessing(ctx, job.ID); err != nil {
		return err
	}

	records, err := s.roster.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	filter, err := job.Params.Filter()
	if err != nil {
		return fmt.Errorf("decode export filters: %w", err)
	}
	dataset := Project(records, filter)

	var payload []byte
	switch job.Format {
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Disponibilidad de docentes")
	default:
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		return fmt.Errorf("render export: %w", err)
	}

	filename := fmt.Sprintf("%s/roster-%s.%s", time.Now().UTC().Format("2006-01-02"), job.ID, job.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return fmt.Errorf("store export file: %w", err)
	}

	token, _, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return fmt.Errorf("sign download url: %w", err)
	}
	if err := s.store.MarkFinished(ctx, job.ID, "/api/v1/export/"+token); err != nil {
		return err
	}
	s.recordJob(models.ExportStatusFinished)

	s.logger.Info("export job finished",
		zap.String("job_id", job.ID),
		zap.String("format", string(job.Format)),
		zap.Int("rows", len(dataset.Rows)))
	return nil
}

// ResolveDownload validates a signed token and returns the file path to
// stream back, together with a friendly download name.
func (s *ExportService) ResolveDownload(ctx context.Context, token string) (relPath, downloadName string, err error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download token")
	}

	job, err := s.store.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	if job.Status != models.ExportStatusFinished {
		return "", "", appErrors.Clone(appErrors.ErrConflict, "export is not ready yet")
	}

	downloadName = fmt.Sprintf("disponibilidad-docentes.%s", job.Format)
	return relPath, downloadName, nil
}

// Cleanup removes export files older than the configured retention.
func (s *ExportService) Cleanup() {
	removed, err := s.storage.CleanupOlderThan(s.fileTTL)
	if err != nil {
		s.logger.Error("export cleanup failed", zap.Error(err))
		return
	}
	if len(removed) > 0 {
		s.logger.Info("export cleanup removed stale files", zap.Int("count", len(removed)))
	}
}

// Project applies the roster filters in memory and lays the surviving
// records out in the fixed export column order. It never mutates its
// input.
func Project(records []models.Availability, filter models.AvailabilityFilter) export.Dataset {
	rows := make([]map[string]string, 0, len(records))
	for _, record := range records {
		if !matchesFilter(record, filter) {
			continue
		}
		rows = append(rows, map[string]string{
			"Docente":     orNA(record.Nombre),
			"DNI":         orNA(record.DNI),
			"Cursos":      orNA(coursesLabel(record)),
			"Horario":     orNA(record.Horario),
			"Email":       orNA(record.Email),
			"Teléfono":    orNA(record.Telefono),
			"Creado":      record.Creado.UTC().Format("2006-01-02 15:04"),
			"Actualizado": record.Actualizado.UTC().Format("2006-01-02 15:04"),
		})
	}
	headers := make([]string, len(rosterColumns))
	copy(headers, rosterColumns)
	return export.Dataset{Headers: headers, Rows: rows}
}

// matchesFilter requires every active filter to hold at once.
func matchesFilter(record models.Availability, filter models.AvailabilityFilter) bool {
	if filter.Curso != "" {
		found := false
		for _, curso := range record.Cursos {
			if strings.EqualFold(curso, filter.Curso) {
				found = true
				break
			}
		}
		if !found && !strings.Contains(strings.ToLower(record.CursosTexto), strings.ToLower(filter.Curso)) {
			return false
		}
	}
	if filter.Dia != "" && !strings.Contains(strings.ToLower(record.Horario), strings.ToLower(filter.Dia)) {
		return false
	}
	if filter.Hora != "" && !strings.Contains(record.Horario, filter.Hora) {
		return false
	}
	if filter.Desde != nil {
		if record.Creado.UTC().Truncate(24 * time.Hour).Before(filter.Desde.Truncate(24 * time.Hour)) {
			return false
		}
	}
	if filter.Hasta != nil {
		if record.Creado.UTC().Truncate(24 * time.Hour).After(filter.Hasta.Truncate(24 * time.Hour)) {
			return false
		}
	}
	return true
}

func coursesLabel(record models.Availability) string {
	if len(record.Cursos) > 0 {
		return strings.Join(record.Cursos, ", ")
	}
	return record.CursosTexto
}

func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return "N/A"
	}
	return value
}
