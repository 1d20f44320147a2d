package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/edutec/disponibilidad-api/internal/models"
	"github.com/edutec/disponibilidad-api/internal/schedule"
	appErrors "github.com/edutec/disponibilidad-api/pkg/errors"
)

type availabilityRepository interface {
	List(ctx context.Context, filter models.AvailabilityFilter) ([]models.Availability, int, error)
	FindByID(ctx context.Context, id string) (*models.Availability, error)
	FindByNombre(ctx context.Context, nombre string) (*models.Availability, error)
	Create(ctx context.Context, record *models.Availability) error
	Update(ctx context.Context, record *models.Availability) error
	Delete(ctx context.Context, id string) error
}

type feedPublisher interface {
	Publish(ctx context.Context, event models.ChangeEvent)
}

type listCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type rosterMetrics interface {
	RecordCacheOperation(hit bool)
}

const (
	listCachePrefix = "disponibilidades:list:"
	listCacheTTL    = 30 * time.Second
)

// BlockSelection is one selected (day, block) pair on the wire.
type BlockSelection struct {
	Dia    string `json:"dia" validate:"required"`
	Bloque string `json:"bloque" validate:"required"`
}

// SaveAvailabilityRequest captures a docente's save payload.
type SaveAvailabilityRequest struct {
	Nombre      string           `json:"nombre" validate:"required"`
	DNI         string           `json:"dni"`
	Email       string           `json:"email" validate:"omitempty,email"`
	Telefono    string           `json:"telefono"`
	Cursos      []string         `json:"cursos"`
	CursosTexto string           `json:"cursos_texto"`
	Bloques     []BlockSelection `json:"bloques" validate:"dive"`
}

// ReconcileAction tells whether a save lands as a new record or an
// in-place update of an existing one.
type ReconcileAction string

const (
	ReconcileCreate ReconcileAction = "CREATE"
	ReconcileUpdate ReconcileAction = "UPDATE"
)

// ReconcileDecision is the outcome of the lookup-before-write step.
type ReconcileDecision struct {
	Action   ReconcileAction
	TargetID string
}

// AvailabilityService implements the save/list/delete flows around the
// disponibilidades collection.
type AvailabilityService struct {
	repo      availabilityRepository
	feed      feedPublisher
	cache     listCache
	metrics   rosterMetrics
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService builds the service. feed, cache and metrics may
// be nil in tests; all three degrade to no-ops.
func NewAvailabilityService(repo availabilityRepository, feed feedPublisher, cache listCache, metrics rosterMetrics, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		repo:      repo,
		feed:      feed,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Save validates the payload, encodes the schedule grid and reconciles
// the result against any record already stored for the exact same
// nombre. Validation failures never reach the store; store failures
// leave nothing half-written (the reconciled write is a single document
// operation).
func (s *AvailabilityService) Save(ctx context.Context, req SaveAvailabilityRequest) (*models.Availability, ReconcileAction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}
	if strings.TrimSpace(req.Nombre) == "" {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "nombre is required")
	}

	grid, err := buildGrid(req.Bloques)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule selection")
	}
	if grid.Count() == 0 {
		return nil, "", appErrors.Clone(appErrors.ErrEmptySchedule, "")
	}

	cursos, err := mergeCourses(req.Cursos, req.CursosTexto)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	decision, existing, err := s.reconcile(ctx, req.Nombre)
	if err != nil {
		return nil, "", err
	}

	horario := schedule.Encode(grid)
	now := time.Now().UTC()

	record := &models.Availability{
		Nombre:      req.Nombre,
		DNI:         req.DNI,
		Email:       req.Email,
		Telefono:    req.Telefono,
		Cursos:      pq.StringArray(cursos),
		CursosTexto: req.CursosTexto,
		Horario:     horario,
	}

	switch decision.Action {
	case ReconcileUpdate:
		record.ID = decision.TargetID
		record.Creado = existing.Creado
		if err := s.repo.Update(ctx, record); err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update availability")
		}
		s.afterWrite(ctx, models.ChangeUpdated, record)
	default:
		record.Creado = now
		if err := s.repo.Create(ctx, record); err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create availability")
		}
		s.afterWrite(ctx, models.ChangeCreated, record)
	}

	return record, decision.Action, nil
}

// reconcile looks up the exact nombre and decides create-or-update.
// Lookup-then-write is not atomic against concurrent writers; two
// simultaneous first saves for the same nombre can both decide CREATE.
// Last write wins at the store layer and the duplicate is accepted.
func (s *AvailabilityService) reconcile(ctx context.Context, nombre string) (ReconcileDecision, *models.Availability, error) {
	existing, err := s.repo.FindByNombre(ctx, nombre)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ReconcileDecision{Action: ReconcileCreate}, nil, nil
		}
		return ReconcileDecision{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up availability")
	}
	return ReconcileDecision{Action: ReconcileUpdate, TargetID: existing.ID}, existing, nil
}

// List returns the admin roster view with filters and pagination,
// consulting the cache first.
func (s *AvailabilityService) List(ctx context.Context, filter models.AvailabilityFilter) ([]models.Availability, *models.Pagination, error) {
	type cached struct {
		Records    []models.Availability `json:"records"`
		Pagination models.Pagination     `json:"pagination"`
	}

	key := listCacheKey(filter)
	if s.cache != nil {
		var hit cached
		if err := s.cache.Get(ctx, key, &hit); err == nil {
			s.recordCache(true)
			return hit.Records, &hit.Pagination, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("roster cache read failed", zap.Error(err))
		}
		s.recordCache(false)
	}

	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availabilities")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, cached{Records: records, Pagination: *pagination}, listCacheTTL); err != nil {
			s.logger.Warn("roster cache write failed", zap.Error(err))
		}
	}

	return records, pagination, nil
}

// Get fetches one record by id.
func (s *AvailabilityService) Get(ctx context.Context, id string) (*models.Availability, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "availability not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	return record, nil
}

// Delete permanently removes a record. The confirmation flag must be
// set by the caller; without it no store call is made.
func (s *AvailabilityService) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return appErrors.Clone(appErrors.ErrConfirmationMissing, "")
	}

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "availability not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete availability")
	}

	s.afterWrite(ctx, models.ChangeDeleted, record)
	return nil
}

func (s *AvailabilityService) recordCache(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit)
	}
}

func (s *AvailabilityService) afterWrite(ctx context.Context, action models.ChangeAction, record *models.Availability) {
	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, listCachePrefix+"*"); err != nil {
			s.logger.Warn("roster cache invalidation failed", zap.Error(err))
		}
	}
	if s.feed != nil {
		s.feed.Publish(ctx, models.ChangeEvent{
			Accion: action,
			ID:     record.ID,
			Nombre: record.Nombre,
			At:     time.Now().UTC(),
		})
	}
}

// buildGrid parses wire selections into a grid. Duplicated cells are a
// payload error rather than a pair of cancelling toggles.
func buildGrid(selections []BlockSelection) (*schedule.Grid, error) {
	grid := schedule.NewGrid()
	for _, sel := range selections {
		day, err := schedule.ParseDay(sel.Dia)
		if err != nil {
			return nil, err
		}
		block, err := schedule.ParseBlock(sel.Bloque)
		if err != nil {
			return nil, err
		}
		if grid.IsSelected(day, block) {
			return nil, fmt.Errorf("duplicate selection %s %s", sel.Dia, sel.Bloque)
		}
		if err := grid.Toggle(day, block); err != nil {
			return nil, err
		}
	}
	return grid, nil
}

// mergeCourses validates structured catalog values and folds in whatever
// the legacy free-text field still carries.
func mergeCourses(structured []string, legacy string) ([]string, error) {
	seen := make(map[string]struct{}, len(structured))
	out := make([]string, 0, len(structured))
	for _, curso := range structured {
		if !models.ValidCourse(curso) {
			return nil, fmt.Errorf("curso %q is not in the catalog", curso)
		}
		if _, dup := seen[curso]; dup {
			continue
		}
		seen[curso] = struct{}{}
		out = append(out, curso)
	}
	for _, curso := range models.NormalizeCourses(legacy) {
		if _, dup := seen[curso]; dup {
			continue
		}
		seen[curso] = struct{}{}
		out = append(out, curso)
	}
	return out, nil
}

func listCacheKey(filter models.AvailabilityFilter) string {
	desde, hasta := "", ""
	if filter.Desde != nil {
		desde = filter.Desde.Format("2006-01-02")
	}
	if filter.Hasta != nil {
		hasta = filter.Hasta.Format("2006-01-02")
	}
	return fmt.Sprintf("%s%s|%s|%s|%s|%s|%s|%d|%d",
		listCachePrefix, filter.Curso, filter.Dia, filter.Hora, desde, hasta, filter.Search, filter.Page, filter.PageSize)
}
