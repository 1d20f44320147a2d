package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edutec/disponibilidad-api/internal/models"
	appErrors "github.com/edutec/disponibilidad-api/pkg/errors"
)

type availabilityRepoMock struct {
	byNombre map[string]*models.Availability
	created  []*models.Availability
	updated  []*models.Availability
	deleted  []string
	listErr  error
	records  []models.Availability
	total    int
}

func (m *availabilityRepoMock) List(ctx context.Context, filter models.AvailabilityFilter) ([]models.Availability, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.records, m.total, nil
}

func (m *availabilityRepoMock) FindByID(ctx context.Context, id string) (*models.Availability, error) {
	for _, record := range m.byNombre {
		if record.ID == id {
			cp := *record
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *availabilityRepoMock) FindByNombre(ctx context.Context, nombre string) (*models.Availability, error) {
	record, ok := m.byNombre[nombre]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *record
	return &cp, nil
}

func (m *availabilityRepoMock) Create(ctx context.Context, record *models.Availability) error {
	if record.ID == "" {
		record.ID = "generated-" + record.Nombre
	}
	record.Actualizado = time.Now().UTC()
	cp := *record
	m.created = append(m.created, &cp)
	if m.byNombre == nil {
		m.byNombre = map[string]*models.Availability{}
	}
	m.byNombre[record.Nombre] = &cp
	return nil
}

func (m *availabilityRepoMock) Update(ctx context.Context, record *models.Availability) error {
	record.Actualizado = time.Now().UTC()
	cp := *record
	m.updated = append(m.updated, &cp)
	if m.byNombre == nil {
		m.byNombre = map[string]*models.Availability{}
	}
	m.byNombre[record.Nombre] = &cp
	return nil
}

func (m *availabilityRepoMock) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type feedMock struct {
	events []models.ChangeEvent
}

func (m *feedMock) Publish(ctx context.Context, event models.ChangeEvent) {
	m.events = append(m.events, event)
}

type cacheMock struct {
	stored        map[string][]byte
	invalidations []string
}

func (m *cacheMock) Get(ctx context.Context, key string, dest interface{}) error {
	payload, ok := m.stored[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (m *cacheMock) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.stored == nil {
		m.stored = map[string][]byte{}
	}
	m.stored[key] = payload
	return nil
}

func (m *cacheMock) DeleteByPattern(ctx context.Context, pattern string) error {
	m.invalidations = append(m.invalidations, pattern)
	m.stored = nil
	return nil
}

type rosterMetricsMock struct {
	hits   int
	misses int
}

func (m *rosterMetricsMock) RecordCacheOperation(hit bool) {
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func validSaveRequest() SaveAvailabilityRequest {
	return SaveAvailabilityRequest{
		Nombre: "Luis Rey",
		DNI:    "12345678",
		Cursos: []string{"MATEMATICA"},
		Bloques: []BlockSelection{
			{Dia: "Martes", Bloque: "10:00 - 12:00"},
			{Dia: "Viernes", Bloque: "16:00 - 18:00"},
		},
	}
}

func TestAvailabilityServiceSaveCreatesWhenNombreUnknown(t *testing.T) {
	repo := &availabilityRepoMock{}
	feed := &feedMock{}
	svc := NewAvailabilityService(repo, feed, nil, nil, validator.New(), zap.NewNop())

	record, action, err := svc.Save(context.Background(), validSaveRequest())
	require.NoError(t, err)
	assert.Equal(t, ReconcileCreate, action)
	assert.Equal(t, "Martes: 10:00 - 12:00 | Viernes: 16:00 - 18:00", record.Horario)
	require.Len(t, repo.created, 1)
	assert.Empty(t, repo.updated)
	require.Len(t, feed.events, 1)
	assert.Equal(t, models.ChangeCreated, feed.events[0].Accion)
}

func TestAvailabilityServiceSaveUpdatesExistingNombre(t *testing.T) {
	creado := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	repo := &availabilityRepoMock{
		byNombre: map[string]*models.Availability{
			"Luis Rey": {ID: "rec-1", Nombre: "Luis Rey", Horario: "Lunes: 06:00 - 08:00", Creado: creado},
		},
	}
	feed := &feedMock{}
	svc := NewAvailabilityService(repo, feed, nil, nil, validator.New(), zap.NewNop())

	record, action, err := svc.Save(context.Background(), validSaveRequest())
	require.NoError(t, err)
	assert.Equal(t, ReconcileUpdate, action)
	assert.Equal(t, "rec-1", record.ID)
	assert.Equal(t, creado, record.Creado)
	assert.Equal(t, "Martes: 10:00 - 12:00 | Viernes: 16:00 - 18:00", record.Horario)
	require.Len(t, repo.updated, 1)
	assert.Empty(t, repo.created)
	require.Len(t, feed.events, 1)
	assert.Equal(t, models.ChangeUpdated, feed.events[0].Accion)
}

func TestAvailabilityServiceSaveIsIdempotentPerNombre(t *testing.T) {
	repo := &availabilityRepoMock{}
	svc := NewAvailabilityService(repo, nil, nil, nil, validator.New(), zap.NewNop())

	first, _, err := svc.Save(context.Background(), validSaveRequest())
	require.NoError(t, err)
	second, action, err := svc.Save(context.Background(), validSaveRequest())
	require.NoError(t, err)

	assert.Equal(t, ReconcileUpdate, action)
	assert.Equal(t, first.ID, second.ID)
	require.Len(t, repo.created, 1)
	require.Len(t, repo.updated, 1)
}

func TestAvailabilityServiceSaveNombreMatchIsExact(t *testing.T) {
	repo := &availabilityRepoMock{
		byNombre: map[string]*models.Availability{
			"Luis Rey": {ID: "rec-1", Nombre: "Luis Rey"},
		},
	}
	svc := NewAvailabilityService(repo, nil, nil, nil, validator.New(), zap.NewNop())

	req := validSaveRequest()
	req.Nombre = "luis rey"
	_, action, err := svc.Save(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, ReconcileCreate, action)

	req.Nombre = " Luis Rey "
	_, action, err = svc.Save(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, ReconcileCreate, action)
}

func TestAvailabilityServiceSaveRejectsEmptySchedule(t *testing.T) {
	repo := &availabilityRepoMock{}
	svc := NewAvailabilityService(repo, nil, nil, nil, validator.New(), zap.NewNop())

	req := validSaveRequest()
	req.Bloques = []BlockSelection{}
	_, _, err := svc.Save(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmptySchedule.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
	assert.Empty(t, repo.updated)

	req.Bloques = nil
	_, _, err = svc.Save(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmptySchedule.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityServiceSaveRejectsUnknownDayOrBlock(t *testing.T) {
	svc := NewAvailabilityService(&availabilityRepoMock{}, nil, nil, nil, validator.New(), zap.NewNop())

	req := validSaveRequest()
	req.Bloques = []BlockSelection{{Dia: "Funday", Bloque: "10:00 - 12:00"}}
	_, _, err := svc.Save(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req.Bloques = []BlockSelection{{Dia: "Lunes", Bloque: "23:00 - 01:00"}}
	_, _, err = svc.Save(context.Background(), req)
	require.Error(t, err)
}

func TestAvailabilityServiceSaveRejectsUnknownCourse(t *testing.T) {
	svc := NewAvailabilityService(&availabilityRepoMock{}, nil, nil, nil, validator.New(), zap.NewNop())

	req := validSaveRequest()
	req.Cursos = []string{"ALQUIMIA"}
	_, _, err := svc.Save(context.Background(), req)
	require.Error(t, err)
}

func TestAvailabilityServiceSaveMergesLegacyCourseText(t *testing.T) {
	repo := &availabilityRepoMock{}
	svc := NewAvailabilityService(repo, nil, nil, nil, validator.New(), zap.NewNop())

	req := validSaveRequest()
	req.Cursos = []string{"MATEMATICA"}
	req.CursosTexto = "matematica, robotica; ajedrez"
	record, _, err := svc.Save(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"MATEMATICA", "ROBOTICA", "AJEDREZ"}, []string(record.Cursos))
}

func TestAvailabilityServiceSaveInvalidatesRosterCache(t *testing.T) {
	repo := &availabilityRepoMock{}
	cache := &cacheMock{}
	svc := NewAvailabilityService(repo, nil, cache, nil, validator.New(), zap.NewNop())

	_, _, err := svc.Save(context.Background(), validSaveRequest())
	require.NoError(t, err)
	require.Len(t, cache.invalidations, 1)
	assert.Equal(t, listCachePrefix+"*", cache.invalidations[0])
}

func TestAvailabilityServiceListCountsCacheHitsAndMisses(t *testing.T) {
	repo := &availabilityRepoMock{
		records: []models.Availability{{ID: "rec-1", Nombre: "Luis Rey"}},
		total:   1,
	}
	cache := &cacheMock{}
	metrics := &rosterMetricsMock{}
	svc := NewAvailabilityService(repo, nil, cache, metrics, validator.New(), zap.NewNop())

	_, _, err := svc.List(context.Background(), models.AvailabilityFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.hits)
	assert.Equal(t, 1, metrics.misses)

	records, pagination, err := svc.List(context.Background(), models.AvailabilityFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
	require.Len(t, records, 1)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestAvailabilityServiceDeleteRequiresConfirmation(t *testing.T) {
	repo := &availabilityRepoMock{
		byNombre: map[string]*models.Availability{
			"Luis Rey": {ID: "rec-1", Nombre: "Luis Rey"},
		},
	}
	feed := &feedMock{}
	svc := NewAvailabilityService(repo, feed, nil, nil, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "rec-1", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConfirmationMissing.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)

	require.NoError(t, svc.Delete(context.Background(), "rec-1", true))
	assert.Equal(t, []string{"rec-1"}, repo.deleted)
	require.Len(t, feed.events, 1)
	assert.Equal(t, models.ChangeDeleted, feed.events[0].Accion)
}

func TestAvailabilityServiceDeleteUnknownID(t *testing.T) {
	svc := NewAvailabilityService(&availabilityRepoMock{}, nil, nil, nil, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "missing", true)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityServiceListWrapsRepoErrors(t *testing.T) {
	repo := &availabilityRepoMock{listErr: errors.New("connection refused")}
	svc := NewAvailabilityService(repo, nil, nil, nil, validator.New(), zap.NewNop())

	_, _, err := svc.List(context.Background(), models.AvailabilityFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
