package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edutec/disponibilidad-api/internal/models"
)

const availabilityColumns = "id, nombre, dni, email, telefono, cursos, cursos_texto, horario, creado, actualizado"

// AvailabilityRepository manages persistence for docente availability records.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs an AvailabilityRepository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// List returns availability records matching filters along with total count.
func (r *AvailabilityRepository) List(ctx context.Context, filter models.AvailabilityFilter) ([]models.Availability, int, error) {
	base := "FROM disponibilidades WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Curso != "" {
		conditions = append(conditions, fmt.Sprintf("(cursos @> ARRAY[$%d]::text[] OR cursos_texto ILIKE '%%' || $%d || '%%')", len(args)+1, len(args)+1))
		args = append(args, filter.Curso)
	}
	if filter.Dia != "" {
		conditions = append(conditions, fmt.Sprintf("horario ILIKE '%%' || $%d || '%%'", len(args)+1))
		args = append(args, filter.Dia)
	}
	if filter.Hora != "" {
		conditions = append(conditions, fmt.Sprintf("POSITION($%d IN horario) > 0", len(args)+1))
		args = append(args, filter.Hora)
	}
	if filter.Desde != nil {
		conditions = append(conditions, fmt.Sprintf("creado::date >= $%d::date", len(args)+1))
		args = append(args, *filter.Desde)
	}
	if filter.Hasta != nil {
		conditions = append(conditions, fmt.Sprintf("creado::date <= $%d::date", len(args)+1))
		args = append(args, *filter.Hasta)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(nombre) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY creado DESC LIMIT %d OFFSET %d", availabilityColumns, base, size, offset)
	var records []models.Availability
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list disponibilidades: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count disponibilidades: %w", err)
	}

	return records, total, nil
}

// ListAll returns every record ordered by creation time. The export
// projector filters in memory, so no SQL-side filtering is applied here.
func (r *AvailabilityRepository) ListAll(ctx context.Context) ([]models.Availability, error) {
	query := fmt.Sprintf("SELECT %s FROM disponibilidades ORDER BY creado DESC", availabilityColumns)
	var records []models.Availability
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list all disponibilidades: %w", err)
	}
	return records, nil
}

// FindByID fetches a record by ID.
func (r *AvailabilityRepository) FindByID(ctx context.Context, id string) (*models.Availability, error) {
	query := fmt.Sprintf("SELECT %s FROM disponibilidades WHERE id = $1", availabilityColumns)
	var record models.Availability
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByNombre fetches a record by the exact nombre string. No
// normalization: the match is case and whitespace sensitive.
func (r *AvailabilityRepository) FindByNombre(ctx context.Context, nombre string) (*models.Availability, error) {
	query := fmt.Sprintf("SELECT %s FROM disponibilidades WHERE nombre = $1", availabilityColumns)
	var record models.Availability
	if err := r.db.GetContext(ctx, &record, query, nombre); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new availability record.
func (r *AvailabilityRepository) Create(ctx context.Context, record *models.Availability) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.Creado.IsZero() {
		record.Creado = now
	}
	record.Actualizado = now

	const query = `INSERT INTO disponibilidades (id, nombre, dni, email, telefono, cursos, cursos_texto, horario, creado, actualizado)
		VALUES (:id, :nombre, :dni, :email, :telefono, :cursos, :cursos_texto, :horario, :creado, :actualizado)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create disponibilidad: %w", err)
	}
	return nil
}

// Update overwrites courses, availability text and contact data for an
// existing record. Creado is never touched.
func (r *AvailabilityRepository) Update(ctx context.Context, record *models.Availability) error {
	record.Actualizado = time.Now().UTC()
	const query = `UPDATE disponibilidades SET dni = :dni, email = :email, telefono = :telefono, cursos = :cursos, cursos_texto = :cursos_texto, horario = :horario, actualizado = :actualizado WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("update disponibilidad: %w", err)
	}
	return nil
}

// Delete removes a record permanently. There is no soft delete.
func (r *AvailabilityRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM disponibilidades WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete disponibilidad: %w", err)
	}
	return nil
}
