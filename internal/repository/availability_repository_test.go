package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/edutec/disponibilidad-api/internal/models"
)

func newAvailabilityRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func availabilityRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "nombre", "dni", "email", "telefono", "cursos", "cursos_texto", "horario", "creado", "actualizado"})
}

func TestAvailabilityRepositoryListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newAvailabilityRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	rows := availabilityRows().
		AddRow("rec-1", "Luis Rey", "12345678", "luis@example.com", "", "{MATEMATICA}", "", "Martes: 10:00 - 12:00", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("(cursos @> ARRAY[$1]::text[] OR cursos_texto ILIKE '%' || $1 || '%') AND horario ILIKE '%' || $2 || '%' AND LOWER(nombre) LIKE $3 ORDER BY creado DESC LIMIT 20 OFFSET 0")).
		WithArgs("MATEMATICA", "Martes", "%luis%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM disponibilidades WHERE 1=1")).
		WithArgs("MATEMATICA", "Martes", "%luis%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.List(context.Background(), models.AvailabilityFilter{
		Curso:  "MATEMATICA",
		Dia:    "Martes",
		Search: "Luis",
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, records, 1)
	require.Equal(t, "Luis Rey", records[0].Nombre)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryListClampsPagination(t *testing.T) {
	db, mock, cleanup := newAvailabilityRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY creado DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(availabilityRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.AvailabilityFilter{Page: -3, PageSize: 5000})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryFindByNombreIsExact(t *testing.T) {
	db, mock, cleanup := newAvailabilityRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	rows := availabilityRows().
		AddRow("rec-1", "Luis Rey", "", "", "", "{}", "", "Martes: 10:00 - 12:00", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, nombre, dni, email, telefono, cursos, cursos_texto, horario, creado, actualizado FROM disponibilidades WHERE nombre = $1")).
		WithArgs("Luis Rey").
		WillReturnRows(rows)

	record, err := repo.FindByNombre(context.Background(), "Luis Rey")
	require.NoError(t, err)
	require.Equal(t, "rec-1", record.ID)

	mock.ExpectQuery(regexp.QuoteMeta("FROM disponibilidades WHERE nombre = $1")).
		WithArgs("luis rey").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.FindByNombre(context.Background(), "luis rey")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryCreateGeneratesIDAndTimestamps(t *testing.T) {
	db, mock, cleanup := newAvailabilityRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO disponibilidades")).
		WithArgs(sqlmock.AnyArg(), "Luis Rey", "12345678", "", "", sqlmock.AnyArg(), "", "Martes: 10:00 - 12:00", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.Availability{
		Nombre:  "Luis Rey",
		DNI:     "12345678",
		Cursos:  pq.StringArray{"MATEMATICA"},
		Horario: "Martes: 10:00 - 12:00",
	}
	require.NoError(t, repo.Create(context.Background(), record))
	require.NotEmpty(t, record.ID)
	require.False(t, record.Creado.IsZero())
	require.False(t, record.Actualizado.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryCreatePreservesExistingCreado(t *testing.T) {
	db, mock, cleanup := newAvailabilityRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	creado := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO disponibilidades")).
		WithArgs(sqlmock.AnyArg(), "Ana", "", "", "", sqlmock.AnyArg(), "", "Lunes: 06:00 - 08:00", creado, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.Availability{
		Nombre:  "Ana",
		Horario: "Lunes: 06:00 - 08:00",
		Creado:  creado,
	}
	require.NoError(t, repo.Create(context.Background(), record))
	require.Equal(t, creado, record.Creado)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryUpdateNeverTouchesCreado(t *testing.T) {
	db, mock, cleanup := newAvailabilityRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE disponibilidades SET dni =")).
		WithArgs("12345678", "luis@example.com", "", sqlmock.AnyArg(), "", "Viernes: 16:00 - 18:00", sqlmock.AnyArg(), "rec-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	record := &models.Availability{
		ID:      "rec-1",
		Nombre:  "Luis Rey",
		DNI:     "12345678",
		Email:   "luis@example.com",
		Cursos:  pq.StringArray{"MATEMATICA"},
		Horario: "Viernes: 16:00 - 18:00",
	}
	require.NoError(t, repo.Update(context.Background(), record))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newAvailabilityRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM disponibilidades WHERE id = $1")).
		WithArgs("rec-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "rec-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
