package models

import (
	"time"

	"github.com/lib/pq"
)

// Availability is one docente's registered weekly availability. Nombre is
// the natural key: the reconciler matches it exactly, case and whitespace
// included, so "Ana Gomez" and " ana gomez " are different records.
type Availability struct {
	ID          string         `db:"id" json:"id"`
	Nombre      string         `db:"nombre" json:"nombre"`
	DNI         string         `db:"dni" json:"dni"`
	Email       string         `db:"email" json:"email"`
	Telefono    string         `db:"telefono" json:"telefono"`
	Cursos      pq.StringArray `db:"cursos" json:"cursos"`
	CursosTexto string         `db:"cursos_texto" json:"cursos_texto,omitempty"`
	Horario     string         `db:"horario" json:"horario"`
	Creado      time.Time      `db:"creado" json:"creado"`
	Actualizado time.Time      `db:"actualizado" json:"actualizado"`
}

// AvailabilityFilter captures the admin list/export filters. Empty values
// contribute no constraint; active filters combine with AND semantics.
type AvailabilityFilter struct {
	Curso  string
	Dia    string
	Hora   string
	Desde  *time.Time
	Hasta  *time.Time
	Search string

	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// ChangeAction labels roster feed events.
type ChangeAction string

const (
	ChangeCreated ChangeAction = "creado"
	ChangeUpdated ChangeAction = "actualizado"
	ChangeDeleted ChangeAction = "eliminado"
)

// ChangeEvent is one roster mutation streamed over the live feed.
type ChangeEvent struct {
	Accion ChangeAction `json:"accion"`
	ID     string       `json:"id"`
	Nombre string       `json:"nombre"`
	At     time.Time    `json:"at"`
}
