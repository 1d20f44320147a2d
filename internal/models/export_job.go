package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ExportFormat enumerates supported spreadsheet formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportStatus captures background job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJob persisted background export metadata.
type ExportJob struct {
	ID           string          `db:"id" json:"id"`
	Format       ExportFormat    `db:"format" json:"format"`
	Params       ExportJobParams `db:"params" json:"params"`
	Status       ExportStatus    `db:"status" json:"status"`
	ResultURL    *string         `db:"result_url" json:"result_url,omitempty"`
	CreatedBy    string          `db:"created_by" json:"created_by"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time      `db:"finished_at" json:"finished_at,omitempty"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
}

// ExportJobParams stores the roster filters active when the export was
// requested, persisted as JSONB. Dates are calendar dates (2006-01-02).
type ExportJobParams struct {
	Curso string `json:"curso,omitempty"`
	Dia   string `json:"dia,omitempty"`
	Hora  string `json:"hora,omitempty"`
	Desde string `json:"desde,omitempty"`
	Hasta string `json:"hasta,omitempty"`
}

// Filter converts persisted params into the in-memory filter shape.
func (p ExportJobParams) Filter() (AvailabilityFilter, error) {
	filter := AvailabilityFilter{
		Curso: p.Curso,
		Dia:   p.Dia,
		Hora:  p.Hora,
	}
	if p.Desde != "" {
		t, err := time.Parse("2006-01-02", p.Desde)
		if err != nil {
			return filter, fmt.Errorf("parse desde: %w", err)
		}
		filter.Desde = &t
	}
	if p.Hasta != "" {
		t, err := time.Parse("2006-01-02", p.Hasta)
		if err != nil {
			return filter, fmt.Errorf("parse hasta: %w", err)
		}
		filter.Hasta = &t
	}
	return filter, nil
}

// Value marshals params to JSON for persistence.
func (p ExportJobParams) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal export job params: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the params struct.
func (p *ExportJobParams) Scan(value interface{}) error {
	if value == nil {
		*p = ExportJobParams{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ExportJobParams", value)
	}
	if len(data) == 0 {
		*p = ExportJobParams{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal export job params: %w", err)
	}
	return nil
}
