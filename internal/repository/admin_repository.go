package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// AdminRepository looks up admin credentials. The admins table is the
// shared-secret list: a row existing for a (nombre, dni) pair is the
// whole authorization signal.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository constructs an AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Exists reports whether an admin credential matches the exact nombre
// and dni strings.
func (r *AdminRepository) Exists(ctx context.Context, nombre, dni string) (bool, error) {
	const query = `SELECT 1 FROM admins WHERE nombre = $1 AND dni = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, nombre, dni); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check admin credential: %w", err)
	}
	return true, nil
}
