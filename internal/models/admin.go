package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminCredential is one row of the admins collection. Its only semantic
// is presence: a (nombre, dni) pair that exists grants the admin view.
type AdminCredential struct {
	ID     string    `db:"id" json:"id"`
	Nombre string    `db:"nombre" json:"nombre"`
	DNI    string    `db:"dni" json:"dni"`
	Creado time.Time `db:"creado" json:"creado"`
}

// AdminClaims is the short-lived session token minted after a successful
// DNI verification. It carries no authorization data beyond identity; the
// gate decision was already made by the lookup.
type AdminClaims struct {
	Nombre string `json:"nombre"`
	DNI    string `json:"dni"`
	jwt.RegisteredClaims
}
