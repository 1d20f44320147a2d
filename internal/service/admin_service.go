package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/edutec/disponibilidad-api/internal/models"
	appErrors "github.com/edutec/disponibilidad-api/pkg/errors"
)

type adminRepository interface {
	Exists(ctx context.Context, nombre, dni string) (bool, error)
}

// VerifyAdminRequest carries the credentials typed into the admin gate.
type VerifyAdminRequest struct {
	Nombre string `json:"nombre" validate:"required"`
	DNI    string `json:"dni" validate:"required"`
}

// VerifyAdminResponse returns the session token for a recognised admin.
type VerifyAdminResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Nombre    string    `json:"nombre"`
}

// AdminService verifies admin identities and issues short-lived tokens.
type AdminService struct {
	repo      adminRepository
	secret    []byte
	tokenTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAdminService builds the service.
func NewAdminService(repo adminRepository, secret string, tokenTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *AdminService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if tokenTTL <= 0 {
		tokenTTL = 4 * time.Hour
	}
	return &AdminService{
		repo:      repo,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		validator: validate,
		logger:    logger,
	}
}

// Verify checks the (nombre, dni) pair against the registered admins.
// Both values must match exactly; on success a signed token scoped to
// the admin endpoints is returned.
func (s *AdminService) Verify(ctx context.Context, req VerifyAdminRequest) (*VerifyAdminResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "nombre and dni are required")
	}

	ok, err := s.repo.Exists(ctx, req.Nombre, req.DNI)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify admin")
	}
	if !ok {
		s.logger.Info("admin verification rejected", zap.String("nombre", req.Nombre))
		return nil, appErrors.Clone(appErrors.ErrAdminNotRecognized, "")
	}

	now := time.Now().UTC()
	expires := now.Add(s.tokenTTL)
	claims := models.AdminClaims{
		Nombre: req.Nombre,
		DNI:    req.DNI,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   req.Nombre,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign admin token")
	}

	return &VerifyAdminResponse{Token: token, ExpiresAt: expires, Nombre: req.Nombre}, nil
}

// ValidateToken parses and verifies an admin token.
func (s *AdminService) ValidateToken(tokenString string) (*models.AdminClaims, error) {
	claims := &models.AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired admin token")
	}
	return claims, nil
}
