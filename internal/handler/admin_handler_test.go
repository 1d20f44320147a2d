package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edutec/disponibilidad-api/internal/service"
)

type adminRepoStub struct {
	nombre string
	dni    string
}

func (m *adminRepoStub) Exists(ctx context.Context, nombre, dni string) (bool, error) {
	return nombre == m.nombre && dni == m.dni, nil
}

func newAdminHandler() *AdminHandler {
	svc := service.NewAdminService(&adminRepoStub{nombre: "Maria Torres", dni: "87654321"}, "secret", time.Hour, nil, zap.NewNop())
	return NewAdminHandler(svc)
}

func TestAdminHandlerVerifyIssuesToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAdminHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := []byte(`{"nombre":"Maria Torres","dni":"87654321"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/admin/verificar", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Verify(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data service.VerifyAdminResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.Token)
}

func TestAdminHandlerVerifyRejectsUnknownPair(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAdminHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := []byte(`{"nombre":"Maria Torres","dni":"11111111"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/admin/verificar", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Verify(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminHandlerVerifyRejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAdminHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/admin/verificar", bytes.NewReader([]byte(`{`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Verify(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
