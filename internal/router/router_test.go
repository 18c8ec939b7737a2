package router

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	authhandler "github.com/jwalitptl/hms-api/internal/handler/auth"
	"github.com/jwalitptl/hms-api/internal/handler/health"
	labhandler "github.com/jwalitptl/hms-api/internal/handler/labreport"
	promhandler "github.com/jwalitptl/hms-api/internal/handler/prometheus"
	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/service/audit"
	"github.com/jwalitptl/hms-api/internal/service/auth"
	"github.com/jwalitptl/hms-api/internal/service/labreport"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/metrics"
)

type stubAuth struct {
	auth.AuthService
}

func (stubAuth) Authenticate(context.Context, string) (*model.Principal, error) {
	return nil, apperrors.Unauthenticated("invalid token", nil)
}

func (stubAuth) Login(context.Context, *model.LoginRequest) (*model.LoginResponse, error) {
	return nil, apperrors.InvalidCredential("invalid email or password")
}

type stubLabReports struct {
	labreport.LabReportService
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func newTestRouter(t *testing.T, db health.Pinger) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	r := NewRouter(
		RouterConfig{CORSOrigins: []string{"http://localhost:5173"}, MaxUploadBytes: 12 << 20},
		middleware.NewAuthMiddleware(stubAuth{}),
		audit.NewLoggerWith(zap.NewNop()),
		metrics.NewMetrics("hms_test", reg),
		authhandler.NewHandler(stubAuth{}),
		health.NewHandler(db),
		promhandler.New(reg),
		labhandler.NewHandler(stubLabReports{}),
	)
	r.Setup()
	return r.Engine()
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t, pinger{})
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/health/live", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/health/ready", nil)).Code)

	down := newTestRouter(t, pinger{err: errors.New("dial tcp: connection refused")})
	w := serve(down, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"DOWN"`)
}

func TestRouter_Metrics(t *testing.T) {
	r := newTestRouter(t, pinger{})
	serve(r, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `hms_test_http_requests_total{method="GET",route="/health/live",status="200"} 1`)
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t, pinger{})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/lab-reports", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"Unauthenticated"`)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))
}

func TestRouter_PublicLogin(t *testing.T) {
	r := newTestRouter(t, pinger{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"nobody@hospital.test","password":"wrong-password"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"InvalidCredential"`)
}

func TestRouter_OversizedUploadRejected(t *testing.T) {
	r := newTestRouter(t, pinger{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/lab-reports/6f1c2a8e-3b7d-4d7a-9a55-2f0a4a1f7e10/upload",
		bytes.NewReader(make([]byte, 15<<20)))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	w := serve(r, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"PayloadTooLarge"`)
}

func TestRouter_UnknownRoute(t *testing.T) {
	r := newTestRouter(t, pinger{})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/wards", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"NotFound"`)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newTestRouter(t, pinger{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/lab-reports", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := serve(r, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
