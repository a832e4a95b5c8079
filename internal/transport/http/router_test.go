package httptransport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/platform/logger"
	"rollcall/internal/platform/metrics"
	"rollcall/pkg/platform/middleware/request"
	"rollcall/pkg/requestcontext"
)

type stubRoutes struct{}

func (stubRoutes) Register(r chi.Router) {
	r.Get("/echo-origin", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(requestcontext.ClientIP(r.Context())))
	})
}

func (stubRoutes) RegisterAdmin(r chi.Router) {
	r.Get("/admin/whoami", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(requestcontext.AdminSubject(r.Context())))
	})
}

type stubValidator struct{}

func (stubValidator) ValidateAdminToken(token string) (string, error) {
	if token != "good" {
		return "", errors.New("bad token")
	}
	return "ops", nil
}

func newTestRouter(validator *stubValidator, health map[string]HealthCheck) http.Handler {
	d := Deps{
		Logger:             logger.Discard(),
		Metrics:            metrics.New(),
		CORSAllowedOrigins: []string{"*"},
		Public:             []RouteRegistrar{stubRoutes{}},
		Admin:              []AdminRouteRegistrar{stubRoutes{}},
		Health:             health,
	}
	if validator != nil {
		d.AdminValidator = validator
	}
	return NewRouter(d)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouterResolvesOriginAndRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/echo-origin", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.5, 172.16.0.1")
	rr := serve(newTestRouter(nil, nil), req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "10.0.0.5", rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(request.HeaderRequestID))
}

func TestRouterAdminGuard(t *testing.T) {
	h := newTestRouter(&stubValidator{}, nil)

	rr := serve(h, httptest.NewRequest(http.MethodGet, "/admin/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/whoami", nil)
	req.Header.Set("Authorization", "Bearer good")
	rr = serve(h, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ops", rr.Body.String())

	rr = serve(h, httptest.NewRequest(http.MethodGet, "/echo-origin", nil))
	assert.Equal(t, http.StatusOK, rr.Code, "public routes stay open")
}

func TestRouterAdminUnguardedWithoutValidator(t *testing.T) {
	rr := serve(newTestRouter(nil, nil), httptest.NewRequest(http.MethodGet, "/admin/whoami", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHealthzReportsDegradedDependency(t *testing.T) {
	h := newTestRouter(nil, map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})

	rr := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"database":"ok","redis":"connection refused"}}`, rr.Body.String())
}

func TestMetricsEndpointServesRegistry(t *testing.T) {
	h := newTestRouter(nil, nil)
	serve(h, httptest.NewRequest(http.MethodGet, "/echo-origin", nil))

	rr := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "rollcall_")
}
