// Package httptransport assembles the HTTP surface. Handlers own their
// routes; this package only orders middleware and mounts them.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"rollcall/internal/platform/metrics"
	"rollcall/internal/platform/tracing"
	"rollcall/pkg/platform/httputil"
	"rollcall/pkg/platform/middleware/admin"
	"rollcall/pkg/platform/middleware/metadata"
	"rollcall/pkg/platform/middleware/request"
	"rollcall/pkg/platform/middleware/requesttime"
)

// RouteRegistrar mounts a handler's routes.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// AdminRouteRegistrar mounts routes that sit behind the admin guard.
type AdminRouteRegistrar interface {
	RegisterAdmin(r chi.Router)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Deps are the pieces the router mounts. A nil AdminValidator leaves the
// admin routes unguarded.
type Deps struct {
	Logger             *slog.Logger
	Metrics            *metrics.Metrics
	CORSAllowedOrigins []string
	AdminValidator     admin.Validator
	Public             []RouteRegistrar
	Admin              []AdminRouteRegistrar
	Health             map[string]HealthCheck
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(tracing.Middleware)
	r.Use(request.Logger(d.Logger))
	r.Use(d.Metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", request.HeaderRequestID},
		ExposedHeaders: []string{request.HeaderRequestID},
		MaxAge:         300,
	}))

	r.Get("/healthz", healthz(d.Health))
	r.Handle("/metrics", d.Metrics.Handler())

	for _, h := range d.Public {
		h.Register(r)
	}

	r.Group(func(r chi.Router) {
		if d.AdminValidator != nil {
			r.Use(admin.RequireAdmin(d.AdminValidator, d.Logger))
		}
		for _, h := range d.Admin {
			h.RegisterAdmin(r)
		}
	})

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthz(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
