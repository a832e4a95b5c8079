// Package service holds the attendance write path: the submission registry
// that enforces one record per user per day and one per origin address, and
// the collusion detector that correlates origin collisions.
package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"rollcall/internal/attendance/metrics"
	"rollcall/internal/attendance/models"
	audit "rollcall/pkg/platform/audit"
	"rollcall/pkg/requestcontext"
)

const tracerName = "rollcall/internal/attendance"

// AttendanceStore persists attendance records. Insert reports uniqueness
// violations as *store.ConstraintError.
type AttendanceStore interface {
	Insert(ctx context.Context, rec models.Record) error
	FindByOrigin(ctx context.Context, origin string) (models.Record, error)
	List(ctx context.Context) ([]models.Record, error)
}

// PairingStore persists flagged pairings.
type PairingStore interface {
	Insert(ctx context.Context, p models.FlaggedPairing) error
	List(ctx context.Context) ([]models.FlaggedPairing, error)
}

// AuditRecorder accepts audit entries without reporting failure.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Registry or Detector.
type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	return o
}

// detail builds an audit payload from fields plus the request-scoped
// correlation values that are present.
func detail(ctx context.Context, fields map[string]any) map[string]any {
	if id := requestcontext.RequestID(ctx); id != "" {
		fields["request_id"] = id
	}
	if device := requestcontext.Device(ctx); device != "" {
		fields["device"] = device
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		fields["trace_id"] = sc.TraceID().String()
		fields["span_id"] = sc.SpanID().String()
	}
	return fields
}

func recordFields(rec models.Record) map[string]any {
	return map[string]any{
		"name":   rec.Name,
		"userId": rec.UserID,
		"email":  rec.Email,
		"date":   rec.Date,
		"time":   rec.Time,
		"token":  rec.Token,
	}
}
