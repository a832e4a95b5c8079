package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rollcall/internal/attendance/models"
	"rollcall/internal/attendance/store"
	dErrors "rollcall/pkg/domain-errors"
	audit "rollcall/pkg/platform/audit"
	"rollcall/pkg/requestcontext"
)

// CollisionHandler decides the outcome of a submission whose origin address
// is already held by another record.
type CollisionHandler interface {
	HandleCollision(ctx context.Context, attempted models.Record) models.Outcome
}

// Registry accepts attendance submissions. The accept-or-reject decision is
// made by the store's single constraint-checked insert, never by a prior read.
type Registry struct {
	records  AttendanceStore
	detector CollisionHandler
	auditor  AuditRecorder
	options
}

func NewRegistry(records AttendanceStore, detector CollisionHandler, auditor AuditRecorder, opts ...Option) *Registry {
	return &Registry{
		records:  records,
		detector: detector,
		auditor:  auditor,
		options:  buildOptions(opts),
	}
}

// Submit records rec. When rec carries no origin address the request's client
// address is used. Every branch emits one audit event; a non-constraint store
// failure returns a CodeInternal error and no outcome.
func (r *Registry) Submit(ctx context.Context, rec models.Record) (models.Outcome, error) {
	start := time.Now()
	defer func() { r.metrics.ObserveSubmitLatency(time.Since(start)) }()

	if rec.OriginAddress == "" {
		rec.OriginAddress = requestcontext.ClientIP(ctx)
	}

	ctx, span := r.tracer.Start(ctx, "attendance.Submit", trace.WithAttributes(
		attribute.String("attendance.user_id", rec.UserID),
		attribute.String("attendance.date", rec.Date),
	))
	defer span.End()

	err := r.records.Insert(ctx, rec)
	if err == nil {
		r.auditor.Record(ctx, audit.Entry{
			Name:          audit.EventAttendanceSubmitted,
			Detail:        detail(ctx, recordFields(rec)),
			OriginAddress: rec.OriginAddress,
		})
		return r.finish(span, models.OutcomeAccepted), nil
	}

	constraint, ok := store.ViolatedConstraint(err)
	switch {
	case ok && constraint == store.ConstraintUserDate:
		r.auditor.Record(ctx, audit.Entry{
			Name:          audit.EventAttendanceDuplicate,
			Detail:        detail(ctx, recordFields(rec)),
			OriginAddress: rec.OriginAddress,
		})
		return r.finish(span, models.OutcomeAlreadySubmittedToday), nil

	case ok && constraint == store.ConstraintOrigin:
		return r.finish(span, r.detector.HandleCollision(ctx, rec)), nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "storage failure")
	r.metrics.IncOutcome("storage_failure")
	r.logger.ErrorContext(ctx, "attendance insert failed",
		"user_id", rec.UserID,
		"date", rec.Date,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	fields := recordFields(rec)
	fields["error"] = err.Error()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		fields["cancelled"] = true
	}
	r.auditor.Record(ctx, audit.Entry{
		Name:          audit.EventAttendanceFailed,
		Detail:        detail(ctx, fields),
		OriginAddress: rec.OriginAddress,
	})
	return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record attendance")
}

func (r *Registry) finish(span trace.Span, outcome models.Outcome) models.Outcome {
	span.SetAttributes(attribute.String("attendance.outcome", outcome.String()))
	r.metrics.IncOutcome(outcome.String())
	r.logger.Debug("attendance submission decided", slog.String("outcome", outcome.String()))
	return outcome
}

// List returns every stored record for administrative review.
func (r *Registry) List(ctx context.Context) ([]models.Record, error) {
	records, err := r.records.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list attendance")
	}
	return records, nil
}
