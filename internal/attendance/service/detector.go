package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"rollcall/internal/attendance/metrics"
	"rollcall/internal/attendance/models"
	dErrors "rollcall/pkg/domain-errors"
	audit "rollcall/pkg/platform/audit"
	"rollcall/pkg/platform/sentinel"
	"rollcall/pkg/requestcontext"
)

// Detector correlates a rejected submission with the record that already
// holds its origin address and writes a flagged pairing.
type Detector struct {
	records  AttendanceStore
	pairings PairingStore
	auditor  AuditRecorder
	options
}

func NewDetector(records AttendanceStore, pairings PairingStore, auditor AuditRecorder, opts ...Option) *Detector {
	return &Detector{
		records:  records,
		pairings: pairings,
		auditor:  auditor,
		options:  buildOptions(opts),
	}
}

// HandleCollision always rejects. Flagging is best-effort: a missing holder
// or a failed write is audited and logged, never returned.
func (d *Detector) HandleCollision(ctx context.Context, attempted models.Record) models.Outcome {
	ctx, span := d.tracer.Start(ctx, "attendance.HandleCollision")
	defer span.End()

	original, err := d.records.FindByOrigin(ctx, attempted.OriginAddress)
	if errors.Is(err, sentinel.ErrNotFound) {
		// The holder disappeared between the failed insert and this read,
		// which only a concurrent purge can cause.
		d.metrics.IncCollusion(metrics.CollusionUnmatched)
		d.logger.WarnContext(ctx, "origin collision without a holder",
			"user_id", attempted.UserID,
			"origin", attempted.OriginAddress,
		)
		d.auditor.Record(ctx, audit.Entry{
			Name:          audit.EventCollusionOriginUnmatched,
			Detail:        detail(ctx, recordFields(attempted)),
			OriginAddress: attempted.OriginAddress,
		})
		return models.OutcomeRejectedCollision
	}
	if err != nil {
		d.flagFailed(ctx, attempted, "lookup", err)
		return models.OutcomeRejectedCollision
	}

	pairing := models.NewFlaggedPairing(attempted, original, requestcontext.Now(ctx))
	if err := d.pairings.Insert(ctx, pairing); err != nil {
		d.flagFailed(ctx, attempted, "write", err)
		return models.OutcomeRejectedCollision
	}

	span.SetAttributes(
		attribute.String("collusion.attempted_user_id", attempted.UserID),
		attribute.String("collusion.original_user_id", original.UserID),
	)
	d.metrics.IncCollusion(metrics.CollusionFlagged)
	d.logger.InfoContext(ctx, "collusion flagged",
		"t_user_id", attempted.UserID,
		"s_user_id", original.UserID,
		"origin", attempted.OriginAddress,
	)
	d.auditor.Record(ctx, audit.Entry{
		Name:          audit.EventCollusionFlagged,
		Detail:        detail(ctx, pairingFields(pairing)),
		OriginAddress: attempted.OriginAddress,
	})
	return models.OutcomeRejectedCollision
}

func (d *Detector) flagFailed(ctx context.Context, attempted models.Record, stage string, err error) {
	d.metrics.IncCollusion(metrics.CollusionFailed)
	d.logger.ErrorContext(ctx, "failed to flag collusion",
		"stage", stage,
		"user_id", attempted.UserID,
		"origin", attempted.OriginAddress,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	fields := recordFields(attempted)
	fields["stage"] = stage
	fields["error"] = err.Error()
	d.auditor.Record(ctx, audit.Entry{
		Name:          audit.EventCollusionFlagFailed,
		Detail:        detail(ctx, fields),
		OriginAddress: attempted.OriginAddress,
	})
}

// Flags returns flagged pairings newest first.
func (d *Detector) Flags(ctx context.Context) ([]models.FlaggedPairing, error) {
	ctx, span := d.tracer.Start(ctx, "attendance.Flags")
	defer span.End()

	pairings, err := d.pairings.List(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "list failed")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list flagged pairings")
	}
	return pairings, nil
}

func pairingFields(p models.FlaggedPairing) map[string]any {
	return map[string]any{
		"t_name":   p.TName,
		"t_userId": p.TUserID,
		"t_email":  p.TEmail,
		"t_date":   p.TDate,
		"t_time":   p.TTime,
		"t_token":  p.TToken,
		"s_name":   p.SName,
		"s_userId": p.SUserID,
		"s_email":  p.SEmail,
	}
}
