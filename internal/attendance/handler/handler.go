package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rollcall/internal/attendance/models"
	"rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
	"rollcall/pkg/platform/httputil"
	"rollcall/pkg/requestcontext"
)

// Service is the submission registry.
type Service interface {
	Submit(ctx context.Context, rec models.Record) (models.Outcome, error)
	List(ctx context.Context) ([]models.Record, error)
}

// FlagService lists flagged pairings.
type FlagService interface {
	Flags(ctx context.Context) ([]models.FlaggedPairing, error)
}

// Handler serves attendance submission and its admin views.
type Handler struct {
	logger   *slog.Logger
	registry Service
	flags    FlagService
}

func New(registry Service, flags FlagService, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, registry: registry, flags: flags}
}

// Register mounts the public submission route.
func (h *Handler) Register(r chi.Router) {
	r.Post("/submit", h.HandleSubmit)
}

// RegisterAdmin mounts the review routes. Callers guard r.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/flags", h.HandleListFlags)
	r.Get("/admin/attendance", h.HandleListAttendance)
}

// HandleSubmit records one submission. Validation failures never reach the
// registry and leave no audit trace.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var req models.SubmitRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid submit request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	rec := req.Record(requestcontext.ClientIP(ctx))
	if missing := rec.MissingFields(); len(missing) > 0 {
		httputil.WriteError(w, dErrors.Validation(models.MessageMissingFields, missing...))
		return
	}
	userID, err := domain.ParseUserID(rec.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rec.UserID = userID.String()

	outcome, err := h.registry.Submit(ctx, rec)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to submit attendance",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	switch outcome {
	case models.OutcomeAccepted:
		httputil.WriteJSON(w, http.StatusCreated, models.SubmitResponse{Message: models.MessageAccepted, Outcome: outcome.String()})
	case models.OutcomeAlreadySubmittedToday:
		httputil.WriteJSON(w, http.StatusOK, models.SubmitResponse{Message: models.MessageAlreadySubmitted, Outcome: outcome.String()})
	case models.OutcomeRejectedCollision:
		httputil.WriteJSON(w, http.StatusConflict, models.SubmitResponse{Message: models.MessageCollision, Outcome: outcome.String()})
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "unknown submission outcome"))
	}
}

func (h *Handler) HandleListFlags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pairings, err := h.flags.Flags(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list flagged pairings",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	out := make([]models.FlaggedPairingResponse, 0, len(pairings))
	for _, p := range pairings {
		out = append(out, models.NewFlaggedPairingResponse(p))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleListAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	records, err := h.registry.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list attendance",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	out := make([]models.RecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, models.NewRecordResponse(rec))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
