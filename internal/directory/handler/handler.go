package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rollcall/internal/directory/models"
	dErrors "rollcall/pkg/domain-errors"
	"rollcall/pkg/platform/httputil"
	"rollcall/pkg/requestcontext"
)

// Service resolves students by user ID.
type Service interface {
	Lookup(ctx context.Context, rawUserID string) (models.Student, error)
}

type Handler struct {
	logger    *slog.Logger
	directory Service
}

func New(directory Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, directory: directory}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/getStudent/{userId}", h.HandleGetStudent)
}

func (h *Handler) HandleGetStudent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	student, err := h.directory.Lookup(ctx, chi.URLParam(r, "userId"))
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		httputil.WriteJSON(w, http.StatusNotFound, models.NotFoundResponse{Message: models.MessageStudentNotFound})
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to look up student",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, student)
}
