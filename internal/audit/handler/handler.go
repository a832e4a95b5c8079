package handler

import (
	"context"
	"encoding/json"
	"iter"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rollcall/pkg/platform/httputil"
	audit "rollcall/pkg/platform/audit"
	"rollcall/pkg/requestcontext"
)

// flushEvery bounds how many events are buffered before a flush.
const flushEvery = 100

type Service interface {
	LogClientEvent(ctx context.Context, name string, details json.RawMessage)
	Events(ctx context.Context) iter.Seq2[audit.Event, error]
}

type Handler struct {
	logger *slog.Logger
	audit  Service
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, audit: svc}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/logEvent", h.HandleLogEvent)
	r.Get("/getLogs", h.HandleGetLogs)
}

type logEventRequest struct {
	Event   string          `json:"event"`
	Details json.RawMessage `json:"details"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// HandleLogEvent always acknowledges; a malformed body is recorded with
// whatever could be decoded.
func (h *Handler) HandleLogEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req logEventRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "malformed client event",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
	h.audit.LogClientEvent(ctx, req.Event, req.Details)
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: "Event logged successfully"})
}

// HandleGetLogs streams the trail as one JSON array, newest first, without
// holding it in memory. A failure after the first byte truncates the array
// and is only logged.
func (h *Handler) HandleGetLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := http.NewResponseController(w)
	enc := json.NewEncoder(w)

	started := false
	n := 0
	for event, err := range h.audit.Events(ctx) {
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to read audit log",
				"request_id", requestcontext.RequestID(ctx),
				"events_written", n,
				"error", err.Error(),
			)
			if !started {
				httputil.WriteError(w, err)
			}
			return
		}
		if !started {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("["))
			started = true
		} else {
			_, _ = w.Write([]byte(","))
		}
		if err := enc.Encode(event); err != nil {
			return
		}
		n++
		if n%flushEvery == 0 {
			_ = rc.Flush()
		}
	}

	if !started {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("["))
	}
	_, _ = w.Write([]byte("]"))
}
