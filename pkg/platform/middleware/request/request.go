// Package request holds the per-request middleware every route shares.
package request

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	dErrors "rollcall/pkg/domain-errors"
	"rollcall/pkg/platform/httputil"
	"rollcall/pkg/requestcontext"
)

// HeaderRequestID carries the request ID in and out.
const HeaderRequestID = "X-Request-ID"

// maxRequestIDLen bounds caller-supplied request IDs.
const maxRequestIDLen = 128

// RequestID propagates the caller's X-Request-ID or assigns a new one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithRequestID(r.Context(), requestID)))
	})
}

// Logger logs one line per completed request and recovers panics as 500s.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	formatter := &structuredLogger{logger: logger}
	return func(next http.Handler) http.Handler {
		return middleware.RequestLogger(formatter)(recoverer(next))
	}
}

type structuredLogger struct {
	logger *slog.Logger
}

func (l *structuredLogger) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &logEntry{logger: l.logger, request: r}
}

type logEntry struct {
	logger  *slog.Logger
	request *http.Request
}

func (e *logEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ any) {
	ctx := e.request.Context()
	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	e.logger.Log(ctx, level, "http request completed",
		"method", e.request.Method,
		"path", e.request.URL.Path,
		"status", status,
		"bytes", bytes,
		"duration_ms", elapsed.Milliseconds(),
		"request_id", requestcontext.RequestID(ctx),
		"client_ip", requestcontext.ClientIP(ctx),
	)
}

func (e *logEntry) Panic(v any, stack []byte) {
	ctx := e.request.Context()
	e.logger.ErrorContext(ctx, "http request panic",
		"panic", v,
		"stack", string(stack),
		"method", e.request.Method,
		"path", e.request.URL.Path,
		"request_id", requestcontext.RequestID(ctx),
	)
}

// recoverer turns a handler panic into a logged 500. http.ErrAbortHandler
// is re-raised so the server can abort the connection.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			if entry := middleware.GetLogEntry(r); entry != nil {
				entry.Panic(rvr, nil)
			}
			httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "internal error"))
		}()
		next.ServeHTTP(w, r)
	})
}
