// Package audit exposes the audit trail over HTTP: client-reported events
// are recorded next to server events, and the whole log can be replayed.
package audit

import (
	"context"
	"encoding/json"
	"iter"
	"strings"
	"unicode/utf8"

	audit "rollcall/pkg/platform/audit"
	"rollcall/pkg/requestcontext"
)

// maxEventNameRunes caps client-supplied event names.
const maxEventNameRunes = 128

// fallbackEventName labels client events sent without a name.
const fallbackEventName audit.EventName = "client_event"

// Log is the audit trail the service writes to and reads from.
type Log interface {
	Record(ctx context.Context, entry audit.Entry)
	Events(ctx context.Context) iter.Seq2[audit.Event, error]
}

type Service struct {
	log Log
}

func NewService(log Log) *Service {
	return &Service{log: log}
}

// LogClientEvent records an event reported by the browser. The origin and
// device come from the request, never from the payload.
func (s *Service) LogClientEvent(ctx context.Context, name string, details json.RawMessage) {
	if len(details) == 0 {
		details = json.RawMessage("null")
	}
	s.log.Record(ctx, audit.Entry{
		Name: clientEventName(name),
		Detail: map[string]any{
			"details":    details,
			"device":     requestcontext.Device(ctx),
			"user_agent": requestcontext.UserAgent(ctx),
			"request_id": requestcontext.RequestID(ctx),
		},
		OriginAddress: requestcontext.ClientIP(ctx),
	})
}

// Events lists the trail newest first.
func (s *Service) Events(ctx context.Context) iter.Seq2[audit.Event, error] {
	return s.log.Events(ctx)
}

func clientEventName(name string) audit.EventName {
	name = strings.TrimSpace(strings.ToValidUTF8(name, ""))
	if name == "" {
		return fallbackEventName
	}
	if utf8.RuneCountInString(name) > maxEventNameRunes {
		name = string([]rune(name)[:maxEventNameRunes])
	}
	return audit.EventName(name)
}
