package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventInfo    EventType = "info"
	EventWarn    EventType = "warn"
	EventSuccess EventType = "success"
	EventError   EventType = "error"
)

// Event names published by the backend.
const (
	ScanState     = "events:scan:state"
	ScanDiscarded = "events:scan:discarded"
	ScanHistory   = "events:scan:history"
	NavChanged    = "events:nav:changed"
)

// Event is a simple struct representing a backend event payload
type Event struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Token     uint64            `json:"token,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type contextKey string

const tokenContextKey contextKey = "coeating/events/token"

// WithToken returns a derived context annotated with the given request token
// so event emitters can automatically scope payloads to one scan.
func WithToken(ctx context.Context, token uint64) context.Context {
	if token == 0 {
		return ctx
	}
	return context.WithValue(ctx, tokenContextKey, token)
}

// TokenFromContext extracts the request token associated with ctx.
func TokenFromContext(ctx context.Context) uint64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(tokenContextKey).(uint64); ok {
		return v
	}
	return 0
}

func newEvent(eventType EventType, message string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewInfo creates an info Event.
func NewInfo(message string) Event {
	return newEvent(EventInfo, message)
}

// NewWarn creates a warn Event.
func NewWarn(message string) Event {
	return newEvent(EventWarn, message)
}

// NewError creates an error Event.
func NewError(message string) Event {
	return newEvent(EventError, message)
}

// NewSuccess creates a success Event.
func NewSuccess(message string) Event {
	return newEvent(EventSuccess, message)
}
