package ngio

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// EventType defines a public type used by ngio APIs.
//
// EventType instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EventType string

const (
	// EventStatusChange is an exported constant or variable used by the session engine.
	EventStatusChange EventType = "status_change"
	// EventCallStarted is an exported constant or variable used by the session engine.
	EventCallStarted EventType = "call_started"
	// EventCallCompleted is an exported constant or variable used by the session engine.
	EventCallCompleted EventType = "call_completed"
	// EventCallFailed is an exported constant or variable used by the session engine.
	EventCallFailed EventType = "call_failed"
	// EventSessionRemembered is an exported constant or variable used by the session engine.
	EventSessionRemembered EventType = "session_remembered"
	// EventRetryScheduled is an exported constant or variable used by the session engine.
	EventRetryScheduled EventType = "retry_scheduled"
	// EventPassportOpened is an exported constant or variable used by the session engine.
	EventPassportOpened EventType = "passport_opened"
)

type SessionEvent struct {
	Timestamp      time.Time         `json:"timestamp"`
	EventType      EventType         `json:"event_type"`
	Status         string            `json:"status,omitempty"`
	PreviousStatus string            `json:"previous_status,omitempty"`
	Mode           string            `json:"mode,omitempty"`
	Component      string            `json:"component,omitempty"`
	SessionID      string            `json:"session_id,omitempty"`
	Success        bool              `json:"success"`
	Error          string            `json:"error,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

type EventSink interface {
	Emit(ctx context.Context, event SessionEvent)
}

type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, SessionEvent) {}

type ChannelSink struct {
	events chan SessionEvent
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan SessionEvent, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event SessionEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan SessionEvent {
	return s.events
}

type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event SessionEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
