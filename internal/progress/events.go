// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"
)

// Event is a real-time update from a run.
type Event struct {
	Task      string    // Task the event belongs to
	Command   string    // Rendered command, empty for task level events
	Type      EventType // What happened
	Message   string    // Human-readable status message
	Timestamp time.Time // When the event occurred
	Data      EventData // Type-specific data
}

// EventType represents the type of progress event.
type EventType int

const (
	// EventStarted indicates a task or command has begun.
	EventStarted EventType = iota
	// EventProgress indicates general progress information.
	EventProgress
	// EventOutput indicates a new line of command output.
	EventOutput
	// EventCompleted indicates successful completion.
	EventCompleted
	// EventFailed indicates failure.
	EventFailed
	// EventSkipped indicates a command was skipped.
	EventSkipped
	// EventWarning indicates a best-effort failure that did not stop the run.
	EventWarning
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventStarted:
		return "started"
	case EventProgress:
		return "progress"
	case EventOutput:
		return "output"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	case EventSkipped:
		return "skipped"
	case EventWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// EventData contains type-specific information for progress events.
type EventData struct {
	// For EventOutput
	OutputLine string
	IsStderr   bool

	// For EventCompleted, EventFailed and EventWarning
	ExitCode int
	Error    error
}

// Reporter is the interface for sending progress events.
type Reporter interface {
	// Report sends a progress event. Implementations must not block.
	Report(event Event)
	// Close signals that no more events will be sent.
	Close()
}

// Listener receives progress events.
type Listener interface {
	OnEvent(event Event)
}

// ListenerFunc adapts a function to a Listener.
type ListenerFunc func(Event)

// OnEvent calls f(event).
func (f ListenerFunc) OnEvent(event Event) {
	f(event)
}

// NullReporter is a no-op Reporter.
type NullReporter struct{}

// Report does nothing.
func (nr *NullReporter) Report(Event) {}

// Close does nothing.
func (nr *NullReporter) Close() {}

// NewNullReporter creates a new NullReporter.
func NewNullReporter() Reporter {
	return &NullReporter{}
}
