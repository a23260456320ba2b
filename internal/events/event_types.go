package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketImported  EventType = "ticket_imported"
	EventImportCompleted EventType = "import_completed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        uuid.UUID   `json:"id"`
	Type      EventType   `json:"type"`
	RunID     uuid.UUID   `json:"run_id"`
	ActorID   int64       `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, runID uuid.UUID, actorID int64, payload interface{}) Event {
	return Event{
		ID:        uuid.New(),
		Type:      eventType,
		RunID:     runID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TicketImportedPayload payload.
type TicketImportedPayload struct {
	TicketID int64  `json:"ticket_id"`
	Line     int    `json:"line"`
	Title    string `json:"title"`
}

// ImportCompletedPayload payload.
type ImportCompletedPayload struct {
	Success     int    `json:"success"`
	Errors      int    `json:"errors"`
	Skipped     int    `json:"skipped"`
	SourceError string `json:"source_error,omitempty"`
}
