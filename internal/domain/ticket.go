package domain

import "time"

// TicketType enumerates ticket kinds.
type TicketType int

const (
	TicketTypeIncident TicketType = 1
	TicketTypeRequest  TicketType = 2
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus int

const (
	TicketStatusNew        TicketStatus = 1
	TicketStatusInProgress TicketStatus = 2
	TicketStatusWaiting    TicketStatus = 3
	TicketStatusSolved     TicketStatus = 5
	TicketStatusClosed     TicketStatus = 6
)

// Level is the shared 1..5 scale of urgency, impact and priority.
type Level int

const (
	LevelVeryLow  Level = 1
	LevelLow      Level = 2
	LevelMedium   Level = 3
	LevelHigh     Level = 4
	LevelVeryHigh Level = 5
)

// ValidationStatus enumerates approval states of a ticket.
type ValidationStatus int

const (
	ValidationNone     ValidationStatus = 1
	ValidationWaiting  ValidationStatus = 2
	ValidationAccepted ValidationStatus = 3
	ValidationRefused  ValidationStatus = 4
)

// DateTimeLayout is the canonical timestamp form stored on tickets.
const DateTimeLayout = "2006-01-02 15:04:05"

// TicketInput is a finalized record ready for creation. Empty Date or
// TimeToResolve means the field is absent.
type TicketInput struct {
	Name          string
	Content       string
	Urgency       Level
	Impact        Level
	Priority      Level
	Type          TicketType
	Status        TicketStatus
	Validation    ValidationStatus
	CategoryID    int64
	EntityID      int64
	LocationID    int64
	RequesterID   int64
	AssigneeID    int64
	GroupID       int64
	Date          string
	TimeToResolve string
	ActionTime    int64
}

// Ticket is a persisted ticket.
type Ticket struct {
	ID            int64
	Name          string
	Content       string
	Urgency       Level
	Impact        Level
	Priority      Level
	Type          TicketType
	Status        TicketStatus
	Validation    ValidationStatus
	CategoryID    int64
	EntityID      int64
	LocationID    int64
	RequesterID   int64
	AssigneeID    int64
	GroupID       int64
	Date          *time.Time
	TimeToResolve *time.Time
	ActionTime    int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
