package domain

import "time"

// Followup is a note attached to a ticket thread.
type Followup struct {
	ID        int64
	TicketID  int64
	UserID    int64
	Content   string
	CreatedAt time.Time
}
