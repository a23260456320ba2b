package dto

import (
	"fmt"
	"time"

	"github.com/spec-kit/ticket-import/internal/domain"
	"github.com/spec-kit/ticket-import/internal/importer"
)

// ImportFormRequest is the non-file part of the multipart upload form.
type ImportFormRequest struct {
	Format       string `form:"format" validate:"required,oneof=csv"`
	HasHeaders   string `form:"has_headers" validate:"omitempty,oneof=0 1 true false"`
	AddFollowup  string `form:"add_followup" validate:"omitempty,oneof=0 1 true false"`
	FieldMapping string `form:"field_mapping"`
}

func (r *ImportFormRequest) Ok() (map[string]string, bool) {
	if r.Format == "" {
		r.Format = "csv"
	}
	errorMessages := validationMessages(r)
	return errorMessages, len(errorMessages) == 0
}

// MappingRequest asks how a header row would be mapped.
type MappingRequest struct {
	Headers      []string          `json:"headers" validate:"required,min=1"`
	HasHeaders   *bool             `json:"has_headers"`
	FieldMapping map[string]string `json:"field_mapping"`
}

func (r *MappingRequest) Ok() (map[string]string, bool) {
	errorMessages := validationMessages(r)
	return errorMessages, len(errorMessages) == 0
}

// DefaultsRequest updates the stored import defaults.
type DefaultsRequest struct {
	EntityID   int64 `json:"entity_id" validate:"gte=0"`
	CategoryID int64 `json:"category_id" validate:"gte=0"`
	Urgency    int   `json:"urgency" validate:"min=1,max=5"`
	Impact     int   `json:"impact" validate:"min=1,max=5"`
	Priority   int   `json:"priority" validate:"min=1,max=5"`
}

func (r *DefaultsRequest) Ok() (map[string]string, bool) {
	errorMessages := validationMessages(r)
	return errorMessages, len(errorMessages) == 0
}

// ToDomain converts the request into import defaults.
func (r *DefaultsRequest) ToDomain() domain.ImportDefaults {
	return domain.ImportDefaults{
		EntityID:   r.EntityID,
		CategoryID: r.CategoryID,
		Urgency:    r.Urgency,
		Impact:     r.Impact,
		Priority:   r.Priority,
	}
}

// DefaultsResponse mirrors DefaultsRequest.
type DefaultsResponse struct {
	EntityID   int64 `json:"entity_id"`
	CategoryID int64 `json:"category_id"`
	Urgency    int   `json:"urgency"`
	Impact     int   `json:"impact"`
	Priority   int   `json:"priority"`
}

func NewDefaultsResponse(d domain.ImportDefaults) DefaultsResponse {
	return DefaultsResponse{
		EntityID:   d.EntityID,
		CategoryID: d.CategoryID,
		Urgency:    d.Urgency,
		Impact:     d.Impact,
		Priority:   d.Priority,
	}
}

// ImportedTicket links a ticket created by a run.
type ImportedTicket struct {
	ID    int64  `json:"id"`
	Title string `json:"title,omitempty"`
	Link  string `json:"link"`
}

// ImportRunResponse reports the outcome of one import run.
type ImportRunResponse struct {
	RunID       string           `json:"run_id"`
	Summary     string           `json:"summary"`
	Success     int              `json:"success"`
	Errors      int              `json:"errors"`
	Skipped     int              `json:"skipped"`
	Details     []string         `json:"details"`
	Imported    []ImportedTicket `json:"imported"`
	SourceError string           `json:"source_error,omitempty"`
	StartedAt   time.Time        `json:"started_at"`
	FinishedAt  time.Time        `json:"finished_at"`
}

// TicketLink is the path of a ticket's form.
func TicketLink(id int64) string {
	return fmt.Sprintf("/tickets/%d", id)
}

// NewImportRunResponse builds the response. Titles are attached for the
// tickets found in tickets; ids missing from it are listed without a title.
func NewImportRunResponse(r *importer.Result, tickets []domain.Ticket) ImportRunResponse {
	titles := make(map[int64]string, len(tickets))
	for _, t := range tickets {
		titles[t.ID] = t.Name
	}
	imported := make([]ImportedTicket, 0, len(r.CreatedIDs))
	for _, id := range r.CreatedIDs {
		imported = append(imported, ImportedTicket{ID: id, Title: titles[id], Link: TicketLink(id)})
	}
	return ImportRunResponse{
		RunID:       r.RunID.String(),
		Summary:     r.Summary(),
		Success:     r.SuccessCount,
		Errors:      r.ErrorCount,
		Skipped:     r.SkippedCount,
		Details:     r.DetailLines(),
		Imported:    imported,
		SourceError: r.SourceError,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
	}
}

// ImportRunSummary is a history entry.
type ImportRunSummary struct {
	RunID      string    `json:"run_id"`
	Summary    string    `json:"summary"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func NewImportRunSummary(r *importer.Result) ImportRunSummary {
	return ImportRunSummary{
		RunID:      r.RunID.String(),
		Summary:    r.Summary(),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}
