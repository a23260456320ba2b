package importer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Row outcomes recorded by the driver.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Result accumulates the outcome of one import run. Counters only grow
// during a run and SuccessCount always equals len(CreatedIDs).
type Result struct {
	RunID        uuid.UUID `json:"run_id"`
	ActorID      int64     `json:"actor_id"`
	SuccessCount int       `json:"success"`
	ErrorCount   int       `json:"errors"`
	SkippedCount int       `json:"skipped"`
	Messages     []string  `json:"messages"`
	CreatedIDs   []int64   `json:"imported_ids"`
	SourceError  string    `json:"source_error,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

func newResult(rc RunContext, startedAt time.Time) *Result {
	return &Result{
		RunID:      rc.RunID,
		ActorID:    rc.ActorID,
		Messages:   []string{},
		CreatedIDs: []int64{},
		StartedAt:  startedAt,
	}
}

// Processed returns the number of data rows that reached a terminal outcome.
func (r *Result) Processed() int {
	return r.SuccessCount + r.ErrorCount + r.SkippedCount
}

// Aborted reports whether the source could not be read at all.
func (r *Result) Aborted() bool {
	return r.SourceError != ""
}

// Summary renders the one-line outcome shown to the importing user.
func (r *Result) Summary() string {
	if r.Aborted() {
		return "Import failed: " + r.SourceError
	}
	return fmt.Sprintf("Import completed: %d successful, %d errors, %d skipped",
		r.SuccessCount, r.ErrorCount, r.SkippedCount)
}

// DetailLines returns the summary followed by every row message.
func (r *Result) DetailLines() []string {
	lines := make([]string, 0, len(r.Messages)+1)
	lines = append(lines, r.Summary())
	return append(lines, r.Messages...)
}

func (r *Result) success(id int64) {
	r.SuccessCount++
	r.CreatedIDs = append(r.CreatedIDs, id)
}

func (r *Result) fail(line int, message string) {
	r.ErrorCount++
	r.Messages = append(r.Messages, fmt.Sprintf("Line %d: %s", line, message))
}

func (r *Result) skip(line int, message string) {
	r.SkippedCount++
	if message != "" {
		r.Messages = append(r.Messages, fmt.Sprintf("Line %d: %s", line, message))
	}
}
