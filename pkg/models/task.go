package models

import "time"

// Task represents a schedulable work item in a workspace.
// Task rows are owned by the surrounding task-management feature; the
// scheduling core reads the dates, completion flag and color and never
// mutates them (seed tooling aside).
type Task struct {
	ID          string     `json:"id" db:"id"`                           // Unique identifier (e.g., UUID from the task feature)
	WorkspaceID int64      `json:"workspace_id" db:"workspace_id"`       // Workspace the task belongs to
	Title       string     `json:"title" db:"title"`                     // Descriptive name (e.g., "Call supplier")
	StartDate   *time.Time `json:"start_date,omitempty" db:"start_date"` // Nullable calendar date (midnight UTC)
	EndDate     *time.Time `json:"end_date,omitempty" db:"end_date"`     // Nullable calendar date (midnight UTC)
	Completed   bool       `json:"completed" db:"completed"`             // Completion flag
	Color       string     `json:"color" db:"color"`                     // Display color for the timeline bar
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`           // Creation timestamp
}

// HasDates reports whether the task carries at least one calendar date
// and can therefore be placed on a timeline.
func (t Task) HasDates() bool {
	return t.StartDate != nil || t.EndDate != nil
}

// Span returns the task's effective [start, end] span. A task with a
// single date collapses to a zero-length span on that date.
func (t Task) Span() (start, end time.Time, ok bool) {
	if !t.HasDates() {
		return time.Time{}, time.Time{}, false
	}
	if t.StartDate != nil {
		start = *t.StartDate
	} else {
		start = *t.EndDate
	}
	if t.EndDate != nil {
		end = *t.EndDate
	} else {
		end = *t.StartDate
	}
	if end.Before(start) {
		start, end = end, start
	}
	return start, end, true
}
