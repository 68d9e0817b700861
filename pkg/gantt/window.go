package gantt

import (
	"fmt"
	"time"

	"github.com/beckyeh8888/free-crm-sub001/pkg/models"
)

// weeksVisible is how many full calendar weeks the week scale shows.
const weeksVisible = 5

// InvalidWindowError reports a malformed scale or reference instant
// handed to the temporal calculator.
type InvalidWindowError struct {
	Scale  models.Scale
	Reason string
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("invalid window: %s", e.Reason)
}

// WindowFor derives the visible window for a scale, anchored to the
// calendar boundary containing ref. The reference's time of day never
// shifts the window.
//
//	week    -> Monday of ref's week, 5 full weeks
//	month   -> first of ref's month, through the last day 2 months on
//	quarter -> first day of ref's quarter, through the last day of the
//	           month 8 months after the start
//	year    -> Jan 1 of ref's year, through Dec 31 of the next year
func WindowFor(scale models.Scale, ref time.Time) (models.Window, error) {
	if !scale.IsValid() {
		return models.Window{}, &InvalidWindowError{Scale: scale, Reason: fmt.Sprintf("unknown scale %q", string(scale))}
	}
	if ref.IsZero() {
		return models.Window{}, &InvalidWindowError{Scale: scale, Reason: "zero reference instant"}
	}

	day := midnight(ref)
	var start, end time.Time
	switch scale {
	case models.ScaleWeek:
		start = startOfWeek(day)
		end = start.AddDate(0, 0, 7*weeksVisible)
	case models.ScaleMonth:
		start = firstOfMonth(day)
		end = lastOfMonth(start.AddDate(0, 2, 0))
	case models.ScaleQuarter:
		start = startOfQuarter(day)
		end = lastOfMonth(start.AddDate(0, 8, 0))
	case models.ScaleYear:
		start = time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, day.Location())
		end = time.Date(day.Year()+1, time.December, 31, 0, 0, 0, 0, day.Location())
	}
	return models.Window{Start: start, End: end, Scale: scale}, nil
}

// ColumnsFor slices the window [start, end) into ordered rendering
// columns: days on the week scale, calendar weeks on the month scale,
// calendar months otherwise. Week and month columns may begin before
// start; they are included whenever they overlap the window.
func ColumnsFor(scale models.Scale, start, end time.Time) ([]models.Column, error) {
	if !scale.IsValid() {
		return nil, &InvalidWindowError{Scale: scale, Reason: fmt.Sprintf("unknown scale %q", string(scale))}
	}
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return nil, &InvalidWindowError{Scale: scale, Reason: "window start must precede end"}
	}

	switch scale {
	case models.ScaleWeek:
		return dayColumns(start, end), nil
	case models.ScaleMonth:
		return weekColumns(start, end), nil
	default:
		return monthColumns(start, end), nil
	}
}

func dayColumns(start, end time.Time) []models.Column {
	var cols []models.Column
	for d := midnight(start); d.Before(end); d = d.AddDate(0, 0, 1) {
		cols = append(cols, models.Column{
			Start: d,
			End:   d.AddDate(0, 0, 1),
			Label: d.Format("Jan 2"),
		})
	}
	return cols
}

func weekColumns(start, end time.Time) []models.Column {
	var cols []models.Column
	for w := startOfWeek(start); w.Before(end); w = w.AddDate(0, 0, 7) {
		cols = append(cols, models.Column{
			Start: w,
			End:   w.AddDate(0, 0, 7),
			Label: w.Format("Jan 2"),
		})
	}
	return cols
}

func monthColumns(start, end time.Time) []models.Column {
	var cols []models.Column
	year := 0
	for m := firstOfMonth(start); m.Before(end); m = m.AddDate(0, 1, 0) {
		// The first column of each calendar year carries the year.
		label := m.Format("Jan")
		if m.Year() != year {
			label = m.Format("Jan 2006")
			year = m.Year()
		}
		cols = append(cols, models.Column{
			Start: m,
			End:   m.AddDate(0, 1, 0),
			Label: label,
		})
	}
	return cols
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Monday of t's calendar week, at midnight.
func startOfWeek(t time.Time) time.Time {
	d := midnight(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0 ... Sunday = 6
	return d.AddDate(0, 0, -offset)
}

func startOfQuarter(t time.Time) time.Time {
	m := time.Month((int(t.Month())-1)/3*3 + 1)
	return time.Date(t.Year(), m, 1, 0, 0, 0, 0, t.Location())
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// lastOfMonth returns the final day of t's month, at midnight.
func lastOfMonth(t time.Time) time.Time {
	return firstOfMonth(t).AddDate(0, 1, -1)
}
