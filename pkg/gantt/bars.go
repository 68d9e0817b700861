package gantt

import (
	"time"

	"github.com/beckyeh8888/free-crm-sub001/pkg/models"
)

// MinBarWidthPct is the smallest rendered bar width. Zero-duration and
// single-date tasks keep at least this sliver so they stay clickable.
const MinBarWidthPct = 1.0

// ProjectBar maps a task's span onto the window, both coordinates as
// percentages of the window width. It returns nil when the task has no
// dates, when its span misses [windowStart, windowEnd] entirely, or
// when the window itself is degenerate. A span covering the whole
// window clamps to {0, 100}.
func ProjectBar(task models.Task, windowStart, windowEnd time.Time) *models.BarPosition {
	if !windowEnd.After(windowStart) {
		return nil
	}
	start, end, ok := task.Span()
	if !ok {
		return nil
	}
	if end.Before(windowStart) || start.After(windowEnd) {
		return nil
	}

	if start.Before(windowStart) {
		start = windowStart
	}
	if end.After(windowEnd) {
		end = windowEnd
	}

	total := float64(windowEnd.Sub(windowStart))
	left := float64(start.Sub(windowStart)) / total * 100
	width := float64(end.Sub(start)) / total * 100
	if width < MinBarWidthPct {
		width = MinBarWidthPct
	}
	// A minimum-width bar at the right edge must not spill past it.
	if left+width > 100 {
		left = 100 - width
	}
	return &models.BarPosition{Left: left, Width: width}
}
