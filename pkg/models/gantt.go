package models

import (
	"fmt"
	"strings"
	"time"
)

// Scale is the zoom level of the Gantt view. It determines both the
// visible window span and the column granularity.
type Scale string

const (
	ScaleWeek    Scale = "week"
	ScaleMonth   Scale = "month"
	ScaleQuarter Scale = "quarter"
	ScaleYear    Scale = "year"
)

// IsValid reports whether the scale is a known value.
func (s Scale) IsValid() bool {
	switch s {
	case ScaleWeek, ScaleMonth, ScaleQuarter, ScaleYear:
		return true
	default:
		return false
	}
}

// Window is the visible [Start, End] time span of a render pass.
// Derived from a scale and a reference instant, never persisted.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Scale Scale     `json:"scale"`
}

// Duration returns the window's total span.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Column is one rendering unit (day/week/month) inside a window.
// Columns are half-open: [Start, End).
type Column struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// BarPosition is the horizontal placement of a task bar, both values
// percentages of the window width. A task not visible in the window has
// no BarPosition at all rather than a zeroed one.
type BarPosition struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// PathCommand discriminates path segments.
type PathCommand string

const (
	PathMove  PathCommand = "M"
	PathCurve PathCommand = "C"
)

// PathSegment is one drawing instruction of a connector path.
// X/Y are the segment's end point; C1*/C2* are cubic control points and
// only meaningful for PathCurve. X coordinates are percentages of the
// window width, Y coordinates are pixels.
type PathSegment struct {
	Cmd PathCommand `json:"cmd"`
	X   float64     `json:"x"`
	Y   float64     `json:"y"`
	C1X float64     `json:"c1x,omitempty"`
	C1Y float64     `json:"c1y,omitempty"`
	C2X float64     `json:"c2x,omitempty"`
	C2Y float64     `json:"c2y,omitempty"`
}

// Path is an abstract connector path between two task bars. Stroke,
// color and arrowheads are rendering concerns and live elsewhere.
type Path []PathSegment

// SVG renders the path as an SVG path datum string, e.g.
// "M 10.00 20.00 C 18.00 20.00, 42.00 60.00, 50.00 60.00".
func (p Path) SVG() string {
	var b strings.Builder
	for i, seg := range p {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch seg.Cmd {
		case PathMove:
			fmt.Fprintf(&b, "M %.2f %.2f", seg.X, seg.Y)
		case PathCurve:
			fmt.Fprintf(&b, "C %.2f %.2f, %.2f %.2f, %.2f %.2f",
				seg.C1X, seg.C1Y, seg.C2X, seg.C2Y, seg.X, seg.Y)
		}
	}
	return b.String()
}

// EdgePath is a rendered dependency connector between two visible bars.
type EdgePath struct {
	From string `json:"from"` // prerequisite task id
	To   string `json:"to"`   // dependent task id
	Path Path   `json:"path"`
}

// GanttView is the combined render payload for one window: the window
// itself, its columns, a bar per requested task (nil when the task is
// not visible) and a connector per visible dependency edge.
type GanttView struct {
	Window  Window                  `json:"window"`
	Columns []Column                `json:"columns"`
	Bars    map[string]*BarPosition `json:"bars"`
	Edges   []EdgePath              `json:"edges"`
}
