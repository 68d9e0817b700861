package gantt

import (
	"math"

	"github.com/beckyeh8888/free-crm-sub001/pkg/models"
)

// DefaultRowHeight is the row pitch in pixels used when a caller does
// not supply its own.
const DefaultRowHeight = 40.0

// Horizontal control-point offsets, in percent of the window width.
// Half the horizontal gap, clamped, gives a gentle S-curve between
// different rows and a near-straight segment within one row.
const (
	minControlOffset = 2.0
	maxControlOffset = 12.0
)

// PathFor builds the dependency connector between two projected bars:
// one cubic curve from the right edge of the source bar to the left
// edge of the target bar, each anchored at its row's vertical center.
// X coordinates are percentages of the window width, Y coordinates are
// pixels. Returns nil when either bar is not visible; that is the
// expected outcome for off-window tasks, not a failure.
func PathFor(source, target *models.BarPosition, sourceRow, targetRow int, rowHeight float64) models.Path {
	if source == nil || target == nil {
		return nil
	}

	x1 := source.Left + source.Width
	y1 := rowCenter(sourceRow, rowHeight)
	x2 := target.Left
	y2 := rowCenter(targetRow, rowHeight)

	offset := math.Abs(x2-x1) / 2
	if offset < minControlOffset {
		offset = minControlOffset
	}
	if offset > maxControlOffset {
		offset = maxControlOffset
	}

	return models.Path{
		{Cmd: models.PathMove, X: x1, Y: y1},
		{
			Cmd: models.PathCurve,
			C1X: x1 + offset,
			C1Y: y1,
			C2X: x2 - offset,
			C2Y: y2,
			X:   x2,
			Y:   y2,
		},
	}
}

func rowCenter(row int, rowHeight float64) float64 {
	return float64(row)*rowHeight + rowHeight/2
}
