package grid

// Frame is the derived render window of a virtualized body: the inclusive
// index range of rows that must be materialized, the total scrollable
// height, and each row's absolute offset. It is recomputed on every scroll
// or row-count change and never persisted. An empty result has End < Start.
type Frame struct {
	Start       int
	End         int
	TotalHeight int
	rowHeight   int
}

// Offset returns row i's absolute vertical offset within the scroll space.
func (f Frame) Offset(i int) int { return i * f.rowHeight }

// Count returns the number of materialized rows.
func (f Frame) Count() int {
	if f.End < f.Start {
		return 0
	}
	return f.End - f.Start + 1
}

// Virtualizer computes render windows from scroll geometry. Heights are in
// abstract units: the terminal binding uses height 1 per row, the
// arithmetic being unit-agnostic.
type Virtualizer struct {
	RowHeight int // estimated height of one row, > 0
	Overscan  int // extra rows materialized on each side of the viewport
}

// Frame computes the window for the current scroll position.
//
//	start = max(0, floor(offset/rowHeight) - overscan)
//	end   = min(rowCount-1, ceil((offset+viewport)/rowHeight) + overscan)
//
// Rows outside [start, end] exist only as the height they contribute to
// TotalHeight.
func (v Virtualizer) Frame(rowCount, scrollOffset, viewportHeight int) Frame {
	f := Frame{rowHeight: v.RowHeight, TotalHeight: rowCount * v.RowHeight}
	if rowCount <= 0 {
		f.End = -1
		return f
	}
	if scrollOffset < 0 {
		scrollOffset = 0
	}

	start := scrollOffset/v.RowHeight - v.Overscan
	if start < 0 {
		start = 0
	}
	end := ceilDiv(scrollOffset+viewportHeight, v.RowHeight) + v.Overscan
	if end > rowCount-1 {
		end = rowCount - 1
	}

	f.Start = start
	f.End = end
	return f
}

// ClampOffset bounds a scroll offset to the scrollable range for the given
// row count. Applied whenever the row count changes (a narrowed search must
// not leave the view past the end) and on every scroll input.
func (v Virtualizer) ClampOffset(scrollOffset, rowCount, viewportHeight int) int {
	max := rowCount*v.RowHeight - viewportHeight
	if max < 0 {
		max = 0
	}
	if scrollOffset > max {
		scrollOffset = max
	}
	if scrollOffset < 0 {
		scrollOffset = 0
	}
	return scrollOffset
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
