package grid

import "testing"

func TestVirtualizer_Frame(t *testing.T) {
	v := Virtualizer{RowHeight: 53, Overscan: 5}
	const (
		rowCount = 10000
		viewport = 800
	)

	t.Run("top of the list", func(t *testing.T) {
		f := v.Frame(rowCount, 0, viewport)
		if f.Start != 0 {
			t.Errorf("Start = %d, want 0", f.Start)
		}
		// ceil(800/53) = 16, plus overscan.
		if f.End != 21 {
			t.Errorf("End = %d, want 21", f.End)
		}
		if f.TotalHeight != rowCount*53 {
			t.Errorf("TotalHeight = %d, want %d", f.TotalHeight, rowCount*53)
		}
	})

	t.Run("bottom of the list", func(t *testing.T) {
		bottom := v.ClampOffset(1<<31, rowCount, viewport)
		f := v.Frame(rowCount, bottom, viewport)
		if f.End != rowCount-1 {
			t.Errorf("End = %d, want %d", f.End, rowCount-1)
		}
		if f.Start > f.End {
			t.Errorf("Start %d > End %d", f.Start, f.End)
		}
	})

	t.Run("indices never leave the valid range", func(t *testing.T) {
		for offset := 0; offset <= rowCount*53; offset += 531 {
			f := v.Frame(rowCount, offset, viewport)
			if f.Start < 0 || f.Start > rowCount-1 {
				t.Fatalf("offset %d: Start %d out of range", offset, f.Start)
			}
			if f.End < 0 || f.End > rowCount-1 {
				t.Fatalf("offset %d: End %d out of range", offset, f.End)
			}
			if f.Start > f.End {
				t.Fatalf("offset %d: Start %d > End %d", offset, f.Start, f.End)
			}
		}
	})

	t.Run("offsets are absolute", func(t *testing.T) {
		f := v.Frame(rowCount, 0, viewport)
		if f.Offset(0) != 0 || f.Offset(10) != 530 {
			t.Errorf("Offset(10) = %d, want 530", f.Offset(10))
		}
	})
}

func TestVirtualizer_FrameTerminalUnits(t *testing.T) {
	// The terminal binding runs the same arithmetic with one cell row per
	// record.
	v := Virtualizer{RowHeight: 1, Overscan: 2}

	f := v.Frame(100, 40, 20)
	if f.Start != 38 {
		t.Errorf("Start = %d, want 38", f.Start)
	}
	if f.End != 62 {
		t.Errorf("End = %d, want 62", f.End)
	}
	if f.Count() != 25 {
		t.Errorf("Count() = %d, want 25", f.Count())
	}
}

func TestVirtualizer_EmptyRowCount(t *testing.T) {
	v := Virtualizer{RowHeight: 53, Overscan: 5}

	f := v.Frame(0, 0, 800)
	if f.Count() != 0 {
		t.Errorf("Count() = %d, want 0", f.Count())
	}
	if f.TotalHeight != 0 {
		t.Errorf("TotalHeight = %d, want 0", f.TotalHeight)
	}
}

func TestVirtualizer_ClampOffset(t *testing.T) {
	v := Virtualizer{RowHeight: 53, Overscan: 5}

	tests := []struct {
		name     string
		offset   int
		rowCount int
		viewport int
		want     int
	}{
		{"in range", 1000, 10000, 800, 1000},
		{"negative", -50, 10000, 800, 0},
		{"past the end", 10000 * 53, 10000, 800, 10000*53 - 800},
		{"row count shrank", 10000 * 53, 100, 800, 100*53 - 800},
		{"content shorter than viewport", 500, 5, 800, 0},
		{"no rows", 120, 0, 800, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.ClampOffset(tt.offset, tt.rowCount, tt.viewport); got != tt.want {
				t.Errorf("ClampOffset(%d, %d, %d) = %d, want %d",
					tt.offset, tt.rowCount, tt.viewport, got, tt.want)
			}
		})
	}
}
