package game

// findWin reports whether color has a contiguous run of at least winLen
// cells in any of the four directions: horizontal within a row, vertical
// (stride W) and the two diagonals (strides W-1 and W+1, where W is the
// row width).
func findWin(b *Board, color uint8, winLen int) bool {
	if horizontalRun(b, color, winLen) {
		return true
	}
	w := b.Cols()
	for _, stride := range []int{w - 1, w, w + 1} {
		if strideRun(b, color, stride, winLen) {
			return true
		}
	}
	return false
}

// horizontalRun scans each row separately so a run can never span two rows.
func horizontalRun(b *Board, color uint8, winLen int) bool {
	cols := b.Cols()
	for rowStart := 0; rowStart < b.Len(); rowStart += cols {
		run := 0
		for i := rowStart; i < rowStart+cols; i++ {
			if b.Get(i) != color {
				run = 0
				continue
			}
			run++
			if run >= winLen {
				return true
			}
		}
	}
	return false
}

// strideRun walks the flat index space at a fixed stride, starting from
// each run head. Every step checks that the next index lands on the
// expected neighbouring column, so a diagonal can never wrap from the edge
// of one row onto a non-adjacent cell of the next.
func strideRun(b *Board, color uint8, stride, winLen int) bool {
	cols := b.Cols()
	colStep := stride - cols // -1, 0 or +1
	for start := 0; start < b.Len(); start++ {
		if b.Get(start) != color {
			continue
		}
		if prev := start - stride; prev >= 0 && b.Get(prev) == color && start%cols-prev%cols == colStep {
			continue // not the head of a run
		}
		run := 1
		for i := start; ; i += stride {
			next := i + stride
			if next >= b.Len() || b.Get(next) != color || next%cols-i%cols != colStep {
				break
			}
			run++
			if run >= winLen {
				return true
			}
		}
	}
	return false
}
