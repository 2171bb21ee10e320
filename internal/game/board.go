package game

const (
	// DefaultCols is the row width every wire client assumes.
	DefaultCols = 15
	// DefaultRows gives the historical 255-cell field.
	DefaultRows = 17

	// Empty marks an unoccupied cell.
	Empty uint8 = 0
)

// Board is a fixed-size grid stored as a flat row-major slice. The size is
// chosen once at construction and never changes for the process lifetime.
// Indices are validated by the state machine before they reach the board;
// an out-of-range index here is a caller bug and panics.
type Board struct {
	cells []uint8
	cols  int
}

// NewBoard creates an empty rows x cols board.
func NewBoard(rows, cols int) *Board {
	if rows < 1 || cols < 1 {
		panic("game: board dimensions must be positive")
	}
	return &Board{
		cells: make([]uint8, rows*cols),
		cols:  cols,
	}
}

// Get returns the occupant color at index i, or Empty.
func (b *Board) Get(i int) uint8 {
	return b.cells[i]
}

// Set writes color at index i.
func (b *Board) Set(i int, color uint8) {
	b.cells[i] = color
}

// Len returns the total number of cells.
func (b *Board) Len() int {
	return len(b.cells)
}

// Cols returns the row width.
func (b *Board) Cols() int {
	return b.cols
}

// InBounds reports whether i addresses a cell.
func (b *Board) InBounds(i int) bool {
	return i >= 0 && i < len(b.cells)
}

// Reset clears every cell.
func (b *Board) Reset() {
	clear(b.cells)
}

// Cells returns a copy of the cell values.
func (b *Board) Cells() []uint8 {
	out := make([]uint8, len(b.cells))
	copy(out, b.cells)
	return out
}
