package model

import (
	"crypto/md5"
	"fmt"

	"github.com/pkg/errors"
	"github.com/zyedidia/generic/mapset"

	"github.com/sheikhrachel/go-gol-board/rules"
)

// RandomSource is the subset of a random number generator Initialize needs
type RandomSource interface {
	Float64() float64
}

// Grid represents the game board: a fixed rows x cols matrix of cells
type Grid struct {
	rows        int
	cols        int
	cells       [][]Cell
	initialized bool
}

// NewGrid creates a new, uninitialized grid with every cell dead
func NewGrid(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.Wrapf(ErrInvalidDimensions, "[NewGrid] %dx%d", rows, cols)
	}
	return newGrid(rows, cols), nil
}

func newGrid(rows, cols int) *Grid {
	cells := make([][]Cell, rows)
	for i := range cells {
		cells[i] = make([]Cell, cols)
	}
	return &Grid{
		rows:  rows,
		cols:  cols,
		cells: cells,
	}
}

// NewGridFromRows builds an initialized grid from a boolean matrix. All rows must share a length.
func NewGridFromRows(alive [][]bool) (*Grid, error) {
	if len(alive) == 0 || len(alive[0]) == 0 {
		return nil, errors.Wrap(ErrInvalidDimensions, "[NewGridFromRows] empty matrix")
	}
	g := newGrid(len(alive), len(alive[0]))
	for r, row := range alive {
		if len(row) != g.cols {
			return nil, errors.Wrapf(ErrInvalidDimensions, "[NewGridFromRows] row %d has %d columns, expected %d", r, len(row), g.cols)
		}
		for c, v := range row {
			g.cells[r][c].Alive = v
		}
	}
	g.initialized = true
	return g, nil
}

// GetRows returns the number of rows
func (g *Grid) GetRows() int {
	return g.rows
}

// GetCols returns the number of columns
func (g *Grid) GetCols() int {
	return g.cols
}

// IsInitialized reports whether the grid has been seeded
func (g *Grid) IsInitialized() bool {
	return g != nil && g.initialized
}

// Clear kills and unlocks every cell and marks the grid uninitialized
func (g *Grid) Clear() {
	for r := range g.rows {
		clear(g.cells[r])
	}
	g.initialized = false
}

// Initialize fills every cell with alive = rng.Float64() < liveProbability and clears all locks
func (g *Grid) Initialize(liveProbability float64, rng RandomSource) {
	for r := range g.rows {
		for c := range g.cols {
			g.cells[r][c] = Cell{Alive: rng.Float64() < liveProbability}
		}
	}
	g.initialized = true
}

func (g *Grid) inBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

func (g *Grid) outOfBounds(op string, row, col int) error {
	return errors.Wrapf(ErrOutOfBounds, "[%s] (%d,%d) outside %dx%d grid", op, row, col, g.rows, g.cols)
}

// Cell returns the cell at (row, col)
func (g *Grid) Cell(row, col int) (Cell, error) {
	if !g.inBounds(row, col) {
		return Cell{}, g.outOfBounds("Grid.Cell", row, col)
	}
	return g.cells[row][col], nil
}

// Set sets a cell to alive (true) or dead (false) without locking it
func (g *Grid) Set(row, col int, alive bool) error {
	if !g.inBounds(row, col) {
		return g.outOfBounds("Grid.Set", row, col)
	}
	g.cells[row][col].Alive = alive
	return nil
}

// Toggle flips the cell at (row, col) and locks it for the next transition
func (g *Grid) Toggle(row, col int) error {
	if !g.inBounds(row, col) {
		return g.outOfBounds("Grid.Toggle", row, col)
	}
	cell := &g.cells[row][col]
	cell.Alive = !cell.Alive
	cell.Locked = true
	return nil
}

// CountNeighbors counts living Moore neighbors of (row, col). Off-grid neighbors count as dead.
func (g *Grid) CountNeighbors(row, col int) int {
	count := 0
	for _, off := range rules.NeighborOffsets {
		nr, nc := row+off[0], col+off[1]
		if g.inBounds(nr, nc) && g.cells[nr][nc].Alive {
			count++
		}
	}
	return count
}

// Snapshot returns a deep copy of the cell matrix
func (g *Grid) Snapshot() [][]Cell {
	out := make([][]Cell, g.rows)
	for r := range g.rows {
		out[r] = make([]Cell, g.cols)
		copy(out[r], g.cells[r])
	}
	return out
}

// Clone returns an independent copy of the grid
func (g *Grid) Clone() *Grid {
	return &Grid{
		rows:        g.rows,
		cols:        g.cols,
		cells:       g.Snapshot(),
		initialized: g.initialized,
	}
}

// CountLivingCells returns the total number of living cells
func (g *Grid) CountLivingCells() (count int) {
	for r := range g.rows {
		for c := range g.cols {
			if g.cells[r][c].Alive {
				count++
			}
		}
	}
	return
}

// CountLockedCells returns the number of cells awaiting their lock to clear
func (g *Grid) CountLockedCells() (count int) {
	for r := range g.rows {
		for c := range g.cols {
			if g.cells[r][c].Locked {
				count++
			}
		}
	}
	return
}

// GetGridHash returns an MD5 hash of the alive pattern
func (g *Grid) GetGridHash() string {
	h := md5.New()
	for r := range g.rows {
		for c := range g.cols {
			if g.cells[r][c].Alive {
				h.Write([]byte{1})
			} else {
				h.Write([]byte{0})
			}
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Diff returns the coordinates whose alive value differs between a and b.
// Grids of different shape are reported as every cell of b.
func Diff(a, b *Grid) mapset.Set[Coord] {
	changed := mapset.New[Coord]()
	if b == nil {
		return changed
	}
	sameShape := a != nil && a.rows == b.rows && a.cols == b.cols
	for r := range b.rows {
		for c := range b.cols {
			if !sameShape || a.cells[r][c].Alive != b.cells[r][c].Alive {
				changed.Put(Coord{Row: r, Col: c})
			}
		}
	}
	return changed
}

// AddGlider adds a glider pattern with its top-left corner at (startRow, startCol).
// Cells falling outside the grid are skipped.
func (g *Grid) AddGlider(startRow, startCol int) {
	pattern := [][]bool{
		{false, true, false},
		{false, false, true},
		{true, true, true},
	}

	for r, row := range pattern {
		for c, cell := range row {
			_ = g.Set(startRow+r, startCol+c, cell)
		}
	}
}

// AddOscillator adds a horizontal blinker starting at (startRow, startCol)
func (g *Grid) AddOscillator(startRow, startCol int) {
	for c := range 3 {
		_ = g.Set(startRow, startCol+c, true)
	}
}

// AddInterestingPatterns stamps gliders and blinkers onto boards large enough to hold them
func (g *Grid) AddInterestingPatterns() {
	if g.rows < 10 || g.cols < 10 {
		return
	}
	g.AddGlider(5, 5)
	if g.cols >= 20 && g.rows >= 15 {
		g.AddGlider(5, g.cols-8)
	}

	g.AddOscillator(g.rows/4, g.cols/4)
	if g.cols >= 30 {
		g.AddOscillator(3*g.rows/4, 3*g.cols/4)
	}
}
