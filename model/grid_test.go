package model

import (
	"math/rand/v2"
	"testing"

	"github.com/pkg/errors"
)

type seqSource struct {
	vals []float64
	i    int
}

func (s *seqSource) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func mustGrid(t *testing.T, rows [][]bool) *Grid {
	t.Helper()
	g, err := NewGridFromRows(rows)
	if err != nil {
		t.Fatalf("NewGridFromRows: %v", err)
	}
	return g
}

func TestNewGridRejectsBadDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 5}, {5, 0}, {-1, 3}} {
		if _, err := NewGrid(dims[0], dims[1]); !errors.Is(err, ErrInvalidDimensions) {
			t.Fatalf("NewGrid(%d,%d) err = %v, expected ErrInvalidDimensions", dims[0], dims[1], err)
		}
	}
	if _, err := NewGridFromRows([][]bool{{true, false}, {true}}); !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("ragged rows err = %v, expected ErrInvalidDimensions", err)
	}
}

func TestNewGridIsDeadAndUninitialized(t *testing.T) {
	g, err := NewGrid(20, 30)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	if g.GetRows() != 20 || g.GetCols() != 30 {
		t.Fatalf("dimensions = %dx%d, expected 20x30", g.GetRows(), g.GetCols())
	}
	if g.IsInitialized() {
		t.Fatalf("fresh grid reports initialized")
	}
	if n := g.CountLivingCells(); n != 0 {
		t.Fatalf("fresh grid has %d living cells", n)
	}
}

func TestInitializeUsesProbabilityThreshold(t *testing.T) {
	g, _ := NewGrid(2, 2)
	_ = g.Toggle(0, 0)
	g.Initialize(0.5, &seqSource{vals: []float64{0.1, 0.9, 0.5, 0.49}})

	want := [][]bool{{true, false}, {false, true}}
	for r := range 2 {
		for c := range 2 {
			cell, _ := g.Cell(r, c)
			if cell.Alive != want[r][c] {
				t.Fatalf("cell (%d,%d) alive=%v, expected %v", r, c, cell.Alive, want[r][c])
			}
			if cell.Locked {
				t.Fatalf("cell (%d,%d) still locked after Initialize", r, c)
			}
		}
	}
	if !g.IsInitialized() {
		t.Fatalf("grid not initialized after Initialize")
	}
}

func TestInitializeExtremes(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 0))
	g, _ := NewGrid(30, 50)

	g.Initialize(0, rng)
	if n := g.CountLivingCells(); n != 0 {
		t.Fatalf("probability 0 produced %d living cells", n)
	}
	g.Initialize(1, rng)
	if n := g.CountLivingCells(); n != 30*50 {
		t.Fatalf("probability 1 produced %d living cells, expected %d", n, 30*50)
	}
}

func TestToggleFlipsAndLocks(t *testing.T) {
	g := mustGrid(t, [][]bool{{false, true}})

	if err := g.Toggle(0, 0); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if err := g.Toggle(0, 1); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	for col, want := range []bool{true, false} {
		cell, _ := g.Cell(0, col)
		if cell.Alive != want || !cell.Locked {
			t.Fatalf("cell (0,%d) = %+v, expected alive=%v locked", col, cell, want)
		}
	}
	if n := g.CountLockedCells(); n != 2 {
		t.Fatalf("locked cells = %d, expected 2", n)
	}
}

func TestOutOfBounds(t *testing.T) {
	g, _ := NewGrid(3, 4)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 4}} {
		if err := g.Toggle(p[0], p[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("Toggle%v err = %v, expected ErrOutOfBounds", p, err)
		}
		if _, err := g.Cell(p[0], p[1]); errors.Cause(err) != ErrOutOfBounds {
			t.Fatalf("Cell%v err = %v, expected ErrOutOfBounds", p, err)
		}
		if err := g.Set(p[0], p[1], true); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("Set%v err = %v, expected ErrOutOfBounds", p, err)
		}
	}
}

func TestCountNeighborsClipsAtEdges(t *testing.T) {
	g := mustGrid(t, [][]bool{
		{true, true, true},
		{true, true, true},
		{true, true, true},
	})
	for _, tc := range []struct {
		row, col, want int
	}{
		{0, 0, 3},
		{0, 1, 5},
		{1, 1, 8},
		{2, 2, 3},
		{2, 1, 5},
	} {
		if got := g.CountNeighbors(tc.row, tc.col); got != tc.want {
			t.Fatalf("CountNeighbors(%d,%d) = %d, expected %d", tc.row, tc.col, got, tc.want)
		}
	}
}

func TestSnapshotAndCloneAreIndependent(t *testing.T) {
	g := mustGrid(t, [][]bool{{true, false}})
	snap := g.Snapshot()
	clone := g.Clone()

	_ = g.Toggle(0, 1)

	if snap[0][1].Alive || snap[0][1].Locked {
		t.Fatalf("snapshot observed later toggle")
	}
	if cell, _ := clone.Cell(0, 1); cell.Alive || cell.Locked {
		t.Fatalf("clone observed later toggle")
	}
	if !clone.IsInitialized() {
		t.Fatalf("clone lost initialized flag")
	}
}

func TestDiff(t *testing.T) {
	a := mustGrid(t, [][]bool{{true, false}, {false, false}})
	b := mustGrid(t, [][]bool{{true, true}, {false, true}})

	changed := Diff(a, b)
	if changed.Size() != 2 || !changed.Has(Coord{0, 1}) || !changed.Has(Coord{1, 1}) {
		t.Fatalf("Diff returned unexpected set of size %d", changed.Size())
	}

	if full := Diff(nil, b); full.Size() != 4 {
		t.Fatalf("Diff against nil = %d cells, expected 4", full.Size())
	}
}

func TestGetGridHashTracksAliveOnly(t *testing.T) {
	a := mustGrid(t, [][]bool{{true, false}})
	b := mustGrid(t, [][]bool{{true, false}})
	_ = b.Toggle(0, 1)
	_ = b.Toggle(0, 1)

	if a.GetGridHash() != b.GetGridHash() {
		t.Fatalf("hash differs for equal alive patterns")
	}
	_ = b.Toggle(0, 1)
	if a.GetGridHash() == b.GetGridHash() {
		t.Fatalf("hash equal for different alive patterns")
	}
}

func TestAddInterestingPatterns(t *testing.T) {
	g, _ := NewGrid(30, 50)
	g.AddInterestingPatterns()
	// two gliders and two blinkers
	if n := g.CountLivingCells(); n != 2*5+2*3 {
		t.Fatalf("living cells = %d, expected %d", n, 16)
	}

	small, _ := NewGrid(5, 5)
	small.AddInterestingPatterns()
	if n := small.CountLivingCells(); n != 0 {
		t.Fatalf("small grid received %d living cells", n)
	}
}
