package model

import (
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/go-gol-board/rules"
)

// TransitionOptions tunes how NextGeneration computes its result
type TransitionOptions struct {
	// Parallel splits rows across one worker per CPU
	Parallel bool
	// Pool supplies the destination grid when it holds grids of the same shape
	Pool *GridPool
}

// NextGeneration computes the following generation without mutating g.
// Locked cells keep their current alive value; every cell in the result is unlocked.
func (g *Grid) NextGeneration(opts TransitionOptions) (*Grid, error) {
	if !g.IsInitialized() {
		return nil, errors.Wrap(ErrNotInitialized, "[Grid.NextGeneration]")
	}

	var next *Grid
	if opts.Pool.Fits(g) {
		next = opts.Pool.Get()
	} else {
		next = newGrid(g.rows, g.cols)
	}

	if opts.Parallel {
		g.nextGenerationParallel(next)
	} else {
		g.nextRows(next, 0, g.rows)
	}

	next.initialized = true
	return next, nil
}

// nextRows fills rows [startRow, endRow) of next from g
func (g *Grid) nextRows(next *Grid, startRow, endRow int) {
	for r := startRow; r < endRow; r++ {
		for c := range g.cols {
			cur := g.cells[r][c]
			alive := cur.Alive
			if !cur.Locked {
				alive = rules.ApplyConwayRules(g.CountNeighbors(r, c), cur.Alive)
			}
			next.cells[r][c] = Cell{Alive: alive}
		}
	}
}

// nextGenerationParallel calculates the next generation using one worker per CPU
func (g *Grid) nextGenerationParallel(next *Grid) {
	var (
		eg            errgroup.Group
		numWorkers    = runtime.NumCPU()
		rowsPerWorker = (g.rows + numWorkers - 1) / numWorkers // Ceiling division
	)

	for i := range numWorkers {
		var (
			startRow = i * rowsPerWorker
			endRow   = min(startRow+rowsPerWorker, g.rows)
		)
		if startRow >= g.rows {
			break
		}

		eg.Go(func() error {
			g.nextRows(next, startRow, endRow)
			return nil
		})
	}

	// workers never fail; Wait only joins them
	_ = eg.Wait()
}
