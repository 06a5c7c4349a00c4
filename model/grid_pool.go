package model

import "sync"

// GridPool recycles grids of one fixed shape between generations.
// A nil *GridPool is valid and never reuses anything.
type GridPool struct {
	rows, cols int
	pool       sync.Pool
}

// NewGridPool returns a pool of rows x cols grids
func NewGridPool(rows, cols int) *GridPool {
	p := &GridPool{rows: rows, cols: cols}
	p.pool.New = func() any {
		return newGrid(p.rows, p.cols)
	}
	return p
}

// Fits reports whether g has the pool's shape
func (p *GridPool) Fits(g *Grid) bool {
	return p != nil && g != nil && g.rows == p.rows && g.cols == p.cols
}

// Get returns a dead, unlocked, uninitialized grid of the pool's shape
func (p *GridPool) Get() *Grid {
	return p.pool.Get().(*Grid)
}

// Put clears g and keeps it for reuse. Grids of another shape are left to the collector.
func (p *GridPool) Put(g *Grid) {
	if !p.Fits(g) {
		return
	}
	g.Clear()
	p.pool.Put(g)
}
