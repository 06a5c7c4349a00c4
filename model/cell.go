package model

// Cell is a single board position
type Cell struct {
	Alive bool
	// Locked keeps Alive as-is through the next transition, then clears
	Locked bool
}

// Coord addresses a cell by row and column
type Coord struct {
	Row, Col int
}
