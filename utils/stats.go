package utils

import "time"

// populationSmoothing is the weight of the newest sample in AveragePopulation
const populationSmoothing = 0.1

// Stats tracks throughput and population for one session since its last reset
type Stats struct {
	StartTime            time.Time
	TotalGenerations     int
	GenerationsPerSecond float64
	ActiveCells          int
	PeakPopulation       int
	AveragePopulation    float64
	LockedCells          int

	samples int
}

func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

// Record folds one transition into the counters. elapsed is the time since the
// previous transition; a non-positive value leaves the rate unchanged.
func (s *Stats) Record(generation, population int, elapsed time.Duration) {
	s.TotalGenerations = generation
	s.ActiveCells = population
	s.PeakPopulation = max(s.PeakPopulation, population)
	if elapsed > 0 {
		s.GenerationsPerSecond = float64(time.Second) / float64(elapsed)
	}

	s.samples++
	if s.samples == 1 {
		s.AveragePopulation = float64(population)
		return
	}
	s.AveragePopulation += populationSmoothing * (float64(population) - s.AveragePopulation)
}

// Runtime is the wall time since the counters started
func (s Stats) Runtime() time.Duration {
	return time.Since(s.StartTime)
}
