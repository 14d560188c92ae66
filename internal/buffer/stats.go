package buffer

import (
	"fmt"
	"math"
)

// Stats keeps running statistics of a stream of numbers.
type Stats struct {
	count          int
	sum            float64
	min, max       float64
	mean, dSquared float64
}

// NewStats creates a new Stats.
func NewStats() *Stats {
	return &Stats{
		min: math.MaxFloat64,
		max: -math.MaxFloat64,
	}
}

// Push adds another element to the set.
func (s *Stats) Push(v float64) {
	s.count++
	s.sum += v
	diff := (v - s.mean) / float64(s.count)
	mean := s.mean + diff
	s.dSquared += (v - mean) * (v - s.mean)
	s.mean = mean

	if s.min > v {
		s.min = v
	}
	if s.max < v {
		s.max = v
	}
}

// Avg returns the average value of the set.
func (s Stats) Avg() float64 {
	return s.mean
}

// Sum returns the sum of all elements.
func (s Stats) Sum() float64 {
	return s.sum
}

// Count returns the number of elements.
func (s Stats) Count() int {
	return s.count
}

// Min returns the smallest element seen so far.
func (s Stats) Min() float64 {
	return s.min
}

// Max returns the largest element seen so far.
func (s Stats) Max() float64 {
	return s.max
}

// Variance is the population variance of the set.
func (s Stats) Variance() float64 {
	if s.count == 0 {
		return 0
	}
	return s.dSquared / float64(s.count)
}

// StDev is the population standard deviation of the set.
func (s Stats) StDev() float64 {
	return math.Sqrt(s.Variance())
}

// StatsCollector tracks running statistics for a fixed number of named dimensions.
type StatsCollector struct {
	names []string
	stats []*Stats
}

// NewStatsCollector creates a collector with one Stats per name.
func NewStatsCollector(names ...string) *StatsCollector {
	stats := make([]*Stats, len(names))
	for i := range names {
		stats[i] = NewStats()
	}
	return &StatsCollector{
		names: names,
		stats: stats,
	}
}

// Push pushes each value to the corresponding dimension.
func (sc *StatsCollector) Push(v ...float64) {
	if len(v) != len(sc.stats) {
		panic(fmt.Sprintf("inconsistent dimensions %d vs %d", len(v), len(sc.stats)))
	}
	for i := 0; i < len(sc.stats); i++ {
		sc.stats[i].Push(v[i])
	}
}

// Size returns the number of pushed tuples.
func (sc *StatsCollector) Size() int {
	return sc.stats[0].count
}

// Averages returns the running average for every dimension, keyed by name.
func (sc *StatsCollector) Averages() map[string]float64 {
	avg := make(map[string]float64, len(sc.names))
	for i, name := range sc.names {
		avg[name] = sc.stats[i].Avg()
	}
	return avg
}
