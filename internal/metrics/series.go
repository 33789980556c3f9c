// Package metrics implements the retention-bounded, per-server time-series
// store that accumulates dual health check results and answers windowed
// report queries.
package metrics

import (
	"sort"
	"time"
)

// DataPoint is a single timestamped sample in a Series.
type DataPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Series is an append-only, chronologically ordered sequence of samples.
// Points are only ever appended at the back or pruned from the front; they are
// never reordered or mutated in place.
//
// Series carries no lock of its own: all access is serialized by the owning
// Collector's mutex.
type Series struct {
	points []DataPoint
}

// NewSeries returns an empty Series.
func NewSeries() *Series {
	return &Series{}
}

// Record appends a sample taken now.
func (s *Series) Record(value float64) {
	s.RecordAt(time.Now().UTC(), value)
}

// RecordAt appends a sample with an explicit timestamp.
// Samples are assumed to arrive in chronological order.
func (s *Series) RecordAt(ts time.Time, value float64) {
	s.points = append(s.points, DataPoint{Timestamp: ts, Value: value})
}

// Len returns the number of retained samples.
func (s *Series) Len() int {
	return len(s.points)
}

// Points returns a copy of the retained samples.
func (s *Series) Points() []DataPoint {
	out := make([]DataPoint, len(s.points))
	copy(out, s.points)
	return out
}

// Average returns the mean of samples no older than the window, or 0 when the
// window holds no samples.
func (s *Series) Average(window time.Duration) float64 {
	values := s.windowValues(window)
	if len(values) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Percentile returns the p-th percentile (0-100) of samples within the window
// using nearest-rank selection, without interpolation.
func (s *Series) Percentile(p float64, window time.Duration) float64 {
	values := s.windowValues(window)
	if len(values) == 0 {
		return 0.0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	index := int((p / 100.0) * float64(len(sorted)))
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	if index < 0 {
		index = 0
	}

	return sorted[index]
}

// CleanupOlderThan prunes every sample older than the retention period,
// returning the number of samples removed. Remaining samples keep their order.
func (s *Series) CleanupOlderThan(retention time.Duration) int {
	cutoff := time.Now().UTC().Add(-retention)

	// Points are chronological, so find the first one inside the cutoff.
	keep := len(s.points)
	for i, p := range s.points {
		if !p.Timestamp.Before(cutoff) {
			keep = i
			break
		}
	}
	if keep == 0 {
		return 0
	}

	removed := keep
	s.points = append(s.points[:0:0], s.points[keep:]...)
	return removed
}

func (s *Series) windowValues(window time.Duration) []float64 {
	cutoff := time.Now().UTC().Add(-window)

	values := make([]float64, 0, len(s.points))
	for _, p := range s.points {
		if p.Timestamp.Before(cutoff) {
			continue
		}
		values = append(values, p.Value)
	}
	return values
}
