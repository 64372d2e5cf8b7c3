// Package history provides access to recorded traffic observations for the
// known bottlenecks and assembles the fixed-size feature windows the sequence
// model consumes.
package history

import (
	"errors"
	"time"
)

// History errors.
var (
	// ErrInsufficientData is returned when a bottleneck has fewer recorded
	// observations than a full feature window requires. It is a reported,
	// recoverable condition, not a server failure.
	ErrInsufficientData = errors.New("insufficient historical data")
)

// Observation is a single recorded traffic measurement at a bottleneck.
// Observations are immutable once recorded.
type Observation struct {
	BottleneckID    string    `csv:"collection_location"`
	Timestamp       time.Time `csv:"timestamp"`
	CurrentSpeed    float64   `csv:"current_speed"`
	FreeFlowSpeed   float64   `csv:"free_flow_speed"`
	DelaySeconds    float64   `csv:"delay_seconds"`
	Hour            int       `csv:"hour"`
	DayOfWeek       int       `csv:"day_of_week"`
	IsRushHour      bool      `csv:"is_rush_hour"`
	IsWeekend       bool      `csv:"is_weekend"`
	IsHotspot       bool      `csv:"is_hotspot"`
	CongestionRatio float64   `csv:"congestion_ratio"`
}

// Window is an ordered feature window of observations for one bottleneck,
// chronological (oldest first), exactly the model's expected length.
type Window struct {
	BottleneckID string
	Observations []Observation
}

// Len returns the number of observations in the window.
func (w Window) Len() int {
	return len(w.Observations)
}
