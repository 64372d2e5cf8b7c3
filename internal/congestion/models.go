// Package congestion classifies observed traffic conditions and forecasts
// congestion levels for upcoming hours.
package congestion

// Level is a discrete congestion severity. The ordering matters: escalation
// logic compares levels and may only ever raise them.
type Level int

// Congestion levels, least to most severe.
const (
	LevelClear Level = iota
	LevelLight
	LevelModerate
	LevelHeavy
	LevelSevere
)

// String returns the wire name of the level.
func (l Level) String() string {
	switch l {
	case LevelClear:
		return "clear"
	case LevelLight:
		return "light"
	case LevelModerate:
		return "moderate"
	case LevelHeavy:
		return "heavy"
	case LevelSevere:
		return "severe"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the level as its wire name.
func (l Level) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

// Confidence indicates how much signal backs a forecast entry.
type Confidence string

// Confidence tags.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ForecastEntry is the predicted congestion level for one hour of the day.
type ForecastEntry struct {
	// Hour is the hour of day, 0-23.
	Hour int

	// Level is the predicted congestion level for that hour.
	Level Level

	// Confidence reflects whether the level came from historical samples
	// (high/medium by sample count) or the static diurnal fallback (medium).
	Confidence Confidence

	// Samples is the number of historical observations backing the entry;
	// zero when the diurnal fallback was used.
	Samples int
}
