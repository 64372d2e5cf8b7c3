// Package weather provides current and short-range forecast weather for the
// city and derives its expected impact on traffic flow.
package weather

import (
	"errors"
	"time"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// Condition is the coarse weather condition category.
type Condition string

// Condition categories, mapped from the provider's main classification.
const (
	ConditionClear        Condition = "Clear"
	ConditionClouds       Condition = "Clouds"
	ConditionRain         Condition = "Rain"
	ConditionDrizzle      Condition = "Drizzle"
	ConditionThunderstorm Condition = "Thunderstorm"
	ConditionMist         Condition = "Mist"
	ConditionFog          Condition = "Fog"
	ConditionHaze         Condition = "Haze"
	ConditionDust         Condition = "Dust"
	ConditionUnknown      Condition = "Unknown"
)

// Impact is the expected traffic impact of weather. Ordered: escalation
// compares impacts and only ever raises congestion severity.
type Impact int

// Impact severities, least to most severe.
const (
	ImpactNone Impact = iota
	ImpactLight
	ImpactModerate
	ImpactSevere
)

// String returns the wire name of the impact.
func (i Impact) String() string {
	switch i {
	case ImpactNone:
		return "none"
	case ImpactLight:
		return "light"
	case ImpactModerate:
		return "moderate"
	default:
		return "severe"
	}
}

// MarshalJSON encodes the impact as its wire name.
func (i Impact) MarshalJSON() ([]byte, error) {
	return []byte(`"` + i.String() + `"`), nil
}

// Observation is the current weather at a point.
type Observation struct {
	Condition   Condition
	Description string
	Temperature float64 // Celsius
	RainOneHour float64 // mm of rain in the last hour
	ObservedAt  time.Time
}

// HourlyEntry is forecast weather for one upcoming hour.
type HourlyEntry struct {
	Hour        int // hour of day, 0-23
	HoursAhead  int // offset from now, 1-based
	Condition   Condition
	Description string
	Temperature float64
	RainOneHour float64
	Impact      Impact
}

// Snapshot bundles current weather, the short-range hourly forecast, and the
// derived traffic impact. The pipeline always has a Snapshot: provider
// failures substitute DefaultSnapshot rather than erroring.
type Snapshot struct {
	Current   Observation
	Impact    Impact
	Hourly    []HourlyEntry
	Default   bool // true when this is the neutral fallback snapshot
	FetchedAt time.Time
}

// DefaultSnapshot is the neutral snapshot substituted when the provider is
// unreachable: clear sky at the Lagos baseline temperature, no impact.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Current: Observation{
			Condition:   ConditionClear,
			Description: "clear sky",
			Temperature: 27,
			ObservedAt:  time.Now(),
		},
		Impact:    ImpactNone,
		Default:   true,
		FetchedAt: time.Now(),
	}
}
