package weather

import (
	"fmt"

	"github.com/jamroute/jamroute/internal/congestion"
)

// Adjustment is the result of folding weather impact into a congestion
// assessment.
type Adjustment struct {
	// Level is the possibly-escalated instantaneous congestion level.
	Level congestion.Level

	// Escalated is true when weather raised the level.
	Escalated bool

	// Alerts are per-forecast-hour weather warnings, phrased with the
	// hours-ahead count.
	Alerts []string
}

// Adjust folds a weather snapshot into the instantaneous congestion level and
// generates per-hour alerts from the forecast.
//
// Escalation applies to the instantaneous level only: severe weather upgrades
// clear or light to moderate, moderate weather upgrades clear to light, and
// weather never downgrades severity. Hourly congestion entries keep their own
// data-derived levels; forecast weather risk surfaces as textual alerts, one
// per forecast hour with a non-none impact.
func Adjust(level congestion.Level, snapshot Snapshot) Adjustment {
	adjusted := escalate(level, snapshot.Impact)

	var alerts []string
	for _, h := range snapshot.Hourly {
		if h.Impact == ImpactNone {
			continue
		}
		alerts = append(alerts, hourAlert(h))
	}

	return Adjustment{
		Level:     adjusted,
		Escalated: adjusted != level,
		Alerts:    alerts,
	}
}

// escalate applies the upgrade rules. The result is never below the input
// level.
func escalate(level congestion.Level, impact Impact) congestion.Level {
	switch impact {
	case ImpactSevere:
		if level <= congestion.LevelLight {
			return congestion.LevelModerate
		}
	case ImpactModerate:
		if level == congestion.LevelClear {
			return congestion.LevelLight
		}
	}
	return level
}

// hourAlert phrases a forecast-hour weather warning.
func hourAlert(h HourlyEntry) string {
	unit := "hours"
	if h.HoursAhead == 1 {
		unit = "hour"
	}

	switch h.Impact {
	case ImpactSevere:
		return fmt.Sprintf("%s expected in %d %s - expect significant traffic delays", describe(h), h.HoursAhead, unit)
	case ImpactModerate:
		return fmt.Sprintf("%s expected in %d %s - traffic may slow down", describe(h), h.HoursAhead, unit)
	default:
		return fmt.Sprintf("%s expected in %d %s - minor traffic impact possible", describe(h), h.HoursAhead, unit)
	}
}

// describe returns a readable condition name for alerts.
func describe(h HourlyEntry) string {
	if h.Condition == ConditionRain {
		switch {
		case h.RainOneHour >= heavyRainMM:
			return "Heavy rain"
		case h.RainOneHour >= moderateRainMM:
			return "Moderate rain"
		default:
			return "Light rain"
		}
	}
	if h.Description != "" {
		return capitalize(h.Description)
	}
	return string(h.Condition)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
