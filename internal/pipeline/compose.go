package pipeline

import (
	"fmt"
	"strings"

	"github.com/jamroute/jamroute/internal/congestion"
	"github.com/jamroute/jamroute/internal/weather"
)

// composeSummary renders the forecast into one sentence.
func composeSummary(level congestion.Level, hourly []congestion.ForecastEntry, impact weather.Impact) string {
	highHours := highCongestionHours(hourly)

	var sb strings.Builder
	switch {
	case len(highHours) > 0:
		sb.WriteString("Heavy traffic expected around " + joinHours(highHours))
	case level >= congestion.LevelHeavy:
		sb.WriteString("Congestion should ease over the next few hours")
	case len(hourly) > 0:
		sb.WriteString(fmt.Sprintf("Conditions expected to stay %s or better over the next %d hours",
			worstLevel(hourly), len(hourly)))
	default:
		sb.WriteString("No forecast available")
	}

	if impact != weather.ImpactNone {
		sb.WriteString("; weather is affecting traffic conditions")
	}
	sb.WriteString(".")
	return sb.String()
}

// composeRecommendation selects from a bounded menu of recommendation
// fragments by simple condition checks. Deterministic: same signals, same
// text.
func composeRecommendation(level congestion.Level, hourly []congestion.ForecastEntry, impact weather.Impact) string {
	highHours := highCongestionHours(hourly)

	var parts []string
	if level >= congestion.LevelHeavy {
		parts = append(parts, "Consider alternate routes or delaying your trip")
	}
	if len(highHours) > 0 {
		parts = append(parts, "Avoid traveling around "+joinHours(highHours)+" if possible")
	}
	if impact >= weather.ImpactModerate {
		parts = append(parts, "Allow extra travel time due to weather conditions")
	}
	if len(parts) == 0 {
		if level <= congestion.LevelLight && impact == weather.ImpactNone {
			return "Good time to travel - conditions are clear."
		}
		return "No special precautions needed."
	}

	return strings.Join(parts, ". ") + "."
}

// highCongestionHours returns the forecast hours at heavy or worse.
func highCongestionHours(hourly []congestion.ForecastEntry) []int {
	var hours []int
	for _, entry := range hourly {
		if entry.Level >= congestion.LevelHeavy {
			hours = append(hours, entry.Hour)
		}
	}
	return hours
}

// worstLevel returns the most severe level in the forecast.
func worstLevel(hourly []congestion.ForecastEntry) congestion.Level {
	worst := congestion.LevelClear
	for _, entry := range hourly {
		if entry.Level > worst {
			worst = entry.Level
		}
	}
	return worst
}

// joinHours formats hours of day as a readable list.
func joinHours(hours []int) string {
	formatted := make([]string, len(hours))
	for i, h := range hours {
		formatted[i] = formatHour(h)
	}
	if len(formatted) == 1 {
		return formatted[0]
	}
	return strings.Join(formatted[:len(formatted)-1], ", ") + " and " + formatted[len(formatted)-1]
}

// formatHour renders an hour of day in 12-hour clock form.
func formatHour(hour int) string {
	switch {
	case hour == 0:
		return "12:00 AM"
	case hour == 12:
		return "12:00 PM"
	case hour < 12:
		return fmt.Sprintf("%d:00 AM", hour)
	default:
		return fmt.Sprintf("%d:00 PM", hour-12)
	}
}
