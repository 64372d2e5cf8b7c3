package weather_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamroute/jamroute/internal/congestion"
	"github.com/jamroute/jamroute/internal/weather"
)

func snapshotWithImpact(impact weather.Impact) weather.Snapshot {
	return weather.Snapshot{Impact: impact}
}

func TestAdjust_Escalation(t *testing.T) {
	tests := []struct {
		name          string
		level         congestion.Level
		impact        weather.Impact
		want          congestion.Level
		wantEscalated bool
	}{
		{name: "severe upgrades clear", level: congestion.LevelClear, impact: weather.ImpactSevere, want: congestion.LevelModerate, wantEscalated: true},
		{name: "severe upgrades light", level: congestion.LevelLight, impact: weather.ImpactSevere, want: congestion.LevelModerate, wantEscalated: true},
		{name: "severe leaves moderate", level: congestion.LevelModerate, impact: weather.ImpactSevere, want: congestion.LevelModerate},
		{name: "severe leaves heavy", level: congestion.LevelHeavy, impact: weather.ImpactSevere, want: congestion.LevelHeavy},
		{name: "moderate upgrades clear", level: congestion.LevelClear, impact: weather.ImpactModerate, want: congestion.LevelLight, wantEscalated: true},
		{name: "moderate leaves light", level: congestion.LevelLight, impact: weather.ImpactModerate, want: congestion.LevelLight},
		{name: "light leaves clear", level: congestion.LevelClear, impact: weather.ImpactLight, want: congestion.LevelClear},
		{name: "none leaves everything", level: congestion.LevelSevere, impact: weather.ImpactNone, want: congestion.LevelSevere},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := weather.Adjust(tt.level, snapshotWithImpact(tt.impact))

			assert.Equal(t, tt.want, got.Level)
			assert.Equal(t, tt.wantEscalated, got.Escalated)
		})
	}
}

func TestAdjust_NeverDowngrades(t *testing.T) {
	levels := []congestion.Level{
		congestion.LevelClear,
		congestion.LevelLight,
		congestion.LevelModerate,
		congestion.LevelHeavy,
		congestion.LevelSevere,
	}
	impacts := []weather.Impact{
		weather.ImpactNone,
		weather.ImpactLight,
		weather.ImpactModerate,
		weather.ImpactSevere,
	}

	for _, level := range levels {
		for _, impact := range impacts {
			got := weather.Adjust(level, snapshotWithImpact(impact))
			assert.GreaterOrEqual(t, int(got.Level), int(level),
				"level %s impact %s", level, impact)
		}
	}
}

func TestAdjust_HourlyAlerts(t *testing.T) {
	snapshot := weather.Snapshot{
		Impact: weather.ImpactNone,
		Hourly: []weather.HourlyEntry{
			{HoursAhead: 1, Condition: weather.ConditionClear, Impact: weather.ImpactNone},
			{HoursAhead: 2, Condition: weather.ConditionRain, RainOneHour: 12, Impact: weather.ImpactSevere},
			{HoursAhead: 3, Condition: weather.ConditionRain, RainOneHour: 3.1, Impact: weather.ImpactModerate},
			{HoursAhead: 4, Condition: weather.ConditionDrizzle, Description: "light drizzle", Impact: weather.ImpactLight},
		},
	}

	got := weather.Adjust(congestion.LevelClear, snapshot)

	require.Len(t, got.Alerts, 3)
	assert.Equal(t, "Heavy rain expected in 2 hours - expect significant traffic delays", got.Alerts[0])
	assert.Equal(t, "Moderate rain expected in 3 hours - traffic may slow down", got.Alerts[1])
	assert.Equal(t, "Light drizzle expected in 4 hours - minor traffic impact possible", got.Alerts[2])
}

func TestAdjust_SingularHourPhrasing(t *testing.T) {
	snapshot := weather.Snapshot{
		Hourly: []weather.HourlyEntry{
			{HoursAhead: 1, Condition: weather.ConditionThunderstorm, Description: "thunderstorm", Impact: weather.ImpactSevere},
		},
	}

	got := weather.Adjust(congestion.LevelClear, snapshot)

	require.Len(t, got.Alerts, 1)
	assert.Equal(t, "Thunderstorm expected in 1 hour - expect significant traffic delays", got.Alerts[0])
}

func TestAdjust_NoAlertsWithoutForecastImpact(t *testing.T) {
	snapshot := weather.Snapshot{
		Hourly: []weather.HourlyEntry{
			{HoursAhead: 1, Condition: weather.ConditionClear, Impact: weather.ImpactNone},
			{HoursAhead: 2, Condition: weather.ConditionClouds, Impact: weather.ImpactNone},
		},
	}

	got := weather.Adjust(congestion.LevelLight, snapshot)

	assert.Empty(t, got.Alerts)
	assert.False(t, got.Escalated)
}
