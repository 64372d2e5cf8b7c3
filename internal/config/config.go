// Package config holds the static tuning tables for the congestion pipeline.
// Everything here is loaded once at startup, validated, and immutable for the
// process lifetime; a different city or dataset is a config change, not a
// code change.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jamroute/jamroute/internal/congestion"
	"github.com/jamroute/jamroute/internal/geo"
	"github.com/jamroute/jamroute/internal/weather"
)

// BottleneckEntry is one row of the bottleneck coordinate table.
type BottleneckEntry struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ThresholdEntry is one row of the classification threshold table.
type ThresholdEntry struct {
	MinRatio float64 `json:"min_ratio"`
	Level    string  `json:"level"`
}

// Config is the full static configuration.
type Config struct {
	// Bottlenecks is the known congestion point table.
	Bottlenecks []BottleneckEntry `json:"bottlenecks"`

	// DistanceThresholdDegrees is the resolver cutoff in degrees.
	DistanceThresholdDegrees float64 `json:"distance_threshold_degrees"`

	// WindowSize is the feature window length the model was trained on.
	WindowSize int `json:"window_size"`

	// ForecastHorizonHours is how many hours ahead to forecast.
	ForecastHorizonHours int `json:"forecast_horizon_hours"`

	// Thresholds is the ratio-to-level classification table, descending.
	Thresholds []ThresholdEntry `json:"thresholds"`

	// DiurnalPattern maps each hour 0-23 to an expected level name.
	DiurnalPattern map[string]string `json:"diurnal_pattern"`

	// WeatherImpact maps condition category names to impact names,
	// overriding the default rule table when non-empty.
	WeatherImpact map[string]string `json:"weather_impact,omitempty"`

	// WeatherTimeout bounds the weather fetch per request.
	WeatherTimeout time.Duration `json:"-"`

	// WeatherTimeoutSeconds is the JSON-facing form of WeatherTimeout.
	WeatherTimeoutSeconds float64 `json:"weather_timeout_seconds"`
}

// Default returns the configuration the model was shipped with: the nine
// Lagos bottlenecks, a 0.1 degree resolver cutoff, a six-row window, and a
// three-hour forecast horizon.
func Default() Config {
	return Config{
		Bottlenecks: []BottleneckEntry{
			{ID: "Third_Mainland_Bridge", Lat: 6.5000, Lon: 3.4025},
			{ID: "Carter_Bridge", Lat: 6.4669, Lon: 3.3850},
			{ID: "Eko_Bridge", Lat: 6.4641, Lon: 3.3803},
			{ID: "CMS_Junction", Lat: 6.4500, Lon: 3.4000},
			{ID: "Marina_Road", Lat: 6.4500, Lon: 3.4000},
			{ID: "Obalende", Lat: 6.4447, Lon: 3.4175},
			{ID: "Adeniji_Adele", Lat: 6.4743, Lon: 3.3904},
			{ID: "Falomo_Roundabout", Lat: 6.4444, Lon: 3.4272},
			{ID: "Awolowo_Road", Lat: 6.4419, Lon: 3.4190},
		},
		DistanceThresholdDegrees: 0.1,
		WindowSize:               6,
		ForecastHorizonHours:     3,
		Thresholds: []ThresholdEntry{
			{MinRatio: 0.8, Level: "clear"},
			{MinRatio: 0.6, Level: "light"},
			{MinRatio: 0.4, Level: "moderate"},
			{MinRatio: 0.2, Level: "heavy"},
		},
		DiurnalPattern:        diurnalToNames(congestion.DefaultDiurnalPattern()),
		WeatherTimeout:        3 * time.Second,
		WeatherTimeoutSeconds: 3,
	}
}

// Load reads a JSON config file over the defaults: fields present in the
// file replace the default tables wholesale.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config file %s: %w", path, err)
	}

	if cfg.WeatherTimeoutSeconds > 0 {
		cfg.WeatherTimeout = time.Duration(cfg.WeatherTimeoutSeconds * float64(time.Second))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks structural invariants so malformed config fails at startup
// rather than at request time.
func (c Config) Validate() error {
	if len(c.Bottlenecks) == 0 {
		return fmt.Errorf("no bottlenecks configured")
	}
	seen := make(map[string]bool, len(c.Bottlenecks))
	for _, b := range c.Bottlenecks {
		if b.ID == "" {
			return fmt.Errorf("bottleneck with empty id")
		}
		if seen[b.ID] {
			return fmt.Errorf("duplicate bottleneck id %q", b.ID)
		}
		seen[b.ID] = true
		if b.Lat < -90 || b.Lat > 90 || b.Lon < -180 || b.Lon > 180 {
			return fmt.Errorf("bottleneck %q has out-of-range coordinates", b.ID)
		}
	}

	if c.DistanceThresholdDegrees <= 0 {
		return fmt.Errorf("distance threshold must be positive")
	}
	if c.WindowSize <= 0 {
		return fmt.Errorf("window size must be positive")
	}
	if c.ForecastHorizonHours <= 0 || c.ForecastHorizonHours > 24 {
		return fmt.Errorf("forecast horizon must be between 1 and 24 hours")
	}

	if len(c.Thresholds) == 0 {
		return fmt.Errorf("no classification thresholds configured")
	}
	prev := 2.0
	for _, t := range c.Thresholds {
		if _, err := parseLevel(t.Level); err != nil {
			return err
		}
		if t.MinRatio >= prev {
			return fmt.Errorf("thresholds must be strictly descending, got %v after %v", t.MinRatio, prev)
		}
		if t.MinRatio < 0 {
			return fmt.Errorf("threshold ratio %v below zero", t.MinRatio)
		}
		prev = t.MinRatio
	}

	if len(c.DiurnalPattern) != 24 {
		return fmt.Errorf("diurnal pattern must cover all 24 hours, got %d", len(c.DiurnalPattern))
	}
	for hour := 0; hour < 24; hour++ {
		name, ok := c.DiurnalPattern[fmt.Sprintf("%d", hour)]
		if !ok {
			return fmt.Errorf("diurnal pattern missing hour %d", hour)
		}
		if _, err := parseLevel(name); err != nil {
			return fmt.Errorf("diurnal pattern hour %d: %w", hour, err)
		}
	}

	for condition, impactName := range c.WeatherImpact {
		if condition == "" {
			return fmt.Errorf("weather impact rule with empty condition")
		}
		if _, err := parseImpact(impactName); err != nil {
			return fmt.Errorf("weather impact rule %q: %w", condition, err)
		}
	}

	return nil
}

// GeoBottlenecks converts the table to resolver bottlenecks.
func (c Config) GeoBottlenecks() []geo.Bottleneck {
	out := make([]geo.Bottleneck, 0, len(c.Bottlenecks))
	for _, b := range c.Bottlenecks {
		out = append(out, geo.Bottleneck{
			ID:       b.ID,
			Location: geo.Coordinate{Lat: b.Lat, Lon: b.Lon},
		})
	}
	return out
}

// ClassifyThresholds converts the threshold table for the classifier.
// Call only after Validate.
func (c Config) ClassifyThresholds() []congestion.Threshold {
	out := make([]congestion.Threshold, 0, len(c.Thresholds))
	for _, t := range c.Thresholds {
		level, _ := parseLevel(t.Level)
		out = append(out, congestion.Threshold{MinRatio: t.MinRatio, Level: level})
	}
	return out
}

// Diurnal converts the pattern table for the forecaster. Call only after
// Validate.
func (c Config) Diurnal() congestion.DiurnalPattern {
	var pattern congestion.DiurnalPattern
	for hour := 0; hour < 24; hour++ {
		level, _ := parseLevel(c.DiurnalPattern[fmt.Sprintf("%d", hour)])
		pattern[hour] = level
	}
	return pattern
}

// ImpactRules returns the weather impact rule table: the override map when
// configured, the default table otherwise. Call only after Validate.
func (c Config) ImpactRules() []weather.ImpactRule {
	if len(c.WeatherImpact) == 0 {
		return weather.DefaultImpactRules()
	}
	out := make([]weather.ImpactRule, 0, len(c.WeatherImpact))
	for condition, impactName := range c.WeatherImpact {
		impact, _ := parseImpact(impactName)
		out = append(out, weather.ImpactRule{
			Condition: weather.Condition(condition),
			Impact:    impact,
		})
	}
	return out
}

// parseImpact maps a config impact name to a weather impact.
func parseImpact(name string) (weather.Impact, error) {
	switch name {
	case "none":
		return weather.ImpactNone, nil
	case "light":
		return weather.ImpactLight, nil
	case "moderate":
		return weather.ImpactModerate, nil
	case "severe":
		return weather.ImpactSevere, nil
	default:
		return 0, fmt.Errorf("unknown weather impact %q", name)
	}
}

// parseLevel maps a config level name to a congestion level.
func parseLevel(name string) (congestion.Level, error) {
	switch name {
	case "clear":
		return congestion.LevelClear, nil
	case "light":
		return congestion.LevelLight, nil
	case "moderate":
		return congestion.LevelModerate, nil
	case "heavy":
		return congestion.LevelHeavy, nil
	case "severe":
		return congestion.LevelSevere, nil
	default:
		return 0, fmt.Errorf("unknown congestion level %q", name)
	}
}

// diurnalToNames renders a pattern as the JSON hour->name map.
func diurnalToNames(p congestion.DiurnalPattern) map[string]string {
	out := make(map[string]string, 24)
	for hour := 0; hour < 24; hour++ {
		out[fmt.Sprintf("%d", hour)] = p[hour].String()
	}
	return out
}
