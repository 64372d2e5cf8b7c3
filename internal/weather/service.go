package weather

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Provider defines the interface for weather data providers.
type Provider interface {
	// Current fetches current weather for a location.
	Current(ctx context.Context, lat, lon float64) (*Observation, error)

	// Forecast fetches the hourly forecast for a location, nearest hours
	// first.
	Forecast(ctx context.Context, lat, lon float64) ([]HourlyEntry, error)

	// Name returns the provider name for logging.
	Name() string
}

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Provider is the weather data provider (required).
	Provider Provider

	// Impacts resolves conditions to traffic impacts. Nil selects the
	// default rule table.
	Impacts *ImpactTable

	// Timeout bounds the combined current+forecast fetch. After it expires
	// the default snapshot is substituted. Default: 3 seconds.
	Timeout time.Duration

	// ForecastHours is how many upcoming hours of weather to keep.
	// Default: 4.
	ForecastHours int

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service fetches weather snapshots with a hard degradation guarantee: a
// slow or failed provider yields the neutral default snapshot, never an
// error. The congestion pipeline must not fail because weather is down.
type Service struct {
	provider      Provider
	impacts       *ImpactTable
	timeout       time.Duration
	forecastHours int
	logger        zerolog.Logger
}

// NewService creates a weather service.
func NewService(cfg ServiceConfig) *Service {
	impacts := cfg.Impacts
	if impacts == nil {
		impacts = NewImpactTable(nil)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 3 * time.Second
	}

	forecastHours := cfg.ForecastHours
	if forecastHours == 0 {
		forecastHours = 4
	}

	return &Service{
		provider:      cfg.Provider,
		impacts:       impacts,
		timeout:       timeout,
		forecastHours: forecastHours,
		logger:        cfg.Logger,
	}
}

// CurrentAndForecast returns a Snapshot for the location. The single provider
// attempt is bounded by the configured timeout; any failure substitutes
// DefaultSnapshot, so callers always get a usable snapshot. Degradation is
// reported via Snapshot.Default, never as an error.
func (s *Service) CurrentAndForecast(ctx context.Context, lat, lon float64) Snapshot {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	current, err := s.provider.Current(ctx, lat, lon)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("provider", s.provider.Name()).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("current weather fetch failed, using default snapshot")
		return DefaultSnapshot()
	}

	snapshot := Snapshot{
		Current:   *current,
		Impact:    s.impacts.ImpactFor(current.Condition, current.RainOneHour),
		FetchedAt: time.Now(),
	}

	// Forecast failure degrades to a current-only snapshot; the hourly
	// congestion forecast does not depend on forecast weather.
	hourly, err := s.provider.Forecast(ctx, lat, lon)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("provider", s.provider.Name()).
			Msg("weather forecast fetch failed, keeping current-only snapshot")
		return snapshot
	}

	if len(hourly) > s.forecastHours {
		hourly = hourly[:s.forecastHours]
	}
	for i := range hourly {
		hourly[i].HoursAhead = i + 1
		hourly[i].Impact = s.impacts.ImpactFor(hourly[i].Condition, hourly[i].RainOneHour)
	}
	snapshot.Hourly = hourly

	return snapshot
}
