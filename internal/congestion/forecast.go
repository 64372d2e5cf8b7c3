package congestion

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jamroute/jamroute/internal/history"
)

// Forecast policy constants.
const (
	// minSamplesForData is the minimum number of historical observations at
	// an hour-of-day before the data-backed path is trusted over the static
	// pattern.
	minSamplesForData = 3

	// samplesForHighConfidence is the sample count at which a data-backed
	// entry is tagged high confidence.
	samplesForHighConfidence = 8

	// DefaultHorizon is the number of hours ahead the forecaster covers.
	DefaultHorizon = 3
)

// HourSampler provides historical observations grouped by hour of day.
// *history.MemoryRepository, *history.PostgresRepository and
// *history.CachedRepository all satisfy it.
type HourSampler interface {
	ByHourOfDay(ctx context.Context, bottleneckID string, hour int) ([]history.Observation, error)
}

// DiurnalPattern maps each hour of day to an expected congestion level. It is
// the fallback when too little history exists for an hour.
type DiurnalPattern [24]Level

// DefaultDiurnalPattern encodes the known Lagos rhythm: morning rush peaking
// 7-8, a long evening rush peaking 16-18, moderate midday, quiet nights.
func DefaultDiurnalPattern() DiurnalPattern {
	return DiurnalPattern{
		0: LevelClear, 1: LevelClear, 2: LevelClear, 3: LevelClear,
		4: LevelClear, 5: LevelLight,
		6: LevelHeavy, 7: LevelSevere, 8: LevelSevere, 9: LevelHeavy,
		10: LevelModerate, 11: LevelModerate, 12: LevelModerate,
		13: LevelModerate, 14: LevelModerate, 15: LevelHeavy,
		16: LevelSevere, 17: LevelSevere, 18: LevelSevere, 19: LevelHeavy,
		20: LevelModerate, 21: LevelLight, 22: LevelLight, 23: LevelClear,
	}
}

// ForecasterConfig holds configuration for the hourly forecaster.
type ForecasterConfig struct {
	// Sampler provides hour-of-day history (required).
	Sampler HourSampler

	// Classifier converts mean ratios to levels. Nil selects the default
	// threshold table.
	Classifier *Classifier

	// Pattern is the static diurnal fallback. The zero value is invalid;
	// config validation guarantees a populated table.
	Pattern DiurnalPattern

	// Logger for forecast operations.
	Logger zerolog.Logger
}

// Forecaster predicts congestion levels for upcoming hours, preferring real
// per-hour history and falling back to the static diurnal pattern when the
// history is too sparse. The two-tier policy guarantees a forecast is always
// produced.
type Forecaster struct {
	sampler    HourSampler
	classifier *Classifier
	pattern    DiurnalPattern
	logger     zerolog.Logger
}

// NewForecaster creates a Forecaster.
func NewForecaster(cfg ForecasterConfig) *Forecaster {
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	return &Forecaster{
		sampler:    cfg.Sampler,
		classifier: classifier,
		pattern:    cfg.Pattern,
		logger:     cfg.Logger,
	}
}

// Forecast returns one entry per hour offset 1..horizon from currentHour,
// wrapping past midnight. It never returns fewer than horizon entries: a
// sampler failure for one hour degrades that hour to the diurnal fallback.
func (f *Forecaster) Forecast(ctx context.Context, bottleneckID string, currentHour, horizon int) ([]ForecastEntry, error) {
	if currentHour < 0 || currentHour > 23 {
		return nil, fmt.Errorf("current hour %d out of range", currentHour)
	}
	if horizon <= 0 {
		horizon = DefaultHorizon
	}

	entries := make([]ForecastEntry, 0, horizon)
	for offset := 1; offset <= horizon; offset++ {
		hour := (currentHour + offset) % 24
		entries = append(entries, f.forecastHour(ctx, bottleneckID, hour))
	}

	return entries, nil
}

// forecastHour produces the entry for a single hour of day.
func (f *Forecaster) forecastHour(ctx context.Context, bottleneckID string, hour int) ForecastEntry {
	samples, err := f.sampler.ByHourOfDay(ctx, bottleneckID, hour)
	if err != nil {
		f.logger.Warn().Err(err).
			Str("bottleneck_id", bottleneckID).
			Int("hour", hour).
			Msg("hour-of-day query failed, using diurnal pattern")
		samples = nil
	}

	if len(samples) < minSamplesForData {
		return ForecastEntry{
			Hour:       hour,
			Level:      f.pattern[hour],
			Confidence: ConfidenceMedium,
		}
	}

	var sum float64
	for _, obs := range samples {
		sum += obs.CongestionRatio
	}
	meanRatio := sum / float64(len(samples))

	confidence := ConfidenceMedium
	if len(samples) >= samplesForHighConfidence {
		confidence = ConfidenceHigh
	}

	return ForecastEntry{
		Hour:       hour,
		Level:      f.classifier.Classify(meanRatio),
		Confidence: confidence,
		Samples:    len(samples),
	}
}
