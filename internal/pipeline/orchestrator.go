package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jamroute/jamroute/internal/congestion"
	"github.com/jamroute/jamroute/internal/geo"
	"github.com/jamroute/jamroute/internal/history"
	"github.com/jamroute/jamroute/internal/inference"
	"github.com/jamroute/jamroute/internal/weather"
)

// WeatherFetcher is the weather capability the pipeline consumes. It never
// fails: a degraded provider yields the neutral default snapshot.
type WeatherFetcher interface {
	CurrentAndForecast(ctx context.Context, lat, lon float64) weather.Snapshot
}

// Dependencies is the explicit, immutable bundle of capabilities the
// orchestrator runs on. It is constructed once before serving begins;
// readiness is a property of the bundle being fully populated, not of
// scattered nullable globals.
type Dependencies struct {
	Resolver   *geo.Resolver
	Windows    *history.WindowBuilder
	Predictor  inference.Predictor
	Classifier *congestion.Classifier
	Forecaster *congestion.Forecaster
	Weather    WeatherFetcher

	// Horizon is the forecast horizon in hours; 0 selects the default.
	Horizon int

	// Now supplies the current time; nil selects time.Now. Tests pin it.
	Now func() time.Time
}

// ready reports whether every required capability is bound.
func (d Dependencies) ready() bool {
	return d.Resolver != nil &&
		d.Windows != nil &&
		d.Predictor != nil &&
		d.Classifier != nil &&
		d.Forecaster != nil &&
		d.Weather != nil
}

// Orchestrator runs the congestion inference pipeline for single requests.
// It is safe for concurrent use: all shared state is the read-only
// dependency bundle.
type Orchestrator struct {
	deps   Dependencies
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewOrchestrator creates an Orchestrator over a dependency bundle.
func NewOrchestrator(deps Dependencies, logger zerolog.Logger) *Orchestrator {
	if deps.Horizon <= 0 {
		deps.Horizon = congestion.DefaultHorizon
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Orchestrator{
		deps:   deps,
		logger: logger,
		tracer: otel.Tracer("pipeline"),
	}
}

// Ready reports whether the orchestrator can serve requests. Requests
// arriving before the bundle is complete must be rejected, never run on
// partial state.
func (o *Orchestrator) Ready() bool {
	return o.deps.ready()
}

// Bottlenecks exposes the resolver's table for the metadata surface.
func (o *Orchestrator) Bottlenecks() []geo.Bottleneck {
	if o.deps.Resolver == nil {
		return nil
	}
	return o.deps.Resolver.Bottlenecks()
}

// Evaluate runs the full pipeline for one request.
//
// Error returns are limited to: ErrNotReady, coordinate parse errors
// (wrapping geo.ErrInvalidCoordinate), and inference failures (wrapping
// inference.ErrInference). No nearby bottleneck and insufficient history are
// successful reports, not errors.
func (o *Orchestrator) Evaluate(ctx context.Context, req Request) (*Report, error) {
	ctx, span := o.tracer.Start(ctx, "pipeline.Evaluate")
	defer span.End()

	if !o.deps.ready() {
		return nil, ErrNotReady
	}

	start, err := geo.ParseCoordinate(req.Start)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := geo.ParseCoordinate(req.End)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}
	midpoint := geo.Midpoint(start, end)

	// The weather fetch has no data dependency on the inference path, so it
	// runs concurrently and is joined before composition. The fetcher's own
	// timeout bounds how long the join can wait.
	weatherCh := make(chan weather.Snapshot, 1)
	go func() {
		weatherCh <- o.deps.Weather.CurrentAndForecast(ctx, midpoint.Lat, midpoint.Lon)
	}()

	resolution := o.deps.Resolver.Resolve(midpoint)
	span.SetAttributes(attribute.Bool("bottleneck.found", resolution.Found))
	if !resolution.Found {
		return o.clearReport(<-weatherCh), nil
	}

	bottleneck := resolution.Bottleneck
	span.SetAttributes(attribute.String("bottleneck.id", bottleneck.ID))

	window, err := o.deps.Windows.Build(ctx, bottleneck.ID)
	if errors.Is(err, history.ErrInsufficientData) {
		o.logger.Debug().
			Str("bottleneck_id", bottleneck.ID).
			Msg("insufficient history for inference")
		return o.insufficientDataReport(bottleneck, resolution.Distance, <-weatherCh), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: loading window for %s: %v", inference.ErrInference, bottleneck.ID, err)
	}

	travelTime, err := o.deps.Predictor.Predict(window)
	if err != nil {
		o.logger.Error().Err(err).
			Str("bottleneck_id", bottleneck.ID).
			Int("window_size", window.Len()).
			Int("feature_count", len(inference.FeatureOrder)).
			Msg("inference failed")
		return nil, err
	}

	latest := window.Observations[window.Len()-1]
	ratio := congestion.Ratio(latest.CurrentSpeed, latest.FreeFlowSpeed)
	level := o.deps.Classifier.Classify(ratio)

	currentHour := o.deps.Now().Hour()
	hourly, err := o.deps.Forecaster.Forecast(ctx, bottleneck.ID, currentHour, o.deps.Horizon)
	if err != nil {
		// The forecaster degrades per-hour internally; an error here means
		// the inputs themselves were invalid.
		return nil, fmt.Errorf("%w: forecasting %s: %v", inference.ErrInference, bottleneck.ID, err)
	}

	snapshot := <-weatherCh
	adjustment := weather.Adjust(level, snapshot)

	report := &Report{
		Status:              StatusInfo,
		Message:             "Route passes near bottleneck: " + bottleneck.ID,
		Bottleneck:          bottleneck,
		Distance:            resolution.Distance,
		Level:               &adjustment.Level,
		Ratio:               &ratio,
		PredictedTravelTime: &travelTime,
		Hourly:              hourly,
		Summary:             composeSummary(adjustment.Level, hourly, snapshot.Impact),
		Recommendation:      composeRecommendation(adjustment.Level, hourly, snapshot.Impact),
		Weather:             snapshot,
		WeatherAlerts:       adjustment.Alerts,
		GeneratedAt:         o.deps.Now(),
	}
	if adjustment.Level >= congestion.LevelHeavy {
		report.Status = StatusWarning
	}

	return report, nil
}

// clearReport is the outcome when no bottleneck is near the route.
func (o *Orchestrator) clearReport(snapshot weather.Snapshot) *Report {
	level := congestion.LevelClear
	return &Report{
		Status:         StatusOK,
		Message:        "No known bottlenecks near this route - expect normal travel time",
		Level:          &level,
		Summary:        "No congestion expected on this route.",
		Recommendation: composeRecommendation(level, nil, snapshot.Impact),
		Weather:        snapshot,
		GeneratedAt:    o.deps.Now(),
	}
}

// insufficientDataReport is the outcome when the bottleneck lacks a full
// feature window. No ratio or level is fabricated.
func (o *Orchestrator) insufficientDataReport(b *geo.Bottleneck, distance float64, snapshot weather.Snapshot) *Report {
	return &Report{
		Status:         StatusInfo,
		Message:        fmt.Sprintf("Insufficient data for nearby bottleneck %s", b.ID),
		Bottleneck:     b,
		Distance:       distance,
		Summary:        "Not enough recent observations to assess congestion.",
		Recommendation: "No special precautions needed.",
		Weather:        snapshot,
		GeneratedAt:    o.deps.Now(),
	}
}
