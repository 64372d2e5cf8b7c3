// Package pipeline sequences the congestion inference stages for a single
// route request and maps internal failures to reported outcomes.
package pipeline

import (
	"errors"
	"time"

	"github.com/jamroute/jamroute/internal/congestion"
	"github.com/jamroute/jamroute/internal/geo"
	"github.com/jamroute/jamroute/internal/weather"
)

// Pipeline errors. Only these reach the transport as failures; every other
// condition is a semantically distinct successful report.
var (
	// ErrNotReady is returned while the dependency bundle is incomplete.
	ErrNotReady = errors.New("pipeline dependencies not ready")
)

// Request is a single congestion evaluation request.
type Request struct {
	// Start and End are "lat,lon" coordinate strings.
	Start string
	End   string
}

// Status is the report's coarse outcome tag, mirroring the client contract.
type Status string

// Report statuses.
const (
	// StatusOK means no bottleneck is near the route.
	StatusOK Status = "ok"

	// StatusInfo means a bottleneck was found with unremarkable or unknown
	// conditions.
	StatusInfo Status = "info"

	// StatusWarning means a bottleneck was found with heavy or worse
	// congestion.
	StatusWarning Status = "warning"
)

// Report is the response aggregate for one evaluation. It is built once per
// request and never mutated after construction.
type Report struct {
	Status  Status
	Message string

	// Bottleneck is the resolved bottleneck, nil when none is near.
	Bottleneck *geo.Bottleneck

	// Distance is the degree-space distance from the route midpoint to the
	// resolved bottleneck; zero when none was resolved.
	Distance float64

	// Level is the instantaneous congestion level after weather adjustment;
	// nil when no bottleneck was resolved or data was insufficient.
	Level *congestion.Level

	// Ratio is the observed congestion ratio backing Level; nil alongside it.
	Ratio *float64

	// PredictedTravelTime is the model's travel time estimate in minutes;
	// nil when inference did not run.
	PredictedTravelTime *float64

	// Hourly is the congestion forecast for the upcoming hours; empty when
	// the pipeline short-circuited before forecasting.
	Hourly []congestion.ForecastEntry

	// Summary is the human-readable forecast summary.
	Summary string

	// Recommendation is the composed action text.
	Recommendation string

	// Weather is the snapshot used for adjustment; always populated, the
	// neutral default when the provider was unreachable.
	Weather weather.Snapshot

	// WeatherAlerts are the per-forecast-hour weather warnings.
	WeatherAlerts []string

	GeneratedAt time.Time
}
