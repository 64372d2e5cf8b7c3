// Package handler provides HTTP handlers for the JamRoute API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jamroute/jamroute/internal/api/models"
	"github.com/jamroute/jamroute/internal/api/response"
	"github.com/jamroute/jamroute/internal/geo"
	"github.com/jamroute/jamroute/internal/pipeline"
	"github.com/jamroute/jamroute/internal/weather"
)

// Evaluator runs the congestion pipeline for one request.
type Evaluator interface {
	Evaluate(ctx context.Context, req pipeline.Request) (*pipeline.Report, error)
}

// CongestionHandler handles congestion evaluation requests.
type CongestionHandler struct {
	evaluator Evaluator
	logger    zerolog.Logger
}

// NewCongestionHandler creates a new CongestionHandler.
func NewCongestionHandler(evaluator Evaluator, logger zerolog.Logger) *CongestionHandler {
	return &CongestionHandler{evaluator: evaluator, logger: logger}
}

// Evaluate handles POST /v1/congestion:evaluate.
func (h *CongestionHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req models.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	var fieldErrors []models.FieldError
	if req.Start == "" {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "start", Message: "start coordinate is required", Code: "required",
		})
	}
	if req.End == "" {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "end", Message: "end coordinate is required", Code: "required",
		})
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "missing required fields", fieldErrors)
		return
	}

	report, err := h.evaluator.Evaluate(r.Context(), pipeline.Request{
		Start: req.Start,
		End:   req.End,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, reportToModel(report))
}

// writeError maps pipeline errors to problem responses.
func (h *CongestionHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pipeline.ErrNotReady):
		response.ServiceUnavailable(w, r, "Service is still loading model artifacts, try again shortly")
	case errors.Is(err, geo.ErrInvalidCoordinate):
		field := "start"
		if strings.HasPrefix(err.Error(), "end:") {
			field = "end"
		}
		response.BadRequest(w, r, "invalid coordinate format, expected \"lat,lon\"", []models.FieldError{
			{Field: field, Message: err.Error(), Code: "invalid_coordinate"},
		})
	default:
		h.logger.Error().Err(err).Msg("congestion evaluation failed")
		response.InternalError(w, r, "congestion evaluation failed")
	}
}

// reportToModel converts a pipeline report to the wire model.
func reportToModel(report *pipeline.Report) models.CongestionReport {
	out := models.CongestionReport{
		Status:           string(report.Status),
		Message:          report.Message,
		ForecastSummary:  report.Summary,
		AIRecommendation: report.Recommendation,
		GeneratedAt:      models.Timestamp(report.GeneratedAt),
	}

	if report.Bottleneck != nil {
		out.BottleneckLocation = &report.Bottleneck.ID
		distance := report.Distance
		out.DistanceDegrees = &distance
	}
	if report.Level != nil {
		level := report.Level.String()
		out.CongestionLevel = &level
	}
	out.CongestionRatio = report.Ratio
	if report.PredictedTravelTime != nil {
		rounded := math.Round(*report.PredictedTravelTime*100) / 100
		out.PredictedTravelTime = &rounded
	}

	for _, entry := range report.Hourly {
		out.HourlyForecast = append(out.HourlyForecast, models.HourlyForecastEntry{
			Hour:                     entry.Hour,
			PredictedCongestionLevel: entry.Level.String(),
			Confidence:               string(entry.Confidence),
		})
	}

	out.WeatherForecast = weatherToModel(report.Weather, report.WeatherAlerts)
	return out
}

// weatherToModel converts a weather snapshot to the wire model.
func weatherToModel(snapshot weather.Snapshot, alerts []string) *models.WeatherForecast {
	out := &models.WeatherForecast{
		CurrentWeather: models.CurrentWeather{
			Condition:     string(snapshot.Current.Condition),
			Description:   snapshot.Current.Description,
			Temperature:   snapshot.Current.Temperature,
			WeatherImpact: snapshot.Impact.String(),
		},
		WeatherAlerts: alerts,
		Default:       snapshot.Default,
	}
	for _, entry := range snapshot.Hourly {
		out.HourlyForecast = append(out.HourlyForecast, models.HourlyWeatherEntry{
			Hour:          entry.Hour,
			Condition:     string(entry.Condition),
			Description:   entry.Description,
			Temperature:   entry.Temperature,
			WeatherImpact: entry.Impact.String(),
		})
	}
	return out
}
