package models

// EvaluateRequest is the body of POST /v1/congestion:evaluate. Start and End
// are "lat,lon" coordinate strings.
type EvaluateRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// CongestionReport is the evaluation response.
type CongestionReport struct {
	Status  string `json:"status"`
	Message string `json:"message"`

	BottleneckLocation *string  `json:"bottleneck_location,omitempty"`
	DistanceDegrees    *float64 `json:"distance_degrees,omitempty"`

	CongestionLevel *string  `json:"congestion_level,omitempty"`
	CongestionRatio *float64 `json:"congestion_ratio,omitempty"`

	// PredictedTravelTime is the model's travel time estimate in minutes,
	// rounded to two decimals.
	PredictedTravelTime *float64 `json:"predicted_travel_time,omitempty"`

	HourlyForecast []HourlyForecastEntry `json:"hourly_forecast,omitempty"`

	ForecastSummary  string `json:"forecast_summary,omitempty"`
	AIRecommendation string `json:"ai_recommendation,omitempty"`

	WeatherForecast *WeatherForecast `json:"weather_forecast,omitempty"`

	GeneratedAt Timestamp `json:"generated_at"`
}

// HourlyForecastEntry is one forecast hour in the report.
type HourlyForecastEntry struct {
	Hour                     int    `json:"hour"`
	PredictedCongestionLevel string `json:"predicted_congestion_level"`
	Confidence               string `json:"confidence"`
}

// WeatherForecast carries the weather snapshot used for adjustment.
type WeatherForecast struct {
	CurrentWeather CurrentWeather       `json:"current_weather"`
	HourlyForecast []HourlyWeatherEntry `json:"hourly_forecast,omitempty"`
	WeatherAlerts  []string             `json:"weather_alerts,omitempty"`

	// Default is true when the provider was unreachable and the neutral
	// snapshot was substituted.
	Default bool `json:"default,omitempty"`
}

// CurrentWeather is the observed weather at evaluation time.
type CurrentWeather struct {
	Condition     string  `json:"condition"`
	Description   string  `json:"description"`
	Temperature   float64 `json:"temperature"`
	WeatherImpact string  `json:"weather_impact"`
}

// HourlyWeatherEntry is one forecast hour of provider weather.
type HourlyWeatherEntry struct {
	Hour          int     `json:"hour"`
	Condition     string  `json:"condition"`
	Description   string  `json:"description"`
	Temperature   float64 `json:"temperature"`
	WeatherImpact string  `json:"weather_impact"`
}
