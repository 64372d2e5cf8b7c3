// Package openweathermap implements the weather Provider against the
// OpenWeatherMap API.
package openweathermap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jamroute/jamroute/internal/api/middleware"
	"github.com/jamroute/jamroute/internal/provider/resilience"
	"github.com/jamroute/jamroute/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "openweathermap"

	// DefaultBaseURL is the OpenWeatherMap API base URL.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
)

// ClientConfig holds configuration for the OpenWeatherMap client.
type ClientConfig struct {
	// APIKey is the OpenWeatherMap API key (required).
	APIKey string

	// BaseURL is the API base URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional). If nil, uses a
	// resilient client with defaults.
	HTTPClient *resilience.Client

	// Metrics records per-call provider metrics (optional).
	Metrics *middleware.ProviderMetrics

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenWeatherMap API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	metrics    *middleware.ProviderMetrics
	logger     zerolog.Logger
}

// NewClient creates a new OpenWeatherMap client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Current fetches current weather for a location.
func (c *Client) Current(ctx context.Context, lat, lon float64) (*weather.Observation, error) {
	url := fmt.Sprintf("%s/weather?lat=%.4f&lon=%.4f&appid=%s&units=metric",
		c.baseURL, lat, lon, c.apiKey)

	var resp currentWeatherResponse
	if err := c.getJSON(ctx, "current", url, &resp); err != nil {
		return nil, err
	}

	obs := &weather.Observation{
		Temperature: resp.Main.Temp,
		RainOneHour: resp.Rain.OneHour,
		ObservedAt:  time.Unix(resp.Dt, 0),
		Condition:   weather.ConditionUnknown,
	}
	if len(resp.Weather) > 0 {
		obs.Condition = mapCondition(resp.Weather[0].Main)
		obs.Description = resp.Weather[0].Description
	}

	return obs, nil
}

// Forecast fetches the hourly forecast for a location. OpenWeatherMap's free
// forecast endpoint returns 3-hourly steps; each step stands in for the
// hours it covers, which is accurate enough for a 4-hour traffic outlook.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) ([]weather.HourlyEntry, error) {
	url := fmt.Sprintf("%s/forecast?lat=%.4f&lon=%.4f&appid=%s&units=metric&cnt=4",
		c.baseURL, lat, lon, c.apiKey)

	var resp forecastResponse
	if err := c.getJSON(ctx, "forecast", url, &resp); err != nil {
		return nil, err
	}

	entries := make([]weather.HourlyEntry, 0, len(resp.List))
	for _, item := range resp.List {
		at := time.Unix(item.Dt, 0)
		entry := weather.HourlyEntry{
			Hour:        at.Hour(),
			Temperature: item.Main.Temp,
			RainOneHour: item.Rain.ThreeHours / 3, // per-hour average over the step
			Condition:   weather.ConditionUnknown,
		}
		if len(item.Weather) > 0 {
			entry.Condition = mapCondition(item.Weather[0].Main)
			entry.Description = item.Weather[0].Description
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// getJSON executes a GET request and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, operation, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.RecordRequest(ProviderName, operation, time.Since(start), err)
	}
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// mapCondition maps the OpenWeatherMap main classification to a domain
// condition.
func mapCondition(owmCondition string) weather.Condition {
	switch owmCondition {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionClouds
	case "Rain":
		return weather.ConditionRain
	case "Drizzle":
		return weather.ConditionDrizzle
	case "Thunderstorm":
		return weather.ConditionThunderstorm
	case "Mist", "Smoke":
		return weather.ConditionMist
	case "Fog":
		return weather.ConditionFog
	case "Haze":
		return weather.ConditionHaze
	case "Dust", "Sand", "Ash":
		return weather.ConditionDust
	default:
		return weather.ConditionUnknown
	}
}

// OpenWeatherMap API response structures.

type currentWeatherResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Dt int64 `json:"dt"`
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Rain struct {
			ThreeHours float64 `json:"3h"`
		} `json:"rain"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"list"`
}
