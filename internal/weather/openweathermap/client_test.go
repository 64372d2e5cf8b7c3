package openweathermap_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamroute/jamroute/internal/provider/resilience"
	"github.com/jamroute/jamroute/internal/weather"
	"github.com/jamroute/jamroute/internal/weather/openweathermap"
)

func testHTTPClient() *resilience.Client {
	cfg := resilience.DefaultClientConfig("test")
	cfg.MaxRetries = 1
	cfg.InitialInterval = time.Millisecond
	return resilience.NewClient(cfg)
}

func TestClient_Current(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("lat"), "6.45")
		assert.Contains(t, r.URL.Query().Get("lon"), "3.40")
		assert.Equal(t, "****", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))

		response := map[string]interface{}{
			"weather": []map[string]interface{}{
				{"main": "Rain", "description": "moderate rain"},
			},
			"main": map[string]float64{"temp": 26.4},
			"rain": map[string]float64{"1h": 3.2},
			"dt":   time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC).Unix(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:     "****",
		BaseURL:    server.URL,
		HTTPClient: testHTTPClient(),
	})

	obs, err := client.Current(context.Background(), 6.4500, 3.4000)
	require.NoError(t, err)
	require.NotNil(t, obs)

	assert.Equal(t, weather.ConditionRain, obs.Condition)
	assert.Equal(t, "moderate rain", obs.Description)
	assert.InDelta(t, 26.4, obs.Temperature, 1e-9)
	assert.InDelta(t, 3.2, obs.RainOneHour, 1e-9)
	assert.Equal(t, time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC).Unix(), obs.ObservedAt.Unix())
}

func TestClient_CurrentWithoutRainBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"weather": []map[string]interface{}{
				{"main": "Clear", "description": "clear sky"},
			},
			"main": map[string]float64{"temp": 31.0},
			"dt":   time.Now().Unix(),
		}
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:     "****",
		BaseURL:    server.URL,
		HTTPClient: testHTTPClient(),
	})

	obs, err := client.Current(context.Background(), 6.45, 3.40)
	require.NoError(t, err)

	assert.Equal(t, weather.ConditionClear, obs.Condition)
	assert.Zero(t, obs.RainOneHour)
}

func TestClient_Forecast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "4", r.URL.Query().Get("cnt"))

		response := map[string]interface{}{
			"list": []map[string]interface{}{
				{
					"dt":      time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC).Unix(),
					"main":    map[string]float64{"temp": 27.0},
					"rain":    map[string]float64{"3h": 9.0},
					"weather": []map[string]interface{}{{"main": "Rain", "description": "heavy intensity rain"}},
				},
				{
					"dt":      time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC).Unix(),
					"main":    map[string]float64{"temp": 25.5},
					"weather": []map[string]interface{}{{"main": "Clouds", "description": "scattered clouds"}},
				},
			},
		}
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:     "****",
		BaseURL:    server.URL,
		HTTPClient: testHTTPClient(),
	})

	entries, err := client.Forecast(context.Background(), 6.45, 3.40)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, time.Unix(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC).Unix(), 0).Hour(), entries[0].Hour)
	assert.Equal(t, weather.ConditionRain, entries[0].Condition)
	// 3-hour accumulation averaged to a per-hour rate.
	assert.InDelta(t, 3.0, entries[0].RainOneHour, 1e-9)

	assert.Equal(t, time.Unix(time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC).Unix(), 0).Hour(), entries[1].Hour)
	assert.Equal(t, weather.ConditionClouds, entries[1].Condition)
	assert.Zero(t, entries[1].RainOneHour)
}

func TestClient_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:     "wrong",
		BaseURL:    server.URL,
		HTTPClient: testHTTPClient(),
	})

	_, err := client.Current(context.Background(), 6.45, 3.40)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 401")
}

func TestClient_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:     "****",
		BaseURL:    server.URL,
		HTTPClient: testHTTPClient(),
	})

	_, err := client.Forecast(context.Background(), 6.45, 3.40)
	assert.Error(t, err)
}

func TestClient_Name(t *testing.T) {
	client := openweathermap.NewClient(openweathermap.ClientConfig{APIKey: "****"})
	assert.Equal(t, openweathermap.ProviderName, client.Name())
}
