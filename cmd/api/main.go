// Package main provides the entrypoint for the JamRoute API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/jamroute/jamroute/internal/api"
	"github.com/jamroute/jamroute/internal/api/middleware"
	"github.com/jamroute/jamroute/internal/api/models"
	"github.com/jamroute/jamroute/internal/config"
	"github.com/jamroute/jamroute/internal/congestion"
	"github.com/jamroute/jamroute/internal/database"
	"github.com/jamroute/jamroute/internal/geo"
	"github.com/jamroute/jamroute/internal/history"
	"github.com/jamroute/jamroute/internal/inference"
	"github.com/jamroute/jamroute/internal/pipeline"
	"github.com/jamroute/jamroute/internal/provider/resilience"
	"github.com/jamroute/jamroute/internal/telemetry"
	"github.com/jamroute/jamroute/internal/weather"
	"github.com/jamroute/jamroute/internal/weather/openweathermap"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "jamroute-api"

	// Local development convenience; ignore a missing .env file.
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting JamRoute API")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Load pipeline configuration
	cfg := config.Default()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		log.Info().Str("path", path).Msg("config loaded")
	}

	// Observation store: Postgres when DB_HOST is set, otherwise an
	// in-memory store seeded from the CSV dataset.
	var repo history.Repository
	if os.Getenv("DB_HOST") != "" {
		dbConfig := database.ConfigFromEnv()
		pool, connErr := database.Connect(ctx, dbConfig)
		if connErr != nil {
			log.Fatal().Err(connErr).Msg("failed to connect to database")
		}
		defer pool.Close()
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")
		repo = history.NewPostgresRepository(pool)
	} else {
		memRepo := history.NewMemoryRepository()
		dataPath := os.Getenv("DATA_PATH")
		if dataPath == "" {
			dataPath = "data/combined.csv"
		}
		loaded, loadErr := history.LoadCSVFile(ctx, memRepo, dataPath)
		if loadErr != nil {
			log.Fatal().Err(loadErr).Str("path", dataPath).Msg("failed to load observation dataset")
		}
		log.Info().Int("records", loaded).Str("path", dataPath).Msg("observation dataset loaded")
		repo = memRepo
	}

	// Optional Redis cache in front of the hour-of-day scans.
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			log.Fatal().Err(parseErr).Msg("invalid REDIS_URL")
		}
		cache := history.NewRedisCache(redis.NewClient(opts))
		repo = history.NewCachedRepository(repo, cache, 0, log)
		log.Info().Msg("redis observation cache enabled")
	}

	// Load model artifacts
	modelPath := getEnvOrDefault("MODEL_PATH", "artifacts/traffic_lstm.json")
	featureScalerPath := getEnvOrDefault("FEATURE_SCALER_PATH", "artifacts/feature_scaler.json")
	targetScalerPath := getEnvOrDefault("TARGET_SCALER_PATH", "artifacts/target_scaler.json")

	model, err := inference.LoadLSTM(modelPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", modelPath).Msg("failed to load model")
	}
	featureScaler, err := inference.LoadScaler(featureScalerPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", featureScalerPath).Msg("failed to load feature scaler")
	}
	targetScaler, err := inference.LoadScaler(targetScalerPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", targetScalerPath).Msg("failed to load target scaler")
	}

	adapter, err := inference.NewAdapter(model, featureScaler, targetScaler, cfg.WindowSize)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to assemble inference adapter")
	}
	log.Info().
		Str("model", modelPath).
		Int("window_size", cfg.WindowSize).
		Msg("model artifacts loaded")

	// Weather provider behind a resilient client. A missing API key still
	// boots: failed fetches degrade to the neutral default snapshot.
	providerMetrics, err := middleware.NewProviderMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize provider metrics")
	}

	apiKey := os.Getenv("OPENWEATHER_API_KEY")
	if apiKey == "" {
		log.Warn().Msg("OPENWEATHER_API_KEY not set - weather adjustment will use the default snapshot")
	}
	weatherHTTP := resilience.NewClient(resilience.DefaultClientConfig(openweathermap.ProviderName))
	weatherClient := openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:     apiKey,
		HTTPClient: weatherHTTP,
		Metrics:    providerMetrics,
		Logger:     log,
	})
	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: weatherClient,
		Impacts:  weather.NewImpactTable(cfg.ImpactRules()),
		Timeout:  cfg.WeatherTimeout,
		Logger:   log,
	})

	// Assemble the pipeline
	bottlenecks := cfg.GeoBottlenecks()
	classifier := congestion.NewClassifier(cfg.ClassifyThresholds())
	orchestrator := pipeline.NewOrchestrator(pipeline.Dependencies{
		Resolver:   geo.NewResolver(bottlenecks, cfg.DistanceThresholdDegrees),
		Windows:    history.NewWindowBuilder(repo, cfg.WindowSize),
		Predictor:  adapter,
		Classifier: classifier,
		Forecaster: congestion.NewForecaster(congestion.ForecasterConfig{
			Sampler:    repo,
			Classifier: classifier,
			Pattern:    cfg.Diurnal(),
			Logger:     log,
		}),
		Weather: weatherService,
		Horizon: cfg.ForecastHorizonHours,
	}, log)
	log.Info().
		Int("bottlenecks", len(bottlenecks)).
		Int("horizon_hours", cfg.ForecastHorizonHours).
		Msg("pipeline assembled")

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		Evaluator:   orchestrator,
		Ready:       orchestrator.Ready,
		Bottlenecks: bottlenecks,
		ProviderStatus: func() []models.ProviderStatus {
			return []models.ProviderStatus{
				providerStatus(openweathermap.ProviderName, weatherHTTP.State()),
			}
		},
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// providerStatus maps a circuit breaker state to the ops report.
func providerStatus(name string, state gobreaker.State) models.ProviderStatus {
	status := models.HealthStatusOK
	var message *string
	switch state {
	case gobreaker.StateOpen:
		status = models.HealthStatusDown
		msg := "circuit breaker open"
		message = &msg
	case gobreaker.StateHalfOpen:
		status = models.HealthStatusDegraded
		msg := "circuit breaker half-open"
		message = &msg
	}
	return models.ProviderStatus{Provider: name, Status: status, Message: message}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
