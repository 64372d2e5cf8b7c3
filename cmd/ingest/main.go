// Package main provides the entrypoint for the observation ingest worker.
// It consumes traffic measurements from a Pub/Sub subscription and appends
// them to the observation store the API serves inferences from.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/jamroute/jamroute/internal/config"
	"github.com/jamroute/jamroute/internal/database"
	"github.com/jamroute/jamroute/internal/history"
	"github.com/jamroute/jamroute/internal/ingest"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "jamroute-ingest"

	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting JamRoute ingest worker")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
	if projectID == "" || subscription == "" {
		log.Fatal().Msg("PUBSUB_PROJECT_ID and PUBSUB_SUBSCRIPTION are required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Default()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
	}

	pool, err := database.Connect(ctx, database.ConfigFromEnv())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().Msg("database connected")

	subscriber, err := ingest.NewSubscriber(ctx, ingest.Config{
		ProjectID:        projectID,
		SubscriptionName: subscription,
		Repository:       history.NewPostgresRepository(pool),
		Bottlenecks:      cfg.GeoBottlenecks(),
		Logger:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create subscriber")
	}
	defer subscriber.Close()

	// Health endpoint for the container runtime.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	go func() {
		if err := subscriber.Start(ctx); err != nil && ctx.Err() == nil {
			log.Fatal().Err(err).Msg("subscriber stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down ingest worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("ingest worker stopped")
}
