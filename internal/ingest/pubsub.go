// Package ingest consumes traffic observation messages from Pub/Sub and
// appends them to the observation store feeding the inference pipeline.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/jamroute/jamroute/internal/congestion"
	"github.com/jamroute/jamroute/internal/geo"
	"github.com/jamroute/jamroute/internal/history"
)

// Subscriber consumes observation messages and appends them to the store.
type Subscriber struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	repo             history.Repository
	known            map[string]bool
	logger           zerolog.Logger
}

// Config holds configuration for the Subscriber.
type Config struct {
	ProjectID        string
	SubscriptionName string
	Repository       history.Repository

	// Bottlenecks restricts accepted observations to known collection
	// locations. Empty accepts everything.
	Bottlenecks []geo.Bottleneck

	Logger zerolog.Logger
}

// observationMessage is the wire form of one traffic measurement.
type observationMessage struct {
	CollectionLocation string    `json:"collection_location"`
	Timestamp          time.Time `json:"timestamp"`
	CurrentSpeed       float64   `json:"current_speed"`
	FreeFlowSpeed      float64   `json:"free_flow_speed"`
	DelaySeconds       float64   `json:"delay_seconds"`
	IsHotspot          bool      `json:"is_hotspot"`
}

// NewSubscriber creates a Subscriber attached to a Pub/Sub subscription.
func NewSubscriber(ctx context.Context, cfg Config) (*Subscriber, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	known := make(map[string]bool, len(cfg.Bottlenecks))
	for _, b := range cfg.Bottlenecks {
		known[b.ID] = true
	}

	return &Subscriber{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		repo:             cfg.Repository,
		known:            known,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing messages. It blocks until ctx is cancelled.
func (s *Subscriber) Start(ctx context.Context) error {
	s.logger.Info().
		Str("subscription", s.subscriptionName).
		Msg("starting observation subscriber")

	return s.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		s.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (s *Subscriber) Close() error {
	return s.client.Close()
}

func (s *Subscriber) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := s.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	var wire observationMessage
	if err := json.Unmarshal(msg.Data, &wire); err != nil {
		logger.Error().Err(err).Msg("failed to parse observation message")
		msg.Nack()
		return
	}

	if wire.CollectionLocation == "" || wire.Timestamp.IsZero() {
		// Malformed payloads never become valid; ack to prevent redelivery.
		logger.Warn().Msg("dropping observation with missing location or timestamp")
		msg.Ack()
		return
	}
	if len(s.known) > 0 && !s.known[wire.CollectionLocation] {
		logger.Warn().
			Str("collection_location", wire.CollectionLocation).
			Msg("dropping observation for unknown bottleneck")
		msg.Ack()
		return
	}

	if err := s.repo.Insert(ctx, toObservation(wire)); err != nil {
		logger.Error().Err(err).Msg("failed to store observation")
		msg.Nack()
		return
	}

	logger.Debug().
		Str("collection_location", wire.CollectionLocation).
		Dur("duration", time.Since(startTime)).
		Msg("observation stored")

	msg.Ack()
}

// toObservation derives the time-of-day features the model expects from the
// measurement timestamp.
func toObservation(wire observationMessage) history.Observation {
	hour := wire.Timestamp.Hour()
	dayOfWeek := int(wire.Timestamp.Weekday())

	return history.Observation{
		BottleneckID:    wire.CollectionLocation,
		Timestamp:       wire.Timestamp,
		CurrentSpeed:    wire.CurrentSpeed,
		FreeFlowSpeed:   wire.FreeFlowSpeed,
		DelaySeconds:    wire.DelaySeconds,
		Hour:            hour,
		DayOfWeek:       dayOfWeek,
		IsRushHour:      isRushHour(hour),
		IsWeekend:       dayOfWeek == 0 || dayOfWeek == 6,
		IsHotspot:       wire.IsHotspot,
		CongestionRatio: congestion.Ratio(wire.CurrentSpeed, wire.FreeFlowSpeed),
	}
}

// isRushHour reports whether the hour falls in the Lagos commute peaks.
func isRushHour(hour int) bool {
	return (hour >= 6 && hour <= 9) || (hour >= 16 && hour <= 19)
}
