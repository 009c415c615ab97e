// Package kafka publishes watch-area snapshots to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/flight-tracker-service/internal/config"
	"github.com/couchcryptid/flight-tracker-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// SinkName labels this publisher in metrics and logs.
const SinkName = "kafka"

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces one message per flight of a snapshot.
// It implements pipeline.Sink.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured flights topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Name implements pipeline.Sink.
func (w *Writer) Name() string { return SinkName }

// Publish writes every flight of snap in a single WriteMessages call, keyed by
// flight identifier so one flight's updates stay on one partition.
func (w *Writer) Publish(ctx context.Context, snap domain.Snapshot) error {
	if len(snap.Flights) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(snap.Flights))
	for i := range snap.Flights {
		msg, err := serializeToMessage(snap, snap.Flights[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d flights: %w", len(msgs), err)
	}
	w.logger.Debug("snapshot published", "bounds", snap.Bounds, "flights", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals one flight view into a Kafka message.
func serializeToMessage(snap domain.Snapshot, view domain.FlightView) (kafkago.Message, error) {
	data, err := json.Marshal(view)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize flight %s: %w", view.Flight.Identifier, err)
	}
	return kafkago.Message{
		Key:   []byte(view.Flight.Identifier),
		Value: data,
		Time:  snap.PolledAt,
		Headers: []kafkago.Header{
			{Key: "bounds", Value: []byte(snap.Bounds)},
			{Key: "polled_at", Value: []byte(snap.PolledAt.Format(time.RFC3339))},
			{Key: "from_cache", Value: []byte(strconv.FormatBool(snap.FromCache))},
		},
	}, nil
}
