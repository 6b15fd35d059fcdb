// Package kafka publishes dataset build events so downstream training
// pipelines can react to fresh artifacts.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/hydrograph/lamah-dataset/internal/config"
)

// BuildEvent describes one completed dataset build.
type BuildEvent struct {
	OutletGaugeID  int       `json:"outlet_gauge_id"`
	Rebuilt        bool      `json:"rebuilt"`
	FeasibleGauges int       `json:"feasible_gauges"`
	ExcludedGauges int       `json:"excluded_gauges"`
	Edges          int       `json:"edges"`
	BypassEdges    int       `json:"bypass_edges"`
	AdjacencyPath  string    `json:"adjacency_path"`
	StatisticsPath string    `json:"statistics_path"`
	Duration       float64   `json:"duration_seconds"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Writer produces build events to a Kafka topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured build-events topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and sends one build event. The build itself has already
// succeeded when this runs, so callers treat failures as non-fatal.
func (w *Writer) Publish(ctx context.Context, event BuildEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish build event: %w", err)
	}
	w.logger.Info("build event published", "topic", w.writer.Topic, "outlet", event.OutletGaugeID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a BuildEvent into a Kafka message keyed by the
// outlet gauge, so rebuilds of the same basin land on one partition in order.
func serializeToMessage(event BuildEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize build event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.Itoa(event.OutletGaugeID)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "rebuilt", Value: []byte(strconv.FormatBool(event.Rebuilt))},
			{Key: "completed_at", Value: []byte(event.CompletedAt.Format(time.RFC3339))},
		},
	}, nil
}
