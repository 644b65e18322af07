package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"xpug.it/1brc/internal/config"
	"xpug.it/1brc/internal/report"
	"xpug.it/1brc/internal/station"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// StationResult is the message value published for one station.
type StationResult struct {
	Station string  `json:"station"`
	Min     float64 `json:"min"`
	Mean    float64 `json:"mean"`
	Max     float64 `json:"max"`
	Count   uint64  `json:"count"`
}

// Publisher produces one message per station to a Kafka topic, keyed by
// station name.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		WriteTimeout: cfg.KafkaTimeout,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish writes every station of g, in name order, in a single WriteMessages call.
func (p *Publisher) Publish(ctx context.Context, g station.Global) error {
	if len(g) == 0 {
		return nil
	}
	names := report.Names(g)
	msgs := make([]kafkago.Message, len(names))
	for i, name := range names {
		msg, err := serializeToMessage(name, *g[name])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d station results: %w", len(msgs), err)
	}
	p.logger.Info("published station results", "stations", len(msgs))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func serializeToMessage(name string, s station.Stats) (kafkago.Message, error) {
	data, err := json.Marshal(StationResult{
		Station: name,
		Min:     float64(s.Min) / 10,
		Mean:    float64(report.MeanTenths(s)) / 10,
		Max:     float64(s.Max) / 10,
		Count:   s.Count,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize station result: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(name),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "content_type", Value: []byte("application/json")},
		},
	}, nil
}
