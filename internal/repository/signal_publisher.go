package repository

import (
	"context"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/repository"
	pkgkafka "CoinPulse/pkg/kafka"
)

// KafkaSignalPublisher pushes finished predictions onto a Kafka topic for
// downstream consumers.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSignalPublisher creates a Kafka-backed publisher.
func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) repository.SignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) PublishPrediction(ctx context.Context, pred *models.Prediction) error {
	return p.producer.Publish(ctx, p.topic, []byte(pred.Symbol), pred)
}

func (p *KafkaSignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopSignalPublisher is used when no brokers are configured.
type NoopSignalPublisher struct{}

func (NoopSignalPublisher) PublishPrediction(context.Context, *models.Prediction) error { return nil }
func (NoopSignalPublisher) Close() error                                               { return nil }

var (
	_ repository.SignalPublisher = (*KafkaSignalPublisher)(nil)
	_ repository.SignalPublisher = NoopSignalPublisher{}
)
