package repository

import (
	"context"

	"Coinsight/internal/domain/models"
	"Coinsight/internal/domain/repository"
	pkgkafka "Coinsight/pkg/kafka"
)

// KafkaPublisher implements EventPublisher for Kafka. Events are keyed by
// symbol so per-symbol ordering survives partitioning.
type KafkaPublisher struct {
	producer        *pkgkafka.Producer
	predictionTopic string
	riskTopic       string
}

// NewKafkaPublisher creates a Kafka-backed event publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, predictionTopic, riskTopic string) repository.EventPublisher {
	return &KafkaPublisher{
		producer:        producer,
		predictionTopic: predictionTopic,
		riskTopic:       riskTopic,
	}
}

func (p *KafkaPublisher) PublishPrediction(ctx context.Context, resp *models.PredictionResponse) error {
	return p.producer.Publish(ctx, p.predictionTopic, []byte(resp.Symbol), resp)
}

func (p *KafkaPublisher) PublishRisk(ctx context.Context, assessment *models.RiskAssessment) error {
	return p.producer.Publish(ctx, p.riskTopic, []byte(assessment.Symbol), assessment)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher is used when Kafka is disabled in config.
type NoopPublisher struct{}

func (NoopPublisher) PublishPrediction(context.Context, *models.PredictionResponse) error { return nil }
func (NoopPublisher) PublishRisk(context.Context, *models.RiskAssessment) error           { return nil }
func (NoopPublisher) Close() error                                                        { return nil }
