package repository

import (
	"context"
	"time"

	"Coinsight/internal/domain/models"
)

// PriceStore provides read-only access to the price history store.
type PriceStore interface {
	// GetPriceHistory returns up to `days` of daily points ordered by time ASC.
	GetPriceHistory(ctx context.Context, symbol string, days int) (models.PriceSeries, error)
	// GetLatestPrice returns the most recent close for a symbol.
	GetLatestPrice(ctx context.Context, symbol string) (float64, time.Time, error)
	Health(ctx context.Context) error
	Close() error
}

// Classifier maps a normalized feature sequence to a 3-class probability
// triple. Implementations wrap one named model variant.
type Classifier interface {
	// Variant returns the checkpoint variant name ("current", "legacy").
	Variant() string
	Predict(ctx context.Context, seq models.FeatureSequence) ([3]float64, error)
}

// EventPublisher publishes prediction and risk events for downstream consumers.
type EventPublisher interface {
	PublishPrediction(ctx context.Context, resp *models.PredictionResponse) error
	PublishRisk(ctx context.Context, assessment *models.RiskAssessment) error
	Close() error
}

// Metrics records domain-level measurements.
type Metrics interface {
	RecordPrediction(symbol, timeframe, direction string)
	RecordCacheHit(operation string)
	RecordCacheMiss(operation string)
	RecordError(kind string)
	RecordInferenceLatency(variant string, seconds float64)
	RecordLastPrice(symbol string, price float64)
}
