package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	predictions      *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	inferenceLatency *prometheus.HistogramVec
	lastPrice        *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		predictions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_predictions_total",
				Help: "Total number of predictions served",
			},
			[]string{"symbol", "timeframe", "direction"},
		),
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_cache_hits_total",
				Help: "Total number of prediction cache hits",
			},
			[]string{"operation"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_cache_misses_total",
				Help: "Total number of prediction cache misses",
			},
			[]string{"operation"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		inferenceLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinsight_inference_duration_seconds",
				Help:    "Duration of classifier forward passes in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"variant"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinsight_last_price",
				Help: "Last observed price for a symbol",
			},
			[]string{"symbol"},
		),
	}
}

// RecordPrediction records a served prediction.
func (r *Recorder) RecordPrediction(symbol, timeframe, direction string) {
	r.predictions.WithLabelValues(symbol, timeframe, direction).Inc()
}

// RecordCacheHit records a response-cache hit.
func (r *Recorder) RecordCacheHit(operation string) {
	r.cacheHits.WithLabelValues(operation).Inc()
}

// RecordCacheMiss records a response-cache miss.
func (r *Recorder) RecordCacheMiss(operation string) {
	r.cacheMisses.WithLabelValues(operation).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordInferenceLatency records a forward-pass duration in seconds.
func (r *Recorder) RecordInferenceLatency(variant string, seconds float64) {
	r.inferenceLatency.WithLabelValues(variant).Observe(seconds)
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}
