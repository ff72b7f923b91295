package models

import "time"

// Direction is the arg-max class of a 3-class probability triple.
type Direction string

const (
	DirBearish Direction = "bearish"
	DirNeutral Direction = "neutral"
	DirBullish Direction = "bullish"
)

// DirectionFromProbs maps a probability triple to its dominant class.
// Ties break in class-index order: bearish < neutral < bullish.
func DirectionFromProbs(probs [3]float64) Direction {
	idx := 0
	for i := 1; i < 3; i++ {
		if probs[i] > probs[idx] {
			idx = i
		}
	}
	return [3]Direction{DirBearish, DirNeutral, DirBullish}[idx]
}

// MaxProb returns the maximum component of a probability triple.
func MaxProb(probs [3]float64) float64 {
	m := probs[0]
	for _, p := range probs[1:] {
		if p > m {
			m = p
		}
	}
	return m
}

// ModelPrediction is the output of a single classifier invocation.
// Immutable once created.
type ModelPrediction struct {
	Symbol        string    `json:"symbol"`
	Probabilities [3]float64 `json:"probabilities"` // [bearish, neutral, bullish]
	Direction     Direction `json:"direction"`
	Confidence    float64   `json:"confidence"`
	ModelName     string    `json:"modelName"`
	ModelAccuracy float64   `json:"modelAccuracy"` // historical accuracy weight in [0,1]
	CreatedAt     time.Time `json:"createdAt"`
}

// NewModelPrediction derives direction and confidence from the triple.
func NewModelPrediction(symbol string, probs [3]float64, modelName string, accuracy float64) ModelPrediction {
	return ModelPrediction{
		Symbol:        symbol,
		Probabilities: probs,
		Direction:     DirectionFromProbs(probs),
		Confidence:    MaxProb(probs),
		ModelName:     modelName,
		ModelAccuracy: accuracy,
		CreatedAt:     time.Now().UTC(),
	}
}

// EnsembleResult is the combined decision over one or more model predictions.
type EnsembleResult struct {
	Probabilities [3]float64             `json:"probabilities"`
	Direction     Direction              `json:"direction"`
	Confidence    float64                `json:"confidence"`
	Method        string                 `json:"method"`
	Metadata      map[string]interface{} `json:"metadata"`
}

// FeatureVector is one row of the engineered feature table.
// Exactly 20 named columns; see features.ColumnNames for the stable order.
type FeatureVector [20]float64

// FeatureSequence is a fixed-length lookback window of feature vectors.
type FeatureSequence struct {
	Symbol string
	Rows   []FeatureVector
}

// IndicatorSnapshot is the latest-row indicator summary attached to responses.
type IndicatorSnapshot struct {
	RSI             float64 `json:"rsi"`
	MACD            string  `json:"macd"` // "bullish" when macd > signal
	VolumeTrend     string  `json:"volumeTrend"`
	SocialSentiment float64 `json:"socialSentiment"`
}

// TargetRange is the ±5% band reported around a target price.
type TargetRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// PredictionDetail carries the directional call and target-price math.
type PredictionDetail struct {
	Direction       Direction   `json:"direction"`
	Confidence      string      `json:"confidence"` // high / medium / low
	ConfidenceScore float64     `json:"confidenceScore"`
	TargetPrice     float64     `json:"targetPrice"`
	TargetRange     TargetRange `json:"targetPriceRange"`
	CurrentPrice    float64     `json:"currentPrice"`
	PotentialGain   float64     `json:"potentialGain"`
}

// HistoricalAccuracy exposes checkpoint accuracy metrics.
type HistoricalAccuracy struct {
	Last30Days float64 `json:"last30Days"`
	Last90Days float64 `json:"last90Days"`
}

// PredictionResponse is the serialized answer for a prediction request.
type PredictionResponse struct {
	Symbol             string             `json:"symbol"`
	Timeframe          string             `json:"timeframe"`
	Prediction         PredictionDetail   `json:"prediction"`
	Indicators         IndicatorSnapshot  `json:"indicators"`
	Explanation        string             `json:"explanation"`
	HistoricalAccuracy HistoricalAccuracy `json:"historicalAccuracy"`
	GeneratedAt        time.Time          `json:"generatedAt"`
	ExpiresAt          time.Time          `json:"expiresAt"`
	ModelVersion       string             `json:"modelVersion"`
}

// EnsemblePredictionResponse adds combination metadata to a prediction.
type EnsemblePredictionResponse struct {
	Symbol           string                 `json:"symbol"`
	Timeframe        string                 `json:"timeframe"`
	Prediction       PredictionDetail       `json:"prediction"`
	Indicators       IndicatorSnapshot      `json:"indicators"`
	Explanation      string                 `json:"explanation"`
	EnsembleMetadata map[string]interface{} `json:"ensembleMetadata"`
	GeneratedAt      time.Time              `json:"generatedAt"`
	ExpiresAt        time.Time              `json:"expiresAt"`
	ModelVersion     string                 `json:"modelVersion"`
}

// TemporalPredictionResponse exposes the decayed history combination.
type TemporalPredictionResponse struct {
	Symbol        string                 `json:"symbol"`
	Probabilities [3]float64             `json:"probabilities"`
	Direction     Direction              `json:"direction"`
	Confidence    float64                `json:"confidence"`
	Trend         string                 `json:"trend"`
	Metadata      map[string]interface{} `json:"metadata"`
	GeneratedAt   time.Time              `json:"generatedAt"`
}

// ModelInfo describes a checkpoint without touching its weights.
type ModelInfo struct {
	Symbol       string  `json:"symbol"`
	Status       string  `json:"status"` // trained / not_trained
	ModelVersion string  `json:"modelVersion"`
	LastTrained  string  `json:"lastTrained,omitempty"`
	Accuracy7d   float64 `json:"accuracy7d,omitempty"`
	Variants     []string `json:"variants,omitempty"`
}
