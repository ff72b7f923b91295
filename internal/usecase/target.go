package usecase

import (
	"fmt"
	"math"

	"Coinsight/internal/domain/models"
	domrepo "Coinsight/internal/domain/repository"
	"Coinsight/internal/services/features"
)

// buildDetail derives the target-price block from the directional call.
// Expected move scales historical volatility by the horizon (in months)
// and the model's confidence.
func buildDetail(dir models.Direction, confidence, currentPrice float64, prices []float64, tf domrepo.Timeframe) models.PredictionDetail {
	vol := historicalVolatility(prices)
	move := vol * float64(tf.Days()) / 30.0 * confidence

	target := currentPrice
	switch dir {
	case models.DirBullish:
		target = currentPrice * (1 + move)
	case models.DirBearish:
		target = currentPrice * (1 - move)
	}

	gain := 0.0
	if currentPrice != 0 {
		gain = (target - currentPrice) / currentPrice * 100
	}

	return models.PredictionDetail{
		Direction:       dir,
		Confidence:      confidenceLevel(confidence),
		ConfidenceScore: round2(confidence),
		TargetPrice:     round2(target),
		TargetRange: models.TargetRange{
			Low:  round2(target * 0.95),
			High: round2(target * 1.05),
		},
		CurrentPrice:  currentPrice,
		PotentialGain: round2(gain),
	}
}

// historicalVolatility is the sample stddev of day-over-day fractional
// price changes.
func historicalVolatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	changes := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		changes = append(changes, (prices[i]-prices[i-1])/prices[i-1])
	}
	if len(changes) < 2 {
		return 0
	}
	return features.SampleStd(changes)
}

// confidenceLevel bands a confidence score: >=0.70 high, >=0.50 medium,
// else low.
func confidenceLevel(score float64) string {
	switch {
	case score >= 0.70:
		return "high"
	case score >= 0.50:
		return "medium"
	default:
		return "low"
	}
}

// explanation renders the human-readable summary attached to responses.
func explanation(symbol string, d models.PredictionDetail, snap models.IndicatorSnapshot, tf domrepo.Timeframe) string {
	momentum := "sideways"
	switch d.Direction {
	case models.DirBullish:
		momentum = "upward"
	case models.DirBearish:
		momentum = "downward"
	}
	return fmt.Sprintf(
		"%s shows %s momentum over the next %s. RSI at %.1f with a %s MACD crossover and %s volume. Model confidence: %.0f%% (%s).",
		symbol, momentum, string(tf), snap.RSI, snap.MACD, snap.VolumeTrend, d.ConfidenceScore*100, d.Confidence,
	)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
