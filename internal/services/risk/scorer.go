package risk

import (
	"fmt"
	"math"
	"time"

	"Coinsight/internal/domain/models"
	"Coinsight/internal/services/features"
)

// Window lengths for the composite factors.
const (
	volatilityWindow = 30
	swingWindow      = 7
	minPoints        = 30
)

// NoWarnings is the sentinel used when no threshold fires; the warning list
// is never empty.
const NoWarnings = "No major risk warnings"

// Scorer derives a model-free composite risk score from a raw price series.
type Scorer struct {
	cacheTTL time.Duration
}

func NewScorer(cacheTTL time.Duration) *Scorer {
	return &Scorer{cacheTTL: cacheTTL}
}

// Score computes the composite risk assessment. Requires at least 30 points.
func (s *Scorer) Score(series models.PriceSeries) (models.RiskAssessment, error) {
	if series.Len() < minPoints {
		return models.RiskAssessment{}, &models.InsufficientDataError{
			Symbol: series.Symbol,
			Need:   minPoints,
			Got:    series.Len(),
			What:   "price history",
		}
	}

	prices := series.Prices()
	volumes := series.Volumes()

	// Volatility: stddev/mean over the last 30 closes.
	recent30 := prices[len(prices)-volatilityWindow:]
	volatility := features.Std(recent30) / features.Mean(recent30)
	volatilityScore := factorScore(volatility * 200)

	// Swing: (max-min)/mean over the last 7 closes.
	recent7 := prices[len(prices)-swingWindow:]
	maxSwing := (maxOf(recent7) - minOf(recent7)) / features.Mean(recent7)
	swingScore := factorScore(maxSwing * 150)

	// Volume volatility: stddev of successive volume changes.
	volumeVolatility := volumeVol(volumes)
	volumeScore := factorScore(volumeVolatility * 100)

	// Trend strength: least-squares slope of the last 30 closes over index,
	// normalized by mean price.
	trendSlope := slope(recent30) / features.Mean(recent30)
	trendScore := factorScore(math.Abs(trendSlope) * 500)

	composite := int(math.Round(
		float64(volatilityScore)*0.4 +
			float64(swingScore)*0.3 +
			float64(volumeScore)*0.2 +
			float64(trendScore)*0.1,
	))
	if composite < 0 {
		composite = 0
	}
	if composite > 100 {
		composite = 100
	}

	warnings := []string{}
	if volatilityScore > 70 {
		warnings = append(warnings, fmt.Sprintf("High volatility detected (%.1f%% daily stddev)", volatility*100))
	}
	if swingScore > 70 {
		warnings = append(warnings, fmt.Sprintf("Large price swings in last 7 days (%.1f%%)", maxSwing*100))
	}
	if composite > 80 {
		warnings = append(warnings, "EXTREME RISK: This asset is highly volatile and speculative")
	}
	if len(warnings) == 0 {
		warnings = []string{NoWarnings}
	}

	now := time.Now().UTC()
	return models.RiskAssessment{
		Symbol:    series.Symbol,
		RiskScore: composite,
		RiskLevel: Level(composite),
		RiskFactors: models.RiskFactors{
			Volatility:       factor(volatility, volatilityScore),
			PriceSwings:      factor(maxSwing, swingScore),
			VolumeVolatility: factor(volumeVolatility, volumeScore),
			TrendStrength:    factor(math.Abs(trendSlope), trendScore),
		},
		Warnings:       warnings,
		AnalyzedAt:     now,
		CacheExpiresAt: now.Add(s.cacheTTL),
	}, nil
}

// Level maps a composite score to its band: <30 low, <60 medium, <80 high,
// else extreme.
func Level(score int) string {
	switch {
	case score < 30:
		return "low"
	case score < 60:
		return "medium"
	case score < 80:
		return "high"
	default:
		return "extreme"
	}
}

func factor(value float64, score int) models.RiskFactor {
	risk := "low"
	if score > 60 {
		risk = "high"
	} else if score > 30 {
		risk = "medium"
	}
	return models.RiskFactor{
		Value: math.Round(value*10000) / 10000,
		Score: score,
		Risk:  risk,
	}
}

func factorScore(raw float64) int {
	s := int(math.Round(raw))
	if s > 100 {
		return 100
	}
	if s < 0 {
		return 0
	}
	return s
}

// volumeVol is the population stddev of diff(volume)/(volume+1).
func volumeVol(volumes []float64) float64 {
	if len(volumes) < 2 {
		return 0
	}
	changes := make([]float64, len(volumes)-1)
	for i := 1; i < len(volumes); i++ {
		changes[i-1] = (volumes[i] - volumes[i-1]) / (volumes[i-1] + 1)
	}
	return features.Std(changes)
}

// slope is the least-squares slope of xs against its index.
func slope(xs []float64) float64 {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range xs {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}
