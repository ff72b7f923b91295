package risk

import (
	"errors"
	"math"
	"testing"
	"time"

	"Coinsight/internal/domain/models"
)

func seriesOf(symbol string, prices, volumes []float64) models.PriceSeries {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, len(prices))
	for i := range prices {
		points[i] = models.PricePoint{
			Time:  base.AddDate(0, 0, i),
			Price: prices[i],
		}
		if volumes != nil {
			points[i].Volume = volumes[i]
			points[i].HasVolume = true
		}
	}
	return models.PriceSeries{Symbol: symbol, Points: points}
}

func flatSeries(n int, price float64) models.PriceSeries {
	prices := make([]float64, n)
	vols := make([]float64, n)
	for i := range prices {
		prices[i] = price
		vols[i] = 1000
	}
	return seriesOf("BTC", prices, vols)
}

func TestScoreRequiresThirtyPoints(t *testing.T) {
	s := NewScorer(2 * time.Hour)
	_, err := s.Score(flatSeries(29, 100))

	var ide *models.InsufficientDataError
	if !errors.As(err, &ide) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	if ide.Need != 30 || ide.Got != 29 {
		t.Fatalf("need/got = %d/%d", ide.Need, ide.Got)
	}
}

func TestScoreFlatSeriesIsZeroRisk(t *testing.T) {
	s := NewScorer(2 * time.Hour)
	got, err := s.Score(flatSeries(30, 100))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got.RiskScore != 0 {
		t.Fatalf("risk score = %d, want 0 for a flat series", got.RiskScore)
	}
	if got.RiskLevel != "low" {
		t.Fatalf("risk level = %q, want low", got.RiskLevel)
	}
	if len(got.Warnings) != 1 || got.Warnings[0] != NoWarnings {
		t.Fatalf("warnings = %v, want sentinel", got.Warnings)
	}
	if !got.CacheExpiresAt.After(got.AnalyzedAt) {
		t.Fatal("cache expiry must trail analysis time")
	}
}

func TestScoreVolatileSeries(t *testing.T) {
	// alternate 100/300: relative stddev 0.5 and 200-point swings saturate
	// the volatility and swing factors
	prices := make([]float64, 30)
	vols := make([]float64, 30)
	for i := range prices {
		if i%2 == 0 {
			prices[i] = 100
			vols[i] = 1000
		} else {
			prices[i] = 300
			vols[i] = 50000
		}
	}
	s := NewScorer(2 * time.Hour)
	got, err := s.Score(seriesOf("DOGE", prices, vols))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got.RiskLevel != "extreme" {
		t.Fatalf("risk level = %q (score %d), want extreme", got.RiskLevel, got.RiskScore)
	}
	if got.RiskScore > 100 {
		t.Fatalf("score %d exceeds clamp", got.RiskScore)
	}
	found := false
	for _, w := range got.Warnings {
		if w == "EXTREME RISK: This asset is highly volatile and speculative" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected extreme-risk warning, got %v", got.Warnings)
	}
}

func TestLevelBoundaries(t *testing.T) {
	for _, tc := range []struct {
		score int
		want  string
	}{
		{0, "low"}, {29, "low"},
		{30, "medium"}, {59, "medium"},
		{60, "high"}, {79, "high"},
		{80, "extreme"}, {100, "extreme"},
	} {
		if got := Level(tc.score); got != tc.want {
			t.Fatalf("Level(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestFactorScoreClamps(t *testing.T) {
	if got := factorScore(250); got != 100 {
		t.Fatalf("factorScore(250) = %d", got)
	}
	if got := factorScore(-3); got != 0 {
		t.Fatalf("factorScore(-3) = %d", got)
	}
	if got := factorScore(49.6); got != 50 {
		t.Fatalf("factorScore(49.6) = %d, want rounded 50", got)
	}
}

func TestSlopeOfLine(t *testing.T) {
	xs := []float64{1, 3, 5, 7, 9}
	if got := slope(xs); math.Abs(got-2) > 1e-12 {
		t.Fatalf("slope = %v, want 2", got)
	}
	if got := slope([]float64{5}); got != 0 {
		t.Fatalf("degenerate slope = %v, want 0", got)
	}
}

func TestTrendFactorReflectsSlope(t *testing.T) {
	// steep uptrend doubles over 30 days: trend factor should register
	prices := make([]float64, 30)
	vols := make([]float64, 30)
	for i := range prices {
		prices[i] = 100 + float64(i)*10
		vols[i] = 1000
	}
	s := NewScorer(time.Hour)
	got, err := s.Score(seriesOf("SOL", prices, vols))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got.RiskFactors.TrendStrength.Score == 0 {
		t.Fatal("trend strength should be non-zero on a steep trend")
	}
	if got.RiskFactors.VolumeVolatility.Score != 0 {
		t.Fatalf("volume volatility = %d, want 0 for constant volume", got.RiskFactors.VolumeVolatility.Score)
	}
}
