package usecase

import (
	"math"
	"strings"
	"testing"

	"Coinsight/internal/domain/models"
	domrepo "Coinsight/internal/domain/repository"
)

func TestHistoricalVolatility(t *testing.T) {
	// +10% then -10%: sample stddev of {0.1, -0.1}
	got := historicalVolatility([]float64{100, 110, 99})
	want := math.Sqrt(0.02) // sample std of the two changes
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("volatility = %v, want %v", got, want)
	}

	if historicalVolatility([]float64{100}) != 0 {
		t.Fatal("single point must yield zero volatility")
	}
	// zero prices skip the change; fewer than 2 changes collapses to 0
	if historicalVolatility([]float64{0, 100, 110}) != 0 {
		t.Fatal("degenerate series must yield zero volatility")
	}
}

func TestConfidenceLevel(t *testing.T) {
	for _, tc := range []struct {
		score float64
		want  string
	}{
		{0.85, "high"}, {0.70, "high"},
		{0.69, "medium"}, {0.50, "medium"},
		{0.49, "low"}, {0.1, "low"},
	} {
		if got := confidenceLevel(tc.score); got != tc.want {
			t.Fatalf("confidenceLevel(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestBuildDetailBullish(t *testing.T) {
	// constant +10% daily changes: zero sample stddev, so pick a series with
	// alternating moves and verify the formula numerically instead
	prices := []float64{100, 110, 99, 108.9}
	vol := historicalVolatility(prices)

	d := buildDetail(models.DirBullish, 0.8, 100, prices, domrepo.TF7d)

	move := vol * 7.0 / 30.0 * 0.8
	wantTarget := math.Round(100*(1+move)*100) / 100
	if d.TargetPrice != wantTarget {
		t.Fatalf("target = %v, want %v", d.TargetPrice, wantTarget)
	}
	if d.TargetPrice <= d.CurrentPrice {
		t.Fatal("bullish target must exceed current price")
	}
	if d.Confidence != "high" || d.ConfidenceScore != 0.8 {
		t.Fatalf("confidence = %q/%v", d.Confidence, d.ConfidenceScore)
	}
	if d.TargetRange.Low >= d.TargetPrice || d.TargetRange.High <= d.TargetPrice {
		t.Fatalf("range %v does not bracket target %v", d.TargetRange, d.TargetPrice)
	}
	if d.PotentialGain <= 0 {
		t.Fatalf("potential gain = %v, want > 0", d.PotentialGain)
	}
}

func TestBuildDetailBearishAndNeutral(t *testing.T) {
	prices := []float64{100, 110, 99, 108.9}

	bear := buildDetail(models.DirBearish, 0.6, 100, prices, domrepo.TF30d)
	if bear.TargetPrice >= bear.CurrentPrice {
		t.Fatal("bearish target must be below current price")
	}
	if bear.PotentialGain >= 0 {
		t.Fatalf("bearish potential gain = %v, want < 0", bear.PotentialGain)
	}

	neut := buildDetail(models.DirNeutral, 0.6, 100, prices, domrepo.TF7d)
	if neut.TargetPrice != 100 {
		t.Fatalf("neutral target = %v, want current price", neut.TargetPrice)
	}
	if neut.PotentialGain != 0 {
		t.Fatalf("neutral gain = %v, want 0", neut.PotentialGain)
	}
}

func TestExplanation(t *testing.T) {
	d := models.PredictionDetail{
		Direction:       models.DirBullish,
		Confidence:      "high",
		ConfidenceScore: 0.82,
	}
	snap := models.IndicatorSnapshot{RSI: 61.3, MACD: "bullish", VolumeTrend: "increasing"}

	got := explanation("BTC", d, snap, domrepo.TF7d)
	for _, frag := range []string{"BTC", "upward", "7d", "61.3", "bullish MACD", "increasing volume", "82%", "(high)"} {
		if !strings.Contains(got, frag) {
			t.Fatalf("explanation %q missing %q", got, frag)
		}
	}
}

func TestRound2(t *testing.T) {
	if round2(1.005) != 1.0 && round2(1.005) != 1.01 {
		t.Fatalf("round2(1.005) = %v", round2(1.005))
	}
	if round2(2.344) != 2.34 || round2(2.346) != 2.35 {
		t.Fatalf("round2 drifted: %v %v", round2(2.344), round2(2.346))
	}
}
