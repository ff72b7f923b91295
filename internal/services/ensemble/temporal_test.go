package ensemble

import (
	"math"
	"testing"

	"Coinsight/internal/domain/models"
)

func TestTemporalCapacity(t *testing.T) {
	tmp := NewTemporal(0.9)
	for i := 0; i < 11; i++ {
		tmp.Add("BTC", pred("m", [3]float64{0.1, 0.1, 0.8}, 0.5))
	}
	if got := tmp.Len("BTC"); got != 10 {
		t.Fatalf("len = %d, want 10 after overflow", got)
	}
}

func TestTemporalFIFOEviction(t *testing.T) {
	tmp := NewTemporal(0.9)
	for i := 0; i < 11; i++ {
		conf := 0.5 + float64(i)*0.01
		tmp.Add("ETH", pred("m", [3]float64{1 - conf, 0, conf}, 0.5))
	}
	hist := tmp.History("ETH")
	if len(hist) != 10 {
		t.Fatalf("history len = %d", len(hist))
	}
	// oldest surviving entry is the second push (conf 0.51)
	if math.Abs(hist[0].Confidence-0.51) > 1e-12 {
		t.Fatalf("oldest entry conf = %v, want 0.51", hist[0].Confidence)
	}
	if math.Abs(hist[9].Confidence-0.60) > 1e-12 {
		t.Fatalf("newest entry conf = %v, want 0.60", hist[9].Confidence)
	}
}

func TestTemporalCombineEmpty(t *testing.T) {
	tmp := NewTemporal(0.9)
	if _, err := tmp.Combine("BTC"); err == nil {
		t.Fatal("expected error for empty history")
	}
}

func TestTemporalCombineWeightsRecentHigher(t *testing.T) {
	tmp := NewTemporal(0.5)
	tmp.Add("BTC", pred("m", [3]float64{1, 0, 0}, 0.5)) // old, bearish
	tmp.Add("BTC", pred("m", [3]float64{0, 0, 1}, 0.5)) // recent, bullish

	res, err := tmp.Combine("BTC")
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	// weights 0.5 and 1.0 normalized: 1/3 old, 2/3 recent
	if math.Abs(res.Probabilities[0]-1.0/3.0) > 1e-12 {
		t.Fatalf("bearish prob = %v, want 1/3", res.Probabilities[0])
	}
	if math.Abs(res.Probabilities[2]-2.0/3.0) > 1e-12 {
		t.Fatalf("bullish prob = %v, want 2/3", res.Probabilities[2])
	}
	if res.Direction != models.DirBullish {
		t.Fatalf("direction = %s, want bullish", res.Direction)
	}
	if res.Method != "temporal_ensemble" {
		t.Fatalf("method = %q", res.Method)
	}
}

func TestTemporalClear(t *testing.T) {
	tmp := NewTemporal(0.9)
	tmp.Add("BTC", pred("m", [3]float64{0, 0, 1}, 0.5))
	tmp.Clear("BTC")
	if tmp.Len("BTC") != 0 {
		t.Fatal("clear must drop history")
	}
}

func TestTrend(t *testing.T) {
	bull := pred("m", [3]float64{0.1, 0.1, 0.8}, 0.5)
	bear := pred("m", [3]float64{0.8, 0.1, 0.1}, 0.5)
	neut := pred("m", [3]float64{0.1, 0.8, 0.1}, 0.5)

	for _, tc := range []struct {
		name  string
		preds []models.ModelPrediction
		want  string
	}{
		{"short", []models.ModelPrediction{bull, bull}, "insufficient_data"},
		{"bullish", []models.ModelPrediction{bear, bull, bull, bull}, "strong_bullish"},
		{"bearish", []models.ModelPrediction{bear, bear, bear}, "strong_bearish"},
		{"neutral", []models.ModelPrediction{neut, neut, neut}, "consistent_neutral"},
		{"mixed", []models.ModelPrediction{bull, bear, bull}, "mixed"},
	} {
		if got := Trend(tc.preds); got != tc.want {
			t.Fatalf("%s: Trend = %q, want %q", tc.name, got, tc.want)
		}
	}
}
