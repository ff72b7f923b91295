package ensemble

import (
	"fmt"
	"math"
	"sync"

	"Coinsight/internal/domain/models"
)

// historyCapacity bounds the per-symbol prediction FIFO.
const historyCapacity = 10

// ring is a fixed-capacity FIFO of model predictions; the oldest entry is
// dropped once capacity is exceeded.
type ring struct {
	buf   [historyCapacity]models.ModelPrediction
	start int
	n     int
}

func (r *ring) push(p models.ModelPrediction) {
	if r.n < historyCapacity {
		r.buf[(r.start+r.n)%historyCapacity] = p
		r.n++
		return
	}
	r.buf[r.start] = p
	r.start = (r.start + 1) % historyCapacity
}

// items returns entries oldest-first.
func (r *ring) items() []models.ModelPrediction {
	out := make([]models.ModelPrediction, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.buf[(r.start+i)%historyCapacity]
	}
	return out
}

// Temporal combines a rolling per-symbol history of past predictions with
// exponential decay, weighting recent entries higher.
type Temporal struct {
	decay float64

	mu      sync.RWMutex
	history map[string]*ring
}

// NewTemporal creates a temporal ensemble; decay must be in (0,1).
func NewTemporal(decay float64) *Temporal {
	if decay <= 0 || decay >= 1 {
		decay = 0.9
	}
	return &Temporal{decay: decay, history: make(map[string]*ring)}
}

// Add appends a prediction to the symbol's history.
func (t *Temporal) Add(symbol string, p models.ModelPrediction) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.history[symbol]
	if !ok {
		r = &ring{}
		t.history[symbol] = r
	}
	r.push(p)
}

// Len returns the number of stored predictions for a symbol.
func (t *Temporal) Len(symbol string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if r, ok := t.history[symbol]; ok {
		return r.n
	}
	return 0
}

// History returns the stored predictions oldest-first.
func (t *Temporal) History(symbol string) []models.ModelPrediction {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if r, ok := t.history[symbol]; ok {
		return r.items()
	}
	return nil
}

// Clear drops the history for one symbol.
func (t *Temporal) Clear(symbol string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.history, symbol)
}

// Combine produces the decay-weighted combination over the stored history.
// Weight of the i-th oldest of n entries is decay^(n-1-i), normalized.
func (t *Temporal) Combine(symbol string) (models.EnsembleResult, error) {
	preds := t.History(symbol)
	if len(preds) == 0 {
		return models.EnsembleResult{}, fmt.Errorf("no prediction history for %s", symbol)
	}

	n := len(preds)
	weights := make([]float64, n)
	var total float64
	for i := range weights {
		weights[i] = math.Pow(t.decay, float64(n-1-i))
		total += weights[i]
	}

	var combined [3]float64
	for i, p := range preds {
		w := weights[i] / total
		weights[i] = w
		for c := 0; c < 3; c++ {
			combined[c] += p.Probabilities[c] * w
		}
	}

	return models.EnsembleResult{
		Probabilities: combined,
		Direction:     models.DirectionFromProbs(combined),
		Confidence:    models.MaxProb(combined),
		Method:        "temporal_ensemble",
		Metadata: map[string]interface{}{
			"method":           "temporal_ensemble",
			"predictions_used": n,
			"decay_factor":     t.decay,
			"weights":          weights,
			"trend":            Trend(preds),
		},
	}, nil
}

// Trend classifies the last 3 predictions of a history:
// all bullish → strong_bullish, all bearish → strong_bearish, all equal to
// another direction → consistent_<direction>, mixed → mixed, and fewer than
// 3 entries → insufficient_data.
func Trend(preds []models.ModelPrediction) string {
	if len(preds) < 3 {
		return "insufficient_data"
	}
	recent := preds[len(preds)-3:]
	first := recent[0].Direction
	for _, p := range recent[1:] {
		if p.Direction != first {
			return "mixed"
		}
	}
	switch first {
	case models.DirBullish:
		return "strong_bullish"
	case models.DirBearish:
		return "strong_bearish"
	default:
		return "consistent_" + string(first)
	}
}
