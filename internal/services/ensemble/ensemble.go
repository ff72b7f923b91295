package ensemble

import (
	"fmt"

	"Coinsight/internal/domain/models"
	applogger "Coinsight/pkg/logger"
)

// Aggregator combines predictions from several model variants into one
// decision by a selected method.
type Aggregator struct {
	l *applogger.Logger
}

func NewAggregator(l *applogger.Logger) *Aggregator {
	return &Aggregator{l: l}
}

// Combine merges a non-empty ordered prediction list. Predictions below
// minConfidence are filtered first; if the filter empties the list, the
// unfiltered list is used (non-fatal, logged).
func (a *Aggregator) Combine(predictions []models.ModelPrediction, method Method, minConfidence float64) (models.EnsembleResult, error) {
	if len(predictions) == 0 {
		return models.EnsembleResult{}, fmt.Errorf("no predictions to combine")
	}

	if len(predictions) == 1 {
		p := predictions[0]
		return models.EnsembleResult{
			Probabilities: p.Probabilities,
			Direction:     p.Direction,
			Confidence:    p.Confidence,
			Method:        "single_model",
			Metadata: map[string]interface{}{
				"method":      "single_model",
				"models_used": 1,
				"model_names": []string{p.ModelName},
			},
		}, nil
	}

	filtered := make([]models.ModelPrediction, 0, len(predictions))
	for _, p := range predictions {
		if p.Confidence >= minConfidence {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == 0 {
		if a.l != nil {
			a.l.Warn("ensemble: all predictions below confidence threshold, using all",
				applogger.Any("min_confidence", minConfidence),
				applogger.Int("predictions", len(predictions)),
			)
		}
		filtered = predictions
	}

	switch method {
	case WeightedAverage:
		return a.weightedAverage(filtered), nil
	case MajorityVoting:
		return a.majorityVoting(filtered), nil
	case MaxConfidence:
		return a.maxConfidence(filtered), nil
	default:
		return models.EnsembleResult{}, &models.UnknownMethodError{Method: method.String()}
	}
}

// weightedAverage combines probabilities weighted by historical accuracy.
func (a *Aggregator) weightedAverage(preds []models.ModelPrediction) models.EnsembleResult {
	var total float64
	for _, p := range preds {
		total += p.ModelAccuracy
	}
	weights := make([]float64, len(preds))
	var combined [3]float64
	for i, p := range preds {
		w := p.ModelAccuracy / total
		weights[i] = w
		for c := 0; c < 3; c++ {
			combined[c] += p.Probabilities[c] * w
		}
	}

	confidences := make([]float64, len(preds))
	names := make([]string, len(preds))
	for i, p := range preds {
		confidences[i] = p.Confidence
		names[i] = p.ModelName
	}

	return models.EnsembleResult{
		Probabilities: combined,
		Direction:     models.DirectionFromProbs(combined),
		Confidence:    models.MaxProb(combined),
		Method:        WeightedAverage.String(),
		Metadata: map[string]interface{}{
			"method":                  WeightedAverage.String(),
			"models_used":             len(preds),
			"model_names":             names,
			"weights":                 weights,
			"individual_confidences":  confidences,
			"combined_probabilities":  combined[:],
		},
	}
}

// majorityVoting takes the most frequent discrete direction; ties break by
// first occurrence in input order. The combined vector is the normalized
// per-class vote count, not averaged probabilities.
func (a *Aggregator) majorityVoting(preds []models.ModelPrediction) models.EnsembleResult {
	votes := map[models.Direction]int{}
	order := make([]models.Direction, 0, 3)
	for _, p := range preds {
		if _, seen := votes[p.Direction]; !seen {
			order = append(order, p.Direction)
		}
		votes[p.Direction]++
	}

	majority := order[0]
	for _, d := range order[1:] {
		if votes[d] > votes[majority] {
			majority = d
		}
	}
	voteRatio := float64(votes[majority]) / float64(len(preds))

	var combined [3]float64
	classIdx := map[models.Direction]int{models.DirBearish: 0, models.DirNeutral: 1, models.DirBullish: 2}
	for _, p := range preds {
		combined[classIdx[p.Direction]]++
	}
	for c := 0; c < 3; c++ {
		combined[c] /= float64(len(preds))
	}

	var confSum float64
	var confN int
	directions := make([]string, len(preds))
	names := make([]string, len(preds))
	for i, p := range preds {
		directions[i] = string(p.Direction)
		names[i] = p.ModelName
		if p.Direction == majority {
			confSum += p.Confidence
			confN++
		}
	}
	confidence := voteRatio * (confSum / float64(confN))

	voteCounts := map[string]int{}
	for d, n := range votes {
		voteCounts[string(d)] = n
	}

	return models.EnsembleResult{
		Probabilities: combined,
		Direction:     majority,
		Confidence:    confidence,
		Method:        MajorityVoting.String(),
		Metadata: map[string]interface{}{
			"method":                MajorityVoting.String(),
			"models_used":           len(preds),
			"model_names":           names,
			"vote_counts":           voteCounts,
			"vote_ratio":            voteRatio,
			"individual_directions": directions,
		},
	}
}

// maxConfidence passes through the strictly highest-confidence prediction;
// the first occurrence wins on ties.
func (a *Aggregator) maxConfidence(preds []models.ModelPrediction) models.EnsembleResult {
	best := preds[0]
	for _, p := range preds[1:] {
		if p.Confidence > best.Confidence {
			best = p
		}
	}

	confidences := make([]float64, len(preds))
	names := make([]string, len(preds))
	for i, p := range preds {
		confidences[i] = p.Confidence
		names[i] = p.ModelName
	}

	return models.EnsembleResult{
		Probabilities: best.Probabilities,
		Direction:     best.Direction,
		Confidence:    best.Confidence,
		Method:        MaxConfidence.String(),
		Metadata: map[string]interface{}{
			"method":              MaxConfidence.String(),
			"models_used":         len(preds),
			"model_names":         names,
			"selected_model":      best.ModelName,
			"selected_confidence": best.Confidence,
			"all_confidences":     confidences,
		},
	}
}
