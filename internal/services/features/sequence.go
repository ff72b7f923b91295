package features

import (
	"Coinsight/internal/domain/models"
)

// DefaultSequenceLength is the lookback window fed to the classifier.
const DefaultSequenceLength = 70

// BuildSequence extracts the most recent `length` rows from the feature
// table and normalizes each column with a z-score computed inside the
// window itself (serving path; a training-time scaler is not consulted).
func BuildSequence(table FeatureTable, length int) (models.FeatureSequence, error) {
	if len(table.Rows) < length {
		return models.FeatureSequence{}, &models.InsufficientDataError{
			Symbol: table.Symbol,
			Need:   length,
			Got:    len(table.Rows),
			What:   "feature rows",
		}
	}

	window := table.Rows[len(table.Rows)-length:]
	rows := make([]models.FeatureVector, length)
	copy(rows, window)

	// Per-column z-score over the window: (x - mean) / (std + 1e-8).
	for c := 0; c < 20; c++ {
		col := make([]float64, length)
		for i := range rows {
			col[i] = rows[i][c]
		}
		mean := Mean(col)
		std := Std(col)
		for i := range rows {
			rows[i][c] = (rows[i][c] - mean) / (std + 1e-8)
		}
	}

	return models.FeatureSequence{Symbol: table.Symbol, Rows: rows}, nil
}

// Label classes for offline training-sequence generation.
const (
	LabelBearish = 0
	LabelNeutral = 1
	LabelBullish = 2
)

// CreateLabels assigns a 3-class direction label to every row based on the
// close `horizon` steps ahead: below -threshold% bearish, above +threshold%
// bullish, otherwise neutral. The last `horizon` rows have no future close
// and are omitted.
func CreateLabels(table FeatureTable, horizon int, threshold float64) []int {
	n := len(table.Rows)
	if n <= horizon {
		return nil
	}
	labels := make([]int, n-horizon)
	for i := 0; i < n-horizon; i++ {
		cur := table.Rows[i][ColClose]
		fut := table.Rows[i+horizon][ColClose]
		pct := (fut - cur) / cur * 100
		switch {
		case pct < -threshold:
			labels[i] = LabelBearish
		case pct > threshold:
			labels[i] = LabelBullish
		default:
			labels[i] = LabelNeutral
		}
	}
	return labels
}

// TrainingSample pairs a sliding-window sequence with the label at its end.
type TrainingSample struct {
	Sequence []models.FeatureVector
	Label    int
}

// CreateTrainingSequences slides a window of `length` across the table,
// pairing each window with the label of the row just past it. Offline path;
// the serving contract only uses BuildSequence.
func CreateTrainingSequences(table FeatureTable, labels []int, length int) []TrainingSample {
	n := len(labels)
	if n <= length {
		return nil
	}
	samples := make([]TrainingSample, 0, n-length)
	for i := 0; i < n-length; i++ {
		seq := make([]models.FeatureVector, length)
		copy(seq, table.Rows[i:i+length])
		samples = append(samples, TrainingSample{Sequence: seq, Label: labels[i+length]})
	}
	return samples
}
