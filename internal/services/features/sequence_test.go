package features

import (
	"errors"
	"math"
	"testing"

	"Coinsight/internal/domain/models"
)

func tableOf(n int) FeatureTable {
	t := FeatureTable{Symbol: "BTC"}
	for i := 0; i < n; i++ {
		var row models.FeatureVector
		for c := 0; c < 20; c++ {
			row[c] = float64(i) + float64(c)*0.1
		}
		t.Rows = append(t.Rows, row)
		t.Times = append(t.Times, i)
	}
	return t
}

func TestBuildSequenceLengthGuard(t *testing.T) {
	_, err := BuildSequence(tableOf(69), DefaultSequenceLength)
	var ide *models.InsufficientDataError
	if !errors.As(err, &ide) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	if ide.Need != 70 || ide.Got != 69 {
		t.Fatalf("need/got = %d/%d", ide.Need, ide.Got)
	}
}

func TestBuildSequenceWindowAndNormalization(t *testing.T) {
	table := tableOf(100)
	seq, err := BuildSequence(table, DefaultSequenceLength)
	if err != nil {
		t.Fatalf("BuildSequence: %v", err)
	}
	if len(seq.Rows) != 70 {
		t.Fatalf("sequence length = %d", len(seq.Rows))
	}

	// each column is z-scored inside the window: mean ~0, last value largest
	for c := 0; c < 20; c++ {
		var sum float64
		for _, row := range seq.Rows {
			sum += row[c]
		}
		if math.Abs(sum/70) > 1e-6 {
			t.Fatalf("column %d mean = %v, want ~0", c, sum/70)
		}
		if seq.Rows[69][c] <= seq.Rows[0][c] {
			t.Fatalf("normalization must preserve monotonic order in column %d", c)
		}
	}
}

func TestBuildSequenceConstantColumn(t *testing.T) {
	table := FeatureTable{Symbol: "BTC"}
	for i := 0; i < 70; i++ {
		var row models.FeatureVector
		row[ColSocialScore] = SentimentPlaceholder
		row[ColClose] = float64(i)
		table.Rows = append(table.Rows, row)
	}
	seq, err := BuildSequence(table, 70)
	if err != nil {
		t.Fatalf("BuildSequence: %v", err)
	}
	// constant column: std 0, epsilon keeps the division finite and the
	// normalized values at 0
	for _, row := range seq.Rows {
		if row[ColSocialScore] != 0 {
			t.Fatalf("constant column normalized to %v, want 0", row[ColSocialScore])
		}
	}
}

func TestBuildSequenceDoesNotMutateTable(t *testing.T) {
	table := tableOf(70)
	before := table.Rows[0][ColClose]
	if _, err := BuildSequence(table, 70); err != nil {
		t.Fatalf("BuildSequence: %v", err)
	}
	if table.Rows[0][ColClose] != before {
		t.Fatal("source table was mutated")
	}
}

func TestCreateLabels(t *testing.T) {
	table := FeatureTable{}
	closes := []float64{100, 100, 103, 97, 100}
	for _, c := range closes {
		var row models.FeatureVector
		row[ColClose] = c
		table.Rows = append(table.Rows, row)
	}

	labels := CreateLabels(table, 1, 2.0)
	want := []int{LabelNeutral, LabelBullish, LabelBearish, LabelBullish}
	if len(labels) != len(want) {
		t.Fatalf("labels len = %d, want %d", len(labels), len(want))
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("label[%d] = %d, want %d", i, labels[i], want[i])
		}
	}
}

func TestCreateTrainingSequences(t *testing.T) {
	table := tableOf(20)
	labels := CreateLabels(table, 1, 0.5)
	samples := CreateTrainingSequences(table, labels, 5)

	if len(samples) != len(labels)-5 {
		t.Fatalf("samples = %d, want %d", len(samples), len(labels)-5)
	}
	if len(samples[0].Sequence) != 5 {
		t.Fatalf("sequence length = %d", len(samples[0].Sequence))
	}
	// window i covers rows [i, i+5); its label is the one just past it
	if samples[0].Label != labels[5] {
		t.Fatalf("label misaligned")
	}
}
