package classifier

import (
	"context"
	"fmt"
	"math"
	"time"

	"Coinsight/internal/domain/models"
	xhttp "Coinsight/pkg/http"
)

// probSumTolerance bounds the accepted deviation of a probability triple
// from summing to exactly 1.
const probSumTolerance = 1e-6

// RuntimeClient posts normalized sequences to the inference runtime.
// One instance is shared by all variant classifiers.
type RuntimeClient struct {
	baseURL string
	client  *xhttp.Client
}

func NewRuntimeClient(baseURL string, timeout time.Duration) *RuntimeClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RuntimeClient{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type inferRequest struct {
	Symbol      string        `json:"symbol"`
	Variant     string        `json:"variant"`
	HiddenSizes []int         `json:"hidden_sizes"`
	Dropout     float64       `json:"dropout"`
	Sequence    [][20]float64 `json:"sequence"`
}

type inferResponse struct {
	Probabilities [3]float64 `json:"probabilities"`
}

// VariantClassifier wraps one checkpoint variant as an independent
// prediction source.
type VariantClassifier struct {
	handle Handle
	rt     *RuntimeClient
}

func NewVariantClassifier(handle Handle, rt *RuntimeClient) *VariantClassifier {
	return &VariantClassifier{handle: handle, rt: rt}
}

func (c *VariantClassifier) Variant() string { return c.handle.Variant }

// Handle exposes the checkpoint descriptor for metadata access.
func (c *VariantClassifier) Handle() Handle { return c.handle }

// Predict maps a normalized [L x 20] sequence to a 3-class probability
// triple. Invalid triples from the runtime are an error, never repaired.
func (c *VariantClassifier) Predict(ctx context.Context, seq models.FeatureSequence) ([3]float64, error) {
	rows := make([][20]float64, len(seq.Rows))
	for i, r := range seq.Rows {
		rows[i] = r
	}
	req := inferRequest{
		Symbol:      seq.Symbol,
		Variant:     c.handle.Variant,
		HiddenSizes: c.handle.Config.HiddenSizes,
		Dropout:     c.handle.Config.Dropout,
		Sequence:    rows,
	}

	var resp inferResponse
	err := c.rt.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.rt.baseURL + "/infer",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: req,
	}, &resp)
	if err != nil {
		return [3]float64{}, fmt.Errorf("infer %s/%s: %w", seq.Symbol, c.handle.Variant, err)
	}

	if err := ValidateProbs(resp.Probabilities); err != nil {
		return [3]float64{}, fmt.Errorf("infer %s/%s: %w", seq.Symbol, c.handle.Variant, err)
	}
	return resp.Probabilities, nil
}

// ValidateProbs enforces the classifier output contract: non-negative
// components summing to 1 within tolerance.
func ValidateProbs(probs [3]float64) error {
	sum := 0.0
	for _, p := range probs {
		if p < 0 || math.IsNaN(p) {
			return fmt.Errorf("invalid probability component %v", p)
		}
		sum += p
	}
	if math.Abs(sum-1) > probSumTolerance {
		return fmt.Errorf("probabilities sum to %v, want 1", sum)
	}
	return nil
}

var _ interface {
	Variant() string
	Predict(ctx context.Context, seq models.FeatureSequence) ([3]float64, error)
} = (*VariantClassifier)(nil)
