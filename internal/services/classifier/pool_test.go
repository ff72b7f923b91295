package classifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"Coinsight/internal/domain/models"
)

type stubClassifier struct {
	probs [3]float64
	err   error
	delay time.Duration
}

func (s stubClassifier) Variant() string { return "current" }

func (s stubClassifier) Predict(ctx context.Context, _ models.FeatureSequence) ([3]float64, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return [3]float64{}, ctx.Err()
		}
	}
	return s.probs, s.err
}

func TestPoolClassify(t *testing.T) {
	p := NewPool(PoolConfig{Workers: 2, QueueSize: 4})
	defer p.Close()

	want := [3]float64{0.1, 0.2, 0.7}
	got, err := p.Classify(context.Background(), stubClassifier{probs: want}, models.FeatureSequence{Symbol: "BTC"})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got != want {
		t.Fatalf("probs = %v, want %v", got, want)
	}
}

func TestPoolPropagatesError(t *testing.T) {
	p := NewPool(PoolConfig{Workers: 1, QueueSize: 1})
	defer p.Close()

	wantErr := errors.New("runtime down")
	_, err := p.Classify(context.Background(), stubClassifier{err: wantErr}, models.FeatureSequence{})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestPoolCancellation(t *testing.T) {
	p := NewPool(PoolConfig{Workers: 1, QueueSize: 1})
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Classify(ctx, stubClassifier{delay: time.Second}, models.FeatureSequence{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestPoolClosedRejectsWork(t *testing.T) {
	p := NewPool(PoolConfig{Workers: 1, QueueSize: 1})
	p.Close()
	// workers drain on close; give them a beat to exit
	time.Sleep(10 * time.Millisecond)

	// the job can still land in the queue buffer, so bound the wait
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Classify(ctx, stubClassifier{}, models.FeatureSequence{})
	if err == nil {
		t.Fatal("expected error on closed pool")
	}
}
