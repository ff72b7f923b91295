package classifier

import (
	"context"
	"fmt"

	"Coinsight/internal/domain/models"
	domrepo "Coinsight/internal/domain/repository"
)

// Pool dispatches classifier forward passes to a bounded set of workers so
// request handlers are not blocked for the duration of inference. A request
// waits only on its own job; cancellation discards the in-flight result.
type Pool struct {
	jobs chan job
	done chan struct{}
}

type job struct {
	ctx    context.Context
	cls    domrepo.Classifier
	seq    models.FeatureSequence
	result chan jobResult
}

type jobResult struct {
	probs [3]float64
	err   error
}

// PoolConfig mirrors the worker/queue sizing knobs of the service config.
type PoolConfig struct {
	Workers   int
	QueueSize int
}

func NewPool(cfg PoolConfig) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	p := &Pool{
		jobs: make(chan job, cfg.QueueSize),
		done: make(chan struct{}),
	}
	for i := 0; i < cfg.Workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for {
		select {
		case <-p.done:
			return
		case j := <-p.jobs:
			if j.ctx.Err() != nil {
				j.result <- jobResult{err: j.ctx.Err()}
				continue
			}
			probs, err := j.cls.Predict(j.ctx, j.seq)
			j.result <- jobResult{probs: probs, err: err}
		}
	}
}

// Classify submits a forward pass and waits for its completion or the
// context's cancellation.
func (p *Pool) Classify(ctx context.Context, cls domrepo.Classifier, seq models.FeatureSequence) ([3]float64, error) {
	j := job{ctx: ctx, cls: cls, seq: seq, result: make(chan jobResult, 1)}

	select {
	case p.jobs <- j:
	case <-ctx.Done():
		return [3]float64{}, ctx.Err()
	case <-p.done:
		return [3]float64{}, fmt.Errorf("inference pool closed")
	}

	select {
	case r := <-j.result:
		return r.probs, r.err
	case <-ctx.Done():
		return [3]float64{}, ctx.Err()
	}
}

// Close stops the workers; queued jobs are abandoned.
func (p *Pool) Close() {
	close(p.done)
}
