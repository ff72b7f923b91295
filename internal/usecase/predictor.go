package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"Coinsight/internal/domain/models"
	domrepo "Coinsight/internal/domain/repository"
	"Coinsight/internal/service/pricefeed"
	"Coinsight/internal/services/classifier"
	"Coinsight/internal/services/ensemble"
	"Coinsight/internal/services/features"
	"Coinsight/internal/services/risk"
	"Coinsight/pkg/cache"
	applogger "Coinsight/pkg/logger"
)

const (
	// minHistoryDays is the raw-series floor below which the indicator
	// warm-up cannot leave a full lookback window.
	minHistoryDays = 91
	// fetchHistoryDays is requested from the store to leave headroom over
	// the minimum.
	fetchHistoryDays = 120

	riskHistoryDays = 90

	// feedMaxAge bounds how stale a streamed spot price may be before the
	// store's latest close is preferred.
	feedMaxAge = 5 * time.Minute
)

// PredictorConfig carries the orchestration knobs from the service config.
type PredictorConfig struct {
	Symbols        []string
	SequenceLength int
	CacheTTL       time.Duration
	RiskCacheTTL   time.Duration
}

// Predictor orchestrates the full prediction pipeline: history fetch,
// feature engineering, sequence building, inference, ensembling, risk
// scoring and response caching.
type Predictor struct {
	cfg PredictorConfig

	store     domrepo.PriceStore
	registry  *classifier.Registry
	runtime   *classifier.RuntimeClient
	pool      *classifier.Pool
	agg       *ensemble.Aggregator
	temporal  *ensemble.Temporal
	scorer    *risk.Scorer
	cache     cache.Service
	publisher domrepo.EventPublisher
	metrics   domrepo.Metrics
	feed      *pricefeed.Feed
	l         *applogger.Logger

	symbols map[string]struct{}
}

// NewPredictor wires the prediction pipeline. The feed may be nil when the
// live price stream is disabled.
func NewPredictor(
	cfg PredictorConfig,
	store domrepo.PriceStore,
	registry *classifier.Registry,
	runtime *classifier.RuntimeClient,
	pool *classifier.Pool,
	agg *ensemble.Aggregator,
	temporal *ensemble.Temporal,
	scorer *risk.Scorer,
	c cache.Service,
	publisher domrepo.EventPublisher,
	m domrepo.Metrics,
	feed *pricefeed.Feed,
	l *applogger.Logger,
) *Predictor {
	if cfg.SequenceLength <= 0 {
		cfg.SequenceLength = features.DefaultSequenceLength
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.RiskCacheTTL <= 0 {
		cfg.RiskCacheTTL = 2 * time.Hour
	}

	symbols := make(map[string]struct{}, len(cfg.Symbols))
	for _, s := range cfg.Symbols {
		symbols[strings.ToUpper(s)] = struct{}{}
	}

	return &Predictor{
		cfg:       cfg,
		store:     store,
		registry:  registry,
		runtime:   runtime,
		pool:      pool,
		agg:       agg,
		temporal:  temporal,
		scorer:    scorer,
		cache:     c,
		publisher: publisher,
		metrics:   m,
		feed:      feed,
		l:         l,
		symbols:   symbols,
	}
}

// Predict runs the single-model pipeline for a symbol and timeframe,
// serving from cache when a fresh response exists.
func (p *Predictor) Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResponse, error) {
	symbol, tf, err := p.validate(req.Symbol, req.Timeframe)
	if err != nil {
		return nil, err
	}

	key := cache.GenerateKey("prediction", symbol, string(tf))
	var cached models.PredictionResponse
	if p.cacheGet(ctx, key, "prediction", &cached) {
		return &cached, nil
	}

	handles, err := p.registry.Load(symbol)
	if err != nil {
		return nil, err
	}
	current := handles[0]

	series, table, seq, err := p.prepare(ctx, symbol)
	if err != nil {
		return nil, err
	}

	probs, err := p.infer(ctx, current, seq)
	if err != nil {
		return nil, err
	}

	pred := models.NewModelPrediction(symbol, probs, current.Name(), current.Accuracy())
	p.temporal.Add(symbol, pred)

	currentPrice := p.currentPrice(ctx, symbol, series)
	detail := buildDetail(pred.Direction, pred.Confidence, currentPrice, series.Prices(), tf)
	snap := table.Snapshot()

	now := time.Now().UTC()
	resp := &models.PredictionResponse{
		Symbol:      symbol,
		Timeframe:   string(tf),
		Prediction:  detail,
		Indicators:  snap,
		Explanation: explanation(symbol, detail, snap, tf),
		HistoricalAccuracy: models.HistoricalAccuracy{
			Last30Days: current.Meta.TestAccuracy,
			Last90Days: current.Meta.ValAccuracy,
		},
		GeneratedAt:  now,
		ExpiresAt:    now.Add(p.cfg.CacheTTL),
		ModelVersion: current.Meta.ModelVersion,
	}

	p.cacheSet(ctx, key, resp, p.cfg.CacheTTL)
	p.metrics.RecordPrediction(symbol, string(tf), string(detail.Direction))
	p.publishPrediction(resp)
	return resp, nil
}

// PredictEnsemble runs every available model variant and combines the
// results with the requested method.
func (p *Predictor) PredictEnsemble(ctx context.Context, req models.EnsemblePredictionRequest) (*models.EnsemblePredictionResponse, error) {
	symbol, tf, err := p.validate(req.Symbol, req.Timeframe)
	if err != nil {
		return nil, err
	}

	// Reject unknown methods before touching the cache.
	method, err := ensemble.ParseMethod(req.EnsembleMethod)
	if err != nil {
		return nil, err
	}

	key := cache.GenerateKey("ensemble", symbol, string(tf), method.String())
	var cached models.EnsemblePredictionResponse
	if p.cacheGet(ctx, key, "ensemble", &cached) {
		return &cached, nil
	}

	handles, err := p.registry.Load(symbol)
	if err != nil {
		return nil, err
	}

	series, table, seq, err := p.prepare(ctx, symbol)
	if err != nil {
		return nil, err
	}

	preds := p.inferAll(ctx, handles, seq)
	if len(preds) == 0 {
		return nil, fmt.Errorf("all model variants failed for %s", symbol)
	}

	result, err := p.agg.Combine(preds, method, req.MinConfidence)
	if err != nil {
		return nil, err
	}

	p.temporal.Add(symbol, models.ModelPrediction{
		Symbol:        symbol,
		Probabilities: result.Probabilities,
		Direction:     result.Direction,
		Confidence:    result.Confidence,
		ModelName:     result.Method,
		CreatedAt:     time.Now().UTC(),
	})

	currentPrice := p.currentPrice(ctx, symbol, series)
	detail := buildDetail(result.Direction, result.Confidence, currentPrice, series.Prices(), tf)
	snap := table.Snapshot()

	now := time.Now().UTC()
	resp := &models.EnsemblePredictionResponse{
		Symbol:           symbol,
		Timeframe:        string(tf),
		Prediction:       detail,
		Indicators:       snap,
		Explanation:      explanation(symbol, detail, snap, tf),
		EnsembleMetadata: result.Metadata,
		GeneratedAt:      now,
		ExpiresAt:        now.Add(p.cfg.CacheTTL),
		ModelVersion:     handles[0].Meta.ModelVersion,
	}

	p.cacheSet(ctx, key, resp, p.cfg.CacheTTL)
	p.metrics.RecordPrediction(symbol, string(tf), string(detail.Direction))
	return resp, nil
}

// Temporal combines the rolling per-symbol prediction history.
func (p *Predictor) Temporal(ctx context.Context, symbol string) (*models.TemporalPredictionResponse, error) {
	symbol = strings.ToUpper(symbol)
	if _, ok := p.symbols[symbol]; !ok {
		return nil, &models.UnsupportedSymbolError{Symbol: symbol}
	}

	result, err := p.temporal.Combine(symbol)
	if err != nil {
		return nil, err
	}

	trend, _ := result.Metadata["trend"].(string)
	return &models.TemporalPredictionResponse{
		Symbol:        symbol,
		Probabilities: result.Probabilities,
		Direction:     result.Direction,
		Confidence:    result.Confidence,
		Trend:         trend,
		Metadata:      result.Metadata,
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

// RiskScore computes the model-free composite risk assessment.
func (p *Predictor) RiskScore(ctx context.Context, req models.RiskScoreRequest) (*models.RiskAssessment, error) {
	symbol := strings.ToUpper(req.Symbol)
	if _, ok := p.symbols[symbol]; !ok {
		return nil, &models.UnsupportedSymbolError{Symbol: symbol}
	}

	key := cache.GenerateKey("risk_score", symbol, "7d")
	var cached models.RiskAssessment
	if p.cacheGet(ctx, key, "risk", &cached) {
		return &cached, nil
	}

	series, err := p.store.GetPriceHistory(ctx, symbol, riskHistoryDays)
	if err != nil {
		return nil, err
	}

	assessment, err := p.scorer.Score(series)
	if err != nil {
		return nil, err
	}

	p.cacheSet(ctx, key, &assessment, p.cfg.RiskCacheTTL)
	p.publishRisk(&assessment)
	return &assessment, nil
}

// ModelInfo reports checkpoint status for a symbol.
func (p *Predictor) ModelInfo(symbol string) models.ModelInfo {
	return p.registry.Info(strings.ToUpper(symbol))
}

// Invalidate drops a symbol's model handles, temporal history and every
// cached response so the next request re-reads the checkpoint files.
func (p *Predictor) Invalidate(ctx context.Context, symbol string) error {
	symbol = strings.ToUpper(symbol)

	p.registry.Invalidate(symbol)
	p.temporal.Clear(symbol)

	keys := []string{cache.GenerateKey("risk_score", symbol, "7d")}
	for _, tf := range domrepo.AllTimeframes() {
		keys = append(keys, cache.GenerateKey("prediction", symbol, string(tf)))
		for _, m := range []ensemble.Method{ensemble.WeightedAverage, ensemble.MajorityVoting, ensemble.MaxConfidence} {
			keys = append(keys, cache.GenerateKey("ensemble", symbol, string(tf), m.String()))
		}
	}
	if err := p.cache.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("invalidate cache %s: %w", symbol, err)
	}

	p.l.Info("model cache invalidated", applogger.String("symbol", symbol))
	return nil
}

// Health reports downstream store health.
func (p *Predictor) Health(ctx context.Context) error {
	return p.store.Health(ctx)
}

// Symbols lists the prediction allowlist.
func (p *Predictor) Symbols() []string {
	out := make([]string, 0, len(p.symbols))
	for s := range p.symbols {
		out = append(out, s)
	}
	return out
}

// --- pipeline steps ---

func (p *Predictor) validate(symbol, timeframe string) (string, domrepo.Timeframe, error) {
	symbol = strings.ToUpper(symbol)
	if _, ok := p.symbols[symbol]; !ok {
		return "", "", &models.UnsupportedSymbolError{Symbol: symbol}
	}
	tf, err := domrepo.ParseTimeframe(timeframe)
	if err != nil {
		return "", "", err
	}
	return symbol, tf, nil
}

// prepare fetches history and produces the feature table plus the
// normalized inference window.
func (p *Predictor) prepare(ctx context.Context, symbol string) (models.PriceSeries, features.FeatureTable, models.FeatureSequence, error) {
	series, err := p.store.GetPriceHistory(ctx, symbol, fetchHistoryDays)
	if err != nil {
		return models.PriceSeries{}, features.FeatureTable{}, models.FeatureSequence{}, err
	}
	if series.Len() < minHistoryDays {
		return models.PriceSeries{}, features.FeatureTable{}, models.FeatureSequence{}, &models.InsufficientDataError{
			Symbol: symbol,
			Need:   minHistoryDays,
			Got:    series.Len(),
			What:   "price history",
		}
	}

	table := features.Engineer(series)
	seq, err := features.BuildSequence(table, p.cfg.SequenceLength)
	if err != nil {
		return models.PriceSeries{}, features.FeatureTable{}, models.FeatureSequence{}, err
	}
	return series, table, seq, nil
}

func (p *Predictor) infer(ctx context.Context, h classifier.Handle, seq models.FeatureSequence) ([3]float64, error) {
	cls := classifier.NewVariantClassifier(h, p.runtime)
	start := time.Now()
	probs, err := p.pool.Classify(ctx, cls, seq)
	p.metrics.RecordInferenceLatency(h.Variant, time.Since(start).Seconds())
	if err != nil {
		p.metrics.RecordError("inference")
		return [3]float64{}, err
	}
	return probs, nil
}

// inferAll runs every variant concurrently; failing variants are logged
// and skipped so one bad checkpoint does not take down the ensemble.
func (p *Predictor) inferAll(ctx context.Context, handles []classifier.Handle, seq models.FeatureSequence) []models.ModelPrediction {
	type result struct {
		probs [3]float64
		err   error
	}

	results := make([]result, len(handles))
	var wg sync.WaitGroup
	for i, h := range handles {
		wg.Add(1)
		go func(i int, h classifier.Handle) {
			defer wg.Done()
			probs, err := p.infer(ctx, h, seq)
			results[i] = result{probs: probs, err: err}
		}(i, h)
	}
	wg.Wait()

	preds := make([]models.ModelPrediction, 0, len(handles))
	for i, r := range results {
		if r.err != nil {
			p.l.Warn("model variant failed",
				applogger.String("symbol", seq.Symbol),
				applogger.String("variant", handles[i].Variant),
				applogger.Error(r.err),
			)
			continue
		}
		preds = append(preds, models.NewModelPrediction(seq.Symbol, r.probs, handles[i].Name(), handles[i].Accuracy()))
	}
	return preds
}

// currentPrice prefers a fresh streamed spot price, falling back to the
// last close in the series.
func (p *Predictor) currentPrice(ctx context.Context, symbol string, series models.PriceSeries) float64 {
	if p.feed != nil {
		if price, ok := p.feed.LastPrice(symbol, feedMaxAge); ok {
			return price
		}
	}
	prices := series.Prices()
	return prices[len(prices)-1]
}

// --- cache helpers: cache failures degrade to no-cache, never fail a request ---

func (p *Predictor) cacheGet(ctx context.Context, key, operation string, out interface{}) bool {
	b, err := p.cache.Get(ctx, key)
	if err != nil {
		if err != cache.ErrCacheMiss {
			p.l.Warn("cache read failed", applogger.String("key", key), applogger.Error(err))
		}
		p.metrics.RecordCacheMiss(operation)
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		p.l.Warn("cache entry corrupt", applogger.String("key", key), applogger.Error(err))
		p.metrics.RecordCacheMiss(operation)
		return false
	}
	p.metrics.RecordCacheHit(operation)
	return true
}

func (p *Predictor) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	b, err := json.Marshal(value)
	if err != nil {
		p.l.Warn("cache marshal failed", applogger.String("key", key), applogger.Error(err))
		return
	}
	if err := p.cache.Set(ctx, key, b, ttl); err != nil {
		p.l.Warn("cache write failed", applogger.String("key", key), applogger.Error(err))
	}
}

// --- event publishing: best effort, never blocks the response ---

func (p *Predictor) publishPrediction(resp *models.PredictionResponse) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.publisher.PublishPrediction(ctx, resp); err != nil {
			p.l.Warn("publish prediction failed", applogger.String("symbol", resp.Symbol), applogger.Error(err))
			p.metrics.RecordError("publish")
		}
	}()
}

func (p *Predictor) publishRisk(assessment *models.RiskAssessment) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.publisher.PublishRisk(ctx, assessment); err != nil {
			p.l.Warn("publish risk failed", applogger.String("symbol", assessment.Symbol), applogger.Error(err))
			p.metrics.RecordError("publish")
		}
	}()
}
