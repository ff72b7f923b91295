package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"Coinsight/internal/domain/models"
	domrepo "Coinsight/internal/domain/repository"
	"Coinsight/internal/services/classifier"
	"Coinsight/internal/services/ensemble"
	"Coinsight/internal/services/risk"
	"Coinsight/pkg/cache"
	applogger "Coinsight/pkg/logger"
)

type fakeStore struct {
	series models.PriceSeries
	err    error
	calls  int
}

func (s *fakeStore) GetPriceHistory(_ context.Context, symbol string, days int) (models.PriceSeries, error) {
	s.calls++
	if s.err != nil {
		return models.PriceSeries{}, s.err
	}
	series := s.series
	series.Symbol = symbol
	if days < len(series.Points) {
		series.Points = series.Points[len(series.Points)-days:]
	}
	return series, nil
}

func (s *fakeStore) GetLatestPrice(_ context.Context, _ string) (float64, time.Time, error) {
	prices := s.series.Prices()
	return prices[len(prices)-1], time.Now(), nil
}

func (s *fakeStore) Health(context.Context) error { return nil }
func (s *fakeStore) Close() error                 { return nil }

type fakePublisher struct{}

func (fakePublisher) PublishPrediction(context.Context, *models.PredictionResponse) error { return nil }
func (fakePublisher) PublishRisk(context.Context, *models.RiskAssessment) error           { return nil }
func (fakePublisher) Close() error                                                        { return nil }

type fakeMetrics struct{}

func (fakeMetrics) RecordPrediction(_, _, _ string)            {}
func (fakeMetrics) RecordCacheHit(string)                      {}
func (fakeMetrics) RecordCacheMiss(string)                     {}
func (fakeMetrics) RecordError(string)                         {}
func (fakeMetrics) RecordInferenceLatency(string, float64)     {}
func (fakeMetrics) RecordLastPrice(string, float64)            {}

func testSeries(n int) models.PriceSeries {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, n)
	for i := 0; i < n; i++ {
		price := 100 + 10*math.Sin(float64(i)/5) + float64(i)*0.2
		points[i] = models.PricePoint{
			Time:      base.AddDate(0, 0, i),
			Price:     price,
			Volume:    1000 + float64(i%7)*10,
			HasVolume: true,
		}
	}
	return models.PriceSeries{Points: points}
}

func testRuntime(t *testing.T, probs [3]float64) *classifier.RuntimeClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/infer" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `{"probabilities": [%v, %v, %v]}`, probs[0], probs[1], probs[2])
	}))
	t.Cleanup(srv.Close)
	return classifier.NewRuntimeClient(srv.URL, 5*time.Second)
}

func newTestPredictor(t *testing.T, store domrepo.PriceStore, rt *classifier.RuntimeClient) (*Predictor, cache.Service) {
	t.Helper()

	dir := t.TempDir()
	checkpoint := `{"metadata": {"test_accuracy": 0.8, "val_accuracy": 0.75, "model_version": "v1.1.0"}}`
	if err := os.WriteFile(filepath.Join(dir, "BTC_best.json"), []byte(checkpoint), 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatal(err)
	}

	c := cache.NewMemoryCache()
	t.Cleanup(func() { _ = c.Close() })

	pool := classifier.NewPool(classifier.PoolConfig{Workers: 2, QueueSize: 8})
	t.Cleanup(pool.Close)

	p := NewPredictor(
		PredictorConfig{Symbols: []string{"BTC", "ETH"}, SequenceLength: 70},
		store,
		classifier.NewRegistry(dir, nil),
		rt,
		pool,
		ensemble.NewAggregator(nil),
		ensemble.NewTemporal(0.9),
		risk.NewScorer(2*time.Hour),
		c,
		fakePublisher{},
		fakeMetrics{},
		nil,
		l,
	)
	return p, c
}

func TestPredict(t *testing.T) {
	store := &fakeStore{series: testSeries(120)}
	p, _ := newTestPredictor(t, store, testRuntime(t, [3]float64{0.1, 0.2, 0.7}))

	resp, err := p.Predict(context.Background(), models.PredictionRequest{Symbol: "btc", Timeframe: "7d"})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if resp.Symbol != "BTC" || resp.Timeframe != "7d" {
		t.Fatalf("resp = %s/%s", resp.Symbol, resp.Timeframe)
	}
	if resp.Prediction.Direction != models.DirBullish {
		t.Fatalf("direction = %s, want bullish", resp.Prediction.Direction)
	}
	if resp.Prediction.ConfidenceScore != 0.7 || resp.Prediction.Confidence != "high" {
		t.Fatalf("confidence = %v/%q", resp.Prediction.ConfidenceScore, resp.Prediction.Confidence)
	}
	if resp.ModelVersion != "v1.1.0" {
		t.Fatalf("model version = %q", resp.ModelVersion)
	}
	if !resp.ExpiresAt.After(resp.GeneratedAt) {
		t.Fatal("expiry must trail generation time")
	}
}

func TestPredictServesFromCache(t *testing.T) {
	store := &fakeStore{series: testSeries(120)}
	p, _ := newTestPredictor(t, store, testRuntime(t, [3]float64{0.1, 0.2, 0.7}))
	ctx := context.Background()

	req := models.PredictionRequest{Symbol: "BTC", Timeframe: "7d"}
	if _, err := p.Predict(ctx, req); err != nil {
		t.Fatalf("first Predict: %v", err)
	}
	calls := store.calls

	if _, err := p.Predict(ctx, req); err != nil {
		t.Fatalf("second Predict: %v", err)
	}
	if store.calls != calls {
		t.Fatalf("cache hit still fetched history: %d -> %d calls", calls, store.calls)
	}
}

func TestPredictRejectsUnknownSymbolAndTimeframe(t *testing.T) {
	store := &fakeStore{series: testSeries(120)}
	p, _ := newTestPredictor(t, store, testRuntime(t, [3]float64{0.1, 0.2, 0.7}))
	ctx := context.Background()

	_, err := p.Predict(ctx, models.PredictionRequest{Symbol: "XRP", Timeframe: "7d"})
	var use *models.UnsupportedSymbolError
	if !errors.As(err, &use) {
		t.Fatalf("expected UnsupportedSymbolError, got %v", err)
	}

	_, err = p.Predict(ctx, models.PredictionRequest{Symbol: "BTC", Timeframe: "90d"})
	var ite *models.InvalidTimeframeError
	if !errors.As(err, &ite) {
		t.Fatalf("expected InvalidTimeframeError, got %v", err)
	}
}

func TestPredictShortHistory(t *testing.T) {
	store := &fakeStore{series: testSeries(80)}
	p, _ := newTestPredictor(t, store, testRuntime(t, [3]float64{0.1, 0.2, 0.7}))

	_, err := p.Predict(context.Background(), models.PredictionRequest{Symbol: "BTC", Timeframe: "7d"})
	var ide *models.InsufficientDataError
	if !errors.As(err, &ide) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
}

func TestPredictMissingModel(t *testing.T) {
	store := &fakeStore{series: testSeries(120)}
	p, _ := newTestPredictor(t, store, testRuntime(t, [3]float64{0.1, 0.2, 0.7}))

	// ETH is allowlisted but has no checkpoint on disk
	_, err := p.Predict(context.Background(), models.PredictionRequest{Symbol: "ETH", Timeframe: "7d"})
	var mue *models.ModelUnavailableError
	if !errors.As(err, &mue) {
		t.Fatalf("expected ModelUnavailableError, got %v", err)
	}
}

func TestPredictEnsembleUnknownMethodSkipsCache(t *testing.T) {
	store := &fakeStore{series: testSeries(120)}
	p, _ := newTestPredictor(t, store, testRuntime(t, [3]float64{0.1, 0.2, 0.7}))

	_, err := p.PredictEnsemble(context.Background(), models.EnsemblePredictionRequest{
		Symbol: "BTC", Timeframe: "7d", EnsembleMethod: "median",
	})
	var ume *models.UnknownMethodError
	if !errors.As(err, &ume) {
		t.Fatalf("expected UnknownMethodError, got %v", err)
	}
	if store.calls != 0 {
		t.Fatal("unknown method must be rejected before any work")
	}
}

func TestPredictEnsemble(t *testing.T) {
	store := &fakeStore{series: testSeries(120)}
	p, _ := newTestPredictor(t, store, testRuntime(t, [3]float64{0.1, 0.2, 0.7}))

	resp, err := p.PredictEnsemble(context.Background(), models.EnsemblePredictionRequest{
		Symbol: "BTC", Timeframe: "14d", EnsembleMethod: "weighted_average", MinConfidence: 0.3,
	})
	if err != nil {
		t.Fatalf("PredictEnsemble: %v", err)
	}
	// single checkpoint on disk: the combiner reports pass-through
	if resp.EnsembleMetadata["method"] != "single_model" {
		t.Fatalf("method = %v, want single_model", resp.EnsembleMetadata["method"])
	}
	if resp.Prediction.Direction != models.DirBullish {
		t.Fatalf("direction = %s", resp.Prediction.Direction)
	}
}

func TestTemporalAfterPredictions(t *testing.T) {
	store := &fakeStore{series: testSeries(120)}
	p, _ := newTestPredictor(t, store, testRuntime(t, [3]float64{0.1, 0.2, 0.7}))
	ctx := context.Background()

	if _, err := p.Temporal(ctx, "BTC"); err == nil {
		t.Fatal("expected error with empty history")
	}

	if _, err := p.Predict(ctx, models.PredictionRequest{Symbol: "BTC", Timeframe: "7d"}); err != nil {
		t.Fatalf("Predict: %v", err)
	}

	resp, err := p.Temporal(ctx, "BTC")
	if err != nil {
		t.Fatalf("Temporal: %v", err)
	}
	if resp.Direction != models.DirBullish {
		t.Fatalf("direction = %s", resp.Direction)
	}
	if resp.Trend != "insufficient_data" {
		t.Fatalf("trend = %q, want insufficient_data with one entry", resp.Trend)
	}
}

func TestRiskScoreCachesResult(t *testing.T) {
	store := &fakeStore{series: testSeries(120)}
	p, _ := newTestPredictor(t, store, testRuntime(t, [3]float64{0.1, 0.2, 0.7}))
	ctx := context.Background()

	first, err := p.RiskScore(ctx, models.RiskScoreRequest{Symbol: "BTC"})
	if err != nil {
		t.Fatalf("RiskScore: %v", err)
	}
	if first.RiskLevel == "" || first.RiskScore < 0 || first.RiskScore > 100 {
		t.Fatalf("assessment = %+v", first)
	}
	calls := store.calls

	second, err := p.RiskScore(ctx, models.RiskScoreRequest{Symbol: "BTC"})
	if err != nil {
		t.Fatalf("second RiskScore: %v", err)
	}
	if store.calls != calls {
		t.Fatal("cached risk score still fetched history")
	}
	if second.RiskScore != first.RiskScore {
		t.Fatalf("cached score drifted: %d vs %d", second.RiskScore, first.RiskScore)
	}
}

func TestInvalidateClearsState(t *testing.T) {
	store := &fakeStore{series: testSeries(120)}
	p, c := newTestPredictor(t, store, testRuntime(t, [3]float64{0.1, 0.2, 0.7}))
	ctx := context.Background()

	if _, err := p.Predict(ctx, models.PredictionRequest{Symbol: "BTC", Timeframe: "7d"}); err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if ok, _ := c.Exists(ctx, "prediction:BTC:7d"); !ok {
		t.Fatal("prediction was not cached")
	}

	if err := p.Invalidate(ctx, "BTC"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if ok, _ := c.Exists(ctx, "prediction:BTC:7d"); ok {
		t.Fatal("cached prediction survived invalidation")
	}
	if _, err := p.Temporal(ctx, "BTC"); err == nil {
		t.Fatal("temporal history survived invalidation")
	}
}

func TestModelInfo(t *testing.T) {
	store := &fakeStore{series: testSeries(120)}
	p, _ := newTestPredictor(t, store, testRuntime(t, [3]float64{0.1, 0.2, 0.7}))

	info := p.ModelInfo("btc")
	if info.Status != "trained" || info.ModelVersion != "v1.1.0" {
		t.Fatalf("info = %+v", info)
	}
	if p.ModelInfo("ETH").Status != "not_trained" {
		t.Fatal("missing checkpoint must report not_trained")
	}
}
