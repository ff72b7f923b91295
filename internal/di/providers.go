package di

import (
	"context"
	"fmt"
	"time"

	domrepo "Coinsight/internal/domain/repository"
	"Coinsight/internal/handler/api"
	internalrepo "Coinsight/internal/repository"
	"Coinsight/internal/service/pricefeed"
	"Coinsight/internal/services/classifier"
	"Coinsight/internal/services/ensemble"
	"Coinsight/internal/services/risk"
	"Coinsight/internal/usecase"
	"Coinsight/pkg/cache"
	"Coinsight/pkg/config"
	pkgkafka "Coinsight/pkg/kafka"
	applogger "Coinsight/pkg/logger"
	"Coinsight/pkg/metrics"
	pkgpg "Coinsight/pkg/postgres"
	"Coinsight/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvidePostgresClient creates the Postgres client and ensures the schema.
func ProvidePostgresClient(cfg *config.Config) (*pkgpg.Client, error) {
	client, err := pkgpg.NewClient(
		pkgpg.WithDSN(cfg.Postgres.DSN),
		pkgpg.WithMaxConnections(cfg.Postgres.MaxOpenConns, cfg.Postgres.MaxIdleConns),
		pkgpg.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		`CREATE TABLE IF NOT EXISTS tokens (
			id SERIAL PRIMARY KEY,
			symbol TEXT UNIQUE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS price_data (
			token_id INT NOT NULL REFERENCES tokens(id),
			time TIMESTAMPTZ NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			high DOUBLE PRECISION,
			low DOUBLE PRECISION,
			volume DOUBLE PRECISION,
			market_cap DOUBLE PRECISION,
			change_1h DOUBLE PRECISION,
			change_24h DOUBLE PRECISION,
			PRIMARY KEY (token_id, time)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_data_time ON price_data (time)`,
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("postgres schema: %w", err)
	}

	return client, nil
}

// ProvideCache creates the response cache: layered memory+Redis when Redis
// is enabled, in-memory otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	redis, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(redis), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvidePriceStore creates the Postgres-backed price store.
func ProvidePriceStore(client *pkgpg.Client) domrepo.PriceStore {
	return internalrepo.NewPostgresPriceStore(client.DB())
}

// ProvidePublisher creates the event publisher: Kafka when enabled, a noop
// sink otherwise.
func ProvidePublisher(cfg *config.Config) (domrepo.EventPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.PredictionTopic, cfg.Kafka.RiskTopic), nil
}

// ProvideKafkaConsumer creates the model-update consumer, or nil when
// Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.ModelUpdateTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideRegistry creates the checkpoint registry.
func ProvideRegistry(cfg *config.Config, l *applogger.Logger) *classifier.Registry {
	return classifier.NewRegistry(cfg.Models.Dir, l)
}

// ProvideRuntimeClient creates the inference runtime client.
func ProvideRuntimeClient(cfg *config.Config) *classifier.RuntimeClient {
	return classifier.NewRuntimeClient(cfg.Models.RuntimeURL, cfg.Models.RuntimeTimeout)
}

// ProvidePool creates the inference worker pool.
func ProvidePool(cfg *config.Config) *classifier.Pool {
	return classifier.NewPool(classifier.PoolConfig{
		Workers:   cfg.Models.Workers,
		QueueSize: cfg.Models.QueueSize,
	})
}

// ProvideAggregator creates the ensemble aggregator.
func ProvideAggregator(l *applogger.Logger) *ensemble.Aggregator {
	return ensemble.NewAggregator(l)
}

// ProvideTemporal creates the temporal ensemble.
func ProvideTemporal(cfg *config.Config) *ensemble.Temporal {
	return ensemble.NewTemporal(cfg.Prediction.TemporalDecay)
}

// ProvideScorer creates the risk scorer.
func ProvideScorer(cfg *config.Config) *risk.Scorer {
	ttl := cfg.Prediction.RiskCacheTTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return risk.NewScorer(ttl)
}

// ProvidePriceFeed creates the live ticker feed, or nil when disabled.
func ProvidePriceFeed(cfg *config.Config, l *applogger.Logger, m domrepo.Metrics) *pricefeed.Feed {
	if !cfg.PriceFeed.Enabled || cfg.PriceFeed.WebSocketURL == "" {
		return nil
	}
	return pricefeed.New(
		cfg.PriceFeed.WebSocketURL,
		cfg.Prediction.Symbols,
		cfg.PriceFeed.ReconnectDelay,
		cfg.PriceFeed.PingInterval,
		l, m,
	)
}

// ProvidePredictor creates the prediction orchestrator.
func ProvidePredictor(
	cfg *config.Config,
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
) *usecase.Predictor {
	return usecase.NewPredictor(
		usecase.PredictorConfig{
			Symbols:        cfg.Prediction.Symbols,
			SequenceLength: cfg.Models.SequenceLength,
			CacheTTL:       cfg.Prediction.CacheTTL,
			RiskCacheTTL:   cfg.Prediction.RiskCacheTTL,
		},
		store, registry, runtime, pool, agg, temporal, scorer, c, publisher, m, feed, l,
	)
}

// ProvideModelUpdateHandler registers the handler for the model-update topic.
func ProvideModelUpdateHandler(cfg *config.Config, predictor *usecase.Predictor, l *applogger.Logger) *usecase.ModelUpdateHandler {
	return usecase.NewModelUpdateHandler(cfg.Kafka.ModelUpdateTopic, predictor, l)
}

// ProvideHTTPHandler creates the Echo route handler.
func ProvideHTTPHandler(l *applogger.Logger, predictor *usecase.Predictor) *api.PredictionsHandler {
	return api.NewPredictionsHandler(l, predictor)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.PredictionsHandler,
	consumer *pkgkafka.Consumer,
	muh *usecase.ModelUpdateHandler,
	pgClient *pkgpg.Client,
	c cache.Service,
	publisher domrepo.EventPublisher,
	feed *pricefeed.Feed,
	pool *classifier.Pool,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	return server.New(cfg, l, handler, consumer, muh, pgClient, c, publisher, feed, pool)
}
