//go:build wireinject
// +build wireinject

package di

import (
	"Coinsight/pkg/config"
	"Coinsight/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvidePostgresClient,
		ProvideCache,
		ProvidePublisher,
		ProvideKafkaConsumer,

		// Repositories
		ProvidePriceStore,

		// Domain services
		ProvideRegistry,
		ProvideRuntimeClient,
		ProvidePool,
		ProvideAggregator,
		ProvideTemporal,
		ProvideScorer,
		ProvidePriceFeed,

		// Use cases
		ProvidePredictor,
		ProvideModelUpdateHandler,

		// Transport
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
