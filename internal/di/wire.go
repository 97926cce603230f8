//go:build wireinject
// +build wireinject

package di

import (
	"StockLens/pkg/config"
	"StockLens/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaConsumer,

		// Storage and cache
		ProvideObservationStore,
		ProvideResultCache,

		// Analytics core
		ProvideEngine,
		ProvideInvalidationHandler,

		// Transport
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
