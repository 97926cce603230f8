package di

import (
	"context"
	"fmt"
	"time"

	"StockLens/internal/domain/repository"
	"StockLens/internal/handler/api"
	internalrepo "StockLens/internal/repository"
	rcache "StockLens/internal/service/cache"
	"StockLens/internal/service/ratelimit"
	"StockLens/internal/services/analytics"
	"StockLens/internal/usecase"
	pkgcache "StockLens/pkg/cache"
	pkgch "StockLens/pkg/clickhouse"
	"StockLens/pkg/config"
	xhttp "StockLens/pkg/http"
	pkgkafka "StockLens/pkg/kafka"
	applogger "StockLens/pkg/logger"
	"StockLens/pkg/metrics"
	"StockLens/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := cfg.Logging.Level
	if level == "" {
		level = "info"
	}
	format := cfg.Logging.Format
	if format == "" {
		format = "console"
	}
	output := cfg.Logging.Output
	if output == "" {
		output = "stdout"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: output})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.SchemaStatements); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideObservationStore creates the ClickHouse-backed observation store.
func ProvideObservationStore(chClient *pkgch.Client, l *applogger.Logger) repository.ObservationStore {
	store := internalrepo.NewCHObservationStore(chClient)
	store.SetLogger(l)
	return store
}

// ProvideResultCache builds the in-process result cache, with Redis attached
// as a shared L2 when configured.
func ProvideResultCache(cfg *config.Config) (*rcache.ResultCache, error) {
	ccfg := rcache.DefaultConfig()
	if cfg.Cache.MaxEntries > 0 {
		ccfg.MaxEntries = cfg.Cache.MaxEntries
	}
	if cfg.Cache.TTL.Series > 0 {
		ccfg.SeriesTTL = cfg.Cache.TTL.Series
	}
	if cfg.Cache.TTL.Summary > 0 {
		ccfg.SummaryTTL = cfg.Cache.TTL.Summary
	}
	if cfg.Cache.TTL.Compare > 0 {
		ccfg.CompareTTL = cfg.Cache.TTL.Compare
	}
	if cfg.Cache.TTL.Insights > 0 {
		ccfg.InsightsTTL = cfg.Cache.TTL.Insights
	}
	if cfg.Cache.TTL.Prediction > 0 {
		ccfg.PredictionTTL = cfg.Cache.TTL.Prediction
	}
	if cfg.Cache.TTL.Symbols > 0 {
		ccfg.SymbolsTTL = cfg.Cache.TTL.Symbols
	}

	cache := rcache.NewResultCache(ccfg)

	if cfg.Cache.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		remote, err := pkgcache.NewRedisCache(ctx, pkgcache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		cache.SetRemote(remote)
	}

	return cache, nil
}

// ProvideEngine assembles the analytics engine.
func ProvideEngine(
	cfg *config.Config,
	store repository.ObservationStore,
	cache *rcache.ResultCache,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Engine {
	minHistory := cfg.Engine.MinForecastHistory
	if minHistory <= 0 {
		minHistory = analytics.DefaultMinHistory
	}

	engine := usecase.NewEngine(
		store,
		analytics.NewSeriesCleaner(),
		analytics.NewCalculator(),
		analytics.NewCorrelator(),
		analytics.NewAggregator(),
		analytics.NewLeastSquaresForecaster(minHistory),
		cache,
	)
	engine.SetLogger(l)
	engine.SetMetrics(m)
	engine.SetInsightLimit(cfg.Engine.InsightLimit)
	return engine
}

// ProvideHTTPHandler creates the Echo handler with rate limiting and a
// storage health probe.
func ProvideHTTPHandler(
	l *applogger.Logger,
	engine *usecase.Engine,
	chClient *pkgch.Client,
) xhttp.Handler {
	h := api.NewEngineEchoHandler(l, engine, ratelimit.New())
	h.SetHealthCheck(chClient.Health)
	return h
}

// ProvideKafkaConsumer creates the invalidation consumer, or nil when the
// event stream is disabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.RetryMax, cfg.Kafka.BackoffMin, cfg.Kafka.BackoffMax),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideInvalidationHandler registers the cache invalidation handler.
func ProvideInvalidationHandler(cfg *config.Config, engine *usecase.Engine, l *applogger.Logger) pkgkafka.MessageHandler {
	if !cfg.Kafka.Enabled {
		return nil
	}
	return usecase.NewInvalidationHandler(cfg.Kafka.Topic, engine, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	cache *rcache.ResultCache,
) *server.App {
	app := server.New(cfg, l, handler, consumer, kh, chClient)
	if remote := cache.Remote(); remote != nil {
		app.SetRemoteCache(remote)
	}
	return app
}
