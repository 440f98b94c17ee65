package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mindgraph/application/commands/bus"
	commandhandlers "mindgraph/application/commands/handlers"
	"mindgraph/application/keybinds"
	"mindgraph/application/ports"
	querybus "mindgraph/application/queries/bus"
	queryhandlers "mindgraph/application/queries/handlers"
	"mindgraph/application/services"
	domainconfig "mindgraph/domain/config"
	"mindgraph/infrastructure/config"
	"mindgraph/infrastructure/layout"
	"mindgraph/infrastructure/messaging/eventbridge"
	"mindgraph/infrastructure/messaging/logging"
	"mindgraph/infrastructure/persistence/dynamodb"
	"mindgraph/infrastructure/persistence/memory"
	"mindgraph/interfaces/http/rest"
	"mindgraph/interfaces/http/rest/handlers"
	"mindgraph/pkg/errors"
	"mindgraph/pkg/observability"
)

const serviceName = "mindgraph"

// TracerShutdown flushes pending spans
type TracerShutdown func(context.Context) error

// ProvideLogger creates a logger at the configured level
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

// ProvideDomainConfig derives the engine tunables
func ProvideDomainConfig(cfg *config.Config) (*domainconfig.DomainConfig, error) {
	d := cfg.Domain()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// ProvideAWSConfig creates AWS configuration. Loading does not contact AWS,
// so it is safe when only in-memory adapters are used.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Persistence.AWSRegion),
	)
}

// ProvideMapRepository selects the storage adapter
func ProvideMapRepository(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) ports.MapRepository {
	if cfg.Persistence.Driver == "dynamodb" {
		return dynamodb.NewMapRepository(
			awsdynamodb.NewFromConfig(awsCfg),
			cfg.Persistence.DynamoDBTable,
			logger,
		)
	}
	return memory.NewMapRepository()
}

// ProvideEventPublisher selects where document events go
func ProvideEventPublisher(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.Events.Driver == "eventbridge" {
		return eventbridge.NewPublisher(
			awseventbridge.NewFromConfig(awsCfg),
			cfg.Events.EventBusName,
			cfg.Events.Source,
			logger,
		)
	}
	return logging.NewPublisher(logger)
}

// ProvideCollector creates the Prometheus collector
func ProvideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.Metrics.Namespace)
}

// ProvideCloudWatchMetrics returns nil unless CloudWatch metrics are enabled
func ProvideCloudWatchMetrics(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) *observability.CloudWatchMetrics {
	if !cfg.Metrics.CloudWatch {
		return nil
	}
	return observability.NewCloudWatchMetrics(cfg.Metrics.Namespace, awscloudwatch.NewFromConfig(awsCfg), logger)
}

// ProvideTracer creates the tracer selected by configuration
func ProvideTracer(ctx context.Context, cfg *config.Config) (observability.Tracer, TracerShutdown, error) {
	provider := "none"
	switch {
	case cfg.Tracing.XRay:
		provider = "xray"
	case cfg.Tracing.Enabled:
		provider = "otel"
	}
	tracer, shutdown, err := observability.NewTracer(ctx, observability.TracingConfig{
		Provider:    provider,
		ServiceName: serviceName,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRate:  cfg.Tracing.SampleRate,
		Insecure:    !cfg.IsProduction(),
	})
	if err != nil {
		return nil, nil, err
	}
	return tracer, TracerShutdown(shutdown), nil
}

// ProvideInMemoryCache creates the layout result cache
func ProvideInMemoryCache(cfg *config.Config) *InMemoryCache {
	return NewInMemoryCache(cfg.Layout.CacheMaxEntries, time.Minute)
}

// ProvideLayoutEngine stacks the layout decorators around the layered
// engine: cache outermost, then the circuit breaker, then tracing.
func ProvideLayoutEngine(cfg *config.Config, cache *InMemoryCache, collector *observability.Collector, tracer observability.Tracer, logger *zap.Logger) ports.LayoutEngine {
	var engine ports.LayoutEngine = layout.NewLayeredEngine(cfg.Layout.Sweeps, logger)
	engine = layout.NewTracedEngine(engine, tracer)

	if cfg.Layout.BreakerEnabled {
		bc := layout.DefaultBreakerConfig()
		bc.FailureThreshold = cfg.Layout.BreakerFailureThreshold
		bc.MinRequests = cfg.Layout.BreakerMinRequests
		bc.Timeout = cfg.Layout.BreakerTimeout
		engine = layout.NewBreakerEngine(engine, bc, logger)
	}
	if cfg.Layout.CacheEnabled {
		engine = layout.NewCachedEngine(engine, cache, cfg.Layout.CacheTTL, collector, logger)
	}
	return engine
}

// layoutMetrics fans layout outcomes out to every configured sink
type layoutMetrics []services.LayoutMetrics

func (m layoutMetrics) LayoutFinished(mode, outcome string, d time.Duration) {
	for _, sink := range m {
		sink.LayoutFinished(mode, outcome, d)
	}
}

// ProvideLayoutCoordinator creates the coordinator used by the editor
func ProvideLayoutCoordinator(engine ports.LayoutEngine, domain *domainconfig.DomainConfig, cfg *config.Config, logger *zap.Logger, collector *observability.Collector, cw *observability.CloudWatchMetrics) *services.LayoutCoordinator {
	sinks := layoutMetrics{collector}
	if cw != nil {
		sinks = append(sinks, cw)
	}
	return services.NewLayoutCoordinator(engine, domain, cfg.Layout.Timeout, logger, sinks)
}

// ProvideGraphStore creates the store with an empty workspace
func ProvideGraphStore(domain *domainconfig.DomainConfig, logger *zap.Logger, collector *observability.Collector) *services.GraphStore {
	return services.NewGraphStore(domain, logger, services.WithStoreMetrics(collector))
}

func ProvideEditorService(store *services.GraphStore, coordinator *services.LayoutCoordinator, domain *domainconfig.DomainConfig, cfg *config.Config, logger *zap.Logger) *services.EditorService {
	return services.NewEditorService(store, coordinator, domain, logger, cfg.Editor.AutoLayout)
}

func ProvideDocumentService(store *services.GraphStore, repo ports.MapRepository, publisher ports.EventPublisher, domain *domainconfig.DomainConfig, logger *zap.Logger) *services.DocumentService {
	return services.NewDocumentService(store, repo, publisher, domain, logger)
}

// ProvideKeybinds applies configured overrides to the default bindings
func ProvideKeybinds(cfg *config.Config) (*keybinds.Registry, error) {
	return keybinds.NewRegistry(cfg.Keybinds)
}

// ProvideCommandBus creates the command bus with all intent handlers
func ProvideCommandBus(editor *services.EditorService, documents *services.DocumentService, keys *keybinds.Registry, logger *zap.Logger, collector *observability.Collector, cw *observability.CloudWatchMetrics) (*bus.CommandBus, error) {
	recorders := []bus.Recorder{collector}
	if cw != nil {
		recorders = append(recorders, cw)
	}
	b := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
		bus.MetricsMiddleware(recorders...),
	)
	if err := commandhandlers.NewIntentHandlers(editor, documents, keys).Register(b); err != nil {
		return nil, fmt.Errorf("failed to register command handlers: %w", err)
	}
	return b, nil
}

// ProvideQueryBus creates the query bus with all read handlers
func ProvideQueryBus(editor *services.EditorService, documents *services.DocumentService, domain *domainconfig.DomainConfig, logger *zap.Logger, collector *observability.Collector) (*querybus.QueryBus, error) {
	b := querybus.NewQueryBus(
		querybus.LoggingMiddleware(logger),
		querybus.MetricsMiddleware(collector),
	)
	if err := queryhandlers.NewReadHandlers(editor, documents, domain).Register(b); err != nil {
		return nil, fmt.Errorf("failed to register query handlers: %w", err)
	}
	return b, nil
}

// ProvideRouter builds the HTTP handler
func ProvideRouter(cfg *config.Config, commands *bus.CommandBus, queries *querybus.QueryBus, editor *services.EditorService, documents *services.DocumentService, collector *observability.Collector, logger *zap.Logger) http.Handler {
	deps := handlers.Deps{
		Commands:  commands,
		Queries:   queries,
		Editor:    editor,
		Documents: documents,
		Errors:    errors.NewErrorHandler(logger, cfg.IsDevelopment()),
		Logger:    logger,
	}
	var expose http.Handler
	if cfg.Metrics.Enabled {
		expose = collector.Handler()
	}
	return rest.NewRouter(deps, rest.RouterConfig{
		EnableCORS: cfg.EnableCORS,
		RateLimit:  cfg.RateLimit,
		RateWindow: cfg.RateWindow,
	}, collector, expose).Setup()
}
