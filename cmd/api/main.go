package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/location-directive-service/internal/api/handlers"
	"github.com/wms-platform/location-directive-service/internal/application"
	"github.com/wms-platform/location-directive-service/internal/domain"
	"github.com/wms-platform/location-directive-service/internal/infrastructure/catalog"
	kafkaPublisher "github.com/wms-platform/location-directive-service/internal/infrastructure/kafka"
	"github.com/wms-platform/location-directive-service/internal/infrastructure/memory"
	mongoRepo "github.com/wms-platform/location-directive-service/internal/infrastructure/mongodb"
	"github.com/wms-platform/location-directive-service/shared/pkg/cloudevents"
	"github.com/wms-platform/location-directive-service/shared/pkg/kafka"
	"github.com/wms-platform/location-directive-service/shared/pkg/logging"
	"github.com/wms-platform/location-directive-service/shared/pkg/metrics"
	"github.com/wms-platform/location-directive-service/shared/pkg/middleware"
	"github.com/wms-platform/location-directive-service/shared/pkg/mongodb"
	"github.com/wms-platform/location-directive-service/shared/pkg/resilience"
	"github.com/wms-platform/location-directive-service/shared/pkg/tracing"
)

const serviceName = "location-directive-service"

func main() {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := run(context.Background(), cfg, appDependencies{}, signalCh); err != nil {
		os.Exit(1)
	}
}

type tracerProvider interface {
	Shutdown(ctx context.Context) error
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

type eventPublisher interface {
	domain.EventPublisher
	Close() error
}

// store bundles the repositories with the connection that backs them
type store struct {
	directives  domain.LocationDirectiveRepository
	attributes  domain.LocationAttributeRepository
	healthCheck func(ctx context.Context) error
	close       func(ctx context.Context) error
}

type appDependencies struct {
	initTracing   func(ctx context.Context, cfg *tracing.Config) (tracerProvider, error)
	openStore     func(ctx context.Context, cfg *mongodb.Config, m *metrics.Metrics, logger *logging.Logger) (*store, error)
	newPublisher  func(cfg *Config, m *metrics.Metrics, logger *logging.Logger) eventPublisher
	loadCatalog   func(path string) (*catalog.File, error)
	newHTTPServer func(addr string, handler http.Handler) httpServer
}

func defaultDependencies() appDependencies {
	return appDependencies{
		initTracing: func(ctx context.Context, cfg *tracing.Config) (tracerProvider, error) {
			return tracing.Initialize(ctx, cfg)
		},
		openStore:    openMongoStore,
		newPublisher: newEventPublisher,
		loadCatalog:  catalog.LoadFile,
		newHTTPServer: func(addr string, handler http.Handler) httpServer {
			return &http.Server{
				Addr:         addr,
				Handler:      handler,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
			}
		},
	}
}

func (d appDependencies) withDefaults() appDependencies {
	def := defaultDependencies()
	if d.initTracing == nil {
		d.initTracing = def.initTracing
	}
	if d.openStore == nil {
		d.openStore = def.openStore
	}
	if d.newPublisher == nil {
		d.newPublisher = def.newPublisher
	}
	if d.loadCatalog == nil {
		d.loadCatalog = def.loadCatalog
	}
	if d.newHTTPServer == nil {
		d.newHTTPServer = def.newHTTPServer
	}
	return d
}

func openMongoStore(ctx context.Context, cfg *mongodb.Config, m *metrics.Metrics, logger *logging.Logger) (*store, error) {
	client, err := mongodb.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	breaker := mongodb.NewBreaker("mongodb", logger, m)
	opts := []mongodb.CollectionOption{
		mongodb.WithMetrics(m),
		mongodb.WithLogger(logger),
		mongodb.WithBreaker(breaker),
	}

	directives, err := mongoRepo.NewLocationDirectiveRepository(ctx, client.Database(), opts...)
	if err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	attributes, err := mongoRepo.NewLocationAttributeRepository(ctx, client.Database(), opts...)
	if err != nil {
		_ = client.Close(ctx)
		return nil, err
	}

	return &store{
		directives:  directives,
		attributes:  attributes,
		healthCheck: client.HealthCheck,
		close:       client.Close,
	}, nil
}

type kafkaEventPublisher struct {
	*kafkaPublisher.EventPublisher
	producer *kafka.Producer
}

func (p *kafkaEventPublisher) Close() error {
	return p.producer.Close()
}

type inMemoryEventPublisher struct {
	*memory.EventPublisher
}

func (inMemoryEventPublisher) Close() error { return nil }

func newEventPublisher(cfg *Config, m *metrics.Metrics, logger *logging.Logger) eventPublisher {
	if !cfg.KafkaEnabled {
		logger.Warn("Kafka disabled, lifecycle events are kept in memory only")
		return inMemoryEventPublisher{memory.NewEventPublisher(1000)}
	}

	breakerCfg := resilience.DefaultCircuitBreakerConfig("kafka")
	breakerCfg.OnStateChange = mongodb.BreakerStateRecorder(m)
	producer := kafka.NewProducer(cfg.Kafka,
		kafka.WithProducerMetrics(m),
		kafka.WithProducerLogger(logger),
		kafka.WithProducerBreaker(resilience.NewCircuitBreaker(breakerCfg, logger.Logger)),
	)
	factory := cloudevents.NewEventFactory(cloudevents.SourceLocationDirectives)
	return &kafkaEventPublisher{
		EventPublisher: kafkaPublisher.NewEventPublisher(producer, factory, kafka.Topics.LocationDirectiveEvents),
		producer:       producer,
	}
}

func run(ctx context.Context, config *Config, deps appDependencies, signalCh <-chan os.Signal) error {
	deps = deps.withDefaults()

	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.ParseLevel(config.LogLevel)
	logConfig.Environment = config.Environment
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting location-directive-service API")

	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = config.OTLPEndpoint
	tracingConfig.Environment = config.Environment
	tracingConfig.Enabled = config.TracingEnabled

	tp, err := deps.initTracing(ctx, tracingConfig)
	if err != nil {
		// Continue without tracing
		logger.WithError(err).Error("Failed to initialize tracing")
	} else if tp != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint, "enabled", tracingConfig.Enabled)
	}

	m := metrics.New(metrics.DefaultConfig(serviceName))

	st, err := deps.openStore(ctx, config.MongoDB, m, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to open directive store")
		return err
	}
	defer func() {
		_ = st.close(context.Background())
	}()
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	publisher := deps.newPublisher(config, m, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close event publisher")
		}
	}()

	if config.CatalogFile != "" {
		file, err := deps.loadCatalog(config.CatalogFile)
		if err != nil {
			logger.WithError(err).Error("Failed to load directive catalog", "file", config.CatalogFile)
			return err
		}
		if _, err := catalog.Seed(ctx, file, st.directives, st.attributes, logger); err != nil {
			logger.WithError(err).Error("Failed to seed directive catalog")
			return err
		}
	}

	order, err := domain.ParsePriorityOrder(config.PriorityOrder)
	if err != nil {
		return err
	}
	if order == domain.PriorityAscending {
		logger.Warn("Directives are tried in ascending priority while scores weight higher priority numbers more",
			"priorityOrder", order)
	}

	service := application.NewLocationDirectiveService(st.directives, st.attributes, publisher, logger,
		application.WithEvaluator(domain.NewDirectiveEvaluator(domain.WithPriorityOrder(order))),
		application.WithMetrics(m),
	)

	router, err := newRouter(service, m, logger, st.healthCheck)
	if err != nil {
		return err
	}

	srv := deps.newHTTPServer(config.ServerAddr, router)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	if signalCh == nil {
		signalCh = make(chan os.Signal, 1)
	}
	select {
	case <-signalCh:
	case <-ctx.Done():
	}
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
	return nil
}

func newRouter(service *application.LocationDirectiveService, m *metrics.Metrics, logger *logging.Logger, ready func(ctx context.Context) error) (*gin.Engine, error) {
	router := gin.New()

	mwConfig := middleware.DefaultConfig(serviceName, logger)
	mwConfig.ErrorMappings = application.DomainErrorMappings
	if err := middleware.Setup(router, mwConfig); err != nil {
		return nil, fmt.Errorf("failed to set up middleware: %w", err)
	}
	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.Tracing(serviceName))

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, ready))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	apiV1 := router.Group("/api/v1")
	handlers.NewLocationHandlers(service, logger).RegisterRoutes(apiV1)
	handlers.NewDirectiveHandlers(service, logger).RegisterRoutes(apiV1)

	return router, nil
}
