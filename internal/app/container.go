package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"catalogservice/internal/catalog"
	"catalogservice/internal/config"
	"catalogservice/internal/platform/kafka"
	"catalogservice/internal/platform/observability"
	"catalogservice/internal/platform/storage"
	"catalogservice/internal/stock"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Container holds expensive-to-create singleton resources and dependencies
type Container struct {
	config *config.Config
	logger *zap.Logger
	tracer observability.Tracer

	db        *storage.DB
	products  *storage.ProductStore
	queue     *stock.BoundedQueue
	consumer  *stock.UpdateConsumer
	submitter *stock.QueueSubmitter
	feed      *stock.FeedConsumer

	messageConsumer kafka.Consumer
	messageProducer kafka.Producer
	httpServer      *http.Server

	otelShutdowns []observability.ShutdownFunc
}

// NewContainer creates and initializes all infrastructure components.
// ctx is the process lifetime: once it is done no stock update is admitted.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	c := &Container{config: cfg}

	tp := c.setupObservability(ctx)

	if err := c.setupStorage(ctx); err != nil {
		_ = c.Shutdown(context.Background())
		return nil, err
	}

	if err := c.setupKafka(tp); err != nil {
		_ = c.Shutdown(context.Background())
		return nil, err
	}

	if err := c.setupPipeline(ctx); err != nil {
		_ = c.Shutdown(context.Background())
		return nil, err
	}

	c.setupHTTP(ctx)
	return c, nil
}

// setupObservability configures OpenTelemetry export when an endpoint is
// configured and builds the logger on top of the resulting providers.
func (c *Container) setupObservability(ctx context.Context) trace.TracerProvider {
	observability.SetupPropagation()

	var bootErrs []error
	if c.config.OtelEnabled() {
		logShutdown, err := observability.SetupLoggingSDK(ctx, c.config)
		if err != nil {
			bootErrs = append(bootErrs, fmt.Errorf("failed to setup OpenTelemetry logging: %w", err))
		} else {
			c.otelShutdowns = append(c.otelShutdowns, logShutdown)
		}

		_, traceShutdown, err := observability.SetupTracingSDK(ctx, c.config)
		if err != nil {
			bootErrs = append(bootErrs, fmt.Errorf("failed to setup OpenTelemetry tracing: %w", err))
		} else {
			c.otelShutdowns = append(c.otelShutdowns, traceShutdown)
		}

		metricShutdown, err := observability.SetupMetricsSDK(ctx, c.config)
		if err != nil {
			bootErrs = append(bootErrs, fmt.Errorf("failed to setup OpenTelemetry metrics: %w", err))
		} else {
			c.otelShutdowns = append(c.otelShutdowns, metricShutdown)
		}
	}

	c.logger = observability.NewLogger()
	for _, err := range bootErrs {
		c.logger.Error("❌ OpenTelemetry setup failed, continuing without it", zap.Error(err))
	}
	c.logger.Info("Logger initialized",
		zap.Bool("otel_export", c.config.OtelEnabled()),
		zap.Bool("kafka", c.config.KafkaEnabled()),
	)

	c.tracer = otel.Tracer(config.ServiceName)
	return otel.GetTracerProvider()
}

func (c *Container) setupStorage(ctx context.Context) error {
	db, err := storage.Open(c.config.DBPath, c.logger)
	if err != nil {
		return err
	}
	c.db = db
	c.products = storage.NewProductStore(db, c.logger)

	if c.config.SeedOnStartup {
		if err := catalog.Seed(ctx, c.products, catalog.InitialProducts, c.logger); err != nil {
			return err
		}
	}
	return nil
}

// setupKafka initializes the stock feed consumer and event producer when a
// broker is configured.
func (c *Container) setupKafka(tp trace.TracerProvider) error {
	if !c.config.KafkaEnabled() {
		c.logger.Info("No Kafka broker configured, stock feed and events disabled")
		return nil
	}

	consumer, err := kafka.NewConsumer(c.config.KafkaBroker)
	if err != nil {
		return fmt.Errorf("failed to create Kafka consumer: %w", err)
	}
	c.messageConsumer = consumer

	producer, err := kafka.NewProducer(c.config.KafkaBroker, tp)
	if err != nil {
		return fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	c.messageProducer = producer
	return nil
}

func (c *Container) setupPipeline(ctx context.Context) error {
	c.queue = stock.NewBoundedQueue(c.config.QueueCapacity)

	metrics, err := stock.NewMetrics(otel.Meter(config.ServiceName), c.queue)
	if err != nil {
		return err
	}

	var publisher stock.EventPublisher = stock.NopPublisher{}
	if c.messageProducer != nil {
		publisher = stock.NewKafkaEventPublisher(c.messageProducer, c.logger)
	}

	c.consumer = stock.NewUpdateConsumer(c.queue, c.products, publisher, c.logger, c.tracer, metrics)
	c.submitter = stock.NewQueueSubmitter(ctx, c.queue, c.logger, metrics)

	if c.messageConsumer != nil {
		c.feed = stock.NewFeedConsumer(c.messageConsumer, c.submitter, c.logger)
	}
	return nil
}

func (c *Container) setupHTTP(ctx context.Context) {
	handler := catalog.NewHandler(
		catalog.NewService(c.products, c.logger),
		c.submitter,
		c.consumer,
		c.queue,
		c.logger,
		c.tracer,
	)

	c.httpServer = &http.Server{
		Addr:              c.config.HTTPAddr,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		Handler:           handler.Routes(),
	}
}

// Shutdown closes all infrastructure components in reverse order of creation.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error
	logf := func(msg string, err error) {
		if c.logger != nil {
			c.logger.Error(msg, zap.Error(err))
		}
		errs = append(errs, err)
	}

	if c.logger != nil {
		c.logger.Info("Shutting down infrastructure...")
	}

	if c.messageConsumer != nil {
		if err := c.messageConsumer.Close(); err != nil {
			logf("Failed to close message consumer", err)
		}
	}

	if c.messageProducer != nil {
		if err := c.messageProducer.Close(); err != nil {
			logf("Failed to close message producer", err)
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			logf("Failed to close database", err)
		}
	}

	if c.logger != nil {
		c.logger.Info("Infrastructure shutdown complete")
		_ = c.logger.Sync()
	}

	// Telemetry goes last so the shutdown logs above are still exported.
	for i := len(c.otelShutdowns) - 1; i >= 0; i-- {
		if err := c.otelShutdowns[i](ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown OpenTelemetry: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Getters for accessing infrastructure components
func (c *Container) Logger() observability.Logger         { return c.logger }
func (c *Container) Tracer() observability.Tracer         { return c.tracer }
func (c *Container) StockConsumer() *stock.UpdateConsumer { return c.consumer }
func (c *Container) Submitter() stock.Submitter           { return c.submitter }
func (c *Container) FeedConsumer() *stock.FeedConsumer    { return c.feed }
func (c *Container) HTTPServer() *http.Server             { return c.httpServer }
