package kafka

import (
	"catalogservice/internal/config"

	otelkafka "github.com/Trendyol/otel-kafka-konsumer"
	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// NewConsumer creates an instrumented reader for the stock feed topic.
func NewConsumer(broker string) (Consumer, error) {
	readerConfig := kafkago.ReaderConfig{
		Brokers: []string{broker},
		Topic:   config.StockFeedTopic,
		GroupID: config.GroupID,
	}

	reader, err := otelkafka.NewReader(kafkago.NewReader(readerConfig))
	if err != nil {
		return nil, err
	}
	return reader, nil
}

// NewProducer creates an instrumented writer for stock update events.
func NewProducer(broker string, tp trace.TracerProvider) (Producer, error) {
	baseWriter := &kafkago.Writer{
		Addr:         kafkago.TCP(broker),
		Topic:        config.StockEventsTopic,
		Balancer:     &kafkago.LeastBytes{},
		BatchTimeout: config.BatchTimeout,
		BatchSize:    config.BatchSize,
	}

	writer, err := otelkafka.NewWriter(baseWriter,
		otelkafka.WithTracerProvider(tp),
		otelkafka.WithPropagator(propagation.TraceContext{}),
		otelkafka.WithAttributes(
			[]attribute.KeyValue{
				semconv.MessagingDestinationNameKey.String(config.StockEventsTopic),
				attribute.String("messaging.kafka.client_id", config.ServiceName),
			},
		),
	)
	if err != nil {
		return nil, err
	}
	return writer, nil
}
