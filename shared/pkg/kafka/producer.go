package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/wms-platform/location-directive-service/shared/pkg/cloudevents"
	"github.com/wms-platform/location-directive-service/shared/pkg/logging"
	"github.com/wms-platform/location-directive-service/shared/pkg/metrics"
	"github.com/wms-platform/location-directive-service/shared/pkg/resilience"
)

// MessageWriter is the subset of kafka.Writer used by Producer
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes CloudEvents to Kafka topics with metrics, tracing and a circuit breaker
type Producer struct {
	mu        sync.Mutex
	writers   map[string]MessageWriter
	newWriter func(topic string) MessageWriter

	breaker *resilience.CircuitBreaker
	metrics *metrics.Metrics
	logger  *logging.Logger
	tracer  trace.Tracer
}

// ProducerOption configures a Producer
type ProducerOption func(*Producer)

// WithProducerMetrics records publish counts and durations
func WithProducerMetrics(m *metrics.Metrics) ProducerOption {
	return func(p *Producer) { p.metrics = m }
}

// WithProducerLogger logs each publish
func WithProducerLogger(l *logging.Logger) ProducerOption {
	return func(p *Producer) { p.logger = l }
}

// WithProducerBreaker guards writes with cb
func WithProducerBreaker(cb *resilience.CircuitBreaker) ProducerOption {
	return func(p *Producer) { p.breaker = cb }
}

// WithWriterFactory replaces the kafka.Writer constructor
func WithWriterFactory(fn func(topic string) MessageWriter) ProducerOption {
	return func(p *Producer) { p.newWriter = fn }
}

// NewProducer creates a new Kafka producer
func NewProducer(config *Config, opts ...ProducerOption) *Producer {
	p := &Producer{
		writers: make(map[string]MessageWriter),
		tracer:  otel.Tracer("kafka-producer"),
		newWriter: func(topic string) MessageWriter {
			return &kafka.Writer{
				Addr:         kafka.TCP(config.Brokers...),
				Topic:        topic,
				Balancer:     &kafka.Hash{},
				BatchSize:    config.BatchSize,
				BatchTimeout: config.BatchTimeout,
				RequiredAcks: kafka.RequiredAcks(config.RequiredAcks),
				WriteTimeout: config.WriteTimeout,
			}
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Producer) writer(topic string) MessageWriter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.writers[topic]; ok {
		return w
	}
	w := p.newWriter(topic)
	p.writers[topic] = w
	return w
}

// EncodeMessage builds the Kafka message for event in binary-header mode.
// The subject is the message key so one directive's events stay ordered.
func EncodeMessage(event *cloudevents.WMSCloudEvent) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Subject),
		Value: data,
		Headers: []kafka.Header{
			{Key: "ce-specversion", Value: []byte(event.SpecVersion)},
			{Key: "ce-type", Value: []byte(event.Type)},
			{Key: "ce-source", Value: []byte(event.Source)},
			{Key: "ce-id", Value: []byte(event.ID)},
			{Key: "ce-time", Value: []byte(event.Time.Format(time.RFC3339Nano))},
			{Key: "content-type", Value: []byte(event.DataContentType)},
		},
		Time: event.Time,
	}
	if event.CorrelationID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "ce-" + cloudevents.ExtCorrelationID, Value: []byte(event.CorrelationID)})
	}
	if event.TraceParent != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "ce-" + cloudevents.ExtTraceParent, Value: []byte(event.TraceParent)})
	}
	return msg, nil
}

// PublishEvent publishes a CloudEvent to topic
func (p *Producer) PublishEvent(ctx context.Context, topic string, event *cloudevents.WMSCloudEvent) error {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "kafka.publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKey.String("kafka"),
			semconv.MessagingDestinationNameKey.String(topic),
			semconv.MessagingOperationKey.String("publish"),
			attribute.String("messaging.kafka.event_type", event.Type),
			attribute.String("messaging.message_id", event.ID),
		),
	)
	defer span.End()

	err := p.publish(ctx, topic, event)
	duration := time.Since(start)

	if p.metrics != nil {
		p.metrics.RecordKafkaPublish(topic, event.Type, err == nil, duration)
	}
	if p.logger != nil {
		p.logger.KafkaPublish(ctx, topic, event.Type, err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (p *Producer) publish(ctx context.Context, topic string, event *cloudevents.WMSCloudEvent) error {
	msg, err := EncodeMessage(event)
	if err != nil {
		return err
	}
	write := func(ctx context.Context) error {
		if err := p.writer(topic).WriteMessages(ctx, msg); err != nil {
			return fmt.Errorf("failed to publish event to topic %s: %w", topic, err)
		}
		return nil
	}
	if p.breaker != nil {
		return p.breaker.Do(ctx, write)
	}
	return write(ctx)
}

// Close closes all writers
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var lastErr error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close writer for topic %s: %w", topic, err)
		}
	}
	p.writers = make(map[string]MessageWriter)
	return lastErr
}
