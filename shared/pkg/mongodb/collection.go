package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/wms-platform/location-directive-service/shared/pkg/logging"
	"github.com/wms-platform/location-directive-service/shared/pkg/metrics"
	"github.com/wms-platform/location-directive-service/shared/pkg/resilience"
)

// Collection wraps a mongo.Collection with metrics, tracing and a circuit breaker.
// Results are decoded into caller-supplied targets so the breaker sees cursor errors.
type Collection struct {
	coll    *mongo.Collection
	name    string
	breaker *resilience.CircuitBreaker
	metrics *metrics.Metrics
	logger  *logging.Logger
	tracer  trace.Tracer
}

// CollectionOption configures a Collection
type CollectionOption func(*Collection)

// WithMetrics records operation counts and durations
func WithMetrics(m *metrics.Metrics) CollectionOption {
	return func(c *Collection) { c.metrics = m }
}

// WithLogger logs every operation at debug level
func WithLogger(l *logging.Logger) CollectionOption {
	return func(c *Collection) { c.logger = l }
}

// WithBreaker routes every operation through cb
func WithBreaker(cb *resilience.CircuitBreaker) CollectionOption {
	return func(c *Collection) { c.breaker = cb }
}

// NewCollection wraps a named collection of db
func NewCollection(db *mongo.Database, name string, opts ...CollectionOption) *Collection {
	c := &Collection{
		coll:   db.Collection(name),
		name:   name,
		tracer: otel.Tracer("mongodb"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewBreaker builds the circuit breaker shared by all collections of a client.
// Missing documents and duplicate keys are answers, not outages.
func NewBreaker(name string, logger *logging.Logger, m *metrics.Metrics) *resilience.CircuitBreaker {
	cfg := resilience.DefaultCircuitBreakerConfig(name)
	cfg.MaxRequests = 5
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, mongo.ErrNoDocuments) || mongo.IsDuplicateKeyError(err) ||
			errors.Is(err, context.Canceled)
	}
	if m != nil {
		cfg.OnStateChange = BreakerStateRecorder(m)
	}
	var base = logging.NewNop()
	if logger != nil {
		base = logger
	}
	return resilience.NewCircuitBreaker(cfg, base.Logger)
}

// Name returns the collection name
func (c *Collection) Name() string {
	return c.name
}

// Logger returns the configured logger, or a no-op one
func (c *Collection) Logger() *logging.Logger {
	if c.logger == nil {
		return logging.NewNop()
	}
	return c.logger
}

// Raw exposes the driver collection for index management
func (c *Collection) Raw() *mongo.Collection {
	return c.coll
}

func (c *Collection) run(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	ctx, span := c.tracer.Start(ctx, "mongodb."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemMongoDB,
			semconv.DBNameKey.String(c.coll.Database().Name()),
			semconv.DBMongoDBCollectionKey.String(c.name),
			attribute.String("db.operation", operation),
		),
	)
	defer span.End()

	start := time.Now()
	var err error
	if c.breaker != nil {
		err = c.breaker.Do(ctx, fn)
	} else {
		err = fn(ctx)
	}
	duration := time.Since(start)

	ok := err == nil || errors.Is(err, mongo.ErrNoDocuments)
	if !ok {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if c.metrics != nil {
		c.metrics.RecordMongoDBOperation(c.name, operation, ok, duration)
	}
	if c.logger != nil {
		c.logger.DatabaseQuery(ctx, c.name, operation, duration, err)
	}
	return err
}

// FindOne decodes the first match into out. mongo.ErrNoDocuments is returned unchanged.
func (c *Collection) FindOne(ctx context.Context, filter any, out any, opts ...*options.FindOneOptions) error {
	return c.run(ctx, "findOne", func(ctx context.Context) error {
		return c.coll.FindOne(ctx, filter, opts...).Decode(out)
	})
}

// Find decodes every match into out, which must be a pointer to a slice
func (c *Collection) Find(ctx context.Context, filter any, out any, opts ...*options.FindOptions) error {
	return c.run(ctx, "find", func(ctx context.Context) error {
		cursor, err := c.coll.Find(ctx, filter, opts...)
		if err != nil {
			return err
		}
		return cursor.All(ctx, out)
	})
}

// InsertOne inserts a single document
func (c *Collection) InsertOne(ctx context.Context, doc any) error {
	return c.run(ctx, "insertOne", func(ctx context.Context) error {
		_, err := c.coll.InsertOne(ctx, doc)
		return err
	})
}

// ReplaceOne replaces the first match and reports how many documents matched
func (c *Collection) ReplaceOne(ctx context.Context, filter any, doc any, opts ...*options.ReplaceOptions) (int64, error) {
	var matched int64
	err := c.run(ctx, "replaceOne", func(ctx context.Context) error {
		res, err := c.coll.ReplaceOne(ctx, filter, doc, opts...)
		if err != nil {
			return err
		}
		matched = res.MatchedCount + res.UpsertedCount
		return nil
	})
	return matched, err
}

// CountDocuments counts matching documents
func (c *Collection) CountDocuments(ctx context.Context, filter any) (int64, error) {
	var n int64
	err := c.run(ctx, "countDocuments", func(ctx context.Context) error {
		var err error
		n, err = c.coll.CountDocuments(ctx, filter)
		return err
	})
	return n, err
}

// EnsureIndexes creates the given indexes, ignoring ones that already exist
func (c *Collection) EnsureIndexes(ctx context.Context, models ...mongo.IndexModel) error {
	return c.run(ctx, "createIndexes", func(ctx context.Context) error {
		_, err := c.coll.Indexes().CreateMany(ctx, models)
		return err
	})
}
