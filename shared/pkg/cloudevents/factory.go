package cloudevents

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wms-platform/location-directive-service/shared/pkg/tracing"
)

// EventFactory creates CloudEvents for one source
type EventFactory struct {
	source string
	now    func() time.Time
}

// NewEventFactory creates a new EventFactory for a specific source
func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source, now: func() time.Time { return time.Now().UTC() }}
}

// CreateEvent wraps data in an envelope. occurredAt is used as the event time
// when set; the trace context of ctx, if any, is carried as traceparent.
func (f *EventFactory) CreateEvent(ctx context.Context, eventType, subject string, data any, occurredAt time.Time) *WMSCloudEvent {
	if occurredAt.IsZero() {
		occurredAt = f.now()
	}
	event := &WMSCloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            occurredAt.UTC(),
		DataContentType: "application/json",
		Data:            data,
	}

	carrier := tracing.MapCarrier{}
	tracing.InjectTraceContext(ctx, carrier)
	event.TraceParent = carrier.Get(ExtTraceParent)
	if traceID := tracing.GetTraceID(ctx); traceID != "" {
		event.CorrelationID = traceID
	}
	return event
}
