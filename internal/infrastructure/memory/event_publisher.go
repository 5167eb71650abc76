package memory

import (
	"context"
	"sync"

	"github.com/wms-platform/location-directive-service/internal/domain"
)

// EventPublisher records published events. With Kafka disabled the API server
// uses it as its publisher and events stay in process.
type EventPublisher struct {
	mu     sync.Mutex
	events []domain.DomainEvent
	limit  int
}

// NewEventPublisher keeps at most limit events; limit <= 0 keeps everything
func NewEventPublisher(limit int) *EventPublisher {
	return &EventPublisher{limit: limit}
}

// Publish records event
func (p *EventPublisher) Publish(_ context.Context, event domain.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	if p.limit > 0 && len(p.events) > p.limit {
		p.events = p.events[len(p.events)-p.limit:]
	}
	return nil
}

// Events returns a copy of the recorded events
func (p *EventPublisher) Events() []domain.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.DomainEvent(nil), p.events...)
}

// EventTypes returns the types of the recorded events in order
func (p *EventPublisher) EventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}
