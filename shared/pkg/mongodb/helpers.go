package mongodb

import (
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/wms-platform/location-directive-service/shared/pkg/metrics"
)

// SortAscending creates an ascending sort option
func SortAscending(field string) bson.D {
	return bson.D{{Key: field, Value: 1}}
}

// BreakerStateRecorder exports breaker transitions as metrics
func BreakerStateRecorder(m *metrics.Metrics) func(name string, from, to gobreaker.State) {
	return func(name string, _, to gobreaker.State) {
		m.SetCircuitBreakerState(name, int(to))
		if to == gobreaker.StateOpen {
			m.RecordCircuitBreakerTrip(name)
		}
	}
}
