package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordSelection(t *testing.T) {
	m := New(DefaultConfig("location-directive-service"))

	m.RecordSelection("pick", "fixed_location", true, time.Millisecond)
	m.RecordSelection("pick", "fixed_location", true, time.Millisecond)
	m.RecordSelection("pick", "", false, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LocationSelections.WithLabelValues("location-directive-service", "pick", "fixed_location", "selected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LocationSelections.WithLabelValues("location-directive-service", "pick", "none", "none")))
}

func TestRecordStrategyFault(t *testing.T) {
	m := New(DefaultConfig("svc"))
	m.RecordStrategyFault("random")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StrategyFaults.WithLabelValues("svc", "random")))
}
