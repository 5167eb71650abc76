package cloudevents

import "time"

// Source of every event emitted by the location directive service
const SourceLocationDirectives = "/wms/location-directive-service"

// Extension attribute names
const (
	ExtCorrelationID = "wmscorrelationid"
	ExtTraceParent   = "traceparent"
)

// WMSCloudEvent represents a CloudEvents v1.0 compliant event
type WMSCloudEvent struct {
	SpecVersion     string    `json:"specversion"`
	Type            string    `json:"type"`
	Source          string    `json:"source"`
	Subject         string    `json:"subject,omitempty"`
	ID              string    `json:"id"`
	Time            time.Time `json:"time"`
	DataContentType string    `json:"datacontenttype"`
	Data            any       `json:"data"`

	CorrelationID string `json:"wmscorrelationid,omitempty"`
	TraceParent   string `json:"traceparent,omitempty"`
}
