package domain

import "time"

// DomainEvent represents a domain event interface
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// Event types published by the service
const (
	EventDirectiveCreated     = "wms.location-directive.created"
	EventDirectiveUpdated     = "wms.location-directive.updated"
	EventDirectiveActivated   = "wms.location-directive.activated"
	EventDirectiveDeactivated = "wms.location-directive.deactivated"
	EventLocationSelected     = "wms.location.selected"
)

// DirectiveCreatedEvent is emitted when a directive is created
type DirectiveCreatedEvent struct {
	DirectiveID   string    `json:"directiveId"`
	Name          string    `json:"name"`
	OperationType string    `json:"operationType"`
	Strategy      string    `json:"strategy"`
	Priority      int       `json:"priority"`
	CreatedBy     string    `json:"createdBy,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (e *DirectiveCreatedEvent) EventType() string     { return EventDirectiveCreated }
func (e *DirectiveCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// DirectiveUpdatedEvent is emitted when a directive's configuration changes
type DirectiveUpdatedEvent struct {
	DirectiveID string    `json:"directiveId"`
	Change      string    `json:"change"`
	Detail      string    `json:"detail,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (e *DirectiveUpdatedEvent) EventType() string     { return EventDirectiveUpdated }
func (e *DirectiveUpdatedEvent) OccurredAt() time.Time { return e.UpdatedAt }

// DirectiveActivatedEvent is emitted when a directive is activated
type DirectiveActivatedEvent struct {
	DirectiveID string    `json:"directiveId"`
	ActivatedAt time.Time `json:"activatedAt"`
}

func (e *DirectiveActivatedEvent) EventType() string     { return EventDirectiveActivated }
func (e *DirectiveActivatedEvent) OccurredAt() time.Time { return e.ActivatedAt }

// DirectiveDeactivatedEvent is emitted when a directive is deactivated
type DirectiveDeactivatedEvent struct {
	DirectiveID   string    `json:"directiveId"`
	DeactivatedAt time.Time `json:"deactivatedAt"`
}

func (e *DirectiveDeactivatedEvent) EventType() string     { return EventDirectiveDeactivated }
func (e *DirectiveDeactivatedEvent) OccurredAt() time.Time { return e.DeactivatedAt }

// LocationSelectedEvent is emitted when a directive produced a placement
type LocationSelectedEvent struct {
	DirectiveID   string    `json:"directiveId"`
	Strategy      string    `json:"strategy"`
	OperationType string    `json:"operationType"`
	SKU           string    `json:"sku"`
	Quantity      int       `json:"quantity"`
	Location      string    `json:"location"`
	SelectedAt    time.Time `json:"selectedAt"`
}

func (e *LocationSelectedEvent) EventType() string     { return EventLocationSelected }
func (e *LocationSelectedEvent) OccurredAt() time.Time { return e.SelectedAt }
