package domain

import (
	"context"

	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
)

// LocationDirectiveRepository defines the interface for directive persistence.
// Directives are never deleted; they are deactivated.
type LocationDirectiveRepository interface {
	// Save inserts a new directive or updates an existing one under optimistic versioning.
	// It returns ErrVersionConflict when the stored version differs.
	Save(ctx context.Context, directive *LocationDirective) error

	// FindByID returns nil, nil when the directive does not exist
	FindByID(ctx context.Context, id DirectiveID) (*LocationDirective, error)

	FindByOperationTypeAndActive(ctx context.Context, op shared.OperationType, active bool) ([]*LocationDirective, error)
	FindByOperationType(ctx context.Context, op shared.OperationType) ([]*LocationDirective, error)
	FindByStrategy(ctx context.Context, strategy LocationStrategy) ([]*LocationDirective, error)
	FindActive(ctx context.Context) ([]*LocationDirective, error)
	FindActiveByStrategy(ctx context.Context, strategy LocationStrategy) ([]*LocationDirective, error)
	FindByPriorityRange(ctx context.Context, min, max int) ([]*LocationDirective, error)
	FindByNameContaining(ctx context.Context, fragment string) ([]*LocationDirective, error)
	FindByCreatedBy(ctx context.Context, user string) ([]*LocationDirective, error)
	FindAll(ctx context.Context, filter DirectiveFilter) ([]*LocationDirective, error)

	CountByOperationType(ctx context.Context, op shared.OperationType) (int64, error)
	CountByStrategy(ctx context.Context, strategy LocationStrategy) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	CountActiveByOperationType(ctx context.Context, op shared.OperationType) (int64, error)

	ExistsByID(ctx context.Context, id DirectiveID) (bool, error)
}

// DirectiveFilter narrows FindAll; zero fields are ignored
type DirectiveFilter struct {
	OperationType shared.OperationType
	Strategy      LocationStrategy
	Active        *bool
	NameContains  string
	CreatedBy     string
}

// LocationAttributeRepository supplies per-location attributes for the overlay
type LocationAttributeRepository interface {
	FindByLocations(ctx context.Context, locations []shared.BinLocation) (StaticOverlay, error)
	Save(ctx context.Context, location shared.BinLocation, attributes Attributes) error
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
}
