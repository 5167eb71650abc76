package memory

import (
	"context"
	"sync"

	"github.com/wms-platform/location-directive-service/internal/domain"
	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
)

// LocationAttributeRepository keeps per-location attributes in memory
type LocationAttributeRepository struct {
	mu    sync.RWMutex
	attrs map[shared.BinLocation]domain.Attributes
}

// NewLocationAttributeRepository creates a repository seeded with overlay
func NewLocationAttributeRepository(overlay domain.StaticOverlay) *LocationAttributeRepository {
	r := &LocationAttributeRepository{attrs: make(map[shared.BinLocation]domain.Attributes, len(overlay))}
	for loc, a := range overlay {
		r.attrs[loc] = a.Clone()
	}
	return r
}

// FindByLocations returns the stored attributes of the requested locations; unknown ones are omitted
func (r *LocationAttributeRepository) FindByLocations(_ context.Context, locations []shared.BinLocation) (domain.StaticOverlay, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(domain.StaticOverlay, len(locations))
	for _, loc := range locations {
		if a, ok := r.attrs[loc]; ok {
			out[loc] = a.Clone()
		}
	}
	return out, nil
}

// Save replaces the attributes of location
func (r *LocationAttributeRepository) Save(_ context.Context, location shared.BinLocation, attributes domain.Attributes) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attrs[location] = attributes.Clone()
	return nil
}
