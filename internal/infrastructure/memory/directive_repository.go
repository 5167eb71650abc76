package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/wms-platform/location-directive-service/internal/domain"
	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
)

// LocationDirectiveRepository keeps directive snapshots in memory. It backs the
// directivectl CLI and tests.
type LocationDirectiveRepository struct {
	mu        sync.RWMutex
	snapshots map[domain.DirectiveID]domain.DirectiveSnapshot
}

// NewLocationDirectiveRepository creates an empty repository
func NewLocationDirectiveRepository() *LocationDirectiveRepository {
	return &LocationDirectiveRepository{snapshots: make(map[domain.DirectiveID]domain.DirectiveSnapshot)}
}

// Save inserts or updates a directive under optimistic versioning
func (r *LocationDirectiveRepository) Save(_ context.Context, directive *domain.LocationDirective) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := directive.Snapshot()
	stored, exists := r.snapshots[snap.ID]
	switch {
	case exists && stored.Version != snap.Version:
		return domain.ErrVersionConflict
	case !exists && snap.Version != 0:
		return domain.ErrVersionConflict
	}

	snap.Version++
	r.snapshots[snap.ID] = snap
	directive.MarkSaved(snap.Version)
	return nil
}

// FindByID returns nil, nil when the directive does not exist
func (r *LocationDirectiveRepository) FindByID(_ context.Context, id domain.DirectiveID) (*domain.LocationDirective, error) {
	r.mu.RLock()
	snap, ok := r.snapshots[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return domain.RehydrateLocationDirective(snap)
}

func (r *LocationDirectiveRepository) FindByOperationTypeAndActive(_ context.Context, op shared.OperationType, active bool) ([]*domain.LocationDirective, error) {
	return r.where(func(s domain.DirectiveSnapshot) bool {
		return s.OperationType == op && s.Active == active
	})
}

func (r *LocationDirectiveRepository) FindByOperationType(_ context.Context, op shared.OperationType) ([]*domain.LocationDirective, error) {
	return r.where(func(s domain.DirectiveSnapshot) bool { return s.OperationType == op })
}

func (r *LocationDirectiveRepository) FindByStrategy(_ context.Context, strategy domain.LocationStrategy) ([]*domain.LocationDirective, error) {
	return r.where(func(s domain.DirectiveSnapshot) bool { return s.Strategy == strategy })
}

func (r *LocationDirectiveRepository) FindActive(_ context.Context) ([]*domain.LocationDirective, error) {
	return r.where(func(s domain.DirectiveSnapshot) bool { return s.Active })
}

func (r *LocationDirectiveRepository) FindActiveByStrategy(_ context.Context, strategy domain.LocationStrategy) ([]*domain.LocationDirective, error) {
	return r.where(func(s domain.DirectiveSnapshot) bool { return s.Active && s.Strategy == strategy })
}

func (r *LocationDirectiveRepository) FindByPriorityRange(_ context.Context, min, max int) ([]*domain.LocationDirective, error) {
	return r.where(func(s domain.DirectiveSnapshot) bool { return s.Priority >= min && s.Priority <= max })
}

func (r *LocationDirectiveRepository) FindByNameContaining(_ context.Context, fragment string) ([]*domain.LocationDirective, error) {
	needle := strings.ToLower(fragment)
	return r.where(func(s domain.DirectiveSnapshot) bool {
		return strings.Contains(strings.ToLower(s.Name), needle)
	})
}

func (r *LocationDirectiveRepository) FindByCreatedBy(_ context.Context, user string) ([]*domain.LocationDirective, error) {
	return r.where(func(s domain.DirectiveSnapshot) bool { return s.CreatedBy == user })
}

func (r *LocationDirectiveRepository) FindAll(_ context.Context, filter domain.DirectiveFilter) ([]*domain.LocationDirective, error) {
	return r.where(func(s domain.DirectiveSnapshot) bool { return Matches(filter, s) })
}

func (r *LocationDirectiveRepository) CountByOperationType(_ context.Context, op shared.OperationType) (int64, error) {
	return r.count(func(s domain.DirectiveSnapshot) bool { return s.OperationType == op }), nil
}

func (r *LocationDirectiveRepository) CountByStrategy(_ context.Context, strategy domain.LocationStrategy) (int64, error) {
	return r.count(func(s domain.DirectiveSnapshot) bool { return s.Strategy == strategy }), nil
}

func (r *LocationDirectiveRepository) CountActive(_ context.Context) (int64, error) {
	return r.count(func(s domain.DirectiveSnapshot) bool { return s.Active }), nil
}

func (r *LocationDirectiveRepository) CountActiveByOperationType(_ context.Context, op shared.OperationType) (int64, error) {
	return r.count(func(s domain.DirectiveSnapshot) bool { return s.Active && s.OperationType == op }), nil
}

func (r *LocationDirectiveRepository) ExistsByID(_ context.Context, id domain.DirectiveID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.snapshots[id]
	return ok, nil
}

// Matches reports whether s passes filter
func Matches(filter domain.DirectiveFilter, s domain.DirectiveSnapshot) bool {
	if filter.OperationType != "" && s.OperationType != filter.OperationType {
		return false
	}
	if filter.Strategy != "" && s.Strategy != filter.Strategy {
		return false
	}
	if filter.Active != nil && s.Active != *filter.Active {
		return false
	}
	if filter.NameContains != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(filter.NameContains)) {
		return false
	}
	if filter.CreatedBy != "" && s.CreatedBy != filter.CreatedBy {
		return false
	}
	return true
}

// where returns fresh instances ordered by priority, then name
func (r *LocationDirectiveRepository) where(pred func(domain.DirectiveSnapshot) bool) ([]*domain.LocationDirective, error) {
	r.mu.RLock()
	matched := make([]domain.DirectiveSnapshot, 0, len(r.snapshots))
	for _, s := range r.snapshots {
		if pred(s) {
			matched = append(matched, s)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority < matched[j].Priority
		}
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID < matched[j].ID
	})

	out := make([]*domain.LocationDirective, 0, len(matched))
	for _, s := range matched {
		d, err := domain.RehydrateLocationDirective(s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *LocationDirectiveRepository) count(pred func(domain.DirectiveSnapshot) bool) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, s := range r.snapshots {
		if pred(s) {
			n++
		}
	}
	return n
}
