package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
)

// LocationDirective errors
var (
	ErrDirectiveNotFound    = errors.New("location directive not found")
	ErrBlankName            = errors.New("directive name cannot be blank")
	ErrInvalidPriority      = errors.New("directive priority must be at least 1")
	ErrInvalidOperationType = shared.ErrInvalidOperationType
	ErrVersionConflict      = errors.New("location directive was modified concurrently")
	ErrInvalidDirectiveID   = errors.New("invalid directive id")
)

// Clock supplies timestamps for audit fields
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

// Now returns the current time
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock in UTC
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })

// DirectiveID identifies a LocationDirective
type DirectiveID string

// NewDirectiveID generates a random directive id
func NewDirectiveID() DirectiveID {
	return DirectiveID(uuid.New().String())
}

// ParseDirectiveID validates a directive id
func ParseDirectiveID(s string) (DirectiveID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDirectiveID, err)
	}
	return DirectiveID(id.String()), nil
}

// String returns the id
func (id DirectiveID) String() string {
	return string(id)
}

// ScoreBonus computes the strategy-specific score term for a suitable location
type ScoreBonus func(LocationContext) float64

// LocationDirective is the aggregate root for a prioritized bundle of constraints and a strategy.
// It is not safe for concurrent mutation.
type LocationDirective struct {
	id             DirectiveID
	name           string
	description    string
	operationType  shared.OperationType
	strategy       LocationStrategy
	constraints    []LocationConstraint
	disabled       []LocationConstraint
	priority       int
	active         bool
	createdAt      time.Time
	lastModifiedAt time.Time
	createdBy      string
	version        int64

	clock        Clock
	domainEvents []DomainEvent
}

// DirectiveOption configures optional directive fields
type DirectiveOption func(*LocationDirective)

// WithClock sets the clock used for audit timestamps
func WithClock(clock Clock) DirectiveOption {
	return func(d *LocationDirective) {
		if clock != nil {
			d.clock = clock
		}
	}
}

// WithCreatedBy records who created the directive
func WithCreatedBy(user string) DirectiveOption {
	return func(d *LocationDirective) {
		d.createdBy = strings.TrimSpace(user)
	}
}

// WithDirectiveID sets an explicit id
func WithDirectiveID(id DirectiveID) DirectiveOption {
	return func(d *LocationDirective) {
		if id != "" {
			d.id = id
		}
	}
}

// WithConstraints sets the initial constraints
func WithConstraints(constraints ...LocationConstraint) DirectiveOption {
	return func(d *LocationDirective) {
		d.constraints = append(d.constraints, constraints...)
	}
}

// NewLocationDirective creates a new active directive
func NewLocationDirective(
	name, description string,
	operationType shared.OperationType,
	strategy LocationStrategy,
	priority int,
	opts ...DirectiveOption,
) (*LocationDirective, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrBlankName
	}
	if priority < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPriority, priority)
	}
	if !operationType.IsValid() {
		return nil, ErrInvalidOperationType
	}
	if !strategy.IsValid() {
		return nil, ErrInvalidStrategy
	}

	d := &LocationDirective{
		id:            NewDirectiveID(),
		name:          name,
		description:   description,
		operationType: operationType,
		strategy:      strategy,
		priority:      priority,
		active:        true,
		clock:         SystemClock,
	}
	for _, opt := range opts {
		opt(d)
	}

	now := d.clock.Now()
	d.createdAt = now
	d.lastModifiedAt = now

	d.addDomainEvent(&DirectiveCreatedEvent{
		DirectiveID:   d.id.String(),
		Name:          d.name,
		OperationType: d.operationType.String(),
		Strategy:      d.strategy.String(),
		Priority:      d.priority,
		CreatedBy:     d.createdBy,
		CreatedAt:     now,
	})
	return d, nil
}

// DirectiveSnapshot is the persisted state of a directive
type DirectiveSnapshot struct {
	ID                  DirectiveID
	Name                string
	Description         string
	OperationType       shared.OperationType
	Strategy            LocationStrategy
	Constraints         []LocationConstraint
	// DisabledConstraints are stored but never evaluated
	DisabledConstraints []LocationConstraint
	Priority            int
	Active              bool
	CreatedAt           time.Time
	LastModifiedAt      time.Time
	CreatedBy           string
	Version             int64
}

// RehydrateLocationDirective restores a directive from persisted state
func RehydrateLocationDirective(s DirectiveSnapshot, opts ...DirectiveOption) (*LocationDirective, error) {
	if s.ID == "" {
		return nil, ErrInvalidDirectiveID
	}
	if strings.TrimSpace(s.Name) == "" {
		return nil, ErrBlankName
	}
	if s.Priority < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPriority, s.Priority)
	}
	d := &LocationDirective{
		id:             s.ID,
		name:           s.Name,
		description:    s.Description,
		operationType:  s.OperationType,
		strategy:       s.Strategy,
		constraints:    append([]LocationConstraint(nil), s.Constraints...),
		disabled:       append([]LocationConstraint(nil), s.DisabledConstraints...),
		priority:       s.Priority,
		active:         s.Active,
		createdAt:      s.CreatedAt,
		lastModifiedAt: s.LastModifiedAt,
		createdBy:      s.CreatedBy,
		version:        s.Version,
		clock:          SystemClock,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Snapshot returns the persistable state
func (d *LocationDirective) Snapshot() DirectiveSnapshot {
	return DirectiveSnapshot{
		ID:                  d.id,
		Name:                d.name,
		Description:         d.description,
		OperationType:       d.operationType,
		Strategy:            d.strategy,
		Constraints:         d.Constraints(),
		DisabledConstraints: d.DisabledConstraints(),
		Priority:            d.priority,
		Active:              d.active,
		CreatedAt:           d.createdAt,
		LastModifiedAt:      d.lastModifiedAt,
		CreatedBy:           d.createdBy,
		Version:             d.version,
	}
}

func (d *LocationDirective) ID() DirectiveID                     { return d.id }
func (d *LocationDirective) Name() string                        { return d.name }
func (d *LocationDirective) Description() string                 { return d.description }
func (d *LocationDirective) OperationType() shared.OperationType { return d.operationType }
func (d *LocationDirective) Strategy() LocationStrategy          { return d.strategy }
func (d *LocationDirective) Priority() int                       { return d.priority }
func (d *LocationDirective) IsActive() bool                      { return d.active }
func (d *LocationDirective) CreatedAt() time.Time                { return d.createdAt }
func (d *LocationDirective) LastModifiedAt() time.Time           { return d.lastModifiedAt }
func (d *LocationDirective) CreatedBy() string                   { return d.createdBy }
func (d *LocationDirective) Version() int64                      { return d.version }

// Constraints returns a copy of the constraint list
func (d *LocationDirective) Constraints() []LocationConstraint {
	return append([]LocationConstraint(nil), d.constraints...)
}

// DisabledConstraints returns a copy of the stored constraints that are not evaluated
func (d *LocationDirective) DisabledConstraints() []LocationConstraint {
	return append([]LocationConstraint(nil), d.disabled...)
}

// HasConstraintType reports whether any constraint has type t
func (d *LocationDirective) HasConstraintType(t ConstraintType) bool {
	for _, c := range d.constraints {
		if c.Type() == t {
			return true
		}
	}
	return false
}

// AddConstraint appends a constraint
func (d *LocationDirective) AddConstraint(c LocationConstraint) {
	d.constraints = append(d.constraints, c)
	d.touch("constraint_added", c.String())
}

// RemoveConstraint removes the first constraint equal to c and reports whether one was removed
func (d *LocationDirective) RemoveConstraint(c LocationConstraint) bool {
	for i, existing := range d.constraints {
		if existing.Equals(c) {
			d.constraints = append(d.constraints[:i:i], d.constraints[i+1:]...)
			d.touch("constraint_removed", c.String())
			return true
		}
	}
	return false
}

// UpdateStrategy changes the placement strategy
func (d *LocationDirective) UpdateStrategy(strategy LocationStrategy) error {
	if !strategy.IsValid() {
		return ErrInvalidStrategy
	}
	d.strategy = strategy
	d.touch("strategy", strategy.String())
	return nil
}

// UpdatePriority changes the priority
func (d *LocationDirective) UpdatePriority(priority int) error {
	if priority < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidPriority, priority)
	}
	d.priority = priority
	d.touch("priority", fmt.Sprint(priority))
	return nil
}

// UpdateName renames the directive
func (d *LocationDirective) UpdateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBlankName
	}
	d.name = name
	d.touch("name", name)
	return nil
}

// UpdateDescription changes the description
func (d *LocationDirective) UpdateDescription(description string) {
	d.description = description
	d.touch("description", "")
}

// Activate makes the directive eligible for evaluation
func (d *LocationDirective) Activate() {
	d.active = true
	d.lastModifiedAt = d.clock.Now()
	d.addDomainEvent(&DirectiveActivatedEvent{DirectiveID: d.id.String(), ActivatedAt: d.lastModifiedAt})
}

// Deactivate removes the directive from evaluation
func (d *LocationDirective) Deactivate() {
	d.active = false
	d.lastModifiedAt = d.clock.Now()
	d.addDomainEvent(&DirectiveDeactivatedEvent{DirectiveID: d.id.String(), DeactivatedAt: d.lastModifiedAt})
}

// MarkSaved records the version assigned by the repository
func (d *LocationDirective) MarkSaved(version int64) {
	d.version = version
}

// IsApplicableFor reports whether the directive is active and covers the operation type
func (d *LocationDirective) IsApplicableFor(op shared.OperationType) bool {
	return d.active && d.operationType == op
}

// SatisfiesConstraints reports whether the directive is active and every constraint holds
func (d *LocationDirective) SatisfiesConstraints(ctx LocationContext) bool {
	if !d.active {
		return false
	}
	for _, c := range d.constraints {
		if !c.Evaluate(ctx) {
			return false
		}
	}
	return true
}

// Violations returns the constraints that fail for ctx
func (d *LocationDirective) Violations(ctx LocationContext) []string {
	var violations []string
	for _, c := range d.constraints {
		if !c.Evaluate(ctx) {
			violations = append(violations, c.String())
		}
	}
	return violations
}

// BaseScore is the priority component of the score
func (d *LocationDirective) BaseScore() float64 {
	return float64(d.priority) * 100
}

// Score computes priority×100 plus the strategy bonus, clamped at zero
func (d *LocationDirective) Score(ctx LocationContext, bonus ScoreBonus) float64 {
	score := d.BaseScore()
	if bonus != nil {
		score += bonus(ctx)
	}
	return math.Max(0, score)
}

// EvaluateForLocation evaluates the directive for a query against one location's context
func (d *LocationDirective) EvaluateForLocation(query LocationQuery, ctx LocationContext, bonus ScoreBonus) LocationDirectiveResult {
	if !d.IsApplicableFor(query.OperationType()) {
		return NotApplicable("Work type not supported")
	}
	if violations := d.Violations(ctx); len(violations) > 0 {
		return ConstraintViolation(violations)
	}
	return Suitable(d.Score(ctx, bonus))
}

// Equals compares directives by id
func (d *LocationDirective) Equals(other *LocationDirective) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.id == other.id
}

// String returns a short description for logs
func (d *LocationDirective) String() string {
	return fmt.Sprintf("LocationDirective{id=%s, name=%s, operationType=%s, strategy=%s, priority=%d, active=%t}",
		d.id, d.name, d.operationType, d.strategy, d.priority, d.active)
}

// PullEvents returns and clears the pending domain events
func (d *LocationDirective) PullEvents() []DomainEvent {
	events := d.domainEvents
	d.domainEvents = nil
	return events
}

func (d *LocationDirective) touch(change, detail string) {
	d.lastModifiedAt = d.clock.Now()
	d.addDomainEvent(&DirectiveUpdatedEvent{
		DirectiveID: d.id.String(),
		Change:      change,
		Detail:      detail,
		UpdatedAt:   d.lastModifiedAt,
	})
}

func (d *LocationDirective) addDomainEvent(event DomainEvent) {
	d.domainEvents = append(d.domainEvents, event)
}
