package application

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wms-platform/location-directive-service/internal/domain"
	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
	"github.com/wms-platform/location-directive-service/shared/pkg/errors"
	"github.com/wms-platform/location-directive-service/shared/pkg/logging"
	"github.com/wms-platform/location-directive-service/shared/pkg/metrics"
	"github.com/wms-platform/location-directive-service/shared/pkg/tracing"
)

const tracerName = "location-directive-service/application"

// DomainErrorMappings maps directive sentinels to API errors
var DomainErrorMappings = []errors.Mapping{
	{Target: domain.ErrDirectiveNotFound, Build: func(string) *errors.AppError { return errors.ErrNotFound("location directive") }},
	{Target: domain.ErrVersionConflict, Build: errors.ErrConflict},
	{Target: domain.ErrBlankName, Build: errors.ErrValidation},
	{Target: domain.ErrInvalidPriority, Build: errors.ErrValidation},
	{Target: domain.ErrInvalidOperationType, Build: errors.ErrValidation},
	{Target: domain.ErrInvalidStrategy, Build: errors.ErrValidation},
	{Target: domain.ErrInvalidConstraint, Build: errors.ErrValidation},
	{Target: domain.ErrInvalidDirectiveID, Build: errors.ErrValidation},
	{Target: domain.ErrInvalidQuery, Build: errors.ErrValidation},
	{Target: shared.ErrInvalidLocation, Build: errors.ErrValidation},
}

// LocationDirectiveService implements the application layer for directive
// management and location selection
type LocationDirectiveService struct {
	directiveRepo domain.LocationDirectiveRepository
	attributeRepo domain.LocationAttributeRepository
	publisher     domain.EventPublisher
	evaluator     *domain.DirectiveEvaluator
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	clock         domain.Clock
	logger        *logging.Logger
}

// ServiceOption configures a LocationDirectiveService
type ServiceOption func(*LocationDirectiveService)

// WithEvaluator sets the selection engine
func WithEvaluator(e *domain.DirectiveEvaluator) ServiceOption {
	return func(s *LocationDirectiveService) {
		if e != nil {
			s.evaluator = e
		}
	}
}

// WithMetrics enables selection metrics
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *LocationDirectiveService) { s.metrics = m }
}

// WithTracer overrides the global tracer
func WithTracer(t trace.Tracer) ServiceOption {
	return func(s *LocationDirectiveService) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithClock sets the clock used for directives and events
func WithClock(c domain.Clock) ServiceOption {
	return func(s *LocationDirectiveService) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewLocationDirectiveService creates a new LocationDirectiveService.
// attributeRepo and publisher may be nil.
func NewLocationDirectiveService(
	directiveRepo domain.LocationDirectiveRepository,
	attributeRepo domain.LocationAttributeRepository,
	publisher domain.EventPublisher,
	logger *logging.Logger,
	opts ...ServiceOption,
) *LocationDirectiveService {
	s := &LocationDirectiveService{
		directiveRepo: directiveRepo,
		attributeRepo: attributeRepo,
		publisher:     publisher,
		evaluator:     domain.NewDirectiveEvaluator(),
		tracer:        otel.Tracer(tracerName),
		clock:         domain.SystemClock,
		logger:        logger.WithComponent("location-directive-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectOptimalLocation picks a location using the highest ranked directive that produces one.
// A query no directive can place yields Found=false, not an error.
func (s *LocationDirectiveService) SelectOptimalLocation(ctx context.Context, cmd LocationQueryCommand) (*SelectionDTO, error) {
	query, err := cmd.toQuery()
	if err != nil {
		return nil, err
	}

	ctx, span := s.startSpan(ctx, "SelectOptimalLocation", query)
	defer span.End()

	directives, overlay, err := s.loadForQuery(ctx, query, func(directives []*domain.LocationDirective) []shared.BinLocation {
		return s.evaluator.CandidateUniverse(query, directives)
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	start := time.Now()
	selection := s.evaluator.SelectOptimalLocation(query, directives, overlay)
	elapsed := time.Since(start)

	s.reportFaults(ctx, selection.Faults)

	strategy := ""
	if selection.Directive != nil {
		strategy = string(selection.Directive.Strategy())
	}
	if s.metrics != nil {
		s.metrics.RecordSelection(string(query.OperationType()), strategy, selection.Location != nil, elapsed)
	}

	if selection.Location == nil {
		s.logger.WithContext(ctx).Warn("No location selected",
			"operationType", query.OperationType(),
			"sku", query.Item().String(),
			"directivesTried", selection.Attempted,
		)
		span.SetAttributes(attribute.Bool("location.found", false))
		return ToSelectionDTO(selection), nil
	}

	span.SetAttributes(
		attribute.Bool("location.found", true),
		attribute.String("location.id", selection.Location.String()),
		attribute.String("directive.strategy", strategy),
	)
	s.logger.WithContext(ctx).WithDirective(selection.Directive.ID().String(), strategy).Info("Selected location",
		"operationType", query.OperationType(),
		"sku", query.Item().String(),
		"location", selection.Location.String(),
	)

	s.publish(ctx, &domain.LocationSelectedEvent{
		DirectiveID:   selection.Directive.ID().String(),
		Strategy:      strategy,
		OperationType: string(query.OperationType()),
		SKU:           query.Item().String(),
		Quantity:      query.Quantity().Value(),
		Location:      selection.Location.String(),
		SelectedAt:    s.clock.Now(),
	})

	return ToSelectionDTO(selection), nil
}

// EvaluateLocation reports how every applicable directive judges one location
func (s *LocationDirectiveService) EvaluateLocation(ctx context.Context, cmd EvaluateLocationCommand) (*EvaluationDTO, error) {
	query, err := cmd.Query.toQuery()
	if err != nil {
		return nil, err
	}
	location, err := shared.ParseBinLocation(cmd.Location)
	if err != nil {
		return nil, errors.ErrValidation("invalid location").Wrap(err)
	}

	ctx, span := s.startSpan(ctx, "EvaluateLocation", query)
	defer span.End()

	directives, overlay, err := s.loadForQuery(ctx, query, func([]*domain.LocationDirective) []shared.BinLocation {
		return []shared.BinLocation{location}
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	start := time.Now()
	result := s.evaluator.EvaluateLocation(query, location, directives, overlay)
	s.observeEngine("evaluate", time.Since(start))

	s.logger.WithContext(ctx).Debug("Evaluated location",
		"location", location.String(),
		"suitable", result.Suitable,
		"score", result.Score,
		"applicable", result.ApplicableDirectiveCount,
	)
	return ToEvaluationDTO(result), nil
}

// FindBestLocations ranks candidate locations by aggregate score
func (s *LocationDirectiveService) FindBestLocations(ctx context.Context, cmd FindBestLocationsCommand) ([]ScoredLocationDTO, error) {
	if cmd.MaxResults < 0 {
		return nil, errors.ErrValidation("maxResults cannot be negative")
	}
	query, err := cmd.Query.toQuery()
	if err != nil {
		return nil, err
	}

	ctx, span := s.startSpan(ctx, "FindBestLocations", query)
	defer span.End()

	universe := domain.CandidateUniverse(query)
	directives, overlay, err := s.loadForQuery(ctx, query, func([]*domain.LocationDirective) []shared.BinLocation {
		return universe
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	start := time.Now()
	scored := s.evaluator.FindBestLocationsScored(query, cmd.MaxResults, directives, overlay)
	s.observeEngine("rank", time.Since(start))
	if s.metrics != nil {
		s.metrics.ObserveCandidates(string(query.OperationType()), len(universe))
	}

	span.SetAttributes(attribute.Int("locations.ranked", len(scored)))
	return ToScoredLocationDTOs(scored), nil
}

// CanSatisfyQuery reports whether any active directive applies to the query
func (s *LocationDirectiveService) CanSatisfyQuery(ctx context.Context, cmd LocationQueryCommand) (bool, error) {
	query, err := cmd.toQuery()
	if err != nil {
		return false, err
	}
	directives, err := s.activeDirectives(ctx, query.OperationType())
	if err != nil {
		return false, err
	}
	return s.evaluator.CanSatisfyQuery(query, directives), nil
}

// GetApplicableDirectives returns the active directives for an operation in selection order
func (s *LocationDirectiveService) GetApplicableDirectives(ctx context.Context, operationType string) ([]LocationDirectiveDTO, error) {
	op, err := shared.ParseOperationType(operationType)
	if err != nil {
		return nil, errors.ErrValidation("invalid operation type").Wrap(err)
	}
	directives, err := s.activeDirectives(ctx, op)
	if err != nil {
		return nil, err
	}
	return ToLocationDirectiveDTOs(s.evaluator.ApplicableDirectives(op, directives)), nil
}

// ValidateDirective reports configuration issues of a stored directive
func (s *LocationDirectiveService) ValidateDirective(ctx context.Context, directiveID string) (*ValidationDTO, error) {
	d, err := s.findDirective(ctx, directiveID)
	if err != nil {
		return nil, err
	}
	result := domain.ValidateDirective(d)
	return &ValidationDTO{DirectiveID: d.ID().String(), Valid: result.Valid, Issues: result.Issues}, nil
}

// CreateDirective creates and stores a new directive
func (s *LocationDirectiveService) CreateDirective(ctx context.Context, cmd CreateDirectiveCommand) (*LocationDirectiveDTO, error) {
	op, err := shared.ParseOperationType(cmd.OperationType)
	if err != nil {
		return nil, errors.ErrValidation("invalid operation type").Wrap(err)
	}
	strategy, err := domain.ParseLocationStrategy(cmd.Strategy)
	if err != nil {
		return nil, errors.ErrValidation("invalid strategy").Wrap(err)
	}

	constraints := make([]domain.LocationConstraint, 0, len(cmd.Constraints))
	for _, cc := range cmd.Constraints {
		c, err := cc.toConstraint()
		if err != nil {
			return nil, err
		}
		constraints = append(constraints, c)
	}

	d, err := domain.NewLocationDirective(cmd.Name, cmd.Description, op, strategy, cmd.Priority,
		domain.WithClock(s.clock),
		domain.WithCreatedBy(cmd.CreatedBy),
		domain.WithConstraints(constraints...),
	)
	if err != nil {
		return nil, errors.MapDomainError(err, DomainErrorMappings...)
	}

	if err := s.save(ctx, d); err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithDirective(d.ID().String(), string(d.Strategy())).Info("Created location directive",
		"name", d.Name(),
		"operationType", d.OperationType(),
		"priority", d.Priority(),
		"constraints", len(constraints),
	)
	s.refreshActiveGauge(ctx, op)

	return ToLocationDirectiveDTO(d), nil
}

// CreateDefaultDirective creates and stores a directive with the default constraints for an operation
func (s *LocationDirectiveService) CreateDefaultDirective(ctx context.Context, cmd CreateDefaultDirectiveCommand) (*LocationDirectiveDTO, error) {
	op, err := shared.ParseOperationType(cmd.OperationType)
	if err != nil {
		return nil, errors.ErrValidation("invalid operation type").Wrap(err)
	}
	strategy, err := domain.ParseLocationStrategy(cmd.Strategy)
	if err != nil {
		return nil, errors.ErrValidation("invalid strategy").Wrap(err)
	}

	d, err := domain.CreateDefaultDirective(op, strategy, domain.WithClock(s.clock))
	if err != nil {
		return nil, errors.MapDomainError(err, DomainErrorMappings...)
	}
	if err := s.save(ctx, d); err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithDirective(d.ID().String(), string(strategy)).Info("Created default location directive",
		"operationType", op,
	)
	s.refreshActiveGauge(ctx, op)

	return ToLocationDirectiveDTO(d), nil
}

// GetDirective returns one directive
func (s *LocationDirectiveService) GetDirective(ctx context.Context, directiveID string) (*LocationDirectiveDTO, error) {
	d, err := s.findDirective(ctx, directiveID)
	if err != nil {
		return nil, err
	}
	return ToLocationDirectiveDTO(d), nil
}

// ListDirectives returns the directives matching q
func (s *LocationDirectiveService) ListDirectives(ctx context.Context, q ListDirectivesQuery) ([]LocationDirectiveDTO, error) {
	filter := domain.DirectiveFilter{
		Active:       q.Active,
		NameContains: q.NameContains,
		CreatedBy:    q.CreatedBy,
	}
	if q.OperationType != "" {
		op, err := shared.ParseOperationType(q.OperationType)
		if err != nil {
			return nil, errors.ErrValidation("invalid operation type").Wrap(err)
		}
		filter.OperationType = op
	}
	if q.Strategy != "" {
		strategy, err := domain.ParseLocationStrategy(q.Strategy)
		if err != nil {
			return nil, errors.ErrValidation("invalid strategy").Wrap(err)
		}
		filter.Strategy = strategy
	}
	if q.MinPriority > 0 && q.MaxPriority > 0 && q.MinPriority > q.MaxPriority {
		return nil, errors.ErrValidation("minPriority cannot exceed maxPriority")
	}

	directives, err := s.directiveRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, errors.ErrInternal("failed to list directives").Wrap(err)
	}

	if q.MinPriority > 0 || q.MaxPriority > 0 {
		filtered := directives[:0]
		for _, d := range directives {
			if q.MinPriority > 0 && d.Priority() < q.MinPriority {
				continue
			}
			if q.MaxPriority > 0 && d.Priority() > q.MaxPriority {
				continue
			}
			filtered = append(filtered, d)
		}
		directives = filtered
	}
	return ToLocationDirectiveDTOs(directives), nil
}

// GetDirectiveStats counts directives per operation type and strategy
func (s *LocationDirectiveService) GetDirectiveStats(ctx context.Context) (*DirectiveStatsDTO, error) {
	active, err := s.directiveRepo.CountActive(ctx)
	if err != nil {
		return nil, errors.ErrInternal("failed to count directives").Wrap(err)
	}

	stats := &DirectiveStatsDTO{
		Active:                active,
		ByOperationType:       make(map[string]int64),
		ActiveByOperationType: make(map[string]int64),
		ByStrategy:            make(map[string]int64),
	}
	for _, op := range shared.AllOperationTypes() {
		total, err := s.directiveRepo.CountByOperationType(ctx, op)
		if err != nil {
			return nil, errors.ErrInternal("failed to count directives").Wrap(err)
		}
		activeForOp, err := s.directiveRepo.CountActiveByOperationType(ctx, op)
		if err != nil {
			return nil, errors.ErrInternal("failed to count directives").Wrap(err)
		}
		stats.ByOperationType[string(op)] = total
		stats.ActiveByOperationType[string(op)] = activeForOp
		if s.metrics != nil {
			s.metrics.SetActiveDirectives(string(op), activeForOp)
		}
	}
	for _, strategy := range domain.AllStrategies() {
		n, err := s.directiveRepo.CountByStrategy(ctx, strategy)
		if err != nil {
			return nil, errors.ErrInternal("failed to count directives").Wrap(err)
		}
		stats.ByStrategy[string(strategy)] = n
	}
	return stats, nil
}

// AddConstraint appends a constraint to a directive
func (s *LocationDirectiveService) AddConstraint(ctx context.Context, cmd ConstraintChangeCommand) (*LocationDirectiveDTO, error) {
	c, err := cmd.Constraint.toConstraint()
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, cmd.DirectiveID, "add_constraint", func(d *domain.LocationDirective) error {
		d.AddConstraint(c)
		return nil
	})
}

// RemoveConstraint removes the first constraint equal to the given one
func (s *LocationDirectiveService) RemoveConstraint(ctx context.Context, cmd ConstraintChangeCommand) (*LocationDirectiveDTO, error) {
	c, err := cmd.Constraint.toConstraint()
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, cmd.DirectiveID, "remove_constraint", func(d *domain.LocationDirective) error {
		if !d.RemoveConstraint(c) {
			return errors.ErrNotFound("constraint").WithDetail("constraint", c.String())
		}
		return nil
	})
}

// UpdateStrategy changes a directive's strategy
func (s *LocationDirectiveService) UpdateStrategy(ctx context.Context, cmd UpdateStrategyCommand) (*LocationDirectiveDTO, error) {
	strategy, err := domain.ParseLocationStrategy(cmd.Strategy)
	if err != nil {
		return nil, errors.ErrValidation("invalid strategy").Wrap(err)
	}
	return s.mutate(ctx, cmd.DirectiveID, "update_strategy", func(d *domain.LocationDirective) error {
		return d.UpdateStrategy(strategy)
	})
}

// UpdatePriority changes a directive's priority
func (s *LocationDirectiveService) UpdatePriority(ctx context.Context, cmd UpdatePriorityCommand) (*LocationDirectiveDTO, error) {
	return s.mutate(ctx, cmd.DirectiveID, "update_priority", func(d *domain.LocationDirective) error {
		return d.UpdatePriority(cmd.Priority)
	})
}

// UpdateName renames a directive
func (s *LocationDirectiveService) UpdateName(ctx context.Context, cmd UpdateNameCommand) (*LocationDirectiveDTO, error) {
	return s.mutate(ctx, cmd.DirectiveID, "update_name", func(d *domain.LocationDirective) error {
		return d.UpdateName(cmd.Name)
	})
}

// UpdateDescription changes a directive's description
func (s *LocationDirectiveService) UpdateDescription(ctx context.Context, cmd UpdateDescriptionCommand) (*LocationDirectiveDTO, error) {
	return s.mutate(ctx, cmd.DirectiveID, "update_description", func(d *domain.LocationDirective) error {
		d.UpdateDescription(cmd.Description)
		return nil
	})
}

// ActivateDirective makes a directive eligible for selection
func (s *LocationDirectiveService) ActivateDirective(ctx context.Context, directiveID string) (*LocationDirectiveDTO, error) {
	dto, err := s.mutate(ctx, directiveID, "activate", func(d *domain.LocationDirective) error {
		d.Activate()
		return nil
	})
	if err == nil {
		s.refreshActiveGauge(ctx, shared.OperationType(dto.OperationType))
	}
	return dto, err
}

// DeactivateDirective removes a directive from selection without deleting it
func (s *LocationDirectiveService) DeactivateDirective(ctx context.Context, directiveID string) (*LocationDirectiveDTO, error) {
	dto, err := s.mutate(ctx, directiveID, "deactivate", func(d *domain.LocationDirective) error {
		d.Deactivate()
		return nil
	})
	if err == nil {
		s.refreshActiveGauge(ctx, shared.OperationType(dto.OperationType))
	}
	return dto, err
}

// GetLocationAttributes returns the stored attributes of one location
func (s *LocationDirectiveService) GetLocationAttributes(ctx context.Context, location string) (*LocationAttributesDTO, error) {
	loc, err := shared.ParseBinLocation(location)
	if err != nil {
		return nil, errors.ErrValidation("invalid location").Wrap(err)
	}
	if s.attributeRepo == nil {
		return nil, errors.ErrServiceUnavailable("location attribute store")
	}
	overlay, err := s.attributeRepo.FindByLocations(ctx, []shared.BinLocation{loc})
	if err != nil {
		return nil, errors.ErrInternal("failed to load location attributes").Wrap(err)
	}
	attrs, ok := overlay[loc]
	if !ok {
		return nil, errors.ErrNotFoundWithID("location attributes", loc.String())
	}
	return &LocationAttributesDTO{Location: loc.String(), Attributes: attrs.ToMap()}, nil
}

// UpdateLocationAttributes replaces the stored attributes of one location
func (s *LocationDirectiveService) UpdateLocationAttributes(ctx context.Context, cmd UpdateLocationAttributesCommand) (*LocationAttributesDTO, error) {
	loc, err := shared.ParseBinLocation(cmd.Location)
	if err != nil {
		return nil, errors.ErrValidation("invalid location").Wrap(err)
	}
	if s.attributeRepo == nil {
		return nil, errors.ErrServiceUnavailable("location attribute store")
	}

	attrs := domain.AttributesOf(cmd.Attributes)
	if attrs == nil {
		attrs = domain.Attributes{}
	}
	if err := s.attributeRepo.Save(ctx, loc, attrs); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to save location attributes", "location", loc.String())
		return nil, errors.ErrInternal("failed to save location attributes").Wrap(err)
	}

	s.logger.WithContext(ctx).Info("Updated location attributes", "location", loc.String(), "attributes", len(attrs))
	return &LocationAttributesDTO{Location: loc.String(), Attributes: attrs.ToMap()}, nil
}

func (s *LocationDirectiveService) mutate(ctx context.Context, directiveID, action string, fn func(*domain.LocationDirective) error) (*LocationDirectiveDTO, error) {
	d, err := s.findDirective(ctx, directiveID)
	if err != nil {
		return nil, err
	}
	if err := fn(d); err != nil {
		return nil, errors.MapDomainError(err, DomainErrorMappings...)
	}
	if err := s.save(ctx, d); err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithDirective(d.ID().String(), string(d.Strategy())).Info("Updated location directive",
		"action", action,
		"version", d.Version(),
	)
	return ToLocationDirectiveDTO(d), nil
}

func (s *LocationDirectiveService) findDirective(ctx context.Context, directiveID string) (*domain.LocationDirective, error) {
	id, err := domain.ParseDirectiveID(directiveID)
	if err != nil {
		return nil, errors.ErrValidation("invalid directive id").Wrap(err)
	}
	d, err := s.directiveRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.ErrInternal("failed to find directive").Wrap(err)
	}
	if d == nil {
		return nil, errors.ErrNotFoundWithID("location directive", id.String())
	}
	return d, nil
}

// save persists d and publishes the events it recorded
func (s *LocationDirectiveService) save(ctx context.Context, d *domain.LocationDirective) error {
	_, err := tracing.Traced(ctx, s.tracer, "LocationDirectiveRepository.Save", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.directiveRepo.Save(ctx, d)
	}, attribute.String("directive_id", d.ID().String()))
	if err != nil {
		if stderrors.Is(err, domain.ErrVersionConflict) {
			return errors.ErrConflict("directive was modified concurrently, reload and retry").Wrap(err)
		}
		s.logger.WithContext(ctx).WithError(err).Error("Failed to save location directive", "directiveId", d.ID().String())
		return errors.ErrInternal("failed to save directive").Wrap(err)
	}
	for _, event := range d.PullEvents() {
		s.publish(ctx, event)
	}
	return nil
}

// publish sends an event; failures never fail the command
func (s *LocationDirectiveService) publish(ctx context.Context, event domain.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Failed to publish event", "eventType", event.EventType())
	}
}

func (s *LocationDirectiveService) activeDirectives(ctx context.Context, op shared.OperationType) ([]*domain.LocationDirective, error) {
	directives, err := s.directiveRepo.FindByOperationTypeAndActive(ctx, op, true)
	if err != nil {
		return nil, errors.ErrInternal("failed to load directives").Wrap(err)
	}
	return directives, nil
}

// loadForQuery fetches the active directives and the attribute overlay for the
// locations universe derives from them
func (s *LocationDirectiveService) loadForQuery(ctx context.Context, query domain.LocationQuery, universe func([]*domain.LocationDirective) []shared.BinLocation) ([]*domain.LocationDirective, domain.StaticOverlay, error) {
	directives, err := s.activeDirectives(ctx, query.OperationType())
	if err != nil {
		return nil, nil, err
	}
	if s.attributeRepo == nil || len(directives) == 0 {
		return directives, domain.StaticOverlay{}, nil
	}
	locations := universe(directives)
	overlay, err := tracing.Traced(ctx, s.tracer, "LocationAttributeRepository.FindByLocations", func(ctx context.Context) (domain.StaticOverlay, error) {
		return s.attributeRepo.FindByLocations(ctx, locations)
	}, attribute.Int("locations", len(locations)))
	if err != nil {
		return nil, nil, errors.ErrInternal("failed to load location attributes").Wrap(err)
	}
	return directives, overlay, nil
}

func (s *LocationDirectiveService) reportFaults(ctx context.Context, faults []domain.StrategyFault) {
	for _, f := range faults {
		s.logger.WithContext(ctx).WithDirective(f.DirectiveID.String(), string(f.Strategy)).WithError(f.Err).
			Warn("Location strategy failed, trying next directive")
		if s.metrics != nil {
			s.metrics.RecordStrategyFault(string(f.Strategy))
		}
	}
}

func (s *LocationDirectiveService) refreshActiveGauge(ctx context.Context, op shared.OperationType) {
	if s.metrics == nil {
		return
	}
	n, err := s.directiveRepo.CountActiveByOperationType(ctx, op)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Debug("Failed to count active directives", "operationType", op)
		return
	}
	s.metrics.SetActiveDirectives(string(op), n)
}

func (s *LocationDirectiveService) observeEngine(operation string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.ObserveEngineCall(operation, d)
	}
}

func (s *LocationDirectiveService) startSpan(ctx context.Context, name string, query domain.LocationQuery) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, fmt.Sprintf("LocationDirectiveService.%s", name),
		trace.WithAttributes(
			attribute.String("operation_type", string(query.OperationType())),
			attribute.String("sku", query.Item().String()),
			attribute.Int("quantity", query.Quantity().Value()),
		),
	)
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
