// Package catalog loads location directives and location attributes from a YAML file.
package catalog

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/wms-platform/location-directive-service/internal/domain"
	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
	"github.com/wms-platform/location-directive-service/shared/pkg/logging"
)

var validate = validator.New()

// File is the catalog document
type File struct {
	Directives []DirectiveEntry `yaml:"directives" validate:"dive"`
	Locations  []LocationEntry  `yaml:"locations" validate:"dive"`
}

// DirectiveEntry describes one directive
type DirectiveEntry struct {
	ID            string            `yaml:"id" validate:"required,uuid"`
	Name          string            `yaml:"name" validate:"required"`
	Description   string            `yaml:"description"`
	OperationType string            `yaml:"operationType" validate:"required"`
	Strategy      string            `yaml:"strategy" validate:"required"`
	Priority      int               `yaml:"priority" validate:"min=1"`
	Active        *bool             `yaml:"active"`
	CreatedBy     string            `yaml:"createdBy"`
	Constraints   []ConstraintEntry `yaml:"constraints" validate:"dive"`
}

// ConstraintEntry describes one constraint of a directive
type ConstraintEntry struct {
	Type       string         `yaml:"type" validate:"required"`
	Operator   string         `yaml:"operator" validate:"required"`
	Value      any            `yaml:"value"`
	Parameters map[string]any `yaml:"parameters"`
}

// LocationEntry seeds the attributes of one location
type LocationEntry struct {
	ID         string         `yaml:"id" validate:"required"`
	Attributes map[string]any `yaml:"attributes"`
}

// Parse decodes and validates a catalog. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := validate.Struct(&f); err != nil {
		return nil, validationErrors(err)
	}
	return &f, nil
}

// LoadFile parses the catalog at path
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer fh.Close()
	return Parse(fh)
}

// BuildDirectives converts every entry. All broken entries are reported together.
func (f *File) BuildDirectives(opts ...domain.DirectiveOption) ([]*domain.LocationDirective, error) {
	var errs error
	out := make([]*domain.LocationDirective, 0, len(f.Directives))
	for i, entry := range f.Directives {
		d, err := entry.build(opts...)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("directives[%d] %q: %w", i, entry.Name, err))
			continue
		}
		out = append(out, d)
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

func (e DirectiveEntry) build(opts ...domain.DirectiveOption) (*domain.LocationDirective, error) {
	id, err := domain.ParseDirectiveID(e.ID)
	if err != nil {
		return nil, err
	}
	op, err := shared.ParseOperationType(e.OperationType)
	if err != nil {
		return nil, err
	}
	strategy, err := domain.ParseLocationStrategy(e.Strategy)
	if err != nil {
		return nil, err
	}

	var errs error
	constraints := make([]domain.LocationConstraint, 0, len(e.Constraints))
	for i, ce := range e.Constraints {
		c, err := domain.NewLocationConstraint(domain.ConstraintType(ce.Type), ce.Operator, domain.ValueOf(ce.Value), domain.AttributesOf(ce.Parameters))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("constraints[%d]: %w", i, err))
			continue
		}
		constraints = append(constraints, c)
	}
	if errs != nil {
		return nil, errs
	}

	createdBy := e.CreatedBy
	if createdBy == "" {
		createdBy = domain.SystemUser
	}
	opts = append([]domain.DirectiveOption{
		domain.WithDirectiveID(id),
		domain.WithCreatedBy(createdBy),
		domain.WithConstraints(constraints...),
	}, opts...)

	d, err := domain.NewLocationDirective(e.Name, e.Description, op, strategy, e.Priority, opts...)
	if err != nil {
		return nil, err
	}
	if e.Active != nil && !*e.Active {
		d.Deactivate()
	}
	return d, nil
}

// Overlay returns the location attributes of the catalog
func (f *File) Overlay() (domain.StaticOverlay, error) {
	var errs error
	overlay := make(domain.StaticOverlay, len(f.Locations))
	for i, entry := range f.Locations {
		loc, err := shared.ParseBinLocation(entry.ID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("locations[%d]: %w", i, err))
			continue
		}
		attrs := domain.AttributesOf(entry.Attributes)
		if attrs == nil {
			attrs = domain.Attributes{}
		}
		overlay[loc] = attrs
	}
	if errs != nil {
		return nil, errs
	}
	return overlay, nil
}

// SeedResult counts what Seed did
type SeedResult struct {
	Created          int
	Skipped          int
	Locations        int
	LocationsSkipped int
}

// Seed stores the catalog's directives whose id does not exist yet, and the attributes of
// catalog locations that have none stored. Attributes changed at runtime are kept.
// attributes may be nil.
func Seed(ctx context.Context, f *File, directives domain.LocationDirectiveRepository, attributes domain.LocationAttributeRepository, logger *logging.Logger) (SeedResult, error) {
	var result SeedResult

	built, err := f.BuildDirectives()
	if err != nil {
		return result, err
	}
	for _, d := range built {
		exists, err := directives.ExistsByID(ctx, d.ID())
		if err != nil {
			return result, fmt.Errorf("failed to check directive %s: %w", d.ID(), err)
		}
		if exists {
			result.Skipped++
			continue
		}
		d.PullEvents()
		if err := directives.Save(ctx, d); err != nil {
			return result, fmt.Errorf("failed to save directive %s: %w", d.ID(), err)
		}
		result.Created++
	}

	if attributes != nil && len(f.Locations) > 0 {
		overlay, err := f.Overlay()
		if err != nil {
			return result, err
		}
		locations := make([]shared.BinLocation, 0, len(overlay))
		for loc := range overlay {
			locations = append(locations, loc)
		}
		stored, err := attributes.FindByLocations(ctx, locations)
		if err != nil {
			return result, fmt.Errorf("failed to load stored attributes: %w", err)
		}
		for loc, attrs := range overlay {
			if _, ok := stored[loc]; ok {
				result.LocationsSkipped++
				continue
			}
			if err := attributes.Save(ctx, loc, attrs); err != nil {
				return result, fmt.Errorf("failed to save attributes of %s: %w", loc, err)
			}
			result.Locations++
		}
	}

	logger.Info("Seeded directive catalog",
		"created", result.Created,
		"skipped", result.Skipped,
		"locations", result.Locations,
		"locationsSkipped", result.LocationsSkipped,
	)
	return result, nil
}

func validationErrors(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var errs error
	for _, fe := range verrs {
		errs = multierr.Append(errs, fmt.Errorf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return errs
}
