package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/location-directive-service/internal/domain"
	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
	"github.com/wms-platform/location-directive-service/shared/pkg/logging"
	sharedmongo "github.com/wms-platform/location-directive-service/shared/pkg/mongodb"
)

// DirectiveCollection is the collection directives are stored in
const DirectiveCollection = "location_directives"

type constraintDocument struct {
	Type       string         `bson:"type"`
	Operator   string         `bson:"operator"`
	Value      any            `bson:"value"`
	Parameters map[string]any `bson:"parameters,omitempty"`
	// Enabled is absent on documents written before constraints could be disabled
	Enabled *bool `bson:"enabled,omitempty"`
}

type directiveDocument struct {
	DirectiveID    string               `bson:"directiveId"`
	Name           string               `bson:"name"`
	Description    string               `bson:"description,omitempty"`
	OperationType  string               `bson:"operationType"`
	Strategy       string               `bson:"strategy"`
	Constraints    []constraintDocument `bson:"constraints"`
	Priority       int                  `bson:"priority"`
	Active         bool                 `bson:"active"`
	CreatedAt      time.Time            `bson:"createdAt"`
	LastModifiedAt time.Time            `bson:"lastModifiedAt"`
	CreatedBy      string               `bson:"createdBy,omitempty"`
	Version        int64                `bson:"version"`
}

// LocationDirectiveRepository is the MongoDB implementation of domain.LocationDirectiveRepository
type LocationDirectiveRepository struct {
	collection *sharedmongo.Collection
}

// NewLocationDirectiveRepository creates the repository and its indexes
func NewLocationDirectiveRepository(ctx context.Context, db *mongo.Database, opts ...sharedmongo.CollectionOption) (*LocationDirectiveRepository, error) {
	repo := &LocationDirectiveRepository{
		collection: sharedmongo.NewCollection(db, DirectiveCollection, opts...),
	}
	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create directive indexes: %w", err)
	}
	return repo, nil
}

func (r *LocationDirectiveRepository) ensureIndexes(ctx context.Context) error {
	return r.collection.EnsureIndexes(ctx,
		mongo.IndexModel{Keys: bson.D{{Key: "directiveId", Value: 1}}, Options: options.Index().SetUnique(true)},
		mongo.IndexModel{Keys: bson.D{{Key: "operationType", Value: 1}, {Key: "active", Value: 1}, {Key: "priority", Value: 1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "strategy", Value: 1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "createdBy", Value: 1}}},
	)
}

// Save inserts a new directive or replaces the stored one if its version still matches
func (r *LocationDirectiveRepository) Save(ctx context.Context, directive *domain.LocationDirective) error {
	snap := directive.Snapshot()
	doc := toDocument(snap)
	doc.Version = snap.Version + 1

	if snap.Version == 0 {
		if err := r.collection.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return fmt.Errorf("%w: directive %s already exists", domain.ErrVersionConflict, snap.ID)
			}
			return err
		}
		directive.MarkSaved(doc.Version)
		return nil
	}

	matched, err := r.collection.ReplaceOne(ctx, bson.M{"directiveId": doc.DirectiveID, "version": snap.Version}, doc)
	if err != nil {
		return err
	}
	if matched == 0 {
		return fmt.Errorf("%w: directive %s at version %d", domain.ErrVersionConflict, snap.ID, snap.Version)
	}
	directive.MarkSaved(doc.Version)
	return nil
}

// FindByID returns nil, nil when the directive does not exist
func (r *LocationDirectiveRepository) FindByID(ctx context.Context, id domain.DirectiveID) (*domain.LocationDirective, error) {
	var doc directiveDocument
	err := r.collection.FindOne(ctx, bson.M{"directiveId": id.String()}, &doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain()
}

func (r *LocationDirectiveRepository) FindByOperationTypeAndActive(ctx context.Context, op shared.OperationType, active bool) ([]*domain.LocationDirective, error) {
	return r.find(ctx, bson.M{"operationType": string(op), "active": active})
}

func (r *LocationDirectiveRepository) FindByOperationType(ctx context.Context, op shared.OperationType) ([]*domain.LocationDirective, error) {
	return r.find(ctx, bson.M{"operationType": string(op)})
}

func (r *LocationDirectiveRepository) FindByStrategy(ctx context.Context, strategy domain.LocationStrategy) ([]*domain.LocationDirective, error) {
	return r.find(ctx, bson.M{"strategy": string(strategy)})
}

func (r *LocationDirectiveRepository) FindActive(ctx context.Context) ([]*domain.LocationDirective, error) {
	return r.find(ctx, bson.M{"active": true})
}

func (r *LocationDirectiveRepository) FindActiveByStrategy(ctx context.Context, strategy domain.LocationStrategy) ([]*domain.LocationDirective, error) {
	return r.find(ctx, bson.M{"active": true, "strategy": string(strategy)})
}

func (r *LocationDirectiveRepository) FindByPriorityRange(ctx context.Context, min, max int) ([]*domain.LocationDirective, error) {
	return r.find(ctx, bson.M{"priority": bson.M{"$gte": min, "$lte": max}})
}

func (r *LocationDirectiveRepository) FindByNameContaining(ctx context.Context, fragment string) ([]*domain.LocationDirective, error) {
	return r.find(ctx, bson.M{"name": nameRegex(fragment)})
}

func (r *LocationDirectiveRepository) FindByCreatedBy(ctx context.Context, user string) ([]*domain.LocationDirective, error) {
	return r.find(ctx, bson.M{"createdBy": user})
}

func (r *LocationDirectiveRepository) FindAll(ctx context.Context, filter domain.DirectiveFilter) ([]*domain.LocationDirective, error) {
	return r.find(ctx, filterDocument(filter))
}

func (r *LocationDirectiveRepository) CountByOperationType(ctx context.Context, op shared.OperationType) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"operationType": string(op)})
}

func (r *LocationDirectiveRepository) CountByStrategy(ctx context.Context, strategy domain.LocationStrategy) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"strategy": string(strategy)})
}

func (r *LocationDirectiveRepository) CountActive(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"active": true})
}

func (r *LocationDirectiveRepository) CountActiveByOperationType(ctx context.Context, op shared.OperationType) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"active": true, "operationType": string(op)})
}

func (r *LocationDirectiveRepository) ExistsByID(ctx context.Context, id domain.DirectiveID) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"directiveId": id.String()})
	return n > 0, err
}

func (r *LocationDirectiveRepository) find(ctx context.Context, filter bson.M) ([]*domain.LocationDirective, error) {
	opts := options.Find().SetSort(append(sharedmongo.SortAscending("priority"), sharedmongo.SortAscending("name")...))

	var docs []directiveDocument
	if err := r.collection.Find(ctx, filter, &docs, opts); err != nil {
		return nil, err
	}

	return decodeDirectives(docs, r.collection.Logger()), nil
}

// decodeDirectives converts docs, skipping the ones that no longer form a valid
// directive so one broken document cannot block selection for its operation type
func decodeDirectives(docs []directiveDocument, logger *logging.Logger) []*domain.LocationDirective {
	out := make([]*domain.LocationDirective, 0, len(docs))
	for _, doc := range docs {
		d, err := doc.toDomain()
		if err != nil {
			logger.WithError(err).Warn("Skipping malformed location directive", "directiveId", doc.DirectiveID)
			continue
		}
		out = append(out, d)
	}
	return out
}

func filterDocument(filter domain.DirectiveFilter) bson.M {
	doc := bson.M{}
	if filter.OperationType != "" {
		doc["operationType"] = string(filter.OperationType)
	}
	if filter.Strategy != "" {
		doc["strategy"] = string(filter.Strategy)
	}
	if filter.Active != nil {
		doc["active"] = *filter.Active
	}
	if filter.NameContains != "" {
		doc["name"] = nameRegex(filter.NameContains)
	}
	if filter.CreatedBy != "" {
		doc["createdBy"] = filter.CreatedBy
	}
	return doc
}

func nameRegex(fragment string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(fragment), Options: "i"}
}

func toConstraintDocument(c domain.LocationConstraint, enabled bool) constraintDocument {
	cd := constraintDocument{
		Type:     string(c.Type()),
		Operator: string(c.Operator()),
		Value:    c.Value().Interface(),
		Enabled:  &enabled,
	}
	if params := c.Parameters(); len(params) > 0 {
		cd.Parameters = params.ToMap()
	}
	return cd
}

func toDocument(s domain.DirectiveSnapshot) directiveDocument {
	constraints := make([]constraintDocument, 0, len(s.Constraints)+len(s.DisabledConstraints))
	for _, c := range s.Constraints {
		constraints = append(constraints, toConstraintDocument(c, true))
	}
	for _, c := range s.DisabledConstraints {
		constraints = append(constraints, toConstraintDocument(c, false))
	}

	return directiveDocument{
		DirectiveID:    s.ID.String(),
		Name:           s.Name,
		Description:    s.Description,
		OperationType:  string(s.OperationType),
		Strategy:       string(s.Strategy),
		Constraints:    constraints,
		Priority:       s.Priority,
		Active:         s.Active,
		CreatedAt:      s.CreatedAt,
		LastModifiedAt: s.LastModifiedAt,
		CreatedBy:      s.CreatedBy,
		Version:        s.Version,
	}
}

func (d directiveDocument) toDomain() (*domain.LocationDirective, error) {
	var constraints, disabled []domain.LocationConstraint
	for _, cd := range d.Constraints {
		c, err := domain.NewLocationConstraint(
			domain.ConstraintType(cd.Type),
			cd.Operator,
			domain.ValueOf(cd.Value),
			domain.AttributesOf(cd.Parameters),
		)
		if err != nil {
			return nil, fmt.Errorf("directive %s: %w", d.DirectiveID, err)
		}
		if cd.Enabled != nil && !*cd.Enabled {
			disabled = append(disabled, c)
			continue
		}
		constraints = append(constraints, c)
	}

	return domain.RehydrateLocationDirective(domain.DirectiveSnapshot{
		ID:                  domain.DirectiveID(d.DirectiveID),
		Name:                d.Name,
		Description:         d.Description,
		OperationType:       shared.OperationType(d.OperationType),
		Strategy:            domain.LocationStrategy(d.Strategy),
		Constraints:         constraints,
		DisabledConstraints: disabled,
		Priority:            d.Priority,
		Active:              d.Active,
		CreatedAt:           d.CreatedAt.UTC(),
		LastModifiedAt:      d.LastModifiedAt.UTC(),
		CreatedBy:           d.CreatedBy,
		Version:             d.Version,
	})
}
