package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/location-directive-service/internal/domain"
	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
	sharedmongo "github.com/wms-platform/location-directive-service/shared/pkg/mongodb"
)

// AttributeCollection is the collection location attributes are stored in
const AttributeCollection = "location_attributes"

type attributeDocument struct {
	LocationID string         `bson:"locationId"`
	Aisle      string         `bson:"aisle"`
	Rack       string         `bson:"rack"`
	Level      string         `bson:"level"`
	Attributes map[string]any `bson:"attributes"`
	UpdatedAt  time.Time      `bson:"updatedAt"`
}

// LocationAttributeRepository is the MongoDB implementation of domain.LocationAttributeRepository
type LocationAttributeRepository struct {
	collection *sharedmongo.Collection
	now        func() time.Time
}

// NewLocationAttributeRepository creates the repository and its indexes
func NewLocationAttributeRepository(ctx context.Context, db *mongo.Database, opts ...sharedmongo.CollectionOption) (*LocationAttributeRepository, error) {
	repo := &LocationAttributeRepository{
		collection: sharedmongo.NewCollection(db, AttributeCollection, opts...),
		now:        func() time.Time { return time.Now().UTC() },
	}
	err := repo.collection.EnsureIndexes(ctx,
		mongo.IndexModel{Keys: bson.D{{Key: "locationId", Value: 1}}, Options: options.Index().SetUnique(true)},
		mongo.IndexModel{Keys: bson.D{{Key: "aisle", Value: 1}, {Key: "rack", Value: 1}, {Key: "level", Value: 1}}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create attribute indexes: %w", err)
	}
	return repo, nil
}

// FindByLocations returns the stored attributes of the requested locations; unknown ones are omitted
func (r *LocationAttributeRepository) FindByLocations(ctx context.Context, locations []shared.BinLocation) (domain.StaticOverlay, error) {
	overlay := make(domain.StaticOverlay, len(locations))
	if len(locations) == 0 {
		return overlay, nil
	}

	ids := make([]string, 0, len(locations))
	for _, loc := range locations {
		ids = append(ids, loc.String())
	}

	var docs []attributeDocument
	if err := r.collection.Find(ctx, bson.M{"locationId": bson.M{"$in": ids}}, &docs); err != nil {
		return nil, err
	}
	for _, doc := range docs {
		loc, err := shared.NewBinLocation(doc.Aisle, doc.Rack, doc.Level)
		if err != nil {
			return nil, fmt.Errorf("stored location %s: %w", doc.LocationID, err)
		}
		overlay[loc] = domain.AttributesOf(doc.Attributes)
	}
	return overlay, nil
}

// Save replaces the attributes of location, creating the document if needed
func (r *LocationAttributeRepository) Save(ctx context.Context, location shared.BinLocation, attributes domain.Attributes) error {
	doc := attributeDocument{
		LocationID: location.String(),
		Aisle:      location.Aisle(),
		Rack:       location.Rack(),
		Level:      location.Level(),
		Attributes: attributes.ToMap(),
		UpdatedAt:  r.now(),
	}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"locationId": doc.LocationID}, doc, options.Replace().SetUpsert(true))
	return err
}
