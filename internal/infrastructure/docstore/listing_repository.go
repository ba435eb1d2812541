package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/estate/listings/internal/domain/listing"
	"github.com/estate/listings/internal/domain/shared"
)

// ListingRepository implements listing.Repository on a MongoDB collection
type ListingRepository struct {
	coll *mongo.Collection
}

// NewListingRepository creates a repository over coll
func NewListingRepository(coll *mongo.Collection) *ListingRepository {
	return &ListingRepository{coll: coll}
}

// FindAll returns every document of the collection in natural order
func (r *ListingRepository) FindAll(ctx context.Context) ([]listing.Listing, error) {
	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find cards: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]listing.Listing, 0)
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode card: %w", err)
		}
		out = append(out, decodeListing(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return out, nil
}

// FindByID loads one document by its ObjectID hex
func (r *ListingRepository) FindByID(ctx context.Context, id string) (*listing.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, shared.ErrNotFound
	}

	var doc bson.M
	err = r.coll.FindOne(ctx, bson.D{{Key: fieldID, Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find card %s: %w", id, err)
	}

	l := decodeListing(doc)
	return &l, nil
}

// Create inserts l under a fresh ObjectID and sets l.ID to its hex form
func (r *ListingRepository) Create(ctx context.Context, l *listing.Listing) error {
	oid := primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, encodeListing(oid, l)); err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	l.ID = oid.Hex()
	return nil
}

// UpdateComment sets the comment field of one document
func (r *ListingRepository) UpdateComment(ctx context.Context, id, comment string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return shared.ErrNotFound
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.D{
		{Key: "$set", Value: bson.D{{Key: fieldComment, Value: comment}}},
	})
	if err != nil {
		return fmt.Errorf("update card %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes one document
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return shared.ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: fieldID, Value: oid}})
	if err != nil {
		return fmt.Errorf("delete card %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ping checks the primary is reachable
func (r *ListingRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}

var _ listing.Repository = (*ListingRepository)(nil)
