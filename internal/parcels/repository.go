package parcels

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"ground-truth/land-portal/land-portal-backend/pkg/geo"
)

// ErrNotFound is returned when a parcel id has no record.
var ErrNotFound = errors.New("parcel not found")

type Repository interface {
	Create(ctx context.Context, parcel *Parcel) error
	GetByID(ctx context.Context, id uuid.UUID) (*Parcel, error)
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]Parcel, error)
	Update(ctx context.Context, parcel *Parcel) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateBoundary(ctx context.Context, id uuid.UUID, raw, clean []geo.GeoPoint, geojson string, perimeter, areaHa float64) error
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{collection: db.Collection("parcels")}
}

func (r *mongoRepository) Create(ctx context.Context, parcel *Parcel) error {
	parcel.CreatedAt = time.Now().UTC()
	parcel.UpdatedAt = parcel.CreatedAt
	_, err := r.collection.InsertOne(ctx, parcel)
	return err
}

func (r *mongoRepository) GetByID(ctx context.Context, id uuid.UUID) (*Parcel, error) {
	var parcel Parcel
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&parcel)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &parcel, nil
}

func (r *mongoRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]Parcel, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"listing_id": listingID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []Parcel
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoRepository) Update(ctx context.Context, parcel *Parcel) error {
	parcel.UpdatedAt = time.Now().UTC()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": parcel.ID}, parcel)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository) UpdateBoundary(ctx context.Context, id uuid.UUID, raw, clean []geo.GeoPoint, geojson string, perimeter, areaHa float64) error {
	update := bson.M{"$set": bson.M{
		"raw_path":         raw,
		"clean_path":       clean,
		"boundary_geojson": geojson,
		"perimeter_m":      perimeter,
		"area_ha":          areaHa,
		"updated_at":       time.Now().UTC(),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
