package photos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("photo not found")

type Repository interface {
	Create(ctx context.Context, photo *Photo) error
	GetByID(ctx context.Context, id uuid.UUID) (*Photo, error)
	ListByParcel(ctx context.Context, parcelID uuid.UUID) ([]Photo, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{collection: db.Collection("photos")}
}

func (r *mongoRepository) Create(ctx context.Context, photo *Photo) error {
	photo.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, photo)
	return err
}

func (r *mongoRepository) GetByID(ctx context.Context, id uuid.UUID) (*Photo, error) {
	var photo Photo
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&photo)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

func (r *mongoRepository) ListByParcel(ctx context.Context, parcelID uuid.UUID) ([]Photo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "captured_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"parcel_id": parcelID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var photos []Photo
	if err := cursor.All(ctx, &photos); err != nil {
		return nil, err
	}
	return photos, nil
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
