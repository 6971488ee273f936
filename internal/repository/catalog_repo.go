package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"plantmatch/internal/model"
)

// CatalogRepo handles MongoDB operations for the plant catalog
type CatalogRepo interface {
	GetAll(ctx context.Context) ([]model.Plant, error)
	GetByName(ctx context.Context, name string) (*model.Plant, error)
	ReplaceAll(ctx context.Context, plants []model.Plant) error
}

type catalogRepo struct {
	collection *mongo.Collection
}

// NewCatalogRepo creates a new catalog repository
func NewCatalogRepo(db *mongo.Database) CatalogRepo {
	return &catalogRepo{
		collection: db.Collection("plants"),
	}
}

func (r *catalogRepo) GetAll(ctx context.Context) ([]model.Plant, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var plants []model.Plant
	if err := cursor.All(ctx, &plants); err != nil {
		return nil, err
	}
	return plants, nil
}

func (r *catalogRepo) GetByName(ctx context.Context, name string) (*model.Plant, error) {
	var plant model.Plant
	err := r.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&plant)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plant, nil
}

// ReplaceAll swaps the whole catalog. Used by the seeder.
func (r *catalogRepo) ReplaceAll(ctx context.Context, plants []model.Plant) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	docs := make([]interface{}, len(plants))
	for i, p := range plants {
		docs[i] = p
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}
