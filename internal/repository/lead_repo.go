package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"plantmatch/internal/model"
)

// LeadRepo handles MongoDB operations for captured leads
type LeadRepo interface {
	Create(ctx context.Context, lead *model.Lead) error
	GetAll(ctx context.Context) ([]*model.Lead, error)
	GetByVisitorID(ctx context.Context, visitorID string) ([]*model.Lead, error)
}

type leadRepo struct {
	collection *mongo.Collection
}

// NewLeadRepo creates a new lead repository
func NewLeadRepo(db *mongo.Database) LeadRepo {
	return &leadRepo{
		collection: db.Collection("leads"),
	}
}

func (r *leadRepo) Create(ctx context.Context, lead *model.Lead) error {
	lead.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, lead)
	return err
}

func (r *leadRepo) GetAll(ctx context.Context) ([]*model.Lead, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var leads []*model.Lead
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

func (r *leadRepo) GetByVisitorID(ctx context.Context, visitorID string) ([]*model.Lead, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"visitorId": visitorID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var leads []*model.Lead
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}
