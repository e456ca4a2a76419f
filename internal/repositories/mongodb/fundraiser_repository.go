package mongodb

import (
	"context"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FundraiserRepository reads the fundraisers collection
type FundraiserRepository struct {
	collection *mongo.Collection
}

// NewFundraiserRepository creates a new FundraiserRepository
func NewFundraiserRepository(db *mongo.Database) *FundraiserRepository {
	return &FundraiserRepository{collection: db.Collection(FundraisersCollection)}
}

// FindByID finds a fundraiser by ID
func (r *FundraiserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Fundraiser, error) {
	return findOneByID[models.Fundraiser](ctx, r.collection, id)
}
