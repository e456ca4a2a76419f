package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/models"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.AwardRepository = (*AwardRepository)(nil)

// AwardRepository handles MongoDB operations for awards
type AwardRepository struct {
	collection *mongo.Collection
}

// NewAwardRepository creates a new AwardRepository
func NewAwardRepository(db *mongo.Database) *AwardRepository {
	return &AwardRepository{
		collection: db.Collection(AwardsCollection),
	}
}

// Create inserts a new award
func (r *AwardRepository) Create(ctx context.Context, award *models.Award) error {
	if award.ID.IsZero() {
		award.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if award.CreatedAt.IsZero() {
		award.CreatedAt = now
	}
	award.UpdatedAt = award.CreatedAt

	if _, err := r.collection.InsertOne(ctx, award); err != nil {
		if duplicateKeyField(err) == "coupon" {
			return repositories.ErrDuplicateAward
		}
		return fmt.Errorf("failed to insert award: %w", err)
	}
	return nil
}

// FindByID finds an award by ID
func (r *AwardRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Award, error) {
	return findOneByID[models.Award](ctx, r.collection, id)
}

// FindByCouponID finds the award recorded for a coupon
func (r *AwardRepository) FindByCouponID(ctx context.Context, couponID primitive.ObjectID) (*models.Award, error) {
	var award models.Award
	err := r.collection.FindOne(ctx, bson.M{"coupon": couponID}).Decode(&award)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &award, nil
}

// Find lists awards, most recently announced first
func (r *AwardRepository) Find(ctx context.Context, filter models.AwardFilter, page, limit int) ([]*models.Award, error) {
	opts := options.Find().SetSort(bson.D{{Key: "announcedAt", Value: -1}})
	if page > 0 && limit > 0 {
		opts.SetSkip(int64((page - 1) * limit))
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, awardFilterDoc(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to execute find query: %w", err)
	}
	defer cursor.Close(ctx)

	awards := []*models.Award{}
	if err := cursor.All(ctx, &awards); err != nil {
		return nil, fmt.Errorf("failed to decode awards: %w", err)
	}
	return awards, nil
}

// Count counts awards matching the filter
func (r *AwardRepository) Count(ctx context.Context, filter models.AwardFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, awardFilterDoc(filter))
}

// MarkEmailSent stamps the winner e-mail bookkeeping
func (r *AwardRepository) MarkEmailSent(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return markEmailSent(ctx, r.collection, id, at)
}

// Delete deletes an award by ID
func (r *AwardRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, id)
}

func awardFilterDoc(f models.AwardFilter) bson.M {
	filter := bson.M{}
	if f.FundraiserID != nil {
		filter["fundraiser"] = *f.FundraiserID
	}
	return filter
}
