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

// Compile-time check to ensure CouponRepository implements the interface
var _ repositories.CouponRepository = (*CouponRepository)(nil)

// CouponRepository handles MongoDB operations for coupons
type CouponRepository struct {
	collection *mongo.Collection
}

// NewCouponRepository creates a new CouponRepository
func NewCouponRepository(db *mongo.Database) *CouponRepository {
	return &CouponRepository{
		collection: db.Collection(CouponsCollection),
	}
}

// Create inserts a new coupon
func (r *CouponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	if coupon.ID.IsZero() {
		coupon.ID = primitive.NewObjectID()
	}
	if coupon.CreatedAt.IsZero() {
		coupon.CreatedAt = time.Now()
	}
	coupon.UpdatedAt = coupon.CreatedAt
	_, err := r.collection.InsertOne(ctx, coupon)
	if err != nil {
		switch duplicateKeyField(err) {
		case "code":
			return repositories.ErrDuplicateCode
		case "donation":
			return repositories.ErrDuplicateDonation
		}
		return fmt.Errorf("failed to insert coupon: %w", err)
	}
	return nil
}

// FindByID finds a coupon by ID
func (r *CouponRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByCode finds a coupon by its code
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return r.findOne(ctx, bson.M{"code": code})
}

// FindByDonationID finds the coupon issued for a donation
func (r *CouponRepository) FindByDonationID(ctx context.Context, donationID primitive.ObjectID) (*models.Coupon, error) {
	return r.findOne(ctx, bson.M{"donation": donationID})
}

func (r *CouponRepository) findOne(ctx context.Context, filter bson.M) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.collection.FindOne(ctx, filter).Decode(&coupon)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &coupon, nil
}

// ExistsByCode reports whether a coupon with the code exists
func (r *CouponRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"code": code}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Find lists coupons matching the filter, newest first
func (r *CouponRepository) Find(ctx context.Context, filter models.CouponFilter, page, limit int) ([]*models.Coupon, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if page > 0 && limit > 0 {
		opts.SetSkip(int64((page - 1) * limit))
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, couponFilterDoc(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to execute find query: %w", err)
	}
	defer cursor.Close(ctx)

	var coupons []*models.Coupon
	if err := cursor.All(ctx, &coupons); err != nil {
		return nil, fmt.Errorf("failed to decode coupons: %w", err)
	}
	if coupons == nil {
		coupons = []*models.Coupon{}
	}
	return coupons, nil
}

// FindAt returns the coupon at offset skip, in creation order
func (r *CouponRepository) FindAt(ctx context.Context, filter models.CouponFilter, skip int64) (*models.Coupon, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(skip)

	var coupon models.Coupon
	err := r.collection.FindOne(ctx, couponFilterDoc(filter), opts).Decode(&coupon)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &coupon, nil
}

// Count counts coupons matching the filter
func (r *CouponRepository) Count(ctx context.Context, filter models.CouponFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, couponFilterDoc(filter))
}

// CountByStatus groups coupons by status, optionally for one fundraiser
func (r *CouponRepository) CountByStatus(ctx context.Context, fundraiserID *primitive.ObjectID) (*models.CouponStats, error) {
	match := bson.M{}
	if fundraiserID != nil {
		match["fundraiser"] = *fundraiserID
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate coupon stats: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.CouponStatus `bson:"_id"`
		Count  int64               `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode coupon stats: %w", err)
	}

	stats := &models.CouponStats{}
	for _, row := range rows {
		switch row.Status {
		case models.CouponStatusActive:
			stats.Active = row.Count
		case models.CouponStatusUsed:
			stats.Used = row.Count
		case models.CouponStatusExpired:
			stats.Expired = row.Count
		}
		stats.Total += row.Count
	}
	return stats, nil
}

// TransitionStatus is a compare-and-swap on the coupon status
func (r *CouponRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.CouponStatus, at time.Time) (bool, error) {
	set := bson.M{"status": to, "updatedAt": at}
	update := bson.M{"$set": set}
	switch to {
	case models.CouponStatusUsed:
		set["usedAt"] = at
	case models.CouponStatusActive:
		// compensating revert of a used coupon
		update["$unset"] = bson.M{"usedAt": ""}
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "status": from}, update)
	if err != nil {
		return false, fmt.Errorf("failed to update coupon status: %w", err)
	}
	return res.MatchedCount == 1, nil
}

// ExpireBefore bulk-expires active coupons whose expiry has passed
func (r *CouponRepository) ExpireBefore(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"status":    models.CouponStatusActive,
		"expiresAt": bson.M{"$lt": now},
	}
	update := bson.M{"$set": bson.M{"status": models.CouponStatusExpired, "updatedAt": now}}
	res, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to expire coupons: %w", err)
	}
	return res.ModifiedCount, nil
}

// MarkEmailSent stamps the coupon e-mail bookkeeping
func (r *CouponRepository) MarkEmailSent(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return markEmailSent(ctx, r.collection, id, at)
}

// Delete deletes a coupon by ID
func (r *CouponRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, id)
}

// couponFilterDoc translates a CouponFilter into a query document
func couponFilterDoc(f models.CouponFilter) bson.M {
	filter := bson.M{}
	if f.FundraiserID != nil {
		filter["fundraiser"] = *f.FundraiserID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	created := bson.M{}
	if f.CreatedFrom != nil {
		created["$gte"] = *f.CreatedFrom
	}
	if f.CreatedTo != nil {
		created["$lte"] = *f.CreatedTo
	}
	if len(created) > 0 {
		filter["createdAt"] = created
	}

	if f.EligibleAt != nil {
		filter["status"] = models.CouponStatusActive
		filter["expiresAt"] = bson.M{"$gt": *f.EligibleAt}
	}
	return filter
}
