package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	couponCodeIndex     = "code_unique"
	couponDonationIndex = "donation_unique"
	awardCouponIndex    = "coupon_unique"
)

// uniqueFields are the fields behind the unique indexes
var uniqueFields = []string{"code", "donation", "coupon"}

// EnsureIndexes creates the indexes the prize draw relies on. The unique
// indexes back the one-coupon-per-donation and one-award-per-coupon rules.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coupons := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(couponCodeIndex),
		},
		{
			Keys:    bson.D{{Key: "donation", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(couponDonationIndex),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "expiresAt", Value: 1}},
			Options: options.Index().SetName("status_expiresAt"),
		},
		{
			Keys:    bson.D{{Key: "fundraiser", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("fundraiser_status"),
		},
	}
	if _, err := db.Collection(CouponsCollection).Indexes().CreateMany(ctx, coupons); err != nil {
		return fmt.Errorf("failed to create coupon indexes: %w", err)
	}

	awards := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coupon", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(awardCouponIndex),
		},
		{
			Keys:    bson.D{{Key: "fundraiser", Value: 1}, {Key: "announcedAt", Value: -1}},
			Options: options.Index().SetName("fundraiser_announcedAt"),
		},
	}
	if _, err := db.Collection(AwardsCollection).Indexes().CreateMany(ctx, awards); err != nil {
		return fmt.Errorf("failed to create award indexes: %w", err)
	}
	return nil
}
