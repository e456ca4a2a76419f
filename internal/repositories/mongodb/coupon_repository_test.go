package mongodb

import (
	"errors"
	"testing"
	"time"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCouponFilterDoc(t *testing.T) {
	fundraiserID := primitive.NewObjectID()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	t.Run("empty filter matches everything", func(t *testing.T) {
		doc := couponFilterDoc(models.CouponFilter{})
		if len(doc) != 0 {
			t.Fatalf("expected empty filter, got %v", doc)
		}
	})

	t.Run("fundraiser, status and date range", func(t *testing.T) {
		doc := couponFilterDoc(models.CouponFilter{
			FundraiserID: &fundraiserID,
			Status:       models.CouponStatusUsed,
			CreatedFrom:  &from,
			CreatedTo:    &to,
		})
		if doc["fundraiser"] != fundraiserID {
			t.Errorf("expected fundraiser %s, got %v", fundraiserID.Hex(), doc["fundraiser"])
		}
		if doc["status"] != models.CouponStatusUsed {
			t.Errorf("expected status used, got %v", doc["status"])
		}
		created, ok := doc["createdAt"].(bson.M)
		if !ok {
			t.Fatalf("expected createdAt range, got %v", doc["createdAt"])
		}
		if created["$gte"] != from || created["$lte"] != to {
			t.Errorf("unexpected createdAt range %v", created)
		}
	})

	t.Run("eligibility forces active and unexpired", func(t *testing.T) {
		doc := couponFilterDoc(models.CouponFilter{
			Status:     models.CouponStatusExpired,
			EligibleAt: &from,
		})
		if doc["status"] != models.CouponStatusActive {
			t.Errorf("expected status active, got %v", doc["status"])
		}
		expires, ok := doc["expiresAt"].(bson.M)
		if !ok || expires["$gt"] != from {
			t.Errorf("expected expiresAt > %v, got %v", from, doc["expiresAt"])
		}
	})
}

func TestAwardFilterDoc(t *testing.T) {
	if doc := awardFilterDoc(models.AwardFilter{}); len(doc) != 0 {
		t.Fatalf("expected empty filter, got %v", doc)
	}
	id := primitive.NewObjectID()
	if doc := awardFilterDoc(models.AwardFilter{FundraiserID: &id}); doc["fundraiser"] != id {
		t.Fatalf("expected fundraiser filter, got %v", doc)
	}
}

func TestDuplicateKeyField(t *testing.T) {
	dup := func(msg string) error {
		return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: msg}}}
	}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"code index", dup(`E11000 duplicate key error collection: db.coupons index: code_unique dup key: { code: "FU-0A1B2C3D" }`), "code"},
		{"donation index", dup(`E11000 duplicate key error collection: db.coupons index: donation_unique dup key: { donation: ObjectId('65f0c2a1b2c3d4e5f6a7b8c9') }`), "donation"},
		{"award index", dup(`E11000 duplicate key error collection: db.awards index: coupon_unique dup key: { coupon: ObjectId('65f0c2a1b2c3d4e5f6a7b8c9') }`), "coupon"},
		{"default index name", dup(`E11000 duplicate key error collection: db.coupons index: code_1 dup key: { code: "FU-0A1B2C3D" }`), "code"},
		{"custom index name", dup(`E11000 duplicate key error collection: db.coupons index: uniq_donations dup key: { donation: ObjectId('65f0c2a1b2c3d4e5f6a7b8c9') }`), "donation"},
		{"server without field names", dup(`E11000 duplicate key error collection: db.coupons index: donation_1 dup key: { : ObjectId('65f0c2a1b2c3d4e5f6a7b8c9') }`), "donation"},
		{"id index", dup(`E11000 duplicate key error collection: db.coupons index: _id_ dup key: { _id: ObjectId('65f0c2a1b2c3d4e5f6a7b8c9') }`), "_id"},
		{"unparseable", dup("E11000 duplicate key error"), "unknown"},
		{"not a duplicate", errors.New("connection refused"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := duplicateKeyField(tt.err); got != tt.want {
				t.Errorf("duplicateKeyField() = %q, want %q", got, tt.want)
			}
		})
	}
}
