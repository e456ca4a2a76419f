package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection names
const (
	CouponsCollection     = "coupons"
	AwardsCollection      = "awards"
	FundraisersCollection = "fundraisers"
	UsersCollection       = "users"
)

// duplicateKeyField returns the indexed field whose unique index rejected a
// write, or "" when err is not a duplicate key error. It reads the dup key
// from the server message so indexes created outside EnsureIndexes (such as
// "code_1") resolve the same way.
func duplicateKeyField(err error) string {
	if !mongo.IsDuplicateKeyError(err) {
		return ""
	}
	msg := err.Error()
	if i := strings.Index(msg, "dup key: {"); i >= 0 {
		rest := strings.TrimSpace(msg[i+len("dup key: {"):])
		if j := strings.Index(rest, ":"); j > 0 {
			if field := strings.Trim(strings.TrimSpace(rest[:j]), `"`); field != "" {
				return field
			}
		}
	}
	// servers before 4.2 leave the field names out of the dup key
	for _, field := range uniqueFields {
		if strings.Contains(msg, "index: "+field+"_") {
			return field
		}
	}
	return "unknown"
}

func markEmailSent(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, at time.Time) error {
	update := bson.M{"$set": bson.M{"emailSent": true, "emailSentAt": at, "updatedAt": at}}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to mark email sent: %w", err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func findOneByID[T any](ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) (*T, error) {
	var doc T
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}
