package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrDuplicateCode     = errors.New("coupon code already exists")
	ErrDuplicateDonation = errors.New("coupon already exists for donation")
	ErrDuplicateAward    = errors.New("award already exists for coupon")
	// ErrWriteConflict reports a transaction that kept colliding with a
	// concurrent writer on the same documents.
	ErrWriteConflict = errors.New("write conflict")
)

// transientTransactionLabel marks errors after which the whole transaction
// may be retried. The MongoDB driver puts it on write conflicts.
const transientTransactionLabel = "TransientTransactionError"

type labeledError interface {
	HasErrorLabel(label string) bool
}

// IsWriteConflict reports whether err means another transaction touched
// the same documents first.
func IsWriteConflict(err error) bool {
	if errors.Is(err, ErrWriteConflict) {
		return true
	}
	var labeled labeledError
	return errors.As(err, &labeled) && labeled.HasErrorLabel(transientTransactionLabel)
}

// CouponRepository defines the interface for coupon data operations
type CouponRepository interface {
	// Create inserts a coupon. It returns ErrDuplicateCode or
	// ErrDuplicateDonation when a unique index rejects the insert.
	Create(ctx context.Context, coupon *models.Coupon) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error)
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	FindByDonationID(ctx context.Context, donationID primitive.ObjectID) (*models.Coupon, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Find(ctx context.Context, filter models.CouponFilter, page, limit int) ([]*models.Coupon, error)
	// FindAt returns the coupon at position skip (creation order) among those matching filter.
	FindAt(ctx context.Context, filter models.CouponFilter, skip int64) (*models.Coupon, error)
	Count(ctx context.Context, filter models.CouponFilter) (int64, error)
	CountByStatus(ctx context.Context, fundraiserID *primitive.ObjectID) (*models.CouponStats, error)
	// TransitionStatus moves a coupon from one status to another only if it is
	// currently in the "from" status. It reports whether the update matched.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.CouponStatus, at time.Time) (bool, error)
	// ExpireBefore moves every active coupon with expiresAt < now to expired.
	ExpireBefore(ctx context.Context, now time.Time) (int64, error)
	MarkEmailSent(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// AwardRepository defines the interface for award data operations
type AwardRepository interface {
	// Create inserts an award. It returns ErrDuplicateAward when the coupon
	// already has one.
	Create(ctx context.Context, award *models.Award) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Award, error)
	FindByCouponID(ctx context.Context, couponID primitive.ObjectID) (*models.Award, error)
	Find(ctx context.Context, filter models.AwardFilter, page, limit int) ([]*models.Award, error)
	Count(ctx context.Context, filter models.AwardFilter) (int64, error)
	MarkEmailSent(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// FundraiserRepository reads fundraisers owned by the fundraiser module
type FundraiserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Fundraiser, error)
}

// UserRepository reads users owned by the user module
type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Transactor runs fn atomically. Repository calls made with the context
// passed to fn take part in the transaction; returning an error from fn
// rolls everything back.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
