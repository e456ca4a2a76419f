package services

import (
	"context"
	"crypto/rand"
	"io"
	mrand "math/rand"
	"sync"
	"time"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CouponService issues coupons and manages their lifecycle
type CouponService interface {
	// Issue creates the coupon for a completed donation, or returns the
	// existing one unchanged.
	Issue(ctx context.Context, req models.IssueCouponRequest) (*models.IssueCouponResult, error)

	// SweepExpired moves every active coupon past its expiry to expired and
	// returns how many were moved.
	SweepExpired(ctx context.Context) (int64, error)

	List(ctx context.Context, filter models.CouponFilter, page, limit int) ([]*models.Coupon, int64, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error)
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	Stats(ctx context.Context, fundraiserID *primitive.ObjectID) (*models.CouponStats, error)

	// ResendEmail sends the coupon e-mail again for an active coupon.
	ResendEmail(ctx context.Context, id primitive.ObjectID) error

	// Delete removes a coupon that has no award.
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// SelectionService computes donor pools and draws winners
type SelectionService interface {
	DonorPool(ctx context.Context, fundraiserID primitive.ObjectID) (*models.DonorPool, error)

	// SelectWeightedWinner draws from the donor pool with odds proportional
	// to the donation amount. It does not modify any coupon.
	SelectWeightedWinner(ctx context.Context, fundraiserID primitive.ObjectID) (*models.WeightedSelection, error)

	// SelectRandomWinner draws uniformly among eligible coupons and marks the
	// winner used immediately. It returns nil when nothing is eligible.
	SelectRandomWinner(ctx context.Context, filter models.RandomSelectionFilter) (*models.Coupon, error)
}

// AwardService announces winners and manages award records
type AwardService interface {
	Announce(ctx context.Context, req models.AnnounceRequest) (*models.AwardDetails, error)
	List(ctx context.Context, filter models.AwardFilter, page, limit int) ([]*models.Award, int64, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.AwardDetails, error)
	// Delete removes the award record. The coupon stays used.
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// NotificationService sends the e-mails of the prize draw
type NotificationService interface {
	CouponIssued(ctx context.Context, coupon *models.Coupon, fundraiserTitle string) error
	AwardAnnounced(ctx context.Context, award *models.AwardDetails) error
}

// Random is the source of the draws. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
	Intn(n int) int
}

// lockedRandom makes a *rand.Rand safe for concurrent requests
type lockedRandom struct {
	mu sync.Mutex
	r  *mrand.Rand
}

// NewRandom returns a time-seeded Random safe for concurrent use
func NewRandom() Random {
	return &lockedRandom{r: mrand.New(mrand.NewSource(time.Now().UnixNano()))}
}

func (l *lockedRandom) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRandom) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// Option customises a service
type Option func(*serviceOptions)

type serviceOptions struct {
	now        func() time.Time
	random     Random
	codeReader io.Reader
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) { o.now = now }
}

// WithRandom replaces the draw randomness
func WithRandom(r Random) Option {
	return func(o *serviceOptions) { o.random = r }
}

// WithCodeReader replaces crypto/rand as the source of coupon code bytes
func WithCodeReader(r io.Reader) Option {
	return func(o *serviceOptions) { o.codeReader = r }
}

func applyOptions(opts []Option) serviceOptions {
	o := serviceOptions{
		now:        time.Now,
		codeReader: rand.Reader,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.random == nil {
		o.random = NewRandom()
	}
	return o
}
