package memory

import (
	"context"
	"sort"
	"time"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/models"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type couponRepository struct {
	store *Store
}

// NewCouponRepository creates a CouponRepository backed by the store
func NewCouponRepository(store *Store) repositories.CouponRepository {
	return &couponRepository{store: store}
}

func (r *couponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	defer r.store.lock(ctx)()

	for _, c := range r.store.coupons {
		if c.Code == coupon.Code {
			return repositories.ErrDuplicateCode
		}
		if c.DonationID == coupon.DonationID {
			return repositories.ErrDuplicateDonation
		}
	}
	if coupon.ID.IsZero() {
		coupon.ID = primitive.NewObjectID()
	}
	if coupon.CreatedAt.IsZero() {
		coupon.CreatedAt = time.Now()
	}
	coupon.UpdatedAt = coupon.CreatedAt
	r.store.coupons[coupon.ID] = *coupon
	return nil
}

func (r *couponRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error) {
	defer r.store.lock(ctx)()
	c, ok := r.store.coupons[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r *couponRepository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return r.findFirst(ctx, func(c *models.Coupon) bool { return c.Code == code })
}

func (r *couponRepository) FindByDonationID(ctx context.Context, donationID primitive.ObjectID) (*models.Coupon, error) {
	return r.findFirst(ctx, func(c *models.Coupon) bool { return c.DonationID == donationID })
}

func (r *couponRepository) findFirst(ctx context.Context, match func(*models.Coupon) bool) (*models.Coupon, error) {
	defer r.store.lock(ctx)()
	for _, c := range r.store.coupons {
		c := c
		if match(&c) {
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *couponRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, err := r.FindByCode(ctx, code)
	if err == repositories.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *couponRepository) Find(ctx context.Context, filter models.CouponFilter, page, limit int) ([]*models.Coupon, error) {
	defer r.store.lock(ctx)()

	matched := r.matching(filter)
	// newest first
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}
	return paginate(matched, page, limit), nil
}

func (r *couponRepository) FindAt(ctx context.Context, filter models.CouponFilter, skip int64) (*models.Coupon, error) {
	defer r.store.lock(ctx)()

	matched := r.matching(filter)
	if skip < 0 || skip >= int64(len(matched)) {
		return nil, repositories.ErrNotFound
	}
	return matched[skip], nil
}

func (r *couponRepository) Count(ctx context.Context, filter models.CouponFilter) (int64, error) {
	defer r.store.lock(ctx)()
	return int64(len(r.matching(filter))), nil
}

func (r *couponRepository) CountByStatus(ctx context.Context, fundraiserID *primitive.ObjectID) (*models.CouponStats, error) {
	defer r.store.lock(ctx)()

	stats := &models.CouponStats{}
	for _, c := range r.store.coupons {
		if fundraiserID != nil && c.FundraiserID != *fundraiserID {
			continue
		}
		switch c.Status {
		case models.CouponStatusActive:
			stats.Active++
		case models.CouponStatusUsed:
			stats.Used++
		case models.CouponStatusExpired:
			stats.Expired++
		}
		stats.Total++
	}
	return stats, nil
}

func (r *couponRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.CouponStatus, at time.Time) (bool, error) {
	defer r.store.lock(ctx)()

	c, ok := r.store.coupons[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	c.UpdatedAt = at
	switch to {
	case models.CouponStatusUsed:
		usedAt := at
		c.UsedAt = &usedAt
	case models.CouponStatusActive:
		c.UsedAt = nil
	}
	r.store.coupons[id] = c
	return true, nil
}

func (r *couponRepository) ExpireBefore(ctx context.Context, now time.Time) (int64, error) {
	defer r.store.lock(ctx)()

	var n int64
	for id, c := range r.store.coupons {
		if c.Status == models.CouponStatusActive && c.ExpiresAt.Before(now) {
			c.Status = models.CouponStatusExpired
			c.UpdatedAt = now
			r.store.coupons[id] = c
			n++
		}
	}
	return n, nil
}

func (r *couponRepository) MarkEmailSent(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	defer r.store.lock(ctx)()

	c, ok := r.store.coupons[id]
	if !ok {
		return repositories.ErrNotFound
	}
	sentAt := at
	c.EmailSent = true
	c.EmailSentAt = &sentAt
	c.UpdatedAt = at
	r.store.coupons[id] = c
	return nil
}

func (r *couponRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.coupons[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.store.coupons, id)
	return nil
}

// matching returns copies of the coupons matching f in creation order.
// Callers must hold the store lock.
func (r *couponRepository) matching(f models.CouponFilter) []*models.Coupon {
	var out []*models.Coupon
	for _, c := range r.store.coupons {
		c := c
		if couponMatches(&c, f) {
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() < out[j].ID.Hex()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func couponMatches(c *models.Coupon, f models.CouponFilter) bool {
	if f.FundraiserID != nil && c.FundraiserID != *f.FundraiserID {
		return false
	}
	if f.EligibleAt != nil {
		if !c.Eligible(*f.EligibleAt) {
			return false
		}
	} else if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.CreatedFrom != nil && c.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && c.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	return true
}

func paginate[T any](items []T, page, limit int) []T {
	if page <= 0 || limit <= 0 {
		return items
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
