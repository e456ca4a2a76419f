package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/models"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/repositories"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ SelectionService = (*SelectionServiceImpl)(nil)

var hundred = decimal.NewFromInt(100)

// SelectionServiceImpl implements SelectionService
type SelectionServiceImpl struct {
	couponRepo repositories.CouponRepository
	now        func() time.Time
	random     Random
}

// NewSelectionService creates a new SelectionServiceImpl
func NewSelectionService(couponRepo repositories.CouponRepository, opts ...Option) *SelectionServiceImpl {
	o := applyOptions(opts)
	return &SelectionServiceImpl{
		couponRepo: couponRepo,
		now:        o.now,
		random:     o.random,
	}
}

// DonorPool returns the eligible coupons of a fundraiser with their odds
func (s *SelectionServiceImpl) DonorPool(ctx context.Context, fundraiserID primitive.ObjectID) (*models.DonorPool, error) {
	now := s.now()
	coupons, err := s.couponRepo.Find(ctx, models.CouponFilter{
		FundraiserID: &fundraiserID,
		EligibleAt:   &now,
	}, 0, 0)
	if err != nil {
		logrus.WithError(err).WithField("fundraiser_id", fundraiserID.Hex()).Error("DonorPool: Failed to load coupons")
		return nil, fmt.Errorf("failed to load eligible coupons: %w", err)
	}
	return buildDonorPool(coupons), nil
}

// buildDonorPool computes each coupon's share of the pool as a percentage
// rounded half-up to 2 decimals, sorted by share descending.
func buildDonorPool(coupons []*models.Coupon) *models.DonorPool {
	pool := &models.DonorPool{Donors: []models.WeightedDonor{}}
	if len(coupons) == 0 {
		return pool
	}

	total := decimal.Zero
	for _, c := range coupons {
		total = total.Add(decimal.NewFromFloat(c.DonationAmount))
	}

	for _, c := range coupons {
		probability := 0.0
		if total.IsPositive() {
			probability = decimal.NewFromFloat(c.DonationAmount).
				Div(total).
				Mul(hundred).
				Round(2).
				InexactFloat64()
		}
		pool.Donors = append(pool.Donors, models.WeightedDonor{
			CouponID:       c.ID,
			Code:           c.Code,
			DonorName:      c.DonorName,
			DonorEmail:     c.DonorEmail,
			DonationAmount: c.DonationAmount,
			Probability:    probability,
		})
	}

	sort.SliceStable(pool.Donors, func(i, j int) bool {
		return pool.Donors[i].Probability > pool.Donors[j].Probability
	})

	pool.TotalAmount = total.InexactFloat64()
	pool.TotalCoupons = len(coupons)
	return pool
}

// SelectWeightedWinner draws one donor with odds proportional to the amount
func (s *SelectionServiceImpl) SelectWeightedWinner(ctx context.Context, fundraiserID primitive.ObjectID) (*models.WeightedSelection, error) {
	pool, err := s.DonorPool(ctx, fundraiserID)
	if err != nil {
		return nil, err
	}
	if len(pool.Donors) == 0 {
		return nil, fmt.Errorf("fundraiser %s: %w", fundraiserID.Hex(), ErrNoEligibleDonors)
	}

	winner := pickWeighted(pool.Donors, pool.TotalAmount, s.random)
	selection := &models.WeightedSelection{
		Winner:       winner,
		TotalAmount:  pool.TotalAmount,
		TotalCoupons: pool.TotalCoupons,
		SelectedAt:   s.now(),
	}

	logrus.WithFields(logrus.Fields{
		"fundraiser_id": fundraiserID.Hex(),
		"code":          winner.Code,
		"probability":   winner.Probability,
		"pool_size":     pool.TotalCoupons,
	}).Info("SelectWeightedWinner: Winner selected")
	return selection, nil
}

// pickWeighted returns the first donor whose running total reaches a
// uniform point in [0, total).
func pickWeighted(donors []models.WeightedDonor, total float64, random Random) models.WeightedDonor {
	r := random.Float64() * total
	cumulative := 0.0
	for _, d := range donors {
		cumulative += d.DonationAmount
		if cumulative >= r {
			return d
		}
	}
	// float drift
	return donors[len(donors)-1]
}

// SelectRandomWinner draws uniformly among eligible coupons and marks the
// winner used. No award is recorded.
func (s *SelectionServiceImpl) SelectRandomWinner(ctx context.Context, filter models.RandomSelectionFilter) (*models.Coupon, error) {
	now := s.now()
	couponFilter := models.CouponFilter{
		FundraiserID: filter.FundraiserID,
		CreatedFrom:  filter.From,
		CreatedTo:    filter.To,
		EligibleAt:   &now,
	}
	fields := logrus.Fields{}
	if filter.FundraiserID != nil {
		fields["fundraiser_id"] = filter.FundraiserID.Hex()
	}
	log := logrus.WithFields(fields)

	count, err := s.couponRepo.Count(ctx, couponFilter)
	if err != nil {
		log.WithError(err).Error("SelectRandomWinner: Failed to count eligible coupons")
		return nil, fmt.Errorf("failed to count eligible coupons: %w", err)
	}
	if count == 0 {
		log.Info("SelectRandomWinner: No eligible coupons")
		return nil, nil
	}

	index := s.random.Intn(int(count))
	coupon, err := s.couponRepo.FindAt(ctx, couponFilter, int64(index))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("eligible coupons changed during selection: %w", ErrInvalidState)
		}
		return nil, fmt.Errorf("failed to fetch selected coupon: %w", err)
	}

	ok, err := s.couponRepo.TransitionStatus(ctx, coupon.ID, models.CouponStatusActive, models.CouponStatusUsed, now)
	if err != nil {
		log.WithError(err).Error("SelectRandomWinner: Failed to mark coupon used")
		return nil, fmt.Errorf("failed to mark coupon used: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("coupon %s is no longer active: %w", coupon.Code, ErrInvalidState)
	}
	coupon.Status = models.CouponStatusUsed
	coupon.UsedAt = &now
	coupon.UpdatedAt = now

	log.WithFields(logrus.Fields{
		"code":     coupon.Code,
		"index":    index,
		"eligible": count,
	}).Info("SelectRandomWinner: Coupon drawn and marked used")
	return coupon, nil
}
