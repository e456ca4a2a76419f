package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/config"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/models"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/repositories"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/repositories/memory"
	"github.com/ArowuTest/fundraiser-awards-backend/pkg/mailer"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	logrus.SetLevel(logrus.PanicLevel)
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testCouponConfig() config.CouponConfig {
	return config.CouponConfig{
		CodePrefix:      "FU",
		ExpiresIn:       365 * 24 * time.Hour,
		MaxCodeAttempts: 10,
		DefaultCurrency: "USD",
	}
}

type fixture struct {
	store      *memory.Store
	coupons    repositories.CouponRepository
	awards     repositories.AwardRepository
	mailer     *mailer.MockMailer
	notifier   *EmailNotificationService
	fundraiser models.Fundraiser
	admin      models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	m := mailer.NewMockMailer()
	return &fixture{
		store:      store,
		coupons:    memory.NewCouponRepository(store),
		awards:     memory.NewAwardRepository(store),
		mailer:     m,
		notifier:   NewEmailNotificationService(m),
		fundraiser: store.AddFundraiser(models.Fundraiser{Title: "Clean Water", Slug: "clean-water"}),
		admin:      store.AddUser(models.User{Name: "Ada Admin", Email: "ada@example.com", Role: models.RoleAdmin}),
	}
}

func (f *fixture) couponService(opts ...Option) *CouponServiceImpl {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewCouponService(testCouponConfig(), f.coupons, f.awards, memory.NewFundraiserRepository(f.store), f.notifier, opts...)
}

func (f *fixture) selectionService(opts ...Option) *SelectionServiceImpl {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewSelectionService(f.coupons, opts...)
}

func (f *fixture) awardService(tx repositories.Transactor, awards repositories.AwardRepository) *AwardServiceImpl {
	if awards == nil {
		awards = f.awards
	}
	return NewAwardService(
		f.coupons,
		awards,
		memory.NewFundraiserRepository(f.store),
		memory.NewUserRepository(f.store),
		tx,
		f.notifier,
		WithClock(func() time.Time { return fixedNow }),
	)
}

// seedCoupon stores an active coupon of the fixture fundraiser
func (f *fixture) seedCoupon(t *testing.T, code string, amount float64, expiresAt time.Time) *models.Coupon {
	t.Helper()
	c := &models.Coupon{
		Code:           code,
		DonationID:     primitive.NewObjectID(),
		FundraiserID:   f.fundraiser.ID,
		DonorName:      "Donor " + code,
		DonorEmail:     code + "@example.com",
		DonationAmount: amount,
		Currency:       "USD",
		Status:         models.CouponStatusActive,
		ExpiresAt:      expiresAt,
		CreatedAt:      fixedNow.Add(-time.Hour),
	}
	if err := f.coupons.Create(context.Background(), c); err != nil {
		t.Fatalf("failed to seed coupon %s: %v", code, err)
	}
	return c
}

func (f *fixture) issueRequest(amount float64) models.IssueCouponRequest {
	return models.IssueCouponRequest{
		DonationID:      primitive.NewObjectID(),
		FundraiserID:    f.fundraiser.ID,
		DonorEmail:      "donor@example.com",
		DonorName:       "Grace Donor",
		DonationAmount:  amount,
		FundraiserTitle: f.fundraiser.Title,
	}
}

// failingAwardRepository rejects every insert
type failingAwardRepository struct {
	repositories.AwardRepository
	err error
}

func (r *failingAwardRepository) Create(context.Context, *models.Award) error {
	return r.err
}

var errStorage = errors.New("storage unavailable")

// fixedRandom replays the same values on every call
type fixedRandom struct {
	f float64
	n int
}

func (r fixedRandom) Float64() float64 { return r.f }
func (r fixedRandom) Intn(int) int     { return r.n }
