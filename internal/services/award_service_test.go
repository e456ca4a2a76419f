package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/models"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/repositories"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/repositories/memory"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// announcePaths runs a test against both the transactional and the
// compensating announcement.
func announcePaths(t *testing.T, run func(t *testing.T, f *fixture, tx repositories.Transactor)) {
	t.Run("transaction", func(t *testing.T) {
		f := newFixture(t)
		run(t, f, memory.NewTransactor(f.store))
	})
	t.Run("compensation", func(t *testing.T) {
		run(t, newFixture(t), nil)
	})
}

// assertAwardsReferenceUsedCoupons checks that no award points at a coupon
// that is not used.
func assertAwardsReferenceUsedCoupons(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	awards, err := f.awards.Find(ctx, models.AwardFilter{}, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range awards {
		c, err := f.coupons.FindByID(ctx, a.CouponID)
		if err != nil {
			t.Fatalf("award %s references missing coupon: %v", a.ID.Hex(), err)
		}
		if c.Status != models.CouponStatusUsed {
			t.Errorf("award %s references %s coupon %s", a.ID.Hex(), c.Status, c.Code)
		}
	}
}

func TestAwardService_ExampleScenario(t *testing.T) {
	announcePaths(t, func(t *testing.T, f *fixture, tx repositories.Transactor) {
		ctx := context.Background()
		coupons := f.couponService()
		selection := f.selectionService()
		awards := f.awardService(tx, nil)

		issued, err := coupons.Issue(ctx, f.issueRequest(100))
		if err != nil {
			t.Fatalf("Issue returned %v", err)
		}
		coupon, _ := f.coupons.FindByCode(ctx, issued.Code)

		pool, err := selection.DonorPool(ctx, f.fundraiser.ID)
		if err != nil {
			t.Fatal(err)
		}
		if pool.TotalAmount != 100 || pool.TotalCoupons != 1 || pool.Donors[0].Probability != 100 {
			t.Fatalf("Unexpected pool %+v", pool)
		}

		award, err := awards.Announce(ctx, models.AnnounceRequest{
			CouponID:    coupon.ID,
			AnnouncerID: f.admin.ID,
			Notes:       "Drawn live on stream",
		})
		if err != nil {
			t.Fatalf("Announce returned %v", err)
		}
		if award.DonationAmount != 100 || award.CouponCode != issued.Code {
			t.Errorf("Unexpected award snapshot %+v", award.Award)
		}
		if award.Fundraiser == nil || award.Fundraiser.Title != "Clean Water" {
			t.Errorf("Expected populated fundraiser, got %+v", award.Fundraiser)
		}
		if award.Announcer == nil || award.Announcer.Email != "ada@example.com" {
			t.Errorf("Expected populated announcer, got %+v", award.Announcer)
		}
		if !award.SelectedAt.Equal(fixedNow) || !award.AnnouncedAt.Equal(fixedNow) {
			t.Errorf("Expected selectedAt and announcedAt to default to now")
		}
		if !award.EmailSent {
			t.Error("Expected the winner email to be recorded")
		}

		stored, _ := f.coupons.FindByID(ctx, coupon.ID)
		if stored.Status != models.CouponStatusUsed {
			t.Errorf("Expected coupon to be used, got %s", stored.Status)
		}

		_, err = awards.Announce(ctx, models.AnnounceRequest{CouponID: coupon.ID, AnnouncerID: f.admin.ID})
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("Expected ErrInvalidState on second announce, got %v", err)
		}
		if n, _ := f.awards.Count(ctx, models.AwardFilter{}); n != 1 {
			t.Errorf("Expected exactly one award, got %d", n)
		}
		if n := len(f.mailer.Messages()); n != 2 {
			t.Errorf("Expected coupon and winner emails, got %d", n)
		}
		assertAwardsReferenceUsedCoupons(t, f)
	})
}

func TestAwardService_AnnounceRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.awardService(memory.NewTransactor(f.store), nil)

	t.Run("unknown coupon", func(t *testing.T) {
		_, err := svc.Announce(ctx, models.AnnounceRequest{CouponID: primitive.NewObjectID(), AnnouncerID: f.admin.ID})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("expired coupon", func(t *testing.T) {
		c := f.seedCoupon(t, "FU-000000E1", 10, fixedNow.Add(-time.Hour))
		if _, err := f.coupons.ExpireBefore(ctx, fixedNow); err != nil {
			t.Fatal(err)
		}
		_, err := svc.Announce(ctx, models.AnnounceRequest{CouponID: c.ID, AnnouncerID: f.admin.ID})
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("Expected ErrInvalidState, got %v", err)
		}
	})

	if n, _ := f.awards.Count(ctx, models.AwardFilter{}); n != 0 {
		t.Errorf("Expected no awards, got %d", n)
	}
}

func TestAwardService_AnnounceRollsBack(t *testing.T) {
	announcePaths(t, func(t *testing.T, f *fixture, tx repositories.Transactor) {
		ctx := context.Background()
		c := f.seedCoupon(t, "FU-000000F1", 10, fixedNow.Add(time.Hour))
		svc := f.awardService(tx, &failingAwardRepository{AwardRepository: f.awards, err: errStorage})

		_, err := svc.Announce(ctx, models.AnnounceRequest{CouponID: c.ID, AnnouncerID: f.admin.ID})
		if !errors.Is(err, ErrTransactionFailed) {
			t.Fatalf("Expected ErrTransactionFailed, got %v", err)
		}

		stored, _ := f.coupons.FindByID(ctx, c.ID)
		if stored.Status != models.CouponStatusActive {
			t.Errorf("Expected coupon to remain active, got %s", stored.Status)
		}
		if stored.UsedAt != nil {
			t.Error("Expected usedAt to be cleared")
		}
		if n, _ := f.awards.Count(ctx, models.AwardFilter{}); n != 0 {
			t.Errorf("Expected no awards, got %d", n)
		}
		if len(f.mailer.Messages()) != 0 {
			t.Error("Expected no winner email")
		}
	})
}

func TestAwardService_ConcurrentAnnounce(t *testing.T) {
	announcePaths(t, func(t *testing.T, f *fixture, tx repositories.Transactor) {
		ctx := context.Background()
		c := f.seedCoupon(t, "FU-000000C1", 10, fixedNow.Add(time.Hour))
		svc := f.awardService(tx, nil)

		const callers = 10
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			wins     int
			rejected int
		)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Announce(ctx, models.AnnounceRequest{CouponID: c.ID, AnnouncerID: f.admin.ID})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					wins++
				case errors.Is(err, ErrInvalidState):
					rejected++
				default:
					t.Errorf("Unexpected error %v", err)
				}
			}()
		}
		wg.Wait()

		if wins != 1 || rejected != callers-1 {
			t.Errorf("Expected 1 win and %d rejections, got %d and %d", callers-1, wins, rejected)
		}
		if n, _ := f.awards.Count(ctx, models.AwardFilter{}); n != 1 {
			t.Errorf("Expected exactly one award, got %d", n)
		}
		assertAwardsReferenceUsedCoupons(t, f)
	})
}

// conflictTransactor fails like a MongoDB transaction that collided with
// another writer whose commit is not visible yet.
type conflictTransactor struct {
	err error
}

func (c conflictTransactor) WithTransaction(context.Context, func(ctx context.Context) error) error {
	return c.err
}

func TestAwardService_WriteConflictLosesTheRace(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"transient transaction error", mongo.CommandError{
			Code:    112,
			Name:    "WriteConflict",
			Message: "WriteConflict error: this operation conflicted with another operation",
			Labels:  []string{"TransientTransactionError"},
		}},
		{"conflict after retries", fmt.Errorf("%w: WriteConflict", repositories.ErrWriteConflict)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			c := f.seedCoupon(t, "FU-000000D1", 10, fixedNow.Add(time.Hour))
			svc := f.awardService(conflictTransactor{err: tt.err}, nil)

			_, err := svc.Announce(ctx, models.AnnounceRequest{CouponID: c.ID, AnnouncerID: f.admin.ID})
			if !errors.Is(err, ErrInvalidState) {
				t.Fatalf("Expected ErrInvalidState, got %v", err)
			}
			if errors.Is(err, ErrTransactionFailed) {
				t.Errorf("Expected the conflict not to be reported as a failed transaction: %v", err)
			}
			if n, _ := f.awards.Count(ctx, models.AwardFilter{}); n != 0 {
				t.Errorf("Expected no awards, got %d", n)
			}
		})
	}

	t.Run("other storage errors still fail the transaction", func(t *testing.T) {
		f := newFixture(t)
		c := f.seedCoupon(t, "FU-000000D2", 10, fixedNow.Add(time.Hour))
		svc := f.awardService(conflictTransactor{err: errStorage}, nil)

		_, err := svc.Announce(context.Background(), models.AnnounceRequest{CouponID: c.ID, AnnouncerID: f.admin.ID})
		if !errors.Is(err, ErrTransactionFailed) {
			t.Fatalf("Expected ErrTransactionFailed, got %v", err)
		}
	})
}

func TestAwardService_EmailFailureDoesNotSurface(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mailer.FailWith(errors.New("smtp down"))
	c := f.seedCoupon(t, "FU-000000D1", 10, fixedNow.Add(time.Hour))
	svc := f.awardService(memory.NewTransactor(f.store), nil)

	award, err := svc.Announce(ctx, models.AnnounceRequest{CouponID: c.ID, AnnouncerID: f.admin.ID})
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if award.EmailSent {
		t.Error("Expected emailSent to be false")
	}
	stored, err := f.awards.FindByID(ctx, award.ID)
	if err != nil {
		t.Fatalf("Expected the award to be committed, got %v", err)
	}
	if stored.EmailSent {
		t.Error("Expected no email bookkeeping on the stored award")
	}
}

func TestAwardService_AdminOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.awardService(memory.NewTransactor(f.store), nil)

	selectedAt := fixedNow.Add(-24 * time.Hour)
	c1 := f.seedCoupon(t, "FU-000000A1", 10, fixedNow.Add(time.Hour))
	c2 := f.seedCoupon(t, "FU-000000A2", 20, fixedNow.Add(time.Hour))
	first, err := svc.Announce(ctx, models.AnnounceRequest{CouponID: c1.ID, AnnouncerID: f.admin.ID, SelectedAt: &selectedAt})
	if err != nil {
		t.Fatal(err)
	}
	if !first.SelectedAt.Equal(selectedAt) {
		t.Errorf("Expected selectedAt %v, got %v", selectedAt, first.SelectedAt)
	}
	if _, err := svc.Announce(ctx, models.AnnounceRequest{CouponID: c2.ID, AnnouncerID: primitive.NewObjectID()}); err != nil {
		t.Fatal(err)
	}

	t.Run("list by fundraiser", func(t *testing.T) {
		awards, total, err := svc.List(ctx, models.AwardFilter{FundraiserID: &f.fundraiser.ID}, 1, 1)
		if err != nil {
			t.Fatal(err)
		}
		if total != 2 || len(awards) != 1 {
			t.Errorf("Expected a page of 1 out of 2, got %d of %d", len(awards), total)
		}
	})

	t.Run("get with unknown announcer", func(t *testing.T) {
		awards, _, _ := svc.List(ctx, models.AwardFilter{}, 0, 0)
		for _, a := range awards {
			details, err := svc.Get(ctx, a.ID)
			if err != nil {
				t.Fatal(err)
			}
			if a.CouponID == c2.ID && details.Announcer != nil {
				t.Errorf("Expected no announcer for an unknown user, got %+v", details.Announcer)
			}
		}
	})

	t.Run("delete keeps the coupon used", func(t *testing.T) {
		if err := svc.Delete(ctx, first.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.Get(ctx, first.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
		stored, _ := f.coupons.FindByID(ctx, c1.ID)
		if stored.Status != models.CouponStatusUsed {
			t.Errorf("Expected coupon to stay used, got %s", stored.Status)
		}
		if err := svc.Delete(ctx, first.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}
