package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/models"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/repositories"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ AwardService = (*AwardServiceImpl)(nil)

// AwardServiceImpl implements AwardService
type AwardServiceImpl struct {
	couponRepo repositories.CouponRepository
	awardRepo  repositories.AwardRepository
	fundRepo   repositories.FundraiserRepository
	userRepo   repositories.UserRepository
	// tx is nil when the storage has no multi-document transactions;
	// announcements then use a compensating compare-and-swap.
	tx       repositories.Transactor
	notifier NotificationService
	now      func() time.Time
}

// NewAwardService creates a new AwardServiceImpl
func NewAwardService(
	couponRepo repositories.CouponRepository,
	awardRepo repositories.AwardRepository,
	fundRepo repositories.FundraiserRepository,
	userRepo repositories.UserRepository,
	tx repositories.Transactor,
	notifier NotificationService,
	opts ...Option,
) *AwardServiceImpl {
	o := applyOptions(opts)
	return &AwardServiceImpl{
		couponRepo: couponRepo,
		awardRepo:  awardRepo,
		fundRepo:   fundRepo,
		userRepo:   userRepo,
		tx:         tx,
		notifier:   notifier,
		now:        o.now,
	}
}

// Announce turns an active coupon into an award. The coupon moves to used
// and the award is created together or not at all.
func (s *AwardServiceImpl) Announce(ctx context.Context, req models.AnnounceRequest) (*models.AwardDetails, error) {
	log := logrus.WithFields(logrus.Fields{
		"coupon_id":    req.CouponID.Hex(),
		"announced_by": req.AnnouncerID.Hex(),
	})

	coupon, err := s.couponRepo.FindByID(ctx, req.CouponID)
	if err != nil {
		return nil, notFound(err, "coupon "+req.CouponID.Hex())
	}
	if coupon.Status != models.CouponStatusActive {
		log.WithField("status", coupon.Status).Warn("Announce: Coupon is not active")
		return nil, fmt.Errorf("coupon %s is %s: %w", coupon.Code, coupon.Status, ErrInvalidState)
	}

	now := s.now()
	selectedAt := now
	if req.SelectedAt != nil && !req.SelectedAt.IsZero() {
		selectedAt = *req.SelectedAt
	}
	award := &models.Award{
		CouponID:       coupon.ID,
		CouponCode:     coupon.Code,
		DonationID:     coupon.DonationID,
		FundraiserID:   coupon.FundraiserID,
		UserID:         coupon.UserID,
		DonorName:      coupon.DonorName,
		DonorEmail:     coupon.DonorEmail,
		DonationAmount: coupon.DonationAmount,
		Currency:       coupon.Currency,
		SelectedAt:     selectedAt,
		AnnouncedAt:    now,
		AnnouncedBy:    req.AnnouncerID,
		Notes:          req.Notes,
		CreatedAt:      now,
	}

	if s.tx != nil {
		err = s.announceInTransaction(ctx, award, now)
	} else {
		err = s.announceWithCompensation(ctx, award, now)
	}
	if err != nil {
		if errors.Is(err, ErrInvalidState) {
			log.WithError(err).Warn("Announce: Coupon lost to a concurrent announcement")
		} else {
			log.WithError(err).Error("Announce: Failed to record award")
		}
		return nil, err
	}
	log = log.WithField("award_id", award.ID.Hex())
	log.Info("Announce: Award recorded")

	details, err := s.Get(ctx, award.ID)
	if err != nil {
		log.WithError(err).Warn("Announce: Failed to reload award, using written copy")
		details = &models.AwardDetails{Award: *award}
	}

	if err := s.notifier.AwardAnnounced(ctx, details); err != nil {
		log.WithError(err).Error("Announce: Failed to send winner email")
		return details, nil
	}
	sentAt := s.now()
	details.EmailSent = true
	details.EmailSentAt = &sentAt
	if err := s.awardRepo.MarkEmailSent(ctx, award.ID, sentAt); err != nil {
		log.WithError(err).Warn("Announce: Winner email sent but flag not stored")
	}
	return details, nil
}

func (s *AwardServiceImpl) announceInTransaction(ctx context.Context, award *models.Award, now time.Time) error {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.couponRepo.TransitionStatus(ctx, award.CouponID, models.CouponStatusActive, models.CouponStatusUsed, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidState
		}
		if err := s.awardRepo.Create(ctx, award); err != nil {
			if errors.Is(err, repositories.ErrDuplicateAward) {
				return ErrInvalidState
			}
			return err
		}
		return nil
	})
	if err == nil {
		return nil
	}
	// a write conflict means another writer reached the coupon first; its
	// commit may not be visible to a read outside the transaction yet
	if errors.Is(err, ErrInvalidState) || repositories.IsWriteConflict(err) || s.couponTaken(ctx, award.CouponID) {
		return fmt.Errorf("coupon %s is no longer active: %w", award.CouponCode, ErrInvalidState)
	}
	return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
}

// announceWithCompensation swaps the coupon to used, then inserts the
// award. If the insert fails the swap is reverted.
func (s *AwardServiceImpl) announceWithCompensation(ctx context.Context, award *models.Award, now time.Time) error {
	ok, err := s.couponRepo.TransitionStatus(ctx, award.CouponID, models.CouponStatusActive, models.CouponStatusUsed, now)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	if !ok {
		return fmt.Errorf("coupon %s is no longer active: %w", award.CouponCode, ErrInvalidState)
	}

	err = s.awardRepo.Create(ctx, award)
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrDuplicateAward) {
		// an award already exists, so the coupon must stay used
		return fmt.Errorf("coupon %s already has an award: %w", award.CouponCode, ErrInvalidState)
	}

	reverted, revertErr := s.couponRepo.TransitionStatus(ctx, award.CouponID, models.CouponStatusUsed, models.CouponStatusActive, s.now())
	if revertErr != nil || !reverted {
		logrus.WithFields(logrus.Fields{
			"coupon_id":    award.CouponID.Hex(),
			"insert_error": err,
			"revert_error": revertErr,
		}).Error("Announce: CRITICAL: coupon left used without an award")
	}
	return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
}

func (s *AwardServiceImpl) couponTaken(ctx context.Context, id primitive.ObjectID) bool {
	c, err := s.couponRepo.FindByID(ctx, id)
	return err == nil && c.Status != models.CouponStatusActive
}

// List returns a page of awards, most recent first
func (s *AwardServiceImpl) List(ctx context.Context, filter models.AwardFilter, page, limit int) ([]*models.Award, int64, error) {
	total, err := s.awardRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count awards: %w", err)
	}
	awards, err := s.awardRepo.Find(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list awards: %w", err)
	}
	return awards, total, nil
}

// Get retrieves an award with its fundraiser and announcer
func (s *AwardServiceImpl) Get(ctx context.Context, id primitive.ObjectID) (*models.AwardDetails, error) {
	award, err := s.awardRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "award "+id.Hex())
	}

	details := &models.AwardDetails{Award: *award}
	if f, err := s.fundRepo.FindByID(ctx, award.FundraiserID); err == nil {
		details.Fundraiser = f.Summary()
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to load fundraiser: %w", err)
	}
	if u, err := s.userRepo.FindByID(ctx, award.AnnouncedBy); err == nil {
		details.Announcer = u.Summary()
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to load announcer: %w", err)
	}
	return details, nil
}

// Delete removes an award. The coupon is not reverted.
func (s *AwardServiceImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.awardRepo.Delete(ctx, id); err != nil {
		return notFound(err, "award "+id.Hex())
	}
	logrus.WithField("award_id", id.Hex()).Warn("Delete: Award deleted by admin")
	return nil
}
