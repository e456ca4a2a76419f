package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/config"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/models"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/repositories"
	"github.com/ArowuTest/fundraiser-awards-backend/pkg/mailer"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ CouponService = (*CouponServiceImpl)(nil)

// CouponServiceImpl implements CouponService
type CouponServiceImpl struct {
	cfg        config.CouponConfig
	couponRepo repositories.CouponRepository
	awardRepo  repositories.AwardRepository
	fundRepo   repositories.FundraiserRepository
	notifier   NotificationService
	now        func() time.Time
	codeReader io.Reader
}

// NewCouponService creates a new CouponServiceImpl
func NewCouponService(
	cfg config.CouponConfig,
	couponRepo repositories.CouponRepository,
	awardRepo repositories.AwardRepository,
	fundRepo repositories.FundraiserRepository,
	notifier NotificationService,
	opts ...Option,
) *CouponServiceImpl {
	o := applyOptions(opts)
	return &CouponServiceImpl{
		cfg:        cfg,
		couponRepo: couponRepo,
		awardRepo:  awardRepo,
		fundRepo:   fundRepo,
		notifier:   notifier,
		now:        o.now,
		codeReader: o.codeReader,
	}
}

// Issue creates the coupon for a completed donation
func (s *CouponServiceImpl) Issue(ctx context.Context, req models.IssueCouponRequest) (*models.IssueCouponResult, error) {
	log := logrus.WithFields(logrus.Fields{
		"donation_id":   req.DonationID.Hex(),
		"fundraiser_id": req.FundraiserID.Hex(),
	})

	existing, err := s.couponRepo.FindByDonationID(ctx, req.DonationID)
	if err == nil {
		log.WithField("code", existing.Code).Info("Issue: Coupon already issued for donation")
		return issueResult(existing), nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		log.WithError(err).Error("Issue: Failed to look up coupon by donation")
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	var coupon *models.Coupon
	for attempt := 1; attempt <= s.cfg.MaxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate coupon code: %w", err)
		}

		taken, err := s.couponRepo.ExistsByCode(ctx, code)
		if err != nil {
			log.WithError(err).Error("Issue: Failed to check coupon code")
			return nil, fmt.Errorf("failed to check coupon code: %w", err)
		}
		if taken {
			log.WithFields(logrus.Fields{"code": code, "attempt": attempt}).Warn("Issue: Coupon code collision")
			continue
		}

		now := s.now()
		candidate := &models.Coupon{
			Code:           code,
			DonationID:     req.DonationID,
			FundraiserID:   req.FundraiserID,
			UserID:         req.UserID,
			DonorName:      req.DonorName,
			DonorEmail:     req.DonorEmail,
			DonationAmount: req.DonationAmount,
			Currency:       currency,
			Status:         models.CouponStatusActive,
			ExpiresAt:      now.Add(s.cfg.ExpiresIn),
			CreatedAt:      now,
		}
		err = s.couponRepo.Create(ctx, candidate)
		switch {
		case err == nil:
			coupon = candidate
		case errors.Is(err, repositories.ErrDuplicateCode):
			log.WithFields(logrus.Fields{"code": code, "attempt": attempt}).Warn("Issue: Coupon code taken on insert")
			continue
		case errors.Is(err, repositories.ErrDuplicateDonation):
			// a concurrent issuance for the same donation won
			stored, findErr := s.couponRepo.FindByDonationID(ctx, req.DonationID)
			if findErr != nil {
				return nil, fmt.Errorf("failed to load concurrently issued coupon: %w", findErr)
			}
			log.WithField("code", stored.Code).Info("Issue: Coupon issued concurrently for donation")
			return issueResult(stored), nil
		default:
			log.WithError(err).Error("Issue: Failed to create coupon")
			return nil, fmt.Errorf("failed to create coupon: %w", err)
		}
		break
	}

	if coupon == nil {
		log.WithField("attempts", s.cfg.MaxCodeAttempts).Error("Issue: ALARM: coupon code space exhausted")
		return nil, ErrCodeGenerationExhausted
	}
	log = log.WithField("code", coupon.Code)
	log.Info("Issue: Coupon issued")

	s.sendCouponEmail(ctx, coupon, s.fundraiserTitle(ctx, req.FundraiserID, req.FundraiserTitle), log)
	return issueResult(coupon), nil
}

// sendCouponEmail notifies the donor and records success on the coupon.
// Failures are logged and never returned.
func (s *CouponServiceImpl) sendCouponEmail(ctx context.Context, coupon *models.Coupon, title string, log *logrus.Entry) bool {
	if err := s.notifier.CouponIssued(ctx, coupon, title); err != nil {
		if errors.Is(err, mailer.ErrDeliveryUnknown) {
			log.WithError(err).Warn("Coupon email timed out and may still arrive")
		} else {
			log.WithError(err).Error("Failed to send coupon email")
		}
		return false
	}

	sentAt := s.now()
	coupon.EmailSent = true
	coupon.EmailSentAt = &sentAt
	if err := s.couponRepo.MarkEmailSent(ctx, coupon.ID, sentAt); err != nil {
		log.WithError(err).Warn("Coupon email sent but flag not stored")
	}
	return true
}

func (s *CouponServiceImpl) fundraiserTitle(ctx context.Context, id primitive.ObjectID, given string) string {
	if given != "" || s.fundRepo == nil {
		return given
	}
	f, err := s.fundRepo.FindByID(ctx, id)
	if err != nil {
		return ""
	}
	return f.Title
}

// newCode builds PREFIX-XXXXXXXX from four random bytes
func (s *CouponServiceImpl) newCode() (string, error) {
	b := make([]byte, 4)
	if _, err := io.ReadFull(s.codeReader, b); err != nil {
		return "", err
	}
	return s.cfg.CodePrefix + "-" + strings.ToUpper(hex.EncodeToString(b)), nil
}

func issueResult(c *models.Coupon) *models.IssueCouponResult {
	return &models.IssueCouponResult{
		Code:       c.Code,
		DonorEmail: c.DonorEmail,
		EmailSent:  c.EmailSent,
		ExpiresAt:  c.ExpiresAt,
	}
}

// SweepExpired expires every active coupon past its expiry
func (s *CouponServiceImpl) SweepExpired(ctx context.Context) (int64, error) {
	now := s.now()
	n, err := s.couponRepo.ExpireBefore(ctx, now)
	if err != nil {
		logrus.WithError(err).Error("SweepExpired: Failed to expire coupons")
		return 0, fmt.Errorf("failed to expire coupons: %w", err)
	}
	logrus.WithFields(logrus.Fields{"expired": n, "cutoff": now}).Info("SweepExpired: Sweep finished")
	return n, nil
}

// List returns a page of coupons and the total matching the filter
func (s *CouponServiceImpl) List(ctx context.Context, filter models.CouponFilter, page, limit int) ([]*models.Coupon, int64, error) {
	total, err := s.couponRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}
	coupons, err := s.couponRepo.Find(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, total, nil
}

// Get retrieves a coupon by ID
func (s *CouponServiceImpl) Get(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error) {
	c, err := s.couponRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "coupon "+id.Hex())
	}
	return c, nil
}

// GetByCode retrieves a coupon by its code
func (s *CouponServiceImpl) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	c, err := s.couponRepo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, notFound(err, "coupon "+code)
	}
	return c, nil
}

// Stats counts coupons per status
func (s *CouponServiceImpl) Stats(ctx context.Context, fundraiserID *primitive.ObjectID) (*models.CouponStats, error) {
	stats, err := s.couponRepo.CountByStatus(ctx, fundraiserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count coupons: %w", err)
	}
	return stats, nil
}

// ResendEmail sends the coupon e-mail again. A send that timed out earlier
// may still have been delivered, so a resend after a timeout can reach the
// donor twice; emailSent stays false until a send is confirmed.
func (s *CouponServiceImpl) ResendEmail(ctx context.Context, id primitive.ObjectID) error {
	coupon, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if coupon.Status != models.CouponStatusActive {
		return fmt.Errorf("coupon %s is %s: %w", coupon.Code, coupon.Status, ErrInvalidState)
	}

	log := logrus.WithFields(logrus.Fields{"coupon_id": id.Hex(), "code": coupon.Code})
	if !s.sendCouponEmail(ctx, coupon, s.fundraiserTitle(ctx, coupon.FundraiserID, ""), log) {
		return fmt.Errorf("coupon %s: %w", coupon.Code, ErrNotificationFailed)
	}
	log.Info("ResendEmail: Coupon email resent")
	return nil
}

// Delete removes a coupon. Coupons with an award are kept so every award
// still points at its used coupon.
func (s *CouponServiceImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	_, err := s.awardRepo.FindByCouponID(ctx, id)
	if err == nil {
		return fmt.Errorf("coupon %s has an award: %w", id.Hex(), ErrInvalidState)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to check award for coupon: %w", err)
	}

	if err := s.couponRepo.Delete(ctx, id); err != nil {
		return notFound(err, "coupon "+id.Hex())
	}
	logrus.WithField("coupon_id", id.Hex()).Warn("Delete: Coupon deleted by admin")
	return nil
}
