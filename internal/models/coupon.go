package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CouponStatus represents the lifecycle state of a coupon
type CouponStatus string

const (
	CouponStatusActive  CouponStatus = "active"
	CouponStatusUsed    CouponStatus = "used"
	CouponStatusExpired CouponStatus = "expired"
)

// Valid reports whether s is one of the known coupon states.
func (s CouponStatus) Valid() bool {
	switch s {
	case CouponStatusActive, CouponStatusUsed, CouponStatusExpired:
		return true
	}
	return false
}

// Coupon is the reward code issued for a completed donation.
// Status only moves forward: active -> used, or active -> expired.
type Coupon struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Code           string              `bson:"code" json:"code"`
	DonationID     primitive.ObjectID  `bson:"donation" json:"donationId"`
	FundraiserID   primitive.ObjectID  `bson:"fundraiser" json:"fundraiserId"`
	UserID         *primitive.ObjectID `bson:"user,omitempty" json:"userId,omitempty"` // nil for anonymous donors
	DonorName      string              `bson:"donorName" json:"donorName"`
	DonorEmail     string              `bson:"donorEmail" json:"donorEmail"`
	DonationAmount float64             `bson:"donationAmount" json:"donationAmount"` // excludes tip
	Currency       string              `bson:"currency" json:"currency"`
	Status         CouponStatus        `bson:"status" json:"status"`
	ExpiresAt      time.Time           `bson:"expiresAt" json:"expiresAt"`
	UsedAt         *time.Time          `bson:"usedAt,omitempty" json:"usedAt,omitempty"`
	EmailSent      bool                `bson:"emailSent" json:"emailSent"`
	EmailSentAt    *time.Time          `bson:"emailSentAt,omitempty" json:"emailSentAt,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Eligible reports whether the coupon can take part in a draw at the given time.
func (c *Coupon) Eligible(now time.Time) bool {
	return c.Status == CouponStatusActive && c.ExpiresAt.After(now)
}

// IssueCouponRequest is what the donation flow hands over once a donation completes.
type IssueCouponRequest struct {
	DonationID      primitive.ObjectID  `json:"donationId" binding:"required"`
	FundraiserID    primitive.ObjectID  `json:"fundraiserId" binding:"required"`
	UserID          *primitive.ObjectID `json:"userId,omitempty"`
	DonorEmail      string              `json:"donorEmail" binding:"required,email"`
	DonorName       string              `json:"donorName" binding:"required"`
	DonationAmount  float64             `json:"donationAmount" binding:"required,gt=0"`
	Currency        string              `json:"currency,omitempty" binding:"omitempty,len=3"`
	FundraiserTitle string              `json:"fundraiserTitle"`
}

// IssueCouponResult is returned to the donation flow.
type IssueCouponResult struct {
	Code       string    `json:"code"`
	DonorEmail string    `json:"donorEmail"`
	EmailSent  bool      `json:"emailSent"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// CouponFilter narrows coupon queries. Zero values mean "no constraint".
type CouponFilter struct {
	FundraiserID *primitive.ObjectID
	Status       CouponStatus
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	// EligibleAt restricts to active coupons expiring after the given instant.
	EligibleAt *time.Time
}

// CouponStats counts coupons per status.
type CouponStats struct {
	Active  int64 `json:"active"`
	Used    int64 `json:"used"`
	Expired int64 `json:"expired"`
	Total   int64 `json:"total"`
}
