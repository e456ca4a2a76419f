package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WeightedDonor is one entry of a fundraiser's donor pool. It is computed on
// demand and never persisted.
type WeightedDonor struct {
	CouponID       primitive.ObjectID `json:"couponId"`
	Code           string             `json:"code"`
	DonorName      string             `json:"donorName"`
	DonorEmail     string             `json:"donorEmail"`
	DonationAmount float64            `json:"donationAmount"`
	Probability    float64            `json:"probability"` // percent, 2 decimals
}

// DonorPool is the weighted pool for a fundraiser.
type DonorPool struct {
	Donors       []WeightedDonor `json:"donors"`
	TotalAmount  float64         `json:"totalAmount"`
	TotalCoupons int             `json:"totalCoupons"`
}

// WeightedSelection is the advisory outcome of a weighted draw. Nothing is
// committed until the coupon is announced.
type WeightedSelection struct {
	Winner       WeightedDonor `json:"winner"`
	TotalAmount  float64       `json:"totalAmount"`
	TotalCoupons int           `json:"totalCoupons"`
	SelectedAt   time.Time     `json:"selectedAt"`
}

// RandomSelectionFilter narrows the flat random draw.
type RandomSelectionFilter struct {
	FundraiserID *primitive.ObjectID `json:"fundraiserId,omitempty"`
	From         *time.Time          `json:"from,omitempty"`
	To           *time.Time          `json:"to,omitempty"`
}
