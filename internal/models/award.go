package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Award is the permanent record of a coupon announced as a winner.
// Donation and donor fields are a snapshot taken at announcement time.
type Award struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	CouponID       primitive.ObjectID  `bson:"coupon" json:"couponId"`
	CouponCode     string              `bson:"couponCode" json:"couponCode"`
	DonationID     primitive.ObjectID  `bson:"donation" json:"donationId"`
	FundraiserID   primitive.ObjectID  `bson:"fundraiser" json:"fundraiserId"`
	UserID         *primitive.ObjectID `bson:"user,omitempty" json:"userId,omitempty"`
	DonorName      string              `bson:"donorName" json:"donorName"`
	DonorEmail     string              `bson:"donorEmail" json:"donorEmail"`
	DonationAmount float64             `bson:"donationAmount" json:"donationAmount"`
	Currency       string              `bson:"currency" json:"currency"`
	SelectedAt     time.Time           `bson:"selectedAt" json:"selectedAt"`
	AnnouncedAt    time.Time           `bson:"announcedAt" json:"announcedAt"`
	AnnouncedBy    primitive.ObjectID  `bson:"announcedBy" json:"announcedBy"`
	Notes          string              `bson:"notes,omitempty" json:"notes,omitempty"`
	EmailSent      bool                `bson:"emailSent" json:"emailSent"`
	EmailSentAt    *time.Time          `bson:"emailSentAt,omitempty" json:"emailSentAt,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// AwardDetails is an award populated with its fundraiser and announcer.
type AwardDetails struct {
	Award
	Fundraiser *FundraiserSummary `json:"fundraiser,omitempty"`
	Announcer  *UserSummary       `json:"announcer,omitempty"`
}

// AnnounceRequest carries the admin's announcement of a selected coupon.
type AnnounceRequest struct {
	CouponID    primitive.ObjectID `json:"couponId" binding:"required"`
	AnnouncerID primitive.ObjectID `json:"-"`
	SelectedAt  *time.Time         `json:"selectedAt,omitempty"`
	Notes       string             `json:"notes,omitempty" binding:"max=1000"`
}

// AwardFilter narrows award listings.
type AwardFilter struct {
	FundraiserID *primitive.ObjectID
}
