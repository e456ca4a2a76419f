package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fundraiser is the campaign donations are made to. Only the fields the
// prize draw reads are mapped here; the collection is owned by the
// fundraiser module.
type Fundraiser struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title     string             `bson:"title" json:"title"`
	Slug      string             `bson:"slug,omitempty" json:"slug,omitempty"`
	Status    string             `bson:"status,omitempty" json:"status,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// FundraiserSummary is the fundraiser view embedded in award responses.
type FundraiserSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Title string             `json:"title"`
	Slug  string             `json:"slug,omitempty"`
}

// Summary returns the embedded view of the fundraiser.
func (f *Fundraiser) Summary() *FundraiserSummary {
	return &FundraiserSummary{ID: f.ID, Title: f.Title, Slug: f.Slug}
}
