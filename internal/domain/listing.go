package domain

import (
	"time"

	"github.com/google/uuid"
)

// Listing is a tagged variant: Tier is the discriminant, and exactly one of
// Item (starter/standard) or Storefront (premium) is set. Premium listings
// represent a standing service and carry no sold state.
type Listing struct {
	ID         string             `json:"id"`
	SellerID   string             `json:"sellerId"`
	Tier       Tier               `json:"tier"`
	Item       *ItemDetails       `json:"item,omitempty"`
	Storefront *StorefrontDetails `json:"storefront,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
}

// ItemDetails is the payload of a starter or standard listing.
type ItemDetails struct {
	Title      string `json:"title"`
	PriceMinor int64  `json:"priceMinor"`
	SoldOut    bool   `json:"soldOut"`
	// Urgent is declared by the seller; it is independent of the
	// TTL-derived lifecycle state.
	Urgent bool `json:"urgent"`
}

// StorefrontDetails is the payload of a premium listing.
type StorefrontDetails struct {
	BusinessName string `json:"businessName"`
	Address      string `json:"address"`
}

// SoldOut reports the sold flag for tiers that have one. Premium never does.
func (l *Listing) SoldOut() bool {
	return l.Item != nil && l.Item.SoldOut
}

// PublishRequest is the validated input for publishing a listing. Which fields
// are required depends on the tier in the URL; the service enforces that split.
type PublishRequest struct {
	Title        string `json:"title" validate:"omitempty,min=1,max=150"`
	PriceMinor   int64  `json:"priceMinor" validate:"omitempty,gte=0"`
	Urgent       bool   `json:"urgent"`
	BusinessName string `json:"businessName" validate:"omitempty,min=1,max=150"`
	Address      string `json:"address" validate:"omitempty,max=300"`
}

// ToggleSoldRequest is the validated input for flipping the sold flag.
type ToggleSoldRequest struct {
	SoldOut bool `json:"soldOut"`
}

// NewListingID generates a new UUID for a listing.
func NewListingID() string {
	return uuid.New().String()
}
