package domain

import (
	"fmt"
	"time"
)

// Tier identifies a seller's subscription level and the listing category it unlocks.
type Tier string

const (
	TierStarter  Tier = "starter"
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

// SubscriptionPeriod is the length of one paid subscription cycle.
const SubscriptionPeriod = 30 * 24 * time.Hour

// ParseTier validates a tier string from a URL segment or request body.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierStarter, TierStandard, TierPremium:
		return Tier(s), nil
	}
	return "", fmt.Errorf("unknown tier %q", s)
}

// Rank orders tiers so that the higher tier wins when a seller somehow
// holds more than one live subscription.
func (t Tier) Rank() int {
	switch t {
	case TierPremium:
		return 2
	case TierStandard:
		return 1
	default:
		return 0
	}
}

// ListingTTL is how long a listing published under this tier stays visible.
func (t Tier) ListingTTL() time.Duration {
	switch t {
	case TierPremium:
		return 72 * time.Hour
	case TierStandard:
		return 48 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Paid reports whether the tier requires a verified payment before activation.
func (t Tier) Paid() bool {
	return t == TierStandard || t == TierPremium
}

// TierInfo describes a tier for the public catalog endpoint.
type TierInfo struct {
	ID         Tier   `json:"id"`
	Name       string `json:"name"`
	PriceMinor int64  `json:"priceMinor"` // price in minor units (500 = $5.00)
	Currency   string `json:"currency"`
	TTLHours   int    `json:"ttlHours"`
	Popular    bool   `json:"popular"`
}

// AvailableTiers returns the full tier catalog.
func AvailableTiers() []TierInfo {
	return []TierInfo{
		{
			ID:         TierStarter,
			Name:       "Starter",
			PriceMinor: 0,
			Currency:   "USD",
			TTLHours:   24,
			Popular:    false,
		},
		{
			ID:         TierStandard,
			Name:       "Standard",
			PriceMinor: 500, // $5/mo
			Currency:   "USD",
			TTLHours:   48,
			Popular:    true,
		},
		{
			ID:         TierPremium,
			Name:       "Premium",
			PriceMinor: 1500, // $15/mo
			Currency:   "USD",
			TTLHours:   72,
			Popular:    false,
		},
	}
}

// GetTierInfo returns the catalog entry for a tier, defaulting to Starter.
func GetTierInfo(t Tier) TierInfo {
	for _, info := range AvailableTiers() {
		if info.ID == t {
			return info
		}
	}
	return AvailableTiers()[0]
}
