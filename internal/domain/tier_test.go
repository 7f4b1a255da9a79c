package domain

import (
	"testing"
	"time"
)

func TestParseTier(t *testing.T) {
	for _, raw := range []string{"starter", "standard", "premium"} {
		tier, err := ParseTier(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if string(tier) != raw {
			t.Fatalf("parse %q gave %q", raw, tier)
		}
	}
	if _, err := ParseTier("platinum"); err == nil {
		t.Fatal("expected error for unknown tier")
	}
	if _, err := ParseTier(""); err == nil {
		t.Fatal("expected error for empty tier")
	}
}

func TestTierRankOrdering(t *testing.T) {
	if !(TierStarter.Rank() < TierStandard.Rank() && TierStandard.Rank() < TierPremium.Rank()) {
		t.Fatalf("rank ordering broken: %d %d %d",
			TierStarter.Rank(), TierStandard.Rank(), TierPremium.Rank())
	}
}

func TestListingTTL(t *testing.T) {
	cases := map[Tier]time.Duration{
		TierStarter:  24 * time.Hour,
		TierStandard: 48 * time.Hour,
		TierPremium:  72 * time.Hour,
	}
	for tier, want := range cases {
		if got := tier.ListingTTL(); got != want {
			t.Fatalf("%s TTL = %v, want %v", tier, got, want)
		}
	}
}

func TestPaidTiers(t *testing.T) {
	if TierStarter.Paid() {
		t.Fatal("starter must be free")
	}
	if !TierStandard.Paid() || !TierPremium.Paid() {
		t.Fatal("standard and premium must be paid")
	}
}
