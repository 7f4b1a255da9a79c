package lifecycle

import (
	"testing"
	"time"

	"github.com/campusmarket/backend/internal/domain"
)

func itemListing(tier domain.Tier, createdAt time.Time) domain.Listing {
	return domain.Listing{
		ID:        "l-1",
		SellerID:  "s-1",
		Tier:      tier,
		CreatedAt: createdAt,
		Item:      &domain.ItemDetails{Title: "calculus textbook", PriceMinor: 1200},
	}
}

func TestAnnotateStarterNearExpiry(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := itemListing(domain.TierStarter, created)

	now := created.Add(23*time.Hour + 59*time.Minute)
	view := Annotate(now, l)
	if view.State != StateActive {
		t.Fatalf("expected active at 23h59m, got %s", view.State)
	}
	if view.DaysLeft != 0 || view.HoursLeft != 0 || view.MinutesLeft != 1 {
		t.Fatalf("expected 0d0h1m left, got %dd%dh%dm", view.DaysLeft, view.HoursLeft, view.MinutesLeft)
	}

	now = created.Add(24*time.Hour + 1*time.Minute)
	view = Annotate(now, l)
	if view.State != StateExpired {
		t.Fatalf("expected expired at 24h01m, got %s", view.State)
	}
	if view.SecondsLeft != 0 {
		t.Fatalf("expected secondsLeft 0 past expiry, got %d", view.SecondsLeft)
	}
}

func TestAnnotateTTLPerTier(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		tier domain.Tier
		ttl  time.Duration
	}{
		{domain.TierStarter, 24 * time.Hour},
		{domain.TierStandard, 48 * time.Hour},
		{domain.TierPremium, 72 * time.Hour},
	}
	for _, tc := range cases {
		l := domain.Listing{Tier: tc.tier, CreatedAt: created}
		if tc.tier == domain.TierPremium {
			l.Storefront = &domain.StorefrontDetails{BusinessName: "print shop"}
		} else {
			l.Item = &domain.ItemDetails{Title: "x", PriceMinor: 100}
		}

		view := Annotate(created, l)
		if got := time.Duration(view.SecondsLeft) * time.Second; got != tc.ttl {
			t.Fatalf("%s: expected full TTL %s at creation, got %s", tc.tier, tc.ttl, got)
		}

		view = Annotate(created.Add(tc.ttl), l)
		if view.State != StateExpired || view.SecondsLeft != 0 {
			t.Fatalf("%s: expected expired exactly at TTL, got %s with %ds left", tc.tier, view.State, view.SecondsLeft)
		}
	}
}

func TestAnnotateMonotonic(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	l := itemListing(domain.TierStandard, created)

	prev := Annotate(created, l).SecondsLeft
	for step := time.Hour; step <= 50*time.Hour; step += time.Hour {
		cur := Annotate(created.Add(step), l).SecondsLeft
		if cur > prev {
			t.Fatalf("secondsLeft increased from %d to %d at +%s", prev, cur, step)
		}
		if cur < 0 {
			t.Fatalf("secondsLeft went negative: %d at +%s", cur, step)
		}
		if prev > 0 && cur == prev {
			t.Fatalf("secondsLeft did not decrease at +%s (still %d)", step, cur)
		}
		prev = cur
	}
	if prev != 0 {
		t.Fatalf("expected secondsLeft to settle at 0, got %d", prev)
	}
}

func TestAnnotateTruncatesDecomposition(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	l := itemListing(domain.TierStandard, created)

	// 48h TTL minus 1h30m59s elapsed = 46h29m1s left: minutes truncate, never round.
	view := Annotate(created.Add(1*time.Hour+30*time.Minute+59*time.Second), l)
	if view.DaysLeft != 1 || view.HoursLeft != 22 || view.MinutesLeft != 29 {
		t.Fatalf("expected 1d22h29m, got %dd%dh%dm", view.DaysLeft, view.HoursLeft, view.MinutesLeft)
	}
}

func TestAnnotateSoldPrecedence(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	l := itemListing(domain.TierStarter, created)
	l.Item.SoldOut = true

	// Sold wins the display, but the countdown keeps running underneath.
	view := Annotate(created.Add(1*time.Hour), l)
	if view.Display != "sold" {
		t.Fatalf("expected sold display, got %s", view.Display)
	}
	if view.State != StateActive || view.SecondsLeft != int64(23*3600) {
		t.Fatalf("expected countdown to keep running, got state=%s secondsLeft=%d", view.State, view.SecondsLeft)
	}

	view = Annotate(created.Add(25*time.Hour), l)
	if view.Display != "sold" || view.State != StateExpired {
		t.Fatalf("expected sold display over expired state, got display=%s state=%s", view.Display, view.State)
	}
}

func TestAnnotateAllSharedInstant(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := itemListing(domain.TierStarter, created)
	b := itemListing(domain.TierStarter, created)
	b.ID = "l-2"

	views := AnnotateAll(created.Add(time.Hour), []*domain.Listing{&a, &b})
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	if views[0].SecondsLeft != views[1].SecondsLeft {
		t.Fatalf("expected identical countdowns for identical listings, got %d and %d",
			views[0].SecondsLeft, views[1].SecondsLeft)
	}
}
