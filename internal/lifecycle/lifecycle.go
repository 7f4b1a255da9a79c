// Package lifecycle derives a listing's display state from authoritative
// server time. Nothing here is persisted; expiry is a read-time projection.
package lifecycle

import (
	"time"

	"github.com/campusmarket/backend/internal/domain"
)

// State is the TTL-derived lifecycle state of a listing.
type State string

const (
	StateActive  State = "active"
	StateExpired State = "expired"
)

// ListingView is a listing annotated with its remaining visibility window.
type ListingView struct {
	domain.Listing
	State       State  `json:"state"`
	SecondsLeft int64  `json:"secondsLeft"`
	DaysLeft    int64  `json:"daysLeft"`
	HoursLeft   int64  `json:"hoursLeft"`
	MinutesLeft int64  `json:"minutesLeft"`
	Display     string `json:"display"`
}

// Annotate projects the lifecycle view of a listing at the given instant.
// Pure function of (now, listing.CreatedAt, listing.Tier): remaining time
// floors at zero and the day/hour/minute split truncates, never rounds.
// A sold listing displays as sold regardless of the countdown, but the
// countdown keeps decrementing underneath.
func Annotate(now time.Time, l domain.Listing) ListingView {
	remaining := l.Tier.ListingTTL() - now.Sub(l.CreatedAt)

	secondsLeft := int64(remaining / time.Second)
	if secondsLeft < 0 {
		secondsLeft = 0
	}

	days := secondsLeft / 86400
	rem := secondsLeft % 86400
	hours := rem / 3600
	minutes := (rem % 3600) / 60

	state := StateActive
	if secondsLeft == 0 {
		state = StateExpired
	}

	display := string(state)
	if l.SoldOut() {
		display = "sold"
	}

	return ListingView{
		Listing:     l,
		State:       state,
		SecondsLeft: secondsLeft,
		DaysLeft:    days,
		HoursLeft:   hours,
		MinutesLeft: minutes,
		Display:     display,
	}
}

// AnnotateAll projects a batch of listings against one shared instant so a
// single dashboard response is internally consistent.
func AnnotateAll(now time.Time, listings []*domain.Listing) []ListingView {
	views := make([]ListingView, len(listings))
	for i, l := range listings {
		views[i] = Annotate(now, *l)
	}
	return views
}
