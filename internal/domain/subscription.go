package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subscription statuses. Records are never hard-deleted; expired rows stay for audit.
const (
	SubscriptionPending = "pending"
	SubscriptionActive  = "active"
	SubscriptionExpired = "expired"
)

// Subscription represents a seller's paid entitlement to a tier.
// Invariant: at most one active subscription per (sellerId, tier).
type Subscription struct {
	ID             string    `json:"id"`
	SellerID       string    `json:"sellerId"`
	Tier           Tier      `json:"tier"`
	Status         string    `json:"status"`
	ActivatedAt    time.Time `json:"activatedAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
	TransactionRef string    `json:"transactionRef"` // ref of the most recent activation
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Live reports whether the subscription still grants its tier at the given
// instant. The status column is advisory bookkeeping kept by the expiry sweep;
// entitlement checks re-derive truth from ExpiresAt.
func (s *Subscription) Live(now time.Time) bool {
	return s.Status != SubscriptionPending && now.Before(s.ExpiresAt)
}

// InitiateRequest is the validated input for starting a tier upgrade payment.
type InitiateRequest struct {
	Tier string `json:"tier" validate:"required,oneof=standard premium"`
}

// InitiateResponse returns the gateway reference the seller pays against.
type InitiateResponse struct {
	TransactionRef string `json:"transactionRef"`
	AmountMinor    int64  `json:"amountMinor"`
	Currency       string `json:"currency"`
}

// ActivateRequest is the validated input for confirming a paid upgrade.
type ActivateRequest struct {
	Tier           string `json:"tier" validate:"required,oneof=standard premium"`
	TransactionRef string `json:"transactionRef" validate:"required"`
}

// EntitlementStatus is the resolved tier for a seller. ExpiresAt is nil for Starter.
type EntitlementStatus struct {
	Tier      Tier       `json:"tier"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// NewSubscriptionID generates a new UUID for a subscription.
func NewSubscriptionID() string {
	return uuid.New().String()
}
