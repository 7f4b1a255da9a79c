package domain

import "time"

// Gateway-side statuses of a payment transaction.
const (
	PaymentPending  = "pending"
	PaymentVerified = "verified"
	PaymentFailed   = "failed"
)

// PaymentTransaction records one charge attempt against the gateway.
// Created on initiation, finalized exactly once on verification; a finalized
// row is immutable.
type PaymentTransaction struct {
	TransactionRef string     `json:"transactionRef"`
	SellerID       string     `json:"sellerId"`
	Tier           Tier       `json:"tier"`
	AmountMinor    int64      `json:"amountMinor"`
	Currency       string     `json:"currency"`
	GatewayStatus  string     `json:"gatewayStatus"`
	CreatedAt      time.Time  `json:"createdAt"`
	FinalizedAt    *time.Time `json:"finalizedAt,omitempty"`
}

// Finalized reports whether the transaction has reached a terminal gateway status.
func (t *PaymentTransaction) Finalized() bool {
	return t.FinalizedAt != nil
}
