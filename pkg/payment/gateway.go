package payment

import "context"

// Gateway-reported transaction statuses.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusFailed   = "failed"
)

// InitiateRequest describes a charge to create on the processor.
type InitiateRequest struct {
	SellerEmail string
	AmountMinor int64
	Currency    string
	Tier        string
}

// InitiateResult carries the processor's reference for a new charge.
type InitiateResult struct {
	TransactionRef string
}

// VerifyResult is the processor's view of a transaction. Once the status is
// terminal (verified or failed) repeated Verify calls return the same result.
type VerifyResult struct {
	Status      string
	AmountMinor int64
	Currency    string
	SellerEmail string
}

// Gateway is the client for an external payment processor. It performs no
// persistence of its own; recording the outcome is the caller's job.
type Gateway interface {
	// Initiate creates a charge and returns its reference.
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error)
	// Verify polls the processor for the transaction's status. Idempotent:
	// a finalized transaction always yields the same terminal result.
	Verify(ctx context.Context, transactionRef string) (*VerifyResult, error)
}
