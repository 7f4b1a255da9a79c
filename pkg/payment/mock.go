package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MockGateway is an in-memory processor for tests and local development.
// Charges start pending; tests finalize them with Resolve.
type MockGateway struct {
	mu      sync.Mutex
	charges map[string]*VerifyResult
}

func NewMockGateway() *MockGateway {
	return &MockGateway{charges: make(map[string]*VerifyResult)}
}

func (g *MockGateway) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	if req.AmountMinor <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	if !supportedCurrencies[req.Currency] {
		return nil, fmt.Errorf("%w: unsupported currency %q", ErrInvalidRequest, req.Currency)
	}

	ref := "mock-" + uuid.New().String()
	g.mu.Lock()
	g.charges[ref] = &VerifyResult{
		Status:      StatusPending,
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		SellerEmail: req.SellerEmail,
	}
	g.mu.Unlock()

	return &InitiateResult{TransactionRef: ref}, nil
}

func (g *MockGateway) Verify(ctx context.Context, transactionRef string) (*VerifyResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	charge, ok := g.charges[transactionRef]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, transactionRef)
	}
	if charge.Status == StatusPending {
		return nil, fmt.Errorf("%w: %s", ErrPendingRetry, transactionRef)
	}
	result := *charge
	return &result, nil
}

// Resolve finalizes a charge with the given terminal status. The first
// resolution wins; later calls are ignored, matching processor idempotency.
func (g *MockGateway) Resolve(transactionRef, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if charge, ok := g.charges[transactionRef]; ok && charge.Status == StatusPending {
		charge.Status = status
	}
}

// Seed registers an already-finalized charge under a known reference.
func (g *MockGateway) Seed(transactionRef string, result VerifyResult) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.charges[transactionRef] = &result
}
