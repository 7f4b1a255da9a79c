package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/campusmarket/backend/internal/domain"
	"github.com/campusmarket/backend/internal/repository"
	"github.com/campusmarket/backend/pkg/payment"
)

// SubscriptionStore is the persistence surface the resolver needs.
type SubscriptionStore interface {
	FindLiveBySeller(ctx context.Context, sellerID string, now time.Time) ([]*domain.Subscription, error)
	FindByTransactionRef(ctx context.Context, ref string) (*domain.Subscription, error)
	ApplyActivation(ctx context.Context, sellerID string, tier domain.Tier, transactionRef string, now time.Time) (*domain.Subscription, bool, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

// PaymentStore records payment transactions.
type PaymentStore interface {
	Create(ctx context.Context, t *domain.PaymentTransaction) error
	FindByRef(ctx context.Context, ref string) (*domain.PaymentTransaction, error)
	Finalize(ctx context.Context, ref, status string, at time.Time) error
}

// SellerStore resolves seller identities for charge initiation.
type SellerStore interface {
	FindByID(ctx context.Context, id string) (*domain.Seller, error)
}

// EntitlementService resolves which tier a seller currently holds and owns
// the single write path into subscription records.
type EntitlementService struct {
	subs          SubscriptionStore
	payments      PaymentStore
	sellers       SellerStore
	gateway       payment.Gateway
	cache         *repository.EntitlementCache
	verifyTimeout time.Duration
	now           func() time.Time
}

// NewEntitlementService creates a new EntitlementService. cache may be nil.
func NewEntitlementService(subs SubscriptionStore, payments PaymentStore, sellers SellerStore, gateway payment.Gateway, cache *repository.EntitlementCache, verifyTimeout time.Duration) *EntitlementService {
	if verifyTimeout <= 0 {
		verifyTimeout = 10 * time.Second
	}
	return &EntitlementService{
		subs:          subs,
		payments:      payments,
		sellers:       sellers,
		gateway:       gateway,
		cache:         cache,
		verifyTimeout: verifyTimeout,
		now:           time.Now,
	}
}

// CurrentTier resolves the seller's active tier. Starter is the fail-closed
// default; when several subscriptions are somehow live at once the higher
// tier wins. Expiry is re-derived from expiresAt on every call, so a lagging
// sweep never grants a dead tier.
func (s *EntitlementService) CurrentTier(ctx context.Context, sellerID string) (*domain.EntitlementStatus, error) {
	if cached, ok := s.cache.Get(ctx, sellerID); ok {
		return cached, nil
	}

	now := s.now()
	subs, err := s.subs.FindLiveBySeller(ctx, sellerID, now)
	if err != nil {
		return nil, domain.ErrInternal("failed to resolve entitlement", err)
	}

	status := &domain.EntitlementStatus{Tier: domain.TierStarter}
	for _, sub := range subs {
		if !sub.Live(now) {
			continue
		}
		if sub.Tier.Rank() > status.Tier.Rank() {
			expires := sub.ExpiresAt
			status.Tier = sub.Tier
			status.ExpiresAt = &expires
		}
	}

	s.cache.Set(ctx, sellerID, *status, now)
	return status, nil
}

// Initiate creates a charge for a paid tier and records the pending
// transaction. The gateway reference comes back to Activate later.
func (s *EntitlementService) Initiate(ctx context.Context, sellerID string, tier domain.Tier) (*domain.InitiateResponse, error) {
	if !tier.Paid() {
		return nil, domain.ErrBadRequest("starter tier needs no payment")
	}

	seller, err := s.sellers.FindByID(ctx, sellerID)
	if err != nil {
		return nil, domain.ErrInternal("failed to load seller", err)
	}
	if seller == nil {
		return nil, domain.ErrNotFound("seller not found")
	}

	info := domain.GetTierInfo(tier)
	result, err := s.gateway.Initiate(ctx, payment.InitiateRequest{
		SellerEmail: seller.Email,
		AmountMinor: info.PriceMinor,
		Currency:    info.Currency,
		Tier:        string(tier),
	})
	if err != nil {
		return nil, mapGatewayError(err)
	}

	txn := &domain.PaymentTransaction{
		TransactionRef: result.TransactionRef,
		SellerID:       sellerID,
		Tier:           tier,
		AmountMinor:    info.PriceMinor,
		Currency:       info.Currency,
		GatewayStatus:  domain.PaymentPending,
		CreatedAt:      s.now(),
	}
	if err := s.payments.Create(ctx, txn); err != nil {
		return nil, domain.ErrInternal("failed to record payment transaction", err)
	}

	return &domain.InitiateResponse{
		TransactionRef: result.TransactionRef,
		AmountMinor:    info.PriceMinor,
		Currency:       info.Currency,
	}, nil
}

// Activate verifies a transaction with the gateway and, on a confirmed
// payment at the tier's published price, creates or extends the seller's
// subscription. Replaying the same transactionRef is a no-op that returns
// the same subscription; a failed or missing confirmation mutates nothing.
func (s *EntitlementService) Activate(ctx context.Context, sellerID string, tier domain.Tier, transactionRef string) (*domain.Subscription, error) {
	if !tier.Paid() {
		return nil, domain.ErrBadRequest("starter tier needs no activation")
	}

	txn, err := s.payments.FindByRef(ctx, transactionRef)
	if err != nil {
		return nil, domain.ErrInternal("failed to load payment transaction", err)
	}
	if txn != nil {
		if txn.SellerID != sellerID {
			return nil, domain.ErrForbidden("transaction belongs to another seller")
		}
		if txn.Tier != tier {
			return nil, domain.ErrBadRequest("transaction was initiated for a different tier")
		}
	}

	verifyCtx, cancel := context.WithTimeout(ctx, s.verifyTimeout)
	defer cancel()

	result, err := s.gateway.Verify(verifyCtx, transactionRef)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrPendingRetry):
			return nil, domain.ErrConflict("payment still processing, retry shortly")
		case errors.Is(err, payment.ErrNotFound):
			return nil, domain.ErrPaymentRequired("payment not confirmed: unknown transaction")
		case errors.Is(err, payment.ErrInvalidRequest):
			return nil, domain.ErrBadRequest("invalid transaction reference")
		default:
			return nil, mapGatewayError(err)
		}
	}

	now := s.now()
	if result.Status != payment.StatusVerified {
		if err := s.payments.Finalize(ctx, transactionRef, domain.PaymentFailed, now); err != nil {
			log.Printf("failed to record failed payment %s: %v", transactionRef, err)
		}
		return nil, domain.ErrPaymentRequired("payment not confirmed")
	}

	info := domain.GetTierInfo(tier)
	if result.AmountMinor != info.PriceMinor || result.Currency != info.Currency {
		// Gateway confirmed a charge, but not the one this tier costs.
		if err := s.payments.Finalize(ctx, transactionRef, domain.PaymentVerified, now); err != nil {
			log.Printf("failed to record payment %s: %v", transactionRef, err)
		}
		return nil, domain.ErrPaymentRequired("payment amount does not match tier price")
	}

	if err := s.payments.Finalize(ctx, transactionRef, domain.PaymentVerified, now); err != nil {
		return nil, domain.ErrInternal("failed to finalize payment transaction", err)
	}

	sub, applied, err := s.subs.ApplyActivation(ctx, sellerID, tier, transactionRef, now)
	if err != nil {
		return nil, domain.ErrInternal("failed to apply activation", err)
	}
	if applied {
		s.cache.Invalidate(ctx, sellerID)
	}
	return sub, nil
}

// ExpireDue marks overdue subscriptions expired. Idempotent and safe to run
// on any cadence; CurrentTier never depends on it.
func (s *EntitlementService) ExpireDue(ctx context.Context) (int64, error) {
	n, err := s.subs.ExpireDue(ctx, s.now())
	if err != nil {
		return 0, domain.ErrInternal("failed to expire subscriptions", err)
	}
	return n, nil
}

// StartSweep runs ExpireDue on a ticker until ctx is cancelled.
func (s *EntitlementService) StartSweep(ctx context.Context, interval time.Duration) {
	go func() {
		s.sweep(ctx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

func (s *EntitlementService) sweep(ctx context.Context) {
	n, err := s.ExpireDue(ctx)
	if err != nil {
		log.Printf("[sweep] failed to expire subscriptions: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[sweep] expired %d subscription(s)", n)
	}
}

func mapGatewayError(err error) *domain.AppError {
	switch {
	case errors.Is(err, payment.ErrInvalidRequest):
		return domain.ErrBadRequest(err.Error())
	case errors.Is(err, payment.ErrGatewayUnavailable):
		return domain.ErrUnavailable("payment gateway unavailable", err)
	default:
		return domain.ErrInternal("payment gateway error", err)
	}
}
