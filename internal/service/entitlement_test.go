package service

import (
	"context"
	"testing"
	"time"

	"github.com/campusmarket/backend/internal/domain"
	"github.com/campusmarket/backend/pkg/payment"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type entitlementFixture struct {
	svc      *EntitlementService
	subs     *fakeSubscriptionStore
	payments *fakePaymentStore
	gateway  *payment.MockGateway
}

func newEntitlementFixture() *entitlementFixture {
	subs := newFakeSubscriptionStore()
	payments := newFakePaymentStore()
	sellers := newFakeSellerStore(&domain.Seller{ID: "seller-1", Email: "ada@campus.edu"})
	gateway := payment.NewMockGateway()

	svc := NewEntitlementService(subs, payments, sellers, gateway, nil, time.Second)
	svc.now = func() time.Time { return testNow }

	return &entitlementFixture{svc: svc, subs: subs, payments: payments, gateway: gateway}
}

func (fx *entitlementFixture) initiateAndPay(t *testing.T, tier domain.Tier) string {
	t.Helper()
	resp, err := fx.svc.Initiate(context.Background(), "seller-1", tier)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	fx.gateway.Resolve(resp.TransactionRef, payment.StatusVerified)
	return resp.TransactionRef
}

func expectCode(t *testing.T, err error, code int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", code)
	}
	appErr, ok := domain.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %d, got %d (%s)", code, appErr.Code, appErr.Message)
	}
}

func TestCurrentTierDefaultsToStarter(t *testing.T) {
	fx := newEntitlementFixture()

	status, err := fx.svc.CurrentTier(context.Background(), "seller-1")
	if err != nil {
		t.Fatalf("current tier: %v", err)
	}
	if status.Tier != domain.TierStarter {
		t.Fatalf("expected starter, got %s", status.Tier)
	}
	if status.ExpiresAt != nil {
		t.Fatalf("expected nil expiry for starter, got %v", status.ExpiresAt)
	}
}

func TestInitiateRecordsPendingTransaction(t *testing.T) {
	fx := newEntitlementFixture()

	resp, err := fx.svc.Initiate(context.Background(), "seller-1", domain.TierStandard)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if resp.AmountMinor != 500 || resp.Currency != "USD" {
		t.Fatalf("expected standard price 500 USD, got %d %s", resp.AmountMinor, resp.Currency)
	}

	txn, _ := fx.payments.FindByRef(context.Background(), resp.TransactionRef)
	if txn == nil {
		t.Fatal("expected pending transaction recorded")
	}
	if txn.GatewayStatus != domain.PaymentPending || txn.Finalized() {
		t.Fatalf("expected pending unfinalized transaction, got %s finalized=%v", txn.GatewayStatus, txn.Finalized())
	}
}

func TestInitiateStarterRejected(t *testing.T) {
	fx := newEntitlementFixture()
	_, err := fx.svc.Initiate(context.Background(), "seller-1", domain.TierStarter)
	expectCode(t, err, 400)
}

func TestActivateGrantsTier(t *testing.T) {
	fx := newEntitlementFixture()
	ref := fx.initiateAndPay(t, domain.TierStandard)

	sub, err := fx.svc.Activate(context.Background(), "seller-1", domain.TierStandard, ref)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if sub.Tier != domain.TierStandard || sub.Status != domain.SubscriptionActive {
		t.Fatalf("unexpected subscription: %+v", sub)
	}
	if want := testNow.Add(domain.SubscriptionPeriod); !sub.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, sub.ExpiresAt)
	}

	status, err := fx.svc.CurrentTier(context.Background(), "seller-1")
	if err != nil {
		t.Fatalf("current tier: %v", err)
	}
	if status.Tier != domain.TierStandard || status.ExpiresAt == nil {
		t.Fatalf("expected standard entitlement, got %+v", status)
	}

	txn, _ := fx.payments.FindByRef(context.Background(), ref)
	if txn.GatewayStatus != domain.PaymentVerified || !txn.Finalized() {
		t.Fatalf("expected finalized verified transaction, got %+v", txn)
	}
}

func TestActivateIdempotentReplay(t *testing.T) {
	fx := newEntitlementFixture()
	ref := fx.initiateAndPay(t, domain.TierStandard)

	first, err := fx.svc.Activate(context.Background(), "seller-1", domain.TierStandard, ref)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	second, err := fx.svc.Activate(context.Background(), "seller-1", domain.TierStandard, ref)
	if err != nil {
		t.Fatalf("activate replay: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("replay created a new subscription: %s vs %s", first.ID, second.ID)
	}
	if !first.ExpiresAt.Equal(second.ExpiresAt) {
		t.Fatalf("replay extended the period: %v vs %v", first.ExpiresAt, second.ExpiresAt)
	}
	if n := fx.subs.activeCount("seller-1", domain.TierStandard); n != 1 {
		t.Fatalf("expected exactly one active subscription, got %d", n)
	}
}

func TestActivateRenewalStacking(t *testing.T) {
	fx := newEntitlementFixture()

	first, err := fx.svc.Activate(context.Background(), "seller-1", domain.TierStandard, fx.initiateAndPay(t, domain.TierStandard))
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	renewed, err := fx.svc.Activate(context.Background(), "seller-1", domain.TierStandard, fx.initiateAndPay(t, domain.TierStandard))
	if err != nil {
		t.Fatalf("renew: %v", err)
	}

	if renewed.ID != first.ID {
		t.Fatalf("renewal created a second record")
	}
	if want := first.ExpiresAt.Add(domain.SubscriptionPeriod); !renewed.ExpiresAt.Equal(want) {
		t.Fatalf("expected stacked expiry %v, got %v", want, renewed.ExpiresAt)
	}
	if n := fx.subs.activeCount("seller-1", domain.TierStandard); n != 1 {
		t.Fatalf("expected one active subscription after renewal, got %d", n)
	}
}

func TestActivateFailedPaymentMutatesNothing(t *testing.T) {
	fx := newEntitlementFixture()
	resp, err := fx.svc.Initiate(context.Background(), "seller-1", domain.TierPremium)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	fx.gateway.Resolve(resp.TransactionRef, payment.StatusFailed)

	_, err = fx.svc.Activate(context.Background(), "seller-1", domain.TierPremium, resp.TransactionRef)
	expectCode(t, err, 402)

	if n := fx.subs.activeCount("seller-1", domain.TierPremium); n != 0 {
		t.Fatalf("expected no subscription on failed payment, got %d", n)
	}
	status, _ := fx.svc.CurrentTier(context.Background(), "seller-1")
	if status.Tier != domain.TierStarter {
		t.Fatalf("expected starter after failed payment, got %s", status.Tier)
	}
}

func TestActivatePendingRetry(t *testing.T) {
	fx := newEntitlementFixture()
	resp, err := fx.svc.Initiate(context.Background(), "seller-1", domain.TierStandard)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	// Charge never resolved: still pending at the gateway.
	_, err = fx.svc.Activate(context.Background(), "seller-1", domain.TierStandard, resp.TransactionRef)
	expectCode(t, err, 409)

	// The transaction must stay open for a later retry.
	txn, _ := fx.payments.FindByRef(context.Background(), resp.TransactionRef)
	if txn.Finalized() {
		t.Fatalf("pending transaction must not be finalized, got %+v", txn)
	}
}

func TestActivateUnknownReference(t *testing.T) {
	fx := newEntitlementFixture()
	_, err := fx.svc.Activate(context.Background(), "seller-1", domain.TierStandard, "no-such-ref")
	expectCode(t, err, 402)
}

func TestActivateAmountMismatch(t *testing.T) {
	fx := newEntitlementFixture()
	fx.gateway.Seed("cheap-ref", payment.VerifyResult{
		Status:      payment.StatusVerified,
		AmountMinor: 1, // not the standard tier price
		Currency:    "USD",
		SellerEmail: "ada@campus.edu",
	})

	_, err := fx.svc.Activate(context.Background(), "seller-1", domain.TierStandard, "cheap-ref")
	expectCode(t, err, 402)
	if n := fx.subs.activeCount("seller-1", domain.TierStandard); n != 0 {
		t.Fatalf("expected no subscription on price mismatch, got %d", n)
	}
}

func TestActivateWrongSellerForbidden(t *testing.T) {
	fx := newEntitlementFixture()
	ref := fx.initiateAndPay(t, domain.TierStandard)

	_, err := fx.svc.Activate(context.Background(), "seller-2", domain.TierStandard, ref)
	expectCode(t, err, 403)
}

func TestCurrentTierHigherWins(t *testing.T) {
	fx := newEntitlementFixture()

	for _, tier := range []domain.Tier{domain.TierStandard, domain.TierPremium} {
		if _, err := fx.svc.Activate(context.Background(), "seller-1", tier, fx.initiateAndPay(t, tier)); err != nil {
			t.Fatalf("activate %s: %v", tier, err)
		}
	}

	status, err := fx.svc.CurrentTier(context.Background(), "seller-1")
	if err != nil {
		t.Fatalf("current tier: %v", err)
	}
	if status.Tier != domain.TierPremium {
		t.Fatalf("expected premium to win over standard, got %s", status.Tier)
	}
}

func TestCurrentTierIgnoresLaggingSweep(t *testing.T) {
	fx := newEntitlementFixture()
	ref := fx.initiateAndPay(t, domain.TierStandard)
	if _, err := fx.svc.Activate(context.Background(), "seller-1", domain.TierStandard, ref); err != nil {
		t.Fatalf("activate: %v", err)
	}

	// Move past the expiry without running the sweep: the status column still
	// says active, but CurrentTier must re-derive from expiresAt.
	fx.svc.now = func() time.Time { return testNow.Add(domain.SubscriptionPeriod + time.Minute) }

	status, err := fx.svc.CurrentTier(context.Background(), "seller-1")
	if err != nil {
		t.Fatalf("current tier: %v", err)
	}
	if status.Tier != domain.TierStarter {
		t.Fatalf("expected starter after expiry regardless of sweep, got %s", status.Tier)
	}
}

func TestExpireDueFlipsStatus(t *testing.T) {
	fx := newEntitlementFixture()
	ref := fx.initiateAndPay(t, domain.TierStandard)
	if _, err := fx.svc.Activate(context.Background(), "seller-1", domain.TierStandard, ref); err != nil {
		t.Fatalf("activate: %v", err)
	}

	fx.svc.now = func() time.Time { return testNow.Add(domain.SubscriptionPeriod + time.Minute) }

	n, err := fx.svc.ExpireDue(context.Background())
	if err != nil {
		t.Fatalf("expire due: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired subscription, got %d", n)
	}

	// A second sweep finds nothing: the job is idempotent.
	n, err = fx.svc.ExpireDue(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected idempotent sweep, got %d", n)
	}
}
