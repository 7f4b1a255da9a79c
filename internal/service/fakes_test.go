package service

import (
	"context"
	"sync"
	"time"

	"github.com/campusmarket/backend/internal/domain"
)

// In-memory stores mirroring the repository semantics, including the
// at-most-once activation claim and the expiry-derived liveness filter.

type fakeSubscriptionStore struct {
	mu          sync.Mutex
	subs        map[string]*domain.Subscription
	activations map[string][2]string // ref -> (sellerID, tier)
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{
		subs:        make(map[string]*domain.Subscription),
		activations: make(map[string][2]string),
	}
}

func (f *fakeSubscriptionStore) FindLiveBySeller(ctx context.Context, sellerID string, now time.Time) ([]*domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Subscription
	for _, sub := range f.subs {
		if sub.SellerID == sellerID && sub.Status != domain.SubscriptionPending && sub.ExpiresAt.After(now) {
			cp := *sub
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeSubscriptionStore) FindByTransactionRef(ctx context.Context, ref string) (*domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		if sub.TransactionRef == ref {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSubscriptionStore) ApplyActivation(ctx context.Context, sellerID string, tier domain.Tier, ref string, now time.Time) (*domain.Subscription, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if pair, seen := f.activations[ref]; seen {
		for _, sub := range f.subs {
			if sub.TransactionRef == ref {
				cp := *sub
				return &cp, false, nil
			}
		}
		for _, sub := range f.subs {
			if sub.SellerID == pair[0] && string(sub.Tier) == pair[1] {
				cp := *sub
				return &cp, false, nil
			}
		}
		return nil, false, nil
	}
	f.activations[ref] = [2]string{sellerID, string(tier)}

	for _, sub := range f.subs {
		if sub.SellerID == sellerID && sub.Tier == tier && sub.Status == domain.SubscriptionActive {
			base := now
			if sub.ExpiresAt.After(base) {
				base = sub.ExpiresAt
			}
			sub.ExpiresAt = base.Add(domain.SubscriptionPeriod)
			sub.TransactionRef = ref
			sub.UpdatedAt = now
			cp := *sub
			return &cp, true, nil
		}
	}

	sub := &domain.Subscription{
		ID:             domain.NewSubscriptionID(),
		SellerID:       sellerID,
		Tier:           tier,
		Status:         domain.SubscriptionActive,
		ActivatedAt:    now,
		ExpiresAt:      now.Add(domain.SubscriptionPeriod),
		TransactionRef: ref,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.subs[sub.ID] = sub
	cp := *sub
	return &cp, true, nil
}

func (f *fakeSubscriptionStore) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, sub := range f.subs {
		if sub.Status == domain.SubscriptionActive && !sub.ExpiresAt.After(now) {
			sub.Status = domain.SubscriptionExpired
			sub.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (f *fakeSubscriptionStore) activeCount(sellerID string, tier domain.Tier) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, sub := range f.subs {
		if sub.SellerID == sellerID && sub.Tier == tier && sub.Status == domain.SubscriptionActive {
			n++
		}
	}
	return n
}

type fakePaymentStore struct {
	mu   sync.Mutex
	txns map[string]*domain.PaymentTransaction
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{txns: make(map[string]*domain.PaymentTransaction)}
}

func (f *fakePaymentStore) Create(ctx context.Context, t *domain.PaymentTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.txns[t.TransactionRef] = &cp
	return nil
}

func (f *fakePaymentStore) FindByRef(ctx context.Context, ref string) (*domain.PaymentTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.txns[ref]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakePaymentStore) Finalize(ctx context.Context, ref, status string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.txns[ref]; ok && t.FinalizedAt == nil {
		t.GatewayStatus = status
		finalized := at
		t.FinalizedAt = &finalized
	}
	return nil
}

type fakeSellerStore struct {
	sellers map[string]*domain.Seller
}

func newFakeSellerStore(sellers ...*domain.Seller) *fakeSellerStore {
	f := &fakeSellerStore{sellers: make(map[string]*domain.Seller)}
	for _, s := range sellers {
		f.sellers[s.ID] = s
	}
	return f
}

func (f *fakeSellerStore) FindByID(ctx context.Context, id string) (*domain.Seller, error) {
	if s, ok := f.sellers[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

type fakeListingStore struct {
	mu       sync.Mutex
	listings map[domain.Tier]map[string]*domain.Listing
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{listings: map[domain.Tier]map[string]*domain.Listing{
		domain.TierStarter:  {},
		domain.TierStandard: {},
		domain.TierPremium:  {},
	}}
}

func (f *fakeListingStore) Insert(ctx context.Context, l *domain.Listing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *l
	f.listings[l.Tier][l.ID] = &cp
	return nil
}

func (f *fakeListingStore) List(ctx context.Context, tier domain.Tier, sellerID string) ([]*domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Listing
	for _, l := range f.listings[tier] {
		if sellerID == "" || l.SellerID == sellerID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeListingStore) FindByID(ctx context.Context, tier domain.Tier, id string) (*domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[tier][id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (f *fakeListingStore) Delete(ctx context.Context, tier domain.Tier, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.listings[tier], id)
	return nil
}

func (f *fakeListingStore) SetSoldOut(ctx context.Context, tier domain.Tier, id string, soldOut bool) (*domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[tier][id]
	if !ok {
		return nil, nil
	}
	l.Item.SoldOut = soldOut
	cp := *l
	return &cp, nil
}

type fakeTierResolver struct {
	tier domain.Tier
}

func (f *fakeTierResolver) CurrentTier(ctx context.Context, sellerID string) (*domain.EntitlementStatus, error) {
	return &domain.EntitlementStatus{Tier: f.tier}, nil
}
