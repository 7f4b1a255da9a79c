package service

import (
	"context"
	"time"

	"github.com/campusmarket/backend/internal/domain"
	"github.com/campusmarket/backend/internal/lifecycle"
)

// ListingStore is the persistence surface the aggregator needs.
type ListingStore interface {
	Insert(ctx context.Context, l *domain.Listing) error
	List(ctx context.Context, tier domain.Tier, sellerID string) ([]*domain.Listing, error)
	FindByID(ctx context.Context, tier domain.Tier, id string) (*domain.Listing, error)
	Delete(ctx context.Context, tier domain.Tier, id string) error
	SetSoldOut(ctx context.Context, tier domain.Tier, id string, soldOut bool) (*domain.Listing, error)
}

// TierResolver gates publishing on the seller's current entitlement.
type TierResolver interface {
	CurrentTier(ctx context.Context, sellerID string) (*domain.EntitlementStatus, error)
}

// DashboardService aggregates a seller's listings across the three tier
// collections and routes mutations to the right one.
type DashboardService struct {
	listings    ListingStore
	entitlement TierResolver
	now         func() time.Time
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(listings ListingStore, entitlement TierResolver) *DashboardService {
	return &DashboardService{
		listings:    listings,
		entitlement: entitlement,
		now:         time.Now,
	}
}

// DashboardResponse holds the three buckets separately; each category has its
// own semantics (premium has no sold state), so callers get no merged order.
type DashboardResponse struct {
	Starter  []lifecycle.ListingView `json:"starter"`
	Standard []lifecycle.ListingView `json:"standard"`
	Premium  []lifecycle.ListingView `json:"premium"`
}

// ListForSeller reads all three collections for one seller and annotates
// every record against a single shared instant.
func (s *DashboardService) ListForSeller(ctx context.Context, sellerID string) (*DashboardResponse, error) {
	now := s.now()
	resp := &DashboardResponse{}

	for _, bucket := range []struct {
		tier domain.Tier
		dst  *[]lifecycle.ListingView
	}{
		{domain.TierStarter, &resp.Starter},
		{domain.TierStandard, &resp.Standard},
		{domain.TierPremium, &resp.Premium},
	} {
		listings, err := s.listings.List(ctx, bucket.tier, sellerID)
		if err != nil {
			return nil, domain.ErrInternal("failed to load listings", err)
		}
		*bucket.dst = lifecycle.AnnotateAll(now, listings)
	}

	return resp, nil
}

// Browse returns a tier's listings, optionally scoped to one seller, annotated
// with lifecycle state at server time.
func (s *DashboardService) Browse(ctx context.Context, tier domain.Tier, sellerID string) ([]lifecycle.ListingView, error) {
	listings, err := s.listings.List(ctx, tier, sellerID)
	if err != nil {
		return nil, domain.ErrInternal("failed to load listings", err)
	}
	return lifecycle.AnnotateAll(s.now(), listings), nil
}

// Publish writes a new listing to the tier's collection after checking the
// seller's entitlement covers that tier. A Premium seller may also publish
// Standard and Starter listings; never the other way around.
func (s *DashboardService) Publish(ctx context.Context, sellerID string, tier domain.Tier, req *domain.PublishRequest) (*lifecycle.ListingView, error) {
	status, err := s.entitlement.CurrentTier(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if status.Tier.Rank() < tier.Rank() {
		return nil, domain.ErrForbidden("current tier does not allow publishing in this category")
	}

	listing := &domain.Listing{
		ID:        domain.NewListingID(),
		SellerID:  sellerID,
		Tier:      tier,
		CreatedAt: s.now(),
	}
	if tier == domain.TierPremium {
		if req.BusinessName == "" {
			return nil, domain.ErrValidation("businessName is required for premium listings")
		}
		listing.Storefront = &domain.StorefrontDetails{
			BusinessName: req.BusinessName,
			Address:      req.Address,
		}
	} else {
		if req.Title == "" {
			return nil, domain.ErrValidation("title is required")
		}
		if req.PriceMinor <= 0 {
			return nil, domain.ErrValidation("priceMinor must be positive")
		}
		listing.Item = &domain.ItemDetails{
			Title:      req.Title,
			PriceMinor: req.PriceMinor,
			Urgent:     req.Urgent,
		}
	}

	if err := s.listings.Insert(ctx, listing); err != nil {
		return nil, domain.ErrInternal("failed to publish listing", err)
	}

	view := lifecycle.Annotate(s.now(), *listing)
	return &view, nil
}

// Delete permanently removes a listing. Owner only; expiry never deletes.
func (s *DashboardService) Delete(ctx context.Context, tier domain.Tier, listingID, requesterID string) error {
	listing, err := s.listings.FindByID(ctx, tier, listingID)
	if err != nil {
		return domain.ErrInternal("failed to load listing", err)
	}
	if listing == nil {
		return domain.ErrNotFound("listing not found")
	}
	if listing.SellerID != requesterID {
		return domain.ErrForbidden("only the owner may delete a listing")
	}
	if err := s.listings.Delete(ctx, tier, listingID); err != nil {
		return domain.ErrInternal("failed to delete listing", err)
	}
	return nil
}

// ToggleSold sets the sold flag on an item listing. Premium storefronts have
// no sold concept and always refuse.
func (s *DashboardService) ToggleSold(ctx context.Context, tier domain.Tier, listingID, requesterID string, soldOut bool) (*lifecycle.ListingView, error) {
	if tier == domain.TierPremium {
		return nil, domain.ErrConflict("premium listings have no sold state")
	}

	listing, err := s.listings.FindByID(ctx, tier, listingID)
	if err != nil {
		return nil, domain.ErrInternal("failed to load listing", err)
	}
	if listing == nil {
		return nil, domain.ErrNotFound("listing not found")
	}
	if listing.SellerID != requesterID {
		return nil, domain.ErrForbidden("only the owner may update a listing")
	}

	updated, err := s.listings.SetSoldOut(ctx, tier, listingID, soldOut)
	if err != nil {
		return nil, domain.ErrInternal("failed to update listing", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound("listing not found")
	}

	view := lifecycle.Annotate(s.now(), *updated)
	return &view, nil
}
