package repository

import (
	"context"
	"fmt"

	"github.com/campusmarket/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListingRepository routes reads and writes to the three per-tier listing
// tables. Starter and standard rows share the item shape; premium rows are
// storefronts with no sold flag.
type ListingRepository struct {
	db *pgxpool.Pool
}

// NewListingRepository creates a new ListingRepository.
func NewListingRepository(db *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{db: db}
}

func tableFor(tier domain.Tier) string {
	switch tier {
	case domain.TierPremium:
		return "premium_listings"
	case domain.TierStandard:
		return "standard_listings"
	default:
		return "starter_listings"
	}
}

// Insert writes a listing to its tier's table.
func (r *ListingRepository) Insert(ctx context.Context, l *domain.Listing) error {
	var err error
	if l.Tier == domain.TierPremium {
		_, err = r.db.Exec(ctx, `
			INSERT INTO premium_listings (id, seller_id, business_name, address, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, l.ID, l.SellerID, l.Storefront.BusinessName, l.Storefront.Address, l.CreatedAt)
	} else {
		_, err = r.db.Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s (id, seller_id, title, price_minor, sold_out, urgent, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, tableFor(l.Tier)), l.ID, l.SellerID, l.Item.Title, l.Item.PriceMinor, l.Item.SoldOut, l.Item.Urgent, l.CreatedAt)
	}
	if err != nil {
		return fmt.Errorf("failed to insert %s listing: %w", l.Tier, err)
	}
	return nil
}

// List returns listings in a tier's table, optionally scoped to one seller.
func (r *ListingRepository) List(ctx context.Context, tier domain.Tier, sellerID string) ([]*domain.Listing, error) {
	var (
		query string
		args  []any
	)
	if tier == domain.TierPremium {
		query = `SELECT id, seller_id, business_name, address, created_at FROM premium_listings`
	} else {
		query = fmt.Sprintf(`SELECT id, seller_id, title, price_minor, sold_out, urgent, created_at FROM %s`, tableFor(tier))
	}
	if sellerID != "" {
		query += ` WHERE seller_id = $1`
		args = append(args, sellerID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s listings: %w", tier, err)
	}
	defer rows.Close()

	var listings []*domain.Listing
	for rows.Next() {
		l, err := scanListing(rows, tier)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// FindByID returns one listing from a tier's table, or nil if absent.
func (r *ListingRepository) FindByID(ctx context.Context, tier domain.Tier, id string) (*domain.Listing, error) {
	var row pgx.Row
	if tier == domain.TierPremium {
		row = r.db.QueryRow(ctx,
			`SELECT id, seller_id, business_name, address, created_at FROM premium_listings WHERE id = $1`, id)
	} else {
		row = r.db.QueryRow(ctx, fmt.Sprintf(
			`SELECT id, seller_id, title, price_minor, sold_out, urgent, created_at FROM %s WHERE id = $1`, tableFor(tier)), id)
	}

	l, err := scanListing(row, tier)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find %s listing: %w", tier, err)
	}
	return l, nil
}

// Delete removes a listing permanently. Expiry never calls this; only an
// explicit owner action does.
func (r *ListingRepository) Delete(ctx context.Context, tier domain.Tier, id string) error {
	_, err := r.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, tableFor(tier)), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s listing: %w", tier, err)
	}
	return nil
}

// SetSoldOut flips the sold flag on an item listing. Callers must route
// premium listings away before calling; the premium table has no such column.
func (r *ListingRepository) SetSoldOut(ctx context.Context, tier domain.Tier, id string, soldOut bool) (*domain.Listing, error) {
	if tier == domain.TierPremium {
		return nil, fmt.Errorf("premium listings have no sold flag")
	}
	row := r.db.QueryRow(ctx, fmt.Sprintf(`
		UPDATE %s SET sold_out = $1 WHERE id = $2
		RETURNING id, seller_id, title, price_minor, sold_out, urgent, created_at
	`, tableFor(tier)), soldOut, id)

	l, err := scanListing(row, tier)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update %s listing: %w", tier, err)
	}
	return l, nil
}

func scanListing(row pgx.Row, tier domain.Tier) (*domain.Listing, error) {
	l := domain.Listing{Tier: tier}
	var err error
	if tier == domain.TierPremium {
		var sf domain.StorefrontDetails
		err = row.Scan(&l.ID, &l.SellerID, &sf.BusinessName, &sf.Address, &l.CreatedAt)
		l.Storefront = &sf
	} else {
		var item domain.ItemDetails
		err = row.Scan(&l.ID, &l.SellerID, &item.Title, &item.PriceMinor, &item.SoldOut, &item.Urgent, &l.CreatedAt)
		l.Item = &item
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}
