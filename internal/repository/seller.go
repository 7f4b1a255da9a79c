package repository

import (
	"context"
	"fmt"

	"github.com/campusmarket/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SellerRepository handles database operations for seller accounts.
type SellerRepository struct {
	db *pgxpool.Pool
}

// NewSellerRepository creates a new SellerRepository.
func NewSellerRepository(db *pgxpool.Pool) *SellerRepository {
	return &SellerRepository{db: db}
}

// Create inserts a new seller into the database.
func (r *SellerRepository) Create(ctx context.Context, s *domain.Seller) error {
	query := `
		INSERT INTO sellers (id, email, password, display_name, verified, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		s.ID, s.Email, s.Password, s.DisplayName, s.Verified, s.Role, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create seller: %w", err)
	}
	return nil
}

// FindByEmail returns a seller by email address.
func (r *SellerRepository) FindByEmail(ctx context.Context, email string) (*domain.Seller, error) {
	query := `
		SELECT id, email, password, display_name, verified, role, created_at, updated_at
		FROM sellers WHERE email = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

// FindByID returns a seller by ID.
func (r *SellerRepository) FindByID(ctx context.Context, id string) (*domain.Seller, error) {
	query := `
		SELECT id, email, password, display_name, verified, role, created_at, updated_at
		FROM sellers WHERE id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// Exists checks if a seller with the given email already exists.
func (r *SellerRepository) Exists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM sellers WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check seller existence: %w", err)
	}
	return exists, nil
}

// ListAll returns all sellers ordered by creation date.
func (r *SellerRepository) ListAll(ctx context.Context) ([]*domain.Seller, error) {
	query := `
		SELECT id, email, password, display_name, verified, role, created_at, updated_at
		FROM sellers ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sellers: %w", err)
	}
	defer rows.Close()

	var sellers []*domain.Seller
	for rows.Next() {
		var s domain.Seller
		if err := rows.Scan(&s.ID, &s.Email, &s.Password, &s.DisplayName, &s.Verified, &s.Role, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan seller: %w", err)
		}
		sellers = append(sellers, &s)
	}
	return sellers, nil
}

// SetVerified flips the verification flag on a seller profile.
func (r *SellerRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	_, err := r.db.Exec(ctx,
		`UPDATE sellers SET verified = $1, updated_at = NOW() WHERE id = $2`, verified, id)
	if err != nil {
		return fmt.Errorf("failed to update seller verification: %w", err)
	}
	return nil
}

func (r *SellerRepository) scanOne(row pgx.Row) (*domain.Seller, error) {
	var s domain.Seller
	err := row.Scan(&s.ID, &s.Email, &s.Password, &s.DisplayName, &s.Verified, &s.Role, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan seller: %w", err)
	}
	return &s, nil
}
