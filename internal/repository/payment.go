package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/campusmarket/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentRepository handles database operations for payment transactions.
type PaymentRepository struct {
	db *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create records a newly initiated payment transaction.
func (r *PaymentRepository) Create(ctx context.Context, t *domain.PaymentTransaction) error {
	query := `
		INSERT INTO payment_transactions (transaction_ref, seller_id, tier, amount_minor, currency, gateway_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		t.TransactionRef, t.SellerID, t.Tier, t.AmountMinor, t.Currency, t.GatewayStatus, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment transaction: %w", err)
	}
	return nil
}

// FindByRef returns a payment transaction by its gateway reference.
func (r *PaymentRepository) FindByRef(ctx context.Context, ref string) (*domain.PaymentTransaction, error) {
	query := `
		SELECT transaction_ref, seller_id, tier, amount_minor, currency, gateway_status, created_at, finalized_at
		FROM payment_transactions WHERE transaction_ref = $1
	`
	var t domain.PaymentTransaction
	err := r.db.QueryRow(ctx, query, ref).Scan(
		&t.TransactionRef, &t.SellerID, &t.Tier, &t.AmountMinor, &t.Currency,
		&t.GatewayStatus, &t.CreatedAt, &t.FinalizedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find payment transaction: %w", err)
	}
	return &t, nil
}

// Finalize stores the terminal gateway status. The finalized_at guard keeps
// finalized rows immutable; re-finalizing is a silent no-op.
func (r *PaymentRepository) Finalize(ctx context.Context, ref, status string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE payment_transactions
		SET gateway_status = $1, finalized_at = $2
		WHERE transaction_ref = $3 AND finalized_at IS NULL
	`, status, at, ref)
	if err != nil {
		return fmt.Errorf("failed to finalize payment transaction: %w", err)
	}
	return nil
}
