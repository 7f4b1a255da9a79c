package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/campusmarket/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubscriptionRepository handles database operations for subscriptions.
type SubscriptionRepository struct {
	db *pgxpool.Pool
}

// NewSubscriptionRepository creates a new SubscriptionRepository.
func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `id, seller_id, tier, status, activated_at, expires_at, transaction_ref, created_at, updated_at`

// FindLiveBySeller returns the seller's subscriptions whose expiry has not
// passed at the given instant. The expiry sweep may lag, so the query checks
// expires_at directly instead of trusting the status column.
func (r *SubscriptionRepository) FindLiveBySeller(ctx context.Context, sellerID string, now time.Time) ([]*domain.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE seller_id = $1 AND status <> 'pending' AND expires_at > $2
	`
	rows, err := r.db.Query(ctx, query, sellerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query live subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// FindByTransactionRef returns the subscription last activated by the given reference.
func (r *SubscriptionRepository) FindByTransactionRef(ctx context.Context, ref string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE transaction_ref = $1`
	sub, err := scanSubscription(r.db.QueryRow(ctx, query, ref))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

// ApplyActivation performs the single write path into subscriptions. It claims
// the transaction reference in subscription_activations (primary key gives the
// at-most-once guarantee), then creates or extends the (sellerId, tier)
// subscription under a row lock so concurrent activations for the same pair
// serialize. A replayed reference returns the current subscription unchanged.
func (r *SubscriptionRepository) ApplyActivation(ctx context.Context, sellerID string, tier domain.Tier, transactionRef string, now time.Time) (*domain.Subscription, bool, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin activation: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO subscription_activations (transaction_ref, seller_id, tier, applied_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (transaction_ref) DO NOTHING
	`, transactionRef, sellerID, tier, now)
	if err != nil {
		return nil, false, fmt.Errorf("failed to claim activation: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Already applied; return the existing subscription as a no-op.
		var prevSeller string
		var prevTier domain.Tier
		err := tx.QueryRow(ctx,
			`SELECT seller_id, tier FROM subscription_activations WHERE transaction_ref = $1`,
			transactionRef,
		).Scan(&prevSeller, &prevTier)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load prior activation: %w", err)
		}
		sub, err := scanSubscription(tx.QueryRow(ctx, `
			SELECT `+subscriptionColumns+` FROM subscriptions WHERE transaction_ref = $1
		`, transactionRef))
		if err == pgx.ErrNoRows {
			// The reference belongs to an older activation that a later
			// renewal overwrote; fall back to the pair's latest record.
			sub, err = scanSubscription(tx.QueryRow(ctx, `
				SELECT `+subscriptionColumns+`
				FROM subscriptions
				WHERE seller_id = $1 AND tier = $2
				ORDER BY updated_at DESC LIMIT 1
			`, prevSeller, prevTier))
		}
		if err != nil {
			return nil, false, fmt.Errorf("failed to load subscription for replayed activation: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, false, fmt.Errorf("failed to commit activation replay: %w", err)
		}
		return sub, false, nil
	}

	sub, err := scanSubscription(tx.QueryRow(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE seller_id = $1 AND tier = $2 AND status = 'active'
		FOR UPDATE
	`, sellerID, tier))
	switch {
	case err == pgx.ErrNoRows:
		sub = &domain.Subscription{
			ID:             domain.NewSubscriptionID(),
			SellerID:       sellerID,
			Tier:           tier,
			Status:         domain.SubscriptionActive,
			ActivatedAt:    now,
			ExpiresAt:      now.Add(domain.SubscriptionPeriod),
			TransactionRef: transactionRef,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO subscriptions (`+subscriptionColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, sub.ID, sub.SellerID, sub.Tier, sub.Status, sub.ActivatedAt, sub.ExpiresAt, sub.TransactionRef, sub.CreatedAt, sub.UpdatedAt)
		if err != nil {
			return nil, false, fmt.Errorf("failed to insert subscription: %w", err)
		}
	case err != nil:
		return nil, false, fmt.Errorf("failed to lock subscription: %w", err)
	default:
		// Renewal stacking: extend from whichever is later, now or the
		// current expiry, so paying early never loses time.
		base := now
		if sub.ExpiresAt.After(base) {
			base = sub.ExpiresAt
		}
		sub.ExpiresAt = base.Add(domain.SubscriptionPeriod)
		sub.TransactionRef = transactionRef
		sub.UpdatedAt = now
		_, err = tx.Exec(ctx, `
			UPDATE subscriptions
			SET expires_at = $1, transaction_ref = $2, updated_at = $3
			WHERE id = $4
		`, sub.ExpiresAt, sub.TransactionRef, sub.UpdatedAt, sub.ID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to extend subscription: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit activation: %w", err)
	}
	return sub, true, nil
}

// ExpireDue flips overdue active subscriptions to expired. Advisory
// bookkeeping: entitlement reads never depend on this having run.
func (r *SubscriptionRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE subscriptions
		SET status = 'expired', updated_at = $1
		WHERE status = 'active' AND expires_at <= $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire subscriptions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := row.Scan(
		&sub.ID, &sub.SellerID, &sub.Tier, &sub.Status,
		&sub.ActivatedAt, &sub.ExpiresAt, &sub.TransactionRef,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
