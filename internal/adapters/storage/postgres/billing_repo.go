package postgres

import (
	"context"
	"database/sql"

	"ranchbook/internal/domain/billing"
)

// BillingRepo lee las columnas de facturación que viven en la fila del
// ranch (las escribe el proveedor de pagos vía webhooks, fuera de acá).
type BillingRepo struct {
	db *sql.DB
}

func NewBillingRepo(db *sql.DB) *BillingRepo {
	return &BillingRepo{db: db}
}

var _ billing.Repository = (*BillingRepo)(nil)

func (r *BillingRepo) GetBilling(ctx context.Context, ranchID string) (billing.Billing, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, tier, subscription_status, billing_override,
		       trial_ends_at, current_period_end, peak_cow_count,
		       stripe_customer_id, stripe_subscription_id
		FROM ranches
		WHERE id = $1
	`, ranchID)

	var b billing.Billing
	var tier string
	var status, override, customerID, subscriptionID sql.NullString
	var trialEndsAt, periodEnd sql.NullTime

	if err := row.Scan(
		&b.RanchID,
		&tier,
		&status,
		&override,
		&trialEndsAt,
		&periodEnd,
		&b.PeakCowCount,
		&customerID,
		&subscriptionID,
	); err != nil {
		if err == sql.ErrNoRows {
			return billing.Billing{}, billing.ErrNotFound
		}
		return billing.Billing{}, err
	}

	b.Tier = billing.Tier(tier)
	b.Status = status.String
	b.Override = override.String
	if trialEndsAt.Valid {
		t := trialEndsAt.Time
		b.TrialEndsAt = &t
	}
	if periodEnd.Valid {
		t := periodEnd.Time
		b.CurrentPeriodEnd = &t
	}
	b.StripeCustomerID = customerID.String
	b.StripeSubscriptionID = subscriptionID.String
	return b, nil
}

func (r *BillingRepo) UpdatePeakCowCount(ctx context.Context, ranchID string, count int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE ranches
		SET peak_cow_count = GREATEST(peak_cow_count, $2)
		WHERE id = $1
	`, ranchID, count)
	return err
}
