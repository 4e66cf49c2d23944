package memory

import (
	"context"

	"ranchbook/internal/domain/billing"
)

type BillingRepo struct {
	store *Store
}

func NewBillingRepo(store *Store) *BillingRepo {
	return &BillingRepo{store: store}
}

var _ billing.Repository = (*BillingRepo)(nil)

func (r *BillingRepo) GetBilling(_ context.Context, ranchID string) (billing.Billing, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if _, ok := r.store.ranches[ranchID]; !ok {
		return billing.Billing{}, billing.ErrNotFound
	}
	b, ok := r.store.billing[ranchID]
	if !ok {
		b = billing.Billing{RanchID: ranchID, Tier: billing.TierFree}
	}
	return b, nil
}

func (r *BillingRepo) UpdatePeakCowCount(_ context.Context, ranchID string, count int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	b, ok := r.store.billing[ranchID]
	if !ok {
		b = billing.Billing{RanchID: ranchID, Tier: billing.TierFree}
	}
	if count > b.PeakCowCount {
		b.PeakCowCount = count
		r.store.billing[ranchID] = b
	}
	return nil
}

// SetBilling existe para tests y seeds; el proveedor de pagos escribe
// esto vía webhooks en producción.
func (r *BillingRepo) SetBilling(_ context.Context, b billing.Billing) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.billing[b.RanchID] = b
	return nil
}
