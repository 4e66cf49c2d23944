package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// ErrReadOnly: la suscripción dejó al ranch en modo solo-lectura.
	ErrReadOnly = errors.New("subscription is read-only")
)

type Repository interface {
	GetBilling(ctx context.Context, ranchID string) (Billing, error)

	// UpdatePeakCowCount registra el pico histórico (solo sube).
	UpdatePeakCowCount(ctx context.Context, ranchID string, count int) error
}

// HerdCounter evita importar el paquete cows (ciclo: cows gatea por
// billing, billing cuenta por cows).
type HerdCounter interface {
	CountByRanch(ctx context.Context, ranchID string) (int, error)
}

// CheckoutClient es el puerto hacia las serverless functions del
// proveedor de pagos (ver adapters/billing/functions).
type CheckoutClient interface {
	CreateCheckoutSession(ctx context.Context, ranchID string, tier Tier, interval string) (string, error)
	CustomerPortal(ctx context.Context, ranchID string) (string, error)
}

type Service struct {
	repo     Repository
	herd     HerdCounter
	checkout CheckoutClient // puede ser nil: checkout/portal no configurado
	now      func() time.Time
}

func NewService(repo Repository, herd HerdCounter, checkout CheckoutClient) *Service {
	return &Service{
		repo:     repo,
		herd:     herd,
		checkout: checkout,
		now:      time.Now,
	}
}

func (s *Service) Get(ctx context.Context, ranchID string) (Billing, error) {
	ranchID = strings.TrimSpace(ranchID)
	if ranchID == "" {
		return Billing{}, ErrInvalidInput
	}
	return s.repo.GetBilling(ctx, ranchID)
}

// CanAddCow decide si el ranch puede sumar una vaca más, en este orden
// (mismo que el original): override lifetime_free, trial vigente,
// suscripción caída, límite del tier.
func (s *Service) CanAddCow(ctx context.Context, ranchID string) (Decision, error) {
	b, err := s.Get(ctx, ranchID)
	if err != nil {
		return Decision{}, err
	}

	if b.Override == OverrideLifetimeFree {
		return Decision{Allowed: true}, nil
	}

	if b.Override == OverrideTrial {
		if b.TrialEndsAt != nil && b.TrialEndsAt.After(s.now()) {
			return Decision{Allowed: true}, nil
		}
		// trial vencido: sigue a los checks normales
	}

	if b.Status == StatusReadOnly || b.Status == StatusPastDue {
		return Decision{
			Allowed: false,
			Reason:  "Your subscription has lapsed. Please update your payment to continue.",
		}, nil
	}

	count, err := s.herd.CountByRanch(ctx, ranchID)
	if err != nil {
		return Decision{}, err
	}

	info, ok := Tiers[b.Tier]
	if !ok {
		info = Tiers[TierFree]
	}

	if count >= info.MaxCows {
		required := TierForCowCount(count + 1)
		return Decision{
			Allowed: false,
			Reason: fmt.Sprintf("You've reached the %s plan limit of %d cows. Upgrade to %s to add more.",
				info.Name, info.MaxCows, Tiers[required].Name),
			RequiredTier: required,
		}, nil
	}

	// pico histórico, best-effort
	_ = s.repo.UpdatePeakCowCount(ctx, ranchID, count+1)

	return Decision{Allowed: true}, nil
}

// ReadOnly replica isReadOnly del original: lifetime_free nunca;
// trial solo si venció; si no, por status read_only/canceled.
func (s *Service) ReadOnly(ctx context.Context, ranchID string) (bool, error) {
	b, err := s.Get(ctx, ranchID)
	if err != nil {
		return false, err
	}

	if b.Override == OverrideLifetimeFree {
		return false, nil
	}
	if b.Override == OverrideTrial {
		if b.TrialEndsAt != nil && b.TrialEndsAt.After(s.now()) {
			return false, nil
		}
		return true, nil
	}
	return b.Status == StatusReadOnly || b.Status == StatusCanceled, nil
}

// AllowAdd implementa cows.WriteGate: nil = permitido; error con la
// razón presentable si no.
func (s *Service) AllowAdd(ctx context.Context, ranchID string) error {
	d, err := s.CanAddCow(ctx, ranchID)
	if err != nil {
		return err
	}
	if !d.Allowed {
		return fmt.Errorf("%w: %s", ErrReadOnly, d.Reason)
	}
	return nil
}

// AllowEdit implementa cows.WriteGate para updates/deletes.
func (s *Service) AllowEdit(ctx context.Context, ranchID string) error {
	ro, err := s.ReadOnly(ctx, ranchID)
	if err != nil {
		return err
	}
	if ro {
		return fmt.Errorf("%w: Your subscription has lapsed. Please update your payment to continue.", ErrReadOnly)
	}
	return nil
}

// CheckoutURL pide a la serverless function una URL de checkout.
func (s *Service) CheckoutURL(ctx context.Context, ranchID string, tier Tier, interval string) (string, error) {
	ranchID = strings.TrimSpace(ranchID)
	if ranchID == "" {
		return "", ErrInvalidInput
	}
	if _, ok := Tiers[tier]; !ok || tier == TierFree {
		return "", ErrInvalidInput
	}
	if interval != IntervalMonthly && interval != IntervalAnnual {
		return "", ErrInvalidInput
	}
	if s.checkout == nil {
		return "", errors.New("billing checkout not configured")
	}
	return s.checkout.CreateCheckoutSession(ctx, ranchID, tier, interval)
}

// PortalURL pide la URL del customer portal.
func (s *Service) PortalURL(ctx context.Context, ranchID string) (string, error) {
	ranchID = strings.TrimSpace(ranchID)
	if ranchID == "" {
		return "", ErrInvalidInput
	}
	if s.checkout == nil {
		return "", errors.New("billing checkout not configured")
	}
	return s.checkout.CustomerPortal(ctx, ranchID)
}
