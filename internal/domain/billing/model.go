package billing

import "time"

// Tier es el plan de suscripción; acota cuántas vacas puede tener el ranch.
// @Enum free, starter, pro, max
type Tier string

const (
	TierFree    Tier = "free"
	TierStarter Tier = "starter"
	TierPro     Tier = "pro"
	TierMax     Tier = "max"
)

// TierInfo: límites y precios fijos (mensual/anual, USD).
type TierInfo struct {
	Name         string
	MaxCows      int
	MonthlyPrice int
	AnnualPrice  int
}

// Tiers replica la tabla del original tal cual.
var Tiers = map[Tier]TierInfo{
	TierFree:    {Name: "Free", MaxCows: 10, MonthlyPrice: 0, AnnualPrice: 0},
	TierStarter: {Name: "Starter", MaxCows: 100, MonthlyPrice: 10, AnnualPrice: 102},
	TierPro:     {Name: "Ranch Pro", MaxCows: 500, MonthlyPrice: 20, AnnualPrice: 204},
	TierMax:     {Name: "Ranch Max", MaxCows: 999999, MonthlyPrice: 35, AnnualPrice: 357},
}

// TierForCowCount: el tier mínimo que admite count vacas.
func TierForCowCount(count int) Tier {
	switch {
	case count <= 10:
		return TierFree
	case count <= 100:
		return TierStarter
	case count <= 500:
		return TierPro
	default:
		return TierMax
	}
}

// Overrides del estado de suscripción.
const (
	OverrideLifetimeFree = "lifetime_free" // siempre escribible
	OverrideTrial        = "trial"         // escribible hasta TrialEndsAt
)

// Estados relevantes para el gate de escritura.
const (
	StatusReadOnly = "read_only"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
)

// Billing es el estado de facturación de un ranch (vive en la fila del
// ranch; el proveedor de pagos lo mantiene vía webhooks, fuera de acá).
type Billing struct {
	RanchID string

	Tier     Tier
	Status   string
	Override string // "", lifetime_free, trial

	TrialEndsAt      *time.Time
	CurrentPeriodEnd *time.Time

	PeakCowCount int

	StripeCustomerID     string
	StripeSubscriptionID string
}

// Decision es el resultado del gate "¿puede agregar una vaca?":
// si no, con razón presentable y el tier que lo destrabaría.
type Decision struct {
	Allowed      bool
	Reason       string
	RequiredTier Tier
}

// Interval del checkout.
const (
	IntervalMonthly = "monthly"
	IntervalAnnual  = "annual"
)
