package billing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"ranchbook/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// MembershipLookup: mismo patrón que en cows/pastures, para no importar
// el paquete ranches.
type MembershipLookup interface {
	RoleOf(ctx context.Context, ranchID, userID string) (string, error)
}

type handler struct {
	svc     *Service
	members MembershipLookup
}

func RegisterRoutes(r chi.Router, svc *Service, members MembershipLookup) {
	h := &handler{svc: svc, members: members}

	r.Route("/ranches/{ranchID}/billing", func(rr chi.Router) {
		rr.Get("/", h.get)
		rr.Post("/checkout", h.checkout)
		rr.Post("/portal", h.portal)
	})
}

type billingResponse struct {
	RanchID string `json:"ranch_id"`

	Tier     Tier   `json:"tier"`
	TierName string `json:"tier_name"`
	MaxCows  int    `json:"max_cows"`

	Status   string `json:"status,omitempty"`
	Override string `json:"override,omitempty"`

	TrialEndsAt      *time.Time `json:"trial_ends_at,omitempty"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`

	PeakCowCount int  `json:"peak_cow_count"`
	ReadOnly     bool `json:"read_only"`
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	ranchID := chi.URLParam(r, "ranchID")
	if !h.requireManager(w, r, ranchID) {
		return
	}

	b, err := h.svc.Get(r.Context(), ranchID)
	if err != nil {
		writeBillingError(w, err)
		return
	}

	ro, err := h.svc.ReadOnly(r.Context(), ranchID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	info, ok := Tiers[b.Tier]
	if !ok {
		info = Tiers[TierFree]
	}

	writeJSON(w, http.StatusOK, billingResponse{
		RanchID:          b.RanchID,
		Tier:             b.Tier,
		TierName:         info.Name,
		MaxCows:          info.MaxCows,
		Status:           b.Status,
		Override:         b.Override,
		TrialEndsAt:      b.TrialEndsAt,
		CurrentPeriodEnd: b.CurrentPeriodEnd,
		PeakCowCount:     b.PeakCowCount,
		ReadOnly:         ro,
	})
}

func (h *handler) checkout(w http.ResponseWriter, r *http.Request) {
	ranchID := chi.URLParam(r, "ranchID")
	if !h.requireManager(w, r, ranchID) {
		return
	}

	var req struct {
		Tier     Tier   `json:"tier"`
		Interval string `json:"interval"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	url, err := h.svc.CheckoutURL(r.Context(), ranchID, req.Tier, req.Interval)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			http.Error(w, "tier (starter|pro|max) and interval (monthly|annual) are required", http.StatusBadRequest)
			return
		}
		http.Error(w, "billing checkout unavailable", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *handler) portal(w http.ResponseWriter, r *http.Request) {
	ranchID := chi.URLParam(r, "ranchID")
	if !h.requireManager(w, r, ranchID) {
		return
	}

	url, err := h.svc.PortalURL(r.Context(), ranchID)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			http.Error(w, "invalid input", http.StatusBadRequest)
			return
		}
		http.Error(w, "billing portal unavailable", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *handler) requireManager(w http.ResponseWriter, r *http.Request, ranchID string) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}

	role, err := h.members.RoleOf(r.Context(), ranchID, claims.UserID)
	if err != nil || role != "manager" {
		http.Error(w, "only managers can manage billing", http.StatusForbidden)
		return false
	}
	return true
}

func writeBillingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "invalid input", http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "ranch not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
