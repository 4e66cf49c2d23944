package export

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ranchbook/internal/domain/cows"
	"ranchbook/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// HerdLister y PastureNames son los puertos hacia cows.Service y
// pastures.Service; el export solo lee.
type HerdLister interface {
	ListByRanch(ctx context.Context, ranchID string) ([]cows.Cow, error)
}

type PastureNames interface {
	NamesByRanch(ctx context.Context, ranchID string) (map[string]string, error)
}

type MembershipLookup interface {
	RoleOf(ctx context.Context, ranchID, userID string) (string, error)
}

type handler struct {
	herd     HerdLister
	pastures PastureNames
	members  MembershipLookup
	now      func() time.Time
}

func RegisterRoutes(r chi.Router, herd HerdLister, pastures PastureNames, members MembershipLookup) {
	h := &handler{herd: herd, pastures: pastures, members: members, now: time.Now}
	r.Get("/ranches/{ranchID}/export", h.exportHerd)
}

func (h *handler) exportHerd(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ranchID := chi.URLParam(r, "ranchID")
	role, err := h.members.RoleOf(r.Context(), ranchID, claims.UserID)
	if err != nil || role == "" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	herd, err := h.herd.ListByRanch(r.Context(), ranchID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// nombres de pasturas best-effort: sin ellos la columna queda vacía
	names, err := h.pastures.NamesByRanch(r.Context(), ranchID)
	if err != nil {
		names = map[string]string{}
	}

	f, err := BuildWorkbook(herd, names)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", Filename(h.now())))
	if err := f.Write(w); err != nil {
		// ya se escribieron headers; solo queda cortar
		return
	}
}
