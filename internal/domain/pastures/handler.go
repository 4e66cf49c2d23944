package pastures

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

// MembershipLookup evita importar ranches desde acá (mismo patrón que
// en cows). Devuelve "" si el usuario no es miembro aceptado.
type MembershipLookup interface {
	RoleOf(ctx context.Context, ranchID, userID string) (string, error)
}

type handler struct {
	svc     *Service
	members MembershipLookup
}

func RegisterRoutes(r chi.Router, svc *Service, members MembershipLookup) {
	h := &handler{svc: svc, members: members}

	r.Route("/ranches/{ranchID}/pastures", func(rr chi.Router) {
		rr.Post("/", h.create)
		rr.Get("/", h.list)
	})
	r.Delete("/pastures/{pastureID}", h.delete)
}

type pastureResponse struct {
	ID        string    `json:"id"`
	RanchID   string    `json:"ranch_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	ranchID := chi.URLParam(r, "ranchID")
	if !h.requireRole(w, r, ranchID, true) {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Create(r.Context(), ranchID, req.Name)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			http.Error(w, "pasture name is required", http.StatusBadRequest)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toPastureResponse(p))
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	ranchID := chi.URLParam(r, "ranchID")
	if !h.requireRole(w, r, ranchID, false) {
		return
	}

	items, err := h.svc.ListByRanch(r.Context(), ranchID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]pastureResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPastureResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "pastureID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "pasture not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if !h.requireRole(w, r, p.RanchID, true) {
		return
	}

	if err := h.svc.Delete(r.Context(), p.ID); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) requireRole(w http.ResponseWriter, r *http.Request, ranchID string, edit bool) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}

	role, err := h.members.RoleOf(r.Context(), ranchID, claims.UserID)
	if err != nil || role == "" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	if edit && role != "manager" && role != "write" {
		http.Error(w, "read-only members cannot modify pastures", http.StatusForbidden)
		return false
	}
	return true
}

func toPastureResponse(p Pasture) pastureResponse {
	return pastureResponse{
		ID:        p.ID,
		RanchID:   p.RanchID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
