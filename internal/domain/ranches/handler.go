package ranches

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"ranchbook/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/ranches", func(rr chi.Router) {
		rr.Post("/", createRanchHandler(svc))
		rr.Get("/", listMyRanchesHandler(svc))

		rr.Delete("/{ranchID}", deleteRanchHandler(svc))
		rr.Post("/{ranchID}/transfer", transferOwnershipHandler(svc))

		// Team
		rr.Get("/{ranchID}/members", listMembersHandler(svc))
		rr.Post("/{ranchID}/members", inviteMemberHandler(svc))
	})

	r.Route("/members/{memberID}", func(mr chi.Router) {
		mr.Patch("/", updateRoleHandler(svc))
		mr.Delete("/", removeMemberHandler(svc))
	})

	// Invitaciones del usuario logueado (keyed por su email)
	r.Get("/me/invites", listPendingInvitesHandler(svc))
	r.Post("/me/invites/{ranchID}/accept", acceptInviteHandler(svc))
}

type ranchResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	OwnerUserID string    `json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type memberResponse struct {
	ID        string    `json:"id"`
	RanchID   string    `json:"ranch_id"`
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Accepted  bool      `json:"accepted"`
	InvitedBy string    `json:"invited_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type membershipResponse struct {
	Ranch ranchResponse `json:"ranch"`
	Role  Role          `json:"role"`
}

func createRanchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ranch, err := svc.Create(r.Context(), claims.UserID, claims.Email, req.Name)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "ranch name is required", http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toRanchResponse(ranch))
	}
}

func listMyRanchesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListMine(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]membershipResponse, 0, len(items))
		for _, m := range items {
			out = append(out, membershipResponse{
				Ranch: toRanchResponse(m.Ranch),
				Role:  m.Role,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func deleteRanchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		err := svc.Delete(r.Context(), chi.URLParam(r, "ranchID"), claims.UserID)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, ErrNotFound):
			http.Error(w, "ranch not found", http.StatusNotFound)
		case errors.Is(err, ErrForbidden):
			http.Error(w, "only the ranch owner can delete a ranch", http.StatusForbidden)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

func transferOwnershipHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req struct {
			NewOwnerMemberID string `json:"new_owner_member_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ranch, err := svc.TransferOwnership(r.Context(), chi.URLParam(r, "ranchID"), claims.UserID, req.NewOwnerMemberID)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, toRanchResponse(ranch))
		case errors.Is(err, ErrInvalidInput):
			http.Error(w, "new owner must be an accepted member", http.StatusBadRequest)
		case errors.Is(err, ErrNotFound):
			http.Error(w, "ranch or member not found", http.StatusNotFound)
		case errors.Is(err, ErrForbidden):
			http.Error(w, "only the owner can transfer ownership", http.StatusForbidden)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

func listMembersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ranchID := chi.URLParam(r, "ranchID")

		// cualquier miembro aceptado puede ver el equipo
		role, err := svc.RoleOf(r.Context(), ranchID, claims.UserID)
		if err != nil || role == "" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		members, err := svc.Members(r.Context(), ranchID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]memberResponse, 0, len(members))
		for _, m := range members {
			out = append(out, toMemberResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func inviteMemberHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req struct {
			Email string `json:"email"`
			Role  Role   `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.Invite(r.Context(), chi.URLParam(r, "ranchID"), claims.UserID, InviteInput{
			Email: req.Email,
			Role:  req.Role,
		})
		switch {
		case err == nil:
			writeJSON(w, http.StatusCreated, toMemberResponse(m))
		case errors.Is(err, ErrInvalidInput):
			http.Error(w, "email and role (read|write) are required", http.StatusBadRequest)
		case errors.Is(err, ErrLastManager):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ErrForbidden):
			http.Error(w, "only managers can invite", http.StatusForbidden)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

func updateRoleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req struct {
			Role Role `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.UpdateRole(r.Context(), chi.URLParam(r, "memberID"), claims.UserID, req.Role)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, toMemberResponse(m))
		case errors.Is(err, ErrInvalidInput):
			http.Error(w, "role must be manager, write or read", http.StatusBadRequest)
		case errors.Is(err, ErrLastManager):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ErrNotFound):
			http.Error(w, "member not found", http.StatusNotFound)
		case errors.Is(err, ErrForbidden):
			http.Error(w, "only managers can change roles", http.StatusForbidden)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

func removeMemberHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		err := svc.Remove(r.Context(), chi.URLParam(r, "memberID"), claims.UserID)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, ErrLastManager):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ErrNotFound):
			http.Error(w, "member not found", http.StatusNotFound)
		case errors.Is(err, ErrForbidden):
			http.Error(w, "only managers can remove members", http.StatusForbidden)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

func listPendingInvitesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.Email) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		invites, err := svc.PendingInvites(r.Context(), claims.Email)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]memberResponse, 0, len(invites))
		for _, m := range invites {
			out = append(out, toMemberResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func acceptInviteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" || strings.TrimSpace(claims.Email) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		m, err := svc.AcceptInvite(r.Context(), chi.URLParam(r, "ranchID"), claims.UserID, claims.Email)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, toMemberResponse(m))
		case errors.Is(err, ErrNotFound):
			http.Error(w, "invite not found", http.StatusNotFound)
		case errors.Is(err, ErrForbidden):
			http.Error(w, "invite belongs to another user", http.StatusForbidden)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

func toRanchResponse(r Ranch) ranchResponse {
	return ranchResponse{
		ID:          r.ID,
		Name:        r.Name,
		OwnerUserID: r.OwnerUserID,
		CreatedAt:   r.CreatedAt,
	}
}

func toMemberResponse(m Member) memberResponse {
	return memberResponse{
		ID:        m.ID,
		RanchID:   m.RanchID,
		UserID:    m.UserID,
		Email:     m.Email,
		Role:      m.Role,
		Accepted:  m.Accepted,
		InvitedBy: m.InvitedBy,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos
// módulos para no crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
