package cows

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"ranchbook/internal/domain/billing"
	"ranchbook/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// MembershipLookup evita importar el paquete ranches desde acá.
// Devuelve "" si el usuario no es miembro aceptado del ranch.
type MembershipLookup interface {
	RoleOf(ctx context.Context, ranchID, userID string) (string, error)
}

// WriteGate es el gate de suscripción (implementado por billing.Service).
// nil = permitido; error con razón presentable si no.
type WriteGate interface {
	AllowAdd(ctx context.Context, ranchID string) error
	AllowEdit(ctx context.Context, ranchID string) error
}

type handler struct {
	svc     *Service
	members MembershipLookup
	gate    WriteGate
}

func RegisterRoutes(r chi.Router, svc *Service, members MembershipLookup, gate WriteGate) {
	h := &handler{svc: svc, members: members, gate: gate}

	r.Route("/ranches/{ranchID}/cows", func(rr chi.Router) {
		rr.Post("/", h.create)
		rr.Get("/", h.list)
		rr.Get("/by-tag/{number}", h.byTag)
	})

	// presets por ranch (autocomplete de raza / issues médicos)
	r.Get("/ranches/{ranchID}/breeds", h.breedPresets)
	r.Get("/ranches/{ranchID}/medical-presets", h.medicalPresets)

	r.Route("/cows/{cowID}", func(cr chi.Router) {
		cr.Get("/", h.get)
		cr.Patch("/", h.update)
		cr.Delete("/", h.delete)

		cr.Post("/notes", h.addNote)
		cr.Post("/medical", h.addMedicalIssue)

		cr.Get("/mother", h.mother)
		cr.Get("/calves", h.calves)
	})
}

type tagRequest struct {
	Label  string `json:"label"`
	Number string `json:"number"`
}

type tagResponse struct {
	ID     string   `json:"id"`
	Label  TagLabel `json:"label"`
	Number string   `json:"number"`
}

type noteResponse struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type medicalResponse struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

type cowResponse struct {
	ID          string `json:"id"`
	RanchID     string `json:"ranch_id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status"`
	Breed       string `json:"breed,omitempty"`

	BirthMonth int `json:"birth_month,omitempty"`
	BirthYear  int `json:"birth_year,omitempty"`

	PastureID string   `json:"pasture_id,omitempty"`
	Photos    []string `json:"photos,omitempty"`
	MotherTag string   `json:"mother_tag,omitempty"`

	Tags          []tagResponse     `json:"tags"`
	Notes         []noteResponse    `json:"notes,omitempty"`
	MedicalIssues []medicalResponse `json:"medical_issues,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	ranchID := chi.URLParam(r, "ranchID")
	if !h.requireEditor(w, r, ranchID) {
		return
	}

	if err := h.gate.AllowAdd(r.Context(), ranchID); err != nil {
		writeGateError(w, err)
		return
	}

	var req struct {
		Name        string       `json:"name"`
		Description string       `json:"description"`
		Status      string       `json:"status"`
		Breed       string       `json:"breed"`
		BirthMonth  int          `json:"birth_month"`
		BirthYear   int          `json:"birth_year"`
		PastureID   string       `json:"pasture_id"`
		Photos      []string     `json:"photos"`
		MotherTag   string       `json:"mother_tag"`
		Tags        []tagRequest `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	tags := make([]TagInput, 0, len(req.Tags))
	for _, t := range req.Tags {
		tags = append(tags, TagInput{Label: t.Label, Number: t.Number})
	}

	c, err := h.svc.Create(r.Context(), ranchID, CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Breed:       req.Breed,
		BirthMonth:  req.BirthMonth,
		BirthYear:   req.BirthYear,
		PastureID:   req.PastureID,
		Photos:      req.Photos,
		MotherTag:   req.MotherTag,
		Tags:        tags,
	})
	if err != nil {
		writeCowError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCowResponse(c))
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	ranchID := chi.URLParam(r, "ranchID")
	if !h.requireMember(w, r, ranchID) {
		return
	}

	var (
		herd []Cow
		err  error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		herd, err = h.svc.Search(r.Context(), ranchID, q)
	} else {
		herd, err = h.svc.ListByRanch(r.Context(), ranchID)
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	key := SortKey(r.URL.Query().Get("sort"))
	if key == "" {
		key = SortNewest
	}
	if !key.Valid() {
		http.Error(w, "sort must be newest, oldest, lastUpdated or leastUpdated", http.StatusBadRequest)
		return
	}
	SortCows(herd, key)

	out := make([]cowResponse, 0, len(herd))
	for _, c := range herd {
		out = append(out, toCowResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) byTag(w http.ResponseWriter, r *http.Request) {
	ranchID := chi.URLParam(r, "ranchID")
	if !h.requireMember(w, r, ranchID) {
		return
	}

	c, err := h.svc.ResolveByTag(r.Context(), ranchID, chi.URLParam(r, "number"))
	if err != nil {
		writeCowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCowResponse(c))
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadForRole(w, r, false)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCowResponse(c))
}

func (h *handler) update(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadForRole(w, r, true)
	if !ok {
		return
	}

	if err := h.gate.AllowEdit(r.Context(), c.RanchID); err != nil {
		writeGateError(w, err)
		return
	}

	var req struct {
		Name        *string       `json:"name"`
		Description *string       `json:"description"`
		Status      *string       `json:"status"`
		Breed       *string       `json:"breed"`
		BirthMonth  *int          `json:"birth_month"`
		BirthYear   *int          `json:"birth_year"`
		PastureID   *string       `json:"pasture_id"`
		Photos      *[]string     `json:"photos"`
		MotherTag   *string       `json:"mother_tag"`
		Tags        *[]tagRequest `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	in := UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Breed:       req.Breed,
		BirthMonth:  req.BirthMonth,
		BirthYear:   req.BirthYear,
		PastureID:   req.PastureID,
		Photos:      req.Photos,
		MotherTag:   req.MotherTag,
	}
	if req.Tags != nil {
		tags := make([]TagInput, 0, len(*req.Tags))
		for _, t := range *req.Tags {
			tags = append(tags, TagInput{Label: t.Label, Number: t.Number})
		}
		in.Tags = &tags
	}

	updated, err := h.svc.Update(r.Context(), c.ID, in)
	if err != nil {
		writeCowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCowResponse(updated))
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadForRole(w, r, true)
	if !ok {
		return
	}

	if err := h.gate.AllowEdit(r.Context(), c.RanchID); err != nil {
		writeGateError(w, err)
		return
	}

	if err := h.svc.Delete(r.Context(), c.ID); err != nil {
		writeCowError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) addNote(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadForRole(w, r, true)
	if !ok {
		return
	}

	if err := h.gate.AllowEdit(r.Context(), c.RanchID); err != nil {
		writeGateError(w, err)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	n, err := h.svc.AddNote(r.Context(), c.ID, req.Text)
	if err != nil {
		writeCowError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, noteResponse{ID: n.ID, Text: n.Text, CreatedAt: n.CreatedAt})
}

func (h *handler) addMedicalIssue(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadForRole(w, r, true)
	if !ok {
		return
	}

	if err := h.gate.AllowEdit(r.Context(), c.RanchID); err != nil {
		writeGateError(w, err)
		return
	}

	var req struct {
		Label string `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	mi, err := h.svc.AddMedicalIssue(r.Context(), c.ID, req.Label)
	if err != nil {
		writeCowError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, medicalResponse{ID: mi.ID, Label: mi.Label, CreatedAt: mi.CreatedAt})
}

func (h *handler) mother(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadForRole(w, r, false)
	if !ok {
		return
	}

	m, err := h.svc.Mother(r.Context(), c.ID)
	if err != nil {
		writeCowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCowResponse(m))
}

func (h *handler) calves(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadForRole(w, r, false)
	if !ok {
		return
	}

	calves, err := h.svc.Calves(r.Context(), c.ID)
	if err != nil {
		writeCowError(w, err)
		return
	}

	out := make([]cowResponse, 0, len(calves))
	for _, calf := range calves {
		out = append(out, toCowResponse(calf))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) breedPresets(w http.ResponseWriter, r *http.Request) {
	ranchID := chi.URLParam(r, "ranchID")
	if !h.requireMember(w, r, ranchID) {
		return
	}

	breeds, err := h.svc.BreedPresets(r.Context(), ranchID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, breeds)
}

func (h *handler) medicalPresets(w http.ResponseWriter, r *http.Request) {
	ranchID := chi.URLParam(r, "ranchID")
	if !h.requireMember(w, r, ranchID) {
		return
	}

	presets, err := h.svc.MedicalPresets(r.Context(), ranchID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, presets)
}

// loadForRole carga la vaca del path y verifica membresía en SU ranch
// (edit=true exige rol manager o write). ok=false si ya respondió.
func (h *handler) loadForRole(w http.ResponseWriter, r *http.Request, edit bool) (Cow, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return Cow{}, false
	}

	c, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "cowID"))
	if err != nil {
		writeCowError(w, err)
		return Cow{}, false
	}

	role, err := h.members.RoleOf(r.Context(), c.RanchID, claims.UserID)
	if err != nil || role == "" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return Cow{}, false
	}
	if edit && !canEditHerd(role) {
		http.Error(w, "read-only members cannot modify the herd", http.StatusForbidden)
		return Cow{}, false
	}
	return c, true
}

func (h *handler) requireMember(w http.ResponseWriter, r *http.Request, ranchID string) bool {
	return h.requireRole(w, r, ranchID, false)
}

func (h *handler) requireEditor(w http.ResponseWriter, r *http.Request, ranchID string) bool {
	return h.requireRole(w, r, ranchID, true)
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
	if edit && !canEditHerd(role) {
		http.Error(w, "read-only members cannot modify the herd", http.StatusForbidden)
		return false
	}
	return true
}

func canEditHerd(role string) bool {
	return role == "manager" || role == "write"
}

func writeCowError(w http.ResponseWriter, err error) {
	var dup *DuplicateTagError
	switch {
	case errors.As(err, &dup):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":  dup.Error(),
			"number": dup.Number,
			"cow_id": dup.CowID,
		})
	case errors.Is(err, ErrAtLeastOneTag):
		http.Error(w, "a cow needs at least one tag", http.StatusBadRequest)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "invalid input", http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "cow not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeGateError(w http.ResponseWriter, err error) {
	if errors.Is(err, billing.ErrReadOnly) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func toCowResponse(c Cow) cowResponse {
	tags := make([]tagResponse, 0, len(c.Tags))
	for _, t := range c.Tags {
		tags = append(tags, tagResponse{ID: t.ID, Label: t.Label, Number: t.Number})
	}
	notes := make([]noteResponse, 0, len(c.Notes))
	for _, n := range c.Notes {
		notes = append(notes, noteResponse{ID: n.ID, Text: n.Text, CreatedAt: n.CreatedAt})
	}
	medical := make([]medicalResponse, 0, len(c.MedicalIssues))
	for _, mi := range c.MedicalIssues {
		medical = append(medical, medicalResponse{ID: mi.ID, Label: mi.Label, CreatedAt: mi.CreatedAt})
	}
	return cowResponse{
		ID:            c.ID,
		RanchID:       c.RanchID,
		Name:          c.Name,
		Description:   c.Description,
		Status:        c.Status,
		Breed:         c.Breed,
		BirthMonth:    c.BirthMonth,
		BirthYear:     c.BirthYear,
		PastureID:     c.PastureID,
		Photos:        c.Photos,
		MotherTag:     c.MotherTag,
		Tags:          tags,
		Notes:         notes,
		MedicalIssues: medical,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
