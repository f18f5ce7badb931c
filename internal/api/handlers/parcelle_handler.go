package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agritunisie/connect/internal/api/httpjson"
	"github.com/agritunisie/connect/internal/api/middlewares"
	"github.com/agritunisie/connect/internal/apperr"
	"github.com/agritunisie/connect/internal/core"
	"github.com/agritunisie/connect/internal/models"
	"github.com/agritunisie/connect/internal/validate"
)

const msgParcelleIntrouvable = "Parcelle non trouvée ou accès non autorisé."

type ParcelleHandler struct {
	rp    *httpjson.Responder
	store core.ParcelleStore
}

func NewParcelleHandler(rp *httpjson.Responder, store core.ParcelleStore) *ParcelleHandler {
	return &ParcelleHandler{rp: rp, store: store}
}

type createParcelleRequest struct {
	NomParcelle          string          `json:"nom_parcelle" validate:"required,min=3,max=255"`
	Description          *string         `json:"description"`
	Geometrie            json.RawMessage `json:"geometrie" validate:"required"`
	SuperficieCalculeeHa *float64        `json:"superficie_calculee_ha" validate:"omitempty,gt=0"`
	TypeSolPredominant   *string         `json:"type_sol_predominant" validate:"omitempty,max=100"`
	CultureActuelleID    *int64          `json:"culture_actuelle_id" validate:"omitempty,gt=0"`
}

func (h *ParcelleHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, _ := middlewares.ClaimsFrom(r.Context())

	var req createParcelleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rp.Error(w, r, apperr.BadRequest("Corps de requête JSON invalide."))
		return
	}
	fields := validate.Struct(req)
	if len(req.Geometrie) > 0 {
		if err := validate.CheckGeoJSON(req.Geometrie); err != nil {
			fields = append(fields, apperr.FieldError{Field: "geometrie", Message: err.Error()})
		}
	}
	if fields != nil {
		h.rp.Error(w, r, validate.Failed(fields))
		return
	}

	p, err := h.store.CreateParcelle(r.Context(), &models.Parcelle{
		UtilisateurID:        claims.ID,
		NomParcelle:          req.NomParcelle,
		Description:          req.Description,
		Geometrie:            req.Geometrie,
		SuperficieCalculeeHa: req.SuperficieCalculeeHa,
		TypeSolPredominant:   req.TypeSolPredominant,
		CultureActuelleID:    req.CultureActuelleID,
	})
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	h.rp.JSON(w, http.StatusCreated, map[string]any{
		"message":  "Parcelle créée avec succès.",
		"parcelle": p,
	})
}

func (h *ParcelleHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	claims, _ := middlewares.ClaimsFrom(r.Context())
	page, limit := validate.Pagination(r, 10)

	parcelles, total, err := h.store.ListParcellesByUtilisateur(r.Context(), claims.ID, limit, (page-1)*limit)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	h.rp.JSON(w, http.StatusOK, models.Page[models.Parcelle]{
		Data:       parcelles,
		Pagination: models.NewPagination(page, limit, total),
	})
}

func (h *ParcelleHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, _ := middlewares.ClaimsFrom(r.Context())
	id, err := validate.IDParam(chi.URLParam(r, "id"), "id")
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}

	p, err := h.store.GetParcelleForUtilisateur(r.Context(), id, claims.ID)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	if p == nil {
		h.rp.Error(w, r, apperr.NotFound(msgParcelleIntrouvable))
		return
	}
	h.rp.JSON(w, http.StatusOK, p)
}

type updateParcelleRequest struct {
	NomParcelle          *string         `json:"nom_parcelle" validate:"omitempty,min=3,max=255"`
	Description          *string         `json:"description"`
	Geometrie            json.RawMessage `json:"geometrie"`
	SuperficieCalculeeHa *float64        `json:"superficie_calculee_ha" validate:"omitempty,gt=0"`
	TypeSolPredominant   *string         `json:"type_sol_predominant" validate:"omitempty,max=100"`
	CultureActuelleID    *int64          `json:"culture_actuelle_id" validate:"omitempty,gt=0"`
}

func (h *ParcelleHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, _ := middlewares.ClaimsFrom(r.Context())
	id, err := validate.IDParam(chi.URLParam(r, "id"), "id")
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}

	var req updateParcelleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rp.Error(w, r, apperr.BadRequest("Corps de requête JSON invalide."))
		return
	}
	fields := validate.Struct(req)
	if len(req.Geometrie) > 0 {
		if err := validate.CheckGeoJSON(req.Geometrie); err != nil {
			fields = append(fields, apperr.FieldError{Field: "geometrie", Message: err.Error()})
		}
	}
	if fields != nil {
		h.rp.Error(w, r, validate.Failed(fields))
		return
	}

	p, err := h.store.UpdateParcelle(r.Context(), id, claims.ID, core.ParcelleUpdate{
		NomParcelle:          req.NomParcelle,
		Description:          req.Description,
		Geometrie:            req.Geometrie,
		SuperficieCalculeeHa: req.SuperficieCalculeeHa,
		TypeSolPredominant:   req.TypeSolPredominant,
		CultureActuelleID:    req.CultureActuelleID,
	})
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	if p == nil {
		h.rp.Error(w, r, apperr.NotFound(msgParcelleIntrouvable))
		return
	}
	h.rp.JSON(w, http.StatusOK, map[string]any{
		"message":  "Parcelle mise à jour avec succès.",
		"parcelle": p,
	})
}

func (h *ParcelleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, _ := middlewares.ClaimsFrom(r.Context())
	id, err := validate.IDParam(chi.URLParam(r, "id"), "id")
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}

	deleted, err := h.store.DeleteParcelle(r.Context(), id, claims.ID)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	if !deleted {
		h.rp.Error(w, r, apperr.NotFound(msgParcelleIntrouvable))
		return
	}
	h.rp.Message(w, http.StatusOK, "Parcelle supprimée avec succès.")
}
