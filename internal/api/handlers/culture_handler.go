package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agritunisie/connect/internal/api/httpjson"
	"github.com/agritunisie/connect/internal/apperr"
	"github.com/agritunisie/connect/internal/core"
	"github.com/agritunisie/connect/internal/models"
	"github.com/agritunisie/connect/internal/validate"
)

type CultureHandler struct {
	rp    *httpjson.Responder
	store core.CultureStore
}

func NewCultureHandler(rp *httpjson.Responder, store core.CultureStore) *CultureHandler {
	return &CultureHandler{rp: rp, store: store}
}

func (h *CultureHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := validate.Pagination(r, 10)

	cultures, total, err := h.store.ListCultures(r.Context(), limit, (page-1)*limit)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	h.rp.JSON(w, http.StatusOK, models.Page[models.Culture]{
		Data:       cultures,
		Pagination: models.NewPagination(page, limit, total),
	})
}

func (h *CultureHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := validate.IDParam(chi.URLParam(r, "id"), "id")
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}

	c, err := h.store.GetCultureByID(r.Context(), id)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	if c == nil {
		h.rp.Error(w, r, apperr.NotFound("Culture non trouvée."))
		return
	}
	h.rp.JSON(w, http.StatusOK, c)
}

type cultureRequest struct {
	NomCulture              string  `json:"nom_culture" validate:"required,min=2,max=255"`
	DescriptionGenerale     *string `json:"description_generale"`
	PeriodeSemisIdealeDebut *string `json:"periode_semis_ideale_debut" validate:"omitempty,max=50"`
	PeriodeSemisIdealeFin   *string `json:"periode_semis_ideale_fin" validate:"omitempty,max=50"`
	BesoinsEauMmCycle       *int    `json:"besoins_eau_mm_cycle" validate:"omitempty,gt=0"`
	TypeSolRecommande       *string `json:"type_sol_recommande" validate:"omitempty,max=100"`
}

func (h *CultureHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req cultureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rp.Error(w, r, apperr.BadRequest("Corps de requête JSON invalide."))
		return
	}
	if fields := validate.Struct(req); fields != nil {
		h.rp.Error(w, r, validate.Failed(fields))
		return
	}

	c, err := h.store.CreateCulture(r.Context(), &models.Culture{
		NomCulture:              req.NomCulture,
		DescriptionGenerale:     req.DescriptionGenerale,
		PeriodeSemisIdealeDebut: req.PeriodeSemisIdealeDebut,
		PeriodeSemisIdealeFin:   req.PeriodeSemisIdealeFin,
		BesoinsEauMmCycle:       req.BesoinsEauMmCycle,
		TypeSolRecommande:       req.TypeSolRecommande,
	})
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	h.rp.JSON(w, http.StatusCreated, map[string]any{
		"message": "Culture ajoutée au catalogue avec succès.",
		"culture": c,
	})
}

type updateCultureRequest struct {
	NomCulture              *string `json:"nom_culture" validate:"omitempty,min=2,max=255"`
	DescriptionGenerale     *string `json:"description_generale"`
	PeriodeSemisIdealeDebut *string `json:"periode_semis_ideale_debut" validate:"omitempty,max=50"`
	PeriodeSemisIdealeFin   *string `json:"periode_semis_ideale_fin" validate:"omitempty,max=50"`
	BesoinsEauMmCycle       *int    `json:"besoins_eau_mm_cycle" validate:"omitempty,gt=0"`
	TypeSolRecommande       *string `json:"type_sol_recommande" validate:"omitempty,max=100"`
}

func (h *CultureHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := validate.IDParam(chi.URLParam(r, "id"), "id")
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}

	var req updateCultureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rp.Error(w, r, apperr.BadRequest("Corps de requête JSON invalide."))
		return
	}
	if fields := validate.Struct(req); fields != nil {
		h.rp.Error(w, r, validate.Failed(fields))
		return
	}

	c, err := h.store.UpdateCulture(r.Context(), id, core.CultureUpdate{
		NomCulture:              req.NomCulture,
		DescriptionGenerale:     req.DescriptionGenerale,
		PeriodeSemisIdealeDebut: req.PeriodeSemisIdealeDebut,
		PeriodeSemisIdealeFin:   req.PeriodeSemisIdealeFin,
		BesoinsEauMmCycle:       req.BesoinsEauMmCycle,
		TypeSolRecommande:       req.TypeSolRecommande,
	})
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	if c == nil {
		h.rp.Error(w, r, apperr.NotFound("Culture non trouvée."))
		return
	}
	h.rp.JSON(w, http.StatusOK, map[string]any{
		"message": "Culture mise à jour avec succès.",
		"culture": c,
	})
}

func (h *CultureHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := validate.IDParam(chi.URLParam(r, "id"), "id")
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}

	deleted, err := h.store.DeleteCulture(r.Context(), id)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	if !deleted {
		h.rp.Error(w, r, apperr.NotFound("Culture non trouvée."))
		return
	}
	h.rp.Message(w, http.StatusOK, "Culture supprimée du catalogue avec succès.")
}
