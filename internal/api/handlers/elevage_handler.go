package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agritunisie/connect/internal/api/httpjson"
	"github.com/agritunisie/connect/internal/api/middlewares"
	"github.com/agritunisie/connect/internal/apperr"
	"github.com/agritunisie/connect/internal/core"
	"github.com/agritunisie/connect/internal/models"
	"github.com/agritunisie/connect/internal/validate"
)

const msgAnimalIntrouvable = "Animal non trouvé ou accès non autorisé."

type ElevageHandler struct {
	rp    *httpjson.Responder
	store core.ElevageStore
}

func NewElevageHandler(rp *httpjson.Responder, store core.ElevageStore) *ElevageHandler {
	return &ElevageHandler{rp: rp, store: store}
}

func (h *ElevageHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	page, limit := validate.Pagination(r, 10)

	types, total, err := h.store.ListTypesAnimaux(r.Context(), limit, (page-1)*limit)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	h.rp.JSON(w, http.StatusOK, models.Page[models.TypeAnimal]{
		Data:       types,
		Pagination: models.NewPagination(page, limit, total),
	})
}

type animalRequest struct {
	AnimalTypeID        int64   `json:"animal_type_id" validate:"required,gt=0"`
	IdentifiantAnimal   *string `json:"identifiant_animal" validate:"omitempty,max=100"`
	DateNaissanceApprox *string `json:"date_naissance_approx" validate:"omitempty,datetime=2006-01-02"`
	NotesSante          *string `json:"notes_sante"`
}

func (h *ElevageHandler) CreateAnimal(w http.ResponseWriter, r *http.Request) {
	claims, _ := middlewares.ClaimsFrom(r.Context())

	var req animalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rp.Error(w, r, apperr.BadRequest("Corps de requête JSON invalide."))
		return
	}
	if fields := validate.Struct(req); fields != nil {
		h.rp.Error(w, r, validate.Failed(fields))
		return
	}

	a, err := h.store.CreateAnimal(r.Context(), &models.AnimalUtilisateur{
		UtilisateurID:       claims.ID,
		AnimalTypeID:        req.AnimalTypeID,
		IdentifiantAnimal:   req.IdentifiantAnimal,
		DateNaissanceApprox: parseDate(req.DateNaissanceApprox),
		NotesSante:          req.NotesSante,
	})
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	h.rp.JSON(w, http.StatusCreated, map[string]any{
		"message": "Animal ajouté avec succès.",
		"animal":  a,
	})
}

func (h *ElevageHandler) ListAnimaux(w http.ResponseWriter, r *http.Request) {
	claims, _ := middlewares.ClaimsFrom(r.Context())
	page, limit := validate.Pagination(r, 10)

	animaux, total, err := h.store.ListAnimauxByUtilisateur(r.Context(), claims.ID, limit, (page-1)*limit)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	h.rp.JSON(w, http.StatusOK, models.Page[models.AnimalUtilisateur]{
		Data:       animaux,
		Pagination: models.NewPagination(page, limit, total),
	})
}

func (h *ElevageHandler) GetAnimal(w http.ResponseWriter, r *http.Request) {
	claims, _ := middlewares.ClaimsFrom(r.Context())
	id, err := validate.IDParam(chi.URLParam(r, "id"), "id")
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}

	a, err := h.store.GetAnimalForUtilisateur(r.Context(), id, claims.ID)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	if a == nil {
		h.rp.Error(w, r, apperr.NotFound(msgAnimalIntrouvable))
		return
	}
	h.rp.JSON(w, http.StatusOK, a)
}

type updateAnimalRequest struct {
	AnimalTypeID        *int64  `json:"animal_type_id" validate:"omitempty,gt=0"`
	IdentifiantAnimal   *string `json:"identifiant_animal" validate:"omitempty,max=100"`
	DateNaissanceApprox *string `json:"date_naissance_approx" validate:"omitempty,datetime=2006-01-02"`
	NotesSante          *string `json:"notes_sante"`
}

func (h *ElevageHandler) UpdateAnimal(w http.ResponseWriter, r *http.Request) {
	claims, _ := middlewares.ClaimsFrom(r.Context())
	id, err := validate.IDParam(chi.URLParam(r, "id"), "id")
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}

	var req updateAnimalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rp.Error(w, r, apperr.BadRequest("Corps de requête JSON invalide."))
		return
	}
	if fields := validate.Struct(req); fields != nil {
		h.rp.Error(w, r, validate.Failed(fields))
		return
	}

	a, err := h.store.UpdateAnimal(r.Context(), id, claims.ID, core.AnimalUpdate{
		AnimalTypeID:        req.AnimalTypeID,
		IdentifiantAnimal:   req.IdentifiantAnimal,
		DateNaissanceApprox: parseDate(req.DateNaissanceApprox),
		NotesSante:          req.NotesSante,
	})
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	if a == nil {
		h.rp.Error(w, r, apperr.NotFound(msgAnimalIntrouvable))
		return
	}
	h.rp.JSON(w, http.StatusOK, map[string]any{
		"message": "Animal mis à jour avec succès.",
		"animal":  a,
	})
}

func (h *ElevageHandler) DeleteAnimal(w http.ResponseWriter, r *http.Request) {
	claims, _ := middlewares.ClaimsFrom(r.Context())
	id, err := validate.IDParam(chi.URLParam(r, "id"), "id")
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}

	deleted, err := h.store.DeleteAnimal(r.Context(), id, claims.ID)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	if !deleted {
		h.rp.Error(w, r, apperr.NotFound(msgAnimalIntrouvable))
		return
	}
	h.rp.Message(w, http.StatusOK, "Animal supprimé avec succès.")
}

// parseDate converts an optional validated YYYY-MM-DD string. The datetime
// tag already rejected malformed input.
func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil
	}
	return &t
}
