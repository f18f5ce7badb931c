package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/agritunisie/connect/internal/api/httpjson"
	"github.com/agritunisie/connect/internal/api/middlewares"
	"github.com/agritunisie/connect/internal/apperr"
	"github.com/agritunisie/connect/internal/core"
	"github.com/agritunisie/connect/internal/models"
	"github.com/agritunisie/connect/internal/validate"
)

type PrixHandler struct {
	rp    *httpjson.Responder
	store core.PrixStore
}

func NewPrixHandler(rp *httpjson.Responder, store core.PrixStore) *PrixHandler {
	return &PrixHandler{rp: rp, store: store}
}

func (h *PrixHandler) SearchObservations(w http.ResponseWriter, r *http.Request) {
	page, limit := validate.Pagination(r, 20)
	q := r.URL.Query()

	var f core.ObservationFilter
	if v, err := strconv.ParseInt(q.Get("produitId"), 10, 64); err == nil && v > 0 {
		f.ProduitID = v
	}
	if v, err := strconv.ParseInt(q.Get("regionId"), 10, 64); err == nil && v > 0 {
		f.RegionID = v
	}
	f.DateStart = q.Get("dateStart")
	f.DateEnd = q.Get("dateEnd")
	f.MarcheNom = q.Get("marcheNom")

	observations, total, err := h.store.SearchObservations(r.Context(), f, limit, (page-1)*limit)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	h.rp.JSON(w, http.StatusOK, models.Page[models.ObservationPrix]{
		Data:       observations,
		Pagination: models.NewPagination(page, limit, total),
	})
}

type observationRequest struct {
	ProduitID           int64   `json:"produit_id" validate:"required,gt=0"`
	RegionID            int64   `json:"region_id" validate:"required,gt=0"`
	NomMarcheSpecifique *string `json:"nom_marche_specifique" validate:"omitempty,max=255"`
	PrixMoyenKgOuUnite  float64 `json:"prix_moyen_kg_ou_unite" validate:"required,gt=0"`
	UnitePrix           string  `json:"unite_prix" validate:"omitempty,max=20"`
	DateObservation     string  `json:"date_observation" validate:"required,datetime=2006-01-02"`
	SourceInformation   *string `json:"source_information" validate:"omitempty,max=255"`
}

func (h *PrixHandler) AddObservation(w http.ResponseWriter, r *http.Request) {
	claims, _ := middlewares.ClaimsFrom(r.Context())

	var req observationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rp.Error(w, r, apperr.BadRequest("Corps de requête JSON invalide."))
		return
	}
	if fields := validate.Struct(req); fields != nil {
		h.rp.Error(w, r, validate.Failed(fields))
		return
	}

	unite := req.UnitePrix
	if unite == "" {
		unite = "TND/kg"
	}
	source := req.SourceInformation
	if source == nil {
		def := fmt.Sprintf("Collecteur: %s (ID: %d)", claims.NomComplet, claims.ID)
		source = &def
	}
	dateObs, _ := time.Parse("2006-01-02", req.DateObservation)

	o, err := h.store.CreateObservation(r.Context(), &models.ObservationPrix{
		ProduitID:           req.ProduitID,
		RegionID:            req.RegionID,
		NomMarcheSpecifique: req.NomMarcheSpecifique,
		PrixMoyenKgOuUnite:  req.PrixMoyenKgOuUnite,
		UnitePrix:           unite,
		DateObservation:     dateObs,
		SourceInformation:   source,
	})
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	h.rp.JSON(w, http.StatusCreated, map[string]any{
		"message":     "Observation de prix ajoutée avec succès.",
		"observation": o,
	})
}

func (h *PrixHandler) ListProduits(w http.ResponseWriter, r *http.Request) {
	produits, err := h.store.ListProduits(r.Context())
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	h.rp.JSON(w, http.StatusOK, produits)
}

func (h *PrixHandler) ListRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.store.ListRegions(r.Context())
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	h.rp.JSON(w, http.StatusOK, regions)
}
