package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/agritunisie/connect/internal/api/httpjson"
	"github.com/agritunisie/connect/internal/api/middlewares"
	"github.com/agritunisie/connect/internal/apperr"
	"github.com/agritunisie/connect/internal/services"
	"github.com/agritunisie/connect/internal/validate"
)

type ConseilHandler struct {
	rp  *httpjson.Responder
	svc *services.ConseilService
}

func NewConseilHandler(rp *httpjson.Responder, svc *services.ConseilService) *ConseilHandler {
	return &ConseilHandler{rp: rp, svc: svc}
}

type conseilCultureRequest struct {
	DonneesParcelle map[string]any `json:"donneesParcelle" validate:"required"`
	CultureInfo     map[string]any `json:"cultureInfo" validate:"required"`
}

func (h *ConseilHandler) ConseilCulture(w http.ResponseWriter, r *http.Request) {
	claims, _ := middlewares.ClaimsFrom(r.Context())

	var req conseilCultureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rp.Error(w, r, apperr.BadRequest("Corps de requête JSON invalide."))
		return
	}
	if req.DonneesParcelle == nil || req.CultureInfo == nil {
		h.rp.Error(w, r, apperr.BadRequest("Données de parcelle et informations sur la culture requises."))
		return
	}

	resultat, err := h.svc.ConseilCulture(r.Context(), claims.ID, services.ConseilCultureInput{
		DonneesParcelle: req.DonneesParcelle,
		CultureInfo:     req.CultureInfo,
	})
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	h.rp.JSON(w, http.StatusOK, resultat)
}

type rationRequest struct {
	TypeAnimal          string `json:"typeAnimal" validate:"required"`
	AlimentsDisponibles []any  `json:"alimentsDisponibles" validate:"required,min=1"`
	StadeProduction     string `json:"stadeProduction" validate:"required"`
	Objectifs           string `json:"objectifs"`
}

func (h *ConseilHandler) OptimiserRation(w http.ResponseWriter, r *http.Request) {
	claims, _ := middlewares.ClaimsFrom(r.Context())

	var req rationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rp.Error(w, r, apperr.BadRequest("Corps de requête JSON invalide."))
		return
	}
	if fields := validate.Struct(req); fields != nil {
		h.rp.Error(w, r, validate.Failed(fields))
		return
	}

	resultat, err := h.svc.OptimiserRation(r.Context(), claims.ID, services.RationInput{
		TypeAnimal:          req.TypeAnimal,
		AlimentsDisponibles: req.AlimentsDisponibles,
		StadeProduction:     req.StadeProduction,
		Objectifs:           req.Objectifs,
	})
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	h.rp.JSON(w, http.StatusOK, resultat)
}

type resumeRequest struct {
	TexteActualite string `json:"texte_actualite"`
}

func (h *ConseilHandler) ResumerActualite(w http.ResponseWriter, r *http.Request) {
	claims, _ := middlewares.ClaimsFrom(r.Context())

	var req resumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rp.Error(w, r, apperr.BadRequest("Corps de requête JSON invalide."))
		return
	}
	texte := strings.TrimSpace(req.TexteActualite)
	if n := utf8.RuneCountInString(texte); n < 50 || n > 10000 {
		h.rp.Error(w, r, validate.Failed([]apperr.FieldError{{
			Field:   "texte_actualite",
			Message: "Texte d'actualité requis (50-10000 caractères).",
		}}))
		return
	}

	resultat, err := h.svc.ResumerActualite(r.Context(), claims.ID, texte)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	h.rp.JSON(w, http.StatusOK, resultat)
}
