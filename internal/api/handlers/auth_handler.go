package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/agritunisie/connect/internal/api/httpjson"
	"github.com/agritunisie/connect/internal/api/middlewares"
	"github.com/agritunisie/connect/internal/apperr"
	"github.com/agritunisie/connect/internal/core"
	"github.com/agritunisie/connect/internal/models"
	"github.com/agritunisie/connect/internal/validate"
)

type AuthHandler struct {
	rp        *httpjson.Responder
	store     core.UtilisateurStore
	jwtSecret []byte
	jwtExpiry time.Duration
}

func NewAuthHandler(rp *httpjson.Responder, store core.UtilisateurStore, secret []byte, expiry time.Duration) *AuthHandler {
	return &AuthHandler{rp: rp, store: store, jwtSecret: secret, jwtExpiry: expiry}
}

type registerRequest struct {
	NomComplet      string  `json:"nom_complet" validate:"required,min=3,max=255"`
	Email           string  `json:"email" validate:"required,email"`
	MotDePasse      string  `json:"mot_de_passe" validate:"required,min=6"`
	NumeroTelephone *string `json:"numero_telephone" validate:"omitempty,max=20"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rp.Error(w, r, apperr.BadRequest("Corps de requête JSON invalide."))
		return
	}
	if fields := validate.Struct(req); fields != nil {
		h.rp.Error(w, r, validate.Failed(fields))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.MotDePasse), 10)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}

	u, err := h.store.CreateUtilisateur(r.Context(), &models.Utilisateur{
		NomComplet:      req.NomComplet,
		Email:           req.Email,
		MotDePasseHash:  string(hash),
		NumeroTelephone: req.NumeroTelephone,
		Role:            models.RoleAgriculteur,
	})
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}

	h.rp.JSON(w, http.StatusCreated, map[string]any{
		"message": "Utilisateur enregistré avec succès.",
		"user":    u.ProfilPublic(),
	})
}

type loginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	MotDePasse string `json:"mot_de_passe" validate:"required"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rp.Error(w, r, apperr.BadRequest("Corps de requête JSON invalide."))
		return
	}
	if fields := validate.Struct(req); fields != nil {
		h.rp.Error(w, r, validate.Failed(fields))
		return
	}

	u, err := h.store.GetUtilisateurByEmail(r.Context(), req.Email)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	// One message for both unknown email and wrong password.
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.MotDePasseHash), []byte(req.MotDePasse)) != nil {
		h.rp.Error(w, r, apperr.Unauthorized("Identifiants invalides."))
		return
	}

	token, err := middlewares.NewToken(h.jwtSecret, h.jwtExpiry, u)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}

	if err := h.store.TouchDerniereConnexion(r.Context(), u.ID); err != nil {
		h.rp.Log.Warn().Err(err).Int64("utilisateur_id", u.ID).Msg("derniere_connexion update failed")
	}

	h.rp.JSON(w, http.StatusOK, map[string]any{
		"message": "Connexion réussie.",
		"token":   token,
		"user":    u.ProfilPublic(),
	})
}
