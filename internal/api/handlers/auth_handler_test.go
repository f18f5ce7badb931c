package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agritunisie/connect/internal/api/httpjson"
	"github.com/agritunisie/connect/internal/api/middlewares"
	"github.com/agritunisie/connect/internal/apperr"
	"github.com/agritunisie/connect/internal/models"
)

type fakeUtilisateurStore struct {
	byEmail map[string]*models.Utilisateur
	nextID  int64
	touched []int64
}

func newFakeUtilisateurStore() *fakeUtilisateurStore {
	return &fakeUtilisateurStore{byEmail: map[string]*models.Utilisateur{}, nextID: 1}
}

func (s *fakeUtilisateurStore) CreateUtilisateur(_ context.Context, u *models.Utilisateur) (*models.Utilisateur, error) {
	if _, exists := s.byEmail[u.Email]; exists {
		return nil, apperr.Conflict("Un utilisateur avec cet email existe déjà.")
	}
	stored := *u
	stored.ID = s.nextID
	stored.DateCreation = time.Now()
	s.nextID++
	s.byEmail[stored.Email] = &stored
	return &stored, nil
}

func (s *fakeUtilisateurStore) GetUtilisateurByEmail(_ context.Context, email string) (*models.Utilisateur, error) {
	return s.byEmail[email], nil
}

func (s *fakeUtilisateurStore) TouchDerniereConnexion(_ context.Context, id int64) error {
	s.touched = append(s.touched, id)
	return nil
}

func newTestResponder() *httpjson.Responder {
	return httpjson.NewResponder(zerolog.Nop(), false)
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	r := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, r)
	return rec
}

const testJWTExpiry = time.Hour

func TestRegisterThenLogin(t *testing.T) {
	store := newFakeUtilisateurStore()
	h := NewAuthHandler(newTestResponder(), store, []byte("secret-de-test"), testJWTExpiry)

	rec := postJSON(t, h.Register, "/api/auth/register", map[string]any{
		"nom_complet":  "Amina Ben Salah",
		"email":        "amina@exemple.tn",
		"mot_de_passe": "motdepasse123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Message string              `json:"message"`
		User    models.ProfilPublic `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Utilisateur enregistré avec succès.", created.Message)
	assert.Equal(t, models.RoleAgriculteur, created.User.Role)
	assert.NotZero(t, created.User.ID)
	assert.NotContains(t, rec.Body.String(), "mot_de_passe_hash")

	rec = postJSON(t, h.Login, "/api/auth/login", map[string]any{
		"email":        "amina@exemple.tn",
		"mot_de_passe": "motdepasse123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var logged struct {
		Message string              `json:"message"`
		Token   string              `json:"token"`
		User    models.ProfilPublic `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logged))
	assert.Equal(t, "Connexion réussie.", logged.Message)
	assert.Equal(t, created.User.ID, logged.User.ID)
	assert.Equal(t, []int64{created.User.ID}, store.touched)

	// The token must decode back to the same identity.
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+logged.Token)
	var claims *middlewares.Claims
	auth := middlewares.Authenticate(newTestResponder(), []byte("secret-de-test"))
	auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ = middlewares.ClaimsFrom(r.Context())
	})).ServeHTTP(httptest.NewRecorder(), r)

	require.NotNil(t, claims)
	assert.Equal(t, created.User.ID, claims.ID)
	assert.Equal(t, "Amina Ben Salah", claims.NomComplet)
	assert.Equal(t, models.RoleAgriculteur, claims.Role)
}

func TestRegisterValidation(t *testing.T) {
	h := NewAuthHandler(newTestResponder(), newFakeUtilisateurStore(), []byte("s"), testJWTExpiry)

	rec := postJSON(t, h.Register, "/api/auth/register", map[string]any{
		"nom_complet":  "ab",
		"email":        "pas-un-email",
		"mot_de_passe": "123",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Message string              `json:"message"`
		Errors  []map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Erreurs de validation.", body.Message)
	assert.Len(t, body.Errors, 3)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeUtilisateurStore()
	h := NewAuthHandler(newTestResponder(), store, []byte("s"), testJWTExpiry)

	payload := map[string]any{
		"nom_complet":  "Amina Ben Salah",
		"email":        "amina@exemple.tn",
		"mot_de_passe": "motdepasse123",
	}
	require.Equal(t, http.StatusCreated, postJSON(t, h.Register, "/api/auth/register", payload).Code)

	rec := postJSON(t, h.Register, "/api/auth/register", payload)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Un utilisateur avec cet email existe déjà.")
}

func TestLoginBadCredentials(t *testing.T) {
	store := newFakeUtilisateurStore()
	h := NewAuthHandler(newTestResponder(), store, []byte("s"), testJWTExpiry)

	require.Equal(t, http.StatusCreated, postJSON(t, h.Register, "/api/auth/register", map[string]any{
		"nom_complet":  "Amina Ben Salah",
		"email":        "amina@exemple.tn",
		"mot_de_passe": "motdepasse123",
	}).Code)

	// Same message for wrong password and unknown email.
	rec := postJSON(t, h.Login, "/api/auth/login", map[string]any{
		"email":        "amina@exemple.tn",
		"mot_de_passe": "mauvais",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Identifiants invalides.")

	rec = postJSON(t, h.Login, "/api/auth/login", map[string]any{
		"email":        "inconnu@exemple.tn",
		"mot_de_passe": "motdepasse123",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Identifiants invalides.")
	assert.Empty(t, store.touched)
}
