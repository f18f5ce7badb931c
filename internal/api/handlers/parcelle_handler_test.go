package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agritunisie/connect/internal/api/middlewares"
	"github.com/agritunisie/connect/internal/core"
	"github.com/agritunisie/connect/internal/models"
)

var polygonTunis = json.RawMessage(`{"type":"Polygon","coordinates":[[[10.1,36.8],[10.2,36.8],[10.2,36.9],[10.1,36.8]]]}`)

type fakeParcelleStore struct {
	parcelles map[int64]*models.Parcelle
	nextID    int64
}

func newFakeParcelleStore() *fakeParcelleStore {
	return &fakeParcelleStore{parcelles: map[int64]*models.Parcelle{}, nextID: 1}
}

func (s *fakeParcelleStore) CreateParcelle(_ context.Context, p *models.Parcelle) (*models.Parcelle, error) {
	stored := *p
	stored.ID = s.nextID
	stored.DateCreation = time.Now()
	s.nextID++
	s.parcelles[stored.ID] = &stored
	return &stored, nil
}

func (s *fakeParcelleStore) ListParcellesByUtilisateur(_ context.Context, utilisateurID int64, limit, offset int) ([]models.Parcelle, int64, error) {
	var owned []models.Parcelle
	for _, p := range s.parcelles {
		if p.UtilisateurID == utilisateurID {
			owned = append(owned, *p)
		}
	}
	total := int64(len(owned))
	if offset >= len(owned) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], total, nil
}

func (s *fakeParcelleStore) GetParcelleForUtilisateur(_ context.Context, id, utilisateurID int64) (*models.Parcelle, error) {
	p, ok := s.parcelles[id]
	if !ok || p.UtilisateurID != utilisateurID {
		return nil, nil
	}
	return p, nil
}

func (s *fakeParcelleStore) UpdateParcelle(_ context.Context, id, utilisateurID int64, upd core.ParcelleUpdate) (*models.Parcelle, error) {
	p, ok := s.parcelles[id]
	if !ok || p.UtilisateurID != utilisateurID {
		return nil, nil
	}
	if upd.NomParcelle != nil {
		p.NomParcelle = *upd.NomParcelle
	}
	if upd.Geometrie != nil {
		p.Geometrie = upd.Geometrie
	}
	if upd.SuperficieCalculeeHa != nil {
		p.SuperficieCalculeeHa = upd.SuperficieCalculeeHa
	}
	return p, nil
}

func (s *fakeParcelleStore) DeleteParcelle(_ context.Context, id, utilisateurID int64) (bool, error) {
	p, ok := s.parcelles[id]
	if !ok || p.UtilisateurID != utilisateurID {
		return false, nil
	}
	delete(s.parcelles, id)
	return true, nil
}

// parcelleRouter mounts the handler behind Authenticate the way the server
// does, so URL params and claims both resolve.
func parcelleRouter(t *testing.T, store core.ParcelleStore) (http.Handler, string) {
	t.Helper()
	rp := newTestResponder()
	h := NewParcelleHandler(rp, store)
	secret := []byte("secret-de-test")

	token, err := middlewares.NewToken(secret, time.Hour, &models.Utilisateur{
		ID: 7, NomComplet: "Amina Ben Salah", Email: "amina@exemple.tn", Role: models.RoleAgriculteur,
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api/parcelles", func(pr chi.Router) {
		pr.Use(middlewares.Authenticate(rp, secret))
		pr.Post("/", h.Create)
		pr.Get("/user", h.ListForUser)
		pr.Get("/{id}", h.Get)
		pr.Put("/{id}", h.Update)
		pr.Delete("/{id}", h.Delete)
	})
	return r, token
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestCreateParcelle(t *testing.T) {
	store := newFakeParcelleStore()
	router, token := parcelleRouter(t, store)

	rec := doJSON(t, router, "POST", "/api/parcelles/", token, map[string]any{
		"nom_parcelle": "Oliveraie Nord",
		"geometrie":    polygonTunis,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Message  string          `json:"message"`
		Parcelle models.Parcelle `json:"parcelle"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Parcelle créée avec succès.", body.Message)
	assert.Equal(t, int64(7), store.parcelles[body.Parcelle.ID].UtilisateurID)
}

func TestCreateParcelleKeepsSuperficie(t *testing.T) {
	store := newFakeParcelleStore()
	router, token := parcelleRouter(t, store)

	rec := doJSON(t, router, "POST", "/api/parcelles/", token, map[string]any{
		"nom_parcelle":           "Oliveraie Nord",
		"geometrie":              polygonTunis,
		"superficie_calculee_ha": 12.5,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Parcelle models.Parcelle `json:"parcelle"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	stored := store.parcelles[body.Parcelle.ID]
	require.NotNil(t, stored.SuperficieCalculeeHa)
	assert.Equal(t, 12.5, *stored.SuperficieCalculeeHa)
}

func TestUpdateParcelleSuperficie(t *testing.T) {
	store := newFakeParcelleStore()
	store.parcelles[3] = &models.Parcelle{ID: 3, UtilisateurID: 7, NomParcelle: "Avant", Geometrie: polygonTunis}
	store.nextID = 4
	router, token := parcelleRouter(t, store)

	rec := doJSON(t, router, "PUT", "/api/parcelles/3", token, map[string]any{
		"superficie_calculee_ha": 3.75,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, store.parcelles[3].SuperficieCalculeeHa)
	assert.Equal(t, 3.75, *store.parcelles[3].SuperficieCalculeeHa)

	rec = doJSON(t, router, "POST", "/api/parcelles/", token, map[string]any{
		"nom_parcelle":           "Superficie négative",
		"geometrie":              polygonTunis,
		"superficie_calculee_ha": -1,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "superficie_calculee_ha")
}

func TestCreateParcelleMissingGeometrie(t *testing.T) {
	router, token := parcelleRouter(t, newFakeParcelleStore())

	rec := doJSON(t, router, "POST", "/api/parcelles/", token, map[string]any{
		"nom_parcelle": "Oliveraie Nord",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "geometrie")
}

func TestCreateParcelleBadGeometrie(t *testing.T) {
	router, token := parcelleRouter(t, newFakeParcelleStore())

	rec := doJSON(t, router, "POST", "/api/parcelles/", token, map[string]any{
		"nom_parcelle": "Oliveraie Nord",
		"geometrie":    map[string]any{"type": "Point", "coordinates": []float64{10.1, 36.8}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Polygon")
}

func TestGetParcelleOwnershipHidesForeignRows(t *testing.T) {
	store := newFakeParcelleStore()
	store.parcelles[1] = &models.Parcelle{ID: 1, UtilisateurID: 99, NomParcelle: "Autre", Geometrie: polygonTunis}
	store.nextID = 2
	router, token := parcelleRouter(t, store)

	// Existing row owned by someone else is indistinguishable from a missing one.
	rec := doJSON(t, router, "GET", "/api/parcelles/1", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Parcelle non trouvée ou accès non autorisé.")

	rec = doJSON(t, router, "GET", "/api/parcelles/42", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Parcelle non trouvée ou accès non autorisé.")
}

func TestUpdateParcelle(t *testing.T) {
	store := newFakeParcelleStore()
	store.parcelles[3] = &models.Parcelle{ID: 3, UtilisateurID: 7, NomParcelle: "Avant", Geometrie: polygonTunis}
	store.nextID = 4
	router, token := parcelleRouter(t, store)

	rec := doJSON(t, router, "PUT", "/api/parcelles/3", token, map[string]any{
		"nom_parcelle": "Après rénovation",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Après rénovation", store.parcelles[3].NomParcelle)
}

func TestDeleteParcelle(t *testing.T) {
	store := newFakeParcelleStore()
	store.parcelles[3] = &models.Parcelle{ID: 3, UtilisateurID: 7, NomParcelle: "Condamnée", Geometrie: polygonTunis}
	store.nextID = 4
	router, token := parcelleRouter(t, store)

	rec := doJSON(t, router, "DELETE", "/api/parcelles/3", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.parcelles)

	rec = doJSON(t, router, "DELETE", "/api/parcelles/3", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListParcellesPagination(t *testing.T) {
	store := newFakeParcelleStore()
	for i := int64(1); i <= 5; i++ {
		store.parcelles[i] = &models.Parcelle{ID: i, UtilisateurID: 7, NomParcelle: "P", Geometrie: polygonTunis}
	}
	store.nextID = 6
	router, token := parcelleRouter(t, store)

	rec := doJSON(t, router, "GET", "/api/parcelles/user?page=1&limit=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page models.Page[models.Parcelle]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(5), page.Pagination.TotalItems)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.Equal(t, 1, page.Pagination.CurrentPage)
}
