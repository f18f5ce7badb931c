package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agritunisie/connect/internal/api/middlewares"
	"github.com/agritunisie/connect/internal/models"
)

type fakeCommunauteStore struct {
	posts        map[int64]*models.ForumPost
	commentaires []models.ForumCommentaire
	nextID       int64
}

func newFakeCommunauteStore() *fakeCommunauteStore {
	return &fakeCommunauteStore{posts: map[int64]*models.ForumPost{}, nextID: 1}
}

func (s *fakeCommunauteStore) ListCategories(_ context.Context, _, _ int) ([]models.ForumCategorie, int64, error) {
	return []models.ForumCategorie{{ID: 1, NomCategorie: "Techniques de culture"}}, 1, nil
}

func (s *fakeCommunauteStore) CreatePost(_ context.Context, p *models.ForumPost) (*models.ForumPost, error) {
	stored := *p
	stored.ID = s.nextID
	stored.DateCreation = time.Now()
	s.nextID++
	s.posts[stored.ID] = &stored
	return &stored, nil
}

func (s *fakeCommunauteStore) ListPostsByCategorie(_ context.Context, categorieID int64, _, _ int) ([]models.ForumPost, int64, error) {
	var posts []models.ForumPost
	for _, p := range s.posts {
		if p.CategorieID == categorieID {
			posts = append(posts, *p)
		}
	}
	return posts, int64(len(posts)), nil
}

func (s *fakeCommunauteStore) GetPostByID(_ context.Context, id int64) (*models.ForumPost, error) {
	return s.posts[id], nil
}

func (s *fakeCommunauteStore) AddCommentaire(_ context.Context, c *models.ForumCommentaire) (*models.ForumCommentaire, error) {
	p, ok := s.posts[c.PostID]
	if !ok {
		return nil, nil
	}
	stored := *c
	stored.ID = s.nextID
	stored.DateCreation = time.Now()
	s.nextID++
	now := stored.DateCreation
	p.DernierCommentaireDate = &now
	s.commentaires = append(s.commentaires, stored)
	return &stored, nil
}

func (s *fakeCommunauteStore) ListCommentairesByPost(_ context.Context, postID int64, _, _ int) ([]models.ForumCommentaire, int64, error) {
	var out []models.ForumCommentaire
	for _, c := range s.commentaires {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

func communauteRouter(t *testing.T, store *fakeCommunauteStore) (http.Handler, string) {
	t.Helper()
	rp := newTestResponder()
	h := NewCommunauteHandler(rp, store)
	secret := []byte("secret-de-test")

	token, err := middlewares.NewToken(secret, time.Hour, &models.Utilisateur{
		ID: 7, NomComplet: "Amina Ben Salah", Email: "amina@exemple.tn", Role: models.RoleAgriculteur,
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api/communaute", func(comm chi.Router) {
		comm.Get("/categories", h.ListCategories)
		comm.Get("/posts/categorie/{categorieId}", h.ListPosts)
		comm.Get("/posts/{postId}", h.GetPost)
		comm.Get("/posts/{postId}/commentaires", h.ListComments)

		comm.Group(func(membre chi.Router) {
			membre.Use(middlewares.Authenticate(rp, secret))
			membre.Post("/posts", h.CreatePost)
			membre.Post("/posts/{postId}/commentaires", h.AddComment)
		})
	})
	return r, token
}

func TestCreatePostAndComment(t *testing.T) {
	store := newFakeCommunauteStore()
	router, token := communauteRouter(t, store)

	rec := doJSON(t, router, "POST", "/api/communaute/posts", token, map[string]any{
		"categorie_id": 1,
		"titre_post":   "Irrigation goutte à goutte",
		"contenu_post": "Quel débit utilisez-vous pour les oliviers en été ?",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, store.posts, 1)

	rec = doJSON(t, router, "POST", "/api/communaute/posts/1/commentaires", token, map[string]any{
		"contenu_commentaire": "4 litres/heure par goutteur chez moi.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, store.commentaires, 1)
	assert.Equal(t, int64(7), store.commentaires[0].UtilisateurID)
	// The parent post's activity timestamp moves with the comment.
	assert.NotNil(t, store.posts[1].DernierCommentaireDate)
}

func TestAddCommentUnknownPost(t *testing.T) {
	router, token := communauteRouter(t, newFakeCommunauteStore())

	rec := doJSON(t, router, "POST", "/api/communaute/posts/99/commentaires", token, map[string]any{
		"contenu_commentaire": "Perdu dans le vide.",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Post non trouvé.")
}

func TestCreatePostRequiresAuth(t *testing.T) {
	router, _ := communauteRouter(t, newFakeCommunauteStore())

	rec := doJSON(t, router, "POST", "/api/communaute/posts", "", map[string]any{
		"categorie_id": 1,
		"titre_post":   "Sans compte",
		"contenu_post": "Ce post ne doit pas passer.",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreatePostValidation(t *testing.T) {
	router, token := communauteRouter(t, newFakeCommunauteStore())

	rec := doJSON(t, router, "POST", "/api/communaute/posts", token, map[string]any{
		"categorie_id": 1,
		"titre_post":   "Ab",
		"contenu_post": "court",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "titre_post")
	assert.Contains(t, rec.Body.String(), "contenu_post")
}
