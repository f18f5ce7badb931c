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

type CommunauteHandler struct {
	rp    *httpjson.Responder
	store core.CommunauteStore
}

func NewCommunauteHandler(rp *httpjson.Responder, store core.CommunauteStore) *CommunauteHandler {
	return &CommunauteHandler{rp: rp, store: store}
}

func (h *CommunauteHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	page, limit := validate.Pagination(r, 10)

	categories, total, err := h.store.ListCategories(r.Context(), limit, (page-1)*limit)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	h.rp.JSON(w, http.StatusOK, models.Page[models.ForumCategorie]{
		Data:       categories,
		Pagination: models.NewPagination(page, limit, total),
	})
}

type createPostRequest struct {
	CategorieID int64  `json:"categorie_id" validate:"required,gt=0"`
	TitrePost   string `json:"titre_post" validate:"required,min=5,max=255"`
	ContenuPost string `json:"contenu_post" validate:"required,min=10"`
}

func (h *CommunauteHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	claims, _ := middlewares.ClaimsFrom(r.Context())

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rp.Error(w, r, apperr.BadRequest("Corps de requête JSON invalide."))
		return
	}
	if fields := validate.Struct(req); fields != nil {
		h.rp.Error(w, r, validate.Failed(fields))
		return
	}

	p, err := h.store.CreatePost(r.Context(), &models.ForumPost{
		UtilisateurID: claims.ID,
		CategorieID:   req.CategorieID,
		TitrePost:     req.TitrePost,
		ContenuPost:   req.ContenuPost,
	})
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	h.rp.JSON(w, http.StatusCreated, map[string]any{
		"message": "Post créé avec succès.",
		"post":    p,
	})
}

func (h *CommunauteHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	categorieID, err := validate.IDParam(chi.URLParam(r, "categorieId"), "categorieId")
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	page, limit := validate.Pagination(r, 10)

	posts, total, err := h.store.ListPostsByCategorie(r.Context(), categorieID, limit, (page-1)*limit)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	h.rp.JSON(w, http.StatusOK, models.Page[models.ForumPost]{
		Data:       posts,
		Pagination: models.NewPagination(page, limit, total),
	})
}

func (h *CommunauteHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := validate.IDParam(chi.URLParam(r, "postId"), "postId")
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}

	p, err := h.store.GetPostByID(r.Context(), postID)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	if p == nil {
		h.rp.Error(w, r, apperr.NotFound("Post non trouvé."))
		return
	}
	h.rp.JSON(w, http.StatusOK, p)
}

type addCommentRequest struct {
	ContenuCommentaire string `json:"contenu_commentaire" validate:"required,min=1"`
}

func (h *CommunauteHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	claims, _ := middlewares.ClaimsFrom(r.Context())
	postID, err := validate.IDParam(chi.URLParam(r, "postId"), "postId")
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rp.Error(w, r, apperr.BadRequest("Corps de requête JSON invalide."))
		return
	}
	if fields := validate.Struct(req); fields != nil {
		h.rp.Error(w, r, validate.Failed(fields))
		return
	}

	c, err := h.store.AddCommentaire(r.Context(), &models.ForumCommentaire{
		PostID:             postID,
		UtilisateurID:      claims.ID,
		ContenuCommentaire: req.ContenuCommentaire,
	})
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	if c == nil {
		h.rp.Error(w, r, apperr.NotFound("Post non trouvé."))
		return
	}
	h.rp.JSON(w, http.StatusCreated, map[string]any{
		"message":     "Commentaire ajouté avec succès.",
		"commentaire": c,
	})
}

func (h *CommunauteHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := validate.IDParam(chi.URLParam(r, "postId"), "postId")
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	page, limit := validate.Pagination(r, 10)

	commentaires, total, err := h.store.ListCommentairesByPost(r.Context(), postID, limit, (page-1)*limit)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	h.rp.JSON(w, http.StatusOK, models.Page[models.ForumCommentaire]{
		Data:       commentaires,
		Pagination: models.NewPagination(page, limit, total),
	})
}
