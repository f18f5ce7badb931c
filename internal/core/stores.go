// Package core declares the persistence contracts the services depend on.
// It abstracts Postgres/PostGIS so higher layers never touch a specific DB.
package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/agritunisie/connect/internal/models"
)

// UtilisateurStore covers account persistence.
type UtilisateurStore interface {
	CreateUtilisateur(ctx context.Context, u *models.Utilisateur) (*models.Utilisateur, error)
	GetUtilisateurByEmail(ctx context.Context, email string) (*models.Utilisateur, error)
	TouchDerniereConnexion(ctx context.Context, id int64) error
}

// ParcelleUpdate lists the optional fields of a partial parcel update. Only
// non-nil fields reach the UPDATE statement.
type ParcelleUpdate struct {
	NomParcelle          *string
	Description          *string
	Geometrie            json.RawMessage
	SuperficieCalculeeHa *float64
	TypeSolPredominant   *string
	CultureActuelleID    *int64
}

// ParcelleStore persists user-owned land plots. Every read/update/delete is
// scoped to (id, utilisateur_id) inside the query predicate.
type ParcelleStore interface {
	CreateParcelle(ctx context.Context, p *models.Parcelle) (*models.Parcelle, error)
	ListParcellesByUtilisateur(ctx context.Context, utilisateurID int64, limit, offset int) ([]models.Parcelle, int64, error)
	GetParcelleForUtilisateur(ctx context.Context, id, utilisateurID int64) (*models.Parcelle, error)
	UpdateParcelle(ctx context.Context, id, utilisateurID int64, upd ParcelleUpdate) (*models.Parcelle, error)
	DeleteParcelle(ctx context.Context, id, utilisateurID int64) (bool, error)
}

// CultureUpdate lists the optional fields of a partial catalog update.
type CultureUpdate struct {
	NomCulture              *string
	DescriptionGenerale     *string
	PeriodeSemisIdealeDebut *string
	PeriodeSemisIdealeFin   *string
	BesoinsEauMmCycle       *int
	TypeSolRecommande       *string
}

// CultureStore persists the crop catalog. Mutations are admin-only at the
// route layer; the store does not enforce roles.
type CultureStore interface {
	ListCultures(ctx context.Context, limit, offset int) ([]models.Culture, int64, error)
	GetCultureByID(ctx context.Context, id int64) (*models.Culture, error)
	CreateCulture(ctx context.Context, c *models.Culture) (*models.Culture, error)
	UpdateCulture(ctx context.Context, id int64, upd CultureUpdate) (*models.Culture, error)
	DeleteCulture(ctx context.Context, id int64) (bool, error)
}

// AnimalUpdate lists the optional fields of a partial animal update.
type AnimalUpdate struct {
	AnimalTypeID        *int64
	IdentifiantAnimal   *string
	DateNaissanceApprox *time.Time
	NotesSante          *string
}

// ElevageStore persists the livestock catalog and user-owned animals.
type ElevageStore interface {
	ListTypesAnimaux(ctx context.Context, limit, offset int) ([]models.TypeAnimal, int64, error)
	CreateAnimal(ctx context.Context, a *models.AnimalUtilisateur) (*models.AnimalUtilisateur, error)
	ListAnimauxByUtilisateur(ctx context.Context, utilisateurID int64, limit, offset int) ([]models.AnimalUtilisateur, int64, error)
	GetAnimalForUtilisateur(ctx context.Context, id, utilisateurID int64) (*models.AnimalUtilisateur, error)
	UpdateAnimal(ctx context.Context, id, utilisateurID int64, upd AnimalUpdate) (*models.AnimalUtilisateur, error)
	DeleteAnimal(ctx context.Context, id, utilisateurID int64) (bool, error)
}

// ObservationFilter narrows a market-price search. Zero values mean "no
// constraint" for that criterion.
type ObservationFilter struct {
	ProduitID int64
	RegionID  int64
	DateStart string
	DateEnd   string
	MarcheNom string
}

// PrixStore persists market-price observations and their reference lists.
type PrixStore interface {
	SearchObservations(ctx context.Context, f ObservationFilter, limit, offset int) ([]models.ObservationPrix, int64, error)
	CreateObservation(ctx context.Context, o *models.ObservationPrix) (*models.ObservationPrix, error)
	ListProduits(ctx context.Context) ([]models.ProduitAgricole, error)
	ListRegions(ctx context.Context) ([]models.Region, error)
}

// CommunauteStore persists forum categories, posts and comments.
type CommunauteStore interface {
	ListCategories(ctx context.Context, limit, offset int) ([]models.ForumCategorie, int64, error)
	CreatePost(ctx context.Context, p *models.ForumPost) (*models.ForumPost, error)
	ListPostsByCategorie(ctx context.Context, categorieID int64, limit, offset int) ([]models.ForumPost, int64, error)
	GetPostByID(ctx context.Context, id int64) (*models.ForumPost, error)
	// AddCommentaire inserts the comment and touches the parent post's
	// dernier_commentaire_date inside a single transaction.
	AddCommentaire(ctx context.Context, c *models.ForumCommentaire) (*models.ForumCommentaire, error)
	ListCommentairesByPost(ctx context.Context, postID int64, limit, offset int) ([]models.ForumCommentaire, int64, error)
}

// MeteoCacheStore reads and refreshes the daily weather cache table keyed by
// (latitude, longitude, date).
type MeteoCacheStore interface {
	GetHistorique(ctx context.Context, latitude, longitude float64, dateStart, dateEnd string) ([]models.MeteoJour, error)
	UpsertJours(ctx context.Context, latitude, longitude float64, jours []models.MeteoJour) error
}

// InteractionLogStore is the append-only audit sink for AI calls.
type InteractionLogStore interface {
	LogInteractionGemini(ctx context.Context, l *models.InteractionGemini) error
}

// Store aggregates every persistence contract implemented by the database
// client.
type Store interface {
	UtilisateurStore
	ParcelleStore
	CultureStore
	ElevageStore
	PrixStore
	CommunauteStore
	MeteoCacheStore
	InteractionLogStore

	Close() error
}
